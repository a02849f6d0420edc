package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/scopesentry/backend/internal/storage/models"
	"github.com/scopesentry/backend/pkg/logger"
)

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	// DSN parameters apply to every pooled connection, unlike PRAGMA execs.
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL", dbPath)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS clients (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		company TEXT,
		notes TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT,
		status TEXT NOT NULL DEFAULT 'active',
		budget REAL,
		hourly_rate REAL,
		estimated_hours REAL,
		public_token TEXT UNIQUE,
		public_enabled INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		FOREIGN KEY (client_id) REFERENCES clients(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_projects_client ON projects(client_id);
	CREATE INDEX IF NOT EXISTS idx_projects_token ON projects(public_token);

	CREATE TABLE IF NOT EXISTS scope_items (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		category TEXT,
		estimated_hours REAL,
		is_completed INTEGER NOT NULL DEFAULT 0,
		item_order INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		UNIQUE (project_id, item_order),
		FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_scope_items_project ON scope_items(project_id);

	CREATE TABLE IF NOT EXISTS client_requests (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		linked_scope_item_id TEXT,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		source TEXT NOT NULL DEFAULT 'email',
		status TEXT NOT NULL DEFAULT 'new',
		classification TEXT NOT NULL DEFAULT 'pending',
		confidence REAL,
		analysis_reasoning TEXT,
		suggested_action TEXT,
		manual_override INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE,
		FOREIGN KEY (linked_scope_item_id) REFERENCES scope_items(id) ON DELETE SET NULL
	);
	CREATE INDEX IF NOT EXISTS idx_requests_project ON client_requests(project_id);
	CREATE INDEX IF NOT EXISTS idx_requests_classification ON client_requests(classification);

	CREATE TABLE IF NOT EXISTS proposals (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		source_request_id TEXT,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'draft',
		amount REAL NOT NULL,
		estimated_hours REAL,
		sent_at INTEGER,
		responded_at INTEGER,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE,
		FOREIGN KEY (source_request_id) REFERENCES client_requests(id) ON DELETE SET NULL
	);
	CREATE INDEX IF NOT EXISTS idx_proposals_project ON proposals(project_id);

	CREATE TABLE IF NOT EXISTS analysis_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		request_id TEXT NOT NULL,
		classification TEXT NOT NULL,
		confidence REAL NOT NULL,
		reasoning TEXT NOT NULL,
		suggested_action TEXT NOT NULL,
		matched_items TEXT,
		indicators TEXT,
		strategy TEXT NOT NULL,
		latency_ms INTEGER,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (request_id) REFERENCES client_requests(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_history_request ON analysis_history(request_id);
	`

	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

func (c *Client) InsertClient(client *models.Client) error {
	query := `INSERT INTO clients (id, name, email, company, notes, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := c.db.Exec(
		query,
		client.ID,
		client.Name,
		client.Email,
		client.Company,
		client.Notes,
		client.CreatedAt.Unix(),
		client.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert client: %w", err)
	}

	return nil
}

func (c *Client) GetClient(id string) (*models.Client, error) {
	query := `SELECT id, name, email, company, notes, created_at, updated_at FROM clients WHERE id = ?`

	var cl models.Client
	var createdAt, updatedAt int64

	err := c.db.QueryRow(query, id).Scan(
		&cl.ID, &cl.Name, &cl.Email, &cl.Company, &cl.Notes, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	cl.CreatedAt = time.Unix(createdAt, 0)
	cl.UpdatedAt = time.Unix(updatedAt, 0)

	return &cl, nil
}

func (c *Client) ListClients() ([]models.Client, error) {
	query := `SELECT id, name, email, company, notes, created_at, updated_at FROM clients ORDER BY name`

	rows, err := c.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []models.Client
	for rows.Next() {
		var cl models.Client
		var createdAt, updatedAt int64

		if err := rows.Scan(&cl.ID, &cl.Name, &cl.Email, &cl.Company, &cl.Notes, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		cl.CreatedAt = time.Unix(createdAt, 0)
		cl.UpdatedAt = time.Unix(updatedAt, 0)
		clients = append(clients, cl)
	}

	return clients, rows.Err()
}

func (c *Client) InsertProject(p *models.Project) error {
	query := `
		INSERT INTO projects (id, client_id, name, description, status, budget, hourly_rate,
			estimated_hours, public_token, public_enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := c.db.Exec(
		query,
		p.ID,
		p.ClientID,
		p.Name,
		p.Description,
		p.Status,
		p.Budget,
		p.HourlyRate,
		p.EstimatedHours,
		nullableString(p.PublicToken),
		boolToInt(p.PublicEnabled),
		p.CreatedAt.Unix(),
		p.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}

	logger.Debug("Project inserted", zap.String("project_id", p.ID), zap.String("name", p.Name))
	return nil
}

func (c *Client) GetProject(id string) (*models.Project, error) {
	query := `
		SELECT id, client_id, name, description, status, budget, hourly_rate,
			estimated_hours, public_token, public_enabled, created_at, updated_at
		FROM projects WHERE id = ?
	`
	return c.scanProject(c.db.QueryRow(query, id))
}

func (c *Client) GetProjectByToken(token string) (*models.Project, error) {
	query := `
		SELECT id, client_id, name, description, status, budget, hourly_rate,
			estimated_hours, public_token, public_enabled, created_at, updated_at
		FROM projects WHERE public_token = ? AND public_enabled = 1
	`
	return c.scanProject(c.db.QueryRow(query, token))
}

func (c *Client) scanProject(row *sql.Row) (*models.Project, error) {
	var p models.Project
	var token sql.NullString
	var publicEnabled int
	var createdAt, updatedAt int64

	err := row.Scan(
		&p.ID, &p.ClientID, &p.Name, &p.Description, &p.Status,
		&p.Budget, &p.HourlyRate, &p.EstimatedHours,
		&token, &publicEnabled, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	p.PublicToken = token.String
	p.PublicEnabled = publicEnabled != 0
	p.CreatedAt = time.Unix(createdAt, 0)
	p.UpdatedAt = time.Unix(updatedAt, 0)

	return &p, nil
}

func (c *Client) ListProjects() ([]models.Project, error) {
	query := `
		SELECT id, client_id, name, description, status, budget, hourly_rate,
			estimated_hours, public_token, public_enabled, created_at, updated_at
		FROM projects ORDER BY created_at DESC
	`

	rows, err := c.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var p models.Project
		var token sql.NullString
		var publicEnabled int
		var createdAt, updatedAt int64

		err := rows.Scan(
			&p.ID, &p.ClientID, &p.Name, &p.Description, &p.Status,
			&p.Budget, &p.HourlyRate, &p.EstimatedHours,
			&token, &publicEnabled, &createdAt, &updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		p.PublicToken = token.String
		p.PublicEnabled = publicEnabled != 0
		p.CreatedAt = time.Unix(createdAt, 0)
		p.UpdatedAt = time.Unix(updatedAt, 0)
		projects = append(projects, p)
	}

	return projects, rows.Err()
}

func (c *Client) UpdateProjectPublicAccess(id, token string, enabled bool) error {
	query := `UPDATE projects SET public_token = ?, public_enabled = ?, updated_at = ? WHERE id = ?`

	res, err := c.db.Exec(query, nullableString(token), boolToInt(enabled), time.Now().Unix(), id)
	if err != nil {
		return fmt.Errorf("failed to update project public access: %w", err)
	}

	return requireRow(res, "project")
}

func (c *Client) InsertScopeItem(item *models.ScopeItem) error {
	query := `
		INSERT INTO scope_items (id, project_id, title, description, category,
			estimated_hours, is_completed, item_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := c.db.Exec(
		query,
		item.ID,
		item.ProjectID,
		item.Title,
		item.Description,
		item.Category,
		item.EstimatedHours,
		boolToInt(item.IsCompleted),
		item.Order,
		item.CreatedAt.Unix(),
		item.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert scope item: %w", err)
	}

	return nil
}

func (c *Client) ListScopeItems(projectID string) ([]models.ScopeItem, error) {
	query := `
		SELECT id, project_id, title, description, category, estimated_hours,
			is_completed, item_order, created_at, updated_at
		FROM scope_items WHERE project_id = ? ORDER BY item_order
	`

	rows, err := c.db.Query(query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scope items: %w", err)
	}
	defer rows.Close()

	var items []models.ScopeItem
	for rows.Next() {
		var item models.ScopeItem
		var completed int
		var createdAt, updatedAt int64

		err := rows.Scan(
			&item.ID, &item.ProjectID, &item.Title, &item.Description, &item.Category,
			&item.EstimatedHours, &completed, &item.Order, &createdAt, &updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		item.IsCompleted = completed != 0
		item.CreatedAt = time.Unix(createdAt, 0)
		item.UpdatedAt = time.Unix(updatedAt, 0)
		items = append(items, item)
	}

	return items, rows.Err()
}

func (c *Client) SetScopeItemCompleted(id string, completed bool) error {
	query := `UPDATE scope_items SET is_completed = ?, updated_at = ? WHERE id = ?`

	res, err := c.db.Exec(query, boolToInt(completed), time.Now().Unix(), id)
	if err != nil {
		return fmt.Errorf("failed to update scope item: %w", err)
	}

	return requireRow(res, "scope item")
}

func (c *Client) DeleteScopeItem(id string) error {
	res, err := c.db.Exec(`DELETE FROM scope_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete scope item: %w", err)
	}

	return requireRow(res, "scope item")
}

func (c *Client) InsertRequest(r *models.ClientRequest) error {
	query := `
		INSERT INTO client_requests (id, project_id, linked_scope_item_id, title, content,
			source, status, classification, confidence, analysis_reasoning, suggested_action,
			manual_override, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := c.db.Exec(
		query,
		r.ID,
		r.ProjectID,
		nullableString(r.LinkedScopeItemID),
		r.Title,
		r.Content,
		r.Source,
		r.Status,
		r.Classification,
		r.Confidence,
		r.AnalysisReasoning,
		r.SuggestedAction,
		boolToInt(r.ManualOverride),
		r.CreatedAt.Unix(),
		r.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert request: %w", err)
	}

	logger.Debug("Client request inserted",
		zap.String("request_id", r.ID),
		zap.String("project_id", r.ProjectID),
	)
	return nil
}

func (c *Client) GetRequest(id string) (*models.ClientRequest, error) {
	query := `
		SELECT id, project_id, linked_scope_item_id, title, content, source, status,
			classification, confidence, analysis_reasoning, suggested_action,
			manual_override, created_at, updated_at
		FROM client_requests WHERE id = ?
	`

	row := c.db.QueryRow(query, id)

	r, err := scanRequest(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return r, nil
}

func (c *Client) ListRequests(projectID, classification string) ([]models.ClientRequest, error) {
	query := `
		SELECT id, project_id, linked_scope_item_id, title, content, source, status,
			classification, confidence, analysis_reasoning, suggested_action,
			manual_override, created_at, updated_at
		FROM client_requests WHERE project_id = ?
	`
	args := []interface{}{projectID}

	if classification != "" {
		query += ` AND classification = ?`
		args = append(args, classification)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	var requests []models.ClientRequest
	for rows.Next() {
		r, err := scanRequest(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		requests = append(requests, *r)
	}

	return requests, rows.Err()
}

func scanRequest(scan func(dest ...interface{}) error) (*models.ClientRequest, error) {
	var r models.ClientRequest
	var linkedItem, reasoning, action sql.NullString
	var confidence sql.NullFloat64
	var override int
	var createdAt, updatedAt int64

	err := scan(
		&r.ID, &r.ProjectID, &linkedItem, &r.Title, &r.Content, &r.Source, &r.Status,
		&r.Classification, &confidence, &reasoning, &action,
		&override, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.LinkedScopeItemID = linkedItem.String
	if confidence.Valid {
		v := confidence.Float64
		r.Confidence = &v
	}
	r.AnalysisReasoning = reasoning.String
	r.SuggestedAction = action.String
	r.ManualOverride = override != 0
	r.CreatedAt = time.Unix(createdAt, 0)
	r.UpdatedAt = time.Unix(updatedAt, 0)

	return &r, nil
}

// UpdateRequestAnalysis writes an engine result onto a request and marks it
// analyzed. The manual override flag is cleared: this is only called for the
// initial analysis or an explicit re-analysis.
func (c *Client) UpdateRequestAnalysis(id, classification string, confidence float64, reasoning, action, linkedItemID string) error {
	query := `
		UPDATE client_requests
		SET classification = ?, confidence = ?, analysis_reasoning = ?, suggested_action = ?,
			linked_scope_item_id = ?, status = ?, manual_override = 0, updated_at = ?
		WHERE id = ?
	`

	res, err := c.db.Exec(
		query,
		classification,
		confidence,
		reasoning,
		action,
		nullableString(linkedItemID),
		models.RequestAnalyzed,
		time.Now().Unix(),
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update request analysis: %w", err)
	}

	return requireRow(res, "request")
}

// OverrideClassification applies a user's manual verdict, bypassing the engine.
func (c *Client) OverrideClassification(id, classification, linkedItemID string) error {
	query := `
		UPDATE client_requests
		SET classification = ?, linked_scope_item_id = ?, manual_override = 1, updated_at = ?
		WHERE id = ?
	`

	res, err := c.db.Exec(query, classification, nullableString(linkedItemID), time.Now().Unix(), id)
	if err != nil {
		return fmt.Errorf("failed to override classification: %w", err)
	}

	return requireRow(res, "request")
}

func (c *Client) SetRequestStatus(id string, status models.RequestStatus) error {
	res, err := c.db.Exec(
		`UPDATE client_requests SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().Unix(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to set request status: %w", err)
	}

	return requireRow(res, "request")
}

func (c *Client) ListPendingRequests(projectID string) ([]models.ClientRequest, error) {
	return c.ListRequests(projectID, "pending")
}

func (c *Client) InsertProposal(p *models.Proposal) error {
	query := `
		INSERT INTO proposals (id, project_id, source_request_id, title, description,
			status, amount, estimated_hours, sent_at, responded_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := c.db.Exec(
		query,
		p.ID,
		p.ProjectID,
		nullableString(p.SourceRequestID),
		p.Title,
		p.Description,
		p.Status,
		p.Amount,
		p.EstimatedHours,
		nullableTime(p.SentAt),
		nullableTime(p.RespondedAt),
		p.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert proposal: %w", err)
	}

	logger.Info("Proposal created",
		zap.String("proposal_id", p.ID),
		zap.String("project_id", p.ProjectID),
		zap.Float64("amount", p.Amount),
	)
	return nil
}

func (c *Client) ListProposals(projectID string) ([]models.Proposal, error) {
	query := `
		SELECT id, project_id, source_request_id, title, description, status,
			amount, estimated_hours, sent_at, responded_at, created_at
		FROM proposals WHERE project_id = ? ORDER BY created_at DESC
	`

	rows, err := c.db.Query(query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list proposals: %w", err)
	}
	defer rows.Close()

	var proposals []models.Proposal
	for rows.Next() {
		var p models.Proposal
		var sourceRequest sql.NullString
		var sentAt, respondedAt sql.NullInt64
		var createdAt int64

		err := rows.Scan(
			&p.ID, &p.ProjectID, &sourceRequest, &p.Title, &p.Description, &p.Status,
			&p.Amount, &p.EstimatedHours, &sentAt, &respondedAt, &createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		p.SourceRequestID = sourceRequest.String
		if sentAt.Valid {
			t := time.Unix(sentAt.Int64, 0)
			p.SentAt = &t
		}
		if respondedAt.Valid {
			t := time.Unix(respondedAt.Int64, 0)
			p.RespondedAt = &t
		}
		p.CreatedAt = time.Unix(createdAt, 0)
		proposals = append(proposals, p)
	}

	return proposals, rows.Err()
}

func (c *Client) UpdateProposalStatus(id string, status models.ProposalStatus) error {
	var column string
	switch status {
	case models.ProposalSent:
		column = "sent_at"
	case models.ProposalAccepted, models.ProposalDeclined:
		column = "responded_at"
	}

	query := `UPDATE proposals SET status = ? WHERE id = ?`
	if column != "" {
		query = fmt.Sprintf(`UPDATE proposals SET status = ?, %s = %d WHERE id = ?`, column, time.Now().Unix())
	}

	res, err := c.db.Exec(query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update proposal status: %w", err)
	}

	return requireRow(res, "proposal")
}

func (c *Client) InsertAnalysisRecord(rec *models.AnalysisRecord) error {
	query := `
		INSERT INTO analysis_history (request_id, classification, confidence, reasoning,
			suggested_action, matched_items, indicators, strategy, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := c.db.Exec(
		query,
		rec.RequestID,
		rec.Classification,
		rec.Confidence,
		rec.Reasoning,
		rec.SuggestedAction,
		rec.MatchedItems,
		rec.Indicators,
		rec.Strategy,
		rec.LatencyMS,
		rec.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert analysis record: %w", err)
	}

	return nil
}

func (c *Client) ListAnalysisHistory(requestID string) ([]models.AnalysisRecord, error) {
	query := `
		SELECT id, request_id, classification, confidence, reasoning, suggested_action,
			matched_items, indicators, strategy, latency_ms, created_at
		FROM analysis_history WHERE request_id = ? ORDER BY created_at DESC, id DESC
	`

	rows, err := c.db.Query(query, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list analysis history: %w", err)
	}
	defer rows.Close()

	var records []models.AnalysisRecord
	for rows.Next() {
		var rec models.AnalysisRecord
		var matched, indicators sql.NullString
		var latency sql.NullInt64
		var createdAt int64

		err := rows.Scan(
			&rec.ID, &rec.RequestID, &rec.Classification, &rec.Confidence, &rec.Reasoning,
			&rec.SuggestedAction, &matched, &indicators, &rec.Strategy, &latency, &createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		rec.MatchedItems = matched.String
		rec.Indicators = indicators.String
		rec.LatencyMS = int(latency.Int64)
		rec.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, rec)
	}

	return records, rows.Err()
}

func (c *Client) CountRequestsByClassification(projectID string) ([]models.ClassificationCount, error) {
	query := `
		SELECT classification, COUNT(*) FROM client_requests
		WHERE project_id = ? GROUP BY classification ORDER BY classification
	`

	rows, err := c.db.Query(query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to count requests: %w", err)
	}
	defer rows.Close()

	var counts []models.ClassificationCount
	for rows.Next() {
		var cc models.ClassificationCount
		if err := rows.Scan(&cc.Classification, &cc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		counts = append(counts, cc)
	}

	return counts, rows.Err()
}

func (c *Client) SumProposalAmounts(projectID string) (float64, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM proposals WHERE project_id = ? AND status != 'declined'`

	var total float64
	if err := c.db.QueryRow(query, projectID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum proposals: %w", err)
	}

	return total, nil
}

func requireRow(res sql.Result, entity string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s not found", entity)
	}
	return nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Unix()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
