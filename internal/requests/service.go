package requests

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scopesentry/backend/internal/analyzer"
	"github.com/scopesentry/backend/internal/intake"
	"github.com/scopesentry/backend/internal/metrics"
	"github.com/scopesentry/backend/internal/storage/models"
	"github.com/scopesentry/backend/internal/storage/sqlite"
	"github.com/scopesentry/backend/pkg/logger"
	"github.com/scopesentry/backend/pkg/utils"
)

// Cache is the slice of the redis client the service needs. A nil Cache
// disables caching entirely.
type Cache interface {
	GetAnalysis(ctx context.Context, projectID, fingerprint string) (*analyzer.Result, bool, error)
	SetAnalysis(ctx context.Context, projectID, fingerprint string, result *analyzer.Result) error
	InvalidateProject(ctx context.Context, projectID string) error
}

// Service owns the request lifecycle: intake, analysis, persistence. The
// engine itself stays pure; everything stateful happens here.
type Service struct {
	db     *sqlite.Client
	engine *analyzer.Engine
	intake *intake.Processor
	cache  Cache
}

func NewService(db *sqlite.Client, engine *analyzer.Engine, processor *intake.Processor, cache Cache) *Service {
	return &Service{
		db:     db,
		engine: engine,
		intake: processor,
		cache:  cache,
	}
}

type LogInput struct {
	Title   string
	Content string
	Source  models.RequestSource
}

// LogRequest records a client communication and runs scope analysis on it.
// The request is never left pending: even a degraded analysis writes a
// classification, reasoning, and indicator list.
func (s *Service) LogRequest(ctx context.Context, projectID string, in LogInput) (*models.ClientRequest, *analyzer.Result, error) {
	project, err := s.db.GetProject(projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("project lookup failed: %w", err)
	}

	content := s.intake.Normalize(in.Content)
	title := s.intake.DeriveTitle(in.Title, content)

	source := in.Source
	if !models.ValidSource(source) {
		source = models.SourceOther
	}

	now := time.Now()
	request := &models.ClientRequest{
		ID:             uuid.New().String(),
		ProjectID:      projectID,
		Title:          title,
		Content:        content,
		Source:         source,
		Status:         models.RequestNew,
		Classification: string(analyzer.ClassificationPending),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.db.InsertRequest(request); err != nil {
		return nil, nil, err
	}

	metrics.RequestsLogged.WithLabelValues(string(source)).Inc()

	result, err := s.analyzeAndStore(ctx, project, request)
	if err != nil {
		return nil, nil, err
	}

	updated, err := s.db.GetRequest(request.ID)
	if err != nil {
		return nil, nil, err
	}

	return updated, result, nil
}

// Reanalyze re-runs analysis on an existing request. This is the only path
// that overwrites a manual override, and only because the caller asked.
func (s *Service) Reanalyze(ctx context.Context, requestID string) (*models.ClientRequest, *analyzer.Result, error) {
	request, err := s.db.GetRequest(requestID)
	if err != nil {
		return nil, nil, err
	}

	project, err := s.db.GetProject(request.ProjectID)
	if err != nil {
		return nil, nil, fmt.Errorf("project lookup failed: %w", err)
	}

	result, err := s.analyzeAndStore(ctx, project, request)
	if err != nil {
		return nil, nil, err
	}

	updated, err := s.db.GetRequest(requestID)
	if err != nil {
		return nil, nil, err
	}

	return updated, result, nil
}

// Override applies a user's manual classification, bypassing the engine.
func (s *Service) Override(ctx context.Context, requestID, classification, linkedItemID string) (*models.ClientRequest, error) {
	if !analyzer.ValidClassification(analyzer.Classification(classification)) {
		return nil, fmt.Errorf("unknown classification %q", classification)
	}

	if err := s.db.OverrideClassification(requestID, classification, linkedItemID); err != nil {
		return nil, err
	}

	logger.Info("Classification manually overridden",
		zap.String("request_id", requestID),
		zap.String("classification", classification),
	)

	return s.db.GetRequest(requestID)
}

// BulkAnalyzePending analyzes every still-pending request of a project and
// returns how many were processed.
func (s *Service) BulkAnalyzePending(ctx context.Context, projectID string) (int, error) {
	project, err := s.db.GetProject(projectID)
	if err != nil {
		return 0, fmt.Errorf("project lookup failed: %w", err)
	}

	pending, err := s.db.ListPendingRequests(projectID)
	if err != nil {
		return 0, err
	}

	processed := 0
	for i := range pending {
		if err := ctx.Err(); err != nil {
			return processed, err
		}
		if _, err := s.analyzeAndStore(ctx, project, &pending[i]); err != nil {
			return processed, err
		}
		processed++
	}

	return processed, nil
}

// Preview runs analysis without persisting anything. Used by the live draft
// preview; manual overrides and history are untouched.
func (s *Service) Preview(ctx context.Context, projectID, title, content string) (*analyzer.Result, error) {
	project, err := s.db.GetProject(projectID)
	if err != nil {
		return nil, fmt.Errorf("project lookup failed: %w", err)
	}

	pctx, err := s.projectContext(project)
	if err != nil {
		return nil, err
	}

	return s.engine.Analyze(ctx, pctx, analyzer.Request{
		Title:   strings.TrimSpace(title),
		Content: s.intake.Normalize(content),
	})
}

// InvalidateScopeCache drops cached verdicts after a scope mutation.
func (s *Service) InvalidateScopeCache(ctx context.Context, projectID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateProject(ctx, projectID); err != nil {
		logger.Warn("Failed to invalidate analysis cache", zap.Error(err))
	}
}

func (s *Service) analyzeAndStore(ctx context.Context, project *models.Project, request *models.ClientRequest) (*analyzer.Result, error) {
	pctx, err := s.projectContext(project)
	if err != nil {
		return nil, err
	}

	fingerprint := analysisFingerprint(pctx, request.Title, request.Content)

	if s.cache != nil {
		if cached, ok, err := s.cache.GetAnalysis(ctx, project.ID, fingerprint); err == nil && ok {
			metrics.CacheHits.WithLabelValues("analysis").Inc()
			return cached, s.storeResult(request, cached, "cache", 0)
		} else if err != nil {
			logger.Warn("Analysis cache lookup failed", zap.Error(err))
		} else {
			metrics.CacheMisses.WithLabelValues("analysis").Inc()
		}
	}

	start := time.Now()
	result, err := s.engine.Analyze(ctx, pctx, analyzer.Request{
		Title:   request.Title,
		Content: request.Content,
	})
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}
	latency := time.Since(start)

	strategy := s.engine.Strategy()
	for _, ind := range result.Indicators {
		if ind.Type == analyzer.IndicatorFallbackUsed {
			strategy = analyzer.StrategyRules
			metrics.FallbackTotal.Inc()
			break
		}
	}

	metrics.AnalysisDuration.Observe(latency.Seconds())
	metrics.AnalysesTotal.WithLabelValues(string(result.Classification), strategy).Inc()
	metrics.ConfidenceScore.Observe(result.Confidence)

	logger.Info("Request analyzed",
		zap.String("request_id", request.ID),
		zap.String("classification", string(result.Classification)),
		zap.Float64("confidence", result.Confidence),
		zap.String("strategy", strategy),
		zap.Duration("latency", latency),
	)

	if s.cache != nil {
		if err := s.cache.SetAnalysis(ctx, project.ID, fingerprint, result); err != nil {
			logger.Warn("Failed to cache analysis", zap.Error(err))
		}
	}

	return result, s.storeResult(request, result, strategy, int(latency.Milliseconds()))
}

func (s *Service) storeResult(request *models.ClientRequest, result *analyzer.Result, strategy string, latencyMS int) error {
	linkedItem := ""
	if len(result.MatchedScopeItems) > 0 {
		linkedItem = result.MatchedScopeItems[0]
	}

	err := s.db.UpdateRequestAnalysis(
		request.ID,
		string(result.Classification),
		result.Confidence,
		result.Reasoning,
		string(result.SuggestedAction),
		linkedItem,
	)
	if err != nil {
		return err
	}

	matchedJSON, _ := json.Marshal(result.MatchedScopeItems)
	indicatorsJSON, _ := json.Marshal(result.Indicators)

	return s.db.InsertAnalysisRecord(&models.AnalysisRecord{
		RequestID:       request.ID,
		Classification:  string(result.Classification),
		Confidence:      result.Confidence,
		Reasoning:       result.Reasoning,
		SuggestedAction: string(result.SuggestedAction),
		MatchedItems:    string(matchedJSON),
		Indicators:      string(indicatorsJSON),
		Strategy:        strategy,
		LatencyMS:       latencyMS,
		CreatedAt:       time.Now(),
	})
}

func (s *Service) projectContext(project *models.Project) (analyzer.ProjectContext, error) {
	items, err := s.db.ListScopeItems(project.ID)
	if err != nil {
		return analyzer.ProjectContext{}, err
	}

	pctx := analyzer.ProjectContext{
		Description: project.Description,
		ScopeItems:  make([]analyzer.ScopeItem, 0, len(items)),
	}
	for _, item := range items {
		pctx.ScopeItems = append(pctx.ScopeItems, analyzer.ScopeItem{
			ID:          item.ID,
			Title:       item.Title,
			Description: item.Description,
			Category:    item.Category,
			Order:       item.Order,
		})
	}

	return pctx, nil
}

// analysisFingerprint changes whenever the scope or the request text changes,
// so stale cache entries can never satisfy a lookup.
func analysisFingerprint(pctx analyzer.ProjectContext, title, content string) string {
	parts := make([]string, 0, len(pctx.ScopeItems)+2)
	for _, item := range pctx.ScopeItems {
		parts = append(parts, item.ID+"|"+item.Title+"|"+item.Description+"|"+item.Category)
	}
	sort.Strings(parts)
	parts = append(parts, title, content)

	return utils.HashString(strings.Join(parts, "\x00"))
}
