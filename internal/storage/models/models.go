package models

import "time"

type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectOnHold    ProjectStatus = "on_hold"
	ProjectCancelled ProjectStatus = "cancelled"
)

type RequestSource string

const (
	SourceEmail   RequestSource = "email"
	SourceChat    RequestSource = "chat"
	SourceCall    RequestSource = "call"
	SourceMeeting RequestSource = "meeting"
	SourceManual  RequestSource = "manual"
	SourceOther   RequestSource = "other"
)

func ValidSource(s RequestSource) bool {
	switch s {
	case SourceEmail, SourceChat, SourceCall, SourceMeeting, SourceManual, SourceOther:
		return true
	}
	return false
}

type RequestStatus string

const (
	RequestNew          RequestStatus = "new"
	RequestAnalyzed     RequestStatus = "analyzed"
	RequestAddressed    RequestStatus = "addressed"
	RequestProposalSent RequestStatus = "proposal_sent"
	RequestDeclined     RequestStatus = "declined"
)

type ProposalStatus string

const (
	ProposalDraft    ProposalStatus = "draft"
	ProposalSent     ProposalStatus = "sent"
	ProposalAccepted ProposalStatus = "accepted"
	ProposalDeclined ProposalStatus = "declined"
	ProposalExpired  ProposalStatus = "expired"
)

type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Company   string    `json:"company"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Project struct {
	ID             string        `json:"id"`
	ClientID       string        `json:"client_id"`
	Name           string        `json:"name"`
	Description    string        `json:"description"`
	Status         ProjectStatus `json:"status"`
	Budget         float64       `json:"budget"`
	HourlyRate     float64       `json:"hourly_rate"`
	EstimatedHours float64       `json:"estimated_hours"`
	PublicToken    string        `json:"public_token,omitempty"`
	PublicEnabled  bool          `json:"public_enabled"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// ScopeItem is a discrete agreed deliverable. Order is unique within a
// project but not required to be contiguous.
type ScopeItem struct {
	ID             string    `json:"id"`
	ProjectID      string    `json:"project_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Category       string    `json:"category"`
	EstimatedHours float64   `json:"estimated_hours"`
	IsCompleted    bool      `json:"is_completed"`
	Order          int       `json:"order"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ClientRequest is a logged piece of client communication. Classification
// starts at "pending" and is written exactly once per analysis run; a manual
// override is never clobbered unless re-analysis is explicitly requested.
type ClientRequest struct {
	ID                string        `json:"id"`
	ProjectID         string        `json:"project_id"`
	LinkedScopeItemID string        `json:"linked_scope_item_id,omitempty"`
	Title             string        `json:"title"`
	Content           string        `json:"content"`
	Source            RequestSource `json:"source"`
	Status            RequestStatus `json:"status"`
	Classification    string        `json:"classification"`
	Confidence        *float64      `json:"confidence"`
	AnalysisReasoning string        `json:"analysis_reasoning,omitempty"`
	SuggestedAction   string        `json:"suggested_action,omitempty"`
	ManualOverride    bool          `json:"manual_override"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

type Proposal struct {
	ID              string         `json:"id"`
	ProjectID       string         `json:"project_id"`
	SourceRequestID string         `json:"source_request_id,omitempty"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	Status          ProposalStatus `json:"status"`
	Amount          float64        `json:"amount"`
	EstimatedHours  float64        `json:"estimated_hours"`
	SentAt          *time.Time     `json:"sent_at,omitempty"`
	RespondedAt     *time.Time     `json:"responded_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

// AnalysisRecord is the audit row written for every engine run, keeping the
// indicators and matched items that produced a classification.
type AnalysisRecord struct {
	ID              int       `json:"id"`
	RequestID       string    `json:"request_id"`
	Classification  string    `json:"classification"`
	Confidence      float64   `json:"confidence"`
	Reasoning       string    `json:"reasoning"`
	SuggestedAction string    `json:"suggested_action"`
	MatchedItems    string    `json:"matched_items"`
	Indicators      string    `json:"indicators"`
	Strategy        string    `json:"strategy"`
	LatencyMS       int       `json:"latency_ms"`
	CreatedAt       time.Time `json:"created_at"`
}

type ClassificationCount struct {
	Classification string `json:"classification"`
	Count          int    `json:"count"`
}
