// Package analyzer classifies client requests against a project's agreed
// scope. The reference strategy is rule-based and fully deterministic; a
// model-backed strategy can be plugged in behind the same contract and falls
// back to the rules on any failure.
package analyzer

type Classification string

const (
	ClassificationPending       Classification = "pending"
	ClassificationInScope       Classification = "in_scope"
	ClassificationOutOfScope    Classification = "out_of_scope"
	ClassificationClarification Classification = "clarification_needed"
	ClassificationRevision      Classification = "revision"
)

func ValidClassification(c Classification) bool {
	switch c {
	case ClassificationInScope, ClassificationOutOfScope, ClassificationClarification, ClassificationRevision:
		return true
	}
	return false
}

type SuggestedAction string

const (
	ActionAccept  SuggestedAction = "accept"
	ActionPropose SuggestedAction = "propose"
	ActionClarify SuggestedAction = "clarify"
)

// ScopeItem is the engine's view of an agreed deliverable.
type ScopeItem struct {
	ID          string
	Title       string
	Description string
	Category    string
	Order       int
}

// ProjectContext carries everything the engine is allowed to know about a
// project. The engine reads nothing else.
type ProjectContext struct {
	Description string
	ScopeItems  []ScopeItem
}

// Request is the client communication being classified.
type Request struct {
	Title   string
	Content string
}

// Indicator is a detected textual signal. Every signal that fired during an
// analysis is recorded, whether or not it decided the verdict.
type Indicator struct {
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Weight      float64 `json:"weight"`
}

// Result is the engine's verdict. Reasoning is always non-empty and
// MatchedScopeItems is always a subset of the project's scope item ids.
type Result struct {
	Classification    Classification  `json:"classification"`
	Confidence        float64         `json:"confidence"`
	Reasoning         string          `json:"reasoning"`
	SuggestedAction   SuggestedAction `json:"suggested_action"`
	MatchedScopeItems []string        `json:"matched_scope_items"`
	Indicators        []Indicator     `json:"indicators"`
}

const (
	IndicatorScopeCreep    = "scope_creep"
	IndicatorClarification = "clarification"
	IndicatorRevision      = "revision"
	IndicatorReinforcement = "reinforcement"
	IndicatorEmptyRequest  = "empty_request"
	IndicatorFallbackUsed  = "fallback_used"
)
