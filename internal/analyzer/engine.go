package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/scopesentry/backend/pkg/logger"
)

// ErrInvalidInput marks caller misuse: a collaborator handed the engine a
// malformed project. Analysis ambiguity is never reported this way.
var ErrInvalidInput = errors.New("invalid analysis input")

// Strategy is the single function-shaped contract every analysis
// implementation satisfies. Implementations are selected by configuration,
// never by type inspection.
type Strategy func(ctx context.Context, project ProjectContext, req Request) (*Result, error)

const (
	StrategyRules = "rules"
	StrategyAI    = "ai"

	defaultTimeout = 10 * time.Second
)

type Config struct {
	// Strategy selects the implementation: "rules" (default) or "ai".
	Strategy string
	// Timeout bounds the AI strategy; on expiry the rules fall back.
	Timeout time.Duration
	// AI is the model-backed strategy; required when Strategy is "ai".
	AI Strategy
}

// Engine is the single entry point collaborators see. Callers are unaware
// which strategy ran.
type Engine struct {
	strategy string
	timeout  time.Duration
	ai       Strategy
}

func New(cfg Config) *Engine {
	e := &Engine{
		strategy: cfg.Strategy,
		timeout:  cfg.Timeout,
		ai:       cfg.AI,
	}
	if e.strategy == "" || e.ai == nil {
		e.strategy = StrategyRules
	}
	if e.timeout == 0 {
		e.timeout = defaultTimeout
	}
	return e
}

// Strategy reports which strategy the engine is configured to run.
func (e *Engine) Strategy() string {
	return e.strategy
}

// Analyze classifies a request against the project scope. It never returns
// an error for ambiguous or empty analysis input; the only error cases are
// caller misuse and caller cancellation.
func (e *Engine) Analyze(ctx context.Context, project ProjectContext, req Request) (*Result, error) {
	if err := validateInput(project); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if e.strategy == StrategyAI {
		result, err := e.runAI(ctx, project, req)
		if err == nil {
			return result, nil
		}
		if ctx.Err() != nil {
			// The caller itself was canceled; no verdict should be recorded.
			return nil, ctx.Err()
		}

		logger.Warn("AI analysis failed, falling back to rules", zap.Error(err))

		fallback := analyzeWithRules(project, req)
		fallback.Indicators = append(fallback.Indicators, Indicator{
			Type:        IndicatorFallbackUsed,
			Description: fmt.Sprintf("model-backed analysis unavailable (%v); rule-based result shown", err),
		})
		return fallback, nil
	}

	return analyzeWithRules(project, req), nil
}

func (e *Engine) runAI(ctx context.Context, project ProjectContext, req Request) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	result, err := e.ai(ctx, project, req)
	if err != nil {
		return nil, err
	}

	// Malformed output from a non-reference strategy is a provider failure.
	if err := validateResult(result, project); err != nil {
		return nil, fmt.Errorf("strategy returned malformed result: %w", err)
	}

	return result, nil
}

// analyzeWithRules is the deterministic reference strategy: a pure function
// of its inputs, byte-for-byte reproducible.
func analyzeWithRules(project ProjectContext, req Request) *Result {
	if strings.TrimSpace(req.Content) == "" {
		return &Result{
			Classification:  ClassificationClarification,
			Confidence:      emptyRequestConfidence,
			Reasoning:       emptyRequestReasoning,
			SuggestedAction: ActionClarify,
			Indicators: []Indicator{{
				Type:        IndicatorEmptyRequest,
				Description: "request content is empty",
			}},
		}
	}

	text := strings.TrimSpace(req.Title + "\n" + req.Content)

	matches := matchScopeItems(text, project.ScopeItems)
	indicators := scanIndicators(text)

	var best *Match
	var bestScore float64
	if len(matches) > 0 {
		best = &matches[0]
		bestScore = best.Score
	}

	if reinforcement := reinforcementIndicator(tokenSet(text), best); reinforcement != nil {
		indicators = append(indicators, *reinforcement)
	}

	d := decide(bestScore, aggregateTotals(indicators))

	matched := make([]string, 0, maxMatched)
	for _, m := range matches {
		if len(matched) == maxMatched {
			break
		}
		matched = append(matched, m.Item.ID)
	}

	return &Result{
		Classification:    d.classification,
		Confidence:        d.confidence,
		Reasoning:         composeReasoning(d, best, indicators),
		SuggestedAction:   d.action,
		MatchedScopeItems: matched,
		Indicators:        indicators,
	}
}

func validateInput(project ProjectContext) error {
	for i, item := range project.ScopeItems {
		if item.ID == "" {
			return fmt.Errorf("%w: scope item %d has no id", ErrInvalidInput, i)
		}
		if strings.TrimSpace(item.Title) == "" {
			return fmt.Errorf("%w: scope item %q has no title", ErrInvalidInput, item.ID)
		}
	}
	return nil
}

// validateResult enforces the contract every strategy must satisfy before its
// output is accepted.
func validateResult(r *Result, project ProjectContext) error {
	if r == nil {
		return errors.New("nil result")
	}
	if !ValidClassification(r.Classification) {
		return fmt.Errorf("unknown classification %q", r.Classification)
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return fmt.Errorf("confidence %v out of range", r.Confidence)
	}
	if strings.TrimSpace(r.Reasoning) == "" {
		return errors.New("empty reasoning")
	}
	switch r.SuggestedAction {
	case ActionAccept, ActionPropose, ActionClarify:
	default:
		return fmt.Errorf("unknown suggested action %q", r.SuggestedAction)
	}

	known := make(map[string]struct{}, len(project.ScopeItems))
	for _, item := range project.ScopeItems {
		known[item.ID] = struct{}{}
	}
	for _, id := range r.MatchedScopeItems {
		if _, ok := known[id]; !ok {
			return fmt.Errorf("matched scope item %q is not part of the project", id)
		}
	}

	return nil
}
