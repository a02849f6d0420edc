package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProject() ProjectContext {
	return ProjectContext{
		Description: "Marketing site for a small bakery",
		ScopeItems: []ScopeItem{
			{ID: "item-home", Title: "Homepage design", Description: "Layout, hero section, and color scheme for the homepage", Order: 0},
			{ID: "item-about", Title: "About page", Description: "Company story and team bios", Order: 1},
			{ID: "item-contact", Title: "Contact form", Description: "Form with email notifications", Order: 2},
		},
	}
}

func rulesEngine() *Engine {
	return New(Config{})
}

func TestAnalyze_InScope(t *testing.T) {
	result, err := rulesEngine().Analyze(context.Background(), testProject(), Request{
		Content: "Here are the team bios for the about page",
	})

	require.NoError(t, err)
	assert.Equal(t, ClassificationInScope, result.Classification)
	assert.Equal(t, ActionAccept, result.SuggestedAction)
	require.NotEmpty(t, result.MatchedScopeItems)
	assert.Equal(t, "item-about", result.MatchedScopeItems[0])
	assert.Greater(t, result.Confidence, 0.8)
	assert.Contains(t, result.Reasoning, "About page")

	// Restating the item title verbatim registers as reinforcement.
	assert.Equal(t, 1, countByType(result.Indicators)[IndicatorReinforcement])
}

func TestAnalyze_OutOfScope(t *testing.T) {
	result, err := rulesEngine().Analyze(context.Background(), testProject(), Request{
		Content: "Oh and can you also add a blog? Shouldn't take long.",
	})

	require.NoError(t, err)
	assert.Equal(t, ClassificationOutOfScope, result.Classification)
	assert.Equal(t, ActionPropose, result.SuggestedAction)
	assert.Greater(t, result.Confidence, 0.8)
	assert.GreaterOrEqual(t, countByType(result.Indicators)[IndicatorScopeCreep], 3)
}

func TestAnalyze_ClarificationQuestion(t *testing.T) {
	result, err := rulesEngine().Analyze(context.Background(), testProject(), Request{
		Content: "What CMS will you use for the homepage?",
	})

	require.NoError(t, err)
	assert.Equal(t, ClassificationClarification, result.Classification)
	assert.Equal(t, ActionClarify, result.SuggestedAction)
	assert.InDelta(t, 0.75, result.Confidence, 0.0001)
}

func TestAnalyze_Revision(t *testing.T) {
	result, err := rulesEngine().Analyze(context.Background(), testProject(), Request{
		Content: "Can we change the color scheme on the homepage design?",
	})

	require.NoError(t, err)
	assert.Equal(t, ClassificationRevision, result.Classification)
	assert.Equal(t, ActionAccept, result.SuggestedAction)
	require.NotEmpty(t, result.MatchedScopeItems)
	assert.Equal(t, "item-home", result.MatchedScopeItems[0])
	assert.Contains(t, result.Reasoning, "Homepage design")
}

func TestAnalyze_NoEvidenceDefaultsOutOfScope(t *testing.T) {
	result, err := rulesEngine().Analyze(context.Background(), testProject(), Request{
		Content: "Dragon fruit logistics memo attached",
	})

	require.NoError(t, err)
	assert.Equal(t, ClassificationOutOfScope, result.Classification)
	assert.Equal(t, ActionPropose, result.SuggestedAction)
	assert.InDelta(t, noEvidenceConfidence, result.Confidence, 0.0001)
	assert.Empty(t, result.MatchedScopeItems)
}

func TestAnalyze_EmptyContent(t *testing.T) {
	result, err := rulesEngine().Analyze(context.Background(), testProject(), Request{
		Title:   "Re: project",
		Content: "   \n\t ",
	})

	require.NoError(t, err)
	assert.Equal(t, ClassificationClarification, result.Classification)
	assert.Equal(t, ActionClarify, result.SuggestedAction)
	assert.InDelta(t, emptyRequestConfidence, result.Confidence, 0.0001)
	assert.Equal(t, emptyRequestReasoning, result.Reasoning)
	assert.Equal(t, 1, countByType(result.Indicators)[IndicatorEmptyRequest])
}

func TestAnalyze_EmptyScopeListIsNotAnError(t *testing.T) {
	result, err := rulesEngine().Analyze(context.Background(), ProjectContext{}, Request{
		Content: "Please add a newsletter signup",
	})

	require.NoError(t, err)
	assert.Equal(t, ClassificationOutOfScope, result.Classification)
	assert.Empty(t, result.MatchedScopeItems)
}

func TestAnalyze_InvalidScopeItems(t *testing.T) {
	tests := []struct {
		name  string
		items []ScopeItem
	}{
		{"missing id", []ScopeItem{{Title: "Homepage design"}}},
		{"missing title", []ScopeItem{{ID: "item-1", Title: "  "}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rulesEngine().Analyze(context.Background(), ProjectContext{ScopeItems: tt.items}, Request{
				Content: "anything",
			})
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestAnalyze_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := rulesEngine().Analyze(ctx, testProject(), Request{Content: "anything"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyze_Deterministic(t *testing.T) {
	engine := rulesEngine()
	req := Request{
		Title:   "A few things",
		Content: "Also, what about the contact form? Can you change the color scheme too?",
	}

	first, err := engine.Analyze(context.Background(), testProject(), req)
	require.NoError(t, err)
	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := engine.Analyze(context.Background(), testProject(), req)
		require.NoError(t, err)
		require.Equal(t, first, again)

		againJSON, err := json.Marshal(again)
		require.NoError(t, err)
		require.Equal(t, firstJSON, againJSON)
	}
}

func TestAnalyze_ResultInvariants(t *testing.T) {
	contents := []string{
		"Here are the team bios for the about page",
		"Oh and can you also add a blog?",
		"What CMS will you use?",
		"Can we change the color scheme on the homepage design?",
		"completely unrelated text about gardening",
	}

	project := testProject()
	engine := rulesEngine()

	for _, content := range contents {
		result, err := engine.Analyze(context.Background(), project, Request{Content: content})
		require.NoError(t, err)

		require.NoError(t, validateResult(result, project), "content: %s", content)
		assert.LessOrEqual(t, len(result.MatchedScopeItems), maxMatched)
	}
}

func TestNew_FallsBackToRulesWithoutAIStrategy(t *testing.T) {
	engine := New(Config{Strategy: StrategyAI})
	assert.Equal(t, StrategyRules, engine.Strategy())
}

func aiEngine(strategy Strategy) *Engine {
	return New(Config{Strategy: StrategyAI, Timeout: 100 * time.Millisecond, AI: strategy})
}

func TestAnalyze_AISuccess(t *testing.T) {
	want := &Result{
		Classification:    ClassificationInScope,
		Confidence:        0.9,
		Reasoning:         "Covered by the agreed homepage work.",
		SuggestedAction:   ActionAccept,
		MatchedScopeItems: []string{"item-home"},
	}

	engine := aiEngine(func(ctx context.Context, project ProjectContext, req Request) (*Result, error) {
		return want, nil
	})

	result, err := engine.Analyze(context.Background(), testProject(), Request{Content: "homepage tweaks"})
	require.NoError(t, err)
	assert.Equal(t, want, result)
	assert.Zero(t, countByType(result.Indicators)[IndicatorFallbackUsed])
}

func TestAnalyze_AIFailureFallsBackToRules(t *testing.T) {
	engine := aiEngine(func(ctx context.Context, project ProjectContext, req Request) (*Result, error) {
		return nil, errors.New("provider unavailable")
	})

	result, err := engine.Analyze(context.Background(), testProject(), Request{
		Content: "Here are the team bios for the about page",
	})

	require.NoError(t, err)
	assert.Equal(t, ClassificationInScope, result.Classification)
	assert.Equal(t, 1, countByType(result.Indicators)[IndicatorFallbackUsed])
}

func TestAnalyze_AIMalformedResultFallsBack(t *testing.T) {
	malformed := []*Result{
		{Classification: "banana", Confidence: 0.5, Reasoning: "x", SuggestedAction: ActionAccept},
		{Classification: ClassificationInScope, Confidence: 2.0, Reasoning: "x", SuggestedAction: ActionAccept},
		{Classification: ClassificationInScope, Confidence: 0.5, Reasoning: "", SuggestedAction: ActionAccept},
		{Classification: ClassificationInScope, Confidence: 0.5, Reasoning: "x", SuggestedAction: "ship it"},
		{Classification: ClassificationInScope, Confidence: 0.5, Reasoning: "x", SuggestedAction: ActionAccept, MatchedScopeItems: []string{"not-a-real-item"}},
	}

	for _, bad := range malformed {
		engine := aiEngine(func(ctx context.Context, project ProjectContext, req Request) (*Result, error) {
			return bad, nil
		})

		result, err := engine.Analyze(context.Background(), testProject(), Request{Content: "anything at all"})
		require.NoError(t, err)
		assert.Equal(t, 1, countByType(result.Indicators)[IndicatorFallbackUsed])
		require.NoError(t, validateResult(result, testProject()))
	}
}

func TestAnalyze_AITimeoutFallsBack(t *testing.T) {
	engine := New(Config{
		Strategy: StrategyAI,
		Timeout:  20 * time.Millisecond,
		AI: func(ctx context.Context, project ProjectContext, req Request) (*Result, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	})

	result, err := engine.Analyze(context.Background(), testProject(), Request{
		Content: "Oh and can you also add a blog?",
	})

	require.NoError(t, err)
	assert.Equal(t, ClassificationOutOfScope, result.Classification)
	assert.Equal(t, 1, countByType(result.Indicators)[IndicatorFallbackUsed])
}

func TestAnalyze_CallerCancellationIsNotMaskedByFallback(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	engine := New(Config{
		Strategy: StrategyAI,
		Timeout:  time.Second,
		AI: func(ctx context.Context, project ProjectContext, req Request) (*Result, error) {
			cancel()
			<-ctx.Done()
			return nil, ctx.Err()
		},
	})

	_, err := engine.Analyze(ctx, testProject(), Request{Content: "anything"})
	assert.ErrorIs(t, err, context.Canceled)
}
