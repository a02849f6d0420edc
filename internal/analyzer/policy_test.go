package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregateTotals_ClampsToCap(t *testing.T) {
	creep := Indicator{Type: IndicatorScopeCreep, Weight: 0.20}
	totals := aggregateTotals([]Indicator{creep, creep, creep, creep})

	assert.InDelta(t, 0.60, totals.scopeCreep, 0.0001)
}

func TestAggregateTotals_ReinforcementDampens(t *testing.T) {
	totals := aggregateTotals([]Indicator{
		{Type: IndicatorScopeCreep, Weight: 0.20},
		{Type: IndicatorClarification, Weight: 0.25},
		{Type: IndicatorRevision, Weight: 0.15},
		{Type: IndicatorReinforcement, Weight: -0.30},
	})

	assert.InDelta(t, -0.10, totals.scopeCreep, 0.0001)
	assert.InDelta(t, -0.05, totals.clarification, 0.0001)
	// Revision evidence is not dampened.
	assert.InDelta(t, 0.15, totals.revision, 0.0001)
}

func TestAggregateTotals_ReinforcementAppliedAfterCap(t *testing.T) {
	creep := Indicator{Type: IndicatorScopeCreep, Weight: 0.20}
	totals := aggregateTotals([]Indicator{
		creep, creep, creep, creep, creep,
		{Type: IndicatorReinforcement, Weight: -0.30},
	})

	// 5 × 0.20 clamps to 0.60 first, then the damper applies.
	assert.InDelta(t, 0.30, totals.scopeCreep, 0.0001)
}

func TestDecide_RuleOrder(t *testing.T) {
	tests := []struct {
		name           string
		bestScore      float64
		totals         categoryTotals
		wantRule       int
		classification Classification
		action         SuggestedAction
	}{
		{
			name:           "clarification dominates everything",
			bestScore:      0.9,
			totals:         categoryTotals{clarification: 0.25, scopeCreep: 0.20, revision: 0.15},
			wantRule:       1,
			classification: ClassificationClarification,
			action:         ActionClarify,
		},
		{
			name:           "scope creep with weak match",
			bestScore:      0.2,
			totals:         categoryTotals{scopeCreep: 0.60},
			wantRule:       2,
			classification: ClassificationOutOfScope,
			action:         ActionPropose,
		},
		{
			name:           "revision of strongly matched work",
			bestScore:      0.5,
			totals:         categoryTotals{revision: 0.15},
			wantRule:       3,
			classification: ClassificationRevision,
			action:         ActionAccept,
		},
		{
			name:           "strong match with no creep",
			bestScore:      0.8,
			totals:         categoryTotals{},
			wantRule:       4,
			classification: ClassificationInScope,
			action:         ActionAccept,
		},
		{
			name:           "strong match with dampened creep",
			bestScore:      0.8,
			totals:         categoryTotals{scopeCreep: -0.10},
			wantRule:       4,
			classification: ClassificationInScope,
			action:         ActionAccept,
		},
		{
			name:           "creep alongside strong match falls through to default",
			bestScore:      0.5,
			totals:         categoryTotals{scopeCreep: 0.20},
			wantRule:       5,
			classification: ClassificationOutOfScope,
			action:         ActionPropose,
		},
		{
			name:           "no evidence at all",
			bestScore:      0,
			totals:         categoryTotals{},
			wantRule:       5,
			classification: ClassificationOutOfScope,
			action:         ActionPropose,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := decide(tt.bestScore, tt.totals)
			assert.Equal(t, tt.wantRule, d.rule)
			assert.Equal(t, tt.classification, d.classification)
			assert.Equal(t, tt.action, d.action)
			assert.GreaterOrEqual(t, d.confidence, 0.0)
			assert.LessOrEqual(t, d.confidence, 1.0)
		})
	}
}

func TestDecide_Confidence(t *testing.T) {
	t.Run("clarification uncontested", func(t *testing.T) {
		d := decide(0, categoryTotals{clarification: 0.25})
		// 0.5 + 0.5 × (0.25/0.50) − 0.
		assert.InDelta(t, 0.75, d.confidence, 0.0001)
	})

	t.Run("scope creep at cap with no competition", func(t *testing.T) {
		d := decide(0, categoryTotals{scopeCreep: 0.60})
		assert.InDelta(t, 1.0, d.confidence, 0.0001)
	})

	t.Run("competing signal lowers confidence", func(t *testing.T) {
		uncontested := decide(0, categoryTotals{clarification: 0.50})
		contested := decide(0, categoryTotals{clarification: 0.50, scopeCreep: 0.40})
		assert.Less(t, contested.confidence, uncontested.confidence)
	})

	t.Run("no evidence constant", func(t *testing.T) {
		d := decide(0.1, categoryTotals{})
		assert.InDelta(t, noEvidenceConfidence, d.confidence, 0.0001)
	})
}

func TestClampHelpers(t *testing.T) {
	assert.Equal(t, 0.0, clamp01(-0.5))
	assert.Equal(t, 1.0, clamp01(1.5))
	assert.Equal(t, 0.5, clamp01(0.5))
	assert.Equal(t, 0.0, normTotal(-0.2, 0.6))
	assert.Equal(t, 1.0, normTotal(0.9, 0.6))
}
