package analyzer

import (
	"fmt"
	"strings"
)

// Indicator vocabulary. Weights within a category are uniform; each category's
// total contribution is clamped to its cap by the decision policy. Keeping the
// vocabulary as data separates it from the rule order that consumes it.
type vocabulary struct {
	indicatorType string
	weight        float64
	cap           float64
	phrases       []string
}

var vocabularies = []vocabulary{
	{
		indicatorType: IndicatorScopeCreep,
		weight:        0.20,
		cap:           0.60,
		phrases: []string{
			"also",
			"additionally",
			"one more thing",
			"one more request",
			"quick addition",
			"simple addition",
			"while you're at it",
			"shouldn't take long",
			"real quick",
			"easy change",
			"small tweak",
			"small favor",
			"tiny favor",
			"just add",
			"can you also",
			"by the way",
			"oh and",
			"almost forgot",
		},
	},
	{
		indicatorType: IndicatorClarification,
		weight:        0.25,
		cap:           0.50,
		phrases: []string{
			"what about",
			"what do you mean",
			"does this include",
			"how will",
			"how does",
			"can you explain",
			"not sure about",
			"question about",
			"clarify",
			"confused",
		},
	},
	{
		indicatorType: IndicatorRevision,
		weight:        0.15,
		cap:           0.45,
		phrases: []string{
			"change",
			"update",
			"modify",
			"revise",
			"adjust",
			"rework",
			"different",
			"instead",
			"on second thought",
		},
	},
}

const (
	clarificationWeight = 0.25
	reinforcementWeight = -0.30
)

var interrogatives = map[string]struct{}{
	"what": {}, "how": {}, "when": {}, "where": {}, "why": {},
	"which": {}, "who": {}, "does": {}, "will": {}, "is": {}, "are": {},
}

// scanIndicators detects phrase-level cues in the request text, independent of
// any scope item. Matching is case-insensitive substring matching; ambiguity
// is expected and left to the decision policy.
func scanIndicators(text string) []Indicator {
	lowered := strings.Join(strings.Fields(strings.ToLower(text)), " ")

	var indicators []Indicator
	for _, vocab := range vocabularies {
		for _, phrase := range vocab.phrases {
			if strings.Contains(lowered, phrase) {
				indicators = append(indicators, Indicator{
					Type:        vocab.indicatorType,
					Description: fmt.Sprintf("detected phrase %q", phrase),
					Weight:      vocab.weight,
				})
			}
		}
	}

	// A message that opens with an interrogative and carries a question mark
	// is a question about the work, even when no stock phrase matches.
	if strings.Contains(lowered, "?") {
		words := strings.Fields(lowered)
		if len(words) > 0 {
			if _, ok := interrogatives[strings.Trim(words[0], "?.,!")]; ok {
				indicators = append(indicators, Indicator{
					Type:        IndicatorClarification,
					Description: "request is phrased as a question",
					Weight:      clarificationWeight,
				})
			}
		}
	}

	return indicators
}

// reinforcementIndicator fires when the request restates the best-matched
// scope item's title nearly verbatim; it dampens scope-creep and
// clarification signals.
func reinforcementIndicator(requestTokens map[string]struct{}, best *Match) *Indicator {
	if best == nil {
		return nil
	}

	titleTokens := tokenize(best.Item.Title)
	if len(titleTokens) < 2 {
		return nil
	}

	for _, tok := range titleTokens {
		if _, ok := requestTokens[tok]; !ok {
			return nil
		}
	}

	return &Indicator{
		Type:        IndicatorReinforcement,
		Description: fmt.Sprintf("request restates scope item %q", best.Item.Title),
		Weight:      reinforcementWeight,
	}
}
