package analyzer

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// composeReasoning renders a deterministic human-readable explanation from
// the same signals the decision policy used.
func composeReasoning(d decision, best *Match, indicators []Indicator) string {
	signals := topSignals(indicators, 2)

	switch d.rule {
	case 1:
		if signals != "" {
			return fmt.Sprintf("The request reads as a question rather than new work (%s). Answer the client before committing to anything.", signals)
		}
		return "The request reads as a question rather than new work. Answer the client before committing to anything."

	case 2:
		if signals != "" {
			return fmt.Sprintf("The request introduces work with no strong match to the agreed scope (%s). Send a proposal or quote before starting.", signals)
		}
		return "The request introduces work with no strong match to the agreed scope. Send a proposal or quote before starting."

	case 3:
		if best != nil {
			if signals != "" {
				return fmt.Sprintf("The request asks for changes to the agreed item %q (%s). Treat it as a revision of existing work.", best.Item.Title, signals)
			}
			return fmt.Sprintf("The request asks for changes to the agreed item %q. Treat it as a revision of existing work.", best.Item.Title)
		}
		if signals != "" {
			return fmt.Sprintf("The request asks for changes to agreed work (%s). Treat it as a revision.", signals)
		}
		return "The request asks for changes to agreed work. Treat it as a revision."

	case 4:
		if best != nil {
			return fmt.Sprintf("The request lines up with the agreed scope item %q (%.0f%% overlap). Proceed as planned work.", best.Item.Title, best.Score*100)
		}
		return "The request lines up with the agreed scope. Proceed as planned work."

	default:
		return "No scope item matches this request and no clear signals were detected. Defaulting to out of scope; review before replying."
	}
}

const emptyRequestReasoning = "The request has no content to analyze. Ask the client to restate what they need."

// topSignals joins the descriptions of the strongest indicators by absolute
// weight, preserving scan order on ties.
func topSignals(indicators []Indicator, n int) string {
	if len(indicators) == 0 {
		return ""
	}

	ranked := make([]Indicator, len(indicators))
	copy(ranked, indicators)
	sort.SliceStable(ranked, func(i, j int) bool {
		return math.Abs(ranked[i].Weight) > math.Abs(ranked[j].Weight)
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}

	descriptions := make([]string, 0, len(ranked))
	for _, ind := range ranked {
		descriptions = append(descriptions, ind.Description)
	}

	return strings.Join(descriptions, "; ")
}
