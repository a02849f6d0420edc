package analyzer

// Decision policy: combines the best lexical match and aggregated indicator
// weights into a classification. The rule order here is the core business
// logic and must not be re-arranged.

const (
	// noEvidenceConfidence applies when nothing matched and nothing fired;
	// the out-of-scope verdict is a conservative default, not an observation.
	noEvidenceConfidence = 0.3
	// emptyRequestConfidence applies to requests with no content at all.
	emptyRequestConfidence = 0.2
)

type categoryTotals struct {
	scopeCreep    float64
	clarification float64
	revision      float64
	reinforcement float64
}

// aggregateTotals sums indicator weights per category, clamping each positive
// category to its cap. Reinforcement (negative) dampens the scope-creep and
// clarification totals; revision evidence is left untouched since it is
// already gated on a strong lexical match.
func aggregateTotals(indicators []Indicator) categoryTotals {
	var raw categoryTotals
	for _, ind := range indicators {
		switch ind.Type {
		case IndicatorScopeCreep:
			raw.scopeCreep += ind.Weight
		case IndicatorClarification:
			raw.clarification += ind.Weight
		case IndicatorRevision:
			raw.revision += ind.Weight
		case IndicatorReinforcement:
			raw.reinforcement += ind.Weight
		}
	}

	totals := categoryTotals{
		scopeCreep:    clampCap(raw.scopeCreep, capFor(IndicatorScopeCreep)),
		clarification: clampCap(raw.clarification, capFor(IndicatorClarification)),
		revision:      clampCap(raw.revision, capFor(IndicatorRevision)),
		reinforcement: raw.reinforcement,
	}

	totals.scopeCreep += totals.reinforcement
	totals.clarification += totals.reinforcement

	return totals
}

type decision struct {
	classification Classification
	action         SuggestedAction
	rule           int
	confidence     float64
}

// decide applies the rules in order; the first matching rule wins.
func decide(bestScore float64, totals categoryTotals) decision {
	creepNorm := normTotal(totals.scopeCreep, capFor(IndicatorScopeCreep))
	clarNorm := normTotal(totals.clarification, capFor(IndicatorClarification))
	revNorm := normTotal(totals.revision, capFor(IndicatorRevision))

	switch {
	case totals.clarification > 0 && totals.clarification > totals.scopeCreep && totals.clarification > totals.revision:
		return decision{
			classification: ClassificationClarification,
			action:         ActionClarify,
			rule:           1,
			confidence:     confidence(clarNorm, maxFloat(creepNorm, revNorm)),
		}

	case totals.scopeCreep > 0 && bestScore < strongMatch:
		return decision{
			classification: ClassificationOutOfScope,
			action:         ActionPropose,
			rule:           2,
			confidence:     confidence(creepNorm, maxFloat(bestScore, revNorm)),
		}

	case totals.revision > 0 && bestScore >= strongMatch:
		return decision{
			classification: ClassificationRevision,
			action:         ActionAccept,
			rule:           3,
			confidence:     confidence(maxFloat(revNorm, bestScore), maxFloat(creepNorm, clarNorm)),
		}

	case bestScore >= strongMatch && totals.scopeCreep <= 0:
		return decision{
			classification: ClassificationInScope,
			action:         ActionAccept,
			rule:           4,
			confidence:     confidence(bestScore, maxFloat(clarNorm, revNorm)),
		}

	default:
		// No strong match and no indicators. Silently under-billing is the
		// failure mode this product exists to prevent, so default the other way.
		return decision{
			classification: ClassificationOutOfScope,
			action:         ActionPropose,
			rule:           5,
			confidence:     noEvidenceConfidence,
		}
	}
}

// confidence rises with the strength of the deciding signal and falls with
// the strength of the next-best competing signal.
func confidence(primary, competing float64) float64 {
	return clamp01(0.5 + 0.5*primary - 0.5*competing)
}

func capFor(indicatorType string) float64 {
	for _, vocab := range vocabularies {
		if vocab.indicatorType == indicatorType {
			return vocab.cap
		}
	}
	return 1.0
}

func normTotal(total, cap float64) float64 {
	if total <= 0 || cap <= 0 {
		return 0
	}
	return clamp01(total / cap)
}

func clampCap(v, cap float64) float64 {
	if v > cap {
		return cap
	}
	return v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
