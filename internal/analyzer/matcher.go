package analyzer

import (
	"sort"
	"strings"
	"unicode"

	"github.com/jdkato/prose/v2"
)

const (
	// matchFloor drops matches too weak to be evidence of anything.
	matchFloor = 0.05
	// minItemTokens keeps one-word scope items from producing inflated scores.
	minItemTokens = 3
	phraseBonus   = 0.15
	// strongMatch is the threshold the decision policy treats as real fit.
	strongMatch = 0.35
	maxMatched  = 3
)

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"but": {}, "by": {}, "can": {}, "could": {}, "do": {}, "does": {},
	"for": {}, "i": {}, "in": {}, "is": {}, "it": {}, "me": {}, "my": {},
	"of": {}, "on": {}, "or": {}, "our": {}, "please": {}, "that": {},
	"the": {}, "this": {}, "to": {}, "us": {}, "we": {}, "would": {},
	"you": {}, "your": {},
}

// Match pairs a scope item with its relevance score, in [0, 1].
type Match struct {
	Item  ScopeItem
	Score float64
}

// matchScopeItems ranks scope items by lexical overlap with the request text.
// Pure and deterministic: identical inputs always produce identical output.
func matchScopeItems(requestText string, items []ScopeItem) []Match {
	normalized := normalizeText(requestText)
	requestTokens := tokenSet(requestText)

	var matches []Match
	for _, item := range items {
		itemText := item.Title
		if item.Description != "" {
			itemText += " " + item.Description
		}
		if item.Category != "" {
			itemText += " " + item.Category
		}

		itemTokens := tokenSet(itemText)
		if len(itemTokens) == 0 {
			continue
		}

		overlap := 0
		for tok := range itemTokens {
			if _, ok := requestTokens[tok]; ok {
				overlap++
			}
		}

		denom := len(itemTokens)
		if denom < minItemTokens {
			denom = minItemTokens
		}
		score := float64(overlap) / float64(denom)

		// A verbatim title phrase is stronger evidence than scattered overlap.
		if titlePhraseInText(item.Title, normalized) {
			score += phraseBonus
		}
		if score > 1.0 {
			score = 1.0
		}

		if score >= matchFloor {
			matches = append(matches, Match{Item: item, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Item.Order < matches[j].Item.Order
	})

	return matches
}

// titlePhraseInText reports whether any two consecutive title words appear
// verbatim in the normalized request text.
func titlePhraseInText(title, normalized string) bool {
	words := strings.Fields(normalizeText(title))
	if len(words) < 2 {
		return false
	}

	for i := 0; i+1 < len(words); i++ {
		bigram := words[i] + " " + words[i+1]
		if strings.Contains(normalized, bigram) {
			return true
		}
	}
	return false
}

// normalizeText lowercases, strips punctuation, and collapses whitespace.
func normalizeText(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// tokenize splits text into normalized content tokens, dropping stop words.
func tokenize(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var raw []string
	doc, err := prose.NewDocument(text,
		prose.WithSegmentation(false),
		prose.WithTagging(false),
		prose.WithExtraction(false),
	)
	if err == nil {
		for _, tok := range doc.Tokens() {
			raw = append(raw, tok.Text)
		}
	} else {
		raw = strings.Fields(text)
	}

	var tokens []string
	for _, t := range raw {
		cleaned := normalizeText(t)
		for _, word := range strings.Fields(cleaned) {
			if _, stop := stopWords[word]; stop {
				continue
			}
			tokens = append(tokens, word)
		}
	}

	return tokens
}

func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range tokenize(text) {
		set[tok] = struct{}{}
	}
	return set
}
