package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchScopeItems_RanksOverlap(t *testing.T) {
	items := []ScopeItem{
		{ID: "home", Title: "Homepage design", Description: "Layout, hero section, and color scheme for the homepage", Order: 0},
		{ID: "about", Title: "About page", Description: "Company story and team bios", Order: 1},
		{ID: "pay", Title: "Payment integration", Description: "Stripe checkout flow", Order: 2},
	}

	matches := matchScopeItems("Need the about page finished with the team bios", items)

	require.NotEmpty(t, matches)
	assert.Equal(t, "about", matches[0].Item.ID)
	for _, m := range matches {
		assert.NotEqual(t, "pay", m.Item.ID, "zero-overlap item should be dropped")
	}
}

func TestMatchScopeItems_Score(t *testing.T) {
	items := []ScopeItem{
		{ID: "about", Title: "About page", Description: "Company story and team bios", Order: 0},
	}

	// Item tokens: about, page, company, story, team, bios (6).
	// Request overlaps on "about" and "page", plus the verbatim title bigram.
	matches := matchScopeItems("Need the about page finished", items)

	require.Len(t, matches, 1)
	assert.InDelta(t, 2.0/6.0+phraseBonus, matches[0].Score, 0.001)
}

func TestMatchScopeItems_ShortItemDenominator(t *testing.T) {
	items := []ScopeItem{
		{ID: "logo", Title: "Logo", Order: 0},
	}

	// One content token; the denominator is floored at minItemTokens, and the
	// single-word title earns no phrase bonus.
	matches := matchScopeItems("Where is the logo", items)

	require.Len(t, matches, 1)
	assert.InDelta(t, 1.0/float64(minItemTokens), matches[0].Score, 0.001)
}

func TestMatchScopeItems_TieBreaksByOrder(t *testing.T) {
	items := []ScopeItem{
		{ID: "second", Title: "Blog setup", Order: 5},
		{ID: "first", Title: "Blog migration", Order: 2},
	}

	matches := matchScopeItems("blog", items)

	require.Len(t, matches, 2)
	assert.InDelta(t, matches[0].Score, matches[1].Score, 0.0001)
	assert.Equal(t, "first", matches[0].Item.ID)
	assert.Equal(t, "second", matches[1].Item.ID)
}

func TestMatchScopeItems_ScoreCappedAtOne(t *testing.T) {
	items := []ScopeItem{
		{ID: "form", Title: "Contact form", Description: "Contact form", Order: 0},
	}

	matches := matchScopeItems("Please build the contact form", items)

	require.Len(t, matches, 1)
	assert.LessOrEqual(t, matches[0].Score, 1.0)
}

func TestMatchScopeItems_EmptyInputs(t *testing.T) {
	assert.Empty(t, matchScopeItems("anything at all", nil))
	assert.Empty(t, matchScopeItems("", []ScopeItem{{ID: "a", Title: "Homepage design"}}))
}

func TestTitlePhraseInText(t *testing.T) {
	tests := []struct {
		name  string
		title string
		text  string
		want  bool
	}{
		{"bigram present", "About page", "finish the about page soon", true},
		{"bigram present with punctuation stripped", "Contact form", "the contact-form is broken", true},
		{"words present but separated", "About page", "what about the next page", false},
		{"single-word title never matches", "Logo", "the logo is done", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, titlePhraseInText(tt.title, normalizeText(tt.text)))
		})
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello, World!", "hello world"},
		{"  spaced\t\tout \n text ", "spaced out text"},
		{"MiXeD-CaSe_123", "mixed case 123"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeText(tt.in))
	}
}

func TestTokenize_DropsStopWords(t *testing.T) {
	tokens := tokenize("Can you please update the homepage for us")

	assert.Contains(t, tokens, "update")
	assert.Contains(t, tokens, "homepage")
	assert.NotContains(t, tokens, "can")
	assert.NotContains(t, tokens, "you")
	assert.NotContains(t, tokens, "please")
	assert.NotContains(t, tokens, "the")
}

func TestTokenize_Empty(t *testing.T) {
	assert.Empty(t, tokenize("   "))
	assert.Empty(t, tokenize(""))
}
