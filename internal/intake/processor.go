package intake

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/scopesentry/backend/pkg/logger"
)

// Processor normalizes pasted client communication (email bodies, chat
// exports) into plain text before it is logged and analyzed.
type Processor struct {
	maxContentLen int
}

func NewProcessor(maxContentLen int) *Processor {
	if maxContentLen <= 0 {
		maxContentLen = 20000
	}
	return &Processor{maxContentLen: maxContentLen}
}

var (
	htmlTagPattern    = regexp.MustCompile(`<\s*(html|body|div|p|br|span|table|a)\b`)
	whitespacePattern = regexp.MustCompile(`[ \t]+`)
	blankLinePattern  = regexp.MustCompile(`\n{3,}`)
	subjectPattern    = regexp.MustCompile(`(?im)^subject:\s*(.+)$`)
)

// Normalize strips HTML markup when present, collapses whitespace, and
// truncates overlong content. Plain text passes through untouched apart from
// whitespace cleanup.
func (p *Processor) Normalize(raw string) string {
	text := raw

	if htmlTagPattern.MatchString(raw) {
		if stripped, ok := stripHTML(raw); ok {
			text = stripped
		}
	}

	text = whitespacePattern.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")
	text = blankLinePattern.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)

	if len(text) > p.maxContentLen {
		logger.Warn("Request content truncated",
			zap.Int("original_len", len(text)),
			zap.Int("max_len", p.maxContentLen),
		)
		text = text[:p.maxContentLen]
	}

	return text
}

// DeriveTitle returns the given title, or when it is empty, a title pulled
// from a Subject: header or the first line of the content.
func (p *Processor) DeriveTitle(title, content string) string {
	title = strings.TrimSpace(title)
	if title != "" {
		return title
	}

	if m := subjectPattern.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(line) > 80 {
			return line[:77] + "..."
		}
		return line
	}

	return "Untitled request"
}

func stripHTML(raw string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		logger.Warn("Failed to parse HTML content, keeping raw text", zap.Error(err))
		return "", false
	}

	doc.Find("script, style, head").Remove()

	// Block-level elements become line breaks so paragraphs survive.
	doc.Find("p, div, br, li, tr, h1, h2, h3, h4").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	return doc.Text(), true
}
