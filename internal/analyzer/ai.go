package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/scopesentry/backend/internal/llm"
	"github.com/scopesentry/backend/internal/metrics"
)

// CompletionClient is the slice of the LLM client the AI strategy needs.
type CompletionClient interface {
	Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error)
}

const aiSystemPrompt = `You are a scope creep detection assistant for freelancers. You receive a project's agreed scope items and a client request, and decide whether the request is covered by the scope.

Respond with ONLY a JSON object, no prose, no markdown, with these fields:
- "classification": one of "in_scope", "out_of_scope", "clarification_needed", "revision"
- "confidence": a number from 0.0 to 1.0
- "reasoning": one or two sentences explaining the verdict
- "suggested_action": one of "accept", "propose", "clarify"
- "matched_scope_items": array of scope item ids the request relates to, most relevant first, possibly empty
- "indicators": array of {"type", "description", "weight"} objects for every signal you relied on; use type "scope_creep", "clarification", "revision" or "reinforcement"

Guidelines:
- "in_scope": the request is covered by an agreed scope item
- "out_of_scope": the request asks for work no scope item covers; suggest "propose"
- "clarification_needed": the client is asking a question, not requesting work
- "revision": the client wants an agreed deliverable changed
- Watch for scope creep phrasing: "also", "additionally", "one more thing", "while you're at it", "quick addition", "shouldn't take long", "can you also"`

// NewAIStrategy wraps an LLM client as an analysis Strategy. Output shape is
// validated by the engine before it is accepted.
func NewAIStrategy(client CompletionClient) Strategy {
	return func(ctx context.Context, project ProjectContext, req Request) (*Result, error) {
		resp, err := client.Complete(ctx, llm.CompletionRequest{
			SystemPrompt: aiSystemPrompt,
			UserPrompt:   buildUserPrompt(project, req),
		})
		if err != nil {
			return nil, fmt.Errorf("model completion failed: %w", err)
		}

		metrics.LLMTokensUsed.WithLabelValues("prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.LLMTokensUsed.WithLabelValues("completion").Add(float64(resp.Usage.CompletionTokens))

		result, err := parseAIResponse(resp.Content)
		if err != nil {
			return nil, fmt.Errorf("failed to parse model response: %w", err)
		}

		return result, nil
	}
}

func buildUserPrompt(project ProjectContext, req Request) string {
	var b strings.Builder

	b.WriteString("## Agreed scope items:\n")
	if len(project.ScopeItems) == 0 {
		b.WriteString("(none defined)\n")
	}
	for _, item := range project.ScopeItems {
		b.WriteString(fmt.Sprintf("- id=%s: %s", item.ID, item.Title))
		if item.Description != "" {
			b.WriteString(" — " + item.Description)
		}
		if item.Category != "" {
			b.WriteString(" [" + item.Category + "]")
		}
		b.WriteString("\n")
	}

	if project.Description != "" {
		b.WriteString("\n## Project context:\n")
		b.WriteString(project.Description)
		b.WriteString("\n")
	}

	b.WriteString("\n## Client request:\n")
	if req.Title != "" {
		b.WriteString("Subject: " + req.Title + "\n")
	}
	b.WriteString(req.Content)
	b.WriteString("\n\nAnalyze this request and respond with the JSON object.")

	return b.String()
}

type aiResponse struct {
	Classification    string      `json:"classification"`
	Confidence        float64     `json:"confidence"`
	Reasoning         string      `json:"reasoning"`
	SuggestedAction   string      `json:"suggested_action"`
	MatchedScopeItems []string    `json:"matched_scope_items"`
	Indicators        []Indicator `json:"indicators"`
}

func parseAIResponse(content string) (*Result, error) {
	text := strings.TrimSpace(content)

	// Models wrap JSON in markdown fences despite instructions.
	if strings.HasPrefix(text, "```") {
		lines := strings.Split(text, "\n")
		lines = lines[1:]
		if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
			lines = lines[:len(lines)-1]
		}
		text = strings.Join(lines, "\n")
	}

	var parsed aiResponse
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, err
	}

	return &Result{
		Classification:    Classification(parsed.Classification),
		Confidence:        parsed.Confidence,
		Reasoning:         parsed.Reasoning,
		SuggestedAction:   SuggestedAction(parsed.SuggestedAction),
		MatchedScopeItems: parsed.MatchedScopeItems,
		Indicators:        parsed.Indicators,
	}, nil
}
