// Package llm generates optional natural-language commentary for an
// evaluation report. Commentary runs after grading and never influences any
// verdict or score.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/mingqiu/gradecheck/internal/model"
)

// Provider is a chat-completion backend.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Comment generates commentary on the evaluation summary.
	Comment(ctx context.Context, req CommentRequest) (*CommentResponse, error)

	// IsAvailable checks that the provider is configured and reachable.
	IsAvailable(ctx context.Context) bool
}

// CommentRequest carries the scored batch for commentary.
type CommentRequest struct {
	Summary model.Summary

	// Examples are a handful of non-correct rows to ground the commentary.
	Examples []model.EvaluationResult

	// Prompt overrides the default prompt when non-empty.
	Prompt string

	Model     string
	MaxTokens int
}

// CommentResponse is the generated commentary.
type CommentResponse struct {
	Commentary string
	Model      string
	TokensUsed int
}

// Config holds provider configuration.
type Config struct {
	Provider  string // "openai", "ollama", "" (disabled)
	Model     string
	APIKey    string
	BaseURL   string
	Timeout   int // seconds
	MaxTokens int
}

// DefaultConfig returns sensible defaults with commentary disabled.
func DefaultConfig() Config {
	return Config{
		Provider:  "",
		Timeout:   30,
		MaxTokens: 1000,
	}
}

// ConfigFromModel converts the runtime configuration section.
func ConfigFromModel(cfg model.LLMConfig) Config {
	c := DefaultConfig()
	c.Provider = cfg.Provider
	c.Model = cfg.Model
	c.APIKey = cfg.APIKey
	c.BaseURL = cfg.BaseURL
	if cfg.MaxTokens > 0 {
		c.MaxTokens = cfg.MaxTokens
	}
	return c
}

// BuildPrompt constructs the default commentary prompt. The model only sees
// aggregate statistics and already-graded examples; it has no way to change
// them.
func BuildPrompt(req CommentRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are reviewing the results of an automated grading run over AI-generated answers to data-analysis questions.

RULES:
1. The verdicts and scores below are final. Do not re-grade, dispute, or second-guess them.
2. Describe failure patterns and their likely causes in the AI answers.
3. Keep the commentary to 4-6 sentences, in the language of the examples.

Statistics:
- total: %d
- correct: %d
- partially correct: %d
- wrong: %d
- accuracy: %.2f%%
- mean score: %.4f

Most frequent issues:
`, req.Summary.Total, req.Summary.Correct, req.Summary.Partial, req.Summary.Wrong,
		req.Summary.Accuracy, req.Summary.AvgScore)

	for i, ic := range req.Summary.IssueCounts {
		if i >= 5 {
			break
		}
		fmt.Fprintf(&b, "- %s: %d\n", ic.Issue, ic.Count)
	}

	if len(req.Examples) > 0 {
		b.WriteString("\nExample rows that were not fully correct:\n")
		for i, ex := range req.Examples {
			if i >= 5 {
				break
			}
			fmt.Fprintf(&b, "- [%s] verdict=%s score=%.4f\n  AI: %s\n  expected: %s\n",
				ex.ID, ex.Verdict, ex.CombinedScore, ex.AIAnswer, ex.Expected)
		}
	}

	b.WriteString("\nWrite the commentary now.")
	return b.String()
}
