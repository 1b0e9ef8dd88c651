package llm

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mingqiu/gradecheck/internal/model"
)

// NewProvider creates a provider from configuration. An empty provider name
// means commentary is disabled and returns (nil, nil).
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)
	case "ollama":
		return NewOllamaProvider(config)
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, ollama)", config.Provider)
	}
}

// Commentator wraps a provider and produces the rendered commentary section.
type Commentator struct {
	provider Provider
	config   Config
}

// NewCommentator creates a Commentator, or nil when commentary is disabled.
func NewCommentator(config Config) (*Commentator, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, nil
	}
	return &Commentator{provider: provider, config: config}, nil
}

// Comment generates Markdown commentary for the batch. The worst-scoring
// non-correct rows are passed as grounding examples.
func (c *Commentator) Comment(ctx context.Context, summary model.Summary, results []model.EvaluationResult) (string, error) {
	resp, err := c.provider.Comment(ctx, CommentRequest{
		Summary:   summary,
		Examples:  worstExamples(results, 5),
		Model:     c.config.Model,
		MaxTokens: c.config.MaxTokens,
	})
	if err != nil {
		return "", err
	}
	return RenderMarkdown(resp), nil
}

// RenderMarkdown wraps the commentary with a header that flags its origin.
func RenderMarkdown(resp *CommentResponse) string {
	var b strings.Builder
	b.WriteString("## 评估报告点评（模型生成）\n\n")
	fmt.Fprintf(&b, "> 由 %s 生成，仅供参考，不影响判定结果。\n\n", resp.Model)
	b.WriteString(resp.Commentary)
	b.WriteString("\n")
	return b.String()
}

// worstExamples picks up to n non-correct rows with the lowest scores.
func worstExamples(results []model.EvaluationResult, n int) []model.EvaluationResult {
	var picked []model.EvaluationResult
	for _, r := range results {
		if r.Verdict != model.VerdictCorrect {
			picked = append(picked, r)
		}
	}
	sort.SliceStable(picked, func(i, j int) bool {
		return picked[i].CombinedScore < picked[j].CombinedScore
	})
	if len(picked) > n {
		picked = picked[:n]
	}
	return picked
}
