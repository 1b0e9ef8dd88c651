// Package judge decides whether an AI answer matches its reference answer.
// The decision is a priority-ordered rule chain: fast acceptance paths first
// (containment, list match, full numeric match), then a weighted combination
// of similarity signals. Evaluation is a pure function of the two texts.
package judge

import (
	"fmt"
	"math"
	"strings"

	"github.com/mingqiu/gradecheck/internal/model"
	"github.com/mingqiu/gradecheck/internal/numeric"
	"github.com/mingqiu/gradecheck/internal/similarity"
	"github.com/mingqiu/gradecheck/internal/textnorm"
)

// Diagnostic issue tags. Rendered verbatim in reports and counted in the
// batch summary, so the exact wording is part of the output contract.
const (
	IssueOrderDiffers   = "顺序可能不同但内容一致"
	IssueNumbersMatched = "数值完全匹配"
	IssueEmptyAnswer    = "AI答案为空"
	IssueTooShort       = "AI答案明显过短（可能信息缺失）"
	IssueTooLong        = "AI答案包含过多额外信息"
	IssuePartialOverlap = "部分匹配（可能遗漏元素）"
	IssueOrderOnly      = "顺序差异"
)

// issuePartialNumbers renders the partial numeric match tag, e.g. 数值部分匹配（1/2）.
func issuePartialNumbers(matched, total int) string {
	return fmt.Sprintf("数值部分匹配（%d/%d）", matched, total)
}

// Engine evaluates answers against a fixed rule chain.
type Engine struct {
	norm       *textnorm.Normalizer
	cmp        *numeric.Comparator
	thresholds model.ThresholdConfig
	weights    model.WeightConfig
	rules      []rule
}

// rule is one step of the decision chain. apply returns the final result and
// true when the rule fires; later rules only run if earlier ones did not.
type rule struct {
	name  string
	apply func(*evalContext) (model.EvaluationResult, bool)
}

// evalContext carries the intermediate signals of a single evaluation.
type evalContext struct {
	aiRaw  string
	expRaw string

	normExp     string
	listJaccard float64 // token-set Jaccard from the list-match rule

	// Populated by computeSignals.
	prepared   bool
	relevant   string // AI tokens restricted to expected's vocabulary
	seqRatio   float64
	tokenJacc  float64
	numScore   float64
	hasExpNums bool
	numsFull   bool
	issues     []string
}

// New creates an Engine from the grading configuration.
func New(cfg *model.Config) *Engine {
	e := &Engine{
		norm:       textnorm.New(cfg.Normalizer),
		cmp:        numeric.NewComparator(cfg.Thresholds),
		thresholds: cfg.Thresholds,
		weights:    cfg.Weights,
	}
	e.rules = []rule{
		{name: "containment", apply: e.containmentRule},
		{name: "list-match", apply: e.listMatchRule},
		{name: "numeric-full-match", apply: e.numericFullRule},
		{name: "weighted-combination", apply: e.weightedRule},
	}
	return e
}

// Rules returns the names of the decision chain in evaluation order.
func (e *Engine) Rules() []string {
	names := make([]string, len(e.rules))
	for i, r := range e.rules {
		names[i] = r.name
	}
	return names
}

// Evaluate grades a single AI answer against the expected answer.
func (e *Engine) Evaluate(ai, expected string) model.EvaluationResult {
	ctx := &evalContext{aiRaw: ai, expRaw: expected}
	for _, r := range e.rules {
		if res, ok := r.apply(ctx); ok {
			return res
		}
	}
	// The weighted rule always fires; this is unreachable.
	return e.accept(ctx, 0, nil)
}

// accept builds a shortcut result with the given score and issue list.
func (e *Engine) accept(ctx *evalContext, score float64, issues []string) model.EvaluationResult {
	return model.EvaluationResult{
		AIAnswer:      ctx.aiRaw,
		Expected:      ctx.expRaw,
		Verdict:       model.VerdictCorrect,
		CombinedScore: score,
		SeqRatio:      score,
		Issues:        issues,
	}
}

// containmentRule accepts when the normalized expected answer is embedded
// verbatim in the AI answer. An empty expected answer never triggers.
func (e *Engine) containmentRule(ctx *evalContext) (model.EvaluationResult, bool) {
	if ctx.expRaw == "" {
		return model.EvaluationResult{}, false
	}
	if similarity.Contains(e.norm.Normalize(ctx.expRaw), e.norm.Normalize(ctx.aiRaw)) {
		return e.accept(ctx, 1.0, nil), true
	}
	return model.EvaluationResult{}, false
}

// listMatchRule accepts unordered collections of the same items. The Jaccard
// similarity is kept on the context either way: the weighted rule reuses it.
func (e *Engine) listMatchRule(ctx *evalContext) (model.EvaluationResult, bool) {
	expNorm := e.norm.Normalize(ctx.expRaw)
	aiNorm := e.norm.Normalize(ctx.aiRaw)
	matched, jaccard := similarity.ListMatch(expNorm, aiNorm, e.thresholds.ListMatch)
	ctx.listJaccard = jaccard
	if matched {
		return e.accept(ctx, 1.0, []string{IssueOrderDiffers}), true
	}
	return model.EvaluationResult{}, false
}

// numericFullRule accepts when the expected answer carries numbers and every
// one of them found a close partner in the AI answer. It replaces whatever
// diagnostics were collected with the single full-match note.
func (e *Engine) numericFullRule(ctx *evalContext) (model.EvaluationResult, bool) {
	e.computeSignals(ctx)
	if ctx.hasExpNums && ctx.numsFull {
		return e.accept(ctx, 1.0, []string{IssueNumbersMatched}), true
	}
	return model.EvaluationResult{}, false
}

// weightedRule is the terminal rule: a fixed-weight blend of the similarity
// signals mapped onto the three-way verdict by the threshold table.
func (e *Engine) weightedRule(ctx *evalContext) (model.EvaluationResult, bool) {
	e.computeSignals(ctx)

	combined := e.weights.SeqRatio*ctx.seqRatio +
		e.weights.TokenJaccard*ctx.tokenJacc +
		e.weights.Numeric*ctx.numScore +
		e.weights.ListJaccard*ctx.listJaccard

	verdict := model.VerdictWrong
	switch {
	case combined >= e.thresholds.Correct:
		verdict = model.VerdictCorrect
	case combined >= e.thresholds.Partial:
		verdict = model.VerdictPartial
	}

	return model.EvaluationResult{
		AIAnswer:      ctx.aiRaw,
		Expected:      ctx.expRaw,
		Verdict:       verdict,
		CombinedScore: round4(combined),
		SeqRatio:      round4(ctx.seqRatio),
		Issues:        ctx.issues,
	}, true
}

// computeSignals derives the similarity signals and diagnostic issues once
// per evaluation. Idempotent: repeated calls are no-ops.
func (e *Engine) computeSignals(ctx *evalContext) {
	if ctx.prepared {
		return
	}
	ctx.prepared = true

	ctx.normExp = e.norm.Normalize(ctx.expRaw)
	ctx.relevant = e.relevantText(ctx.aiRaw, ctx.normExp)

	// Numbers come from the raw texts: normalization may merge tokens.
	numsExp := numeric.Extract(ctx.expRaw)
	numsAI := numeric.Extract(ctx.aiRaw)

	ctx.seqRatio = similarity.SequenceRatio(ctx.relevant, ctx.normExp)
	ctx.tokenJacc = similarity.TokenJaccard(ctx.relevant, ctx.normExp)

	ctx.hasExpNums = len(numsExp) > 0
	if ctx.hasExpNums {
		matched, full := e.cmp.Match(numsExp, numsAI)
		ctx.numsFull = full
		ctx.numScore = math.Min(1.0, float64(matched)/float64(len(numsExp)))
		if !full {
			ctx.issues = append(ctx.issues, issuePartialNumbers(matched, len(numsExp)))
		}
	} else {
		// No numbers to verify: neutral evidence, and the full-match
		// shortcut stays ineligible.
		ctx.numScore = 0.5
	}

	aiTokens := strings.Fields(ctx.relevant)
	expTokens := strings.Fields(ctx.normExp)

	switch {
	case ctx.relevant == "":
		ctx.issues = append(ctx.issues, IssueEmptyAnswer)
	case float64(len(aiTokens)) < float64(len(expTokens))*0.5:
		ctx.issues = append(ctx.issues, IssueTooShort)
	case float64(len(aiTokens)) > float64(len(expTokens))*3.0:
		ctx.issues = append(ctx.issues, IssueTooLong)
	}

	// Partial overlap and pure ordering difference are mutually exclusive:
	// only the first applicable note fires.
	if !sameTokenSet(aiTokens, expTokens) {
		if ctx.listJaccard > 0.5 {
			ctx.issues = append(ctx.issues, IssuePartialOverlap)
		}
	} else if ctx.seqRatio < e.thresholds.OrderRatioFlag {
		ctx.issues = append(ctx.issues, IssueOrderOnly)
	}
}

// sameTokenSet reports whether two token lists carry the same distinct tokens.
func sameTokenSet(a, b []string) bool {
	sa := make(map[string]struct{}, len(a))
	for _, t := range a {
		sa[t] = struct{}{}
	}
	sb := make(map[string]struct{}, len(b))
	for _, t := range b {
		sb[t] = struct{}{}
	}
	if len(sa) != len(sb) {
		return false
	}
	for t := range sa {
		if _, ok := sb[t]; !ok {
			return false
		}
	}
	return true
}

// relevantText keeps only the AI answer tokens that appear in the expected
// answer's vocabulary, so boilerplate around the facts does not drown the
// similarity signals. Falls back to the full normalized answer when nothing
// survives the filter.
func (e *Engine) relevantText(aiRaw, normExp string) string {
	keywords := similarity.ItemSet(normExp)
	normAI := e.norm.Normalize(aiRaw)

	var kept []string
	for _, item := range similarity.SplitItems(normAI) {
		if _, ok := keywords[item]; ok {
			kept = append(kept, item)
		}
	}
	if len(kept) == 0 {
		return normAI
	}
	return strings.Join(kept, " ")
}

func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}
