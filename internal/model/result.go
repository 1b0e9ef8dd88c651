package model

// AnswerRow is a single collected question/answer pair to be graded.
// Rows are produced externally (collector, CSV/XLSX table) and are never
// mutated by the grading engine.
type AnswerRow struct {
	ID       string `json:"id"`                  // Row identifier (positional label if the source omits it)
	FileName string `json:"file_name,omitempty"` // Source workbook the question ran against
	Content  string `json:"content"`             // Raw AI answer text (may be empty)
	Expected string `json:"expected_answer"`     // Raw reference answer text (may be empty)
}

// Verdict is the three-way grading outcome for a row.
type Verdict int

const (
	VerdictWrong Verdict = iota
	VerdictPartial
	VerdictCorrect
)

// String returns the localized label used in all rendered outputs.
func (v Verdict) String() string {
	switch v {
	case VerdictCorrect:
		return "正确"
	case VerdictPartial:
		return "部分正确"
	default:
		return "错误"
	}
}

// EvaluationResult is the per-row output of the verdict engine.
// It is created once per AnswerRow and never mutated afterward.
type EvaluationResult struct {
	ID       string `json:"id"`
	FileName string `json:"file_name,omitempty"`

	AIAnswer string `json:"ai_answer"`
	Expected string `json:"expected_answer"`

	Verdict       Verdict  `json:"verdict"`
	CombinedScore float64  `json:"combined_score"` // [0,1], 4-decimal precision
	SeqRatio      float64  `json:"seq_ratio"`      // character-level similarity used in scoring
	Issues        []string `json:"issues"`         // diagnostic issue tags, may be empty
}

// Summary aggregates a full batch of evaluation results. It carries no
// identity of its own and is recomputed fresh from the result set.
type Summary struct {
	Total    int     `json:"total"`
	Correct  int     `json:"correct"`
	Partial  int     `json:"partial"`
	Wrong    int     `json:"wrong"`
	AvgScore float64 `json:"avg_score"` // mean combined score, 4 decimals
	Accuracy float64 `json:"accuracy"`  // correct/total*100, 2 decimals, 0.0 if empty

	IssueCounts []IssueCount `json:"issue_counts"` // descending by count
}

// IssueCount is one entry in the ranked issue-tag frequency table.
type IssueCount struct {
	Issue string `json:"issue"`
	Count int    `json:"count"`
}
