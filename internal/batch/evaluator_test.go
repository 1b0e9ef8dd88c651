package batch

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"testing"

	"github.com/mingqiu/gradecheck/internal/judge"
	"github.com/mingqiu/gradecheck/internal/model"
)

func newTestEvaluator(workers int) *Evaluator {
	cfg := model.DefaultConfig()
	cfg.Concurrency.Workers = workers
	return NewEvaluator(cfg)
}

func TestEvaluator_EvaluateAll_Empty(t *testing.T) {
	e := newTestEvaluator(2)
	results := e.EvaluateAll(context.Background(), nil)
	if results == nil || len(results) != 0 {
		t.Errorf("EvaluateAll(nil) = %v, want empty slice", results)
	}
}

func TestEvaluator_EvaluateAll_PreservesOrder(t *testing.T) {
	e := newTestEvaluator(4)

	rows := make([]model.AnswerRow, 20)
	for i := range rows {
		rows[i] = model.AnswerRow{
			ID:       fmt.Sprintf("q%02d", i),
			Content:  fmt.Sprintf("答案是%d", i),
			Expected: fmt.Sprintf("%d", i),
		}
	}

	results := e.EvaluateAll(context.Background(), rows)
	if len(results) != len(rows) {
		t.Fatalf("got %d results, want %d", len(results), len(rows))
	}
	for i, res := range results {
		if res.ID != rows[i].ID {
			t.Errorf("result[%d].ID = %q, want %q", i, res.ID, rows[i].ID)
		}
		if res.Verdict != model.VerdictCorrect {
			t.Errorf("result[%d] verdict = %v, want correct", i, res.Verdict)
		}
	}
}

func TestEvaluator_EvaluateAll_BatchLargerThanPoolBuffers(t *testing.T) {
	// With 2 workers the pool buffers only a handful of jobs and results in
	// its channels; a 50-row table is far past that window and must still
	// complete, in order.
	e := newTestEvaluator(2)

	rows := make([]model.AnswerRow, 50)
	for i := range rows {
		rows[i] = model.AnswerRow{
			ID:       fmt.Sprintf("q%02d", i),
			Content:  fmt.Sprintf("答案是%d", i),
			Expected: fmt.Sprintf("%d", i),
		}
	}

	results := e.EvaluateAll(context.Background(), rows)
	if len(results) != len(rows) {
		t.Fatalf("got %d results, want %d", len(results), len(rows))
	}
	for i, res := range results {
		if res.ID != rows[i].ID {
			t.Fatalf("result[%d].ID = %q, want %q", i, res.ID, rows[i].ID)
		}
	}
}

func TestEvaluator_RowIDFallback(t *testing.T) {
	e := newTestEvaluator(1)

	rows := []model.AnswerRow{
		{Content: "88", Expected: "88"},
		{ID: "custom", Content: "88", Expected: "88"},
		{Content: "99", Expected: "99"},
	}

	results := e.EvaluateAll(context.Background(), rows)
	if results[0].ID != "row_1" {
		t.Errorf("results[0].ID = %q, want row_1", results[0].ID)
	}
	if results[1].ID != "custom" {
		t.Errorf("results[1].ID = %q, want custom", results[1].ID)
	}
	if results[2].ID != "row_3" {
		t.Errorf("results[2].ID = %q, want row_3", results[2].ID)
	}
}

func TestEvaluator_MemoizedRowsKeepOwnIdentity(t *testing.T) {
	e := newTestEvaluator(1)

	// Same (answer, expected) pair on two rows: the second hits the memo but
	// must still carry its own id and file name.
	rows := []model.AnswerRow{
		{ID: "a", FileName: "one.xlsx", Content: "答案88", Expected: "88"},
		{ID: "b", FileName: "two.xlsx", Content: "答案88", Expected: "88"},
	}

	results := e.EvaluateAll(context.Background(), rows)
	if results[0].ID != "a" || results[0].FileName != "one.xlsx" {
		t.Errorf("results[0] identity = (%q, %q)", results[0].ID, results[0].FileName)
	}
	if results[1].ID != "b" || results[1].FileName != "two.xlsx" {
		t.Errorf("results[1] identity = (%q, %q)", results[1].ID, results[1].FileName)
	}
	if results[0].Verdict != results[1].Verdict || results[0].CombinedScore != results[1].CombinedScore {
		t.Errorf("memoized rows disagree: %+v vs %+v", results[0], results[1])
	}
}

func TestSummarize(t *testing.T) {
	results := []model.EvaluationResult{
		{Verdict: model.VerdictCorrect, CombinedScore: 1.0},
		{Verdict: model.VerdictCorrect, CombinedScore: 1.0, Issues: []string{judge.IssueOrderDiffers}},
		{Verdict: model.VerdictPartial, CombinedScore: 0.55, Issues: []string{judge.IssuePartialOverlap}},
		{Verdict: model.VerdictWrong, CombinedScore: 0.1, Issues: []string{judge.IssueEmptyAnswer, judge.IssuePartialOverlap}},
	}

	s := Summarize(results)
	if s.Total != 4 || s.Correct != 2 || s.Partial != 1 || s.Wrong != 1 {
		t.Fatalf("counts = total %d correct %d partial %d wrong %d", s.Total, s.Correct, s.Partial, s.Wrong)
	}
	if s.Correct+s.Partial+s.Wrong != s.Total {
		t.Errorf("verdict counts do not sum to total")
	}
	if math.Abs(s.AvgScore-0.6625) > 1e-9 {
		t.Errorf("AvgScore = %v, want 0.6625", s.AvgScore)
	}
	if math.Abs(s.Accuracy-50.0) > 1e-9 {
		t.Errorf("Accuracy = %v, want 50", s.Accuracy)
	}

	want := []model.IssueCount{
		{Issue: judge.IssuePartialOverlap, Count: 2},
		{Issue: judge.IssueEmptyAnswer, Count: 1},
		{Issue: judge.IssueOrderDiffers, Count: 1},
	}
	if !reflect.DeepEqual(s.IssueCounts, want) {
		t.Errorf("IssueCounts = %v, want %v", s.IssueCounts, want)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	if s.Total != 0 || s.AvgScore != 0 || s.Accuracy != 0 {
		t.Errorf("empty summary = %+v", s)
	}
	if len(s.IssueCounts) != 0 {
		t.Errorf("empty summary has issue counts: %v", s.IssueCounts)
	}
}

func TestSummarize_AccuracyRounding(t *testing.T) {
	results := []model.EvaluationResult{
		{Verdict: model.VerdictCorrect, CombinedScore: 1.0},
		{Verdict: model.VerdictWrong},
		{Verdict: model.VerdictWrong},
	}
	s := Summarize(results)
	// 1/3 correct: 33.333...% rounds to two decimals.
	if math.Abs(s.Accuracy-33.33) > 1e-9 {
		t.Errorf("Accuracy = %v, want 33.33", s.Accuracy)
	}
	if math.Abs(s.AvgScore-0.3333) > 1e-9 {
		t.Errorf("AvgScore = %v, want 0.3333", s.AvgScore)
	}
}
