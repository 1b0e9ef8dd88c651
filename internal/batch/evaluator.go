// Package batch grades whole tables of collected answers. Rows are
// independent, so evaluation fans out over a worker pool; identical
// (answer, expected) pairs are memoized.
package batch

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/mingqiu/gradecheck/internal/cache"
	"github.com/mingqiu/gradecheck/internal/judge"
	"github.com/mingqiu/gradecheck/internal/model"
	"github.com/mingqiu/gradecheck/internal/worker"
)

// Evaluator applies the verdict engine to every row of an input table.
type Evaluator struct {
	engine  *judge.Engine
	memo    cache.Store
	workers int
}

// NewEvaluator creates an Evaluator from the grading configuration.
func NewEvaluator(cfg *model.Config) *Evaluator {
	return &Evaluator{
		engine:  judge.New(cfg),
		memo:    cache.NewMemory(10*time.Minute, 15*time.Minute),
		workers: cfg.Concurrency.Workers,
	}
}

// evalJob grades one row.
type evalJob struct {
	index     int
	row       model.AnswerRow
	evaluator *Evaluator
}

// evalResult pairs a graded row with its original position so the batch
// output stays in input order regardless of completion order.
type evalResult struct {
	index  int
	result model.EvaluationResult
}

// GetError implements worker.Result; grading has no error paths.
func (r *evalResult) GetError() error { return nil }

// Execute implements worker.Job.
func (j *evalJob) Execute(_ context.Context) worker.Result {
	return &evalResult{index: j.index, result: j.evaluator.evaluateRow(j.index, j.row)}
}

// EvaluateAll grades every row and returns the results in input order.
func (e *Evaluator) EvaluateAll(_ context.Context, rows []model.AnswerRow) []model.EvaluationResult {
	if len(rows) == 0 {
		return []model.EvaluationResult{}
	}

	pool := worker.NewPool(e.workers)
	pool.Start()

	// The pool's channels buffer only a bounded window, so the submitter
	// must not outpace the collector: submit from a goroutine and drain
	// results here. Tables of any size flow through without blocking.
	go func() {
		for i, row := range rows {
			pool.Submit(&evalJob{index: i, row: row, evaluator: e})
		}
		pool.Close()
	}()
	raw := pool.Wait()

	results := make([]model.EvaluationResult, len(rows))
	for _, r := range raw {
		er := r.(*evalResult)
		results[er.index] = er.result
	}
	return results
}

// evaluateRow grades a single row, consulting the memoization store first.
func (e *Evaluator) evaluateRow(index int, row model.AnswerRow) model.EvaluationResult {
	id := row.ID
	if id == "" {
		id = fmt.Sprintf("row_%d", index+1)
	}

	key := cache.Key(row.Content, row.Expected)
	res, hit := e.memo.Get(key)
	if !hit {
		res = e.engine.Evaluate(row.Content, row.Expected)
		e.memo.Set(key, res)
	}

	res.ID = id
	res.FileName = row.FileName
	return res
}

// Summarize folds a result set into aggregate statistics. It is a pure
// recomputation over the immutable results; no state survives between calls.
func Summarize(results []model.EvaluationResult) model.Summary {
	s := model.Summary{Total: len(results)}

	var scoreSum float64
	issueCounts := make(map[string]int)
	for _, r := range results {
		switch r.Verdict {
		case model.VerdictCorrect:
			s.Correct++
		case model.VerdictPartial:
			s.Partial++
		default:
			s.Wrong++
		}
		scoreSum += r.CombinedScore
		for _, issue := range r.Issues {
			if issue != "" {
				issueCounts[issue]++
			}
		}
	}

	if s.Total > 0 {
		s.AvgScore = round(scoreSum/float64(s.Total), 4)
		s.Accuracy = round(float64(s.Correct)/float64(s.Total)*100, 2)
	}

	s.IssueCounts = make([]model.IssueCount, 0, len(issueCounts))
	for issue, count := range issueCounts {
		s.IssueCounts = append(s.IssueCounts, model.IssueCount{Issue: issue, Count: count})
	}
	sort.Slice(s.IssueCounts, func(i, j int) bool {
		if s.IssueCounts[i].Count != s.IssueCounts[j].Count {
			return s.IssueCounts[i].Count > s.IssueCounts[j].Count
		}
		return s.IssueCounts[i].Issue < s.IssueCounts[j].Issue
	})
	return s
}

func round(x float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(x*pow) / pow
}
