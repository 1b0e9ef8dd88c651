// Package worker provides the concurrency primitives shared by the batch
// evaluator and the collector: a bounded job pool and a request pacer.
package worker

import (
	"context"
	"sync"
)

// Job is a unit of work executed by the pool.
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is the outcome of a job execution.
type Result interface {
	GetError() error
}

// Pool runs jobs on a fixed number of workers. Rows are independent, so the
// pool needs no coordination beyond fan-out/fan-in.
type Pool struct {
	workers     int
	jobs        chan Job
	results     chan Result
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	jobsOnce    sync.Once
	resultsOnce sync.Once
}

// NewPool creates a pool with the given worker count (minimum 1).
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		workers: workers,
		jobs:    make(chan Job, workers*2),
		results: make(chan Result, workers*2),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the workers.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run()
	}
}

func (p *Pool) run() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			res := job.Execute(p.ctx)
			select {
			case p.results <- res:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit queues a job. Submissions after Shutdown are dropped. Submit must
// not be called after Close.
func (p *Pool) Submit(job Job) {
	select {
	case <-p.ctx.Done():
	case p.jobs <- job:
	}
}

// Close marks the job queue complete; workers exit once it drains. The
// channels hold only a bounded window of jobs and results, so the submitter
// and the result collector have to run concurrently: Submit and Close from
// one goroutine, Wait from another.
func (p *Pool) Close() {
	p.jobsOnce.Do(func() { close(p.jobs) })
}

// Wait collects results until the workers finish the closed queue, then
// returns them. Results arrive in completion order, not submission order.
// Wait consumes results while jobs are still being submitted, so it never
// blocks the submitter.
func (p *Pool) Wait() []Result {
	go func() {
		p.wg.Wait()
		p.closeResults()
	}()

	var results []Result
	for res := range p.results {
		results = append(results, res)
	}
	return results
}

// Shutdown cancels in-flight jobs and stops the workers.
func (p *Pool) Shutdown() {
	p.cancel()
	p.wg.Wait()
	p.closeResults()
}

func (p *Pool) closeResults() {
	p.resultsOnce.Do(func() { close(p.results) })
}
