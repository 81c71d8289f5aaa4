// Package runner executes an opaque per-file operation over a chunk of jobs
// using a bounded worker pool with per-job timeout and configurable error
// tolerance.
package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ivanbueno-jcc/pdf-remediation/internal/discovery"
)

// Status classifies one job's execution.
type Status int

const (
	Ok Status = iota
	TimedOut
	Errored
)

// String returns a human-readable status name
func (s Status) String() string {
	switch s {
	case Ok:
		return "ok"
	case TimedOut:
		return "timed-out"
	case Errored:
		return "errored"
	default:
		return "unknown"
	}
}

// Policy controls how a failing job affects its siblings.
type Policy int

const (
	// Coerce converts a failing job's error into an Errored result and
	// continues the batch.
	Coerce Policy = iota
	// Abort stops dispatching after the first error and propagates it.
	Abort
)

// Operation is the opaque per-file work (remediate, validate, probe...).
type Operation[T any] func(ctx context.Context, job discovery.FileJob) (T, error)

// Result is the outcome of one operation on one job. Results are returned
// aligned with input job order.
type Result[T any] struct {
	Job    discovery.FileJob
	Status Status
	Value  T
	Err    error
}

// Options configures a Run invocation.
type Options struct {
	Workers int           // bounded worker count, independent of chunk size
	Timeout time.Duration // per-job wall clock limit, 0 disables
	Policy  Policy
}

// Run executes op over jobs with a bounded worker pool. Result i corresponds
// to job i. Under Coerce, errors and panics become Errored results and the
// batch continues; under Abort, the first error cancels remaining dispatch
// and is returned. A job exceeding Timeout is recorded as TimedOut for that
// job only; its worker slot moves on without stalling siblings.
func Run[T any](ctx context.Context, jobs []discovery.FileJob, op Operation[T], opts Options) ([]Result[T], error) {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	results := make([]Result[T], len(jobs))
	for i, j := range jobs {
		results[i] = Result[T]{Job: j, Status: Errored, Err: context.Canceled}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		firstErr error
	)
	abort := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
		cancel()
	}

	indexCh := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexCh {
				results[i] = runJob(runCtx, jobs[i], op, opts.Timeout)
				if opts.Policy == Abort && results[i].Status == Errored {
					abort(results[i].Err)
					return
				}
			}
		}()
	}

dispatch:
	for i := range jobs {
		select {
		case indexCh <- i:
		case <-runCtx.Done():
			break dispatch
		}
	}
	close(indexCh)
	wg.Wait()

	mu.Lock()
	err := firstErr
	mu.Unlock()
	return results, err
}

type outcome[T any] struct {
	value T
	err   error
}

// runJob executes one operation, containing its panics and enforcing the
// per-job timeout. On timeout the inner goroutine is abandoned; the buffered
// channel lets it finish without blocking anyone.
func runJob[T any](ctx context.Context, job discovery.FileJob, op Operation[T], timeout time.Duration) Result[T] {
	jobCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	done := make(chan outcome[T], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				done <- outcome[T]{value: zero, err: fmt.Errorf("job %s panicked: %v", job.Name(), r)}
			}
		}()
		value, err := op(jobCtx, job)
		done <- outcome[T]{value: value, err: err}
	}()

	select {
	case o := <-done:
		if o.err != nil {
			return Result[T]{Job: job, Status: Errored, Err: o.err}
		}
		return Result[T]{Job: job, Status: Ok, Value: o.value}
	case <-jobCtx.Done():
		if ctx.Err() == nil {
			return Result[T]{Job: job, Status: TimedOut,
				Err: fmt.Errorf("job %s exceeded %s: %w", job.Name(), timeout, jobCtx.Err())}
		}
		return Result[T]{Job: job, Status: Errored, Err: ctx.Err()}
	}
}
