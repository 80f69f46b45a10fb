package build

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Launcher starts build runs on behalf of the trigger mechanism. started is
// invoked once the run is actually executing; completed once it has finished
// and its result is available. Both callbacks receive the same Run.
type Launcher interface {
	Launch(ctx context.Context, run *CommandRun, started, completed func(Run))
}

// Executor runs build commands with bounded concurrency.
type Executor struct {
	sem *semaphore.Weighted
	wg  sync.WaitGroup
}

// NewExecutor creates an executor that runs at most maxConcurrent builds at
// once. Values below 1 are treated as 1.
func NewExecutor(maxConcurrent int) *Executor {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Executor{sem: semaphore.NewWeighted(int64(maxConcurrent))}
}

// Launch queues the run for execution. It returns immediately; the run waits
// for a concurrency slot before starting. A run that fails to start (or whose
// context is cancelled while queued) is completed with an aborted or failed
// result so callers always observe exactly one completed callback.
func (e *Executor) Launch(ctx context.Context, run *CommandRun, started, completed func(Run)) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		if err := e.sem.Acquire(ctx, 1); err != nil {
			run.finish(ResultAborted, err.Error())
			completed(run)
			return
		}
		defer e.sem.Release(1)

		if err := run.Start(ctx); err != nil {
			result := ResultFailure
			if ctx.Err() != nil {
				result = ResultAborted
			}
			run.finish(result, err.Error())
			completed(run)
			return
		}
		started(run)
		run.Wait()
		completed(run)
	}()
}

// Wait blocks until every launched run has completed.
func (e *Executor) Wait() {
	e.wg.Wait()
}
