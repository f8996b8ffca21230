package matrix

import (
	"context"
	"sync"

	"github.com/slipway-ci/slipway/src/pipeline"
	"golang.org/x/sync/semaphore"
)

// CellResult pairs a cell with its run outcome.
type CellResult struct {
	Cell   Cell
	Result *pipeline.RunResult
	Err    error
}

// Run executes the stage sequence once per cell, at most parallelism cells
// at a time. Results keep cell order. A failing cell does not cancel its
// siblings; the orchestrator performs no cross-cell locking — the remote
// index's own uniqueness constraint is the only concurrency guard.
func Run(ctx context.Context, runner *pipeline.Runner, cells []Cell, stages []pipeline.Stage, parallelism int) []CellResult {
	if parallelism < 1 {
		parallelism = 1
	}

	results := make([]CellResult, len(cells))
	sem := semaphore.NewWeighted(int64(parallelism))
	var wg sync.WaitGroup

	for i, cell := range cells {
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i] = CellResult{Cell: cell, Err: err}
			continue
		}
		wg.Add(1)
		go func(i int, cell Cell) {
			defer wg.Done()
			defer sem.Release(1)

			res, err := runner.Run(ctx, stages, cell.Env())
			results[i] = CellResult{Cell: cell, Result: res, Err: err}
		}(i, cell)
	}

	wg.Wait()
	return results
}

// FirstError returns the first cell failure in cell order, if any.
func FirstError(results []CellResult) error {
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}
