package dynamo

import (
	"context"
	"runtime"
	"sync"
)

// Ensemble runs independent simulations under consecutive seeds. Each run
// gets its own simulator from the build function, so stateful controllers
// (planners own a mutable nominal sequence) are never shared across
// goroutines.
type Ensemble struct {
	build     func(seed int64) (*Simulator, error)
	numRuns   int
	seedStart int64
}

func NewEnsemble(build func(seed int64) (*Simulator, error), numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{build: build, numRuns: numRuns, seedStart: seedStart}
}

func (e *Ensemble) Run(ctx context.Context, x0 State, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfgCopy := cfg
			cfgCopy.Seed = e.seedStart + int64(idx)

			sim, err := e.build(cfgCopy.Seed)
			if err != nil {
				errs[idx] = err
				return
			}

			results[idx], errs[idx] = sim.Run(ctx, x0, cfgCopy)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}

// ParallelFor executes fn over chunks of [0, n) on up to NumCPU workers.
// Chunks smaller than minChunk run inline.
func ParallelFor(n, minChunk int, fn func(start, end int)) {
	workers := runtime.NumCPU()
	if n <= minChunk || workers <= 1 {
		fn(0, n)
		return
	}

	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	wg.Add(workers)

	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}

		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}
