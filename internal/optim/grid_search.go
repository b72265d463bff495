// Package optim provides hyperparameter search over planner experiments.
package optim

import (
	"context"
	"math"

	"github.com/san-kum/mppi/internal/dynamo"
)

// RunFunc builds and runs one experiment under the given parameter
// assignment, returning its metrics.
type RunFunc func(ctx context.Context, params map[string]float64) (*dynamo.Result, error)

// GridSearch exhaustively evaluates the cartesian product of per-parameter
// value lists and keeps the assignment minimizing one metric. Typical use is
// tuning the planner's temperature and noise scale against closed-loop
// tracking error.
type GridSearch struct {
	names  []string
	values [][]float64
}

func NewGridSearch(names []string, values [][]float64) *GridSearch {
	return &GridSearch{names: names, values: values}
}

func (g *GridSearch) Search(ctx context.Context, run RunFunc, metric string) (map[string]float64, float64, error) {
	best := math.Inf(1)
	var bestParams map[string]float64

	assignment := make(map[string]float64)
	err := g.walk(ctx, 0, assignment, func(params map[string]float64) error {
		result, err := run(ctx, params)
		if err != nil {
			// skip configurations that diverge
			return nil
		}
		if val, ok := result.Metrics[metric]; ok && val < best {
			best = val
			bestParams = make(map[string]float64, len(params))
			for k, v := range params {
				bestParams[k] = v
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	return bestParams, best, nil
}

func (g *GridSearch) walk(ctx context.Context, depth int, assignment map[string]float64, visit func(map[string]float64) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.names) {
		return visit(assignment)
	}

	name := g.names[depth]
	for _, v := range g.values[depth] {
		assignment[name] = v
		if err := g.walk(ctx, depth+1, assignment, visit); err != nil {
			return err
		}
	}
	delete(assignment, name)
	return nil
}
