// Package optim searches drop parameters for the best value of a run metric.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/charmbracelet/log"
	"github.com/san-kum/dropsim/internal/automation"
	"github.com/san-kum/dropsim/internal/dynamo"
	"github.com/san-kum/dropsim/internal/experiment"
)

var ErrNoCandidate = errors.New("no grid point produced a result")

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	// Maximize flips the search to the largest metric value.
	Maximize bool
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

// Best is the winning grid point.
type Best struct {
	Params    map[string]float64
	Value     float64
	Evaluated int
	Rejected  int
}

// Search runs base once per grid point and keeps the point with the best
// value of metricName. Points that fail validation are counted and skipped.
func (g *GridSearch) Search(ctx context.Context, base experiment.Config, registry *experiment.Registry, logger *log.Logger, metricName string) (Best, error) {
	if len(g.paramNames) != len(g.ranges) {
		return Best{}, fmt.Errorf("%d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}
	for _, name := range g.paramNames {
		if err := automation.SetParam(&dynamo.Params{}, name, 0); err != nil {
			return Best{}, err
		}
	}
	if logger == nil {
		logger = log.Default()
	}

	best := Best{Value: math.Inf(1)}
	if g.Maximize {
		best.Value = math.Inf(-1)
	}

	err := g.searchRecursive(ctx, 0, make(map[string]float64), func(current map[string]float64) error {
		cfg := base
		for k, v := range current {
			_ = automation.SetParam(&cfg.Params, k, v)
		}

		result, err := experiment.New(cfg, registry, logger).Run(ctx)
		if errors.Is(err, dynamo.ErrValidation) {
			best.Rejected++
			return nil
		}
		if err != nil {
			return err
		}
		best.Evaluated++

		val, ok := result.Metrics[metricName]
		if !ok {
			return fmt.Errorf("unknown metric: %s", metricName)
		}
		if math.IsNaN(val) {
			return nil
		}
		if (g.Maximize && val > best.Value) || (!g.Maximize && val < best.Value) {
			best.Value = val
			best.Params = make(map[string]float64, len(current))
			for k, v := range current {
				best.Params[k] = v
			}
		}
		return nil
	})
	if err != nil {
		return best, err
	}
	if best.Params == nil {
		return best, ErrNoCandidate
	}
	return best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	eval func(map[string]float64) error,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		return eval(current)
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, eval); err != nil {
			return err
		}
	}
	return nil
}
