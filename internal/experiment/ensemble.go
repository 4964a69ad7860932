package experiment

import (
	"context"
	"math"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/san-kum/dropsim/internal/sim"
)

// Ensemble runs the same experiment under consecutive seeds in parallel.
// Every run owns its engine and session.
type Ensemble struct {
	base      Config
	registry  *Registry
	log       *log.Logger
	numRuns   int
	seedStart int64
}

func NewEnsemble(base Config, registry *Registry, logger *log.Logger, numRuns int, seedStart int64) *Ensemble {
	if logger == nil {
		logger = log.Default()
	}
	return &Ensemble{base: base, registry: registry, log: logger, numRuns: numRuns, seedStart: seedStart}
}

// Run returns one result per seed, in seed order.
func (e *Ensemble) Run(ctx context.Context) ([]*sim.Result, error) {
	results := make([]*sim.Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfg := e.base
			cfg.Sim.Seed = e.seedStart + int64(idx)
			cfg.Sim.Pace = false

			logger := e.log.With("seed", cfg.Sim.Seed)
			results[idx], errs[idx] = New(cfg, e.registry, logger).Run(ctx)
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

// Stats summarizes a metric across runs.
type Stats struct {
	Min, Max, Mean, StdDev float64
	N                      int
}

// Summarize computes Stats of value over results.
func Summarize(results []*sim.Result, value func(*sim.Result) float64) Stats {
	st := Stats{Min: math.Inf(1), Max: math.Inf(-1)}
	var sum, sumSq float64
	for _, r := range results {
		v := value(r)
		if math.IsNaN(v) {
			continue
		}
		st.N++
		sum += v
		sumSq += v * v
		st.Min = math.Min(st.Min, v)
		st.Max = math.Max(st.Max, v)
	}
	if st.N == 0 {
		return Stats{}
	}
	st.Mean = sum / float64(st.N)
	st.StdDev = math.Sqrt(math.Max(0, sumSq/float64(st.N)-st.Mean*st.Mean))
	return st
}

// Histogram counts results by an integer key, e.g. the peak body count.
func Histogram(results []*sim.Result, key func(*sim.Result) int) map[int]int {
	h := make(map[int]int)
	for _, r := range results {
		h[key(r)]++
	}
	return h
}
