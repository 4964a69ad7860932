package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/dropsim/internal/dynamo"
	"github.com/san-kum/dropsim/internal/integrators"
	"github.com/san-kum/dropsim/internal/metrics"
	"github.com/san-kum/dropsim/internal/physics"
	"github.com/san-kum/dropsim/internal/physics/chipmunk"
	"github.com/san-kum/dropsim/internal/sim"
)

type Registry struct {
	engines map[string]func(integrator string) (dynamo.Engine, error)
}

func NewRegistry() *Registry {
	r := &Registry{
		engines: make(map[string]func(string) (dynamo.Engine, error)),
	}

	r.engines["native"] = func(integrator string) (dynamo.Engine, error) {
		integ, err := integrators.Get(integrator)
		if err != nil {
			return nil, err
		}
		return physics.NewWorld(integ), nil
	}
	// Chipmunk integrates with its own semi-implicit Euler.
	r.engines["chipmunk"] = func(string) (dynamo.Engine, error) {
		return chipmunk.New(), nil
	}

	return r
}

func (r *Registry) GetEngine(name, integrator string) (dynamo.Engine, error) {
	fn, ok := r.engines[name]
	if !ok {
		return nil, fmt.Errorf("unknown engine: %s", name)
	}
	return fn(integrator)
}

func (r *Registry) ListEngines() []string {
	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ListIntegrators() []string { return integrators.Names() }

func (r *Registry) DefaultMetrics() []sim.Metric { return metrics.Default() }
