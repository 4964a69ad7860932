// Package experiment runs sessions headless: one at a time with a simulated
// clock, or many seeds in parallel.
package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/dropsim/internal/config"
	"github.com/san-kum/dropsim/internal/dynamo"
	"github.com/san-kum/dropsim/internal/sim"
)

type Config struct {
	Engine     string
	Integrator string
	Sim        sim.Config
	Params     dynamo.Params
}

// FromConfig builds an experiment configuration from a loaded config file.
func FromConfig(c *config.Config) (Config, error) {
	p, err := c.SimParams()
	if err != nil {
		return Config{}, err
	}
	return Config{
		Engine:     c.Engine,
		Integrator: c.Integrator,
		Sim:        c.SimConfig(),
		Params:     p,
	}, nil
}

type Experiment struct {
	cfg      Config
	registry *Registry
	log      *log.Logger
	observer sim.FrameFunc
}

func New(cfg Config, registry *Registry, logger *log.Logger) *Experiment {
	if logger == nil {
		logger = log.Default()
	}
	return &Experiment{cfg: cfg, registry: registry, log: logger}
}

// Observe sets a function called after every frame.
func (e *Experiment) Observe(fn sim.FrameFunc) { e.observer = fn }

// Run plays one session to termination. Unless the config asks for pacing,
// sample times come from a clock that advances by one frame per reading.
func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	engine, err := e.registry.GetEngine(e.cfg.Engine, e.cfg.Integrator)
	if err != nil {
		return nil, err
	}

	opts := []sim.Option{
		sim.WithLogger(e.log),
		sim.WithMetrics(e.registry.DefaultMetrics()...),
	}
	if !e.cfg.Sim.Pace {
		opts = append(opts, sim.WithClock(sim.NewStepClock(time.Duration(e.cfg.Sim.Dt*float64(time.Second)))))
	}

	s := sim.New(engine, e.cfg.Sim, opts...)
	if err := s.Start(e.cfg.Params); err != nil {
		return nil, err
	}
	defer s.Close()

	res, err := s.Run(ctx, e.observer)
	if err != nil {
		return nil, fmt.Errorf("run: %w", err)
	}
	return res, nil
}
