package automation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/dropsim/internal/config"
	"github.com/san-kum/dropsim/internal/dynamo"
	"github.com/san-kum/dropsim/internal/experiment"
	"github.com/san-kum/dropsim/internal/sim"
	"github.com/san-kum/dropsim/internal/storage"
)

// Scenario defines a scripted sequence of drops
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single drop in a scenario. Params override the preset
// key by key; unset fields keep the base configuration.
type ScenarioStep struct {
	Name       string             `yaml:"name"`
	Preset     string             `yaml:"preset"`
	Engine     string             `yaml:"engine"`
	Integrator string             `yaml:"integrator"`
	Seed       *int64             `yaml:"seed"`
	Surface    string             `yaml:"surface"`
	Params     map[string]float64 `yaml:"params"`
	SaveAs     string             `yaml:"save_as"`
}

// StepResult pairs a finished step with the configuration it ran under.
type StepResult struct {
	Name   string
	Config experiment.Config
	Result *sim.Result
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}

	return &scenario, nil
}

// SetParam sets a numeric drop parameter by its config name.
func SetParam(p *dynamo.Params, name string, v float64) error {
	switch strings.ToLower(name) {
	case "mass":
		p.Mass = v
	case "height":
		p.DropHeight = v
	case "gravity":
		p.Gravity = v
	case "lateral":
		p.LateralVelocity = v
	default:
		return fmt.Errorf("unknown parameter: %s", name)
	}
	return nil
}

// ParamNames lists the names accepted by SetParam.
func ParamNames() []string { return []string{"mass", "height", "gravity", "lateral"} }

func (st ScenarioStep) apply(base experiment.Config) (experiment.Config, error) {
	cfg := base
	if st.Engine != "" {
		cfg.Engine = st.Engine
	}
	if st.Integrator != "" {
		cfg.Integrator = st.Integrator
	}
	if st.Seed != nil {
		cfg.Sim.Seed = *st.Seed
	}
	if st.Preset != "" {
		pc, ok := config.GetPreset(st.Preset)
		if !ok {
			return cfg, fmt.Errorf("unknown preset: %s", st.Preset)
		}
		p, err := pc.Params()
		if err != nil {
			return cfg, err
		}
		cfg.Params = p
	}
	for k, v := range st.Params {
		if err := SetParam(&cfg.Params, k, v); err != nil {
			return cfg, err
		}
	}
	if st.Surface != "" {
		m, err := dynamo.ParseSurfaceMode(st.Surface)
		if err != nil {
			return cfg, err
		}
		cfg.Params.Surface = m
	}
	return cfg, nil
}

// RunScenario executes all steps in order. A step with save_as also writes
// its samples there as CSV.
func RunScenario(ctx context.Context, scenario *Scenario, base experiment.Config, registry *experiment.Registry, logger *log.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = log.Default()
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step-%d", i+1)
		}
		logger.Info("running step", "step", i+1, "of", len(scenario.Steps), "name", name)

		cfg, err := step.apply(base)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		result, err := experiment.New(cfg, registry, logger.With("step", name)).Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		if step.SaveAs != "" {
			if err := saveCSV(step.SaveAs, result.Samples); err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}

		results = append(results, StepResult{Name: name, Config: cfg, Result: result})
	}

	return results, nil
}

func saveCSV(path string, samples dynamo.SampleSeries) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := storage.WriteCSV(f, samples); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ParameterSweep runs drops across a range of one parameter
type ParameterSweep struct {
	Base      experiment.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

// SweepResult holds the outcome of one sweep point
type SweepResult struct {
	ParamValue     float64
	Reason         sim.Reason
	Err            error
	Fragmentations int
	Fragments      float64
	PeakVelocity   float64
	Duration       float64
}

func summarize(v float64, res *sim.Result) SweepResult {
	return SweepResult{
		ParamValue:     v,
		Reason:         res.Reason,
		Fragmentations: res.Fragmentations,
		Fragments:      res.Metrics["fragments"],
		PeakVelocity:   res.Metrics["peak_velocity"],
		Duration:       res.Duration,
	}
}

// RunSweep executes a parameter sweep. Points rejected by validation are
// reported with Err set instead of aborting the sweep.
func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry, logger *log.Logger) ([]SweepResult, error) {
	if logger == nil {
		logger = log.Default()
	}
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", sweep.NumSteps)
	}
	if err := SetParam(&dynamo.Params{}, sweep.ParamName, 0); err != nil {
		return nil, err
	}

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep

		cfg := sweep.Base
		_ = SetParam(&cfg.Params, sweep.ParamName, paramVal)

		result, err := experiment.New(cfg, registry, logger).Run(ctx)
		switch {
		case errors.Is(err, dynamo.ErrValidation):
			results = append(results, SweepResult{ParamValue: paramVal, Err: err})
		case err != nil:
			return results, err
		default:
			results = append(results, summarize(paramVal, result))
		}

		logger.Debug("sweep point", "n", i+1, "of", sweep.NumSteps, sweep.ParamName, paramVal)
	}

	return results, nil
}

// MonteCarloConfig jitters the base parameters by a relative amount per trial.
type MonteCarloConfig struct {
	Base         experiment.Config
	Perturbation float64
	NumTrials    int
	Seed         int64
}

// MonteCarloResult holds one trial
type MonteCarloResult struct {
	TrialID   int
	Params    dynamo.Params
	Fragments int
	Reason    sim.Reason
}

// RunMonteCarlo executes trials with randomly perturbed mass and height.
// Perturbed heights are clamped to the valid range.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, registry *experiment.Registry, logger *log.Logger) ([]MonteCarloResult, error) {
	if logger == nil {
		logger = log.Default()
	}
	results := make([]MonteCarloResult, 0, cfg.NumTrials)

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	jitter := func(v float64) float64 {
		return v * (1 + (rng.Float64()-0.5)*2*cfg.Perturbation)
	}

	for trial := 0; trial < cfg.NumTrials; trial++ {
		expCfg := cfg.Base
		expCfg.Sim.Seed = cfg.Base.Sim.Seed + int64(trial)
		expCfg.Params.Mass = math.Max(jitter(cfg.Base.Params.Mass), 1e-3)
		expCfg.Params.DropHeight = math.Min(jitter(cfg.Base.Params.DropHeight), expCfg.Sim.MaxHeight)

		result, err := experiment.New(expCfg, registry, logger).Run(ctx)
		if err != nil {
			return nil, fmt.Errorf("trial %d: %w", trial, err)
		}

		results = append(results, MonteCarloResult{
			TrialID:   trial,
			Params:    expCfg.Params,
			Fragments: int(result.Metrics["fragments"]),
			Reason:    result.Reason,
		})

		if (trial+1)%10 == 0 {
			logger.Info("monte carlo progress", "done", trial+1, "of", cfg.NumTrials)
		}
	}

	return results, nil
}

// MonteCarloStats counts trials that split the ball and trials that did not.
func MonteCarloStats(results []MonteCarloResult) (shattered int, intact int) {
	for _, r := range results {
		if r.Fragments > 1 {
			shattered++
		} else {
			intact++
		}
	}
	return
}
