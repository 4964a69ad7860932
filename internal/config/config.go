package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/dropsim/internal/dynamo"
	"github.com/san-kum/dropsim/internal/sim"
)

const (
	DefaultEngine     = "native"
	DefaultIntegrator = "symplectic"
	DefaultLogLevel   = "info"
	DefaultDataDir    = ".dropsim"

	DefaultMass    = 10.0
	DefaultHeight  = 100.0
	DefaultGravity = 981.0

	// DefaultMaxFrames stops a run that never reaches the ground (60 s at 60 FPS).
	DefaultMaxFrames = 3600
)

type Config struct {
	Engine     string         `yaml:"engine"`
	Integrator string         `yaml:"integrator"`
	Seed       int64          `yaml:"seed"`
	DataDir    string         `yaml:"data_dir"`
	LogLevel   string         `yaml:"log_level"`
	Params     ParamsConfig   `yaml:"params"`
	World      WorldConfig    `yaml:"world"`
	Fragment   FragmentConfig `yaml:"fragment"`
}

type ParamsConfig struct {
	Mass    float64 `yaml:"mass"`
	Height  float64 `yaml:"height"`
	Gravity float64 `yaml:"gravity"`
	Lateral float64 `yaml:"lateral"`
	Surface string  `yaml:"surface"`
}

type WorldConfig struct {
	Width           float64 `yaml:"width"`
	Height          float64 `yaml:"height"`
	GroundMargin    float64 `yaml:"ground_margin"`
	FPS             int     `yaml:"fps"`
	Dt              float64 `yaml:"dt"`
	BallElasticity  float64 `yaml:"ball_elasticity"`
	LandElasticity  float64 `yaml:"land_elasticity"`
	WaterElasticity float64 `yaml:"water_elasticity"`
	MaxHeight       float64 `yaml:"max_height"`
	MaxLateral      float64 `yaml:"max_lateral"`
	MaxFrames       int     `yaml:"max_frames"`
}

type FragmentConfig struct {
	MaxOffset    int  `yaml:"max_offset"`
	LockChildren bool `yaml:"lock_children"`
}

func DefaultConfig() *Config {
	sc := sim.DefaultConfig()
	return &Config{
		Engine:     DefaultEngine,
		Integrator: DefaultIntegrator,
		Seed:       sc.Seed,
		DataDir:    DefaultDataDir,
		LogLevel:   DefaultLogLevel,
		Params: ParamsConfig{
			Mass:    DefaultMass,
			Height:  DefaultHeight,
			Gravity: DefaultGravity,
			Surface: dynamo.Land.String(),
		},
		World: WorldConfig{
			Width:           sc.Width,
			Height:          sc.Height,
			GroundMargin:    sc.GroundMargin,
			FPS:             sc.FPS,
			Dt:              sc.Dt,
			BallElasticity:  sc.BallElasticity,
			LandElasticity:  sc.LandElasticity,
			WaterElasticity: sc.WaterElasticity,
			MaxHeight:       sc.MaxHeight,
			MaxLateral:      sc.MaxLateral,
			MaxFrames:       DefaultMaxFrames,
		},
		Fragment: FragmentConfig{
			MaxOffset: sc.MaxOffset,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// SimConfig returns the session configuration described by c.
func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Dt:              c.World.Dt,
		FPS:             c.World.FPS,
		Width:           c.World.Width,
		Height:          c.World.Height,
		GroundMargin:    c.World.GroundMargin,
		BallElasticity:  c.World.BallElasticity,
		LandElasticity:  c.World.LandElasticity,
		WaterElasticity: c.World.WaterElasticity,
		MaxHeight:       c.World.MaxHeight,
		MaxLateral:      c.World.MaxLateral,
		MaxFrames:       c.World.MaxFrames,
		LockChildren:    c.Fragment.LockChildren,
		MaxOffset:       c.Fragment.MaxOffset,
		Seed:            c.Seed,
	}
}

// SimParams converts the configured parameters. Bounds are checked by the
// session, not here.
func (c *Config) SimParams() (dynamo.Params, error) { return c.Params.Params() }

// Params converts the file representation into session parameters.
func (pc ParamsConfig) Params() (dynamo.Params, error) {
	surface, err := dynamo.ParseSurfaceMode(pc.Surface)
	if err != nil {
		return dynamo.Params{}, err
	}
	return dynamo.Params{
		Mass:            pc.Mass,
		DropHeight:      pc.Height,
		Gravity:         pc.Gravity,
		LateralVelocity: pc.Lateral,
		Surface:         surface,
	}, nil
}

// SetParams stores p as the configured parameters.
func (c *Config) SetParams(p dynamo.Params) {
	c.Params = ParamsConfig{
		Mass:    p.Mass,
		Height:  p.DropHeight,
		Gravity: p.Gravity,
		Lateral: p.LateralVelocity,
		Surface: p.Surface.String(),
	}
}
