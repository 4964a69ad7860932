package sim

import (
	"errors"
	"fmt"
	"time"

	"github.com/san-kum/dropsim/internal/dynamo"
)

var (
	ErrAlreadyStarted = errors.New("session already started")
	ErrNotRunning     = errors.New("session is not running")
)

type State int

const (
	Configuring State = iota
	Running
	Terminated
)

func (s State) String() string {
	switch s {
	case Configuring:
		return "configuring"
	case Running:
		return "running"
	case Terminated:
		return "terminated"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Reason records why a session terminated.
type Reason string

const (
	ReasonNone       Reason = ""
	ReasonGrounded   Reason = "grounded"
	ReasonCanceled   Reason = "canceled"
	ReasonFrameLimit Reason = "frame_limit"
)

// Config holds the fixed world layout and session limits. Params, which vary
// per run, are passed to Start.
type Config struct {
	Dt           float64
	FPS          int
	Width        float64
	Height       float64
	GroundMargin float64

	BallElasticity  float64
	LandElasticity  float64
	WaterElasticity float64

	MaxHeight  float64
	MaxLateral float64
	// MaxFrames stops a session that never grounds. 0 disables the bound.
	MaxFrames int

	LockChildren bool
	MaxOffset    int
	Seed         int64

	// Pace makes Run wait for the frame rate between frames.
	Pace bool
}

func DefaultConfig() Config {
	return Config{
		Dt:              1.0 / 60.0,
		FPS:             60,
		Width:           800,
		Height:          600,
		GroundMargin:    50,
		BallElasticity:  0.5,
		LandElasticity:  0.1,
		WaterElasticity: -0.6,
		MaxHeight:       500,
		MaxLateral:      30,
		MaxOffset:       20,
		Seed:            1,
	}
}

// GroundY is the screen Y of the ground segment.
func (c Config) GroundY() float64 { return c.Height - c.GroundMargin }

// SpawnPoint is where the initial body appears for a given drop height.
func (c Config) SpawnPoint(dropHeight float64) dynamo.Vec2 {
	return dynamo.Vec2{X: c.Width / 2, Y: c.Height - dropHeight - c.GroundMargin}
}

// SurfaceElasticity returns the ground elasticity for a surface mode.
func (c Config) SurfaceElasticity(m dynamo.SurfaceMode) float64 {
	if m == dynamo.Water {
		return c.WaterElasticity
	}
	return c.LandElasticity
}

// FrameInterval is the wall-clock time between paced frames.
func (c Config) FrameInterval() time.Duration {
	if c.FPS <= 0 {
		return time.Duration(c.Dt * float64(time.Second))
	}
	return time.Second / time.Duration(c.FPS)
}

// Frame is what metrics observe after every step.
type Frame struct {
	Index    int
	Time     float64
	Velocity float64
	Tracked  dynamo.BodyRef
	// Count is the number of bodies in the world after the step.
	Count int
	// Splits is the number of fragmentations during this frame's step.
	Splits int
	// Final marks the frame that terminated the session. Only the final
	// frame carries the Bodies snapshot.
	Final  bool
	Bodies []dynamo.BodyRef
}

type Metric interface {
	Name() string
	Observe(f Frame)
	Value() float64
	Reset()
}

type Result struct {
	Params         dynamo.Params
	Samples        dynamo.SampleSeries
	Reason         Reason
	Frames         int
	Fragmentations int
	Duration       float64
	Metrics        map[string]float64
}

// Clock supplies the time used for elapsed-time samples.
type Clock interface {
	Now() time.Time
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

// StepClock advances by a fixed step on every reading, so headless runs
// sample simulated rather than wall-clock time.
type StepClock struct {
	t    time.Time
	step time.Duration
}

func NewStepClock(step time.Duration) *StepClock {
	return &StepClock{t: time.Unix(0, 0), step: step}
}

func (c *StepClock) Now() time.Time {
	t := c.t
	c.t = c.t.Add(c.step)
	return t
}
