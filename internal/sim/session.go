// Package sim drives one drop simulation: it configures an engine from the
// user parameters, steps it once per frame, samples the tracked body and
// decides when the run is over.
package sim

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/dropsim/internal/dynamo"
	"github.com/san-kum/dropsim/internal/fragment"
)

// FrameFunc is called by Run after every frame.
type FrameFunc func(s *Session)

type Option func(*Session)

func WithClock(c Clock) Option {
	return func(s *Session) { s.clock = c }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Session) { s.log = l }
}

func WithMetrics(ms ...Metric) Option {
	return func(s *Session) { s.metrics = append(s.metrics, ms...) }
}

type Session struct {
	cfg     Config
	engine  dynamo.Engine
	clock   Clock
	log     *log.Logger
	metrics []Metric

	state  State
	reason Reason
	params dynamo.Params
	rule   *fragment.Rule
	ground dynamo.Ground
	spawn  dynamo.Vec2
	// radius of the initial ball; the grounded check uses it for every
	// tracked body, fragments included
	radius float64

	tracked   dynamo.Handle
	start     time.Time
	elapsed   float64
	frames    int
	splits    int
	samples   dynamo.SampleSeries
	cancelled bool
}

func New(engine dynamo.Engine, cfg Config, opts ...Option) *Session {
	s := &Session{
		cfg:    cfg,
		engine: engine,
		state:  Configuring,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = wallClock{}
	}
	if s.log == nil {
		s.log = log.Default()
	}
	return s
}

func (s *Session) State() State           { return s.state }
func (s *Session) Reason() Reason         { return s.reason }
func (s *Session) Params() dynamo.Params  { return s.params }
func (s *Session) Config() Config         { return s.cfg }
func (s *Session) Elapsed() float64       { return s.elapsed }
func (s *Session) Tracked() dynamo.Handle { return s.tracked }

func (s *Session) Fragmentations() int { return s.splits }

// LastSample returns the most recent sample, if any.
func (s *Session) LastSample() (dynamo.Sample, bool) {
	if len(s.samples) == 0 {
		return dynamo.Sample{}, false
	}
	return s.samples[len(s.samples)-1], true
}

// Bodies returns a snapshot of the bodies in the engine.
func (s *Session) Bodies() []dynamo.BodyRef { return s.engine.Bodies() }

// Progress is how far the tracked body has fallen from the spawn point
// toward the ground, in [0, 1].
func (s *Session) Progress() float64 {
	b, ok := s.engine.Body(s.tracked)
	if !ok {
		return 1
	}
	span := s.ground.Y - b.Radius - s.spawn.Y
	if span <= 0 {
		return 1
	}
	return math.Max(0, math.Min(1, (b.Position.Y-s.spawn.Y)/span))
}

func (s *Session) Samples() dynamo.SampleSeries {
	out := make(dynamo.SampleSeries, len(s.samples))
	copy(out, s.samples)
	return out
}

// Validate checks the parameters against the configured bounds.
func (s *Session) Validate(p dynamo.Params) error {
	if !(p.Mass > 0) || math.IsInf(p.Mass, 0) {
		return &dynamo.ValidationError{
			Field:   "mass",
			Message: "mass must be a positive number",
		}
	}
	if p.DropHeight > s.cfg.MaxHeight {
		return &dynamo.ValidationError{
			Field:   "height",
			Message: fmt.Sprintf("height cannot exceed screen height (%g)", s.cfg.MaxHeight),
		}
	}
	if math.Abs(p.LateralVelocity) > s.cfg.MaxLateral {
		return &dynamo.ValidationError{
			Field:   "lateral",
			Message: fmt.Sprintf("wind cannot exceed %g", s.cfg.MaxLateral),
		}
	}
	return nil
}

// Start validates p, sets up the world and spawns the initial body. On a
// validation error the session stays in Configuring and may be started again.
func (s *Session) Start(p dynamo.Params) error {
	if s.state != Configuring {
		return ErrAlreadyStarted
	}
	if err := s.Validate(p); err != nil {
		return err
	}

	s.params = p
	s.rule = fragment.New(p,
		fragment.WithLogger(s.log),
		fragment.WithRand(rand.New(rand.NewSource(s.cfg.Seed))),
		fragment.WithMaxOffset(s.cfg.MaxOffset),
		fragment.WithLockedChildren(s.cfg.LockChildren),
	)

	s.engine.Configure(dynamo.Vec2{Y: p.Gravity})
	s.ground = dynamo.Ground{Y: s.cfg.GroundY(), Elasticity: s.cfg.SurfaceElasticity(p.Surface)}
	s.engine.SetGround(s.ground)
	s.engine.OnGroundContact(s.onContact)

	s.spawn = s.cfg.SpawnPoint(p.DropHeight)
	s.radius = InitialRadius(p.Mass)
	s.tracked = s.engine.AddBody(dynamo.Body{
		Mass:       p.Mass,
		Radius:     s.radius,
		Position:   s.spawn,
		Velocity:   dynamo.Vec2{X: p.LateralVelocity},
		Elasticity: s.cfg.BallElasticity,
	})

	for _, m := range s.metrics {
		m.Reset()
	}
	s.start = s.clock.Now()
	s.state = Running
	s.log.Info("session started",
		"mass", p.Mass, "height", p.DropHeight, "gravity", p.Gravity,
		"lateral", p.LateralVelocity, "surface", p.Surface)
	return nil
}

// InitialRadius is floor(sqrt(mass)), at least 1.
func InitialRadius(mass float64) float64 {
	r := math.Floor(math.Sqrt(mass))
	if !(r >= 1) {
		return 1
	}
	return r
}

func (s *Session) onContact(e dynamo.Engine, h dynamo.Handle) {
	children := s.rule.OnGroundContact(e, h)
	if len(children) == 0 {
		return
	}
	s.splits++
	if h == s.tracked {
		s.tracked = children[0]
	}
}

// Cancel asks the session to stop at the next frame.
func (s *Session) Cancel() { s.cancelled = true }

// Frame runs one cycle and reports whether the session is still running.
func (s *Session) Frame() (bool, error) {
	if s.state != Running {
		return false, ErrNotRunning
	}
	if s.cancelled {
		s.terminate(ReasonCanceled)
		// no step ran: the final observation repeats the last sample
		last, _ := s.LastSample()
		body, _ := s.engine.Body(s.tracked)
		s.observe(last.Velocity, body, 0)
		return false, nil
	}

	before := s.splits
	s.engine.Step(s.cfg.Dt)
	s.frames++

	body, ok := s.engine.Body(s.tracked)
	if !ok {
		body, ok = s.retrack()
	}

	s.elapsed = s.clock.Now().Sub(s.start).Seconds()
	v := math.Sqrt(2 * s.params.Gravity * body.Velocity.Len())
	s.samples = append(s.samples, dynamo.Sample{Time: s.elapsed, Velocity: v})

	switch {
	case !ok || body.Position.Y >= s.ground.Y-s.radius:
		s.terminate(ReasonGrounded)
	case s.cfg.MaxFrames > 0 && s.frames >= s.cfg.MaxFrames:
		s.terminate(ReasonFrameLimit)
	}

	s.observe(v, body, s.splits-before)
	return s.state == Running, nil
}

func (s *Session) observe(v float64, tracked dynamo.Body, splits int) {
	if len(s.metrics) == 0 {
		return
	}
	f := Frame{
		Index:    s.frames,
		Time:     s.elapsed,
		Velocity: v,
		Tracked:  dynamo.BodyRef{Handle: s.tracked, Body: tracked},
		Count:    s.engine.Len(),
		Splits:   splits,
		Final:    s.state == Terminated,
	}
	if f.Final {
		f.Bodies = s.engine.Bodies()
	}
	for _, m := range s.metrics {
		m.Observe(f)
	}
}

// retrack follows the lowest handle still in the world when the tracked
// body disappeared without fragmenting.
func (s *Session) retrack() (dynamo.Body, bool) {
	bodies := s.engine.Bodies()
	if len(bodies) == 0 {
		return dynamo.Body{}, false
	}
	s.log.Warn("tracked body lost", "handle", s.tracked, "next", bodies[0].Handle)
	s.tracked = bodies[0].Handle
	return bodies[0].Body, true
}

func (s *Session) terminate(r Reason) {
	s.state = Terminated
	s.reason = r
	s.log.Info("session terminated", "reason", r, "frames", s.frames, "elapsed", s.elapsed, "fragmentations", s.splits)
}

// Run drives frames until the session terminates or ctx is done. fn, if not
// nil, is called after every frame.
func (s *Session) Run(ctx context.Context, fn FrameFunc) (*Result, error) {
	if s.state != Running {
		return nil, ErrNotRunning
	}

	var tick <-chan time.Time
	if s.cfg.Pace {
		ticker := time.NewTicker(s.cfg.FrameInterval())
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			s.Cancel()
		default:
		}

		running, err := s.Frame()
		if err != nil {
			return nil, err
		}
		if fn != nil {
			fn(s)
		}
		if !running {
			return s.Result(), nil
		}

		if tick != nil {
			select {
			case <-ctx.Done():
				s.Cancel()
			case <-tick:
			}
		}
	}
}

// Draw renders the current frame: ground, basket, bodies and elapsed time.
func (s *Session) Draw(r dynamo.Renderer) {
	r.DrawLine(dynamo.Vec2{X: 0, Y: s.ground.Y}, dynamo.Vec2{X: s.cfg.Width, Y: s.ground.Y})
	if s.params.Surface == dynamo.Water {
		r.DrawLine(dynamo.Vec2{X: 0, Y: s.ground.Y + 2}, dynamo.Vec2{X: s.cfg.Width, Y: s.ground.Y + 2})
	}

	bx, by := s.spawn.X, s.spawn.Y
	w := InitialRadius(s.params.Mass) + 6
	r.DrawLine(dynamo.Vec2{X: bx - w, Y: by - w}, dynamo.Vec2{X: bx - w, Y: by + w})
	r.DrawLine(dynamo.Vec2{X: bx - w, Y: by + w}, dynamo.Vec2{X: bx + w, Y: by + w})
	r.DrawLine(dynamo.Vec2{X: bx + w, Y: by + w}, dynamo.Vec2{X: bx + w, Y: by - w})

	for _, b := range s.engine.Bodies() {
		r.DrawCircle(b.Body.Position, b.Body.Radius)
	}
	r.DrawText(dynamo.Vec2{X: 10, Y: 10}, fmt.Sprintf("Time: %.2fs", s.elapsed))
}

func (s *Session) Result() *Result {
	res := &Result{
		Params:         s.params,
		Samples:        s.Samples(),
		Reason:         s.reason,
		Frames:         s.frames,
		Fragmentations: s.splits,
		Duration:       s.elapsed,
		Metrics:        make(map[string]float64, len(s.metrics)),
	}
	for _, m := range s.metrics {
		res.Metrics[m.Name()] = m.Value()
	}
	return res
}

// Close removes every body still in the engine.
func (s *Session) Close() {
	for _, b := range s.engine.Bodies() {
		s.engine.RemoveBody(b.Handle)
	}
	if s.state == Running {
		s.terminate(ReasonCanceled)
	}
}
