// Package fragment implements the impact fragmentation rule: when a body
// touches the ground it is replaced by one or more children sized by an
// impact energy proxy computed from the session parameters.
package fragment

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/charmbracelet/log"
	"github.com/san-kum/dropsim/internal/dynamo"
)

const (
	// ForceScale divides mass*height*gravity into the impact force proxy.
	ForceScale = 100000.0
	// SplitThreshold is the force at or below which a body only bounces.
	SplitThreshold = 10.0
	// DefaultMaxOffset bounds the horizontal scatter of children.
	DefaultMaxOffset = 20
)

// Split describes how a parent body is divided.
type Split struct {
	Count       int
	MassScale   float64
	RadiusScale float64
}

var bounce = Split{Count: 1, MassScale: 1, RadiusScale: 1}

// Force returns the impact energy proxy for a body of the given mass.
func Force(mass float64, p dynamo.Params) float64 {
	return mass * p.DropHeight * p.Gravity / ForceScale
}

// Plan decides the split for an impact force. Water and small forces yield a
// single full-size child; larger forces yield floor(ln(force)) half-size
// children. A force that cannot be split that way returns the single-child
// plan together with dynamo.ErrDegenerateFragment.
func Plan(force float64, surface dynamo.SurfaceMode) (Split, error) {
	if force <= SplitThreshold || surface == dynamo.Water {
		return bounce, nil
	}
	if math.IsNaN(force) || math.IsInf(force, 0) || force <= 1 {
		return bounce, fmt.Errorf("force %v: %w", force, dynamo.ErrDegenerateFragment)
	}
	n := int(math.Floor(math.Log(force)))
	if n < 1 {
		return bounce, fmt.Errorf("force %v gives %d fragments: %w", force, n, dynamo.ErrDegenerateFragment)
	}
	return Split{Count: n, MassScale: 0.5, RadiusScale: 0.5}, nil
}

type Option func(*Rule)

// WithLogger sets the logger used for contract violations.
func WithLogger(l *log.Logger) Option {
	return func(r *Rule) { r.log = l }
}

// WithRand sets the source of horizontal offsets.
func WithRand(rnd *rand.Rand) Option {
	return func(r *Rule) { r.rnd = rnd }
}

// WithMaxOffset sets the inclusive bound of the horizontal child offset.
func WithMaxOffset(n int) Option {
	return func(r *Rule) {
		if n >= 0 {
			r.maxOffset = n
		}
	}
}

// WithLockedChildren spawns children already marked as fragmented so they
// never split again.
func WithLockedChildren(locked bool) Option {
	return func(r *Rule) { r.lockChildren = locked }
}

// Rule is bound to the parameters of one session.
type Rule struct {
	params       dynamo.Params
	rnd          *rand.Rand
	log          *log.Logger
	maxOffset    int
	lockChildren bool
	splits       int
}

func New(p dynamo.Params, opts ...Option) *Rule {
	r := &Rule{
		params:    p,
		maxOffset: DefaultMaxOffset,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.rnd == nil {
		r.rnd = rand.New(rand.NewSource(1))
	}
	if r.log == nil {
		r.log = log.Default()
	}
	return r
}

// Splits reports how many bodies this rule has fragmented.
func (r *Rule) Splits() int { return r.splits }

// OnGroundContact fragments the body h once. It returns the child handles,
// or nil when the body is gone or has already fragmented.
func (r *Rule) OnGroundContact(w dynamo.Engine, h dynamo.Handle) []dynamo.Handle {
	parent, ok := w.Body(h)
	if !ok || parent.Fragmented {
		return nil
	}
	if !w.MarkFragmented(h) {
		return nil
	}

	force := Force(parent.Mass, r.params)
	split, err := Plan(force, r.params.Surface)
	if err != nil {
		r.log.Warn("fragmentation fell back to a single child", "handle", h, "force", force, "err", err)
	}

	children := make([]dynamo.Body, split.Count)
	for i := range children {
		offset := float64(r.offset())
		children[i] = dynamo.Body{
			Mass:       parent.Mass * split.MassScale,
			Radius:     parent.Radius * split.RadiusScale,
			Position:   parent.Position.Add(dynamo.Vec2{X: offset}),
			Velocity:   parent.Velocity,
			Elasticity: parent.Elasticity,
			Fragmented: r.lockChildren,
		}
	}

	w.RemoveBody(h)
	handles := make([]dynamo.Handle, len(children))
	for i, c := range children {
		handles[i] = w.AddBody(c)
	}
	r.splits++

	r.log.Debug("fragmented", "handle", h, "force", force, "children", split.Count)
	return handles
}

// offset draws a uniform integer in [-maxOffset, maxOffset].
func (r *Rule) offset() int {
	return r.rnd.Intn(2*r.maxOffset+1) - r.maxOffset
}
