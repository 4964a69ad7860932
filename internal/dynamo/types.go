package dynamo

import (
	"fmt"
	"math"
	"strings"
)

// Vec2 is a 2D vector in screen coordinates (+Y points down).
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

func (v Vec2) Scale(f float64) Vec2 { return Vec2{v.X * f, v.Y * f} }

func (v Vec2) Dot(o Vec2) float64 { return v.X*o.X + v.Y*o.Y }

func (v Vec2) Len() float64 { return math.Sqrt(v.Dot(v)) }

func (v Vec2) IsValid() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// Handle identifies a body inside one engine. Handles are never reused.
type Handle uint64

// Body is a dynamic circular body.
type Body struct {
	Mass       float64
	Radius     float64
	Position   Vec2
	Velocity   Vec2
	Elasticity float64
	Fragmented bool
}

// KineticEnergy returns 0.5*m*|v|^2.
func (b Body) KineticEnergy() float64 {
	return 0.5 * b.Mass * b.Velocity.Dot(b.Velocity)
}

// BodyRef pairs a handle with a snapshot of its body.
type BodyRef struct {
	Handle Handle
	Body   Body
}

// Ground is a static infinite horizontal segment at Y.
type Ground struct {
	Y          float64
	Elasticity float64
}

type SurfaceMode int

const (
	Land SurfaceMode = iota
	Water
)

func (m SurfaceMode) String() string {
	switch m {
	case Land:
		return "land"
	case Water:
		return "water"
	}
	return fmt.Sprintf("surface(%d)", int(m))
}

func ParseSurfaceMode(s string) (SurfaceMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "land", "":
		return Land, nil
	case "water":
		return Water, nil
	}
	return Land, &ValidationError{Field: "surface", Message: fmt.Sprintf("unknown surface %q (want land or water)", s)}
}

// Params are the user-supplied simulation parameters.
type Params struct {
	Mass            float64
	DropHeight      float64
	Gravity         float64
	LateralVelocity float64
	Surface         SurfaceMode
}

// Sample is one (elapsed time, velocity metric) point.
type Sample struct {
	Time     float64
	Velocity float64
}

type SampleSeries []Sample

func (s SampleSeries) Times() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Time
	}
	return out
}

func (s SampleSeries) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Velocity
	}
	return out
}

// ContactHandler is invoked by an engine for a body that touched the ground.
type ContactHandler func(e Engine, h Handle)

// Engine is the rigid-body world a session drives.
type Engine interface {
	Configure(gravity Vec2)
	SetGround(g Ground)
	AddBody(b Body) Handle
	RemoveBody(h Handle)
	Body(h Handle) (Body, bool)
	MarkFragmented(h Handle) bool
	Step(dt float64)
	Bodies() []BodyRef
	// Len is the number of bodies in the world.
	Len() int
	OnGroundContact(fn ContactHandler)
}

// Accel returns the acceleration of a body at pos moving with vel.
type Accel func(pos, vel Vec2) Vec2

type Integrator interface {
	Step(a Accel, pos, vel Vec2, dt float64) (Vec2, Vec2)
}

// Renderer receives draw calls in world coordinates.
type Renderer interface {
	DrawCircle(center Vec2, radius float64)
	DrawLine(a, b Vec2)
	DrawText(pos Vec2, text string)
}
