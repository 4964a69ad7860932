package integrators

import "github.com/san-kum/dropsim/internal/dynamo"

// Euler is the explicit forward Euler method.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(a dynamo.Accel, pos, vel dynamo.Vec2, dt float64) (dynamo.Vec2, dynamo.Vec2) {
	acc := a(pos, vel)
	return pos.Add(vel.Scale(dt)), vel.Add(acc.Scale(dt))
}

// SymplecticEuler updates velocity first and moves with the new velocity.
// Chipmunk integrates bodies the same way.
type SymplecticEuler struct{}

func NewSymplecticEuler() *SymplecticEuler {
	return &SymplecticEuler{}
}

func (s *SymplecticEuler) Step(a dynamo.Accel, pos, vel dynamo.Vec2, dt float64) (dynamo.Vec2, dynamo.Vec2) {
	newVel := vel.Add(a(pos, vel).Scale(dt))
	return pos.Add(newVel.Scale(dt)), newVel
}
