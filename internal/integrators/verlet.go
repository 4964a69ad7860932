package integrators

import "github.com/san-kum/dropsim/internal/dynamo"

// Verlet is velocity Verlet.
type Verlet struct{}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) Step(a dynamo.Accel, pos, vel dynamo.Vec2, dt float64) (dynamo.Vec2, dynamo.Vec2) {
	acc := a(pos, vel)
	newPos := pos.Add(vel.Scale(dt)).Add(acc.Scale(0.5 * dt * dt))

	// velocity-dependent forces see the half-step estimate
	accNew := a(newPos, vel.Add(acc.Scale(dt)))
	newVel := vel.Add(acc.Add(accNew).Scale(0.5 * dt))

	return newPos, newVel
}
