package integrators

import "github.com/san-kum/dropsim/internal/dynamo"

type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Step(a dynamo.Accel, pos, vel dynamo.Vec2, dt float64) (dynamo.Vec2, dynamo.Vec2) {
	k1x, k1v := vel, a(pos, vel)

	p2, v2 := pos.Add(k1x.Scale(dt*0.5)), vel.Add(k1v.Scale(dt*0.5))
	k2x, k2v := v2, a(p2, v2)

	p3, v3 := pos.Add(k2x.Scale(dt*0.5)), vel.Add(k2v.Scale(dt*0.5))
	k3x, k3v := v3, a(p3, v3)

	p4, v4 := pos.Add(k3x.Scale(dt)), vel.Add(k3v.Scale(dt))
	k4x, k4v := v4, a(p4, v4)

	dt6 := dt / 6.0
	newPos := pos.Add(k1x.Add(k2x.Scale(2)).Add(k3x.Scale(2)).Add(k4x).Scale(dt6))
	newVel := vel.Add(k1v.Add(k2v.Scale(2)).Add(k3v.Scale(2)).Add(k4v).Scale(dt6))

	return newPos, newVel
}
