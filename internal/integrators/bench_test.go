package integrators

import (
	"testing"

	"github.com/san-kum/dropsim/internal/dynamo"
)

func benchIntegrator(b *testing.B, integ dynamo.Integrator) {
	pos, vel := dynamo.Vec2{}, dynamo.Vec2{X: 1}
	acc := gravity(981)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pos, vel = integ.Step(acc, pos, vel, 1.0/60.0)
	}
}

func BenchmarkEuler(b *testing.B)      { benchIntegrator(b, NewEuler()) }
func BenchmarkSymplectic(b *testing.B) { benchIntegrator(b, NewSymplecticEuler()) }
func BenchmarkVerlet(b *testing.B)     { benchIntegrator(b, NewVerlet()) }
func BenchmarkRK4(b *testing.B)        { benchIntegrator(b, NewRK4()) }
