package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/dropsim/internal/dynamo"
	"github.com/san-kum/dropsim/internal/sim"
)

func frame(t, v float64, splits int, bodies ...dynamo.Body) sim.Frame {
	refs := make([]dynamo.BodyRef, len(bodies))
	for i, b := range bodies {
		refs[i] = dynamo.BodyRef{Handle: dynamo.Handle(i + 1), Body: b}
	}
	return sim.Frame{Time: t, Velocity: v, Splits: splits, Count: len(refs), Bodies: refs}
}

func final(f sim.Frame) sim.Frame {
	f.Final = true
	return f
}

func TestPeakVelocity(t *testing.T) {
	m := NewPeakVelocity()
	for _, v := range []float64{3, 9, math.NaN(), 4} {
		m.Observe(frame(0, v, 0))
	}
	if m.Value() != 9 {
		t.Errorf("expected peak 9, got %v", m.Value())
	}
	m.Reset()
	if m.Value() != 0 {
		t.Errorf("expected 0 after reset, got %v", m.Value())
	}
}

func TestFragments(t *testing.T) {
	b := dynamo.Body{Mass: 1, Radius: 1}
	m := NewFragments()
	m.Observe(frame(0, 0, 0, b))
	m.Observe(frame(0, 0, 1, b, b, b))
	m.Observe(frame(0, 0, 0, b, b))
	if m.Value() != 3 {
		t.Errorf("expected 3, got %v", m.Value())
	}
}

func TestImpactTime(t *testing.T) {
	tests := []struct {
		name   string
		frames []sim.Frame
		want   float64
	}{
		{"no impact", []sim.Frame{frame(0.1, 0, 0), frame(0.2, 0, 0)}, -1},
		{"first impact wins", []sim.Frame{frame(0.1, 0, 0), frame(0.2, 0, 1), frame(0.3, 0, 2)}, 0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewImpactTime()
			for _, f := range tt.frames {
				m.Observe(f)
			}
			if got := m.Value(); got != tt.want {
				t.Errorf("Value() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKineticEnergyUsesFinalFrame(t *testing.T) {
	m := NewKineticEnergy()
	m.Observe(frame(0, 0, 0, dynamo.Body{Mass: 2, Velocity: dynamo.Vec2{X: 10}}))
	if m.Value() != 0 {
		t.Errorf("running frames should not count, got %v", m.Value())
	}
	m.Observe(final(frame(0, 0, 0,
		dynamo.Body{Mass: 2, Velocity: dynamo.Vec2{Y: 3}},
		dynamo.Body{Mass: 4, Velocity: dynamo.Vec2{X: 1}},
	)))
	if got := m.Value(); math.Abs(got-11) > 1e-12 {
		t.Errorf("expected 11, got %v", got)
	}
}

func TestFragmentsUsesCount(t *testing.T) {
	m := NewFragments()
	m.Observe(sim.Frame{Count: 7})
	m.Observe(sim.Frame{Count: 2})
	if m.Value() != 7 {
		t.Errorf("expected 7, got %v", m.Value())
	}
}

func TestDefaultNames(t *testing.T) {
	want := []string{"peak_velocity", "fragments", "impact_time", "kinetic_energy"}
	ms := Default()
	if len(ms) != len(want) {
		t.Fatalf("expected %d metrics, got %d", len(want), len(ms))
	}
	for i, m := range ms {
		if m.Name() != want[i] {
			t.Errorf("metric %d: got %q, want %q", i, m.Name(), want[i])
		}
	}
}
