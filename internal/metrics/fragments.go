package metrics

import (
	"github.com/san-kum/dropsim/internal/sim"
)

// Fragments is the largest number of bodies seen in the world at once.
type Fragments struct {
	name string
	max  int
}

func NewFragments() *Fragments {
	return &Fragments{name: "fragments"}
}

func (m *Fragments) Name() string { return m.name }

func (m *Fragments) Observe(f sim.Frame) {
	if f.Count > m.max {
		m.max = f.Count
	}
}

func (m *Fragments) Value() float64 { return float64(m.max) }

func (m *Fragments) Reset() { m.max = 0 }

// ImpactTime is the elapsed time of the first frame in which a body
// fragmented, or -1 when none did.
type ImpactTime struct {
	name string
	t    float64
	seen bool
}

func NewImpactTime() *ImpactTime {
	return &ImpactTime{name: "impact_time"}
}

func (m *ImpactTime) Name() string { return m.name }

func (m *ImpactTime) Observe(f sim.Frame) {
	if !m.seen && f.Splits > 0 {
		m.t = f.Time
		m.seen = true
	}
}

func (m *ImpactTime) Value() float64 {
	if !m.seen {
		return -1
	}
	return m.t
}

func (m *ImpactTime) Reset() {
	m.t = 0
	m.seen = false
}

// Default returns a fresh set of the standard run metrics.
func Default() []sim.Metric {
	return []sim.Metric{
		NewPeakVelocity(),
		NewFragments(),
		NewImpactTime(),
		NewKineticEnergy(),
	}
}
