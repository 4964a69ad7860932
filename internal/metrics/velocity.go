package metrics

import (
	"math"

	"github.com/san-kum/dropsim/internal/sim"
)

// PeakVelocity is the largest sampled velocity metric.
type PeakVelocity struct {
	name string
	peak float64
}

func NewPeakVelocity() *PeakVelocity {
	return &PeakVelocity{name: "peak_velocity"}
}

func (p *PeakVelocity) Name() string { return p.name }

func (p *PeakVelocity) Observe(f sim.Frame) {
	if math.IsNaN(f.Velocity) {
		return
	}
	p.peak = math.Max(p.peak, f.Velocity)
}

func (p *PeakVelocity) Value() float64 { return p.peak }

func (p *PeakVelocity) Reset() { p.peak = 0 }
