package metrics

import (
	"github.com/san-kum/dropsim/internal/sim"
)

// KineticEnergy reports the total kinetic energy of every body when the
// session ends.
type KineticEnergy struct {
	name  string
	total float64
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (e *KineticEnergy) Name() string { return e.name }

func (e *KineticEnergy) Observe(f sim.Frame) {
	if !f.Final {
		return
	}
	e.total = 0
	for _, b := range f.Bodies {
		e.total += b.Body.KineticEnergy()
	}
}

func (e *KineticEnergy) Value() float64 { return e.total }

func (e *KineticEnergy) Reset() { e.total = 0 }
