package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/dropsim/internal/dynamo"
)

var byName = map[string]func() dynamo.Integrator{
	"euler":      func() dynamo.Integrator { return NewEuler() },
	"symplectic": func() dynamo.Integrator { return NewSymplecticEuler() },
	"verlet":     func() dynamo.Integrator { return NewVerlet() },
	"rk4":        func() dynamo.Integrator { return NewRK4() },
}

func Get(name string) (dynamo.Integrator, error) {
	fn, ok := byName[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
