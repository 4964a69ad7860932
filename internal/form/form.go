// Package form turns the text typed into the parameter form into
// simulation parameters.
package form

import (
	"math"
	"strconv"
	"strings"

	"github.com/san-kum/dropsim/internal/dynamo"
)

// InvalidNumber is shown when a field does not hold a finite number.
const InvalidNumber = "please enter valid numerical values"

// Field identifies one text input of the form.
type Field int

const (
	Mass Field = iota
	Height
	Gravity
	Lateral
	NumFields
)

var labels = [...]string{
	Mass:    "Weight (kg)",
	Height:  "Height (m)",
	Gravity: "Gravity",
	Lateral: "Wind (m/s)",
}

var names = [...]string{
	Mass:    "mass",
	Height:  "height",
	Gravity: "gravity",
	Lateral: "lateral",
}

func (f Field) Label() string  { return labels[f] }
func (f Field) String() string { return names[f] }

// Fields holds the raw form input.
type Fields struct {
	Text    [NumFields]string
	Surface dynamo.SurfaceMode
}

// FromParams fills the form with the text of existing parameters.
func FromParams(p dynamo.Params) Fields {
	format := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	var f Fields
	f.Text[Mass] = format(p.Mass)
	f.Text[Height] = format(p.DropHeight)
	f.Text[Gravity] = format(p.Gravity)
	f.Text[Lateral] = format(p.LateralVelocity)
	f.Surface = p.Surface
	return f
}

// Parse converts every field to a number. It does not check bounds; the
// session does that on Start.
func (f Fields) Parse() (dynamo.Params, error) {
	var v [NumFields]float64
	for i := Field(0); i < NumFields; i++ {
		x, err := strconv.ParseFloat(strings.TrimSpace(f.Text[i]), 64)
		if err != nil || math.IsNaN(x) || math.IsInf(x, 0) {
			return dynamo.Params{}, &dynamo.ValidationError{Field: i.String(), Message: InvalidNumber}
		}
		v[i] = x
	}
	return dynamo.Params{
		Mass:            v[Mass],
		DropHeight:      v[Height],
		Gravity:         v[Gravity],
		LateralVelocity: v[Lateral],
		Surface:         f.Surface,
	}, nil
}
