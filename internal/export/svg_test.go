package export

import (
	"strings"
	"testing"

	"github.com/san-kum/dropsim/internal/dynamo"
	"github.com/san-kum/dropsim/internal/viz"
)

func TestSeriesToSVG(t *testing.T) {
	s := dynamo.SampleSeries{
		{Time: 0.1, Velocity: 10},
		{Time: 0.2, Velocity: 20},
		{Time: 0.3, Velocity: 15},
	}
	out := SeriesToSVG(s, 640, 480)
	for _, want := range []string{"<svg", "Velocity-Time Graph", "Time (s)", "Velocity (m/s)", "<path"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q", want)
		}
	}
	if got := strings.Count(out, " L"); got != 2 {
		t.Errorf("expected 2 line segments, got %d", got)
	}
}

func TestSeriesToSVGTooShort(t *testing.T) {
	if out := SeriesToSVG(dynamo.SampleSeries{{Time: 0, Velocity: 1}}, 100, 100); out != "" {
		t.Error("expected empty output for a single sample")
	}
}

func TestCanvasToSVG(t *testing.T) {
	if CanvasToSVG(nil, 1) != "" {
		t.Error("expected empty output for nil canvas")
	}

	c := viz.NewCanvas(4, 2)
	c.Set(0, 0)
	c.Set(1, 5)
	c.Text(0, 1, "<a")

	out := CanvasToSVG(c, 2)
	if got := strings.Count(out, "<circle"); got != 1 {
		t.Errorf("expected 1 dot outside the text row, got %d", got)
	}
	if !strings.Contains(out, "&lt;") {
		t.Error("expected escaped text")
	}
}
