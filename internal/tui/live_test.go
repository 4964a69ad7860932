package tui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/dropsim/internal/dynamo"
	"github.com/san-kum/dropsim/internal/integrators"
	"github.com/san-kum/dropsim/internal/physics"
	"github.com/san-kum/dropsim/internal/sim"
)

func TestLiveRendererPrimitives(t *testing.T) {
	r := NewLiveRenderer(&bytes.Buffer{}, 700, 240, 0)

	r.DrawLine(dynamo.Vec2{X: 0, Y: 240}, dynamo.Vec2{X: 700, Y: 240})
	r.DrawCircle(dynamo.Vec2{X: 350, Y: 100}, 0.1)
	r.DrawText(dynamo.Vec2{X: 0, Y: 0}, "Time: 0.00s")

	lines := strings.Split(r.String(), "\n")
	if lines[0] != "Time: 0.00s" {
		t.Errorf("text row = %q", lines[0])
	}
	if !strings.Contains(lines[10], "o") {
		t.Errorf("expected small body on row 10, got %q", lines[10])
	}
	if strings.Count(lines[23], "-") != width {
		t.Errorf("expected full ground line, got %q", lines[23])
	}
}

func TestLiveRendererFollowsSession(t *testing.T) {
	var out bytes.Buffer
	r := NewLiveRenderer(&out, 800, 600, 0)
	r.Clear = false

	s := sim.New(physics.NewWorld(integrators.NewSymplecticEuler()), sim.DefaultConfig(),
		sim.WithClock(sim.NewStepClock(time.Second/60)),
		sim.WithLogger(log.New(&bytes.Buffer{})),
	)
	if err := s.Start(dynamo.Params{Mass: 100, DropHeight: 300, Gravity: 981}); err != nil {
		t.Fatal(err)
	}
	r.Start()
	if _, err := s.Run(t.Context(), r.Frame); err != nil {
		t.Fatal(err)
	}
	r.Stop()

	got := out.String()
	if !strings.Contains(got, "drop  land") {
		t.Error("missing header")
	}
	if !strings.Contains(r.String(), "O") {
		t.Error("expected bodies in the final frame")
	}
	if strings.Contains(got, clearScreen) {
		t.Error("clear disabled but escape written")
	}
}
