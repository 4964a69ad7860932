package viz

import (
	"strings"
	"testing"

	"github.com/san-kum/dropsim/internal/dynamo"
)

func TestCanvasSetUnset(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(1, 3)
	if !c.IsSet(1, 3) {
		t.Fatal("expected pixel set")
	}
	if c.Grid[0][0] != blank|0x80 {
		t.Errorf("unexpected cell %U", c.Grid[0][0])
	}
	c.Unset(1, 3)
	if c.Grid[0][0] != blank {
		t.Errorf("expected blank cell, got %U", c.Grid[0][0])
	}

	// out of range writes are ignored
	c.Set(-1, 0)
	c.Set(4, 0)
	c.Set(0, 4)
}

func TestCanvasCircle(t *testing.T) {
	c := NewCanvas(10, 5)
	c.DrawCircle(10, 10, 5)

	for _, p := range [][2]int{{15, 10}, {5, 10}, {10, 15}, {10, 5}} {
		if !c.IsSet(p[0], p[1]) {
			t.Errorf("expected %v on the circle", p)
		}
	}
	if c.IsSet(10, 10) {
		t.Error("circle outline should not fill the center")
	}

	c.Clear()
	c.DrawCircle(3, 3, 0)
	if !c.IsSet(3, 3) {
		t.Error("zero radius should draw a dot")
	}
}

func TestCanvasText(t *testing.T) {
	c := NewCanvas(6, 2)
	c.Text(1, 0, "Time: 1.00s")
	c.Set(2, 0)

	first := strings.Split(c.String(), "\n")[0]
	if first != string(rune(blank))+"Time:" {
		t.Errorf("unexpected row %q", first)
	}
	if c.IsSet(2, 0) {
		t.Error("pixel writes must not touch text cells")
	}
	c.Clear()
	if c.Grid[0][1] != blank {
		t.Error("clear should remove text")
	}
}

func TestSceneProjection(t *testing.T) {
	c := NewCanvas(40, 30)
	s := NewScene(c, 800, 600)

	x, y := s.Project(dynamo.Vec2{X: 800, Y: 600})
	pw, ph := c.PixelSize()
	if x != pw-1 || y != ph-1 {
		t.Errorf("corner projects to (%d,%d), want (%d,%d)", x, y, pw-1, ph-1)
	}

	s.DrawLine(dynamo.Vec2{X: 0, Y: 550}, dynamo.Vec2{X: 800, Y: 550})
	_, gy := s.Project(dynamo.Vec2{Y: 550})
	for px := 0; px < pw; px++ {
		if !c.IsSet(px, gy) {
			t.Fatalf("ground line missing at x=%d", px)
		}
	}

	s.DrawText(dynamo.Vec2{X: 10, Y: 10}, "hi")
	if c.Grid[0][0] != 'h' {
		t.Errorf("expected text in the top-left cell, got %q", c.Grid[0][0])
	}
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	c := NewCanvas(4, 2)
	c.DrawLine(0, 0, 7, 7)
	r.Capture(c)
	r.Capture(c)
	if r.Len() != 2 {
		t.Fatalf("expected 2 frames, got %d", r.Len())
	}

	var buf strings.Builder
	if err := r.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "GIF89a") {
		t.Error("expected a GIF header")
	}

	r.Reset()
	if err := r.Save(t.TempDir() + "/empty.gif"); err != nil {
		t.Errorf("empty save: %v", err)
	}
}
