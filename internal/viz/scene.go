package viz

import (
	"github.com/san-kum/dropsim/internal/dynamo"
)

// Scene adapts a Canvas to dynamo.Renderer by scaling a world of the given
// size onto the canvas sub-pixels. Y points down in both spaces.
type Scene struct {
	canvas *Canvas
	worldW float64
	worldH float64
	sx, sy float64
}

func NewScene(c *Canvas, worldW, worldH float64) *Scene {
	s := &Scene{canvas: c, worldW: worldW, worldH: worldH}
	s.Resize(c)
	return s
}

// Resize rebinds the scene to another canvas.
func (s *Scene) Resize(c *Canvas) {
	s.canvas = c
	pw, ph := c.PixelSize()
	s.sx = float64(pw-1) / s.worldW
	s.sy = float64(ph-1) / s.worldH
}

func (s *Scene) Canvas() *Canvas { return s.canvas }

// Project maps a world point to canvas sub-pixels.
func (s *Scene) Project(p dynamo.Vec2) (int, int) {
	return round(p.X * s.sx), round(p.Y * s.sy)
}

func (s *Scene) Clear() { s.canvas.Clear() }

func (s *Scene) DrawCircle(center dynamo.Vec2, radius float64) {
	x, y := s.Project(center)
	s.canvas.DrawCircle(x, y, round(radius*(s.sx+s.sy)/2))
}

func (s *Scene) DrawLine(a, b dynamo.Vec2) {
	x0, y0 := s.Project(a)
	x1, y1 := s.Project(b)
	s.canvas.DrawLine(x0, y0, x1, y1)
}

// DrawText places text at the cell containing pos.
func (s *Scene) DrawText(pos dynamo.Vec2, text string) {
	x, y := s.Project(pos)
	s.canvas.Text(x/2, y/4, text)
}
