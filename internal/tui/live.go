// Package tui prints a running session as plain text frames, for terminals
// or pipes where the interactive app is not wanted.
package tui

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/san-kum/dropsim/internal/dynamo"
	"github.com/san-kum/dropsim/internal/sim"
)

const (
	width       = 70
	height      = 24
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// LiveRenderer draws into a character grid scaled from the world size. It
// implements dynamo.Renderer.
type LiveRenderer struct {
	out       io.Writer
	frameRate int
	lastFrame time.Time
	sx, sy    float64
	canvas    [][]rune
	// Clear emits an ANSI clear before each frame.
	Clear bool
}

func NewLiveRenderer(out io.Writer, worldW, worldH float64, frameRate int) *LiveRenderer {
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
	}
	r := &LiveRenderer{
		out:       out,
		frameRate: frameRate,
		sx:        float64(width-1) / worldW,
		sy:        float64(height-1) / worldH,
		canvas:    canvas,
		Clear:     true,
	}
	r.clear()
	return r
}

func (r *LiveRenderer) project(p dynamo.Vec2) (int, int) {
	return int(math.Round(p.X * r.sx)), int(math.Round(p.Y * r.sy))
}

func (r *LiveRenderer) DrawCircle(center dynamo.Vec2, radius float64) {
	x, y := r.project(center)
	rx := int(math.Round(radius * r.sx))
	if rx < 1 {
		r.set(x, y, 'o')
		return
	}
	ry := int(math.Round(radius * r.sy))
	for dy := -ry; dy <= ry; dy++ {
		for dx := -rx; dx <= rx; dx++ {
			fx, fy := float64(dx)/float64(rx), 0.0
			if ry > 0 {
				fy = float64(dy) / float64(ry)
			}
			if fx*fx+fy*fy <= 1 {
				r.set(x+dx, y+dy, 'O')
			}
		}
	}
}

func (r *LiveRenderer) DrawLine(a, b dynamo.Vec2) {
	x0, y0 := r.project(a)
	x1, y1 := r.project(b)
	c := '-'
	if x0 == x1 {
		c = '|'
	}
	r.line(x0, y0, x1, y1, c)
}

func (r *LiveRenderer) DrawText(pos dynamo.Vec2, text string) {
	x, y := r.project(pos)
	for _, c := range text {
		r.set(x, y, c)
		x++
	}
}

// Frame draws s when at least one frame interval has passed since the last
// draw, and always once the session is over. It fits sim.FrameFunc.
func (r *LiveRenderer) Frame(s *sim.Session) {
	if s.State() == sim.Running && r.frameRate > 0 && time.Since(r.lastFrame) < time.Second/time.Duration(r.frameRate) {
		return
	}
	r.lastFrame = time.Now()
	r.clear()
	s.Draw(r)
	r.render(s)
}

func (r *LiveRenderer) clear() {
	for y := range r.canvas {
		for x := range r.canvas[y] {
			r.canvas[y][x] = ' '
		}
	}
}

func (r *LiveRenderer) set(x, y int, c rune) {
	if x >= 0 && x < width && y >= 0 && y < height {
		r.canvas[y][x] = c
	}
}

func (r *LiveRenderer) line(x1, y1, x2, y2 int, c rune) {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy
	for {
		r.set(x1, y1, c)
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// String returns the current grid.
func (r *LiveRenderer) String() string {
	var b strings.Builder
	for _, row := range r.canvas {
		b.WriteString(strings.TrimRight(string(row), " "))
		b.WriteString("\n")
	}
	return b.String()
}

func (r *LiveRenderer) render(s *sim.Session) {
	var b strings.Builder
	if r.Clear {
		b.WriteString(clearScreen)
	}
	p := s.Params()
	b.WriteString(fmt.Sprintf("  drop  %s  bodies=%d  splits=%d\n", p.Surface, len(s.Bodies()), s.Fragmentations()))
	b.WriteString("  " + strings.Repeat("-", width) + "\n")
	for _, row := range r.canvas {
		b.WriteString("  ")
		b.WriteString(string(row))
		b.WriteString("\n")
	}
	b.WriteString("  " + strings.Repeat("-", width) + "\n")
	if last, ok := s.LastSample(); ok {
		b.WriteString(fmt.Sprintf("  t=%.2fs  v=%.2f\n", last.Time, last.Velocity))
	}
	fmt.Fprint(r.out, b.String())
}

func (r *LiveRenderer) Start() { fmt.Fprint(r.out, hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Fprint(r.out, showCursor) }

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
