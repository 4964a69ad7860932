package viz

import (
	"image"
	"image/color"
	"image/gif"
	"io"
	"os"
)

const (
	cellW = 8
	cellH = 16
)

// Recorder collects canvas frames and writes them as an animated GIF.
type Recorder struct {
	frames []*image.Paletted
	// Delay between frames in 100ths of a second.
	Delay int
}

func NewRecorder() *Recorder { return &Recorder{Delay: 2} }

func (r *Recorder) Len() int { return len(r.frames) }

// Capture rasterizes the braille dots of c. Text cells are skipped.
func (r *Recorder) Capture(c *Canvas) {
	img := image.NewPaletted(image.Rect(0, 0, c.Width*cellW, c.Height*cellH), color.Palette{color.Black, color.White})
	dotW, dotH := cellW/2, cellH/4
	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			cell := c.Grid[row][col]
			if cell < blank {
				continue
			}
			pattern := int(cell - blank)
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] == 0 {
						continue
					}
					x0, y0 := col*cellW+dx*dotW, row*cellH+dy*dotH
					for py := 0; py < dotH; py++ {
						for px := 0; px < dotW; px++ {
							img.SetColorIndex(x0+px, y0+py, 1)
						}
					}
				}
			}
		}
	}
	r.frames = append(r.frames, img)
}

func (r *Recorder) Encode(w io.Writer) error {
	anim := gif.GIF{LoopCount: 0}
	for _, f := range r.frames {
		anim.Image = append(anim.Image, f)
		anim.Delay = append(anim.Delay, r.Delay)
	}
	return gif.EncodeAll(w, &anim)
}

// Save writes the recording to path. An empty recording writes nothing.
func (r *Recorder) Save(path string) error {
	if len(r.frames) == 0 {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (r *Recorder) Reset() { r.frames = nil }
