package export

import (
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/san-kum/dropsim/internal/dynamo"
	"github.com/san-kum/dropsim/internal/plot"
	"github.com/san-kum/dropsim/internal/viz"
)

// CanvasToSVG converts a Braille canvas to SVG format. Text cells become
// <text> elements.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.Width) * scale * 2   // 2 sub-pixels per char
	height := float64(canvas.Height) * scale * 4 // 4 sub-pixels per char

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ff00">
`, width, height, width, height)

	dotRadius := scale * 0.4
	var texts strings.Builder
	pw, ph := canvas.PixelSize()
	for y := 0; y < ph; y++ {
		for x := 0; x < pw; x++ {
			if canvas.IsSet(x, y) {
				fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
					float64(x)*scale+scale/2, float64(y)*scale+scale/2, dotRadius)
			}
		}
	}
	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			if r := canvas.Grid[row][col]; r < 0x2800 && r != ' ' {
				fmt.Fprintf(&texts, "<text x=\"%.1f\" y=\"%.1f\">%s</text>\n",
					float64(col)*scale*2, float64(row+1)*scale*4, html.EscapeString(string(r)))
			}
		}
	}

	sb.WriteString("</g>\n")
	if texts.Len() > 0 {
		fmt.Fprintf(&sb, "<g fill=\"#ffffff\" font-family=\"monospace\" font-size=\"%.0f\">\n", scale*4)
		sb.WriteString(texts.String())
		sb.WriteString("</g>\n")
	}
	sb.WriteString("</svg>")
	return sb.String()
}

// SeriesToSVG draws the velocity-time chart with a title and labelled axes.
// It returns "" when the series has fewer than two finite samples.
func SeriesToSVG(series dynamo.SampleSeries, width, height int) string {
	points := plot.Finite(series)
	if len(points) < 2 {
		return ""
	}

	const margin = 50.0
	minX, maxX := points[0].Time, points[0].Time
	minY, maxY := points[0].Velocity, points[0].Velocity
	for _, p := range points {
		minX, maxX = math.Min(minX, p.Time), math.Max(maxX, p.Time)
		minY, maxY = math.Min(minY, p.Velocity), math.Max(maxY, p.Velocity)
	}
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}

	plotW := float64(width) - 2*margin
	plotH := float64(height) - 2*margin
	px := func(t float64) float64 { return margin + (t-minX)/rangeX*plotW }
	py := func(v float64) float64 { return margin + plotH - (v-minY)/rangeY*plotH }

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#ffffff"/>
<g stroke="#000000" stroke-width="1">
<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>
<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>
</g>
`, width, height, width, height,
		margin, margin+plotH, margin+plotW, margin+plotH,
		margin, margin, margin, margin+plotH)

	sb.WriteString(`<path fill="none" stroke="#1f77b4" stroke-width="1.5" d="M`)
	for i, p := range points {
		if i > 0 {
			sb.WriteString(" L")
		}
		fmt.Fprintf(&sb, "%.1f,%.1f", px(p.Time), py(p.Velocity))
	}
	sb.WriteString("\"/>\n")

	fmt.Fprintf(&sb, `<g font-family="sans-serif" font-size="12" fill="#000000">
<text x="%.1f" y="%.1f" text-anchor="middle" font-size="16">%s</text>
<text x="%.1f" y="%.1f" text-anchor="middle">%s</text>
<text x="%.1f" y="%.1f" text-anchor="middle" transform="rotate(-90 %.1f %.1f)">%s</text>
<text x="%.1f" y="%.1f">%.2f</text>
<text x="%.1f" y="%.1f" text-anchor="end">%.2f</text>
<text x="%.1f" y="%.1f" text-anchor="end">%.1f</text>
<text x="%.1f" y="%.1f" text-anchor="end">%.1f</text>
</g>
</svg>`,
		float64(width)/2, margin/2, plot.Title,
		float64(width)/2, float64(height)-10, plot.XLabel,
		15.0, float64(height)/2, 15.0, float64(height)/2, plot.YLabel,
		margin, margin+plotH+15, minX,
		margin+plotW, margin+plotH+15, maxX,
		margin-4, margin+plotH, minY,
		margin-4, margin+4, maxY)
	return sb.String()
}
