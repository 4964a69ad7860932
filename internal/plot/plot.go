// Package plot draws the velocity-time chart shown after a run.
package plot

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/dropsim/internal/dynamo"
)

const (
	Title  = "Velocity-Time Graph"
	XLabel = "Time (s)"
	YLabel = "Velocity (m/s)"
)

var ErrNoSamples = errors.New("no finite samples to plot")

type Options struct {
	Width     int
	Height    int
	Precision uint
}

func DefaultOptions() Options {
	return Options{Width: 70, Height: 15, Precision: 1}
}

// Finite drops samples whose time or velocity is NaN or infinite.
func Finite(s dynamo.SampleSeries) dynamo.SampleSeries {
	out := make(dynamo.SampleSeries, 0, len(s))
	for _, p := range s {
		if isFinite(p.Time) && isFinite(p.Velocity) {
			out = append(out, p)
		}
	}
	return out
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Resample returns n velocities at evenly spaced times between the first
// and last sample, linearly interpolated. Samples must be ordered by time.
func Resample(s dynamo.SampleSeries, n int) []float64 {
	if len(s) == 0 {
		return nil
	}
	if n < 2 {
		n = 2
	}
	out := make([]float64, n)
	t0, t1 := s[0].Time, s[len(s)-1].Time
	if len(s) == 1 || t1 <= t0 {
		for i := range out {
			out[i] = s[len(s)-1].Velocity
		}
		return out
	}

	for i := range out {
		t := t0 + (t1-t0)*float64(i)/float64(n-1)
		j := sort.Search(len(s), func(k int) bool { return s[k].Time >= t })
		switch {
		case j == 0:
			out[i] = s[0].Velocity
		case j >= len(s):
			out[i] = s[len(s)-1].Velocity
		default:
			a, b := s[j-1], s[j]
			f := (t - a.Time) / (b.Time - a.Time)
			out[i] = a.Velocity + f*(b.Velocity-a.Velocity)
		}
	}
	return out
}

// Render draws the series as a captioned line chart with labelled axes.
func Render(s dynamo.SampleSeries, opts Options) (string, error) {
	s = Finite(s)
	if len(s) == 0 {
		return "", ErrNoSamples
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		d := DefaultOptions()
		if opts.Width <= 0 {
			opts.Width = d.Width
		}
		if opts.Height <= 0 {
			opts.Height = d.Height
		}
	}

	graph := asciigraph.Plot(Resample(s, opts.Width),
		asciigraph.Height(opts.Height),
		asciigraph.Precision(opts.Precision),
		asciigraph.Caption(Title),
	)

	var b strings.Builder
	b.WriteString(YLabel)
	b.WriteString("\n")
	b.WriteString(graph)
	b.WriteString("\n")
	b.WriteString(timeAxis(s[0].Time, s[len(s)-1].Time, opts.Width))
	return b.String(), nil
}

func timeAxis(t0, t1 float64, width int) string {
	left := fmt.Sprintf("%.2f", t0)
	right := fmt.Sprintf("%.2f", t1)
	gap := width - len(left) - len(right)
	if gap < 1 {
		gap = 1
	}
	return fmt.Sprintf("%s%s%s  %s", left, strings.Repeat(" ", gap), right, XLabel)
}
