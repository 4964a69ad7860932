package optim

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/san-kum/dropsim/internal/config"
	"github.com/san-kum/dropsim/internal/experiment"
)

func setup(t *testing.T) (experiment.Config, *experiment.Registry, *log.Logger) {
	t.Helper()
	base, err := experiment.FromConfig(config.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	return base, experiment.NewRegistry(), log.New(&bytes.Buffer{})
}

func TestLinspace(t *testing.T) {
	tests := []struct {
		lo, hi float64
		n      int
		want   []float64
	}{
		{0, 1, 3, []float64{0, 0.5, 1}},
		{100, 500, 5, []float64{100, 200, 300, 400, 500}},
		{7, 9, 1, []float64{7}},
	}
	for _, tt := range tests {
		got := Linspace(tt.lo, tt.hi, tt.n)
		if len(got) != len(tt.want) {
			t.Fatalf("Linspace(%v, %v, %d) = %v", tt.lo, tt.hi, tt.n, got)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Linspace(%v, %v, %d)[%d] = %v, want %v", tt.lo, tt.hi, tt.n, i, got[i], tt.want[i])
			}
		}
	}
}

func TestGridSearchMaximizeFragments(t *testing.T) {
	base, reg, logger := setup(t)

	g := NewGridSearch([]string{"mass", "height"}, [][]float64{{10, 2500}, {100, 500, 700}})
	g.Maximize = true

	best, err := g.Search(context.Background(), base, reg, logger, "fragments")
	if err != nil {
		t.Fatal(err)
	}
	if best.Evaluated != 4 || best.Rejected != 2 {
		t.Errorf("evaluated %d, rejected %d", best.Evaluated, best.Rejected)
	}
	if best.Params["mass"] != 2500 {
		t.Errorf("expected the heavy ball to win, got %v", best.Params)
	}
	if best.Value < 2 {
		t.Errorf("expected fragmentation, got %v bodies", best.Value)
	}
}

func TestGridSearchMinimize(t *testing.T) {
	base, reg, logger := setup(t)

	g := NewGridSearch([]string{"height"}, [][]float64{Linspace(100, 400, 4)})
	best, err := g.Search(context.Background(), base, reg, logger, "impact_time")
	if err != nil {
		t.Fatal(err)
	}
	if best.Params["height"] != 100 {
		t.Errorf("lowest drop should hit first, got %v", best.Params)
	}
}

func TestGridSearchErrors(t *testing.T) {
	base, reg, logger := setup(t)
	ctx := context.Background()

	if _, err := NewGridSearch([]string{"mass"}, nil).Search(ctx, base, reg, logger, "fragments"); err == nil {
		t.Error("expected range count mismatch")
	}
	if _, err := NewGridSearch([]string{"spin"}, [][]float64{{1}}).Search(ctx, base, reg, logger, "fragments"); err == nil {
		t.Error("expected unknown parameter")
	}
	if _, err := NewGridSearch([]string{"mass"}, [][]float64{{10}}).Search(ctx, base, reg, logger, "jerk"); err == nil {
		t.Error("expected unknown metric")
	}
	_, err := NewGridSearch([]string{"height"}, [][]float64{{600, 700}}).Search(ctx, base, reg, logger, "fragments")
	if !errors.Is(err, ErrNoCandidate) {
		t.Errorf("expected ErrNoCandidate, got %v", err)
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := NewGridSearch([]string{"mass"}, [][]float64{{10}}).Search(canceled, base, reg, logger, "fragments"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
