package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/dropsim/internal/config"
	"github.com/spf13/cobra"
)

func TestParseAxis(t *testing.T) {
	tests := []struct {
		axis    string
		name    string
		n       int
		wantErr bool
	}{
		{"mass=10:400:5", "mass", 5, false},
		{"height=100:100:1", "height", 1, false},
		{"mass=10:400", "", 0, true},
		{"mass", "", 0, true},
		{"mass=a:400:5", "", 0, true},
		{"mass=10:b:5", "", 0, true},
		{"mass=10:400:0", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.axis, func(t *testing.T) {
			name, values, err := parseAxis(tt.axis)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseAxis(%q) error = %v, wantErr %v", tt.axis, err, tt.wantErr)
			}
			if err == nil && (name != tt.name || len(values) != tt.n) {
				t.Errorf("parseAxis(%q) = %s, %v", tt.axis, name, values)
			}
		})
	}
}

func newTestCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	configFile, preset = "", ""
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringVar(&configFile, "config", "", "")
	cmd.Flags().StringVar(&preset, "preset", "", "")
	cmd.Flags().StringVar(&dataDir, "data", config.DefaultDataDir, "")
	addParamFlags(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatal(err)
	}
	return cmd
}

func TestLoadConfigLayering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dropsim.yaml")
	body := "engine: chipmunk\nparams:\n  mass: 50\n  height: 200\n  gravity: 500\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(newTestCmd(t, "--config", path, "--height", "300"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Engine != "chipmunk" {
		t.Errorf("engine from file lost: %s", cfg.Engine)
	}
	if cfg.Params.Mass != 50 || cfg.Params.Gravity != 500 {
		t.Errorf("unset flags overrode the file: %+v", cfg.Params)
	}
	if cfg.Params.Height != 300 {
		t.Errorf("explicit flag ignored: height %v", cfg.Params.Height)
	}

	cfg, err = loadConfig(newTestCmd(t, "--preset", "splash", "--lateral", "-5", "--lock-children"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Params.Surface != "water" || cfg.Params.Mass != 400 || cfg.Params.Lateral != -5 {
		t.Errorf("preset plus flag gave %+v", cfg.Params)
	}
	if !cfg.Fragment.LockChildren {
		t.Error("lock-children flag ignored")
	}

	if _, err := loadConfig(newTestCmd(t, "--preset", "comet")); err == nil {
		t.Error("expected unknown preset error")
	}
	if _, err := loadConfig(newTestCmd(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"))); err == nil {
		t.Error("expected missing config error")
	}
}
