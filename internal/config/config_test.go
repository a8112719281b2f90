package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "marionette.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `{"max_bones": 64, "show_skeleton": true, "background": "0,0,0"}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := Default()
	want.MaxBones = 64
	want.ShowSkeleton = true
	want.Background = "0,0,0"
	if cfg != want {
		t.Errorf("Load = %+v, want %+v", cfg, want)
	}
}

func TestLoadErrors(t *testing.T) {
	if cfg, err := Load(""); err != nil || cfg != Default() {
		t.Errorf("Load(\"\") = %+v, %v; want defaults", cfg, err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("missing file: expected error")
	}
	if _, err := Load(writeConfig(t, `{"fps": "fast"}`)); err == nil {
		t.Error("bad field type: expected error")
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		start Config
		flags Flags
		check func(t *testing.T, c Config)
	}{
		{
			name:  "flags override",
			start: Default(),
			flags: Flags{LogLevel: "debug", Rate: 30, MaxBones: 48, FPS: 24},
			check: func(t *testing.T, c Config) {
				if c.LogLevel != "debug" || c.TicksPerSecond != 30 || c.MaxBones != 48 || c.FPS != 24 {
					t.Errorf("got %+v", c)
				}
			},
		},
		{
			name:  "negative max bones removes the limit",
			start: Default(),
			flags: Flags{MaxBones: -1},
			check: func(t *testing.T, c Config) {
				if c.MaxBones != 0 {
					t.Errorf("MaxBones = %d, want 0", c.MaxBones)
				}
			},
		},
		{
			name:  "zero values filled",
			start: Config{TicksPerSecond: -5, MaxMeshes: -2},
			check: func(t *testing.T, c Config) {
				def := Default()
				if c.FPS != def.FPS || c.SnapshotScale != def.SnapshotScale || c.LogLevel != def.LogLevel || c.Background != def.Background {
					t.Errorf("defaults not filled: %+v", c)
				}
				if c.TicksPerSecond != 0 || c.MaxMeshes != 0 {
					t.Errorf("negative limits kept: %+v", c)
				}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := tc.start
			c.Resolve(tc.flags)
			tc.check(t, c)
		})
	}
}

func TestBackgroundRGB(t *testing.T) {
	tests := []struct {
		in      string
		r, g, b uint8
		wantErr bool
	}{
		{"30,30,40", 30, 30, 40, false},
		{" 255, 0 ,7", 255, 0, 7, false},
		{"1,2", 0, 0, 0, true},
		{"1,2,300", 0, 0, 0, true},
		{"red", 0, 0, 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			r, g, b, err := Config{Background: tc.in}.BackgroundRGB()
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if r != tc.r || g != tc.g || b != tc.b {
				t.Errorf("got %d,%d,%d want %d,%d,%d", r, g, b, tc.r, tc.g, tc.b)
			}
		})
	}
}

func TestLevel(t *testing.T) {
	lvl, err := Config{LogLevel: "warn"}.Level()
	if err != nil || lvl != log.WarnLevel {
		t.Errorf("Level = %v, %v; want warn", lvl, err)
	}
	if _, err := (Config{LogLevel: "loud"}).Level(); err == nil {
		t.Error("unknown level: expected error")
	}
}

func TestLoaderOptions(t *testing.T) {
	cfg := Default()
	if got := len(cfg.LoaderOptions()); got != 3 {
		t.Errorf("LoaderOptions returned %d options, want 3", got)
	}
}
