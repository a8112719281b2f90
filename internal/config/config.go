// Package config loads the settings shared by the marionette programs.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/taigrr/marionette/pkg/models"
	"github.com/taigrr/marionette/pkg/skeleton"
)

// Config holds the loader limits and viewer settings.
type Config struct {
	// Loading
	TicksPerSecond float64 `json:"ticks_per_second"`
	MaxBones       int     `json:"max_bones"`
	MaxMeshes      int     `json:"max_meshes"`

	// Viewing
	FPS          int    `json:"fps"`
	Background   string `json:"background"`
	LogLevel     string `json:"log_level"`
	ShowMesh     bool   `json:"show_mesh"`
	ShowSkeleton bool   `json:"show_skeleton"`
	ShowBounds   bool   `json:"show_bounds"`
	ShowGrid     bool   `json:"show_grid"`

	// Snapshots render at this multiple of the output size and scale down.
	SnapshotScale int `json:"snapshot_scale"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		MaxBones:      skeleton.DefaultMaxBones,
		MaxMeshes:     models.DefaultMaxMeshes,
		FPS:           60,
		Background:    "30,30,40",
		LogLevel:      "info",
		ShowMesh:      true,
		SnapshotScale: 2,
	}
}

// Load reads a JSON config file on top of the defaults. Fields not set in
// the file keep their default values. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	LogLevel string
	Rate     float64
	// MaxBones overrides the bone limit when positive; negative removes it.
	MaxBones int
	FPS      int
}

// Resolve applies flags over c and fills any unusable field with its
// default. CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}
	if flags.Rate > 0 {
		c.TicksPerSecond = flags.Rate
	}
	switch {
	case flags.MaxBones > 0:
		c.MaxBones = flags.MaxBones
	case flags.MaxBones < 0:
		c.MaxBones = 0
	}
	if flags.FPS > 0 {
		c.FPS = flags.FPS
	}

	def := Default()
	if c.FPS <= 0 {
		c.FPS = def.FPS
	}
	if c.SnapshotScale <= 0 {
		c.SnapshotScale = def.SnapshotScale
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.Background == "" {
		c.Background = def.Background
	}
	if c.TicksPerSecond < 0 {
		c.TicksPerSecond = 0
	}
	if c.MaxBones < 0 {
		c.MaxBones = 0
	}
	if c.MaxMeshes < 0 {
		c.MaxMeshes = 0
	}
}

// Level parses LogLevel.
func (c Config) Level() (log.Level, error) {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return 0, fmt.Errorf("config: log level: %w", err)
	}
	return lvl, nil
}

// BackgroundRGB parses Background, written as "R,G,B".
func (c Config) BackgroundRGB() (r, g, b uint8, err error) {
	parts := strings.Split(c.Background, ",")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("config: background %q: want R,G,B", c.Background)
	}
	var rgb [3]uint8
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("config: background %q: %w", c.Background, err)
		}
		rgb[i] = uint8(v)
	}
	return rgb[0], rgb[1], rgb[2], nil
}

// LoaderOptions returns the model loader settings.
func (c Config) LoaderOptions() []models.Option {
	return []models.Option{
		models.WithMaxBones(c.MaxBones),
		models.WithMaxMeshes(c.MaxMeshes),
		models.WithRate(c.TicksPerSecond),
	}
}
