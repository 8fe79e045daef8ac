// Package config - YAML session configuration for the trajectory pipeline.
package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nvr-ai/go-trajectory/common"
	"github.com/nvr-ai/go-trajectory/heatmap"
	"github.com/nvr-ai/go-trajectory/pipeline"
	"github.com/nvr-ai/go-trajectory/tracking"
)

// Config is the on-disk session configuration.
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline"`
	Heatmap  HeatmapConfig  `yaml:"heatmap"`
	Speed    SpeedConfig    `yaml:"speed"`
	Classes  map[int]string `yaml:"classes"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// PipelineConfig configures the orchestration layer.
type PipelineConfig struct {
	// RegionPoints are [x, y] pairs: 2 for a counting line, >= 3 for a
	// polygon, empty to disable counting.
	RegionPoints    [][2]float64 `yaml:"region_points"`
	HistoryCapacity int          `yaml:"history_capacity"`
	LineThickness   int          `yaml:"line_thickness"`
	Profile         bool         `yaml:"profile"`
}

// HeatmapConfig configures the density overlay.
type HeatmapConfig struct {
	DecayFactor float64 `yaml:"decay_factor"`
	Alpha       float64 `yaml:"alpha"`
	Palette     string  `yaml:"palette"`
	Downscale   int     `yaml:"downscale"`
}

// SpeedConfig configures the speed reference band.
type SpeedConfig struct {
	Enabled   bool         `yaml:"enabled"`
	Line      [][2]float64 `yaml:"line"`
	BandWidth float64      `yaml:"band_width"`
}

// LoggingConfig selects the log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SlogLevel parses the configured level, defaulting to info.
func (l LoggingConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Default returns the stock configuration: full-resolution jet heatmap,
// counting and speed disabled until regions are supplied.
func Default() Config {
	hm := heatmap.DefaultConfig()
	return Config{
		Pipeline: PipelineConfig{
			HistoryCapacity: tracking.DefaultHistoryCapacity,
			LineThickness:   2,
		},
		Heatmap: HeatmapConfig{
			DecayFactor: hm.DecayFactor,
			Alpha:       hm.Alpha,
			Palette:     hm.Palette,
			Downscale:   hm.Downscale,
		},
		Speed: SpeedConfig{
			BandWidth: tracking.DefaultBandWidth,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads a YAML file over the defaults.
//
// Arguments:
//   - path: The configuration file path.
//
// Returns:
//   - Config: The merged configuration.
//   - error: On read, parse or validation failures.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config: read %s", path)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "config: parse %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the engine cannot run with. A 1-point counting
// region is deliberately not rejected here: the pipeline reports it and
// degrades to no counting, matching the engine's no-hard-failure policy.
func (c Config) Validate() error {
	if c.Heatmap.DecayFactor < 0 || c.Heatmap.DecayFactor > 1 {
		return errors.Errorf("config: decay_factor %v out of (0, 1]", c.Heatmap.DecayFactor)
	}
	if c.Heatmap.Alpha < 0 || c.Heatmap.Alpha > 1 {
		return errors.Errorf("config: alpha %v out of (0, 1]", c.Heatmap.Alpha)
	}
	if c.Heatmap.Palette != "" {
		if _, err := heatmap.PaletteLUT(c.Heatmap.Palette); err != nil {
			return errors.Wrap(err, "config")
		}
	}
	if c.Speed.Enabled && len(c.Speed.Line) != 2 {
		return errors.Errorf("config: speed.line needs exactly 2 points, got %d", len(c.Speed.Line))
	}
	return nil
}

// PipelineConfig assembles the runtime configuration consumed by
// pipeline.NewProcessor.
func (c Config) PipelineConfig() pipeline.Config {
	out := pipeline.Config{
		Classes:         c.Classes,
		RegionPoints:    toPoints(c.Pipeline.RegionPoints),
		HistoryCapacity: c.Pipeline.HistoryCapacity,
		LineThickness:   c.Pipeline.LineThickness,
		Profile:         c.Pipeline.Profile,
		Heatmap: heatmap.Config{
			DecayFactor: c.Heatmap.DecayFactor,
			Alpha:       c.Heatmap.Alpha,
			Palette:     c.Heatmap.Palette,
			Downscale:   c.Heatmap.Downscale,
		},
		EnableSpeed: c.Speed.Enabled,
	}
	if c.Speed.Enabled {
		out.Speed = tracking.SpeedConfig{
			Line: [2]common.Point{
				{X: c.Speed.Line[0][0], Y: c.Speed.Line[0][1]},
				{X: c.Speed.Line[1][0], Y: c.Speed.Line[1][1]},
			},
			BandWidth: c.Speed.BandWidth,
		}
	}
	return out
}

func toPoints(pairs [][2]float64) []common.Point {
	if len(pairs) == 0 {
		return nil
	}
	pts := make([]common.Point, len(pairs))
	for i, p := range pairs {
		pts[i] = common.Point{X: p[0], Y: p[1]}
	}
	return pts
}
