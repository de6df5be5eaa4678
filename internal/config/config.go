package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Tools  ToolsConfig  `yaml:"tools"`
	Track  TrackConfig  `yaml:"track"`
	Filter FilterConfig `yaml:"filter"`
}

type ToolsConfig struct {
	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`
}

type TrackConfig struct {
	Name string `yaml:"name"`
}

type FilterConfig struct {
	// SkipBadFix drops no-fix samples instead of passing them through.
	// The -s/--skip flag overrides it.
	SkipBadFix bool `yaml:"skip_bad_fix"`

	// GlitchThresholdDeg is the coordinate-jump rejection limit in degrees.
	GlitchThresholdDeg float64 `yaml:"glitch_threshold_deg"`
}

// Default is the configuration used when no --config file is given. The
// tool must be fully usable without one.
func Default() Config {
	return Config{
		Tools:  ToolsConfig{FFmpegPath: "ffmpeg", FFprobePath: "ffprobe"},
		Track:  TrackConfig{Name: "gopro-track"},
		Filter: FilterConfig{GlitchThresholdDeg: 1.0},
	}
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}

	if cfg.Tools.FFmpegPath == "" {
		cfg.Tools.FFmpegPath = "ffmpeg"
	}
	if cfg.Tools.FFprobePath == "" {
		cfg.Tools.FFprobePath = "ffprobe"
	}
	if cfg.Track.Name == "" {
		cfg.Track.Name = "gopro-track"
	}
	if cfg.Filter.GlitchThresholdDeg < 0 {
		return Config{}, fmt.Errorf("filter.glitch_threshold_deg must be >= 0")
	}
	if cfg.Filter.GlitchThresholdDeg == 0 {
		cfg.Filter.GlitchThresholdDeg = 1.0
	}

	return cfg, nil
}
