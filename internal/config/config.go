package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/sentinel/internal/engine"
	"github.com/san-kum/sentinel/internal/metrics"
)

const (
	DefaultTick     = time.Second
	DefaultFPS      = 60
	DefaultViewport = 900.0
	DefaultWidth    = 640
	DefaultHeight   = 480
	DefaultFrames   = 180
	MaxRecordFrames = 3600
	DefaultOutput   = "sentinel.gif"
	DefaultTheme    = "sentinel"
)

type Config struct {
	Seed         int64         `yaml:"seed"`
	Preset       string        `yaml:"preset"`
	TickInterval time.Duration `yaml:"tick_interval"`
	FPS          int           `yaml:"fps"`
	Viewport     float64       `yaml:"viewport"`
	Theme        string        `yaml:"theme"`
	Engine       EngineConfig  `yaml:"engine"`
	Record       RecordConfig  `yaml:"record"`
	Log          LogConfig     `yaml:"log"`
}

type EngineConfig struct {
	Particles int `yaml:"particles"`
	Waves     int `yaml:"waves"`
	Helix     int `yaml:"helix"`
}

type RecordConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Frames int    `yaml:"frames"`
	Output string `yaml:"output"`
}

type LogConfig struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

func DefaultConfig() *Config {
	return &Config{
		Preset:       "calm",
		TickInterval: DefaultTick,
		FPS:          DefaultFPS,
		Viewport:     DefaultViewport,
		Theme:        DefaultTheme,
		Engine: EngineConfig{
			Particles: engine.DefaultParticles,
			Waves:     engine.DefaultWaves,
			Helix:     engine.DefaultHelix,
		},
		Record: RecordConfig{
			Width:  DefaultWidth,
			Height: DefaultHeight,
			Frames: DefaultFrames,
			Output: DefaultOutput,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads a YAML file, checks it against the schema and layers it over
// the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := ValidateSchema(path, data); err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks ranges the schema cannot express, such as the preset
// names known to this build.
func (c *Config) Validate() error {
	if _, ok := metrics.GetPreset(c.Preset); !ok {
		return &FieldError{Field: "preset", Value: c.Preset, Wrapped: ErrUnknownPreset}
	}
	if c.TickInterval <= 0 {
		return &FieldError{Field: "tick_interval", Value: c.TickInterval, Wrapped: ErrInvalidConfig}
	}
	if c.FPS <= 0 {
		return &FieldError{Field: "fps", Value: c.FPS, Wrapped: ErrInvalidConfig}
	}
	if c.Viewport <= 0 {
		return &FieldError{Field: "viewport", Value: c.Viewport, Wrapped: ErrInvalidConfig}
	}
	if c.Record.Width <= 0 || c.Record.Height <= 0 {
		return &FieldError{Field: "record", Value: fmt.Sprintf("%dx%d", c.Record.Width, c.Record.Height), Wrapped: ErrInvalidConfig}
	}
	if c.Record.Frames <= 0 || c.Record.Frames > MaxRecordFrames {
		return &FieldError{Field: "record.frames", Value: c.Record.Frames, Wrapped: ErrInvalidConfig}
	}
	return nil
}

// FrameInterval is the wall-clock period between frames.
func (c *Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.FPS)
}

// SourceOptions returns the metric source options selected by the config.
func (c *Config) SourceOptions() []metrics.SourceOption {
	p, ok := metrics.GetPreset(c.Preset)
	if !ok {
		return nil
	}
	return p.Options()
}
