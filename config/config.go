// Package config loads topoviz configuration with koanf: struct defaults,
// then an optional YAML file, then TOPOVIZ_-prefixed environment variables,
// validated before use.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"

	"github.com/nettap/topoviz/physics"
)

// DefaultConfigPaths lists where config files are searched, in order. The
// first file found wins.
var DefaultConfigPaths = []string{
	"topoviz.yaml",
	"topoviz.yml",
	"/etc/topoviz/config.yaml",
}

// ConfigPathEnvVar overrides the config file search path.
const ConfigPathEnvVar = "TOPOVIZ_CONFIG"

// envPrefix namespaces the environment variables read by Load.
const envPrefix = "TOPOVIZ_"

// Config is the root configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Logging LoggingConfig `koanf:"logging"`
	Layout  LayoutConfig  `koanf:"layout"`
	Render  RenderConfig  `koanf:"render"`
}

// ServerConfig configures the HTTP service.
type ServerConfig struct {
	Host         string        `koanf:"host"`
	Port         int           `koanf:"port" validate:"gte=1,lte=65535"`
	ReadTimeout  time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"gt=0"`
	IdleTimeout  time.Duration `koanf:"idle_timeout" validate:"gt=0"`
}

// Addr returns the host:port the server binds to.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoggingConfig configures zerolog output.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// NewLogger builds a zerolog logger per the configuration.
func (c LoggingConfig) NewLogger(w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if c.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// LayoutConfig carries the simulation tuning knobs. The defaults are
// hand-tuned for LAN-scale snapshots; they shape aesthetics, not
// correctness, so every one of them is overridable.
type LayoutConfig struct {
	Algorithm       string  `koanf:"algorithm" validate:"oneof=force jitter"`
	Repulsion       float64 `koanf:"repulsion" validate:"gt=0"`
	SpringLength    float64 `koanf:"spring_length" validate:"gt=0"`
	SpringK         float64 `koanf:"spring_k" validate:"gt=0"`
	CenterGravity   float64 `koanf:"center_gravity" validate:"gte=0"`
	Damping         float64 `koanf:"damping" validate:"gt=0,lt=1"`
	Iterations      int     `koanf:"iterations" validate:"gte=1"`
	NodeRadius      float64 `koanf:"node_radius" validate:"gt=0"`
	JitterIntensity float64 `koanf:"jitter_intensity" validate:"gte=0,lte=1"`
	JitterSeed      int64   `koanf:"jitter_seed"`
}

// Params converts the layout section into simulation parameters.
func (c LayoutConfig) Params() physics.Params {
	return physics.Params{
		Repulsion:     c.Repulsion,
		SpringLength:  c.SpringLength,
		SpringK:       c.SpringK,
		CenterGravity: c.CenterGravity,
		Damping:       c.Damping,
		Iterations:    c.Iterations,
		NodeRadius:    c.NodeRadius,
	}
}

// NewAlgorithm builds the configured layout algorithm.
func (c LayoutConfig) NewAlgorithm() physics.LayoutAlgorithm {
	return physics.GetLayoutAlgorithm(c.Algorithm, c.Params(), c.JitterIntensity, c.JitterSeed)
}

// RenderConfig carries the default rendering options.
type RenderConfig struct {
	Width      float64 `koanf:"width" validate:"gt=0"`
	Height     float64 `koanf:"height" validate:"gt=0"`
	Background string  `koanf:"background"`
	FontSize   float64 `koanf:"font_size" validate:"gt=0"`
	ShowLabels bool    `koanf:"show_labels"`
	MaxLabel   int     `koanf:"max_label" validate:"gte=2"`
}

// Default returns a Config with all default values. Layout defaults mirror
// physics.DefaultParams.
func Default() *Config {
	p := physics.DefaultParams()
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Layout: LayoutConfig{
			Algorithm:       "force",
			Repulsion:       p.Repulsion,
			SpringLength:    p.SpringLength,
			SpringK:         p.SpringK,
			CenterGravity:   p.CenterGravity,
			Damping:         p.Damping,
			Iterations:      p.Iterations,
			NodeRadius:      p.NodeRadius,
			JitterIntensity: 0,
			JitterSeed:      1,
		},
		Render: RenderConfig{
			Width:      800,
			Height:     600,
			Background: "#0d1117",
			FontSize:   10,
			ShowLabels: true,
			MaxLabel:   14,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment. An empty path triggers the default file search.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: struct defaults.
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: optional YAML file.
	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// Layer 3: environment variables (highest priority).
	// TOPOVIZ_SERVER_PORT -> server.port
	// TOPOVIZ_LAYOUT_SPRING_LENGTH -> layout.spring_length
	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration against its validation tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// envTransform maps an environment variable name onto its koanf path: the
// prefix is stripped, the name lowercased, and the first underscore becomes
// the section separator.
func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	return strings.Replace(key, "_", ".", 1)
}

// findConfigFile returns the first existing default config path, or empty.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
