// Package config loads replay settings from a YAML file, a .env file and
// REPLAY_* environment variables, in that order of precedence (last wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/coreman2200/funtimes-replay/internal/camera"
	"github.com/coreman2200/funtimes-replay/internal/play"
)

type Camera struct {
	DefaultPreset string `yaml:"default_preset"`
	// OffenseFacesNegZ flips the behind-the-line presets when false.
	OffenseFacesNegZ bool              `yaml:"offense_faces_neg_z"`
	Tuning           camera.Tuning     `yaml:"tuning"`
	Offense          camera.AnchorRule `yaml:"offense_anchor"`
	Defense          camera.AnchorRule `yaml:"defense_anchor"`
}

type Config struct {
	Addr     string `yaml:"addr"`
	FPS      int    `yaml:"fps"`
	LogLevel string `yaml:"log_level"` // trace | debug | info | warn | error
	Dark     bool   `yaml:"dark"`

	Sequence string `yaml:"sequence,omitempty"` // path to a .json/.yaml play; empty uses Sample
	Sample   string `yaml:"sample"`

	BroadcastHz    float64  `yaml:"broadcast_hz"`
	CORSOrigins    []string `yaml:"cors_origins"`
	HighlightIDs   []int    `yaml:"highlight_ids,omitempty"`
	NearBallRadius float64  `yaml:"near_ball_radius"`

	Camera Camera `yaml:"camera"`
}

// Default returns the built-in settings.
func Default() *Config {
	off, def := camera.DefaultAnchorRules()
	return &Config{
		Addr:     ":8080",
		FPS:      60,
		LogLevel: "info",
		Sample:   play.DefaultSample,

		BroadcastHz: 20,
		CORSOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5173",
		},
		NearBallRadius: 2,

		Camera: Camera{
			DefaultPreset:    camera.BehindQB,
			OffenseFacesNegZ: true,
			Tuning:           camera.DefaultTuning(),
			Offense:          off,
			Defense:          def,
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// LoadEnv loads the given .env files, ignoring missing ones, then applies
// REPLAY_* overrides.
func (c *Config) LoadEnv(files ...string) {
	for _, f := range files {
		_ = godotenv.Load(f)
	}
	c.ApplyEnv()
}

func (c *Config) ApplyEnv() {
	c.Addr = envOr("REPLAY_ADDR", c.Addr)
	c.FPS = envInt("REPLAY_FPS", c.FPS)
	c.LogLevel = envOr("REPLAY_LOG_LEVEL", c.LogLevel)
	c.Dark = envBool("REPLAY_DARK", c.Dark)
	c.Sequence = envOr("REPLAY_SEQUENCE", c.Sequence)
	c.Sample = envOr("REPLAY_SAMPLE", c.Sample)
	c.BroadcastHz = envFloat("REPLAY_BROADCAST_HZ", c.BroadcastHz)
	c.CORSOrigins = envList("REPLAY_CORS_ORIGINS", c.CORSOrigins)
	c.Camera.DefaultPreset = envOr("REPLAY_DEFAULT_PRESET", c.Camera.DefaultPreset)
	c.Camera.OffenseFacesNegZ = envBool("REPLAY_OFFENSE_NEG_Z", c.Camera.OffenseFacesNegZ)
}

// Validate reports every setting that would keep the server from starting.
func (c *Config) Validate() error {
	var errs []error
	if c.FPS <= 0 || c.FPS > 240 {
		errs = append(errs, fmt.Errorf("fps %d out of range (1..240)", c.FPS))
	}
	if c.BroadcastHz <= 0 {
		errs = append(errs, fmt.Errorf("broadcast_hz must be positive"))
	}
	if c.Sequence == "" && c.Sample == "" {
		errs = append(errs, fmt.Errorf("one of sequence or sample is required"))
	}
	t := c.Camera.Tuning
	if t.LinearDuration <= 0 || t.SwingDuration <= 0 {
		errs = append(errs, fmt.Errorf("camera transition durations must be positive"))
	}
	found := false
	for _, p := range camera.DefaultPresets(c.Camera.OffenseFacesNegZ) {
		if p.ID == c.Camera.DefaultPreset {
			found = true
		}
	}
	if !found {
		errs = append(errs, fmt.Errorf("%w: %q", camera.ErrUnknownPreset, c.Camera.DefaultPreset))
	}
	return errors.Join(errs...)
}

// Presets returns the camera presets for the configured offense direction.
func (c *Config) Presets() []camera.Preset {
	return camera.DefaultPresets(c.Camera.OffenseFacesNegZ)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
