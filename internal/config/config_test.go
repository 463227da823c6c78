package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-replay/internal/camera"
	"github.com/coreman2200/funtimes-replay/internal/play"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, camera.BehindQB, c.Camera.DefaultPreset)
	assert.Equal(t, play.DefaultSample, c.Sample)
	assert.Len(t, c.Presets(), 4)
}

func TestLoadOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "replay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
fps: 30
dark: true
camera:
  default_preset: birds_eye
  tuning:
    swing_duration: 2.5
`), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30, c.FPS)
	assert.True(t, c.Dark)
	assert.Equal(t, camera.BirdsEye, c.Camera.DefaultPreset)
	assert.Equal(t, 2.5, c.Camera.Tuning.SwingDuration)
	// untouched fields keep their defaults
	assert.Equal(t, 1.2, c.Camera.Tuning.LinearDuration)
	assert.Equal(t, ":8080", c.Addr)
	assert.Equal(t, "QB", c.Camera.Offense.Role.Position)
}

func TestSaveLoadKeepsSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "replay.yaml")
	c := Default()
	c.HighlightIDs = []int{4, 9}
	c.Camera.OffenseFacesNegZ = false
	require.NoError(t, Save(path, c))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("REPLAY_ADDR", ":9000")
	t.Setenv("REPLAY_FPS", "24")
	t.Setenv("REPLAY_DARK", "true")
	t.Setenv("REPLAY_BROADCAST_HZ", "12.5")
	t.Setenv("REPLAY_CORS_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("REPLAY_DEFAULT_PRESET", camera.Sideline)
	t.Setenv("REPLAY_OFFENSE_NEG_Z", "not-a-bool")

	c := Default()
	c.ApplyEnv()
	assert.Equal(t, ":9000", c.Addr)
	assert.Equal(t, 24, c.FPS)
	assert.True(t, c.Dark)
	assert.Equal(t, 12.5, c.BroadcastHz)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.CORSOrigins)
	assert.Equal(t, camera.Sideline, c.Camera.DefaultPreset)
	assert.True(t, c.Camera.OffenseFacesNegZ, "unparsable values keep the fallback")
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("REPLAY_SAMPLE=other_play\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("REPLAY_SAMPLE") })

	c := Default()
	c.LoadEnv(path, filepath.Join(t.TempDir(), "missing.env"))
	assert.Equal(t, "other_play", c.Sample)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"fps", func(c *Config) { c.FPS = 0 }, "fps 0 out of range"},
		{"broadcast", func(c *Config) { c.BroadcastHz = 0 }, "broadcast_hz"},
		{"source", func(c *Config) { c.Sample = "" }, "sequence or sample"},
		{"durations", func(c *Config) { c.Camera.Tuning.SwingDuration = 0 }, "durations"},
		{"preset", func(c *Config) { c.Camera.DefaultPreset = "blimp" }, "blimp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	c := Default()
	c.Camera.DefaultPreset = "blimp"
	assert.True(t, errors.Is(c.Validate(), camera.ErrUnknownPreset))
}
