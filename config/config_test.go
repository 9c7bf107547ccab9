package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "forecast-ring.toml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoad_DefaultsWithEnv(t *testing.T) {
	t.Setenv(EnvAPIKey, "secret")
	t.Setenv(EnvCity, "London,GB")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, "London,GB", cfg.City)
	assert.Equal(t, "api.openweathermap.org:80", cfg.Address())
	assert.Equal(t, 10*time.Minute, cfg.PollInterval)
	assert.Equal(t, 5*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 35, cfg.LEDCount)
	assert.Equal(t, 2, cfg.Count)
	assert.False(t, cfg.IdleAnimation)
}

func TestLoad_FileThenEnv(t *testing.T) {
	p := writeConfig(t, `
api_key = "from-file"
city = "Leeds"
port = 8081
poll_interval = "15m"
read_timeout = "3s"
fetch_timeout = "20s"
led_count = 12
idle_animation = true
palette_file = "palette.json"
`)
	t.Setenv(EnvCity, "York")
	t.Setenv(EnvReadTimeout, "7s")

	cfg, err := Load(p)

	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.APIKey)
	assert.Equal(t, "York", cfg.City)
	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, 15*time.Minute, cfg.PollInterval)
	assert.Equal(t, 7*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 20*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 12, cfg.LEDCount)
	assert.True(t, cfg.IdleAnimation)
	assert.Equal(t, "palette.json", cfg.PaletteFile)
	// untouched keys keep their defaults
	assert.Equal(t, "metric", cfg.Units)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
		assert.Error(t, err)
	})
	t.Run("bad duration in file", func(t *testing.T) {
		p := writeConfig(t, `poll_interval = "often"`)
		_, err := Load(p)
		assert.ErrorContains(t, err, "poll_interval")
	})
	t.Run("bad env int", func(t *testing.T) {
		t.Setenv(EnvAPIKey, "k")
		t.Setenv(EnvCity, "c")
		t.Setenv(EnvPort, "eighty")
		_, err := Load("")
		assert.ErrorContains(t, err, EnvPort)
	})
	t.Run("bad env bool", func(t *testing.T) {
		t.Setenv(EnvIdleAnimation, "maybe")
		_, err := Load("")
		assert.ErrorContains(t, err, EnvIdleAnimation)
	})
	t.Run("missing credentials", func(t *testing.T) {
		_, err := Load("")
		assert.ErrorContains(t, err, "api key is required")
		assert.ErrorContains(t, err, "city is required")
	})
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.APIKey = "k"
	cfg.City = "c"
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.Port = 70000
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Count = 1
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.ReadTimeout = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.FetchTimeout = time.Second
	assert.ErrorContains(t, bad.Validate(), "fetch timeout")

	bad = cfg
	bad.LEDCount = 0
	assert.Error(t, bad.Validate())
}
