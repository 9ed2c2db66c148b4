package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEnv map[string]string

func (s stubEnv) Get(key string) string { return s[key] }

func (s stubEnv) GetBool(key string, def bool) bool { return def }

func (s stubEnv) GetInt(key string, def int) int { return def }

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(stubEnv{}, "")
	require.NoError(t, err)

	assert.Equal(t, "https://www.saucedemo.com/", cfg.BaseURL)
	assert.False(t, cfg.Headless)
	assert.Equal(t, 5000, cfg.ImplicitWaitMs)
	assert.Equal(t, 10000, cfg.DefaultTimeoutMs)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "rod", cfg.Driver)

	assert.Equal(t, 10*time.Second, cfg.Deadline().Timeout)
	assert.Equal(t, 100*time.Millisecond, cfg.Deadline().PollInterval)
	assert.Equal(t, 5*time.Second, cfg.ImplicitDeadline().Timeout)
	assert.Equal(t, 3, cfg.RetryPolicy().MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.RetryPolicy().Backoff)
	assert.Equal(t, 30*time.Second, cfg.StartupTimeout())
}

func TestLoad_EnvOverridesAndAliases(t *testing.T) {
	t.Setenv("HEADLESS", "true")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("SWAGFLOW_DRIVER", "playwright")
	t.Setenv("SWAGFLOW_DEFAULT_TIMEOUT_MS", "2500")

	cfg, err := Load(stubEnv{}, "")
	require.NoError(t, err)

	assert.True(t, cfg.Headless)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "playwright", cfg.Driver)
	assert.Equal(t, 2500, cfg.DefaultTimeoutMs)
}

func TestLoad_PrefixedBeatsAlias(t *testing.T) {
	t.Setenv("SWAGFLOW_HEADLESS", "false")
	t.Setenv("HEADLESS", "true")

	cfg, err := Load(stubEnv{}, "")
	require.NoError(t, err)
	assert.False(t, cfg.Headless)
}

func TestLoad_ConfigFileFromEnvPort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swagflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base_url: http://127.0.0.1:8080/\nparallel: 4\nretry_backoff_ms: 0\n"), 0644))

	cfg, err := Load(stubEnv{"SWAGFLOW_CONFIG": path}, "")
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:8080/", cfg.BaseURL)
	assert.Equal(t, 4, cfg.Parallel)
	assert.Equal(t, time.Duration(0), cfg.RetryPolicy().Backoff)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := Load(stubEnv{}, filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(v *viper.Viper)
	}{
		{"relative url", func(v *viper.Viper) { v.Set("base_url", "saucedemo.com") }},
		{"zero timeout", func(v *viper.Viper) { v.Set("default_timeout_ms", 0) }},
		{"poll exceeds implicit wait", func(v *viper.Viper) { v.Set("poll_interval_ms", 6000) }},
		{"bad level", func(v *viper.Viper) { v.Set("log_level", "trace") }},
		{"unknown driver", func(v *viper.Viper) { v.Set("driver", "selenium") }},
		{"zero attempts", func(v *viper.Viper) { v.Set("retry_attempts", 0) }},
		{"zero parallel", func(v *viper.Viper) { v.Set("parallel", 0) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			SetDefaults(v)
			tt.mutate(v)

			_, err := NewConfigFromViper(v)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
		})
	}
}
