package main

import (
	"bytes"
	"testing"

	"swagflow/internal/infrastructure/config"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestListCmd(t *testing.T) {
	out, err := execute(t, "list")

	require.NoError(t, err)
	for _, name := range []string{"login-valid", "login-invalid", "add-remove", "add-open-cart"} {
		assert.Contains(t, out, name)
	}
}

func TestRunCmd_UnknownScenario(t *testing.T) {
	_, err := execute(t, "run", "checkout")

	assert.ErrorContains(t, err, "unknown scenario: checkout")
}

func TestRunCmd_InvalidDriver(t *testing.T) {
	_, err := execute(t, "run", "--env-dir", t.TempDir(), "--driver", "selenium", "login-valid")

	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestHeadlessFlagsExclusive(t *testing.T) {
	_, err := execute(t, "list", "--headless", "--headed")

	assert.Error(t, err)
}

func TestRootFlagsOverride(t *testing.T) {
	flags := &rootFlags{driver: "chromedp", baseURL: "http://localhost:8080/", logLevel: "debug", headless: true}
	cmd := &cobra.Command{}
	cmd.Flags().BoolVar(&flags.headless, "headless", false, "")
	require.NoError(t, cmd.Flags().Set("headless", "true"))

	cfg := &config.Config{Driver: "rod", BaseURL: "https://www.saucedemo.com/", LogLevel: "info"}
	flags.override(cmd)(cfg)

	assert.Equal(t, "chromedp", cfg.Driver)
	assert.Equal(t, "http://localhost:8080/", cfg.BaseURL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Headless)

	flags.headed = true
	flags.override(cmd)(cfg)
	assert.False(t, cfg.Headless)
}

func TestRootFlagsOverride_KeepsConfigHeadless(t *testing.T) {
	flags := &rootFlags{}
	cmd := &cobra.Command{}
	cmd.Flags().BoolVar(&flags.headless, "headless", false, "")

	cfg := &config.Config{Headless: true}
	flags.override(cmd)(cfg)

	assert.True(t, cfg.Headless)
}
