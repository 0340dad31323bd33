package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	return home
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.LogFile)
	assert.Empty(t, cfg.Port)
	assert.False(t, cfg.Minimized)
}

func TestLoadWithoutFile(t *testing.T) {
	isolate(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadGlobalFile(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, GlobalConfigDir)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, GlobalConfigFile), []byte("port: /dev/ttyACM0\nlog_level: debug\n"), 0o644))

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyACM0", cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "tinytosh.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: COM3\nminimized: false\n"), 0o644))
	t.Setenv("TINYTOSH_PORT", "COM7")
	t.Setenv("TINYTOSH_MINIMIZED", "true")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "COM7", cfg.Port)
	assert.True(t, cfg.Minimized)
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	isolate(t)
	t.Setenv("TINYTOSH_LOG_LEVEL", "warn")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(fs)
	require.NoError(t, fs.Parse([]string{"--log-level=error", "--minimized"}))

	cfg, err := Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.True(t, cfg.Minimized)
}

func TestLoadUnsetFlagsKeepEnv(t *testing.T) {
	isolate(t)
	t.Setenv("TINYTOSH_LOG_LEVEL", "warn")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(fs)
	require.NoError(t, fs.Parse(nil))

	cfg, err := Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}
