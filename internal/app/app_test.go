package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/law-makers/datalayer/internal/config"
	"github.com/law-makers/datalayer/internal/engine"
)

func defaultConfig(t *testing.T) *config.Config {
	t.Helper()
	v := viper.New()
	config.SetDefaults(v)
	cfg, err := config.NewConfigFromViper(v)
	require.NoError(t, err)
	return cfg
}

func restoreLogger(t *testing.T) {
	prev, level := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(level)
	})
}

func TestSetupLogging_FileSink(t *testing.T) {
	restoreLogger(t)
	cfg := defaultConfig(t)
	cfg.JSONLog = true
	cfg.LogFile = filepath.Join(t.TempDir(), "run.log")

	var stderr bytes.Buffer
	logger, logFile, err := setupLogging(cfg, &stderr)
	require.NoError(t, err)
	require.NotNil(t, logFile)

	logger.Info().Str("run_id", "abc").Msg("Starting capture")
	require.NoError(t, logFile.Close())

	data, err := os.ReadFile(cfg.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"run_id":"abc"`)
	assert.Contains(t, stderr.String(), `"message":"Starting capture"`)
}

func TestSetupLogging_Level(t *testing.T) {
	restoreLogger(t)
	cfg := defaultConfig(t)
	cfg.LogLevel = "error"

	_, logFile, err := setupLogging(cfg, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Nil(t, logFile)
	assert.Equal(t, zerolog.ErrorLevel, zerolog.GlobalLevel())

	cfg.LogLevel = "chatty"
	_, _, err = setupLogging(cfg, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestApplication_StaticDriverAndOptions(t *testing.T) {
	restoreLogger(t)
	cfg := defaultConfig(t)
	cfg.Mode = config.ModeStatic
	cfg.LogLevel = "error"

	a, err := New(cfg)
	require.NoError(t, err)
	defer a.Close(context.Background())

	d, err := a.NewDriver(map[string]string{"X-Test": "1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "StaticDriver", d.Name())
	require.NoError(t, d.Close())

	opts := a.CaptureOptions()
	assert.Equal(t, cfg.ScrollSettle, opts.ScrollSettle)
	assert.Equal(t, "module", opts.Collect.PayloadKey)
	assert.Equal(t, []string{"impression", "moduleInteraction"}, opts.Collect.Keywords)
}

func TestApplication_Errors(t *testing.T) {
	restoreLogger(t)
	_, err := New(nil)
	assert.Error(t, err)

	cfg := defaultConfig(t)
	cfg.LogLevel = "error"
	cfg.Proxy = "://bad"
	_, err = New(cfg)
	assert.Error(t, err)

	cfg.Proxy = ""
	cfg.Mode = "telepathy"
	a, err := New(cfg)
	require.NoError(t, err)
	_, err = a.NewDriver(nil, nil)
	assert.ErrorIs(t, err, engine.ErrUnsupported)
}
