package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	l, err := New(DefaultConfig())
	require.NoError(t, err)
	defer l.Close()

	assert.Equal(t, zerolog.InfoLevel, l.GetZerolog().GetLevel())
}

func TestNew_UnknownLevelFallsBack(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Level = "chatty"

	l, err := New(cfg)
	require.NoError(t, err)
	defer l.Close()

	assert.Equal(t, zerolog.InfoLevel, l.GetZerolog().GetLevel())
}

func TestNew_FileOutput(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "runtime.log")
	cfg := Config{
		Level:   "debug",
		File:    logPath,
		Console: false,
	}

	l, err := New(cfg)
	require.NoError(t, err)

	zl := l.GetZerolog()
	zl.Info().Str("tool", "echo").Msg("executed")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"tool":"echo"`)
}

func TestNew_RedactionOnWriter(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "runtime.log")
	cfg := Config{
		Level:     "debug",
		File:      logPath,
		Redaction: true,
	}

	l, err := New(cfg)
	require.NoError(t, err)

	zl := l.GetZerolog()
	zl.Info().Str("params", `api_key=topsecret99`).Msg("tool call")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "topsecret99")
	assert.Contains(t, string(data), "[REDACTED]")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Level)
	assert.True(t, cfg.Console)
	assert.True(t, cfg.Redaction)
}
