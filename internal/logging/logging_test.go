package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	logger, closeFn, err := Open(dir, "warn")
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("store repaired", "repairs", 2)
	require.NoError(t, closeFn())

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "msg=\"store repaired\" repairs=2")
}

func TestOpenMissingDir(t *testing.T) {
	logger, closeFn, err := Open(filepath.Join(t.TempDir(), "nope"), "info")
	require.Error(t, err)
	require.NotNil(t, logger)
	logger.Info("dropped")
	assert.NoError(t, closeFn())
}
