package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for name, expected := range map[string]slog.Level{"": slog.LevelInfo, "debug": slog.LevelDebug, "WARN": slog.LevelWarn, "error": slog.LevelError} {
		level, err := ParseLevel(name)
		require.NoError(t, err)
		assert.Equal(t, expected, level, name)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestNew_ConsoleLevel(t *testing.T) {
	var console bytes.Buffer

	logger, closer, err := New(&console, Config{Level: "warn"})
	require.NoError(t, err)
	defer closer.Close()

	logger.Info("hidden")
	logger.Warn("shown", "port", "/dev/ttyUSB0")

	assert.NotContains(t, console.String(), "hidden")
	assert.Contains(t, console.String(), "shown")
	assert.Contains(t, console.String(), "port=/dev/ttyUSB0")
}

func TestNew_FanoutToFile(t *testing.T) {
	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "rvbench.log")

	logger, closer, err := New(&console, Config{Level: "error", File: path})
	require.NoError(t, err)

	logger.Debug("state transition", "to", "running")
	require.NoError(t, closer.Close())

	assert.Empty(t, console.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(data))), &record))
	assert.Equal(t, "state transition", record["msg"])
	assert.Equal(t, "running", record["to"])
}
