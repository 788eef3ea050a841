package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lixenwraith/scrollglow/config"
)

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter(config.LoggerConfig{Level: "info", Format: "json"}, zapcore.AddSync(&buf))
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("stage changed", zap.String("to", "grid"))
	require.NoError(t, logger.Sync())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1, "debug is below the configured level")

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "stage changed", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, Name, entry["logger"])
	assert.Equal(t, "grid", entry["to"])
}

func TestNewWithWriterConsole(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter(config.LoggerConfig{Level: "not-a-level"}, zapcore.AddSync(&buf))
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("visible")
	out := buf.String()
	assert.NotContains(t, out, "hidden", "bad level falls back to info")
	assert.Contains(t, out, "visible")
	assert.Contains(t, out, Name+".")
}

func TestNewWithWriterRejectsFormat(t *testing.T) {
	_, err := NewWithWriter(config.LoggerConfig{Format: "xml"}, zapcore.AddSync(&bytes.Buffer{}))
	assert.Error(t, err)
}

func TestNewWithoutFileIsNop(t *testing.T) {
	logger, closeFn, err := New(config.LoggerConfig{Level: "debug"})
	require.NoError(t, err)
	defer closeFn()
	assert.False(t, logger.Core().Enabled(zapcore.ErrorLevel))
}

func TestNewWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scrollglow.log")
	cfg := config.NewDefaultConfig().Logger
	cfg.LogFile = path
	cfg.Format = "json"

	logger, closeFn, err := New(cfg)
	require.NoError(t, err)
	logger.Info("session created", zap.Int("particles", 300))
	closeFn()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"particles":300`)
}
