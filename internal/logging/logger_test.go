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
)

func TestNew_ConsoleLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Console: &buf})
	logger.Debug("hidden")
	logger.Info("shown", zap.String("task_id", "t1"))
	_ = logger.Sync()

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "t1")
}

func TestNew_Verbose(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Console: &buf, Verbose: true})
	logger.Debug("debug line")
	_ = logger.Sync()

	assert.Contains(t, buf.String(), "debug line")
}

func TestNew_JSONConsole(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Console: &buf, JSON: true})
	logger.Info("hello", zap.Int("count", 3))
	_ = logger.Sync()

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "INFO", entry["level"])
	assert.EqualValues(t, 3, entry["count"])
	assert.Contains(t, entry, "timestamp")
}

func TestNew_FileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.log")
	var console bytes.Buffer
	logger := New(Options{Console: &console, File: path, Verbose: true})
	logger.Debug("console only")
	logger.Warn("both sinks")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "both sinks", entry["message"])
	assert.Contains(t, console.String(), "console only")
}
