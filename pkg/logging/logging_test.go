package logging_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/chainlog-project/chainlog/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_LevelGating(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(logging.LevelWarn, logging.FormatJSON)
	logger.SetOutput(&buf)

	logger.Debug("hidden")
	logger.Info("hidden too")
	logger.Warn("shown")
	logger.Error("shown too")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "shown")
	assert.Contains(t, lines[1], "shown too")
}

func TestLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(logging.LevelInfo, logging.FormatJSON)
	logger.SetOutput(&buf)

	logger.Info("event appended", map[string]any{"journal": "main", "entries": 3})

	var entry logging.LogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, logging.LevelInfo, entry.Level)
	assert.Equal(t, "event appended", entry.Message)
	assert.Equal(t, "main", entry.Fields["journal"])
	assert.NotEmpty(t, entry.Timestamp)
}

func TestLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(logging.LevelInfo, logging.FormatText)
	logger.SetOutput(&buf)

	logger.Info("manifest written", map[string]any{"day": "2026-08-29", "entries": 2})

	out := buf.String()
	assert.Contains(t, out, "[INFO] manifest written")
	// Field keys are sorted.
	assert.Less(t, strings.Index(out, "day="), strings.Index(out, "entries="))
}

func TestLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(logging.LevelInfo, logging.FormatJSON)
	logger.SetOutput(&buf)

	child := logger.WithFields(map[string]any{"journal": "main"})
	child.Info("checkpoint", map[string]any{"day": "2026-08-29"})

	var entry logging.LogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "main", entry.Fields["journal"])
	assert.Equal(t, "2026-08-29", entry.Fields["day"])
}

func TestLogger_ErrorErr(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(logging.LevelInfo, logging.FormatJSON)
	logger.SetOutput(&buf)

	logger.ErrorErr("append failed", errors.New("disk full"), map[string]any{"journal": "main"})

	var entry logging.LogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "disk full", entry.Fields["error"])
	assert.Equal(t, "main", entry.Fields["journal"])
}

func TestLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(logging.LevelInfo, logging.FormatJSON)
	logger.SetOutput(&buf)

	logger.Debug("hidden")
	logger.SetLevel(logging.LevelDebug)
	logger.Debug("shown")

	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
	assert.Contains(t, buf.String(), "shown")
}

func TestNewLogger_InvalidDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger("verbose", "xml")
	logger.SetOutput(&buf)

	// Falls back to info level and JSON format.
	logger.Debug("hidden")
	logger.Info("shown")

	var entry logging.LogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry.Message)
}
