package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" INFO ", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}

func TestNewWithWriter_JSONRedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "info", "json", false)

	logger.Info("request",
		"token", "super-secret",
		"authorization", "Bearer abc.def",
		"header", "Bearer xyz",
		"path", "/projects/PRJ",
	)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "/projects/PRJ", entry["path"])
	assert.NotContains(t, buf.String(), "super-secret")
	assert.NotContains(t, buf.String(), "abc.def")
	assert.NotContains(t, buf.String(), "xyz")
}

func TestNewWithWriter_TextRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "warn", "text", false)

	logger.Info("hidden")
	logger.Warn("shown", "operation", "get_tag")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "operation=get_tag")
}

func TestNew_WritesRollingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mybitbucket.log")

	logger, closer := New(Options{Level: "info", Format: "json", File: path, MaxSizeMB: 1, MaxBackups: 1})
	logger.Info("journalled", "record", "Branch")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"record":"Branch"`)
}
