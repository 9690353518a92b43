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
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
		hasError bool
	}{
		{"debug", LevelDebug, false},
		{"DEBUG", LevelDebug, false},
		{"info", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"invalid", LevelInfo, true},
		{"", LevelInfo, true},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			level, err := ParseLevel(test.input)
			if test.hasError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expected, level)
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "termsplit.log")
	cfg, err := FromStrings("info", "json", path)
	require.NoError(t, err)

	l, err := New(cfg)
	require.NoError(t, err)
	l.Debug("hidden")
	l.Info("split", "index", 2)
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "split", entry["msg"])
	assert.Equal(t, float64(2), entry["index"])
}

func TestNewAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "termsplit.log")
	for i := 0; i < 2; i++ {
		l, err := New(&Config{Level: LevelInfo, FilePath: path})
		require.NoError(t, err)
		l.Info("open")
		require.NoError(t, l.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "msg=open"))
}

func TestNewHandlerText(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(&buf, &Config{Level: LevelWarn})
	assert.False(t, h.Enabled(t.Context(), LevelInfo))
	assert.True(t, h.Enabled(t.Context(), LevelWarn))
}

func TestDiscard(t *testing.T) {
	l := Discard()
	assert.False(t, l.Enabled(t.Context(), LevelError))
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/state")
	assert.Equal(t, "/state/termsplit/termsplit.log", DefaultPath())
}
