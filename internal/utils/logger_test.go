// internal/utils/logger_test.go
package utils

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   DebugLevel,
		" DEBUG ": DebugLevel,
		"info":    InfoLevel,
		"warn":    WarnLevel,
		"warning": WarnLevel,
		"error":   ErrorLevel,
		"":        InfoLevel,
		"verbose": InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLogLevel(in), "input %q", in)
	}
}

func TestZeroLogger_LevelAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(WarnLevel, &buf)

	logger.Info("dropped")
	logger.WithFields(map[string]interface{}{"username": "creator", "posts": 3}).Warnf("slow run: %d posts", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "slow run: 3 posts", entry["message"])
	assert.Equal(t, "creator", entry["username"])
	assert.Equal(t, float64(3), entry["posts"])
	assert.Contains(t, entry, "time")
}

func TestZeroLogger_WithFieldDoesNotLeak(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(DebugLevel, &buf)

	base.WithField("post_id", "123").Debug("child")
	base.Debug("parent")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"post_id":"123"`)
	assert.NotContains(t, lines[1], "post_id")
}

func TestNopLogger(t *testing.T) {
	logger := NopLogger()
	assert.NotPanics(t, func() {
		logger.WithField("k", "v").Errorf("nothing %s", "here")
	})
}
