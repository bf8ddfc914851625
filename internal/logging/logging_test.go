package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"", LevelInfo},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{" error ", LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: LevelWarn, Output: &buf})
	log.Info("hidden")
	log.Warn("shown", "depth", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "depth=3")
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Format: "json", Output: &buf}).Info("perft done", "nodes", 20)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "perft done", rec["msg"])
	assert.EqualValues(t, 20, rec["nodes"])
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "UNKNOWN", Level(42).String())
}
