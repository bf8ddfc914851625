package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abcus/chess-engine-sub000/internal/board"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chesscore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
tables:
  zobrist_seed: 12345
perft:
  workers: 8
storage:
  enabled: false
  dir: /tmp/perft
log:
  level: debug
  format: json
metrics:
  addr: "127.0.0.1:9090"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Perft.Workers)
	assert.Equal(t, 8, cfg.Perft.MaxDepth, "unset fields keep defaults")
	assert.False(t, cfg.Storage.Enabled)
	assert.Equal(t, "/tmp/perft", cfg.Storage.Dir)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "127.0.0.1:9090", cfg.Metrics.Addr)

	tc := cfg.TableConfig()
	assert.Equal(t, uint64(12345), tc.ZobristSeed)
	assert.Equal(t, board.DefaultTableConfig().MagicSeed, tc.MagicSeed)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"workers":   "perft:\n  workers: 0\n",
		"max depth": "perft:\n  max_depth: 40\n",
		"hash":      "perft:\n  hash_mb: -1\n",
		"level":     "log:\n  level: loud\n",
		"format":    "log:\n  format: xml\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "perft: [1, 2"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalid)
}
