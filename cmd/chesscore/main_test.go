package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the root command with a config that keeps storage inside a
// test directory.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "chesscore.yaml")
	cfg := "storage:\n  enabled: true\n  dir: " + filepath.Join(dir, "db") + "\nlog:\n  level: error\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	var out, errOut bytes.Buffer
	cmd, a := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := execute(cmd, a)
	return out.String(), err
}

func TestPerftCommand(t *testing.T) {
	out, err := run(t, "perft", "--depth", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "nodes 8902")
}

func TestPerftCommandNoCache(t *testing.T) {
	out, err := run(t, "perft", "--depth", "2", "--no-cache", "--workers", "1",
		"--fen", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1")
	require.NoError(t, err)
	assert.Contains(t, out, "nodes 191")
	assert.Contains(t, out, "nps")
}

func TestDivideCommand(t *testing.T) {
	out, err := run(t, "divide", "--depth", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "e2e4: 20")
	assert.Contains(t, out, "moves 20")
	assert.Contains(t, out, "nodes 400")

	out, err = run(t, "divide", "--depth", "1", "--san")
	require.NoError(t, err)
	assert.Contains(t, out, "Nf3: 1")
}

func TestSEECommand(t *testing.T) {
	out, err := run(t, "see", "--fen", "4k3/8/8/3p4/4P3/8/8/4K3 w - - 0 1", "--move", "e4d5")
	require.NoError(t, err)
	assert.Contains(t, out, "exd5 100")

	_, err = run(t, "see", "--move", "e2e5")
	assert.Error(t, err)
}

func TestFENCommand(t *testing.T) {
	out, err := run(t, "fen", "--fen", "R6k/6pp/8/8/8/8/8/K7 b - - 0 1")
	require.NoError(t, err)
	assert.Contains(t, out, "status checkmate")
	assert.Contains(t, out, "moves  0")

	_, err = run(t, "fen", "--fen", "not a fen")
	assert.Error(t, err)
}

func TestRejectsDepthAboveConfig(t *testing.T) {
	_, err := run(t, "perft", "--depth", "20")
	assert.Error(t, err)
}
