package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abcus/chess-engine-sub000/internal/board"
	"github.com/abcus/chess-engine-sub000/internal/logging"
)

func openTestStore(t *testing.T) *PerftStore {
	t.Helper()
	s, err := OpenInMemory(logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNodes(t *testing.T) {
	s := openTestStore(t)

	_, err := s.LoadNodes(0xABCD, 3)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.SaveNodes(0xABCD, 3, 8902))
	require.NoError(t, s.SaveNodes(0xABCD, 4, 197281))

	got, err := s.LoadNodes(0xABCD, 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(8902), got)

	got, err = s.LoadNodes(0xABCD, 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(197281), got)

	_, err = s.LoadNodes(0xABCE, 3)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDivide(t *testing.T) {
	s := openTestStore(t)
	pos := board.NewPosition()

	entries := pos.Divide(2)
	require.NoError(t, s.SaveDivide(pos.Hash, 2, entries))

	got, err := s.LoadDivide(pos.Hash, 2)
	require.NoError(t, err)
	require.Len(t, got, len(entries))
	for i := range entries {
		assert.Equal(t, entries[i].Move.String(), got[i].Move.String())
		assert.Equal(t, entries[i].Move.Kind, got[i].Move.Kind)
		assert.Equal(t, entries[i].Nodes, got[i].Nodes)
	}

	_, err = s.LoadDivide(pos.Hash, 3)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRuns(t *testing.T) {
	s := openTestStore(t)
	now := time.Now()

	require.NoError(t, s.SaveRun(RunRecord{ID: "a", Depth: 3, Nodes: 8902, Finished: now.Add(-time.Minute)}))
	require.NoError(t, s.SaveRun(RunRecord{ID: "b", Depth: 4, Nodes: 197281, Finished: now}))

	runs, err := s.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "b", runs[0].ID)
	assert.Equal(t, "a", runs[1].ID)
}

func TestOpenOnDisk(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")

	s, err := Open(dir, logging.Discard())
	require.NoError(t, err)
	require.NoError(t, s.SaveNodes(1, 1, 20))
	require.NoError(t, s.Close())

	_, err = os.Stat(dir)
	require.NoError(t, err)

	s, err = Open(dir, logging.Discard())
	require.NoError(t, err)
	defer s.Close()

	got, err := s.LoadNodes(1, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(20), got)
}

func TestGetDatabaseDirOverride(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "perft")
	got, err := GetDatabaseDir(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
