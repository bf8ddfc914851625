package perft

import (
	"context"
	"testing"

	"github.com/dylhunn/dragontoothmg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abcus/chess-engine-sub000/internal/board"
	"github.com/abcus/chess-engine-sub000/internal/logging"
	"github.com/abcus/chess-engine-sub000/internal/storage"
)

const kiwipete = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"

func mustParse(t *testing.T, fen string) *board.Position {
	t.Helper()
	pos, err := board.ParseFEN(fen)
	require.NoError(t, err)
	return pos
}

// referencePerft counts nodes with an independent move generator.
func referencePerft(b *dragontoothmg.Board, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	moves := b.GenerateLegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		undo := b.Apply(m)
		nodes += referencePerft(b, depth-1)
		undo()
	}
	return nodes
}

// referenceDivide returns per-root-move counts keyed by coordinate notation.
func referenceDivide(fen string, depth int) map[string]uint64 {
	b := dragontoothmg.ParseFen(fen)
	out := make(map[string]uint64)
	for _, m := range b.GenerateLegalMoves() {
		undo := b.Apply(m)
		out[m.String()] = referencePerft(&b, depth-1)
		undo()
	}
	return out
}

func TestRunnerMatchesReferenceGenerator(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		depth int
	}{
		{"start", board.StartFEN, 3},
		{"kiwipete", kiwipete, 2},
		{"position3", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 3},
		{"position4", "r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1", 2},
	}

	r := NewRunner(Options{Workers: 4, Logger: logging.Discard()})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := r.Divide(context.Background(), mustParse(t, tt.fen), tt.depth)
			require.NoError(t, err)

			want := referenceDivide(tt.fen, tt.depth)
			got := make(map[string]uint64, len(res.Divide))
			for _, e := range res.Divide {
				got[e.Move.String()] = e.Nodes
			}
			assert.Equal(t, want, got)
		})
	}
}

func TestRunnerPerftMatchesSerial(t *testing.T) {
	pos := mustParse(t, kiwipete)
	before := pos.ToFEN()

	r := NewRunner(Options{Workers: 3, Logger: logging.Discard()})
	res, err := r.Perft(context.Background(), pos, 3)
	require.NoError(t, err)

	assert.Equal(t, uint64(97862), res.Nodes)
	assert.Equal(t, pos.Perft(3), res.Nodes)
	assert.Nil(t, res.Divide)
	assert.False(t, res.Cached)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, before, pos.ToFEN(), "runner must not modify the position")
	require.NoError(t, pos.Verify())
}

func TestRunnerWithHashTable(t *testing.T) {
	r := NewRunner(Options{Workers: 4, HashMB: 8, Logger: logging.Discard()})
	res, err := r.Perft(context.Background(), mustParse(t, kiwipete), 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(97862), res.Nodes)

	res, err = r.Perft(context.Background(), board.NewPosition(), 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(197281), res.Nodes)
}

func TestRunnerDepthZero(t *testing.T) {
	r := NewRunner(Options{Logger: logging.Discard()})
	res, err := r.Perft(context.Background(), board.NewPosition(), 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), res.Nodes)
}

func TestRunnerRejectsDepth(t *testing.T) {
	r := NewRunner(Options{MaxDepth: 4, Logger: logging.Discard()})
	_, err := r.Perft(context.Background(), board.NewPosition(), 5)
	assert.ErrorIs(t, err, ErrDepth)

	_, err = r.Perft(context.Background(), board.NewPosition(), -1)
	assert.ErrorIs(t, err, ErrDepth)
}

func TestRunnerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(Options{Workers: 1, Logger: logging.Discard()})
	_, err := r.Perft(ctx, board.NewPosition(), 3)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunnerUsesStore(t *testing.T) {
	store, err := storage.OpenInMemory(logging.Discard())
	require.NoError(t, err)
	defer store.Close()

	r := NewRunner(Options{Workers: 2, Store: store, Logger: logging.Discard()})
	pos := board.NewPosition()

	first, err := r.Divide(context.Background(), pos, 3)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, uint64(8902), first.Nodes)

	second, err := r.Divide(context.Background(), pos, 3)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Nodes, second.Nodes)
	require.Len(t, second.Divide, len(first.Divide))
	for i := range first.Divide {
		assert.Equal(t, first.Divide[i].Move.String(), second.Divide[i].Move.String())
		assert.Equal(t, first.Divide[i].Nodes, second.Divide[i].Nodes)
	}

	// A divide run also stores the plain node count.
	third, err := r.Perft(context.Background(), pos, 3)
	require.NoError(t, err)
	assert.True(t, third.Cached)
	assert.Equal(t, uint64(8902), third.Nodes)

	runs, err := store.Runs()
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestResultNPS(t *testing.T) {
	assert.Zero(t, Result{Nodes: 100}.NPS())
	assert.Equal(t, uint64(2000), Result{Nodes: 1000, Elapsed: 500_000_000}.NPS())
}
