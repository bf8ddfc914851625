package board

import (
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFENs = []string{
	StartFEN,
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - -",
	"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
	"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	"8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1",
	"4r2k/8/8/1B6/R7/8/8/4K3 w - - 0 1",
}

func moveStrings(moves []Move) []string {
	s := make([]string, len(moves))
	for i, m := range moves {
		s[i] = m.String() + "/" + m.Kind.String()
	}
	sort.Strings(s)
	return s
}

func generate(pos *Position, mode GenMode) []Move {
	var ml MoveList
	pos.GenerateMoves(&ml, mode)
	return append([]Move(nil), ml.Slice()...)
}

func TestMagicAttacksMatchRayCasting(t *testing.T) {
	tables := DefaultTables()
	rng := newPRNG(42)
	for sq := A1; sq <= H8; sq++ {
		for i := 0; i < 64; i++ {
			occ := Bitboard(rng.next() & rng.next())
			require.Equal(t, bishopAttacksSlow(sq, occ), tables.BishopAttacks(sq, occ), "bishop %s", sq)
			require.Equal(t, rookAttacksSlow(sq, occ), tables.RookAttacks(sq, occ), "rook %s", sq)
		}
	}
}

func TestTablesAreDeterministic(t *testing.T) {
	a := NewTables(DefaultTableConfig())
	b := NewTables(DefaultTableConfig())
	assert.Equal(t, a.Zobrist, b.Zobrist)
	assert.Equal(t, a.rookMagics, b.rookMagics)

	other := NewTables(TableConfig{ZobristSeed: 7, MagicSeed: 11})
	assert.NotEqual(t, a.Zobrist.SideToMove, other.Zobrist.SideToMove)
}

func TestMakeUnmakeRestoresPosition(t *testing.T) {
	for _, fen := range testFENs {
		pos, err := ParseFEN(fen)
		require.NoError(t, err, fen)
		require.NoError(t, pos.Verify())

		var ml MoveList
		pos.GeneratePseudoLegal(&ml)
		require.NotZero(t, ml.Len(), fen)

		for _, m := range ml.Slice() {
			before := pos.Copy()
			u := pos.MakeMove(m)
			require.NoError(t, pos.Verify(), "%s after %s", fen, m)
			require.Equal(t, pos.ComputeHash(), pos.Hash)
			pos.UnmakeMove(m, u)
			require.Equal(t, before, pos, "%s: %s did not unmake cleanly", fen, m)
		}
	}
}

func TestNullMove(t *testing.T) {
	pos, err := ParseFEN("rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2")
	require.NoError(t, err)
	before := pos.Copy()

	u := pos.MakeNullMove()
	assert.Equal(t, Black, pos.SideToMove)
	assert.Equal(t, NoSquare, pos.EnPassant)
	require.NoError(t, pos.Verify())

	pos.UnmakeNullMove(u)
	assert.Equal(t, before, pos)
}

func TestTranspositionHashAndRepetition(t *testing.T) {
	pos := NewPosition()
	start := pos.Hash

	play := func(moves ...string) {
		for _, s := range moves {
			m, err := pos.ParseMove(s)
			require.NoError(t, err, s)
			pos.MakeMove(m)
			require.NoError(t, pos.Verify(), s)
		}
	}

	play("g1f3", "g8f6", "f3g1", "f6g8")
	assert.Equal(t, start, pos.Hash)
	assert.Equal(t, 2, pos.History.Count(start))
	assert.False(t, pos.IsDrawByRepetition())

	play("g1f3", "g8f6", "f3g1", "f6g8")
	assert.Equal(t, 3, pos.History.Count(start))
	assert.True(t, pos.IsDrawByRepetition())
	assert.True(t, pos.IsDraw())
}

func TestDifferentOrdersSameHash(t *testing.T) {
	a := NewPosition()
	b := NewPosition()
	for _, s := range []string{"g1f3", "g8f6", "b1c3"} {
		m, err := a.ParseMove(s)
		require.NoError(t, err)
		a.MakeMove(m)
	}
	for _, s := range []string{"b1c3", "g8f6", "g1f3"} {
		m, err := b.ParseMove(s)
		require.NoError(t, err)
		b.MakeMove(m)
	}
	assert.Equal(t, a.ToFEN(), b.ToFEN())
	assert.Equal(t, a.Hash, b.Hash)
}

func TestFENRoundTrip(t *testing.T) {
	for _, fen := range []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2",
		"8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1",
	} {
		pos, err := ParseFEN(fen)
		require.NoError(t, err)
		assert.Equal(t, fen, pos.ToFEN())
	}
}

func TestParseFENRejectsMalformed(t *testing.T) {
	for _, fen := range []string{
		"",
		"8/8/8/8/8/8/8/8 w - -",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP w KQkq - 0 1",
		"rnbqkbnr/pppppppp/9/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"rnbqkbnr/pppppppp/44/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"rnbqkbnr/ppppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkqK - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KX - 0 1",
		"4k3/8/8/8/8/8/8/4K3 w K - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq e3 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq e6 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - -1 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 0",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1 extra",
		"P3k3/8/8/8/8/8/8/4K3 w - - 0 1",
		"4k3/8/8/8/8/8/8/4R1K1 w - - 0 1",
	} {
		_, err := ParseFEN(fen)
		assert.True(t, errors.Is(err, ErrInvalidFEN), "%q: %v", fen, err)
	}
}

func TestPackedMoveRoundTrip(t *testing.T) {
	pos, err := ParseFEN(testFENs[3])
	require.NoError(t, err)
	moves := append(pos.LegalMoves(), Move{From: E7, To: E8, Kind: PromotionCapture, Captured: BlackRook, Promoted: WhiteKnight, Score: -5})
	for _, m := range moves {
		assert.Equal(t, m, m.Pack().Unpack())
	}
}

func TestMoveListOverflowPanics(t *testing.T) {
	var ml MoveList
	for i := 0; i < MaxMoves; i++ {
		ml.Add(NoMove)
	}
	assert.PanicsWithValue(t, ErrMoveListOverflow, func() { ml.Add(NoMove) })
}

func TestPinnedPiecesStayOnRay(t *testing.T) {
	pos, err := ParseFEN("4k3/4r3/8/8/8/8/4B3/4K3 w - - 0 1")
	require.NoError(t, err)
	for _, m := range generate(pos, GenAll) {
		assert.NotEqual(t, E2, m.From, "pinned bishop moved: %s", m)
	}

	pos, err = ParseFEN("4k3/4r3/8/8/8/8/4R3/4K3 w - - 0 1")
	require.NoError(t, err)
	var rook []string
	ray := pos.Tables().Line(E1, E7)
	for _, m := range generate(pos, GenAll) {
		if m.From == E2 {
			assert.True(t, ray.IsSet(m.To), "%s leaves the pin line", m)
			rook = append(rook, m.String())
		}
	}
	assert.ElementsMatch(t, []string{"e2e3", "e2e4", "e2e5", "e2e6", "e2e7"}, rook)

	pos, err = ParseFEN("4k3/8/8/8/8/2b5/3P4/4K3 w - - 0 1")
	require.NoError(t, err)
	var pawn []string
	for _, m := range generate(pos, GenAll) {
		if m.From == D2 {
			pawn = append(pawn, m.String())
		}
	}
	assert.Equal(t, []string{"d2c3"}, pawn)
}

func TestEvasions(t *testing.T) {
	pos, err := ParseFEN("4r2k/8/8/1B6/R7/8/8/4K3 w - - 0 1")
	require.NoError(t, err)
	require.Equal(t, Check, pos.CheckStatus())

	var ml MoveList
	pos.GenerateEvasions(&ml)
	var nonKing []string
	answer := pos.Tables().Between(E1, E8) | SquareBB(E8)
	for _, m := range ml.Slice() {
		if m.From != E1 {
			assert.True(t, answer.IsSet(m.To), "%s neither blocks nor captures", m)
			nonKing = append(nonKing, m.String())
		}
	}
	assert.ElementsMatch(t, []string{"a4e4", "b5e8", "b5e2"}, nonKing)
	assert.Len(t, pos.LegalMoves(), 7)
}

func TestEnPassantEvasionCapturesChecker(t *testing.T) {
	pos, err := ParseFEN("8/8/8/2k5/3Pp3/8/8/4K3 b - d3 0 1")
	require.NoError(t, err)
	require.True(t, pos.InCheck())

	found := false
	for _, m := range pos.LegalMoves() {
		if m.Kind == EnPassant && m.String() == "e4d3" {
			found = true
		}
	}
	assert.True(t, found, "en passant capture of the checking pawn missing")
}

func TestQuietsAndCapturesPartitionAll(t *testing.T) {
	for _, fen := range testFENs {
		pos, err := ParseFEN(fen)
		require.NoError(t, err)
		if pos.InCheck() {
			continue
		}
		all := moveStrings(generate(pos, GenAll))
		split := moveStrings(append(generate(pos, GenQuiets), generate(pos, GenCaptures)...))
		assert.Equal(t, all, split, fen)

		for _, m := range generate(pos, GenQuiets) {
			assert.False(t, m.IsCapture() || m.IsPromotion(), "%s in quiets", m)
		}
	}
}

func TestCheckingCaptures(t *testing.T) {
	pos, err := ParseFEN("r3k3/1P6/8/8/8/8/8/4K3 w - - 0 1")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"b7b8q", "b7a8q"}, func() []string {
		var s []string
		for _, m := range generate(pos, GenCheckingCaptures) {
			s = append(s, m.String())
		}
		return s
	}())
	assert.Len(t, generate(pos, GenCaptures), 8)

	kiwi, err := ParseFEN(testFENs[1])
	require.NoError(t, err)
	for _, m := range generate(kiwi, GenCheckingCaptures) {
		assert.True(t, kiwi.GivesCheck(m), "%s does not check", m)
	}
}

func TestQuietNonChecks(t *testing.T) {
	pos, err := ParseFEN("4k3/8/8/8/8/8/8/R3K2R w KQ - 0 1")
	require.NoError(t, err)
	quiets := generate(pos, GenQuiets)
	nonChecks := generate(pos, GenQuietNonChecks)
	assert.Len(t, nonChecks, len(quiets)-2)
	for _, m := range nonChecks {
		assert.False(t, pos.GivesCheck(m), "%s gives check", m)
	}

	// Short castling lands the rook on f1, facing the king on f8.
	pos, err = ParseFEN("5k2/8/8/8/8/8/8/R3K2R w KQ - 0 1")
	require.NoError(t, err)
	assert.Contains(t, moveStrings(generate(pos, GenQuiets)), "e1g1/short-castle")
	assert.NotContains(t, moveStrings(generate(pos, GenQuietNonChecks)), "e1g1/short-castle")
}

func TestCastlingRightsLost(t *testing.T) {
	pos, err := ParseFEN("r3k2r/8/8/8/8/8/6B1/R3K2R w KQkq - 0 1")
	require.NoError(t, err)

	// Capturing the a8 rook takes black's long castle with it.
	m, err := pos.ParseMove("g2a8")
	require.NoError(t, err)
	pos.MakeMove(m)
	assert.Equal(t, WhiteKingSideCastle|WhiteQueenSideCastle|BlackKingSideCastle, pos.CastlingRights)
	require.NoError(t, pos.Verify())

	m, err = pos.ParseMove("e8g8")
	require.NoError(t, err)
	assert.Equal(t, ShortCastle, m.Kind)
	pos.MakeMove(m)
	assert.Equal(t, WhiteKingSideCastle|WhiteQueenSideCastle, pos.CastlingRights)
	assert.Equal(t, BlackRook, pos.PieceAt(F8))
	assert.Equal(t, BlackKing, pos.PieceAt(G8))
	require.NoError(t, pos.Verify())

	m, err = pos.ParseMove("a1b1")
	require.NoError(t, err)
	pos.MakeMove(m)
	assert.Equal(t, WhiteKingSideCastle, pos.CastlingRights)
	require.NoError(t, pos.Verify())
}

func TestSEE(t *testing.T) {
	tests := []struct {
		name     string
		fen      string
		from, to Square
		want     int
	}{
		{"hanging pawn", "4k3/8/8/3p4/8/8/8/3RK3 w - - 0 1", D1, D5, 100},
		{"queen takes defended pawn", "4k3/8/2p5/3p4/8/8/8/3QK3 w - - 0 1", D1, D5, -800},
		{"defender declines", "3q3k/8/8/3p4/8/5B2/8/3RK3 w - - 0 1", D1, D5, 100},
		{"x-ray rook joins", "3r3k/8/8/3p4/8/8/3R4/3RK3 w - - 0 1", D2, D5, 100},
		{"stop when losing", "4k3/8/2p5/3p4/8/8/3Q4/3RK3 w - - 0 1", D2, D5, -800},
		{"promotion push", "7k/3P4/8/8/8/8/8/4K3 w - - 0 1", D7, D8, 800},
		{"en passant", "4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1", E5, D6, 100},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := ParseFEN(tc.fen)
			require.NoError(t, err)
			assert.Equal(t, tc.want, pos.SEE(tc.from, tc.to, pos.SideToMove))
		})
	}
}

func TestScoreTracksMaterial(t *testing.T) {
	pos := NewPosition()
	assert.Equal(t, int32(0), pos.Score)
	assert.Equal(t, pos.Material[White], pos.Material[Black])

	pos, err := ParseFEN("4k3/8/8/8/8/8/8/3QK3 w - - 0 1")
	require.NoError(t, err)
	assert.Equal(t, int32(PieceValue[Queen]), pos.Material[White][Midgame])
	assert.Greater(t, pos.Score, int32(0))
}

func TestInsufficientMaterial(t *testing.T) {
	for fen, want := range map[string]bool{
		"4k3/8/8/8/8/8/8/4K3 w - - 0 1":   true,
		"4k3/8/8/8/8/8/8/3NK3 w - - 0 1":  true,
		"4k3/8/8/8/8/8/8/3RK3 w - - 0 1":  false,
		"4k3/4p3/8/8/8/8/8/4K3 w - - 0 1": false,
	} {
		pos, err := ParseFEN(fen)
		require.NoError(t, err)
		assert.Equal(t, want, pos.IsInsufficientMaterial(), fen)
	}
}

func TestApplyLeavesOriginal(t *testing.T) {
	pos := NewPosition()
	fen := pos.ToFEN()
	m, err := pos.ParseMove("e2e4")
	require.NoError(t, err)

	next, err := pos.Apply(m)
	require.NoError(t, err)
	assert.Equal(t, fen, pos.ToFEN())
	assert.Equal(t, E3, next.EnPassant)
	assert.Equal(t, 1, pos.History.Len())
	assert.Equal(t, 2, next.History.Len())
}

func TestParseMoveRejects(t *testing.T) {
	pos := NewPosition()
	for _, s := range []string{"e2e5", "e1g1", "zz", "e7e8x"} {
		_, err := pos.ParseMove(s)
		assert.ErrorIs(t, err, ErrIllegalMove, s)
	}
}

func TestSAN(t *testing.T) {
	pos, err := ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	require.NoError(t, err)

	for _, s := range []string{"O-O", "O-O-O", "Nxf7", "Qxf6", "dxe6", "Bxa6", "gxh3", "Nb1"} {
		m, err := pos.ParseSAN(s)
		require.NoError(t, err, s)
		assert.Equal(t, s, pos.SAN(m))
	}

	_, err = pos.ParseSAN("Ke3")
	assert.ErrorIs(t, err, ErrIllegalMove)

	// Both knights reach d2, so the bare destination is not enough.
	twoKnights, err := ParseFEN("4k3/8/8/8/8/8/8/1N2KN2 w - - 0 1")
	require.NoError(t, err)
	_, err = twoKnights.ParseSAN("Nd2")
	assert.ErrorIs(t, err, ErrIllegalMove)
	for _, s := range []string{"Nbd2", "Nfd2"} {
		m, err := twoKnights.ParseSAN(s)
		require.NoError(t, err, s)
		assert.Equal(t, D2, m.To)
		assert.Equal(t, s, twoKnights.SAN(m))
	}

	line := []Move{}
	start := NewPosition()
	play := start.Copy()
	for _, s := range []string{"f2f3", "e7e5", "g2g4", "d8h4"} {
		m, err := play.ParseMove(s)
		require.NoError(t, err)
		line = append(line, m)
		play.MakeMove(m)
	}
	assert.Equal(t, []string{"f3", "e5", "g4", "Qh4#"}, MovesToSAN(start, line))
}

func TestPromotionChecksThroughVacatedSquare(t *testing.T) {
	// The pawn on e7 shields the king on e2 from e8 until it promotes.
	pos, err := ParseFEN("8/4P3/8/8/8/8/4k3/K7 w - - 0 1")
	require.NoError(t, err)

	quiet := generate(pos, GenQuietNonChecks)
	var promos []string
	for _, m := range quiet {
		assert.False(t, pos.GivesCheck(m), "%s gives check", m)
		if m.IsPromotion() {
			promos = append(promos, m.String())
		}
	}
	assert.ElementsMatch(t, []string{"e7e8n", "e7e8b"}, promos)

	checking := generate(pos, GenCheckingCaptures)
	for _, m := range checking {
		assert.True(t, pos.GivesCheck(m), "%s does not check", m)
	}
	assert.Equal(t, []string{"e7e8q"}, func() []string {
		var s []string
		for _, m := range checking {
			s = append(s, m.String())
		}
		return s
	}())

	// After long castling the rook on d1 sees through e1 to the king on g1.
	pos, err = ParseFEN("8/8/8/8/8/8/8/R3K1k1 w Q - 0 1")
	require.NoError(t, err)
	assert.Contains(t, moveStrings(generate(pos, GenQuiets)), "e1c1/long-castle")
	assert.NotContains(t, moveStrings(generate(pos, GenQuietNonChecks)), "e1c1/long-castle")
	for _, m := range generate(pos, GenQuietNonChecks) {
		assert.False(t, pos.GivesCheck(m), "%s gives check", m)
	}
}

func TestHistorySlotCollisions(t *testing.T) {
	h := NewHistory()
	const k = uint64(0x9e3779b97f4a7c15)
	for i := uint64(0); i < 3; i++ {
		h.Push(k + i*historyTableSize)
	}

	assert.False(t, h.Repeated(k, 3))
	assert.False(t, h.Repeated(k, 2))
	assert.True(t, h.Repeated(k, 1))
	for i := uint64(0); i < 3; i++ {
		assert.Equal(t, 1, h.Count(k+i*historyTableSize))
	}
	assert.Zero(t, h.Count(k+3*historyTableSize), "unrecorded key sharing the slot")
	assert.False(t, h.Repeated(k+3*historyTableSize, 1))

	h.Push(k)
	h.Push(k)
	assert.Equal(t, 3, h.Count(k))
	assert.True(t, h.Repeated(k, 3))

	h.Pop()
	h.Pop()
	h.Pop()
	assert.Equal(t, 2, h.Len())
	assert.Zero(t, h.Count(k+2*historyTableSize))
	assert.Equal(t, k+historyTableSize, h.Last())
	assert.False(t, h.Repeated(k, 2))
}

func TestAttackCount(t *testing.T) {
	// d4 is hit by the black rook, bishop and knight, and by the white pawn.
	pos, err := ParseFEN("4k3/8/5b2/3r4/8/1nP5/8/7K w - - 0 1")
	require.NoError(t, err)
	assert.Equal(t, 3, pos.AttackCount(White, D4))
	assert.Equal(t, 1, pos.AttackCount(Black, D4))
	assert.Zero(t, pos.AttackCount(White, A8))

	// A white piece on e5 blocks the bishop.
	pos, err = ParseFEN("4k3/8/5b2/3rN3/8/1nP5/8/7K w - - 0 1")
	require.NoError(t, err)
	assert.Equal(t, 2, pos.AttackCount(White, D4))
	assert.Equal(t, 1, pos.AttackCount(Black, D4), "a knight on e5 does not reach d4")
}
