package board

import "sync"

// Tables is the immutable lookup data every position reads: leaper and slider
// attacks, between/line geometry, castling-right masks, hash keys and score
// tables. Build it once with NewTables and share it; nothing mutates it after
// construction.
type Tables struct {
	knightAttacks [64]Bitboard
	kingAttacks   [64]Bitboard
	pawnAttacks   [2][64]Bitboard // [Color][Square]

	betweenBB [64][64]Bitboard // Squares strictly between two squares
	lineBB    [64][64]Bitboard // Full line through two squares (including endpoints)

	bishopMagics [64]Magic
	rookMagics   [64]Magic
	bishopTable  []Bitboard
	rookTable    []Bitboard

	// rightsLost[sq] holds the castling rights that vanish once sq is
	// vacated or entered.
	rightsLost [64]CastlingRights

	Zobrist Zobrist
	Values  *Values
}

// TableConfig selects the seeds and score tables a Tables is built from.
type TableConfig struct {
	ZobristSeed uint64
	MagicSeed   uint64
	Values      *Values // nil selects DefaultValues
}

// DefaultTableConfig returns the seeds the engine ships with.
func DefaultTableConfig() TableConfig {
	return TableConfig{
		ZobristSeed: 0x98F107A2BEEF1234,
		MagicSeed:   0x6A09E667F3BCC909,
	}
}

var (
	defaultTablesOnce sync.Once
	defaultTables     *Tables
)

// DefaultTables returns a process-wide Tables built from DefaultTableConfig on
// first use.
func DefaultTables() *Tables {
	defaultTablesOnce.Do(func() {
		defaultTables = NewTables(DefaultTableConfig())
	})
	return defaultTables
}

// NewTables computes every lookup table.
func NewTables(cfg TableConfig) *Tables {
	t := &Tables{Values: cfg.Values}
	if t.Values == nil {
		t.Values = DefaultValues()
	}

	t.initLeapers()
	t.initGeometry()

	rng := newPRNG(cfg.MagicSeed)
	t.bishopTable = initMagics(&t.bishopMagics, bishopMask, bishopAttacksSlow, rng)
	t.rookTable = initMagics(&t.rookMagics, rookMask, rookAttacksSlow, rng)

	for sq := range t.rightsLost {
		t.rightsLost[sq] = NoCastling
	}
	t.rightsLost[A1] = WhiteQueenSideCastle
	t.rightsLost[H1] = WhiteKingSideCastle
	t.rightsLost[E1] = WhiteKingSideCastle | WhiteQueenSideCastle
	t.rightsLost[A8] = BlackQueenSideCastle
	t.rightsLost[H8] = BlackKingSideCastle
	t.rightsLost[E8] = BlackKingSideCastle | BlackQueenSideCastle

	t.Zobrist = NewZobrist(cfg.ZobristSeed)
	return t
}

func (t *Tables) initLeapers() {
	for sq := A1; sq <= H8; sq++ {
		bb := SquareBB(sq)

		var knight Bitboard
		knight |= (bb << 17) & NotFileA
		knight |= (bb << 15) & NotFileH
		knight |= (bb >> 17) & NotFileH
		knight |= (bb >> 15) & NotFileA
		knight |= (bb << 10) & NotFileAB
		knight |= (bb << 6) & NotFileGH
		knight |= (bb >> 10) & NotFileGH
		knight |= (bb >> 6) & NotFileAB
		t.knightAttacks[sq] = knight

		t.kingAttacks[sq] = bb.North() | bb.South() | bb.East() | bb.West() |
			bb.NorthEast() | bb.NorthWest() | bb.SouthEast() | bb.SouthWest()

		t.pawnAttacks[White][sq] = bb.NorthEast() | bb.NorthWest()
		t.pawnAttacks[Black][sq] = bb.SouthEast() | bb.SouthWest()
	}
}

func (t *Tables) initGeometry() {
	for sq1 := A1; sq1 <= H8; sq1++ {
		for sq2 := A1; sq2 <= H8; sq2++ {
			if sq1 == sq2 {
				continue
			}

			f1, r1 := sq1.File(), sq1.Rank()
			f2, r2 := sq2.File(), sq2.Rank()
			df, dr := sign(f2-f1), sign(r2-r1)

			// Only aligned squares have a line.
			if df != 0 && dr != 0 && abs(f2-f1) != abs(r2-r1) {
				continue
			}

			var between Bitboard
			for f, r := f1+df, r1+dr; f != f2 || r != r2; f, r = f+df, r+dr {
				between |= SquareBB(NewSquare(f, r))
			}
			t.betweenBB[sq1][sq2] = between

			var line Bitboard
			for f, r := f1, r1; f >= 0 && f <= 7 && r >= 0 && r <= 7; f, r = f-df, r-dr {
				line |= SquareBB(NewSquare(f, r))
			}
			for f, r := f1+df, r1+dr; f >= 0 && f <= 7 && r >= 0 && r <= 7; f, r = f+df, r+dr {
				line |= SquareBB(NewSquare(f, r))
			}
			t.lineBB[sq1][sq2] = line
		}
	}
}

func sign(x int) int {
	if x > 0 {
		return 1
	}
	if x < 0 {
		return -1
	}
	return 0
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// KnightAttacks returns the knight attack bitboard for a square.
func (t *Tables) KnightAttacks(sq Square) Bitboard {
	return t.knightAttacks[sq]
}

// KingAttacks returns the king attack bitboard for a square.
func (t *Tables) KingAttacks(sq Square) Bitboard {
	return t.kingAttacks[sq]
}

// PawnAttacks returns the squares a pawn of color c on sq attacks.
func (t *Tables) PawnAttacks(sq Square, c Color) Bitboard {
	return t.pawnAttacks[c][sq]
}

// BishopAttacks returns the bishop attack bitboard for a square with given occupancy.
func (t *Tables) BishopAttacks(sq Square, occupied Bitboard) Bitboard {
	m := &t.bishopMagics[sq]
	return t.bishopTable[m.index(occupied)]
}

// RookAttacks returns the rook attack bitboard for a square with given occupancy.
func (t *Tables) RookAttacks(sq Square, occupied Bitboard) Bitboard {
	m := &t.rookMagics[sq]
	return t.rookTable[m.index(occupied)]
}

// QueenAttacks returns the queen attack bitboard for a square with given occupancy.
func (t *Tables) QueenAttacks(sq Square, occupied Bitboard) Bitboard {
	return t.BishopAttacks(sq, occupied) | t.RookAttacks(sq, occupied)
}

// Between returns the squares strictly between two aligned squares, or Empty.
func (t *Tables) Between(sq1, sq2 Square) Bitboard {
	return t.betweenBB[sq1][sq2]
}

// Line returns the full line through two aligned squares, or Empty.
func (t *Tables) Line(sq1, sq2 Square) Bitboard {
	return t.lineBB[sq1][sq2]
}
