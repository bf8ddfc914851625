package board

import "errors"

// MoveKind tags what a move does beyond relocating a piece.
type MoveKind uint8

const (
	Quiet MoveKind = iota
	DoublePush
	Capture
	EnPassant
	ShortCastle
	LongCastle
	Promotion
	PromotionCapture
)

var moveKindNames = [...]string{"quiet", "double-push", "capture", "en-passant", "short-castle", "long-castle", "promotion", "promotion-capture"}

func (k MoveKind) String() string {
	if int(k) < len(moveKindNames) {
		return moveKindNames[k]
	}
	return "unknown"
}

// Move describes one move as produced by the generators. Captured and Promoted
// are NoPiece when they do not apply; for en passant Captured is the taken pawn.
// Score is the ordering hint the generator attaches.
type Move struct {
	From     Square
	To       Square
	Kind     MoveKind
	Captured Piece
	Promoted Piece
	Score    int32
}

// NoMove is the null move. No generated move has From == To.
var NoMove = Move{Captured: NoPiece, Promoted: NoPiece}

// IsNull reports whether m is NoMove (or any other From == To value).
func (m Move) IsNull() bool {
	return m.From == m.To
}

// IsCapture returns true for captures, en passant and promotion-captures.
func (m Move) IsCapture() bool {
	return m.Kind == Capture || m.Kind == EnPassant || m.Kind == PromotionCapture
}

// IsPromotion returns true for both promotion kinds.
func (m Move) IsPromotion() bool {
	return m.Kind == Promotion || m.Kind == PromotionCapture
}

// IsCastle returns true for either castling kind.
func (m Move) IsCastle() bool {
	return m.Kind == ShortCastle || m.Kind == LongCastle
}

// String returns the coordinate form of the move (e.g., "e2e4", "e7e8q").
func (m Move) String() string {
	if m.IsNull() {
		return "0000"
	}
	s := m.From.String() + m.To.String()
	if m.IsPromotion() {
		s += string("pnbrqk"[m.Promoted.Type()])
	}
	return s
}

// PackedMove is the fixed-width integer form of a Move:
// bits 0-5 from, 6-11 to, 12-14 kind, 15-18 captured, 19-22 promoted,
// bits 32-63 the ordering score.
type PackedMove uint64

// Pack encodes m into its fixed-width form.
func (m Move) Pack() PackedMove {
	return PackedMove(uint64(m.From) |
		uint64(m.To)<<6 |
		uint64(m.Kind)<<12 |
		uint64(m.Captured)<<15 |
		uint64(m.Promoted)<<19 |
		uint64(uint32(m.Score))<<32)
}

// Unpack is the inverse of Move.Pack.
func (pm PackedMove) Unpack() Move {
	return Move{
		From:     Square(pm & 0x3F),
		To:       Square((pm >> 6) & 0x3F),
		Kind:     MoveKind((pm >> 12) & 0x7),
		Captured: Piece((pm >> 15) & 0xF),
		Promoted: Piece((pm >> 19) & 0xF),
		Score:    int32(uint32(pm >> 32)),
	}
}

// MaxMoves bounds a MoveList. No reachable position has more than 218 legal
// moves; the extra room covers the unchecked king and en-passant moves a
// pseudo-legal list may carry.
const MaxMoves = 256

// ErrMoveListOverflow is the panic value raised when a MoveList is full.
var ErrMoveListOverflow = errors.New("board: move list overflow")

// MoveList is a fixed-capacity, length-tagged move buffer.
type MoveList struct {
	moves [MaxMoves]Move
	count int
}

// Add appends a move. A full list panics rather than dropping the move.
func (ml *MoveList) Add(m Move) {
	if ml.count == MaxMoves {
		panic(ErrMoveListOverflow)
	}
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Slice returns the moves as a slice backed by the list.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}

// Undo is the snapshot taken by MakeMove (or MakeNullMove) that UnmakeMove
// needs to restore everything the move itself cannot reverse.
type Undo struct {
	SideToMove     Color
	CastlingRights CastlingRights
	HalfMoveClock  int
	FullMoveNumber int
	Captured       Piece
	EnPassant      Square
	Hash           uint64
	Material       [2][2]int32
	Score          int32
}
