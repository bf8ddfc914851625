package board

import (
	"errors"
	"fmt"
	"strings"
)

// CastlingRights represents the available castling options.
type CastlingRights uint8

const (
	WhiteKingSideCastle  CastlingRights = 1 << iota // K
	WhiteQueenSideCastle                            // Q
	BlackKingSideCastle                             // k
	BlackQueenSideCastle                            // q
	NoCastling           CastlingRights = 0
	AllCastling          CastlingRights = WhiteKingSideCastle | WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle
)

// String returns the FEN castling rights string.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	s := ""
	if cr&WhiteKingSideCastle != 0 {
		s += "K"
	}
	if cr&WhiteQueenSideCastle != 0 {
		s += "Q"
	}
	if cr&BlackKingSideCastle != 0 {
		s += "k"
	}
	if cr&BlackQueenSideCastle != 0 {
		s += "q"
	}
	return s
}

// CanCastle returns true if the given side can castle in the given direction.
func (cr CastlingRights) CanCastle(c Color, kingSide bool) bool {
	if c == White {
		if kingSide {
			return cr&WhiteKingSideCastle != 0
		}
		return cr&WhiteQueenSideCastle != 0
	}
	if kingSide {
		return cr&BlackKingSideCastle != 0
	}
	return cr&BlackQueenSideCastle != 0
}

// Position represents a complete chess position together with the running
// totals that MakeMove keeps in step with the board.
type Position struct {
	// Piece bitboards: [Color][PieceType]
	Pieces [2][6]Bitboard

	// Occupancy bitboards, always the union of Pieces
	Occupied    [2]Bitboard
	AllOccupied Bitboard

	// Board mirrors the bitboards square by square.
	Board [64]Piece

	// Game state
	SideToMove     Color
	CastlingRights CastlingRights
	EnPassant      Square // Target square for en passant, NoSquare if none
	HalfMoveClock  int    // Moves since last pawn move or capture (for 50-move rule)
	FullMoveNumber int    // Full move counter, starts at 1

	Hash uint64

	Material [2][2]int32  // [Color][Phase]
	PSQ      [12][2]int32 // [Piece][Phase], sign as stored in Values.PST
	Score    int32        // white-positive sum of Values.Combined

	// King positions (cached for check detection)
	KingSquare [2]Square

	// History holds the hash of every position reached, this one included.
	History *History

	t *Tables
}

// ErrCorrupt is wrapped by Verify when the incremental state disagrees with
// the board.
var ErrCorrupt = errors.New("board: corrupt position")

// NewPosition creates the starting position on the default tables.
func NewPosition() *Position {
	pos, _ := DefaultTables().ParseFEN(StartFEN)
	return pos
}

// Tables returns the lookup tables the position was built on.
func (p *Position) Tables() *Tables {
	return p.t
}

// Copy creates a deep copy of the position. The copy shares the immutable
// tables and nothing else.
func (p *Position) Copy() *Position {
	newPos := *p
	newPos.History = p.History.Clone()
	return &newPos
}

// PieceAt returns the piece at the given square, or NoPiece if empty.
func (p *Position) PieceAt(sq Square) Piece {
	return p.Board[sq]
}

// IsEmpty returns true if the square is empty.
func (p *Position) IsEmpty(sq Square) bool {
	return p.AllOccupied&SquareBB(sq) == 0
}

// place puts pc on an empty sq, keeping bitboards, board, PSQ totals and the
// king cache in step. Hash, material and score are the caller's business.
func (p *Position) place(pc Piece, sq Square) {
	c, pt := pc.Color(), pc.Type()
	bb := SquareBB(sq)
	p.Pieces[c][pt] |= bb
	p.Occupied[c] |= bb
	p.AllOccupied |= bb
	p.Board[sq] = pc

	psq := &p.t.Values.PST[pc][sq]
	p.PSQ[pc][Midgame] += psq[Midgame]
	p.PSQ[pc][Endgame] += psq[Endgame]

	if pt == King {
		p.KingSquare[c] = sq
	}
}

// take is the inverse of place and returns the removed piece.
func (p *Position) take(sq Square) Piece {
	pc := p.Board[sq]
	c, pt := pc.Color(), pc.Type()
	bb := SquareBB(sq)
	p.Pieces[c][pt] &^= bb
	p.Occupied[c] &^= bb
	p.AllOccupied &^= bb
	p.Board[sq] = NoPiece

	psq := &p.t.Values.PST[pc][sq]
	p.PSQ[pc][Midgame] -= psq[Midgame]
	p.PSQ[pc][Endgame] -= psq[Endgame]
	return pc
}

// shift moves the piece on from to the empty square to.
func (p *Position) shift(from, to Square) Piece {
	pc := p.Board[from]
	c, pt := pc.Color(), pc.Type()
	moveBB := SquareBB(from) | SquareBB(to)
	p.Pieces[c][pt] ^= moveBB
	p.Occupied[c] ^= moveBB
	p.AllOccupied ^= moveBB
	p.Board[from] = NoPiece
	p.Board[to] = pc

	pst := &p.t.Values.PST[pc]
	p.PSQ[pc][Midgame] += pst[to][Midgame] - pst[from][Midgame]
	p.PSQ[pc][Endgame] += pst[to][Endgame] - pst[from][Endgame]

	if pt == King {
		p.KingSquare[c] = to
	}
	return pc
}

// addPiece is place plus the hash, material and score updates.
func (p *Position) addPiece(pc Piece, sq Square) {
	p.place(pc, sq)
	v := p.t.Values
	c, pt := pc.Color(), pc.Type()
	p.Hash ^= p.t.Zobrist.Piece[pc][sq]
	p.Material[c][Midgame] += v.Material[pt][Midgame]
	p.Material[c][Endgame] += v.Material[pt][Endgame]
	p.Score += v.Combined[pc][sq]
}

// removePiece is take plus the hash, material and score updates.
func (p *Position) removePiece(sq Square) Piece {
	pc := p.take(sq)
	v := p.t.Values
	c, pt := pc.Color(), pc.Type()
	p.Hash ^= p.t.Zobrist.Piece[pc][sq]
	p.Material[c][Midgame] -= v.Material[pt][Midgame]
	p.Material[c][Endgame] -= v.Material[pt][Endgame]
	p.Score -= v.Combined[pc][sq]
	return pc
}

// movePiece is shift plus the hash and score updates.
func (p *Position) movePiece(from, to Square) Piece {
	pc := p.shift(from, to)
	z := &p.t.Zobrist
	p.Hash ^= z.Piece[pc][from] ^ z.Piece[pc][to]
	p.Score += p.t.Values.Combined[pc][to] - p.t.Values.Combined[pc][from]
	return pc
}

// ComputeHash computes the Zobrist hash for the position from scratch.
func (p *Position) ComputeHash() uint64 {
	z := &p.t.Zobrist
	var hash uint64

	for sq := A1; sq <= H8; sq++ {
		if pc := p.Board[sq]; pc != NoPiece {
			hash ^= z.Piece[pc][sq]
		}
	}

	if p.SideToMove == Black {
		hash ^= z.SideToMove
	}

	hash ^= z.castlingKey(p.CastlingRights)

	if p.EnPassant != NoSquare {
		hash ^= z.EnPassant[p.EnPassant.File()]
	}

	return hash
}

// recompute rebuilds every derived total from the board array.
func (p *Position) recompute() {
	p.Pieces = [2][6]Bitboard{}
	p.Occupied = [2]Bitboard{}
	p.AllOccupied = Empty
	p.Material = [2][2]int32{}
	p.PSQ = [12][2]int32{}
	p.Score = 0
	p.KingSquare = [2]Square{NoSquare, NoSquare}

	board := p.Board
	p.Board = [64]Piece{}
	for i := range p.Board {
		p.Board[i] = NoPiece
	}
	p.Hash = 0
	for sq := A1; sq <= H8; sq++ {
		if pc := board[sq]; pc != NoPiece {
			p.addPiece(pc, sq)
		}
	}
	p.Hash = p.ComputeHash()
}

// Verify recomputes every incremental quantity from scratch and reports the
// first one that disagrees with the running value.
func (p *Position) Verify() error {
	var pieces [2][6]Bitboard
	for sq := A1; sq <= H8; sq++ {
		pc := p.Board[sq]
		if pc == NoPiece {
			continue
		}
		if pc > NoPiece {
			return fmt.Errorf("%w: bad piece code %d on %s", ErrCorrupt, pc, sq)
		}
		pieces[pc.Color()][pc.Type()] |= SquareBB(sq)
	}
	if pieces != p.Pieces {
		return fmt.Errorf("%w: piece bitboards disagree with board array", ErrCorrupt)
	}

	var all Bitboard
	for c := White; c <= Black; c++ {
		var occ Bitboard
		for pt := Pawn; pt <= King; pt++ {
			if occ&p.Pieces[c][pt] != 0 {
				return fmt.Errorf("%w: overlapping %s bitboards", ErrCorrupt, c)
			}
			occ |= p.Pieces[c][pt]
		}
		if occ != p.Occupied[c] {
			return fmt.Errorf("%w: %s occupancy mismatch", ErrCorrupt, c)
		}
		all |= occ
	}
	if p.Occupied[White]&p.Occupied[Black] != 0 || all != p.AllOccupied {
		return fmt.Errorf("%w: combined occupancy mismatch", ErrCorrupt)
	}

	for c := White; c <= Black; c++ {
		if p.Pieces[c][King].PopCount() != 1 || p.Pieces[c][King].LSB() != p.KingSquare[c] {
			return fmt.Errorf("%w: %s king cache mismatch", ErrCorrupt, c)
		}
	}

	if h := p.ComputeHash(); h != p.Hash {
		return fmt.Errorf("%w: hash %016x, recomputed %016x", ErrCorrupt, p.Hash, h)
	}

	fresh := &Position{t: p.t, Board: p.Board, SideToMove: p.SideToMove, CastlingRights: p.CastlingRights, EnPassant: p.EnPassant}
	fresh.recompute()
	if fresh.Material != p.Material {
		return fmt.Errorf("%w: material %v, recomputed %v", ErrCorrupt, p.Material, fresh.Material)
	}
	if fresh.PSQ != p.PSQ {
		return fmt.Errorf("%w: piece-square totals mismatch", ErrCorrupt)
	}
	if fresh.Score != p.Score {
		return fmt.Errorf("%w: score %d, recomputed %d", ErrCorrupt, p.Score, fresh.Score)
	}

	if p.History != nil && (p.History.Len() == 0 || p.History.Last() != p.Hash) {
		return fmt.Errorf("%w: history does not end with the current hash", ErrCorrupt)
	}
	return nil
}

// String returns a visual representation of the position.
func (p *Position) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d  ", rank+1)
		for file := 0; file < 8; file++ {
			sb.WriteString(p.Board[NewSquare(file, rank)].String())
			sb.WriteByte(' ')
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n   a b c d e f g h\n\n")
	fmt.Fprintf(&sb, "Side to move: %s\n", p.SideToMove)
	fmt.Fprintf(&sb, "Castling: %s\n", p.CastlingRights)
	fmt.Fprintf(&sb, "En passant: %s\n", p.EnPassant)
	fmt.Fprintf(&sb, "Half-move clock: %d\n", p.HalfMoveClock)
	fmt.Fprintf(&sb, "Full move: %d\n", p.FullMoveNumber)
	fmt.Fprintf(&sb, "Hash: %016x\n", p.Hash)
	return sb.String()
}

// IsDrawByFiftyMoves reports whether a hundred plies have passed without a
// capture or pawn move.
func (p *Position) IsDrawByFiftyMoves() bool {
	return p.HalfMoveClock >= 100
}

// IsDrawByRepetition reports whether the current position has occurred at
// least three times.
func (p *Position) IsDrawByRepetition() bool {
	return p.History.Repeated(p.Hash, 3)
}

// IsInsufficientMaterial returns true if neither side can checkmate.
func (p *Position) IsInsufficientMaterial() bool {
	// If there are any pawns, rooks, or queens, sufficient material
	if p.Pieces[White][Pawn]|p.Pieces[Black][Pawn] != 0 ||
		p.Pieces[White][Rook]|p.Pieces[Black][Rook] != 0 ||
		p.Pieces[White][Queen]|p.Pieces[Black][Queen] != 0 {
		return false
	}

	wMinors := p.Pieces[White][Knight].PopCount() + p.Pieces[White][Bishop].PopCount()
	bMinors := p.Pieces[Black][Knight].PopCount() + p.Pieces[Black][Bishop].PopCount()

	// K vs K, K+minor vs K
	return (wMinors <= 1 && bMinors == 0) || (bMinors <= 1 && wMinors == 0)
}
