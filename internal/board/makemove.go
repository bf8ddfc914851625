package board

import (
	"errors"
	"fmt"
)

// ErrIllegalMove is wrapped when a move is rejected as illegal.
var ErrIllegalMove = errors.New("illegal move")

// castleRookSquares returns the rook's origin and destination for a castle by c.
func castleRookSquares(kind MoveKind, c Color) (from, to Square) {
	if kind == ShortCastle {
		from, to = H1, F1
	} else {
		from, to = A1, D1
	}
	if c == Black {
		from, to = from.Mirror(), to.Mirror()
	}
	return from, to
}

// epVictimSquare returns the square of the pawn taken by an en-passant
// capture landing on to.
func epVictimSquare(to Square, us Color) Square {
	if us == White {
		return to - 8
	}
	return to + 8
}

func (p *Position) snapshot() Undo {
	return Undo{
		SideToMove:     p.SideToMove,
		CastlingRights: p.CastlingRights,
		HalfMoveClock:  p.HalfMoveClock,
		FullMoveNumber: p.FullMoveNumber,
		Captured:       NoPiece,
		EnPassant:      p.EnPassant,
		Hash:           p.Hash,
		Material:       p.Material,
		Score:          p.Score,
	}
}

func (p *Position) restore(u Undo) {
	p.SideToMove = u.SideToMove
	p.CastlingRights = u.CastlingRights
	p.HalfMoveClock = u.HalfMoveClock
	p.FullMoveNumber = u.FullMoveNumber
	p.EnPassant = u.EnPassant
	p.Hash = u.Hash
	p.Material = u.Material
	p.Score = u.Score
}

// MakeMove applies a generated move and returns the snapshot UnmakeMove needs.
// The move is trusted: it must come from one of the generators for this exact
// position. King moves and en passant may still leave the mover in check;
// confirm them with IsMoveLegal.
func (p *Position) MakeMove(m Move) Undo {
	u := p.snapshot()
	us := p.SideToMove
	z := &p.t.Zobrist
	from, to := m.From, m.To
	moving := p.Board[from]

	if p.EnPassant != NoSquare {
		p.Hash ^= z.EnPassant[p.EnPassant.File()]
		p.EnPassant = NoSquare
	}

	switch m.Kind {
	case Quiet:
		p.movePiece(from, to)
	case DoublePush:
		p.movePiece(from, to)
		p.EnPassant = Square((int(from) + int(to)) / 2)
		p.Hash ^= z.EnPassant[p.EnPassant.File()]
	case Capture:
		u.Captured = p.removePiece(to)
		p.movePiece(from, to)
	case EnPassant:
		u.Captured = p.removePiece(epVictimSquare(to, us))
		p.movePiece(from, to)
	case ShortCastle, LongCastle:
		rookFrom, rookTo := castleRookSquares(m.Kind, us)
		p.movePiece(from, to)
		p.movePiece(rookFrom, rookTo)
	case Promotion:
		p.removePiece(from)
		p.addPiece(m.Promoted, to)
	case PromotionCapture:
		u.Captured = p.removePiece(to)
		p.removePiece(from)
		p.addPiece(m.Promoted, to)
	}

	// Rights vanish when their king or rook square is vacated or entered.
	if lost := p.CastlingRights & (p.t.rightsLost[from] | p.t.rightsLost[to]); lost != 0 {
		p.Hash ^= z.castlingKey(lost)
		p.CastlingRights &^= lost
	}

	if moving.Type() == Pawn || u.Captured != NoPiece {
		p.HalfMoveClock = 0
	} else {
		p.HalfMoveClock++
	}
	if us == Black {
		p.FullMoveNumber++
	}

	p.SideToMove = us.Other()
	p.Hash ^= z.SideToMove
	p.History.Push(p.Hash)
	return u
}

// UnmakeMove reverses MakeMove. m and u must be the move and snapshot of the
// most recent unreversed MakeMove.
func (p *Position) UnmakeMove(m Move, u Undo) {
	p.History.Pop()
	us := u.SideToMove
	from, to := m.From, m.To

	switch m.Kind {
	case Quiet, DoublePush:
		p.shift(to, from)
	case Capture:
		p.shift(to, from)
		p.place(u.Captured, to)
	case EnPassant:
		p.shift(to, from)
		p.place(u.Captured, epVictimSquare(to, us))
	case ShortCastle, LongCastle:
		rookFrom, rookTo := castleRookSquares(m.Kind, us)
		p.shift(rookTo, rookFrom)
		p.shift(to, from)
	case Promotion:
		p.take(to)
		p.place(NewPiece(Pawn, us), from)
	case PromotionCapture:
		p.take(to)
		p.place(NewPiece(Pawn, us), from)
		p.place(u.Captured, to)
	}

	p.restore(u)
}

// MakeNullMove passes the turn. The en-passant target is cleared and the
// half-move clock advances; the board is untouched.
func (p *Position) MakeNullMove() Undo {
	u := p.snapshot()
	z := &p.t.Zobrist

	if p.EnPassant != NoSquare {
		p.Hash ^= z.EnPassant[p.EnPassant.File()]
		p.EnPassant = NoSquare
	}
	p.HalfMoveClock++
	p.SideToMove = p.SideToMove.Other()
	p.Hash ^= z.SideToMove
	p.History.Push(p.Hash)
	return u
}

// UnmakeNullMove reverses MakeNullMove.
func (p *Position) UnmakeNullMove(u Undo) {
	p.History.Pop()
	p.restore(u)
}

// Apply returns a copy of p with m made, leaving p untouched, or an error if
// m leaves the mover's king attacked.
func (p *Position) Apply(m Move) (*Position, error) {
	np := p.Copy()
	us := np.SideToMove
	np.MakeMove(m)
	if !np.IsMoveLegal(us) {
		return nil, fmt.Errorf("%w: %s leaves the %s king in check", ErrIllegalMove, m, us)
	}
	return np, nil
}

// GivesCheck reports whether m, made in this position, checks the opponent.
func (p *Position) GivesCheck(m Move) bool {
	u := p.MakeMove(m)
	check := p.InCheck()
	p.UnmakeMove(m, u)
	return check
}
