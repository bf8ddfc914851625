package board

// CheckStatus classifies how many enemy pieces attack the king.
type CheckStatus uint8

const (
	NotInCheck CheckStatus = iota
	Check
	DoubleCheck
)

func (cs CheckStatus) String() string {
	switch cs {
	case NotInCheck:
		return "none"
	case Check:
		return "check"
	default:
		return "double-check"
	}
}

// AttackersTo returns the pieces of us's opponent that attack sq when the
// board holds exactly occ. Pieces outside occ are treated as already gone.
func (p *Position) AttackersTo(us Color, sq Square, occ Bitboard) Bitboard {
	t := p.t
	them := &p.Pieces[us.Other()]
	return ((t.PawnAttacks(sq, us) & them[Pawn]) |
		(t.KnightAttacks(sq) & them[Knight]) |
		(t.KingAttacks(sq) & them[King]) |
		(t.BishopAttacks(sq, occ) & (them[Bishop] | them[Queen])) |
		(t.RookAttacks(sq, occ) & (them[Rook] | them[Queen]))) & occ
}

// allAttackersTo returns the attackers of both colors.
func (p *Position) allAttackersTo(sq Square, occ Bitboard) Bitboard {
	return p.AttackersTo(White, sq, occ) | p.AttackersTo(Black, sq, occ)
}

// AttackCount returns how many of us's opponent's pieces attack sq.
func (p *Position) AttackCount(us Color, sq Square) int {
	return p.AttackersTo(us, sq, p.AllOccupied).PopCount()
}

// IsSquareAttacked returns true if the square is attacked by the given color.
func (p *Position) IsSquareAttacked(sq Square, byColor Color) bool {
	return p.AttackersTo(byColor.Other(), sq, p.AllOccupied) != 0
}

// Checkers returns the enemy pieces giving check to the side to move.
func (p *Position) Checkers() Bitboard {
	us := p.SideToMove
	return p.AttackersTo(us, p.KingSquare[us], p.AllOccupied)
}

// CheckStatus classifies the side to move's king as not in check, in check
// or in double check.
func (p *Position) CheckStatus() CheckStatus {
	checkers := p.Checkers()
	switch {
	case checkers == 0:
		return NotInCheck
	case checkers.MoreThanOne():
		return DoubleCheck
	default:
		return Check
	}
}

// InCheck returns true if the side to move is in check.
func (p *Position) InCheck() bool {
	return p.Checkers() != 0
}

// IsMoveLegal reports whether side's king is safe. Called right after a move
// by side has been made, it is the late legality check for king moves and en
// passant, which the generators emit unchecked.
func (p *Position) IsMoveLegal(side Color) bool {
	return p.AttackersTo(side, p.KingSquare[side], p.AllOccupied) == 0
}

// NeedsLegalityCheck reports whether a generated move must be confirmed with
// IsMoveLegal after it is made.
func (p *Position) NeedsLegalityCheck(m Move) bool {
	return m.Kind == EnPassant || p.Board[m.From].Type() == King
}
