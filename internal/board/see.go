package board

// SEE (Static Exchange Evaluation) estimates the material result, from side's
// point of view, of side moving the piece on from to to and both sides then
// recapturing on to with their least valuable attacker. Either side may stop
// recapturing when continuing would lose more. Sliders uncovered behind a
// capturer join the exchange, a pawn reaching the last rank counts as a
// queen, and a king recaptures only when nothing is left to take it back.
func (p *Position) SEE(from, to Square, side Color) int {
	var gain [32]int
	d := 0

	mover := p.Board[from]
	moverType := mover.Type()
	occupied := p.AllOccupied

	if victim := p.Board[to]; victim != NoPiece {
		gain[0] = PieceValue[victim.Type()]
	} else if moverType == Pawn && to == p.EnPassant && from.File() != to.File() {
		gain[0] = PieceValue[Pawn]
		occupied &^= SquareBB(epVictimSquare(to, side))
	}

	// Value of the piece that will stand on to once the current capture is made.
	onSquare := PieceValue[moverType]
	if moverType == Pawn && isPromotionSquare(to) {
		gain[0] += PieceValue[Queen] - PieceValue[Pawn]
		onSquare = PieceValue[Queen]
	}

	attackers := p.allAttackersTo(to, occupied)
	fromBB := SquareBB(from)
	stm := side

	for {
		d++

		// Lift the last capturer and look through it.
		attackers &^= fromBB
		occupied &^= fromBB
		attackers |= p.xrayAttackers(to, from, occupied)

		stm = stm.Other()
		var pt PieceType
		fromBB, pt = p.leastValuableAttacker(attackers, stm)
		if fromBB == 0 {
			break
		}
		if pt == King && attackers&p.Occupied[stm.Other()] != 0 {
			break
		}

		// gain[d] is what stm nets if the exchange ends after this capture.
		gain[d] = onSquare - gain[d-1]
		onSquare = PieceValue[pt]
		if pt == Pawn && isPromotionSquare(to) {
			gain[d] += PieceValue[Queen] - PieceValue[Pawn]
			onSquare = PieceValue[Queen]
		}

		// Neither standing pat nor capturing helps stm: it stops here.
		if max(-gain[d-1], gain[d]) < 0 {
			break
		}
		from = fromBB.LSB()
	}

	// Negamax the gain array back to the first capture.
	for d--; d > 0; d-- {
		gain[d-1] = -max(-gain[d-1], gain[d])
	}

	return gain[0]
}

func isPromotionSquare(sq Square) bool {
	return SquareBB(sq)&(Rank1|Rank8) != 0
}

// xrayAttackers returns the sliders that attack to once the piece on vacated
// has left, along the line through both squares. A knight's vacated square
// has no line and uncovers nothing.
func (p *Position) xrayAttackers(to, vacated Square, occupied Bitboard) Bitboard {
	t := p.t
	line := t.Line(to, vacated)
	if line == 0 {
		return 0
	}
	queens := p.Pieces[White][Queen] | p.Pieces[Black][Queen]
	rooks := p.Pieces[White][Rook] | p.Pieces[Black][Rook] | queens
	bishops := p.Pieces[White][Bishop] | p.Pieces[Black][Bishop] | queens
	att := t.RookAttacks(to, occupied)&rooks | t.BishopAttacks(to, occupied)&bishops
	return att & line & occupied
}

// leastValuableAttacker picks side's cheapest piece in attackers.
func (p *Position) leastValuableAttacker(attackers Bitboard, side Color) (Bitboard, PieceType) {
	for pt := Pawn; pt <= King; pt++ {
		if bb := attackers & p.Pieces[side][pt]; bb != 0 {
			return bb & -bb, pt
		}
	}
	return 0, NoPieceType
}
