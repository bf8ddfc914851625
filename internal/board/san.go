package board

import (
	"fmt"
	"strings"
)

// SAN returns the Standard Algebraic Notation for a legal move m in p.
func (p *Position) SAN(m Move) string {
	if m.IsNull() {
		return "-"
	}
	switch m.Kind {
	case ShortCastle:
		return "O-O" + p.checkSuffix(m)
	case LongCastle:
		return "O-O-O" + p.checkSuffix(m)
	}

	var sb strings.Builder
	pt := p.Board[m.From].Type()
	if pt != Pawn {
		sb.WriteByte("PNBRQK"[pt])
		sb.WriteString(p.disambiguation(m, pt))
	}

	if m.IsCapture() {
		if pt == Pawn {
			// Pawn captures include the file of origin
			sb.WriteByte('a' + byte(m.From.File()))
		}
		sb.WriteByte('x')
	}

	sb.WriteString(m.To.String())

	if m.IsPromotion() {
		sb.WriteByte('=')
		sb.WriteByte("PNBRQK"[m.Promoted.Type()])
	}

	sb.WriteString(p.checkSuffix(m))
	return sb.String()
}

// checkSuffix returns "+", "#" or "" for the position after m.
func (p *Position) checkSuffix(m Move) string {
	u := p.MakeMove(m)
	defer p.UnmakeMove(m, u)
	if !p.InCheck() {
		return ""
	}
	if p.HasLegalMoves() {
		return "+"
	}
	return "#"
}

// disambiguation returns the origin file, rank or square needed to tell m
// apart from another legal move of the same piece type to the same square.
func (p *Position) disambiguation(m Move, pt PieceType) string {
	sameFile, sameRank, ambiguous := false, false, false
	for _, other := range p.LegalMoves() {
		if other.To != m.To || other.From == m.From || p.Board[other.From].Type() != pt {
			continue
		}
		ambiguous = true
		if other.From.File() == m.From.File() {
			sameFile = true
		}
		if other.From.Rank() == m.From.Rank() {
			sameRank = true
		}
	}

	switch {
	case !ambiguous:
		return ""
	case !sameFile:
		return string(rune('a' + m.From.File()))
	case !sameRank:
		return string(rune('1' + m.From.Rank()))
	default:
		return m.From.String()
	}
}

// ParseSAN resolves a SAN string to the matching legal move.
func (p *Position) ParseSAN(s string) (Move, error) {
	s = strings.TrimRight(strings.TrimSpace(s), "+#!?")
	legal := p.LegalMoves()

	switch s {
	case "O-O", "0-0":
		return findMove(legal, s, func(m Move) bool { return m.Kind == ShortCastle })
	case "O-O-O", "0-0-0":
		return findMove(legal, s, func(m Move) bool { return m.Kind == LongCastle })
	}

	body := s
	promo := NoPieceType
	if idx := strings.IndexByte(body, '='); idx >= 0 && idx+1 < len(body) {
		promo = pieceTypeFromLetter(body[idx+1])
		if promo == NoPieceType || promo == Pawn || promo == King {
			return NoMove, fmt.Errorf("%w: bad promotion in %q", ErrIllegalMove, s)
		}
		body = body[:idx]
	}

	capture := strings.Contains(body, "x")
	body = strings.ReplaceAll(body, "x", "")

	pt := Pawn
	if len(body) > 0 && body[0] >= 'A' && body[0] <= 'Z' {
		pt = pieceTypeFromLetter(body[0])
		if pt == NoPieceType {
			return NoMove, fmt.Errorf("%w: bad piece letter in %q", ErrIllegalMove, s)
		}
		body = body[1:]
	}

	if len(body) < 2 {
		return NoMove, fmt.Errorf("%w: malformed SAN %q", ErrIllegalMove, s)
	}
	dest, err := ParseSquare(body[len(body)-2:])
	if err != nil {
		return NoMove, fmt.Errorf("%w: %v", ErrIllegalMove, err)
	}

	// Parse disambiguation (file, rank, or both)
	file, rank := -1, -1
	for _, c := range body[:len(body)-2] {
		switch {
		case c >= 'a' && c <= 'h':
			file = int(c - 'a')
		case c >= '1' && c <= '8':
			rank = int(c - '1')
		default:
			return NoMove, fmt.Errorf("%w: malformed SAN %q", ErrIllegalMove, s)
		}
	}

	return findMove(legal, s, func(m Move) bool {
		switch {
		case m.To != dest || p.Board[m.From].Type() != pt:
			return false
		case file >= 0 && m.From.File() != file, rank >= 0 && m.From.Rank() != rank:
			return false
		case capture && !m.IsCapture():
			return false
		case promo != NoPieceType:
			return m.IsPromotion() && m.Promoted.Type() == promo
		default:
			return !m.IsPromotion()
		}
	})
}

// findMove returns the single move that matches. SAN that fits more than
// one move is under-disambiguated and rejected.
func findMove(moves []Move, s string, match func(Move) bool) (Move, error) {
	found := NoMove
	for _, m := range moves {
		if !match(m) {
			continue
		}
		if !found.IsNull() {
			return NoMove, fmt.Errorf("%w: ambiguous %s", ErrIllegalMove, s)
		}
		found = m
	}
	if found.IsNull() {
		return NoMove, fmt.Errorf("%w: %s", ErrIllegalMove, s)
	}
	return found, nil
}

func pieceTypeFromLetter(c byte) PieceType {
	if i := strings.IndexByte("PNBRQK", c); i >= 0 {
		return PieceType(i)
	}
	return NoPieceType
}

// MovesToSAN converts a line of moves starting at p to SAN notation.
func MovesToSAN(p *Position, moves []Move) []string {
	result := make([]string, len(moves))
	line := p.Copy()
	for i, m := range moves {
		result[i] = line.SAN(m)
		line.MakeMove(m)
	}
	return result
}
