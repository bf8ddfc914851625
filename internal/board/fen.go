package board

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ErrInvalidFEN is wrapped by every ParseFEN failure.
var ErrInvalidFEN = errors.New("invalid FEN")

func fenError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidFEN, fmt.Sprintf(format, args...))
}

// ParseFEN parses a FEN string on the default tables.
func ParseFEN(fen string) (*Position, error) {
	return DefaultTables().ParseFEN(fen)
}

// ParseFEN parses a FEN string into a Position built on t. The clocks may be
// omitted; anything else malformed or impossible is rejected.
func (t *Tables) ParseFEN(fen string) (*Position, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 || len(parts) > 6 {
		return nil, fenError("need 4 to 6 fields, got %d", len(parts))
	}

	pos := &Position{
		t:              t,
		EnPassant:      NoSquare,
		FullMoveNumber: 1,
	}
	for i := range pos.Board {
		pos.Board[i] = NoPiece
	}

	// Parse piece placement (field 0)
	if err := parsePiecePlacement(pos, parts[0]); err != nil {
		return nil, err
	}

	// Parse side to move (field 1)
	switch parts[1] {
	case "w":
		pos.SideToMove = White
	case "b":
		pos.SideToMove = Black
	default:
		return nil, fenError("invalid side to move: %s", parts[1])
	}

	// Parse castling rights (field 2)
	if err := parseCastlingRights(pos, parts[2]); err != nil {
		return nil, err
	}

	// Parse en passant square (field 3)
	if err := parseEnPassant(pos, parts[3]); err != nil {
		return nil, err
	}

	// Parse half-move clock (field 4, optional)
	if len(parts) > 4 {
		hmc, err := strconv.Atoi(parts[4])
		if err != nil || hmc < 0 {
			return nil, fenError("invalid half-move clock: %s", parts[4])
		}
		pos.HalfMoveClock = hmc
	}

	// Parse full-move number (field 5, optional)
	if len(parts) > 5 {
		fmn, err := strconv.Atoi(parts[5])
		if err != nil || fmn < 1 {
			return nil, fenError("invalid full-move number: %s", parts[5])
		}
		pos.FullMoveNumber = fmn
	}

	pos.recompute()

	if err := validatePlacement(pos); err != nil {
		return nil, err
	}

	pos.History = NewHistory()
	pos.History.Push(pos.Hash)
	return pos, nil
}

// parsePiecePlacement parses the piece placement section of a FEN string.
func parsePiecePlacement(pos *Position, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fenError("need 8 ranks, got %d", len(ranks))
	}

	for i, rankStr := range ranks {
		rank := 7 - i // FEN starts from rank 8
		file := 0
		lastDigit := false

		for _, c := range rankStr {
			if c >= '1' && c <= '8' {
				if lastDigit {
					return fenError("adjacent digits in rank %d", rank+1)
				}
				file += int(c - '0')
				lastDigit = true
			} else {
				piece := PieceFromChar(byte(c))
				if piece == NoPiece || c > 0x7f {
					return fenError("invalid piece character: %q", c)
				}
				if file > 7 {
					return fenError("too many squares in rank %d", rank+1)
				}
				pos.Board[NewSquare(file, rank)] = piece
				file++
				lastDigit = false
			}
			if file > 8 {
				return fenError("too many squares in rank %d", rank+1)
			}
		}

		if file != 8 {
			return fenError("rank %d covers %d squares", rank+1, file)
		}
	}

	return nil
}

// parseCastlingRights parses the castling rights section of a FEN string.
func parseCastlingRights(pos *Position, castling string) error {
	if castling == "-" {
		pos.CastlingRights = NoCastling
		return nil
	}

	for _, c := range castling {
		var right CastlingRights
		switch c {
		case 'K':
			right = WhiteKingSideCastle
		case 'Q':
			right = WhiteQueenSideCastle
		case 'k':
			right = BlackKingSideCastle
		case 'q':
			right = BlackQueenSideCastle
		default:
			return fenError("invalid castling character: %q", c)
		}
		if pos.CastlingRights&right != 0 {
			return fenError("duplicate castling right: %c", c)
		}
		pos.CastlingRights |= right
	}

	// Every right needs its king and rook at home.
	homes := [4][2]Square{{E1, H1}, {E1, A1}, {E8, H8}, {E8, A8}}
	for i, h := range homes {
		if pos.CastlingRights&(1<<i) == 0 {
			continue
		}
		c := White
		if i >= 2 {
			c = Black
		}
		if pos.Board[h[0]] != NewPiece(King, c) || pos.Board[h[1]] != NewPiece(Rook, c) {
			return fenError("castling right %s without king and rook at home", CastlingRights(1<<i))
		}
	}
	return nil
}

// parseEnPassant checks the target square agrees with a double push just played.
func parseEnPassant(pos *Position, field string) error {
	if field == "-" {
		return nil
	}
	sq, err := ParseSquare(field)
	if err != nil {
		return fenError("invalid en passant square: %s", field)
	}

	us := pos.SideToMove
	them := us.Other()
	if sq.RelativeRank(us) != 5 {
		return fenError("en passant square %s on the wrong rank", sq)
	}
	pushed := Square(int(sq) - 8)
	if us == Black {
		pushed = Square(int(sq) + 8)
	}
	origin := Square(2*int(sq) - int(pushed))
	if pos.Board[sq] != NoPiece || pos.Board[origin] != NoPiece || pos.Board[pushed] != NewPiece(Pawn, them) {
		return fenError("en passant square %s without a double-pushed pawn", sq)
	}
	pos.EnPassant = sq
	return nil
}

// validatePlacement rejects positions no legal game reaches cheaply to detect.
func validatePlacement(pos *Position) error {
	if pos.Pieces[White][King].PopCount() != 1 {
		return fenError("white must have exactly one king")
	}
	if pos.Pieces[Black][King].PopCount() != 1 {
		return fenError("black must have exactly one king")
	}
	if (pos.Pieces[White][Pawn]|pos.Pieces[Black][Pawn])&(Rank1|Rank8) != 0 {
		return fenError("pawns cannot be on rank 1 or 8")
	}
	if !pos.IsMoveLegal(pos.SideToMove.Other()) {
		return fenError("side not to move is in check")
	}
	return nil
}

// ToFEN returns the FEN representation of the position.
func (p *Position) ToFEN() string {
	var sb strings.Builder

	// Piece placement
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			piece := p.Board[NewSquare(file, rank)]
			if piece == NoPiece {
				empty++
			} else {
				if empty > 0 {
					sb.WriteString(strconv.Itoa(empty))
					empty = 0
				}
				sb.WriteString(piece.String())
			}
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	// Side to move
	sb.WriteByte(' ')
	if p.SideToMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	sb.WriteByte(' ')
	sb.WriteString(p.CastlingRights.String())
	sb.WriteByte(' ')
	sb.WriteString(p.EnPassant.String())

	// Half-move clock and full-move number
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.HalfMoveClock))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.FullMoveNumber))

	return sb.String()
}
