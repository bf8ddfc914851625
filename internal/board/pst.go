package board

// Phase indexes the midgame/endgame halves of a score pair.
type Phase int

const (
	Midgame Phase = iota
	Endgame
)

// Values is the read-only score data the position keeps running totals of.
// Piece-square entries are white-relative and already mirrored for black.
type Values struct {
	Material [6][2]int32      // [PieceType][Phase], king is zero
	PST      [12][64][2]int32 // [Piece][Square][Phase]
	Combined [12][64]int32    // white-positive, material plus tapered position
}

// Piece-square tables in board layout: the first row is rank 8, so white
// indexes with sq.Mirror() and black with sq.
var (
	pawnPST = [64]int32{
		0, 0, 0, 0, 0, 0, 0, 0,
		50, 50, 50, 50, 50, 50, 50, 50,
		10, 10, 20, 30, 30, 20, 10, 10,
		5, 5, 10, 25, 25, 10, 5, 5,
		0, 0, 0, 20, 20, 0, 0, 0,
		5, -5, -10, 0, 0, -10, -5, 5,
		5, 10, 10, -20, -20, 10, 10, 5,
		0, 0, 0, 0, 0, 0, 0, 0,
	}
	knightPST = [64]int32{
		-50, -40, -30, -30, -30, -30, -40, -50,
		-40, -20, 0, 0, 0, 0, -20, -40,
		-30, 0, 10, 15, 15, 10, 0, -30,
		-30, 5, 15, 20, 20, 15, 5, -30,
		-30, 0, 15, 20, 20, 15, 0, -30,
		-30, 5, 10, 15, 15, 10, 5, -30,
		-40, -20, 0, 5, 5, 0, -20, -40,
		-50, -40, -30, -30, -30, -30, -40, -50,
	}
	bishopPST = [64]int32{
		-20, -10, -10, -10, -10, -10, -10, -20,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-10, 0, 5, 10, 10, 5, 0, -10,
		-10, 5, 5, 10, 10, 5, 5, -10,
		-10, 0, 10, 10, 10, 10, 0, -10,
		-10, 10, 10, 10, 10, 10, 10, -10,
		-10, 5, 0, 0, 0, 0, 5, -10,
		-20, -10, -10, -10, -10, -10, -10, -20,
	}
	rookPST = [64]int32{
		0, 0, 0, 0, 0, 0, 0, 0,
		5, 10, 10, 10, 10, 10, 10, 5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		0, 0, 0, 5, 5, 0, 0, 0,
	}
	queenPST = [64]int32{
		-20, -10, -10, -5, -5, -10, -10, -20,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-10, 0, 5, 5, 5, 5, 0, -10,
		-5, 0, 5, 5, 5, 5, 0, -5,
		0, 0, 5, 5, 5, 5, 0, -5,
		-10, 5, 5, 5, 5, 5, 0, -10,
		-10, 0, 5, 0, 0, 0, 0, -10,
		-20, -10, -10, -5, -5, -10, -10, -20,
	}
	kingMidgamePST = [64]int32{
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-20, -30, -30, -40, -40, -30, -30, -20,
		-10, -20, -20, -20, -20, -20, -20, -10,
		20, 20, 0, 0, 0, 0, 20, 20,
		20, 30, 10, 0, 0, 10, 30, 20,
	}
	kingEndgamePST = [64]int32{
		-50, -40, -30, -20, -20, -30, -40, -50,
		-30, -20, -10, 0, 0, -10, -20, -30,
		-30, -10, 20, 30, 30, 20, -10, -30,
		-30, -10, 30, 40, 40, 30, -10, -30,
		-30, -10, 30, 40, 40, 30, -10, -30,
		-30, -10, 20, 30, 30, 20, -10, -30,
		-30, -30, 0, 0, 0, 0, -30, -30,
		-50, -30, -30, -30, -30, -30, -30, -50,
	}
)

// DefaultValues builds the stock score tables.
func DefaultValues() *Values {
	var mg, eg [6][64]int32
	mg[Pawn], eg[Pawn] = pawnPST, pawnPST
	mg[Knight], eg[Knight] = knightPST, knightPST
	mg[Bishop], eg[Bishop] = bishopPST, bishopPST
	mg[Rook], eg[Rook] = rookPST, rookPST
	mg[Queen], eg[Queen] = queenPST, queenPST
	mg[King], eg[King] = kingMidgamePST, kingEndgamePST

	var material [6][2]int32
	for pt := Pawn; pt < King; pt++ {
		material[pt] = [2]int32{int32(PieceValue[pt]), int32(PieceValue[pt])}
	}
	return NewValues(material, mg, eg)
}

// NewValues derives the per-piece tables from white-perspective layouts.
func NewValues(material [6][2]int32, mg, eg [6][64]int32) *Values {
	v := &Values{Material: material}
	for pc := WhitePawn; pc < NoPiece; pc++ {
		pt := pc.Type()
		for sq := A1; sq <= H8; sq++ {
			idx, side := sq.Mirror(), int32(1)
			if pc.Color() == Black {
				idx, side = sq, -1
			}
			v.PST[pc][sq] = [2]int32{mg[pt][idx], eg[pt][idx]}
			sum := material[pt][Midgame] + mg[pt][idx] + material[pt][Endgame] + eg[pt][idx]
			v.Combined[pc][sq] = side * (sum / 2)
		}
	}
	return v
}
