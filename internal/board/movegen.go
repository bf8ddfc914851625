package board

import "fmt"

// GenMode selects which slice of the pseudo-legal moves GenerateMoves emits.
// GenQuiets and GenCaptures partition GenAll; every promotion counts as a
// capture for that split.
type GenMode uint8

const (
	GenAll GenMode = iota
	GenQuiets
	GenCaptures
	// GenCheckingCaptures emits captures, and queen promotions, that give
	// direct check.
	GenCheckingCaptures
	// GenQuietNonChecks emits quiet moves and under-promotions that give no
	// direct check.
	GenQuietNonChecks
)

var genModeNames = [...]string{"all", "quiets", "captures", "checking-captures", "quiet-non-checks"}

func (m GenMode) String() string {
	if int(m) < len(genModeNames) {
		return genModeNames[m]
	}
	return "unknown"
}

// genContext carries the per-call masks shared by the piece generators.
type genContext struct {
	mode      GenMode
	us, them  Color
	ksq       Square
	theirKing Square
	own      Bitboard
	enemy    Bitboard
	occ      Bitboard
	empty    Bitboard

	// Allowed destinations by piece type for captures and quiet moves.
	capMask   [6]Bitboard
	quietMask [6]Bitboard

	// Pawn destinations: plain pushes, plain captures (and en passant),
	// promotion pushes and promotion captures by promoted type.
	pawnQuiet Bitboard
	pawnCap   Bitboard
	promoPush [6]Bitboard
	promoCap  [6]Bitboard

	castle        bool
	castleNoCheck bool // castle only when the rook lands off the checking squares
	checks        [6]Bitboard
}

func (p *Position) newGenContext(mode GenMode) *genContext {
	t := p.t
	us := p.SideToMove
	g := &genContext{
		mode:      mode,
		us:        us,
		them:      us.Other(),
		ksq:       p.KingSquare[us],
		theirKing: p.KingSquare[us.Other()],
		own:       p.Occupied[us],
		enemy:     p.Occupied[us.Other()],
		occ:       p.AllOccupied,
		empty:     ^p.AllOccupied,
	}

	if g.filtersChecks() {
		// Squares from which each piece type would attack the enemy king.
		g.checks[Pawn] = t.PawnAttacks(g.theirKing, g.them)
		g.checks[Knight] = t.KnightAttacks(g.theirKing)
		g.checks[Bishop] = t.BishopAttacks(g.theirKing, g.occ)
		g.checks[Rook] = t.RookAttacks(g.theirKing, g.occ)
		g.checks[Queen] = g.checks[Bishop] | g.checks[Rook]
	}

	for pt := Pawn; pt <= King; pt++ {
		switch mode {
		case GenAll:
			g.capMask[pt], g.quietMask[pt] = g.enemy, g.empty
		case GenQuiets:
			g.quietMask[pt] = g.empty
		case GenCaptures:
			g.capMask[pt] = g.enemy
		case GenCheckingCaptures:
			g.capMask[pt] = g.enemy & g.checks[pt]
		case GenQuietNonChecks:
			g.quietMask[pt] = g.empty &^ g.checks[pt]
		}
	}

	switch mode {
	case GenAll:
		g.pawnQuiet, g.pawnCap = Universe, Universe
		for pt := Knight; pt <= Queen; pt++ {
			g.promoPush[pt], g.promoCap[pt] = Universe, Universe
		}
		g.castle = true
	case GenQuiets:
		g.pawnQuiet = Universe
		g.castle = true
	case GenCaptures:
		g.pawnCap = Universe
		for pt := Knight; pt <= Queen; pt++ {
			g.promoPush[pt], g.promoCap[pt] = Universe, Universe
		}
	case GenCheckingCaptures:
		g.pawnCap = g.checks[Pawn]
		g.promoPush[Queen], g.promoCap[Queen] = g.checks[Queen], g.checks[Queen]
	case GenQuietNonChecks:
		g.pawnQuiet = ^g.checks[Pawn]
		for pt := Knight; pt <= Rook; pt++ {
			g.promoPush[pt] = ^g.checks[pt]
		}
		g.castle, g.castleNoCheck = true, true
	}
	return g
}

func (g *genContext) filtersChecks() bool {
	return g.mode == GenCheckingCaptures || g.mode == GenQuietNonChecks
}

// sliderChecks returns the squares from which a bishop and a rook would
// attack the enemy king once the board holds occ.
func (p *Position) sliderChecks(g *genContext, occ Bitboard) (diagonal, orthogonal Bitboard) {
	return p.t.BishopAttacks(g.theirKing, occ), p.t.RookAttacks(g.theirKing, occ)
}

// mvvLva orders captures by victim first, then by cheapest attacker.
func mvvLva(victim Piece, attacker PieceType) int32 {
	return int32(PieceValue[victim.Type()]*16 - PieceValue[attacker]/100)
}

// GeneratePseudoLegal fills ml with every move worth trying: evasions when
// in check, otherwise GenAll. King moves and en passant still need
// IsMoveLegal after they are made.
func (p *Position) GeneratePseudoLegal(ml *MoveList) {
	if p.InCheck() {
		p.GenerateEvasions(ml)
		return
	}
	p.GenerateMoves(ml, GenAll)
}

// GenerateMoves appends the pseudo-legal moves selected by mode for a side
// that is not in check. Pinned pieces only move along their pin ray, so every
// move except king moves and en passant is legal as emitted.
func (p *Position) GenerateMoves(ml *MoveList, mode GenMode) {
	g := p.newGenContext(mode)
	t := p.t
	us := g.us

	var pins pinSet
	p.findPins(g, &pins)
	for i := 0; i < pins.n; i++ {
		p.generatePinned(ml, g, pins.list[i])
	}

	free := ^pins.pinned
	p.generatePawnMoves(ml, g, p.Pieces[us][Pawn]&free, Universe, Universe)

	for bb := p.Pieces[us][Knight] & free; bb != 0; {
		from := bb.PopLSB()
		p.emit(ml, g, Knight, from, t.KnightAttacks(from))
	}
	for bb := p.Pieces[us][Bishop] & free; bb != 0; {
		from := bb.PopLSB()
		p.emit(ml, g, Bishop, from, t.BishopAttacks(from, g.occ))
	}
	for bb := p.Pieces[us][Rook] & free; bb != 0; {
		from := bb.PopLSB()
		p.emit(ml, g, Rook, from, t.RookAttacks(from, g.occ))
	}
	for bb := p.Pieces[us][Queen] & free; bb != 0; {
		from := bb.PopLSB()
		p.emit(ml, g, Queen, from, t.QueenAttacks(from, g.occ))
	}

	p.emit(ml, g, King, g.ksq, t.KingAttacks(g.ksq))

	if g.castle && p.CastlingRights != NoCastling && !p.InCheck() {
		p.generateCastlingMoves(ml, g)
	}
}

// emit adds the moves of a non-pawn piece to the destinations in att that
// the mode allows.
func (p *Position) emit(ml *MoveList, g *genContext, pt PieceType, from Square, att Bitboard) {
	for caps := att & g.capMask[pt]; caps != 0; {
		to := caps.PopLSB()
		victim := p.Board[to]
		ml.Add(Move{From: from, To: to, Kind: Capture, Captured: victim, Promoted: NoPiece, Score: mvvLva(victim, pt)})
	}
	for quiets := att & g.quietMask[pt]; quiets != 0; {
		to := quiets.PopLSB()
		ml.Add(Move{From: from, To: to, Kind: Quiet, Captured: NoPiece, Promoted: NoPiece})
	}
}

// generatePawnMoves adds moves for the pawns in pawns whose destination lies
// in allowed. En passant is added when the target square is in epMask.
func (p *Position) generatePawnMoves(ml *MoveList, g *genContext, pawns, allowed, epMask Bitboard) {
	if pawns == 0 {
		return
	}
	us := g.us

	var push1, push2, attackL, attackR Bitboard
	var promotionRank Bitboard
	var pushDir int

	if us == White {
		push1 = pawns.North() & g.empty
		push2 = (push1 & Rank3).North() & g.empty
		attackL = pawns.NorthWest() & g.enemy
		attackR = pawns.NorthEast() & g.enemy
		promotionRank = Rank8
		pushDir = 8
	} else {
		push1 = pawns.South() & g.empty
		push2 = (push1 & Rank6).South() & g.empty
		attackL = pawns.SouthWest() & g.enemy
		attackR = pawns.SouthEast() & g.enemy
		promotionRank = Rank1
		pushDir = -8
	}
	push1 &= allowed
	push2 &= allowed
	attackL &= allowed
	attackR &= allowed

	// Single pushes (non-promotion)
	for bb := push1 &^ promotionRank & g.pawnQuiet; bb != 0; {
		to := bb.PopLSB()
		ml.Add(Move{From: Square(int(to) - pushDir), To: to, Kind: Quiet, Captured: NoPiece, Promoted: NoPiece})
	}

	// Double pushes
	for bb := push2 & g.pawnQuiet; bb != 0; {
		to := bb.PopLSB()
		ml.Add(Move{From: Square(int(to) - 2*pushDir), To: to, Kind: DoublePush, Captured: NoPiece, Promoted: NoPiece})
	}

	// Captures (non-promotion)
	for bb := attackL &^ promotionRank & g.pawnCap; bb != 0; {
		to := bb.PopLSB()
		p.addPawnCapture(ml, Square(int(to)-pushDir+1), to)
	}
	for bb := attackR &^ promotionRank & g.pawnCap; bb != 0; {
		to := bb.PopLSB()
		p.addPawnCapture(ml, Square(int(to)-pushDir-1), to)
	}

	// Promotions
	for bb := push1 & promotionRank; bb != 0; {
		to := bb.PopLSB()
		p.addPromotions(ml, g, Square(int(to)-pushDir), to, NoPiece, g.promoPush)
	}
	for bb := attackL & promotionRank; bb != 0; {
		to := bb.PopLSB()
		p.addPromotions(ml, g, Square(int(to)-pushDir+1), to, p.Board[to], g.promoCap)
	}
	for bb := attackR & promotionRank; bb != 0; {
		to := bb.PopLSB()
		p.addPromotions(ml, g, Square(int(to)-pushDir-1), to, p.Board[to], g.promoCap)
	}

	// En passant
	if ep := p.EnPassant; ep != NoSquare && epMask.IsSet(ep) && g.pawnCap.IsSet(ep) {
		victim := NewPiece(Pawn, g.them)
		for bb := p.t.PawnAttacks(ep, g.them) & pawns; bb != 0; {
			from := bb.PopLSB()
			ml.Add(Move{From: from, To: ep, Kind: EnPassant, Captured: victim, Promoted: NoPiece, Score: mvvLva(victim, Pawn)})
		}
	}
}

func (p *Position) addPawnCapture(ml *MoveList, from, to Square) {
	victim := p.Board[to]
	ml.Add(Move{From: from, To: to, Kind: Capture, Captured: victim, Promoted: NoPiece, Score: mvvLva(victim, Pawn)})
}

// addPromotions adds the promotions whose destination the per-type mask allows,
// queen first. In the check-filtering modes the slider masks are rebuilt
// with from vacated, since the promoted piece can check through it.
func (p *Position) addPromotions(ml *MoveList, g *genContext, from, to Square, captured Piece, masks [6]Bitboard) {
	kind := Promotion
	if captured != NoPiece {
		kind = PromotionCapture
	}
	if g.filtersChecks() {
		diag, orth := p.sliderChecks(g, g.occ&^SquareBB(from))
		switch {
		case g.mode == GenCheckingCaptures:
			masks[Queen] = diag | orth
		case captured == NoPiece:
			masks[Bishop], masks[Rook] = ^diag, ^orth
		}
	}
	for _, pt := range [4]PieceType{Queen, Rook, Bishop, Knight} {
		if !masks[pt].IsSet(to) {
			continue
		}
		score := int32(PieceValue[pt] - PieceValue[Pawn])
		if captured != NoPiece {
			score += mvvLva(captured, Pawn)
		}
		ml.Add(Move{From: from, To: to, Kind: kind, Captured: captured, Promoted: NewPiece(pt, g.us), Score: score})
	}
}

// castling describes one castle: the right it needs, the squares that must
// be empty, the square the king crosses, and the king's move.
type castling struct {
	right    CastlingRights
	kind     MoveKind
	empty    Bitboard
	transit  Square
	from, to Square
}

var castlings = [2][2]castling{
	White: {
		{WhiteKingSideCastle, ShortCastle, SquareBB(F1) | SquareBB(G1), F1, E1, G1},
		{WhiteQueenSideCastle, LongCastle, SquareBB(B1) | SquareBB(C1) | SquareBB(D1), D1, E1, C1},
	},
	Black: {
		{BlackKingSideCastle, ShortCastle, SquareBB(F8) | SquareBB(G8), F8, E8, G8},
		{BlackQueenSideCastle, LongCastle, SquareBB(B8) | SquareBB(C8) | SquareBB(D8), D8, E8, C8},
	},
}

// generateCastlingMoves adds castles whose path is clear and whose transit
// square is safe. The destination is left to the late king-safety check.
func (p *Position) generateCastlingMoves(ml *MoveList, g *genContext) {
	for _, c := range castlings[g.us] {
		if p.CastlingRights&c.right == 0 || g.occ&c.empty != 0 {
			continue
		}
		if p.IsSquareAttacked(c.transit, g.them) {
			continue
		}
		if g.castleNoCheck {
			rookFrom, rookTo := castleRookSquares(c.kind, g.us)
			after := g.occ&^SquareBB(c.from)&^SquareBB(rookFrom) | SquareBB(c.to) | SquareBB(rookTo)
			if _, orth := p.sliderChecks(g, after); orth.IsSet(rookTo) {
				continue
			}
		}
		ml.Add(Move{From: c.from, To: c.to, Kind: c.kind, Captured: NoPiece, Promoted: NoPiece})
	}
}

// pin is one own piece pinned to the king together with the squares it may
// still move to: the ray up to and including the pinner.
type pin struct {
	sq       Square
	ray      Bitboard
	diagonal bool
}

// pinSet holds at most one pin per direction from the king.
type pinSet struct {
	pinned Bitboard
	list   [8]pin
	n      int
}

// findPins finds the side to move's pinned pieces with an x-ray from the king:
// own pieces visible from the king are lifted off the board, and any enemy
// slider of the matching class that then sees the king pins the one piece
// lying between them.
func (p *Position) findPins(g *genContext, ps *pinSet) {
	t := p.t
	them := &p.Pieces[g.them]
	for _, diagonal := range [2]bool{false, true} {
		attacks := t.RookAttacks
		sliders := them[Rook] | them[Queen]
		if diagonal {
			attacks = t.BishopAttacks
			sliders = them[Bishop] | them[Queen]
		}

		candidates := attacks(g.ksq, g.occ) & g.own
		if candidates == 0 {
			continue
		}
		reduced := g.occ &^ candidates
		xray := attacks(g.ksq, reduced)
		for pinners := xray & sliders; pinners != 0; {
			psq := pinners.PopLSB()
			piece := t.Between(g.ksq, psq) & candidates
			if piece == 0 {
				continue // direct checker, nothing between
			}
			ps.list[ps.n] = pin{
				sq:       piece.LSB(),
				ray:      t.Between(g.ksq, psq) | SquareBB(psq),
				diagonal: diagonal,
			}
			ps.n++
			ps.pinned |= piece
		}
	}
}

// generatePinned adds the moves of a pinned piece along its pin ray.
func (p *Position) generatePinned(ml *MoveList, g *genContext, pn pin) {
	t := p.t
	switch pt := p.Board[pn.sq].Type(); pt {
	case Bishop:
		if pn.diagonal {
			p.emit(ml, g, Bishop, pn.sq, t.BishopAttacks(pn.sq, g.occ)&pn.ray)
		}
	case Rook:
		if !pn.diagonal {
			p.emit(ml, g, Rook, pn.sq, t.RookAttacks(pn.sq, g.occ)&pn.ray)
		}
	case Queen:
		att := t.RookAttacks(pn.sq, g.occ)
		if pn.diagonal {
			att = t.BishopAttacks(pn.sq, g.occ)
		}
		p.emit(ml, g, Queen, pn.sq, att&pn.ray)
	case Pawn:
		p.generatePawnMoves(ml, g, SquareBB(pn.sq), pn.ray, pn.ray)
	}
	// A pinned knight never moves.
}

// GenerateEvasions appends the pseudo-legal replies to check: king steps,
// and against a single checker, captures of it and interpositions by pieces
// that are not pinned. Castling is never an evasion.
func (p *Position) GenerateEvasions(ml *MoveList) {
	g := p.newGenContext(GenAll)
	t := p.t
	us := g.us

	p.emit(ml, g, King, g.ksq, t.KingAttacks(g.ksq))

	checkers := p.AttackersTo(us, g.ksq, g.occ)
	if checkers == 0 || checkers.MoreThanOne() {
		return
	}

	// Capture the checker or, against a slider, block the line to it. Leaper
	// checkers are adjacent or a knight's jump away, so Between is empty.
	chk := checkers.LSB()
	answer := SquareBB(chk) | t.Between(g.ksq, chk)

	var pins pinSet
	p.findPins(g, &pins)
	free := ^pins.pinned

	epMask := answer
	if ep := p.EnPassant; ep != NoSquare && epVictimSquare(ep, us) == chk {
		epMask |= SquareBB(ep)
	}
	p.generatePawnMoves(ml, g, p.Pieces[us][Pawn]&free, answer, epMask)

	for bb := p.Pieces[us][Knight] & free; bb != 0; {
		from := bb.PopLSB()
		p.emit(ml, g, Knight, from, t.KnightAttacks(from)&answer)
	}
	for bb := p.Pieces[us][Bishop] & free; bb != 0; {
		from := bb.PopLSB()
		p.emit(ml, g, Bishop, from, t.BishopAttacks(from, g.occ)&answer)
	}
	for bb := p.Pieces[us][Rook] & free; bb != 0; {
		from := bb.PopLSB()
		p.emit(ml, g, Rook, from, t.RookAttacks(from, g.occ)&answer)
	}
	for bb := p.Pieces[us][Queen] & free; bb != 0; {
		from := bb.PopLSB()
		p.emit(ml, g, Queen, from, t.QueenAttacks(from, g.occ)&answer)
	}
}

// LegalMoves returns every legal move in the position.
func (p *Position) LegalMoves() []Move {
	var ml MoveList
	p.GeneratePseudoLegal(&ml)
	us := p.SideToMove
	legal := make([]Move, 0, ml.Len())
	for _, m := range ml.Slice() {
		if !p.NeedsLegalityCheck(m) {
			legal = append(legal, m)
			continue
		}
		u := p.MakeMove(m)
		if p.IsMoveLegal(us) {
			legal = append(legal, m)
		}
		p.UnmakeMove(m, u)
	}
	return legal
}

// HasLegalMoves returns true if the side to move has any legal moves.
func (p *Position) HasLegalMoves() bool {
	var ml MoveList
	p.GeneratePseudoLegal(&ml)
	us := p.SideToMove
	for _, m := range ml.Slice() {
		if !p.NeedsLegalityCheck(m) {
			return true
		}
		u := p.MakeMove(m)
		ok := p.IsMoveLegal(us)
		p.UnmakeMove(m, u)
		if ok {
			return true
		}
	}
	return false
}

// IsCheckmate returns true if the position is checkmate.
func (p *Position) IsCheckmate() bool {
	return p.InCheck() && !p.HasLegalMoves()
}

// IsStalemate returns true if the position is stalemate.
func (p *Position) IsStalemate() bool {
	return !p.InCheck() && !p.HasLegalMoves()
}

// IsDraw returns true for stalemate, the fifty-move rule, threefold
// repetition and insufficient material.
func (p *Position) IsDraw() bool {
	return p.IsDrawByFiftyMoves() || p.IsDrawByRepetition() || p.IsInsufficientMaterial() || p.IsStalemate()
}

// ParseMove resolves coordinate notation (e.g., "e2e4", "e7e8q") to the
// matching legal move.
func (p *Position) ParseMove(s string) (Move, error) {
	if len(s) < 4 || len(s) > 5 {
		return NoMove, fmt.Errorf("%w: malformed move %q", ErrIllegalMove, s)
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, fmt.Errorf("%w: %v", ErrIllegalMove, err)
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, fmt.Errorf("%w: %v", ErrIllegalMove, err)
	}
	promo := NoPieceType
	if len(s) == 5 {
		switch s[4] {
		case 'q', 'Q':
			promo = Queen
		case 'r', 'R':
			promo = Rook
		case 'b', 'B':
			promo = Bishop
		case 'n', 'N':
			promo = Knight
		default:
			return NoMove, fmt.Errorf("%w: bad promotion piece in %q", ErrIllegalMove, s)
		}
	}

	for _, m := range p.LegalMoves() {
		if m.From != from || m.To != to {
			continue
		}
		if m.IsPromotion() != (promo != NoPieceType) {
			continue
		}
		if m.IsPromotion() && m.Promoted.Type() != promo {
			continue
		}
		return m, nil
	}
	return NoMove, fmt.Errorf("%w: %s in %s", ErrIllegalMove, s, p.ToFEN())
}
