package board

// Perft counts the leaf nodes of the legal move tree to the given depth.
func (p *Position) Perft(depth int) uint64 {
	if depth <= 0 {
		return 1
	}

	var ml MoveList
	p.GeneratePseudoLegal(&ml)
	us := p.SideToMove

	var nodes uint64
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		check := p.NeedsLegalityCheck(m)
		if depth == 1 && !check {
			nodes++
			continue
		}
		u := p.MakeMove(m)
		if !check || p.IsMoveLegal(us) {
			nodes += p.Perft(depth - 1)
		}
		p.UnmakeMove(m, u)
	}
	return nodes
}

// DivideEntry is the node count below one root move.
type DivideEntry struct {
	Move  Move
	Nodes uint64
}

// Divide returns the perft count under each legal root move, in generation
// order.
func (p *Position) Divide(depth int) []DivideEntry {
	if depth <= 0 {
		return nil
	}
	moves := p.LegalMoves()
	entries := make([]DivideEntry, 0, len(moves))
	for _, m := range moves {
		u := p.MakeMove(m)
		entries = append(entries, DivideEntry{Move: m, Nodes: p.Perft(depth - 1)})
		p.UnmakeMove(m, u)
	}
	return entries
}
