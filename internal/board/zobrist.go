package board

// Zobrist holds the hash keys a position fingerprint is built from: one per
// piece per square, one per held castling right, one per en-passant file and
// one for black to move.
type Zobrist struct {
	Piece      [12][64]uint64
	Castling   [4]uint64 // indexed by castling right bit: K, Q, k, q
	EnPassant  [8]uint64
	SideToMove uint64
}

// prng is a xorshift64* generator; deterministic for a given seed.
type prng struct {
	state uint64
}

func newPRNG(seed uint64) *prng {
	if seed == 0 {
		seed = 0x98F107A2BEEF1234
	}
	return &prng{state: seed}
}

func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

// sparse returns a value with few bits set, the usual shape of a good magic.
func (p *prng) sparse() uint64 {
	return p.next() & p.next() & p.next()
}

// NewZobrist draws a full key set from a seeded generator.
func NewZobrist(seed uint64) Zobrist {
	rng := newPRNG(seed)
	var z Zobrist
	for pc := WhitePawn; pc < NoPiece; pc++ {
		for sq := A1; sq <= H8; sq++ {
			z.Piece[pc][sq] = rng.next()
		}
	}
	for i := range z.Castling {
		z.Castling[i] = rng.next()
	}
	for file := range z.EnPassant {
		z.EnPassant[file] = rng.next()
	}
	z.SideToMove = rng.next()
	return z
}

// castlingKey returns the XOR of the keys of every right in cr.
func (z *Zobrist) castlingKey(cr CastlingRights) uint64 {
	var key uint64
	for i := 0; i < 4; i++ {
		if cr&(1<<i) != 0 {
			key ^= z.Castling[i]
		}
	}
	return key
}
