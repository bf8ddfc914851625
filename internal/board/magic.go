package board

import "math/bits"

// Magic bitboard implementation for sliding piece attacks.
// Multipliers are searched at table construction from a seeded generator and
// accepted only when every occupancy subset of the mask maps to a slot holding
// the right attack set, so a table can never carry a destructive collision.

// Magic holds the magic bitboard data for a single square.
type Magic struct {
	Mask   Bitboard // Relevant occupancy mask (excludes edges)
	Magic  uint64   // Magic multiplier
	Shift  uint8    // Bits to shift right
	Offset uint32   // Index into attack table
}

// index maps an occupancy to the attack-table slot for this square.
func (m *Magic) index(occupied Bitboard) uint32 {
	return m.Offset + uint32((uint64(occupied&m.Mask)*m.Magic)>>m.Shift)
}

// initMagics fills magics and returns the packed attack table for one slider.
func initMagics(magics *[64]Magic, maskFn func(Square) Bitboard, slow func(Square, Bitboard) Bitboard, rng *prng) []Bitboard {
	var size uint32
	for sq := A1; sq <= H8; sq++ {
		size += 1 << maskFn(sq).PopCount()
	}
	table := make([]Bitboard, size)

	var occupancy, reference [4096]Bitboard
	var epoch [4096]int
	attempt := 0

	var offset uint32
	for sq := A1; sq <= H8; sq++ {
		mask := maskFn(sq)
		n := mask.PopCount()
		entries := 1 << n

		// Carry-Rippler enumeration of every subset of the mask.
		var occ Bitboard
		for i := 0; i < entries; i++ {
			occupancy[i] = occ
			reference[i] = slow(sq, occ)
			occ = (occ - mask) & mask
		}

		m := Magic{Mask: mask, Shift: uint8(64 - n), Offset: offset}
		seg := table[offset : offset+uint32(entries)]
		for {
			m.Magic = rng.sparse()
			if bits.OnesCount64((uint64(mask)*m.Magic)>>56) < 6 {
				continue
			}

			attempt++
			ok := true
			for i := 0; i < entries; i++ {
				idx := (uint64(occupancy[i]) * m.Magic) >> m.Shift
				if epoch[idx] < attempt {
					epoch[idx] = attempt
					seg[idx] = reference[i]
				} else if seg[idx] != reference[i] {
					ok = false
					break
				}
			}
			if ok {
				break
			}
		}

		magics[sq] = m
		offset += uint32(entries)
	}
	return table
}

// bishopMask returns the relevant occupancy mask for bishop at square.
// Excludes edge squares since they don't affect the result.
func bishopMask(sq Square) Bitboard {
	return bishopAttacksSlow(sq, 0) &^ edges
}

// rookMask returns the relevant occupancy mask for rook at square.
func rookMask(sq Square) Bitboard {
	file, rank := sq.File(), sq.Rank()
	var mask Bitboard
	for f := 1; f < 7; f++ {
		if f != file {
			mask |= SquareBB(NewSquare(f, rank))
		}
	}
	for r := 1; r < 7; r++ {
		if r != rank {
			mask |= SquareBB(NewSquare(file, r))
		}
	}
	return mask
}

// slide walks from sq in each (df, dr) direction until the board edge or the
// first occupied square, which is included.
func slide(sq Square, occupied Bitboard, dirs [4][2]int) Bitboard {
	var attacks Bitboard
	for _, d := range dirs {
		f, r := sq.File()+d[0], sq.Rank()+d[1]
		for f >= 0 && f <= 7 && r >= 0 && r <= 7 {
			s := SquareBB(NewSquare(f, r))
			attacks |= s
			if occupied&s != 0 {
				break
			}
			f += d[0]
			r += d[1]
		}
	}
	return attacks
}

var (
	diagonalDirs   = [4][2]int{{1, 1}, {-1, 1}, {1, -1}, {-1, -1}}
	orthogonalDirs = [4][2]int{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}
)

// bishopAttacksSlow computes bishop attacks by ray casting (used during initialization).
func bishopAttacksSlow(sq Square, occupied Bitboard) Bitboard {
	return slide(sq, occupied, diagonalDirs)
}

// rookAttacksSlow computes rook attacks by ray casting (used during initialization).
func rookAttacksSlow(sq Square, occupied Bitboard) Bitboard {
	return slide(sq, occupied, orthogonalDirs)
}
