package chess

// Offline magic-number search, grounded in spec §4.1 / §9: magics may be
// generated offline and embedded (as above) or searched for at first
// startup. FindMagic implements the search so the `genmagics` CLI
// subcommand can regenerate bishopMagicNumbers/rookMagicNumbers from
// scratch. It does not check the baked-in numbers; magic_test.go does that
// by comparing every table lookup with the slow ray walk.

// prng is a small xorshift64* generator, seeded deterministically so that
// magic search runs are reproducible across invocations.
type prng struct{ state uint64 }

func newPRNG(seed uint64) *prng {
	if seed == 0 {
		seed = 1
	}
	return &prng{state: seed}
}

func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

// fewBits draws a sparsely-populated candidate magic: the AND of three
// random draws tends to have few set bits, which historically yields more
// collision-free magics than a uniformly random uint64.
func (p *prng) fewBits() uint64 {
	return p.next() & p.next() & p.next()
}

// FindMagic searches for a collision-free magic multiplier for the given
// relevance mask, returning it once num1s-high-bits and a full collision
// check both pass. attacks must be the slow ray-walking attack function for
// the piece being searched (BishopAttacksSlow or RookAttacksSlow).
func FindMagic(seed uint64, sq Square, mask SquareSet, attacks func(Square, SquareSet) SquareSet) uint64 {
	bits := mask.Count()
	n := 1 << bits

	occupancies := make([]SquareSet, n)
	references := make([]SquareSet, n)
	for i := 0; i < n; i++ {
		occupancies[i] = IndexToOccupancy(i, mask)
		references[i] = attacks(sq, occupancies[i])
	}

	rng := newPRNG(seed)
	used := make([]SquareSet, n)
	filled := make([]bool, n)

	for attempt := 0; attempt < 100_000_000; attempt++ {
		magic := rng.fewBits()
		// Reject candidates whose high byte is too sparse: the spec
		// requires >= 6 set bits in the top byte for a usable spread.
		if popcountByte(magic>>56) < 6 {
			continue
		}

		for i := range filled {
			filled[i] = false
		}

		fail := false
		for i := 0; i < n && !fail; i++ {
			idx := (uint64(occupancies[i]) * magic) >> (64 - bits)
			if !filled[idx] {
				filled[idx] = true
				used[idx] = references[i]
			} else if used[idx] != references[i] {
				fail = true
			}
		}
		if !fail {
			return magic
		}
	}
	return 0
}

func popcountByte(x uint64) int {
	n := 0
	for x != 0 {
		n += int(x & 1)
		x >>= 1
	}
	return n
}
