package chess

// Fancy magic bitboards for bishop/rook sliding attacks (spec §4.1). Each
// square has a relevance mask (attack rays with board edges stripped), a
// magic multiplier, and a slice of the shared attack table; lookup is one
// multiply-shift and one bounded array access.

// Every square gets a table block sized for the largest relevance mask:
// 9 bits for bishops (512-entry blocks) and 12 for rooks (4096-entry blocks).
const (
	bishopTableSize = 64 * 512
	rookTableSize   = 64 * 4096
)

type magicEntry struct {
	mask  SquareSet
	magic uint64
	shift uint8
	table []SquareSet // slice into the shared backing array for this square
}

var (
	bishopMagicTable [bishopTableSize]SquareSet
	rookMagicTable   [rookTableSize]SquareSet

	bishopMagics [64]magicEntry
	rookMagics   [64]magicEntry
)

// Known collision-free magic numbers. Equivalent numbers can be rediscovered
// offline by FindMagic (magicgen.go) / `corvid genmagics`; baking them in
// avoids paying the search cost at every process start (spec §9).
var bishopMagicNumbers = [64]uint64{
	0x0002020202020200, 0x0002020202020000, 0x0004010202000000, 0x0004040080000000,
	0x0001104000000000, 0x0000821040000000, 0x0000410410400000, 0x0000104104104000,
	0x0000040404040400, 0x0000020202020200, 0x0000040102020000, 0x0000040400800000,
	0x0000011040000000, 0x0000008210400000, 0x0000004104104000, 0x0000002082082000,
	0x0004000808080800, 0x0002000404040400, 0x0001000202020200, 0x0000800802004000,
	0x0000800400A00000, 0x0000200100884000, 0x0000400082082000, 0x0000200041041000,
	0x0002080010101000, 0x0001040008080800, 0x0000208004010400, 0x0000404004010200,
	0x0000840000802000, 0x0000404002011000, 0x0000808001041000, 0x0000404000820800,
	0x0001041000202000, 0x0000820800101000, 0x0000104400080800, 0x0000020080080080,
	0x0000404040040100, 0x0000808100020100, 0x0001010100020800, 0x0000808080010400,
	0x0000820820004000, 0x0000410410002000, 0x0000082088001000, 0x0000002011000800,
	0x0000080100400400, 0x0001010101000200, 0x0002020202000400, 0x0001010101000200,
	0x0000410410400000, 0x0000208208200000, 0x0000002084100000, 0x0000000020880000,
	0x0000001002020000, 0x0000040408020000, 0x0004040404040000, 0x0002020202020000,
	0x0000104104104000, 0x0000002082082000, 0x0000000020841000, 0x0000000000208800,
	0x0000000010020200, 0x0000000404080200, 0x0000040404040400, 0x0002020202020200,
}

var rookMagicNumbers = [64]uint64{
	0x0080001020400080, 0x0040001000200040, 0x0080081000200080, 0x0080040800100080,
	0x0080020400080080, 0x0080010200040080, 0x0080008001000200, 0x0080002040800100,
	0x0000800020400080, 0x0000400020005000, 0x0000801000200080, 0x0000800800100080,
	0x0000800400080080, 0x0000800200040080, 0x0000800100020080, 0x0000800040800100,
	0x0000208000400080, 0x0000404000201000, 0x0000808010002000, 0x0000808008001000,
	0x0000808004000800, 0x0000808002000400, 0x0000010100020004, 0x0000020000408104,
	0x0000208080004000, 0x0000200040005000, 0x0000100080200080, 0x0000080080100080,
	0x0000040080080080, 0x0000020080040080, 0x0000010080800200, 0x0000800080004100,
	0x0000204000800080, 0x0000200040401000, 0x0000100080802000, 0x0000080080801000,
	0x0000040080800800, 0x0000020080800400, 0x0000020001010004, 0x0000800040800100,
	0x0000204000808000, 0x0000200040008080, 0x0000100020008080, 0x0000080010008080,
	0x0000040008008080, 0x0000020004008080, 0x0000010002008080, 0x0000004081020004,
	0x0000204000800080, 0x0000200040008080, 0x0000100020008080, 0x0000080010008080,
	0x0000040008008080, 0x0000020004008080, 0x0000800100020080, 0x0000800041000080,
	0x00FFFCDDFCED714A, 0x007FFCDDFCED714A, 0x003FFFCDFFD88096, 0x0000040810002101,
	0x0001000204080011, 0x0001000204000801, 0x0001000082000401, 0x0001FFFAABFAD1A2,
}

func initMagics() {
	var boff, roff int
	for sq := A1; sq <= H8; sq++ {
		bmask := BishopMask(sq)
		bbits := bmask.Count()
		bishopMagics[sq] = magicEntry{
			mask:  bmask,
			magic: bishopMagicNumbers[sq],
			shift: uint8(64 - bbits),
			table: bishopMagicTable[boff : boff+(1<<bbits)],
		}
		for i := 0; i < 1<<bbits; i++ {
			occ := IndexToOccupancy(i, bmask)
			idx := (uint64(occ) * bishopMagicNumbers[sq]) >> (64 - bbits)
			bishopMagics[sq].table[idx] = BishopAttacksSlow(sq, occ)
		}
		boff += 1 << bbits

		rmask := RookMask(sq)
		rbits := rmask.Count()
		rookMagics[sq] = magicEntry{
			mask:  rmask,
			magic: rookMagicNumbers[sq],
			shift: uint8(64 - rbits),
			table: rookMagicTable[roff : roff+(1<<rbits)],
		}
		for i := 0; i < 1<<rbits; i++ {
			occ := IndexToOccupancy(i, rmask)
			idx := (uint64(occ) * rookMagicNumbers[sq]) >> (64 - rbits)
			rookMagics[sq].table[idx] = RookAttacksSlow(sq, occ)
		}
		roff += 1 << rbits
	}
}

// BishopMask returns the relevant-occupancy mask for a bishop on sq: its
// attack rays on an otherwise empty board, with outer-edge squares removed
// because edge occupancy never changes the attack set.
func BishopMask(sq Square) SquareSet {
	return BishopAttacksSlow(sq, Empty) & ^(Rank1 | Rank8 | FileA | FileH)
}

// RookMask returns the relevant-occupancy mask for a rook on sq.
func RookMask(sq Square) SquareSet {
	f, r := sq.File(), sq.Rank()
	var mask SquareSet
	for ff := 1; ff < 7; ff++ {
		if ff != f {
			mask = mask.With(NewSquare(ff, r))
		}
	}
	for rr := 1; rr < 7; rr++ {
		if rr != r {
			mask = mask.With(NewSquare(f, rr))
		}
	}
	return mask
}

// IndexToOccupancy maps a dense subset index (0 <= index < 2^mask.Count())
// to the corresponding occupancy pattern over mask's bits.
func IndexToOccupancy(index int, mask SquareSet) SquareSet {
	var occ SquareSet
	bits := mask
	i := 0
	for bits != 0 {
		sq := bits.PopLSB()
		if index&(1<<i) != 0 {
			occ = occ.With(sq)
		}
		i++
	}
	return occ
}

// BishopAttacksSlow ray-walks the four diagonals, stopping at (and
// including) the first occupied square. Used to seed the magic tables and
// as the ground truth in attack-table consistency tests.
func BishopAttacksSlow(sq Square, occupied SquareSet) SquareSet {
	var attacks SquareSet
	f, r := sq.File(), sq.Rank()
	for _, d := range [4][2]int{{1, 1}, {-1, 1}, {1, -1}, {-1, -1}} {
		ff, rr := f+d[0], r+d[1]
		for ff >= 0 && ff <= 7 && rr >= 0 && rr <= 7 {
			s := NewSquare(ff, rr)
			attacks = attacks.With(s)
			if occupied.Has(s) {
				break
			}
			ff, rr = ff+d[0], rr+d[1]
		}
	}
	return attacks
}

// RookAttacksSlow ray-walks the four orthogonal directions.
func RookAttacksSlow(sq Square, occupied SquareSet) SquareSet {
	var attacks SquareSet
	f, r := sq.File(), sq.Rank()
	for _, d := range [4][2]int{{0, 1}, {0, -1}, {1, 0}, {-1, 0}} {
		ff, rr := f+d[0], r+d[1]
		for ff >= 0 && ff <= 7 && rr >= 0 && rr <= 7 {
			s := NewSquare(ff, rr)
			attacks = attacks.With(s)
			if occupied.Has(s) {
				break
			}
			ff, rr = ff+d[0], rr+d[1]
		}
	}
	return attacks
}

func bishopAttacksMagic(sq Square, occupied SquareSet) SquareSet {
	m := &bishopMagics[sq]
	idx := (uint64(occupied&m.mask) * m.magic) >> m.shift
	return m.table[idx]
}

func rookAttacksMagic(sq Square, occupied SquareSet) SquareSet {
	m := &rookMagics[sq]
	idx := (uint64(occupied&m.mask) * m.magic) >> m.shift
	return m.table[idx]
}
