package chess

import (
	"math/bits"
	"strings"
)

// SquareSet is a 64-bit set of squares; bit i set means square i is a
// member. Iteration via PopLSB/ForEach always proceeds in ascending square
// order because it repeatedly strips the least-significant bit.
type SquareSet uint64

// File masks.
const (
	FileA SquareSet = 0x0101010101010101
	FileB SquareSet = FileA << 1
	FileC SquareSet = FileA << 2
	FileD SquareSet = FileA << 3
	FileE SquareSet = FileA << 4
	FileF SquareSet = FileA << 5
	FileG SquareSet = FileA << 6
	FileH SquareSet = FileA << 7
)

// Rank masks.
const (
	Rank1 SquareSet = 0xFF
	Rank2 SquareSet = Rank1 << (8 * 1)
	Rank3 SquareSet = Rank1 << (8 * 2)
	Rank4 SquareSet = Rank1 << (8 * 3)
	Rank5 SquareSet = Rank1 << (8 * 4)
	Rank6 SquareSet = Rank1 << (8 * 5)
	Rank7 SquareSet = Rank1 << (8 * 6)
	Rank8 SquareSet = Rank1 << (8 * 7)
)

const (
	Empty    SquareSet = 0
	Universe SquareSet = 0xFFFFFFFFFFFFFFFF

	notFileA SquareSet = ^FileA
	notFileH SquareSet = ^FileH
)

// FileMask indexes file masks 0 (a) .. 7 (h).
var FileMask = [8]SquareSet{FileA, FileB, FileC, FileD, FileE, FileF, FileG, FileH}

// RankMask indexes rank masks 0 (rank 1) .. 7 (rank 8).
var RankMask = [8]SquareSet{Rank1, Rank2, Rank3, Rank4, Rank5, Rank6, Rank7, Rank8}

// SquareBB returns the singleton set containing sq.
func SquareBB(sq Square) SquareSet { return SquareSet(1) << sq }

func (b SquareSet) With(sq Square) SquareSet    { return b | SquareBB(sq) }
func (b SquareSet) Without(sq Square) SquareSet { return b &^ SquareBB(sq) }
func (b SquareSet) Has(sq Square) bool          { return b&SquareBB(sq) != 0 }

// Count returns the population count.
func (b SquareSet) Count() int { return bits.OnesCount64(uint64(b)) }

// First returns the lowest-indexed member square, or NoSquare if empty.
func (b SquareSet) First() Square {
	if b == 0 {
		return NoSquare
	}
	return Square(bits.TrailingZeros64(uint64(b)))
}

// Last returns the highest-indexed member square, or NoSquare if empty.
func (b SquareSet) Last() Square {
	if b == 0 {
		return NoSquare
	}
	return Square(63 - bits.LeadingZeros64(uint64(b)))
}

// PopLSB clears and returns the lowest-indexed member square.
func (b *SquareSet) PopLSB() Square {
	sq := b.First()
	*b &= *b - 1
	return sq
}

func (b SquareSet) Any() bool  { return b != 0 }
func (b SquareSet) None() bool { return b == 0 }

// Shift one square in each compass direction, masking off squares that would
// wrap around the board's east/west edges.
func (b SquareSet) ShiftN() SquareSet { return b << 8 }
func (b SquareSet) ShiftS() SquareSet { return b >> 8 }
func (b SquareSet) ShiftE() SquareSet { return (b << 1) & notFileA }
func (b SquareSet) ShiftW() SquareSet { return (b >> 1) & notFileH }
func (b SquareSet) ShiftNE() SquareSet { return (b << 9) & notFileA }
func (b SquareSet) ShiftNW() SquareSet { return (b << 7) & notFileH }
func (b SquareSet) ShiftSE() SquareSet { return (b >> 7) & notFileA }
func (b SquareSet) ShiftSW() SquareSet { return (b >> 9) & notFileH }

// ForEach invokes f once per member square in ascending order.
func (b SquareSet) ForEach(f func(Square)) {
	for b != 0 {
		f(b.PopLSB())
	}
}

// Squares materializes the set as an ascending slice.
func (b SquareSet) Squares() []Square {
	out := make([]Square, 0, b.Count())
	b.ForEach(func(sq Square) { out = append(out, sq) })
	return out
}

func (b SquareSet) String() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		for file := 0; file < 8; file++ {
			if b.Has(NewSquare(file, rank)) {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
