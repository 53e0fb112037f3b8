package chess

import "fmt"

// Move packs {from:6, to:6, flags:4} into 16 bits (spec §3). The zero
// value, NoMove, has From()==To()==A1 and no flags.
type Move uint16

// Flags occupy the top 4 bits: a 2-bit class selector plus, for promotions,
// a 2-bit promotion-piece selector.
const (
	moveFlagShift   = 12
	moveFlagMask    = 0xF << moveFlagShift
	promoPieceShift = 12 // overlaps the low bits of the flag nibble for promotions

	FlagQuiet     uint16 = 0x0 << moveFlagShift
	FlagDoublePush uint16 = 0x1 << moveFlagShift
	FlagCastle    uint16 = 0x2 << moveFlagShift
	FlagEnPassant uint16 = 0x3 << moveFlagShift
	FlagCapture   uint16 = 0x4 << moveFlagShift

	// Promotion flags set bit 3 of the nibble and encode the promoted piece
	// in the low two bits: Knight=0, Bishop=1, Rook=2, Queen=3. Capturing
	// promotions set bit 2 in addition.
	FlagPromoN  uint16 = 0x8 << moveFlagShift
	FlagPromoB  uint16 = 0x9 << moveFlagShift
	FlagPromoR  uint16 = 0xA << moveFlagShift
	FlagPromoQ  uint16 = 0xB << moveFlagShift
	FlagPromoCN uint16 = 0xC << moveFlagShift
	FlagPromoCB uint16 = 0xD << moveFlagShift
	FlagPromoCR uint16 = 0xE << moveFlagShift
	FlagPromoCQ uint16 = 0xF << moveFlagShift
)

// NoMove is the zero value. There is no separate null-move value: null
// moves are played with Board.MakeNullMove/UnmakeNullMove, and a search
// that needs to tell "no move produced" from "null move" tracks that
// separately rather than in the encoding.
const NoMove Move = 0

func NewMove(from, to Square) Move { return Move(from) | Move(to)<<6 }

func NewCapture(from, to Square) Move { return Move(from) | Move(to)<<6 | Move(FlagCapture) }

func NewDoublePush(from, to Square) Move { return Move(from) | Move(to)<<6 | Move(FlagDoublePush) }

func NewEnPassant(from, to Square) Move { return Move(from) | Move(to)<<6 | Move(FlagEnPassant) }

func NewCastle(from, to Square) Move { return Move(from) | Move(to)<<6 | Move(FlagCastle) }

var promoFlags = [4]uint16{FlagPromoN, FlagPromoB, FlagPromoR, FlagPromoQ}
var promoCaptureFlags = [4]uint16{FlagPromoCN, FlagPromoCB, FlagPromoCR, FlagPromoCQ}

// NewPromotion builds a promotion move; capture indicates whether the
// destination square is occupied by an enemy piece.
func NewPromotion(from, to Square, promo PieceType, capture bool) Move {
	idx := promo - Knight
	if capture {
		return Move(from) | Move(to)<<6 | Move(promoCaptureFlags[idx])
	}
	return Move(from) | Move(to)<<6 | Move(promoFlags[idx])
}

func (m Move) From() Square { return Square(m & 0x3F) }
func (m Move) To() Square   { return Square((m >> 6) & 0x3F) }
func (m Move) flag() uint16 { return uint16(m) & moveFlagMask }

func (m Move) IsPromotion() bool { return m.flag()&(0x8<<moveFlagShift) != 0 }
func (m Move) IsCastle() bool    { return m.flag() == FlagCastle }
func (m Move) IsEnPassant() bool { return m.flag() == FlagEnPassant }
func (m Move) IsDoublePush() bool { return m.flag() == FlagDoublePush }

// IsCapture reports whether the move removes an enemy piece: ordinary
// captures, en-passant, and capturing promotions.
func (m Move) IsCapture() bool {
	f := m.flag()
	if f == FlagCapture || f == FlagEnPassant {
		return true
	}
	return f == FlagPromoCN || f == FlagPromoCB || f == FlagPromoCR || f == FlagPromoCQ
}

func (m Move) IsTactical() bool { return m.IsCapture() || m.IsPromotion() }
func (m Move) IsQuiet() bool    { return !m.IsTactical() }

// Promotion returns the promoted-to piece type; only meaningful when
// IsPromotion() is true.
func (m Move) Promotion() PieceType {
	return Knight + PieceType((m.flag()>>moveFlagShift)&0x3)
}

var promoChars = "nbrq"

func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += string(promoChars[m.Promotion()-Knight])
	}
	return s
}

// MoveListEntry pairs a move with its staged-ordering score (spec §3): a
// "winning capture" sentinel awaiting lazy SEE, or a quiet-history score.
type MoveListEntry struct {
	Move  Move
	Score int32
}

// MoveList is a fixed-capacity move buffer; 256 comfortably bounds the
// legal moves in any reachable chess position.
type MoveList struct {
	entries [256]MoveListEntry
	n       int
}

func (ml *MoveList) Add(m Move)              { ml.entries[ml.n] = MoveListEntry{Move: m}; ml.n++ }
func (ml *MoveList) AddScored(m Move, s int32) { ml.entries[ml.n] = MoveListEntry{Move: m, Score: s}; ml.n++ }
func (ml *MoveList) Len() int                { return ml.n }
func (ml *MoveList) Clear()                  { ml.n = 0 }
func (ml *MoveList) At(i int) Move           { return ml.entries[i].Move }
func (ml *MoveList) Entry(i int) *MoveListEntry { return &ml.entries[i] }

func (ml *MoveList) Swap(i, j int) { ml.entries[i], ml.entries[j] = ml.entries[j], ml.entries[i] }

func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.n; i++ {
		if ml.entries[i].Move == m {
			return true
		}
	}
	return false
}

func (ml *MoveList) Slice() []Move {
	out := make([]Move, ml.n)
	for i := 0; i < ml.n; i++ {
		out[i] = ml.entries[i].Move
	}
	return out
}

// ParseMove parses a UCI long-algebraic move string relative to b, picking
// up promotion, castle, en-passant and double-push flags from the board
// state since the wire format itself only carries from/to/promo.
func ParseMove(s string, b *Board) (Move, error) {
	if len(s) < 4 {
		return NoMove, fmt.Errorf("chess: invalid move %q", s)
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}
	piece := b.PieceAt(from)
	if piece == NoPiece {
		return NoMove, fmt.Errorf("chess: no piece on %s", from)
	}
	capture := b.PieceAt(to) != NoPiece

	if len(s) == 5 {
		var promo PieceType
		switch s[4] {
		case 'n':
			promo = Knight
		case 'b':
			promo = Bishop
		case 'r':
			promo = Rook
		case 'q':
			promo = Queen
		default:
			return NoMove, fmt.Errorf("chess: invalid promotion %q", s[4:])
		}
		return NewPromotion(from, to, promo, capture), nil
	}

	pt := piece.Type()
	if pt == King {
		if b.isCastleDestination(piece.Color(), from, to) {
			return NewCastle(from, to), nil
		}
	}
	if pt == Pawn {
		if to == b.EnPassant && to != NoSquare {
			return NewEnPassant(from, to), nil
		}
		if abs(to.Rank()-from.Rank()) == 2 {
			return NewDoublePush(from, to), nil
		}
	}
	if capture {
		return NewCapture(from, to), nil
	}
	return NewMove(from, to), nil
}
