package chess

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the standard chess starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// FENMode selects how strictly ParseFEN validates its input (spec §6).
type FENMode int

const (
	// FENStrict requires all six fields and rejects trailing tokens.
	FENStrict FENMode = iota
	// FENRelaxed defaults missing fields to "w - - 0 1" and ignores extras.
	FENRelaxed
)

// NewBoard builds the standard starting position.
func NewBoard() *Board {
	b, err := ParseFEN(StartFEN, FENStrict, false)
	if err != nil {
		panic("chess: startpos FEN must parse: " + err.Error())
	}
	return b
}

// ParseFEN parses a FEN string into a fresh Board. chess960 enables X-FEN
// castling-field interpretation (file letters instead of KQkq) and relaxes
// the castling/rook-square validation accordingly.
func ParseFEN(fen string, mode FENMode, chess960 bool) (*Board, error) {
	fields := strings.Fields(strings.TrimSpace(fen))

	if mode == FENStrict {
		if len(fields) != 6 {
			return nil, fmt.Errorf("chess: strict FEN requires 6 fields, got %d", len(fields))
		}
	} else {
		if len(fields) < 1 {
			return nil, fmt.Errorf("chess: empty FEN")
		}
		for len(fields) < 6 {
			defaults := []string{"", "w", "-", "-", "0", "1"}
			fields = append(fields, defaults[len(fields)])
		}
		fields = fields[:6]
	}

	b := &Board{Chess960: chess960}
	for sq := range b.mailbox {
		b.mailbox[sq] = NoPiece
	}
	b.EnPassant = NoSquare
	b.Castling = newCastlingRights()

	if err := b.placePieces(fields[0]); err != nil {
		return nil, err
	}

	switch fields[1] {
	case "w":
		b.SideToMove = White
	case "b":
		b.SideToMove = Black
	default:
		return nil, fmt.Errorf("chess: invalid side to move %q", fields[1])
	}

	if err := b.parseCastling(fields[2], chess960); err != nil {
		return nil, err
	}

	if fields[3] != "-" {
		sq, err := ParseSquare(fields[3])
		if err != nil {
			return nil, fmt.Errorf("chess: invalid en-passant square: %w", err)
		}
		if b.SideToMove == White && sq.Rank() != 5 {
			return nil, fmt.Errorf("chess: en-passant square %s inconsistent with side to move", sq)
		}
		if b.SideToMove == Black && sq.Rank() != 2 {
			return nil, fmt.Errorf("chess: en-passant square %s inconsistent with side to move", sq)
		}
		b.EnPassant = sq
	}

	half, err := strconv.Atoi(fields[4])
	if err != nil || half < 0 || half > 100 {
		return nil, fmt.Errorf("chess: invalid halfmove clock %q", fields[4])
	}
	b.HalfMove = half

	full, err := strconv.Atoi(fields[5])
	if err != nil || full < 1 {
		return nil, fmt.Errorf("chess: invalid fullmove number %q", fields[5])
	}
	b.Ply = (full - 1) * 2
	if b.SideToMove == Black {
		b.Ply++
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}
	if (b.Layout.byType[Pawn] & (Rank1 | Rank8)) != 0 {
		return nil, fmt.Errorf("chess: pawns cannot occupy rank 1 or 8")
	}

	b.Hash = b.ComputeHash()
	b.PawnHash = b.computePawnHash()
	b.MinorHash, b.MajorHash = b.computeMinorMajorHash()
	b.NonPawnHash = b.computeNonPawnHash()
	b.updateCheckersAndThreats()

	return b, nil
}

func (b *Board) placePieces(field string) error {
	ranks := strings.Split(field, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("chess: board field must have 8 ranks, got %d", len(ranks))
	}
	for i, rankStr := range ranks {
		rank := 7 - i
		file := 0
		for _, ch := range rankStr {
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			p := PieceFromChar(byte(ch))
			if p == NoPiece {
				return fmt.Errorf("chess: invalid piece char %q", ch)
			}
			if file > 7 {
				return fmt.Errorf("chess: rank %d overflows", rank+1)
			}
			b.setPiece(p, NewSquare(file, rank))
			file++
		}
		if file != 8 {
			return fmt.Errorf("chess: rank %d does not sum to 8 files", rank+1)
		}
	}
	return nil
}

func (b *Board) parseCastling(field string, chess960 bool) error {
	if field == "-" {
		return nil
	}
	for _, ch := range field {
		var c Color
		if ch >= 'a' && ch <= 'z' {
			c = Black
		} else {
			c = White
		}
		upper := ch
		if upper >= 'a' && upper <= 'z' {
			upper -= 'a' - 'A'
		}
		king := b.kingSq[c]
		if king == NoSquare {
			return fmt.Errorf("chess: castling rights reference colour with no king")
		}
		switch upper {
		case 'K':
			file := rookFileSearch(b, c, king, true)
			if file < 0 {
				return fmt.Errorf("chess: no kingside rook found for %c", ch)
			}
			b.Castling.set(c, true, file)
		case 'Q':
			file := rookFileSearch(b, c, king, false)
			if file < 0 {
				return fmt.Errorf("chess: no queenside rook found for %c", ch)
			}
			b.Castling.set(c, false, file)
		default:
			if !chess960 {
				return fmt.Errorf("chess: invalid castling letter %q", ch)
			}
			file := int(upper - 'A')
			if file < 0 || file > 7 {
				return fmt.Errorf("chess: invalid X-FEN castling file %q", ch)
			}
			kingside := file > king.File()
			b.Castling.set(c, kingside, file)
		}
	}
	return nil
}

// rookFileSearch finds the outermost rook on the king's back rank in the
// castling direction requested, matching standard-chess KQkq semantics.
func rookFileSearch(b *Board, c Color, king Square, kingside bool) int {
	rank := king.Rank()
	best := -1
	for f := 0; f < 8; f++ {
		sq := NewSquare(f, rank)
		if b.PieceAt(sq) == NewPiece(Rook, c) {
			if kingside && f > king.File() {
				if best < 0 || f > best {
					best = f
				}
			}
			if !kingside && f < king.File() {
				if best < 0 || f < best {
					best = f
				}
			}
		}
	}
	return best
}

// FEN renders the board back to FEN notation.
func (b *Board) FEN() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			p := b.PieceAt(NewSquare(file, rank))
			if p == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(p.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}
	sb.WriteByte(' ')
	sb.WriteString(b.SideToMove.String())
	sb.WriteByte(' ')
	sb.WriteString(b.castlingFEN())
	sb.WriteByte(' ')
	sb.WriteString(b.EnPassant.String())
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(b.HalfMove))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(b.Ply/2 + 1))
	return sb.String()
}

func (b *Board) castlingFEN() string {
	if !b.Chess960 {
		return b.Castling.String()
	}
	s := ""
	for _, c := range [2]Color{White, Black} {
		for _, kingside := range [2]bool{true, false} {
			if b.Castling.Has(c, kingside) {
				ch := byte('A' + b.Castling.RookFile(c, kingside))
				if c == Black {
					ch += 'a' - 'A'
				}
				s += string(ch)
			}
		}
	}
	if s == "" {
		return "-"
	}
	return s
}

func (b *Board) computePawnHash() uint64 {
	var h uint64
	b.Layout.byType[Pawn].ForEach(func(sq Square) {
		p := b.mailbox[sq]
		h ^= ZobristPiece(p.Color(), p.Type(), sq)
	})
	return h
}

func (b *Board) computeMinorMajorHash() (minor, major uint64) {
	for _, pt := range [2]PieceType{Knight, Bishop} {
		b.Layout.byType[pt].ForEach(func(sq Square) {
			p := b.mailbox[sq]
			minor ^= ZobristPiece(p.Color(), p.Type(), sq)
		})
	}
	for _, pt := range [2]PieceType{Rook, Queen} {
		b.Layout.byType[pt].ForEach(func(sq Square) {
			p := b.mailbox[sq]
			major ^= ZobristPiece(p.Color(), p.Type(), sq)
		})
	}
	return
}

func (b *Board) computeNonPawnHash() [2]uint64 {
	var out [2]uint64
	for pt := Knight; pt <= King; pt++ {
		b.Layout.byType[pt].ForEach(func(sq Square) {
			p := b.mailbox[sq]
			out[p.Color()] ^= ZobristPiece(p.Color(), p.Type(), sq)
		})
	}
	return out
}
