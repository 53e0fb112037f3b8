package chess

// MakeMove applies m to the board, pushing the prior state onto the undo
// stack (spec §4.3). The caller must only call m on a move that MoveGen
// produced (or that IsLegal has already validated) for pseudo-legal inputs
// from UCI/SAN text, legality must be checked separately.
func (b *Board) MakeMove(m Move) {
	prior := b.BoardState
	b.history = append(b.history, undoEntry{state: prior, repLen: len(b.repetitionLog)})

	us := b.SideToMove
	them := us.Other()
	from, to := m.From(), m.To()
	moving := b.PieceAt(from)

	if b.EnPassant != NoSquare {
		b.Hash ^= ZobristEPFile(b.EnPassant.File())
		b.EnPassant = NoSquare
	}

	b.HalfMove++
	if moving.Type() == Pawn {
		b.HalfMove = 0
	}

	switch {
	case m.IsCastle():
		b.doCastle(us, from, to)
	case m.IsEnPassant():
		capSq := to - 8
		if us == Black {
			capSq = to + 8
		}
		b.removePiece(capSq)
		b.movePieceRaw(from, to)
		b.HalfMove = 0
	case m.IsPromotion():
		if m.IsCapture() {
			captured := b.removePiece(to)
			b.updateCastlingOnRookCapture(them, to, captured)
			b.HalfMove = 0
		}
		b.removePiece(from)
		b.setPiece(NewPiece(m.Promotion(), us), to)
		b.HalfMove = 0
	default:
		if m.IsCapture() {
			captured := b.removePiece(to)
			b.updateCastlingOnRookCapture(them, to, captured)
			b.HalfMove = 0
		}
		b.movePieceRaw(from, to)
		if m.IsDoublePush() {
			epSq := to - 8
			if us == Black {
				epSq = to + 8
			}
			// Only set an EP target when an enemy pawn could actually
			// capture there, matching engines that avoid polluting the
			// hash with dead EP rights (keeps repetition detection exact).
			if PawnAttacks(us, epSq)&b.Layout.pieces(them, Pawn) != 0 {
				b.EnPassant = epSq
				b.Hash ^= ZobristEPFile(epSq.File())
			}
		}
	}

	b.updateCastlingRightsForMove(us, from, moving)

	b.Hash ^= ZobristCastling(prior.Castling)
	b.Hash ^= ZobristCastling(b.Castling)

	b.SideToMove = them
	b.Hash ^= ZobristSideToMove()
	b.Ply++

	b.updateCheckersAndThreats()

	if moving.Type() == Pawn || m.IsCapture() {
		b.repetitionLog = b.repetitionLog[:0]
	}
	b.repetitionLog = append(b.repetitionLog, b.Hash)
}

// doCastle relocates king and rook using destination squares derived from
// the castling rights' stored rook file, so the same code path handles
// both standard chess and Chess960 (spec §4.2).
func (b *Board) doCastle(us Color, kingFrom, kingTo Square) {
	kingside := kingTo.File() > kingFrom.File()
	rookFile := b.Castling.RookFile(us, kingside)
	rank := kingFrom.Rank()
	rookFrom := NewSquare(rookFile, rank)

	var kingDest, rookDest int
	if kingside {
		kingDest, rookDest = 6, 5
	} else {
		kingDest, rookDest = 2, 3
	}
	kingToSq := NewSquare(kingDest, rank)
	rookToSq := NewSquare(rookDest, rank)

	b.removePiece(kingFrom)
	b.removePiece(rookFrom)
	b.setPiece(NewPiece(King, us), kingToSq)
	b.setPiece(NewPiece(Rook, us), rookToSq)
	b.Castling.clearColor(us)
}

func (b *Board) updateCastlingOnRookCapture(rookColor Color, sq Square, captured Piece) {
	if captured.Type() != Rook {
		return
	}
	for _, kingside := range [2]bool{true, false} {
		if b.Castling.Has(rookColor, kingside) {
			king := b.kingSq[rookColor]
			if NewSquare(b.Castling.RookFile(rookColor, kingside), king.Rank()) == sq {
				b.Castling.clear(rookColor, kingside)
			}
		}
	}
}

func (b *Board) updateCastlingRightsForMove(us Color, from Square, moving Piece) {
	if moving.Type() == King {
		b.Castling.clearColor(us)
		return
	}
	if moving.Type() == Rook {
		king := b.kingSq[us]
		for _, kingside := range [2]bool{true, false} {
			if b.Castling.Has(us, kingside) && NewSquare(b.Castling.RookFile(us, kingside), king.Rank()) == from {
				b.Castling.clear(us, kingside)
			}
		}
	}
}

func (b *Board) isCastleDestination(c Color, kingFrom, to Square) bool {
	for _, kingside := range [2]bool{true, false} {
		if !b.Castling.Has(c, kingside) {
			continue
		}
		rank := kingFrom.Rank()
		dest := 6
		if !kingside {
			dest = 2
		}
		if !b.Chess960 {
			if to == NewSquare(dest, rank) {
				return true
			}
		} else if to == NewSquare(b.Castling.RookFile(c, kingside), rank) {
			return true
		}
	}
	return false
}

// UnmakeMove restores the board to the state before the most recent
// MakeMove. Callers must unmake moves in exact reverse order of making
// them (LIFO), matching the undo stack's invariants.
func (b *Board) UnmakeMove() {
	n := len(b.history)
	top := b.history[n-1]
	b.history = b.history[:n-1]
	b.BoardState = top.state
	b.repetitionLog = b.repetitionLog[:top.repLen]
}

// NullMoveUndo carries the minimal state a null move needs to restore.
type NullMoveUndo struct {
	enPassant Square
	hash      uint64
	checkers  SquareSet
	threats   SquareSet
}

// MakeNullMove passes the turn without moving a piece, used by null-move
// pruning (spec §4.9). The returned token must be passed to UnmakeNullMove.
func (b *Board) MakeNullMove() NullMoveUndo {
	undo := NullMoveUndo{enPassant: b.EnPassant, hash: b.Hash, checkers: b.Checkers, threats: b.Threats}
	if b.EnPassant != NoSquare {
		b.Hash ^= ZobristEPFile(b.EnPassant.File())
		b.EnPassant = NoSquare
	}
	b.SideToMove = b.SideToMove.Other()
	b.Hash ^= ZobristSideToMove()
	b.Ply++
	b.updateCheckersAndThreats()
	return undo
}

// UnmakeNullMove reverses MakeNullMove.
func (b *Board) UnmakeNullMove(u NullMoveUndo) {
	b.SideToMove = b.SideToMove.Other()
	b.EnPassant = u.enPassant
	b.Hash = u.hash
	b.Checkers = u.checkers
	b.Threats = u.threats
	b.Ply--
}

// HasNonPawnMaterial reports whether colour c has any piece other than
// pawns and king, used to avoid null-move pruning in pure king-and-pawn
// endgames where zugzwang is common.
func (b *Board) HasNonPawnMaterial(c Color) bool {
	return b.Layout.pieces(c, Knight)|b.Layout.pieces(c, Bishop)|
		b.Layout.pieces(c, Rook)|b.Layout.pieces(c, Queen) != 0
}

// IsDraw reports a fifty-move draw or a repetition as defined by
// IsRepetition (spec §4.9 step 1); insufficient material is handled by the
// caller via MaterialDrawn.
func (b *Board) IsDraw() bool {
	if b.HalfMove >= 100 {
		return true
	}
	return b.IsRepetition()
}

// IsRepetition reports whether the current position's hash has occurred at
// least once before within the irreversible-move window, so a single
// earlier occurrence (a twofold repetition) already counts.
func (b *Board) IsRepetition() bool {
	if len(b.repetitionLog) < 5 {
		return false
	}
	current := b.Hash
	count := 0
	// Positions repeat every 2 plies (same side to move); walk backwards.
	for i := len(b.repetitionLog) - 3; i >= 0; i -= 2 {
		if b.repetitionLog[i] == current {
			count++
			if count >= 1 {
				return true
			}
		}
	}
	return false
}

// InsufficientMaterial reports a dead draw by material (K vs K, K+N vs K,
// K+B vs K, same-colour bishops).
func (b *Board) InsufficientMaterial() bool {
	if b.Layout.byType[Pawn]|b.Layout.byType[Rook]|b.Layout.byType[Queen] != 0 {
		return false
	}
	whiteMinors := b.Layout.pieces(White, Knight).Count() + b.Layout.pieces(White, Bishop).Count()
	blackMinors := b.Layout.pieces(Black, Knight).Count() + b.Layout.pieces(Black, Bishop).Count()
	if whiteMinors+blackMinors <= 1 {
		return true
	}
	if whiteMinors == 1 && blackMinors == 1 &&
		b.Layout.pieces(White, Bishop) != 0 && b.Layout.pieces(Black, Bishop) != 0 {
		wb := b.Layout.pieces(White, Bishop).First()
		bb := b.Layout.pieces(Black, Bishop).First()
		return squareColor(wb) == squareColor(bb)
	}
	return false
}

func squareColor(sq Square) int { return (sq.File() + sq.Rank()) & 1 }
