package chess

// GenMode selects which move classes GenerateMoves produces, letting the
// move picker (spec §5) ask for captures and quiets in separate stages.
type GenMode int

const (
	GenAll GenMode = iota
	GenCapturesOnly
	GenQuietsOnly
)

// GenerateMoves appends every legal move available to the side to move into
// list, filtered by mode. Pin and check-evasion legality is enforced inline
// (spec §4.2) rather than by generate-then-filter, so the hot path never
// constructs an illegal move just to discard it.
func (b *Board) GenerateMoves(list *MoveList, mode GenMode) {
	us := b.SideToMove
	them := us.Other()
	king := b.kingSq[us]
	occ := b.Occupied()
	pinned := b.ComputePinned(us)

	numCheckers := b.Checkers.Count()

	var targetMask SquareSet
	switch {
	case numCheckers >= 2:
		// Double check: only king moves are legal.
		b.generateKingMoves(list, us, them, king, mode)
		return
	case numCheckers == 1:
		checker := b.Checkers.First()
		targetMask = SquareBB(checker) | Between(checker, king)
	default:
		targetMask = Universe
	}

	b.generatePawnMoves(list, us, them, occ, targetMask, pinned, king, mode)
	b.generatePieceMoves(list, Knight, us, occ, targetMask, pinned, king, mode)
	b.generatePieceMoves(list, Bishop, us, occ, targetMask, pinned, king, mode)
	b.generatePieceMoves(list, Rook, us, occ, targetMask, pinned, king, mode)
	b.generatePieceMoves(list, Queen, us, occ, targetMask, pinned, king, mode)
	b.generateKingMoves(list, us, them, king, mode)

	if numCheckers == 0 && mode != GenCapturesOnly {
		b.generateCastling(list, us, king)
	}
}

// pinRay returns the full ray through king and the pinned piece's square,
// i.e. the only squares a pinned piece may still move along.
func pinRay(king, sq Square) SquareSet {
	return RayThrough(king, sq)
}

// relStartPushRank returns the rank a pawn occupies after one push from its
// home rank, used to identify which single-pushed pawns may push again.
func relStartPushRank(c Color) SquareSet {
	if c == White {
		return Rank3
	}
	return Rank6
}

func (b *Board) generatePawnMoves(list *MoveList, us, them Color, occ SquareSet, targetMask SquareSet, pinned SquareSet, king Square, mode GenMode) {
	pawns := b.Layout.pieces(us, Pawn)
	var promoRank SquareSet
	var push func(SquareSet) SquareSet
	var pushBack func(SquareSet) SquareSet

	if us == White {
		push = SquareSet.ShiftN
		pushBack = SquareSet.ShiftS
		promoRank = Rank8
	} else {
		push = SquareSet.ShiftS
		pushBack = SquareSet.ShiftN
		promoRank = Rank1
	}

	if mode != GenCapturesOnly {
		singlePush := push(pawns) &^ occ
		doublePush := push(singlePush&relStartPushRank(us)) &^ occ

		(singlePush &^ promoRank & targetMask).ForEach(func(to Square) {
			from := pushBack(SquareBB(to)).First()
			if pinOK(from, to, king, pinned) {
				list.Add(NewMove(from, to))
			}
		})
		(singlePush & promoRank & targetMask).ForEach(func(to Square) {
			from := pushBack(SquareBB(to)).First()
			if pinOK(from, to, king, pinned) {
				addPromotions(list, from, to, false)
			}
		})
		(doublePush & targetMask).ForEach(func(to Square) {
			from := pushBack(pushBack(SquareBB(to))).First()
			if pinOK(from, to, king, pinned) {
				list.Add(NewDoublePush(from, to))
			}
		})
	}

	if mode == GenQuietsOnly {
		return
	}

	capturesTargets := b.Layout.byColor[them]
	pawns.ForEach(func(from Square) {
		attacks := PawnAttacks(us, from) & capturesTargets & targetMask
		(attacks &^ promoRank).ForEach(func(to Square) {
			if pinOK(from, to, king, pinned) {
				list.Add(NewCapture(from, to))
			}
		})
		(attacks & promoRank).ForEach(func(to Square) {
			if pinOK(from, to, king, pinned) {
				addPromotions(list, from, to, true)
			}
		})
	})

	if b.EnPassant != NoSquare {
		capSq := b.EnPassant
		attackers := PawnAttacks(them, capSq) & pawns
		attackers.ForEach(func(from Square) {
			if b.enPassantLegal(from, capSq, us, them, king, occ) {
				list.Add(NewEnPassant(from, capSq))
			}
		})
	}
}

// enPassantLegal handles the rare case where capturing en passant exposes
// the king to a horizontal rook/queen pin along the fifth/fourth rank, which
// ordinary pin detection misses because both pawns vanish simultaneously.
func (b *Board) enPassantLegal(from, capSq Square, us, them Color, king Square, occ SquareSet) bool {
	victim := capSq - 8
	if us == Black {
		victim = capSq + 8
	}
	afterOcc := (occ &^ SquareBB(from) &^ SquareBB(victim)) | SquareBB(capSq)
	rookAttackers := RookAttacks(king, afterOcc) & (b.Layout.pieces(them, Rook) | b.Layout.pieces(them, Queen))
	if rookAttackers != 0 {
		return false
	}
	bishopAttackers := BishopAttacks(king, afterOcc) & (b.Layout.pieces(them, Bishop) | b.Layout.pieces(them, Queen))
	return bishopAttackers == 0
}

func addPromotions(list *MoveList, from, to Square, capture bool) {
	list.Add(NewPromotion(from, to, Queen, capture))
	list.Add(NewPromotion(from, to, Rook, capture))
	list.Add(NewPromotion(from, to, Bishop, capture))
	list.Add(NewPromotion(from, to, Knight, capture))
}

// pinOK reports whether moving a pinned piece from->to keeps it on the pin
// ray (or the piece isn't pinned at all).
func pinOK(from, to, king Square, pinned SquareSet) bool {
	if !pinned.Has(from) {
		return true
	}
	return pinRay(king, from).Has(to)
}

func (b *Board) generatePieceMoves(list *MoveList, pt PieceType, us Color, occ SquareSet, targetMask SquareSet, pinned SquareSet, king Square, mode GenMode) {
	own := b.Layout.byColor[us]
	them := b.Layout.byColor[us.Other()]
	b.Layout.pieces(us, pt).ForEach(func(from Square) {
		if pinned.Has(from) && pt == Knight {
			return // a pinned knight has no legal moves at all
		}
		attacks := PieceAttacks(pt, us, from, occ) &^ own & targetMask
		if pinned.Has(from) {
			attacks &= pinRay(king, from)
		}
		switch mode {
		case GenCapturesOnly:
			attacks &= them
		case GenQuietsOnly:
			attacks &^= them
		}
		attacks.ForEach(func(to Square) {
			if them.Has(to) {
				list.Add(NewCapture(from, to))
			} else {
				list.Add(NewMove(from, to))
			}
		})
	})
}

func (b *Board) generateKingMoves(list *MoveList, us, them Color, king Square, mode GenMode) {
	own := b.Layout.byColor[us]
	enemy := b.Layout.byColor[them]
	attacks := KingAttacks(king) &^ own &^ b.Threats
	switch mode {
	case GenCapturesOnly:
		attacks &= enemy
	case GenQuietsOnly:
		attacks &^= enemy
	}
	attacks.ForEach(func(to Square) {
		if enemy.Has(to) {
			list.Add(NewCapture(king, to))
		} else {
			list.Add(NewMove(king, to))
		}
	})
}

func (b *Board) generateCastling(list *MoveList, us Color, king Square) {
	for _, kingside := range [2]bool{true, false} {
		if !b.Castling.Has(us, kingside) {
			continue
		}
		rookFile := b.Castling.RookFile(us, kingside)
		rank := king.Rank()
		rookSq := NewSquare(rookFile, rank)

		kingDest := 6
		rookDest := 5
		if !kingside {
			kingDest = 2
			rookDest = 3
		}
		kingToSq := NewSquare(kingDest, rank)
		rookToSq := NewSquare(rookDest, rank)

		if !b.castlingPathClear(king, rookSq, kingToSq, rookToSq) {
			continue
		}
		if !b.castlingKingPathSafe(king, kingToSq) {
			continue
		}
		to := kingToSq
		if b.Chess960 {
			to = rookSq // Chess960 castles are encoded king-to-rook
		}
		list.Add(NewCastle(king, to))
	}
}

// castlingPathClear verifies every square the king and rook pass through
// (other than the two squares they start on) is empty, matching Chess960's
// requirement that the whole travel range be unobstructed.
func (b *Board) castlingPathClear(king, rook, kingTo, rookTo Square) bool {
	occ := b.Occupied()
	path := squareRange(king, kingTo) | squareRange(rook, rookTo)
	path &^= SquareBB(king) | SquareBB(rook)
	return occ&path == 0
}

func squareRange(a, z Square) SquareSet {
	lo, hi := a.File(), z.File()
	if lo > hi {
		lo, hi = hi, lo
	}
	var ss SquareSet
	for f := lo; f <= hi; f++ {
		ss |= SquareBB(NewSquare(f, a.Rank()))
	}
	return ss
}

// castlingKingPathSafe checks the king is not in check, does not pass
// through check, and does not land in check.
func (b *Board) castlingKingPathSafe(from, to Square) bool {
	path := squareRange(from, to)
	return b.Threats&path == 0
}

// IsLegal performs a full from-scratch legality check, used when validating
// moves parsed from UCI/SAN text rather than generator output.
func (b *Board) IsLegal(m Move) bool {
	var list MoveList
	b.GenerateMoves(&list, GenAll)
	for i := 0; i < list.Len(); i++ {
		if list.At(i) == m {
			return true
		}
	}
	return false
}
