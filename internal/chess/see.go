package chess

// seeValues mirrors MaterialValue but is declared separately so SEE tuning
// never has to fight move ordering's own table (spec §4.6). kingValue
// stands in for the king's infinite value: large enough to dominate every
// swap-algorithm comparison without risking overflow in the gain array.
const kingValue = 1_000_000

var seeValues = [7]int{254, 453, 458, 712, 1278, kingValue, 0}

// SEE runs the static-exchange swap algorithm on m and returns the net
// material gain for the side to move assuming best play by both sides on
// the single destination square (spec §4.6). It ignores pins: a pinned
// defender is still counted as a potential recapture, which is the
// standard simplification every engine in this family makes.
func (b *Board) SEE(m Move) int {
	from, to := m.From(), m.To()
	attacker := b.PieceAt(from)
	if attacker == NoPiece {
		return 0
	}

	var gain0 int
	if m.IsEnPassant() {
		gain0 = seeValues[Pawn]
	} else {
		victim := b.PieceAt(to)
		if victim == NoPiece {
			return 0
		}
		gain0 = seeValues[victim.Type()]
	}
	if m.IsPromotion() {
		gain0 += seeValues[m.Promotion()] - seeValues[Pawn]
	}

	return b.seeSwap(to, from, attacker, gain0)
}

// SEEGreaterOrEqual reports whether m's SEE value meets threshold, the only
// question late-move/capture pruning (spec §4.9, §5) ever asks. It computes
// the full exchange value with SEE and compares it to threshold.
func (b *Board) SEEGreaterOrEqual(m Move, threshold int) bool {
	return b.SEE(m) >= threshold
}

func (b *Board) seeSwap(target, excludeFrom Square, firstAttacker Piece, initialGain int) int {
	var gain [32]int
	d := 0
	gain[d] = initialGain

	occupied := b.Occupied() &^ SquareBB(excludeFrom)
	attackerValue := seeValues[firstAttacker.Type()]
	side := firstAttacker.Color().Other()

	for {
		d++
		if d >= len(gain) {
			break
		}
		gain[d] = attackerValue - gain[d-1]
		if max(-gain[d-1], gain[d]) < 0 {
			break
		}

		sq, piece := b.leastValuableAttacker(target, side, occupied)
		if sq == NoSquare {
			break
		}
		occupied &^= SquareBB(sq)
		attackerValue = seeValues[piece.Type()]
		side = side.Other()
	}

	for d--; d > 0; d-- {
		gain[d-1] = -max(-gain[d-1], gain[d])
	}
	return gain[0]
}

// leastValuableAttacker finds the cheapest side-coloured piece that attacks
// target given occupied, re-deriving slider attacks each call so x-rayed
// attackers revealed mid-swap are picked up automatically.
func (b *Board) leastValuableAttacker(target Square, side Color, occupied SquareSet) (Square, Piece) {
	if attackers := PawnAttacks(side.Other(), target) & b.Layout.pieces(side, Pawn) & occupied; attackers != 0 {
		return attackers.First(), NewPiece(Pawn, side)
	}
	if attackers := KnightAttacks(target) & b.Layout.pieces(side, Knight) & occupied; attackers != 0 {
		return attackers.First(), NewPiece(Knight, side)
	}
	bishopAtk := BishopAttacks(target, occupied)
	if attackers := bishopAtk & b.Layout.pieces(side, Bishop) & occupied; attackers != 0 {
		return attackers.First(), NewPiece(Bishop, side)
	}
	rookAtk := RookAttacks(target, occupied)
	if attackers := rookAtk & b.Layout.pieces(side, Rook) & occupied; attackers != 0 {
		return attackers.First(), NewPiece(Rook, side)
	}
	if attackers := (bishopAtk | rookAtk) & b.Layout.pieces(side, Queen) & occupied; attackers != 0 {
		return attackers.First(), NewPiece(Queen, side)
	}
	if attackers := KingAttacks(target) & b.Layout.pieces(side, King) & occupied; attackers != 0 {
		return attackers.First(), NewPiece(King, side)
	}
	return NoSquare, NoPiece
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
