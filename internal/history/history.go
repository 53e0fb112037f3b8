// Package history implements the move-ordering and correction tables the
// search consults every node: killer moves, the main/capture/countermove
// history heuristics, continuation history, and gravity-updated static-eval
// correction (spec §7). Everything here is thread-local — each search worker
// owns one Tables value — since history is a heuristic hint, not a
// correctness requirement, and sharing it across goroutines would need
// synchronization that buys nothing.
//
// Grounded on the teacher's internal/engine/ordering.go and correction.go,
// generalized to the richer key set (pawn/minor/major/non-pawn hashes)
// spec §7 asks for, in the style of cosmobobak/viridithas's history.rs.
package history

import "github.com/corvidchess/corvid/internal/chess"

const (
	maxPly    = 246
	maxBonus  = 16384
	clampAbs  = 16384
	corrClamp = 1024 // correction history output clamp, in centipawns
)

// Tables bundles every move-ordering and correction heuristic a single
// search thread maintains across one `go` command.
type Tables struct {
	killers [maxPly][2]chess.Move

	// main history: [color][from][to]
	main [2][64][64]int32

	// counter-move table: [piece][to] -> move played in reply
	counter [12][64]chess.Move

	// capture history: [attackerPiece][to][victimType]
	capture [12][64][6]int32

	// continuation history: [prevPiece][prevTo][piece][to], a single ply of
	// "what followed what" context (spec §7's continuation history).
	continuation [12][64][12][64]int32

	// correction history, one table per key family (spec §7): pawn
	// structure, minor placement, major placement, and non-pawn material
	// by colour, each keyed by the low 16 bits of its respective hash.
	pawnCorr     [2][65536]int16
	minorCorr    [2][65536]int16
	majorCorr    [2][65536]int16
	nonPawnCorr  [2][2][65536]int16
}

// New returns a zeroed table set.
func New() *Tables { return &Tables{} }

// NewSearch runs between `go` commands: it clears the killers and halves
// the main, capture and continuation histories rather than wiping them, so
// heuristics built up in earlier searches still carry some weight (spec
// §7). Counter-moves and correction tables are left unchanged.
func (t *Tables) NewSearch() {
	for i := range t.killers {
		t.killers[i][0], t.killers[i][1] = chess.NoMove, chess.NoMove
	}
	for c := range t.main {
		for f := range t.main[c] {
			for to := range t.main[c][f] {
				t.main[c][f][to] /= 2
			}
		}
	}
	for p := range t.capture {
		for sq := range t.capture[p] {
			for v := range t.capture[p][sq] {
				t.capture[p][sq][v] /= 2
			}
		}
	}
	for a := range t.continuation {
		for at := range t.continuation[a] {
			for b := range t.continuation[a][at] {
				for bt := range t.continuation[a][at][b] {
					t.continuation[a][at][b][bt] /= 2
				}
			}
		}
	}
}

// gravity applies an exponential-moving-average-style update toward target,
// new = old + (target - old) * weight / scale. Only the correction tables
// use it; the move-ordering tables use the clampAbs-scaled bonus update in
// UpdateMain.
func gravity(old, target int32, weight, scale int32) int32 {
	return old + (target-old)*weight/scale
}

func clamp32(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Killer returns the two killer moves recorded at ply.
func (t *Tables) Killer(ply int) (chess.Move, chess.Move) {
	if ply < 0 || ply >= maxPly {
		return chess.NoMove, chess.NoMove
	}
	return t.killers[ply][0], t.killers[ply][1]
}

// IsKiller reports whether m is one of ply's killers.
func (t *Tables) IsKiller(ply int, m chess.Move) bool {
	a, b := t.Killer(ply)
	return m == a || m == b
}

// UpdateKiller records a fresh beta-cutoff quiet move, demoting the
// existing first killer to second.
func (t *Tables) UpdateKiller(ply int, m chess.Move) {
	if ply < 0 || ply >= maxPly || t.killers[ply][0] == m {
		return
	}
	t.killers[ply][1] = t.killers[ply][0]
	t.killers[ply][0] = m
}

// MainHistory returns the quiet-move ordering score for (color, from, to).
func (t *Tables) MainHistory(c chess.Color, from, to chess.Square) int32 {
	return t.main[c][from][to]
}

// UpdateMain applies a depth-scaled bonus/malus to a quiet move's history,
// and proportionally punishes every other quiet move tried earlier at the
// same node (spec §7's "malus the moves that failed to cause the cutoff").
func (t *Tables) UpdateMain(c chess.Color, m chess.Move, bonus int32, failed []chess.Move) {
	bonus = clamp32(bonus, -maxBonus, maxBonus)
	cell := &t.main[c][m.From()][m.To()]
	*cell = clamp32(*cell+bonus-(*cell*absI32(bonus))/clampAbs, -clampAbs, clampAbs)
	for _, fm := range failed {
		if fm == m {
			continue
		}
		fc := &t.main[c][fm.From()][fm.To()]
		*fc = clamp32(*fc-bonus-(*fc*absI32(bonus))/clampAbs, -clampAbs, clampAbs)
	}
}

func absI32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// CaptureHistory returns the capture-ordering score for a given attacker
// piece, destination square, and victim type.
func (t *Tables) CaptureHistory(attacker chess.Piece, to chess.Square, victim chess.PieceType) int32 {
	if attacker == chess.NoPiece || victim >= chess.King {
		return 0
	}
	return t.capture[attacker][to][victim]
}

// UpdateCapture applies the same gravity update as UpdateMain to the
// capture-history table.
func (t *Tables) UpdateCapture(attacker chess.Piece, to chess.Square, victim chess.PieceType, bonus int32) {
	if attacker == chess.NoPiece || victim >= chess.King {
		return
	}
	bonus = clamp32(bonus, -maxBonus, maxBonus)
	cell := &t.capture[attacker][to][victim]
	*cell = clamp32(*cell+bonus-(*cell*absI32(bonus))/clampAbs, -clampAbs, clampAbs)
}

// CounterMove returns the stored reply to prevMove, if any.
func (t *Tables) CounterMove(prevPiece chess.Piece, prevTo chess.Square) chess.Move {
	if prevPiece == chess.NoPiece {
		return chess.NoMove
	}
	return t.counter[prevPiece][prevTo]
}

// UpdateCounterMove records m as the reply to a move by prevPiece landing
// on prevTo.
func (t *Tables) UpdateCounterMove(prevPiece chess.Piece, prevTo chess.Square, m chess.Move) {
	if prevPiece == chess.NoPiece {
		return
	}
	t.counter[prevPiece][prevTo] = m
}

// ContinuationHistory returns the "what followed what" score for playing
// (piece, to) immediately after (prevPiece, prevTo).
func (t *Tables) ContinuationHistory(prevPiece chess.Piece, prevTo chess.Square, piece chess.Piece, to chess.Square) int32 {
	if prevPiece == chess.NoPiece || piece == chess.NoPiece {
		return 0
	}
	return t.continuation[prevPiece][prevTo][piece][to]
}

// UpdateContinuation applies a gravity update to the continuation-history
// cell for the (prevPiece,prevTo) -> (piece,to) transition.
func (t *Tables) UpdateContinuation(prevPiece chess.Piece, prevTo chess.Square, piece chess.Piece, to chess.Square, bonus int32) {
	if prevPiece == chess.NoPiece || piece == chess.NoPiece {
		return
	}
	bonus = clamp32(bonus, -maxBonus, maxBonus)
	cell := &t.continuation[prevPiece][prevTo][piece][to]
	*cell = clamp32(*cell+bonus-(*cell*absI32(bonus))/clampAbs, -clampAbs, clampAbs)
}

// correctionKey slices the low 16 bits off a Zobrist-family hash.
func correctionKey(hash uint64) uint16 { return uint16(hash) }

// CorrectionTotal sums every correction family's contribution for the given
// position, to be added to a static evaluation before it is returned or
// stored (spec §7).
func (t *Tables) CorrectionTotal(stm chess.Color, pawnHash, minorHash, majorHash uint64, nonPawn [2]uint64) int {
	total := int(t.pawnCorr[stm][correctionKey(pawnHash)])
	total += int(t.minorCorr[stm][correctionKey(minorHash)])
	total += int(t.majorCorr[stm][correctionKey(majorHash)])
	total += int(t.nonPawnCorr[stm][chess.White][correctionKey(nonPawn[chess.White])])
	total += int(t.nonPawnCorr[stm][chess.Black][correctionKey(nonPawn[chess.Black])])
	return clampInt(total/4, -corrClamp, corrClamp)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// UpdateCorrection records the discrepancy between a static evaluation and
// the score the search actually returned, moving each cell 1/16 of the way
// toward a depth-scaled bonus with gravity.
func (t *Tables) UpdateCorrection(stm chess.Color, pawnHash, minorHash, majorHash uint64, nonPawn [2]uint64, staticEval, searchScore, depth int) {
	if depth < 1 {
		return
	}
	bonus := int16(clampInt((searchScore-staticEval)*depth/8, -256, 256))
	updateCorrCell(&t.pawnCorr[stm][correctionKey(pawnHash)], bonus)
	updateCorrCell(&t.minorCorr[stm][correctionKey(minorHash)], bonus)
	updateCorrCell(&t.majorCorr[stm][correctionKey(majorHash)], bonus)
	updateCorrCell(&t.nonPawnCorr[stm][chess.White][correctionKey(nonPawn[chess.White])], bonus)
	updateCorrCell(&t.nonPawnCorr[stm][chess.Black][correctionKey(nonPawn[chess.Black])], bonus)
}

func updateCorrCell(cell *int16, bonus int16) {
	newVal := gravity(int32(*cell), int32(bonus), 1, 16)
	*cell = int16(clamp32(newVal, -16000, 16000))
}
