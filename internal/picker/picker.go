// Package picker implements the staged move picker the search consults at
// every node instead of generating and sorting every move up front: the TT
// move, then killers, then the counter-move, then a single combined
// captures+quiets list scanned in score order with just-in-time SEE gating
// on captures. That list is generated and scored in full right after the TT
// move, before the killer and counter-move stages, so only a cutoff on the
// TT move skips that work; captures and quiets are not generated or scored
// in separate stages.
//
// Grounded on the teacher's internal/engine/ordering.go (MVV-LVA table,
// PickMove's lazy selection-sort) and search.go's stage ordering for the TT/
// killer/counter special cases, with the capture-ordering core rebuilt
// around cosmobobak/viridithas's movepicker.rs `yield_once`: a capture's
// exact-exchange value is checked once, in place, the moment it would
// otherwise be returned, rather than computed for every capture up front
// and routed to a separate trailing stage.
package picker

import (
	"github.com/corvidchess/corvid/internal/chess"
	"github.com/corvidchess/corvid/internal/history"
)

type stage int

const (
	stageTT stage = iota
	stageGenMoves
	stageKiller1
	stageKiller2
	stageCounter
	stageMain
	stageDone
)

// mvvLva[victim][attacker] mirrors the teacher's table: higher is better.
var mvvLva = [6][6]int{
	{15, 14, 14, 13, 12, 11},
	{25, 24, 24, 23, 22, 21},
	{35, 34, 34, 33, 32, 31},
	{45, 44, 44, 43, 42, 41},
	{55, 54, 54, 53, 52, 51},
	{0, 0, 0, 0, 0, 0},
}

// winningCaptureBonus marks a capture as provisionally good before its SEE
// has been checked, keeping it ranked above quiet moves until pickNext
// either confirms or demotes it.
const winningCaptureBonus = 1 << 20

// seeFailPenalty is subtracted from a capture's score the moment its SEE
// check fails, on top of removing winningCaptureBonus. It's large enough to
// push the move's score below history.clampAbs's quiet-score range (±16384,
// plus continuation history's contribution), so a losing capture always
// sorts after every quiet move rather than merely losing its provisional
// edge over them.
const seeFailPenalty = 1 << 21

// Picker yields moves for one search node in staged priority order.
type Picker struct {
	board   *chess.Board
	tables  *history.Tables
	ply     int
	ttMove  chess.Move
	counter chess.Move

	prevPiece chess.Piece // piece that played the move this node replies to
	prevTo    chess.Square

	capturesOnly bool // qsearch: only captures/promotions are ever generated or returned

	stage stage

	moves      chess.MoveList
	moveIdx    int
	seeChecked [256]bool // parallel to moves' slots; swapped alongside them

	skipped []chess.Move // moves already yielded, to avoid re-yielding them
}

// New builds a picker for the position at board, using ply for killer
// lookups, ttMove (may be chess.NoMove) first, and counter as the reply to
// the previous move (may be chess.NoMove). prevPiece/prevTo identify the
// move played to reach this node, for continuation-history lookups; pass
// chess.NoPiece when there is none (root, or after a null move).
// capturesOnly restricts the whole picker to captures and promotions, for
// quiescence search.
func New(b *chess.Board, tables *history.Tables, ply int, ttMove, counter chess.Move, prevPiece chess.Piece, prevTo chess.Square, capturesOnly bool) *Picker {
	return &Picker{
		board:        b,
		tables:       tables,
		ply:          ply,
		ttMove:       ttMove,
		counter:      counter,
		prevPiece:    prevPiece,
		prevTo:       prevTo,
		capturesOnly: capturesOnly,
		stage:        stageTT,
	}
}

func (p *Picker) alreadyYielded(m chess.Move) bool {
	for _, s := range p.skipped {
		if s == m {
			return true
		}
	}
	return false
}

// Next returns the next move to try, or (chess.NoMove, false) when exhausted.
func (p *Picker) Next() (chess.Move, bool) {
	for {
		switch p.stage {
		case stageTT:
			p.stage = stageGenMoves
			if p.ttMove != chess.NoMove && p.board.IsLegal(p.ttMove) {
				p.skipped = append(p.skipped, p.ttMove)
				return p.ttMove, true
			}

		case stageGenMoves:
			if p.capturesOnly {
				p.board.GenerateMoves(&p.moves, chess.GenCapturesOnly)
				p.stage = stageMain
			} else {
				p.board.GenerateMoves(&p.moves, chess.GenAll)
				p.stage = stageKiller1
			}
			p.scoreMoves()

		case stageKiller1:
			p.stage = stageKiller2
			k1, _ := p.tables.Killer(p.ply)
			if k1 != chess.NoMove && k1 != p.ttMove && !p.alreadyYielded(k1) && p.board.IsLegal(k1) {
				p.skipped = append(p.skipped, k1)
				return k1, true
			}

		case stageKiller2:
			p.stage = stageCounter
			_, k2 := p.tables.Killer(p.ply)
			if k2 != chess.NoMove && k2 != p.ttMove && !p.alreadyYielded(k2) && p.board.IsLegal(k2) {
				p.skipped = append(p.skipped, k2)
				return k2, true
			}

		case stageCounter:
			p.stage = stageMain
			if p.counter != chess.NoMove && p.counter != p.ttMove && !p.alreadyYielded(p.counter) && p.board.IsLegal(p.counter) {
				p.skipped = append(p.skipped, p.counter)
				return p.counter, true
			}

		case stageMain:
			if m, ok := p.pickNext(); ok {
				return m, true
			}
			p.stage = stageDone

		case stageDone:
			return chess.NoMove, false
		}
	}
}

// pickNext applies the teacher's PickMove lazy selection sort to the
// combined captures+quiets list, but gates each capture's score on its SEE
// value the moment it would otherwise be returned: a losing capture
// (SEE < 0) has its score demoted below the quiet range in place and is
// reconsidered against the rest of the list rather than being shipped off
// to a separate trailing stage, matching movepicker.rs's yield_once. In
// qsearch (capturesOnly) a losing capture is dropped instead of demoted, so
// it's never yielded at all.
func (p *Picker) pickNext() (chess.Move, bool) {
	for {
		if p.moveIdx >= p.moves.Len() {
			return chess.NoMove, false
		}

		best := p.moveIdx
		for j := p.moveIdx + 1; j < p.moves.Len(); j++ {
			if p.moves.Entry(j).Score > p.moves.Entry(best).Score {
				best = j
			}
		}
		if best != p.moveIdx {
			p.moves.Swap(p.moveIdx, best)
			p.seeChecked[p.moveIdx], p.seeChecked[best] = p.seeChecked[best], p.seeChecked[p.moveIdx]
		}

		m := p.moves.At(p.moveIdx)

		if m.IsCapture() && !p.seeChecked[p.moveIdx] {
			p.seeChecked[p.moveIdx] = true
			if !p.board.SEEGreaterOrEqual(m, 0) {
				if p.capturesOnly {
					p.moveIdx++
					continue
				}
				p.moves.Entry(p.moveIdx).Score -= winningCaptureBonus + seeFailPenalty
				continue
			}
		}

		p.moveIdx++
		if p.alreadyYielded(m) {
			continue
		}
		return m, true
	}
}

// scoreMoves scores every generated move once: captures by MVV-LVA plus
// capture history, provisionally marked as winning until pickNext's lazy
// SEE check either confirms or demotes them; quiets by history alone.
func (p *Picker) scoreMoves() {
	us := p.board.SideToMove
	for i := 0; i < p.moves.Len(); i++ {
		e := p.moves.Entry(i)
		m := e.Move

		if m.IsCapture() {
			attacker := p.board.PieceAt(m.From())
			var victim chess.PieceType
			if m.IsEnPassant() {
				victim = chess.Pawn
			} else {
				victim = p.board.PieceAt(m.To()).Type()
			}
			score := int32(mvvLva[victim][attacker.Type()]) * 1000
			score += p.tables.CaptureHistory(attacker, m.To(), victim) / 4
			score += winningCaptureBonus
			e.Score = score
			continue
		}

		piece := p.board.PieceAt(m.From())
		score := p.tables.MainHistory(us, m.From(), m.To())
		score += p.tables.ContinuationHistory(p.prevPiece, p.prevTo, piece, m.To()) / 2
		e.Score = score
	}
}
