// Package search implements alpha-beta principal-variation search with
// iterative deepening, aspiration windows, null-move pruning, reverse
// futility pruning, razoring, late-move reductions, singular extensions,
// and mate-distance pruning (spec §4.9). One Searcher owns one board and
// one set of history tables; Lazy SMP parallelism (spec §4.10) runs
// several Searchers concurrently against a shared internal/tt.Table from
// internal/engine.
//
// Grounded on the teacher's internal/engine/worker.go negamax loop and
// search.go's iterative-deepening driver, supplemented with razoring,
// singular extensions, mate-distance pruning, and asymmetric aspiration
// widening from cosmobobak/viridithas's search.rs (original_source/),
// which the teacher's simplified worker does not implement.
package search

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/corvidchess/corvid/internal/chess"
	"github.com/corvidchess/corvid/internal/config"
	"github.com/corvidchess/corvid/internal/history"
	"github.com/corvidchess/corvid/internal/nnue"
	"github.com/corvidchess/corvid/internal/picker"
	"github.com/corvidchess/corvid/internal/tablebase"
	"github.com/corvidchess/corvid/internal/tt"
)

const (
	maxPly   = tt.MaxPly
	infinity = tt.MateScore + 1
)

// Limits bounds a search: whichever condition is reached first stops it.
type Limits struct {
	Depth     int
	Nodes     uint64
	MoveTime  time.Duration
	WTime     time.Duration
	BTime     time.Duration
	WInc      time.Duration
	BInc      time.Duration
	MovesToGo int
	Infinite  bool
}

// Info is reported once per completed iterative-deepening depth.
type Info struct {
	Depth int
	Score int
	Nodes uint64
	PV    []chess.Move
	Time  time.Duration
}

type stackEntry struct {
	staticEval int
	move       chess.Move
	movedPiece chess.Piece
	excluded   chess.Move
	pvMoves    []chess.Move
}

// Searcher runs iterative-deepening PVS against one board. Not safe for
// concurrent use; Lazy SMP workers each own their own Searcher sharing
// only the *tt.Table, the tablebase prober and the stop flag, each with its
// own copy of config.Params (spec §4.10).
type Searcher struct {
	board  *chess.Board
	tt     *tt.Table
	hist   *history.Tables
	eval   *nnue.Evaluator
	tb     tablebase.Prober
	cfg    config.Params
	id     int // 0 is the main thread; only it reports UCI info

	nodes  atomic.Uint64
	depth  atomic.Int32 // last iterative-deepening depth this worker completed
	stop   *atomic.Bool
	start  time.Time
	limits Limits
	stack  [maxPly + 8]stackEntry

	OnInfo func(Info)
}

// Depth reports the deepest iteration this worker has finished, so the
// thread pool can pick the most advanced result among Lazy SMP workers
// instead of always trusting a fixed worker (spec §4.10).
func (s *Searcher) Depth() int { return int(s.depth.Load()) }

// New builds a Searcher for board, sharing table, tb and stop with the
// rest of the thread pool; hist and eval belong to this worker alone.
func New(id int, board *chess.Board, table *tt.Table, hist *history.Tables, eval *nnue.Evaluator, tb tablebase.Prober, cfg config.Params, stop *atomic.Bool) *Searcher {
	return &Searcher{id: id, board: board, tt: table, hist: hist, eval: eval, tb: tb, cfg: cfg, stop: stop}
}

func (s *Searcher) Nodes() uint64 { return s.nodes.Load() }

func (s *Searcher) timeUp() bool {
	if s.limits.Infinite {
		return false
	}
	if s.limits.MoveTime > 0 && time.Since(s.start) >= s.limits.MoveTime {
		return true
	}
	if s.limits.Nodes > 0 && s.nodes.Load() >= s.limits.Nodes {
		return true
	}
	return false
}

// Run performs iterative deepening from startDepth (1 for the main thread,
// later for helpers) up to limits.Depth (or until limits stop it),
// returning the best move found.
func (s *Searcher) Run(limits Limits) (chess.Move, int) {
	s.start = time.Now()
	s.limits = limits
	s.hist.NewSearch()
	s.tt.NewSearch()
	s.eval.Reset()
	s.eval.Refresh(s.board)
	s.depth.Store(0)

	maxDepth := limits.Depth
	if maxDepth <= 0 || maxDepth > maxPly {
		maxDepth = maxPly
	}

	var bestMove chess.Move
	bestScore := 0
	alpha, beta := -infinity, infinity

	// Helper workers (id > 0) start iterative deepening a few plies ahead of
	// the main thread so Lazy SMP's threads aren't all redoing the same
	// shallow, cheap depths in lockstep (spec §4.10).
	startDepth := 1
	if s.id > 0 {
		startDepth = 1 + s.id%3
	}

	for depth := startDepth; depth <= maxDepth; depth++ {
		if s.stop.Load() || s.timeUp() {
			break
		}

		window := s.cfg.AspirationWindow
		if depth >= s.cfg.AspirationMinDepth && window > 0 {
			alpha = bestScore - window
			beta = bestScore + window
		} else {
			alpha, beta = -infinity, infinity
		}

		var score int
		for {
			score = s.negamax(depth, 0, alpha, beta, false)
			if s.stop.Load() {
				break
			}
			if score <= alpha {
				alpha -= window
				if alpha < -infinity {
					alpha = -infinity
				}
				window *= 2
				continue
			}
			if score >= beta {
				beta += window
				if beta > infinity {
					beta = infinity
				}
				window *= 2
				continue
			}
			break
		}

		if s.stop.Load() {
			break
		}
		bestScore = score
		if len(s.stack[0].pvMoves) > 0 {
			bestMove = s.stack[0].pvMoves[0]
		}
		s.depth.Store(int32(depth))

		if s.id == 0 && s.OnInfo != nil {
			s.OnInfo(Info{Depth: depth, Score: bestScore, Nodes: s.nodes.Load(), PV: append([]chess.Move(nil), s.stack[0].pvMoves...), Time: time.Since(s.start)})
		}

		if bestScore >= tt.MateScore-maxPly || bestScore <= -tt.MateScore+maxPly {
			// Mate found; no point searching deeper than the found mate.
			if depth > 4 {
				break
			}
		}
	}

	return bestMove, bestScore
}

func (s *Searcher) checkStop() bool {
	if s.nodes.Load()&2047 == 0 && (s.stop.Load() || s.timeUp()) {
		s.stop.Store(true)
		return true
	}
	return false
}

func (s *Searcher) evaluate() int {
	if s.tb != nil && s.tb.Available() {
		if r := s.tb.Probe(s.board); r.Found {
			return tablebase.WDLToScore(r.WDL, 0)
		}
	}
	raw := s.eval.Evaluate(s.board)
	corr := s.hist.CorrectionTotal(s.board.SideToMove, s.board.PawnHash, s.board.MinorHash, s.board.MajorHash, s.board.NonPawnHash)
	return clampEval(raw + corr)
}

func clampEval(v int) int {
	const limit = tt.MateScore - maxPly - 1
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}

// negamax searches one node. cutNode hints that the node is expected to
// fail high (spec §4.9's reduced verification for all-node children).
func (s *Searcher) negamax(depth, ply int, alpha, beta int, cutNode bool) int {
	s.nodes.Add(1)
	if s.checkStop() {
		return 0
	}

	if ply >= maxPly-1 {
		return s.evaluate()
	}

	pvNode := beta-alpha > 1
	s.stack[ply].pvMoves = nil

	if ply > 0 {
		if s.board.IsDraw() {
			return 0
		}
		// Mate-distance pruning (spec §4.9 step 2): no line at this ply can
		// beat a mate found closer to the root.
		alpha = max(alpha, -tt.MateScore+ply)
		beta = min(beta, tt.MateScore-ply)
		if alpha >= beta {
			return alpha
		}
	}

	if depth <= 0 {
		return s.quiescence(ply, alpha, beta)
	}

	inCheck := s.board.InCheck()

	var ttMove chess.Move
	var ttEntry tt.Entry
	ttHit := false
	if s.stack[ply].excluded == chess.NoMove {
		if e, ok := s.tt.Probe(s.board.Hash); ok {
			ttEntry = e
			ttHit = true
			ttMove = chess.Move(e.Move)
			if int(e.Depth) >= depth && !pvNode {
				score := tt.ScoreFromTT(e.Score, ply)
				switch e.Bound {
				case tt.BoundExact:
					return score
				case tt.BoundLower:
					if score > alpha {
						alpha = score
					}
				case tt.BoundUpper:
					if score < beta {
						beta = score
					}
				}
				if alpha >= beta {
					return score
				}
			}
		}
	}

	var staticEval int
	if inCheck {
		staticEval = -tt.MateScore + ply
	} else {
		staticEval = s.evaluate()
	}
	s.stack[ply].staticEval = staticEval

	improving := ply >= 2 && !inCheck && staticEval > s.stack[ply-2].staticEval

	if !pvNode && !inCheck && s.stack[ply].excluded == chess.NoMove {
		// Reverse futility pruning.
		if depth <= s.cfg.RFPMaxDepth {
			margin := s.cfg.RFPMargin * depth
			if improving {
				margin -= s.cfg.RFPMargin / 2
			}
			if staticEval-margin >= beta {
				return staticEval
			}
		}

		// Razoring: static eval is so far below alpha that only a
		// tactical swing through quiescence search could save it.
		if depth <= s.cfg.RazorMaxDepth && staticEval+s.cfg.RazorMargin*depth <= alpha {
			score := s.quiescence(ply, alpha, alpha+1)
			if score <= alpha {
				return score
			}
		}

		// Null-move pruning.
		if depth >= s.cfg.NullMoveMinDepth && staticEval >= beta && s.board.HasNonPawnMaterial(s.board.SideToMove) {
			r := s.cfg.NullMoveBaseR + depth/s.cfg.NullMoveDepthDiv
			s.eval.Push()
			undo := s.board.MakeNullMove()
			s.stack[ply].move = chess.NoMove
			score := -s.negamax(depth-1-r, ply+1, -beta, -beta+1, !cutNode)
			s.board.UnmakeNullMove(undo)
			s.eval.Pop()
			if s.stop.Load() {
				return 0
			}
			if score >= beta {
				if score >= tt.MateScore-maxPly {
					score = beta
				}
				return score
			}
		}
	}

	// Singular extension verification search (spec §4.9 step 6).
	singularExt := 0
	if depth >= s.cfg.SingularMinDepth && ttMove != chess.NoMove && s.stack[ply].excluded == chess.NoMove &&
		ttHit && int(ttEntry.Depth) >= depth-3 && ttEntry.Bound != tt.BoundUpper {
		singularBeta := tt.ScoreFromTT(ttEntry.Score, ply) - s.cfg.SingularMargin - depth*2
		s.stack[ply].excluded = ttMove
		score := s.negamax((depth-1)/2, ply, singularBeta-1, singularBeta, cutNode)
		s.stack[ply].excluded = chess.NoMove
		if s.stop.Load() {
			return 0
		}
		if score < singularBeta {
			singularExt = 1
		} else if singularBeta >= beta {
			return singularBeta
		}
	}

	var prevPiece chess.Piece = chess.NoPiece
	var prevTo chess.Square
	if ply > 0 && s.stack[ply-1].move != chess.NoMove {
		prevPiece = s.stack[ply-1].movedPiece
		prevTo = s.stack[ply-1].move.To()
	}
	counter := s.hist.CounterMove(prevPiece, prevTo)

	pk := picker.New(s.board, s.hist, ply, ttMove, counter, prevPiece, prevTo, false)

	var bestMove chess.Move = chess.NoMove
	bestScore := -infinity
	legalMoves := 0
	var triedQuiets []chess.Move
	originalAlpha := alpha

	for {
		m, ok := pk.Next()
		if !ok {
			break
		}
		if m == s.stack[ply].excluded {
			continue
		}
		if !s.board.IsLegal(m) {
			continue
		}
		legalMoves++

		isCapture := m.IsCapture()
		isPromo := m.IsPromotion()
		movedPiece := s.board.PieceAt(m.From())
		giveCheck := false // cheap approximation: determined post-make below

		// Late-move pruning of quiet moves and SEE-based pruning of captures
		// and quiets, away from the PV.
		if !pvNode && !inCheck && bestScore > -tt.MateScore+maxPly && depth <= s.cfg.LMRMinDepth+3 {
			if !isCapture && !isPromo && legalMoves > s.cfg.LMRMinMoveCount+depth*depth {
				continue
			}
			if isCapture && !s.board.SEEGreaterOrEqual(m, s.cfg.SEECaptureMargin*depth) {
				continue
			}
			if !isCapture && !s.board.SEEGreaterOrEqual(m, s.cfg.SEEQuietMargin*depth) {
				continue
			}
		}

		captured := capturedPiece(s.board, m)
		s.stack[ply].move = m
		s.stack[ply].movedPiece = movedPiece
		s.eval.Push()
		s.board.MakeMove(m)
		s.eval.Update(s.board, m, movedPiece, captured)
		giveCheck = s.board.InCheck()

		newDepth := depth - 1
		if m == ttMove {
			newDepth += singularExt
		}
		if giveCheck {
			newDepth++
		}

		var score int
		if legalMoves == 1 {
			score = -s.negamax(newDepth, ply+1, -beta, -alpha, false)
		} else {
			reduction := 0
			if depth >= s.cfg.LMRMinDepth && legalMoves > s.cfg.LMRMinMoveCount && !isCapture && !inCheck {
				reduction = lmrTable[min(depth, 63)][min(legalMoves, 63)]
				if !pvNode {
					reduction++
				}
				if !improving {
					reduction++
				}
				if cutNode {
					reduction++
				}
				if reduction < 0 {
					reduction = 0
				}
				if newDepth-reduction < 1 {
					reduction = newDepth - 1
				}
			}
			score = -s.negamax(newDepth-reduction, ply+1, -alpha-1, -alpha, true)
			if score > alpha && reduction > 0 {
				score = -s.negamax(newDepth, ply+1, -alpha-1, -alpha, !cutNode)
			}
			if score > alpha && score < beta {
				score = -s.negamax(newDepth, ply+1, -beta, -alpha, false)
			}
		}

		s.board.UnmakeMove()
		s.eval.Pop()

		if s.stop.Load() {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestMove = m
			if score > alpha {
				alpha = score
				s.stack[ply].pvMoves = append([]chess.Move{m}, s.stack[ply+1].pvMoves...)
				if alpha >= beta {
					break
				}
			}
		}
		if !isCapture && !isPromo {
			triedQuiets = append(triedQuiets, m)
		}
	}

	if legalMoves == 0 {
		if s.stack[ply].excluded != chess.NoMove {
			return alpha
		}
		if inCheck {
			return -tt.MateScore + ply
		}
		return 0
	}

	if bestScore >= beta && bestMove != chess.NoMove && !bestMove.IsCapture() && !bestMove.IsPromotion() {
		bonus := int32(depth * depth)
		s.hist.UpdateKiller(ply, bestMove)
		s.hist.UpdateMain(s.board.SideToMove, bestMove, bonus, triedQuiets)
		s.hist.UpdateCounterMove(prevPiece, prevTo, bestMove)
		if prevPiece != chess.NoPiece {
			s.hist.UpdateContinuation(prevPiece, prevTo, s.board.PieceAt(bestMove.From()), bestMove.To(), bonus)
		}
	} else if bestMove != chess.NoMove && bestMove.IsCapture() {
		attacker := s.board.PieceAt(bestMove.From())
		victim := s.board.PieceAt(bestMove.To()).Type()
		s.hist.UpdateCapture(attacker, bestMove.To(), victim, int32(depth*depth))
	}

	if s.stack[ply].excluded == chess.NoMove {
		bound := tt.BoundExact
		if bestScore >= beta {
			bound = tt.BoundLower
		} else if bestScore <= originalAlpha {
			bound = tt.BoundUpper
		}
		s.tt.Store(s.board.Hash, uint16(bestMove), tt.ScoreToTT(bestScore, ply), int8(depth), bound, pvNode)
	}

	if !inCheck && bestMove != chess.NoMove {
		s.hist.UpdateCorrection(s.board.SideToMove, s.board.PawnHash, s.board.MinorHash, s.board.MajorHash, s.board.NonPawnHash, staticEval, bestScore, depth)
	}

	return bestScore
}

// quiescence resolves tactical sequences (captures, promotions, and, while
// in check, all evasions) until the position is quiet.
func (s *Searcher) quiescence(ply, alpha, beta int) int {
	s.nodes.Add(1)
	if s.checkStop() {
		return 0
	}
	if s.board.IsDraw() {
		return 0
	}
	if ply >= maxPly-1 {
		return s.evaluate()
	}

	inCheck := s.board.InCheck()
	var standPat int
	if inCheck {
		standPat = -tt.MateScore + ply
	} else {
		standPat = s.evaluate()
		if standPat >= beta {
			return standPat
		}
		if standPat > alpha {
			alpha = standPat
		}
	}

	var ttMove chess.Move
	if e, ok := s.tt.Probe(s.board.Hash); ok {
		ttMove = chess.Move(e.Move)
	}

	pk := picker.New(s.board, s.hist, ply, ttMove, chess.NoMove, chess.NoPiece, 0, !inCheck)
	bestScore := standPat
	legalMoves := 0

	for {
		m, ok := pk.Next()
		if !ok {
			break
		}
		if !s.board.IsLegal(m) {
			continue
		}
		legalMoves++

		if !inCheck && m.IsCapture() && !s.board.SEEGreaterOrEqual(m, 0) {
			continue
		}
		if !inCheck && m.IsCapture() {
			futilityBase := standPat + 200
			captured := s.board.PieceAt(m.To())
			if futilityBase+captured.Value() <= alpha && !m.IsPromotion() {
				continue
			}
		}

		movedPiece := s.board.PieceAt(m.From())
		captured := capturedPiece(s.board, m)
		s.stack[ply].move = m
		s.stack[ply].movedPiece = movedPiece
		s.eval.Push()
		s.board.MakeMove(m)
		s.eval.Update(s.board, m, movedPiece, captured)
		score := -s.quiescence(ply+1, -beta, -alpha)
		s.board.UnmakeMove()
		s.eval.Pop()

		if s.stop.Load() {
			return 0
		}
		if score > bestScore {
			bestScore = score
			if score > alpha {
				alpha = score
				if alpha >= beta {
					break
				}
			}
		}
	}

	if inCheck && legalMoves == 0 {
		return -tt.MateScore + ply
	}
	return bestScore
}

// capturedPiece returns the piece m removes from the board, read before m is
// made, or chess.NoPiece for a non-capture. Needed by the NNUE accumulator's
// incremental update, which cannot see a piece after MakeMove has removed it.
func capturedPiece(b *chess.Board, m chess.Move) chess.Piece {
	if m.IsEnPassant() {
		epSq := m.To() - 8
		if b.SideToMove == chess.Black {
			epSq = m.To() + 8
		}
		return b.PieceAt(epSq)
	}
	return b.PieceAt(m.To())
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// lmrTable precomputes a logarithmic late-move reduction, the teacher's
// formula from worker.go's init(): reduction grows with both search depth
// and move index.
var lmrTable [64][64]int

func init() {
	for d := 1; d < 64; d++ {
		for m := 1; m < 64; m++ {
			lmrTable[d][m] = int(0.35 + math.Log(float64(d))*math.Log(float64(m))*0.45)
		}
	}
}
