package engine

import (
	"fmt"
	"log"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/corvidchess/corvid/internal/chess"
	"github.com/corvidchess/corvid/internal/config"
	"github.com/corvidchess/corvid/internal/history"
	"github.com/corvidchess/corvid/internal/nnue"
	"github.com/corvidchess/corvid/internal/search"
	"github.com/corvidchess/corvid/internal/tablebase"
	"github.com/corvidchess/corvid/internal/tt"
)

// NumWorkers defaults to the host's core count, mirroring the teacher's
// runtime.GOMAXPROCS(0) default for the worker pool.
var NumWorkers = runtime.GOMAXPROCS(0)

// workerContext bundles the per-thread state Lazy SMP requires: every
// worker gets its own board, history tables, and evaluator, but all of
// them search against the one shared transposition table (spec §4.10).
type workerContext struct {
	id       int
	board    *chess.Board
	hist     *history.Tables
	evaluator *nnue.Evaluator
	searcher *search.Searcher
}

// Engine owns the shared transposition table and fans a search out across
// a pool of search.Searcher workers, aggregating their node counts and
// reporting the main thread's iterative-deepening info upward. Grounded on
// the teacher's internal/engine/engine.go Engine/workerSearch/
// SearchWithUCILimits pattern.
type Engine struct {
	cfg     config.Params
	tt      *tt.Table
	tb      tablebase.Prober
	workers []*workerContext
	tm      *TimeManager
	stop    atomic.Bool

	mu            sync.Mutex
	rootHashes    []uint64 // game history passed to SetPosition; not read by the search
	weightsFile   string
	stabilityPly  int
	lastBestMove  chess.Move
	bestMoveFlips int
}

// NewEngine builds an Engine with a cfg.HashMB-sized shared hash table and
// cfg.Threads workers (falling back to NumWorkers when cfg.Threads <= 0).
func NewEngine(cfg config.Params) *Engine {
	threads := cfg.Threads
	if threads <= 0 {
		threads = NumWorkers
	}
	cfg.Threads = threads

	e := &Engine{
		cfg: cfg,
		tt:  tt.New(cfg.HashMB),
		tb:  tablebase.NoopProber{},
		tm:  NewTimeManager(),
	}
	e.weightsFile = cfg.WeightsFile
	if err := e.buildWorkers(chess.NewBoard()); err != nil {
		log.Printf("engine: NNUE load failed, falling back to random weights: %v", err)
	}
	return e
}

// buildWorkers (re)allocates the worker pool, giving each worker its own
// copy of root's position, a fresh history.Tables, and its own NNUE
// evaluator (spec §7: one evaluator per search thread).
func (e *Engine) buildWorkers(root *chess.Board) error {
	e.workers = make([]*workerContext, e.cfg.Threads)
	var firstErr error
	for i := range e.workers {
		b, err := chess.ParseFEN(root.FEN(), chess.FENStrict, root.Chess960)
		if err != nil {
			return fmt.Errorf("engine: cloning root position: %w", err)
		}
		ev, err := nnue.NewEvaluator(e.weightsFile)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			ev, _ = nnue.NewEvaluator("") // degrade to random weights
		}
		h := history.New()
		e.workers[i] = &workerContext{
			id:        i,
			board:     b,
			hist:      h,
			evaluator: ev,
			searcher:  search.New(i, b, e.tt, h, ev, e.tb, e.cfg, &e.stop),
		}
	}
	return firstErr
}

// SetPosition resets every worker's board to pos (by FEN round-trip, since
// boards are never shared across threads) and stores the game's hash
// history in e.rootHashes. The rebuilt boards start with an empty
// repetition log, so repetitions of positions played before pos are not
// detected by the search.
func (e *Engine) SetPosition(pos *chess.Board, hashes []uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rootHashes = hashes
	for _, w := range e.workers {
		b, err := chess.ParseFEN(pos.FEN(), chess.FENStrict, pos.Chess960)
		if err != nil {
			return err
		}
		w.board = b
		w.searcher = search.New(w.id, b, e.tt, w.hist, w.evaluator, e.tb, e.cfg, &e.stop)
	}
	return nil
}

// SetTablebase installs tb as the Syzygy probing backend for every worker.
func (e *Engine) SetTablebase(tb tablebase.Prober) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tb = tb
	for _, w := range e.workers {
		w.searcher = search.New(w.id, w.board, e.tt, w.hist, w.evaluator, e.tb, e.cfg, &e.stop)
	}
}

// LoadNNUE reloads every worker's evaluator from filename.
func (e *Engine) LoadNNUE(filename string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.weightsFile = filename
	for _, w := range e.workers {
		ev, err := nnue.NewEvaluator(filename)
		if err != nil {
			return err
		}
		w.evaluator = ev
		w.searcher = search.New(w.id, w.board, e.tt, w.hist, ev, e.tb, e.cfg, &e.stop)
	}
	return nil
}

// Resize changes the shared transposition table's size.
func (e *Engine) Resize(sizeMB int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg.HashMB = sizeMB
	e.tt.Resize(sizeMB)
}

// Clear resets the transposition table and every worker's history tables
// and NNUE accumulator stack, for UCI's "ucinewgame".
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tt.Clear()
	e.stabilityPly = 0
	e.lastBestMove = chess.NoMove
	e.bestMoveFlips = 0
	for _, w := range e.workers {
		w.hist = history.New()
		w.evaluator.Reset()
		w.searcher = search.New(w.id, w.board, e.tt, w.hist, w.evaluator, e.tb, e.cfg, &e.stop)
	}
}

// Stop signals every running worker to abandon its search at the next
// node-count check.
func (e *Engine) Stop() { e.stop.Store(true) }

// Search runs a Lazy SMP search from pos using limits, feeding depth-by-
// depth info from the main worker (id 0) through onInfo. ply is the
// current game ply, used by the time manager to scale the time budget.
func (e *Engine) Search(pos *chess.Board, limits search.Limits, ply int, onInfo func(search.Info)) (chess.Move, int) {
	e.mu.Lock()
	if err := e.buildWorkers(pos); err != nil {
		log.Printf("engine: rebuilding workers: %v", err)
	}
	workers := e.workers
	e.mu.Unlock()

	e.stop.Store(false)
	e.tm.Init(limits, pos.SideToMove, ply)
	e.stabilityPly = 0
	e.bestMoveFlips = 0
	e.lastBestMove = chess.NoMove

	if !limits.Infinite && limits.MoveTime == 0 && (limits.WTime > 0 || limits.BTime > 0) {
		go e.watchClock()
	}

	var wg sync.WaitGroup
	results := make([]chess.Move, len(workers))
	scores := make([]int, len(workers))

	for i, w := range workers {
		wg.Add(1)
		go func(i int, w *workerContext) {
			defer wg.Done()
			if i == 0 {
				w.searcher.OnInfo = func(info search.Info) {
					e.trackStability(info)
					if onInfo != nil {
						onInfo(info)
					}
				}
			}
			m, score := w.searcher.Run(limits)
			results[i] = m
			scores[i] = score
		}(i, w)
	}
	wg.Wait()
	e.stop.Store(true)

	// Pick the result from whichever worker reached the greatest depth
	// (spec §4.10's Lazy SMP rule), not always the main thread: a helper
	// that raced ahead on a diversified starting depth may have finished a
	// deeper, more trustworthy iteration than worker 0 did.
	best := 0
	bestDepth := workers[0].searcher.Depth()
	for i := 1; i < len(workers); i++ {
		if d := workers[i].searcher.Depth(); d > bestDepth {
			bestDepth = d
			best = i
		}
	}
	return results[best], scores[best]
}

// watchClock stops the search once the time manager's maximum budget
// elapses, for searches bounded by clock time rather than MoveTime/Nodes/
// Depth (which internal/search.Searcher already polls on its own).
func (e *Engine) watchClock() {
	for !e.stop.Load() {
		if e.tm.ShouldStop() {
			e.stop.Store(true)
			return
		}
		time.Sleep(time.Millisecond)
	}
}

// trackStability feeds the main worker's depth-by-depth best move into the
// time manager's stability/instability adjustment, the way the teacher's
// SearchWithUCILimits shortens or extends the optimum budget as iterative
// deepening either confirms or overturns the previous best move.
func (e *Engine) trackStability(info search.Info) {
	if len(info.PV) == 0 {
		return
	}
	best := info.PV[0]
	if best == e.lastBestMove {
		e.stabilityPly++
		e.bestMoveFlips = 0
		e.tm.AdjustForStability(e.stabilityPly)
	} else {
		e.bestMoveFlips++
		e.stabilityPly = 0
		e.tm.AdjustForInstability(e.bestMoveFlips)
	}
	e.lastBestMove = best
}

// TotalNodes sums the node counts searched by every worker so far.
func (e *Engine) TotalNodes() uint64 {
	var total uint64
	for _, w := range e.workers {
		total += w.searcher.Nodes()
	}
	return total
}

// HashFull reports the shared transposition table's fill level in permille.
func (e *Engine) HashFull() int { return e.tt.HashFull() }

// Evaluate returns the static evaluation of pos from the side to move's
// perspective, using a scratch evaluator so it never disturbs a worker's
// accumulator stack mid-search.
func (e *Engine) Evaluate(pos *chess.Board) (int, error) {
	ev, err := nnue.NewEvaluator(e.weightsFile)
	if err != nil {
		return 0, err
	}
	ev.Refresh(pos)
	return ev.Evaluate(pos), nil
}

// Perft counts the leaf nodes of every legal move sequence from pos to
// depth plies, for move-generator validation (spec §8).
func Perft(pos *chess.Board, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	var list chess.MoveList
	pos.GenerateMoves(&list, chess.GenAll)
	var nodes uint64
	for i := 0; i < list.Len(); i++ {
		m := list.At(i)
		if !pos.IsLegal(m) {
			continue
		}
		pos.MakeMove(m)
		nodes += Perft(pos, depth-1)
		pos.UnmakeMove()
	}
	return nodes
}
