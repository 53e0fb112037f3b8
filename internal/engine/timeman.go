// Package engine wires together a transposition table, evaluator, and a
// pool of internal/search.Searcher workers into the Lazy SMP thread pool
// spec §4.10 calls for, plus the time manager that turns UCI "go" limits
// into a per-move time budget.
package engine

import (
	"time"

	"github.com/corvidchess/corvid/internal/chess"
	"github.com/corvidchess/corvid/internal/search"
)

// TimeManager handles time allocation for searches, grounded on the
// teacher's internal/engine/timeman.go, generalized onto
// search.Limits/chess.Color.
type TimeManager struct {
	optimumTime time.Duration
	maximumTime time.Duration
	startTime   time.Time
}

func NewTimeManager() *TimeManager { return &TimeManager{} }

// Init initializes the time manager for a new search. ply is the current
// game ply (half-move number).
func (tm *TimeManager) Init(limits search.Limits, us chess.Color, ply int) {
	tm.startTime = time.Now()

	if limits.MoveTime > 0 {
		tm.optimumTime = limits.MoveTime
		tm.maximumTime = limits.MoveTime
		return
	}

	var timeLeft, inc time.Duration
	if us == chess.White {
		timeLeft, inc = limits.WTime, limits.WInc
	} else {
		timeLeft, inc = limits.BTime, limits.BInc
	}

	if limits.Infinite || (timeLeft == 0 && limits.MoveTime == 0) {
		tm.optimumTime = time.Hour
		tm.maximumTime = time.Hour
		return
	}

	mtg := limits.MovesToGo
	if mtg == 0 {
		mtg = 50 - ply/4
		if mtg < 10 {
			mtg = 10
		}
		if mtg > 50 {
			mtg = 50
		}
	}

	baseTime := timeLeft/time.Duration(mtg) + inc*9/10
	tm.optimumTime = baseTime
	if ply < 8 {
		tm.optimumTime = baseTime * 85 / 100
	}

	maxFromOptimum := tm.optimumTime * 5
	maxFromRemaining := timeLeft * 8 / 10
	if maxFromOptimum < maxFromRemaining {
		tm.maximumTime = maxFromOptimum
	} else {
		tm.maximumTime = maxFromRemaining
	}

	safetyMargin := timeLeft * 95 / 100
	if tm.maximumTime > safetyMargin {
		tm.maximumTime = safetyMargin
	}

	if tm.optimumTime < 10*time.Millisecond {
		tm.optimumTime = 10 * time.Millisecond
	}
	if tm.maximumTime < 50*time.Millisecond {
		tm.maximumTime = 50 * time.Millisecond
	}
}

func (tm *TimeManager) Elapsed() time.Duration     { return time.Since(tm.startTime) }
func (tm *TimeManager) OptimumTime() time.Duration { return tm.optimumTime }
func (tm *TimeManager) MaximumTime() time.Duration { return tm.maximumTime }
func (tm *TimeManager) ShouldStop() bool           { return tm.Elapsed() >= tm.maximumTime }
func (tm *TimeManager) PastOptimum() bool          { return tm.Elapsed() >= tm.optimumTime }

// AdjustForStability shortens the optimum budget when the best move has
// held steady for several consecutive depths.
func (tm *TimeManager) AdjustForStability(stability int) {
	switch {
	case stability >= 6:
		tm.optimumTime = tm.optimumTime * 40 / 100
	case stability >= 4:
		tm.optimumTime = tm.optimumTime * 60 / 100
	case stability >= 2:
		tm.optimumTime = tm.optimumTime * 80 / 100
	}
}

// AdjustForInstability extends the optimum budget when the best move keeps
// changing between depths, capped at the hard maximum.
func (tm *TimeManager) AdjustForInstability(changes int) {
	switch {
	case changes >= 4:
		tm.optimumTime = tm.optimumTime * 200 / 100
	case changes >= 2:
		tm.optimumTime = tm.optimumTime * 150 / 100
	}
	if tm.optimumTime > tm.maximumTime {
		tm.optimumTime = tm.maximumTime
	}
}
