// Package tablebase defines the endgame-tablebase probing interface the
// search consults at low piece counts. Only the interface and a no-op
// default live here: downloading, caching, and Syzygy/FFI probing are out
// of scope (see DESIGN.md). With the no-op default installed, search
// behaves exactly as it would with no tablebase support at all.
package tablebase

import "github.com/corvidchess/corvid/internal/chess"

// WDL is a win/draw/loss verdict, with "cursed"/"blessed" variants for
// results the fifty-move rule may still overturn.
type WDL int

const (
	WDLLoss        WDL = -2
	WDLBlessedLoss WDL = -1
	WDLDraw        WDL = 0
	WDLCursedWin   WDL = 1
	WDLWin         WDL = 2
)

// ProbeResult is the outcome of probing a single position.
type ProbeResult struct {
	Found bool
	WDL   WDL
	DTZ   int
}

// RootResult is the outcome of probing for the best move at the search root.
type RootResult struct {
	Found bool
	Move  chess.Move
	WDL   WDL
	DTZ   int
}

// Prober probes tablebases. The search holds one Prober and treats
// Available()==false exactly like a position with too many pieces to probe.
type Prober interface {
	Probe(b *chess.Board) ProbeResult
	ProbeRoot(b *chess.Board) RootResult
	MaxPieces() int
	Available() bool
}

const mateScore = 30000

// WDLToScore converts a WDL verdict into a search score, closer-to-root
// wins scoring higher so the search prefers the fastest mate.
func WDLToScore(wdl WDL, ply int) int {
	switch wdl {
	case WDLWin:
		return mateScore - ply
	case WDLCursedWin:
		return mateScore - 100 - ply
	case WDLDraw:
		return 0
	case WDLBlessedLoss:
		return -mateScore + 100 + ply
	case WDLLoss:
		return -mateScore + ply
	default:
		return 0
	}
}

// NoopProber reports every position as unavailable; it is the default
// Prober until a real backend is wired in.
type NoopProber struct{}

func (NoopProber) Probe(*chess.Board) ProbeResult     { return ProbeResult{Found: false} }
func (NoopProber) ProbeRoot(*chess.Board) RootResult  { return RootResult{Found: false} }
func (NoopProber) MaxPieces() int                     { return 0 }
func (NoopProber) Available() bool                    { return false }

// CountPieces returns the total number of pieces on the board, the usual
// gate for deciding whether a position is small enough to probe.
func CountPieces(b *chess.Board) int {
	return b.Occupied().Count()
}
