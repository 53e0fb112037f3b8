package tablebase

import (
	"testing"

	"github.com/corvidchess/corvid/internal/chess"
)

func TestNoopProber(t *testing.T) {
	var p Prober = NoopProber{}
	b := chess.NewBoard()
	if p.Available() {
		t.Fatal("NoopProber must report unavailable")
	}
	if res := p.Probe(b); res.Found {
		t.Fatal("NoopProber.Probe must never find a position")
	}
	if res := p.ProbeRoot(b); res.Found {
		t.Fatal("NoopProber.ProbeRoot must never find a position")
	}
	if p.MaxPieces() != 0 {
		t.Fatal("NoopProber.MaxPieces must be 0")
	}
}

func TestWDLToScoreOrdering(t *testing.T) {
	if WDLToScore(WDLWin, 5) <= WDLToScore(WDLCursedWin, 5) {
		t.Fatal("a clean win must score higher than a cursed win at the same ply")
	}
	if WDLToScore(WDLWin, 1) <= WDLToScore(WDLWin, 10) {
		t.Fatal("a faster mate must score higher than a slower one")
	}
	if WDLToScore(WDLDraw, 5) != 0 {
		t.Fatal("a draw must score exactly 0")
	}
	if WDLToScore(WDLLoss, 5) >= WDLToScore(WDLBlessedLoss, 5) {
		t.Fatal("a blessed loss must score higher than a clean loss")
	}
}

func TestCountPieces(t *testing.T) {
	b := chess.NewBoard()
	if got := CountPieces(b); got != 32 {
		t.Fatalf("startpos should have 32 pieces, got %d", got)
	}
}
