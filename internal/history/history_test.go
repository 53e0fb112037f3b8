package history

import (
	"testing"

	"github.com/corvidchess/corvid/internal/chess"
)

func TestKillerPromotesExistingOnNewMove(t *testing.T) {
	tab := New()
	m1 := chess.NewMove(chess.E2, chess.E4)
	m2 := chess.NewMove(chess.A1, chess.A2)

	tab.UpdateKiller(3, m1)
	tab.UpdateKiller(3, m2)

	first, second := tab.Killer(3)
	if first != m2 {
		t.Errorf("first killer = %v, want the most recently recorded move %v", first, m2)
	}
	if second != m1 {
		t.Errorf("second killer = %v, want the previously first killer %v", second, m1)
	}
	if !tab.IsKiller(3, m1) || !tab.IsKiller(3, m2) {
		t.Error("IsKiller should report true for both recorded killers")
	}
}

func TestUpdateKillerIgnoresDuplicate(t *testing.T) {
	tab := New()
	m := chess.NewMove(chess.E2, chess.E4)
	tab.UpdateKiller(1, m)
	tab.UpdateKiller(1, m)

	first, second := tab.Killer(1)
	if first != m || second != chess.NoMove {
		t.Errorf("Killer(1) = (%v, %v), want (%v, NoMove)", first, second, m)
	}
}

func TestMainHistoryStaysWithinClamp(t *testing.T) {
	tab := New()
	m := chess.NewMove(chess.E2, chess.E4)
	for i := 0; i < 1000; i++ {
		tab.UpdateMain(chess.White, m, maxBonus, nil)
	}
	got := tab.MainHistory(chess.White, m.From(), m.To())
	if got > clampAbs || got < -clampAbs {
		t.Errorf("MainHistory = %d, want within [-%d, %d]", got, clampAbs, clampAbs)
	}
}

func TestUpdateMainPenalizesFailedQuiets(t *testing.T) {
	tab := New()
	best := chess.NewMove(chess.E2, chess.E4)
	failed := chess.NewMove(chess.D2, chess.D4)

	tab.UpdateMain(chess.White, best, 100, []chess.Move{failed})

	if got := tab.MainHistory(chess.White, failed.From(), failed.To()); got >= 0 {
		t.Errorf("failed quiet's history = %d, want negative", got)
	}
	if got := tab.MainHistory(chess.White, best.From(), best.To()); got <= 0 {
		t.Errorf("cutoff move's history = %d, want positive", got)
	}
}

func TestCounterMoveRoundTrip(t *testing.T) {
	tab := New()
	reply := chess.NewMove(chess.E2, chess.E4)
	tab.UpdateCounterMove(chess.BlackKnight, chess.A2, reply)

	if got := tab.CounterMove(chess.BlackKnight, chess.A2); got != reply {
		t.Errorf("CounterMove = %v, want %v", got, reply)
	}
	if got := tab.CounterMove(chess.WhitePawn, chess.A2); got != chess.NoMove {
		t.Errorf("CounterMove for an unrecorded key = %v, want NoMove", got)
	}
}

func TestNewSearchAgesMainHistory(t *testing.T) {
	tab := New()
	m := chess.NewMove(chess.E2, chess.E4)
	tab.UpdateMain(chess.White, m, 1000, nil)
	before := tab.MainHistory(chess.White, m.From(), m.To())

	tab.NewSearch()

	after := tab.MainHistory(chess.White, m.From(), m.To())
	if after != before/2 {
		t.Errorf("MainHistory after NewSearch = %d, want %d (halved)", after, before/2)
	}
}

func TestNewSearchClearsKillers(t *testing.T) {
	tab := New()
	tab.UpdateKiller(5, chess.NewMove(chess.E2, chess.E4))
	tab.NewSearch()

	first, second := tab.Killer(5)
	if first != chess.NoMove || second != chess.NoMove {
		t.Errorf("killers after NewSearch = (%v, %v), want (NoMove, NoMove)", first, second)
	}
}

func TestCorrectionTotalClampedAndZeroInitially(t *testing.T) {
	tab := New()
	var nonPawn [2]uint64
	if got := tab.CorrectionTotal(chess.White, 1, 2, 3, nonPawn); got != 0 {
		t.Errorf("CorrectionTotal on a fresh table = %d, want 0", got)
	}

	for i := 0; i < 10000; i++ {
		tab.UpdateCorrection(chess.White, 1, 2, 3, nonPawn, -100, 10000, 20)
	}
	if got := tab.CorrectionTotal(chess.White, 1, 2, 3, nonPawn); got > corrClamp || got < -corrClamp {
		t.Errorf("CorrectionTotal = %d, want within [-%d, %d]", got, corrClamp, corrClamp)
	}
}

func TestUpdateCorrectionIgnoresShallowDepth(t *testing.T) {
	tab := New()
	var nonPawn [2]uint64
	tab.UpdateCorrection(chess.White, 1, 2, 3, nonPawn, -100, 500, 0)
	if got := tab.CorrectionTotal(chess.White, 1, 2, 3, nonPawn); got != 0 {
		t.Errorf("CorrectionTotal after a depth-0 update = %d, want 0", got)
	}
}
