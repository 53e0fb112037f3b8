package picker

import (
	"testing"

	"github.com/corvidchess/corvid/internal/chess"
	"github.com/corvidchess/corvid/internal/history"
)

func legalMoveSet(t *testing.T, b *chess.Board, mode chess.GenMode) map[chess.Move]bool {
	t.Helper()
	var list chess.MoveList
	b.GenerateMoves(&list, mode)
	set := make(map[chess.Move]bool, list.Len())
	for i := 0; i < list.Len(); i++ {
		set[list.At(i)] = true
	}
	return set
}

func drain(p *Picker) []chess.Move {
	var out []chess.Move
	for {
		m, ok := p.Next()
		if !ok {
			return out
		}
		out = append(out, m)
	}
}

func TestPickerYieldsTTMoveFirst(t *testing.T) {
	b := chess.NewBoard()
	tables := history.New()
	ttMove := chess.NewDoublePush(chess.E2, chess.E4)

	p := New(b, tables, 0, ttMove, chess.NoMove, chess.NoPiece, chess.NoSquare, false)
	got, ok := p.Next()
	if !ok || got != ttMove {
		t.Fatalf("first Next() = (%v, %v), want (%v, true)", got, ok, ttMove)
	}
}

func TestPickerYieldsEveryLegalMoveExactlyOnce(t *testing.T) {
	b, err := chess.ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -", chess.FENRelaxed, false)
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	tables := history.New()
	ttMove := chess.NewCapture(chess.E5, chess.F7) // a capture, also present in the generated lists

	p := New(b, tables, 0, ttMove, chess.NoMove, chess.NoPiece, chess.NoSquare, false)
	yielded := drain(p)

	want := legalMoveSet(t, b, chess.GenAll)
	if len(yielded) != len(want) {
		t.Fatalf("yielded %d moves, want %d", len(yielded), len(want))
	}
	seen := make(map[chess.Move]bool, len(yielded))
	for _, m := range yielded {
		if seen[m] {
			t.Errorf("move %v yielded more than once", m)
		}
		seen[m] = true
		if !want[m] {
			t.Errorf("yielded move %v is not in the legal move set", m)
		}
	}
	for m := range want {
		if !seen[m] {
			t.Errorf("legal move %v was never yielded", m)
		}
	}
}

func TestPickerCapturesOnlyYieldsOnlyCaptures(t *testing.T) {
	b, err := chess.ParseFEN("rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq d6", chess.FENRelaxed, false)
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	tables := history.New()

	p := New(b, tables, 0, chess.NoMove, chess.NoMove, chess.NoPiece, chess.NoSquare, true)
	yielded := drain(p)

	wantCaptures := legalMoveSet(t, b, chess.GenCapturesOnly)
	if len(yielded) != len(wantCaptures) {
		t.Fatalf("capturesOnly picker yielded %d moves, want %d", len(yielded), len(wantCaptures))
	}
	for _, m := range yielded {
		if !m.IsTactical() {
			t.Errorf("capturesOnly picker yielded quiet move %v", m)
		}
	}
}

// TestPickerDemotesLosingCaptureBelowQuiets exercises the lazy SEE gate: a
// queen capture that loses the queen for a defended pawn must sort after
// every quiet move, not merely lose its provisional bonus over them, and it
// must still be yielded exactly once (never dropped, since this isn't
// quiescence search).
func TestPickerDemotesLosingCaptureBelowQuiets(t *testing.T) {
	b, err := chess.ParseFEN("4k3/8/8/4p3/3p4/8/8/3QK3 w - -", chess.FENRelaxed, false)
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	tables := history.New()
	losing := chess.NewCapture(chess.D1, chess.D4)

	p := New(b, tables, 0, chess.NoMove, chess.NoMove, chess.NoPiece, chess.NoSquare, false)
	yielded := drain(p)

	idx := -1
	for i, m := range yielded {
		if m == losing {
			idx = i
			break
		}
	}
	if idx == -1 {
		t.Fatal("losing capture was never yielded")
	}
	if idx != len(yielded)-1 {
		t.Errorf("losing capture yielded at index %d of %d, want last (demoted below every quiet move)", idx, len(yielded))
	}
}

func TestPickerKillersOrderedBeforeQuiets(t *testing.T) {
	b := chess.NewBoard()
	tables := history.New()
	killer := chess.NewMove(chess.G1, chess.F3) // a legal quiet move from the start position
	tables.UpdateKiller(0, killer)

	p := New(b, tables, 0, chess.NoMove, chess.NoMove, chess.NoPiece, chess.NoSquare, false)
	yielded := drain(p)

	idx := -1
	for i, m := range yielded {
		if m == killer {
			idx = i
			break
		}
	}
	if idx == -1 {
		t.Fatal("killer move was never yielded")
	}
	// The start position has no captures, so the killer must be the very
	// first move out of the picker.
	if idx != 0 {
		t.Errorf("killer yielded at index %d, want 0", idx)
	}
}
