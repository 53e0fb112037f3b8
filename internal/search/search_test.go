package search

import (
	"sync/atomic"
	"testing"

	"github.com/corvidchess/corvid/internal/chess"
	"github.com/corvidchess/corvid/internal/config"
	"github.com/corvidchess/corvid/internal/history"
	"github.com/corvidchess/corvid/internal/nnue"
	"github.com/corvidchess/corvid/internal/tablebase"
	"github.com/corvidchess/corvid/internal/tt"
)

func newTestSearcher(t *testing.T, b *chess.Board) *Searcher {
	t.Helper()
	eval, err := nnue.NewEvaluator("")
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	var stop atomic.Bool
	return New(0, b, tt.New(1), history.New(), eval, tablebase.NoopProber{}, config.Default(), &stop)
}

// TestFindsMateInOne is the mate-in-1 search-sanity scenario: Ra7-a8 is
// checkmate, so a depth-2 search must report a mate score and that move.
func TestFindsMateInOne(t *testing.T) {
	b, err := chess.ParseFEN("4k3/R7/4K3/8/8/8/8/8 w - -", chess.FENRelaxed, false)
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	s := newTestSearcher(t, b)
	best, score := s.Run(Limits{Depth: 2})

	want := chess.NewMove(chess.A7, chess.A8)
	if best != want {
		t.Errorf("best move = %v, want %v", best, want)
	}
	if score < tt.MateScore-2 {
		t.Errorf("score = %d, want >= %d", score, tt.MateScore-2)
	}
}

// TestStalemateScoresZero: Black has no legal moves and is not in check, so
// the position is a draw and the searcher must return no move with score 0.
func TestStalemateScoresZero(t *testing.T) {
	b, err := chess.ParseFEN("7k/8/6Q1/8/8/8/8/7K b - -", chess.FENRelaxed, false)
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	var moves chess.MoveList
	b.GenerateMoves(&moves, chess.GenAll)
	if moves.Len() != 0 {
		t.Fatalf("setup: position has %d legal moves, want 0 (stalemate)", moves.Len())
	}
	if b.InCheck() {
		t.Fatal("setup: position is in check, not stalemate")
	}

	s := newTestSearcher(t, b)
	best, score := s.Run(Limits{Depth: 2})

	if best != chess.NoMove {
		t.Errorf("best move = %v, want NoMove", best)
	}
	if score != 0 {
		t.Errorf("score = %d, want 0", score)
	}
}

// TestNodesLimitStopsSearch checks that a Nodes limit actually bounds the
// amount of work done, rather than Run silently ignoring it.
func TestNodesLimitStopsSearch(t *testing.T) {
	b := chess.NewBoard()
	s := newTestSearcher(t, b)
	s.Run(Limits{Depth: maxPly, Nodes: 1000})

	if got := s.Nodes(); got > 50000 {
		t.Errorf("Nodes() = %d after a 1000-node limit, want it bounded close to the limit", got)
	}
}
