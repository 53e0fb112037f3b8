package nnue

import (
	"testing"

	"github.com/corvidchess/corvid/internal/chess"
)

// capturedPiece mirrors internal/search's helper: the piece a move removes,
// read before the move is made.
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

// incrementalUpdate mirrors internal/search's call pattern: capture the
// moving piece and any victim before MakeMove, then apply the incremental
// accumulator update after.
func incrementalUpdate(b *chess.Board, eval *Evaluator, m chess.Move) {
	moved := b.PieceAt(m.From())
	captured := capturedPiece(b, m)
	b.MakeMove(m)
	eval.Update(b, m, moved, captured)
}

// TestIncrementalMatchesFreshRefresh is the accumulator invariant spec §5
// requires: evaluating a position via the incremental update after a move
// must equal evaluating it via a from-scratch accumulator refresh.
func TestIncrementalMatchesFreshRefresh(t *testing.T) {
	b := chess.NewBoard()
	eval, err := NewEvaluator("")
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	eval.Refresh(b)

	m := chess.NewDoublePush(chess.E2, chess.E4)
	incrementalUpdate(b, eval, m)
	incremental := eval.Evaluate(b)

	fresh, err := NewEvaluator("")
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	fresh.Refresh(b)
	want := fresh.Evaluate(b)

	if incremental != want {
		t.Errorf("incremental evaluation = %d, want %d (fresh refresh)", incremental, want)
	}
}

// TestIncrementalMatchesFreshRefreshAcrossCapture exercises the same
// invariant through a capturing move, whose feature delta touches both the
// mover and the captured piece.
func TestIncrementalMatchesFreshRefreshAcrossCapture(t *testing.T) {
	b, err := chess.ParseFEN("rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq d6", chess.FENRelaxed, false)
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	eval, err := NewEvaluator("")
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	eval.Refresh(b)

	m := chess.NewCapture(chess.E4, chess.D5)
	incrementalUpdate(b, eval, m)
	incremental := eval.Evaluate(b)

	fresh, err := NewEvaluator("")
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	fresh.Refresh(b)
	want := fresh.Evaluate(b)

	if incremental != want {
		t.Errorf("incremental evaluation after a capture = %d, want %d (fresh refresh)", incremental, want)
	}
}

// TestIncrementalMatchesFreshRefreshAcrossPromotion exercises a queening
// move, whose "remove" feature at the from-square must clear the pre-move
// pawn, not the post-move promoted piece.
func TestIncrementalMatchesFreshRefreshAcrossPromotion(t *testing.T) {
	b, err := chess.ParseFEN("8/P6k/8/8/8/8/7p/K7 w - -", chess.FENRelaxed, false)
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	eval, err := NewEvaluator("")
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	eval.Refresh(b)

	m := chess.NewPromotion(chess.A7, chess.A8, chess.Queen, false)
	incrementalUpdate(b, eval, m)
	incremental := eval.Evaluate(b)

	fresh, err := NewEvaluator("")
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	fresh.Refresh(b)
	want := fresh.Evaluate(b)

	if incremental != want {
		t.Errorf("incremental evaluation after a promotion = %d, want %d (fresh refresh)", incremental, want)
	}
}

// TestUpdateIncrementalFallsBackOnKingMove exercises the king-move path,
// which recomputes in full rather than patching the feature set (every
// feature for that perspective changes when the king moves).
func TestUpdateIncrementalFallsBackOnKingMove(t *testing.T) {
	b, err := chess.ParseFEN("4k3/8/8/8/8/8/8/4K2R w K -", chess.FENRelaxed, false)
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	eval, err := NewEvaluator("")
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	eval.Refresh(b)

	m := chess.NewMove(chess.E1, chess.E2)
	incrementalUpdate(b, eval, m)
	incremental := eval.Evaluate(b)

	fresh, err := NewEvaluator("")
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	fresh.Refresh(b)
	want := fresh.Evaluate(b)

	if incremental != want {
		t.Errorf("incremental evaluation after a king move = %d, want %d (fresh refresh)", incremental, want)
	}
}

func TestPushPopRestoresAccumulator(t *testing.T) {
	b := chess.NewBoard()
	eval, err := NewEvaluator("")
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	eval.Refresh(b)
	before := eval.Evaluate(b)

	m := chess.NewDoublePush(chess.E2, chess.E4)
	eval.Push()
	incrementalUpdate(b, eval, m)
	eval.Evaluate(b)

	b.UnmakeMove()
	eval.Pop()
	after := eval.Evaluate(b)

	if after != before {
		t.Errorf("evaluation after Push/MakeMove/UnmakeMove/Pop = %d, want %d", after, before)
	}
}
