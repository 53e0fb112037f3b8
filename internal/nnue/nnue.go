// Package nnue implements the quantized evaluator: a 768-input feature
// transformer (one input per perspective/colour/piece-type/square
// combination) feeding three small feed-forward layers, with an
// incrementally updated accumulator so each make/unmake touches only the
// handful of features a single move actually changes (spec §4.7).
package nnue

import "github.com/corvidchess/corvid/internal/chess"

// Network architecture constants.
const (
	NumPieceTypes = 6 // P,N,B,R,Q,K
	NumColors     = 2
	NumSquares    = 64
	NumFeatures   = NumColors * NumPieceTypes * NumSquares // 768

	L1Size = 256 // per-perspective accumulator width
	L2Size = 32
	L3Size = 32

	// QA bounds the feature-transformer activation's clamp; QB is the L1
	// weight quantization scale; QAB rescales their product back to a plain
	// integer before the L1 bias (an f32) is added.
	QA  = 255
	QB  = 64
	QAB = QA * QB

	// EvalScale converts the final layer's raw (roughly [-1,1]-scaled)
	// output into centipawns.
	EvalScale = 400

	mateScore         = 32000
	maxPly            = 246
	minimumTBWinScore = mateScore - maxPly
	evalClampBound    = minimumTBWinScore - 1024
)

// activateFT applies the feature transformer's squared-clipped activation:
// clamp to [0,QA], square, rescale by QA. The result fits a uint8 (at
// x=QA the result is exactly QA).
func activateFT(x int16) uint8 {
	c := x
	if c < 0 {
		c = 0
	}
	if c > QA {
		c = QA
	}
	return uint8(int32(c) * int32(c) / QA)
}

// squaredClip is the hidden layers' activation: clamp to [0,1], then
// square.
func squaredClip(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		v = 1
	}
	return v * v
}

func clampEval(score int) int {
	if score > evalClampBound {
		return evalClampBound
	}
	if score < -evalClampBound {
		return -evalClampBound
	}
	return score
}

// Evaluator owns a network and a per-ply accumulator stack; one Evaluator
// belongs to exactly one search worker (spec §5, §7's thread-local rule).
type Evaluator struct {
	net   *Network
	stack *AccumulatorStack
}

// NewEvaluator loads weightsFile, or falls back to small deterministic
// random weights (for tests and positions where no network is installed).
func NewEvaluator(weightsFile string) (*Evaluator, error) {
	net := NewNetwork()
	if weightsFile != "" {
		if err := net.LoadWeights(weightsFile); err != nil {
			return nil, err
		}
	} else {
		net.InitRandom(12345)
	}
	return &Evaluator{net: net, stack: NewAccumulatorStack()}, nil
}

// Evaluate returns the network's centipawn score for the side to move.
func (e *Evaluator) Evaluate(b *chess.Board) int {
	acc := e.stack.Current()
	if !acc.Computed {
		acc.ComputeFull(b, e.net)
	}
	return e.net.Forward(acc, b.SideToMove)
}

// Push saves accumulator state; call before MakeMove.
func (e *Evaluator) Push() { e.stack.Push() }

// Pop restores accumulator state; call after UnmakeMove.
func (e *Evaluator) Pop() { e.stack.Pop() }

// Refresh forces a full recomputation of the current accumulator from b,
// as done at the start of each search.
func (e *Evaluator) Refresh(b *chess.Board) { e.stack.Current().ComputeFull(b, e.net) }

// Update applies an incremental accumulator update for m, which has already
// been made on b. moved is the piece that stood on m.From() before the
// move was made (needed because for a promotion the post-move piece at
// m.To() is the promoted piece, not the piece that actually vacated
// m.From()). captured is the piece that stood on the destination (or the
// en-passant square) before m was played, or chess.NoPiece.
func (e *Evaluator) Update(b *chess.Board, m chess.Move, moved, captured chess.Piece) {
	e.stack.Current().UpdateIncremental(b, m, moved, captured, e.net)
}

// Reset clears the accumulator stack for a new game.
func (e *Evaluator) Reset() { e.stack.Reset() }
