package nnue

import "github.com/corvidchess/corvid/internal/chess"

// Accumulator holds the first hidden layer's values for both perspectives.
type Accumulator struct {
	White    [L1Size]int16
	Black    [L1Size]int16
	Computed bool
}

// maxStackDepth matches internal/search's stack bound (tt.MaxPly+8), so a
// deeply-extended search line never runs out of accumulator slots.
const maxStackDepth = 254

// AccumulatorStack mirrors the search's make/unmake stack with one
// accumulator per ply, so unwinding a move is an O(1) pointer move rather
// than a recomputation.
type AccumulatorStack struct {
	stack [maxStackDepth]Accumulator
	top   int
}

func NewAccumulatorStack() *AccumulatorStack { return &AccumulatorStack{} }

// Push copies the current accumulator down one ply, ready for the next
// move's incremental update to mutate in place.
func (s *AccumulatorStack) Push() {
	if s.top < len(s.stack)-1 {
		s.stack[s.top+1] = s.stack[s.top]
		s.top++
	}
}

// Pop discards the current ply's accumulator, returning to the parent's.
func (s *AccumulatorStack) Pop() {
	if s.top > 0 {
		s.top--
	}
}

func (s *AccumulatorStack) Current() *Accumulator { return &s.stack[s.top] }

func (s *AccumulatorStack) Reset() {
	s.top = 0
	s.stack[0].Computed = false
}

// ComputeFull rebuilds both perspectives from the board's full piece set.
func (acc *Accumulator) ComputeFull(b *chess.Board, net *Network) {
	whiteFeatures, blackFeatures := GetActiveFeatures(b)

	copy(acc.White[:], net.FTBias[:])
	copy(acc.Black[:], net.FTBias[:])

	for _, idx := range whiteFeatures {
		row := &net.FTWeights[idx]
		for i := 0; i < L1Size; i++ {
			acc.White[i] += row[i]
		}
	}
	for _, idx := range blackFeatures {
		row := &net.FTWeights[idx]
		for i := 0; i < L1Size; i++ {
			acc.Black[i] += row[i]
		}
	}
	acc.Computed = true
}

// UpdateIncremental applies the add/remove feature deltas for m, which has
// already been made on b. moved is the piece that stood on m.From() before
// m was made; UpdateIncremental falls back to ComputeFull for king moves,
// where the perspective's entire feature set shifts.
func (acc *Accumulator) UpdateIncremental(b *chess.Board, m chess.Move, moved, captured chess.Piece, net *Network) {
	if !acc.Computed {
		acc.ComputeFull(b, net)
		return
	}
	if moved == chess.NoPiece || moved.Type() == chess.King {
		acc.ComputeFull(b, net)
		return
	}

	whiteAdd, whiteRem, blackAdd, blackRem := GetChangedFeatures(b, m, moved, captured)

	for _, idx := range whiteRem {
		row := &net.FTWeights[idx]
		for i := 0; i < L1Size; i++ {
			acc.White[i] -= row[i]
		}
	}
	for _, idx := range blackRem {
		row := &net.FTWeights[idx]
		for i := 0; i < L1Size; i++ {
			acc.Black[i] -= row[i]
		}
	}
	for _, idx := range whiteAdd {
		row := &net.FTWeights[idx]
		for i := 0; i < L1Size; i++ {
			acc.White[i] += row[i]
		}
	}
	for _, idx := range blackAdd {
		row := &net.FTWeights[idx]
		for i := 0; i < L1Size; i++ {
			acc.Black[i] += row[i]
		}
	}
}
