package nnue

import "github.com/corvidchess/corvid/internal/chess"

// Network holds the quantized feature transformer and the three
// floating-point hidden layers that follow it.
type Network struct {
	FTWeights [NumFeatures][L1Size]int16
	FTBias    [L1Size]int16

	L1Weights [L1Size * 2][L2Size]int8
	L1Bias    [L2Size]float32

	L2Weights [L2Size][L3Size]float32
	L2Bias    [L3Size]float32

	L3Weights [L3Size]float32
	L3Bias    float32
}

func NewNetwork() *Network { return &Network{} }

// Forward evaluates the network given an already-computed accumulator,
// returning centipawns from sideToMove's perspective. The feature
// transformer's two per-perspective halves are activated with a squared,
// clipped ReLU and concatenated (us first, then them) before the L1
// layer's int8 weights dot against them; L1->L2 and L2->L3 are plain f32
// affine layers sharing the same squared-clip activation; L3 produces the
// single raw output that's then scaled to centipawns and clamped.
func (n *Network) Forward(acc *Accumulator, sideToMove chess.Color) int {
	var us, them *[L1Size]int16
	if sideToMove == chess.White {
		us, them = &acc.White, &acc.Black
	} else {
		us, them = &acc.Black, &acc.White
	}

	var ftOut [L1Size * 2]uint8
	for i := 0; i < L1Size; i++ {
		ftOut[i] = activateFT(us[i])
		ftOut[L1Size+i] = activateFT(them[i])
	}

	var l1Out [L2Size]float32
	for j := 0; j < L2Size; j++ {
		var sum int32
		for i := 0; i < L1Size*2; i++ {
			sum += int32(ftOut[i]) * int32(n.L1Weights[i][j])
		}
		v := float32(sum)/float32(QAB) + n.L1Bias[j]
		l1Out[j] = squaredClip(v)
	}

	var l2Out [L3Size]float32
	for j := 0; j < L3Size; j++ {
		v := n.L2Bias[j]
		for i := 0; i < L2Size; i++ {
			v += l1Out[i] * n.L2Weights[i][j]
		}
		l2Out[j] = squaredClip(v)
	}

	raw := n.L3Bias
	for i := 0; i < L3Size; i++ {
		raw += l2Out[i] * n.L3Weights[i]
	}

	return clampEval(int(raw * EvalScale))
}

// InitRandom seeds small deterministic weights via a simple LCG, used when
// no trained network file is supplied (tests, perft-only builds).
func (n *Network) InitRandom(seed int64) {
	state := uint64(seed)
	next := func() int16 {
		state = state*6364136223846793005 + 1442695040888963407
		return int16((state>>48)&0xFF) - 128
	}
	nextF := func(scale float32) float32 {
		return float32(next()) / 128 * scale
	}

	for i := 0; i < NumFeatures; i++ {
		for j := 0; j < L1Size; j++ {
			n.FTWeights[i][j] = next() >> 5
		}
	}
	for j := 0; j < L1Size; j++ {
		n.FTBias[j] = next() >> 3
	}
	for i := 0; i < L1Size*2; i++ {
		for j := 0; j < L2Size; j++ {
			n.L1Weights[i][j] = int8(clampI16(next()>>6, -128, 127))
		}
	}
	for j := 0; j < L2Size; j++ {
		n.L1Bias[j] = nextF(0.1)
	}
	for i := 0; i < L2Size; i++ {
		for j := 0; j < L3Size; j++ {
			n.L2Weights[i][j] = nextF(0.2)
		}
	}
	for j := 0; j < L3Size; j++ {
		n.L2Bias[j] = nextF(0.1)
	}
	for i := 0; i < L3Size; i++ {
		n.L3Weights[i] = nextF(0.2)
	}
	n.L3Bias = nextF(0.1)
}

func clampI16(v, lo, hi int16) int16 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
