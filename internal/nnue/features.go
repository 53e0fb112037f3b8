package nnue

import "github.com/corvidchess/corvid/internal/chess"

// FeatureIndex computes the input index for a piece of type pt and colour
// pc standing on sq, as seen from perspective. Black's perspective mirrors
// every square vertically and swaps piece colour, so both sides are fed
// through the same weight table. Unlike a king-relative feature set, the
// king itself is an ordinary feature here — there's no separate bucket to
// fold it into.
func FeatureIndex(perspective chess.Color, pt chess.PieceType, pc chess.Color, sq chess.Square) int {
	if perspective == chess.Black {
		sq = sq.Mirror()
		pc = pc.Other()
	}
	return int(pc)*NumPieceTypes*NumSquares + int(pt)*NumSquares + int(sq)
}

// GetActiveFeatures returns every active feature index, from both
// perspectives, for the current board.
func GetActiveFeatures(b *chess.Board) (white, black []int) {
	white = make([]int, 0, 32)
	black = make([]int, 0, 32)

	for color := chess.White; color <= chess.Black; color++ {
		for pt := chess.Pawn; pt <= chess.King; pt++ {
			pieces := b.Pieces(color, pt)
			pieces.ForEach(func(sq chess.Square) {
				white = append(white, FeatureIndex(chess.White, pt, color, sq))
				black = append(black, FeatureIndex(chess.Black, pt, color, sq))
			})
		}
	}
	return white, black
}

// GetChangedFeatures returns the feature indices to add/remove for m, which
// has already been made on b. moved is the piece that stood on m.From()
// before the move was made — it must be captured by the caller before
// calling MakeMove, since reading m.From() afterward would see whatever
// (possibly empty) the move left behind, and reading m.To() afterward
// would see a promoted piece rather than the pawn that actually vacated
// m.From(). captured is the piece that stood on the destination (or the
// en-passant square) before m was played, or chess.NoPiece. Returns
// all-nil slices (caller must do a full refresh) for a king move, since
// that changes every feature index for that perspective.
func GetChangedFeatures(b *chess.Board, m chess.Move, moved, captured chess.Piece) (whiteAdd, whiteRem, blackAdd, blackRem []int) {
	if moved == chess.NoPiece {
		return
	}
	movingPT := moved.Type()
	movingColor := moved.Color()
	if movingPT == chess.King {
		return
	}

	from, to := m.From(), m.To()
	whiteRem = append(whiteRem, FeatureIndex(chess.White, movingPT, movingColor, from))
	blackRem = append(blackRem, FeatureIndex(chess.Black, movingPT, movingColor, from))

	addPT := movingPT
	if m.IsPromotion() {
		addPT = m.Promotion()
	}
	whiteAdd = append(whiteAdd, FeatureIndex(chess.White, addPT, movingColor, to))
	blackAdd = append(blackAdd, FeatureIndex(chess.Black, addPT, movingColor, to))

	if captured != chess.NoPiece && captured.Type() != chess.King {
		capturedPT := captured.Type()
		capturedColor := captured.Color()
		capturedSq := to
		if m.IsEnPassant() {
			if movingColor == chess.White {
				capturedSq = to - 8
			} else {
				capturedSq = to + 8
			}
		}
		whiteRem = append(whiteRem, FeatureIndex(chess.White, capturedPT, capturedColor, capturedSq))
		blackRem = append(blackRem, FeatureIndex(chess.Black, capturedPT, capturedColor, capturedSq))
	}
	return
}
