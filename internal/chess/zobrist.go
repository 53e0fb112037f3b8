package chess

// Zobrist key tables (spec §6): piece-square-colour keys, a side-to-move
// key, en-passant-file keys, and castling-rights keys, all drawn from a
// fixed-seed xorshift64* stream so hashes are reproducible across builds.
var (
	zobristPieceKeys [2][6][64]uint64
	zobristEPFile    [8]uint64
	zobristCastling  [16]uint64
	zobristSTM       uint64
)

func init() {
	rng := newPRNG(0x9E3779B97F4A7C15)
	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			for sq := A1; sq <= H8; sq++ {
				zobristPieceKeys[c][pt][sq] = rng.next()
			}
		}
	}
	for f := 0; f < 8; f++ {
		zobristEPFile[f] = rng.next()
	}
	for i := 0; i < 16; i++ {
		zobristCastling[i] = rng.next()
	}
	zobristSTM = rng.next()
}

// ZobristPiece returns the key for a (colour, type) piece sitting on sq.
func ZobristPiece(c Color, pt PieceType, sq Square) uint64 { return zobristPieceKeys[c][pt][sq] }

// ZobristEPFile returns the key for an en-passant target on the given file.
func ZobristEPFile(file int) uint64 { return zobristEPFile[file] }

// ZobristCastling returns the key for a given castling-rights bitmask
// (spec §3's KQkq availability, independent of Chess960 rook file).
func ZobristCastling(cr CastlingRights) uint64 { return zobristCastling[cr.index()] }

// ZobristSideToMove is XORed into the hash whenever it is Black's turn.
func ZobristSideToMove() uint64 { return zobristSTM }

// ComputeHash recomputes the full Zobrist key from scratch, used by
// incremental-vs-fresh consistency tests (spec §8).
func (b *Board) ComputeHash() uint64 {
	var h uint64
	for sq := A1; sq <= H8; sq++ {
		if p := b.mailbox[sq]; p != NoPiece {
			h ^= ZobristPiece(p.Color(), p.Type(), sq)
		}
	}
	if b.EnPassant != NoSquare {
		h ^= zobristEPFile[b.EnPassant.File()]
	}
	h ^= ZobristCastling(b.Castling)
	if b.SideToMove == Black {
		h ^= zobristSTM
	}
	return h
}
