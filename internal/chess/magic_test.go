package chess

import "testing"

// TestMagicBishopAttacksMatchSlowRayWalk checks every occupancy subset of
// each square's relevant mask against the ray-walking reference
// implementation, the standard way to validate a magic-bitboard table.
func TestMagicBishopAttacksMatchSlowRayWalk(t *testing.T) {
	for sq := A1; sq <= H8; sq++ {
		mask := BishopMask(sq)
		bits := mask.Count()
		n := 1 << bits
		for idx := 0; idx < n; idx++ {
			occ := IndexToOccupancy(idx, mask)
			got := BishopAttacks(sq, occ)
			want := BishopAttacksSlow(sq, occ)
			if got != want {
				t.Fatalf("BishopAttacks(%s, %#x) = %#x, want %#x (slow ray walk)", sq, uint64(occ), uint64(got), uint64(want))
			}
		}
	}
}

func TestMagicRookAttacksMatchSlowRayWalk(t *testing.T) {
	for sq := A1; sq <= H8; sq++ {
		mask := RookMask(sq)
		bits := mask.Count()
		n := 1 << bits
		for idx := 0; idx < n; idx++ {
			occ := IndexToOccupancy(idx, mask)
			got := RookAttacks(sq, occ)
			want := RookAttacksSlow(sq, occ)
			if got != want {
				t.Fatalf("RookAttacks(%s, %#x) = %#x, want %#x (slow ray walk)", sq, uint64(occ), uint64(got), uint64(want))
			}
		}
	}
}

// TestBetweenIsSymmetric checks the invariant Between(a,b) == Between(b,a),
// since the exclusive ray segment connecting two aligned squares doesn't
// depend on direction.
func TestBetweenIsSymmetric(t *testing.T) {
	for a := A1; a <= H8; a++ {
		for b := A1; b <= H8; b++ {
			if Between(a, b) != Between(b, a) {
				t.Errorf("Between(%s, %s) = %#x, Between(%s, %s) = %#x, want equal", a, b, uint64(Between(a, b)), b, a, uint64(Between(b, a)))
			}
		}
	}
}

func TestBetweenExcludesEndpoints(t *testing.T) {
	seg := Between(A1, A4)
	if seg.Has(A1) || seg.Has(A4) {
		t.Errorf("Between(A1, A4) = %#x includes an endpoint", uint64(seg))
	}
	if !seg.Has(A2) || !seg.Has(A3) {
		t.Errorf("Between(A1, A4) = %#x, want A2 and A3 set", uint64(seg))
	}
}

func TestBetweenUnalignedSquaresIsEmpty(t *testing.T) {
	if seg := Between(A1, B3); seg != 0 {
		t.Errorf("Between(A1, B3) = %#x, want empty (not aligned)", uint64(seg))
	}
}
