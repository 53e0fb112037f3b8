package tt

import "testing"

func TestStoreProbeRoundTrip(t *testing.T) {
	table := New(1)
	hash := uint64(0x0123456789abcdef)

	table.Store(hash, 0x1234, 57, 12, BoundExact, true)

	entry, ok := table.Probe(hash)
	if !ok {
		t.Fatal("Probe did not find an entry just stored")
	}
	if entry.Move != 0x1234 {
		t.Errorf("Move = %#x, want %#x", entry.Move, 0x1234)
	}
	if entry.Score != 57 {
		t.Errorf("Score = %d, want 57", entry.Score)
	}
	if entry.Depth != 12 {
		t.Errorf("Depth = %d, want 12", entry.Depth)
	}
	if entry.Bound != BoundExact {
		t.Errorf("Bound = %v, want BoundExact", entry.Bound)
	}
	if !entry.PV {
		t.Error("PV flag lost across Store/Probe")
	}
}

func TestProbeMissOnUnseenHash(t *testing.T) {
	table := New(1)
	table.Store(uint64(0xaaaa), 1, 1, 1, BoundExact, false)

	if _, ok := table.Probe(0xbbbb); ok {
		t.Error("Probe found an entry for a hash that was never stored")
	}
}

func TestClearRemovesEntries(t *testing.T) {
	table := New(1)
	hash := uint64(0x42)
	table.Store(hash, 5, 10, 3, BoundLower, false)
	table.Clear()

	if _, ok := table.Probe(hash); ok {
		t.Error("Probe still found an entry after Clear")
	}
}

func TestScoreToFromTTMateAdjustment(t *testing.T) {
	// A mate score found at ply 4 is stored as distance from the storing
	// node; read back at the same ply it must come back as the original
	// root-relative score, per the usual TT mate-score convention.
	const ply = 4
	mateIn2 := MateScore - 2
	stored := ScoreToTT(mateIn2, ply)
	back := ScoreFromTT(stored, ply)
	if back != mateIn2 {
		t.Errorf("ScoreFromTT(ScoreToTT(%d, %d), %d) = %d, want %d", mateIn2, ply, ply, back, mateIn2)
	}

	// A non-mate score is untouched by ply adjustment.
	plain := 123
	if got := ScoreFromTT(ScoreToTT(plain, ply), ply); got != plain {
		t.Errorf("plain score round-trip = %d, want %d", got, plain)
	}
}

func TestHashFullEmptyTableIsZero(t *testing.T) {
	table := New(1)
	if hf := table.HashFull(); hf != 0 {
		t.Errorf("HashFull on empty table = %d, want 0", hf)
	}
}

// TestStoreProbeSameClusterCollision exercises the cluster's linear scan:
// two distinct hashes that share the same cluster index (but differ above
// it) must both survive in the same entryCount-wide cluster rather than one
// silently evicting the other.
func TestStoreProbeSameClusterCollision(t *testing.T) {
	table := New(1)
	hashA := uint64(0x10)
	hashB := hashA + (table.clusterMask + 1) // differs only above the cluster-index bits

	table.Store(hashA, 1, 10, 1, BoundExact, false)
	table.Store(hashB, 2, 20, 2, BoundExact, false)

	entryA, okA := table.Probe(hashA)
	if !okA {
		t.Fatal("Probe(hashA) missed after a same-cluster Store of hashB")
	}
	if entryA.Move != 1 {
		t.Errorf("entryA.Move = %d, want 1", entryA.Move)
	}

	entryB, okB := table.Probe(hashB)
	if !okB {
		t.Fatal("Probe(hashB) missed after a same-cluster Store of hashA")
	}
	if entryB.Move != 2 {
		t.Errorf("entryB.Move = %d, want 2", entryB.Move)
	}
}

func TestResizeChangesCapacity(t *testing.T) {
	table := New(1)
	small := table.Len()
	table.Resize(16)
	if table.Len() <= small {
		t.Errorf("Len after Resize(16) = %d, want > %d", table.Len(), small)
	}
}
