// Package tt implements the shared transposition table: a lock-free,
// power-of-two-sized hash table that every search worker probes and stores
// into concurrently without a mutex, using the XOR-key validation trick
// (store key^data and data in separate words; a probe recomputes the key by
// XORing them back together and checks it against the position hash). A
// torn read — part of one writer's entry mixed with part of another's —
// recomputes to a key that almost certainly fails verification, so the
// probe is simply discarded rather than trusted, matching spec component
// C10. Grounded on the teacher's internal/engine/transposition.go replacement
// scheme, generalized from a mutex-free single-threaded array into an
// atomics-based design for Lazy SMP (spec §7).
package tt

import (
	"math/bits"
	"sync/atomic"
)

// Bound classifies the kind of score an entry stores.
type Bound uint8

const (
	BoundNone Bound = iota
	BoundExact
	BoundLower // fail-high / beta cutoff
	BoundUpper // fail-low
)

const (
	// MaxPly bounds the ply-adjusted mate-score encoding (spec §4.9).
	MaxPly     = 246
	MateScore  = 32000
	entryCount = 3 // entries per cluster; keeps a cache line's worth of probes together
)

// slot is one lock-free table entry: the Zobrist key XORed with the packed
// data word, and the packed data word itself, each its own atomic so a
// concurrent writer can never produce a half-updated slot that still
// verifies.
type slot struct {
	keyXorData atomic.Uint64
	data       atomic.Uint64
}

// Entry is the decoded, caller-friendly view of a probe result.
type Entry struct {
	Move  uint16
	Score int16
	Depth int8
	Bound Bound
	PV    bool
}

// Table is the shared transposition table: slots are grouped into
// entryCount-wide clusters that share the bottom bits of the hash, and a
// probe or store linearly scans its whole cluster rather than a single
// slot (spec §4.8). Safe for concurrent Probe/Store from multiple
// goroutines without external locking.
type Table struct {
	slots       []slot
	clusterMask uint64 // numClusters - 1
	generation  atomic.Uint32
}

// New allocates a table sized to approximately sizeMB megabytes, rounded
// down to a power of two number of clusters.
func New(sizeMB int) *Table {
	bytesPerSlot := 16 // two uint64 words
	bytesPerCluster := uint64(bytesPerSlot * entryCount)
	want := uint64(sizeMB) * 1024 * 1024 / bytesPerCluster
	numClusters := roundDownPow2(want)
	if numClusters == 0 {
		numClusters = 1
	}
	return &Table{slots: make([]slot, numClusters*entryCount), clusterMask: numClusters - 1}
}

func roundDownPow2(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	return uint64(1) << (63 - bits.LeadingZeros64(n))
}

// Resize reallocates the table, discarding all entries. Called from the UCI
// "setoption Hash" handler, never mid-search.
func (t *Table) Resize(sizeMB int) {
	*t = *New(sizeMB)
}

// Clear zeroes every slot without reallocating.
func (t *Table) Clear() {
	for i := range t.slots {
		t.slots[i].keyXorData.Store(0)
		t.slots[i].data.Store(0)
	}
	t.generation.Store(0)
}

// NewSearch bumps the generation counter so stale entries from prior
// searches lose replacement priority (spec §4.9's "always usable, never
// stale" TT requirement).
func (t *Table) NewSearch() {
	t.generation.Add(1)
}

func packData(move uint16, score int16, depth int8, bound Bound, pv bool, gen uint8) uint64 {
	var d uint64
	d |= uint64(move)
	d |= uint64(uint16(score)) << 16
	d |= uint64(uint8(depth)) << 32
	d |= uint64(bound) << 40
	if pv {
		d |= 1 << 42
	}
	d |= uint64(gen) << 43
	return d
}

func unpackData(d uint64) (move uint16, score int16, depth int8, bound Bound, pv bool, gen uint8) {
	move = uint16(d)
	score = int16(d >> 16)
	depth = int8(d >> 32)
	bound = Bound((d >> 40) & 0x3)
	pv = (d>>42)&1 != 0
	gen = uint8(d >> 43)
	return
}

// clusterBase returns the index of the first slot in hash's cluster.
func (t *Table) clusterBase(hash uint64) uint64 {
	return (hash & t.clusterMask) * entryCount
}

// Probe looks up hash, scanning its whole cluster for a verifying slot.
func (t *Table) Probe(hash uint64) (Entry, bool) {
	base := t.clusterBase(hash)
	for i := uint64(0); i < entryCount; i++ {
		s := &t.slots[base+i]
		kx := s.keyXorData.Load()
		d := s.data.Load()
		if kx^d != hash {
			continue
		}
		move, score, depth, bound, pv, _ := unpackData(d)
		if bound == BoundNone {
			continue
		}
		return Entry{Move: move, Score: score, Depth: depth, Bound: bound, PV: pv}, true
	}
	return Entry{}, false
}

// replacementScore ranks how replaceable a cluster slot is: lower scores go
// first. Entries from stale generations are the most replaceable; within a
// generation, shallower searches are.
func replacementScore(curGen, slotGen uint8, depth int8) int {
	age := int(curGen - slotGen) // wraps correctly for the small generation deltas in play
	return int(depth) - 4*age
}

// Store writes an entry for hash. It prefers a same-key slot (so a deeper
// re-search overwrites its own stale result), then an empty slot, then the
// cluster's most replaceable slot by replacementScore — matching the
// teacher's "always replace stale, keep deep current work" policy
// generalized from a single slot to a real K=3 clustered bucket (spec
// §4.8).
func (t *Table) Store(hash uint64, move uint16, score int16, depth int8, bound Bound, pv bool) {
	base := t.clusterBase(hash)
	gen := uint8(t.generation.Load())

	sameKeyIdx := -1
	emptyIdx := -1
	worstIdx := 0
	worstScore := 1 << 30

	for i := uint64(0); i < entryCount; i++ {
		s := &t.slots[base+i]
		kx := s.keyXorData.Load()
		d := s.data.Load()
		_, _, slotDepth, slotBound, _, slotGen := unpackData(d)

		if kx^d == hash {
			sameKeyIdx = int(i)
			break
		}
		if slotBound == BoundNone && emptyIdx < 0 {
			emptyIdx = int(i)
		}
		if sc := replacementScore(gen, slotGen, slotDepth); sc < worstScore {
			worstScore = sc
			worstIdx = int(i)
		}
	}

	var idx uint64
	switch {
	case sameKeyIdx >= 0:
		idx = base + uint64(sameKeyIdx)
	case emptyIdx >= 0:
		idx = base + uint64(emptyIdx)
	default:
		idx = base + uint64(worstIdx)
	}
	s := &t.slots[idx]

	kx := s.keyXorData.Load()
	d := s.data.Load()
	existingValid := kx^d == hash
	if existingValid {
		_, _, existingDepth, existingBound, _, existingGen := unpackData(d)
		if existingGen == gen && existingBound == BoundExact && bound != BoundExact && depth < existingDepth {
			return
		}
		if existingGen == gen && depth < existingDepth-3 {
			return
		}
	}
	if move == 0 && existingValid {
		// Keep the previous best move when storing a bound-only refresh.
		prevMove, _, _, _, _, _ := unpackData(d)
		move = prevMove
	}

	newData := packData(move, score, depth, bound, pv, gen)
	s.data.Store(newData)
	s.keyXorData.Store(hash ^ newData)
}

// ScoreToTT adjusts a mate-distance score for storage: mate scores are
// stored as distance-from-this-node rather than distance-from-root so they
// stay correct when reused at a different ply (spec §4.9).
func ScoreToTT(score, ply int) int16 {
	switch {
	case score >= MateScore-MaxPly:
		return int16(score + ply)
	case score <= -MateScore+MaxPly:
		return int16(score - ply)
	default:
		return int16(score)
	}
}

// ScoreFromTT reverses ScoreToTT.
func ScoreFromTT(score int16, ply int) int {
	s := int(score)
	switch {
	case s >= MateScore-MaxPly:
		return s - ply
	case s <= -MateScore+MaxPly:
		return s + ply
	default:
		return s
	}
}

// HashFull estimates per-mille occupancy by sampling the first 1000 slots
// of the current generation, matching the UCI "hashfull" info field.
func (t *Table) HashFull() int {
	sample := 1000
	if uint64(sample) > uint64(len(t.slots)) {
		sample = len(t.slots)
	}
	gen := uint8(t.generation.Load())
	used := 0
	for i := 0; i < sample; i++ {
		d := t.slots[i].data.Load()
		_, _, _, bound, _, slotGen := unpackData(d)
		if bound != BoundNone && slotGen == gen {
			used++
		}
	}
	if sample == 0 {
		return 0
	}
	return used * 1000 / sample
}

// Len returns the number of slots in the table.
func (t *Table) Len() int { return len(t.slots) }
