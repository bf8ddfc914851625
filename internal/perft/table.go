package perft

import (
	"sync"
	"sync/atomic"

	"github.com/abcus/chess-engine-sub000/internal/board"
)

// Number of shards for table locking (power of 2 for fast modulo)
const tableShardCount = 256
const tableShardMask = tableShardCount - 1

// tableEntry is one cached subtree count.
type tableEntry struct {
	Key   uint64 // Full 64-bit Zobrist hash for verification
	Nodes uint64
	Depth int32
}

// Table is a hash table of subtree node counts shared by perft workers.
// Uses sharded locking so workers on different root moves rarely contend.
type Table struct {
	entries []tableEntry
	shards  [tableShardCount]sync.RWMutex
	size    uint64
	mask    uint64

	hits   atomic.Uint64
	probes atomic.Uint64
}

// NewTable creates a table with the given size in MB. Sizes below one
// entry per shard are rounded up.
func NewTable(sizeMB int) *Table {
	entrySize := uint64(24)
	numEntries := (uint64(sizeMB) * 1024 * 1024) / entrySize
	numEntries = roundDownToPowerOf2(numEntries)
	if numEntries < tableShardCount {
		numEntries = tableShardCount
	}

	return &Table{
		entries: make([]tableEntry, numEntries),
		size:    numEntries,
		mask:    numEntries - 1,
	}
}

// roundDownToPowerOf2 rounds n down to the nearest power of 2.
func roundDownToPowerOf2(n uint64) uint64 {
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

func (t *Table) shardIndex(idx uint64) int {
	return int(idx & tableShardMask)
}

// Probe returns the stored count for hash at exactly depth.
func (t *Table) Probe(hash uint64, depth int) (uint64, bool) {
	t.probes.Add(1)

	idx := hash & t.mask
	shard := t.shardIndex(idx)

	t.shards[shard].RLock()
	entry := t.entries[idx]
	t.shards[shard].RUnlock()

	if entry.Key == hash && int(entry.Depth) == depth {
		t.hits.Add(1)
		return entry.Nodes, true
	}
	return 0, false
}

// Store saves a subtree count. Deeper entries are kept over shallower ones,
// since they stand for more work.
func (t *Table) Store(hash uint64, depth int, nodes uint64) {
	idx := hash & t.mask
	shard := t.shardIndex(idx)

	t.shards[shard].Lock()
	entry := &t.entries[idx]
	if entry.Key == hash || depth >= int(entry.Depth) {
		entry.Key = hash
		entry.Nodes = nodes
		entry.Depth = int32(depth)
	}
	t.shards[shard].Unlock()
}

// Clear empties the table and resets its statistics.
func (t *Table) Clear() {
	for i := range t.entries {
		t.entries[i] = tableEntry{}
	}
	t.hits.Store(0)
	t.probes.Store(0)
}

// HitRate returns the probe hit rate as a percentage.
func (t *Table) HitRate() float64 {
	probes := t.probes.Load()
	if probes == 0 {
		return 0
	}
	return float64(t.hits.Load()) / float64(probes) * 100
}

// Size returns the number of entries in the table.
func (t *Table) Size() uint64 {
	return t.size
}

// hashedPerft is board.Position.Perft with subtree counts cached in t.
// Depths below 2 are counted directly; the table only pays off above them.
func hashedPerft(pos *board.Position, depth int, t *Table) uint64 {
	if depth < 2 {
		return pos.Perft(depth)
	}
	if nodes, ok := t.Probe(pos.Hash, depth); ok {
		return nodes
	}

	var ml board.MoveList
	pos.GeneratePseudoLegal(&ml)
	us := pos.SideToMove

	var nodes uint64
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		check := pos.NeedsLegalityCheck(m)
		u := pos.MakeMove(m)
		if !check || pos.IsMoveLegal(us) {
			nodes += hashedPerft(pos, depth-1, t)
		}
		pos.UnmakeMove(m, u)
	}

	t.Store(pos.Hash, depth, nodes)
	return nodes
}
