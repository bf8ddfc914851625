package board

// historyTableSize is the number of count slots; keys map by key mod size.
const historyTableSize = 1 << 14

// History records the hash of every position along a game or search line and
// answers repetition queries. A per-slot count screens out the common case
// where a key has not appeared often enough; the key list gives the exact
// answer when the screen passes.
type History struct {
	keys   []uint64
	counts [historyTableSize]uint16
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{keys: make([]uint64, 0, 256)}
}

// Push records a position key.
func (h *History) Push(key uint64) {
	h.keys = append(h.keys, key)
	h.counts[key%historyTableSize]++
}

// Pop removes the most recent key. Pops pair with pushes in LIFO order.
func (h *History) Pop() {
	n := len(h.keys) - 1
	key := h.keys[n]
	h.keys = h.keys[:n]
	h.counts[key%historyTableSize]--
}

// Len returns the number of recorded keys.
func (h *History) Len() int {
	return len(h.keys)
}

// Last returns the most recent key, or 0 if the history is empty.
func (h *History) Last() uint64 {
	if len(h.keys) == 0 {
		return 0
	}
	return h.keys[len(h.keys)-1]
}

// Count returns the exact number of times key was recorded.
func (h *History) Count(key uint64) int {
	if h.counts[key%historyTableSize] == 0 {
		return 0
	}
	n := 0
	for _, k := range h.keys {
		if k == key {
			n++
		}
	}
	return n
}

// Repeated reports whether key was recorded at least n times.
func (h *History) Repeated(key uint64, n int) bool {
	if int(h.counts[key%historyTableSize]) < n {
		return false
	}
	return h.Count(key) >= n
}

// Clone returns an independent copy.
func (h *History) Clone() *History {
	if h == nil {
		return nil
	}
	c := &History{keys: make([]uint64, len(h.keys), cap(h.keys)), counts: h.counts}
	copy(c.keys, h.keys)
	return c
}
