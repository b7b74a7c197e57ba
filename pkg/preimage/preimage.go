// Package preimage implements the preimage witness map described in
// SPEC_FULL.md §3/§4.4: a mapping from a hash to the ordered pair of
// children that produced it, additive across a batch, with first-write-wins
// semantics for pre-state entries and unconditional writes for post-state
// entries. It is grounded on the teacher's serde_json::Map<String, Value>
// preimage (original_source/src/utils/parallelization.rs) — the Go analogue
// is a mutex-guarded map keyed by the canonical decimal string form of the
// hash, which doubles as the wire encoding named in SPEC_FULL.md §6.
package preimage

import "sync"

// Pair is the ordered pair of children (left, right) that hashed to a
// parent, encoded as canonical decimal strings (SPEC_FULL.md §6).
type Pair [2]string

// Map is the mutable preimage witness output of a batch update. The zero
// value is ready to use.
type Map struct {
	mu      sync.Mutex
	entries map[string]Pair
}

// New returns an empty preimage map.
func New() *Map {
	return &Map{entries: make(map[string]Pair)}
}

// InsertPreState records the pre-batch children of hash key, but only if
// key has never been observed before. This preserves the first-observed
// pre-state for any hash, which matters because the pre-state is a
// property of the tree before the batch began, not of processing order
// (SPEC_FULL.md §4.4, §9).
func (m *Map) InsertPreState(key string, left, right string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries == nil {
		m.entries = make(map[string]Pair)
	}
	if _, ok := m.entries[key]; ok {
		return
	}
	m.entries[key] = Pair{left, right}
}

// InsertPostState unconditionally records the children that hashed to the
// newly computed parent key. Each parent hash computed within a single
// batch is unique to its new children, so there is nothing to preserve
// across writes (SPEC_FULL.md §9).
func (m *Map) InsertPostState(key string, left, right string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries == nil {
		m.entries = make(map[string]Pair)
	}
	m.entries[key] = Pair{left, right}
}

// Get returns the children recorded for key, if any.
func (m *Map) Get(key string) (Pair, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.entries[key]
	return p, ok
}

// Len reports the number of distinct hashes recorded.
func (m *Map) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Snapshot returns a shallow copy of the current entries, for tests and
// exporters that need to range over the whole map without holding the lock.
func (m *Map) Snapshot() map[string]Pair {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]Pair, len(m.entries))
	for k, v := range m.entries {
		out[k] = v
	}
	return out
}
