// Package zerohash provides the sparse zero-hash cache: Z(i, S) is the
// hash of an all-zero subtree of height i, computed at a tree that starts
// S levels above absolute height 0 (SPEC_FULL.md §4.1). It is grounded on
// the teacher's PrecomputeZeroHashes, generalized to a process-wide cache
// keyed by shift so that multiple trees of different shift sharing a
// process never collide (SPEC_FULL.md §9, "Zero-hash derivation and shift").
package zerohash

import (
	"sync"

	"github.com/muridata/rollmerkle/pkg/field"
	"github.com/muridata/rollmerkle/pkg/hash"
)

// Cache memoizes Z(i, S) for the process lifetime. It is pure and safe for
// concurrent use: entries are computed at most once per (depth, shift) pair
// and never mutated afterward.
type Cache struct {
	mu    sync.Mutex
	byShift map[uint32][]field.Element // shift -> Z(0,shift)..Z(maxComputed,shift)
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{byShift: make(map[uint32][]field.Element)}
}

// global is the default process-lifetime cache used by Z when callers don't
// need an isolated instance (e.g. in tests exercising collisions directly).
var global = NewCache()

// Z returns the zero hash for height i at shift S, extending the memoized
// chain for that shift as needed. Z(0,S) is the field zero; Z(i,S) =
// H(Z(i-1,S), Z(i-1,S)).
func Z(i int, shift uint32) field.Element {
	return global.Z(i, shift)
}

// Z is the per-instance form of the package-level Z function.
func (c *Cache) Z(i int, shift uint32) field.Element {
	c.mu.Lock()
	defer c.mu.Unlock()

	chain, ok := c.byShift[shift]
	if !ok {
		chain = []field.Element{field.Zero()}
		c.byShift[shift] = chain
	}

	for len(chain) <= i {
		prev := chain[len(chain)-1]
		chain = append(chain, hash.Pair(prev, prev))
	}
	c.byShift[shift] = chain

	return chain[i]
}

// Chain returns Z(0,shift)..Z(depth,shift) as a slice, computing any
// missing prefix. Convenient for callers that want the whole ladder up
// front (e.g. a freshly constructed tree).
func (c *Cache) Chain(depth int, shift uint32) []field.Element {
	c.Z(depth, shift) // ensures the chain is populated through depth
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]field.Element, depth+1)
	copy(out, c.byShift[shift][:depth+1])
	return out
}
