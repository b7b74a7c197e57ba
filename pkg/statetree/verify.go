package statetree

import (
	"github.com/muridata/rollmerkle/pkg/field"
	"github.com/muridata/rollmerkle/pkg/hash"
	"github.com/muridata/rollmerkle/pkg/zerohash"
)

// VerifyRoot recomputes the root from the physically stored leaves,
// non-parallel, and reports whether it matches the cached root
// (SPEC_FULL.md §4.6). It exists for tests that need an algorithm
// independent of ApplyBatch to cross-check the batch engine's output, and
// is intentionally a plain sequential pairwise fold rather than a
// level-promotion pass over a working map.
func (t *Tree) VerifyRoot() bool {
	t.mu.Lock()
	leaves := make([]field.Element, len(t.leaves))
	copy(leaves, t.leaves)
	depth := t.depth
	shift := t.shift
	want := t.root
	t.mu.Unlock()

	if len(leaves) == 0 {
		return want.Equal(zerohash.Z(depth, shift))
	}

	level := leaves
	for i := 1; i <= depth; i++ {
		zero := zerohash.Z(i-1, shift)
		next := make([]field.Element, (len(level)+1)/2)
		for j := range next {
			l := zero
			if 2*j < len(level) {
				l = level[2*j]
			}
			r := zero
			if 2*j+1 < len(level) {
				r = level[2*j+1]
			}
			next[j] = hash.Pair(l, r)
		}
		level = next
	}

	return level[0].Equal(want)
}
