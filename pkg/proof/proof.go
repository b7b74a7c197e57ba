// Package proof implements the inclusion proof extractor and fold verifier
// of SPEC_FULL.md §4.5: for a leaf index n, the D sibling hashes on its
// authentication path plus, for each level, which side the sibling sits on.
package proof

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"

	"github.com/muridata/rollmerkle/pkg/field"
	"github.com/muridata/rollmerkle/pkg/hash"
	"github.com/muridata/rollmerkle/pkg/statetree"
)

// Proof is the authentication path for a single leaf: D sibling hashes and,
// for each level, a direction bit. Directions.Test(i) == true means the
// ancestor at level i is the right child, so its sibling sits on the left
// (SPEC_FULL.md §4.5: directions[i] is the i-th bit of the leaf index's
// binary expansion, LSB first).
type Proof struct {
	Siblings   []field.Element
	Directions *bitset.BitSet
}

// Get extracts the proof for leaf n from t (§4.5's get_proof).
func Get(t *statetree.Tree, n uint64) (*Proof, error) {
	depth := t.Depth()
	siblings := make([]field.Element, depth)
	dirs := bitset.New(uint(depth))

	idx := n
	for lvl := 0; lvl < depth; lvl++ {
		var sibIdx uint64
		if idx%2 == 0 {
			sibIdx = idx + 1
		} else {
			sibIdx = idx - 1
			dirs.Set(uint(lvl))
		}

		var sib field.Element
		var err error
		if lvl == 0 {
			sib, err = t.Leaf(sibIdx)
		} else {
			sib, err = t.Inner(lvl, sibIdx)
		}
		if err != nil {
			return nil, fmt.Errorf("proof: leaf %d level %d: %w", n, lvl, err)
		}

		siblings[lvl] = sib
		idx /= 2
	}

	return &Proof{Siblings: siblings, Directions: dirs}, nil
}

// Verify folds leaf up through pf's siblings and reports whether the
// resulting root matches want.
func Verify(leaf field.Element, pf *Proof, want field.Element) bool {
	cur := leaf
	for i, sib := range pf.Siblings {
		if pf.Directions.Test(uint(i)) {
			cur = hash.Pair(sib, cur)
		} else {
			cur = hash.Pair(cur, sib)
		}
	}
	return cur.Equal(want)
}
