package transition

import (
	"fmt"

	"github.com/consensys/gnark/frontend"

	"github.com/muridata/rollmerkle/pkg/field"
	"github.com/muridata/rollmerkle/pkg/proof"
	"github.com/muridata/rollmerkle/pkg/statetree"
)

// WitnessResult holds a fully populated circuit assignment plus the public
// values callers typically need for logging or fixture export.
type WitnessResult struct {
	Assignment Circuit
	PrevRoot   field.Element
	NewRoot    field.Element
}

// PrepareWitness builds a transition witness for leafIndex from tree, which
// must already reflect the batch that produced newRoot. prevRoot and
// prevLeaf are the leaf's values from just before that batch ran — callers
// typically capture tree.Root() and tree.Leaf(leafIndex) prior to calling
// statetree.ApplyBatch, then pass them in here once the batch has completed.
//
// Only one authentication path is extracted (via pkg/proof, post-batch)
// because a single-leaf update never touches any node off that leaf's own
// path: its siblings are identical before and after the batch.
func PrepareWitness(tree *statetree.Tree, leafIndex uint64, prevRoot, prevLeaf field.Element) (*WitnessResult, error) {
	if tree.Depth() != Depth {
		return nil, fmt.Errorf("transition: tree depth %d does not match circuit depth %d", tree.Depth(), Depth)
	}

	newLeaf, err := tree.Leaf(leafIndex)
	if err != nil {
		return nil, fmt.Errorf("transition: read new leaf: %w", err)
	}
	newRoot := tree.Root()

	pf, err := proof.Get(tree, leafIndex)
	if err != nil {
		return nil, fmt.Errorf("transition: extract proof: %w", err)
	}

	var siblings [Depth]frontend.Variable
	var directions [Depth]frontend.Variable
	for i := 0; i < Depth; i++ {
		siblings[i] = pf.Siblings[i].BigInt()
		if pf.Directions.Test(uint(i)) {
			directions[i] = 1
		} else {
			directions[i] = 0
		}
	}

	assignment := Circuit{
		PrevRoot:   prevRoot.BigInt(),
		NewRoot:    newRoot.BigInt(),
		PrevLeaf:   prevLeaf.BigInt(),
		NewLeaf:    newLeaf.BigInt(),
		Siblings:   siblings,
		Directions: directions,
	}

	return &WitnessResult{Assignment: assignment, PrevRoot: prevRoot, NewRoot: newRoot}, nil
}
