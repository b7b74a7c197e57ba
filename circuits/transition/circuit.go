// Package transition implements the in-circuit consumer of the core engine's
// output described in SPEC_FULL.md's ADDITIONS: a zk-SNARK proof that a
// single leaf update advances prevRoot to newRoot correctly, without the
// verifier re-running the batch engine. It is grounded on the teacher's
// circuits/poi.MerkleProofCircuit (Poseidon2 Merkle-Damgard hasher,
// api.Select-based direction handling), generalized from one authentication
// path to a shared-siblings pair of paths: the pre-batch leaf value and the
// post-batch leaf value fold up through the *same* sibling hashes, since a
// single-leaf update never touches any node off that leaf's own path.
package transition

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash"
	"github.com/consensys/gnark/std/permutation/poseidon2"

	"github.com/muridata/rollmerkle/config"
)

// Depth is the fixed authentication-path length this circuit is compiled
// for. gnark circuit structs require compile-time-sized arrays, so this
// mirrors config.CircuitTreeDepth rather than taking depth as a runtime
// argument (SPEC_FULL.md §6, "DOMAIN STACK").
const Depth = config.CircuitTreeDepth

// Circuit proves that PrevLeaf and NewLeaf are the leaf values at the same
// tree position, under the same siblings and directions, folding to PrevRoot
// and NewRoot respectively.
type Circuit struct {
	// Public inputs.
	PrevRoot frontend.Variable `gnark:"prevRoot"`
	NewRoot  frontend.Variable `gnark:"newRoot"`

	// Private inputs.
	PrevLeaf   frontend.Variable        `gnark:"prevLeaf"`
	NewLeaf    frontend.Variable        `gnark:"newLeaf"`
	Siblings   [Depth]frontend.Variable `gnark:"siblings"`
	Directions [Depth]frontend.Variable `gnark:"directions"` // 1 = sibling on left, 0 = sibling on right
}

// Define implements the circuit logic: both leaves are folded up through
// the identical siblings/directions arrays and checked against their
// respective declared roots.
func (c *Circuit) Define(api frontend.API) error {
	p, err := poseidon2.NewPoseidon2FromParameters(api, 2, 6, 50)
	if err != nil {
		return err
	}

	prevHasher := hash.NewMerkleDamgardHasher(api, p, 0)
	newHasher := hash.NewMerkleDamgardHasher(api, p, 0)

	prevRoot := c.PrevLeaf
	newRoot := c.NewLeaf
	for i := 0; i < Depth; i++ {
		sibling := c.Siblings[i]
		direction := c.Directions[i]

		prevHasher.Reset()
		left := api.Select(direction, sibling, prevRoot)
		right := api.Select(direction, prevRoot, sibling)
		prevHasher.Write(left, right)
		prevRoot = prevHasher.Sum()

		newHasher.Reset()
		left = api.Select(direction, sibling, newRoot)
		right = api.Select(direction, newRoot, sibling)
		newHasher.Write(left, right)
		newRoot = newHasher.Sum()
	}

	api.AssertIsEqual(prevRoot, c.PrevRoot)
	api.AssertIsEqual(newRoot, c.NewRoot)
	return nil
}
