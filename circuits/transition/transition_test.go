package transition_test

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"

	"github.com/muridata/rollmerkle/circuits/transition"
	"github.com/muridata/rollmerkle/pkg/field"
	"github.com/muridata/rollmerkle/pkg/preimage"
	"github.com/muridata/rollmerkle/pkg/statetree"
	"github.com/muridata/rollmerkle/pkg/zksetup"
)

// TestTransitionCircuitEndToEnd compiles the circuit, performs a dev setup,
// applies a single-leaf batch to a tree, prepares a witness from it,
// generates a proof, and verifies it.
func TestTransitionCircuitEndToEnd(t *testing.T) {
	ccs, err := zksetup.CompileCircuit(&transition.Circuit{})
	if err != nil {
		t.Fatalf("compile circuit: %v", err)
	}

	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		t.Fatalf("groth16 setup: %v", err)
	}

	tr, err := statetree.New(transition.Depth, 0)
	if err != nil {
		t.Fatalf("statetree.New: %v", err)
	}

	const leafIndex = uint64(5)
	prevRoot := tr.Root()
	prevLeaf, err := tr.Leaf(leafIndex)
	if err != nil {
		t.Fatalf("Leaf: %v", err)
	}

	updates := map[uint64]field.Element{leafIndex: field.FromInt64(777)}
	if err := statetree.ApplyBatch(tr, updates, preimage.New(), 2); err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}

	wr, err := transition.PrepareWitness(tr, leafIndex, prevRoot, prevLeaf)
	if err != nil {
		t.Fatalf("PrepareWitness: %v", err)
	}

	witness, err := frontend.NewWitness(&wr.Assignment, ecc.BN254.ScalarField())
	if err != nil {
		t.Fatalf("create witness: %v", err)
	}
	publicWitness, err := witness.Public()
	if err != nil {
		t.Fatalf("extract public witness: %v", err)
	}

	proof, err := groth16.Prove(ccs, pk, witness)
	if err != nil {
		t.Fatalf("prove: %v", err)
	}

	if err := groth16.Verify(proof, vk, publicWitness); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

// TestTransitionCircuitRejectsWrongPrevRoot checks that a witness carrying a
// prevRoot that doesn't match the declared path fails to satisfy the
// circuit's constraints.
func TestTransitionCircuitRejectsWrongPrevRoot(t *testing.T) {
	ccs, err := zksetup.CompileCircuit(&transition.Circuit{})
	if err != nil {
		t.Fatalf("compile circuit: %v", err)
	}
	pk, _, err := groth16.Setup(ccs)
	if err != nil {
		t.Fatalf("groth16 setup: %v", err)
	}

	tr, err := statetree.New(transition.Depth, 0)
	if err != nil {
		t.Fatalf("statetree.New: %v", err)
	}
	const leafIndex = uint64(1)
	prevLeaf, err := tr.Leaf(leafIndex)
	if err != nil {
		t.Fatalf("Leaf: %v", err)
	}
	updates := map[uint64]field.Element{leafIndex: field.FromInt64(1)}
	if err := statetree.ApplyBatch(tr, updates, preimage.New(), 2); err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}

	wrongPrevRoot := field.FromInt64(123456789)
	wr, err := transition.PrepareWitness(tr, leafIndex, wrongPrevRoot, prevLeaf)
	if err != nil {
		t.Fatalf("PrepareWitness: %v", err)
	}

	witness, err := frontend.NewWitness(&wr.Assignment, ecc.BN254.ScalarField())
	if err != nil {
		t.Fatalf("create witness: %v", err)
	}

	if _, err := groth16.Prove(ccs, pk, witness); err == nil {
		t.Fatalf("prove succeeded with a mismatched prevRoot, want a constraint failure")
	}
}
