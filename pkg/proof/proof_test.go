package proof_test

import (
	"testing"

	"github.com/muridata/rollmerkle/pkg/field"
	"github.com/muridata/rollmerkle/pkg/preimage"
	"github.com/muridata/rollmerkle/pkg/proof"
	"github.com/muridata/rollmerkle/pkg/statetree"
)

func TestGetProofVerifiesAgainstRoot(t *testing.T) {
	tr, err := statetree.New(6, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	updates := map[uint64]field.Element{3: field.FromInt64(123), 10: field.FromInt64(456)}
	if err := statetree.ApplyBatch(tr, updates, preimage.New(), 2); err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}

	for idx, leaf := range updates {
		pf, err := proof.Get(tr, idx)
		if err != nil {
			t.Fatalf("Get(%d): %v", idx, err)
		}
		if len(pf.Siblings) != tr.Depth() {
			t.Fatalf("proof for %d has %d siblings, want %d", idx, len(pf.Siblings), tr.Depth())
		}
		if !proof.Verify(leaf, pf, tr.Root()) {
			t.Fatalf("proof for leaf %d did not verify against the root", idx)
		}
	}
}

func TestGetProofRejectsWrongLeaf(t *testing.T) {
	tr, err := statetree.New(4, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := statetree.ApplyBatch(tr, map[uint64]field.Element{2: field.FromInt64(5)}, preimage.New(), 2); err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}

	pf, err := proof.Get(tr, 2)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if proof.Verify(field.FromInt64(999), pf, tr.Root()) {
		t.Fatalf("proof verified against the wrong leaf value")
	}
}

func TestGetProofZeroLeafOnEmptyTree(t *testing.T) {
	tr, err := statetree.New(4, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	pf, err := proof.Get(tr, 7)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	leaf, err := tr.Leaf(7)
	if err != nil {
		t.Fatalf("Leaf: %v", err)
	}
	if !proof.Verify(leaf, pf, tr.Root()) {
		t.Fatalf("proof for an untouched leaf did not verify against the zero-hash root")
	}
}

func TestGetProofOutOfRange(t *testing.T) {
	tr, err := statetree.New(4, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := proof.Get(tr, 16); err == nil {
		t.Fatalf("Get(16) on depth-4 tree should have failed")
	}
}
