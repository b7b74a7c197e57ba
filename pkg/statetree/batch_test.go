package statetree

import (
	"errors"
	"testing"

	"github.com/muridata/rollmerkle/pkg/field"
	"github.com/muridata/rollmerkle/pkg/preimage"
)

func TestApplyBatchEmptyIsNoop(t *testing.T) {
	tr, err := New(4, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	before := tr.Root()
	if err := ApplyBatch(tr, map[uint64]field.Element{}, preimage.New(), 2); err != nil {
		t.Fatalf("ApplyBatch(empty): %v", err)
	}
	if !tr.Root().Equal(before) {
		t.Fatalf("empty batch changed the root")
	}
}

func TestApplyBatchRejectsBadStride(t *testing.T) {
	tr, err := New(4, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	updates := map[uint64]field.Element{0: field.FromInt64(1)}
	for _, s := range []int{0, -2, 3} {
		if err := ApplyBatch(tr, updates, preimage.New(), s); err == nil {
			t.Fatalf("stride %d should have been rejected", s)
		}
	}
}

func TestApplyBatchOutOfRangeLeavesTreeUnchanged(t *testing.T) {
	tr, err := New(4, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	before := tr.Root()
	updates := map[uint64]field.Element{0: field.FromInt64(1), 16: field.FromInt64(2)}
	if err := ApplyBatch(tr, updates, preimage.New(), 2); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("got %v, want ErrOutOfRange", err)
	}
	if !tr.Root().Equal(before) {
		t.Fatalf("rejected batch mutated the tree")
	}
}

func TestApplyBatchSingleLeaf(t *testing.T) {
	tr, err := New(4, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p := preimage.New()
	updates := map[uint64]field.Element{5: field.FromInt64(77)}
	if err := ApplyBatch(tr, updates, p, 2); err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}

	leaf, err := tr.Leaf(5)
	if err != nil || !leaf.Equal(field.FromInt64(77)) {
		t.Fatalf("leaf(5) = %v, %v, want 77", leaf, err)
	}
	if !tr.VerifyRoot() {
		t.Fatalf("VerifyRoot failed after single-leaf batch")
	}
	if p.Len() == 0 {
		t.Fatalf("no preimage entries recorded")
	}
}

// TestApplyBatchCoTouchedPair exercises case 1/3 of the level-promotion
// algorithm: both members of a sibling pair are updated in the same batch.
func TestApplyBatchCoTouchedPair(t *testing.T) {
	tr, err := New(4, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	updates := map[uint64]field.Element{4: field.FromInt64(10), 5: field.FromInt64(20)}
	if err := ApplyBatch(tr, updates, preimage.New(), 2); err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}
	if !tr.VerifyRoot() {
		t.Fatalf("VerifyRoot failed after co-touched pair batch")
	}

	l4, _ := tr.Leaf(4)
	l5, _ := tr.Leaf(5)
	if !l4.Equal(field.FromInt64(10)) || !l5.Equal(field.FromInt64(20)) {
		t.Fatalf("leaves not written correctly: %s %s", l4.String(), l5.String())
	}
}

// TestApplyBatchMixedPattern mirrors the sparsity pattern used by the
// benchmark harness: every 4th leaf over a wider range, producing a mix of
// solo and co-touched cases across every level.
func TestApplyBatchMixedPattern(t *testing.T) {
	tr, err := New(10, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	updates := make(map[uint64]field.Element)
	for i := uint64(0); i < 200; i += 4 {
		updates[i] = field.FromInt64(int64(i))
	}
	if err := ApplyBatch(tr, updates, preimage.New(), 8); err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}
	if !tr.VerifyRoot() {
		t.Fatalf("VerifyRoot failed after mixed-pattern batch")
	}
}

// TestApplyBatchStrideIndependence checks that the resulting root does not
// depend on the stride used to parallelize the level-promotion pass.
func TestApplyBatchStrideIndependence(t *testing.T) {
	updates := make(map[uint64]field.Element)
	for i := uint64(0); i < 64; i += 2 {
		updates[i] = field.FromInt64(int64(i) + 1)
	}

	var roots []field.Element
	for _, stride := range []int{2, 8, 250} {
		tr, err := New(8, 0)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if err := ApplyBatch(tr, updates, preimage.New(), stride); err != nil {
			t.Fatalf("ApplyBatch(stride=%d): %v", stride, err)
		}
		roots = append(roots, tr.Root())
	}

	for i := 1; i < len(roots); i++ {
		if !roots[i].Equal(roots[0]) {
			t.Fatalf("root depends on stride: roots[%d] != roots[0]", i)
		}
	}
}

// TestApplyBatchSequentialComposition checks that two sequential batches
// compose: applying {A, B} at once matches applying A then B.
func TestApplyBatchSequentialComposition(t *testing.T) {
	a := map[uint64]field.Element{1: field.FromInt64(10), 2: field.FromInt64(20)}
	b := map[uint64]field.Element{2: field.FromInt64(30), 3: field.FromInt64(40)}

	combined := map[uint64]field.Element{1: field.FromInt64(10), 2: field.FromInt64(30), 3: field.FromInt64(40)}

	sequential, err := New(4, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := ApplyBatch(sequential, a, preimage.New(), 2); err != nil {
		t.Fatalf("ApplyBatch a: %v", err)
	}
	if err := ApplyBatch(sequential, b, preimage.New(), 2); err != nil {
		t.Fatalf("ApplyBatch b: %v", err)
	}

	oneShot, err := New(4, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := ApplyBatch(oneShot, combined, preimage.New(), 2); err != nil {
		t.Fatalf("ApplyBatch combined: %v", err)
	}

	if !sequential.Root().Equal(oneShot.Root()) {
		t.Fatalf("sequential batches did not compose to the same root as one combined batch")
	}
}

func TestVerifyRootDetectsCorruption(t *testing.T) {
	tr, err := New(4, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := ApplyBatch(tr, map[uint64]field.Element{0: field.FromInt64(1)}, preimage.New(), 2); err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}
	if !tr.VerifyRoot() {
		t.Fatalf("expected VerifyRoot to pass before corruption")
	}
	tr.root = field.FromInt64(999999)
	if tr.VerifyRoot() {
		t.Fatalf("VerifyRoot passed against a corrupted root")
	}
}
