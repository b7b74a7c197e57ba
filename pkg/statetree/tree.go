// Package statetree implements the sparse, fixed-depth Merkle tree store
// and its batched parallel update engine (SPEC_FULL.md §3-§5). It is
// grounded on the teacher repo's pkg/merkle.SparseMerkleTree accessors and,
// for the batch engine (batch.go), on original_source/src/lib.rs's Tree and
// original_source/src/utils/parallelization.rs's split_and_run_* functions.
package statetree

import (
	"errors"
	"fmt"
	"sync"

	"github.com/muridata/rollmerkle/pkg/field"
	"github.com/muridata/rollmerkle/pkg/zerohash"
)

// ErrOutOfRange is returned when a leaf or inner-node index exceeds the
// tree's capacity at the given depth (SPEC_FULL.md §7).
var ErrOutOfRange = errors.New("statetree: index out of range")

// ErrHashFailure models the hash primitive signalling failure
// (SPEC_FULL.md §7). The reference hash primitive in pkg/hash is total and
// has no error result, so nothing in this package currently returns it;
// ApplyBatch calls hash.Pair without an error path.
var ErrHashFailure = errors.New("statetree: hash primitive failure")

// Tree is a sparse, fixed-depth Merkle tree. Missing leaf/inner positions
// are logically equal to the level-appropriate zero hash; physical storage
// grows only up to the highest ever-written index (SPEC_FULL.md §3).
//
// A Tree must not be mutated by more than one batch at a time (Non-goals,
// §1). The single mutex below guards each read-modify-write critical
// section described in §5; it is taken per entry, not held across a whole
// batch, so two concurrent ApplyBatch calls on one Tree are not detected
// or serialized.
type Tree struct {
	mu sync.Mutex

	depth int
	shift uint32

	leaves []field.Element   // leaves[n], sparse up to the highest written index
	inners [][]field.Element // inners[i-1] is level i, i in [1,depth]
	root   field.Element
}

// New constructs an empty tree of the given depth and shift
// (SPEC_FULL.md §3, §6: 1 <= depth <= 64, 0 <= shift).
func New(depth int, shift uint32) (*Tree, error) {
	if depth < 1 || depth > 64 {
		return nil, fmt.Errorf("statetree: depth %d out of [1,64]", depth)
	}
	return &Tree{
		depth:  depth,
		shift:  shift,
		inners: make([][]field.Element, depth),
		root:   zerohash.Z(depth, shift),
	}, nil
}

// Depth returns the tree's configured depth.
func (t *Tree) Depth() int { return t.depth }

// Shift returns the tree's configured height shift.
func (t *Tree) Shift() uint32 { return t.shift }

// Root returns the cached root hash (invariant 1, SPEC_FULL.md §3).
func (t *Tree) Root() field.Element {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.root
}

// fitsIndex reports whether n is a valid index into a level of the given
// bit-width (2^bits positions), handling bits==64 without overflowing
// uint64 arithmetic.
func fitsIndex(n uint64, bits int) bool {
	if bits >= 64 {
		return true
	}
	return n < (uint64(1) << uint(bits))
}

// Leaf returns the value at leaf position n, or the leaf-level zero hash
// if n is beyond the physically stored leaves (SPEC_FULL.md §4.2).
func (t *Tree) Leaf(n uint64) (field.Element, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.leafLocked(n)
}

func (t *Tree) leafLocked(n uint64) (field.Element, error) {
	if !fitsIndex(n, t.depth) {
		return field.Element{}, fmt.Errorf("statetree: leaf %d: %w", n, ErrOutOfRange)
	}
	if n < uint64(len(t.leaves)) {
		return t.leaves[n], nil
	}
	return zerohash.Z(0, t.shift), nil
}

// Inner returns the value at level i, position j, or that level's zero
// hash if unwritten (SPEC_FULL.md §4.2). 1 <= i <= depth.
func (t *Tree) Inner(i int, j uint64) (field.Element, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.innerLocked(i, j)
}

func (t *Tree) innerLocked(i int, j uint64) (field.Element, error) {
	if i < 1 || i > t.depth {
		return field.Element{}, fmt.Errorf("statetree: inner level %d: %w", i, ErrOutOfRange)
	}
	if !fitsIndex(j, t.depth-i) {
		return field.Element{}, fmt.Errorf("statetree: inner(%d,%d): %w", i, j, ErrOutOfRange)
	}
	lvl := t.inners[i-1]
	if j < uint64(len(lvl)) {
		return lvl[j], nil
	}
	return zerohash.Z(i, t.shift), nil
}

// node reads level i position idx, where level 0 means the leaf level.
// It unifies leaf/inner reads for the batch engine's level-generic code.
func (t *Tree) nodeLocked(i int, idx uint64) (field.Element, error) {
	if i == 0 {
		return t.leafLocked(idx)
	}
	return t.innerLocked(i, idx)
}

// SetLeaf grows leaves to length n+1 (gaps filled with the leaf zero hash)
// and writes v at n (SPEC_FULL.md §4.2).
func (t *Tree) SetLeaf(n uint64, v field.Element) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.setLeafLocked(n, v)
}

func (t *Tree) setLeafLocked(n uint64, v field.Element) error {
	if !fitsIndex(n, t.depth) {
		return fmt.Errorf("statetree: leaf %d: %w", n, ErrOutOfRange)
	}
	if n >= uint64(len(t.leaves)) {
		zero := zerohash.Z(0, t.shift)
		grown := make([]field.Element, n+1)
		copy(grown, t.leaves)
		for i := len(t.leaves); i < len(grown); i++ {
			grown[i] = zero
		}
		t.leaves = grown
	}
	t.leaves[n] = v
	return nil
}

// SetInner grows inners[i-1] to length j+1 (gaps filled with level i's zero
// hash) and writes v at j (SPEC_FULL.md §4.2).
func (t *Tree) SetInner(i int, j uint64, v field.Element) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.setInnerLocked(i, j, v)
}

func (t *Tree) setInnerLocked(i int, j uint64, v field.Element) error {
	if i < 1 || i > t.depth {
		return fmt.Errorf("statetree: inner level %d: %w", i, ErrOutOfRange)
	}
	if !fitsIndex(j, t.depth-i) {
		return fmt.Errorf("statetree: inner(%d,%d): %w", i, j, ErrOutOfRange)
	}
	lvl := t.inners[i-1]
	if j >= uint64(len(lvl)) {
		zero := zerohash.Z(i, t.shift)
		grown := make([]field.Element, j+1)
		copy(grown, lvl)
		for k := len(lvl); k < len(grown); k++ {
			grown[k] = zero
		}
		t.inners[i-1] = grown
		lvl = grown
	}
	lvl[j] = v
	return nil
}

func (t *Tree) setNodeLocked(i int, idx uint64, v field.Element) error {
	if i == 0 {
		return t.setLeafLocked(idx, v)
	}
	return t.setInnerLocked(i, idx, v)
}

// Snapshot is the exported, serialization-friendly form of a Tree's state,
// consumed by pkg/persist. Values are encoded as canonical decimal strings
// (SPEC_FULL.md §6), matching the preimage map's encoding.
type Snapshot struct {
	Depth  int
	Shift  uint32
	Leaves []string
	Inners [][]string // Inners[i-1] is level i
	Root   string
}

// Snapshot captures the tree's current state for persistence.
func (t *Tree) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	leaves := make([]string, len(t.leaves))
	for i, v := range t.leaves {
		leaves[i] = v.String()
	}
	inners := make([][]string, len(t.inners))
	for i, lvl := range t.inners {
		row := make([]string, len(lvl))
		for j, v := range lvl {
			row[j] = v.String()
		}
		inners[i] = row
	}
	return Snapshot{
		Depth:  t.depth,
		Shift:  t.shift,
		Leaves: leaves,
		Inners: inners,
		Root:   t.root.String(),
	}
}

// Restore rebuilds a Tree from a Snapshot produced by Snapshot.
func Restore(s Snapshot) (*Tree, error) {
	t, err := New(s.Depth, s.Shift)
	if err != nil {
		return nil, err
	}

	leaves := make([]field.Element, len(s.Leaves))
	for i, str := range s.Leaves {
		v, ok := field.FromString(str)
		if !ok {
			return nil, fmt.Errorf("statetree: restore: invalid leaf encoding at %d", i)
		}
		leaves[i] = v
	}
	t.leaves = leaves

	if len(s.Inners) != t.depth {
		return nil, fmt.Errorf("statetree: restore: expected %d inner levels, got %d", t.depth, len(s.Inners))
	}
	for i, row := range s.Inners {
		lvl := make([]field.Element, len(row))
		for j, str := range row {
			v, ok := field.FromString(str)
			if !ok {
				return nil, fmt.Errorf("statetree: restore: invalid inner encoding at level %d pos %d", i+1, j)
			}
			lvl[j] = v
		}
		t.inners[i] = lvl
	}

	root, ok := field.FromString(s.Root)
	if !ok {
		return nil, fmt.Errorf("statetree: restore: invalid root encoding")
	}
	t.root = root

	return t, nil
}
