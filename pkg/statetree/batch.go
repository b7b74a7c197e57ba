package statetree

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rs/zerolog/log"

	"github.com/muridata/rollmerkle/pkg/field"
	"github.com/muridata/rollmerkle/pkg/hash"
	"github.com/muridata/rollmerkle/pkg/preimage"
)

// ApplyBatch is the batch update engine (SPEC_FULL.md §4.3): it applies a
// set of leaf updates atomically and writes the new root into t, recording
// both the pre- and post-batch preimages of every touched node into p.
//
// It is grounded on original_source/src/lib.rs's Tree::batch_transition_updates
// and original_source/src/utils/parallelization.rs's split_and_run_first_row /
// split_and_run_next_row, generalized from Rust's rayon::join recursive
// fork-join to Go's errgroup: one goroutine per stride-sized chunk of the
// current level's working map, with g.Wait() as the level barrier.
//
// stride must be even (SPEC_FULL.md §5, "stride tuning") so a sibling pair
// is never split across a task boundary in the leaf pass.
func ApplyBatch(t *Tree, updates map[uint64]field.Element, p *preimage.Map, stride int) error {
	if stride <= 0 || stride%2 != 0 {
		return fmt.Errorf("statetree: stride %d must be a positive even number", stride)
	}
	if len(updates) == 0 {
		return nil
	}

	start := time.Now()
	depth := t.Depth()

	// Contract: out-of-range indices fail the batch immediately, tree
	// unchanged (SPEC_FULL.md §4.3, §7) — validate before any write.
	for idx := range updates {
		if !fitsIndex(idx, depth) {
			return fmt.Errorf("statetree: batch leaf %d: %w", idx, ErrOutOfRange)
		}
	}

	w := make(map[uint64]field.Element, len(updates))
	for k, v := range updates {
		w[k] = v
	}

	for level := 0; level < depth; level++ {
		next, err := t.applyLevel(p, level, w, stride)
		if err != nil {
			return err
		}
		w = next
	}

	t.mu.Lock()
	root, err := t.innerLocked(depth, 0)
	if err != nil {
		t.mu.Unlock()
		return err
	}
	t.root = root
	t.mu.Unlock()

	log.Debug().
		Int("leaves", len(updates)).
		Int("depth", depth).
		Dur("elapsed", time.Since(start)).
		Str("root", root.String()).
		Msg("statetree: batch applied")

	return nil
}

// applyLevel processes every entry of the level-i working map w in
// stride-sized parallel chunks and returns the working map for level i+1
// (SPEC_FULL.md §4.3, "level promotion"). Chunks are cut from the keys in
// sorted order purely for deterministic task assignment; correctness of
// the coupling invariant does not depend on chunk boundaries because every
// task consults the *whole* level map w, not just its own chunk, when
// checking whether a sibling is co-touched.
func (t *Tree) applyLevel(p *preimage.Map, level int, w map[uint64]field.Element, stride int) (map[uint64]field.Element, error) {
	keys := make([]uint64, 0, len(w))
	for k := range w {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool { return keys[a] < keys[b] })

	next := make(map[uint64]field.Element, len(w)/2+1)
	var mu sync.Mutex

	var g errgroup.Group
	for lo := 0; lo < len(keys); {
		hi := lo + stride
		if hi > len(keys) {
			hi = len(keys)
		}
		// Keep a sibling pair (2k, 2k+1) inside the same chunk.
		if hi < len(keys) && keys[hi-1]%2 == 0 && keys[hi] == keys[hi-1]+1 {
			hi++
		}
		chunk := keys[lo:hi]
		lo = hi

		g.Go(func() error {
			local := make(map[uint64]field.Element, len(chunk))
			for _, idx := range chunk {
				val := w[idx]
				parentIdx, prevParent, emit, err := t.processEntry(p, level, idx, val, w)
				if err != nil {
					return err
				}
				if emit {
					local[parentIdx] = prevParent
				}
			}
			mu.Lock()
			for k, v := range local {
				next[k] = v
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return next, nil
}

// processEntry dispatches one W_i entry to one of the four cases of
// SPEC_FULL.md §4.3 based on the parity of idx and whether its sibling is
// also present in w (the coupling invariant: only the odd sibling's case
// writes the parent and emits to W_{i+1}).
func (t *Tree) processEntry(p *preimage.Map, level int, idx uint64, val field.Element, w map[uint64]field.Element) (parentIdx uint64, prevParent field.Element, emit bool, err error) {
	sibling := idx ^ 1
	siblingVal, coTouched := w[sibling]

	if idx%2 == 0 {
		if coTouched {
			// Case 1: even idx, sibling co-touched — the odd sibling's
			// case computes the parent once, using both new values.
			return 0, field.Element{}, false, nil
		}
		return t.processEvenSolo(p, level, idx, val)
	}
	if coTouched {
		return t.processOddCoupled(p, level, idx, val, siblingVal)
	}
	return t.processOddSolo(p, level, idx, val)
}

// recordPreimage inserts the pre- and post-state preimage entries for one
// computed parent (SPEC_FULL.md §4.4): the pre-state entry, keyed by the
// parent's pre-batch hash, is first-write-wins; the post-state entry,
// keyed by the newly computed hash, is unconditional.
func recordPreimage(p *preimage.Map, prevParentKey field.Element, prevL, prevR field.Element, newParentKey field.Element, newL, newR field.Element) {
	p.InsertPreState(prevParentKey.String(), prevL.String(), prevR.String())
	p.InsertPostState(newParentKey.String(), newL.String(), newR.String())
}

// processEvenSolo is case 2 of §4.3: even idx, sibling NOT co-touched.
func (t *Tree) processEvenSolo(p *preimage.Map, level int, idx uint64, val field.Element) (uint64, field.Element, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	// Read the sibling before writing the even leaf (SPEC_FULL.md §9, open
	// question on ordering): at this point R is necessarily the sibling's
	// pre-batch value, since only idx is touched in this pair.
	R, err := t.nodeLocked(level, idx+1)
	if err != nil {
		return 0, field.Element{}, false, err
	}

	newVal := val
	if level != 0 {
		// Already written as a parent by the previous level's pass.
		newVal, err = t.nodeLocked(level, idx)
		if err != nil {
			return 0, field.Element{}, false, err
		}
	}

	var prevLeft field.Element
	if level == 0 {
		prevLeft, err = t.leafLocked(idx) // old value, not yet overwritten
		if err != nil {
			return 0, field.Element{}, false, err
		}
	} else {
		prevLeft = val // carried pre-batch value of this node
	}

	newParent := hash.Pair(newVal, R)

	prevParent, err := t.nodeLocked(level+1, idx/2)
	if err != nil {
		return 0, field.Element{}, false, err
	}
	if err := t.setNodeLocked(level+1, idx/2, newParent); err != nil {
		return 0, field.Element{}, false, err
	}
	if level == 0 {
		if err := t.setLeafLocked(idx, val); err != nil {
			return 0, field.Element{}, false, err
		}
	}

	recordPreimage(p, prevParent, prevLeft, R, newParent, newVal, R)
	return idx / 2, prevParent, true, nil
}

// processOddSolo is case 4 of §4.3: odd idx, sibling NOT co-touched.
func (t *Tree) processOddSolo(p *preimage.Map, level int, idx uint64, val field.Element) (uint64, field.Element, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	L, err := t.nodeLocked(level, idx-1)
	if err != nil {
		return 0, field.Element{}, false, err
	}

	newVal := val
	if level != 0 {
		newVal, err = t.nodeLocked(level, idx)
		if err != nil {
			return 0, field.Element{}, false, err
		}
	}

	var prevRight field.Element
	if level == 0 {
		prevRight, err = t.leafLocked(idx)
		if err != nil {
			return 0, field.Element{}, false, err
		}
	} else {
		prevRight = val
	}

	newParent := hash.Pair(L, newVal)

	prevParent, err := t.nodeLocked(level+1, idx/2)
	if err != nil {
		return 0, field.Element{}, false, err
	}
	if err := t.setNodeLocked(level+1, idx/2, newParent); err != nil {
		return 0, field.Element{}, false, err
	}
	if level == 0 {
		if err := t.setLeafLocked(idx, val); err != nil {
			return 0, field.Element{}, false, err
		}
	}

	recordPreimage(p, prevParent, L, prevRight, newParent, L, newVal)
	return idx / 2, prevParent, true, nil
}

// processOddCoupled is case 3 of §4.3: odd idx, sibling co-touched. It
// writes the parent once for the pair, using both new values.
func (t *Tree) processOddCoupled(p *preimage.Map, level int, idx uint64, val, siblingVal field.Element) (uint64, field.Element, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var newLeft, newRight field.Element
	var err error
	if level == 0 {
		// Leaf level: W_0's values ARE the new hashes, straight from U.
		newLeft = siblingVal
		newRight = val
	} else {
		newLeft, err = t.nodeLocked(level, idx-1)
		if err != nil {
			return 0, field.Element{}, false, err
		}
		newRight, err = t.nodeLocked(level, idx)
		if err != nil {
			return 0, field.Element{}, false, err
		}
	}

	var prevLeft, prevRight field.Element
	if level == 0 {
		prevLeft, err = t.leafLocked(idx - 1)
		if err != nil {
			return 0, field.Element{}, false, err
		}
		prevRight, err = t.leafLocked(idx)
		if err != nil {
			return 0, field.Element{}, false, err
		}
	} else {
		prevLeft = siblingVal
		prevRight = val
	}

	newParent := hash.Pair(newLeft, newRight)

	prevParent, err := t.nodeLocked(level+1, idx/2)
	if err != nil {
		return 0, field.Element{}, false, err
	}
	if err := t.setNodeLocked(level+1, idx/2, newParent); err != nil {
		return 0, field.Element{}, false, err
	}
	if level == 0 {
		if err := t.setLeafLocked(idx-1, newLeft); err != nil {
			return 0, field.Element{}, false, err
		}
		if err := t.setLeafLocked(idx, newRight); err != nil {
			return 0, field.Element{}, false, err
		}
	}

	recordPreimage(p, prevParent, prevLeft, prevRight, newParent, newLeft, newRight)
	return idx / 2, prevParent, true, nil
}
