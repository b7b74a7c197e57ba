// Package persist implements the optional persistence sidecar named in
// SPEC_FULL.md §6 ("an implementation-defined binary form"). It is grounded
// on the teacher's SaveCheckpointed/LoadCheckpointedSMT (pkg/merkle/checkpoint.go)
// and on original_source/src/utils/storage.rs's bincode-based save_tree /
// get_tree, but swaps the encoding for CBOR via fxamacker/cbor rather than
// the teacher's hand-rolled binary.Write framing or Rust's bincode.
package persist

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"

	"github.com/muridata/rollmerkle/pkg/statetree"
)

// Save encodes t's current state as CBOR and writes it to w.
func Save(w io.Writer, t *statetree.Tree) error {
	snap := t.Snapshot()
	enc := cbor.NewEncoder(w)
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("persist: encode: %w", err)
	}
	return nil
}

// Load reads a CBOR-encoded snapshot from r and rebuilds a Tree from it.
func Load(r io.Reader) (*statetree.Tree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("persist: read: %w", err)
	}

	var snap statetree.Snapshot
	if err := cbor.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("persist: decode: %w", err)
	}

	t, err := statetree.Restore(snap)
	if err != nil {
		return nil, fmt.Errorf("persist: restore: %w", err)
	}
	return t, nil
}
