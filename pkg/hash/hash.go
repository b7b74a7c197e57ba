// Package hash is the external hash primitive collaborator described in
// SPEC_FULL.md §6: a deterministic, total, collision-resistant pair-hash
// H(a,b) -> h over the BN254 scalar field. The tree engine treats this as a
// black box; it is grounded directly on the teacher repo's HashNodes,
// which feeds canonical 32-byte fr.Element encodings into Poseidon2 so
// that the zero value writes 32 zero bytes instead of an empty slice.
package hash

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/poseidon2"

	"github.com/muridata/rollmerkle/pkg/field"
)

// Pair hashes two field elements together. It is deterministic and total;
// a panic from the underlying Poseidon2 hasher (which does not happen in
// normal operation, since Write/Sum never fail for this hasher) is the only
// way this can fail, and SPEC_FULL.md's HashFailure error kind models that
// possibility for callers that wrap Pair behind a fallible interface.
func Pair(l, r field.Element) field.Element {
	h := poseidon2.NewMerkleDamgardHasher()

	var lFr, rFr fr.Element
	lFr.SetBigInt(l.BigInt())
	rFr.SetBigInt(r.BigInt())

	lBytes := lFr.Bytes()
	rBytes := rFr.Bytes()
	h.Write(lBytes[:])
	h.Write(rBytes[:])

	return field.FromBigInt(new(big.Int).SetBytes(h.Sum(nil)))
}
