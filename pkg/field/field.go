// Package field wraps the opaque field element (FE) used throughout the
// tree: a non-negative integer modulo the BN254 scalar field, with equality
// and a canonical decimal string form. The field itself is an external
// collaborator (see pkg/hash) — this package only gives callers a single
// type to pass around instead of a bare *big.Int.
package field

import "math/big"

// Element is a field element. The zero value is the additive identity.
type Element struct {
	v *big.Int
}

// Zero returns the additive identity.
func Zero() Element {
	return Element{v: big.NewInt(0)}
}

// FromInt64 builds an Element from a small non-negative integer, mostly
// useful in tests.
func FromInt64(n int64) Element {
	return Element{v: big.NewInt(n)}
}

// FromBigInt builds an Element from a big.Int, copying it so the caller may
// keep mutating their own value afterwards.
func FromBigInt(v *big.Int) Element {
	if v == nil {
		return Zero()
	}
	return Element{v: new(big.Int).Set(v)}
}

// FromString parses a canonical non-negative decimal string into an
// Element. Returns false if s is not a valid base-10 integer.
func FromString(s string) (Element, bool) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Element{}, false
	}
	return Element{v: v}, true
}

// BigInt returns a copy of the underlying big.Int.
func (e Element) BigInt() *big.Int {
	if e.v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(e.v)
}

// String returns the canonical non-negative decimal string form used as
// preimage-map keys and child encodings (§6 of SPEC_FULL.md).
func (e Element) String() string {
	if e.v == nil {
		return "0"
	}
	return e.v.String()
}

// Equal reports whether two elements denote the same field value.
func (e Element) Equal(other Element) bool {
	switch {
	case e.v == nil && other.v == nil:
		return true
	case e.v == nil:
		return other.v.Sign() == 0
	case other.v == nil:
		return e.v.Sign() == 0
	default:
		return e.v.Cmp(other.v) == 0
	}
}

// IsZero reports whether e is the additive identity.
func (e Element) IsZero() bool {
	return e.v == nil || e.v.Sign() == 0
}
