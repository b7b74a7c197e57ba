package field

import (
	"math/big"
	"testing"
)

func TestZeroIsAdditiveIdentity(t *testing.T) {
	if !Zero().IsZero() {
		t.Fatalf("Zero() is not IsZero()")
	}
	if Zero().String() != "0" {
		t.Fatalf("Zero().String() = %q, want %q", Zero().String(), "0")
	}
}

func TestFromStringRoundTrip(t *testing.T) {
	cases := []string{"0", "1", "42", "115792089237316195423570985008687907853269984665640564039457584007913129639935"}
	for _, s := range cases {
		t.Run(s, func(t *testing.T) {
			e, ok := FromString(s)
			if !ok {
				t.Fatalf("FromString(%q) failed", s)
			}
			if e.String() != s {
				t.Fatalf("round trip: got %q, want %q", e.String(), s)
			}
		})
	}
}

func TestFromStringRejectsGarbage(t *testing.T) {
	if _, ok := FromString("not-a-number"); ok {
		t.Fatalf("FromString accepted a non-numeric string")
	}
}

func TestEqual(t *testing.T) {
	a := FromInt64(7)
	b := FromInt64(7)
	c := FromInt64(8)
	if !a.Equal(b) {
		t.Fatalf("equal elements compared unequal")
	}
	if a.Equal(c) {
		t.Fatalf("unequal elements compared equal")
	}
	if !Zero().Equal(Element{}) {
		t.Fatalf("zero value Element did not compare equal to Zero()")
	}
}

func TestFromBigIntCopies(t *testing.T) {
	src := big.NewInt(5)
	e := FromBigInt(src)
	src.SetInt64(6)
	if e.String() != "5" {
		t.Fatalf("FromBigInt aliased caller's big.Int: got %q", e.String())
	}
}

func TestBigIntCopies(t *testing.T) {
	e := FromInt64(9)
	b := e.BigInt()
	b.SetInt64(10)
	if e.String() != "9" {
		t.Fatalf("BigInt() aliased internal state: got %q", e.String())
	}
}
