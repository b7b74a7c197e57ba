package hash

import (
	"testing"

	"github.com/muridata/rollmerkle/pkg/field"
)

func TestPairIsDeterministic(t *testing.T) {
	l := field.FromInt64(1)
	r := field.FromInt64(2)
	a := Pair(l, r)
	b := Pair(l, r)
	if !a.Equal(b) {
		t.Fatalf("Pair is not deterministic: %s != %s", a.String(), b.String())
	}
}

func TestPairIsOrderSensitive(t *testing.T) {
	a := field.FromInt64(1)
	b := field.FromInt64(2)
	if Pair(a, b).Equal(Pair(b, a)) {
		t.Fatalf("Pair(a,b) == Pair(b,a), hash is not order sensitive")
	}
}

func TestPairDistinguishesInputs(t *testing.T) {
	zero := field.Zero()
	one := field.FromInt64(1)
	if Pair(zero, zero).Equal(Pair(one, zero)) {
		t.Fatalf("Pair(0,0) == Pair(1,0)")
	}
}
