package preimage

import "testing"

func TestInsertPreStateFirstWriteWins(t *testing.T) {
	m := New()
	m.InsertPreState("k", "a", "b")
	m.InsertPreState("k", "x", "y")

	got, ok := m.Get("k")
	if !ok {
		t.Fatalf("key not found")
	}
	if got != (Pair{"a", "b"}) {
		t.Fatalf("InsertPreState overwrote an existing entry: got %v", got)
	}
}

func TestInsertPostStateUnconditional(t *testing.T) {
	m := New()
	m.InsertPostState("k", "a", "b")
	m.InsertPostState("k", "x", "y")

	got, ok := m.Get("k")
	if !ok {
		t.Fatalf("key not found")
	}
	if got != (Pair{"x", "y"}) {
		t.Fatalf("InsertPostState did not overwrite: got %v", got)
	}
}

func TestLenAndSnapshot(t *testing.T) {
	m := New()
	m.InsertPreState("a", "1", "2")
	m.InsertPostState("b", "3", "4")

	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", m.Len())
	}

	snap := m.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("Snapshot() len = %d, want 2", len(snap))
	}
	snap["a"] = Pair{"mutated", "mutated"}
	if got, _ := m.Get("a"); got == (Pair{"mutated", "mutated"}) {
		t.Fatalf("Snapshot() is aliased to internal storage")
	}
}

func TestZeroValueMapUsable(t *testing.T) {
	var m Map
	m.InsertPreState("k", "a", "b")
	if got, ok := m.Get("k"); !ok || got != (Pair{"a", "b"}) {
		t.Fatalf("zero-value Map did not accept writes")
	}
}
