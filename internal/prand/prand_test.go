package prand

import "testing"

func TestStreamIsDeterministic(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 100; i++ {
		va := a.Float64()
		vb := b.Float64()
		if va != vb {
			t.Fatalf("streams diverged at draw %d: %v != %v", i, va, vb)
		}
		if va < 0 || va >= 1 {
			t.Fatalf("draw %d out of [0,1): %v", i, va)
		}
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a := New(1)
	b := New(2)
	same := true
	for i := 0; i < 10; i++ {
		if a.Float64() != b.Float64() {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different seeds produced identical prefixes")
	}
}

func TestIntNBounds(t *testing.T) {
	s := New(7)
	seen := map[int]bool{}
	for i := 0; i < 1000; i++ {
		v := s.IntN(19)
		if v < 0 || v > 19 {
			t.Fatalf("IntN(19) returned %d", v)
		}
		seen[v] = true
	}
	if len(seen) < 15 {
		t.Fatalf("IntN(19) covered only %d distinct values in 1000 draws", len(seen))
	}
}

func TestReseedRestartsSequence(t *testing.T) {
	s := New(99)
	first := make([]float64, 5)
	for i := range first {
		first[i] = s.Float64()
	}
	s = New(99)
	for i := range first {
		if got := s.Float64(); got != first[i] {
			t.Fatalf("reseeded stream diverged at draw %d", i)
		}
	}
}
