package sim

import "testing"

func TestStreamDeterministic(t *testing.T) {
	a := NewStream(42)
	b := NewStream(42)
	for i := 0; i < 100; i++ {
		va := a.Float64()
		vb := b.Float64()
		if va != vb {
			t.Fatalf("draw %d diverged: %v vs %v", i, va, vb)
		}
	}
}

func TestStreamDifferentSeedsDiverge(t *testing.T) {
	a := NewStream(1)
	b := NewStream(2)
	same := true
	for i := 0; i < 20; i++ {
		if a.Float64() != b.Float64() {
			same = false
			break
		}
	}
	if same {
		t.Fatal("expected different seeds to diverge within 20 draws")
	}
}

func TestStreamFloat64Range(t *testing.T) {
	s := NewStream(7)
	for i := 0; i < 1000; i++ {
		v := s.Float64()
		if v < 0 || v >= 1 {
			t.Fatalf("Float64 out of [0,1): %v", v)
		}
	}
}

func TestStreamIntRangeInclusive(t *testing.T) {
	s := NewStream(3)
	for i := 0; i < 500; i++ {
		v := s.IntRange(5, 8)
		if v < 5 || v > 8 {
			t.Fatalf("IntRange out of bounds: %d", v)
		}
	}
}

func TestStreamIntRangeDegenerate(t *testing.T) {
	s := NewStream(3)
	if v := s.IntRange(5, 5); v != 5 {
		t.Fatalf("expected degenerate range to return min, got %d", v)
	}
	if v := s.IntRange(5, 3); v != 5 {
		t.Fatalf("expected max<=min to return min, got %d", v)
	}
}

func TestStreamSign(t *testing.T) {
	s := NewStream(9)
	seenPos, seenNeg := false, false
	for i := 0; i < 200; i++ {
		switch s.Sign() {
		case 1:
			seenPos = true
		case -1:
			seenNeg = true
		default:
			t.Fatalf("Sign returned neither +1 nor -1")
		}
	}
	if !seenPos || !seenNeg {
		t.Fatal("expected both signs to appear over 200 draws")
	}
}

func TestStreamGaussianFinite(t *testing.T) {
	s := NewStream(11)
	for i := 0; i < 1000; i++ {
		v := s.Gaussian()
		if v != v { // NaN check
			t.Fatalf("Gaussian produced NaN at draw %d", i)
		}
	}
}

func TestSpawnSeedDerivation(t *testing.T) {
	bs1 := NewBattleState(100, 60, 1)
	bs2 := NewBattleState(100, 60, 1)
	if bs1.SpawnRNG().Float64() != bs2.SpawnRNG().Float64() {
		t.Fatal("expected same match seed to derive identical spawn streams")
	}

	bs3 := NewBattleState(101, 60, 1)
	if bs1.RNG() == bs3.RNG() {
		t.Fatal("expected distinct BattleState instances to hold distinct stream pointers")
	}
}
