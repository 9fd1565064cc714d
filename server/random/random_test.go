package random

import (
	"math"
	"testing"
)

func TestIntInRangeBounds(t *testing.T) {
	s := New(1)
	seen := make(map[int]bool)
	for i := 0; i < 2000; i++ {
		v := s.IntInRange(-3, 3)
		if v < -3 || v > 3 {
			t.Fatalf("IntInRange(-3, 3) = %d", v)
		}
		seen[v] = true
	}
	if len(seen) != 7 {
		t.Fatalf("expected all 7 values to appear, saw %d", len(seen))
	}
}

func TestIntInRangeSingleValue(t *testing.T) {
	s := New(9)
	if v := s.IntInRange(42, 42); v != 42 {
		t.Fatalf("IntInRange(42, 42) = %d", v)
	}
}

func TestIntInRangeExtremes(t *testing.T) {
	s := New(3)
	tests := []struct {
		low, high int
	}{
		{math.MinInt, math.MaxInt},
		{math.MinInt, math.MinInt + 1},
		{math.MaxInt - 1, math.MaxInt},
		{-1, math.MaxInt},
	}
	for _, tt := range tests {
		for i := 0; i < 100; i++ {
			if v := s.IntInRange(tt.low, tt.high); v < tt.low || v > tt.high {
				t.Fatalf("IntInRange(%d, %d) = %d", tt.low, tt.high, v)
			}
		}
	}
}

func TestSeedDeterminism(t *testing.T) {
	a, b := New(42), New(42)
	for i := 0; i < 100; i++ {
		if x, y := a.IntInRange(1, 1000), b.IntInRange(1, 1000); x != y {
			t.Fatalf("draw %d differs: %d vs %d", i, x, y)
		}
	}
}

func TestNewSeed(t *testing.T) {
	a, err := NewSeed()
	if err != nil {
		t.Fatalf("NewSeed: %v", err)
	}
	b, err := NewSeed()
	if err != nil {
		t.Fatalf("NewSeed: %v", err)
	}
	if a == b {
		t.Fatalf("two seeds collided: %d", a)
	}
}

func TestEmptyRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	New(1).IntInRange(5, 4)
}
