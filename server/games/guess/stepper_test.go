package guess

import (
	"errors"
	"math"
	"testing"
)

func TestNarrow(t *testing.T) {
	tests := []struct {
		name     string
		r        Range
		observed int
		d        Direction
		want     Range
	}{
		{name: "higher raises low", r: Range{1, 100}, observed: 50, d: TargetIsHigher, want: Range{51, 100}},
		{name: "lower drops high", r: Range{1, 100}, observed: 50, d: TargetIsLower, want: Range{1, 49}},
		{name: "stale higher keeps low", r: Range{40, 100}, observed: 10, d: TargetIsHigher, want: Range{40, 100}},
		{name: "stale lower keeps high", r: Range{1, 30}, observed: 90, d: TargetIsLower, want: Range{1, 30}},
		{name: "unspecified is a no-op", r: Range{1, 30}, observed: 15, want: Range{1, 30}},
		{name: "can empty the range", r: Range{5, 5}, observed: 5, d: TargetIsHigher, want: Range{6, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Narrow(tt.r, tt.observed, tt.d)
			if got != tt.want {
				t.Fatalf("Narrow(%v, %d, %v) = %v, want %v", tt.r, tt.observed, tt.d, got, tt.want)
			}
		})
	}
}

func TestRangeMid(t *testing.T) {
	tests := []struct {
		r    Range
		want int
	}{
		{Range{1, 100}, 50},
		{Range{1, 49}, 25},
		{Range{7, 7}, 7},
		{Range{-3, 0}, -2},
		{Range{-10, -1}, -6},
		{Range{math.MinInt, math.MaxInt}, -1},
		{Range{math.MaxInt - 1, math.MaxInt}, math.MaxInt - 1},
		{Range{math.MinInt, math.MinInt + 1}, math.MinInt},
	}
	for _, tt := range tests {
		if got := tt.r.Mid(); got != tt.want {
			t.Errorf("%v.Mid() = %d, want %d", tt.r, got, tt.want)
		}
	}
}

func TestStepScenario(t *testing.T) {
	res, err := Step(Range{Low: 1, High: 100}, 37, 1)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if res.Probe != 50 || res.Found {
		t.Fatalf("probe=%d found=%v, want 50 not found", res.Probe, res.Found)
	}
	if res.Direction != TargetIsLower {
		t.Fatalf("direction = %v, want target_is_lower", res.Direction)
	}
	if res.Next != (Range{Low: 1, High: 49}) {
		t.Fatalf("next = %v, want [1, 49]", res.Next)
	}
}

func TestStepFound(t *testing.T) {
	res, err := Step(Range{Low: 40, High: 60}, 50, 4)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if !res.Found || res.Probe != 50 || res.Step != 4 {
		t.Fatalf("got %+v, want found at 50 on step 4", res)
	}
}

func TestStepHigher(t *testing.T) {
	res, err := Step(Range{Low: 1, High: 100}, 80, 2)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if res.Direction != TargetIsHigher || res.Next != (Range{Low: 51, High: 100}) {
		t.Fatalf("got %+v, want target_is_higher with next [51, 100]", res)
	}
}

func TestStepIsIdempotent(t *testing.T) {
	r := Range{Low: 13, High: 77}
	a, errA := Step(r, 20, 3)
	b, errB := Step(r, 20, 3)
	if errA != nil || errB != nil {
		t.Fatalf("Step errors: %v, %v", errA, errB)
	}
	if a != b {
		t.Fatalf("Step not repeatable: %+v vs %+v", a, b)
	}
}

func TestStepEmptyRange(t *testing.T) {
	_, err := Step(Range{Low: 10, High: 9}, 10, 5)
	if !errors.Is(err, ErrSearchExhausted) {
		t.Fatalf("expected ErrSearchExhausted, got %v", err)
	}
}

func TestWalkTerminates(t *testing.T) {
	full := Range{Low: 1, High: 100}
	for target := full.Low; target <= full.High; target++ {
		var steps []StepResult
		for res, err := range Walk(full, target) {
			if err != nil {
				t.Fatalf("target %d: %v", target, err)
			}
			steps = append(steps, res)
		}
		if len(steps) == 0 || len(steps) > 8 {
			t.Fatalf("target %d: took %d steps", target, len(steps))
		}
		last := steps[len(steps)-1]
		if !last.Found || last.Probe != target {
			t.Fatalf("target %d: last step %+v", target, last)
		}
		for i, s := range steps {
			if s.Step != i+1 {
				t.Fatalf("target %d: step %d numbered %d", target, i+1, s.Step)
			}
			if i > 0 && s.Range != steps[i-1].Next {
				t.Fatalf("target %d: step %d range %v, previous next %v", target, i+1, s.Range, steps[i-1].Next)
			}
			if i > 0 && s.Range.Width() >= steps[i-1].Range.Width() {
				t.Fatalf("target %d: range grew at step %d", target, i+1)
			}
		}
	}
}

func TestWalkTargetOutsideRange(t *testing.T) {
	var n int
	var last error
	for _, err := range Walk(Range{Low: 1, High: 10}, 42) {
		n++
		last = err
	}
	if !errors.Is(last, ErrSearchExhausted) {
		t.Fatalf("expected walk to end with ErrSearchExhausted, got %v after %d steps", last, n)
	}
}

func TestWalkStopsWhenCallerBreaks(t *testing.T) {
	var n int
	for range Walk(Range{Low: 1, High: 1000}, 1) {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Fatalf("walk yielded %d results after break", n)
	}
}
