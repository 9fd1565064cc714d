package guess

import (
	"fmt"
	"iter"
)

// StepResult is the outcome of probing the middle of a range.
type StepResult struct {
	Step  int   `json:"step"`
	Probe int   `json:"probe"`
	Range Range `json:"range"`
	Found bool  `json:"found"`
	// Direction and Next are meaningful only when Found is false.
	Direction Direction `json:"direction,omitempty"`
	Next      Range     `json:"next"`
}

// Step probes the middle of r and classifies it against target. It is a
// pure function of its arguments.
func Step(r Range, target, step int) (StepResult, error) {
	if r.Empty() {
		return StepResult{}, fmt.Errorf("%w: step %d over %v", ErrSearchExhausted, step, r)
	}

	res := StepResult{Step: step, Probe: r.Mid(), Range: r}
	switch {
	case res.Probe == target:
		res.Found = true
		res.Next = Range{Low: res.Probe, High: res.Probe}
		return res, nil
	case res.Probe < target:
		res.Direction = TargetIsHigher
	default:
		res.Direction = TargetIsLower
	}
	res.Next = Narrow(r, res.Probe, res.Direction)
	return res, nil
}

// Walk drives Step from step 1 over r until target is found, yielding every
// intermediate result. A target outside r ends the walk with a single
// ErrSearchExhausted.
func Walk(r Range, target int) iter.Seq2[StepResult, error] {
	return func(yield func(StepResult, error) bool) {
		for n := 1; ; n++ {
			res, err := Step(r, target, n)
			if !yield(res, err) || err != nil || res.Found {
				return
			}
			r = res.Next
		}
	}
}
