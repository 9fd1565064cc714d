// Package guess holds the rules of a higher/lower round and a step-by-step
// binary search over the same integer range.
//
// Nothing in this package blocks, sleeps or keeps global state. Callers that
// want to animate a search pace the calls themselves.
package guess

import "fmt"

// Range is a closed interval [Low, High] of integers.
type Range struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

// Empty reports whether the range holds no integers.
func (r Range) Empty() bool {
	return r.Low > r.High
}

// Contains reports whether v lies in the range.
func (r Range) Contains(v int) bool {
	return v >= r.Low && v <= r.High
}

// Width is High - Low. It does not overflow for any non-empty range.
func (r Range) Width() uint64 {
	return uint64(r.High) - uint64(r.Low)
}

// Mid returns floor((Low + High) / 2). The range must not be empty.
func (r Range) Mid() int {
	return r.Low + int(r.Width()/2)
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d]", r.Low, r.High)
}

// Direction tells on which side of an observed value the target lies.
type Direction int

const (
	DirectionUnspecified Direction = iota
	TargetIsHigher
	TargetIsLower
)

func (d Direction) String() string {
	switch d {
	case TargetIsHigher:
		return "target_is_higher"
	case TargetIsLower:
		return "target_is_lower"
	default:
		return "unspecified"
	}
}

// MarshalText encodes the direction by name.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a direction name.
func (d *Direction) UnmarshalText(b []byte) error {
	for _, c := range []Direction{DirectionUnspecified, TargetIsHigher, TargetIsLower} {
		if c.String() == string(b) {
			*d = c
			return nil
		}
	}
	return fmt.Errorf("unknown direction %q", b)
}

// Narrow drops the side of r that the feedback rules out. The observed value
// itself is always excluded. Low never decreases and High never increases.
func Narrow(r Range, observed int, d Direction) Range {
	switch d {
	case TargetIsHigher:
		r.Low = max(r.Low, observed+1)
	case TargetIsLower:
		r.High = min(r.High, observed-1)
	}
	return r
}
