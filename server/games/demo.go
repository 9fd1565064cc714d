package games

import (
	"context"

	"github.com/fransk/hilo/server/games/guess"
)

// Demo announces r with a demo_started event, then walks a binary search
// over r toward target and hands one demo_step event per probe to emit.
// wait is called before every probe and sets the pace; it is the only place
// the demonstration blocks. Demo returns when the target is found, or with
// the first error from wait, emit or the search itself.
func Demo(ctx context.Context, r guess.Range, target int, wait func(context.Context) error, emit func(Event) error) error {
	bounds := r
	if err := emit(Event{Kind: EventDemoStart, Bounds: &bounds}); err != nil {
		return err
	}
	for res, err := range guess.Walk(r, target) {
		if err != nil {
			return err
		}
		if err := wait(ctx); err != nil {
			return err
		}
		step := res
		if err := emit(Event{Kind: EventDemoStep, Step: &step}); err != nil {
			return err
		}
	}
	return nil
}
