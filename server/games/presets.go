package games

import (
	"maps"
	"slices"

	"github.com/fransk/hilo/server/games/guess"
)

// presets are labeled range/attempt pairs a player can start from.
var presets = map[string]guess.Config{
	"easy":    {Bounds: guess.Range{Low: 1, High: 50}, MaxAttempts: 10},
	"normal":  {Bounds: guess.Range{Low: 1, High: 100}, MaxAttempts: 10},
	"hard":    {Bounds: guess.Range{Low: 1, High: 500}, MaxAttempts: 9},
	"extreme": {Bounds: guess.Range{Low: 1, High: 1000}, MaxAttempts: 10},
}

// LookupPreset returns the configuration registered under name.
func LookupPreset(name string) (guess.Config, bool) {
	cfg, ok := presets[name]
	return cfg, ok
}

// PresetNames lists the preset labels in alphabetical order.
func PresetNames() []string {
	return slices.Sorted(maps.Keys(presets))
}
