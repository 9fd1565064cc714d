package main

import (
	"context"

	"github.com/fransk/hilo/server/store"
)

// A game needs to:
// 1. receive messages from users
// 2. decide what to do with those messages
// 3. +/- maintain internal state
// 4. inform users of the current state
//
// HandleMsg returns the encoded event that is broadcast to every subscriber.
type Game interface {
	HandleMsg(ctx context.Context, usrid string, msg []byte) []byte
}

// Scoreboard reads finished rounds back for the score endpoints.
type Scoreboard interface {
	TopScores(ctx context.Context, limit int) ([]store.Round, error)
	PlayerRounds(ctx context.Context, player string, limit int) ([]store.Round, error)
}
