package guess

import "errors"

// ErrInvalidConfiguration indicates bounds or an attempt budget a round cannot start with.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// ErrInvalidInput indicates a guess that is not an integer.
var ErrInvalidInput = errors.New("guess is not an integer")

// ErrOutOfRange indicates a guess outside the round's bounds.
var ErrOutOfRange = errors.New("guess out of range")

// ErrSessionNotActive indicates a guess submitted after the round ended.
var ErrSessionNotActive = errors.New("session not active")

// ErrSearchExhausted indicates a search step over an empty range.
var ErrSearchExhausted = errors.New("search range exhausted")
