package games

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/fransk/hilo/server/games/guess"
)

// Message kinds a player can send.
const (
	KindStart   = "start"
	KindGuess   = "guess"
	KindHint    = "hint"
	KindAbandon = "abandon"
)

// Event kinds the game emits.
const (
	EventStarted   = "started"
	EventGuessed   = "guessed"
	EventHint      = "hint"
	EventAbandoned = "abandoned"
	EventDemoStart = "demo_started"
	EventDemoStep  = "demo_step"
	EventError     = "error"
)

var (
	ErrBadMessage    = errors.New("message is not valid JSON")
	ErrUnknownKind   = errors.New("unknown message kind")
	ErrNoSession     = errors.New("no round in progress")
	ErrUnknownPreset = errors.New("unknown preset")
)

// Text is a field typed by a player. It accepts both JSON strings and bare
// JSON values so that {"value": 42} and {"value": "42"} read the same.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	if bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	*t = Text(b)
	return nil
}

// Message is an inbound player message.
type Message struct {
	Kind     string `json:"kind"`
	Preset   string `json:"preset,omitempty"`
	Low      Text   `json:"low,omitempty"`
	High     Text   `json:"high,omitempty"`
	Attempts Text   `json:"attempts,omitempty"`
	Value    Text   `json:"value,omitempty"`
}

// Event is broadcast to every subscriber.
type Event struct {
	Kind        string            `json:"kind"`
	Player      string            `json:"player,omitempty"`
	Round       string            `json:"round,omitempty"`
	Preset      string            `json:"preset,omitempty"`
	Bounds      *guess.Range      `json:"bounds,omitempty"`
	MaxAttempts int               `json:"maxAttempts,omitempty"`
	Guess       *GuessResult      `json:"guess,omitempty"`
	Hint        *HintResult       `json:"hint,omitempty"`
	Secret      *int              `json:"secret,omitempty"`
	Step        *guess.StepResult `json:"step,omitempty"`
	Error       *ErrorDetail      `json:"error,omitempty"`
}

type GuessResult struct {
	Value        int           `json:"value"`
	Verdict      guess.Verdict `json:"verdict"`
	AttemptsUsed int           `json:"attemptsUsed"`
	AttemptsLeft int           `json:"attemptsLeft"`
	Status       guess.Status  `json:"status"`
	Score        int           `json:"score"`
}

type HintResult struct {
	Available  bool         `json:"available"`
	Suggestion *int         `json:"suggestion,omitempty"`
	Remaining  *guess.Range `json:"remaining,omitempty"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorCode maps an error to its stable wire code.
func errorCode(err error) string {
	switch {
	case errors.Is(err, guess.ErrInvalidConfiguration):
		return "invalid_configuration"
	case errors.Is(err, guess.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, guess.ErrOutOfRange):
		return "out_of_range"
	case errors.Is(err, guess.ErrSessionNotActive):
		return "session_not_active"
	case errors.Is(err, guess.ErrSearchExhausted):
		return "search_exhausted"
	case errors.Is(err, ErrBadMessage):
		return "bad_message"
	case errors.Is(err, ErrUnknownKind):
		return "unknown_kind"
	case errors.Is(err, ErrNoSession):
		return "no_session"
	case errors.Is(err, ErrUnknownPreset):
		return "unknown_preset"
	default:
		return "internal"
	}
}

func errorEvent(player, round string, err error) Event {
	return Event{
		Kind:   EventError,
		Player: player,
		Round:  round,
		Error:  &ErrorDetail{Code: errorCode(err), Message: err.Error()},
	}
}
