package guess

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Verdict classifies a guess against the secret.
type Verdict int

const (
	VerdictUnspecified Verdict = iota
	TooLow
	TooHigh
	Correct
)

func (v Verdict) String() string {
	switch v {
	case TooLow:
		return "too_low"
	case TooHigh:
		return "too_high"
	case Correct:
		return "correct"
	default:
		return "unspecified"
	}
}

// MarshalText encodes the verdict by name.
func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText decodes a verdict name.
func (v *Verdict) UnmarshalText(b []byte) error {
	for _, c := range []Verdict{VerdictUnspecified, TooLow, TooHigh, Correct} {
		if c.String() == string(b) {
			*v = c
			return nil
		}
	}
	return fmt.Errorf("unknown verdict %q", b)
}

// Direction returns where the secret lies relative to the guess.
// ok is false for Correct.
func (v Verdict) Direction() (d Direction, ok bool) {
	switch v {
	case TooLow:
		return TargetIsHigher, true
	case TooHigh:
		return TargetIsLower, true
	default:
		return DirectionUnspecified, false
	}
}

// Status is the lifecycle state of a session. Won and Lost are terminal.
type Status int

const (
	InProgress Status = iota
	Won
	Lost
)

func (s Status) String() string {
	switch s {
	case InProgress:
		return "in_progress"
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *Status) UnmarshalText(b []byte) error {
	for _, c := range []Status{InProgress, Won, Lost} {
		if c.String() == string(b) {
			*s = c
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", b)
}

// RandomInRange returns a uniformly distributed integer in [low, high].
type RandomInRange func(low, high int) int

// Config describes a round before it starts.
type Config struct {
	Bounds      Range
	MaxAttempts int
}

// MaxWidth is the widest range a round may span. The best possible score is
// ten times the width, which must still fit an int.
const MaxWidth = math.MaxInt / 10

// Validate checks that the bounds are ordered and the budget is positive.
func (c Config) Validate() error {
	if c.Bounds.Low >= c.Bounds.High {
		return fmt.Errorf("%w: lower bound %d must be below upper bound %d",
			ErrInvalidConfiguration, c.Bounds.Low, c.Bounds.High)
	}
	if c.Bounds.Width() > MaxWidth {
		return fmt.Errorf("%w: range %v is wider than %d", ErrInvalidConfiguration, c.Bounds, MaxWidth)
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("%w: attempts must be positive, got %d", ErrInvalidConfiguration, c.MaxAttempts)
	}
	return nil
}

// ParseConfig builds a Config from text fields as typed by a player.
func ParseConfig(low, high, attempts string) (Config, error) {
	var cfg Config
	fields := []struct {
		name string
		raw  string
		dst  *int
	}{
		{"low", low, &cfg.Bounds.Low},
		{"high", high, &cfg.Bounds.High},
		{"attempts", attempts, &cfg.MaxAttempts},
	}
	for _, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f.raw))
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s %q is not an integer", ErrInvalidConfiguration, f.name, f.raw)
		}
		*f.dst = n
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Attempt is one counted guess.
type Attempt struct {
	Value   int     `json:"value"`
	Verdict Verdict `json:"verdict"`
}

// Outcome reports the effect of a counted guess.
type Outcome struct {
	Value        int
	Verdict      Verdict
	AttemptsUsed int
	AttemptsLeft int
	Status       Status
	// Score is set when Status is Won.
	Score int
	// Secret is set when Status is Lost.
	Secret int
}

// Hint is an advisory next guess: the middle of the tightest range consistent
// with the feedback given so far.
type Hint struct {
	Suggestion int
	Remaining  Range
}

// Session is one round of the guessing game. A Session is not safe for
// concurrent use.
type Session struct {
	bounds      Range
	maxAttempts int
	secret      int
	attempts    []Attempt
	status      Status
	score       int
}

// NewSession validates cfg and draws the secret from rnd.
func NewSession(cfg Config, rnd RandomInRange) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rnd == nil {
		return nil, fmt.Errorf("%w: no random source", ErrInvalidConfiguration)
	}
	secret := rnd(cfg.Bounds.Low, cfg.Bounds.High)
	if !cfg.Bounds.Contains(secret) {
		return nil, fmt.Errorf("random source returned %d outside %v", secret, cfg.Bounds)
	}
	return &Session{
		bounds:      cfg.Bounds,
		maxAttempts: cfg.MaxAttempts,
		secret:      secret,
		status:      InProgress,
	}, nil
}

func (s *Session) Bounds() Range { return s.bounds }

func (s *Session) MaxAttempts() int { return s.maxAttempts }

func (s *Session) AttemptsUsed() int { return len(s.attempts) }

func (s *Session) AttemptsLeft() int { return s.maxAttempts - len(s.attempts) }

func (s *Session) Status() Status { return s.status }

// Score is zero until the round is won.
func (s *Session) Score() int { return s.score }

// Reveal returns the secret. Callers show it only when a round is lost or
// abandoned.
func (s *Session) Reveal() int { return s.secret }

// Attempts returns a copy of the attempt log in guess order.
func (s *Session) Attempts() []Attempt { return append([]Attempt(nil), s.attempts...) }

// SubmitGuess parses raw and applies it with Guess. Text that is not an
// integer is rejected with ErrInvalidInput and does not use an attempt.
func (s *Session) SubmitGuess(raw string) (Outcome, error) {
	if s.status != InProgress {
		return Outcome{}, ErrSessionNotActive
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %q", ErrInvalidInput, raw)
	}
	return s.Guess(v)
}

// Guess classifies value against the secret and counts it against the
// budget. Values outside the bounds are rejected with ErrOutOfRange and do
// not use an attempt. Once the round is over every call returns
// ErrSessionNotActive and leaves the session untouched.
func (s *Session) Guess(value int) (Outcome, error) {
	if s.status != InProgress {
		return Outcome{}, ErrSessionNotActive
	}
	if !s.bounds.Contains(value) {
		return Outcome{}, fmt.Errorf("%w: %d not in %v", ErrOutOfRange, value, s.bounds)
	}

	verdict := classify(value, s.secret)
	s.attempts = append(s.attempts, Attempt{Value: value, Verdict: verdict})

	switch {
	case verdict == Correct:
		s.status = Won
		s.score = Score(s.bounds, s.maxAttempts, len(s.attempts))
	case len(s.attempts) == s.maxAttempts:
		s.status = Lost
	}

	out := Outcome{
		Value:        value,
		Verdict:      verdict,
		AttemptsUsed: len(s.attempts),
		AttemptsLeft: s.AttemptsLeft(),
		Status:       s.status,
		Score:        s.score,
	}
	if s.status == Lost {
		out.Secret = s.secret
	}
	return out, nil
}

// Remaining folds the attempt log over the bounds and returns the tightest
// range that still holds the secret.
func (s *Session) Remaining() Range {
	r := s.bounds
	for _, a := range s.attempts {
		if d, ok := a.Verdict.Direction(); ok {
			r = Narrow(r, a.Value, d)
		}
	}
	return r
}

// Hint returns the midpoint of Remaining. ok is false before the first
// guess and after the round ended. Hint never changes the session.
func (s *Session) Hint() (h Hint, ok bool) {
	if s.status != InProgress || len(s.attempts) == 0 {
		return Hint{}, false
	}
	r := s.Remaining()
	return Hint{Suggestion: r.Mid(), Remaining: r}, true
}

func classify(value, secret int) Verdict {
	switch {
	case value < secret:
		return TooLow
	case value > secret:
		return TooHigh
	default:
		return Correct
	}
}

// Score computes
//
//	floor((1000 / maxAttempts) * (maxAttempts - used + 1) * ((high - low) / 100))
//
// exactly. Ranges narrower than 100 scale the score down, possibly to zero.
// Scores too large for an int saturate at math.MaxInt.
func Score(bounds Range, maxAttempts, used int) int {
	num := big.NewInt(1000)
	num.Mul(num, big.NewInt(int64(maxAttempts-used+1)))
	num.Mul(num, new(big.Int).SetUint64(bounds.Width()))
	den := big.NewInt(int64(maxAttempts))
	den.Mul(den, big.NewInt(100))
	num.Quo(num, den)
	if !num.IsInt64() || num.Int64() > math.MaxInt {
		return math.MaxInt
	}
	return int(num.Int64())
}
