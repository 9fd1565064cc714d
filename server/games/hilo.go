package games

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fransk/hilo/server/games/guess"
	"github.com/fransk/hilo/server/store"
)

// Recorder keeps finished rounds. *store.Store is a Recorder.
type Recorder interface {
	SaveRound(ctx context.Context, r store.Round) (string, error)
}

// Options configure a HiLo game.
type Options struct {
	// Random draws every secret. Required.
	Random guess.RandomInRange

	// Recorder receives each round once it is won or lost. Optional.
	Recorder Recorder

	// DefaultPreset is used by start messages that carry neither bounds
	// nor a preset.
	//
	// Defaults to "normal".
	DefaultPreset string
}

// HiLo is a Game.
// The server chooses an integer for each player.
// The player guesses until they guess the integer or run out of attempts.
// Each guess they are told whether the correct answer is higher or lower.
type HiLo struct {
	random        guess.RandomInRange
	recorder      Recorder
	defaultPreset string

	// logf controls where logs are sent.
	// Defaults to log.Printf.
	logf func(f string, v ...interface{})

	// now stamps round start times.
	now func() time.Time

	mu     sync.Mutex
	rounds map[string]*round
}

// round is a player's current session. Finished sessions stay here until
// the player starts another round or abandons this one, so late guesses
// are answered with session_not_active.
type round struct {
	id        string
	session   *guess.Session
	startedAt time.Time
}

// initialize a game of HiLo
func NewHilo(opts Options) (*HiLo, error) {
	if opts.Random == nil {
		return nil, fmt.Errorf("hilo: random source is required")
	}
	if opts.DefaultPreset == "" {
		opts.DefaultPreset = "normal"
	}
	if _, ok := LookupPreset(opts.DefaultPreset); !ok {
		return nil, fmt.Errorf("hilo: %w %q", ErrUnknownPreset, opts.DefaultPreset)
	}
	return &HiLo{
		random:        opts.Random,
		recorder:      opts.Recorder,
		defaultPreset: opts.DefaultPreset,
		logf:          log.Printf,
		now:           time.Now,
		rounds:        make(map[string]*round),
	}, nil
}

// HandleMsg applies one player message and returns the encoded event to
// broadcast. Rejected messages produce an error event; they never change a
// round.
func (h *HiLo) HandleMsg(ctx context.Context, usrid string, msg []byte) []byte {
	ev := h.handle(ctx, usrid, msg)
	out, err := json.Marshal(ev)
	if err != nil {
		h.logf("hilo: encode %s event for %s: %v", ev.Kind, usrid, err)
		out, _ = json.Marshal(errorEvent(usrid, ev.Round, err))
	}
	return out
}

func (h *HiLo) handle(ctx context.Context, usrid string, msg []byte) Event {
	var m Message
	if err := json.Unmarshal(msg, &m); err != nil {
		return errorEvent(usrid, "", fmt.Errorf("%w: %v", ErrBadMessage, err))
	}

	switch m.Kind {
	case KindStart:
		return h.start(usrid, m)
	case KindGuess:
		ev, finished := h.submit(usrid, m.Value)
		if finished != nil {
			h.record(ctx, *finished)
		}
		return ev
	case KindHint:
		return h.hint(usrid)
	case KindAbandon:
		return h.abandon(usrid)
	default:
		return errorEvent(usrid, "", fmt.Errorf("%w %q", ErrUnknownKind, m.Kind))
	}
}

func (h *HiLo) start(usrid string, m Message) Event {
	var cfg guess.Config
	preset := ""
	switch {
	case m.Low == "" && m.High == "" && m.Attempts == "":
		preset = m.Preset
		if preset == "" {
			preset = h.defaultPreset
		}
		var ok bool
		if cfg, ok = LookupPreset(preset); !ok {
			return errorEvent(usrid, "", fmt.Errorf("%w %q", ErrUnknownPreset, preset))
		}
	case m.Preset != "":
		return errorEvent(usrid, "", fmt.Errorf("%w: preset %q cannot be combined with explicit bounds",
			guess.ErrInvalidConfiguration, m.Preset))
	default:
		var err error
		cfg, err = guess.ParseConfig(string(m.Low), string(m.High), string(m.Attempts))
		if err != nil {
			return errorEvent(usrid, "", err)
		}
	}

	sess, err := guess.NewSession(cfg, h.random)
	if err != nil {
		return errorEvent(usrid, "", err)
	}
	r := &round{
		id:        uuid.New().String(),
		session:   sess,
		startedAt: h.now(),
	}

	h.mu.Lock()
	h.rounds[usrid] = r
	h.mu.Unlock()

	h.logf("hilo: %s started round %s over %v with %d attempts", usrid, r.id, cfg.Bounds, cfg.MaxAttempts)
	bounds := cfg.Bounds
	return Event{
		Kind:        EventStarted,
		Player:      usrid,
		Round:       r.id,
		Preset:      preset,
		Bounds:      &bounds,
		MaxAttempts: cfg.MaxAttempts,
	}
}

// submit applies a guess. When the guess ends the round, the finished round
// is returned for recording.
func (h *HiLo) submit(usrid string, value Text) (Event, *store.Round) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rounds[usrid]
	if !ok {
		return errorEvent(usrid, "", ErrNoSession), nil
	}
	out, err := r.session.SubmitGuess(string(value))
	if err != nil {
		return errorEvent(usrid, r.id, err), nil
	}

	ev := Event{
		Kind:   EventGuessed,
		Player: usrid,
		Round:  r.id,
		Guess: &GuessResult{
			Value:        out.Value,
			Verdict:      out.Verdict,
			AttemptsUsed: out.AttemptsUsed,
			AttemptsLeft: out.AttemptsLeft,
			Status:       out.Status,
			Score:        out.Score,
		},
	}
	if out.Status == guess.InProgress {
		return ev, nil
	}

	if out.Status == guess.Lost {
		secret := out.Secret
		ev.Secret = &secret
	}
	h.logf("hilo: %s finished round %s: %v after %d attempts, score %d",
		usrid, r.id, out.Status, out.AttemptsUsed, out.Score)
	finished := finishedRound(usrid, r)
	return ev, &finished
}

func (h *HiLo) hint(usrid string) Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rounds[usrid]
	if !ok {
		return errorEvent(usrid, "", ErrNoSession)
	}
	ev := Event{Kind: EventHint, Player: usrid, Round: r.id, Hint: &HintResult{}}
	hint, ok := r.session.Hint()
	if !ok {
		return ev
	}
	suggestion, remaining := hint.Suggestion, hint.Remaining
	ev.Hint = &HintResult{Available: true, Suggestion: &suggestion, Remaining: &remaining}
	return ev
}

func (h *HiLo) abandon(usrid string) Event {
	h.mu.Lock()
	r, ok := h.rounds[usrid]
	delete(h.rounds, usrid)
	h.mu.Unlock()

	if !ok {
		return errorEvent(usrid, "", ErrNoSession)
	}
	h.logf("hilo: %s abandoned round %s", usrid, r.id)
	secret := r.session.Reveal()
	return Event{Kind: EventAbandoned, Player: usrid, Round: r.id, Secret: &secret}
}

func (h *HiLo) record(ctx context.Context, r store.Round) {
	if h.recorder == nil {
		return
	}
	if _, err := h.recorder.SaveRound(ctx, r); err != nil {
		h.logf("hilo: record round %s: %v", r.ID, err)
	}
}

func finishedRound(usrid string, r *round) store.Round {
	s := r.session
	attempts := make([]store.Attempt, 0, s.AttemptsUsed())
	for _, a := range s.Attempts() {
		attempts = append(attempts, store.Attempt{Value: a.Value, Verdict: a.Verdict.String()})
	}
	return store.Round{
		ID:           r.id,
		Player:       usrid,
		Low:          s.Bounds().Low,
		High:         s.Bounds().High,
		MaxAttempts:  s.MaxAttempts(),
		AttemptsUsed: s.AttemptsUsed(),
		Won:          s.Status() == guess.Won,
		Score:        s.Score(),
		Secret:       s.Reveal(),
		Attempts:     attempts,
		StartedAt:    r.startedAt,
	}
}
