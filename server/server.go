package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/fransk/hilo/server/games"
	"github.com/fransk/hilo/server/games/guess"
)

const (
	defaultScoreLimit = 10
	maxScoreLimit     = 100

	// maxMessageSize bounds a published body or a websocket frame.
	maxMessageSize = 8192
)

// gameServer enables broadcasting game events to a set of subscribers.
type gameServer struct {
	// subscriberMessageBuffer controls the max number
	// of messages that can be queued for a subscriber
	// before it is kicked.
	//
	// Defaults to 16.
	subscriberMessageBuffer int

	// publishLimiter controls the rate limit applied to the publish endpoint.
	//
	// Defaults to one publish every 100ms with a burst of 8.
	publishLimiter *rate.Limiter

	// logf controls where logs are sent.
	// Defaults to log.Printf.
	logf func(f string, v ...interface{})

	// router routes the various endpoints to the appropriate handler.
	router chi.Router

	subscribersMu sync.Mutex
	subscribers   map[*subscriber]struct{}

	// game is the currently loaded game
	game Game

	// scores serves the scoreboard endpoints. Nil disables them.
	scores Scoreboard

	// random picks demonstration targets.
	random guess.RandomInRange

	// demoRange is searched by the demonstration.
	//
	// Defaults to [1, 100].
	demoRange guess.Range

	// demoInterval paces demonstration steps.
	//
	// Defaults to one step per second.
	demoInterval time.Duration
}

// newGameServer constructs a gameServer from cfg.
func newGameServer(cfg config, game Game, scores Scoreboard, random guess.RandomInRange) *gameServer {
	cs := &gameServer{
		subscriberMessageBuffer: cfg.SubscriberBuffer,
		logf:                    log.Printf,
		subscribers:             make(map[*subscriber]struct{}),
		publishLimiter:          rate.NewLimiter(rate.Every(cfg.PublishInterval), cfg.PublishBurst),
		game:                    game,
		scores:                  scores,
		random:                  random,
		demoRange:               cfg.demoRange(),
		demoInterval:            cfg.DemoInterval,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Get("/subscribe", cs.subscribeHandler)
	r.HandleFunc("/publish", cs.publishHandler)
	r.Get("/demo", cs.demoHandler)
	r.Get("/scores", cs.scoresHandler)
	r.Get("/players/{id}/rounds", cs.playerRoundsHandler)
	r.Handle("/*", http.FileServer(http.Dir(cfg.WebDir)))
	cs.router = r

	return cs
}

// subscriber represents a subscriber.
// Messages are sent on the msgs channel and if the client
// cannot keep up with the messages, closeSlow is called.
type subscriber struct {
	id        string
	msgs      chan []byte
	closeSlow func()
}

func (cs *gameServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cs.router.ServeHTTP(w, r)
}

// playerID identifies the sender of a message: the player query parameter,
// then the X-Player-Id header, then the remote address.
func playerID(r *http.Request) string {
	if id := r.URL.Query().Get("player"); id != "" {
		return id
	}
	if id := r.Header.Get("X-Player-Id"); id != "" {
		return id
	}
	return r.RemoteAddr
}

// subscribeHandler accepts the WebSocket connection and then subscribes
// it to all future messages.
func (cs *gameServer) subscribeHandler(w http.ResponseWriter, r *http.Request) {
	err := cs.subscribe(w, r)
	if errors.Is(err, context.Canceled) {
		return
	}
	if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
		websocket.CloseStatus(err) == websocket.StatusGoingAway {
		return
	}
	if err != nil {
		cs.logf("%v", err)
		return
	}
}

// publishHandler reads the request body with a limit of 8192 bytes, hands
// it to the game and publishes the game's reply. The reply is also the
// response body.
func (cs *gameServer) publishHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	body := http.MaxBytesReader(w, r.Body, maxMessageSize)
	msg, err := io.ReadAll(body)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
		return
	}

	reply := cs.game.HandleMsg(r.Context(), playerID(r), msg)

	// update the other users
	cs.publish(reply)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	w.Write(reply)
}

// subscribe subscribes the given WebSocket to all broadcast messages.
// It creates a subscriber with a buffered msgs chan to give some room to slower
// connections and then registers the subscriber. It then listens for all messages
// and writes them to the WebSocket. If the context is cancelled or
// an error occurs, it returns and deletes the subscription.
//
// Frames read from the connection are handed to the game as that player's
// messages; when the connection drops the read loop cancels the context.
func (cs *gameServer) subscribe(w http.ResponseWriter, r *http.Request) error {
	var mu sync.Mutex
	var c *websocket.Conn
	var closed bool
	player := playerID(r)
	s := &subscriber{
		id:   player,
		msgs: make(chan []byte, cs.subscriberMessageBuffer),
		closeSlow: func() {
			cs.logf("closing slow subscriber %v", player)
			mu.Lock()
			defer mu.Unlock()
			closed = true
			if c != nil {
				c.Close(websocket.StatusPolicyViolation, "connection too slow to keep up with messages")
			}
		},
	}
	cs.addSubscriber(s)
	defer cs.deleteSubscriber(s)

	c2, err := websocket.Accept(w, r, nil)
	if err != nil {
		return err
	}
	mu.Lock()
	if closed {
		mu.Unlock()
		return net.ErrClosed
	}
	c = c2
	mu.Unlock()
	defer c.CloseNow()
	c.SetReadLimit(maxMessageSize)

	ctx, cancel := context.WithTimeout(r.Context(), time.Minute*60)
	defer cancel()

	l := rate.NewLimiter(rate.Every(time.Millisecond*100), 10)
	readErr := make(chan error, 1)
	go func() {
		defer cancel()
		defer func() {
			if p := recover(); p != nil {
				readErr <- fmt.Errorf("relay from %v: panic: %v", player, p)
			}
		}()
		readErr <- cs.listen(ctx, player, c, l)
	}()

	for {
		select {
		case msg := <-s.msgs:
			err := writeTimeout(ctx, time.Second*5, c, msg)
			if err != nil {
				return err
			}
		case <-ctx.Done():
			select {
			case err := <-readErr:
				if err != nil {
					return err
				}
			default:
			}
			return ctx.Err()
		}
	}
}

// listen hands every frame from c to the game until the connection closes.
func (cs *gameServer) listen(ctx context.Context, player string, c *websocket.Conn, l *rate.Limiter) error {
	for {
		err := cs.relay(ctx, player, c, l)
		if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
			return nil
		}
		if err != nil {
			if ctx.Err() == nil {
				cs.logf("failed to relay from %v: %v", player, err)
			}
			return err
		}
	}
}

func (cs *gameServer) relay(ctx context.Context, player string, c *websocket.Conn, l *rate.Limiter) error {
	err := l.Wait(ctx)
	if err != nil {
		return err
	}

	_, body, err := c.Reader(ctx)
	if err != nil {
		return err
	}

	msg, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	// send the message to the game, then update the users
	cs.publish(cs.game.HandleMsg(ctx, player, msg))
	return nil
}

// demoHandler streams a paced binary search over demoRange to a WebSocket.
// The target is the target query parameter when given, a random draw
// otherwise. The connection closes normally once the target is found.
func (cs *gameServer) demoHandler(w http.ResponseWriter, r *http.Request) {
	target := cs.random(cs.demoRange.Low, cs.demoRange.High)
	if raw := r.URL.Query().Get("target"); raw != "" {
		t, err := strconv.Atoi(raw)
		if err != nil || !cs.demoRange.Contains(t) {
			respondError(w, "target must be an integer in "+cs.demoRange.String(), http.StatusBadRequest)
			return
		}
		target = t
	}

	c, err := websocket.Accept(w, r, nil)
	if err != nil {
		cs.logf("%v", err)
		return
	}
	defer c.CloseNow()

	ctx := c.CloseRead(r.Context())
	pace := rate.NewLimiter(rate.Every(cs.demoInterval), 1)
	err = games.Demo(ctx, cs.demoRange, target, pace.Wait, func(ev games.Event) error {
		msg, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		return writeTimeout(ctx, time.Second*5, c, msg)
	})
	if err != nil {
		if ctx.Err() == nil {
			cs.logf("demo toward %d: %v", target, err)
			c.Close(websocket.StatusInternalError, "demo failed")
		}
		return
	}
	c.Close(websocket.StatusNormalClosure, "found")
}

func (cs *gameServer) scoresHandler(w http.ResponseWriter, r *http.Request) {
	if cs.scores == nil {
		respondError(w, "scoreboard disabled", http.StatusServiceUnavailable)
		return
	}
	limit, err := parseLimit(r)
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}
	rounds, err := cs.scores.TopScores(r.Context(), limit)
	if err != nil {
		cs.logf("top scores: %v", err)
		respondError(w, "could not load scores", http.StatusInternalServerError)
		return
	}
	respondJSON(w, rounds, http.StatusOK)
}

func (cs *gameServer) playerRoundsHandler(w http.ResponseWriter, r *http.Request) {
	if cs.scores == nil {
		respondError(w, "scoreboard disabled", http.StatusServiceUnavailable)
		return
	}
	limit, err := parseLimit(r)
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}
	player := chi.URLParam(r, "id")
	rounds, err := cs.scores.PlayerRounds(r.Context(), player, limit)
	if err != nil {
		cs.logf("rounds of %s: %v", player, err)
		respondError(w, "could not load rounds", http.StatusInternalServerError)
		return
	}
	respondJSON(w, rounds, http.StatusOK)
}

func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultScoreLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, errors.New("limit must be a positive integer")
	}
	return min(n, maxScoreLimit), nil
}

// publish publishes the msg to all subscribers.
// It never blocks and so messages to slow subscribers
// are dropped.
func (cs *gameServer) publish(msg []byte) {
	cs.publishLimiter.Wait(context.Background())

	cs.subscribersMu.Lock()
	defer cs.subscribersMu.Unlock()

	for s := range cs.subscribers {
		select {
		case s.msgs <- msg:
		default:
			go s.closeSlow()
		}
	}
}

// addSubscriber registers a subscriber.
func (cs *gameServer) addSubscriber(s *subscriber) {
	cs.subscribersMu.Lock()
	cs.subscribers[s] = struct{}{}
	cs.subscribersMu.Unlock()
}

// deleteSubscriber deletes the given subscriber.
func (cs *gameServer) deleteSubscriber(s *subscriber) {
	cs.subscribersMu.Lock()
	delete(cs.subscribers, s)
	cs.subscribersMu.Unlock()
}

func writeTimeout(ctx context.Context, timeout time.Duration, c *websocket.Conn, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return c.Write(ctx, websocket.MessageText, msg)
}

func respondJSON(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, map[string]string{"error": message}, status)
}
