package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fransk/hilo/server/games"
	"github.com/fransk/hilo/server/random"
	"github.com/fransk/hilo/server/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed, err = random.NewSeed()
		if err != nil {
			log.Fatalf("seed: %v", err)
		}
	}
	src := random.New(seed)

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open store %s: %v", cfg.DBPath, err)
	}
	defer st.Close()

	game, err := games.NewHilo(games.Options{
		Random:        src.IntInRange,
		Recorder:      st,
		DefaultPreset: cfg.Preset,
	})
	if err != nil {
		log.Fatalf("game: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg.Addr, newGameServer(cfg, game, st, src.IntInRange)); err != nil {
		log.Printf("server: %v", err)
	}
}

// run serves h on addr until ctx is done, then shuts down gracefully.
func run(ctx context.Context, addr string, h http.Handler) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	log.Printf("listening on http://%v", l.Addr())

	s := &http.Server{
		Handler:      h,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
	}
	errc := make(chan error, 1)
	go func() {
		errc <- s.Serve(l)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Printf("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}
