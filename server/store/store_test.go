package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveRoundAssignsID(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()

	id, err := s.SaveRound(ctx, Round{
		Player:       "alice",
		Low:          1,
		High:         100,
		MaxAttempts:  10,
		AttemptsUsed: 3,
		Won:          true,
		Score:        792,
		Secret:       50,
		Attempts:     []Attempt{{75, "too_high"}, {25, "too_low"}, {50, "correct"}},
		StartedAt:    time.Now().Add(-time.Minute),
	})
	if err != nil {
		t.Fatalf("SaveRound: %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty round ID")
	}

	rounds, err := s.PlayerRounds(ctx, "alice", 10)
	if err != nil {
		t.Fatalf("PlayerRounds: %v", err)
	}
	if len(rounds) != 1 {
		t.Fatalf("expected 1 round, got %d", len(rounds))
	}
	got := rounds[0]
	if got.ID != id || !got.Won || got.Score != 792 || got.Secret != 50 {
		t.Fatalf("unexpected round: %+v", got)
	}
	if len(got.Attempts) != 3 || got.Attempts[2].Verdict != "correct" {
		t.Fatalf("attempts not preserved: %+v", got.Attempts)
	}
	if got.FinishedAt.IsZero() || got.StartedAt.IsZero() {
		t.Fatalf("timestamps not preserved: %+v", got)
	}
}

func TestSaveRoundDuplicateID(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()

	r := Round{ID: "round-1", Player: "bob", Low: 1, High: 10, MaxAttempts: 1, AttemptsUsed: 1, Secret: 7}
	if _, err := s.SaveRound(ctx, r); err != nil {
		t.Fatalf("SaveRound: %v", err)
	}
	if _, err := s.SaveRound(ctx, r); err == nil {
		t.Fatal("expected error on duplicate ID")
	}
}

func TestTopScores(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rounds := []Round{
		{Player: "a", Won: true, Score: 300, FinishedAt: base},
		{Player: "b", Won: true, Score: 900, FinishedAt: base.Add(time.Second)},
		{Player: "c", Won: false, Score: 0, FinishedAt: base.Add(2 * time.Second)},
		{Player: "d", Won: true, Score: 600, FinishedAt: base.Add(3 * time.Second)},
	}
	for _, r := range rounds {
		r.Low, r.High, r.MaxAttempts = 1, 100, 10
		if _, err := s.SaveRound(ctx, r); err != nil {
			t.Fatalf("SaveRound: %v", err)
		}
	}

	top, err := s.TopScores(ctx, 2)
	if err != nil {
		t.Fatalf("TopScores: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("expected 2 rounds, got %d", len(top))
	}
	if top[0].Player != "b" || top[1].Player != "d" {
		t.Fatalf("unexpected order: %s, %s", top[0].Player, top[1].Player)
	}

	all, err := s.TopScores(ctx, 10)
	if err != nil {
		t.Fatalf("TopScores: %v", err)
	}
	for _, r := range all {
		if !r.Won {
			t.Fatalf("lost round %s on the scoreboard", r.ID)
		}
	}
}

func TestPlayerRoundsMostRecentFirst(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		r := Round{Player: "eve", Low: 1, High: 10, MaxAttempts: 3, Secret: i, FinishedAt: base.Add(time.Duration(i) * time.Minute)}
		if _, err := s.SaveRound(ctx, r); err != nil {
			t.Fatalf("SaveRound: %v", err)
		}
	}
	if _, err := s.SaveRound(ctx, Round{Player: "other", Low: 1, High: 10, MaxAttempts: 3}); err != nil {
		t.Fatalf("SaveRound: %v", err)
	}

	got, err := s.PlayerRounds(ctx, "eve", 10)
	if err != nil {
		t.Fatalf("PlayerRounds: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 rounds, got %d", len(got))
	}
	if got[0].Secret != 2 || got[2].Secret != 0 {
		t.Fatalf("unexpected order: %d, %d, %d", got[0].Secret, got[1].Secret, got[2].Secret)
	}
	if got[0].Attempts == nil {
		t.Fatal("expected empty attempts slice, got nil")
	}
}
