// Package store keeps the scoreboard of finished rounds in SQLite.
// Rounds still being played are never written here.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS rounds (
	id            TEXT PRIMARY KEY,
	player        TEXT NOT NULL,
	low           INTEGER NOT NULL,
	high          INTEGER NOT NULL,
	max_attempts  INTEGER NOT NULL,
	attempts_used INTEGER NOT NULL,
	won           INTEGER NOT NULL,
	score         INTEGER NOT NULL,
	secret        INTEGER NOT NULL,
	attempts_json TEXT NOT NULL,
	started_at    TEXT NOT NULL,
	finished_at   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_rounds_player ON rounds(player, finished_at);
CREATE INDEX IF NOT EXISTS idx_rounds_score ON rounds(score DESC);
`

// Attempt is one counted guess of a finished round.
type Attempt struct {
	Value   int    `json:"value"`
	Verdict string `json:"verdict"`
}

// Round is a finished round.
type Round struct {
	ID           string    `json:"id"`
	Player       string    `json:"player"`
	Low          int       `json:"low"`
	High         int       `json:"high"`
	MaxAttempts  int       `json:"maxAttempts"`
	AttemptsUsed int       `json:"attemptsUsed"`
	Won          bool      `json:"won"`
	Score        int       `json:"score"`
	Secret       int       `json:"secret"`
	Attempts     []Attempt `json:"attempts"`
	StartedAt    time.Time `json:"startedAt"`
	FinishedAt   time.Time `json:"finishedAt"`
}

// Store manages finished rounds in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens a SQLite database and runs migrations.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRound inserts a finished round. An empty ID is replaced with a new
// UUID; the stored ID is returned.
func (s *Store) SaveRound(ctx context.Context, r Round) (string, error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.FinishedAt.IsZero() {
		r.FinishedAt = time.Now().UTC()
	}
	if r.Attempts == nil {
		r.Attempts = []Attempt{}
	}
	attemptsJSON, err := json.Marshal(r.Attempts)
	if err != nil {
		return "", fmt.Errorf("marshal attempts: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO rounds (id, player, low, high, max_attempts, attempts_used, won, score, secret, attempts_json, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Player, r.Low, r.High, r.MaxAttempts, r.AttemptsUsed, r.Won, r.Score, r.Secret,
		string(attemptsJSON),
		r.StartedAt.UTC().Format(time.RFC3339Nano),
		r.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert round %s: %w", r.ID, err)
	}
	return r.ID, nil
}

// TopScores returns won rounds ordered by score, best first.
func (s *Store) TopScores(ctx context.Context, limit int) ([]Round, error) {
	return s.query(ctx,
		`SELECT id, player, low, high, max_attempts, attempts_used, won, score, secret, attempts_json, started_at, finished_at
		 FROM rounds WHERE won = 1 ORDER BY score DESC, finished_at ASC LIMIT ?`, limit)
}

// PlayerRounds returns a player's rounds, most recent first.
func (s *Store) PlayerRounds(ctx context.Context, player string, limit int) ([]Round, error) {
	return s.query(ctx,
		`SELECT id, player, low, high, max_attempts, attempts_used, won, score, secret, attempts_json, started_at, finished_at
		 FROM rounds WHERE player = ? ORDER BY finished_at DESC LIMIT ?`, player, limit)
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]Round, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query rounds: %w", err)
	}
	defer rows.Close()

	out := []Round{}
	for rows.Next() {
		var r Round
		var attemptsJSON, startedStr, finishedStr string
		if err := rows.Scan(&r.ID, &r.Player, &r.Low, &r.High, &r.MaxAttempts, &r.AttemptsUsed,
			&r.Won, &r.Score, &r.Secret, &attemptsJSON, &startedStr, &finishedStr); err != nil {
			return nil, fmt.Errorf("scan round: %w", err)
		}
		if err := json.Unmarshal([]byte(attemptsJSON), &r.Attempts); err != nil {
			return nil, fmt.Errorf("unmarshal attempts of %s: %w", r.ID, err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, startedStr)
		r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finishedStr)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rounds: %w", err)
	}
	return out, nil
}
