package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pdfquiz/internal/session"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SessionStore persists study session state as one JSONB row per session.
type SessionStore struct {
	db  *DB
	ttl time.Duration
}

var _ session.Store = (*SessionStore)(nil)

// NewSessionStore creates a session store backed by db
func NewSessionStore(db *DB, ttl time.Duration) *SessionStore {
	return &SessionStore{db: db, ttl: ttl}
}

const (
	loadSessionSQL = `SELECT state FROM study_sessions WHERE id = $1 AND expires_at > now()`
	saveSessionSQL = `
INSERT INTO study_sessions (id, state, expires_at, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (id) DO UPDATE SET state = EXCLUDED.state, expires_at = EXCLUDED.expires_at, updated_at = now()`
	deleteSessionSQL = `DELETE FROM study_sessions WHERE id = $1`
	deleteExpiredSQL = `DELETE FROM study_sessions WHERE expires_at <= now()`
)

func (s *SessionStore) Load(ctx context.Context, id uuid.UUID) (session.State, error) {
	var raw []byte
	err := s.db.Pool.QueryRow(ctx, loadSessionSQL, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return session.State{}, session.ErrNotFound
	}
	if err != nil {
		return session.State{}, fmt.Errorf("failed to load session %s: %w", id, err)
	}
	var st session.State
	if err := json.Unmarshal(raw, &st); err != nil {
		return session.State{}, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	return st, nil
}

func (s *SessionStore) Save(ctx context.Context, id uuid.UUID, st session.State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", id, err)
	}
	if _, err := s.db.Pool.Exec(ctx, saveSessionSQL, id, raw, time.Now().Add(s.ttl)); err != nil {
		return fmt.Errorf("failed to save session %s: %w", id, err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.Pool.Exec(ctx, deleteSessionSQL, id); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	return nil
}

// DeleteExpired removes sessions past their expiry and returns the count
func (s *SessionStore) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := s.db.Pool.Exec(ctx, deleteExpiredSQL)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
