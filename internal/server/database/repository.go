package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

var (
	ErrSessionNotFound = errors.New("session not found")
)

// Repository provides persistence for sessions and their command history.
type Repository struct {
	db *DB
}

// NewRepository creates a new Repository.
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// CreateSession inserts a new session record.
func (r *Repository) CreateSession(ctx context.Context, s *Session) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO sessions (id, token_hash, image_id, started_at, last_active_at)
		VALUES ($1, $2, $3, $4, $5)
	`,
		s.ID,
		s.TokenHash,
		s.ImageID,
		s.StartedAt,
		s.LastActiveAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by its ID.
func (r *Repository) GetSession(ctx context.Context, id string) (*Session, error) {
	s := &Session{}
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, token_hash, image_id, started_at, last_active_at,
			   ended_at, end_reason, command_count
		FROM sessions WHERE id = $1
	`, id).Scan(
		&s.ID,
		&s.TokenHash,
		&s.ImageID,
		&s.StartedAt,
		&s.LastActiveAt,
		&s.EndedAt,
		&s.EndReason,
		&s.CommandCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return s, nil
}

// RecordCommand appends one executed line to the session's history and
// bumps the session's activity timestamp and command counter, in a
// single transaction.
func (r *Repository) RecordCommand(ctx context.Context, rec *CommandRecord) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO session_commands (session_id, seq, line, ok, error_kind, executed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		rec.SessionID,
		rec.Seq,
		rec.Line,
		rec.OK,
		rec.ErrorKind,
		rec.ExecutedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record command: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE sessions
		SET last_active_at = $2, command_count = command_count + 1
		WHERE id = $1
	`, rec.SessionID, rec.ExecutedAt)
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit command record: %w", err)
	}
	return nil
}

// EndSession marks a session as ended with the given reason.
// Already-ended sessions are left untouched.
func (r *Repository) EndSession(ctx context.Context, id, reason string) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE sessions SET ended_at = NOW(), end_reason = $2
		WHERE id = $1 AND ended_at IS NULL
	`, id, reason)
	if err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListCommands returns a session's command history in execution order.
// A non-positive limit returns the full history.
func (r *Repository) ListCommands(ctx context.Context, sessionID string, limit int) ([]*CommandRecord, error) {
	var lim any
	if limit > 0 {
		lim = limit
	}
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, session_id, seq, line, ok, error_kind, executed_at
		FROM session_commands
		WHERE session_id = $1
		ORDER BY seq
		LIMIT $2
	`, sessionID, lim)
	if err != nil {
		return nil, fmt.Errorf("failed to query command history: %w", err)
	}
	defer rows.Close()

	var records []*CommandRecord
	for rows.Next() {
		rec := &CommandRecord{}
		if err := rows.Scan(
			&rec.ID,
			&rec.SessionID,
			&rec.Seq,
			&rec.Line,
			&rec.OK,
			&rec.ErrorKind,
			&rec.ExecutedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan command record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetIdle returns the IDs of live sessions with no activity since cutoff.
func (r *Repository) GetIdle(ctx context.Context, cutoff time.Time) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id FROM sessions
		WHERE ended_at IS NULL AND last_active_at < $1
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query idle sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan idle session: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetStats returns aggregate server statistics.
func (r *Repository) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	err := r.db.Pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE ended_at IS NULL),
			COALESCE(SUM(command_count), 0)
		FROM sessions
	`).Scan(
		&stats.TotalSessions,
		&stats.ActiveSessions,
		&stats.TotalCommands,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	return stats, nil
}
