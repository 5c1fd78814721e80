package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dwizi/quantumx/internal/session"
)

var _ session.Store = (*Store)(nil)

func (s *Store) Get(ctx context.Context, id string) (session.State, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return session.State{}, session.ErrNotFound
	}
	if err != nil {
		return session.State{}, fmt.Errorf("lookup session: %w", err)
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT role, content FROM session_messages WHERE session_id = ? ORDER BY position ASC`,
		id,
	)
	if err != nil {
		return session.State{}, fmt.Errorf("list session messages: %w", err)
	}
	defer rows.Close()

	state := session.State{}
	for rows.Next() {
		var role, content string
		if err := rows.Scan(&role, &content); err != nil {
			return session.State{}, fmt.Errorf("scan session message: %w", err)
		}
		state.Append(session.Role(role), content)
	}
	if err := rows.Err(); err != nil {
		return session.State{}, fmt.Errorf("iterate session messages: %w", err)
	}
	return state, nil
}

func (s *Store) Create(ctx context.Context, id string) error {
	nowUnix := time.Now().UTC().Unix()
	if _, err := s.db.ExecContext(
		ctx,
		`INSERT INTO sessions (id, created_at_unix, updated_at_unix) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		id,
		nowUnix,
		nowUnix,
	); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// Put replaces the stored history of id with state in one transaction.
func (s *Store) Put(ctx context.Context, id string, state session.State) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin session tx: %w", err)
	}
	defer tx.Rollback()

	nowUnix := time.Now().UTC().Unix()
	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO sessions (id, created_at_unix, updated_at_unix) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET updated_at_unix = excluded.updated_at_unix`,
		id,
		nowUnix,
		nowUnix,
	); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM session_messages WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("clear session messages: %w", err)
	}
	for position, message := range state.Messages {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO session_messages (session_id, position, role, content) VALUES (?, ?, ?, ?)`,
			id,
			position,
			string(message.Role),
			message.Content,
		); err != nil {
			return fmt.Errorf("insert session message: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session tx: %w", err)
	}
	return nil
}

func (s *Store) Len(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return count, nil
}
