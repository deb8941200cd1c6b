package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"vendorportal/config"
	"vendorportal/models"
	"vendorportal/utils"
)

// InitDB opens the Postgres pool used for the session table.
func InitDB(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	pingCtx, cancel := utils.GetFastQueryContext(ctx)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

const sessionTableDDL = `CREATE TABLE IF NOT EXISTS session (
	session_id  TEXT PRIMARY KEY,
	user_id     INTEGER NOT NULL,
	email       TEXT NOT NULL,
	ip_address  TEXT NOT NULL DEFAULT '',
	timestp     TIMESTAMPTZ NOT NULL,
	expires_at  TIMESTAMPTZ NOT NULL
)`

// SQLSessionStore keeps login sessions in the session table.
type SQLSessionStore struct {
	db *sql.DB
}

func NewSQLSessionStore(db *sql.DB) *SQLSessionStore {
	return &SQLSessionStore{db: db}
}

// EnsureSchema creates the session table when missing.
func (s *SQLSessionStore) EnsureSchema(ctx context.Context) error {
	ctx, cancel := utils.GetDefaultQueryContext(ctx)
	defer cancel()
	if _, err := s.db.ExecContext(ctx, sessionTableDDL); err != nil {
		return fmt.Errorf("create session table: %w", err)
	}
	return nil
}

func (s *SQLSessionStore) SaveSession(ctx context.Context, session *models.Session, allowMultiple bool) error {
	ctx, cancel := utils.GetFastQueryContext(ctx)
	defer cancel()

	if !allowMultiple {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE user_id = $1`, session.UserID); err != nil {
			return fmt.Errorf("failed to delete user sessions: %w", err)
		}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session (session_id, user_id, email, ip_address, timestp, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		session.SessionID, session.UserID, session.Email, session.IPAddress, session.Timestamp, session.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

func (s *SQLSessionStore) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	ctx, cancel := utils.GetFastQueryContext(ctx)
	defer cancel()

	var session models.Session
	err := s.db.QueryRowContext(ctx,
		`SELECT session_id, user_id, email, ip_address, timestp, expires_at FROM session WHERE session_id = $1`,
		sessionID,
	).Scan(&session.SessionID, &session.UserID, &session.Email, &session.IPAddress, &session.Timestamp, &session.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}
	return &session, nil
}

func (s *SQLSessionStore) DeleteSession(ctx context.Context, sessionID string) error {
	ctx, cancel := utils.GetFastQueryContext(ctx)
	defer cancel()

	result, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE session_id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLSessionStore) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	ctx, cancel := utils.GetDefaultQueryContext(ctx)
	defer cancel()

	result, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE expires_at < $1`, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to clean up sessions: %w", err)
	}
	return result.RowsAffected()
}
