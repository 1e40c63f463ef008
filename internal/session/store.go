package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"roomdesk/internal/models"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// Store persists sessions in sqlite — the client-side equivalent of the
// browser's durable storage. One row per chat user; login upserts, logout
// deletes, startup reads rehydrate.
type Store struct {
	db     *sql.DB
	logger *zerolog.Logger
}

func NewStore(path string, logger *zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping session db: %w", err)
	}

	store := &Store{db: db, logger: logger}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) migrate() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS sessions (
		chat_id    INTEGER PRIMARY KEY,
		username   TEXT NOT NULL,
		email      TEXT NOT NULL DEFAULT '',
		is_admin   INTEGER NOT NULL DEFAULT 0,
		token      TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("migrate sessions table: %w", err)
	}
	return nil
}

// Get returns the stored session or nil when the user is not logged in.
func (s *Store) Get(ctx context.Context, chatID int64) (*models.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT chat_id, username, email, is_admin, token, created_at, updated_at
		 FROM sessions WHERE chat_id = ?`, chatID)

	var session models.Session
	err := row.Scan(&session.ChatID, &session.Username, &session.Email,
		&session.IsAdmin, &session.Token, &session.CreatedAt, &session.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	return &session, nil
}

func (s *Store) Put(ctx context.Context, session *models.Session) error {
	if session == nil || session.ChatID == 0 {
		return errors.New("session chat_id is required")
	}
	now := time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (chat_id, username, email, is_admin, token, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(chat_id) DO UPDATE SET
			username = excluded.username,
			email = excluded.email,
			is_admin = excluded.is_admin,
			token = excluded.token,
			updated_at = excluded.updated_at`,
		session.ChatID, session.Username, session.Email, session.IsAdmin,
		session.Token, session.CreatedAt, session.UpdatedAt)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, chatID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE chat_id = ?`, chatID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
