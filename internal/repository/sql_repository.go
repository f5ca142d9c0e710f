package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	app_errors "memochat/internal/errors"
	"memochat/internal/model"
)

// The statements below use $n placeholders, which both pgx and go-sqlite3 accept.
// Each placeholder appears once and in ascending order so SQLite binds them positionally.
const (
	insertUserQuery = `
		INSERT INTO users (username, password_hash, created_at)
		VALUES ($1, $2, $3)
		RETURNING user_id`
	selectUserByUsernameQuery = `
		SELECT user_id, username, password_hash, created_at
		FROM users
		WHERE username = $1`
	updatePasswordHashQuery = "UPDATE users SET password_hash = $1 WHERE user_id = $2"

	selectSessionQuery = "SELECT messages FROM chat_logs WHERE user_id = $1 AND session_id = $2"
	upsertSessionQuery = `
		INSERT INTO chat_logs (user_id, session_id, messages, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, session_id)
		DO UPDATE SET messages = EXCLUDED.messages, updated_at = EXCLUDED.updated_at`
	listSessionsQuery = `
		SELECT session_id, updated_at
		FROM chat_logs
		WHERE user_id = $1
		ORDER BY updated_at DESC, session_id ASC`
	selectAllMessagesQuery = `
		SELECT messages
		FROM chat_logs
		WHERE user_id = $1
		ORDER BY updated_at ASC, session_id ASC`
)

type sqlRepository struct {
	db  *sql.DB
	now func() time.Time
}

// Option customises a repository.
type Option func(*sqlRepository)

// WithClock overrides the timestamp source used for created_at/updated_at.
func WithClock(now func() time.Time) Option {
	return func(r *sqlRepository) { r.now = now }
}

// NewSQLRepository returns a Repository backed by a pooled *sql.DB.
func NewSQLRepository(db *sql.DB, opts ...Option) Repository {
	r := &sqlRepository{db: db, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func persistenceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", app_errors.ErrPersistence, op, err)
}

// --- Users ---

func (r *sqlRepository) CreateUser(ctx context.Context, username, passwordHash string) (int64, error) {
	var userID int64
	err := r.db.QueryRowContext(ctx, insertUserQuery, username, passwordHash, r.now().UTC()).Scan(&userID)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicate
		}
		return 0, persistenceError("create user", err)
	}
	return userID, nil
}

func (r *sqlRepository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	err := r.db.QueryRowContext(ctx, selectUserByUsernameQuery, username).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, persistenceError("get user", err)
	}
	return &u, nil
}

func (r *sqlRepository) UpdatePasswordHash(ctx context.Context, userID int64, passwordHash string) error {
	if _, err := r.db.ExecContext(ctx, updatePasswordHashQuery, passwordHash, userID); err != nil {
		return persistenceError("update password hash", err)
	}
	return nil
}

// --- Chat logs ---

func (r *sqlRepository) LoadSession(ctx context.Context, userID int64, sessionID string) ([]model.Message, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx, selectSessionQuery, userID, sessionID).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []model.Message{}, nil
		}
		return nil, persistenceError("load session", err)
	}
	return decodeMessages(raw)
}

// SaveSession replaces the whole transcript in one upsert. Concurrent writers
// to the same key are not coordinated: the last statement to run wins.
func (r *sqlRepository) SaveSession(ctx context.Context, userID int64, sessionID string, messages []model.Message) error {
	if messages == nil {
		messages = []model.Message{}
	}
	for i, m := range messages {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("%w: message %d: %w", app_errors.ErrValidation, i, err)
		}
	}
	payload, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, upsertSessionQuery, userID, sessionID, string(payload), r.now().UTC()); err != nil {
		return persistenceError("save session", err)
	}
	return nil
}

func (r *sqlRepository) ListSessions(ctx context.Context, userID int64) ([]model.SessionSummary, error) {
	rows, err := r.db.QueryContext(ctx, listSessionsQuery, userID)
	if err != nil {
		return nil, persistenceError("list sessions", err)
	}
	defer rows.Close()

	sessions := []model.SessionSummary{}
	for rows.Next() {
		var s model.SessionSummary
		if err := rows.Scan(&s.SessionID, &s.UpdatedAt); err != nil {
			return nil, persistenceError("scan session", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceError("list sessions", err)
	}
	return sessions, nil
}

func (r *sqlRepository) LoadAllUserMessages(ctx context.Context, userID int64) ([]model.Message, error) {
	rows, err := r.db.QueryContext(ctx, selectAllMessagesQuery, userID)
	if err != nil {
		return nil, persistenceError("load user history", err)
	}
	defer rows.Close()

	all := []model.Message{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, persistenceError("scan transcript", err)
		}
		msgs, err := decodeMessages(raw)
		if err != nil {
			return nil, err
		}
		all = append(all, msgs...)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceError("load user history", err)
	}
	return all, nil
}

func decodeMessages(raw []byte) ([]model.Message, error) {
	msgs := []model.Message{}
	if len(raw) == 0 {
		return msgs, nil
	}
	if err := json.Unmarshal(raw, &msgs); err != nil {
		return nil, persistenceError("decode transcript", err)
	}
	if msgs == nil {
		msgs = []model.Message{}
	}
	for i, m := range msgs {
		if err := m.Validate(); err != nil {
			return nil, persistenceError("decode transcript", fmt.Errorf("message %d: %w", i, err))
		}
	}
	return msgs, nil
}
