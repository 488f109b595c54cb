package identity

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SessionTTL is how long a sign-in token stays valid.
const SessionTTL = 30 * 24 * time.Hour

// Schema is the DDL for users and sessions. Types work on both postgres
// and sqlite.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id            INTEGER PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	name          TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMP NOT NULL,
	updated_at    TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS sessions (
	token_hash TEXT PRIMARY KEY,
	user_id    BIGINT NOT NULL,
	email      TEXT NOT NULL,
	expires_at TIMESTAMP NOT NULL,
	created_at TIMESTAMP NOT NULL
);
`

// EnsureSchema creates the identity tables if they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create identity schema: %w", err)
	}
	return nil
}

// Manager owns the account and session lifecycle: explicit init (sign-in)
// and teardown (sign-out), no ambient state.
type Manager struct {
	db        *sql.DB
	generator *TokenGenerator
}

// NewManager creates a Manager backed by the given database.
func NewManager(db *sql.DB) *Manager {
	return &Manager{
		db:        db,
		generator: NewTokenGenerator(),
	}
}

// SignUp registers a new account. The wizard's account step calls this when
// the client opts to create a login alongside their submission.
func (m *Manager) SignUp(ctx context.Context, email, name, password string) (*User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	var id int64
	err = m.db.QueryRowContext(ctx, `
		INSERT INTO users (email, name, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, email, name, hash, now, now).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &User{ID: id, Email: email, Name: name, CreatedAt: now, UpdatedAt: now}, nil
}

// SignIn verifies credentials and issues a bearer token. The returned token
// is shown to the caller exactly once; only its hash is stored.
func (m *Manager) SignIn(ctx context.Context, email, password string) (string, *Session, error) {
	var (
		userID int64
		hash   string
	)
	err := m.db.QueryRowContext(ctx,
		`SELECT id, password_hash FROM users WHERE email = $1`, email).
		Scan(&userID, &hash)
	if err == sql.ErrNoRows {
		return "", nil, fmt.Errorf("invalid email or password")
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !VerifyPassword(password, hash) {
		return "", nil, fmt.Errorf("invalid email or password")
	}

	token, tokenHash, err := m.generator.GenerateToken()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	now := time.Now().UTC()
	expires := now.Add(SessionTTL)
	_, err = m.db.ExecContext(ctx, `
		INSERT INTO sessions (token_hash, user_id, email, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, tokenHash, userID, email, expires, now)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create session: %w", err)
	}

	return token, &Session{UserID: userID, Email: email, ExpiresAt: expires}, nil
}

// SignOut revokes the session for the given token. Revoking an unknown
// token is not an error.
func (m *Manager) SignOut(ctx context.Context, token string) error {
	if err := m.generator.ValidateTokenFormat(token); err != nil {
		return nil
	}
	_, err := m.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE token_hash = $1`, m.generator.HashToken(token))
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// Resolve maps a bearer token to its session. Expired or unknown tokens
// resolve to an error.
func (m *Manager) Resolve(ctx context.Context, token string) (*Session, error) {
	if err := m.generator.ValidateTokenFormat(token); err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	var s Session
	err := m.db.QueryRowContext(ctx, `
		SELECT user_id, email, expires_at FROM sessions WHERE token_hash = $1
	`, m.generator.HashToken(token)).Scan(&s.UserID, &s.Email, &s.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}

	if s.Expired(time.Now()) {
		return nil, fmt.Errorf("session expired")
	}
	return &s, nil
}
