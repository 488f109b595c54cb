package identity

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerSignUp(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("ana@example.com", "Ana", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	m := NewManager(db)
	user, err := m.SignUp(context.Background(), "ana@example.com", "Ana", "hunter22")
	require.NoError(t, err)

	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestManagerSignIn(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	hash, err := HashPassword("hunter22")
	require.NoError(t, err)

	mock.ExpectQuery("SELECT id, password_hash FROM users").
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "password_hash"}).AddRow(int64(7), hash))
	mock.ExpectExec("INSERT INTO sessions").
		WillReturnResult(sqlmock.NewResult(0, 1))

	m := NewManager(db)
	token, session, err := m.SignIn(context.Background(), "ana@example.com", "hunter22")
	require.NoError(t, err)

	assert.NoError(t, m.generator.ValidateTokenFormat(token))
	assert.Equal(t, int64(7), session.UserID)
	assert.Equal(t, "ana@example.com", session.Email)
	assert.True(t, session.ExpiresAt.After(time.Now()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestManagerSignInWrongPassword(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	hash, err := HashPassword("hunter22")
	require.NoError(t, err)

	mock.ExpectQuery("SELECT id, password_hash FROM users").
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "password_hash"}).AddRow(int64(7), hash))

	m := NewManager(db)
	_, _, err = m.SignIn(context.Background(), "ana@example.com", "wrong")
	assert.ErrorContains(t, err, "invalid email or password")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestManagerSignInUnknownEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id, password_hash FROM users").
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "password_hash"}))

	m := NewManager(db)
	_, _, err = m.SignIn(context.Background(), "nobody@example.com", "hunter22")
	assert.ErrorContains(t, err, "invalid email or password")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestManagerResolve(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	m := NewManager(db)
	token, tokenHash, err := m.generator.GenerateToken()
	require.NoError(t, err)

	t.Run("valid session", func(t *testing.T) {
		mock.ExpectQuery("SELECT user_id, email, expires_at FROM sessions").
			WithArgs(tokenHash).
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "email", "expires_at"}).
				AddRow(int64(7), "ana@example.com", time.Now().Add(time.Hour)))

		session, err := m.Resolve(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, int64(7), session.UserID)
	})

	t.Run("expired session", func(t *testing.T) {
		mock.ExpectQuery("SELECT user_id, email, expires_at FROM sessions").
			WithArgs(tokenHash).
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "email", "expires_at"}).
				AddRow(int64(7), "ana@example.com", time.Now().Add(-time.Hour)))

		_, err := m.Resolve(context.Background(), token)
		assert.ErrorContains(t, err, "expired")
	})

	t.Run("unknown token", func(t *testing.T) {
		mock.ExpectQuery("SELECT user_id, email, expires_at FROM sessions").
			WithArgs(tokenHash).
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "email", "expires_at"}))

		_, err := m.Resolve(context.Background(), token)
		assert.ErrorContains(t, err, "not found")
	})

	t.Run("malformed token", func(t *testing.T) {
		_, err := m.Resolve(context.Background(), "not-a-token")
		assert.ErrorContains(t, err, "invalid token")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestManagerSignOut(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	m := NewManager(db)
	token, tokenHash, err := m.generator.GenerateToken()
	require.NoError(t, err)

	mock.ExpectExec("DELETE FROM sessions").
		WithArgs(tokenHash).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, m.SignOut(context.Background(), token))

	// malformed tokens never had a session; sign-out is a no-op
	require.NoError(t, m.SignOut(context.Background(), "garbage"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
