package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelforge/studio/pkg/identity"
)

func newAuthRouter(t *testing.T) (*mux.Router, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	router := mux.NewRouter()
	NewAuthHandlers(identity.NewManager(db), logrus.New()).RegisterRoutes(router)
	return router, mock
}

func TestSignIn(t *testing.T) {
	router, mock := newAuthRouter(t)

	hash, err := identity.HashPassword("hunter2pass")
	require.NoError(t, err)

	mock.ExpectQuery("SELECT id, password_hash FROM users").
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "password_hash"}).AddRow(7, hash))
	mock.ExpectExec("INSERT INTO sessions").
		WillReturnResult(sqlmock.NewResult(0, 1))

	payload := `{"email":"ana@example.com","password":"hunter2pass"}`
	req := httptest.NewRequest("POST", "/auth/signin", bytes.NewBufferString(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp SignInResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.Token, "studio_"))
	assert.Equal(t, int64(7), resp.Session.UserID)
	assert.Equal(t, "ana@example.com", resp.Session.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignInWrongPassword(t *testing.T) {
	router, mock := newAuthRouter(t)

	hash, err := identity.HashPassword("the-real-password")
	require.NoError(t, err)

	mock.ExpectQuery("SELECT id, password_hash FROM users").
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "password_hash"}).AddRow(7, hash))

	payload := `{"email":"ana@example.com","password":"not-it"}`
	req := httptest.NewRequest("POST", "/auth/signin", bytes.NewBufferString(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid email or password")
}

func TestSignInUnknownEmail(t *testing.T) {
	router, mock := newAuthRouter(t)

	mock.ExpectQuery("SELECT id, password_hash FROM users").
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "password_hash"}))

	payload := `{"email":"nobody@example.com","password":"whatever123"}`
	req := httptest.NewRequest("POST", "/auth/signin", bytes.NewBufferString(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSignUp(t *testing.T) {
	router, mock := newAuthRouter(t)

	hash, err := identity.HashPassword("hunter2pass")
	require.NoError(t, err)

	mock.ExpectQuery("INSERT INTO users").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))
	mock.ExpectQuery("SELECT id, password_hash FROM users").
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "password_hash"}).AddRow(12, hash))
	mock.ExpectExec("INSERT INTO sessions").
		WillReturnResult(sqlmock.NewResult(0, 1))

	payload := `{"email":"ana@example.com","name":"Ana","password":"hunter2pass"}`
	req := httptest.NewRequest("POST", "/auth/signup", bytes.NewBufferString(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp SignInResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(12), resp.Session.UserID)
}

func TestSignOut(t *testing.T) {
	router, mock := newAuthRouter(t)

	token, hashHex := testToken(t)
	mock.ExpectExec("DELETE FROM sessions").
		WithArgs(hashHex).
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest("POST", "/auth/signout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignOutMalformedToken(t *testing.T) {
	router, mock := newAuthRouter(t)

	req := httptest.NewRequest("POST", "/auth/signout", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func testToken(t *testing.T) (token, hashHex string) {
	t.Helper()
	token, hashHex, err := identity.NewTokenGenerator().GenerateToken()
	require.NoError(t, err)
	return token, hashHex
}
