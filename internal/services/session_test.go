package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskhive/taskhive-api/internal/database"
)

func setupSessionService(t *testing.T) (*SessionService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	users := NewUserService(db)
	return NewSessionService(db, users, 30*24*time.Hour), mock
}

func TestSessionService_Login(t *testing.T) {
	svc, mock := setupSessionService(t)
	ctx := context.Background()
	userID := uuid.New()
	sessionID := uuid.New()
	now := time.Now()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE email`).
		WithArgs("login@example.com").
		WillReturnRows(userRows(userID, "login@example.com", string(hash), "Login User"))

	sessionRows := pgxmock.NewRows([]string{
		"id", "token", "user_id", "expires_at", "created_at",
	}).AddRow(sessionID, "sometoken", userID, now.Add(30*24*time.Hour), now)

	mock.ExpectQuery(`INSERT INTO sessions`).
		WithArgs(pgxmock.AnyArg(), userID, pgxmock.AnyArg()).
		WillReturnRows(sessionRows)

	session, user, err := svc.Login(ctx, "login@example.com", "correct-password")

	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, userID, session.UserID)
	assert.NotEmpty(t, session.Token)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionService_Login_BadCredentials(t *testing.T) {
	svc, mock := setupSessionService(t)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE email`).
		WithArgs("nobody@example.com").
		WillReturnError(pgx.ErrNoRows)

	_, _, err := svc.Login(ctx, "nobody@example.com", "any-password")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionService_Resolve(t *testing.T) {
	svc, mock := setupSessionService(t)
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows([]string{
		"expires_at",
		"id", "email", "password_hash", "name", "designation", "department", "skills", "created_at", "updated_at",
	}).AddRow(now.Add(time.Hour), userID, "u@example.com", "hash", "User", nil, nil, nil, now, now)

	mock.ExpectQuery(`SELECT s.expires_at`).
		WithArgs("valid-token").
		WillReturnRows(rows)

	user, err := svc.Resolve(ctx, "valid-token")

	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionService_Resolve_EmptyToken(t *testing.T) {
	svc, mock := setupSessionService(t)

	_, err := svc.Resolve(context.Background(), "")

	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionService_Resolve_UnknownToken(t *testing.T) {
	svc, mock := setupSessionService(t)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT s.expires_at`).
		WithArgs("unknown-token").
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.Resolve(ctx, "unknown-token")

	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionService_Resolve_Expired(t *testing.T) {
	svc, mock := setupSessionService(t)
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows([]string{
		"expires_at",
		"id", "email", "password_hash", "name", "designation", "department", "skills", "created_at", "updated_at",
	}).AddRow(now.Add(-time.Minute), userID, "u@example.com", "hash", "User", nil, nil, nil, now, now)

	mock.ExpectQuery(`SELECT s.expires_at`).
		WithArgs("stale-token").
		WillReturnRows(rows)

	// Expired sessions are deleted the moment they are observed.
	mock.ExpectExec(`DELETE FROM sessions WHERE token`).
		WithArgs("stale-token").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	_, err := svc.Resolve(ctx, "stale-token")

	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionService_Logout_UnknownTokenIsNoop(t *testing.T) {
	svc, mock := setupSessionService(t)
	ctx := context.Background()

	mock.ExpectExec(`DELETE FROM sessions WHERE token`).
		WithArgs("gone-token").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := svc.Logout(ctx, "gone-token")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionService_CleanupExpired(t *testing.T) {
	svc, mock := setupSessionService(t)
	ctx := context.Background()

	mock.ExpectExec(`DELETE FROM sessions WHERE expires_at`).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	err := svc.CleanupExpired(ctx)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateToken(t *testing.T) {
	a, err := generateToken()
	require.NoError(t, err)
	b, err := generateToken()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}
