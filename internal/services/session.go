package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/taskhive/taskhive-api/internal/database"
	"github.com/taskhive/taskhive-api/internal/models"
)

// SessionService resolves opaque bearer tokens to users. Tokens are 32 random
// bytes hex-encoded, stored with an absolute expiry; expired rows are deleted
// the first time a request observes them.
type SessionService struct {
	db     *database.DB
	users  *UserService
	expiry time.Duration
}

func NewSessionService(db *database.DB, users *UserService, expiry time.Duration) *SessionService {
	return &SessionService{db: db, users: users, expiry: expiry}
}

// Login verifies credentials and issues a new session. Each login creates its
// own row, so a user can hold concurrent sessions across devices.
func (s *SessionService) Login(ctx context.Context, email, password string) (*models.Session, *models.User, error) {
	user, err := s.users.VerifyPassword(ctx, email, password)
	if err != nil {
		return nil, nil, err
	}

	token, err := generateToken()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	var session models.Session
	err = s.db.Pool.QueryRow(ctx, `
		INSERT INTO sessions (token, user_id, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, token, user_id, expires_at, created_at
	`, token, user.ID, time.Now().Add(s.expiry)).Scan(
		&session.ID, &session.Token, &session.UserID, &session.ExpiresAt, &session.CreatedAt,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &session, user, nil
}

// Resolve maps a token to its user in a single session-user join. An expired
// session is deleted on observation and reported as ErrSessionExpired; an
// unknown token is ErrUnauthorized.
func (s *SessionService) Resolve(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	var expiresAt time.Time
	var user models.User
	err := s.db.Pool.QueryRow(ctx, `
		SELECT s.expires_at,
		       u.id, u.email, u.password_hash, u.name, u.designation, u.department, u.skills, u.created_at, u.updated_at
		FROM sessions s
		JOIN users u ON s.user_id = u.id
		WHERE s.token = $1
	`, token).Scan(
		&expiresAt,
		&user.ID, &user.Email, &user.PasswordHash, &user.Name,
		&user.Designation, &user.Department, &user.Skills, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	if expiresAt.Before(time.Now()) {
		_, _ = s.db.Pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
		return nil, ErrSessionExpired
	}
	return &user, nil
}

// Logout deletes the session row. Logging out an unknown or already-deleted
// token is not an error.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	_, err := s.db.Pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	return err
}

// CleanupExpired is the maintenance sweep; request handling never waits on it.
func (s *SessionService) CleanupExpired(ctx context.Context) error {
	_, err := s.db.Pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < NOW()`)
	return err
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
