package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskhive/taskhive-api/internal/database"
	"github.com/taskhive/taskhive-api/internal/models"
)

// InvitationService issues and consumes workspace and client invitations.
// An invitation is pending until accepted or revoked; expiry is computed
// lazily from expires_at rather than written back.
type InvitationService struct {
	db     *database.DB
	expiry time.Duration
}

func NewInvitationService(db *database.DB, expiry time.Duration) *InvitationService {
	return &InvitationService{db: db, expiry: expiry}
}

// Create issues a workspace invitation. The caller is responsible for the
// admin check; this enforces the AlreadyMember and DuplicateInvitation rules.
func (s *InvitationService) Create(ctx context.Context, email string, workspaceID, inviterID uuid.UUID) (*models.Invitation, error) {
	email = normalizeEmail(email)

	var isMember bool
	err := s.db.Pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM members m
			JOIN users u ON m.user_id = u.id
			WHERE u.email = $1 AND m.workspace_id = $2
		)
	`, email, workspaceID).Scan(&isMember)
	if err != nil {
		return nil, err
	}
	if isMember {
		return nil, ErrAlreadyMember
	}

	// Expiry is lazy, so an expired row still sits in the pending unique
	// index. Clear it here or the pair could never be re-invited.
	_, err = s.db.Pool.Exec(ctx, `
		DELETE FROM invitations
		WHERE email = $1 AND workspace_id = $2 AND status = $3 AND expires_at < NOW()
	`, email, workspaceID, models.InvitationStatusPending)
	if err != nil {
		return nil, err
	}

	var invitation models.Invitation
	err = s.db.Pool.QueryRow(ctx, `
		INSERT INTO invitations (email, workspace_id, invited_by, status, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, email, workspace_id, invited_by, status, expires_at, created_at, updated_at
	`, email, workspaceID, inviterID, models.InvitationStatusPending, time.Now().Add(s.expiry)).Scan(
		&invitation.ID, &invitation.Email, &invitation.WorkspaceID, &invitation.InvitedBy,
		&invitation.Status, &invitation.ExpiresAt, &invitation.CreatedAt, &invitation.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrDuplicateInvitation
		}
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}
	return &invitation, nil
}

// GetByID fetches an invitation with its workspace for the public accept
// landing page. Not-found, expired and already-used are distinct conditions.
func (s *InvitationService) GetByID(ctx context.Context, invitationID uuid.UUID) (*models.Invitation, error) {
	var invitation models.Invitation
	var workspace models.Workspace
	err := s.db.Pool.QueryRow(ctx, `
		SELECT i.id, i.email, i.workspace_id, i.invited_by, i.status, i.expires_at, i.created_at, i.updated_at,
		       w.id, w.name, w.owner_id, w.created_at, w.updated_at
		FROM invitations i
		JOIN workspaces w ON i.workspace_id = w.id
		WHERE i.id = $1
	`, invitationID).Scan(
		&invitation.ID, &invitation.Email, &invitation.WorkspaceID, &invitation.InvitedBy,
		&invitation.Status, &invitation.ExpiresAt, &invitation.CreatedAt, &invitation.UpdatedAt,
		&workspace.ID, &workspace.Name, &workspace.OwnerID, &workspace.CreatedAt, &workspace.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvitationNotFound
		}
		return nil, err
	}
	invitation.Workspace = &workspace

	if invitation.Status != models.InvitationStatusPending {
		return nil, ErrInvitationAlreadyUsed
	}
	if invitation.Expired(time.Now()) {
		return nil, ErrInvitationExpired
	}
	return &invitation, nil
}

// Lookup returns the raw invitation row regardless of status or expiry.
// Revoke relies on it: an expired invitation must stay reachable so an admin
// can clear it.
func (s *InvitationService) Lookup(ctx context.Context, invitationID uuid.UUID) (*models.Invitation, error) {
	var invitation models.Invitation
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, email, workspace_id, invited_by, status, expires_at, created_at, updated_at
		FROM invitations WHERE id = $1
	`, invitationID).Scan(
		&invitation.ID, &invitation.Email, &invitation.WorkspaceID, &invitation.InvitedBy,
		&invitation.Status, &invitation.ExpiresAt, &invitation.CreatedAt, &invitation.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvitationNotFound
		}
		return nil, err
	}
	return &invitation, nil
}

// Accept consumes a pending invitation for the authenticated user. The status
// flip and the membership upsert commit together or not at all; any failed
// precondition rolls the transaction back with no membership created.
func (s *InvitationService) Accept(ctx context.Context, invitationID uuid.UUID, user *models.User) (*models.Member, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var invitation models.Invitation
	err = tx.QueryRow(ctx, `
		SELECT id, email, workspace_id, status, expires_at
		FROM invitations WHERE id = $1
		FOR UPDATE
	`, invitationID).Scan(
		&invitation.ID, &invitation.Email, &invitation.WorkspaceID,
		&invitation.Status, &invitation.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvitationNotFound
		}
		return nil, err
	}

	if invitation.Status != models.InvitationStatusPending {
		return nil, ErrInvitationAlreadyUsed
	}
	if invitation.Expired(time.Now()) {
		return nil, ErrInvitationExpired
	}
	if invitation.Email != normalizeEmail(user.Email) {
		return nil, ErrEmailMismatch
	}

	var alreadyMember bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM members WHERE user_id = $1 AND workspace_id = $2)
	`, user.ID, invitation.WorkspaceID).Scan(&alreadyMember)
	if err != nil {
		return nil, err
	}
	if alreadyMember {
		return nil, ErrAlreadyMember
	}

	var member models.Member
	err = tx.QueryRow(ctx, `
		INSERT INTO members (user_id, workspace_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, workspace_id) DO UPDATE SET role = members.role
		RETURNING id, user_id, workspace_id, role, created_at
	`, user.ID, invitation.WorkspaceID, models.RoleMember).Scan(
		&member.ID, &member.UserID, &member.WorkspaceID, &member.Role, &member.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create membership: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE invitations SET status = $1, updated_at = NOW() WHERE id = $2
	`, models.InvitationStatusAccepted, invitationID)
	if err != nil {
		return nil, fmt.Errorf("failed to update invitation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &member, nil
}

// Revoke deletes a pending invitation outright; consumed or expired rows are
// left alone.
func (s *InvitationService) Revoke(ctx context.Context, invitationID uuid.UUID) error {
	result, err := s.db.Pool.Exec(ctx, `
		DELETE FROM invitations WHERE id = $1 AND status = $2
	`, invitationID, models.InvitationStatusPending)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrInvitationNotFound
	}
	return nil
}

func (s *InvitationService) ListPending(ctx context.Context, workspaceID uuid.UUID) ([]models.Invitation, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, email, workspace_id, invited_by, status, expires_at, created_at, updated_at
		FROM invitations
		WHERE workspace_id = $1 AND status = $2
		ORDER BY created_at DESC
	`, workspaceID, models.InvitationStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invitations []models.Invitation
	for rows.Next() {
		var invitation models.Invitation
		if err := rows.Scan(
			&invitation.ID, &invitation.Email, &invitation.WorkspaceID, &invitation.InvitedBy,
			&invitation.Status, &invitation.ExpiresAt, &invitation.CreatedAt, &invitation.UpdatedAt,
		); err != nil {
			return nil, err
		}
		invitations = append(invitations, invitation)
	}
	return invitations, rows.Err()
}

// CreateClientInvite issues a project-scoped invitation addressed by an
// opaque bearer token, since the client has no account to authenticate with.
func (s *InvitationService) CreateClientInvite(ctx context.Context, email string, projectID, inviterID uuid.UUID) (*models.ClientInvitation, error) {
	email = normalizeEmail(email)

	var workspaceID uuid.UUID
	err := s.db.Pool.QueryRow(ctx, `
		SELECT workspace_id FROM projects WHERE id = $1
	`, projectID).Scan(&workspaceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invite token: %w", err)
	}

	var invitation models.ClientInvitation
	err = s.db.Pool.QueryRow(ctx, `
		INSERT INTO client_invitations (token, email, project_id, workspace_id, invited_by, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, token, email, project_id, workspace_id, invited_by, status, expires_at, created_at
	`, token, email, projectID, workspaceID, inviterID,
		models.InvitationStatusPending, time.Now().Add(s.expiry)).Scan(
		&invitation.ID, &invitation.Token, &invitation.Email, &invitation.ProjectID,
		&invitation.WorkspaceID, &invitation.InvitedBy, &invitation.Status,
		&invitation.ExpiresAt, &invitation.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create client invitation: %w", err)
	}
	return &invitation, nil
}

func (s *InvitationService) GetClientInviteByToken(ctx context.Context, token string) (*models.ClientInvitation, error) {
	var invitation models.ClientInvitation
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, token, email, project_id, workspace_id, invited_by, status, expires_at, created_at
		FROM client_invitations WHERE token = $1
	`, token).Scan(
		&invitation.ID, &invitation.Token, &invitation.Email, &invitation.ProjectID,
		&invitation.WorkspaceID, &invitation.InvitedBy, &invitation.Status,
		&invitation.ExpiresAt, &invitation.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvitationNotFound
		}
		return nil, err
	}

	if invitation.Status != models.InvitationStatusPending {
		return nil, ErrInvitationAlreadyUsed
	}
	if invitation.Expired(time.Now()) {
		return nil, ErrInvitationExpired
	}
	return &invitation, nil
}

// AcceptClientInvite self-registers an external client: the user row, the
// CLIENT membership, the project membership and the status flip all commit in
// one transaction.
func (s *InvitationService) AcceptClientInvite(ctx context.Context, token, name, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var invitation models.ClientInvitation
	err = tx.QueryRow(ctx, `
		SELECT id, email, project_id, workspace_id, status, expires_at
		FROM client_invitations WHERE token = $1
		FOR UPDATE
	`, token).Scan(
		&invitation.ID, &invitation.Email, &invitation.ProjectID,
		&invitation.WorkspaceID, &invitation.Status, &invitation.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvitationNotFound
		}
		return nil, err
	}

	if invitation.Status != models.InvitationStatusPending {
		return nil, ErrInvitationAlreadyUsed
	}
	if invitation.Expired(time.Now()) {
		return nil, ErrInvitationExpired
	}

	var user models.User
	err = tx.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, name)
		VALUES ($1, $2, $3)
		RETURNING id, email, password_hash, name, designation, department, skills, created_at, updated_at
	`, invitation.Email, string(hash), name).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Name,
		&user.Designation, &user.Department, &user.Skills, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO members (user_id, workspace_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, workspace_id) DO NOTHING
	`, user.ID, invitation.WorkspaceID, models.RoleClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create membership: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO project_members (project_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (project_id, user_id) DO NOTHING
	`, invitation.ProjectID, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to add project member: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE client_invitations SET status = $1 WHERE id = $2
	`, models.InvitationStatusAccepted, invitation.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update invitation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &user, nil
}
