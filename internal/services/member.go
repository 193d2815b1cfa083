package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/taskhive/taskhive-api/internal/database"
	"github.com/taskhive/taskhive-api/internal/models"
)

// MemberService is the membership registry: the single source of truth for
// which role a user holds in a workspace.
type MemberService struct {
	db *database.DB
}

func NewMemberService(db *database.DB) *MemberService {
	return &MemberService{db: db}
}

// Get is the authorization primitive. It returns (nil, nil) when the user has
// no membership in the workspace.
func (s *MemberService) Get(ctx context.Context, userID, workspaceID uuid.UUID) (*models.Member, error) {
	var member models.Member
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, user_id, workspace_id, role, created_at
		FROM members WHERE user_id = $1 AND workspace_id = $2
	`, userID, workspaceID).Scan(
		&member.ID, &member.UserID, &member.WorkspaceID, &member.Role, &member.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

// Upsert inserts or updates the membership in one statement. The unique
// constraint on (user_id, workspace_id) keeps concurrent invite acceptances
// from ever producing a second row for the same pair.
func (s *MemberService) Upsert(ctx context.Context, userID, workspaceID uuid.UUID, role models.Role) (*models.Member, error) {
	var member models.Member
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO members (user_id, workspace_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, workspace_id) DO UPDATE SET role = EXCLUDED.role
		RETURNING id, user_id, workspace_id, role, created_at
	`, userID, workspaceID, role).Scan(
		&member.ID, &member.UserID, &member.WorkspaceID, &member.Role, &member.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert membership: %w", err)
	}
	return &member, nil
}

func (s *MemberService) List(ctx context.Context, workspaceID uuid.UUID) ([]models.Member, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT m.id, m.user_id, m.workspace_id, m.role, m.created_at,
		       u.id, u.email, u.name, u.designation, u.department, u.created_at, u.updated_at
		FROM members m
		JOIN users u ON m.user_id = u.id
		WHERE m.workspace_id = $1
		ORDER BY m.created_at
	`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var member models.Member
		var user models.User
		if err := rows.Scan(
			&member.ID, &member.UserID, &member.WorkspaceID, &member.Role, &member.CreatedAt,
			&user.ID, &user.Email, &user.Name, &user.Designation, &user.Department,
			&user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		member.User = &user
		members = append(members, member)
	}
	return members, rows.Err()
}

// UpdateRole mutates a membership only within the given workspace. A member
// id from a different workspace matches no row and reports ErrMemberNotFound.
func (s *MemberService) UpdateRole(ctx context.Context, memberID, workspaceID uuid.UUID, role models.Role) (*models.Member, error) {
	var member models.Member
	err := s.db.Pool.QueryRow(ctx, `
		UPDATE members SET role = $1 WHERE id = $2 AND workspace_id = $3
		RETURNING id, user_id, workspace_id, role, created_at
	`, role, memberID, workspaceID).Scan(
		&member.ID, &member.UserID, &member.WorkspaceID, &member.Role, &member.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

// Remove deletes the membership row only; the underlying user is untouched.
// Like UpdateRole it is workspace-scoped.
func (s *MemberService) Remove(ctx context.Context, memberID, workspaceID uuid.UUID) error {
	result, err := s.db.Pool.Exec(ctx, `DELETE FROM members WHERE id = $1 AND workspace_id = $2`, memberID, workspaceID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrMemberNotFound
	}
	return nil
}
