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

type ProjectService struct {
	db *database.DB
}

func NewProjectService(db *database.DB) *ProjectService {
	return &ProjectService{db: db}
}

// Create inserts the project and enrolls the creator as a project member so
// their own-project scope includes it immediately.
func (s *ProjectService) Create(ctx context.Context, workspaceID uuid.UUID, name string, description *string, createdBy uuid.UUID) (*models.Project, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var project models.Project
	err = tx.QueryRow(ctx, `
		INSERT INTO projects (workspace_id, name, description, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, workspace_id, name, description, created_by, created_at, updated_at
	`, workspaceID, name, description, createdBy).Scan(
		&project.ID, &project.WorkspaceID, &project.Name, &project.Description,
		&project.CreatedBy, &project.CreatedAt, &project.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO project_members (project_id, user_id)
		VALUES ($1, $2)
	`, project.ID, createdBy)
	if err != nil {
		return nil, fmt.Errorf("failed to add creator as project member: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &project, nil
}

func (s *ProjectService) GetByID(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, workspace_id, name, description, created_by, created_at, updated_at
		FROM projects WHERE id = $1
	`, projectID).Scan(
		&project.ID, &project.WorkspaceID, &project.Name, &project.Description,
		&project.CreatedBy, &project.CreatedAt, &project.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

func (s *ProjectService) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]models.Project, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, workspace_id, name, description, created_by, created_at, updated_at
		FROM projects WHERE workspace_id = $1
		ORDER BY created_at DESC
	`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var project models.Project
		if err := rows.Scan(
			&project.ID, &project.WorkspaceID, &project.Name, &project.Description,
			&project.CreatedBy, &project.CreatedAt, &project.UpdatedAt,
		); err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

func (s *ProjectService) AddMember(ctx context.Context, projectID, userID uuid.UUID) error {
	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO project_members (project_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (project_id, user_id) DO NOTHING
	`, projectID, userID)
	return err
}

// UserProjectIDs returns the projects the user belongs to within a workspace;
// it feeds the permission context's own-project scope.
func (s *ProjectService) UserProjectIDs(ctx context.Context, userID, workspaceID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT pm.project_id
		FROM project_members pm
		JOIN projects p ON pm.project_id = p.id
		WHERE pm.user_id = $1 AND p.workspace_id = $2
	`, userID, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// MemberIDs returns the user ids enrolled in a project; it feeds the
// permission context's team scope for team leads.
func (s *ProjectService) MemberIDs(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT user_id FROM project_members WHERE project_id = $1
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
