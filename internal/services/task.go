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

type TaskService struct {
	db *database.DB
}

func NewTaskService(db *database.DB) *TaskService {
	return &TaskService{db: db}
}

func (s *TaskService) Create(ctx context.Context, projectID, workspaceID uuid.UUID, title string, description *string, ownerID uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO tasks (project_id, workspace_id, title, description, owner_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, project_id, workspace_id, title, description, status, owner_id, assignee_id, created_at, updated_at
	`, projectID, workspaceID, title, description, ownerID).Scan(
		&task.ID, &task.ProjectID, &task.WorkspaceID, &task.Title, &task.Description,
		&task.Status, &task.OwnerID, &task.AssigneeID, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return &task, nil
}

func (s *TaskService) GetByID(ctx context.Context, taskID uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, project_id, workspace_id, title, description, status, owner_id, assignee_id, created_at, updated_at
		FROM tasks WHERE id = $1
	`, taskID).Scan(
		&task.ID, &task.ProjectID, &task.WorkspaceID, &task.Title, &task.Description,
		&task.Status, &task.OwnerID, &task.AssigneeID, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (s *TaskService) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Task, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, project_id, workspace_id, title, description, status, owner_id, assignee_id, created_at, updated_at
		FROM tasks WHERE project_id = $1
		ORDER BY created_at DESC
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var task models.Task
		if err := rows.Scan(
			&task.ID, &task.ProjectID, &task.WorkspaceID, &task.Title, &task.Description,
			&task.Status, &task.OwnerID, &task.AssigneeID, &task.CreatedAt, &task.UpdatedAt,
		); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (s *TaskService) Update(ctx context.Context, taskID uuid.UUID, title string, description *string) (*models.Task, error) {
	var task models.Task
	err := s.db.Pool.QueryRow(ctx, `
		UPDATE tasks SET title = $1, description = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING id, project_id, workspace_id, title, description, status, owner_id, assignee_id, created_at, updated_at
	`, title, description, taskID).Scan(
		&task.ID, &task.ProjectID, &task.WorkspaceID, &task.Title, &task.Description,
		&task.Status, &task.OwnerID, &task.AssigneeID, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (s *TaskService) Assign(ctx context.Context, taskID, assigneeID uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := s.db.Pool.QueryRow(ctx, `
		UPDATE tasks SET assignee_id = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id, project_id, workspace_id, title, description, status, owner_id, assignee_id, created_at, updated_at
	`, assigneeID, taskID).Scan(
		&task.ID, &task.ProjectID, &task.WorkspaceID, &task.Title, &task.Description,
		&task.Status, &task.OwnerID, &task.AssigneeID, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (s *TaskService) ChangeStatus(ctx context.Context, taskID uuid.UUID, status models.TaskStatus) (*models.Task, error) {
	var task models.Task
	err := s.db.Pool.QueryRow(ctx, `
		UPDATE tasks SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id, project_id, workspace_id, title, description, status, owner_id, assignee_id, created_at, updated_at
	`, status, taskID).Scan(
		&task.ID, &task.ProjectID, &task.WorkspaceID, &task.Title, &task.Description,
		&task.Status, &task.OwnerID, &task.AssigneeID, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (s *TaskService) Delete(ctx context.Context, taskID uuid.UUID) error {
	result, err := s.db.Pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, taskID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}
