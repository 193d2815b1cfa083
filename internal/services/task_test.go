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

	"github.com/taskhive/taskhive-api/internal/database"
	"github.com/taskhive/taskhive-api/internal/models"
)

func setupTaskService(t *testing.T) (*TaskService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	return NewTaskService(db), mock
}

func taskRows(id, projectID, workspaceID, ownerID uuid.UUID, title string, status models.TaskStatus, assigneeID *uuid.UUID) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows([]string{
		"id", "project_id", "workspace_id", "title", "description", "status", "owner_id", "assignee_id", "created_at", "updated_at",
	}).AddRow(id, projectID, workspaceID, title, nil, status, ownerID, assigneeID, now, now)
}

func TestTaskService_Create(t *testing.T) {
	svc, mock := setupTaskService(t)
	ctx := context.Background()
	taskID := uuid.New()
	projectID := uuid.New()
	workspaceID := uuid.New()
	ownerID := uuid.New()

	mock.ExpectQuery(`INSERT INTO tasks`).
		WithArgs(projectID, workspaceID, "Write docs", (*string)(nil), ownerID).
		WillReturnRows(taskRows(taskID, projectID, workspaceID, ownerID, "Write docs", models.TaskStatusTodo, nil))

	task, err := svc.Create(ctx, projectID, workspaceID, "Write docs", nil, ownerID)

	require.NoError(t, err)
	assert.Equal(t, taskID, task.ID)
	assert.Equal(t, models.TaskStatusTodo, task.Status)
	assert.Nil(t, task.AssigneeID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskService_GetByID_NotFound(t *testing.T) {
	svc, mock := setupTaskService(t)
	ctx := context.Background()
	taskID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM tasks WHERE id`).
		WithArgs(taskID).
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.GetByID(ctx, taskID)

	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskService_Assign(t *testing.T) {
	svc, mock := setupTaskService(t)
	ctx := context.Background()
	taskID := uuid.New()
	assigneeID := uuid.New()
	ownerID := uuid.New()

	mock.ExpectQuery(`UPDATE tasks SET assignee_id`).
		WithArgs(assigneeID, taskID).
		WillReturnRows(taskRows(taskID, uuid.New(), uuid.New(), ownerID, "T", models.TaskStatusTodo, &assigneeID))

	task, err := svc.Assign(ctx, taskID, assigneeID)

	require.NoError(t, err)
	require.NotNil(t, task.AssigneeID)
	assert.Equal(t, assigneeID, *task.AssigneeID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskService_ChangeStatus(t *testing.T) {
	svc, mock := setupTaskService(t)
	ctx := context.Background()
	taskID := uuid.New()

	mock.ExpectQuery(`UPDATE tasks SET status`).
		WithArgs(models.TaskStatusDone, taskID).
		WillReturnRows(taskRows(taskID, uuid.New(), uuid.New(), uuid.New(), "T", models.TaskStatusDone, nil))

	task, err := svc.ChangeStatus(ctx, taskID, models.TaskStatusDone)

	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusDone, task.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskService_Delete_NotFound(t *testing.T) {
	svc, mock := setupTaskService(t)
	ctx := context.Background()
	taskID := uuid.New()

	mock.ExpectExec(`DELETE FROM tasks WHERE id`).
		WithArgs(taskID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := svc.Delete(ctx, taskID)

	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
