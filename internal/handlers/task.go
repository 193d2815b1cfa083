package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taskhive/taskhive-api/internal/middleware"
	"github.com/taskhive/taskhive-api/internal/models"
	"github.com/taskhive/taskhive-api/internal/permissions"
	"github.com/taskhive/taskhive-api/pkg/dto"
)

type TaskHandler struct {
	tasks    TaskServiceInterface
	projects ProjectServiceInterface
	members  MemberServiceInterface
	log      *zap.Logger
}

func NewTaskHandler(tasks TaskServiceInterface, projects ProjectServiceInterface, members MemberServiceInterface, log *zap.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, projects: projects, members: members, log: log}
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	projectID, ok := urlUUID(r, "projectID")
	if !ok {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid project id")
		return
	}

	var req dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if req.Title == "" {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "title is required")
		return
	}

	project, err := h.projects.GetByID(r.Context(), projectID)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	pctx, err := h.taskContext(r, user.ID, project.WorkspaceID, projectID, uuid.Nil)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	if !authorize(w, r, h.members, user.ID, project.WorkspaceID, permissions.CreateTask, pctx) {
		return
	}

	task, err := h.tasks.Create(r.Context(), projectID, project.WorkspaceID, req.Title, req.Description, user.ID)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusCreated, task)
}

func (h *TaskHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	projectID, ok := urlUUID(r, "projectID")
	if !ok {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid project id")
		return
	}

	project, err := h.projects.GetByID(r.Context(), projectID)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	pctx, err := h.taskContext(r, user.ID, project.WorkspaceID, projectID, uuid.Nil)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	if !authorize(w, r, h.members, user.ID, project.WorkspaceID, permissions.ViewAllTasks, pctx) {
		return
	}

	tasks, err := h.tasks.ListByProject(r.Context(), projectID)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusOK, tasks)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	task, ok := h.loadTask(w, r)
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if req.Title == "" {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "title is required")
		return
	}

	pctx, err := h.taskContext(r, user.ID, task.WorkspaceID, task.ProjectID, task.OwnerID)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	if !authorize(w, r, h.members, user.ID, task.WorkspaceID, permissions.EditTask, pctx) {
		return
	}

	updated, err := h.tasks.Update(r.Context(), task.ID, req.Title, req.Description)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusOK, updated)
}

func (h *TaskHandler) Assign(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	task, ok := h.loadTask(w, r)
	if !ok {
		return
	}

	var req dto.AssignTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if req.AssigneeID == uuid.Nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "assignee_id is required")
		return
	}

	pctx, err := h.taskContext(r, user.ID, task.WorkspaceID, task.ProjectID, task.OwnerID)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	if !authorize(w, r, h.members, user.ID, task.WorkspaceID, permissions.AssignTask, pctx) {
		return
	}

	updated, err := h.tasks.Assign(r.Context(), task.ID, req.AssigneeID)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusOK, updated)
}

func (h *TaskHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	task, ok := h.loadTask(w, r)
	if !ok {
		return
	}

	var req dto.ChangeTaskStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	status := models.TaskStatus(req.Status)
	if !status.Valid() {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "unknown status: "+req.Status)
		return
	}

	pctx, err := h.taskContext(r, user.ID, task.WorkspaceID, task.ProjectID, task.OwnerID)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	if !authorize(w, r, h.members, user.ID, task.WorkspaceID, permissions.ChangeStatus, pctx) {
		return
	}

	updated, err := h.tasks.ChangeStatus(r.Context(), task.ID, status)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusOK, updated)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	task, ok := h.loadTask(w, r)
	if !ok {
		return
	}

	pctx, err := h.taskContext(r, user.ID, task.WorkspaceID, task.ProjectID, task.OwnerID)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	if !authorize(w, r, h.members, user.ID, task.WorkspaceID, permissions.DeleteTask, pctx) {
		return
	}

	if err := h.tasks.Delete(r.Context(), task.ID); err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusOK, dto.SuccessResponse{Success: true})
}

func (h *TaskHandler) loadTask(w http.ResponseWriter, r *http.Request) (*models.Task, bool) {
	taskID, ok := urlUUID(r, "taskID")
	if !ok {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid task id")
		return nil, false
	}

	task, err := h.tasks.GetByID(r.Context(), taskID)
	if err != nil {
		respondServiceError(w, h.log, err)
		return nil, false
	}
	return task, true
}

// taskContext gathers the ownership and scoping facts the permission
// refinements need: the caller's project memberships and, for team leads,
// the roster of the task's project.
func (h *TaskHandler) taskContext(r *http.Request, userID, workspaceID, projectID, taskOwnerID uuid.UUID) (permissions.Context, error) {
	own, err := h.projects.UserProjectIDs(r.Context(), userID, workspaceID)
	if err != nil {
		return permissions.Context{}, err
	}

	teamIDs, err := h.projects.MemberIDs(r.Context(), projectID)
	if err != nil {
		return permissions.Context{}, err
	}

	return permissions.Context{
		UserID:        userID,
		TaskOwnerID:   taskOwnerID,
		ProjectID:     projectID,
		UserProjects:  own,
		TeamMemberIDs: teamIDs,
	}, nil
}
