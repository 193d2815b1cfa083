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

type ProjectHandler struct {
	projects ProjectServiceInterface
	members  MemberServiceInterface
	log      *zap.Logger
}

func NewProjectHandler(projects ProjectServiceInterface, members MemberServiceInterface, log *zap.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, members: members, log: log}
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	workspaceID, ok := urlUUID(r, "workspaceID")
	if !ok {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid workspace id")
		return
	}

	var req dto.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "name is required")
		return
	}

	if !authorize(w, r, h.members, user.ID, workspaceID, permissions.CreateProject, permissions.Context{UserID: user.ID}) {
		return
	}

	project, err := h.projects.Create(r.Context(), workspaceID, req.Name, req.Description, user.ID)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusCreated, project)
}

func (h *ProjectHandler) ListByWorkspace(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	workspaceID, ok := urlUUID(r, "workspaceID")
	if !ok {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid workspace id")
		return
	}

	role, found, err := roleInWorkspace(r.Context(), h.members, user.ID, workspaceID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
		return
	}
	if !found {
		respondForbidden(w, "not a member of this workspace")
		return
	}

	projects, err := h.projects.ListByWorkspace(r.Context(), workspaceID)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	// Clients only ever see the project they were invited to.
	if role == models.RoleClient {
		own, err := h.projects.UserProjectIDs(r.Context(), user.ID, workspaceID)
		if err != nil {
			respondServiceError(w, h.log, err)
			return
		}
		filtered := projects[:0]
		for _, p := range projects {
			if containsUUID(own, p.ID) {
				filtered = append(filtered, p)
			}
		}
		projects = filtered
	}

	respondData(w, http.StatusOK, projects)
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	own, err := h.projects.UserProjectIDs(r.Context(), user.ID, project.WorkspaceID)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	pctx := permissions.Context{UserID: user.ID, ProjectID: projectID, UserProjects: own}
	if !authorize(w, r, h.members, user.ID, project.WorkspaceID, permissions.ViewProject, pctx) {
		return
	}

	respondData(w, http.StatusOK, project)
}

func (h *ProjectHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	projectID, ok := urlUUID(r, "projectID")
	if !ok {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid project id")
		return
	}

	var req dto.AddProjectMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if req.UserID == uuid.Nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "user_id is required")
		return
	}

	project, err := h.projects.GetByID(r.Context(), projectID)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	if !authorize(w, r, h.members, user.ID, project.WorkspaceID, permissions.ManageUsers, permissions.Context{UserID: user.ID}) {
		return
	}

	if err := h.projects.AddMember(r.Context(), projectID, req.UserID); err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusOK, dto.SuccessResponse{Success: true})
}

func containsUUID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
