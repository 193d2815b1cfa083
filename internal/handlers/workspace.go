package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/taskhive/taskhive-api/internal/middleware"
	"github.com/taskhive/taskhive-api/internal/models"
	"github.com/taskhive/taskhive-api/internal/permissions"
	"github.com/taskhive/taskhive-api/pkg/dto"
)

type WorkspaceHandler struct {
	workspaces WorkspaceServiceInterface
	members    MemberServiceInterface
	log        *zap.Logger
}

func NewWorkspaceHandler(workspaces WorkspaceServiceInterface, members MemberServiceInterface, log *zap.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{workspaces: workspaces, members: members, log: log}
}

// Create makes the caller the workspace's first admin.
func (h *WorkspaceHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	var req dto.CreateWorkspaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "name is required")
		return
	}

	workspace, err := h.workspaces.Create(r.Context(), req.Name, user.ID)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusCreated, workspace)
}

type workspaceWithRole struct {
	models.Workspace
	Role models.Role `json:"role"`
}

func (h *WorkspaceHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	workspaces, roles, err := h.workspaces.ListForUser(r.Context(), user.ID)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	out := make([]workspaceWithRole, len(workspaces))
	for i := range workspaces {
		out[i] = workspaceWithRole{Workspace: workspaces[i], Role: roles[i]}
	}

	respondData(w, http.StatusOK, out)
}

func (h *WorkspaceHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	workspaceID, ok := urlUUID(r, "workspaceID")
	if !ok {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid workspace id")
		return
	}

	_, found, err := roleInWorkspace(r.Context(), h.members, user.ID, workspaceID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
		return
	}
	if !found {
		respondForbidden(w, "not a member of this workspace")
		return
	}

	workspace, err := h.workspaces.GetByID(r.Context(), workspaceID)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusOK, workspace)
}

func (h *WorkspaceHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	workspaceID, ok := urlUUID(r, "workspaceID")
	if !ok {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid workspace id")
		return
	}

	var req dto.UpdateWorkspaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "name is required")
		return
	}

	if !authorize(w, r, h.members, user.ID, workspaceID, permissions.ManageUsers, permissions.Context{UserID: user.ID}) {
		return
	}

	workspace, err := h.workspaces.Update(r.Context(), workspaceID, req.Name)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusOK, workspace)
}

// Delete is admin-only: destroying a workspace is broader than MANAGE_USERS.
func (h *WorkspaceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	workspaceID, ok := urlUUID(r, "workspaceID")
	if !ok {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid workspace id")
		return
	}

	if !requireAdmin(w, r, h.members, user.ID, workspaceID) {
		return
	}

	if err := h.workspaces.Delete(r.Context(), workspaceID); err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusOK, dto.SuccessResponse{Success: true})
}

func (h *WorkspaceHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	workspaceID, ok := urlUUID(r, "workspaceID")
	if !ok {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid workspace id")
		return
	}

	// Any member may see the roster; role changes stay behind MANAGE_USERS.
	_, found, err := roleInWorkspace(r.Context(), h.members, user.ID, workspaceID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
		return
	}
	if !found {
		respondForbidden(w, "not a member of this workspace")
		return
	}

	list, err := h.members.List(r.Context(), workspaceID)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusOK, list)
}

func (h *WorkspaceHandler) UpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	workspaceID, ok := urlUUID(r, "workspaceID")
	if !ok {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid workspace id")
		return
	}
	memberID, ok := urlUUID(r, "memberID")
	if !ok {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid member id")
		return
	}

	var req dto.UpdateMemberRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	role, valid := models.ParseRole(req.Role)
	if !valid {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "unknown role: "+req.Role)
		return
	}

	if !requireAdmin(w, r, h.members, user.ID, workspaceID) {
		return
	}

	// Scoped to the workspace the caller was authorized against, so a
	// member id from another workspace cannot be mutated through this route.
	member, err := h.members.UpdateRole(r.Context(), memberID, workspaceID, role)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusOK, member)
}

func (h *WorkspaceHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	workspaceID, ok := urlUUID(r, "workspaceID")
	if !ok {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid workspace id")
		return
	}
	memberID, ok := urlUUID(r, "memberID")
	if !ok {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid member id")
		return
	}

	if !requireAdmin(w, r, h.members, user.ID, workspaceID) {
		return
	}

	if err := h.members.Remove(r.Context(), memberID, workspaceID); err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusOK, dto.SuccessResponse{Success: true})
}
