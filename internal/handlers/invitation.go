package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taskhive/taskhive-api/internal/config"
	"github.com/taskhive/taskhive-api/internal/middleware"
	"github.com/taskhive/taskhive-api/internal/permissions"
	"github.com/taskhive/taskhive-api/pkg/dto"
)

type InvitationHandler struct {
	cfg        *config.Config
	invites    InvitationServiceInterface
	members    MemberServiceInterface
	workspaces WorkspaceServiceInterface
	projects   ProjectServiceInterface
	email      EmailServiceInterface
	log        *zap.Logger
}

func NewInvitationHandler(cfg *config.Config, invites InvitationServiceInterface, members MemberServiceInterface, workspaces WorkspaceServiceInterface, projects ProjectServiceInterface, email EmailServiceInterface, log *zap.Logger) *InvitationHandler {
	return &InvitationHandler{
		cfg:        cfg,
		invites:    invites,
		members:    members,
		workspaces: workspaces,
		projects:   projects,
		email:      email,
		log:        log,
	}
}

func (h *InvitationHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	var req dto.CreateInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if req.Email == "" {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "email is required")
		return
	}

	// Issuing invitations is reserved for admins, not MANAGE_USERS at large.
	if !requireAdmin(w, r, h.members, user.ID, req.WorkspaceID) {
		return
	}

	invitation, err := h.invites.Create(r.Context(), req.Email, req.WorkspaceID, user.ID)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	// Email delivery must not block or fail the API response.
	go h.sendWorkspaceInviteEmail(invitation.ID.String(), invitation.Email, req.WorkspaceID, user.Name)

	respondData(w, http.StatusCreated, invitation)
}

// emailTimeout bounds the background workspace lookup done before dispatch.
const emailTimeout = 10 * time.Second

func (h *InvitationHandler) sendWorkspaceInviteEmail(invitationID, email string, workspaceID uuid.UUID, inviterName string) {
	ctx, cancel := context.WithTimeout(context.Background(), emailTimeout)
	defer cancel()

	workspaceName := "a workspace"
	if ws, err := h.workspaces.GetByID(ctx, workspaceID); err == nil {
		workspaceName = ws.Name
	}

	acceptURL := h.cfg.BaseURL + "/invitations/" + invitationID
	if err := h.email.SendWorkspaceInvite(email, workspaceName, inviterName, acceptURL); err != nil {
		h.log.Warn("failed to send invitation email",
			zap.String("invitation_id", invitationID),
			zap.Error(err))
	}
}

// Get is public: the recipient follows the emailed link before logging in,
// so the response carries the workspace name for the landing page.
func (h *InvitationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid invitation id")
		return
	}

	invitation, err := h.invites.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusOK, invitation)
}

func (h *InvitationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	id, ok := urlUUID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid invitation id")
		return
	}

	member, err := h.invites.Accept(r.Context(), id, user)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusOK, dto.AcceptInvitationResponse{
		Success:     true,
		WorkspaceID: member.WorkspaceID,
	})
}

func (h *InvitationHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	id, ok := urlUUID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid invitation id")
		return
	}

	// Lookup, not GetByID: an expired invitation still holds the pending
	// slot for its (email, workspace) pair, and revoking is how an admin
	// frees it.
	invitation, err := h.invites.Lookup(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	if !requireAdmin(w, r, h.members, user.ID, invitation.WorkspaceID) {
		return
	}

	if err := h.invites.Revoke(r.Context(), id); err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusOK, map[string]string{"id": id.String()})
}

func (h *InvitationHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	workspaceID, ok := urlUUID(r, "workspaceID")
	if !ok {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid workspace id")
		return
	}

	if !authorize(w, r, h.members, user.ID, workspaceID, permissions.ManageUsers, permissions.Context{UserID: user.ID}) {
		return
	}

	invitations, err := h.invites.ListPending(r.Context(), workspaceID)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusOK, invitations)
}

func (h *InvitationHandler) CreateClientInvite(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	projectID, ok := urlUUID(r, "projectID")
	if !ok {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid project id")
		return
	}

	var req dto.CreateClientInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if req.Email == "" {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "email is required")
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

	invite, err := h.invites.CreateClientInvite(r.Context(), req.Email, projectID, user.ID)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	go func(token, email, projectName, inviterName string) {
		acceptURL := h.cfg.BaseURL + "/client-invitations/" + token
		if err := h.email.SendClientInvite(email, projectName, inviterName, acceptURL); err != nil {
			h.log.Warn("failed to send client invitation email", zap.Error(err))
		}
	}(invite.Token, invite.Email, project.Name, user.Name)

	respondData(w, http.StatusCreated, invite)
}

func (h *InvitationHandler) GetClientInvite(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid token")
		return
	}

	invite, err := h.invites.GetClientInviteByToken(r.Context(), token)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusOK, invite)
}

func (h *InvitationHandler) AcceptClientInvite(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid token")
		return
	}

	var req dto.AcceptClientInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if req.Name == "" || len(req.Password) < 8 {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "name and a password of at least 8 characters are required")
		return
	}

	created, err := h.invites.AcceptClientInvite(r.Context(), token, req.Name, req.Password)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusOK, created)
}
