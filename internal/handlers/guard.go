package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/taskhive/taskhive-api/internal/models"
	"github.com/taskhive/taskhive-api/internal/permissions"
)

// roleInWorkspace resolves the caller's role in a workspace. found is false
// when the user has no membership there.
func roleInWorkspace(ctx context.Context, members MemberServiceInterface, userID, workspaceID uuid.UUID) (models.Role, bool, error) {
	member, err := members.Get(ctx, userID, workspaceID)
	if err != nil {
		return "", false, err
	}
	if member == nil {
		return "", false, nil
	}
	return member.Role, true, nil
}

// authorize runs the permission check for an authenticated caller against a
// workspace and writes the failure response itself. It returns true only when
// the request may proceed.
func authorize(w http.ResponseWriter, r *http.Request, members MemberServiceInterface, userID, workspaceID uuid.UUID, action permissions.Action, pctx permissions.Context) bool {
	role, found, err := roleInWorkspace(r.Context(), members, userID, workspaceID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
		return false
	}
	if !found {
		respondForbidden(w, "not a member of this workspace")
		return false
	}
	if decision := permissions.Can(role, action, pctx); !decision.Allowed {
		respondForbidden(w, decision.Reason)
		return false
	}
	return true
}

// requireAdmin gates operations reserved for the ADMIN role itself:
// membership mutations, invitation issue/revoke and workspace deletion sit
// above MANAGE_USERS. It writes the failure response and returns true only
// when the caller holds an admin membership in the workspace.
func requireAdmin(w http.ResponseWriter, r *http.Request, members MemberServiceInterface, userID, workspaceID uuid.UUID) bool {
	role, found, err := roleInWorkspace(r.Context(), members, userID, workspaceID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
		return false
	}
	if !found {
		respondForbidden(w, "not a member of this workspace")
		return false
	}
	if role != models.RoleAdmin {
		respondForbidden(w, "requires a workspace admin")
		return false
	}
	return true
}

func urlUUID(r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	return id, err == nil
}
