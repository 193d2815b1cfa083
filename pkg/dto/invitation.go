package dto

import "github.com/google/uuid"

type CreateInvitationRequest struct {
	Email       string    `json:"email"`
	WorkspaceID uuid.UUID `json:"workspace_id"`
}

type AcceptInvitationResponse struct {
	Success     bool      `json:"success"`
	WorkspaceID uuid.UUID `json:"workspace_id"`
}

type CreateClientInvitationRequest struct {
	Email string `json:"email"`
}

type AcceptClientInvitationRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}
