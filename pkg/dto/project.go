package dto

import "github.com/google/uuid"

type CreateProjectRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

type AddProjectMemberRequest struct {
	UserID uuid.UUID `json:"user_id"`
}
