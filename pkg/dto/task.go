package dto

import "github.com/google/uuid"

type CreateTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
}

type UpdateTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
}

type AssignTaskRequest struct {
	AssigneeID uuid.UUID `json:"assignee_id"`
}

type ChangeTaskStatusRequest struct {
	Status string `json:"status"`
}
