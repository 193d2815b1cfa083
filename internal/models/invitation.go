package models

import (
	"time"

	"github.com/google/uuid"
)

type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusExpired  InvitationStatus = "expired"
	// InvitationStatusDeclined is defined for completeness; no current flow
	// transitions into it.
	InvitationStatusDeclined InvitationStatus = "declined"
)

// Invitation offers an email address membership in a workspace. Expiry is
// checked lazily against ExpiresAt; the stored status stays pending until a
// terminal transition is written.
type Invitation struct {
	ID          uuid.UUID        `json:"id"`
	Email       string           `json:"email"`
	WorkspaceID uuid.UUID        `json:"workspace_id"`
	InvitedBy   uuid.UUID        `json:"invited_by"`
	Status      InvitationStatus `json:"status"`
	ExpiresAt   time.Time        `json:"expires_at"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	Workspace   *Workspace       `json:"workspace,omitempty"`
}

func (i *Invitation) Expired(now time.Time) bool {
	return i.ExpiresAt.Before(now)
}

// ClientInvitation is the project-scoped variant. The accept flow is
// unauthenticated (the client has no account yet), so it is addressed by an
// opaque bearer token instead of the row ID.
type ClientInvitation struct {
	ID          uuid.UUID        `json:"id"`
	Token       string           `json:"-"`
	Email       string           `json:"email"`
	ProjectID   uuid.UUID        `json:"project_id"`
	WorkspaceID uuid.UUID        `json:"workspace_id"`
	InvitedBy   uuid.UUID        `json:"invited_by"`
	Status      InvitationStatus `json:"status"`
	ExpiresAt   time.Time        `json:"expires_at"`
	CreatedAt   time.Time        `json:"created_at"`
}

func (i *ClientInvitation) Expired(now time.Time) bool {
	return i.ExpiresAt.Before(now)
}
