package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of workspace roles. It is the single type shared by
// the membership registry and the permission engine; handlers never compare
// raw strings.
type Role string

const (
	RoleAdmin          Role = "admin"
	RoleProjectManager Role = "project_manager"
	RoleTeamLead       Role = "team_lead"
	RoleEmployee       Role = "employee"
	RoleManagement     Role = "management"
	RoleClient         Role = "client"
	RoleMember         Role = "member"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleProjectManager, RoleTeamLead, RoleEmployee,
		RoleManagement, RoleClient, RoleMember:
		return true
	}
	return false
}

// ParseRole maps a wire value to a Role, rejecting anything outside the enum.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}

type Member struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	WorkspaceID uuid.UUID `json:"workspace_id"`
	Role        Role      `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	User        *User     `json:"user,omitempty"`
}
