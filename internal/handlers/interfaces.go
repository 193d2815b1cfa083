package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive-api/internal/models"
)

// UserServiceInterface defines the methods used by handlers from UserService
type UserServiceInterface interface {
	Create(ctx context.Context, name, email, password string) (*models.User, error)
	VerifyPassword(ctx context.Context, email, password string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name string, designation, department *string, skills []string) (*models.User, error)
}

// SessionServiceInterface defines the methods used by handlers from SessionService
type SessionServiceInterface interface {
	Login(ctx context.Context, email, password string) (*models.Session, *models.User, error)
	Logout(ctx context.Context, token string) error
}

// MemberServiceInterface defines the methods used by handlers from MemberService
type MemberServiceInterface interface {
	Get(ctx context.Context, userID, workspaceID uuid.UUID) (*models.Member, error)
	Upsert(ctx context.Context, userID, workspaceID uuid.UUID, role models.Role) (*models.Member, error)
	List(ctx context.Context, workspaceID uuid.UUID) ([]models.Member, error)
	UpdateRole(ctx context.Context, memberID, workspaceID uuid.UUID, role models.Role) (*models.Member, error)
	Remove(ctx context.Context, memberID, workspaceID uuid.UUID) error
}

// WorkspaceServiceInterface defines the methods used by handlers from WorkspaceService
type WorkspaceServiceInterface interface {
	Create(ctx context.Context, name string, ownerID uuid.UUID) (*models.Workspace, error)
	GetByID(ctx context.Context, workspaceID uuid.UUID) (*models.Workspace, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Workspace, []models.Role, error)
	Update(ctx context.Context, workspaceID uuid.UUID, name string) (*models.Workspace, error)
	Delete(ctx context.Context, workspaceID uuid.UUID) error
}

// InvitationServiceInterface defines the methods used by handlers from InvitationService
type InvitationServiceInterface interface {
	Create(ctx context.Context, email string, workspaceID, inviterID uuid.UUID) (*models.Invitation, error)
	GetByID(ctx context.Context, invitationID uuid.UUID) (*models.Invitation, error)
	Lookup(ctx context.Context, invitationID uuid.UUID) (*models.Invitation, error)
	Accept(ctx context.Context, invitationID uuid.UUID, user *models.User) (*models.Member, error)
	Revoke(ctx context.Context, invitationID uuid.UUID) error
	ListPending(ctx context.Context, workspaceID uuid.UUID) ([]models.Invitation, error)
	CreateClientInvite(ctx context.Context, email string, projectID, inviterID uuid.UUID) (*models.ClientInvitation, error)
	GetClientInviteByToken(ctx context.Context, token string) (*models.ClientInvitation, error)
	AcceptClientInvite(ctx context.Context, token, name, password string) (*models.User, error)
}

// ProjectServiceInterface defines the methods used by handlers from ProjectService
type ProjectServiceInterface interface {
	Create(ctx context.Context, workspaceID uuid.UUID, name string, description *string, createdBy uuid.UUID) (*models.Project, error)
	GetByID(ctx context.Context, projectID uuid.UUID) (*models.Project, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]models.Project, error)
	AddMember(ctx context.Context, projectID, userID uuid.UUID) error
	UserProjectIDs(ctx context.Context, userID, workspaceID uuid.UUID) ([]uuid.UUID, error)
	MemberIDs(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error)
}

// TaskServiceInterface defines the methods used by handlers from TaskService
type TaskServiceInterface interface {
	Create(ctx context.Context, projectID, workspaceID uuid.UUID, title string, description *string, ownerID uuid.UUID) (*models.Task, error)
	GetByID(ctx context.Context, taskID uuid.UUID) (*models.Task, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Task, error)
	Update(ctx context.Context, taskID uuid.UUID, title string, description *string) (*models.Task, error)
	Assign(ctx context.Context, taskID, assigneeID uuid.UUID) (*models.Task, error)
	ChangeStatus(ctx context.Context, taskID uuid.UUID, status models.TaskStatus) (*models.Task, error)
	Delete(ctx context.Context, taskID uuid.UUID) error
}

// EmailServiceInterface defines the methods used by handlers from EmailService
type EmailServiceInterface interface {
	SendWorkspaceInvite(to, workspaceName, inviterName, acceptURL string) error
	SendClientInvite(to, projectName, inviterName, acceptURL string) error
}
