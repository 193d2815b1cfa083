package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskhive/taskhive-api/internal/database"
	"github.com/taskhive/taskhive-api/internal/models"
)

// DefaultPassword is the plaintext behind every fixture user's hash.
const DefaultPassword = "password123"

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateUser creates a test user with default values
func (f *Fixtures) CreateUser(t *testing.T, opts ...UserOption) *models.User {
	t.Helper()
	f.counter++

	user := &models.User{
		Email: fmt.Sprintf("user%d@example.com", f.counter),
		Name:  fmt.Sprintf("Test User %d", f.counter),
	}

	for _, opt := range opts {
		opt(user)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash fixture password: %v", err)
	}

	ctx := context.Background()
	err = f.db.Pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, name)
		VALUES ($1, $2, $3)
		RETURNING id, email, password_hash, name, designation, department, skills, created_at, updated_at
	`, user.Email, string(hash), user.Name).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Name,
		&user.Designation, &user.Department, &user.Skills, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

// UserOption configures a test user
type UserOption func(*models.User)

// WithEmail sets the user's email
func WithEmail(email string) UserOption {
	return func(u *models.User) {
		u.Email = email
	}
}

// WithName sets the user's name
func WithName(name string) UserOption {
	return func(u *models.User) {
		u.Name = name
	}
}

// CreateWorkspace creates a workspace with the owner as its admin member
func (f *Fixtures) CreateWorkspace(t *testing.T, owner *models.User, opts ...WorkspaceOption) *models.Workspace {
	t.Helper()
	f.counter++

	ws := &models.Workspace{
		Name:    fmt.Sprintf("Test Workspace %d", f.counter),
		OwnerID: owner.ID,
	}

	for _, opt := range opts {
		opt(ws)
	}

	ctx := context.Background()
	tx, err := f.db.Pool.Begin(ctx)
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		INSERT INTO workspaces (name, owner_id)
		VALUES ($1, $2)
		RETURNING id, name, owner_id, created_at, updated_at
	`, ws.Name, ws.OwnerID).Scan(&ws.ID, &ws.Name, &ws.OwnerID, &ws.CreatedAt, &ws.UpdatedAt)
	if err != nil {
		t.Fatalf("failed to create workspace: %v", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO members (user_id, workspace_id, role)
		VALUES ($1, $2, $3)
	`, owner.ID, ws.ID, models.RoleAdmin)
	if err != nil {
		t.Fatalf("failed to add owner as admin: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("failed to commit transaction: %v", err)
	}

	return ws
}

// WorkspaceOption configures a test workspace
type WorkspaceOption func(*models.Workspace)

// WithWorkspaceName sets the workspace name
func WithWorkspaceName(name string) WorkspaceOption {
	return func(w *models.Workspace) {
		w.Name = name
	}
}

// AddMember adds a user to a workspace with the given role
func (f *Fixtures) AddMember(t *testing.T, workspace *models.Workspace, user *models.User, role models.Role) *models.Member {
	t.Helper()
	ctx := context.Background()

	member := &models.Member{}
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO members (user_id, workspace_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, workspace_id) DO UPDATE SET role = EXCLUDED.role
		RETURNING id, user_id, workspace_id, role, created_at
	`, user.ID, workspace.ID, role).Scan(
		&member.ID, &member.UserID, &member.WorkspaceID, &member.Role, &member.CreatedAt,
	)
	if err != nil {
		t.Fatalf("failed to add member: %v", err)
	}
	return member
}

// CreateSession creates a session row for a user and returns its token
func (f *Fixtures) CreateSession(t *testing.T, user *models.User, expiresAt time.Time) string {
	t.Helper()
	ctx := context.Background()

	token := uuid.NewString() + uuid.NewString()
	_, err := f.db.Pool.Exec(ctx, `
		INSERT INTO sessions (token, user_id, expires_at)
		VALUES ($1, $2, $3)
	`, token, user.ID, expiresAt)
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	return token
}

// CreateInvitation creates a pending workspace invitation
func (f *Fixtures) CreateInvitation(t *testing.T, workspace *models.Workspace, inviter *models.User, email string, expiresAt time.Time) *models.Invitation {
	t.Helper()
	ctx := context.Background()

	invitation := &models.Invitation{}
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO invitations (email, workspace_id, invited_by, status, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, email, workspace_id, invited_by, status, expires_at, created_at, updated_at
	`, email, workspace.ID, inviter.ID, models.InvitationStatusPending, expiresAt).Scan(
		&invitation.ID, &invitation.Email, &invitation.WorkspaceID, &invitation.InvitedBy,
		&invitation.Status, &invitation.ExpiresAt, &invitation.CreatedAt, &invitation.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create invitation: %v", err)
	}
	return invitation
}

// CreateProject creates a project with the creator as a project member
func (f *Fixtures) CreateProject(t *testing.T, workspace *models.Workspace, creator *models.User) *models.Project {
	t.Helper()
	f.counter++
	ctx := context.Background()

	project := &models.Project{}
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO projects (workspace_id, name, created_by)
		VALUES ($1, $2, $3)
		RETURNING id, workspace_id, name, description, created_by, created_at, updated_at
	`, workspace.ID, fmt.Sprintf("Test Project %d", f.counter), creator.ID).Scan(
		&project.ID, &project.WorkspaceID, &project.Name, &project.Description,
		&project.CreatedBy, &project.CreatedAt, &project.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create project: %v", err)
	}

	_, err = f.db.Pool.Exec(ctx, `
		INSERT INTO project_members (project_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (project_id, user_id) DO NOTHING
	`, project.ID, creator.ID)
	if err != nil {
		t.Fatalf("failed to add project member: %v", err)
	}

	return project
}

// AddProjectMember attaches a user to a project
func (f *Fixtures) AddProjectMember(t *testing.T, project *models.Project, user *models.User) {
	t.Helper()
	ctx := context.Background()

	_, err := f.db.Pool.Exec(ctx, `
		INSERT INTO project_members (project_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (project_id, user_id) DO NOTHING
	`, project.ID, user.ID)
	if err != nil {
		t.Fatalf("failed to add project member: %v", err)
	}
}
