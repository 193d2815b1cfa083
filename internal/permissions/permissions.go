// Package permissions decides whether a workspace role may perform an action.
//
// The decision is a pure function over (role, action, context): a coarse
// role-to-action matrix gates first, then ownership- and scope-sensitive
// refinements apply for the handful of actions that depend on who owns what.
// The package has no dependencies beyond the models Role type, so both the
// HTTP route guards and any other caller share the one source of truth.
package permissions

import (
	"github.com/google/uuid"

	"github.com/taskhive/taskhive-api/internal/models"
)

type Action string

const (
	CreateProject   Action = "CREATE_PROJECT"
	EditProject     Action = "EDIT_PROJECT"
	DeleteProject   Action = "DELETE_PROJECT"
	ViewProject     Action = "VIEW_PROJECT"
	CreateTask      Action = "CREATE_TASK"
	EditTask        Action = "EDIT_TASK"
	DeleteTask      Action = "DELETE_TASK"
	AssignTask      Action = "ASSIGN_TASK"
	ChangeStatus    Action = "CHANGE_STATUS"
	ViewAllTasks    Action = "VIEW_ALL_TASKS"
	ManageUsers     Action = "MANAGE_USERS"
	Comment         Action = "COMMENT"
	DashboardAccess Action = "DASHBOARD_ACCESS"
)

// Context carries the request-scoped facts the refinements need. Zero values
// mean "not applicable"; refinements that need a field treat its absence as a
// denial.
type Context struct {
	UserID        uuid.UUID
	TaskOwnerID   uuid.UUID
	ProjectID     uuid.UUID
	UserProjects  []uuid.UUID
	TeamMemberIDs []uuid.UUID
}

// Decision is the result of a permission check. The engine never errors;
// callers decide the HTTP-level response.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

var allActions = []Action{
	CreateProject, EditProject, DeleteProject, ViewProject,
	CreateTask, EditTask, DeleteTask, AssignTask, ChangeStatus,
	ViewAllTasks, ManageUsers, Comment, DashboardAccess,
}

// matrix is the coarse role-to-action gate. Refinements in Can narrow it
// further; they never widen it except where noted (ASSIGN_TASK and
// MANAGE_USERS are decided purely by role).
var matrix = map[models.Role]map[Action]bool{
	models.RoleAdmin: actionSet(allActions...),
	models.RoleProjectManager: actionSet(
		ViewProject, CreateTask, EditTask, DeleteTask, AssignTask,
		ChangeStatus, ViewAllTasks, ManageUsers, Comment, DashboardAccess,
	),
	models.RoleTeamLead: actionSet(
		ViewProject, CreateTask, EditTask, ViewAllTasks, AssignTask,
		ChangeStatus, Comment, DashboardAccess,
	),
	models.RoleEmployee: actionSet(
		ViewProject, CreateTask, EditTask, ViewAllTasks, Comment, DashboardAccess,
	),
	models.RoleManagement: actionSet(DashboardAccess),
	models.RoleClient: actionSet(
		ViewProject, ViewAllTasks, DashboardAccess,
	),
	models.RoleMember: actionSet(
		ViewProject, ViewAllTasks, Comment, DashboardAccess,
	),
}

func actionSet(actions ...Action) map[Action]bool {
	set := make(map[Action]bool, len(actions))
	for _, a := range actions {
		set[a] = true
	}
	return set
}

// Can reports whether role may perform action in the given context.
func Can(role models.Role, action Action, ctx Context) Decision {
	permitted, ok := matrix[role]
	if !ok {
		return deny("unknown role")
	}
	if !permitted[action] {
		return deny("role does not permit " + string(action))
	}

	switch action {
	case CreateTask:
		// Employees may only create tasks inside their own projects.
		if role == models.RoleEmployee && !containsID(ctx.UserProjects, ctx.ProjectID) {
			return deny("employees may only create tasks in their own projects")
		}
		return allow()

	case EditTask:
		switch role {
		case models.RoleEmployee:
			if ctx.TaskOwnerID == uuid.Nil || ctx.TaskOwnerID != ctx.UserID {
				return deny("employees may only edit their own tasks")
			}
		case models.RoleTeamLead:
			if !containsID(ctx.TeamMemberIDs, ctx.TaskOwnerID) {
				return deny("team leads may only edit their team's tasks")
			}
		}
		return allow()

	case ChangeStatus:
		// Status changes require elevated approval: EMPLOYEE and MANAGEMENT
		// are denied regardless of ownership.
		if role == models.RoleEmployee || role == models.RoleManagement {
			return deny("status changes require elevated approval")
		}
		return allow()

	case AssignTask:
		if role != models.RoleAdmin && role != models.RoleProjectManager && role != models.RoleTeamLead {
			return deny("only admins, project managers and team leads assign tasks")
		}
		return allow()

	case ViewAllTasks:
		if role == models.RoleManagement {
			return deny("management is limited to dashboards")
		}
		// Clients see a single project's tasks, nothing broader.
		if role == models.RoleClient && !containsID(ctx.UserProjects, ctx.ProjectID) {
			return deny("clients may only view their own project")
		}
		return allow()

	case ViewProject:
		if role == models.RoleClient && !containsID(ctx.UserProjects, ctx.ProjectID) {
			return deny("clients may only view their own project")
		}
		return allow()

	case ManageUsers:
		if role != models.RoleAdmin && role != models.RoleProjectManager {
			return deny("only admins and project managers manage users")
		}
		return allow()
	}

	return allow()
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	if id == uuid.Nil {
		return false
	}
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
