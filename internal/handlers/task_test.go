package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/taskhive/taskhive-api/internal/models"
	"github.com/taskhive/taskhive-api/pkg/dto"
	"github.com/taskhive/taskhive-api/tests/testutil"
)

type taskHandlerMocks struct {
	tasks    *testutil.MockTaskService
	projects *testutil.MockProjectService
	members  *testutil.MockMemberService
}

func newTaskHandler() (*TaskHandler, *taskHandlerMocks) {
	m := &taskHandlerMocks{
		tasks:    new(testutil.MockTaskService),
		projects: new(testutil.MockProjectService),
		members:  new(testutil.MockMemberService),
	}
	return NewTaskHandler(m.tasks, m.projects, m.members, zap.NewNop()), m
}

func memberWithRole(userID, workspaceID uuid.UUID, role models.Role) *models.Member {
	return &models.Member{ID: uuid.New(), UserID: userID, WorkspaceID: workspaceID, Role: role}
}

func TestTaskHandler_Create_EmployeeInOwnProject(t *testing.T) {
	handler, m := newTaskHandler()

	employee := &models.User{ID: uuid.New(), Email: "emp@example.com", Name: "Emp"}
	workspaceID := uuid.New()
	projectID := uuid.New()
	project := &models.Project{ID: projectID, WorkspaceID: workspaceID, Name: "Website"}
	task := &models.Task{ID: uuid.New(), ProjectID: projectID, WorkspaceID: workspaceID, Title: "Fix footer", OwnerID: employee.ID}

	m.projects.On("GetByID", mock.Anything, projectID).Return(project, nil)
	m.projects.On("UserProjectIDs", mock.Anything, employee.ID, workspaceID).Return([]uuid.UUID{projectID}, nil)
	m.projects.On("MemberIDs", mock.Anything, projectID).Return([]uuid.UUID{employee.ID}, nil)
	m.members.On("Get", mock.Anything, employee.ID, workspaceID).
		Return(memberWithRole(employee.ID, workspaceID, models.RoleEmployee), nil)
	m.tasks.On("Create", mock.Anything, projectID, workspaceID, "Fix footer", (*string)(nil), employee.ID).Return(task, nil)

	r := chi.NewRouter()
	r.Use(withUser(employee))
	r.Post("/projects/{projectID}/tasks", handler.Create)

	req := jsonRequest(t, http.MethodPost, "/projects/"+projectID.String()+"/tasks",
		dto.CreateTaskRequest{Title: "Fix footer"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "Fix footer")
	m.tasks.AssertExpectations(t)
}

func TestTaskHandler_Create_EmployeeOutsideProjectForbidden(t *testing.T) {
	handler, m := newTaskHandler()

	employee := &models.User{ID: uuid.New(), Email: "emp@example.com", Name: "Emp"}
	workspaceID := uuid.New()
	projectID := uuid.New()
	project := &models.Project{ID: projectID, WorkspaceID: workspaceID, Name: "Website"}

	m.projects.On("GetByID", mock.Anything, projectID).Return(project, nil)
	m.projects.On("UserProjectIDs", mock.Anything, employee.ID, workspaceID).Return([]uuid.UUID{uuid.New()}, nil)
	m.projects.On("MemberIDs", mock.Anything, projectID).Return([]uuid.UUID{}, nil)
	m.members.On("Get", mock.Anything, employee.ID, workspaceID).
		Return(memberWithRole(employee.ID, workspaceID, models.RoleEmployee), nil)

	r := chi.NewRouter()
	r.Use(withUser(employee))
	r.Post("/projects/{projectID}/tasks", handler.Create)

	req := jsonRequest(t, http.MethodPost, "/projects/"+projectID.String()+"/tasks",
		dto.CreateTaskRequest{Title: "Fix footer"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	m.tasks.AssertNotCalled(t, "Create")
}

func TestTaskHandler_Update_EmployeeOthersTaskForbidden(t *testing.T) {
	handler, m := newTaskHandler()

	employee := &models.User{ID: uuid.New(), Email: "emp@example.com", Name: "Emp"}
	workspaceID := uuid.New()
	projectID := uuid.New()
	taskID := uuid.New()
	otherOwner := uuid.New()
	task := &models.Task{ID: taskID, ProjectID: projectID, WorkspaceID: workspaceID, Title: "Old", OwnerID: otherOwner}

	m.tasks.On("GetByID", mock.Anything, taskID).Return(task, nil)
	m.projects.On("UserProjectIDs", mock.Anything, employee.ID, workspaceID).Return([]uuid.UUID{projectID}, nil)
	m.projects.On("MemberIDs", mock.Anything, projectID).Return([]uuid.UUID{employee.ID, otherOwner}, nil)
	m.members.On("Get", mock.Anything, employee.ID, workspaceID).
		Return(memberWithRole(employee.ID, workspaceID, models.RoleEmployee), nil)

	r := chi.NewRouter()
	r.Use(withUser(employee))
	r.Patch("/tasks/{taskID}", handler.Update)

	req := jsonRequest(t, http.MethodPatch, "/tasks/"+taskID.String(), dto.UpdateTaskRequest{Title: "New"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	m.tasks.AssertNotCalled(t, "Update")
}

func TestTaskHandler_Update_TeamLeadWithinTeam(t *testing.T) {
	handler, m := newTaskHandler()

	lead := &models.User{ID: uuid.New(), Email: "lead@example.com", Name: "Lead"}
	workspaceID := uuid.New()
	projectID := uuid.New()
	taskID := uuid.New()
	owner := uuid.New()
	task := &models.Task{ID: taskID, ProjectID: projectID, WorkspaceID: workspaceID, Title: "Old", OwnerID: owner}
	updated := &models.Task{ID: taskID, ProjectID: projectID, WorkspaceID: workspaceID, Title: "New", OwnerID: owner}

	m.tasks.On("GetByID", mock.Anything, taskID).Return(task, nil)
	m.projects.On("UserProjectIDs", mock.Anything, lead.ID, workspaceID).Return([]uuid.UUID{projectID}, nil)
	m.projects.On("MemberIDs", mock.Anything, projectID).Return([]uuid.UUID{lead.ID, owner}, nil)
	m.members.On("Get", mock.Anything, lead.ID, workspaceID).
		Return(memberWithRole(lead.ID, workspaceID, models.RoleTeamLead), nil)
	m.tasks.On("Update", mock.Anything, taskID, "New", (*string)(nil)).Return(updated, nil)

	r := chi.NewRouter()
	r.Use(withUser(lead))
	r.Patch("/tasks/{taskID}", handler.Update)

	req := jsonRequest(t, http.MethodPatch, "/tasks/"+taskID.String(), dto.UpdateTaskRequest{Title: "New"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	m.tasks.AssertExpectations(t)
}

func TestTaskHandler_ChangeStatus_EmployeeForbiddenOnOwnTask(t *testing.T) {
	handler, m := newTaskHandler()

	employee := &models.User{ID: uuid.New(), Email: "emp@example.com", Name: "Emp"}
	workspaceID := uuid.New()
	projectID := uuid.New()
	taskID := uuid.New()
	task := &models.Task{ID: taskID, ProjectID: projectID, WorkspaceID: workspaceID, Title: "Mine", OwnerID: employee.ID}

	m.tasks.On("GetByID", mock.Anything, taskID).Return(task, nil)
	m.projects.On("UserProjectIDs", mock.Anything, employee.ID, workspaceID).Return([]uuid.UUID{projectID}, nil)
	m.projects.On("MemberIDs", mock.Anything, projectID).Return([]uuid.UUID{employee.ID}, nil)
	m.members.On("Get", mock.Anything, employee.ID, workspaceID).
		Return(memberWithRole(employee.ID, workspaceID, models.RoleEmployee), nil)

	r := chi.NewRouter()
	r.Use(withUser(employee))
	r.Post("/tasks/{taskID}/status", handler.ChangeStatus)

	req := jsonRequest(t, http.MethodPost, "/tasks/"+taskID.String()+"/status",
		dto.ChangeTaskStatusRequest{Status: "done"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	// Ownership does not matter for status: employees always need approval.
	assert.Equal(t, http.StatusForbidden, rec.Code)
	m.tasks.AssertNotCalled(t, "ChangeStatus")
}

func TestTaskHandler_ChangeStatus_UnknownStatus(t *testing.T) {
	handler, m := newTaskHandler()

	admin := &models.User{ID: uuid.New(), Email: "admin@example.com", Name: "Admin"}
	workspaceID := uuid.New()
	projectID := uuid.New()
	taskID := uuid.New()
	task := &models.Task{ID: taskID, ProjectID: projectID, WorkspaceID: workspaceID, Title: "T", OwnerID: admin.ID}

	m.tasks.On("GetByID", mock.Anything, taskID).Return(task, nil)

	r := chi.NewRouter()
	r.Use(withUser(admin))
	r.Post("/tasks/{taskID}/status", handler.ChangeStatus)

	req := jsonRequest(t, http.MethodPost, "/tasks/"+taskID.String()+"/status",
		dto.ChangeTaskStatusRequest{Status: "archived"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	m.tasks.AssertNotCalled(t, "ChangeStatus")
}

func TestTaskHandler_ListByProject_ClientOutsideProjectForbidden(t *testing.T) {
	handler, m := newTaskHandler()

	client := &models.User{ID: uuid.New(), Email: "client@example.com", Name: "Client"}
	workspaceID := uuid.New()
	projectID := uuid.New()
	project := &models.Project{ID: projectID, WorkspaceID: workspaceID, Name: "Internal"}

	m.projects.On("GetByID", mock.Anything, projectID).Return(project, nil)
	// The client belongs to a different project in the same workspace.
	m.projects.On("UserProjectIDs", mock.Anything, client.ID, workspaceID).Return([]uuid.UUID{uuid.New()}, nil)
	m.projects.On("MemberIDs", mock.Anything, projectID).Return([]uuid.UUID{}, nil)
	m.members.On("Get", mock.Anything, client.ID, workspaceID).
		Return(memberWithRole(client.ID, workspaceID, models.RoleClient), nil)

	r := chi.NewRouter()
	r.Use(withUser(client))
	r.Get("/projects/{projectID}/tasks", handler.ListByProject)

	req := httptest.NewRequest(http.MethodGet, "/projects/"+projectID.String()+"/tasks", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	m.tasks.AssertNotCalled(t, "ListByProject")
}

func TestTaskHandler_Assign_TeamLeadAllowed(t *testing.T) {
	handler, m := newTaskHandler()

	lead := &models.User{ID: uuid.New(), Email: "lead@example.com", Name: "Lead"}
	workspaceID := uuid.New()
	projectID := uuid.New()
	taskID := uuid.New()
	assigneeID := uuid.New()
	task := &models.Task{ID: taskID, ProjectID: projectID, WorkspaceID: workspaceID, Title: "T", OwnerID: lead.ID}
	assigned := &models.Task{ID: taskID, ProjectID: projectID, WorkspaceID: workspaceID, Title: "T", OwnerID: lead.ID, AssigneeID: &assigneeID}

	m.tasks.On("GetByID", mock.Anything, taskID).Return(task, nil)
	m.projects.On("UserProjectIDs", mock.Anything, lead.ID, workspaceID).Return([]uuid.UUID{projectID}, nil)
	m.projects.On("MemberIDs", mock.Anything, projectID).Return([]uuid.UUID{lead.ID, assigneeID}, nil)
	m.members.On("Get", mock.Anything, lead.ID, workspaceID).
		Return(memberWithRole(lead.ID, workspaceID, models.RoleTeamLead), nil)
	m.tasks.On("Assign", mock.Anything, taskID, assigneeID).Return(assigned, nil)

	r := chi.NewRouter()
	r.Use(withUser(lead))
	r.Post("/tasks/{taskID}/assign", handler.Assign)

	req := jsonRequest(t, http.MethodPost, "/tasks/"+taskID.String()+"/assign",
		dto.AssignTaskRequest{AssigneeID: assigneeID})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	m.tasks.AssertExpectations(t)
}
