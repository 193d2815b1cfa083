package dto

type CreateWorkspaceRequest struct {
	Name string `json:"name"`
}

type UpdateWorkspaceRequest struct {
	Name string `json:"name"`
}

type UpdateMemberRoleRequest struct {
	Role string `json:"role"`
}
