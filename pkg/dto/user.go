package dto

type UpdateProfileRequest struct {
	Name        string   `json:"name"`
	Designation *string  `json:"designation,omitempty"`
	Department  *string  `json:"department,omitempty"`
	Skills      []string `json:"skills,omitempty"`
}
