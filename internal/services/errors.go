package services

import "errors"

// Expected, user-facing conditions. Handlers map these to 4xx responses with
// machine-readable codes; anything else surfaces as a 500.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("not authenticated")
	ErrSessionExpired     = errors.New("session expired")

	ErrDuplicateEmail = errors.New("email is already registered")
	ErrUserNotFound   = errors.New("user not found")

	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrMemberNotFound    = errors.New("member not found")
	ErrAlreadyMember     = errors.New("user is already a member of this workspace")

	ErrDuplicateInvitation   = errors.New("a pending invitation already exists for this email")
	ErrInvitationNotFound    = errors.New("invitation not found")
	ErrInvitationExpired     = errors.New("this invitation has expired")
	ErrInvitationAlreadyUsed = errors.New("this invitation has already been used")
	ErrEmailMismatch         = errors.New("this invitation was issued to a different email address")

	ErrProjectNotFound = errors.New("project not found")
	ErrTaskNotFound    = errors.New("task not found")
)
