package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/taskhive/taskhive-api/internal/services"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": errorBody{Code: code, Message: message}})
}

// serviceErrors maps each expected service error to its HTTP representation.
// The message is the error text itself: the taxonomy demands distinct,
// user-facing messages per condition.
var serviceErrors = []struct {
	err    error
	status int
	code   string
}{
	{services.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{services.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
	{services.ErrSessionExpired, http.StatusUnauthorized, "SESSION_EXPIRED"},
	{services.ErrDuplicateEmail, http.StatusBadRequest, "DUPLICATE_EMAIL"},
	{services.ErrAlreadyMember, http.StatusBadRequest, "ALREADY_MEMBER"},
	{services.ErrDuplicateInvitation, http.StatusBadRequest, "DUPLICATE_INVITATION"},
	{services.ErrInvitationExpired, http.StatusBadRequest, "INVITATION_EXPIRED"},
	{services.ErrInvitationAlreadyUsed, http.StatusBadRequest, "INVITATION_ALREADY_USED"},
	{services.ErrEmailMismatch, http.StatusBadRequest, "EMAIL_MISMATCH"},
	{services.ErrInvitationNotFound, http.StatusNotFound, "NOT_FOUND"},
	{services.ErrUserNotFound, http.StatusNotFound, "NOT_FOUND"},
	{services.ErrWorkspaceNotFound, http.StatusNotFound, "NOT_FOUND"},
	{services.ErrMemberNotFound, http.StatusNotFound, "NOT_FOUND"},
	{services.ErrProjectNotFound, http.StatusNotFound, "NOT_FOUND"},
	{services.ErrTaskNotFound, http.StatusNotFound, "NOT_FOUND"},
}

// respondServiceError writes expected conditions as structured 4xx responses;
// anything unrecognized is a 500 and gets logged.
func respondServiceError(w http.ResponseWriter, log *zap.Logger, err error) {
	for _, mapping := range serviceErrors {
		if errors.Is(err, mapping.err) {
			respondError(w, mapping.status, mapping.code, mapping.err.Error())
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	respondError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
}

func respondForbidden(w http.ResponseWriter, reason string) {
	if reason == "" {
		reason = "insufficient permissions"
	}
	respondError(w, http.StatusForbidden, "FORBIDDEN", reason)
}
