package handlers

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/taskhive/taskhive-api/internal/config"
	"github.com/taskhive/taskhive-api/internal/middleware"
	"github.com/taskhive/taskhive-api/internal/ratelimit"
	"github.com/taskhive/taskhive-api/pkg/dto"
)

type AuthHandler struct {
	cfg      *config.Config
	users    UserServiceInterface
	sessions SessionServiceInterface
	limiter  *ratelimit.Limiter
	log      *zap.Logger
}

func NewAuthHandler(cfg *config.Config, users UserServiceInterface, sessions SessionServiceInterface, limiter *ratelimit.Limiter, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		cfg:      cfg,
		users:    users,
		sessions: sessions,
		limiter:  limiter,
		log:      log,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	if req.Name == "" || req.Email == "" || len(req.Password) < 8 {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "name, email and a password of at least 8 characters are required")
		return
	}

	if _, err := h.users.Create(r.Context(), req.Name, req.Email, req.Password); err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusOK, dto.SuccessResponse{Success: true})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	if !h.limiter.Allow(loginRateKey(req.Email, r)) {
		respondError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many login attempts, try again later")
		return
	}

	session, user, err := h.sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	h.setSessionCookie(w, session.Token, int(time.Until(session.ExpiresAt).Seconds()))
	respondData(w, http.StatusOK, user)
}

// Logout deletes the session row if a cookie is present and clears the
// cookie either way; an invalid token is not an error.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		if err := h.sessions.Logout(r.Context(), cookie.Value); err != nil {
			h.log.Warn("failed to delete session", zap.Error(err))
		}
	}

	h.setSessionCookie(w, "", -1)
	respondData(w, http.StatusOK, dto.SuccessResponse{Success: true})
}

func (h *AuthHandler) Current(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
		return
	}
	respondData(w, http.StatusOK, user)
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
}

// loginRateKey buckets attempts by target identity and source address so one
// address cannot hammer many accounts nor one account be locked from a
// single bad actor's address alone.
func loginRateKey(email string, r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return strings.ToLower(strings.TrimSpace(email)) + "|" + host
}
