package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/taskhive/taskhive-api/internal/config"
	"github.com/taskhive/taskhive-api/internal/database"
	"github.com/taskhive/taskhive-api/internal/handlers"
	"github.com/taskhive/taskhive-api/internal/middleware"
	"github.com/taskhive/taskhive-api/internal/ratelimit"
	"github.com/taskhive/taskhive-api/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	userService := services.NewUserService(db)
	sessionService := services.NewSessionService(db, userService, cfg.SessionExpiry)
	memberService := services.NewMemberService(db)
	workspaceService := services.NewWorkspaceService(db)
	invitationService := services.NewInvitationService(db, cfg.InviteExpiry)
	projectService := services.NewProjectService(db)
	taskService := services.NewTaskService(db)
	emailService := services.NewEmailService(cfg.SMTP, logger)

	loginCounter := ratelimit.NewMemoryCounter()
	loginLimiter := ratelimit.NewLimiter(loginCounter, cfg.LoginRateLimit, cfg.LoginRateWindow)

	authHandler := handlers.NewAuthHandler(cfg, userService, sessionService, loginLimiter, logger)
	userHandler := handlers.NewUserHandler(userService, logger)
	workspaceHandler := handlers.NewWorkspaceHandler(workspaceService, memberService, logger)
	invitationHandler := handlers.NewInvitationHandler(cfg, invitationService, memberService, workspaceService, projectService, emailService, logger)
	projectHandler := handlers.NewProjectHandler(projectService, memberService, logger)
	taskHandler := handlers.NewTaskHandler(taskService, projectService, memberService, logger)

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(logger))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})

		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)

		// Public invitation landing pages: recipients follow emailed links
		// before they have a session.
		r.Get("/invitations/{id}", invitationHandler.Get)
		r.Get("/client-invitations/{token}", invitationHandler.GetClientInvite)
		r.Post("/client-invitations/{token}/accept", invitationHandler.AcceptClientInvite)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(sessionService))

			r.Get("/auth/current", authHandler.Current)
			r.Patch("/users/me", userHandler.UpdateProfile)

			r.Post("/workspaces", workspaceHandler.Create)
			r.Get("/workspaces", workspaceHandler.List)
			r.Get("/workspaces/{workspaceID}", workspaceHandler.Get)
			r.Patch("/workspaces/{workspaceID}", workspaceHandler.Update)
			r.Delete("/workspaces/{workspaceID}", workspaceHandler.Delete)
			r.Get("/workspaces/{workspaceID}/members", workspaceHandler.ListMembers)
			r.Patch("/workspaces/{workspaceID}/members/{memberID}", workspaceHandler.UpdateMemberRole)
			r.Delete("/workspaces/{workspaceID}/members/{memberID}", workspaceHandler.RemoveMember)
			r.Get("/workspaces/{workspaceID}/invitations", invitationHandler.ListPending)

			r.Post("/invitations", invitationHandler.Create)
			r.Post("/invitations/{id}/accept", invitationHandler.Accept)
			r.Delete("/invitations/{id}", invitationHandler.Revoke)

			r.Post("/workspaces/{workspaceID}/projects", projectHandler.Create)
			r.Get("/workspaces/{workspaceID}/projects", projectHandler.ListByWorkspace)
			r.Get("/projects/{projectID}", projectHandler.Get)
			r.Post("/projects/{projectID}/members", projectHandler.AddMember)
			r.Post("/projects/{projectID}/client-invitations", invitationHandler.CreateClientInvite)

			r.Post("/projects/{projectID}/tasks", taskHandler.Create)
			r.Get("/projects/{projectID}/tasks", taskHandler.ListByProject)
			r.Patch("/tasks/{taskID}", taskHandler.Update)
			r.Post("/tasks/{taskID}/assign", taskHandler.Assign)
			r.Post("/tasks/{taskID}/status", taskHandler.ChangeStatus)
			r.Delete("/tasks/{taskID}", taskHandler.Delete)
		})
	})

	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if err := sessionService.CleanupExpired(context.Background()); err != nil {
				logger.Warn("session cleanup failed", zap.Error(err))
			}
			loginCounter.Sweep(cfg.LoginRateWindow)
		}
	}()

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
