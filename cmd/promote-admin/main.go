package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive-api/internal/config"
	"github.com/taskhive/taskhive-api/internal/database"
	"github.com/taskhive/taskhive-api/internal/models"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Println("Usage: promote-admin <email> <workspace-id>")
		os.Exit(1)
	}

	email := os.Args[1]
	workspaceID, err := uuid.Parse(os.Args[2])
	if err != nil {
		log.Fatalf("Invalid workspace id: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	var userID uuid.UUID
	err = db.Pool.QueryRow(ctx, `SELECT id FROM users WHERE email = LOWER($1)`, email).Scan(&userID)
	if err != nil {
		log.Fatalf("No user found with email %s: %v", email, err)
	}

	_, err = db.Pool.Exec(ctx, `
		INSERT INTO members (id, user_id, workspace_id, role, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id, workspace_id) DO UPDATE SET role = EXCLUDED.role
	`, uuid.New(), userID, workspaceID, models.RoleAdmin)
	if err != nil {
		log.Fatalf("Failed to grant admin role: %v", err)
	}

	fmt.Printf("Successfully granted admin in workspace %s to %s\n", workspaceID, email)
}
