// seed inserts development sample accounts for local testing.
// Idempotent: skips inserts if the dev tenant account (dev@example.com)
// already exists.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"sump/backend/internal/config"
	"sump/backend/internal/db"
	"sump/backend/internal/security"
)

const (
	devTenantEmail   = "dev@example.com"
	devEnvIdentifier = "env-default"
	devPassword      = "password123!"
	devTenantID      = "dev-tenant-001"
	devEnvID         = "dev-env-001"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()

	var existing string
	err = conn.QueryRowContext(ctx,
		`SELECT id FROM tenant_accounts WHERE identifier = $1`, devTenantEmail).Scan(&existing)
	if err == nil {
		log.Println("Seed already applied (dev@example.com exists). Skipping.")
		os.Exit(0)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		log.Fatalf("seed check: %v", err)
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	passwordHash, err := hasher.Hash(devPassword)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	now := time.Now().UTC()

	if _, err := conn.ExecContext(ctx,
		`INSERT INTO tenant_accounts (id, identifier, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4)`,
		devTenantID, devTenantEmail, passwordHash, now); err != nil {
		log.Fatalf("create dev tenant account: %v", err)
	}

	if _, err := conn.ExecContext(ctx,
		`INSERT INTO environment_accounts (id, identifier, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4)`,
		devEnvID, devEnvIdentifier, passwordHash, now); err != nil {
		log.Fatalf("create dev environment account: %v", err)
	}

	log.Println("Seed completed successfully.")
	fmt.Printf("Tenant login: %s / %s\n", devTenantEmail, devPassword)
	fmt.Printf("Environment login: %s / %s\n", devEnvIdentifier, devPassword)
}
