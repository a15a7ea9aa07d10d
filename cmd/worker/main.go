// Worker periodically purges expired sessions and password reset tokens.
// Runs alongside the server; the data stays correct without it, this only
// reclaims storage. CLEANUP_INTERVAL controls the cadence.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sump/backend/internal/config"
	"sump/backend/internal/db"
	resetrepo "sump/backend/internal/reset/repository"
	resetservice "sump/backend/internal/reset/service"
	sessionrepo "sump/backend/internal/session/repository"
	sessionservice "sump/backend/internal/session/service"
	"sump/backend/internal/telemetry/otel"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("worker: DATABASE_URL is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, "sump-worker", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = providers.Shutdown(shutdownCtx)
	}()

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	sessions := sessionservice.NewManager(
		sessionrepo.NewPostgresRepository(conn), nil, cfg.AbsoluteTTL(), cfg.IdleTTL())
	resets := resetservice.NewManager(
		resetrepo.NewPostgresRepository(conn), sessions, nil, nil, cfg.ResetTTL())

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("worker: shutting down...")
		cancel()
	}()

	interval := cfg.CleanupEvery()
	log.Printf("worker: purging expired sessions and reset tokens every %s", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sweep(ctx, sessions, resets)
	for {
		select {
		case <-ctx.Done():
			log.Println("worker: stopped")
			return
		case <-ticker.C:
			sweep(ctx, sessions, resets)
		}
	}
}

func sweep(ctx context.Context, sessions *sessionservice.Manager, resets *resetservice.Manager) {
	sweepCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	if n, err := sessions.Cleanup(sweepCtx); err != nil {
		log.Printf("worker: session cleanup: %v", err)
	} else if n > 0 {
		log.Printf("worker: purged %d expired sessions", n)
	}
	if n, err := resets.Cleanup(sweepCtx); err != nil {
		log.Printf("worker: reset token cleanup: %v", err)
	} else if n > 0 {
		log.Printf("worker: purged %d expired reset tokens", n)
	}
}
