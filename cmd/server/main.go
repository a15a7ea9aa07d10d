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

	accountrepo "sump/backend/internal/account/repository"
	"sump/backend/internal/audit"
	auditrepo "sump/backend/internal/audit/repository"
	"sump/backend/internal/auth"
	"sump/backend/internal/config"
	"sump/backend/internal/db"
	resetrepo "sump/backend/internal/reset/repository"
	resetservice "sump/backend/internal/reset/service"
	"sump/backend/internal/security"
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
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}
	if cfg.CookieSecret == "" {
		log.Fatal("COOKIE_SECRET is not set; sessions cannot be issued without a signing key")
	}

	ctx := context.Background()

	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, "sump-server", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = providers.Shutdown(shutdownCtx)
	}()

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	auditor := otel.Fanout(
		audit.NewLogger(auditrepo.NewPostgresRepository(conn), nil),
		otel.NewAuditEmitter(providers.LoggerProvider),
	)

	hasher := security.NewHasher(cfg.BcryptCost)
	hasher.Policy = security.StrengthPolicy{
		MinLength: cfg.PasswordMinLength,
		MaxLength: cfg.PasswordMaxLength,
	}

	sessions := sessionservice.NewManager(
		sessionrepo.NewPostgresRepository(conn), auditor, cfg.AbsoluteTTL(), cfg.IdleTTL())
	resets := resetservice.NewManager(
		resetrepo.NewPostgresRepository(conn), sessions, hasher, auditor, cfg.ResetTTL())

	facade := auth.NewFacade(auth.CookieConfig{
		Name:     cfg.CookieName,
		Secure:   cfg.SecureCookies(),
		SameSite: cfg.SameSite(),
		MaxAge:   cfg.AbsoluteTTL(),
	}, security.NewCookieSigner([]byte(cfg.CookieSecret)), sessions, resets, hasher,
		accountrepo.NewTenantStore(conn), accountrepo.NewEnvironmentStore(conn), nil)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           facade.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}
