// Package audit records security-relevant events from the session and
// credential-recovery flows. Events carry identifiers and actions only;
// bearer tokens and plaintext passwords must never reach this package.
package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"sump/backend/internal/audit/domain"
	auditrepo "sump/backend/internal/audit/repository"
)

// Recorder writes a single audit event. Used by the session and reset
// services; Record is best-effort and must not affect the caller.
type Recorder interface {
	Record(ctx context.Context, accountType, accountID, action, resource, metadata string)
}

// IPExtractor returns the client IP for the current request, if known.
type IPExtractor func(context.Context) string

// Logger implements Recorder using the audit repository and an optional IP extractor.
type Logger struct {
	repo        auditrepo.Repository
	ipExtractor IPExtractor
}

// NewLogger returns a Recorder that persists to repo and uses ipExtractor for
// the client IP. ipExtractor may be nil; then IP is recorded as "unknown".
func NewLogger(repo auditrepo.Repository, ipExtractor IPExtractor) *Logger {
	return &Logger{repo: repo, ipExtractor: ipExtractor}
}

// Record writes one audit event. Best-effort: errors are logged and not returned.
func (l *Logger) Record(ctx context.Context, accountType, accountID, action, resource, metadata string) {
	if l.repo == nil {
		return
	}
	ip := "unknown"
	if l.ipExtractor != nil {
		if v := l.ipExtractor(ctx); v != "" {
			ip = v
		}
	}
	event := &domain.Event{
		ID:          uuid.New().String(),
		AccountType: accountType,
		AccountID:   accountID,
		Action:      action,
		Resource:    resource,
		IP:          ip,
		Metadata:    metadata,
		CreatedAt:   time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, event); err != nil {
		log.Printf("audit: failed to record event %s/%s: %v", action, resource, err)
	}
}
