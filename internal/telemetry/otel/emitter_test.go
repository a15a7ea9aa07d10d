package otel

import (
	"context"
	"sync"
	"testing"

	sdklog "go.opentelemetry.io/otel/sdk/log"
)

type countingRecorder struct {
	mu sync.Mutex
	n  int
}

func (c *countingRecorder) Record(ctx context.Context, accountType, accountID, action, resource, metadata string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
}

func TestNewAuditEmitterNilProvider(t *testing.T) {
	rec := NewAuditEmitter(nil)
	// Must be safe to call without a collector.
	rec.Record(context.Background(), "tenant_account", "acct-1", "create", "session", "")
}

func TestNewAuditEmitterEmits(t *testing.T) {
	provider := sdklog.NewLoggerProvider()
	defer func() { _ = provider.Shutdown(context.Background()) }()

	rec := NewAuditEmitter(provider)
	rec.Record(context.Background(), "tenant_account", "acct-1", "revoke_all", "session", `{"count":3}`)
}

func TestFanout(t *testing.T) {
	a := &countingRecorder{}
	b := &countingRecorder{}

	rec := Fanout(a, nil, b)
	rec.Record(context.Background(), "tenant_account", "acct-1", "request", "reset_token", "")
	rec.Record(context.Background(), "tenant_account", "acct-1", "consume", "reset_token", "")

	if a.n != 2 || b.n != 2 {
		t.Errorf("fanout delivered %d/%d events, want 2/2", a.n, b.n)
	}
}
