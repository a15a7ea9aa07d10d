package otel

import (
	"context"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"sump/backend/internal/audit"
)

// NewAuditEmitter returns an audit.Recorder that mirrors audit events to the
// collector as OTel log records. A nil provider yields a no-op recorder.
func NewAuditEmitter(provider *sdklog.LoggerProvider) audit.Recorder {
	if provider == nil {
		return noopRecorder{}
	}
	return &auditEmitter{logger: provider.Logger("sump.audit")}
}

// Fanout returns a Recorder that delivers each event to every given recorder.
// Nil entries are skipped.
func Fanout(recorders ...audit.Recorder) audit.Recorder {
	var live []audit.Recorder
	for _, r := range recorders {
		if r != nil {
			live = append(live, r)
		}
	}
	return fanoutRecorder(live)
}

type noopRecorder struct{}

func (noopRecorder) Record(context.Context, string, string, string, string, string) {}

type fanoutRecorder []audit.Recorder

func (f fanoutRecorder) Record(ctx context.Context, accountType, accountID, action, resource, metadata string) {
	for _, r := range f {
		r.Record(ctx, accountType, accountID, action, resource, metadata)
	}
}

type auditEmitter struct {
	logger otellog.Logger
}

// Record emits one audit event as a log record. Best-effort, same contract as
// the database recorder. Event fields carry identifiers only, never secrets.
func (e *auditEmitter) Record(ctx context.Context, accountType, accountID, action, resource, metadata string) {
	rec := otellog.Record{}
	rec.SetTimestamp(time.Now().UTC())
	rec.SetBody(otellog.StringValue(action + " " + resource))
	if accountType != "" {
		rec.AddAttributes(otellog.String("account_type", accountType))
	}
	if accountID != "" {
		rec.AddAttributes(otellog.String("account_id", accountID))
	}
	if action != "" {
		rec.AddAttributes(otellog.String("action", action))
	}
	if resource != "" {
		rec.AddAttributes(otellog.String("resource", resource))
	}
	if metadata != "" {
		rec.AddAttributes(otellog.String("metadata", metadata))
	}
	e.logger.Emit(ctx, rec)
}
