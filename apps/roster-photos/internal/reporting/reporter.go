// Package reporting は予期しないエラーを記録し、利用者に提示する参照IDを発行する。
package reporting

import (
	"context"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/sfu/roster-photos-lti/pkg/logging"
)

// Reporter はエラーを記録して不透明な参照IDを返す。
type Reporter interface {
	Report(ctx context.Context, err error, tags map[string]string) string
	Flush(timeout time.Duration) bool
}

// New はDSNが設定されていればSentryReporterを、なければLogReporterを返す。
func New(dsn, environment string) (Reporter, error) {
	if dsn == "" {
		return NewLogReporter(), nil
	}
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
	})
	if err != nil {
		return nil, err
	}
	return NewSentryReporter(client), nil
}

// LogReporter はUUIDを参照IDとしてログにのみ記録する。
type LogReporter struct{}

// NewLogReporter は新しいLogReporterを生成する。
func NewLogReporter() *LogReporter {
	return &LogReporter{}
}

// Report はエラーをログに記録し、参照IDを返す。
func (r *LogReporter) Report(ctx context.Context, err error, tags map[string]string) string {
	ref := uuid.New().String()
	logReport(ctx, ref, err, tags)
	return ref
}

// Flush は何もしない。
func (r *LogReporter) Flush(time.Duration) bool {
	return true
}

// SentryReporter はSentryにエラーを送信し、イベントIDを参照IDとして返す。
type SentryReporter struct {
	hub *sentry.Hub
}

// NewSentryReporter は新しいSentryReporterを生成する。
func NewSentryReporter(client *sentry.Client) *SentryReporter {
	return &SentryReporter{hub: sentry.NewHub(client, sentry.NewScope())}
}

// Report はエラーをSentryに送信する。イベントIDが得られない場合はUUIDを使う。
func (r *SentryReporter) Report(ctx context.Context, err error, tags map[string]string) string {
	hub := r.hub.Clone()
	var eventID *sentry.EventID
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		if traceID := logging.TraceIDFromContext(ctx); traceID != "" {
			scope.SetTag(logging.FieldTraceID, traceID)
		}
		eventID = hub.CaptureException(err)
	})

	ref := ""
	if eventID != nil {
		ref = string(*eventID)
	}
	if ref == "" {
		ref = uuid.New().String()
	}
	logReport(ctx, ref, err, tags)
	return ref
}

// Flush は送信待ちのイベントを待つ。
func (r *SentryReporter) Flush(timeout time.Duration) bool {
	return r.hub.Flush(timeout)
}

func logReport(ctx context.Context, ref string, err error, tags map[string]string) {
	attrs := []any{
		logging.WithEventID("UNEXPECTED_ERROR"),
		logging.WithTraceID(logging.TraceIDFromContext(ctx)),
		logging.WithReference(ref),
		logging.WithError(err),
	}
	for k, v := range tags {
		attrs = append(attrs, slog.String(k, v))
	}
	slog.Error("request failed", attrs...)
}
