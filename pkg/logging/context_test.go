package logging

import (
	"context"
	"testing"
)

func TestTraceIDContext(t *testing.T) {
	ctx := ContextWithTraceID(context.Background(), "trace-abc")
	if got := TraceIDFromContext(ctx); got != "trace-abc" {
		t.Errorf("TraceIDFromContext() = %q, want %q", got, "trace-abc")
	}
	if got := TraceIDFromContext(context.Background()); got != "" {
		t.Errorf("TraceIDFromContext(empty) = %q, want empty", got)
	}
}
