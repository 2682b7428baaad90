package logging

import "context"

// traceIDKey はコンテキストからトレースIDを取得するためのキー型
type traceIDKey struct{}

// ContextWithTraceID はコンテキストにトレースIDを設定する。
func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

// TraceIDFromContext はコンテキストからトレースIDを取得する。
// 未設定の場合は空文字列を返す。
func TraceIDFromContext(ctx context.Context) string {
	traceID, _ := ctx.Value(traceIDKey{}).(string)
	return traceID
}
