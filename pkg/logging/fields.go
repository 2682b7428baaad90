package logging

import "log/slog"

// ログフィールド名の定数
const (
	FieldTraceID    = "trace_id"
	FieldEventID    = "event_id"
	FieldError      = "error"
	FieldSrcIP      = "src_ip"
	FieldLatencyMs  = "latency_ms"
	FieldHTTPStatus = "http_status"
	FieldCourseID   = "course_id"
	FieldSfuID      = "sfu_id"
	FieldReference  = "reference"
	FieldUpstream   = "upstream"
)

// WithTraceID はトレースIDのslog.Attrを返す。
func WithTraceID(traceID string) slog.Attr {
	return slog.String(FieldTraceID, traceID)
}

// WithEventID はイベントIDのslog.Attrを返す。
func WithEventID(eventID string) slog.Attr {
	return slog.String(FieldEventID, eventID)
}

// WithError はエラーのslog.Attrを返す。
func WithError(err error) slog.Attr {
	if err == nil {
		return slog.String(FieldError, "")
	}
	return slog.String(FieldError, err.Error())
}

// WithSrcIP はソースIPアドレスのslog.Attrを返す。
func WithSrcIP(ip string) slog.Attr {
	return slog.String(FieldSrcIP, ip)
}

// WithLatency はレイテンシ（ミリ秒）のslog.Attrを返す。
func WithLatency(ms int64) slog.Attr {
	return slog.Int64(FieldLatencyMs, ms)
}

// WithHTTPStatus はHTTPステータスコードのslog.Attrを返す。
func WithHTTPStatus(status int) slog.Attr {
	return slog.Int(FieldHTTPStatus, status)
}

// WithCourseID はCanvasコースIDのslog.Attrを返す。
func WithCourseID(courseID string) slog.Attr {
	return slog.String(FieldCourseID, courseID)
}

// WithReference はエラー参照IDのslog.Attrを返す。
func WithReference(ref string) slog.Attr {
	return slog.String(FieldReference, ref)
}

// WithUpstream は上流サービス名のslog.Attrを返す。
func WithUpstream(name string) slog.Attr {
	return slog.String(FieldUpstream, name)
}

// CommonFields はマスキング設定を保持するログフィールド生成器。
type CommonFields struct {
	masker *Masker
}

// NewCommonFields は新しいCommonFieldsを生成する。
func NewCommonFields(masker *Masker) *CommonFields {
	if masker == nil {
		masker = NewMasker(false)
	}
	return &CommonFields{masker: masker}
}

// WithSfuID はマスキングされた学籍IDのslog.Attrを返す。
func (cf *CommonFields) WithSfuID(id string) slog.Attr {
	return slog.String(FieldSfuID, cf.masker.StudentID(id))
}

// RosterLogFields は名簿処理ログ用の共通フィールドを返す。
func (cf *CommonFields) RosterLogFields(traceID, eventID, courseID, sfuID string) []any {
	return []any{
		WithTraceID(traceID),
		WithEventID(eventID),
		WithCourseID(courseID),
		cf.WithSfuID(sfuID),
	}
}
