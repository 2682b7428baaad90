package apperr

import (
	"fmt"

	"github.com/sfu/roster-photos-lti/pkg/valkey"
)

// ValidationError はバリデーションエラーを表す。
type ValidationError struct {
	Field   string // エラーが発生したフィールド名
	Message string // エラーメッセージ
}

// Error はerrorインターフェースを実装する。
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: field=%s, message=%s", e.Field, e.Message)
}

// Unwrap はErrInvalidRequestを返す。
func (e *ValidationError) Unwrap() error {
	return ErrInvalidRequest
}

// NewValidationError はValidationErrorを生成する。
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// UpstreamError は上流サービス（Canvas、写真ディレクトリ）との通信エラーを表す。
type UpstreamError struct {
	Source     string // 上流サービスの識別子（roster, photo）
	StatusCode int    // HTTPステータスコード（通信失敗時は0）
	Cause      error  // 根本原因
}

// Error はerrorインターフェースを実装する。
func (e *UpstreamError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("upstream error: source=%s, statusCode=%d, cause=%v",
			e.Source, e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("upstream error: source=%s, statusCode=%d",
		e.Source, e.StatusCode)
}

// Unwrap は根本原因を返す。
func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// Is はSourceに対応するセンチネルエラーとの比較を可能にする。
func (e *UpstreamError) Is(target error) bool {
	switch target {
	case ErrUpstreamRoster:
		return e.Source == SourceRoster
	case ErrUpstreamPhoto:
		return e.Source == SourcePhoto
	}
	return false
}

// 上流サービスの識別子
const (
	SourceRoster = "roster"
	SourcePhoto  = "photo"
)

// NewUpstreamError はUpstreamErrorを生成する。
func NewUpstreamError(source string, statusCode int, cause error) *UpstreamError {
	return &UpstreamError{
		Source:     source,
		StatusCode: statusCode,
		Cause:      cause,
	}
}

// ValkeyError はValkeyとの操作エラーを表す。
type ValkeyError struct {
	Operation string // 操作名（GET, SET, DEL等）
	Key       string // 操作対象のキー
	Cause     error  // 根本原因
}

// Error はerrorインターフェースを実装する。
func (e *ValkeyError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("valkey error: operation=%s, key=%s, cause=%v",
			e.Operation, e.Key, e.Cause)
	}
	return fmt.Sprintf("valkey error: operation=%s, key=%s", e.Operation, e.Key)
}

// Unwrap は根本原因を返す。
func (e *ValkeyError) Unwrap() error {
	return e.Cause
}

// Is はErrValkeyCommandとの比較を可能にする。
// 原因が接続断・タイムアウトの場合はErrValkeyConnectionにも一致する。
func (e *ValkeyError) Is(target error) bool {
	switch target {
	case ErrValkeyCommand:
		return true
	case ErrValkeyConnection:
		return valkey.IsConnectionError(e.Cause)
	}
	return false
}

// NewValkeyError はValkeyErrorを生成する。
func NewValkeyError(operation, key string, cause error) *ValkeyError {
	return &ValkeyError{
		Operation: operation,
		Key:       key,
		Cause:     cause,
	}
}
