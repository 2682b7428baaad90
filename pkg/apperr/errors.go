// Package apperr は共通エラー定義を提供する。
package apperr

import "errors"

// 認可関連エラー
var (
	// ErrAuthorizationDenied はセッションに対象コースの起動情報がない場合のエラー
	ErrAuthorizationDenied = errors.New("authorization denied")
	// ErrLaunchValidation はLTI起動検証の失敗を表すエラー
	ErrLaunchValidation = errors.New("launch validation failed")
)

// セッション関連エラー
var (
	// ErrSessionNotFound はセッションが見つからない場合のエラー
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionInvalid はセッション内容が不正な場合のエラー
	ErrSessionInvalid = errors.New("session invalid")
)

// インフラ関連エラー
var (
	// ErrValkeyConnection はValkey接続エラー
	ErrValkeyConnection = errors.New("valkey connection error")
	// ErrValkeyCommand はValkeyコマンド実行エラー
	ErrValkeyCommand = errors.New("valkey command error")
)

// 上流サービス関連エラー
var (
	// ErrUpstreamRoster はCanvas名簿APIのエラー
	ErrUpstreamRoster = errors.New("upstream roster error")
	// ErrUpstreamPhoto は写真ディレクトリサービスのエラー
	ErrUpstreamPhoto = errors.New("upstream photo error")
	// ErrCircuitOpen はCircuit BreakerがOpen状態の場合のエラー
	ErrCircuitOpen = errors.New("circuit breaker is open")
)

// バリデーション関連エラー
var (
	// ErrInvalidRequest は不正なリクエストエラー
	ErrInvalidRequest = errors.New("invalid request")
	// ErrMalformedName はsortable_nameが "Last, First" 形式でない場合のエラー
	ErrMalformedName = errors.New("malformed sortable name")
)
