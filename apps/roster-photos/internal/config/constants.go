package config

import "time"

// Valkey接続設定
const (
	ValkeyConnectTimeout = 3 * time.Second
	ValkeyCommandTimeout = 2 * time.Second
)

// LTI起動検証
const (
	// NonceWindow はoauth_timestampの許容誤差かつnonceの保持期間
	NonceWindow = 5 * time.Minute
	// SignatureMethod はサポートする唯一の署名方式
	SignatureMethod = "HMAC-SHA1"
	// OAuthVersion はサポートするOAuthバージョン
	OAuthVersion = "1.0"
)

// セッション管理
const (
	SessionTTL          = 8 * time.Hour
	SessionCookieName   = "roster_photos.sid"
	MinSessionSecretLen = 16
)

// Canvas API接続設定
const (
	CanvasRequestTimeout = 10 * time.Second
	// RosterPageSize はper_pageに指定する件数。ページ送りはせず1リクエストのみ行う。
	// Canvas側の上限で次ページが残った場合はCANVAS_ROSTER_TRUNCATEDを記録する。
	RosterPageSize = 3000
)

// 写真ディレクトリ接続設定
const (
	PhotoRequestTimeout = 10 * time.Second
	PhotoCacheTTL       = 24 * time.Hour
)

// Circuit Breaker設定
const (
	CBNameCanvas       = "canvas"
	CBNamePhoto        = "photo-directory"
	CBMaxRequests      = 3
	CBInterval         = 10 * time.Second
	CBTimeout          = 30 * time.Second
	CBFailureThreshold = 5
)

// サーバーシャットダウン設定
const (
	ShutdownTimeout = 10 * time.Second
	SentryFlushWait = 2 * time.Second
)
