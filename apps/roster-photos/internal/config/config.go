// Package config は環境変数から設定を読み込む。
package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// EnvProduction は本番環境を表すAPP_ENVの値
const EnvProduction = "production"

// Config はアプリケーション設定を保持する
type Config struct {
	// サーバー設定
	HTTPPort string `envconfig:"HTTP_PORT" default:"3000"`
	GinMode  string `envconfig:"GIN_MODE" default:"release"`
	Env      string `envconfig:"APP_ENV" default:"development"`

	// セッション設定
	SessionRedisURL string `envconfig:"SESSION_REDIS_URL" required:"true"`
	SessionSecret   string `envconfig:"SESSION_SECRET" required:"true"`

	// LTI設定
	LTIConsumerKey  string `envconfig:"LTI_CONSUMER_KEY" required:"true"`
	LTISharedSecret string `envconfig:"LTI_SHARED_SECRET" required:"true"`

	// Canvas API設定
	CanvasAPIToken string `envconfig:"CANVAS_API_TOKEN" required:"true"`

	// 写真ディレクトリ設定
	PhotoAPIURL        string `envconfig:"PHOTO_API_URL" required:"true"`
	PhotoAPIUsername   string `envconfig:"PHOTO_API_USERNAME"`
	PhotoAPIPassword   string `envconfig:"PHOTO_API_PASSWORD"`
	PhotoCacheRedisURL string `envconfig:"PHOTO_CACHE_REDIS_URL"`
	PhotoMaxBatch      int    `envconfig:"PHOTO_MAX_BATCH" default:"50"`
	PhotoMaxWidth      int    `envconfig:"PHOTO_MAX_WIDTH" default:"150"`

	// エラー通知設定
	SentryDSN string `envconfig:"SENTRY_DSN"`

	// ログ設定
	LogLevel   string `envconfig:"LOG_LEVEL" default:"INFO"`
	LogMaskIDs bool   `envconfig:"LOG_MASK_IDS" default:"true"`
}

// Load は環境変数から設定を読み込む
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// ListenAddr は待ち受けアドレスを ":port" 形式で返す
func (c *Config) ListenAddr() string {
	return ":" + c.HTTPPort
}

// IsProduction は本番環境かどうかを返す
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// PhotoCacheURL は写真キャッシュ用ValkeyのURLを返す。
// 未設定の場合はセッション用Valkeyを共用する。
func (c *Config) PhotoCacheURL() string {
	if c.PhotoCacheRedisURL != "" {
		return c.PhotoCacheRedisURL
	}
	return c.SessionRedisURL
}

// validate は設定値のバリデーションを行う
func (c *Config) validate() error {
	if !strings.HasPrefix(c.PhotoAPIURL, "http://") && !strings.HasPrefix(c.PhotoAPIURL, "https://") {
		return fmt.Errorf("PHOTO_API_URL must start with http:// or https://")
	}
	if len(c.SessionSecret) < MinSessionSecretLen {
		return fmt.Errorf("SESSION_SECRET must be at least %d characters", MinSessionSecretLen)
	}
	if c.PhotoMaxBatch <= 0 {
		return fmt.Errorf("PHOTO_MAX_BATCH must be positive")
	}
	if c.PhotoMaxWidth <= 0 {
		return fmt.Errorf("PHOTO_MAX_WIDTH must be positive")
	}
	if c.PhotoAPIUsername == "" && c.PhotoAPIPassword != "" {
		return fmt.Errorf("PHOTO_API_PASSWORD is set without PHOTO_API_USERNAME")
	}
	return nil
}
