// Package main はroster-photosのエントリーポイント。
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/sfu/roster-photos-lti/apps/roster-photos/internal/canvas"
	"github.com/sfu/roster-photos-lti/apps/roster-photos/internal/config"
	"github.com/sfu/roster-photos-lti/apps/roster-photos/internal/handler"
	"github.com/sfu/roster-photos-lti/apps/roster-photos/internal/lti"
	"github.com/sfu/roster-photos-lti/apps/roster-photos/internal/photo"
	"github.com/sfu/roster-photos-lti/apps/roster-photos/internal/reporting"
	"github.com/sfu/roster-photos-lti/apps/roster-photos/internal/roster"
	"github.com/sfu/roster-photos-lti/apps/roster-photos/internal/server"
	"github.com/sfu/roster-photos-lti/apps/roster-photos/internal/session"
	"github.com/sfu/roster-photos-lti/apps/roster-photos/web"
	"github.com/sfu/roster-photos-lti/pkg/logging"
	"github.com/sfu/roster-photos-lti/pkg/valkey"
)

func main() {
	// 1. 設定読み込み
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// 2. ロガー初期化
	initLogger(cfg)

	slog.Info("starting roster-photos",
		"listen_addr", cfg.ListenAddr(),
		"log_level", cfg.LogLevel,
		"env", cfg.Env,
	)

	// 3. Valkey接続
	sessionClient, err := connectValkey(cfg.SessionRedisURL)
	if err != nil {
		slog.Error("failed to connect to session store", "error", err)
		os.Exit(1)
	}
	defer sessionClient.Close()

	cacheClient := sessionClient
	if cfg.PhotoCacheURL() != cfg.SessionRedisURL {
		cacheClient, err = connectValkey(cfg.PhotoCacheURL())
		if err != nil {
			slog.Error("failed to connect to photo cache", "error", err)
			os.Exit(1)
		}
		defer cacheClient.Close()
	}

	slog.Info("connected to Valkey")

	// 4. エラー通知
	reporter, err := reporting.New(cfg.SentryDSN, cfg.Env)
	if err != nil {
		slog.Error("failed to initialize error reporter", "error", err)
		os.Exit(1)
	}
	defer reporter.Flush(config.SentryFlushWait)

	// 5. 依存オブジェクト生成
	validator := lti.NewValidator(cfg.LTIConsumerKey, cfg.LTISharedSecret, lti.NewNonceStore(sessionClient))
	sessions := session.NewStore(sessionClient)
	cookies := session.NewCookieCodec(cfg.SessionSecret)

	masker := logging.NewMasker(cfg.LogMaskIDs)
	slog.Info("student id masking", "enabled", masker.IsEnabled())

	rosterService := roster.NewService(
		canvas.NewClient(cfg),
		photo.NewClient(cfg, photo.NewCache(cacheClient)),
		web.PlaceholderBase64(),
		logging.NewCommonFields(masker),
	)

	// ハンドラー
	h := handler.NewHandler(validator, sessions, cookies, rosterService, reporter, cfg)

	// 6. サーバー起動
	srv := server.New(cfg, h, sessions, cookies, reporter)

	// 7. Graceful Shutdown設定
	go func() {
		if err := srv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// 8. シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("server stopped")
}

// connectValkey はURLからValkeyに接続する。
func connectValkey(rawURL string) (*redis.Client, error) {
	return valkey.Dial(rawURL, config.ValkeyConnectTimeout, config.ValkeyCommandTimeout)
}

// initLogger はロガーを初期化する。
func initLogger(cfg *config.Config) {
	level := slog.LevelInfo
	switch strings.ToUpper(cfg.LogLevel) {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	logHandler := slog.NewJSONHandler(os.Stdout, opts)
	logger := slog.New(logHandler).With("app", "roster-photos")
	slog.SetDefault(logger)
}
