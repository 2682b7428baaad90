// Package server はHTTPサーバーの管理を提供する。
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sfu/roster-photos-lti/apps/roster-photos/internal/config"
	"github.com/sfu/roster-photos-lti/apps/roster-photos/internal/handler"
	"github.com/sfu/roster-photos-lti/apps/roster-photos/internal/reporting"
	"github.com/sfu/roster-photos-lti/apps/roster-photos/internal/session"
	"github.com/sfu/roster-photos-lti/apps/roster-photos/web"
)

// Server はHTTPサーバーを管理する。
type Server struct {
	engine *gin.Engine
	server *http.Server
	cfg    *config.Config
}

// New は新しいServerを生成する。
func New(
	cfg *config.Config,
	h *handler.Handler,
	sessions session.Store,
	cookies *session.CookieCodec,
	reporter reporting.Reporter,
) *Server {
	// Ginモード設定
	gin.SetMode(cfg.GinMode)

	engine := gin.New()
	engine.SetHTMLTemplate(web.MustTemplates())

	// ミドルウェア登録
	engine.Use(TraceIDMiddleware())
	engine.Use(LoggingMiddleware())
	engine.Use(RecoveryMiddleware(reporter))

	// ルーティング
	SetupRouter(engine, h, SessionMiddleware(sessions, cookies, h.RespondError))

	return &Server{
		engine: engine,
		server: &http.Server{
			Addr:    cfg.ListenAddr(),
			Handler: engine,
		},
		cfg: cfg,
	}
}

// Handler はルーティング済みのhttp.Handlerを返す。
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run はサーバーを起動する。
func (s *Server) Run() error {
	slog.Info("starting server", "addr", s.cfg.ListenAddr())
	return s.server.ListenAndServe()
}

// Shutdown はサーバーをシャットダウンする。
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("shutting down server")
	return s.server.Shutdown(ctx)
}
