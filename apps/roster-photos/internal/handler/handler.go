// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/sfu/roster-photos-lti/apps/roster-photos/internal/config"
	"github.com/sfu/roster-photos-lti/apps/roster-photos/internal/reporting"
	"github.com/sfu/roster-photos-lti/apps/roster-photos/internal/session"
	"github.com/sfu/roster-photos-lti/pkg/logging"
)

// ginコンテキストのキー
const (
	TraceIDKey = "trace_id"
	SessionKey = "session"
	LaunchKey  = "launch"
)

// Handler はroster-photosのHTTPハンドラー。
type Handler struct {
	validator    LaunchValidator
	sessions     SessionSaver
	cookies      *session.CookieCodec
	roster       RosterService
	reporter     reporting.Reporter
	secureCookie bool
}

// NewHandler は新しいHandlerを生成する。
func NewHandler(
	validator LaunchValidator,
	sessions SessionSaver,
	cookies *session.CookieCodec,
	roster RosterService,
	reporter reporting.Reporter,
	cfg *config.Config,
) *Handler {
	return &Handler{
		validator:    validator,
		sessions:     sessions,
		cookies:      cookies,
		roster:       roster,
		reporter:     reporter,
		secureCookie: cfg.IsProduction(),
	}
}

// CurrentSession はリクエストのセッションを返す。未設定の場合は新しいセッションを設定する。
func CurrentSession(c *gin.Context) *session.Session {
	if v, ok := c.Get(SessionKey); ok {
		if sess, ok := v.(*session.Session); ok && sess != nil {
			return sess
		}
	}
	sess := session.New()
	c.Set(SessionKey, sess)
	return sess
}

// requestContext はトレースIDを含むリクエストコンテキストを返す。
func requestContext(c *gin.Context) context.Context {
	return logging.ContextWithTraceID(c.Request.Context(), c.GetString(TraceIDKey))
}
