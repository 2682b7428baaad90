package server

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sfu/roster-photos-lti/apps/roster-photos/internal/config"
	"github.com/sfu/roster-photos-lti/apps/roster-photos/internal/handler"
	"github.com/sfu/roster-photos-lti/apps/roster-photos/internal/reporting"
	"github.com/sfu/roster-photos-lti/apps/roster-photos/internal/session"
	"github.com/sfu/roster-photos-lti/pkg/apperr"
	"github.com/sfu/roster-photos-lti/pkg/httputil"
	"github.com/sfu/roster-photos-lti/pkg/logging"
)

const traceIDHeader = "X-Trace-ID"

// TraceIDMiddleware はX-Trace-IDヘッダからトレースIDを取得する。
// ヘッダがない場合は生成し、レスポンスヘッダにも設定する。
func TraceIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(traceIDHeader)
		if traceID == "" {
			traceID = uuid.New().String()
		}
		c.Set(handler.TraceIDKey, traceID)
		c.Header(traceIDHeader, traceID)
		c.Next()
	}
}

// LoggingMiddleware はリクエストログを出力する。
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		slog.Info("request completed",
			logging.WithTraceID(c.GetString(handler.TraceIDKey)),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			logging.WithSrcIP(c.ClientIP()),
			logging.WithHTTPStatus(c.Writer.Status()),
			logging.WithLatency(time.Since(start).Milliseconds()),
		)
	}
}

// RecoveryMiddleware はパニックからの復旧を行う。
// パニックはエラーとして報告し、参照IDを含む500を返す。
func RecoveryMiddleware(reporter reporting.Reporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				traceID := c.GetString(handler.TraceIDKey)
				err, ok := r.(error)
				if !ok {
					err = fmt.Errorf("panic: %v", r)
				}
				slog.Error("panic recovered",
					logging.WithEventID("PANIC_RECOVERED"),
					logging.WithTraceID(traceID),
					logging.WithError(err),
				)
				ref := reporter.Report(logging.ContextWithTraceID(c.Request.Context(), traceID), err,
					map[string]string{"path": c.Request.URL.Path})
				httputil.AbortWithError(c, httputil.InternalServerError("An unexpected error occurred").WithReference(ref))
			}
		}()
		c.Next()
	}
}

// SessionMiddleware はCookieからセッションを復元してコンテキストに設定する。
// Cookieがない・不正・期限切れの場合は新しいセッションを開始する。
// ストア障害時はfailを呼び出して処理を中断する。
func SessionMiddleware(store session.Store, codec *session.CookieCodec, fail func(*gin.Context, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := loadSession(c, store, codec)
		if err != nil {
			fail(c, err)
			c.Abort()
			return
		}
		c.Set(handler.SessionKey, sess)
		c.Next()
	}
}

func loadSession(c *gin.Context, store session.Store, codec *session.CookieCodec) (*session.Session, error) {
	value, err := c.Cookie(config.SessionCookieName)
	if err != nil || value == "" {
		return session.New(), nil
	}

	id, err := codec.Decode(value)
	if err != nil {
		slog.Debug("session cookie rejected",
			logging.WithTraceID(c.GetString(handler.TraceIDKey)),
			logging.WithError(err),
		)
		return session.New(), nil
	}

	sess, err := store.Load(c.Request.Context(), id)
	switch {
	case err == nil:
		return sess, nil
	case errors.Is(err, apperr.ErrSessionNotFound), errors.Is(err, apperr.ErrSessionInvalid):
		return session.New(), nil
	default:
		return nil, err
	}
}
