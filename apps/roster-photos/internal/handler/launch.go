package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sfu/roster-photos-lti/apps/roster-photos/internal/config"
	"github.com/sfu/roster-photos-lti/apps/roster-photos/internal/lti"
	"github.com/sfu/roster-photos-lti/apps/roster-photos/web"
	"github.com/sfu/roster-photos-lti/pkg/apperr"
	"github.com/sfu/roster-photos-lti/pkg/logging"
)

// HandleLaunch はPOST /launch のハンドラー。
// 検証に成功した起動のみをセッションに記録し、コースの表示ページを返す。
func (h *Handler) HandleLaunch(c *gin.Context) {
	ctx := requestContext(c)

	if err := c.Request.ParseForm(); err != nil {
		h.RespondError(c, apperr.NewValidationError("body", err.Error()))
		return
	}

	payload, err := h.validator.Validate(ctx, &lti.LaunchRequest{
		Method: c.Request.Method,
		URL:    externalURL(c.Request),
		Params: c.Request.Form,
	})
	if err != nil {
		h.RespondError(c, err)
		return
	}

	courseID := payload.CourseID()
	sess := CurrentSession(c)
	relaunch := sess.HasLaunchForCourse(courseID)
	sess.RecordLaunch(courseID, payload)
	if err := h.sessions.Save(ctx, sess); err != nil {
		h.RespondError(c, err)
		return
	}
	h.setSessionCookie(c, sess.ID)

	slog.Info("launch accepted",
		logging.WithEventID("LTI_LAUNCH_OK"),
		logging.WithTraceID(c.GetString(TraceIDKey)),
		logging.WithCourseID(courseID),
		"canvas_user_id", payload.UserID(),
		"relaunch", relaunch,
	)

	c.HTML(http.StatusOK, web.TemplateLaunch, gin.H{
		"CourseID": courseID,
		"Title":    payload.ContextTitle(),
	})
}

// setSessionCookie はセッションCookieを設定する。
// CanvasのiframeからCookieを送るため、本番環境ではSameSite=None; Secureとする。
func (h *Handler) setSessionCookie(c *gin.Context, id string) {
	if h.secureCookie {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteLaxMode)
	}
	c.SetCookie(config.SessionCookieName, h.cookies.Encode(id),
		int(config.SessionTTL.Seconds()), "/", "", h.secureCookie, true)
}

// externalURL はリバースプロキシを考慮して、ツール利用者が送信した絶対URLを復元する。
func externalURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := firstHeaderValue(r.Header.Get("X-Forwarded-Proto")); proto != "" {
		scheme = proto
	}
	host := r.Host
	if fwd := firstHeaderValue(r.Header.Get("X-Forwarded-Host")); fwd != "" {
		host = fwd
	}
	return scheme + "://" + host + r.URL.EscapedPath()
}

func firstHeaderValue(v string) string {
	first, _, _ := strings.Cut(v, ",")
	return strings.TrimSpace(first)
}
