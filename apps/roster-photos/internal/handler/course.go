package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sfu/roster-photos-lti/apps/roster-photos/internal/session"
	"github.com/sfu/roster-photos-lti/apps/roster-photos/web"
	"github.com/sfu/roster-photos-lti/pkg/apperr"
	"github.com/sfu/roster-photos-lti/pkg/httputil"
	"github.com/sfu/roster-photos-lti/pkg/logging"
	"github.com/sfu/roster-photos-lti/pkg/model"
)

// RequireCourseLaunch はセッションに対象コースの起動情報がある場合のみ後続を実行する。
// 起動情報がない場合は空ボディの403で中断する。
func RequireCourseLaunch() gin.HandlerFunc {
	return func(c *gin.Context) {
		courseID := c.Param("course")
		v, _ := c.Get(SessionKey)
		sess, _ := v.(*session.Session)
		launch, ok := sess.LaunchFor(courseID)
		if !ok {
			slog.Warn("course access denied",
				logging.WithEventID("COURSE_ACCESS_DENIED"),
				logging.WithTraceID(c.GetString(TraceIDKey)),
				logging.WithCourseID(courseID),
				logging.WithError(apperr.ErrAuthorizationDenied),
			)
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Set(LaunchKey, launch)
		c.Next()
	}
}

// HandleCourse はGET /:course のハンドラー。
// Accept: application/json の場合はJSON、それ以外はHTML断片を返す。
func (h *Handler) HandleCourse(c *gin.Context) {
	launch, ok := c.Get(LaunchKey)
	payload, isPayload := launch.(model.LaunchPayload)
	if !ok || !isPayload {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	result, err := h.roster.CourseRoster(requestContext(c), payload)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	if httputil.WantsJSON(c) {
		entries := result.Entries
		if entries == nil {
			entries = []model.PresentationRecord{}
		}
		c.JSON(http.StatusOK, gin.H{
			"courseId": result.CourseID,
			"empty":    result.Empty,
			"entries":  entries,
		})
		return
	}

	if result.Empty {
		c.HTML(http.StatusOK, web.TemplateEmpty, result)
		return
	}
	c.HTML(http.StatusOK, web.TemplateGrid, result)
}
