package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/sfu/roster-photos-lti/apps/roster-photos/internal/lti"
	"github.com/sfu/roster-photos-lti/apps/roster-photos/web"
	"github.com/sfu/roster-photos-lti/pkg/apperr"
	"github.com/sfu/roster-photos-lti/pkg/httputil"
	"github.com/sfu/roster-photos-lti/pkg/logging"
)

// 利用者向けメッセージ
const (
	msgLaunchRejected = "This launch could not be verified. Please open Roster Photos again from Canvas."
	msgBadLaunch      = "This launch is missing required information. Please open Roster Photos again from Canvas."
	msgUnexpected     = "Sorry, there was a problem retrieving the roster photos for this course."
)

// RespondError はエラーを分類してレスポンスを書き込み、処理を中断する。
// 予期しないエラーは報告し、参照IDを含めて500を返す。
func (h *Handler) RespondError(c *gin.Context, err error) {
	traceID := c.GetString(TraceIDKey)

	switch {
	case errors.Is(err, lti.ErrInvalidSignature), errors.Is(err, lti.ErrReplayedNonce):
		slog.Warn("launch rejected",
			logging.WithEventID("LTI_LAUNCH_REJECTED"),
			logging.WithTraceID(traceID),
			logging.WithError(err),
		)
		h.writeProblem(c, httputil.Forbidden("launch could not be verified"), msgLaunchRejected)

	case errors.Is(err, lti.ErrMissingLaunchParam), errors.Is(err, apperr.ErrInvalidRequest):
		slog.Warn("invalid launch request",
			logging.WithEventID("LTI_LAUNCH_INVALID"),
			logging.WithTraceID(traceID),
			logging.WithError(err),
		)
		h.writeProblem(c, httputil.BadRequest(err.Error()), msgBadLaunch)

	default:
		tags := map[string]string{"path": c.FullPath()}
		if courseID := c.Param("course"); courseID != "" {
			tags[logging.FieldCourseID] = courseID
		}
		var upErr *apperr.UpstreamError
		if errors.As(err, &upErr) {
			tags[logging.FieldUpstream] = upErr.Source
		}
		if errors.Is(err, apperr.ErrValkeyConnection) {
			tags["valkey"] = "unreachable"
		}
		ref := h.reporter.Report(requestContext(c), err, tags)
		h.writeProblem(c, httputil.InternalServerError(msgUnexpected).WithReference(ref), msgUnexpected)
	}
}

// writeProblem はAcceptヘッダーに応じてProblem JSONかHTML断片を返す。
func (h *Handler) writeProblem(c *gin.Context, problem *httputil.ProblemDetail, message string) {
	if httputil.WantsJSON(c) {
		httputil.AbortWithError(c, problem)
		return
	}
	c.HTML(problem.Status, web.TemplateError, gin.H{
		"Message":   message,
		"Reference": problem.Reference,
	})
	c.Abort()
}
