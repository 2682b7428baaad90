// Package canvas はCanvas REST APIから名簿を取得する。
package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sfu/roster-photos-lti/apps/roster-photos/internal/config"
	"github.com/sfu/roster-photos-lti/apps/roster-photos/internal/upstream"
	"github.com/sfu/roster-photos-lti/pkg/logging"
	"github.com/sfu/roster-photos-lti/pkg/model"
	"github.com/sony/gobreaker"
)

const serviceName = "canvas"

// Client はCanvas名簿APIクライアント
type Client struct {
	httpClient *resty.Client
	cb         *gobreaker.CircuitBreaker
	token      string
}

// NewClient は新しいCanvasクライアントを生成する。
func NewClient(cfg *config.Config) *Client {
	return &Client{
		httpClient: upstream.NewHTTPClient(config.CanvasRequestTimeout, cfg.IsProduction()),
		cb:         upstream.NewCircuitBreaker(config.CBNameCanvas),
		token:      cfg.CanvasAPIToken,
	}
}

// RosterURL はコースの学生名簿を取得するURLを返す。
func RosterURL(origin, courseID string) string {
	return origin + "/api/v1/courses/" + url.PathEscape(courseID) + "/users"
}

// FetchRoster は起動元Canvasからコースの学生名簿を取得する。
// 空配列は正常な結果として扱う。
func (c *Client) FetchRoster(ctx context.Context, launch model.LaunchPayload) ([]model.RosterEntry, error) {
	origin, err := launch.PlatformOrigin()
	if err != nil {
		return nil, err
	}
	traceID := logging.TraceIDFromContext(ctx)
	start := time.Now()

	result, err := c.cb.Execute(func() (any, error) {
		resp, err := c.httpClient.R().
			SetContext(ctx).
			SetAuthToken(c.token).
			SetHeader("Accept", "application/json").
			SetQueryParamsFromValues(url.Values{
				"enrollment_type[]": {"student"},
				"per_page":          {strconv.Itoa(config.RosterPageSize)},
			}).
			Get(RosterURL(origin, launch.CourseID()))
		if err != nil {
			return nil, &upstream.ConnectionError{Service: serviceName, Cause: err}
		}

		statusCode := resp.StatusCode()
		if statusCode < http.StatusOK || statusCode >= http.StatusMultipleChoices {
			fetchErr := &RosterFetchError{
				StatusCode: statusCode,
				Message:    upstream.TruncateBody(resp.Body(), 256),
			}
			slog.Error("canvas api error",
				"event_id", fetchErr.eventID(),
				logging.WithUpstream(serviceName),
				"trace_id", traceID,
				"course_id", launch.CourseID(),
				"error", fetchErr.Error(),
				"http_status", statusCode,
				"latency_ms", time.Since(start).Milliseconds(),
			)
			if upstream.CountsAsFailure(statusCode) {
				return nil, fetchErr
			}
			// CB対象外エラーはnilを返してCBカウントに含めない
			return fetchErr, nil
		}

		// 名簿は1リクエストで取得する。次ページが残る場合は切り捨てを記録する
		if hasNextPage(resp.Header().Get("Link")) {
			slog.Warn("canvas roster has more pages than fetched",
				"event_id", "CANVAS_ROSTER_TRUNCATED",
				logging.WithUpstream(serviceName),
				"trace_id", traceID,
				"course_id", launch.CourseID(),
				"per_page", config.RosterPageSize,
			)
		}

		slog.Debug("canvas api success",
			"trace_id", traceID,
			"course_id", launch.CourseID(),
			"latency_ms", time.Since(start).Milliseconds(),
		)
		return resp.Body(), nil
	})
	if err != nil {
		return nil, upstream.BreakerError(err)
	}

	if fetchErr, ok := result.(*RosterFetchError); ok {
		return nil, fetchErr
	}
	body, ok := result.([]byte)
	if !ok {
		return nil, ErrInvalidResponse
	}

	var roster []model.RosterEntry
	if err := json.Unmarshal(body, &roster); err != nil {
		return nil, fmt.Errorf("%w: json unmarshal: %v", ErrInvalidResponse, err)
	}
	if roster == nil {
		roster = []model.RosterEntry{}
	}
	return roster, nil
}

// hasNextPage はLinkヘッダーにrel="next"が含まれるかを返す。
func hasNextPage(link string) bool {
	for _, part := range strings.Split(link, ",") {
		_, params, ok := strings.Cut(part, ";")
		if !ok {
			continue
		}
		for _, param := range strings.Split(params, ";") {
			key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
			if !ok || !strings.EqualFold(key, "rel") {
				continue
			}
			for _, rel := range strings.Fields(strings.Trim(value, `"`)) {
				if strings.EqualFold(rel, "next") {
					return true
				}
			}
		}
	}
	return false
}
