package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sfu/roster-photos-lti/apps/roster-photos/internal/config"
	"github.com/sfu/roster-photos-lti/apps/roster-photos/internal/lti"
	"github.com/sfu/roster-photos-lti/apps/roster-photos/internal/roster"
	"github.com/sfu/roster-photos-lti/apps/roster-photos/internal/session"
	"github.com/sfu/roster-photos-lti/apps/roster-photos/web"
	"github.com/sfu/roster-photos-lti/pkg/apperr"
	"github.com/sfu/roster-photos-lti/pkg/httputil"
	"github.com/sfu/roster-photos-lti/pkg/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testCookieSecret = "0123456789abcdef"

// stubValidator はテスト用のLaunchValidator
type stubValidator struct {
	payload model.LaunchPayload
	err     error
	lastReq *lti.LaunchRequest
}

func (s *stubValidator) Validate(_ context.Context, req *lti.LaunchRequest) (model.LaunchPayload, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.payload, nil
}

// memorySessions はテスト用のSessionSaver
type memorySessions struct {
	saved []*session.Session
	err   error
}

func (m *memorySessions) Save(_ context.Context, sess *session.Session) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, sess)
	return nil
}

// spyRoster は呼び出し回数を記録するRosterService
type spyRoster struct {
	result *roster.CourseRoster
	err    error
	calls  int
}

func (s *spyRoster) CourseRoster(_ context.Context, launch model.LaunchPayload) (*roster.CourseRoster, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

// stubReporter は固定の参照IDを返すReporter
type stubReporter struct {
	ref      string
	reported []error
	tags     []map[string]string
}

func (r *stubReporter) Report(_ context.Context, err error, tags map[string]string) string {
	r.reported = append(r.reported, err)
	r.tags = append(r.tags, tags)
	return r.ref
}

func (r *stubReporter) Flush(time.Duration) bool { return true }

type testDeps struct {
	validator *stubValidator
	sessions  *memorySessions
	roster    *spyRoster
	reporter  *stubReporter
}

func newTestDeps() *testDeps {
	return &testDeps{
		validator: &stubValidator{payload: testLaunch()},
		sessions:  &memorySessions{},
		roster:    &spyRoster{},
		reporter:  &stubReporter{ref: "ref-0001"},
	}
}

func (d *testDeps) handler(cfg *config.Config) *Handler {
	if cfg == nil {
		cfg = &config.Config{Env: "test"}
	}
	return NewHandler(d.validator, d.sessions, session.NewCookieCodec(testCookieSecret), d.roster, d.reporter, cfg)
}

func testLaunch() model.LaunchPayload {
	return model.LaunchPayload{
		model.ParamCourseID:     "77",
		model.ParamReturnURL:    "https://canvas.sfu.ca/courses/77",
		model.ParamContextTitle: "CMPT 120",
	}
}

// newTestEngine はテンプレートとルートを設定したエンジンを返す。
// sessがnilの場合はセッションを設定しない。
func newTestEngine(h *Handler, sess *session.Session) *gin.Engine {
	engine := gin.New()
	engine.SetHTMLTemplate(web.MustTemplates())
	engine.Use(func(c *gin.Context) {
		c.Set(TraceIDKey, "trace-test")
		if sess != nil {
			c.Set(SessionKey, sess)
		}
		c.Next()
	})
	engine.GET("/", h.HandleRoot)
	engine.GET("/isup", h.HandleIsUp)
	engine.POST("/launch", h.HandleLaunch)
	engine.GET("/:course", RequireCourseLaunch(), h.HandleCourse)
	return engine
}

func launchRequest() *http.Request {
	form := url.Values{"custom_canvas_course_id": {"77"}, "oauth_nonce": {"n"}}
	req := httptest.NewRequest(http.MethodPost, "/launch", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestHandleRootAndIsUp(t *testing.T) {
	engine := newTestEngine(newTestDeps().handler(nil), nil)

	tests := []struct {
		path string
		want string
	}{
		{"/", "Hello world\n"},
		{"/isup", "ok"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if w.Code != http.StatusOK {
				t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
			}
			if w.Body.String() != tt.want {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.want)
			}
		})
	}
}

func TestHandleLaunchSuccess(t *testing.T) {
	deps := newTestDeps()
	sess := session.New()
	engine := newTestEngine(deps.handler(nil), sess)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, launchRequest())

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body = %s", w.Code, http.StatusOK, w.Body.String())
	}
	body := w.Body.String()
	if !strings.Contains(body, `courseId: "77"`) {
		t.Errorf("launch page does not embed the course id: %s", body)
	}
	if !strings.Contains(body, "CMPT 120") {
		t.Error("launch page does not show the course title")
	}

	// 起動情報がセッションに記録され保存されていること
	if len(deps.sessions.saved) != 1 || deps.sessions.saved[0] != sess {
		t.Fatalf("saved sessions = %v, want the request session", deps.sessions.saved)
	}
	if !sess.HasLaunchForCourse("77") {
		t.Error("session does not hold the launch for course 77")
	}

	// 署名検証に渡したURLとパラメータ
	if got := deps.validator.lastReq.URL; got != "http://example.com/launch" {
		t.Errorf("launch url = %q, want %q", got, "http://example.com/launch")
	}
	if got := deps.validator.lastReq.Params.Get("oauth_nonce"); got != "n" {
		t.Errorf("oauth_nonce = %q, want n", got)
	}

	// セッションCookie
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != config.SessionCookieName {
		t.Fatalf("cookies = %v, want one %s cookie", cookies, config.SessionCookieName)
	}
	id, err := session.NewCookieCodec(testCookieSecret).Decode(cookies[0].Value)
	if err != nil {
		t.Fatalf("Decode(cookie) error = %v", err)
	}
	if id != sess.ID {
		t.Errorf("cookie session id = %q, want %q", id, sess.ID)
	}
	if !cookies[0].HttpOnly {
		t.Error("session cookie should be HttpOnly")
	}
}

func TestHandleLaunchProductionCookie(t *testing.T) {
	deps := newTestDeps()
	engine := newTestEngine(deps.handler(&config.Config{Env: config.EnvProduction}), nil)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, launchRequest())

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("cookies = %v, want one", cookies)
	}
	if !cookies[0].Secure {
		t.Error("production cookie should be Secure")
	}
	if cookies[0].SameSite != http.SameSiteNoneMode {
		t.Errorf("SameSite = %v, want None", cookies[0].SameSite)
	}
}

func TestHandleLaunchForwardedURL(t *testing.T) {
	deps := newTestDeps()
	engine := newTestEngine(deps.handler(nil), nil)

	req := launchRequest()
	req.Header.Set("X-Forwarded-Proto", "https, http")
	req.Header.Set("X-Forwarded-Host", "roster.sfu.ca")

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if got := deps.validator.lastReq.URL; got != "https://roster.sfu.ca/launch" {
		t.Errorf("launch url = %q, want %q", got, "https://roster.sfu.ca/launch")
	}
}

func TestHandleLaunchRejected(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid signature", lti.ErrInvalidSignature, http.StatusForbidden},
		{"replayed nonce", lti.ErrReplayedNonce, http.StatusForbidden},
		{"missing params", lti.ErrMissingLaunchParam, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := newTestDeps()
			deps.validator.err = tt.err
			sess := session.New()
			engine := newTestEngine(deps.handler(nil), sess)

			w := httptest.NewRecorder()
			engine.ServeHTTP(w, launchRequest())

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if len(deps.sessions.saved) != 0 {
				t.Error("rejected launch must not be saved")
			}
			if sess.HasLaunchForCourse("77") {
				t.Error("rejected launch must not be recorded")
			}
			if len(w.Result().Cookies()) != 0 {
				t.Error("rejected launch must not set a cookie")
			}
			if len(deps.reporter.reported) != 0 {
				t.Error("trust failures are not reported as unexpected errors")
			}
		})
	}
}

func TestHandleLaunchNonceStoreFailure(t *testing.T) {
	deps := newTestDeps()
	deps.validator.err = &lti.NonceStoreError{Cause: errors.New("connection refused")}
	engine := newTestEngine(deps.handler(nil), nil)

	t.Run("html", func(t *testing.T) {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, launchRequest())

		if w.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
		}
		if !strings.Contains(w.Body.String(), "ref-0001") {
			t.Errorf("body does not contain the reference: %s", w.Body.String())
		}
	})

	t.Run("json", func(t *testing.T) {
		req := launchRequest()
		req.Header.Set("Accept", "application/json")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
		}
		if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, httputil.ContentType) {
			t.Errorf("Content-Type = %q, want %q", ct, httputil.ContentType)
		}
		var problem httputil.ProblemDetail
		if err := json.Unmarshal(w.Body.Bytes(), &problem); err != nil {
			t.Fatalf("json.Unmarshal() error = %v", err)
		}
		if problem.Reference != "ref-0001" {
			t.Errorf("Reference = %q, want ref-0001", problem.Reference)
		}
	})

	if len(deps.reporter.reported) != 2 {
		t.Errorf("reported errors = %d, want 2", len(deps.reporter.reported))
	}
}

func TestHandleLaunchSessionSaveFailure(t *testing.T) {
	deps := newTestDeps()
	deps.sessions.err = apperr.NewValkeyError("SET", "sess:x", errors.New("READONLY"))
	engine := newTestEngine(deps.handler(nil), nil)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, launchRequest())

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("cookie must not be set when the session was not saved")
	}
	if len(deps.reporter.reported) != 1 {
		t.Errorf("reported errors = %d, want 1", len(deps.reporter.reported))
	}
}

func TestExternalURL(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		headers map[string]string
		want    string
	}{
		{"plain", "http://roster.sfu.ca/launch", nil, "http://roster.sfu.ca/launch"},
		{"query dropped", "http://roster.sfu.ca/launch?x=1", nil, "http://roster.sfu.ca/launch"},
		{"tls", "https://roster.sfu.ca/launch", nil, "https://roster.sfu.ca/launch"},
		{"forwarded", "http://10.0.0.5:3000/launch", map[string]string{"X-Forwarded-Proto": "https", "X-Forwarded-Host": "roster.sfu.ca"}, "https://roster.sfu.ca/launch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.target, nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := externalURL(req); got != tt.want {
				t.Errorf("externalURL() = %q, want %q", got, tt.want)
			}
		})
	}
}
