package canvas

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sfu/roster-photos-lti/apps/roster-photos/internal/config"
	"github.com/sfu/roster-photos-lti/apps/roster-photos/internal/upstream"
	"github.com/sfu/roster-photos-lti/pkg/apperr"
	"github.com/sfu/roster-photos-lti/pkg/model"
)

func newTestClient() *Client {
	return NewClient(&config.Config{CanvasAPIToken: "canvas-token", Env: "test"})
}

func launchFor(origin string) model.LaunchPayload {
	return model.LaunchPayload{
		model.ParamCourseID:  "77",
		model.ParamReturnURL: origin + "/courses/77/external_content/success/external_tool_redirect",
	}
}

func TestFetchRosterSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/api/v1/courses/77/users" {
			t.Errorf("path = %s, want /api/v1/courses/77/users", r.URL.Path)
		}
		if got := r.URL.Query()["enrollment_type[]"]; len(got) != 1 || got[0] != "student" {
			t.Errorf("enrollment_type[] = %v, want [student]", got)
		}
		if got := r.URL.Query().Get("per_page"); got != "3000" {
			t.Errorf("per_page = %q, want 3000", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer canvas-token" {
			t.Errorf("Authorization = %q, want Bearer canvas-token", got)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"id": 501, "name": "Ada Lovelace", "sortable_name": "Lovelace, Ada", "short_name": "Ada", "sis_user_id": "301000001", "login_id": "alovelace"},
			{"id": 502, "name": "Cher", "sortable_name": "Cher", "short_name": "Cher", "sis_user_id": "301000002", "login_id": "cher"},
		})
	}))
	defer server.Close()

	roster, err := newTestClient().FetchRoster(context.Background(), launchFor(server.URL))
	if err != nil {
		t.Fatalf("FetchRoster() error = %v", err)
	}
	if len(roster) != 2 {
		t.Fatalf("len(roster) = %d, want 2", len(roster))
	}
	if roster[0].ID != 501 || roster[0].SortableName != "Lovelace, Ada" || roster[0].SISUserID != "301000001" {
		t.Errorf("roster[0] = %+v", roster[0])
	}
	if roster[1].LoginID != "cher" {
		t.Errorf("roster[1].LoginID = %q, want cher", roster[1].LoginID)
	}
}

func TestFetchRosterLogsRemainingPages(t *testing.T) {
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Link", `<`+"http://"+r.Host+`/api/v1/courses/77/users?page=1>; rel="current",<`+"http://"+r.Host+`/api/v1/courses/77/users?page=2>; rel="next"`)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id": 501, "sortable_name": "Lovelace, Ada", "sis_user_id": "301000001"}]`))
	}))
	defer server.Close()

	roster, err := newTestClient().FetchRoster(context.Background(), launchFor(server.URL))
	if err != nil {
		t.Fatalf("FetchRoster() error = %v", err)
	}
	if len(roster) != 1 {
		t.Errorf("len(roster) = %d, want 1", len(roster))
	}
	if !strings.Contains(logs.String(), "CANVAS_ROSTER_TRUNCATED") {
		t.Errorf("truncation was not logged: %s", logs.String())
	}
}

func TestHasNextPage(t *testing.T) {
	tests := []struct {
		name string
		link string
		want bool
	}{
		{"empty", "", false},
		{"single page", `<https://canvas.sfu.ca/api/v1/courses/77/users?page=1>; rel="current", <https://canvas.sfu.ca/api/v1/courses/77/users?page=1>; rel="last"`, false},
		{"next present", `<https://canvas.sfu.ca/a?page=1>; rel="current",<https://canvas.sfu.ca/a?page=2>; rel="next"`, true},
		{"unquoted", `<https://canvas.sfu.ca/a?page=2>; rel=next`, true},
		{"multiple rel values", `<https://canvas.sfu.ca/a?page=2>; rel="next last"`, true},
		{"no params", `<https://canvas.sfu.ca/a?page=2>`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hasNextPage(tt.link); got != tt.want {
				t.Errorf("hasNextPage(%q) = %v, want %v", tt.link, got, tt.want)
			}
		})
	}
}

func TestFetchRosterEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("[]"))
	}))
	defer server.Close()

	roster, err := newTestClient().FetchRoster(context.Background(), launchFor(server.URL))
	if err != nil {
		t.Fatalf("FetchRoster() error = %v", err)
	}
	if roster == nil || len(roster) != 0 {
		t.Errorf("roster = %v, want empty non-nil slice", roster)
	}
}

func TestFetchRosterHTTPErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		unauthFlag bool
	}{
		{"unauthorized", http.StatusUnauthorized, true},
		{"not found", http.StatusNotFound, false},
		{"server error", http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"errors":[{"message":"nope"}]}`))
			}))
			defer server.Close()

			_, err := newTestClient().FetchRoster(context.Background(), launchFor(server.URL))
			var fetchErr *RosterFetchError
			if !errors.As(err, &fetchErr) {
				t.Fatalf("FetchRoster() error = %v, want *RosterFetchError", err)
			}
			if fetchErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", fetchErr.StatusCode, tt.status)
			}
			if fetchErr.IsUnauthorized() != tt.unauthFlag {
				t.Errorf("IsUnauthorized() = %v, want %v", fetchErr.IsUnauthorized(), tt.unauthFlag)
			}
		})
	}
}

func TestFetchRosterInvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"an array"}`))
	}))
	defer server.Close()

	_, err := newTestClient().FetchRoster(context.Background(), launchFor(server.URL))
	if !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("FetchRoster() error = %v, want ErrInvalidResponse", err)
	}
}

func TestFetchRosterConnectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	origin := server.URL
	server.Close()

	_, err := newTestClient().FetchRoster(context.Background(), launchFor(origin))
	var connErr *upstream.ConnectionError
	if !errors.As(err, &connErr) {
		t.Errorf("FetchRoster() error = %v, want *upstream.ConnectionError", err)
	}
}

func TestFetchRosterCircuitBreaker(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient()
	for i := 0; i < config.CBFailureThreshold; i++ {
		_, _ = client.FetchRoster(context.Background(), launchFor(server.URL))
	}

	_, err := client.FetchRoster(context.Background(), launchFor(server.URL))
	if !errors.Is(err, apperr.ErrCircuitOpen) {
		t.Fatalf("FetchRoster() error = %v, want ErrCircuitOpen", err)
	}
	if calls != config.CBFailureThreshold {
		t.Errorf("upstream calls = %d, want %d", calls, config.CBFailureThreshold)
	}
}

func TestFetchRosterClientErrorsDoNotTripBreaker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient()
	for i := 0; i < config.CBFailureThreshold+1; i++ {
		_, err := client.FetchRoster(context.Background(), launchFor(server.URL))
		if errors.Is(err, apperr.ErrCircuitOpen) {
			t.Fatalf("call %d: circuit opened on 404 responses", i)
		}
	}
}

func TestFetchRosterInvalidLaunch(t *testing.T) {
	_, err := newTestClient().FetchRoster(context.Background(), model.LaunchPayload{model.ParamCourseID: "77"})
	if err == nil {
		t.Error("FetchRoster() expected error without return url")
	}
}

func TestRosterURL(t *testing.T) {
	if got := RosterURL("https://canvas.sfu.ca", "77"); got != "https://canvas.sfu.ca/api/v1/courses/77/users" {
		t.Errorf("RosterURL() = %q", got)
	}
	if got := RosterURL("https://canvas.sfu.ca", "a/b"); got != "https://canvas.sfu.ca/api/v1/courses/a%2Fb/users" {
		t.Errorf("RosterURL() = %q, want escaped course id", got)
	}
}

func TestRosterFetchErrorClassification(t *testing.T) {
	tests := []struct {
		status           int
		wantUnauthorized bool
		wantNotFound     bool
		wantEvent        string
	}{
		{401, true, false, "CANVAS_AUTH_ERR"},
		{403, true, false, "CANVAS_AUTH_ERR"},
		{404, false, true, "CANVAS_COURSE_NOT_FOUND"},
		{500, false, false, "CANVAS_API_ERR"},
	}

	for _, tt := range tests {
		err := &RosterFetchError{StatusCode: tt.status}
		if got := err.IsUnauthorized(); got != tt.wantUnauthorized {
			t.Errorf("%d: IsUnauthorized() = %v, want %v", tt.status, got, tt.wantUnauthorized)
		}
		if got := err.IsNotFound(); got != tt.wantNotFound {
			t.Errorf("%d: IsNotFound() = %v, want %v", tt.status, got, tt.wantNotFound)
		}
		if got := err.eventID(); got != tt.wantEvent {
			t.Errorf("%d: eventID() = %q, want %q", tt.status, got, tt.wantEvent)
		}
	}
}
