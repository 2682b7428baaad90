package upstream

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/sfu/roster-photos-lti/apps/roster-photos/internal/config"
	"github.com/sfu/roster-photos-lti/pkg/apperr"
	"github.com/sony/gobreaker"
)

func TestNewCircuitBreakerTripsAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker("test")
	failure := errors.New("boom")

	for i := 0; i < config.CBFailureThreshold; i++ {
		_, _ = cb.Execute(func() (any, error) { return nil, failure })
	}

	if cb.State() != gobreaker.StateOpen {
		t.Fatalf("State() = %v, want %v", cb.State(), gobreaker.StateOpen)
	}

	_, err := cb.Execute(func() (any, error) { return "ok", nil })
	if !errors.Is(BreakerError(err), apperr.ErrCircuitOpen) {
		t.Errorf("BreakerError(%v) is not ErrCircuitOpen", err)
	}
}

func TestBreakerErrorPassthrough(t *testing.T) {
	cause := errors.New("other")
	if got := BreakerError(cause); got != cause {
		t.Errorf("BreakerError() = %v, want %v", got, cause)
	}
	if got := BreakerError(gobreaker.ErrTooManyRequests); !errors.Is(got, apperr.ErrCircuitOpen) {
		t.Errorf("BreakerError(ErrTooManyRequests) = %v, want ErrCircuitOpen", got)
	}
}

func TestNewHTTPClientTLS(t *testing.T) {
	tests := []struct {
		name         string
		production   bool
		wantInsecure bool
	}{
		{"production verifies certificates", true, false},
		{"development skips verification", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewHTTPClient(time.Second, tt.production)
			if client.GetClient().Timeout != time.Second {
				t.Errorf("Timeout = %v, want %v", client.GetClient().Timeout, time.Second)
			}
			transport, ok := client.GetClient().Transport.(*http.Transport)
			if !ok {
				t.Fatalf("Transport is %T, want *http.Transport", client.GetClient().Transport)
			}
			insecure := transport.TLSClientConfig != nil && transport.TLSClientConfig.InsecureSkipVerify
			if insecure != tt.wantInsecure {
				t.Errorf("InsecureSkipVerify = %v, want %v", insecure, tt.wantInsecure)
			}
		})
	}
}

func TestConnectionError(t *testing.T) {
	cause := &tls.CertificateVerificationError{Err: fmt.Errorf("unknown authority")}
	err := &ConnectionError{Service: "canvas", Cause: cause}

	var target *tls.CertificateVerificationError
	if !errors.As(err, &target) {
		t.Error("errors.As() should find wrapped cause")
	}
	if err.Error() == "" {
		t.Error("Error() should not be empty")
	}
}

func TestCountsAsFailure(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{200, false},
		{401, false},
		{404, false},
		{500, true},
		{501, false},
		{502, true},
		{503, true},
	}

	for _, tt := range tests {
		if got := CountsAsFailure(tt.status); got != tt.want {
			t.Errorf("CountsAsFailure(%d) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestTruncateBody(t *testing.T) {
	if got := TruncateBody([]byte("short"), 10); got != "short" {
		t.Errorf("TruncateBody() = %q, want %q", got, "short")
	}
	if got := TruncateBody([]byte("0123456789abc"), 10); got != "0123456789..." {
		t.Errorf("TruncateBody() = %q, want %q", got, "0123456789...")
	}

	// "エラー"は1文字3バイト。4バイト目で切ると2文字目の途中になる
	got := TruncateBody([]byte("エラー発生"), 4)
	if got != "エ..." {
		t.Errorf("TruncateBody() = %q, want %q", got, "エ...")
	}
	if !utf8.ValidString(got) {
		t.Errorf("TruncateBody() returned invalid UTF-8: %q", got)
	}
}
