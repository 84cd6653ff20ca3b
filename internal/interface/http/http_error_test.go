package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/packwise/internal/infra/config"
	apperrors "github.com/yanqian/packwise/pkg/errors"
)

func TestAsHTTPError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "invalid input", err: apperrors.Wrap(apperrors.CodeInvalidInput, "destination cannot be empty", nil), status: http.StatusBadRequest, code: "invalid_request"},
		{name: "deadline", err: fmt.Errorf("wait: %w", context.DeadlineExceeded), status: http.StatusGatewayTimeout, code: "timeout"},
		{name: "client gone", err: context.Canceled, status: statusClientClosedRequest, code: "client_closed_request"},
		{name: "upstream rate limited", err: apperrors.Wrap(apperrors.CodeLLMRateLimited, "429", nil), status: http.StatusTooManyRequests, code: "upstream_rate_limited"},
		{name: "transport", err: apperrors.Wrap(apperrors.CodeTransport, "dial", errors.New("refused")), status: http.StatusBadGateway, code: "upstream_unavailable"},
		{name: "unknown", err: errors.New("boom"), status: http.StatusInternalServerError, code: "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := asHTTPError(tc.err)
			require.Equal(t, tc.status, got.Status)
			require.Equal(t, tc.code, got.Code)
			require.ErrorIs(t, got, tc.err)
		})
	}

	require.Nil(t, asHTTPError(nil))
	existing := NewHTTPError(http.StatusTeapot, "teapot", "short and stout", nil)
	require.Same(t, existing, asHTTPError(fmt.Errorf("wrapped: %w", existing)))
}

func TestInvalidRequestKeepsMessage(t *testing.T) {
	got := invalidRequest("prompt cannot be empty", nil)
	require.Equal(t, http.StatusBadRequest, got.Status)
	require.Equal(t, "prompt cannot be empty", got.Message)
}

func TestIPRateLimiterReportsRefillWait(t *testing.T) {
	limiter := newIPRateLimiter(config.RateLimitConfig{Enabled: true, RequestsPerMinute: 60, Burst: 1})
	now := time.Date(2025, time.July, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	ok, _ := limiter.allow("10.0.0.1")
	require.True(t, ok)

	ok, wait := limiter.allow("10.0.0.1")
	require.False(t, ok)
	require.Equal(t, time.Second, wait)

	ok, _ = limiter.allow("10.0.0.2")
	require.True(t, ok, "buckets are per client")

	now = now.Add(time.Second)
	ok, _ = limiter.allow("10.0.0.1")
	require.True(t, ok)
}
