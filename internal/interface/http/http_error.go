package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yanqian/packwise/pkg/errors"
)

// statusClientClosedRequest is the nginx convention for a caller that hung up.
const statusClientClosedRequest = 499

// HTTPError is the transport view of a failure: status, stable code and a
// message safe to show to clients.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

// asHTTPError maps context and application errors onto responses. The
// engine itself never fails, so only request validation and cancellation
// reach this point in practice.
func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return NewHTTPError(http.StatusGatewayTimeout, "timeout", "request timed out", err)
	case errors.Is(err, context.Canceled):
		return NewHTTPError(statusClientClosedRequest, "client_closed_request", "request cancelled", err)
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case apperrors.CodeInvalidInput:
			return NewHTTPError(http.StatusBadRequest, "invalid_request", appErr.Message, err)
		case apperrors.CodeLLMRateLimited:
			return NewHTTPError(http.StatusTooManyRequests, "upstream_rate_limited", "upstream model is rate limited", err)
		case apperrors.CodeTransport, apperrors.CodeModelUnavailable, apperrors.CodeLLMServerError:
			return NewHTTPError(http.StatusBadGateway, "upstream_unavailable", "upstream service unavailable", err)
		}
	}

	return NewHTTPError(http.StatusInternalServerError, "internal_error", "something went wrong", err)
}

// invalidRequest reports a malformed or semantically invalid payload.
func invalidRequest(message string, err error) *HTTPError {
	return asHTTPError(apperrors.Wrap(apperrors.CodeInvalidInput, message, err))
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}
