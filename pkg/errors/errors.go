package errors

import "errors"

// Codes shared by the generation tiers and the HTTP transport.
const (
	CodeInvalidInput     = "invalid_input"
	CodeTransport        = "transport_error"
	CodeDecode           = "decode_error"
	CodeModelUnavailable = "model_unavailable"
	CodeEmptyResult      = "empty_result"

	CodeLLMAuth             = "llm_auth"
	CodeLLMNotFound         = "llm_not_found"
	CodeLLMRateLimited      = "llm_rate_limited"
	CodeLLMServerError      = "llm_server_error"
	CodeLLMUnexpectedStatus = "llm_unexpected_status"
)

// AppError encodes domain specific error details.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Wrap produces a new AppError instance.
func Wrap(code, message string, err error) error {
	if err == nil {
		return &AppError{Code: code, Message: message}
	}
	return &AppError{Code: code, Message: message, Err: err}
}

// IsCode helps handler differentiate failures.
func IsCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// CodeOf returns the outermost AppError code, or an empty string.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
