package apierr

import (
	"errors"
	"fmt"
)

// Error is the single error type returned across every internal layer of the
// core. HTTP middleware is the only place that renders it onto the wire.
type Error struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	return fmt.Sprintf("api error (%d)", e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code, message string, err error) *Error {
	return &Error{Status: status, Code: code, Message: message, Err: err}
}

func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

func Validation(message string, err error) *Error {
	return New(422, "VALIDATION_ERROR", message, err)
}

func BadRequest(code, message string, err error) *Error {
	return New(400, code, message, err)
}

func Unauthorized(message string) *Error {
	return New(401, "UNAUTHORIZED", message, nil)
}

func PaymentRequired(feature string, used, limit int, resetsAt string) *Error {
	return New(402, "LIMIT_EXCEEDED", "monthly quota exceeded", nil).WithDetails(map[string]any{
		"feature": feature, "used": used, "limit": limit, "resetsAt": resetsAt,
	})
}

func Forbidden(message string) *Error {
	return New(403, "FORBIDDEN", message, nil)
}

func NotFound(message string) *Error {
	return New(404, "NOT_FOUND", message, nil)
}

func Conflict(message string, err error) *Error {
	return New(409, "CONFLICT", message, err)
}

func RateLimited(retryAfterSeconds int) *Error {
	return New(429, "RATE_LIMIT_EXCEEDED", "too many requests", nil).WithDetails(map[string]any{
		"retryAfterSeconds": retryAfterSeconds,
	})
}

func AIUnavailable(attemptedProviders []string, err error) *Error {
	return New(503, "AI_UNAVAILABLE", "AI providers exhausted", err).WithDetails(map[string]any{
		"attemptedProviders": attemptedProviders,
	})
}

func Internal(err error) *Error {
	return New(500, "INTERNAL_ERROR", "internal error", err)
}

// As recovers an *Error from a wrapped chain, defaulting to INTERNAL_ERROR.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Internal(err)
}
