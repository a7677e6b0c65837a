package errx

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage describes a missing Redis key.
	RedisNotFoundMessage = "no data found"
	// UpstreamErrorMessage describes a data-source failure at a tool boundary.
	UpstreamErrorMessage = "upstream data source failed"
)

// Sentinel errors for the tool and adapter layers. Tools match on these to
// produce specific, user-presentable failure text instead of aborting a turn.
var (
	ErrDuplicateTool    = errors.New("duplicate tool name")
	ErrToolNotFound     = errors.New("tool not found")
	ErrTokenResolution  = errors.New("token could not be resolved")
	ErrVaultNotFound    = errors.New("vault not found")
	ErrQuoteUnavailable = errors.New("no quote available")
	ErrNotConfigured    = errors.New("missing API credential")
)

// AppError wraps an underlying error with an HTTP status and safe message.
type AppError struct {
	Err     error
	Status  int
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// WrapUpstream wraps an adapter-level failure with a consistent status and message.
func WrapUpstream(err error) error {
	if err == nil {
		return nil
	}
	return &AppError{
		Err:     err,
		Status:  http.StatusBadGateway,
		Message: UpstreamErrorMessage,
	}
}

// Is reports whether the target matches the underlying error or the AppError itself.
func (e *AppError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// As allows casting to AppError or the wrapped error in a chain.
func (e *AppError) As(target any) bool {
	if errors.As(e.Err, target) {
		return true
	}
	if t, ok := target.(**AppError); ok {
		*t = e
		return true
	}
	return false
}
