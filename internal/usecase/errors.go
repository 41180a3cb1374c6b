package usecase

import (
	"context"
	"errors"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

const (
	kindInvalidInput = "invalid_input"
	kindNotFound     = "not_found"
	kindUnauthorized = "unauthorized"
	kindDependency   = "dependency_unavailable"
	kindTimeout      = "timeout"
	kindCanceled     = "canceled"
	kindInternal     = "internal"
)

// ErrorKind names the sentinel class err belongs to, or "internal".
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return kindInvalidInput
	case errors.Is(err, ErrNotFound):
		return kindNotFound
	case errors.Is(err, ErrUnauthorized):
		return kindUnauthorized
	case errors.Is(err, ErrDependencyUnavailable):
		return kindDependency
	case errors.Is(err, context.DeadlineExceeded):
		return kindTimeout
	case errors.Is(err, context.Canceled):
		return kindCanceled
	default:
		return kindInternal
	}
}
