package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrBadRequest      = errors.New("bad request")
	ErrRateLimited     = errors.New("rate limited")
	ErrExpired         = errors.New("expired")
	ErrTooManyAttempts = errors.New("too many attempts")
	ErrInvalidCode     = errors.New("invalid code")

	// Upstream inference failures, translated from the provider's status code.
	ErrUpstreamRateLimited = errors.New("upstream rate limited")
	ErrUpstreamAuth        = errors.New("upstream authentication failed")
	ErrUpstream            = errors.New("upstream error")
)

// InvalidCodeError is returned when a submitted code does not match the stored one.
// It matches ErrInvalidCode under errors.Is.
type InvalidCodeError struct {
	Remaining int
}

func (e *InvalidCodeError) Error() string {
	return fmt.Sprintf("invalid verification code, %d attempts remaining", e.Remaining)
}

func (e *InvalidCodeError) Is(target error) bool { return target == ErrInvalidCode }
