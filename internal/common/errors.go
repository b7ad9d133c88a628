// Package common defines shared sentinel errors used across the askpdf
// gateways and the HTTP surface. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Validation errors (missing file, wrong media type, missing field).
	ErrInvalidInput = errors.New("invalid input")

	// Identity provider errors. Rejected means the provider refused the
	// credentials or the signup itself; Unavailable means the provider
	// could not be reached or answered with a server-side failure.
	ErrAuthRejected    = errors.New("authentication rejected")
	ErrAuthUnavailable = errors.New("authentication provider unavailable")

	// Storage provider errors.
	ErrUploadFailed = errors.New("upload failed")
	ErrListFailed   = errors.New("listing failed")

	// Retrieval/QA service errors.
	ErrUpstream = errors.New("upstream request failed")

	// Auth errors on identity-scoped operations.
	ErrInvalidToken = errors.New("invalid token")
	ErrUnauthorized = errors.New("unauthorized")

	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Generic internal flow control.
	ErrInternal = errors.New("internal error")
)
