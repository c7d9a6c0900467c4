// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across storage/service layers.
var (
	// ErrNotFound indicates the requested entity or key does not exist.
	ErrNotFound = errors.New("not found")

	// ErrSignedOut indicates there is no valid session for the current user.
	ErrSignedOut = errors.New("signed out")

	// ErrOffline indicates an operation that requires connectivity was attempted without it.
	ErrOffline = errors.New("offline")

	// ErrUnknownCollection indicates a remote collection name the store does not serve.
	ErrUnknownCollection = errors.New("unknown collection")
)
