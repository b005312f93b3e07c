// Package common defines shared constants and sentinel errors used across
// the GophMart client. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Session lifecycle errors.
	ErrAlreadyInitialized = errors.New("session already initialized")
	ErrNotAuthenticated   = errors.New("not authenticated")

	// Session invariant errors.
	ErrIncompleteSession = errors.New("token and user must be set together")
)
