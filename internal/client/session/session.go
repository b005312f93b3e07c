// Package session owns the single authenticated identity of the client: the
// bearer token and the user profile, their persistence across restarts, and
// the fan-out of session transitions to dependent components.
package session

import (
	"github.com/gophmart/gophmart/internal/client/models"
)

// State is the lifecycle position of the session. Transitions:
// Uninitialized → Initializing → {Authenticated, Anonymous}, and
// Authenticated → Anonymous on logout or invalidation. No transition leads
// back to Initializing.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable view of the session published to subscribers.
// Invariant: Token is non-empty iff User is non-nil.
type Snapshot struct {
	State State
	Token string
	User  *models.UserProfile
}

// Authenticated reports whether the snapshot carries a live identity.
func (s Snapshot) Authenticated() bool {
	return s.State == StateAuthenticated && s.User != nil
}

// Role returns the session's role, or "" when anonymous.
func (s Snapshot) Role() models.Role {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}
