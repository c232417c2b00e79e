package session

import "time"

// DefaultTTL is the session lifetime applied when no TTL is configured.
const DefaultTTL = 24 * time.Hour

// Session defines a public type used by crewauth APIs.
//
// Session instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Session struct {
	ID        string    `json:"-"`
	UserID    string    `json:"user_id"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	// ExpiresAt is derived on read: from the remaining Redis TTL for the
	// primary backend, or from CreatedAt plus the configured TTL for the
	// memory backend. It is never serialized.
	ExpiresAt time.Time `json:"-"`
}
