package session

import (
	"context"
	"errors"
	"time"
)

// ErrSessionNotFound is returned by a [Backend] when no session exists for
// the given identifier.
var ErrSessionNotFound = errors.New("session not found")

// ErrRedisUnavailable is returned by [RedisBackend] when the underlying
// client reports a transport or server error. The [Store] treats it as a
// signal to fall back, never surfacing it to callers.
var ErrRedisUnavailable = errors.New("redis unavailable")

// Backend is one concrete session storage. [Store] composes a primary and a
// fallback Backend; both must be safe for concurrent use.
type Backend interface {
	Save(ctx context.Context, sess *Session, ttl time.Duration) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
	ListByUser(ctx context.Context, userID string) ([]*Session, error)
}
