package session

import (
	"context"
	"sync"
	"time"
)

// MemoryBackend is the in-process fallback [Backend].
//
// Limitation: no TTL is enforced — entries persist until explicit deletion or
// process restart. Reads derive a synthetic ExpiresAt of CreatedAt plus the
// configured TTL so enumeration stays presentable, but an entry past that
// point is still returned until something deletes it.
type MemoryBackend struct {
	ttl time.Duration

	mu       sync.Mutex
	sessions map[string]Session
}

// NewMemoryBackend creates an empty [MemoryBackend]. ttl is only used to
// derive the synthetic expiry on reads (default [DefaultTTL]).
func NewMemoryBackend(ttl time.Duration) *MemoryBackend {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryBackend{
		ttl:      ttl,
		sessions: make(map[string]Session),
	}
}

// Save stores a copy of the session. The ttl argument is accepted for
// interface parity and ignored.
func (b *MemoryBackend) Save(_ context.Context, sess *Session, _ time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions[sess.ID] = *sess
	return nil
}

// Get returns the stored session or [ErrSessionNotFound].
func (b *MemoryBackend) Get(_ context.Context, sessionID string) (*Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sess, ok := b.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	sess.ExpiresAt = sess.CreatedAt.Add(b.ttl)
	return &sess, nil
}

// Delete removes a session. Deleting a missing session is a no-op.
func (b *MemoryBackend) Delete(_ context.Context, sessionID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sessions, sessionID)
	return nil
}

// ListByUser returns all stored sessions owned by userID.
func (b *MemoryBackend) ListByUser(_ context.Context, userID string) ([]*Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sessions := []*Session{}
	for _, sess := range b.sessions {
		if sess.UserID != userID {
			continue
		}
		out := sess
		out.ExpiresAt = out.CreatedAt.Add(b.ttl)
		sessions = append(sessions, &out)
	}
	return sessions, nil
}

// Len reports the number of stored sessions.
func (b *MemoryBackend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sessions)
}
