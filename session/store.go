package session

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Store composes the primary and fallback backends behind the session API
// the Engine consumes. Every method has a correctness-preserving fallback
// path; backend-specific errors stop at this boundary.
//
//	Docs: doc.go (fallback model)
type Store struct {
	primary  Backend
	fallback Backend
	ttl      time.Duration
	logf     func(format string, args ...any)
}

// NewStore creates a session [Store]. primary is tried first for every
// operation; fallback (typically a [MemoryBackend]) absorbs primary
// failures. ttl defaults to [DefaultTTL]; logf defaults to [log.Printf].
func NewStore(primary, fallback Backend, ttl time.Duration, logf func(format string, args ...any)) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logf == nil {
		logf = log.Printf
	}
	return &Store{
		primary:  primary,
		fallback: fallback,
		ttl:      ttl,
		logf:     logf,
	}
}

// TTL returns the configured session lifetime.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Create generates an unguessable session identifier, persists the session
// in the primary backend with the configured TTL, and falls back to the
// memory backend when the primary write fails. The fallback write cannot
// fail, so callers only ever see an identifier.
func (s *Store) Create(ctx context.Context, userID, ipAddress, userAgent string) string {
	sess := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.primary.Save(ctx, sess, s.ttl); err != nil {
		s.logf("session: primary save failed, using fallback store: %v", err)
		_ = s.fallback.Save(ctx, sess, s.ttl)
	}

	return sess.ID
}

// Validate returns the session for the given identifier, or nil when it is
// unknown to both backends. The fallback is consulted both on a primary miss
// and on primary unavailability.
func (s *Store) Validate(ctx context.Context, sessionID string) *Session {
	sess, err := s.primary.Get(ctx, sessionID)
	if err == nil {
		return sess
	}
	if !errors.Is(err, ErrSessionNotFound) {
		s.logf("session: primary read failed, consulting fallback store: %v", err)
	}

	sess, err = s.fallback.Get(ctx, sessionID)
	if err != nil {
		return nil
	}
	return sess
}

// Destroy removes the session from BOTH backends unconditionally and always
// reports success, even when the identifier was unknown. Logout must be
// immediately visible regardless of which backend held the session.
func (s *Store) Destroy(ctx context.Context, sessionID string) bool {
	if err := s.primary.Delete(ctx, sessionID); err != nil {
		s.logf("session: primary delete failed for %s: %v", sessionID, err)
	}
	_ = s.fallback.Delete(ctx, sessionID)
	return true
}

// ListByUser merges the user's sessions from both backends, deduplicated by
// session ID (primary wins) and ordered by creation time for stable
// presentation. A primary enumeration failure degrades to fallback-only
// results rather than propagating.
func (s *Store) ListByUser(ctx context.Context, userID string) []*Session {
	merged := []*Session{}
	seen := make(map[string]bool)

	primarySessions, err := s.primary.ListByUser(ctx, userID)
	if err != nil {
		s.logf("session: primary enumeration failed for user %s: %v", userID, err)
	} else {
		for _, sess := range primarySessions {
			merged = append(merged, sess)
			seen[sess.ID] = true
		}
	}

	fallbackSessions, err := s.fallback.ListByUser(ctx, userID)
	if err == nil {
		for _, sess := range fallbackSessions {
			if seen[sess.ID] {
				continue
			}
			merged = append(merged, sess)
		}
	}

	sort.Slice(merged, func(i, j int) bool {
		if merged[i].CreatedAt.Equal(merged[j].CreatedAt) {
			return merged[i].ID < merged[j].ID
		}
		return merged[i].CreatedAt.Before(merged[j].CreatedAt)
	})

	return merged
}

// IsOwnedBy reports whether the session exists and belongs to userID.
func (s *Store) IsOwnedBy(ctx context.Context, userID, sessionID string) bool {
	sess := s.Validate(ctx, sessionID)
	return sess != nil && sess.UserID == userID
}

// InvalidateAllExcept destroys every session owned by userID across both
// backends except keepSessionID. Always returns true; partial failures are
// logged inside Destroy, not surfaced.
func (s *Store) InvalidateAllExcept(ctx context.Context, userID, keepSessionID string) bool {
	for _, sess := range s.ListByUser(ctx, userID) {
		if sess.ID == keepSessionID {
			continue
		}
		s.Destroy(ctx, sess.ID)
	}
	return true
}
