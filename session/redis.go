package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "session"

const scanBatchSize = 1000

// RedisBackend is the primary session [Backend]: keys `session:<id>` with a
// per-key TTL enforced by Redis itself.
//
//	Performance: Save/Get/Delete are 1–2 Redis commands; ListByUser is an
//	O(n) SCAN and must not be used in request hot paths.
type RedisBackend struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisBackend creates a [RedisBackend] on the given client. prefix sets
// the key namespace (default "session"); ttl is the fallback used when a
// key's remaining TTL cannot be determined (default [DefaultTTL]).
func NewRedisBackend(redisClient redis.UniversalClient, prefix string, ttl time.Duration) *RedisBackend {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisBackend{
		redis:  redisClient,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (b *RedisBackend) key(sessionID string) string {
	return b.prefix + ":" + sessionID
}

// Save persists a [Session] with the given TTL.
func (b *RedisBackend) Save(ctx context.Context, sess *Session, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = b.ttl
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	if err := b.redis.Set(ctx, b.key(sess.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Get retrieves a session by ID. ExpiresAt is derived from the key's
// remaining TTL; when PTTL reports no expiry the configured default applies.
func (b *RedisBackend) Get(ctx context.Context, sessionID string) (*Session, error) {
	key := b.key(sessionID)

	data, err := b.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	sess, err := decodeSession(sessionID, data)
	if err != nil {
		return nil, err
	}

	pttl, err := b.redis.PTTL(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	sess.ExpiresAt = expiryFromTTL(pttl, b.ttl)

	return sess, nil
}

// Delete removes a session. Deleting a missing key is a no-op.
func (b *RedisBackend) Delete(ctx context.Context, sessionID string) error {
	if err := b.redis.Del(ctx, b.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// ListByUser scans the session key namespace and returns the sessions owned
// by userID. Undecodable entries are skipped rather than failing the scan.
func (b *RedisBackend) ListByUser(ctx context.Context, userID string) ([]*Session, error) {
	pattern := b.prefix + ":*"
	sessions := []*Session{}

	var cursor uint64
	for {
		keys, next, err := b.redis.Scan(ctx, cursor, pattern, scanBatchSize).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}

		for _, key := range keys {
			sess, err := b.getByKey(ctx, key)
			if err != nil {
				if errors.Is(err, ErrRedisUnavailable) {
					return nil, err
				}
				// Expired between SCAN and GET, or a foreign payload.
				continue
			}
			if sess.UserID == userID {
				sessions = append(sessions, sess)
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return sessions, nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (b *RedisBackend) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := b.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}

func (b *RedisBackend) getByKey(ctx context.Context, key string) (*Session, error) {
	data, err := b.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	sessionID := strings.TrimPrefix(key, b.prefix+":")
	sess, err := decodeSession(sessionID, data)
	if err != nil {
		return nil, err
	}

	pttl, err := b.redis.PTTL(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	sess.ExpiresAt = expiryFromTTL(pttl, b.ttl)

	return sess, nil
}

func decodeSession(sessionID string, data []byte) (*Session, error) {
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	sess.ID = sessionID
	return &sess, nil
}

func expiryFromTTL(pttl, fallback time.Duration) time.Time {
	if pttl > 0 {
		return time.Now().Add(pttl)
	}
	// PTTL reports negative for keys without expiry or transient states;
	// fall back to the configured lifetime.
	return time.Now().Add(fallback)
}
