package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newStoreTest(t *testing.T) (*Store, *miniredis.Miniredis, *MemoryBackend) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})

	fallback := NewMemoryBackend(DefaultTTL)
	primary := NewRedisBackend(rdb, "session", DefaultTTL)
	store := NewStore(primary, fallback, DefaultTTL, func(string, ...any) {})
	return store, mr, fallback
}

func TestCreateValidateDestroyRoundTrip(t *testing.T) {
	store, _, _ := newStoreTest(t)
	ctx := context.Background()

	id := store.Create(ctx, "1", "127.0.0.1", "UA")
	if id == "" {
		t.Fatal("expected non-empty session id")
	}

	sess := store.Validate(ctx, id)
	if sess == nil {
		t.Fatal("expected session to validate")
	}
	if sess.UserID != "1" || sess.IPAddress != "127.0.0.1" || sess.UserAgent != "UA" {
		t.Fatalf("unexpected session contents: %+v", sess)
	}
	if !sess.ExpiresAt.After(time.Now()) {
		t.Fatalf("expected future expiry, got %v", sess.ExpiresAt)
	}

	if !store.Destroy(ctx, id) {
		t.Fatal("destroy must report success")
	}
	if store.Validate(ctx, id) != nil {
		t.Fatal("expected nil after destroy")
	}
}

func TestDestroyIdempotent(t *testing.T) {
	store, _, _ := newStoreTest(t)
	ctx := context.Background()

	if !store.Destroy(ctx, "never-existed") {
		t.Fatal("destroy of unknown id must still report success")
	}
}

func TestCreateFallsBackWhenPrimaryDown(t *testing.T) {
	store, mr, fallback := newStoreTest(t)
	ctx := context.Background()

	mr.SetError("connection refused")

	id := store.Create(ctx, "7", "10.0.0.1", "UA-fallback")
	if id == "" {
		t.Fatal("create must return an id even with primary down")
	}
	if fallback.Len() != 1 {
		t.Fatalf("expected 1 fallback session, got %d", fallback.Len())
	}

	sess := store.Validate(ctx, id)
	if sess == nil {
		t.Fatal("expected fallback session to validate")
	}
	if sess.UserID != "7" {
		t.Fatalf("unexpected user id %q", sess.UserID)
	}
}

func TestValidateFallsBackWhenPrimaryDown(t *testing.T) {
	store, mr, _ := newStoreTest(t)
	ctx := context.Background()

	// Session created while the primary was healthy only exists in Redis,
	// so losing Redis loses it. A session created during the outage lives
	// in memory and keeps validating.
	healthyID := store.Create(ctx, "1", "", "")

	mr.SetError("connection refused")
	outageID := store.Create(ctx, "1", "", "")

	if store.Validate(ctx, healthyID) != nil {
		t.Fatal("primary-only session should be unreachable during outage")
	}
	if store.Validate(ctx, outageID) == nil {
		t.Fatal("fallback session should validate during outage")
	}
}

func TestValidateExpiredViaRedisTTL(t *testing.T) {
	store, mr, _ := newStoreTest(t)
	ctx := context.Background()

	id := store.Create(ctx, "1", "", "")
	mr.FastForward(DefaultTTL + time.Minute)

	if store.Validate(ctx, id) != nil {
		t.Fatal("expected TTL-expired session to be gone")
	}
}

func TestListByUserMergesBackendsWithoutDuplicates(t *testing.T) {
	store, _, fallback := newStoreTest(t)
	ctx := context.Background()

	first := store.Create(ctx, "1", "", "")
	second := store.Create(ctx, "1", "", "")
	store.Create(ctx, "2", "", "")

	// The same id coincidentally present in both backends must appear once.
	dup := store.Validate(ctx, first)
	if err := fallback.Save(ctx, dup, 0); err != nil {
		t.Fatalf("seed fallback: %v", err)
	}
	// A fallback-only session must still be merged in.
	extra := &Session{ID: "memory-only", UserID: "1", CreatedAt: time.Now().UTC()}
	if err := fallback.Save(ctx, extra, 0); err != nil {
		t.Fatalf("seed fallback: %v", err)
	}

	sessions := store.ListByUser(ctx, "1")
	if len(sessions) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(sessions))
	}

	seen := make(map[string]bool)
	for _, sess := range sessions {
		if seen[sess.ID] {
			t.Fatalf("duplicate session id %s", sess.ID)
		}
		seen[sess.ID] = true
		if sess.ExpiresAt.IsZero() {
			t.Fatalf("session %s missing derived expiry", sess.ID)
		}
	}
	if !seen[first] || !seen[second] || !seen["memory-only"] {
		t.Fatalf("missing expected ids in %v", seen)
	}
}

func TestListByUserDegradesWhenPrimaryDown(t *testing.T) {
	store, mr, _ := newStoreTest(t)
	ctx := context.Background()

	store.Create(ctx, "1", "", "")

	mr.SetError("connection refused")
	outageID := store.Create(ctx, "1", "", "")

	sessions := store.ListByUser(ctx, "1")
	if len(sessions) != 1 {
		t.Fatalf("expected fallback-only result, got %d sessions", len(sessions))
	}
	if sessions[0].ID != outageID {
		t.Fatalf("expected fallback session %s, got %s", outageID, sessions[0].ID)
	}
}

func TestIsOwnedBy(t *testing.T) {
	store, _, _ := newStoreTest(t)
	ctx := context.Background()

	id := store.Create(ctx, "42", "", "")
	if !store.IsOwnedBy(ctx, "42", id) {
		t.Fatal("expected ownership for creating user")
	}
	if store.IsOwnedBy(ctx, "43", id) {
		t.Fatal("expected ownership check to fail for another user")
	}
	if store.IsOwnedBy(ctx, "42", "missing") {
		t.Fatal("expected ownership check to fail for unknown session")
	}
}

func TestInvalidateAllExceptSpansBothBackends(t *testing.T) {
	store, mr, fallback := newStoreTest(t)
	ctx := context.Background()

	keep := store.Create(ctx, "1", "", "")
	other := store.Create(ctx, "1", "", "")
	foreign := store.Create(ctx, "2", "", "")

	mr.SetError("connection refused")
	outage := store.Create(ctx, "1", "", "")
	mr.SetError("")

	if !store.InvalidateAllExcept(ctx, "1", keep) {
		t.Fatal("invalidate must report success")
	}

	if store.Validate(ctx, keep) == nil {
		t.Fatal("kept session must remain valid")
	}
	if store.Validate(ctx, other) != nil {
		t.Fatal("other primary session must be destroyed")
	}
	if store.Validate(ctx, outage) != nil {
		t.Fatal("fallback session must be destroyed")
	}
	if store.Validate(ctx, foreign) == nil {
		t.Fatal("another user's session must be untouched")
	}
	if fallback.Len() != 0 {
		t.Fatalf("expected empty fallback store, got %d", fallback.Len())
	}
}

func TestMemoryBackendConcurrentAccess(t *testing.T) {
	backend := NewMemoryBackend(DefaultTTL)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				sess := &Session{
					ID:        uuidLike(n, j),
					UserID:    "1",
					CreatedAt: time.Now(),
				}
				_ = backend.Save(ctx, sess, 0)
				_, _ = backend.Get(ctx, sess.ID)
				_, _ = backend.ListByUser(ctx, "1")
				_ = backend.Delete(ctx, sess.ID)
			}
		}(i)
	}
	wg.Wait()

	if backend.Len() != 0 {
		t.Fatalf("expected empty backend, got %d entries", backend.Len())
	}
}

func uuidLike(n, j int) string {
	return string(rune('a'+n)) + "-" + string(rune('0'+j%10))
}
