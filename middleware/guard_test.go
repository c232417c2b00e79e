package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	crewauth "github.com/MrEthical07/crewauth"
	"github.com/MrEthical07/crewauth/password"
	"github.com/MrEthical07/crewauth/permission"
)

type stubDirectory struct {
	mu      sync.RWMutex
	users   map[string]crewauth.UserRecord
	byEmail map[string]string
	creds   map[string]crewauth.Credential
}

func newStubDirectory() *stubDirectory {
	return &stubDirectory{
		users:   make(map[string]crewauth.UserRecord),
		byEmail: make(map[string]string),
		creds:   make(map[string]crewauth.Credential),
	}
}

func (d *stubDirectory) put(u crewauth.UserRecord, hash string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[u.ID] = u
	d.byEmail[u.Email] = u.ID
	d.creds[u.ID] = crewauth.Credential{UserID: u.ID, PasswordHash: hash}
}

func (d *stubDirectory) FindByEmail(_ context.Context, email string) (*crewauth.UserRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	id, ok := d.byEmail[email]
	if !ok {
		return nil, nil
	}
	u := d.users[id]
	return &u, nil
}

func (d *stubDirectory) FindByID(_ context.Context, id string) (*crewauth.UserRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (d *stubDirectory) FindByResetToken(context.Context, string) (*crewauth.UserRecord, error) {
	return nil, nil
}

func (d *stubDirectory) Credentials(_ context.Context, userID string) (*crewauth.Credential, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	c, ok := d.creds[userID]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (d *stubDirectory) PasswordHistory(context.Context, string, int) ([]crewauth.PasswordHistoryEntry, error) {
	return nil, nil
}

func (d *stubDirectory) UpdatePassword(context.Context, string, string) error { return nil }
func (d *stubDirectory) UpdateLastLogin(context.Context, string) error        { return nil }
func (d *stubDirectory) InvalidateSessions(context.Context, string) error     { return nil }

func (d *stubDirectory) SaveResetToken(context.Context, string, string, time.Time) error {
	return nil
}

func newGuardTestEngine(t *testing.T) (*crewauth.Engine, string, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	hasher, err := password.NewHasher(password.Config{Cost: 10})
	if err != nil {
		mr.Close()
		t.Fatalf("NewHasher failed: %v", err)
	}
	hash, err := hasher.Hash("Orbit!Crew7x")
	if err != nil {
		mr.Close()
		t.Fatalf("hash failed: %v", err)
	}

	dir := newStubDirectory()
	dir.put(crewauth.UserRecord{
		ID:          "u1",
		Email:       "dana@example.com",
		PrimaryRole: "Dispatcher",
		IsActive:    true,
	}, hash)

	perms := permission.NewMemoryDirectory()
	role := perms.CreateRole("Dispatcher", "")
	read, _ := perms.CreatePermission("View Crew", "crew", "read", "")
	_ = perms.AddRolePermission(context.Background(), role.ID, read.ID)
	perms.SetPrimaryRole("u1", role.ID)

	cfg := crewauth.DefaultConfig()
	cfg.Password.Cost = 10

	engine, err := crewauth.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithUserDirectory(dir).
		WithPermissionDirectory(perms).
		Build()
	if err != nil {
		mr.Close()
		t.Fatalf("Build failed: %v", err)
	}

	sessionID := engine.CreateSession(context.Background(), "u1")

	return engine, sessionID, func() {
		engine.Close()
		mr.Close()
	}
}

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestGuardMissingCookie(t *testing.T) {
	engine, _, done := newGuardTestEngine(t)
	defer done()

	var called bool
	handler := Guard(engine)(okHandler(&called))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if called {
		t.Fatal("handler must not run without a session cookie")
	}
}

func TestGuardInvalidSession(t *testing.T) {
	engine, _, done := newGuardTestEngine(t)
	defer done()

	var called bool
	handler := Guard(engine)(okHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "no-such-session"})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if called {
		t.Fatal("handler must not run with an invalid session")
	}
}

func TestGuardInjectsPrincipal(t *testing.T) {
	engine, sessionID, done := newGuardTestEngine(t)
	defer done()

	var principal *crewauth.Principal
	handler := Guard(engine)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFromContext(r.Context())
		if !ok {
			t.Fatal("expected a principal in the request context")
		}
		principal = p
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sessionID})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if principal.User.ID != "u1" || principal.SessionID != sessionID {
		t.Fatalf("unexpected principal: %+v", principal)
	}
	if len(principal.User.Permissions) != 1 {
		t.Fatalf("principal must carry resolved permissions, got %d", len(principal.User.Permissions))
	}
}

func TestRequirePermissionWithoutPrincipal(t *testing.T) {
	var called bool
	handler := RequirePermission("crew", "read")(okHandler(&called))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/crew", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a principal, got %d", rec.Code)
	}
	if called {
		t.Fatal("handler must not run without a principal")
	}
}

func TestRequirePermissionGrantAndDeny(t *testing.T) {
	engine, sessionID, done := newGuardTestEngine(t)
	defer done()

	var called bool
	granted := Guard(engine)(RequirePermission("crew", "read")(okHandler(&called)))

	req := httptest.NewRequest(http.MethodGet, "/crew", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sessionID})

	rec := httptest.NewRecorder()
	granted.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !called {
		t.Fatalf("expected the granted route to pass, got %d", rec.Code)
	}

	called = false
	denied := Guard(engine)(RequirePermission("crew", "delete")(okHandler(&called)))

	req = httptest.NewRequest(http.MethodGet, "/crew", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sessionID})

	rec = httptest.NewRecorder()
	denied.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for a missing permission, got %d", rec.Code)
	}
	if called {
		t.Fatal("handler must not run without the permission")
	}
}
