package crewauth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func isHex(s string) bool {
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		default:
			return false
		}
	}
	return true
}

func TestRequestPasswordResetIssuesToken(t *testing.T) {
	dir := newMockDirectory()
	user := seedUser(t, dir, "Orbit!Crew7x")

	engine, done := buildTestEngine(t, testConfig(), dir, seededPermDirectory(user.ID))
	defer done()

	before := time.Now()
	token, err := engine.RequestPasswordReset(context.Background(), user.Email)
	if err != nil {
		t.Fatalf("RequestPasswordReset failed: %v", err)
	}

	if len(token) != 64 || !isHex(token) {
		t.Fatalf("expected 64 lowercase hex characters, got %q", token)
	}

	cred := dir.storedCredential(user.ID)
	if cred.ResetToken != token {
		t.Fatal("token must be persisted on the credential row")
	}

	wantExpiry := before.Add(24 * time.Hour)
	if cred.ResetTokenExpiry.Before(wantExpiry.Add(-time.Minute)) || cred.ResetTokenExpiry.After(wantExpiry.Add(time.Minute)) {
		t.Fatalf("expiry must be about 24h out, got %v", cred.ResetTokenExpiry)
	}
}

func TestRequestPasswordResetUnknownEmail(t *testing.T) {
	dir := newMockDirectory()

	engine, done := buildTestEngine(t, testConfig(), dir, seededPermDirectory("u1"))
	defer done()

	_, err := engine.RequestPasswordReset(context.Background(), "ghost@example.com")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestRequestPasswordResetInactiveUser(t *testing.T) {
	dir := newMockDirectory()
	user := seedUser(t, dir, "Orbit!Crew7x")
	user.IsActive = false
	dir.put(user, "")

	engine, done := buildTestEngine(t, testConfig(), dir, seededPermDirectory(user.ID))
	defer done()

	_, err := engine.RequestPasswordReset(context.Background(), user.Email)
	if !errors.Is(err, ErrUserInactive) {
		t.Fatalf("expected ErrUserInactive, got %v", err)
	}
}

func TestRequestPasswordResetDisabled(t *testing.T) {
	dir := newMockDirectory()
	user := seedUser(t, dir, "Orbit!Crew7x")

	cfg := testConfig()
	cfg.PasswordReset.Enabled = false

	engine, done := buildTestEngine(t, cfg, dir, seededPermDirectory(user.ID))
	defer done()

	if _, err := engine.RequestPasswordReset(context.Background(), user.Email); !errors.Is(err, ErrResetInvalid) {
		t.Fatalf("expected ErrResetInvalid when resets are disabled, got %v", err)
	}
	if err := engine.ConfirmPasswordReset(context.Background(), "anything", "Hangar#42west"); !errors.Is(err, ErrResetInvalid) {
		t.Fatalf("expected ErrResetInvalid when resets are disabled, got %v", err)
	}
}

func TestConfirmPasswordResetRoundTrip(t *testing.T) {
	dir := newMockDirectory()
	user := seedUser(t, dir, "Orbit!Crew7x")

	engine, done := buildTestEngine(t, testConfig(), dir, seededPermDirectory(user.ID))
	defer done()

	ctx := context.Background()

	sessionID := engine.CreateSession(ctx, user.ID)

	token, err := engine.RequestPasswordReset(ctx, user.Email)
	if err != nil {
		t.Fatalf("RequestPasswordReset failed: %v", err)
	}

	if err := engine.ConfirmPasswordReset(ctx, token, "Hangar#42west"); err != nil {
		t.Fatalf("ConfirmPasswordReset failed: %v", err)
	}

	cred := dir.storedCredential(user.ID)
	if cred.ResetToken != "" || !cred.ResetTokenExpiry.IsZero() {
		t.Fatal("token must be cleared on successful confirm")
	}
	if engine.ValidateSession(ctx, sessionID) != nil {
		t.Fatal("existing sessions must be revoked after a reset")
	}

	result := engine.Authenticate(ctx, user.Email, "Hangar#42west")
	if !result.Success {
		t.Fatalf("new password must authenticate: %+v", result)
	}

	// Token is single-use.
	if err := engine.ConfirmPasswordReset(ctx, token, "Another!Pass9z"); !errors.Is(err, ErrResetInvalid) {
		t.Fatalf("expected ErrResetInvalid on replay, got %v", err)
	}
}

func TestConfirmPasswordResetUnknownToken(t *testing.T) {
	dir := newMockDirectory()
	seedUser(t, dir, "Orbit!Crew7x")

	engine, done := buildTestEngine(t, testConfig(), dir, seededPermDirectory("u1"))
	defer done()

	err := engine.ConfirmPasswordReset(context.Background(), "deadbeef", "Hangar#42west")
	if !errors.Is(err, ErrResetInvalid) {
		t.Fatalf("expected ErrResetInvalid, got %v", err)
	}
}

func TestConfirmPasswordResetExpiredToken(t *testing.T) {
	dir := newMockDirectory()
	user := seedUser(t, dir, "Orbit!Crew7x")

	engine, done := buildTestEngine(t, testConfig(), dir, seededPermDirectory(user.ID))
	defer done()

	ctx := context.Background()
	token, err := engine.RequestPasswordReset(ctx, user.Email)
	if err != nil {
		t.Fatalf("RequestPasswordReset failed: %v", err)
	}

	// Age the stored expiry past the window.
	if err := dir.SaveResetToken(ctx, user.ID, token, time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("seed expiry failed: %v", err)
	}

	if err := engine.ConfirmPasswordReset(ctx, token, "Hangar#42west"); !errors.Is(err, ErrResetInvalid) {
		t.Fatalf("expected ErrResetInvalid for an expired token, got %v", err)
	}
}

func TestConfirmPasswordResetWeakPassword(t *testing.T) {
	dir := newMockDirectory()
	user := seedUser(t, dir, "Orbit!Crew7x")

	engine, done := buildTestEngine(t, testConfig(), dir, seededPermDirectory(user.ID))
	defer done()

	ctx := context.Background()
	token, err := engine.RequestPasswordReset(ctx, user.Email)
	if err != nil {
		t.Fatalf("RequestPasswordReset failed: %v", err)
	}

	if err := engine.ConfirmPasswordReset(ctx, token, "short"); !errors.Is(err, ErrPasswordPolicy) {
		t.Fatalf("expected ErrPasswordPolicy, got %v", err)
	}

	// A failed confirm must not consume the token.
	if err := engine.ConfirmPasswordReset(ctx, token, "Hangar#42west"); err != nil {
		t.Fatalf("token must survive a policy failure: %v", err)
	}
}
