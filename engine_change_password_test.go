package crewauth

import (
	"context"
	"errors"
	"testing"
)

func TestChangePasswordSuccess(t *testing.T) {
	dir := newMockDirectory()
	user := seedUser(t, dir, "Orbit!Crew7x")

	engine, done := buildTestEngine(t, testConfig(), dir, seededPermDirectory(user.ID))
	defer done()

	ctx := context.Background()
	oldHash := dir.storedHash(user.ID)

	sessionID := engine.CreateSession(ctx, user.ID)
	if engine.ValidateSession(ctx, sessionID) == nil {
		t.Fatal("session must be valid before the change")
	}

	if err := engine.ChangePassword(ctx, user.ID, "Orbit!Crew7x", "Hangar#42west"); err != nil {
		t.Fatalf("ChangePassword failed: %v", err)
	}

	if dir.storedHash(user.ID) == oldHash {
		t.Fatal("stored hash must change")
	}
	if engine.ValidateSession(ctx, sessionID) != nil {
		t.Fatal("existing sessions must be revoked after a password change")
	}
	if dir.invalidateCalls != 1 {
		t.Fatalf("expected one directory-side invalidation, got %d", dir.invalidateCalls)
	}

	result := engine.Authenticate(ctx, user.Email, "Hangar#42west")
	if !result.Success {
		t.Fatalf("new password must authenticate: %+v", result)
	}
}

func TestChangePasswordWrongOldPassword(t *testing.T) {
	dir := newMockDirectory()
	user := seedUser(t, dir, "Orbit!Crew7x")

	engine, done := buildTestEngine(t, testConfig(), dir, seededPermDirectory(user.ID))
	defer done()

	err := engine.ChangePassword(context.Background(), user.ID, "not-the-password", "Hangar#42west")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if dir.storedHash(user.ID) == "" {
		t.Fatal("credential row must survive a failed change")
	}
}

func TestChangePasswordRejectsWeakPassword(t *testing.T) {
	dir := newMockDirectory()
	user := seedUser(t, dir, "Orbit!Crew7x")

	engine, done := buildTestEngine(t, testConfig(), dir, seededPermDirectory(user.ID))
	defer done()

	err := engine.ChangePassword(context.Background(), user.ID, "Orbit!Crew7x", "short")
	if !errors.Is(err, ErrPasswordPolicy) {
		t.Fatalf("expected ErrPasswordPolicy, got %v", err)
	}
	if !IsPolicyError(err) {
		t.Fatal("IsPolicyError must classify strength failures")
	}
}

func TestChangePasswordRejectsCurrentPasswordReuse(t *testing.T) {
	dir := newMockDirectory()
	user := seedUser(t, dir, "Orbit!Crew7x")

	engine, done := buildTestEngine(t, testConfig(), dir, seededPermDirectory(user.ID))
	defer done()

	err := engine.ChangePassword(context.Background(), user.ID, "Orbit!Crew7x", "Orbit!Crew7x")
	if !errors.Is(err, ErrPasswordReuse) {
		t.Fatalf("expected ErrPasswordReuse, got %v", err)
	}
	if !IsPolicyError(err) {
		t.Fatal("IsPolicyError must classify reuse failures")
	}
}

func TestChangePasswordRejectsHistoricalReuse(t *testing.T) {
	dir := newMockDirectory()
	user := seedUser(t, dir, "Orbit!Crew7x")

	engine, done := buildTestEngine(t, testConfig(), dir, seededPermDirectory(user.ID))
	defer done()

	ctx := context.Background()
	if err := engine.ChangePassword(ctx, user.ID, "Orbit!Crew7x", "Hangar#42west"); err != nil {
		t.Fatalf("first change failed: %v", err)
	}

	// The original password is now in the history window.
	err := engine.ChangePassword(ctx, user.ID, "Hangar#42west", "Orbit!Crew7x")
	if !errors.Is(err, ErrPasswordReuse) {
		t.Fatalf("expected ErrPasswordReuse for a recently used password, got %v", err)
	}
}

func TestChangePasswordUnknownUser(t *testing.T) {
	dir := newMockDirectory()

	engine, done := buildTestEngine(t, testConfig(), dir, seededPermDirectory("u1"))
	defer done()

	err := engine.ChangePassword(context.Background(), "ghost", "Orbit!Crew7x", "Hangar#42west")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestChangePasswordInactiveUser(t *testing.T) {
	dir := newMockDirectory()
	user := seedUser(t, dir, "Orbit!Crew7x")
	user.IsActive = false
	dir.put(user, "")

	engine, done := buildTestEngine(t, testConfig(), dir, seededPermDirectory(user.ID))
	defer done()

	err := engine.ChangePassword(context.Background(), user.ID, "Orbit!Crew7x", "Hangar#42west")
	if !errors.Is(err, ErrUserInactive) {
		t.Fatalf("expected ErrUserInactive, got %v", err)
	}
}

func TestChangePasswordEmptyInput(t *testing.T) {
	dir := newMockDirectory()
	user := seedUser(t, dir, "Orbit!Crew7x")

	engine, done := buildTestEngine(t, testConfig(), dir, seededPermDirectory(user.ID))
	defer done()

	err := engine.ChangePassword(context.Background(), user.ID, "Orbit!Crew7x", "")
	if !errors.Is(err, ErrPasswordPolicy) {
		t.Fatalf("expected ErrPasswordPolicy for empty new password, got %v", err)
	}
}
