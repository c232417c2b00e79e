package crewauth

import (
	"context"
	"time"

	"github.com/MrEthical07/crewauth/session"
)

// CreateSession describes the createsession operation and its observable behavior.
//
// CreateSession never fails: when the primary session backend is unavailable
// the session is parked in the in-memory fallback instead.
// CreateSession does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) CreateSession(ctx context.Context, userID string) string {
	sessionID := e.sessionStore.Create(ctx, userID, clientIPFromContext(ctx), userAgentFromContext(ctx))

	e.metricInc(MetricSessionCreated)
	e.emitAudit(ctx, auditEventSessionCreated, true, userID, "", sessionID, nil, nil)

	return sessionID
}

// ValidateSession describes the validatesession operation and its observable behavior.
//
// ValidateSession returns nil when the session does not exist in either
// backend; it never surfaces backend errors.
// ValidateSession does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ValidateSession(ctx context.Context, sessionID string) *session.Session {
	if e.metrics != nil && e.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() { e.metrics.Observe(MetricValidateLatency, time.Since(start)) }()
	}

	return e.sessionStore.Validate(ctx, sessionID)
}

// DestroySession describes the destroysession operation and its observable behavior.
//
// DestroySession is idempotent and always reports success, matching the
// session store's delete contract.
// DestroySession does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) DestroySession(ctx context.Context, sessionID string) bool {
	ok := e.sessionStore.Destroy(ctx, sessionID)

	e.metricInc(MetricSessionDestroyed)
	e.emitAudit(ctx, auditEventSessionDestroyed, ok, "", "", sessionID, nil, nil)

	return ok
}

// GetUserSessions describes the getusersessions operation and its observable behavior.
//
// GetUserSessions may return an error when input validation, dependency calls, or security checks fail.
// GetUserSessions does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) GetUserSessions(ctx context.Context, userID string) []*session.Session {
	return e.sessionStore.ListByUser(ctx, userID)
}

// IsSessionOwnedByUser describes the issessionownedbyuser operation and its observable behavior.
//
// IsSessionOwnedByUser may return an error when input validation, dependency calls, or security checks fail.
// IsSessionOwnedByUser does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) IsSessionOwnedByUser(ctx context.Context, userID, sessionID string) bool {
	return e.sessionStore.IsOwnedBy(ctx, userID, sessionID)
}

// InvalidateAllUserSessionsExceptCurrent describes the invalidateallusersessionsexceptcurrent operation and its observable behavior.
//
// InvalidateAllUserSessionsExceptCurrent may return an error when input validation, dependency calls, or security checks fail.
// InvalidateAllUserSessionsExceptCurrent does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) InvalidateAllUserSessionsExceptCurrent(ctx context.Context, userID, keepSessionID string) bool {
	ok := e.sessionStore.InvalidateAllExcept(ctx, userID, keepSessionID)

	e.metricInc(MetricSessionInvalidatedAll)
	e.emitAudit(ctx, auditEventSessionInvalidatedAll, ok, userID, "", keepSessionID, nil, nil)

	return ok
}

// ResolveSession describes the resolvesession operation and its observable behavior.
//
// ResolveSession may return an error when input validation, dependency calls, or security checks fail.
// ResolveSession does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ResolveSession(ctx context.Context, sessionID string) (*Principal, error) {
	sess := e.ValidateSession(ctx, sessionID)
	if sess == nil {
		return nil, ErrSessionNotFound
	}

	user, err := e.users.FindByID(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		// Session outlived the account; treat it as gone and clean up.
		e.sessionStore.Destroy(ctx, sessionID)
		return nil, ErrSessionNotFound
	}

	perms, err := e.resolver.UserPermissions(ctx, sess.UserID)
	if err != nil {
		e.metricInc(MetricPermissionResolutionFailure)
		return nil, err
	}

	return &Principal{
		User: AuthUser{
			ID:          user.ID,
			EmployeeID:  user.EmployeeID,
			FirstName:   user.FirstName,
			LastName:    user.LastName,
			Email:       user.Email,
			Role:        user.PrimaryRole,
			Permissions: perms,
			LastLogin:   user.LastLogin,
		},
		SessionID: sessionID,
	}, nil
}
