package crewauth

import (
	"context"
	"errors"

	"github.com/MrEthical07/crewauth/internal/flows"
)

// ChangePassword describes the changepassword operation and its observable behavior.
//
// ChangePassword may return an error when input validation, dependency calls, or security checks fail.
// ChangePassword does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if e == nil || e.hasher == nil {
		return ErrEngineNotReady
	}
	return flows.RunChangePassword(ctx, userID, oldPassword, newPassword, e.flowDeps.Password)
}

// RequestPasswordReset describes the requestpasswordreset operation and its observable behavior.
//
// RequestPasswordReset returns the raw reset token; delivering it to the user
// (email, SMS) is the caller's responsibility.
// RequestPasswordReset may return an error when input validation, dependency calls, or security checks fail.
func (e *Engine) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	if e == nil || e.hasher == nil {
		return "", ErrEngineNotReady
	}
	if !e.config.PasswordReset.Enabled {
		return "", ErrResetInvalid
	}
	return flows.RunRequestPasswordReset(ctx, email, e.flowDeps.Password)
}

// ConfirmPasswordReset describes the confirmpasswordreset operation and its observable behavior.
//
// ConfirmPasswordReset may return an error when input validation, dependency calls, or security checks fail.
// ConfirmPasswordReset does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if e == nil || e.hasher == nil {
		return ErrEngineNotReady
	}
	if !e.config.PasswordReset.Enabled {
		return ErrResetInvalid
	}
	return flows.RunConfirmPasswordReset(ctx, token, newPassword, e.flowDeps.Password)
}

// IsPolicyError reports whether err is a caller-correctable password policy
// failure rather than a backend fault.
func IsPolicyError(err error) bool {
	return errors.Is(err, ErrPasswordPolicy) || errors.Is(err, ErrPasswordReuse)
}
