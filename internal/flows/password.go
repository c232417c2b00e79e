package flows

import (
	"context"
	"strings"
	"time"
)

// StoredCredential is a flow-local credential model carrying reset state.
type StoredCredential struct {
	PasswordHash     string
	ResetToken       string
	ResetTokenExpiry time.Time
}

// PasswordMetrics carries metric IDs needed by password flows.
type PasswordMetrics struct {
	ChangeSuccess       int
	ChangeInvalidOld    int
	ChangeReuseRejected int
	ResetRequest        int
	ResetConfirmSuccess int
	ResetConfirmFailure int
}

// PasswordEvents carries audit event names used by password flows.
type PasswordEvents struct {
	ChangeSuccess    string
	ChangeInvalidOld string
	ChangeReuse      string
	ChangeFailure    string
	ResetRequest     string
	ResetConfirm     string
	ResetInvalid     string
}

// PasswordErrors carries host-level sentinel errors used by password flows.
type PasswordErrors struct {
	EngineNotReady     error
	UserNotFound       error
	UserInactive       error
	InvalidCredentials error
	PasswordPolicy     error
	PasswordReuse      error
	ResetInvalid       error
}

// PasswordDeps captures change-password and reset-flow dependencies.
type PasswordDeps struct {
	HistoryLimit int
	ResetTTL     time.Duration

	Now func() time.Time

	FindByID         func(context.Context, string) (*AuthUserRecord, error)
	FindByEmail      func(context.Context, string) (*AuthUserRecord, error)
	FindByResetToken func(context.Context, string) (*AuthUserRecord, error)
	Credentials      func(context.Context, string) (*StoredCredential, error)
	PasswordHistory  func(context.Context, string, int) ([]string, error)
	UpdatePassword   func(context.Context, string, string) error
	SaveResetToken   func(context.Context, string, string, time.Time) error

	VerifyPassword     func(string, string) bool
	HashPassword       func(string) (string, error)
	ValidateStrength   func(string) (bool, []string)
	GenerateResetToken func() (string, error)

	InvalidateSessions func(context.Context, string) error
	DestroySessions    func(context.Context, string) error

	MetricInc func(int)
	EmitAudit func(context.Context, string, bool, string, string, string, error, func() map[string]string)
	Warn      func(string, ...any)

	Metrics PasswordMetrics
	Events  PasswordEvents
	Errors  PasswordErrors
}

// RunChangePassword verifies the current password, enforces strength and
// history rules, stores the new hash, and revokes the user's sessions.
func RunChangePassword(ctx context.Context, userID, oldPassword, newPassword string, deps PasswordDeps) error {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.FindByID == nil || deps.Credentials == nil || deps.HashPassword == nil || deps.UpdatePassword == nil {
		return deps.Errors.EngineNotReady
	}
	if userID == "" || oldPassword == "" || newPassword == "" {
		deps.emitAudit(ctx, deps.Events.ChangeFailure, false, userID, "", "", deps.Errors.PasswordPolicy, func() map[string]string {
			return map[string]string{
				"reason": "invalid_input",
			}
		})
		return deps.Errors.PasswordPolicy
	}

	user, err := deps.FindByID(ctx, userID)
	if err != nil || user == nil {
		deps.emitAudit(ctx, deps.Events.ChangeFailure, false, userID, "", "", deps.Errors.UserNotFound, func() map[string]string {
			return map[string]string{
				"reason": "user_not_found",
			}
		})
		return deps.Errors.UserNotFound
	}
	if !user.IsActive {
		deps.emitAudit(ctx, deps.Events.ChangeFailure, false, userID, user.Email, "", deps.Errors.UserInactive, func() map[string]string {
			return map[string]string{
				"reason": "account_inactive",
			}
		})
		return deps.Errors.UserInactive
	}

	cred, err := deps.Credentials(ctx, userID)
	if err != nil || cred == nil {
		deps.warn("crewauth: credential lookup failed during password change")
		deps.emitAudit(ctx, deps.Events.ChangeFailure, false, userID, user.Email, "", deps.Errors.InvalidCredentials, func() map[string]string {
			return map[string]string{
				"reason": "credentials_unavailable",
			}
		})
		return deps.Errors.InvalidCredentials
	}

	if !deps.VerifyPassword(oldPassword, cred.PasswordHash) {
		deps.metricInc(deps.Metrics.ChangeInvalidOld)
		deps.emitAudit(ctx, deps.Events.ChangeInvalidOld, false, userID, user.Email, "", deps.Errors.InvalidCredentials, nil)
		return deps.Errors.InvalidCredentials
	}

	if err := deps.checkStrength(ctx, userID, user.Email, newPassword); err != nil {
		return err
	}

	if err := deps.checkReuse(ctx, userID, user.Email, newPassword, cred.PasswordHash); err != nil {
		return err
	}

	newHash, err := deps.HashPassword(newPassword)
	if err != nil {
		deps.emitAudit(ctx, deps.Events.ChangeFailure, false, userID, user.Email, "", deps.Errors.PasswordPolicy, func() map[string]string {
			return map[string]string{
				"reason": "hash_failed",
			}
		})
		return deps.Errors.PasswordPolicy
	}
	oldPassword = ""
	newPassword = ""

	if err := deps.UpdatePassword(ctx, userID, newHash); err != nil {
		deps.emitAudit(ctx, deps.Events.ChangeFailure, false, userID, user.Email, "", err, func() map[string]string {
			return map[string]string{
				"reason": "update_failed",
			}
		})
		return err
	}

	deps.revokeSessions(ctx, userID)

	deps.metricInc(deps.Metrics.ChangeSuccess)
	deps.emitAudit(ctx, deps.Events.ChangeSuccess, true, userID, user.Email, "", nil, nil)

	return nil
}

// RunRequestPasswordReset issues a single-use reset token for the account
// behind email. Token delivery is the caller's concern.
func RunRequestPasswordReset(ctx context.Context, email string, deps PasswordDeps) (string, error) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.FindByEmail == nil || deps.GenerateResetToken == nil || deps.SaveResetToken == nil {
		return "", deps.Errors.EngineNotReady
	}

	user, err := deps.FindByEmail(ctx, email)
	if err != nil || user == nil {
		deps.emitAudit(ctx, deps.Events.ResetRequest, false, "", email, "", deps.Errors.UserNotFound, func() map[string]string {
			return map[string]string{
				"reason": "user_not_found",
			}
		})
		return "", deps.Errors.UserNotFound
	}
	if !user.IsActive {
		deps.emitAudit(ctx, deps.Events.ResetRequest, false, user.ID, email, "", deps.Errors.UserInactive, func() map[string]string {
			return map[string]string{
				"reason": "account_inactive",
			}
		})
		return "", deps.Errors.UserInactive
	}

	token, err := deps.GenerateResetToken()
	if err != nil {
		deps.warn("crewauth: reset token generation failed")
		return "", err
	}

	expiry := deps.Now().Add(deps.ResetTTL)
	if err := deps.SaveResetToken(ctx, user.ID, token, expiry); err != nil {
		deps.warn("crewauth: reset token persistence failed")
		return "", err
	}

	deps.metricInc(deps.Metrics.ResetRequest)
	deps.emitAudit(ctx, deps.Events.ResetRequest, true, user.ID, email, "", nil, nil)

	return token, nil
}

// RunConfirmPasswordReset consumes a reset token and stores the new password.
// The token and its expiry are cleared by the directory's UpdatePassword
// contract, so a token can never be replayed after a successful confirm.
func RunConfirmPasswordReset(ctx context.Context, token, newPassword string, deps PasswordDeps) error {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.FindByResetToken == nil || deps.Credentials == nil || deps.HashPassword == nil || deps.UpdatePassword == nil {
		return deps.Errors.EngineNotReady
	}
	if token == "" {
		return deps.Errors.ResetInvalid
	}
	if newPassword == "" {
		return deps.Errors.PasswordPolicy
	}

	user, err := deps.FindByResetToken(ctx, token)
	if err != nil || user == nil || !user.IsActive {
		deps.metricInc(deps.Metrics.ResetConfirmFailure)
		deps.emitAudit(ctx, deps.Events.ResetInvalid, false, "", "", "", deps.Errors.ResetInvalid, func() map[string]string {
			return map[string]string{
				"reason": "token_unknown",
			}
		})
		return deps.Errors.ResetInvalid
	}

	cred, err := deps.Credentials(ctx, user.ID)
	if err != nil || cred == nil {
		deps.metricInc(deps.Metrics.ResetConfirmFailure)
		deps.emitAudit(ctx, deps.Events.ResetInvalid, false, user.ID, user.Email, "", deps.Errors.ResetInvalid, func() map[string]string {
			return map[string]string{
				"reason": "credentials_unavailable",
			}
		})
		return deps.Errors.ResetInvalid
	}
	if cred.ResetToken == "" || cred.ResetToken != token || !deps.Now().Before(cred.ResetTokenExpiry) {
		deps.metricInc(deps.Metrics.ResetConfirmFailure)
		deps.emitAudit(ctx, deps.Events.ResetInvalid, false, user.ID, user.Email, "", deps.Errors.ResetInvalid, func() map[string]string {
			return map[string]string{
				"reason": "token_expired_or_mismatched",
			}
		})
		return deps.Errors.ResetInvalid
	}

	if err := deps.checkStrength(ctx, user.ID, user.Email, newPassword); err != nil {
		deps.metricInc(deps.Metrics.ResetConfirmFailure)
		return err
	}

	if err := deps.checkReuse(ctx, user.ID, user.Email, newPassword, cred.PasswordHash); err != nil {
		deps.metricInc(deps.Metrics.ResetConfirmFailure)
		return err
	}

	newHash, err := deps.HashPassword(newPassword)
	if err != nil {
		deps.metricInc(deps.Metrics.ResetConfirmFailure)
		return deps.Errors.PasswordPolicy
	}
	newPassword = ""

	if err := deps.UpdatePassword(ctx, user.ID, newHash); err != nil {
		deps.metricInc(deps.Metrics.ResetConfirmFailure)
		deps.emitAudit(ctx, deps.Events.ResetInvalid, false, user.ID, user.Email, "", err, func() map[string]string {
			return map[string]string{
				"reason": "update_failed",
			}
		})
		return err
	}

	deps.revokeSessions(ctx, user.ID)

	deps.metricInc(deps.Metrics.ResetConfirmSuccess)
	deps.emitAudit(ctx, deps.Events.ResetConfirm, true, user.ID, user.Email, "", nil, nil)

	return nil
}

func (d PasswordDeps) checkStrength(ctx context.Context, userID, email, candidate string) error {
	if d.ValidateStrength == nil {
		return nil
	}
	ok, feedback := d.ValidateStrength(candidate)
	if ok {
		return nil
	}
	d.emitAudit(ctx, d.Events.ChangeFailure, false, userID, email, "", d.Errors.PasswordPolicy, func() map[string]string {
		return map[string]string{
			"reason":   "strength",
			"feedback": strings.Join(feedback, "; "),
		}
	})
	return d.Errors.PasswordPolicy
}

func (d PasswordDeps) checkReuse(ctx context.Context, userID, email, candidate, currentHash string) error {
	hashes := []string{currentHash}
	if d.PasswordHistory != nil && d.HistoryLimit > 0 {
		history, err := d.PasswordHistory(ctx, userID, d.HistoryLimit)
		if err != nil {
			d.warn("crewauth: password history lookup failed")
		} else {
			hashes = append(hashes, history...)
		}
	}

	for _, h := range hashes {
		if h == "" {
			continue
		}
		if d.VerifyPassword(candidate, h) {
			d.metricInc(d.Metrics.ChangeReuseRejected)
			d.emitAudit(ctx, d.Events.ChangeReuse, false, userID, email, "", d.Errors.PasswordReuse, nil)
			return d.Errors.PasswordReuse
		}
	}

	return nil
}

func (d PasswordDeps) revokeSessions(ctx context.Context, userID string) {
	// Session revocation after a credential change is best-effort on the
	// persistence side; the session store itself never surfaces backend
	// failures.
	if d.DestroySessions != nil {
		if err := d.DestroySessions(ctx, userID); err != nil {
			d.warn("crewauth: session destruction failed after password change")
		}
	}
	if d.InvalidateSessions != nil {
		if err := d.InvalidateSessions(ctx, userID); err != nil {
			d.warn("crewauth: session flag invalidation failed after password change")
		}
	}
}

func (d PasswordDeps) metricInc(id int) {
	if d.MetricInc != nil {
		d.MetricInc(id)
	}
}

func (d PasswordDeps) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	email string,
	sessionID string,
	err error,
	metadata func() map[string]string,
) {
	if d.EmitAudit != nil {
		d.EmitAudit(ctx, eventType, success, userID, email, sessionID, err, metadata)
	}
}

func (d PasswordDeps) warn(format string, args ...any) {
	if d.Warn != nil {
		d.Warn(format, args...)
	}
}
