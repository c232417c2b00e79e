package crewauth

import (
	"context"
	"log"
	"time"

	"github.com/MrEthical07/crewauth/internal/flows"
	"github.com/MrEthical07/crewauth/password"
)

// buildFlowDeps wires the engine's collaborators into the typed dependency
// structs consumed by internal/flows. Built once at construction time.
func (e *Engine) buildFlowDeps() flows.Deps {
	return flows.Deps{
		Authenticate: e.buildAuthenticateDeps(),
		Password:     e.buildPasswordDeps(),
	}
}

func (e *Engine) buildAuthenticateDeps() flows.AuthenticateDeps {
	return flows.AuthenticateDeps{
		FindByEmail: func(ctx context.Context, email string) (*flows.AuthUserRecord, error) {
			user, err := e.users.FindByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			return toFlowUser(user), nil
		},
		Credentials: func(ctx context.Context, userID string) (*flows.CredentialRecord, error) {
			cred, err := e.users.Credentials(ctx, userID)
			if err != nil {
				return nil, err
			}
			if cred == nil {
				return nil, nil
			}
			return &flows.CredentialRecord{PasswordHash: cred.PasswordHash}, nil
		},
		VerifyPassword: e.hasher.Verify,
		ResolvePermissions: func(ctx context.Context, userID string) ([]flows.PermissionRecord, error) {
			perms, err := e.resolver.UserPermissions(ctx, userID)
			if err != nil {
				return nil, err
			}
			out := make([]flows.PermissionRecord, 0, len(perms))
			for _, p := range perms {
				out = append(out, flows.PermissionRecord{
					ID:          p.ID,
					Name:        p.Name,
					Resource:    p.Resource,
					Action:      p.Action,
					Description: p.Description,
				})
			}
			return out, nil
		},
		UpdateLastLogin: e.users.UpdateLastLogin,

		MetricInc: e.flowMetricInc,
		EmitAudit: e.emitAudit,
		Warn:      log.Printf,

		Metrics: flows.AuthMetrics{
			LoginSuccess:                int(MetricLoginSuccess),
			LoginFailure:                int(MetricLoginFailure),
			PermissionResolutionFailure: int(MetricPermissionResolutionFailure),
		},
		Events: flows.AuthEvents{
			LoginSuccess:                auditEventLoginSuccess,
			LoginFailure:                auditEventLoginFailure,
			CredentialsMissing:          auditEventCredentialsMissing,
			PermissionResolutionFailure: auditEventPermissionResolutionFailure,
		},
		Errors: flows.AuthErrors{
			EngineNotReady:     ErrEngineNotReady,
			UserNotFound:       ErrUserNotFound,
			UserInactive:       ErrUserInactive,
			InvalidCredentials: ErrInvalidCredentials,
			CredentialsMissing: ErrCredentialsNotFound,
		},
	}
}

func (e *Engine) buildPasswordDeps() flows.PasswordDeps {
	return flows.PasswordDeps{
		HistoryLimit: e.config.Password.HistoryLimit,
		ResetTTL:     e.config.PasswordReset.ResetTTL,

		Now: time.Now,

		FindByID: func(ctx context.Context, id string) (*flows.AuthUserRecord, error) {
			user, err := e.users.FindByID(ctx, id)
			if err != nil {
				return nil, err
			}
			return toFlowUser(user), nil
		},
		FindByEmail: func(ctx context.Context, email string) (*flows.AuthUserRecord, error) {
			user, err := e.users.FindByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			return toFlowUser(user), nil
		},
		FindByResetToken: func(ctx context.Context, token string) (*flows.AuthUserRecord, error) {
			user, err := e.users.FindByResetToken(ctx, token)
			if err != nil {
				return nil, err
			}
			return toFlowUser(user), nil
		},
		Credentials: func(ctx context.Context, userID string) (*flows.StoredCredential, error) {
			cred, err := e.users.Credentials(ctx, userID)
			if err != nil {
				return nil, err
			}
			if cred == nil {
				return nil, nil
			}
			return &flows.StoredCredential{
				PasswordHash:     cred.PasswordHash,
				ResetToken:       cred.ResetToken,
				ResetTokenExpiry: cred.ResetTokenExpiry,
			}, nil
		},
		PasswordHistory: func(ctx context.Context, userID string, limit int) ([]string, error) {
			entries, err := e.users.PasswordHistory(ctx, userID, limit)
			if err != nil {
				return nil, err
			}
			hashes := make([]string, 0, len(entries))
			for _, entry := range entries {
				hashes = append(hashes, entry.PasswordHash)
			}
			return hashes, nil
		},
		UpdatePassword: e.users.UpdatePassword,
		SaveResetToken: e.users.SaveResetToken,

		VerifyPassword: e.hasher.Verify,
		HashPassword:   e.hasher.Hash,
		ValidateStrength: func(pw string) (bool, []string) {
			s := password.ValidateStrength(pw, password.StrengthOptions{
				CheckCommonPatterns: e.config.Password.CheckCommonPatterns,
			})
			return s.Valid, s.Feedback
		},
		GenerateResetToken: password.GenerateResetToken,

		InvalidateSessions: e.users.InvalidateSessions,
		DestroySessions: func(ctx context.Context, userID string) error {
			e.sessionStore.InvalidateAllExcept(ctx, userID, "")
			return nil
		},

		MetricInc: e.flowMetricInc,
		EmitAudit: e.emitAudit,
		Warn:      log.Printf,

		Metrics: flows.PasswordMetrics{
			ChangeSuccess:       int(MetricPasswordChangeSuccess),
			ChangeInvalidOld:    int(MetricPasswordChangeInvalidOld),
			ChangeReuseRejected: int(MetricPasswordChangeReuseRejected),
			ResetRequest:        int(MetricPasswordResetRequest),
			ResetConfirmSuccess: int(MetricPasswordResetConfirmSuccess),
			ResetConfirmFailure: int(MetricPasswordResetConfirmFailure),
		},
		Events: flows.PasswordEvents{
			ChangeSuccess:    auditEventPasswordChangeSuccess,
			ChangeInvalidOld: auditEventPasswordChangeInvalidOld,
			ChangeReuse:      auditEventPasswordChangeReuse,
			ChangeFailure:    auditEventPasswordChangeFailure,
			ResetRequest:     auditEventPasswordResetRequest,
			ResetConfirm:     auditEventPasswordResetConfirm,
			ResetInvalid:     auditEventPasswordResetInvalid,
		},
		Errors: flows.PasswordErrors{
			EngineNotReady:     ErrEngineNotReady,
			UserNotFound:       ErrUserNotFound,
			UserInactive:       ErrUserInactive,
			InvalidCredentials: ErrInvalidCredentials,
			PasswordPolicy:     ErrPasswordPolicy,
			PasswordReuse:      ErrPasswordReuse,
			ResetInvalid:       ErrResetInvalid,
		},
	}
}

func (e *Engine) flowMetricInc(id int) {
	if id < 0 || id >= int(metricIDCount) {
		return
	}
	e.metricInc(MetricID(id))
}

func toFlowUser(u *UserRecord) *flows.AuthUserRecord {
	if u == nil {
		return nil
	}
	return &flows.AuthUserRecord{
		ID:          u.ID,
		EmployeeID:  u.EmployeeID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		PrimaryRole: u.PrimaryRole,
		IsActive:    u.IsActive,
		LastLogin:   u.LastLogin,
	}
}
