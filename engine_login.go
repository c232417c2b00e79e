package crewauth

import (
	"context"

	"github.com/MrEthical07/crewauth/internal/flows"
	"github.com/MrEthical07/crewauth/permission"
)

// Authenticate describes the authenticate operation and its observable behavior.
//
// Authenticate never returns an error to the caller: every failure mode,
// including unexpected backend faults, is folded into a structured AuthResult.
// Authenticate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Authenticate(ctx context.Context, email, plainPassword string) AuthResult {
	if e == nil || e.hasher == nil || e.users == nil || e.resolver == nil {
		return AuthResult{
			Reason:  FailureInternal,
			Message: flows.MessageAuthFailed,
		}
	}

	outcome, err := flows.RunAuthenticate(ctx, email, plainPassword, e.flowDeps.Authenticate)
	if err != nil || outcome == nil {
		return AuthResult{
			Reason:  FailureInternal,
			Message: flows.MessageAuthFailed,
		}
	}

	if !outcome.Success {
		return AuthResult{
			Reason:  failureReasonFromFlow(outcome.Reason),
			Message: outcome.Message,
		}
	}

	perms := make([]permission.Permission, 0, len(outcome.Permissions))
	for _, p := range outcome.Permissions {
		perms = append(perms, permission.Permission{
			ID:          p.ID,
			Name:        p.Name,
			Resource:    p.Resource,
			Action:      p.Action,
			Description: p.Description,
		})
	}

	return AuthResult{
		Success: true,
		User: &AuthUser{
			ID:          outcome.User.ID,
			EmployeeID:  outcome.User.EmployeeID,
			FirstName:   outcome.User.FirstName,
			LastName:    outcome.User.LastName,
			Email:       outcome.User.Email,
			Role:        outcome.User.PrimaryRole,
			Permissions: perms,
			LastLogin:   outcome.User.LastLogin,
		},
	}
}

func failureReasonFromFlow(reason int) FailureReason {
	switch reason {
	case flows.ReasonUserNotFound:
		return FailureUserNotFound
	case flows.ReasonInactive:
		return FailureInactive
	case flows.ReasonInvalidCredentials:
		return FailureInvalidCredentials
	default:
		return FailureInternal
	}
}
