package crewauth

import (
	"context"
	"strconv"

	"github.com/MrEthical07/crewauth/permission"
)

// HasPermission describes the haspermission operation and its observable behavior.
//
// HasPermission may return an error when input validation, dependency calls, or security checks fail.
// HasPermission does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) HasPermission(ctx context.Context, userID, resource, action string) (bool, error) {
	if e == nil || e.resolver == nil {
		return false, ErrEngineNotReady
	}
	return e.resolver.HasPermission(ctx, userID, resource, action)
}

// UserPermissions describes the userpermissions operation and its observable behavior.
//
// UserPermissions may return an error when input validation, dependency calls, or security checks fail.
// UserPermissions does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) UserPermissions(ctx context.Context, userID string) ([]permission.Permission, error) {
	if e == nil || e.resolver == nil {
		return nil, ErrEngineNotReady
	}
	return e.resolver.UserPermissions(ctx, userID)
}

// RolePermissions describes the rolepermissions operation and its observable behavior.
//
// RolePermissions may return an error when input validation, dependency calls, or security checks fail.
// RolePermissions does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) RolePermissions(ctx context.Context, roleID int64) ([]permission.Permission, error) {
	if e == nil || e.resolver == nil {
		return nil, ErrEngineNotReady
	}
	return e.resolver.RolePermissions(ctx, roleID)
}

// AddPermissionToRole describes the addpermissiontorole operation and its observable behavior.
//
// AddPermissionToRole may return an error when input validation, dependency calls, or security checks fail.
// AddPermissionToRole does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AddPermissionToRole(ctx context.Context, roleID, permissionID int64) error {
	if e == nil || e.resolver == nil {
		return ErrEngineNotReady
	}

	err := e.resolver.AddPermissionToRole(ctx, roleID, permissionID)
	if err == nil {
		e.metricInc(MetricPermissionGranted)
	}
	e.emitAudit(ctx, auditEventPermissionGranted, err == nil, "", "", "", err, func() map[string]string {
		return map[string]string{
			"role_id":       strconv.FormatInt(roleID, 10),
			"permission_id": strconv.FormatInt(permissionID, 10),
		}
	})

	return err
}

// RemovePermissionFromRole describes the removepermissionfromrole operation and its observable behavior.
//
// RemovePermissionFromRole may return an error when input validation, dependency calls, or security checks fail.
// RemovePermissionFromRole does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) RemovePermissionFromRole(ctx context.Context, roleID, permissionID int64) error {
	if e == nil || e.resolver == nil {
		return ErrEngineNotReady
	}

	err := e.resolver.RemovePermissionFromRole(ctx, roleID, permissionID)
	if err == nil {
		e.metricInc(MetricPermissionRevoked)
	}
	e.emitAudit(ctx, auditEventPermissionRevoked, err == nil, "", "", "", err, func() map[string]string {
		return map[string]string{
			"role_id":       strconv.FormatInt(roleID, 10),
			"permission_id": strconv.FormatInt(permissionID, 10),
		}
	})

	return err
}
