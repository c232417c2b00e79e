package permission

import (
	"context"
	"errors"
)

// ErrRoleNotFound is returned by a [Directory] when the role does not exist.
var ErrRoleNotFound = errors.New("role not found")

// ErrPermissionNotFound is returned by a [Directory] when the permission
// does not exist.
var ErrPermissionNotFound = errors.New("permission not found")

// ErrDuplicatePermission is returned when registering a permission whose
// (resource, action) pair already exists.
var ErrDuplicatePermission = errors.New("permission resource:action already exists")

// Permission is an immutable grant identified system-wide by its
// (Resource, Action) pair.
type Permission struct {
	ID          int64
	Name        string
	Resource    string
	Action      string
	Description string
}

// Role owns a set of permissions through an explicit junction. A user holds
// exactly one primary role and any number of additional roles.
type Role struct {
	ID          int64
	Name        string
	Description string
}

// Directory is the external relation store backing resolution: the
// role↔permission junction and the user↔role assignments.
//
// UserPermissions must return the deduplicated union of the user's
// primary-role and additional-role grants, ordered by resource then action.
type Directory interface {
	UserPermissions(ctx context.Context, userID string) ([]Permission, error)
	RolePermissions(ctx context.Context, roleID int64) ([]Permission, error)
	AddRolePermission(ctx context.Context, roleID, permissionID int64) error
	RemoveRolePermission(ctx context.Context, roleID, permissionID int64) error
}

// Resolver answers point-in-time permission queries over a [Directory].
//
// Resolver instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Resolver struct {
	directory Directory
}

// NewResolver creates a [Resolver] over the given directory.
func NewResolver(directory Directory) *Resolver {
	return &Resolver{directory: directory}
}

// HasPermission reports whether a permission matching (resource, action) is
// reachable through the user's primary role or any additional role. The
// union-set membership test makes redundant grants through both paths
// indistinguishable from a single grant.
//
// HasPermission may return an error when input validation, dependency calls, or security checks fail.
// HasPermission does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *Resolver) HasPermission(ctx context.Context, userID, resource, action string) (bool, error) {
	perms, err := r.directory.UserPermissions(ctx, userID)
	if err != nil {
		return false, err
	}

	for _, p := range perms {
		if p.Resource == resource && p.Action == action {
			return true, nil
		}
	}
	return false, nil
}

// UserPermissions returns the user's full effective permission set:
// primary-role grants unioned with additional-role grants, deduplicated by
// permission identity, ordered by resource then action.
//
// UserPermissions may return an error when input validation, dependency calls, or security checks fail.
// UserPermissions does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *Resolver) UserPermissions(ctx context.Context, userID string) ([]Permission, error) {
	return r.directory.UserPermissions(ctx, userID)
}

// RolePermissions returns the permissions directly bound to one role, with
// no per-user resolution.
//
// RolePermissions may return an error when input validation, dependency calls, or security checks fail.
// RolePermissions does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *Resolver) RolePermissions(ctx context.Context, roleID int64) ([]Permission, error) {
	return r.directory.RolePermissions(ctx, roleID)
}

// AddPermissionToRole inserts a role↔permission pairing. Adding an existing
// pairing is a no-op.
//
// AddPermissionToRole may return an error when input validation, dependency calls, or security checks fail.
func (r *Resolver) AddPermissionToRole(ctx context.Context, roleID, permissionID int64) error {
	return r.directory.AddRolePermission(ctx, roleID, permissionID)
}

// RemovePermissionFromRole deletes a role↔permission pairing. Removing an
// absent pairing is a no-op.
//
// RemovePermissionFromRole may return an error when input validation, dependency calls, or security checks fail.
func (r *Resolver) RemovePermissionFromRole(ctx context.Context, roleID, permissionID int64) error {
	return r.directory.RemoveRolePermission(ctx, roleID, permissionID)
}
