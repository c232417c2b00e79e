package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrEthical07/crewauth/permission"
)

const permissionColumns = `p.id, p.name, p.resource, p.action, COALESCE(p.description, '')`

const (
	queryUserPermissions = `SELECT DISTINCT ` + permissionColumns + `
  FROM permissions p
  JOIN role_permissions rp ON rp.permission_id = p.id
 WHERE rp.role_id IN (
           SELECT role_id FROM users WHERE id = $1
           UNION
           SELECT role_id FROM user_roles WHERE user_id = $1
       )
 ORDER BY p.resource, p.action`

	queryRolePermissions = `SELECT ` + permissionColumns + `
  FROM permissions p
  JOIN role_permissions rp ON rp.permission_id = p.id
 WHERE rp.role_id = $1
 ORDER BY p.resource, p.action`

	queryRoleExists = `SELECT EXISTS (SELECT 1 FROM roles WHERE id = $1)`

	execAddRolePermission = `INSERT INTO role_permissions (role_id, permission_id)
VALUES ($1, $2)
ON CONFLICT (role_id, permission_id) DO NOTHING`

	execRemoveRolePermission = `DELETE FROM role_permissions
 WHERE role_id = $1 AND permission_id = $2`
)

// PostgresPermissionDirectory defines a public type used by crewauth APIs.
//
// PostgresPermissionDirectory instances are intended to be configured during
// initialization and then treated as immutable unless documented otherwise.
type PostgresPermissionDirectory struct {
	db Querier
}

// NewPostgresPermissionDirectory describes the newpostgrespermissiondirectory operation and its observable behavior.
//
// NewPostgresPermissionDirectory may return an error when input validation, dependency calls, or security checks fail.
// NewPostgresPermissionDirectory does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewPostgresPermissionDirectory(db Querier) *PostgresPermissionDirectory {
	return &PostgresPermissionDirectory{db: db}
}

// UserPermissions describes the userpermissions operation and its observable behavior.
//
// UserPermissions may return an error when input validation, dependency calls, or security checks fail.
// UserPermissions does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (d *PostgresPermissionDirectory) UserPermissions(ctx context.Context, userID string) ([]permission.Permission, error) {
	return d.queryPermissions(ctx, queryUserPermissions, userID)
}

// RolePermissions describes the rolepermissions operation and its observable behavior.
//
// RolePermissions may return an error when input validation, dependency calls, or security checks fail.
// RolePermissions does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (d *PostgresPermissionDirectory) RolePermissions(ctx context.Context, roleID int64) ([]permission.Permission, error) {
	var exists bool
	if err := d.db.QueryRow(ctx, queryRoleExists, roleID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("directory: role lookup: %w", err)
	}
	if !exists {
		return nil, permission.ErrRoleNotFound
	}

	return d.queryPermissions(ctx, queryRolePermissions, roleID)
}

// AddRolePermission describes the addrolepermission operation and its observable behavior.
//
// AddRolePermission may return an error when input validation, dependency calls, or security checks fail.
// AddRolePermission does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (d *PostgresPermissionDirectory) AddRolePermission(ctx context.Context, roleID, permissionID int64) error {
	if _, err := d.db.Exec(ctx, execAddRolePermission, roleID, permissionID); err != nil {
		if mapped := mapForeignKeyError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("directory: add role permission: %w", err)
	}
	return nil
}

// RemoveRolePermission describes the removerolepermission operation and its observable behavior.
//
// RemoveRolePermission may return an error when input validation, dependency calls, or security checks fail.
// RemoveRolePermission does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (d *PostgresPermissionDirectory) RemoveRolePermission(ctx context.Context, roleID, permissionID int64) error {
	if _, err := d.db.Exec(ctx, execRemoveRolePermission, roleID, permissionID); err != nil {
		return fmt.Errorf("directory: remove role permission: %w", err)
	}
	return nil
}

func (d *PostgresPermissionDirectory) queryPermissions(ctx context.Context, query string, arg any) ([]permission.Permission, error) {
	rows, err := d.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("directory: permission query: %w", err)
	}
	defer rows.Close()

	var perms []permission.Permission
	for rows.Next() {
		var p permission.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Resource, &p.Action, &p.Description); err != nil {
			return nil, fmt.Errorf("directory: permission scan: %w", err)
		}
		perms = append(perms, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("directory: permission rows: %w", err)
	}

	return perms, nil
}

// pgForeignKeyViolation is the SQLSTATE for foreign_key_violation.
const pgForeignKeyViolation = "23503"

func mapForeignKeyError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgForeignKeyViolation {
		return nil
	}
	if strings.Contains(pgErr.ConstraintName, "role") && !strings.Contains(pgErr.ConstraintName, "permission") {
		return permission.ErrRoleNotFound
	}
	return permission.ErrPermissionNotFound
}
