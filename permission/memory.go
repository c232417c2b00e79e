package permission

import (
	"context"
	"sort"
	"sync"
)

// MemoryDirectory is a mutex-guarded in-memory [Directory] for tests and
// single-process deployments. It enforces (resource, action) uniqueness and
// the idempotency contract on junction mutations.
//
//	Docs: doc.go (architecture boundaries)
type MemoryDirectory struct {
	mu sync.RWMutex

	permissions map[int64]Permission
	roles       map[int64]Role
	rolePerms   map[int64]map[int64]bool

	primaryRole     map[string]int64
	additionalRoles map[string]map[int64]bool

	nextPermissionID int64
	nextRoleID       int64
}

// NewMemoryDirectory creates an empty [MemoryDirectory].
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		permissions:      make(map[int64]Permission),
		roles:            make(map[int64]Role),
		rolePerms:        make(map[int64]map[int64]bool),
		primaryRole:      make(map[string]int64),
		additionalRoles:  make(map[string]map[int64]bool),
		nextPermissionID: 1,
		nextRoleID:       1,
	}
}

// CreatePermission registers a permission. The (resource, action) pair must
// be unique system-wide.
func (d *MemoryDirectory) CreatePermission(name, resource, action, description string) (Permission, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, p := range d.permissions {
		if p.Resource == resource && p.Action == action {
			return Permission{}, ErrDuplicatePermission
		}
	}

	perm := Permission{
		ID:          d.nextPermissionID,
		Name:        name,
		Resource:    resource,
		Action:      action,
		Description: description,
	}
	d.nextPermissionID++
	d.permissions[perm.ID] = perm
	return perm, nil
}

// CreateRole registers a role with a unique name.
func (d *MemoryDirectory) CreateRole(name, description string) Role {
	d.mu.Lock()
	defer d.mu.Unlock()

	role := Role{ID: d.nextRoleID, Name: name, Description: description}
	d.nextRoleID++
	d.roles[role.ID] = role
	d.rolePerms[role.ID] = make(map[int64]bool)
	return role
}

// SetPrimaryRole assigns the user's single mandatory role.
func (d *MemoryDirectory) SetPrimaryRole(userID string, roleID int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.primaryRole[userID] = roleID
}

// AddAdditionalRole grants the user a supplementary role. Idempotent.
func (d *MemoryDirectory) AddAdditionalRole(userID string, roleID int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.additionalRoles[userID] == nil {
		d.additionalRoles[userID] = make(map[int64]bool)
	}
	d.additionalRoles[userID][roleID] = true
}

// UserPermissions implements [Directory].
func (d *MemoryDirectory) UserPermissions(_ context.Context, userID string) ([]Permission, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	effective := make(map[int64]Permission)

	if roleID, ok := d.primaryRole[userID]; ok {
		for permID := range d.rolePerms[roleID] {
			effective[permID] = d.permissions[permID]
		}
	}
	for roleID := range d.additionalRoles[userID] {
		for permID := range d.rolePerms[roleID] {
			effective[permID] = d.permissions[permID]
		}
	}

	return sortPermissions(effective), nil
}

// RolePermissions implements [Directory].
func (d *MemoryDirectory) RolePermissions(_ context.Context, roleID int64) ([]Permission, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if _, ok := d.roles[roleID]; !ok {
		return nil, ErrRoleNotFound
	}

	bound := make(map[int64]Permission)
	for permID := range d.rolePerms[roleID] {
		bound[permID] = d.permissions[permID]
	}
	return sortPermissions(bound), nil
}

// AddRolePermission implements [Directory]. Adding an existing pairing is a
// no-op.
func (d *MemoryDirectory) AddRolePermission(_ context.Context, roleID, permissionID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.roles[roleID]; !ok {
		return ErrRoleNotFound
	}
	if _, ok := d.permissions[permissionID]; !ok {
		return ErrPermissionNotFound
	}
	d.rolePerms[roleID][permissionID] = true
	return nil
}

// RemoveRolePermission implements [Directory]. Removing an absent pairing is
// a no-op.
func (d *MemoryDirectory) RemoveRolePermission(_ context.Context, roleID, permissionID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.roles[roleID]; !ok {
		return ErrRoleNotFound
	}
	delete(d.rolePerms[roleID], permissionID)
	return nil
}

func sortPermissions(set map[int64]Permission) []Permission {
	out := make([]Permission, 0, len(set))
	for _, p := range set {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Resource == out[j].Resource {
			return out[i].Action < out[j].Action
		}
		return out[i].Resource < out[j].Resource
	})
	return out
}
