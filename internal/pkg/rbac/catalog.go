// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rbac

import (
	"slices"
	"sort"
)

// System role identifiers. They exist implicitly in every organization.
const (
	RoleOwner   = "owner"
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleMember  = "member"
	RoleGuest   = "guest"
)

var (
	crud       = []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}
	crudManage = []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionManage}
	taskFull   = []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionAssign, ActionComment}
)

// Catalog maps role identifiers to their ordered grants. A Catalog is never
// mutated after construction and may be shared between goroutines.
type Catalog struct {
	roles map[string][]Permission
	order []string
}

// NewCatalog builds a catalog from the given table. The input is copied.
func NewCatalog(table map[string][]Permission) *Catalog {
	c := &Catalog{roles: make(map[string][]Permission, len(table))}
	for role, perms := range table {
		c.roles[role] = clonePermissions(perms)
		c.order = append(c.order, role)
	}
	sort.Strings(c.order)
	return c
}

// NewSystemCatalog returns the catalog for the five system roles.
func NewSystemCatalog() *Catalog {
	c := NewCatalog(map[string][]Permission{
		RoleOwner:   ownerPermissions(),
		RoleAdmin:   adminPermissions(),
		RoleManager: managerPermissions(),
		RoleMember:  memberPermissions(),
		RoleGuest:   guestPermissions(),
	})
	c.order = []string{RoleOwner, RoleAdmin, RoleManager, RoleMember, RoleGuest}
	return c
}

func ownerPermissions() []Permission {
	return []Permission{
		{Resource: ResourceOrganization, Actions: crudManage, Scope: ScopeAll},
		{Resource: ResourceProject, Actions: crudManage, Scope: ScopeAll},
		{Resource: ResourceTask, Actions: append(slices.Clone(crudManage), ActionAssign, ActionComment), Scope: ScopeAll},
		{Resource: ResourceMilestone, Actions: crudManage, Scope: ScopeAll},
		{Resource: ResourceTeam, Actions: crudManage, Scope: ScopeAll},
		{Resource: ResourceUser, Actions: crudManage, Scope: ScopeAll},
		{Resource: ResourceWorkflow, Actions: crudManage, Scope: ScopeAll},
		{Resource: ResourceStatus, Actions: crudManage, Scope: ScopeAll},
		{Resource: ResourcePriority, Actions: crudManage, Scope: ScopeAll},
		{Resource: ResourceLabel, Actions: crudManage, Scope: ScopeAll},
	}
}

func adminPermissions() []Permission {
	return []Permission{
		{Resource: ResourceOrganization, Actions: []Action{ActionRead, ActionUpdate}},
		{Resource: ResourceProject, Actions: crudManage, Scope: ScopeAll},
		{Resource: ResourceTask, Actions: taskFull, Scope: ScopeAll},
		{Resource: ResourceMilestone, Actions: crud, Scope: ScopeAll},
		{Resource: ResourceTeam, Actions: crudManage, Scope: ScopeAll},
		{Resource: ResourceUser, Actions: []Action{ActionRead, ActionUpdate, ActionManage}, Scope: ScopeAll},
		{Resource: ResourceWorkflow, Actions: crud, Scope: ScopeAll},
	}
}

func managerPermissions() []Permission {
	return []Permission{
		{Resource: ResourceProject, Actions: []Action{ActionCreate, ActionRead, ActionUpdate, ActionManage}, Scope: ScopeTeam},
		{Resource: ResourceTask, Actions: taskFull, Scope: ScopeTeam},
		{Resource: ResourceMilestone, Actions: crud, Scope: ScopeTeam},
		{Resource: ResourceTeam, Actions: []Action{ActionRead, ActionUpdate}, Scope: ScopeTeam},
		{Resource: ResourceUser, Actions: []Action{ActionRead}, Scope: ScopeAll},
	}
}

func memberPermissions() []Permission {
	return []Permission{
		{Resource: ResourceProject, Actions: []Action{ActionRead}, Scope: ScopeTeam},
		{Resource: ResourceTask, Actions: []Action{ActionCreate, ActionRead, ActionUpdate, ActionComment}, Scope: ScopeTeam},
		{Resource: ResourceTask, Actions: []Action{ActionUpdate, ActionDelete}, Scope: ScopeOwn},
		{Resource: ResourceMilestone, Actions: []Action{ActionRead}, Scope: ScopeTeam},
		{Resource: ResourceTeam, Actions: []Action{ActionRead}, Scope: ScopeTeam},
		{Resource: ResourceUser, Actions: []Action{ActionRead}, Scope: ScopeAll},
	}
}

func guestPermissions() []Permission {
	return []Permission{
		{Resource: ResourceProject, Actions: []Action{ActionRead}, Scope: ScopeTeam},
		{Resource: ResourceTask, Actions: []Action{ActionRead, ActionComment}, Scope: ScopeTeam},
		{Resource: ResourceTeam, Actions: []Action{ActionRead}, Scope: ScopeTeam},
		{Resource: ResourceUser, Actions: []Action{ActionRead}, Scope: ScopeAll},
	}
}

// PermissionsForRole returns a copy of the grants for role.
// Unknown roles yield an empty list.
func (c *Catalog) PermissionsForRole(role string) []Permission {
	perms := clonePermissions(c.grants(role))
	if perms == nil {
		return []Permission{}
	}
	return perms
}

// grants returns the shared slice; callers must not modify it.
func (c *Catalog) grants(role string) []Permission {
	if c == nil {
		return nil
	}
	return c.roles[role]
}

// Has reports whether role is defined in the catalog.
func (c *Catalog) Has(role string) bool {
	if c == nil {
		return false
	}
	_, ok := c.roles[role]
	return ok
}

// Roles lists the catalog roles. System catalogs list them from most to least privileged.
func (c *Catalog) Roles() []string {
	if c == nil {
		return nil
	}
	return slices.Clone(c.order)
}

// IsSystemRole reports whether role is one of the five built-in roles.
func IsSystemRole(role string) bool {
	switch role {
	case RoleOwner, RoleAdmin, RoleManager, RoleMember, RoleGuest:
		return true
	}
	return false
}

// IsOwnerOrAdmin 判断是否为组织所有者或管理员
func IsOwnerOrAdmin(role string) bool {
	return role == RoleOwner || role == RoleAdmin
}
