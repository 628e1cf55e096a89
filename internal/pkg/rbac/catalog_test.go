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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemCatalog_Roles(t *testing.T) {
	c := NewSystemCatalog()
	assert.Equal(t, []string{RoleOwner, RoleAdmin, RoleManager, RoleMember, RoleGuest}, c.Roles())
	for _, role := range c.Roles() {
		assert.True(t, c.Has(role))
		assert.True(t, IsSystemRole(role))
		require.NoError(t, ValidatePermissions(c.PermissionsForRole(role)), role)
	}
	assert.False(t, c.Has("auditor"))
	assert.False(t, IsSystemRole("auditor"))
}

func TestCatalog_UnknownRoleIsEmpty(t *testing.T) {
	c := NewSystemCatalog()
	perms := c.PermissionsForRole("auditor")
	require.NotNil(t, perms)
	assert.Empty(t, perms)

	var nilCatalog *Catalog
	assert.Empty(t, nilCatalog.PermissionsForRole(RoleOwner))
	assert.False(t, nilCatalog.Has(RoleOwner))
}

func TestCatalog_ReturnsCopies(t *testing.T) {
	c := NewSystemCatalog()
	perms := c.PermissionsForRole(RoleGuest)
	perms[0].Actions[0] = ActionDelete
	perms[0].Scope = ScopeAll

	again := c.PermissionsForRole(RoleGuest)
	assert.Equal(t, []Action{ActionRead}, again[0].Actions)
	assert.Equal(t, ScopeTeam, again[0].Scope)
}

func TestNewCatalog_CopiesInput(t *testing.T) {
	table := map[string][]Permission{
		"auditor": {{Resource: ResourceTask, Actions: []Action{ActionRead}}},
	}
	c := NewCatalog(table)
	table["auditor"][0].Actions[0] = ActionDelete

	assert.Equal(t, []Action{ActionRead}, c.PermissionsForRole("auditor")[0].Actions)
}

func TestSystemCatalog_Content(t *testing.T) {
	c := NewSystemCatalog()

	owner := c.PermissionsForRole(RoleOwner)
	require.Len(t, owner, 10)
	for _, p := range owner {
		assert.Equal(t, ScopeAll, p.Scope)
		for _, a := range crudManage {
			assert.True(t, p.Allows(a), "owner %s %s", p.Resource, a)
		}
	}
	assert.ElementsMatch(t, []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionManage, ActionAssign, ActionComment}, owner[2].Actions)

	admin := c.PermissionsForRole(RoleAdmin)
	require.Len(t, admin, 7)
	assert.Equal(t, Permission{Resource: ResourceOrganization, Actions: []Action{ActionRead, ActionUpdate}}, admin[0])

	member := c.PermissionsForRole(RoleMember)
	require.Len(t, member, 6)
	assert.Equal(t, ResourceTask, member[1].Resource)
	assert.Equal(t, ScopeTeam, member[1].Scope)
	assert.Equal(t, ResourceTask, member[2].Resource)
	assert.Equal(t, ScopeOwn, member[2].Scope)
	assert.Equal(t, []Action{ActionUpdate, ActionDelete}, member[2].Actions)
}

func TestIsOwnerOrAdmin(t *testing.T) {
	assert.True(t, IsOwnerOrAdmin(RoleOwner))
	assert.True(t, IsOwnerOrAdmin(RoleAdmin))
	assert.False(t, IsOwnerOrAdmin(RoleManager))
	assert.False(t, IsOwnerOrAdmin(""))
}

func TestPermission_Validate(t *testing.T) {
	tests := []struct {
		name    string
		perm    Permission
		wantErr bool
	}{
		{name: "valid unscoped", perm: Permission{Resource: ResourceLabel, Actions: []Action{ActionRead}}},
		{name: "valid own", perm: Permission{Resource: ResourceTimeEntry, Actions: []Action{ActionUpdate}, Scope: ScopeOwn}},
		{name: "unknown resource", perm: Permission{Resource: "board", Actions: []Action{ActionRead}}, wantErr: true},
		{name: "unknown action", perm: Permission{Resource: ResourceTask, Actions: []Action{"archive"}}, wantErr: true},
		{name: "unknown scope", perm: Permission{Resource: ResourceTask, Actions: []Action{ActionRead}, Scope: "region"}, wantErr: true},
		{name: "no actions", perm: Permission{Resource: ResourceTask}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.perm.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestParse(t *testing.T) {
	r, err := ParseResource("timeEntry")
	require.NoError(t, err)
	assert.Equal(t, ResourceTimeEntry, r)

	_, err = ParseResource("timeentry")
	assert.ErrorIs(t, err, ErrInvalidInput)

	a, err := ParseAction("assign")
	require.NoError(t, err)
	assert.Equal(t, ActionAssign, a)

	_, err = ParseAction("")
	assert.ErrorIs(t, err, ErrInvalidInput)

	s, err := ParseScope("")
	require.NoError(t, err)
	assert.True(t, Permission{Scope: s}.Unscoped())

	_, err = ParseScope("everyone")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
