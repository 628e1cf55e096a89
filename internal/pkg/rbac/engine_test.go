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
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMember(role string, teams ...string) *Member {
	return &Member{
		OrganizationId: "org-1",
		UserId:         "u-1",
		Role:           role,
		Teams:          teams,
		Status:         MemberStatusActive,
	}
}

func TestEngine_InactiveMemberIsDenied(t *testing.T) {
	e := NewEngine(NewSystemCatalog())
	ac := &AuthContext{CreatorId: "u-1", TeamIds: []string{"t1"}}

	for _, status := range []MemberStatus{MemberStatusInvited, MemberStatusSuspended, ""} {
		m := newMember(RoleOwner, "t1")
		m.Status = status
		m.Permissions = []Permission{{Resource: ResourceTask, Actions: Actions()}}
		for _, r := range Resources() {
			for _, a := range Actions() {
				ok, err := e.HasPermission(m, r, a, ac)
				require.NoError(t, err)
				assert.False(t, ok, "status=%q %s:%s", status, r, a)
			}
			allowed, err := e.GetAllowedActions(m, r, ac)
			require.NoError(t, err)
			assert.Empty(t, allowed)
		}
	}
}

func TestEngine_UnknownRoleGrantsNothing(t *testing.T) {
	e := NewEngine(NewSystemCatalog())
	m := newMember("billing", "t1")
	ac := &AuthContext{CreatorId: "u-1", TeamIds: []string{"t1"}}
	for _, r := range Resources() {
		allowed, err := e.GetAllowedActions(m, r, ac)
		require.NoError(t, err)
		assert.Empty(t, allowed, r)
	}
}

func TestEngine_OwnerDeletesTaskWithoutContext(t *testing.T) {
	e := NewEngine(NewSystemCatalog())
	ok, err := e.HasPermission(newMember(RoleOwner), ResourceTask, ActionDelete, nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEngine_ManagerTeamScope(t *testing.T) {
	e := NewEngine(NewSystemCatalog())
	m := newMember(RoleManager, "T1")

	ok, err := e.HasPermission(m, ResourceTask, ActionUpdate, InTeams("T2"))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = e.HasPermission(m, ResourceTask, ActionUpdate, InTeams("T1", "T2"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.HasPermission(m, ResourceTask, ActionUpdate, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	d, err := e.Evaluate(m, ResourceTask, ActionUpdate, &AuthContext{})
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonMissingContext, d.Reason)
}

func TestEngine_MemberOwnScope(t *testing.T) {
	e := NewEngine(NewSystemCatalog())
	m := newMember(RoleMember, "T1")

	foreign := &AuthContext{CreatorId: "u-2", TeamIds: []string{"T9"}}
	ok, err := e.HasPermission(m, ResourceTask, ActionDelete, foreign)
	require.NoError(t, err)
	assert.False(t, ok)

	mine := &AuthContext{CreatorId: "u-1", TeamIds: []string{"T9"}}
	ok, err = e.HasPermission(m, ResourceTask, ActionDelete, mine)
	require.NoError(t, err)
	assert.True(t, ok)

	// delete is never team scoped for member
	ok, err = e.HasPermission(m, ResourceTask, ActionDelete, InTeams("T1"))
	require.NoError(t, err)
	assert.False(t, ok)

	d, err := e.Evaluate(m, ResourceTask, ActionDelete, mine)
	require.NoError(t, err)
	require.NotNil(t, d.Grant)
	assert.Equal(t, ScopeOwn, d.Grant.Scope)
}

func TestEngine_AdminHasNoStatusGrants(t *testing.T) {
	e := NewEngine(NewSystemCatalog())
	allowed, err := e.GetAllowedActions(newMember(RoleAdmin), ResourceStatus, nil)
	require.NoError(t, err)
	assert.NotNil(t, allowed)
	assert.Empty(t, allowed)
}

func TestEngine_MemberGrantsExtendRole(t *testing.T) {
	e := NewEngine(NewSystemCatalog())
	m := newMember(RoleAdmin)
	m.Permissions = []Permission{{Resource: ResourceStatus, Actions: []Action{ActionRead, ActionUpdate}}}

	allowed, err := e.GetAllowedActions(m, ResourceStatus, nil)
	require.NoError(t, err)
	assert.Equal(t, []Action{ActionRead, ActionUpdate}, allowed)
}

func TestEngine_CustomRoleGrants(t *testing.T) {
	e := NewEngine(NewSystemCatalog())
	m := newMember("reviewer", "T1")
	m.RolePermissions = []Permission{{Resource: ResourceComment, Actions: []Action{ActionCreate, ActionRead}, Scope: ScopeTeam}}

	ok, err := e.HasPermission(m, ResourceComment, ActionCreate, InTeams("T1"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.HasPermission(m, ResourceComment, ActionDelete, InTeams("T1"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEngine_AllowedActionsOrder(t *testing.T) {
	e := NewEngine(NewSystemCatalog())
	m := newMember(RoleMember, "T1")
	ac := &AuthContext{CreatorId: "u-1", TeamIds: []string{"T1"}}

	allowed, err := e.GetAllowedActions(m, ResourceTask, ac)
	require.NoError(t, err)
	assert.Equal(t, []Action{ActionCreate, ActionRead, ActionUpdate, ActionComment, ActionDelete}, allowed)

	allowed, err = e.GetAllowedActions(m, ResourceTask, OwnedBy("u-1"))
	require.NoError(t, err)
	assert.Equal(t, []Action{ActionUpdate, ActionDelete}, allowed)
}

func TestEngine_CanManage(t *testing.T) {
	e := NewEngine(NewSystemCatalog())

	ok, err := e.CanManage(newMember(RoleAdmin), ResourceProject)
	require.NoError(t, err)
	assert.True(t, ok)

	// team scoped manage never satisfies the context-free check
	ok, err = e.CanManage(newMember(RoleManager, "T1"), ResourceProject)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = e.CanManage(newMember(RoleAdmin), ResourceOrganization)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEngine_HasAnyPermission(t *testing.T) {
	e := NewEngine(NewSystemCatalog())
	m := newMember(RoleGuest, "T1")

	ok, err := e.HasAnyPermission(m, ResourceTask, []Action{ActionDelete, ActionComment}, InTeams("T1"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.HasAnyPermission(m, ResourceTask, []Action{ActionDelete, ActionUpdate}, InTeams("T1"))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = e.HasAnyPermission(m, ResourceTask, nil, InTeams("T1"))
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = e.HasAnyPermission(m, ResourceTask, []Action{ActionRead, "archive"}, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestEngine_InvalidInput(t *testing.T) {
	e := NewEngine(NewSystemCatalog())

	_, err := e.HasPermission(nil, ResourceTask, ActionRead, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.HasPermission(newMember(RoleOwner), "board", ActionRead, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.HasPermission(newMember(RoleOwner), ResourceTask, "archive", nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.GetAllowedActions(nil, ResourceTask, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.CanManage(nil, ResourceTask)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.ResourcePermissions(newMember(RoleOwner), "board")
	assert.ErrorIs(t, err, ErrInvalidInput)

	// a suspended member with a bad resource is still a malformed call
	m := newMember(RoleOwner)
	m.Status = MemberStatusSuspended
	_, err = e.HasPermission(m, "board", ActionRead, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestEngine_NilCatalog(t *testing.T) {
	e := NewEngine(nil)
	m := newMember(RoleOwner)

	ok, err := e.HasPermission(m, ResourceTask, ActionRead, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	m.Permissions = []Permission{{Resource: ResourceTask, Actions: []Action{ActionRead}}}
	ok, err = e.HasPermission(m, ResourceTask, ActionRead, nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEngine_ResourcePermissions(t *testing.T) {
	e := NewEngine(NewSystemCatalog())
	m := newMember(RoleMember)
	m.Permissions = []Permission{{Resource: ResourceTask, Actions: []Action{ActionAssign}, Scope: ScopeTeam}}

	perms, err := e.ResourcePermissions(m, ResourceTask)
	require.NoError(t, err)
	require.Len(t, perms, 3)
	assert.Equal(t, ScopeTeam, perms[0].Scope)
	assert.Equal(t, ScopeOwn, perms[1].Scope)
	assert.Equal(t, []Action{ActionAssign}, perms[2].Actions)
}

func TestEngine_UnknownScopeNeverMatches(t *testing.T) {
	e := NewEngine(NewSystemCatalog())
	m := newMember(RoleGuest, "T1")
	m.Permissions = []Permission{{Resource: ResourceLabel, Actions: []Action{ActionRead}, Scope: "region"}}

	ok, err := e.HasPermission(m, ResourceLabel, ActionRead, &AuthContext{CreatorId: "u-1", TeamIds: []string{"T1"}})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEngine_AllowedActionsAgreeWithHasPermission(t *testing.T) {
	e := NewEngine(NewSystemCatalog())
	contexts := []*AuthContext{
		nil,
		{},
		InTeams("T1"),
		InTeams("T2"),
		OwnedBy("u-1"),
		OwnedBy("u-2", "T1"),
		{CreatorId: "u-1", TeamIds: []string{"T1", "T3"}},
	}
	extra := []Permission{
		{Resource: ResourceLabel, Actions: []Action{ActionRead, ActionRead}, Scope: ScopeOwn},
		{Resource: ResourceProject, Actions: []Action{ActionDelete}, Scope: ScopeTeam},
	}

	for _, role := range append(NewSystemCatalog().Roles(), "unknown") {
		m := newMember(role, "T1")
		m.Permissions = extra
		for _, r := range Resources() {
			for _, ac := range contexts {
				allowed, err := e.GetAllowedActions(m, r, ac)
				require.NoError(t, err)

				var want []Action
				for _, a := range Actions() {
					ok, err := e.HasPermission(m, r, a, ac)
					require.NoError(t, err)
					if ok {
						want = append(want, a)
					}
				}
				assert.ElementsMatch(t, want, allowed, "role=%s resource=%s ctx=%+v", role, r, ac)
			}
		}
	}
}

func TestEngine_Idempotent(t *testing.T) {
	e := NewEngine(NewSystemCatalog())
	m := newMember(RoleMember, "T1")
	ac := OwnedBy("u-1", "T2")

	first, err := e.HasPermission(m, ResourceTask, ActionUpdate, ac)
	require.NoError(t, err)
	second, err := e.HasPermission(m, ResourceTask, ActionUpdate, ac)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"T1"}, m.Teams)
	assert.Equal(t, []string{"T2"}, ac.TeamIds)
}

func TestEngine_ConcurrentUse(t *testing.T) {
	e := NewEngine(NewSystemCatalog())
	m := newMember(RoleManager, "T1")

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				ok, err := e.HasPermission(m, ResourceMilestone, ActionDelete, InTeams("T1"))
				assert.NoError(t, err)
				assert.True(t, ok)
			}
		}()
	}
	wg.Wait()
}
