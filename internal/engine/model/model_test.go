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

package model

import (
	"testing"

	"github.com/go-arcade/epcentra/internal/pkg/rbac"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestListReq_Normalize(t *testing.T) {
	r := ListReq{}
	r.Normalize()
	assert.Equal(t, 1, r.Page)
	assert.Equal(t, 20, r.PageSize)
	assert.Equal(t, 0, r.Offset())

	r = ListReq{Page: 3, PageSize: 1000}
	r.Normalize()
	assert.Equal(t, 20, r.PageSize)
	assert.Equal(t, 40, r.Offset())
}

func TestOrganizationMember_ToRbacMember(t *testing.T) {
	perms, err := PermissionsToJSON([]rbac.Permission{{Resource: rbac.ResourceLabel, Actions: []rbac.Action{rbac.ActionRead}}})
	require.NoError(t, err)

	m := &OrganizationMember{
		OrgId:       "o1",
		UserId:      "u1",
		Role:        rbac.RoleMember,
		Teams:       MustStringsJSON([]string{"t1", "t2"}),
		Status:      string(rbac.MemberStatusActive),
		Permissions: perms,
	}
	custom := []rbac.Permission{{Resource: rbac.ResourceComment, Actions: []rbac.Action{rbac.ActionCreate}}}

	got, err := m.ToRbacMember(custom)
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2"}, got.Teams)
	assert.True(t, got.Active())
	assert.Equal(t, custom, got.RolePermissions)
	require.Len(t, got.Permissions, 1)
	assert.Equal(t, rbac.ResourceLabel, got.Permissions[0].Resource)
}

func TestOrganizationMember_EmptyColumns(t *testing.T) {
	m := &OrganizationMember{Teams: nil, Permissions: datatypes.JSON("null")}
	assert.Equal(t, []string{}, m.TeamIds())
	perms, err := m.Grants()
	require.NoError(t, err)
	assert.Empty(t, perms)

	m.Permissions = datatypes.JSON("{broken")
	_, err = m.ToRbacMember(nil)
	assert.Error(t, err)
}

func TestSystemRoleResp(t *testing.T) {
	resp := SystemRoleResp(rbac.NewSystemCatalog(), rbac.RoleGuest)
	assert.True(t, resp.IsSystem)
	assert.Equal(t, rbac.RoleGuest, resp.RoleId)
	assert.Len(t, resp.Permissions, 4)
}
