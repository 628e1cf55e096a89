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
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/epcentra/internal/pkg/rbac"
	"gorm.io/datatypes"
)

// OrganizationMember 组织成员表
type OrganizationMember struct {
	BaseModel
	OrgId       string         `gorm:"column:org_id;uniqueIndex:uk_org_user;size:64" json:"orgId"`
	UserId      string         `gorm:"column:user_id;uniqueIndex:uk_org_user;index;size:64" json:"userId"`
	Role        string         `gorm:"column:role;index;size:64" json:"role"` // 系统角色名或自定义角色ID
	Teams       datatypes.JSON `gorm:"column:teams" json:"teams"`
	Status      string         `gorm:"column:status;size:16" json:"status"`
	Permissions datatypes.JSON `gorm:"column:permissions" json:"permissions"` // 额外授予的权限
	InvitedBy   string         `gorm:"column:invited_by;size:64" json:"invitedBy"`
	JoinedAt    *time.Time     `gorm:"column:joined_at" json:"joinedAt"`
}

func (OrganizationMember) TableName() string {
	return "t_organization_member"
}

// TeamIds decodes the teams column.
func (m *OrganizationMember) TeamIds() []string {
	return StringsFromJSON(m.Teams)
}

// Grants decodes the ad hoc permission column.
func (m *OrganizationMember) Grants() ([]rbac.Permission, error) {
	return PermissionsFromJSON(m.Permissions)
}

// ToRbacMember converts the row for the engine. rolePerms holds custom role grants.
func (m *OrganizationMember) ToRbacMember(rolePerms []rbac.Permission) (*rbac.Member, error) {
	grants, err := m.Grants()
	if err != nil {
		return nil, err
	}
	return &rbac.Member{
		OrganizationId:  m.OrgId,
		UserId:          m.UserId,
		Role:            m.Role,
		Teams:           m.TeamIds(),
		Status:          rbac.MemberStatus(m.Status),
		RolePermissions: rolePerms,
		Permissions:     grants,
	}, nil
}

// PermissionsFromJSON decodes a permission list column.
func PermissionsFromJSON(j datatypes.JSON) ([]rbac.Permission, error) {
	var perms []rbac.Permission
	if len(j) == 0 || string(j) == "null" {
		return perms, nil
	}
	if err := sonic.Unmarshal(j, &perms); err != nil {
		return nil, err
	}
	return perms, nil
}

// PermissionsToJSON encodes a permission list column.
func PermissionsToJSON(perms []rbac.Permission) (datatypes.JSON, error) {
	if perms == nil {
		perms = []rbac.Permission{}
	}
	return ToJSON(perms, "[]")
}

type AddMemberReq struct {
	UserId      string            `json:"userId"`
	Role        string            `json:"role"`
	Teams       []string          `json:"teams"`
	Status      string            `json:"status"` // active | invited, defaults to invited
	Permissions []rbac.Permission `json:"permissions"`
}

type UpdateMemberRoleReq struct {
	Role string `json:"role"`
}

type UpdateMemberTeamsReq struct {
	Teams []string `json:"teams"`
}

type UpdateMemberStatusReq struct {
	Status string `json:"status"`
}

type MemberPermissionsReq struct {
	Permissions []rbac.Permission `json:"permissions"`
}

type MemberResp struct {
	OrgId       string            `json:"orgId"`
	UserId      string            `json:"userId"`
	Role        string            `json:"role"`
	Teams       []string          `json:"teams"`
	Status      string            `json:"status"`
	Permissions []rbac.Permission `json:"permissions"`
	InvitedBy   string            `json:"invitedBy,omitempty"`
	JoinedAt    *time.Time        `json:"joinedAt,omitempty"`
}

func ToMemberResp(m *OrganizationMember) *MemberResp {
	perms, _ := m.Grants()
	if perms == nil {
		perms = []rbac.Permission{}
	}
	return &MemberResp{
		OrgId:       m.OrgId,
		UserId:      m.UserId,
		Role:        m.Role,
		Teams:       m.TeamIds(),
		Status:      m.Status,
		Permissions: perms,
		InvitedBy:   m.InvitedBy,
		JoinedAt:    m.JoinedAt,
	}
}
