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
	"github.com/go-arcade/epcentra/internal/pkg/rbac"
	"gorm.io/datatypes"
)

// Role 自定义角色表，系统角色不落库
type Role struct {
	BaseModel
	RoleId      string         `gorm:"column:role_id;uniqueIndex;size:64" json:"roleId"`
	OrgId       string         `gorm:"column:org_id;uniqueIndex:uk_org_role_name;size:64" json:"orgId"`
	Name        string         `gorm:"column:name;uniqueIndex:uk_org_role_name;size:64" json:"name"`
	Description string         `gorm:"column:description" json:"description"`
	Permissions datatypes.JSON `gorm:"column:permissions" json:"permissions"`
	CreatedBy   string         `gorm:"column:created_by;size:64" json:"createdBy"`
}

func (Role) TableName() string {
	return "t_role"
}

type CreateRoleReq struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Permissions []rbac.Permission `json:"permissions"`
}

type UpdateRoleReq struct {
	Name        *string           `json:"name"`
	Description *string           `json:"description"`
	Permissions []rbac.Permission `json:"permissions"`
}

type RoleResp struct {
	RoleId      string            `json:"roleId"`
	OrgId       string            `json:"orgId,omitempty"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	IsSystem    bool              `json:"isSystem"`
	Permissions []rbac.Permission `json:"permissions"`
	CreatedBy   string            `json:"createdBy,omitempty"`
}

func ToRoleResp(r *Role) *RoleResp {
	perms, _ := PermissionsFromJSON(r.Permissions)
	if perms == nil {
		perms = []rbac.Permission{}
	}
	return &RoleResp{
		RoleId:      r.RoleId,
		OrgId:       r.OrgId,
		Name:        r.Name,
		Description: r.Description,
		Permissions: perms,
		CreatedBy:   r.CreatedBy,
	}
}

var systemRoleDescriptions = map[string]string{
	rbac.RoleOwner:   "Full control over the organization",
	rbac.RoleAdmin:   "Manage projects, teams, members and workflows",
	rbac.RoleManager: "Manage projects and tasks of their teams",
	rbac.RoleMember:  "Work on tasks of their teams",
	rbac.RoleGuest:   "Read and comment within their teams",
}

// SystemRoleResp describes a built-in role from the catalog.
func SystemRoleResp(catalog *rbac.Catalog, role string) *RoleResp {
	return &RoleResp{
		RoleId:      role,
		Name:        role,
		Description: systemRoleDescriptions[role],
		IsSystem:    true,
		Permissions: catalog.PermissionsForRole(role),
	}
}
