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

package repo

import (
	"context"

	"github.com/go-arcade/epcentra/internal/engine/model"
	"github.com/go-arcade/epcentra/pkg/database"
)

type IRoleRepository interface {
	CreateRole(ctx context.Context, role *model.Role) error
	GetRole(ctx context.Context, orgId, roleId string) (*model.Role, error)
	ListRoles(ctx context.Context, orgId string) ([]*model.Role, error)
	CheckRoleNameExists(ctx context.Context, orgId, name string, excludeRoleId ...string) (bool, error)
	UpdateRole(ctx context.Context, orgId, roleId string, updates map[string]any) error
	DeleteRole(ctx context.Context, orgId, roleId string) error
}

type RoleRepo struct {
	database.IDatabase
}

func NewRoleRepo(db database.IDatabase) IRoleRepository {
	return &RoleRepo{IDatabase: db}
}

func (r *RoleRepo) CreateRole(ctx context.Context, role *model.Role) error {
	return r.Database().WithContext(ctx).Create(role).Error
}

func (r *RoleRepo) GetRole(ctx context.Context, orgId, roleId string) (*model.Role, error) {
	var role model.Role
	err := database.Primary(r.Database().WithContext(ctx)).
		Where("org_id = ? AND role_id = ?", orgId, roleId).
		First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *RoleRepo) ListRoles(ctx context.Context, orgId string) ([]*model.Role, error) {
	var roles []*model.Role
	err := r.Database().WithContext(ctx).Where("org_id = ?", orgId).Order("id ASC").Find(&roles).Error
	return roles, err
}

// CheckRoleNameExists 检查组织内角色名是否已存在
func (r *RoleRepo) CheckRoleNameExists(ctx context.Context, orgId, name string, excludeRoleId ...string) (bool, error) {
	db := r.Database().WithContext(ctx).Model(&model.Role{}).Where("org_id = ? AND name = ?", orgId, name)
	if len(excludeRoleId) > 0 && excludeRoleId[0] != "" {
		db = db.Where("role_id != ?", excludeRoleId[0])
	}
	count, err := Count(db)
	return count > 0, err
}

func (r *RoleRepo) UpdateRole(ctx context.Context, orgId, roleId string, updates map[string]any) error {
	return r.Database().WithContext(ctx).Model(&model.Role{}).
		Where("org_id = ? AND role_id = ?", orgId, roleId).
		Updates(updates).Error
}

func (r *RoleRepo) DeleteRole(ctx context.Context, orgId, roleId string) error {
	return r.Database().WithContext(ctx).
		Where("org_id = ? AND role_id = ?", orgId, roleId).
		Delete(&model.Role{}).Error
}
