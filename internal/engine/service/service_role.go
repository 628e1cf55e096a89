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

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-arcade/epcentra/internal/engine/model"
	"github.com/go-arcade/epcentra/internal/engine/repo"
	"github.com/go-arcade/epcentra/internal/pkg/rbac"
	"github.com/go-arcade/epcentra/pkg/id"
	"github.com/go-arcade/epcentra/pkg/log"
	"gorm.io/gorm"
)

// RoleService 系统角色只读，自定义角色按组织管理
type RoleService struct {
	authz      *AuthzService
	roleRepo   repo.IRoleRepository
	memberRepo repo.IOrganizationMemberRepository
}

func NewRoleService(authz *AuthzService, repos *repo.Repositories) *RoleService {
	return &RoleService{
		authz:      authz,
		roleRepo:   repos.Role,
		memberRepo: repos.Member,
	}
}

// ListRoles 列出系统角色和组织自定义角色
func (s *RoleService) ListRoles(ctx context.Context, userId, orgId string) ([]*model.RoleResp, error) {
	if _, err := s.authz.RequireMember(ctx, orgId, userId); err != nil {
		return nil, err
	}
	catalog := s.authz.Engine().Catalog()
	out := make([]*model.RoleResp, 0, 8)
	for _, role := range catalog.Roles() {
		out = append(out, model.SystemRoleResp(catalog, role))
	}

	roles, err := s.roleRepo.ListRoles(ctx, orgId)
	if err != nil {
		return nil, fmt.Errorf("list roles failed: %w", err)
	}
	for _, r := range roles {
		out = append(out, model.ToRoleResp(r))
	}
	return out, nil
}

// GetRole 获取角色，系统角色直接取自目录
func (s *RoleService) GetRole(ctx context.Context, userId, orgId, roleId string) (*model.RoleResp, error) {
	if _, err := s.authz.RequireMember(ctx, orgId, userId); err != nil {
		return nil, err
	}
	if rbac.IsSystemRole(roleId) {
		return model.SystemRoleResp(s.authz.Engine().Catalog(), roleId), nil
	}
	role, err := s.getRole(ctx, orgId, roleId)
	if err != nil {
		return nil, err
	}
	return model.ToRoleResp(role), nil
}

// CreateRole 创建自定义角色
func (s *RoleService) CreateRole(ctx context.Context, userId, orgId string, req *model.CreateRoleReq) (*model.RoleResp, error) {
	// 1. 鉴权
	operator, err := s.requireManager(ctx, orgId, userId)
	if err != nil {
		return nil, err
	}

	// 2. 参数校验
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: role name cannot be empty", ErrBadRequest)
	}
	if rbac.IsSystemRole(name) {
		return nil, fmt.Errorf("%w: %q is a system role", ErrSystemRole, name)
	}
	if err := rbac.ValidatePermissions(req.Permissions); err != nil {
		return nil, err
	}
	if err := checkOwnerOnly(operator, req.Permissions); err != nil {
		return nil, err
	}
	if err := s.checkName(ctx, orgId, name, ""); err != nil {
		return nil, err
	}

	// 3. 保存
	permsJSON, err := model.PermissionsToJSON(req.Permissions)
	if err != nil {
		return nil, fmt.Errorf("convert permissions failed: %w", err)
	}
	role := &model.Role{
		RoleId:      id.GetUUID(),
		OrgId:       orgId,
		Name:        name,
		Description: req.Description,
		Permissions: permsJSON,
		CreatedBy:   userId,
	}
	if err := s.roleRepo.CreateRole(ctx, role); err != nil {
		log.Errorw("create role failed", "orgId", orgId, "name", name, "error", err)
		return nil, fmt.Errorf("create role failed: %w", err)
	}

	log.Infow("success create role", "orgId", orgId, "roleId", role.RoleId, "name", name)
	return model.ToRoleResp(role), nil
}

// UpdateRole 更新自定义角色，持有该角色的成员缓存随之失效
func (s *RoleService) UpdateRole(ctx context.Context, userId, orgId, roleId string, req *model.UpdateRoleReq) (*model.RoleResp, error) {
	if rbac.IsSystemRole(roleId) {
		return nil, ErrSystemRole
	}
	operator, err := s.requireManager(ctx, orgId, userId)
	if err != nil {
		return nil, err
	}
	if _, err := s.getRole(ctx, orgId, roleId); err != nil {
		return nil, err
	}

	updates := make(map[string]any)
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: role name cannot be empty", ErrBadRequest)
		}
		if rbac.IsSystemRole(name) {
			return nil, fmt.Errorf("%w: %q is a system role", ErrSystemRole, name)
		}
		if err := s.checkName(ctx, orgId, name, roleId); err != nil {
			return nil, err
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Permissions != nil {
		if err := rbac.ValidatePermissions(req.Permissions); err != nil {
			return nil, err
		}
		if err := checkOwnerOnly(operator, req.Permissions); err != nil {
			return nil, err
		}
		permsJSON, err := model.PermissionsToJSON(req.Permissions)
		if err != nil {
			return nil, fmt.Errorf("convert permissions failed: %w", err)
		}
		updates["permissions"] = permsJSON
	}

	if len(updates) > 0 {
		if err := s.roleRepo.UpdateRole(ctx, orgId, roleId, updates); err != nil {
			log.Errorw("update role failed", "orgId", orgId, "roleId", roleId, "error", err)
			return nil, fmt.Errorf("update role failed: %w", err)
		}
		s.invalidateHolders(ctx, orgId, roleId)
	}

	role, err := s.getRole(ctx, orgId, roleId)
	if err != nil {
		return nil, err
	}
	return model.ToRoleResp(role), nil
}

// DeleteRole 删除自定义角色，仍有成员使用时拒绝
func (s *RoleService) DeleteRole(ctx context.Context, userId, orgId, roleId string) error {
	if rbac.IsSystemRole(roleId) {
		return ErrSystemRole
	}
	if err := s.authz.Authorize(ctx, orgId, userId, rbac.ResourceUser, rbac.ActionManage, nil); err != nil {
		return err
	}
	if _, err := s.getRole(ctx, orgId, roleId); err != nil {
		return err
	}
	holders, err := s.memberRepo.ListUserIdsByRole(ctx, orgId, roleId)
	if err != nil {
		return fmt.Errorf("list role holders failed: %w", err)
	}
	if len(holders) > 0 {
		return fmt.Errorf("%w: role is assigned to %d member(s)", ErrConflict, len(holders))
	}
	if err := s.roleRepo.DeleteRole(ctx, orgId, roleId); err != nil {
		log.Errorw("delete role failed", "orgId", orgId, "roleId", roleId, "error", err)
		return fmt.Errorf("delete role failed: %w", err)
	}
	log.Infow("success delete role", "orgId", orgId, "roleId", roleId)
	return nil
}

func (s *RoleService) requireManager(ctx context.Context, orgId, userId string) (*rbac.Member, error) {
	operator, err := s.authz.RequireMember(ctx, orgId, userId)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeMember(ctx, operator, rbac.ResourceUser, rbac.ActionManage, nil); err != nil {
		return nil, err
	}
	return operator, nil
}

func (s *RoleService) checkName(ctx context.Context, orgId, name, excludeRoleId string) error {
	exists, err := s.roleRepo.CheckRoleNameExists(ctx, orgId, name, excludeRoleId)
	if err != nil {
		return fmt.Errorf("check role name failed: %w", err)
	}
	if exists {
		return fmt.Errorf("%w: role %q", ErrConflict, name)
	}
	return nil
}

func (s *RoleService) invalidateHolders(ctx context.Context, orgId, roleId string) {
	holders, err := s.memberRepo.ListUserIdsByRole(ctx, orgId, roleId)
	if err != nil {
		log.Warnw("list role holders failed, cached grants expire by ttl", "orgId", orgId, "roleId", roleId, "error", err)
		return
	}
	s.authz.InvalidateMember(ctx, orgId, holders...)
}

func (s *RoleService) getRole(ctx context.Context, orgId, roleId string) (*model.Role, error) {
	role, err := s.roleRepo.GetRole(ctx, orgId, roleId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: role %s", ErrNotFound, roleId)
		}
		return nil, fmt.Errorf("get role failed: %w", err)
	}
	return role, nil
}
