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
	"slices"
	"time"

	"github.com/go-arcade/epcentra/internal/engine/model"
	"github.com/go-arcade/epcentra/internal/engine/repo"
	"github.com/go-arcade/epcentra/internal/pkg/rbac"
	"github.com/go-arcade/epcentra/pkg/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// MemberService 组织成员管理，所有写操作要求 user:manage
type MemberService struct {
	authz      *AuthzService
	memberRepo repo.IOrganizationMemberRepository
	roleRepo   repo.IRoleRepository
	teamRepo   repo.ITeamRepository
}

func NewMemberService(authz *AuthzService, repos *repo.Repositories) *MemberService {
	return &MemberService{
		authz:      authz,
		memberRepo: repos.Member,
		roleRepo:   repos.Role,
		teamRepo:   repos.Team,
	}
}

// ListMembers 分页列出组织成员
func (s *MemberService) ListMembers(ctx context.Context, userId, orgId string, req model.ListReq) (*model.ListResp[*model.MemberResp], error) {
	if err := s.authz.Authorize(ctx, orgId, userId, rbac.ResourceUser, rbac.ActionRead, nil); err != nil {
		return nil, err
	}
	req.Normalize()
	rows, total, err := s.memberRepo.ListMembers(ctx, orgId, req.Offset(), req.PageSize)
	if err != nil {
		return nil, fmt.Errorf("list members failed: %w", err)
	}
	list := make([]*model.MemberResp, 0, len(rows))
	for _, m := range rows {
		list = append(list, model.ToMemberResp(m))
	}
	return &model.ListResp[*model.MemberResp]{List: list, Total: total, Page: req.Page, PageSize: req.PageSize}, nil
}

// GetMember 查看单个成员
func (s *MemberService) GetMember(ctx context.Context, userId, orgId, targetUserId string) (*model.MemberResp, error) {
	if err := s.authz.Authorize(ctx, orgId, userId, rbac.ResourceUser, rbac.ActionRead, nil); err != nil {
		return nil, err
	}
	m, err := s.getMember(ctx, orgId, targetUserId)
	if err != nil {
		return nil, err
	}
	return model.ToMemberResp(m), nil
}

// AddMember 添加或邀请成员
func (s *MemberService) AddMember(ctx context.Context, userId, orgId string, req *model.AddMemberReq) (*model.MemberResp, error) {
	// 1. 鉴权
	operator, err := s.requireManager(ctx, orgId, userId)
	if err != nil {
		return nil, err
	}

	// 2. 参数校验
	if req.UserId == "" {
		return nil, fmt.Errorf("%w: user id cannot be empty", ErrBadRequest)
	}
	if req.Role == "" {
		req.Role = rbac.RoleMember
	}
	status := rbac.MemberStatus(req.Status)
	if status == "" {
		status = rbac.MemberStatusInvited
	}
	if status == rbac.MemberStatusSuspended || !status.Valid() {
		return nil, fmt.Errorf("%w: status must be active or invited", ErrBadRequest)
	}
	if err := s.checkGrantable(operator, req.Role, req.Permissions); err != nil {
		return nil, err
	}

	// 3. 并发校验成员、角色、团队
	var rolePerms []rbac.Permission
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.memberRepo.GetMember(gctx, orgId, req.UserId)
		switch {
		case err == nil:
			return fmt.Errorf("%w: user %s is already a member", ErrConflict, req.UserId)
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil
		default:
			return fmt.Errorf("get member failed: %w", err)
		}
	})
	g.Go(func() error {
		perms, err := s.checkRole(gctx, orgId, req.Role)
		rolePerms = perms
		return err
	})
	g.Go(func() error {
		return s.checkTeams(gctx, orgId, req.Teams)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := checkOwnerOnly(operator, rolePerms); err != nil {
		return nil, err
	}

	// 4. 写入成员
	permsJSON, err := model.PermissionsToJSON(req.Permissions)
	if err != nil {
		return nil, fmt.Errorf("convert permissions failed: %w", err)
	}
	m := &model.OrganizationMember{
		OrgId:       orgId,
		UserId:      req.UserId,
		Role:        req.Role,
		Teams:       model.MustStringsJSON(uniq(req.Teams)),
		Status:      string(status),
		Permissions: permsJSON,
		InvitedBy:   userId,
	}
	if status == rbac.MemberStatusActive {
		now := time.Now()
		m.JoinedAt = &now
	}
	if err := s.memberRepo.CreateMember(ctx, m); err != nil {
		log.Errorw("create member failed", "orgId", orgId, "userId", req.UserId, "error", err)
		return nil, fmt.Errorf("create member failed: %w", err)
	}
	s.authz.InvalidateMember(ctx, orgId, req.UserId)

	log.Infow("success add member", "orgId", orgId, "userId", req.UserId, "role", req.Role, "operator", userId)
	return model.ToMemberResp(m), nil
}

// UpdateMemberRole 修改成员角色
func (s *MemberService) UpdateMemberRole(ctx context.Context, userId, orgId, targetUserId, role string) (*model.MemberResp, error) {
	operator, target, err := s.loadForChange(ctx, userId, orgId, targetUserId)
	if err != nil {
		return nil, err
	}
	if role == "" {
		return nil, fmt.Errorf("%w: role cannot be empty", ErrBadRequest)
	}
	if err := s.checkGrantable(operator, role, nil); err != nil {
		return nil, err
	}
	rolePerms, err := s.checkRole(ctx, orgId, role)
	if err != nil {
		return nil, err
	}
	// 自定义角色携带的授权同样受 owner 限制
	if err := checkOwnerOnly(operator, rolePerms); err != nil {
		return nil, err
	}
	if target.Role == rbac.RoleOwner && role != rbac.RoleOwner {
		if err := s.checkNotLastOwner(ctx, orgId, target); err != nil {
			return nil, err
		}
	}
	return s.update(ctx, orgId, targetUserId, map[string]any{"role": role})
}

// UpdateMemberTeams 修改成员所属团队
func (s *MemberService) UpdateMemberTeams(ctx context.Context, userId, orgId, targetUserId string, teams []string) (*model.MemberResp, error) {
	if _, _, err := s.loadForChange(ctx, userId, orgId, targetUserId); err != nil {
		return nil, err
	}
	if err := s.checkTeams(ctx, orgId, teams); err != nil {
		return nil, err
	}
	return s.update(ctx, orgId, targetUserId, map[string]any{"teams": model.MustStringsJSON(uniq(teams))})
}

// UpdateMemberStatus 激活、邀请或停用成员
func (s *MemberService) UpdateMemberStatus(ctx context.Context, userId, orgId, targetUserId, status string) (*model.MemberResp, error) {
	_, target, err := s.loadForChange(ctx, userId, orgId, targetUserId)
	if err != nil {
		return nil, err
	}
	st := rbac.MemberStatus(status)
	if !st.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", rbac.ErrInvalidInput, status)
	}
	if target.Role == rbac.RoleOwner && st != rbac.MemberStatusActive {
		if err := s.checkNotLastOwner(ctx, orgId, target); err != nil {
			return nil, err
		}
	}
	updates := map[string]any{"status": string(st)}
	if st == rbac.MemberStatusActive && target.JoinedAt == nil {
		updates["joined_at"] = time.Now()
	}
	return s.update(ctx, orgId, targetUserId, updates)
}

// GrantPermissions 追加成员的额外授权
func (s *MemberService) GrantPermissions(ctx context.Context, userId, orgId, targetUserId string, perms []rbac.Permission) (*model.MemberResp, error) {
	operator, target, err := s.loadForChange(ctx, userId, orgId, targetUserId)
	if err != nil {
		return nil, err
	}
	if len(perms) == 0 {
		return nil, fmt.Errorf("%w: permissions cannot be empty", ErrBadRequest)
	}
	if err := s.checkGrantable(operator, target.Role, perms); err != nil {
		return nil, err
	}
	current, err := target.Grants()
	if err != nil {
		return nil, fmt.Errorf("decode member permissions failed: %w", err)
	}
	return s.savePermissions(ctx, orgId, targetUserId, append(current, perms...))
}

// RevokePermissions 移除成员的额外授权，按资源与作用域匹配后去掉对应动作
func (s *MemberService) RevokePermissions(ctx context.Context, userId, orgId, targetUserId string, perms []rbac.Permission) (*model.MemberResp, error) {
	_, target, err := s.loadForChange(ctx, userId, orgId, targetUserId)
	if err != nil {
		return nil, err
	}
	if err := rbac.ValidatePermissions(perms); err != nil {
		return nil, err
	}
	current, err := target.Grants()
	if err != nil {
		return nil, fmt.Errorf("decode member permissions failed: %w", err)
	}
	return s.savePermissions(ctx, orgId, targetUserId, revoke(current, perms))
}

// RemoveMember 移出组织
func (s *MemberService) RemoveMember(ctx context.Context, userId, orgId, targetUserId string) error {
	_, target, err := s.loadForChange(ctx, userId, orgId, targetUserId)
	if err != nil {
		return err
	}
	if target.Role == rbac.RoleOwner {
		if err := s.checkNotLastOwner(ctx, orgId, target); err != nil {
			return err
		}
	}
	if err := s.memberRepo.DeleteMember(ctx, orgId, targetUserId); err != nil {
		log.Errorw("delete member failed", "orgId", orgId, "userId", targetUserId, "error", err)
		return fmt.Errorf("delete member failed: %w", err)
	}
	s.authz.InvalidateMember(ctx, orgId, targetUserId)
	log.Infow("success remove member", "orgId", orgId, "userId", targetUserId, "operator", userId)
	return nil
}

func (s *MemberService) requireManager(ctx context.Context, orgId, userId string) (*rbac.Member, error) {
	operator, err := s.authz.RequireMember(ctx, orgId, userId)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeMember(ctx, operator, rbac.ResourceUser, rbac.ActionManage, nil); err != nil {
		return nil, err
	}
	return operator, nil
}

// loadForChange 鉴权并加载目标成员，只有 owner 可以修改 owner
func (s *MemberService) loadForChange(ctx context.Context, userId, orgId, targetUserId string) (*rbac.Member, *model.OrganizationMember, error) {
	operator, err := s.requireManager(ctx, orgId, userId)
	if err != nil {
		return nil, nil, err
	}
	target, err := s.getMember(ctx, orgId, targetUserId)
	if err != nil {
		return nil, nil, err
	}
	if target.Role == rbac.RoleOwner && operator.Role != rbac.RoleOwner {
		return nil, nil, fmt.Errorf("%w: only owners can change an owner", ErrForbidden)
	}
	return operator, target, nil
}

// checkGrantable 只有 owner 可以授予 owner 角色或组织级权限
func (s *MemberService) checkGrantable(operator *rbac.Member, role string, perms []rbac.Permission) error {
	if err := rbac.ValidatePermissions(perms); err != nil {
		return err
	}
	if operator.Role == rbac.RoleOwner {
		return nil
	}
	if role == rbac.RoleOwner {
		return fmt.Errorf("%w: only owners can assign the owner role", ErrForbidden)
	}
	return checkOwnerOnly(operator, perms)
}

// checkOwnerOnly 组织级权限只能由 owner 授予，直接授权与自定义角色同样适用
func checkOwnerOnly(operator *rbac.Member, perms []rbac.Permission) error {
	if operator.Role == rbac.RoleOwner {
		return nil
	}
	for _, p := range perms {
		if p.Resource == rbac.ResourceOrganization {
			return fmt.Errorf("%w: only owners can grant organization permissions", ErrForbidden)
		}
	}
	return nil
}

// checkRole 角色必须是系统角色或本组织的自定义角色，返回自定义角色的授权
func (s *MemberService) checkRole(ctx context.Context, orgId, role string) ([]rbac.Permission, error) {
	if rbac.IsSystemRole(role) {
		return nil, nil
	}
	r, err := s.roleRepo.GetRole(ctx, orgId, role)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: unknown role %q", ErrBadRequest, role)
		}
		return nil, fmt.Errorf("get role failed: %w", err)
	}
	perms, err := model.PermissionsFromJSON(r.Permissions)
	if err != nil {
		return nil, fmt.Errorf("decode role permissions failed: %w", err)
	}
	return perms, nil
}

func (s *MemberService) checkTeams(ctx context.Context, orgId string, teams []string) error {
	teams = uniq(teams)
	if len(teams) == 0 {
		return nil
	}
	n, err := s.teamRepo.CountTeams(ctx, orgId, teams)
	if err != nil {
		return fmt.Errorf("count teams failed: %w", err)
	}
	if int(n) != len(teams) {
		return fmt.Errorf("%w: unknown team in %v", ErrBadRequest, teams)
	}
	return nil
}

func (s *MemberService) checkNotLastOwner(ctx context.Context, orgId string, target *model.OrganizationMember) error {
	if target.Status != string(rbac.MemberStatusActive) {
		return nil
	}
	n, err := s.memberRepo.CountByRole(ctx, orgId, rbac.RoleOwner, string(rbac.MemberStatusActive))
	if err != nil {
		return fmt.Errorf("count owners failed: %w", err)
	}
	if n <= 1 {
		return ErrLastOwner
	}
	return nil
}

func (s *MemberService) savePermissions(ctx context.Context, orgId, targetUserId string, perms []rbac.Permission) (*model.MemberResp, error) {
	permsJSON, err := model.PermissionsToJSON(perms)
	if err != nil {
		return nil, fmt.Errorf("convert permissions failed: %w", err)
	}
	return s.update(ctx, orgId, targetUserId, map[string]any{"permissions": permsJSON})
}

func (s *MemberService) update(ctx context.Context, orgId, targetUserId string, updates map[string]any) (*model.MemberResp, error) {
	if err := s.memberRepo.UpdateMember(ctx, orgId, targetUserId, updates); err != nil {
		log.Errorw("update member failed", "orgId", orgId, "userId", targetUserId, "error", err)
		return nil, fmt.Errorf("update member failed: %w", err)
	}
	s.authz.InvalidateMember(ctx, orgId, targetUserId)

	m, err := s.getMember(ctx, orgId, targetUserId)
	if err != nil {
		return nil, err
	}
	return model.ToMemberResp(m), nil
}

func (s *MemberService) getMember(ctx context.Context, orgId, userId string) (*model.OrganizationMember, error) {
	m, err := s.memberRepo.GetMember(ctx, orgId, userId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: member %s", ErrNotFound, userId)
		}
		return nil, fmt.Errorf("get member failed: %w", err)
	}
	return m, nil
}

// revoke 从 current 中去掉 perms 列出的动作，动作清空的授权整体删除
func revoke(current, perms []rbac.Permission) []rbac.Permission {
	out := make([]rbac.Permission, 0, len(current))
	for _, c := range current {
		actions := slices.Clone(c.Actions)
		for _, p := range perms {
			if p.Resource != c.Resource || !sameScope(p, c) {
				continue
			}
			actions = slices.DeleteFunc(actions, func(a rbac.Action) bool {
				return slices.Contains(p.Actions, a)
			})
		}
		if len(actions) > 0 {
			c.Actions = actions
			out = append(out, c)
		}
	}
	return out
}

func uniq(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

// sameScope 未设置作用域与 all 等价
func sameScope(a, b rbac.Permission) bool {
	if a.Unscoped() || b.Unscoped() {
		return a.Unscoped() && b.Unscoped()
	}
	return a.Scope == b.Scope
}
