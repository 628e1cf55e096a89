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
	"time"
	"unicode"

	"github.com/go-arcade/epcentra/internal/engine/model"
	"github.com/go-arcade/epcentra/internal/engine/repo"
	"github.com/go-arcade/epcentra/internal/pkg/rbac"
	"github.com/go-arcade/epcentra/pkg/id"
	"github.com/go-arcade/epcentra/pkg/log"
	"gorm.io/gorm"
)

type OrganizationService struct {
	authz      *AuthzService
	orgRepo    repo.IOrganizationRepository
	memberRepo repo.IOrganizationMemberRepository
}

func NewOrganizationService(authz *AuthzService, repos *repo.Repositories) *OrganizationService {
	return &OrganizationService{
		authz:      authz,
		orgRepo:    repos.Organization,
		memberRepo: repos.Member,
	}
}

// CreateOrganization 创建组织，创建者成为活跃的 owner
func (s *OrganizationService) CreateOrganization(ctx context.Context, userId string, req *model.CreateOrganizationReq) (*model.OrganizationResp, error) {
	// 1. 参数校验
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: organization name cannot be empty", ErrBadRequest)
	}
	slug := slugify(req.Slug)
	if slug == "" {
		slug = slugify(name)
	}
	if slug == "" {
		return nil, fmt.Errorf("%w: organization slug cannot be empty", ErrBadRequest)
	}

	// 2. 检查 slug 是否已存在
	exists, err := s.orgRepo.CheckSlugExists(ctx, slug)
	if err != nil {
		log.Errorw("check organization slug failed", "slug", slug, "error", err)
		return nil, fmt.Errorf("check organization slug failed: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: slug %q is taken", ErrConflict, slug)
	}

	// 3. 处理 settings
	settings := model.DefaultOrganizationSettings()
	if req.Settings != nil {
		settings = *req.Settings
	}
	settingsJSON, err := model.ToJSON(settings, "{}")
	if err != nil {
		return nil, fmt.Errorf("convert settings failed: %w", err)
	}

	// 4. 组织与 owner 成员在同一事务中写入
	now := time.Now()
	org := &model.Organization{
		OrgId:       id.GetUUID(),
		Name:        name,
		Slug:        slug,
		Description: req.Description,
		Settings:    settingsJSON,
		CreatedBy:   userId,
	}
	owner := &model.OrganizationMember{
		OrgId:       org.OrgId,
		UserId:      userId,
		Role:        rbac.RoleOwner,
		Teams:       model.MustStringsJSON(nil),
		Status:      string(rbac.MemberStatusActive),
		Permissions: model.MustStringsJSON(nil),
		JoinedAt:    &now,
	}
	if err := s.orgRepo.CreateWithOwner(ctx, org, owner); err != nil {
		log.Errorw("create organization failed", "name", name, "error", err)
		return nil, fmt.Errorf("create organization failed: %w", err)
	}
	s.authz.InvalidateMember(ctx, org.OrgId, userId)

	log.Infow("success create organization", "orgId", org.OrgId, "slug", slug, "owner", userId)

	resp := model.ToOrganizationResp(org)
	resp.Role = rbac.RoleOwner
	return resp, nil
}

// GetOrganization 活跃成员可查看组织信息
func (s *OrganizationService) GetOrganization(ctx context.Context, userId, orgId string) (*model.OrganizationResp, error) {
	member, err := s.authz.RequireMember(ctx, orgId, userId)
	if err != nil {
		return nil, err
	}
	org, err := s.getOrganization(ctx, orgId)
	if err != nil {
		return nil, err
	}
	resp := model.ToOrganizationResp(org)
	resp.Role = member.Role
	return resp, nil
}

// ListMyOrganizations 列出用户作为活跃成员的组织
func (s *OrganizationService) ListMyOrganizations(ctx context.Context, userId string) ([]*model.OrganizationResp, error) {
	memberships, err := s.memberRepo.ListMembershipsByUser(ctx, userId, string(rbac.MemberStatusActive))
	if err != nil {
		return nil, fmt.Errorf("list memberships failed: %w", err)
	}
	roles := make(map[string]string, len(memberships))
	orgIds := make([]string, 0, len(memberships))
	for _, m := range memberships {
		roles[m.OrgId] = m.Role
		orgIds = append(orgIds, m.OrgId)
	}

	orgs, err := s.orgRepo.ListOrganizationsByIds(ctx, orgIds)
	if err != nil {
		return nil, fmt.Errorf("list organizations failed: %w", err)
	}
	out := make([]*model.OrganizationResp, 0, len(orgs))
	for _, o := range orgs {
		resp := model.ToOrganizationResp(o)
		resp.Role = roles[o.OrgId]
		out = append(out, resp)
	}
	return out, nil
}

// UpdateOrganization 更新组织
func (s *OrganizationService) UpdateOrganization(ctx context.Context, userId, orgId string, req *model.UpdateOrganizationReq) (*model.OrganizationResp, error) {
	// 1. 鉴权
	if err := s.authz.Authorize(ctx, orgId, userId, rbac.ResourceOrganization, rbac.ActionUpdate, nil); err != nil {
		return nil, err
	}

	// 2. 构建更新数据
	updates := make(map[string]any)
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: organization name cannot be empty", ErrBadRequest)
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Settings != nil {
		settingsJSON, err := model.ToJSON(req.Settings, "{}")
		if err != nil {
			return nil, fmt.Errorf("convert settings failed: %w", err)
		}
		updates["settings"] = settingsJSON
	}

	// 3. 保存
	if len(updates) > 0 {
		if err := s.orgRepo.UpdateOrganization(ctx, orgId, updates); err != nil {
			log.Errorw("update organization failed", "orgId", orgId, "error", err)
			return nil, fmt.Errorf("update organization failed: %w", err)
		}
	}

	org, err := s.getOrganization(ctx, orgId)
	if err != nil {
		return nil, err
	}
	return model.ToOrganizationResp(org), nil
}

// DeleteOrganization 删除组织及其全部数据
func (s *OrganizationService) DeleteOrganization(ctx context.Context, userId, orgId string) error {
	if err := s.authz.Authorize(ctx, orgId, userId, rbac.ResourceOrganization, rbac.ActionDelete, nil); err != nil {
		return err
	}

	members, _, err := s.memberRepo.ListMembers(ctx, orgId, 0, 0)
	if err != nil {
		return fmt.Errorf("list members failed: %w", err)
	}
	if err := s.orgRepo.DeleteOrganization(ctx, orgId); err != nil {
		log.Errorw("delete organization failed", "orgId", orgId, "error", err)
		return fmt.Errorf("delete organization failed: %w", err)
	}

	userIds := make([]string, 0, len(members))
	for _, m := range members {
		userIds = append(userIds, m.UserId)
	}
	s.authz.InvalidateMember(ctx, orgId, userIds...)

	log.Infow("success delete organization", "orgId", orgId, "operator", userId)
	return nil
}

func (s *OrganizationService) getOrganization(ctx context.Context, orgId string) (*model.Organization, error) {
	org, err := s.orgRepo.GetOrganization(ctx, orgId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: organization %s", ErrNotFound, orgId)
		}
		return nil, fmt.Errorf("get organization failed: %w", err)
	}
	return org, nil
}

// slugify 转换为小写短横线格式
func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
