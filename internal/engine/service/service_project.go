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
	"fmt"
	"strings"

	"github.com/go-arcade/epcentra/internal/engine/model"
	"github.com/go-arcade/epcentra/internal/engine/repo"
	"github.com/go-arcade/epcentra/internal/pkg/rbac"
	"github.com/go-arcade/epcentra/pkg/id"
	"github.com/go-arcade/epcentra/pkg/log"
)

type ProjectService struct {
	authz       *AuthzService
	projectRepo repo.IProjectRepository
	teamRepo    repo.ITeamRepository
}

func NewProjectService(authz *AuthzService, repos *repo.Repositories) *ProjectService {
	return &ProjectService{
		authz:       authz,
		projectRepo: repos.Project,
		teamRepo:    repos.Team,
	}
}

// projectContext 项目的团队作为团队作用域，creatorId 为目标记录的创建者
func projectContext(p *model.Project, creatorId string) *rbac.AuthContext {
	return &rbac.AuthContext{CreatorId: creatorId, TeamIds: model.StringsFromJSON(p.TeamIds)}
}

// CreateProject 创建项目，团队作用域的授权只能在自己的团队下创建
func (s *ProjectService) CreateProject(ctx context.Context, userId, orgId string, req *model.CreateProjectReq) (*model.ProjectResp, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: project name cannot be empty", ErrBadRequest)
	}
	teamIds := uniq(req.TeamIds)

	// 1. 鉴权
	ac := &rbac.AuthContext{CreatorId: userId, TeamIds: teamIds}
	if err := s.authz.Authorize(ctx, orgId, userId, rbac.ResourceProject, rbac.ActionCreate, ac); err != nil {
		return nil, err
	}

	// 2. 校验团队
	if err := s.checkTeams(ctx, orgId, teamIds); err != nil {
		return nil, err
	}

	// 3. 保存
	p := &model.Project{
		ProjectId:   id.GetUUID(),
		OrgId:       orgId,
		Name:        name,
		Description: req.Description,
		TeamIds:     model.MustStringsJSON(teamIds),
		Status:      model.ProjectStatusActive,
		CreatedBy:   userId,
	}
	if err := s.projectRepo.CreateProject(ctx, p); err != nil {
		log.Errorw("create project failed", "orgId", orgId, "name", name, "error", err)
		return nil, fmt.Errorf("create project failed: %w", err)
	}
	log.Infow("success create project", "orgId", orgId, "projectId", p.ProjectId)
	return model.ToProjectResp(p), nil
}

// ListProjects 列出当前用户可读的项目
func (s *ProjectService) ListProjects(ctx context.Context, userId, orgId string) ([]*model.ProjectResp, error) {
	member, err := s.authz.RequireMember(ctx, orgId, userId)
	if err != nil {
		return nil, err
	}
	projects, err := s.projectRepo.ListProjects(ctx, orgId)
	if err != nil {
		return nil, fmt.Errorf("list projects failed: %w", err)
	}
	out := make([]*model.ProjectResp, 0, len(projects))
	for _, p := range projects {
		if s.authz.Allowed(ctx, member, rbac.ResourceProject, rbac.ActionRead, projectContext(p, p.CreatedBy)) {
			out = append(out, model.ToProjectResp(p))
		}
	}
	return out, nil
}

// GetProject 获取项目
func (s *ProjectService) GetProject(ctx context.Context, userId, orgId, projectId string) (*model.ProjectResp, error) {
	_, p, err := s.load(ctx, userId, orgId, projectId, rbac.ActionRead)
	if err != nil {
		return nil, err
	}
	return model.ToProjectResp(p), nil
}

// UpdateProject 更新项目，变更团队时对新团队同样鉴权
func (s *ProjectService) UpdateProject(ctx context.Context, userId, orgId, projectId string, req *model.UpdateProjectReq) (*model.ProjectResp, error) {
	member, p, err := s.load(ctx, userId, orgId, projectId, rbac.ActionUpdate)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]any)
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: project name cannot be empty", ErrBadRequest)
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Status != nil {
		switch *req.Status {
		case model.ProjectStatusActive, model.ProjectStatusArchived:
			updates["status"] = *req.Status
		default:
			return nil, fmt.Errorf("%w: unknown project status %q", ErrBadRequest, *req.Status)
		}
	}
	if req.TeamIds != nil {
		teamIds := uniq(req.TeamIds)
		ac := &rbac.AuthContext{CreatorId: p.CreatedBy, TeamIds: teamIds}
		if err := s.authz.AuthorizeMember(ctx, member, rbac.ResourceProject, rbac.ActionUpdate, ac); err != nil {
			return nil, err
		}
		if err := s.checkTeams(ctx, orgId, teamIds); err != nil {
			return nil, err
		}
		updates["team_ids"] = model.MustStringsJSON(teamIds)
	}

	if len(updates) > 0 {
		if err := s.projectRepo.UpdateProject(ctx, orgId, projectId, updates); err != nil {
			log.Errorw("update project failed", "projectId", projectId, "error", err)
			return nil, fmt.Errorf("update project failed: %w", err)
		}
	}
	p, err = s.get(ctx, orgId, projectId)
	if err != nil {
		return nil, err
	}
	return model.ToProjectResp(p), nil
}

// DeleteProject 删除项目及其里程碑与任务
func (s *ProjectService) DeleteProject(ctx context.Context, userId, orgId, projectId string) error {
	if _, _, err := s.load(ctx, userId, orgId, projectId, rbac.ActionDelete); err != nil {
		return err
	}
	if err := s.projectRepo.DeleteProject(ctx, orgId, projectId); err != nil {
		log.Errorw("delete project failed", "projectId", projectId, "error", err)
		return fmt.Errorf("delete project failed: %w", err)
	}
	log.Infow("success delete project", "projectId", projectId, "operator", userId)
	return nil
}

func (s *ProjectService) checkTeams(ctx context.Context, orgId string, teamIds []string) error {
	if len(teamIds) == 0 {
		return nil
	}
	n, err := s.teamRepo.CountTeams(ctx, orgId, teamIds)
	if err != nil {
		return fmt.Errorf("count teams failed: %w", err)
	}
	if int(n) != len(teamIds) {
		return fmt.Errorf("%w: unknown team in %v", ErrBadRequest, teamIds)
	}
	return nil
}

func (s *ProjectService) load(ctx context.Context, userId, orgId, projectId string, action rbac.Action) (*rbac.Member, *model.Project, error) {
	member, err := s.authz.RequireMember(ctx, orgId, userId)
	if err != nil {
		return nil, nil, err
	}
	p, err := s.get(ctx, orgId, projectId)
	if err != nil {
		return nil, nil, err
	}
	if err := s.authz.AuthorizeMember(ctx, member, rbac.ResourceProject, action, projectContext(p, p.CreatedBy)); err != nil {
		return nil, nil, err
	}
	return member, p, nil
}

func (s *ProjectService) get(ctx context.Context, orgId, projectId string) (*model.Project, error) {
	return getProject(ctx, s.projectRepo, orgId, projectId)
}
