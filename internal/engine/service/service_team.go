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
	"strings"

	"github.com/go-arcade/epcentra/internal/engine/model"
	"github.com/go-arcade/epcentra/internal/engine/repo"
	"github.com/go-arcade/epcentra/internal/pkg/rbac"
	"github.com/go-arcade/epcentra/pkg/id"
	"github.com/go-arcade/epcentra/pkg/log"
	"gorm.io/gorm"
)

type TeamService struct {
	authz      *AuthzService
	teamRepo   repo.ITeamRepository
	memberRepo repo.IOrganizationMemberRepository
}

func NewTeamService(authz *AuthzService, repos *repo.Repositories) *TeamService {
	return &TeamService{
		authz:      authz,
		teamRepo:   repos.Team,
		memberRepo: repos.Member,
	}
}

func teamContext(t *model.Team) *rbac.AuthContext {
	return &rbac.AuthContext{CreatorId: t.CreatedBy, TeamIds: []string{t.TeamId}}
}

// CreateTeam 创建团队
func (s *TeamService) CreateTeam(ctx context.Context, userId, orgId string, req *model.CreateTeamReq) (*model.Team, error) {
	// 1. 鉴权
	if err := s.authz.Authorize(ctx, orgId, userId, rbac.ResourceTeam, rbac.ActionCreate, nil); err != nil {
		return nil, err
	}

	// 2. 检查团队名称是否已存在
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: team name cannot be empty", ErrBadRequest)
	}
	exists, err := s.teamRepo.CheckTeamNameExists(ctx, orgId, name)
	if err != nil {
		log.Errorw("check team name failed", "orgId", orgId, "name", name, "error", err)
		return nil, fmt.Errorf("check team name failed: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: team %q", ErrConflict, name)
	}

	// 3. 保存到数据库
	team := &model.Team{
		TeamId:      id.GetUUID(),
		OrgId:       orgId,
		Name:        name,
		Description: req.Description,
		CreatedBy:   userId,
	}
	if err := s.teamRepo.CreateTeam(ctx, team); err != nil {
		log.Errorw("create team failed", "name", name, "error", err)
		return nil, fmt.Errorf("create team failed: %w", err)
	}

	log.Infow("success create team", "name", team.Name, "teamId", team.TeamId)
	return team, nil
}

// ListTeams 列出当前用户可见的团队
func (s *TeamService) ListTeams(ctx context.Context, userId, orgId string) ([]*model.Team, error) {
	member, err := s.authz.RequireMember(ctx, orgId, userId)
	if err != nil {
		return nil, err
	}
	teams, err := s.teamRepo.ListTeams(ctx, orgId)
	if err != nil {
		return nil, fmt.Errorf("list teams failed: %w", err)
	}
	visible := make([]*model.Team, 0, len(teams))
	for _, t := range teams {
		if s.authz.Allowed(ctx, member, rbac.ResourceTeam, rbac.ActionRead, teamContext(t)) {
			visible = append(visible, t)
		}
	}
	return visible, nil
}

// GetTeam 获取团队
func (s *TeamService) GetTeam(ctx context.Context, userId, orgId, teamId string) (*model.Team, error) {
	_, team, err := s.load(ctx, userId, orgId, teamId, rbac.ActionRead)
	return team, err
}

// UpdateTeam 更新团队
func (s *TeamService) UpdateTeam(ctx context.Context, userId, orgId, teamId string, req *model.UpdateTeamReq) (*model.Team, error) {
	_, team, err := s.load(ctx, userId, orgId, teamId, rbac.ActionUpdate)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]any)
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: team name cannot be empty", ErrBadRequest)
		}
		exists, err := s.teamRepo.CheckTeamNameExists(ctx, orgId, name, teamId)
		if err != nil {
			return nil, fmt.Errorf("check team name failed: %w", err)
		}
		if exists {
			return nil, fmt.Errorf("%w: team %q", ErrConflict, name)
		}
		updates["name"] = name
		team.Name = name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
		team.Description = *req.Description
	}
	if len(updates) > 0 {
		if err := s.teamRepo.UpdateTeam(ctx, orgId, teamId, updates); err != nil {
			log.Errorw("update team failed", "teamId", teamId, "error", err)
			return nil, fmt.Errorf("update team failed: %w", err)
		}
	}
	return team, nil
}

// DeleteTeam 删除团队
func (s *TeamService) DeleteTeam(ctx context.Context, userId, orgId, teamId string) error {
	if _, _, err := s.load(ctx, userId, orgId, teamId, rbac.ActionDelete); err != nil {
		return err
	}
	if err := s.teamRepo.DeleteTeam(ctx, orgId, teamId); err != nil {
		log.Errorw("delete team failed", "teamId", teamId, "error", err)
		return fmt.Errorf("delete team failed: %w", err)
	}
	log.Infow("success delete team", "teamId", teamId, "operator", userId)
	return nil
}

// AddTeamMember 把组织成员加入团队，要求 team:manage
func (s *TeamService) AddTeamMember(ctx context.Context, userId, orgId, teamId, targetUserId string) error {
	return s.changeTeamMember(ctx, userId, orgId, teamId, targetUserId, func(teams []string) []string {
		if slices.Contains(teams, teamId) {
			return teams
		}
		return append(teams, teamId)
	})
}

// RemoveTeamMember 把成员移出团队，要求 team:manage
func (s *TeamService) RemoveTeamMember(ctx context.Context, userId, orgId, teamId, targetUserId string) error {
	return s.changeTeamMember(ctx, userId, orgId, teamId, targetUserId, func(teams []string) []string {
		return slices.DeleteFunc(teams, func(t string) bool { return t == teamId })
	})
}

func (s *TeamService) changeTeamMember(ctx context.Context, userId, orgId, teamId, targetUserId string, change func([]string) []string) error {
	if _, _, err := s.load(ctx, userId, orgId, teamId, rbac.ActionManage); err != nil {
		return err
	}
	target, err := s.memberRepo.GetMember(ctx, orgId, targetUserId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: member %s", ErrNotFound, targetUserId)
		}
		return fmt.Errorf("get member failed: %w", err)
	}
	teams := change(target.TeamIds())
	if err := s.memberRepo.UpdateMember(ctx, orgId, targetUserId, map[string]any{"teams": model.MustStringsJSON(teams)}); err != nil {
		return fmt.Errorf("update member teams failed: %w", err)
	}
	s.authz.InvalidateMember(ctx, orgId, targetUserId)
	return nil
}

func (s *TeamService) load(ctx context.Context, userId, orgId, teamId string, action rbac.Action) (*rbac.Member, *model.Team, error) {
	member, err := s.authz.RequireMember(ctx, orgId, userId)
	if err != nil {
		return nil, nil, err
	}
	team, err := s.teamRepo.GetTeam(ctx, orgId, teamId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: team %s", ErrNotFound, teamId)
		}
		return nil, nil, fmt.Errorf("get team failed: %w", err)
	}
	if err := s.authz.AuthorizeMember(ctx, member, rbac.ResourceTeam, action, teamContext(team)); err != nil {
		return nil, nil, err
	}
	return member, team, nil
}
