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

// MilestoneService 里程碑继承所属项目的团队作用域
type MilestoneService struct {
	authz         *AuthzService
	projectRepo   repo.IProjectRepository
	phaseRepo     repo.IPhaseRepository
	milestoneRepo repo.IMilestoneRepository
}

func NewMilestoneService(authz *AuthzService, repos *repo.Repositories) *MilestoneService {
	return &MilestoneService{
		authz:         authz,
		projectRepo:   repos.Project,
		phaseRepo:     repos.Phase,
		milestoneRepo: repos.Milestone,
	}
}

// CreateMilestone 创建里程碑
func (s *MilestoneService) CreateMilestone(ctx context.Context, userId, orgId, projectId string, req *model.CreateMilestoneReq) (*model.Milestone, error) {
	member, err := s.authz.RequireMember(ctx, orgId, userId)
	if err != nil {
		return nil, err
	}
	p, err := getProject(ctx, s.projectRepo, orgId, projectId)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeMember(ctx, member, rbac.ResourceMilestone, rbac.ActionCreate, projectContext(p, userId)); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: milestone name cannot be empty", ErrBadRequest)
	}
	if err := s.checkPhase(ctx, orgId, req.PhaseId); err != nil {
		return nil, err
	}
	m := &model.Milestone{
		MilestoneId: id.GetUlid(),
		OrgId:       orgId,
		ProjectId:   projectId,
		PhaseId:     req.PhaseId,
		Name:        name,
		Description: req.Description,
		DueDate:     req.DueDate,
		CreatedBy:   userId,
	}
	if err := s.milestoneRepo.CreateMilestone(ctx, m); err != nil {
		log.Errorw("create milestone failed", "projectId", projectId, "error", err)
		return nil, fmt.Errorf("create milestone failed: %w", err)
	}
	log.Infow("success create milestone", "projectId", projectId, "milestoneId", m.MilestoneId)
	return m, nil
}

// ListMilestones 列出项目中可读的里程碑
func (s *MilestoneService) ListMilestones(ctx context.Context, userId, orgId, projectId string) ([]*model.Milestone, error) {
	member, err := s.authz.RequireMember(ctx, orgId, userId)
	if err != nil {
		return nil, err
	}
	p, err := getProject(ctx, s.projectRepo, orgId, projectId)
	if err != nil {
		return nil, err
	}
	rows, err := s.milestoneRepo.ListMilestones(ctx, orgId, projectId)
	if err != nil {
		return nil, fmt.Errorf("list milestones failed: %w", err)
	}
	out := make([]*model.Milestone, 0, len(rows))
	for _, m := range rows {
		if s.authz.Allowed(ctx, member, rbac.ResourceMilestone, rbac.ActionRead, projectContext(p, m.CreatedBy)) {
			out = append(out, m)
		}
	}
	return out, nil
}

// GetMilestone 获取里程碑
func (s *MilestoneService) GetMilestone(ctx context.Context, userId, orgId, milestoneId string) (*model.Milestone, error) {
	return s.load(ctx, userId, orgId, milestoneId, rbac.ActionRead)
}

// UpdateMilestone 更新里程碑
func (s *MilestoneService) UpdateMilestone(ctx context.Context, userId, orgId, milestoneId string, req *model.UpdateMilestoneReq) (*model.Milestone, error) {
	m, err := s.load(ctx, userId, orgId, milestoneId, rbac.ActionUpdate)
	if err != nil {
		return nil, err
	}
	updates := make(map[string]any)
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: milestone name cannot be empty", ErrBadRequest)
		}
		updates["name"] = name
		m.Name = name
	}
	if req.PhaseId != nil {
		if err := s.checkPhase(ctx, orgId, *req.PhaseId); err != nil {
			return nil, err
		}
		updates["phase_id"] = *req.PhaseId
		m.PhaseId = *req.PhaseId
	}
	if req.Description != nil {
		updates["description"] = *req.Description
		m.Description = *req.Description
	}
	if req.DueDate != nil {
		updates["due_date"] = *req.DueDate
		m.DueDate = req.DueDate
	}
	if req.Completed != nil {
		updates["completed"] = *req.Completed
		m.Completed = *req.Completed
	}
	if len(updates) > 0 {
		if err := s.milestoneRepo.UpdateMilestone(ctx, orgId, milestoneId, updates); err != nil {
			log.Errorw("update milestone failed", "milestoneId", milestoneId, "error", err)
			return nil, fmt.Errorf("update milestone failed: %w", err)
		}
	}
	return m, nil
}

// DeleteMilestone 删除里程碑
func (s *MilestoneService) DeleteMilestone(ctx context.Context, userId, orgId, milestoneId string) error {
	if _, err := s.load(ctx, userId, orgId, milestoneId, rbac.ActionDelete); err != nil {
		return err
	}
	if err := s.milestoneRepo.DeleteMilestone(ctx, orgId, milestoneId); err != nil {
		log.Errorw("delete milestone failed", "milestoneId", milestoneId, "error", err)
		return fmt.Errorf("delete milestone failed: %w", err)
	}
	log.Infow("success delete milestone", "milestoneId", milestoneId, "operator", userId)
	return nil
}

func (s *MilestoneService) load(ctx context.Context, userId, orgId, milestoneId string, action rbac.Action) (*model.Milestone, error) {
	member, err := s.authz.RequireMember(ctx, orgId, userId)
	if err != nil {
		return nil, err
	}
	m, err := s.milestoneRepo.GetMilestone(ctx, orgId, milestoneId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: milestone %s", ErrNotFound, milestoneId)
		}
		return nil, fmt.Errorf("get milestone failed: %w", err)
	}
	p, err := getProject(ctx, s.projectRepo, orgId, m.ProjectId)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeMember(ctx, member, rbac.ResourceMilestone, action, projectContext(p, m.CreatedBy)); err != nil {
		return nil, err
	}
	return m, nil
}

// checkPhase 阶段可以为空，非空时必须属于本组织
func (s *MilestoneService) checkPhase(ctx context.Context, orgId, phaseId string) error {
	if phaseId == "" {
		return nil
	}
	if _, err := getPhase(ctx, s.phaseRepo, orgId, phaseId); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: unknown phase %q", ErrBadRequest, phaseId)
		}
		return err
	}
	return nil
}

func getProject(ctx context.Context, projectRepo repo.IProjectRepository, orgId, projectId string) (*model.Project, error) {
	p, err := projectRepo.GetProject(ctx, orgId, projectId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: project %s", ErrNotFound, projectId)
		}
		return nil, fmt.Errorf("get project failed: %w", err)
	}
	return p, nil
}
