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

// PhaseService 路线图阶段是组织级记录，没有团队上下文，
// 修改需要不限作用域的 milestone 授权，活跃成员均可读取
type PhaseService struct {
	authz     *AuthzService
	phaseRepo repo.IPhaseRepository
}

func NewPhaseService(authz *AuthzService, repos *repo.Repositories) *PhaseService {
	return &PhaseService{
		authz:     authz,
		phaseRepo: repos.Phase,
	}
}

// CreatePhase 创建阶段
func (s *PhaseService) CreatePhase(ctx context.Context, userId, orgId string, req *model.CreatePhaseReq) (*model.Phase, error) {
	if err := s.authz.Authorize(ctx, orgId, userId, rbac.ResourceMilestone, rbac.ActionCreate, nil); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: phase name cannot be empty", ErrBadRequest)
	}
	if err := checkWeeks(req.StartWeek, req.EndWeek); err != nil {
		return nil, err
	}
	p := &model.Phase{
		PhaseId:     id.GetUlid(),
		OrgId:       orgId,
		Name:        name,
		Description: req.Description,
		StartWeek:   req.StartWeek,
		EndWeek:     req.EndWeek,
		OrderIndex:  req.OrderIndex,
		CreatedBy:   userId,
	}
	if err := s.phaseRepo.CreatePhase(ctx, p); err != nil {
		log.Errorw("create phase failed", "orgId", orgId, "error", err)
		return nil, fmt.Errorf("create phase failed: %w", err)
	}
	log.Infow("success create phase", "orgId", orgId, "phaseId", p.PhaseId)
	return p, nil
}

// ListPhases 列出组织的路线图阶段
func (s *PhaseService) ListPhases(ctx context.Context, userId, orgId string) ([]*model.Phase, error) {
	if _, err := s.authz.RequireMember(ctx, orgId, userId); err != nil {
		return nil, err
	}
	phases, err := s.phaseRepo.ListPhases(ctx, orgId)
	if err != nil {
		return nil, fmt.Errorf("list phases failed: %w", err)
	}
	return phases, nil
}

// GetPhase 获取阶段
func (s *PhaseService) GetPhase(ctx context.Context, userId, orgId, phaseId string) (*model.Phase, error) {
	if _, err := s.authz.RequireMember(ctx, orgId, userId); err != nil {
		return nil, err
	}
	return getPhase(ctx, s.phaseRepo, orgId, phaseId)
}

// UpdatePhase 更新阶段
func (s *PhaseService) UpdatePhase(ctx context.Context, userId, orgId, phaseId string, req *model.UpdatePhaseReq) (*model.Phase, error) {
	if err := s.authz.Authorize(ctx, orgId, userId, rbac.ResourceMilestone, rbac.ActionUpdate, nil); err != nil {
		return nil, err
	}
	p, err := getPhase(ctx, s.phaseRepo, orgId, phaseId)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]any)
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: phase name cannot be empty", ErrBadRequest)
		}
		updates["name"] = name
		p.Name = name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
		p.Description = *req.Description
	}
	if req.StartWeek != nil {
		updates["start_week"] = *req.StartWeek
		p.StartWeek = req.StartWeek
	}
	if req.EndWeek != nil {
		updates["end_week"] = *req.EndWeek
		p.EndWeek = req.EndWeek
	}
	if req.OrderIndex != nil {
		updates["order_index"] = *req.OrderIndex
		p.OrderIndex = *req.OrderIndex
	}
	if err := checkWeeks(p.StartWeek, p.EndWeek); err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := s.phaseRepo.UpdatePhase(ctx, orgId, phaseId, updates); err != nil {
			log.Errorw("update phase failed", "phaseId", phaseId, "error", err)
			return nil, fmt.Errorf("update phase failed: %w", err)
		}
	}
	return p, nil
}

// DeletePhase 删除阶段，里程碑移出阶段
func (s *PhaseService) DeletePhase(ctx context.Context, userId, orgId, phaseId string) error {
	if err := s.authz.Authorize(ctx, orgId, userId, rbac.ResourceMilestone, rbac.ActionDelete, nil); err != nil {
		return err
	}
	if _, err := getPhase(ctx, s.phaseRepo, orgId, phaseId); err != nil {
		return err
	}
	if err := s.phaseRepo.DeletePhase(ctx, orgId, phaseId); err != nil {
		log.Errorw("delete phase failed", "phaseId", phaseId, "error", err)
		return fmt.Errorf("delete phase failed: %w", err)
	}
	log.Infow("success delete phase", "phaseId", phaseId, "operator", userId)
	return nil
}

func checkWeeks(start, end *int) error {
	if (start != nil && *start < 0) || (end != nil && *end < 0) {
		return fmt.Errorf("%w: weeks cannot be negative", ErrBadRequest)
	}
	if start != nil && end != nil && *start > *end {
		return fmt.Errorf("%w: start week is after end week", ErrBadRequest)
	}
	return nil
}

func getPhase(ctx context.Context, phaseRepo repo.IPhaseRepository, orgId, phaseId string) (*model.Phase, error) {
	p, err := phaseRepo.GetPhase(ctx, orgId, phaseId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: phase %s", ErrNotFound, phaseId)
		}
		return nil, fmt.Errorf("get phase failed: %w", err)
	}
	return p, nil
}
