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
	"gorm.io/gorm"
)

type IPhaseRepository interface {
	CreatePhase(ctx context.Context, p *model.Phase) error
	GetPhase(ctx context.Context, orgId, phaseId string) (*model.Phase, error)
	ListPhases(ctx context.Context, orgId string) ([]*model.Phase, error)
	UpdatePhase(ctx context.Context, orgId, phaseId string, updates map[string]any) error
	DeletePhase(ctx context.Context, orgId, phaseId string) error
}

type PhaseRepo struct {
	database.IDatabase
}

func NewPhaseRepo(db database.IDatabase) IPhaseRepository {
	return &PhaseRepo{IDatabase: db}
}

func (r *PhaseRepo) CreatePhase(ctx context.Context, p *model.Phase) error {
	return r.Database().WithContext(ctx).Create(p).Error
}

func (r *PhaseRepo) GetPhase(ctx context.Context, orgId, phaseId string) (*model.Phase, error) {
	var p model.Phase
	err := r.Database().WithContext(ctx).Where("org_id = ? AND phase_id = ?", orgId, phaseId).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPhases 按 order_index、创建顺序排列
func (r *PhaseRepo) ListPhases(ctx context.Context, orgId string) ([]*model.Phase, error) {
	var phases []*model.Phase
	err := r.Database().WithContext(ctx).
		Where("org_id = ?", orgId).
		Order("order_index ASC").Order("id ASC").
		Find(&phases).Error
	return phases, err
}

func (r *PhaseRepo) UpdatePhase(ctx context.Context, orgId, phaseId string, updates map[string]any) error {
	return r.Database().WithContext(ctx).Model(&model.Phase{}).
		Where("org_id = ? AND phase_id = ?", orgId, phaseId).
		Updates(updates).Error
}

// DeletePhase 删除阶段，其下里程碑保留但移出阶段
func (r *PhaseRepo) DeletePhase(ctx context.Context, orgId, phaseId string) error {
	return r.Database().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Milestone{}).
			Where("org_id = ? AND phase_id = ?", orgId, phaseId).
			Update("phase_id", "").Error; err != nil {
			return err
		}
		return tx.Where("org_id = ? AND phase_id = ?", orgId, phaseId).Delete(&model.Phase{}).Error
	})
}
