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

type IMilestoneRepository interface {
	CreateMilestone(ctx context.Context, m *model.Milestone) error
	GetMilestone(ctx context.Context, orgId, milestoneId string) (*model.Milestone, error)
	ListMilestones(ctx context.Context, orgId, projectId string) ([]*model.Milestone, error)
	UpdateMilestone(ctx context.Context, orgId, milestoneId string, updates map[string]any) error
	DeleteMilestone(ctx context.Context, orgId, milestoneId string) error
}

type MilestoneRepo struct {
	database.IDatabase
}

func NewMilestoneRepo(db database.IDatabase) IMilestoneRepository {
	return &MilestoneRepo{IDatabase: db}
}

func (r *MilestoneRepo) CreateMilestone(ctx context.Context, m *model.Milestone) error {
	return r.Database().WithContext(ctx).Create(m).Error
}

func (r *MilestoneRepo) GetMilestone(ctx context.Context, orgId, milestoneId string) (*model.Milestone, error) {
	var m model.Milestone
	err := r.Database().WithContext(ctx).Where("org_id = ? AND milestone_id = ?", orgId, milestoneId).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MilestoneRepo) ListMilestones(ctx context.Context, orgId, projectId string) ([]*model.Milestone, error) {
	var milestones []*model.Milestone
	err := r.Database().WithContext(ctx).
		Where("org_id = ? AND project_id = ?", orgId, projectId).
		Order("id ASC").Find(&milestones).Error
	return milestones, err
}

func (r *MilestoneRepo) UpdateMilestone(ctx context.Context, orgId, milestoneId string, updates map[string]any) error {
	return r.Database().WithContext(ctx).Model(&model.Milestone{}).
		Where("org_id = ? AND milestone_id = ?", orgId, milestoneId).
		Updates(updates).Error
}

// DeleteMilestone 删除里程碑并解除任务关联
func (r *MilestoneRepo) DeleteMilestone(ctx context.Context, orgId, milestoneId string) error {
	return r.Database().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Task{}).
			Where("org_id = ? AND milestone_id = ?", orgId, milestoneId).
			Update("milestone_id", "").Error; err != nil {
			return err
		}
		return tx.Where("org_id = ? AND milestone_id = ?", orgId, milestoneId).Delete(&model.Milestone{}).Error
	})
}
