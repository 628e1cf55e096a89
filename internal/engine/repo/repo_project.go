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

type IProjectRepository interface {
	CreateProject(ctx context.Context, p *model.Project) error
	GetProject(ctx context.Context, orgId, projectId string) (*model.Project, error)
	ListProjects(ctx context.Context, orgId string) ([]*model.Project, error)
	UpdateProject(ctx context.Context, orgId, projectId string, updates map[string]any) error
	DeleteProject(ctx context.Context, orgId, projectId string) error
}

type ProjectRepo struct {
	database.IDatabase
}

func NewProjectRepo(db database.IDatabase) IProjectRepository {
	return &ProjectRepo{IDatabase: db}
}

func (r *ProjectRepo) CreateProject(ctx context.Context, p *model.Project) error {
	return r.Database().WithContext(ctx).Create(p).Error
}

func (r *ProjectRepo) GetProject(ctx context.Context, orgId, projectId string) (*model.Project, error) {
	var p model.Project
	err := r.Database().WithContext(ctx).Where("org_id = ? AND project_id = ?", orgId, projectId).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepo) ListProjects(ctx context.Context, orgId string) ([]*model.Project, error) {
	var projects []*model.Project
	err := r.Database().WithContext(ctx).Where("org_id = ?", orgId).Order("id ASC").Find(&projects).Error
	return projects, err
}

func (r *ProjectRepo) UpdateProject(ctx context.Context, orgId, projectId string, updates map[string]any) error {
	return r.Database().WithContext(ctx).Model(&model.Project{}).
		Where("org_id = ? AND project_id = ?", orgId, projectId).
		Updates(updates).Error
}

// DeleteProject 删除项目及其里程碑、任务和评论
func (r *ProjectRepo) DeleteProject(ctx context.Context, orgId, projectId string) error {
	return r.Database().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taskIds := tx.Model(&model.Task{}).Select("task_id").Where("project_id = ?", projectId)
		if err := tx.Where("task_id IN (?)", taskIds).Delete(&model.TaskComment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectId).Delete(&model.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectId).Delete(&model.Milestone{}).Error; err != nil {
			return err
		}
		return tx.Where("org_id = ? AND project_id = ?", orgId, projectId).Delete(&model.Project{}).Error
	})
}
