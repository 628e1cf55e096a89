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

type ITaskRepository interface {
	CreateTask(ctx context.Context, t *model.Task) error
	GetTask(ctx context.Context, orgId, taskId string) (*model.Task, error)
	ListTasks(ctx context.Context, orgId, projectId string, offset, limit int) ([]*model.Task, int64, error)
	UpdateTask(ctx context.Context, orgId, taskId string, updates map[string]any) error
	DeleteTask(ctx context.Context, orgId, taskId string) error
	CreateComment(ctx context.Context, c *model.TaskComment) error
	ListComments(ctx context.Context, orgId, taskId string) ([]*model.TaskComment, error)
}

type TaskRepo struct {
	database.IDatabase
}

func NewTaskRepo(db database.IDatabase) ITaskRepository {
	return &TaskRepo{IDatabase: db}
}

func (r *TaskRepo) CreateTask(ctx context.Context, t *model.Task) error {
	return r.Database().WithContext(ctx).Create(t).Error
}

func (r *TaskRepo) GetTask(ctx context.Context, orgId, taskId string) (*model.Task, error) {
	var t model.Task
	err := r.Database().WithContext(ctx).Where("org_id = ? AND task_id = ?", orgId, taskId).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepo) ListTasks(ctx context.Context, orgId, projectId string, offset, limit int) ([]*model.Task, int64, error) {
	var tasks []*model.Task
	db := r.Database().WithContext(ctx).Model(&model.Task{}).Where("org_id = ? AND project_id = ?", orgId, projectId)
	total, err := Count(db)
	if err != nil {
		return nil, 0, err
	}
	err = page(db, offset, limit).Order("id ASC").Find(&tasks).Error
	return tasks, total, err
}

func (r *TaskRepo) UpdateTask(ctx context.Context, orgId, taskId string, updates map[string]any) error {
	return r.Database().WithContext(ctx).Model(&model.Task{}).
		Where("org_id = ? AND task_id = ?", orgId, taskId).
		Updates(updates).Error
}

func (r *TaskRepo) DeleteTask(ctx context.Context, orgId, taskId string) error {
	return r.Database().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("org_id = ? AND task_id = ?", orgId, taskId).Delete(&model.TaskComment{}).Error; err != nil {
			return err
		}
		return tx.Where("org_id = ? AND task_id = ?", orgId, taskId).Delete(&model.Task{}).Error
	})
}

func (r *TaskRepo) CreateComment(ctx context.Context, c *model.TaskComment) error {
	return r.Database().WithContext(ctx).Create(c).Error
}

func (r *TaskRepo) ListComments(ctx context.Context, orgId, taskId string) ([]*model.TaskComment, error) {
	var comments []*model.TaskComment
	err := r.Database().WithContext(ctx).
		Where("org_id = ? AND task_id = ?", orgId, taskId).
		Order("id ASC").Find(&comments).Error
	return comments, err
}
