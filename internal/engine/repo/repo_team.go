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
)

type ITeamRepository interface {
	CreateTeam(ctx context.Context, t *model.Team) error
	GetTeam(ctx context.Context, orgId, teamId string) (*model.Team, error)
	ListTeams(ctx context.Context, orgId string) ([]*model.Team, error)
	CountTeams(ctx context.Context, orgId string, teamIds []string) (int64, error)
	CheckTeamNameExists(ctx context.Context, orgId, name string, excludeTeamId ...string) (bool, error)
	UpdateTeam(ctx context.Context, orgId, teamId string, updates map[string]any) error
	DeleteTeam(ctx context.Context, orgId, teamId string) error
}

type TeamRepo struct {
	database.IDatabase
}

func NewTeamRepo(db database.IDatabase) ITeamRepository {
	return &TeamRepo{IDatabase: db}
}

// CreateTeam 创建团队
func (r *TeamRepo) CreateTeam(ctx context.Context, t *model.Team) error {
	return r.Database().WithContext(ctx).Create(t).Error
}

// GetTeam 根据团队ID获取团队信息
func (r *TeamRepo) GetTeam(ctx context.Context, orgId, teamId string) (*model.Team, error) {
	var t model.Team
	err := r.Database().WithContext(ctx).Where("org_id = ? AND team_id = ?", orgId, teamId).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TeamRepo) ListTeams(ctx context.Context, orgId string) ([]*model.Team, error) {
	var teams []*model.Team
	err := r.Database().WithContext(ctx).Where("org_id = ?", orgId).Order("id ASC").Find(&teams).Error
	return teams, err
}

// CountTeams 统计组织内存在的团队数量，用于校验团队ID
func (r *TeamRepo) CountTeams(ctx context.Context, orgId string, teamIds []string) (int64, error) {
	if len(teamIds) == 0 {
		return 0, nil
	}
	return Count(r.Database().WithContext(ctx).Model(&model.Team{}).
		Where("org_id = ? AND team_id IN ?", orgId, teamIds))
}

func (r *TeamRepo) CheckTeamNameExists(ctx context.Context, orgId, name string, excludeTeamId ...string) (bool, error) {
	db := r.Database().WithContext(ctx).Model(&model.Team{}).Where("org_id = ? AND name = ?", orgId, name)
	if len(excludeTeamId) > 0 && excludeTeamId[0] != "" {
		db = db.Where("team_id != ?", excludeTeamId[0])
	}
	count, err := Count(db)
	return count > 0, err
}

// UpdateTeam 更新团队
func (r *TeamRepo) UpdateTeam(ctx context.Context, orgId, teamId string, updates map[string]any) error {
	return r.Database().WithContext(ctx).Model(&model.Team{}).
		Where("org_id = ? AND team_id = ?", orgId, teamId).
		Updates(updates).Error
}

// DeleteTeam 删除团队
func (r *TeamRepo) DeleteTeam(ctx context.Context, orgId, teamId string) error {
	return r.Database().WithContext(ctx).
		Where("org_id = ? AND team_id = ?", orgId, teamId).
		Delete(&model.Team{}).Error
}
