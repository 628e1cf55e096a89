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

type IOrganizationMemberRepository interface {
	CreateMember(ctx context.Context, m *model.OrganizationMember) error
	GetMember(ctx context.Context, orgId, userId string) (*model.OrganizationMember, error)
	ListMembers(ctx context.Context, orgId string, offset, limit int) ([]*model.OrganizationMember, int64, error)
	ListMembershipsByUser(ctx context.Context, userId, status string) ([]*model.OrganizationMember, error)
	ListUserIdsByRole(ctx context.Context, orgId, role string) ([]string, error)
	CountByRole(ctx context.Context, orgId, role, status string) (int64, error)
	UpdateMember(ctx context.Context, orgId, userId string, updates map[string]any) error
	DeleteMember(ctx context.Context, orgId, userId string) error
}

type OrganizationMemberRepo struct {
	database.IDatabase
}

func NewOrganizationMemberRepo(db database.IDatabase) IOrganizationMemberRepository {
	return &OrganizationMemberRepo{IDatabase: db}
}

func (r *OrganizationMemberRepo) CreateMember(ctx context.Context, m *model.OrganizationMember) error {
	return r.Database().WithContext(ctx).Create(m).Error
}

// GetMember 读主库，鉴权不能受从库延迟影响
func (r *OrganizationMemberRepo) GetMember(ctx context.Context, orgId, userId string) (*model.OrganizationMember, error) {
	var m model.OrganizationMember
	err := database.Primary(r.Database().WithContext(ctx)).
		Where("org_id = ? AND user_id = ?", orgId, userId).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *OrganizationMemberRepo) ListMembers(ctx context.Context, orgId string, offset, limit int) ([]*model.OrganizationMember, int64, error) {
	var members []*model.OrganizationMember
	db := r.Database().WithContext(ctx).Model(&model.OrganizationMember{}).Where("org_id = ?", orgId)
	total, err := Count(db)
	if err != nil {
		return nil, 0, err
	}
	err = page(db, offset, limit).Order("id ASC").Find(&members).Error
	return members, total, err
}

func (r *OrganizationMemberRepo) ListMembershipsByUser(ctx context.Context, userId, status string) ([]*model.OrganizationMember, error) {
	var members []*model.OrganizationMember
	db := r.Database().WithContext(ctx).Where("user_id = ?", userId)
	if status != "" {
		db = db.Where("status = ?", status)
	}
	err := db.Order("id ASC").Find(&members).Error
	return members, err
}

func (r *OrganizationMemberRepo) ListUserIdsByRole(ctx context.Context, orgId, role string) ([]string, error) {
	var userIds []string
	err := r.Database().WithContext(ctx).Model(&model.OrganizationMember{}).
		Where("org_id = ? AND role = ?", orgId, role).
		Pluck("user_id", &userIds).Error
	return userIds, err
}

func (r *OrganizationMemberRepo) CountByRole(ctx context.Context, orgId, role, status string) (int64, error) {
	db := database.Primary(r.Database().WithContext(ctx)).Model(&model.OrganizationMember{}).
		Where("org_id = ? AND role = ?", orgId, role)
	if status != "" {
		db = db.Where("status = ?", status)
	}
	return Count(db)
}

func (r *OrganizationMemberRepo) UpdateMember(ctx context.Context, orgId, userId string, updates map[string]any) error {
	return r.Database().WithContext(ctx).Model(&model.OrganizationMember{}).
		Where("org_id = ? AND user_id = ?", orgId, userId).
		Updates(updates).Error
}

func (r *OrganizationMemberRepo) DeleteMember(ctx context.Context, orgId, userId string) error {
	return r.Database().WithContext(ctx).
		Where("org_id = ? AND user_id = ?", orgId, userId).
		Delete(&model.OrganizationMember{}).Error
}
