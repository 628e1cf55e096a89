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

type IOrganizationRepository interface {
	CreateWithOwner(ctx context.Context, org *model.Organization, owner *model.OrganizationMember) error
	GetOrganization(ctx context.Context, orgId string) (*model.Organization, error)
	CheckSlugExists(ctx context.Context, slug string) (bool, error)
	UpdateOrganization(ctx context.Context, orgId string, updates map[string]any) error
	DeleteOrganization(ctx context.Context, orgId string) error
	ListOrganizationsByIds(ctx context.Context, orgIds []string) ([]*model.Organization, error)
}

type OrganizationRepo struct {
	database.IDatabase
}

func NewOrganizationRepo(db database.IDatabase) IOrganizationRepository {
	return &OrganizationRepo{IDatabase: db}
}

// CreateWithOwner 创建组织并写入创建者的 owner 成员关系
func (r *OrganizationRepo) CreateWithOwner(ctx context.Context, org *model.Organization, owner *model.OrganizationMember) error {
	return r.Database().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(org).Error; err != nil {
			return err
		}
		return tx.Create(owner).Error
	})
}

func (r *OrganizationRepo) GetOrganization(ctx context.Context, orgId string) (*model.Organization, error) {
	var o model.Organization
	err := r.Database().WithContext(ctx).Where("org_id = ?", orgId).First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrganizationRepo) CheckSlugExists(ctx context.Context, slug string) (bool, error) {
	count, err := Count(r.Database().WithContext(ctx).Model(&model.Organization{}).Where("slug = ?", slug))
	return count > 0, err
}

func (r *OrganizationRepo) UpdateOrganization(ctx context.Context, orgId string, updates map[string]any) error {
	return r.Database().WithContext(ctx).Model(&model.Organization{}).
		Where("org_id = ?", orgId).
		Updates(updates).Error
}

// DeleteOrganization 删除组织及其下所有数据
func (r *OrganizationRepo) DeleteOrganization(ctx context.Context, orgId string) error {
	return r.Database().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []any{
			&model.TaskComment{},
			&model.Task{},
			&model.Milestone{},
			&model.Phase{},
			&model.Project{},
			&model.Team{},
			&model.Role{},
			&model.OrganizationMember{},
			&model.Organization{},
		} {
			if err := tx.Where("org_id = ?", orgId).Delete(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *OrganizationRepo) ListOrganizationsByIds(ctx context.Context, orgIds []string) ([]*model.Organization, error) {
	var orgs []*model.Organization
	if len(orgIds) == 0 {
		return orgs, nil
	}
	err := r.Database().WithContext(ctx).Where("org_id IN ?", orgIds).Order("id ASC").Find(&orgs).Error
	return orgs, err
}
