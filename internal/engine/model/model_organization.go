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

package model

import (
	"gorm.io/datatypes"
)

// Organization 组织表
type Organization struct {
	BaseModel
	OrgId       string         `gorm:"column:org_id;uniqueIndex;size:64" json:"orgId"`
	Name        string         `gorm:"column:name;size:128" json:"name"`
	Slug        string         `gorm:"column:slug;uniqueIndex;size:128" json:"slug"`
	Description string         `gorm:"column:description" json:"description"`
	Settings    datatypes.JSON `gorm:"column:settings" json:"settings"`
	CreatedBy   string         `gorm:"column:created_by;size:64" json:"createdBy"`
}

func (Organization) TableName() string {
	return "t_organization"
}

// OrganizationSettings 组织默认设置
type OrganizationSettings struct {
	AllowGuestAccess      bool   `json:"allowGuestAccess"`
	DefaultProjectVisible string `json:"defaultProjectVisibility"`
	TimeTracking          bool   `json:"timeTracking"`
}

// DefaultOrganizationSettings mirrors the defaults applied at creation.
func DefaultOrganizationSettings() OrganizationSettings {
	return OrganizationSettings{
		AllowGuestAccess:      false,
		DefaultProjectVisible: "team",
		TimeTracking:          true,
	}
}

type CreateOrganizationReq struct {
	Name        string                `json:"name"`
	Slug        string                `json:"slug"`
	Description string                `json:"description"`
	Settings    *OrganizationSettings `json:"settings"`
}

type UpdateOrganizationReq struct {
	Name        *string               `json:"name"`
	Description *string               `json:"description"`
	Settings    *OrganizationSettings `json:"settings"`
}

type OrganizationResp struct {
	OrgId       string         `json:"orgId"`
	Name        string         `json:"name"`
	Slug        string         `json:"slug"`
	Description string         `json:"description"`
	Settings    datatypes.JSON `json:"settings"`
	CreatedBy   string         `json:"createdBy"`
	Role        string         `json:"role,omitempty"`
}

func ToOrganizationResp(o *Organization) *OrganizationResp {
	return &OrganizationResp{
		OrgId:       o.OrgId,
		Name:        o.Name,
		Slug:        o.Slug,
		Description: o.Description,
		Settings:    o.Settings,
		CreatedBy:   o.CreatedBy,
	}
}
