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

import "gorm.io/datatypes"

const (
	ProjectStatusActive   = "active"
	ProjectStatusArchived = "archived"
)

// Project 项目表
type Project struct {
	BaseModel
	ProjectId   string         `gorm:"column:project_id;uniqueIndex;size:64" json:"projectId"`
	OrgId       string         `gorm:"column:org_id;index;size:64" json:"orgId"`
	Name        string         `gorm:"column:name;size:128" json:"name"`
	Description string         `gorm:"column:description" json:"description"`
	TeamIds     datatypes.JSON `gorm:"column:team_ids" json:"teamIds"`
	Status      string         `gorm:"column:status;size:16" json:"status"`
	CreatedBy   string         `gorm:"column:created_by;size:64" json:"createdBy"`
}

func (Project) TableName() string {
	return "t_project"
}

type CreateProjectReq struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	TeamIds     []string `json:"teamIds"`
}

type UpdateProjectReq struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Status      *string  `json:"status"`
	TeamIds     []string `json:"teamIds"`
}

type ProjectResp struct {
	ProjectId   string   `json:"projectId"`
	OrgId       string   `json:"orgId"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	TeamIds     []string `json:"teamIds"`
	Status      string   `json:"status"`
	CreatedBy   string   `json:"createdBy"`
}

func ToProjectResp(p *Project) *ProjectResp {
	return &ProjectResp{
		ProjectId:   p.ProjectId,
		OrgId:       p.OrgId,
		Name:        p.Name,
		Description: p.Description,
		TeamIds:     StringsFromJSON(p.TeamIds),
		Status:      p.Status,
		CreatedBy:   p.CreatedBy,
	}
}
