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

// Team 团队表，成员关系保存在组织成员的 teams 字段中
type Team struct {
	BaseModel
	TeamId      string `gorm:"column:team_id;uniqueIndex;size:64" json:"teamId"`
	OrgId       string `gorm:"column:org_id;uniqueIndex:uk_org_team_name;size:64" json:"orgId"`
	Name        string `gorm:"column:name;uniqueIndex:uk_org_team_name;size:128" json:"name"`
	Description string `gorm:"column:description" json:"description"`
	CreatedBy   string `gorm:"column:created_by;size:64" json:"createdBy"`
}

func (Team) TableName() string {
	return "t_team"
}

type CreateTeamReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type UpdateTeamReq struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}
