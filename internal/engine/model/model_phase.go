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

// Phase 路线图阶段，里程碑通过 PhaseId 归入阶段
type Phase struct {
	BaseModel
	PhaseId     string `gorm:"column:phase_id;uniqueIndex;size:64" json:"phaseId"`
	OrgId       string `gorm:"column:org_id;index;size:64" json:"orgId"`
	Name        string `gorm:"column:name;size:255" json:"name"`
	Description string `gorm:"column:description" json:"description"`
	StartWeek   *int   `gorm:"column:start_week" json:"startWeek"`
	EndWeek     *int   `gorm:"column:end_week" json:"endWeek"`
	OrderIndex  int    `gorm:"column:order_index" json:"orderIndex"`
	CreatedBy   string `gorm:"column:created_by;size:64" json:"createdBy"`
}

func (Phase) TableName() string {
	return "t_roadmap_phase"
}

type CreatePhaseReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	StartWeek   *int   `json:"startWeek"`
	EndWeek     *int   `json:"endWeek"`
	OrderIndex  int    `json:"orderIndex"`
}

type UpdatePhaseReq struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	StartWeek   *int    `json:"startWeek"`
	EndWeek     *int    `json:"endWeek"`
	OrderIndex  *int    `json:"orderIndex"`
}
