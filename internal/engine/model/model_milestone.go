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

import "time"

// Milestone 里程碑表
type Milestone struct {
	BaseModel
	MilestoneId string     `gorm:"column:milestone_id;uniqueIndex;size:64" json:"milestoneId"`
	OrgId       string     `gorm:"column:org_id;index;size:64" json:"orgId"`
	ProjectId   string     `gorm:"column:project_id;index;size:64" json:"projectId"`
	PhaseId     string     `gorm:"column:phase_id;index;size:64" json:"phaseId"`
	Name        string     `gorm:"column:name;size:128" json:"name"`
	Description string     `gorm:"column:description" json:"description"`
	DueDate     *time.Time `gorm:"column:due_date" json:"dueDate"`
	Completed   bool       `gorm:"column:completed" json:"completed"`
	CreatedBy   string     `gorm:"column:created_by;size:64" json:"createdBy"`
}

func (Milestone) TableName() string {
	return "t_milestone"
}

type CreateMilestoneReq struct {
	Name        string     `json:"name"`
	PhaseId     string     `json:"phaseId"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
}

type UpdateMilestoneReq struct {
	Name        *string    `json:"name"`
	PhaseId     *string    `json:"phaseId"` // "" 表示移出阶段
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	Completed   *bool      `json:"completed"`
}
