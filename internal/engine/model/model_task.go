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
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusDone       = "done"
)

// Task 任务表
type Task struct {
	BaseModel
	TaskId      string         `gorm:"column:task_id;uniqueIndex;size:64" json:"taskId"`
	OrgId       string         `gorm:"column:org_id;index;size:64" json:"orgId"`
	ProjectId   string         `gorm:"column:project_id;index;size:64" json:"projectId"`
	MilestoneId string         `gorm:"column:milestone_id;size:64" json:"milestoneId"`
	Title       string         `gorm:"column:title;size:256" json:"title"`
	Description string         `gorm:"column:description" json:"description"`
	Status      string         `gorm:"column:status;size:32" json:"status"`
	Priority    string         `gorm:"column:priority;size:32" json:"priority"`
	Labels      datatypes.JSON `gorm:"column:labels" json:"labels"`
	AssignedTo  string         `gorm:"column:assigned_to;size:64" json:"assignedTo"`
	CreatedBy   string         `gorm:"column:created_by;size:64" json:"createdBy"`
}

func (Task) TableName() string {
	return "t_task"
}

// TaskComment 任务评论表
type TaskComment struct {
	BaseModel
	CommentId string `gorm:"column:comment_id;uniqueIndex;size:64" json:"commentId"`
	OrgId     string `gorm:"column:org_id;size:64" json:"orgId"`
	TaskId    string `gorm:"column:task_id;index;size:64" json:"taskId"`
	Body      string `gorm:"column:body" json:"body"`
	CreatedBy string `gorm:"column:created_by;size:64" json:"createdBy"`
}

func (TaskComment) TableName() string {
	return "t_task_comment"
}

type CreateTaskReq struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	MilestoneId string   `json:"milestoneId"`
	Priority    string   `json:"priority"`
	Labels      []string `json:"labels"`
}

type UpdateTaskReq struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Status      *string  `json:"status"`
	Priority    *string  `json:"priority"`
	MilestoneId *string  `json:"milestoneId"`
	Labels      []string `json:"labels"`
}

type AssignTaskReq struct {
	UserId string `json:"userId"`
}

type CreateCommentReq struct {
	Body string `json:"body"`
}

type TaskResp struct {
	TaskId      string   `json:"taskId"`
	OrgId       string   `json:"orgId"`
	ProjectId   string   `json:"projectId"`
	MilestoneId string   `json:"milestoneId,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	Priority    string   `json:"priority,omitempty"`
	Labels      []string `json:"labels"`
	AssignedTo  string   `json:"assignedTo,omitempty"`
	CreatedBy   string   `json:"createdBy"`
}

func ToTaskResp(t *Task) *TaskResp {
	return &TaskResp{
		TaskId:      t.TaskId,
		OrgId:       t.OrgId,
		ProjectId:   t.ProjectId,
		MilestoneId: t.MilestoneId,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		Labels:      StringsFromJSON(t.Labels),
		AssignedTo:  t.AssignedTo,
		CreatedBy:   t.CreatedBy,
	}
}
