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

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-arcade/epcentra/internal/engine/model"
	"github.com/go-arcade/epcentra/internal/engine/repo"
	"github.com/go-arcade/epcentra/internal/pkg/rbac"
	"github.com/go-arcade/epcentra/pkg/id"
	"github.com/go-arcade/epcentra/pkg/log"
	"gorm.io/gorm"
)

// TaskService 任务的团队作用域来自所属项目，own 作用域来自任务创建者
type TaskService struct {
	authz         *AuthzService
	projectRepo   repo.IProjectRepository
	milestoneRepo repo.IMilestoneRepository
	taskRepo      repo.ITaskRepository
}

func NewTaskService(authz *AuthzService, repos *repo.Repositories) *TaskService {
	return &TaskService{
		authz:         authz,
		projectRepo:   repos.Project,
		milestoneRepo: repos.Milestone,
		taskRepo:      repos.Task,
	}
}

// CreateTask 创建任务
func (s *TaskService) CreateTask(ctx context.Context, userId, orgId, projectId string, req *model.CreateTaskReq) (*model.TaskResp, error) {
	// 1. 鉴权
	member, err := s.authz.RequireMember(ctx, orgId, userId)
	if err != nil {
		return nil, err
	}
	p, err := getProject(ctx, s.projectRepo, orgId, projectId)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeMember(ctx, member, rbac.ResourceTask, rbac.ActionCreate, projectContext(p, userId)); err != nil {
		return nil, err
	}

	// 2. 参数校验
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: task title cannot be empty", ErrBadRequest)
	}
	if err := s.checkMilestone(ctx, orgId, projectId, req.MilestoneId); err != nil {
		return nil, err
	}

	// 3. 保存
	labels, err := model.ToJSON(uniq(req.Labels), "[]")
	if err != nil {
		return nil, fmt.Errorf("convert labels failed: %w", err)
	}
	t := &model.Task{
		TaskId:      id.GetUlid(),
		OrgId:       orgId,
		ProjectId:   projectId,
		MilestoneId: req.MilestoneId,
		Title:       title,
		Description: req.Description,
		Status:      model.TaskStatusTodo,
		Priority:    req.Priority,
		Labels:      labels,
		CreatedBy:   userId,
	}
	if err := s.taskRepo.CreateTask(ctx, t); err != nil {
		log.Errorw("create task failed", "projectId", projectId, "error", err)
		return nil, fmt.Errorf("create task failed: %w", err)
	}
	log.Infow("success create task", "projectId", projectId, "taskId", t.TaskId)
	return model.ToTaskResp(t), nil
}

// ListTasks 分页列出项目任务，要求在项目范围内拥有 task:read
func (s *TaskService) ListTasks(ctx context.Context, userId, orgId, projectId string, req model.ListReq) (*model.ListResp[*model.TaskResp], error) {
	member, err := s.authz.RequireMember(ctx, orgId, userId)
	if err != nil {
		return nil, err
	}
	p, err := getProject(ctx, s.projectRepo, orgId, projectId)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeMember(ctx, member, rbac.ResourceTask, rbac.ActionRead, projectContext(p, "")); err != nil {
		return nil, err
	}

	req.Normalize()
	rows, total, err := s.taskRepo.ListTasks(ctx, orgId, projectId, req.Offset(), req.PageSize)
	if err != nil {
		return nil, fmt.Errorf("list tasks failed: %w", err)
	}
	list := make([]*model.TaskResp, 0, len(rows))
	for _, t := range rows {
		list = append(list, model.ToTaskResp(t))
	}
	return &model.ListResp[*model.TaskResp]{List: list, Total: total, Page: req.Page, PageSize: req.PageSize}, nil
}

// GetTask 获取任务
func (s *TaskService) GetTask(ctx context.Context, userId, orgId, taskId string) (*model.TaskResp, error) {
	t, _, err := s.load(ctx, userId, orgId, taskId, rbac.ActionRead)
	if err != nil {
		return nil, err
	}
	return model.ToTaskResp(t), nil
}

// UpdateTask 更新任务
func (s *TaskService) UpdateTask(ctx context.Context, userId, orgId, taskId string, req *model.UpdateTaskReq) (*model.TaskResp, error) {
	t, _, err := s.load(ctx, userId, orgId, taskId, rbac.ActionUpdate)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]any)
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: task title cannot be empty", ErrBadRequest)
		}
		updates["title"] = title
		t.Title = title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
		t.Description = *req.Description
	}
	if req.Status != nil {
		switch *req.Status {
		case model.TaskStatusTodo, model.TaskStatusInProgress, model.TaskStatusDone:
			updates["status"] = *req.Status
			t.Status = *req.Status
		default:
			return nil, fmt.Errorf("%w: unknown task status %q", ErrBadRequest, *req.Status)
		}
	}
	if req.Priority != nil {
		updates["priority"] = *req.Priority
		t.Priority = *req.Priority
	}
	if req.MilestoneId != nil {
		if err := s.checkMilestone(ctx, orgId, t.ProjectId, *req.MilestoneId); err != nil {
			return nil, err
		}
		updates["milestone_id"] = *req.MilestoneId
		t.MilestoneId = *req.MilestoneId
	}
	if req.Labels != nil {
		labels, err := model.ToJSON(uniq(req.Labels), "[]")
		if err != nil {
			return nil, fmt.Errorf("convert labels failed: %w", err)
		}
		updates["labels"] = labels
		t.Labels = labels
	}

	if len(updates) > 0 {
		if err := s.taskRepo.UpdateTask(ctx, orgId, taskId, updates); err != nil {
			log.Errorw("update task failed", "taskId", taskId, "error", err)
			return nil, fmt.Errorf("update task failed: %w", err)
		}
	}
	return model.ToTaskResp(t), nil
}

// DeleteTask 删除任务及评论
func (s *TaskService) DeleteTask(ctx context.Context, userId, orgId, taskId string) error {
	if _, _, err := s.load(ctx, userId, orgId, taskId, rbac.ActionDelete); err != nil {
		return err
	}
	if err := s.taskRepo.DeleteTask(ctx, orgId, taskId); err != nil {
		log.Errorw("delete task failed", "taskId", taskId, "error", err)
		return fmt.Errorf("delete task failed: %w", err)
	}
	log.Infow("success delete task", "taskId", taskId, "operator", userId)
	return nil
}

// AssignTask 指派任务，assignee 为空表示取消指派
func (s *TaskService) AssignTask(ctx context.Context, userId, orgId, taskId, assignee string) (*model.TaskResp, error) {
	t, _, err := s.load(ctx, userId, orgId, taskId, rbac.ActionAssign)
	if err != nil {
		return nil, err
	}
	if assignee != "" {
		m, err := s.authz.ResolveMember(ctx, orgId, assignee)
		if err != nil {
			if errors.Is(err, ErrNotMember) {
				return nil, fmt.Errorf("%w: assignee %s is not a member", ErrBadRequest, assignee)
			}
			return nil, err
		}
		if !m.Active() {
			return nil, fmt.Errorf("%w: assignee %s is not active", ErrBadRequest, assignee)
		}
	}
	if err := s.taskRepo.UpdateTask(ctx, orgId, taskId, map[string]any{"assigned_to": assignee}); err != nil {
		log.Errorw("assign task failed", "taskId", taskId, "assignee", assignee, "error", err)
		return nil, fmt.Errorf("assign task failed: %w", err)
	}
	t.AssignedTo = assignee
	log.Infow("success assign task", "taskId", taskId, "assignee", assignee, "operator", userId)
	return model.ToTaskResp(t), nil
}

// CommentTask 评论任务
func (s *TaskService) CommentTask(ctx context.Context, userId, orgId, taskId string, req *model.CreateCommentReq) (*model.TaskComment, error) {
	if _, _, err := s.load(ctx, userId, orgId, taskId, rbac.ActionComment); err != nil {
		return nil, err
	}
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, fmt.Errorf("%w: comment cannot be empty", ErrBadRequest)
	}
	c := &model.TaskComment{
		CommentId: id.GetUlid(),
		OrgId:     orgId,
		TaskId:    taskId,
		Body:      body,
		CreatedBy: userId,
	}
	if err := s.taskRepo.CreateComment(ctx, c); err != nil {
		log.Errorw("create comment failed", "taskId", taskId, "error", err)
		return nil, fmt.Errorf("create comment failed: %w", err)
	}
	return c, nil
}

// ListComments 列出任务评论
func (s *TaskService) ListComments(ctx context.Context, userId, orgId, taskId string) ([]*model.TaskComment, error) {
	if _, _, err := s.load(ctx, userId, orgId, taskId, rbac.ActionRead); err != nil {
		return nil, err
	}
	comments, err := s.taskRepo.ListComments(ctx, orgId, taskId)
	if err != nil {
		return nil, fmt.Errorf("list comments failed: %w", err)
	}
	return comments, nil
}

func (s *TaskService) checkMilestone(ctx context.Context, orgId, projectId, milestoneId string) error {
	if milestoneId == "" {
		return nil
	}
	m, err := s.milestoneRepo.GetMilestone(ctx, orgId, milestoneId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: unknown milestone %s", ErrBadRequest, milestoneId)
		}
		return fmt.Errorf("get milestone failed: %w", err)
	}
	if m.ProjectId != projectId {
		return fmt.Errorf("%w: milestone %s belongs to another project", ErrBadRequest, milestoneId)
	}
	return nil
}

func (s *TaskService) load(ctx context.Context, userId, orgId, taskId string, action rbac.Action) (*model.Task, *model.Project, error) {
	member, err := s.authz.RequireMember(ctx, orgId, userId)
	if err != nil {
		return nil, nil, err
	}
	t, err := s.taskRepo.GetTask(ctx, orgId, taskId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: task %s", ErrNotFound, taskId)
		}
		return nil, nil, fmt.Errorf("get task failed: %w", err)
	}
	p, err := getProject(ctx, s.projectRepo, orgId, t.ProjectId)
	if err != nil {
		return nil, nil, err
	}
	if err := s.authz.AuthorizeMember(ctx, member, rbac.ResourceTask, action, projectContext(p, t.CreatedBy)); err != nil {
		return nil, nil, err
	}
	return t, p, nil
}
