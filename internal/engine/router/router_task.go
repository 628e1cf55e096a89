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

package router

import (
	"github.com/go-arcade/epcentra/internal/engine/model"
	"github.com/go-arcade/epcentra/pkg/http/middleware"
	"github.com/gofiber/fiber/v2"
)

/**
 * @description: 任务路由，指派与评论使用独立的动作鉴权
 */

func (rt *Router) taskRouter(org fiber.Router) {
	taskGroup := org.Group("/tasks")
	{
		taskGroup.Get("/:taskId", rt.getTask)
		taskGroup.Put("/:taskId", rt.updateTask)
		taskGroup.Delete("/:taskId", rt.deleteTask)

		// 指派，action = assign
		taskGroup.Post("/:taskId/assign", rt.assignTask)

		// 评论，action = comment
		taskGroup.Post("/:taskId/comments", rt.commentTask)
		taskGroup.Get("/:taskId/comments", rt.listComments)
	}
}

// createTask 在项目下创建任务
func (rt *Router) createTask(c *fiber.Ctx) error {
	var req model.CreateTaskReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := rt.Services.Task.CreateTask(c.UserContext(), middleware.GetUserId(c), c.Params("orgId"), c.Params("projectId"), &req)
	if err != nil {
		return withServiceErr(c, err)
	}
	return detail(c, result)
}

func (rt *Router) listTasks(c *fiber.Ctx) error {
	result, err := rt.Services.Task.ListTasks(c.UserContext(), middleware.GetUserId(c), c.Params("orgId"), c.Params("projectId"), listReq(c))
	if err != nil {
		return withServiceErr(c, err)
	}
	return detail(c, result)
}

func (rt *Router) getTask(c *fiber.Ctx) error {
	result, err := rt.Services.Task.GetTask(c.UserContext(), middleware.GetUserId(c), c.Params("orgId"), c.Params("taskId"))
	if err != nil {
		return withServiceErr(c, err)
	}
	return detail(c, result)
}

// updateTask 更新任务
func (rt *Router) updateTask(c *fiber.Ctx) error {
	var req model.UpdateTaskReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := rt.Services.Task.UpdateTask(c.UserContext(), middleware.GetUserId(c), c.Params("orgId"), c.Params("taskId"), &req)
	if err != nil {
		return withServiceErr(c, err)
	}
	return detail(c, result)
}

func (rt *Router) deleteTask(c *fiber.Ctx) error {
	taskId := c.Params("taskId")
	if err := rt.Services.Task.DeleteTask(c.UserContext(), middleware.GetUserId(c), c.Params("orgId"), taskId); err != nil {
		return withServiceErr(c, err)
	}
	return operation(c, taskId)
}

// assignTask 指派任务，userId 为空表示取消指派
func (rt *Router) assignTask(c *fiber.Ctx) error {
	var req model.AssignTaskReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := rt.Services.Task.AssignTask(c.UserContext(), middleware.GetUserId(c), c.Params("orgId"), c.Params("taskId"), req.UserId)
	if err != nil {
		return withServiceErr(c, err)
	}
	return detail(c, result)
}

func (rt *Router) commentTask(c *fiber.Ctx) error {
	var req model.CreateCommentReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := rt.Services.Task.CommentTask(c.UserContext(), middleware.GetUserId(c), c.Params("orgId"), c.Params("taskId"), &req)
	if err != nil {
		return withServiceErr(c, err)
	}
	return detail(c, result)
}

func (rt *Router) listComments(c *fiber.Ctx) error {
	result, err := rt.Services.Task.ListComments(c.UserContext(), middleware.GetUserId(c), c.Params("orgId"), c.Params("taskId"))
	if err != nil {
		return withServiceErr(c, err)
	}
	return detail(c, result)
}
