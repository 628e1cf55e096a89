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
 * @description: 项目路由，团队作用域的鉴权在 service 层加载记录后完成
 */

func (rt *Router) projectRouter(org fiber.Router) {
	projectGroup := org.Group("/projects")
	{
		projectGroup.Post("/", rt.createProject)
		projectGroup.Get("/", rt.listProjects)
		projectGroup.Get("/:projectId", rt.getProject)
		projectGroup.Put("/:projectId", rt.updateProject)
		projectGroup.Delete("/:projectId", rt.deleteProject)

		// 项目下的里程碑与任务
		projectGroup.Post("/:projectId/milestones", rt.createMilestone)
		projectGroup.Get("/:projectId/milestones", rt.listMilestones)
		projectGroup.Post("/:projectId/tasks", rt.createTask)
		projectGroup.Get("/:projectId/tasks", rt.listTasks)
	}
}

// createProject 创建项目
func (rt *Router) createProject(c *fiber.Ctx) error {
	var req model.CreateProjectReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := rt.Services.Project.CreateProject(c.UserContext(), middleware.GetUserId(c), c.Params("orgId"), &req)
	if err != nil {
		return withServiceErr(c, err)
	}
	return detail(c, result)
}

func (rt *Router) listProjects(c *fiber.Ctx) error {
	result, err := rt.Services.Project.ListProjects(c.UserContext(), middleware.GetUserId(c), c.Params("orgId"))
	if err != nil {
		return withServiceErr(c, err)
	}
	return detail(c, result)
}

func (rt *Router) getProject(c *fiber.Ctx) error {
	result, err := rt.Services.Project.GetProject(c.UserContext(), middleware.GetUserId(c), c.Params("orgId"), c.Params("projectId"))
	if err != nil {
		return withServiceErr(c, err)
	}
	return detail(c, result)
}

// updateProject 更新项目
func (rt *Router) updateProject(c *fiber.Ctx) error {
	var req model.UpdateProjectReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := rt.Services.Project.UpdateProject(c.UserContext(), middleware.GetUserId(c), c.Params("orgId"), c.Params("projectId"), &req)
	if err != nil {
		return withServiceErr(c, err)
	}
	return detail(c, result)
}

func (rt *Router) deleteProject(c *fiber.Ctx) error {
	projectId := c.Params("projectId")
	if err := rt.Services.Project.DeleteProject(c.UserContext(), middleware.GetUserId(c), c.Params("orgId"), projectId); err != nil {
		return withServiceErr(c, err)
	}
	return operation(c, projectId)
}
