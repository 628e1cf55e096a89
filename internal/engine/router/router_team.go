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
	"github.com/go-arcade/epcentra/internal/pkg/rbac"
	"github.com/go-arcade/epcentra/pkg/http/middleware"
	"github.com/gofiber/fiber/v2"
)

/**
 * @description: Team 路由
 */

func (rt *Router) teamRouter(org fiber.Router) {
	teamGroup := org.Group("/teams")
	{
		// 创建团队
		teamGroup.Post("/", rt.require(rbac.ResourceTeam, rbac.ActionCreate), rt.createTeam)

		// 查询团队列表
		teamGroup.Get("/", rt.listTeams)

		// 获取、更新、删除团队
		teamGroup.Get("/:teamId", rt.getTeam)
		teamGroup.Put("/:teamId", rt.updateTeam)
		teamGroup.Delete("/:teamId", rt.deleteTeam)

		// 团队成员
		teamGroup.Post("/:teamId/members/:userId", rt.addTeamMember)
		teamGroup.Delete("/:teamId/members/:userId", rt.removeTeamMember)
	}
}

// createTeam 创建团队
func (rt *Router) createTeam(c *fiber.Ctx) error {
	var req model.CreateTeamReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := rt.Services.Team.CreateTeam(c.UserContext(), middleware.GetUserId(c), c.Params("orgId"), &req)
	if err != nil {
		return withServiceErr(c, err)
	}
	return detail(c, result)
}

// listTeams 只返回当前用户可读的团队
func (rt *Router) listTeams(c *fiber.Ctx) error {
	result, err := rt.Services.Team.ListTeams(c.UserContext(), middleware.GetUserId(c), c.Params("orgId"))
	if err != nil {
		return withServiceErr(c, err)
	}
	return detail(c, result)
}

func (rt *Router) getTeam(c *fiber.Ctx) error {
	result, err := rt.Services.Team.GetTeam(c.UserContext(), middleware.GetUserId(c), c.Params("orgId"), c.Params("teamId"))
	if err != nil {
		return withServiceErr(c, err)
	}
	return detail(c, result)
}

// updateTeam 更新团队
func (rt *Router) updateTeam(c *fiber.Ctx) error {
	var req model.UpdateTeamReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := rt.Services.Team.UpdateTeam(c.UserContext(), middleware.GetUserId(c), c.Params("orgId"), c.Params("teamId"), &req)
	if err != nil {
		return withServiceErr(c, err)
	}
	return detail(c, result)
}

// deleteTeam 删除团队
func (rt *Router) deleteTeam(c *fiber.Ctx) error {
	teamId := c.Params("teamId")
	if err := rt.Services.Team.DeleteTeam(c.UserContext(), middleware.GetUserId(c), c.Params("orgId"), teamId); err != nil {
		return withServiceErr(c, err)
	}
	return operation(c, teamId)
}

func (rt *Router) addTeamMember(c *fiber.Ctx) error {
	userId := c.Params("userId")
	if err := rt.Services.Team.AddTeamMember(c.UserContext(), middleware.GetUserId(c), c.Params("orgId"), c.Params("teamId"), userId); err != nil {
		return withServiceErr(c, err)
	}
	return operation(c, userId)
}

func (rt *Router) removeTeamMember(c *fiber.Ctx) error {
	userId := c.Params("userId")
	if err := rt.Services.Team.RemoveTeamMember(c.UserContext(), middleware.GetUserId(c), c.Params("orgId"), c.Params("teamId"), userId); err != nil {
		return withServiceErr(c, err)
	}
	return operation(c, userId)
}
