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
 * @description: 组织成员路由，写操作要求 user:manage
 */

func (rt *Router) memberRouter(org fiber.Router) {
	memberGroup := org.Group("/members")
	{
		memberGroup.Get("/", rt.require(rbac.ResourceUser, rbac.ActionRead), rt.listMembers)
		memberGroup.Post("/", rt.require(rbac.ResourceUser, rbac.ActionManage), rt.addMember)
		memberGroup.Get("/:userId", rt.require(rbac.ResourceUser, rbac.ActionRead), rt.getMember)

		// 角色、团队、状态
		memberGroup.Put("/:userId/role", rt.require(rbac.ResourceUser, rbac.ActionManage), rt.updateMemberRole)
		memberGroup.Put("/:userId/teams", rt.require(rbac.ResourceUser, rbac.ActionManage), rt.updateMemberTeams)
		memberGroup.Put("/:userId/status", rt.require(rbac.ResourceUser, rbac.ActionManage), rt.updateMemberStatus)

		// 额外授权
		memberGroup.Post("/:userId/permissions", rt.require(rbac.ResourceUser, rbac.ActionManage), rt.grantPermissions)
		memberGroup.Delete("/:userId/permissions", rt.require(rbac.ResourceUser, rbac.ActionManage), rt.revokePermissions)

		memberGroup.Delete("/:userId", rt.require(rbac.ResourceUser, rbac.ActionManage), rt.removeMember)
	}
}

func (rt *Router) listMembers(c *fiber.Ctx) error {
	result, err := rt.Services.Member.ListMembers(c.UserContext(), middleware.GetUserId(c), c.Params("orgId"), listReq(c))
	if err != nil {
		return withServiceErr(c, err)
	}
	return detail(c, result)
}

func (rt *Router) getMember(c *fiber.Ctx) error {
	result, err := rt.Services.Member.GetMember(c.UserContext(), middleware.GetUserId(c), c.Params("orgId"), c.Params("userId"))
	if err != nil {
		return withServiceErr(c, err)
	}
	return detail(c, result)
}

// addMember 添加或邀请成员
func (rt *Router) addMember(c *fiber.Ctx) error {
	var req model.AddMemberReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := rt.Services.Member.AddMember(c.UserContext(), middleware.GetUserId(c), c.Params("orgId"), &req)
	if err != nil {
		return withServiceErr(c, err)
	}
	return detail(c, result)
}

func (rt *Router) updateMemberRole(c *fiber.Ctx) error {
	var req model.UpdateMemberRoleReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := rt.Services.Member.UpdateMemberRole(c.UserContext(), middleware.GetUserId(c), c.Params("orgId"), c.Params("userId"), req.Role)
	if err != nil {
		return withServiceErr(c, err)
	}
	return detail(c, result)
}

func (rt *Router) updateMemberTeams(c *fiber.Ctx) error {
	var req model.UpdateMemberTeamsReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := rt.Services.Member.UpdateMemberTeams(c.UserContext(), middleware.GetUserId(c), c.Params("orgId"), c.Params("userId"), req.Teams)
	if err != nil {
		return withServiceErr(c, err)
	}
	return detail(c, result)
}

func (rt *Router) updateMemberStatus(c *fiber.Ctx) error {
	var req model.UpdateMemberStatusReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := rt.Services.Member.UpdateMemberStatus(c.UserContext(), middleware.GetUserId(c), c.Params("orgId"), c.Params("userId"), req.Status)
	if err != nil {
		return withServiceErr(c, err)
	}
	return detail(c, result)
}

func (rt *Router) grantPermissions(c *fiber.Ctx) error {
	var req model.MemberPermissionsReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := rt.Services.Member.GrantPermissions(c.UserContext(), middleware.GetUserId(c), c.Params("orgId"), c.Params("userId"), req.Permissions)
	if err != nil {
		return withServiceErr(c, err)
	}
	return detail(c, result)
}

func (rt *Router) revokePermissions(c *fiber.Ctx) error {
	var req model.MemberPermissionsReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := rt.Services.Member.RevokePermissions(c.UserContext(), middleware.GetUserId(c), c.Params("orgId"), c.Params("userId"), req.Permissions)
	if err != nil {
		return withServiceErr(c, err)
	}
	return detail(c, result)
}

func (rt *Router) removeMember(c *fiber.Ctx) error {
	userId := c.Params("userId")
	if err := rt.Services.Member.RemoveMember(c.UserContext(), middleware.GetUserId(c), c.Params("orgId"), userId); err != nil {
		return withServiceErr(c, err)
	}
	return operation(c, userId)
}
