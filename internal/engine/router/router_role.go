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

func (rt *Router) roleRouter(org fiber.Router) {
	roleGroup := org.Group("/roles")
	{
		roleGroup.Get("/", rt.listRoles)
		roleGroup.Post("/", rt.require(rbac.ResourceUser, rbac.ActionManage), rt.createRole)
		roleGroup.Get("/:roleId", rt.getRole)
		roleGroup.Put("/:roleId", rt.updateRole)
		roleGroup.Delete("/:roleId", rt.deleteRole)
	}
}

// listRoles 系统角色在前，自定义角色在后
func (rt *Router) listRoles(c *fiber.Ctx) error {
	result, err := rt.Services.Role.ListRoles(c.UserContext(), middleware.GetUserId(c), c.Params("orgId"))
	if err != nil {
		return withServiceErr(c, err)
	}
	return detail(c, result)
}

func (rt *Router) getRole(c *fiber.Ctx) error {
	result, err := rt.Services.Role.GetRole(c.UserContext(), middleware.GetUserId(c), c.Params("orgId"), c.Params("roleId"))
	if err != nil {
		return withServiceErr(c, err)
	}
	return detail(c, result)
}

func (rt *Router) createRole(c *fiber.Ctx) error {
	var req model.CreateRoleReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := rt.Services.Role.CreateRole(c.UserContext(), middleware.GetUserId(c), c.Params("orgId"), &req)
	if err != nil {
		return withServiceErr(c, err)
	}
	return detail(c, result)
}

// updateRole 系统角色不可修改
func (rt *Router) updateRole(c *fiber.Ctx) error {
	var req model.UpdateRoleReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := rt.Services.Role.UpdateRole(c.UserContext(), middleware.GetUserId(c), c.Params("orgId"), c.Params("roleId"), &req)
	if err != nil {
		return withServiceErr(c, err)
	}
	return detail(c, result)
}

func (rt *Router) deleteRole(c *fiber.Ctx) error {
	roleId := c.Params("roleId")
	if err := rt.Services.Role.DeleteRole(c.UserContext(), middleware.GetUserId(c), c.Params("orgId"), roleId); err != nil {
		return withServiceErr(c, err)
	}
	return operation(c, roleId)
}
