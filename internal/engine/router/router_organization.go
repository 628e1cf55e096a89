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

func (rt *Router) organizationRouter(orgGroup fiber.Router) {
	// 任意登录用户可创建组织
	orgGroup.Post("/", rt.createOrganization)

	// 当前用户所在的组织
	orgGroup.Get("/", rt.listMyOrganizations)

	orgGroup.Get("/:orgId", rt.getOrganization)
	orgGroup.Put("/:orgId", rt.require(rbac.ResourceOrganization, rbac.ActionUpdate), rt.updateOrganization)
	orgGroup.Delete("/:orgId", rt.require(rbac.ResourceOrganization, rbac.ActionDelete), rt.deleteOrganization)
}

// createOrganization 创建组织
func (rt *Router) createOrganization(c *fiber.Ctx) error {
	var req model.CreateOrganizationReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := rt.Services.Organization.CreateOrganization(c.UserContext(), middleware.GetUserId(c), &req)
	if err != nil {
		return withServiceErr(c, err)
	}
	return detail(c, result)
}

func (rt *Router) listMyOrganizations(c *fiber.Ctx) error {
	result, err := rt.Services.Organization.ListMyOrganizations(c.UserContext(), middleware.GetUserId(c))
	if err != nil {
		return withServiceErr(c, err)
	}
	return detail(c, result)
}

func (rt *Router) getOrganization(c *fiber.Ctx) error {
	result, err := rt.Services.Organization.GetOrganization(c.UserContext(), middleware.GetUserId(c), c.Params("orgId"))
	if err != nil {
		return withServiceErr(c, err)
	}
	return detail(c, result)
}

func (rt *Router) updateOrganization(c *fiber.Ctx) error {
	var req model.UpdateOrganizationReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := rt.Services.Organization.UpdateOrganization(c.UserContext(), middleware.GetUserId(c), c.Params("orgId"), &req)
	if err != nil {
		return withServiceErr(c, err)
	}
	return detail(c, result)
}

func (rt *Router) deleteOrganization(c *fiber.Ctx) error {
	orgId := c.Params("orgId")
	if err := rt.Services.Organization.DeleteOrganization(c.UserContext(), middleware.GetUserId(c), orgId); err != nil {
		return withServiceErr(c, err)
	}
	return operation(c, orgId)
}
