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
	"github.com/go-arcade/epcentra/pkg/http"
	"github.com/go-arcade/epcentra/pkg/http/middleware"
	"github.com/gofiber/fiber/v2"
)

/**
 * @description: 鉴权查询接口，供其它服务和前端判断按钮可见性
 */

func (rt *Router) authzRouter(r fiber.Router, auth fiber.Handler) {
	authzGroup := r.Group("/authz", auth)
	{
		// 判断单个动作
		authzGroup.Post("/check", rt.checkPermission)

		// 列出资源上允许的动作
		authzGroup.Post("/actions", rt.allowedActions)

		// 系统角色目录
		authzGroup.Get("/catalog", rt.getCatalog)
	}
}

// checkPermission 判断成员能否执行动作，查询他人需要 user:read
func (rt *Router) checkPermission(c *fiber.Ctx) error {
	var req model.CheckReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.OrganizationId == "" {
		return http.WithRepErrStatus(c, fiber.StatusBadRequest, http.OrgIdIsEmpty.Code, http.OrgIdIsEmpty.Msg, c.Path())
	}
	resource, err := rbac.ParseResource(req.Resource)
	if err != nil {
		return withServiceErr(c, err)
	}
	action, err := rbac.ParseAction(req.Action)
	if err != nil {
		return withServiceErr(c, err)
	}
	target, err := rt.checkTarget(c, req.OrganizationId, req.UserId)
	if err != nil {
		return withServiceErr(c, err)
	}

	allowed, err := rt.Services.Authz.Check(c.UserContext(), req.OrganizationId, target, resource, action, req.Context)
	if err != nil {
		return withServiceErr(c, err)
	}
	return detail(c, &model.CheckResp{Allowed: allowed})
}

// allowedActions 列出成员在资源上允许的动作
func (rt *Router) allowedActions(c *fiber.Ctx) error {
	var req model.ActionsReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.OrganizationId == "" {
		return http.WithRepErrStatus(c, fiber.StatusBadRequest, http.OrgIdIsEmpty.Code, http.OrgIdIsEmpty.Msg, c.Path())
	}
	resource, err := rbac.ParseResource(req.Resource)
	if err != nil {
		return withServiceErr(c, err)
	}
	target, err := rt.checkTarget(c, req.OrganizationId, req.UserId)
	if err != nil {
		return withServiceErr(c, err)
	}

	actions, err := rt.Services.Authz.AllowedActions(c.UserContext(), req.OrganizationId, target, resource, req.Context)
	if err != nil {
		return withServiceErr(c, err)
	}
	return detail(c, &model.ActionsResp{Actions: actions})
}

// getCatalog 返回系统角色及其授权
func (rt *Router) getCatalog(c *fiber.Ctx) error {
	catalog := rt.Services.Authz.Engine().Catalog()
	roles := make([]*model.RoleResp, 0, len(catalog.Roles()))
	for _, role := range catalog.Roles() {
		roles = append(roles, model.SystemRoleResp(catalog, role))
	}
	return detail(c, roles)
}

func (rt *Router) checkTarget(c *fiber.Ctx, orgId, userId string) (string, error) {
	caller := middleware.GetUserId(c)
	if userId == "" || userId == caller {
		return caller, nil
	}
	if err := rt.Services.Authz.Authorize(c.UserContext(), orgId, caller, rbac.ResourceUser, rbac.ActionRead, nil); err != nil {
		return "", err
	}
	return userId, nil
}
