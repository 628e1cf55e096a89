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
 * @description: 路线图阶段路由
 */

func (rt *Router) phaseRouter(org fiber.Router) {
	phaseGroup := org.Group("/phases")
	{
		phaseGroup.Post("/", rt.require(rbac.ResourceMilestone, rbac.ActionCreate), rt.createPhase)
		phaseGroup.Get("/", rt.listPhases)
		phaseGroup.Get("/:phaseId", rt.getPhase)
		phaseGroup.Put("/:phaseId", rt.updatePhase)
		phaseGroup.Delete("/:phaseId", rt.deletePhase)
	}
}

func (rt *Router) createPhase(c *fiber.Ctx) error {
	var req model.CreatePhaseReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := rt.Services.Phase.CreatePhase(c.UserContext(), middleware.GetUserId(c), c.Params("orgId"), &req)
	if err != nil {
		return withServiceErr(c, err)
	}
	return detail(c, result)
}

func (rt *Router) listPhases(c *fiber.Ctx) error {
	result, err := rt.Services.Phase.ListPhases(c.UserContext(), middleware.GetUserId(c), c.Params("orgId"))
	if err != nil {
		return withServiceErr(c, err)
	}
	return detail(c, result)
}

func (rt *Router) getPhase(c *fiber.Ctx) error {
	result, err := rt.Services.Phase.GetPhase(c.UserContext(), middleware.GetUserId(c), c.Params("orgId"), c.Params("phaseId"))
	if err != nil {
		return withServiceErr(c, err)
	}
	return detail(c, result)
}

func (rt *Router) updatePhase(c *fiber.Ctx) error {
	var req model.UpdatePhaseReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := rt.Services.Phase.UpdatePhase(c.UserContext(), middleware.GetUserId(c), c.Params("orgId"), c.Params("phaseId"), &req)
	if err != nil {
		return withServiceErr(c, err)
	}
	return detail(c, result)
}

func (rt *Router) deletePhase(c *fiber.Ctx) error {
	phaseId := c.Params("phaseId")
	if err := rt.Services.Phase.DeletePhase(c.UserContext(), middleware.GetUserId(c), c.Params("orgId"), phaseId); err != nil {
		return withServiceErr(c, err)
	}
	return operation(c, phaseId)
}
