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

func (rt *Router) milestoneRouter(org fiber.Router) {
	milestoneGroup := org.Group("/milestones")
	{
		milestoneGroup.Get("/:milestoneId", rt.getMilestone)
		milestoneGroup.Put("/:milestoneId", rt.updateMilestone)
		milestoneGroup.Delete("/:milestoneId", rt.deleteMilestone)
	}
}

// createMilestone 在项目下创建里程碑
func (rt *Router) createMilestone(c *fiber.Ctx) error {
	var req model.CreateMilestoneReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := rt.Services.Milestone.CreateMilestone(c.UserContext(), middleware.GetUserId(c), c.Params("orgId"), c.Params("projectId"), &req)
	if err != nil {
		return withServiceErr(c, err)
	}
	return detail(c, result)
}

func (rt *Router) listMilestones(c *fiber.Ctx) error {
	result, err := rt.Services.Milestone.ListMilestones(c.UserContext(), middleware.GetUserId(c), c.Params("orgId"), c.Params("projectId"))
	if err != nil {
		return withServiceErr(c, err)
	}
	return detail(c, result)
}

func (rt *Router) getMilestone(c *fiber.Ctx) error {
	result, err := rt.Services.Milestone.GetMilestone(c.UserContext(), middleware.GetUserId(c), c.Params("orgId"), c.Params("milestoneId"))
	if err != nil {
		return withServiceErr(c, err)
	}
	return detail(c, result)
}

func (rt *Router) updateMilestone(c *fiber.Ctx) error {
	var req model.UpdateMilestoneReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := rt.Services.Milestone.UpdateMilestone(c.UserContext(), middleware.GetUserId(c), c.Params("orgId"), c.Params("milestoneId"), &req)
	if err != nil {
		return withServiceErr(c, err)
	}
	return detail(c, result)
}

func (rt *Router) deleteMilestone(c *fiber.Ctx) error {
	milestoneId := c.Params("milestoneId")
	if err := rt.Services.Milestone.DeleteMilestone(c.UserContext(), middleware.GetUserId(c), c.Params("orgId"), milestoneId); err != nil {
		return withServiceErr(c, err)
	}
	return operation(c, milestoneId)
}
