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
	"errors"
	"time"

	"github.com/go-arcade/epcentra/internal/engine/model"
	"github.com/go-arcade/epcentra/internal/engine/service"
	"github.com/go-arcade/epcentra/internal/pkg/rbac"
	"github.com/go-arcade/epcentra/pkg/http"
	"github.com/go-arcade/epcentra/pkg/http/middleware"
	"github.com/go-arcade/epcentra/pkg/log"
	"github.com/go-arcade/epcentra/pkg/metrics"
	"github.com/go-arcade/epcentra/pkg/version"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
)

type Router struct {
	Http     *http.Http
	Services *service.Services
	// Tokens 为 nil 时不校验 token 是否仍在 redis 中
	Tokens  redis.Cmdable
	Metrics *metrics.Server
}

func NewRouter(httpConf *http.Http, services *service.Services, tokens redis.Cmdable, metricsServer *metrics.Server) *Router {
	return &Router{
		Http:     httpConf,
		Services: services,
		Tokens:   tokens,
		Metrics:  metricsServer,
	}
}

func (rt *Router) Router() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Epcentra",
		DisableStartupMessage: true,
		ReadTimeout:           time.Duration(rt.Http.ReadTimeout) * time.Second,
		WriteTimeout:          time.Duration(rt.Http.WriteTimeout) * time.Second,
		IdleTimeout:           time.Duration(rt.Http.IdleTimeout) * time.Second,
		BodyLimit:             rt.Http.BodyLimit,
	})

	app.Use(
		middleware.ExceptionMiddleware,
		middleware.RequestMiddleware(),
		middleware.RealIPMiddleware(),
		middleware.CorsMiddleware(),
		middleware.AccessLogMiddleware(rt.Http),
		middleware.TraceMiddleware(),
		middleware.MetricsMiddleware(),
		middleware.UnifiedResponseMiddleware(),
	)

	// 健康检查
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	// 版本信息
	app.Get("/version", func(c *fiber.Ctx) error {
		return c.JSON(version.GetVersion())
	})

	if rt.Http.ExposeMetrics && rt.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(rt.Metrics.Handler()))
	}

	rt.routerGroup(app.Group(rt.Http.InternalContextPath))

	// 找不到路径时的处理，必须在所有路由注册之后
	app.Use(func(c *fiber.Ctx) error {
		return http.WithRepErrStatus(c, fiber.StatusNotFound, http.NotFound.Code, "request path not found", c.Path())
	})

	return app
}

func (rt *Router) routerGroup(r fiber.Router) {
	auth := middleware.AuthorizationMiddleware(rt.Http.Auth, rt.Tokens)

	rt.authzRouter(r, auth)

	orgs := r.Group("/orgs", auth)
	rt.organizationRouter(orgs)

	org := orgs.Group("/:orgId")
	rt.memberRouter(org)
	rt.roleRouter(org)
	rt.teamRouter(org)
	rt.projectRouter(org)
	rt.phaseRouter(org)
	rt.milestoneRouter(org)
	rt.taskRouter(org)
}

// require 组织级鉴权，不需要记录上下文的动作可在路由层提前拒绝
func (rt *Router) require(resource rbac.Resource, action rbac.Action) fiber.Handler {
	return middleware.RequireOrgPermission(rt.Services.Authz, resource, action)
}

// withServiceErr 把 service 层错误映射为 HTTP 响应
func withServiceErr(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNotMember):
		return http.WithRepErrStatus(c, fiber.StatusForbidden, http.NotAMember.Code, http.NotAMember.Msg, c.Path())
	case errors.Is(err, service.ErrSystemRole):
		return http.WithRepErrStatus(c, fiber.StatusForbidden, http.SystemRoleReadOnly.Code, http.SystemRoleReadOnly.Msg, c.Path())
	case errors.Is(err, service.ErrForbidden):
		return http.WithRepErrStatus(c, fiber.StatusForbidden, http.PermissionDenied.Code, err.Error(), c.Path())
	case errors.Is(err, service.ErrNotFound):
		return http.WithRepErrStatus(c, fiber.StatusNotFound, http.NotFound.Code, err.Error(), c.Path())
	case errors.Is(err, service.ErrLastOwner):
		return http.WithRepErrStatus(c, fiber.StatusConflict, http.LastOwner.Code, http.LastOwner.Msg, c.Path())
	case errors.Is(err, service.ErrConflict):
		return http.WithRepErrStatus(c, fiber.StatusConflict, http.Conflict.Code, err.Error(), c.Path())
	case errors.Is(err, rbac.ErrInvalidInput):
		return http.WithRepErrStatus(c, fiber.StatusBadRequest, http.InvalidInput.Code, err.Error(), c.Path())
	case errors.Is(err, service.ErrBadRequest):
		return http.WithRepErrStatus(c, fiber.StatusBadRequest, http.BadRequest.Code, err.Error(), c.Path())
	}
	log.WithContext(c.UserContext()).Errorw("request failed", "path", c.Path(), "error", err)
	return http.WithRepErrStatus(c, fiber.StatusInternalServerError, http.InternalError.Code, http.InternalError.Msg, c.Path())
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		log.WithContext(c.UserContext()).Debugw("parse request body failed", "path", c.Path(), "error", err)
		return http.WithRepErrStatus(c, fiber.StatusBadRequest, http.RequestParameterParsingFailed.Code, http.RequestParameterParsingFailed.Msg, c.Path())
	}
	return nil
}

func listReq(c *fiber.Ctx) model.ListReq {
	return model.ListReq{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("pageSize", 20),
	}
}

func detail(c *fiber.Ctx, v any) error {
	c.Locals(middleware.DETAIL, v)
	return nil
}

func operation(c *fiber.Ctx, v any) error {
	c.Locals(middleware.OPERATION, v)
	return nil
}
