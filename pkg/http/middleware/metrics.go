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

package middleware

import (
	"time"

	"github.com/go-arcade/epcentra/pkg/metrics"
	"github.com/gofiber/fiber/v2"
)

// MetricsMiddleware 记录请求数与耗时，按路由模板聚合
func MetricsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if skipAccessLog(c.Path()) {
			return c.Next()
		}
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		metrics.RecordRequest(c.Method(), c.Route().Path, status, time.Since(start))
		return err
	}
}
