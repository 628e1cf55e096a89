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
	"github.com/go-arcade/epcentra/pkg/http"
	"github.com/gofiber/fiber/v2"
)

// UnifiedResponseMiddleware 统一响应中间件，处理器只需要写入 DETAIL 或 OPERATION
func UnifiedResponseMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err != nil {
			return err
		}

		status := c.Response().StatusCode()

		// 错误响应已由处理器或前置中间件写出
		if status >= fiber.StatusMultipleChoices {
			return nil
		}

		if status == 0 {
			c.Status(fiber.StatusOK)
		}

		if detail := c.Locals(DETAIL); detail != nil {
			return http.WithRepJSON(c, detail)
		}

		// 业务逻辑正确, 无响应数据, 只返回结果
		if c.Locals(OPERATION) != nil {
			return http.WithRepNotDetail(c)
		}

		return nil
	}
}
