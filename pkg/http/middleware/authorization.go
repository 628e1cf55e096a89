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
	"errors"
	"strings"

	"github.com/go-arcade/epcentra/pkg/http"
	"github.com/go-arcade/epcentra/pkg/http/jwt"
	"github.com/go-arcade/epcentra/pkg/log"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// AuthorizationMiddleware 认证中间件
// auth: JWT 密钥与 Redis token 配置
// client: Redis 客户端，为 nil 或 SkipTokenStore 时只校验签名
func AuthorizationMiddleware(auth http.Auth, client redis.Cmdable) fiber.Handler {
	return func(c *fiber.Ctx) error {
		aToken := c.Get(fiber.HeaderAuthorization)
		if aToken == "" {
			return http.WithRepErrStatus(c, fiber.StatusUnauthorized, http.TokenBeEmpty.Code, http.TokenBeEmpty.Msg, c.Path())
		}

		// 按空格分割
		parts := strings.SplitN(aToken, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") || parts[1] == "" {
			return http.WithRepErrStatus(c, fiber.StatusUnauthorized, http.TokenFormatIncorrect.Code, http.TokenFormatIncorrect.Msg, c.Path())
		}

		claims, err := jwt.ParseToken(parts[1], auth.SecretKey)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return http.WithRepErrStatus(c, fiber.StatusUnauthorized, http.TokenExpired.Code, http.TokenExpired.Msg, c.Path())
			}
			log.Debugw("parse token failed", "path", c.Path(), "error", err)
			return http.WithRepErrStatus(c, fiber.StatusUnauthorized, http.InvalidToken.Code, http.InvalidToken.Msg, c.Path())
		}

		if client != nil && !auth.SkipTokenStore {
			// 检查 Redis 中是否存在 Token，登出后 key 被删除
			tokenKey := auth.TokenKey(claims.UserId)
			ttl, err := client.TTL(c.UserContext(), tokenKey).Result()
			if err != nil {
				log.Errorw("redis check token TTL failed", "userId", claims.UserId, "error", err)
				return http.WithRepErrStatus(c, fiber.StatusInternalServerError, http.InternalError.Code, http.InternalError.Msg, c.Path())
			}
			// -2 key 不存在, -1 未设置过期时间视为有效
			if ttl == -2 || ttl == 0 {
				log.Warnf("token has expired in Redis for user: %s", claims.UserId)
				return http.WithRepErrStatus(c, fiber.StatusUnauthorized, http.TokenExpired.Code, http.TokenExpired.Msg, c.Path())
			}
		}

		c.Locals(CLAIMS, claims)
		return c.Next()
	}
}

// GetClaims 获取当前请求的认证信息
func GetClaims(c *fiber.Ctx) (*jwt.AuthClaims, bool) {
	claims, ok := c.Locals(CLAIMS).(*jwt.AuthClaims)
	return claims, ok && claims != nil && claims.UserId != ""
}

// GetUserId 获取当前请求的用户ID
func GetUserId(c *fiber.Ctx) string {
	if claims, ok := GetClaims(c); ok {
		return claims.UserId
	}
	return ""
}
