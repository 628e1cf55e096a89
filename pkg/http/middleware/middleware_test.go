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
	"context"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/epcentra/internal/pkg/rbac"
	"github.com/go-arcade/epcentra/pkg/http"
	"github.com/go-arcade/epcentra/pkg/http/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type fakeTokenStore struct {
	redis.Cmdable
	ttl time.Duration
	err error
}

func (f *fakeTokenStore) TTL(ctx context.Context, key string) *redis.DurationCmd {
	return redis.NewDurationResult(f.ttl, f.err)
}

type fakeChecker struct {
	allowed  bool
	err      error
	gotOrg   string
	gotUser  string
	resource rbac.Resource
	action   rbac.Action
}

func (f *fakeChecker) Check(_ context.Context, orgId, userId string, resource rbac.Resource, action rbac.Action, _ *rbac.AuthContext) (bool, error) {
	f.gotOrg, f.gotUser, f.resource, f.action = orgId, userId, resource, action
	return f.allowed, f.err
}

func bearer(t *testing.T, userId string) string {
	t.Helper()
	aToken, _, err := jwt.GenToken(userId, []byte(testSecret), time.Hour, 2*time.Hour)
	require.NoError(t, err)
	return "Bearer " + aToken
}

func decodeErr(t *testing.T, body io.Reader) http.ResponseErr {
	t.Helper()
	var out http.ResponseErr
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	require.NoError(t, sonic.Unmarshal(data, &out))
	return out
}

func newAuthedApp(store redis.Cmdable, handler fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(AuthorizationMiddleware(http.Auth{SecretKey: testSecret, RedisKeyPrefix: "epcentra:token:"}, store))
	app.Get("/me", handler)
	return app
}

func TestAuthorizationMiddleware(t *testing.T) {
	okHandler := func(c *fiber.Ctx) error {
		return c.SendString(GetUserId(c))
	}

	t.Run("missing header", func(t *testing.T) {
		app := newAuthedApp(nil, okHandler)
		resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, "/me", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, http.TokenBeEmpty.Code, decodeErr(t, resp.Body).ErrCode)
	})

	t.Run("malformed header", func(t *testing.T) {
		app := newAuthedApp(nil, okHandler)
		req := httptest.NewRequest(nethttp.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Token abc")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.TokenFormatIncorrect.Code, decodeErr(t, resp.Body).ErrCode)
	})

	t.Run("bad signature", func(t *testing.T) {
		app := newAuthedApp(nil, okHandler)
		aToken, _, err := jwt.GenToken("u1", []byte("other"), time.Hour, time.Hour)
		require.NoError(t, err)
		req := httptest.NewRequest(nethttp.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+aToken)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.InvalidToken.Code, decodeErr(t, resp.Body).ErrCode)
	})

	t.Run("valid without token store", func(t *testing.T) {
		app := newAuthedApp(nil, okHandler)
		req := httptest.NewRequest(nethttp.MethodGet, "/me", nil)
		req.Header.Set("Authorization", bearer(t, "u1"))
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "u1", string(body))
	})

	t.Run("revoked in token store", func(t *testing.T) {
		app := newAuthedApp(&fakeTokenStore{ttl: -2}, okHandler)
		req := httptest.NewRequest(nethttp.MethodGet, "/me", nil)
		req.Header.Set("Authorization", bearer(t, "u1"))
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.TokenExpired.Code, decodeErr(t, resp.Body).ErrCode)
	})

	t.Run("live in token store", func(t *testing.T) {
		app := newAuthedApp(&fakeTokenStore{ttl: time.Minute}, okHandler)
		req := httptest.NewRequest(nethttp.MethodGet, "/me", nil)
		req.Header.Set("Authorization", bearer(t, "u1"))
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("token store failure", func(t *testing.T) {
		app := newAuthedApp(&fakeTokenStore{err: assert.AnError}, okHandler)
		req := httptest.NewRequest(nethttp.MethodGet, "/me", nil)
		req.Header.Set("Authorization", bearer(t, "u1"))
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	})
}

func newPermissionApp(checker OrgPermissionChecker) *fiber.App {
	app := fiber.New()
	app.Use(AuthorizationMiddleware(http.Auth{SecretKey: testSecret, SkipTokenStore: true}, nil))
	app.Use(UnifiedResponseMiddleware())
	app.Put("/orgs/:orgId", RequireOrgPermission(checker, rbac.ResourceOrganization, rbac.ActionUpdate), func(c *fiber.Ctx) error {
		c.Locals(OPERATION, c.Locals(ORG_ID))
		return nil
	})
	app.Post("/check", RequireOrgPermission(checker, rbac.ResourceProject, rbac.ActionCreate), func(c *fiber.Ctx) error {
		c.Locals(DETAIL, fiber.Map{"orgId": c.Locals(ORG_ID)})
		return nil
	})
	return app
}

func TestRequireOrgPermission(t *testing.T) {
	t.Run("allowed", func(t *testing.T) {
		checker := &fakeChecker{allowed: true}
		app := newPermissionApp(checker)
		req := httptest.NewRequest(nethttp.MethodPut, "/orgs/o1", nil)
		req.Header.Set("Authorization", bearer(t, "u1"))
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "o1", checker.gotOrg)
		assert.Equal(t, "u1", checker.gotUser)
		assert.Equal(t, rbac.ResourceOrganization, checker.resource)
		assert.Equal(t, rbac.ActionUpdate, checker.action)
	})

	t.Run("denied", func(t *testing.T) {
		app := newPermissionApp(&fakeChecker{allowed: false})
		req := httptest.NewRequest(nethttp.MethodPut, "/orgs/o1", nil)
		req.Header.Set("Authorization", bearer(t, "u1"))
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
		assert.Equal(t, http.PermissionDenied.Code, decodeErr(t, resp.Body).ErrCode)
	})

	t.Run("invalid input", func(t *testing.T) {
		app := newPermissionApp(&fakeChecker{err: rbac.ErrInvalidInput})
		req := httptest.NewRequest(nethttp.MethodPut, "/orgs/o1", nil)
		req.Header.Set("Authorization", bearer(t, "u1"))
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("backend failure", func(t *testing.T) {
		app := newPermissionApp(&fakeChecker{err: assert.AnError})
		req := httptest.NewRequest(nethttp.MethodPut, "/orgs/o1", nil)
		req.Header.Set("Authorization", bearer(t, "u1"))
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	})

	t.Run("org id from body", func(t *testing.T) {
		checker := &fakeChecker{allowed: true}
		app := newPermissionApp(checker)
		req := httptest.NewRequest(nethttp.MethodPost, "/check", strings.NewReader(`{"orgId":"o9"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", bearer(t, "u1"))
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "o9", checker.gotOrg)

		var out http.Response
		data, _ := io.ReadAll(resp.Body)
		require.NoError(t, sonic.Unmarshal(data, &out))
		assert.Equal(t, http.Success.Code, out.Code)
		assert.Equal(t, map[string]any{"orgId": "o9"}, out.Detail)
	})

	t.Run("missing org id", func(t *testing.T) {
		app := newPermissionApp(&fakeChecker{allowed: true})
		req := httptest.NewRequest(nethttp.MethodPost, "/check", nil)
		req.Header.Set("Authorization", bearer(t, "u1"))
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, http.OrgIdIsEmpty.Code, decodeErr(t, resp.Body).ErrCode)
	})
}

func TestRequestMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(RequestMiddleware())
	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendString(c.Locals(REQUEST_ID).(string))
	})

	req := httptest.NewRequest(nethttp.MethodGet, "/test", nil)
	req.Header.Set("X-Request-Id", "existing-request-id-12345")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "existing-request-id-12345", resp.Header.Get("X-Request-Id"))

	resp, err = app.Test(httptest.NewRequest(nethttp.MethodGet, "/test", nil))
	require.NoError(t, err)
	assert.Len(t, resp.Header.Get("X-Request-Id"), 36)
}

func TestExceptionMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ExceptionMiddleware)
	app.Get("/boom", func(c *fiber.Ctx) error {
		panic("boom")
	})
	app.Get("/err", func(c *fiber.Ctx) error {
		panic(assert.AnError)
	})

	resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "boom", decodeErr(t, resp.Body).ErrMsg)

	resp, err = app.Test(httptest.NewRequest(nethttp.MethodGet, "/err", nil))
	require.NoError(t, err)
	assert.Equal(t, http.InternalError.Msg, decodeErr(t, resp.Body).ErrMsg)
}

func TestSkipAccessLog(t *testing.T) {
	assert.True(t, skipAccessLog("/health"))
	assert.True(t, skipAccessLog("/debug/pprof/heap"))
	assert.False(t, skipAccessLog("/api/v1/organizations"))
}
