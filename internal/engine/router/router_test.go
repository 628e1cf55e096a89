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
	"context"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/epcentra/internal/engine/model"
	"github.com/go-arcade/epcentra/internal/engine/repo"
	"github.com/go-arcade/epcentra/internal/engine/service"
	"github.com/go-arcade/epcentra/internal/pkg/rbac"
	"github.com/go-arcade/epcentra/pkg/cache"
	"github.com/go-arcade/epcentra/pkg/http"
	"github.com/go-arcade/epcentra/pkg/http/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testSecret = "router-test-secret"
	testOrg    = "org-1"
)

// members 只实现鉴权链路需要的成员仓储
type members struct {
	mu   sync.Mutex
	rows map[string]*model.OrganizationMember
}

func (m *members) put(userId, role string, teams ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[testOrg+"/"+userId] = &model.OrganizationMember{
		OrgId:       testOrg,
		UserId:      userId,
		Role:        role,
		Teams:       model.MustStringsJSON(teams),
		Status:      string(rbac.MemberStatusActive),
		Permissions: model.MustStringsJSON(nil),
	}
}

func (m *members) CreateMember(_ context.Context, row *model.OrganizationMember) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[row.OrgId+"/"+row.UserId] = row
	return nil
}

func (m *members) GetMember(_ context.Context, orgId, userId string) (*model.OrganizationMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if row, ok := m.rows[orgId+"/"+userId]; ok {
		cp := *row
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *members) ListMembers(_ context.Context, orgId string, _, _ int) ([]*model.OrganizationMember, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.OrganizationMember
	for _, row := range m.rows {
		if row.OrgId == orgId {
			out = append(out, row)
		}
	}
	return out, int64(len(out)), nil
}

func (m *members) ListMembershipsByUser(context.Context, string, string) ([]*model.OrganizationMember, error) {
	return nil, nil
}

func (m *members) ListUserIdsByRole(context.Context, string, string) ([]string, error) {
	return nil, nil
}

func (m *members) CountByRole(_ context.Context, orgId, role, status string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, row := range m.rows {
		if row.OrgId == orgId && row.Role == role && row.Status == status {
			n++
		}
	}
	return n, nil
}

func (m *members) UpdateMember(context.Context, string, string, map[string]any) error { return nil }

func (m *members) DeleteMember(context.Context, string, string) error { return nil }

type noRoles struct{ repo.IRoleRepository }

func (noRoles) GetRole(context.Context, string, string) (*model.Role, error) {
	return nil, gorm.ErrRecordNotFound
}

func newTestApp(t *testing.T) (*fiber.App, *members) {
	t.Helper()
	m := &members{rows: map[string]*model.OrganizationMember{}}
	m.put("owner", rbac.RoleOwner)
	m.put("mgr", rbac.RoleManager, "t1")
	m.put("mem", rbac.RoleMember, "t1")

	repos := &repo.Repositories{Member: m, Role: noRoles{}}
	svcs := service.NewServices(service.ProvideEngine(), repos, cache.NewFastCache(1<<20), cache.Cache{TTL: time.Minute})

	httpConf := &http.Http{Auth: http.Auth{SecretKey: testSecret}}
	httpConf.SetDefaults()
	return NewRouter(httpConf, svcs, nil, nil).Router(), m
}

func token(t *testing.T, userId string) string {
	t.Helper()
	aToken, _, err := jwt.GenToken(userId, []byte(testSecret), time.Hour, time.Hour)
	require.NoError(t, err)
	return "Bearer " + aToken
}

type envelope struct {
	Code   int    `json:"code"`
	Detail any    `json:"detail"`
	Msg    string `json:"msg"`
	ErrMsg string `json:"errMsg"`
}

func do(t *testing.T, app *fiber.App, method, path, user, body string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if user != "" {
		req.Header.Set(fiber.HeaderAuthorization, token(t, user))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, sonic.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func TestRouter_Health(t *testing.T) {
	app, _ := newTestApp(t)
	req := httptest.NewRequest(nethttp.MethodGet, "/health", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRouter_RequiresToken(t *testing.T) {
	app, _ := newTestApp(t)
	status, env := do(t, app, nethttp.MethodGet, "/api/v1/orgs", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, http.TokenBeEmpty.Code, env.Code)
}

func TestRouter_NotFound(t *testing.T) {
	app, _ := newTestApp(t)
	status, env := do(t, app, nethttp.MethodGet, "/api/v1/nowhere", "", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, http.NotFound.Code, env.Code)
}

func TestRouter_Check(t *testing.T) {
	app, _ := newTestApp(t)

	tests := []struct {
		name       string
		user       string
		body       string
		wantStatus int
		wantCode   int
		allowed    bool
	}{
		{
			name:       "owner deletes organization",
			user:       "owner",
			body:       `{"organizationId":"org-1","resource":"organization","action":"delete"}`,
			wantStatus: fiber.StatusOK,
			wantCode:   http.Success.Code,
			allowed:    true,
		},
		{
			name:       "manager outside team",
			user:       "mgr",
			body:       `{"organizationId":"org-1","resource":"project","action":"update","context":{"teamIds":["t2"]}}`,
			wantStatus: fiber.StatusOK,
			wantCode:   http.Success.Code,
		},
		{
			name:       "member may check another member",
			user:       "mem",
			body:       `{"organizationId":"org-1","userId":"mgr","resource":"task","action":"assign","context":{"teamIds":["t1"]}}`,
			wantStatus: fiber.StatusOK,
			wantCode:   http.Success.Code,
			allowed:    true,
		},
		{
			name:       "stranger cannot check others",
			user:       "stranger",
			body:       `{"organizationId":"org-1","userId":"owner","resource":"task","action":"read"}`,
			wantStatus: fiber.StatusForbidden,
		},
		{
			name:       "unknown resource",
			user:       "owner",
			body:       `{"organizationId":"org-1","resource":"invoice","action":"read"}`,
			wantStatus: fiber.StatusBadRequest,
			wantCode:   http.InvalidInput.Code,
		},
		{
			name:       "missing organization",
			user:       "owner",
			body:       `{"resource":"task","action":"read"}`,
			wantStatus: fiber.StatusBadRequest,
			wantCode:   http.OrgIdIsEmpty.Code,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := do(t, app, nethttp.MethodPost, "/api/v1/authz/check", tt.user, tt.body)
			assert.Equal(t, tt.wantStatus, status)
			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, env.Code)
			}
			if status == fiber.StatusOK {
				d, ok := env.Detail.(map[string]any)
				require.True(t, ok)
				assert.Equal(t, tt.allowed, d["allowed"])
			}
		})
	}
}

func TestRouter_AllowedActions(t *testing.T) {
	app, _ := newTestApp(t)
	status, env := do(t, app, nethttp.MethodPost, "/api/v1/authz/actions", "mgr",
		`{"organizationId":"org-1","resource":"project","context":{"teamIds":["t1"]}}`)
	require.Equal(t, fiber.StatusOK, status)
	d := env.Detail.(map[string]any)
	assert.Equal(t, []any{"create", "read", "update", "manage"}, d["actions"])
}

func TestRouter_Catalog(t *testing.T) {
	app, _ := newTestApp(t)
	status, env := do(t, app, nethttp.MethodGet, "/api/v1/authz/catalog", "mem", "")
	require.Equal(t, fiber.StatusOK, status)
	roles, ok := env.Detail.([]any)
	require.True(t, ok)
	assert.Len(t, roles, 5)
}

func TestRouter_MemberManagementEnforced(t *testing.T) {
	app, _ := newTestApp(t)

	status, env := do(t, app, nethttp.MethodPost, "/api/v1/orgs/org-1/members", "mem", `{"userId":"x"}`)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, http.PermissionDenied.Code, env.Code)

	status, _ = do(t, app, nethttp.MethodGet, "/api/v1/orgs/org-1/members", "mem", "")
	assert.Equal(t, fiber.StatusOK, status)

	status, env = do(t, app, nethttp.MethodPut, "/api/v1/orgs/org-1/members/owner/role", "owner", `{"role":"admin"}`)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, http.LastOwner.Code, env.Code)

	status, _ = do(t, app, nethttp.MethodDelete, "/api/v1/orgs/org-1", "mgr", "")
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestWithServiceErr(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   int
	}{
		{fmt.Errorf("%w: %w", service.ErrForbidden, service.ErrNotMember), fiber.StatusForbidden, http.NotAMember.Code},
		{fmt.Errorf("%w: no grant", service.ErrForbidden), fiber.StatusForbidden, http.PermissionDenied.Code},
		{service.ErrSystemRole, fiber.StatusForbidden, http.SystemRoleReadOnly.Code},
		{fmt.Errorf("%w: task t1", service.ErrNotFound), fiber.StatusNotFound, http.NotFound.Code},
		{service.ErrLastOwner, fiber.StatusConflict, http.LastOwner.Code},
		{fmt.Errorf("%w: slug", service.ErrConflict), fiber.StatusConflict, http.Conflict.Code},
		{fmt.Errorf("%w: bad scope", rbac.ErrInvalidInput), fiber.StatusBadRequest, http.InvalidInput.Code},
		{fmt.Errorf("%w: empty name", service.ErrBadRequest), fiber.StatusBadRequest, http.BadRequest.Code},
		{errors.New("connection refused"), fiber.StatusInternalServerError, http.InternalError.Code},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return withServiceErr(c, tt.err) })
			status, env := do(t, app, nethttp.MethodGet, "/", "", "")
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, env.Code)
		})
	}
}
