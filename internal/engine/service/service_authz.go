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

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-arcade/epcentra/internal/engine/model"
	"github.com/go-arcade/epcentra/internal/engine/repo"
	"github.com/go-arcade/epcentra/internal/pkg/rbac"
	"github.com/go-arcade/epcentra/pkg/cache"
	"github.com/go-arcade/epcentra/pkg/id"
	"github.com/go-arcade/epcentra/pkg/log"
	"github.com/go-arcade/epcentra/pkg/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	tracerName      = "github.com/go-arcade/epcentra/internal/engine/service"
	memberKeyPrefix = "epcentra:member:"

	reasonNotMember = "not a member of the organization"
)

// Lookup outcomes for membership resolution.
const (
	lookupHit       = "hit"
	lookupMiss      = "miss"
	lookupNotMember = "not_member"
	lookupError     = "error"
)

// AuthzService 在鉴权引擎之上加载成员信息，是所有写操作的统一鉴权入口
type AuthzService struct {
	engine      *rbac.Engine
	memberRepo  repo.IOrganizationMemberRepository
	roleRepo    repo.IRoleRepository
	// shared 只包含多实例共享的缓存层，成员信息不进入进程内缓存
	shared      cache.ICache
	memberQuery *cache.CachedQuery[*rbac.Member]
	group       singleflight.Group
	tracer      trace.Tracer
}

func NewAuthzService(engine *rbac.Engine, repos *repo.Repositories, c cache.ICache, ttl time.Duration) *AuthzService {
	var shared cache.ICache
	if c != nil {
		shared = cache.Shared(c)
	}
	return &AuthzService{
		engine:     engine,
		memberRepo: repos.Member,
		roleRepo:   repos.Role,
		shared:     shared,
		memberQuery: cache.NewCachedQuery(shared, memberKey,
			cache.WithTTL[*rbac.Member](ttl),
			cache.WithLogPrefix[*rbac.Member]("[Member]"),
		),
		tracer: otel.Tracer(tracerName),
	}
}

// memberKey 成员缓存键带有代数，失效时换代，旧代数下的写入不会再被读到
func memberKey(params ...any) string {
	return fmt.Sprintf("%s%v:%v:%v", memberKeyPrefix, params[0], params[1], params[2])
}

func generationKey(orgId, userId string) string {
	return fmt.Sprintf("%sgen:%s:%s", memberKeyPrefix, orgId, userId)
}

// generation 返回成员缓存的当前代数，不存在时写入新代数。
// 缓存不可用时返回 false，调用方直接查库。
func (s *AuthzService) generation(ctx context.Context, orgId, userId string) (string, bool) {
	if s.shared == nil {
		return "", false
	}
	key := generationKey(orgId, userId)
	gen, err := s.shared.Get(ctx, key).Result()
	switch {
	case err == nil && gen != "":
		return gen, true
	case err != nil && !errors.Is(err, cache.ErrCacheMiss):
		log.WithContext(ctx).Warnw("get member generation failed", "key", key, "error", err)
		return "", false
	}
	gen = id.GetUlid()
	if err := s.shared.Set(ctx, key, gen, 0).Err(); err != nil {
		log.WithContext(ctx).Warnw("set member generation failed", "key", key, "error", err)
		return "", false
	}
	return gen, true
}

// Engine 返回底层鉴权引擎
func (s *AuthzService) Engine() *rbac.Engine {
	return s.engine
}

// ResolveMember 加载用户在组织中的成员信息（含自定义角色授权）。
// 不是成员时返回 ErrNotMember，非活跃成员照常返回，由引擎拒绝。
func (s *AuthzService) ResolveMember(ctx context.Context, orgId, userId string) (*rbac.Member, error) {
	if orgId == "" || userId == "" {
		return nil, fmt.Errorf("%w: organization and user are required", rbac.ErrInvalidInput)
	}

	gen, ok := s.generation(ctx, orgId, userId)
	if !ok {
		m, err := s.loadMember(ctx, orgId, userId)
		recordLookup(err, false)
		return m, err
	}

	// 合并同一代数下的并发加载
	v, err, _ := s.group.Do(memberKey(orgId, userId, gen), func() (any, error) {
		m, hit, err := s.memberQuery.Get(ctx, func(ctx context.Context) (*rbac.Member, error) {
			return s.loadMember(ctx, orgId, userId)
		}, orgId, userId, gen)
		recordLookup(err, hit)
		return m, err
	})
	if err != nil {
		return nil, err
	}
	return v.(*rbac.Member), nil
}

func recordLookup(err error, hit bool) {
	switch {
	case errors.Is(err, ErrNotMember):
		metrics.RecordMemberLookup(lookupNotMember)
	case err != nil:
		metrics.RecordMemberLookup(lookupError)
	case hit:
		metrics.RecordMemberLookup(lookupHit)
	default:
		metrics.RecordMemberLookup(lookupMiss)
	}
}

func (s *AuthzService) loadMember(ctx context.Context, orgId, userId string) (*rbac.Member, error) {
	row, err := s.memberRepo.GetMember(ctx, orgId, userId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotMember
		}
		log.WithContext(ctx).Errorw("get organization member failed", "orgId", orgId, "userId", userId, "error", err)
		return nil, fmt.Errorf("get organization member failed: %w", err)
	}

	// 自定义角色的授权来自角色表，角色不存在时不授予任何权限
	var rolePerms []rbac.Permission
	if !rbac.IsSystemRole(row.Role) {
		role, err := s.roleRepo.GetRole(ctx, orgId, row.Role)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			log.WithContext(ctx).Warnw("member references unknown role", "orgId", orgId, "userId", userId, "role", row.Role)
		case err != nil:
			return nil, fmt.Errorf("get role failed: %w", err)
		default:
			if rolePerms, err = model.PermissionsFromJSON(role.Permissions); err != nil {
				return nil, fmt.Errorf("decode role permissions failed: %w", err)
			}
		}
	}

	member, err := row.ToRbacMember(rolePerms)
	if err != nil {
		return nil, fmt.Errorf("decode member permissions failed: %w", err)
	}
	return member, nil
}

// RequireMember 要求用户是组织的活跃成员
func (s *AuthzService) RequireMember(ctx context.Context, orgId, userId string) (*rbac.Member, error) {
	member, err := s.ResolveMember(ctx, orgId, userId)
	if err != nil {
		if errors.Is(err, ErrNotMember) {
			return nil, fmt.Errorf("%w: %w", ErrForbidden, ErrNotMember)
		}
		return nil, err
	}
	if !member.Active() {
		return nil, fmt.Errorf("%w: %w", ErrForbidden, ErrNotMember)
	}
	return member, nil
}

// Check 返回是否允许，非成员视为拒绝
func (s *AuthzService) Check(ctx context.Context, orgId, userId string, resource rbac.Resource, action rbac.Action, ac *rbac.AuthContext) (bool, error) {
	d, err := s.decide(ctx, orgId, userId, resource, action, ac)
	if err != nil {
		return false, err
	}
	return d.Allowed, nil
}

// Authorize 允许时返回 nil，拒绝时返回 ErrForbidden
func (s *AuthzService) Authorize(ctx context.Context, orgId, userId string, resource rbac.Resource, action rbac.Action, ac *rbac.AuthContext) error {
	d, err := s.decide(ctx, orgId, userId, resource, action, ac)
	if err != nil {
		return err
	}
	return deniedErr(d, resource, action)
}

// AuthorizeMember 对已加载的成员做判定，避免重复加载
func (s *AuthzService) AuthorizeMember(ctx context.Context, member *rbac.Member, resource rbac.Resource, action rbac.Action, ac *rbac.AuthContext) error {
	d, err := s.evaluate(ctx, member, resource, action, ac)
	if err != nil {
		return err
	}
	return deniedErr(d, resource, action)
}

// Allowed 对已加载的成员返回判定结果
func (s *AuthzService) Allowed(ctx context.Context, member *rbac.Member, resource rbac.Resource, action rbac.Action, ac *rbac.AuthContext) bool {
	d, err := s.evaluate(ctx, member, resource, action, ac)
	return err == nil && d.Allowed
}

// AllowedActions 返回成员在资源上可执行的动作，非成员返回空列表
func (s *AuthzService) AllowedActions(ctx context.Context, orgId, userId string, resource rbac.Resource, ac *rbac.AuthContext) ([]rbac.Action, error) {
	member, err := s.ResolveMember(ctx, orgId, userId)
	if err != nil {
		if errors.Is(err, ErrNotMember) {
			return []rbac.Action{}, nil
		}
		return nil, err
	}
	return s.engine.GetAllowedActions(member, resource, ac)
}

// InvalidateMember 成员或其角色变更后换代，必须在数据库写入之后调用
func (s *AuthzService) InvalidateMember(ctx context.Context, orgId string, userIds ...string) {
	if s.shared == nil {
		return
	}
	for _, userId := range userIds {
		key := generationKey(orgId, userId)
		if err := s.shared.Set(ctx, key, id.GetUlid(), 0).Err(); err != nil {
			log.WithContext(ctx).Warnw("invalidate member cache failed", "orgId", orgId, "userId", userId, "error", err)
		}
	}
}

func (s *AuthzService) decide(ctx context.Context, orgId, userId string, resource rbac.Resource, action rbac.Action, ac *rbac.AuthContext) (rbac.Decision, error) {
	ctx, span := s.tracer.Start(ctx, "authz.Decide", trace.WithAttributes(
		attribute.String("authz.org_id", orgId),
		attribute.String("authz.user_id", userId),
	))
	defer span.End()

	member, err := s.ResolveMember(ctx, orgId, userId)
	if err != nil {
		if errors.Is(err, ErrNotMember) {
			metrics.RecordDecision(string(resource), string(action), metrics.ResultDenied)
			span.SetAttributes(attribute.Bool("authz.allowed", false), attribute.String("authz.reason", reasonNotMember))
			return rbac.Decision{Reason: reasonNotMember}, nil
		}
		result := metrics.ResultError
		if errors.Is(err, rbac.ErrInvalidInput) {
			result = metrics.ResultInvalid
		}
		metrics.RecordDecision(string(resource), string(action), result)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return rbac.Decision{}, err
	}
	return s.evaluate(ctx, member, resource, action, ac)
}

func (s *AuthzService) evaluate(ctx context.Context, member *rbac.Member, resource rbac.Resource, action rbac.Action, ac *rbac.AuthContext) (rbac.Decision, error) {
	span := trace.SpanFromContext(ctx)
	d, err := s.engine.Evaluate(member, resource, action, ac)
	if err != nil {
		metrics.RecordDecision(string(resource), string(action), metrics.ResultInvalid)
		span.RecordError(err)
		return d, err
	}

	result := metrics.ResultDenied
	if d.Allowed {
		result = metrics.ResultAllowed
	}
	metrics.RecordDecision(string(resource), string(action), result)
	span.SetAttributes(
		attribute.String("authz.resource", string(resource)),
		attribute.String("authz.action", string(action)),
		attribute.Bool("authz.allowed", d.Allowed),
		attribute.String("authz.reason", d.Reason),
	)
	log.WithContext(ctx).Debugw("authorization decision",
		"orgId", member.OrganizationId,
		"userId", member.UserId,
		"role", member.Role,
		"resource", resource,
		"action", action,
		"allowed", d.Allowed,
		"reason", d.Reason,
	)
	return d, nil
}

func deniedErr(d rbac.Decision, resource rbac.Resource, action rbac.Action) error {
	if d.Allowed {
		return nil
	}
	if d.Reason == reasonNotMember {
		return fmt.Errorf("%w: %w", ErrForbidden, ErrNotMember)
	}
	return fmt.Errorf("%w: %s %s: %s", ErrForbidden, action, resource, d.Reason)
}
