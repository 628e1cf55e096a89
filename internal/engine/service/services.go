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
	"github.com/go-arcade/epcentra/internal/engine/repo"
	"github.com/go-arcade/epcentra/internal/pkg/rbac"
	"github.com/go-arcade/epcentra/pkg/cache"
)

// Services 统一管理所有 service
type Services struct {
	Authz        *AuthzService
	Organization *OrganizationService
	Member       *MemberService
	Role         *RoleService
	Team         *TeamService
	Project      *ProjectService
	Phase        *PhaseService
	Milestone    *MilestoneService
	Task         *TaskService
}

// NewServices 初始化所有 service
func NewServices(engine *rbac.Engine, repos *repo.Repositories, c cache.ICache, conf cache.Cache) *Services {
	// 鉴权服务被所有业务服务共享
	authz := NewAuthzService(engine, repos, c, conf.TTL)

	return &Services{
		Authz:        authz,
		Organization: NewOrganizationService(authz, repos),
		Member:       NewMemberService(authz, repos),
		Role:         NewRoleService(authz, repos),
		Team:         NewTeamService(authz, repos),
		Project:      NewProjectService(authz, repos),
		Phase:        NewPhaseService(authz, repos),
		Milestone:    NewMilestoneService(authz, repos),
		Task:         NewTaskService(authz, repos),
	}
}
