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
	"slices"
	"sync"

	"github.com/go-arcade/epcentra/internal/engine/model"
	"github.com/go-arcade/epcentra/internal/engine/repo"
	"github.com/go-arcade/epcentra/internal/pkg/rbac"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// memStore 内存实现的仓储，供 service 测试使用
type memStore struct {
	mu         sync.Mutex
	orgs       map[string]*model.Organization
	members    map[string]*model.OrganizationMember
	roles      map[string]*model.Role
	teams      map[string]*model.Team
	projects   map[string]*model.Project
	phases     map[string]*model.Phase
	milestones map[string]*model.Milestone
	tasks      map[string]*model.Task
	comments   []*model.TaskComment
	memberGets int
}

func newMemStore() *memStore {
	return &memStore{
		orgs:       map[string]*model.Organization{},
		members:    map[string]*model.OrganizationMember{},
		roles:      map[string]*model.Role{},
		teams:      map[string]*model.Team{},
		projects:   map[string]*model.Project{},
		phases:     map[string]*model.Phase{},
		milestones: map[string]*model.Milestone{},
		tasks:      map[string]*model.Task{},
	}
}

func (s *memStore) repos() *repo.Repositories {
	return &repo.Repositories{
		Organization: orgRepo{s},
		Member:       memberRepo{s},
		Role:         roleRepo{s},
		Team:         teamRepo{s},
		Project:      projectRepo{s},
		Phase:        phaseRepo{s},
		Milestone:    milestoneRepo{s},
		Task:         taskRepo{s},
	}
}

func mkey(orgId, userId string) string { return orgId + "/" + userId }

func (s *memStore) putMember(orgId, userId, role string, status rbac.MemberStatus, teams []string, perms ...rbac.Permission) {
	permsJSON, _ := model.PermissionsToJSON(perms)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[mkey(orgId, userId)] = &model.OrganizationMember{
		OrgId:       orgId,
		UserId:      userId,
		Role:        role,
		Teams:       model.MustStringsJSON(teams),
		Status:      string(status),
		Permissions: permsJSON,
	}
}

func (s *memStore) putTeam(orgId, teamId string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams[teamId] = &model.Team{TeamId: teamId, OrgId: orgId, Name: teamId}
}

func (s *memStore) putProject(orgId, projectId, createdBy string, teams ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[projectId] = &model.Project{ProjectId: projectId, OrgId: orgId, Name: projectId, TeamIds: model.MustStringsJSON(teams), CreatedBy: createdBy, Status: model.ProjectStatusActive}
}

func (s *memStore) putTask(orgId, projectId, taskId, createdBy string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[taskId] = &model.Task{TaskId: taskId, OrgId: orgId, ProjectId: projectId, Title: taskId, CreatedBy: createdBy, Status: model.TaskStatusTodo}
}

func apply[T any](row *T, updates map[string]any, set func(*T, string, any)) {
	for k, v := range updates {
		set(row, k, v)
	}
}

type orgRepo struct{ s *memStore }

func (r orgRepo) CreateWithOwner(_ context.Context, org *model.Organization, owner *model.OrganizationMember) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.orgs[org.OrgId] = org
	r.s.members[mkey(owner.OrgId, owner.UserId)] = owner
	return nil
}

func (r orgRepo) GetOrganization(_ context.Context, orgId string) (*model.Organization, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if o, ok := r.s.orgs[orgId]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r orgRepo) CheckSlugExists(_ context.Context, slug string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.orgs {
		if o.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (r orgRepo) UpdateOrganization(_ context.Context, orgId string, updates map[string]any) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orgs[orgId]
	if !ok {
		return nil
	}
	apply(o, updates, func(o *model.Organization, k string, v any) {
		switch k {
		case "name":
			o.Name = v.(string)
		case "description":
			o.Description = v.(string)
		}
	})
	return nil
}

func (r orgRepo) DeleteOrganization(_ context.Context, orgId string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.orgs, orgId)
	for k, m := range r.s.members {
		if m.OrgId == orgId {
			delete(r.s.members, k)
		}
	}
	return nil
}

func (r orgRepo) ListOrganizationsByIds(_ context.Context, orgIds []string) ([]*model.Organization, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*model.Organization
	for _, id := range orgIds {
		if o, ok := r.s.orgs[id]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

type memberRepo struct{ s *memStore }

func (r memberRepo) CreateMember(_ context.Context, m *model.OrganizationMember) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.members[mkey(m.OrgId, m.UserId)] = m
	return nil
}

func (r memberRepo) GetMember(_ context.Context, orgId, userId string) (*model.OrganizationMember, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.memberGets++
	if m, ok := r.s.members[mkey(orgId, userId)]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memberRepo) ListMembers(_ context.Context, orgId string, _, _ int) ([]*model.OrganizationMember, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*model.OrganizationMember
	for _, m := range r.s.members {
		if m.OrgId == orgId {
			out = append(out, m)
		}
	}
	return out, int64(len(out)), nil
}

func (r memberRepo) ListMembershipsByUser(_ context.Context, userId, status string) ([]*model.OrganizationMember, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*model.OrganizationMember
	for _, m := range r.s.members {
		if m.UserId == userId && (status == "" || m.Status == status) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r memberRepo) ListUserIdsByRole(_ context.Context, orgId, role string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []string
	for _, m := range r.s.members {
		if m.OrgId == orgId && m.Role == role {
			out = append(out, m.UserId)
		}
	}
	return out, nil
}

func (r memberRepo) CountByRole(_ context.Context, orgId, role, status string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, m := range r.s.members {
		if m.OrgId == orgId && m.Role == role && (status == "" || m.Status == status) {
			n++
		}
	}
	return n, nil
}

func (r memberRepo) UpdateMember(_ context.Context, orgId, userId string, updates map[string]any) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.members[mkey(orgId, userId)]
	if !ok {
		return nil
	}
	apply(m, updates, func(m *model.OrganizationMember, k string, v any) {
		switch k {
		case "role":
			m.Role = v.(string)
		case "status":
			m.Status = v.(string)
		case "teams":
			m.Teams = v.(datatypes.JSON)
		case "permissions":
			m.Permissions = v.(datatypes.JSON)
		}
	})
	return nil
}

func (r memberRepo) DeleteMember(_ context.Context, orgId, userId string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.members, mkey(orgId, userId))
	return nil
}

type roleRepo struct{ s *memStore }

func (r roleRepo) CreateRole(_ context.Context, role *model.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.roles[role.RoleId] = role
	return nil
}

func (r roleRepo) GetRole(_ context.Context, orgId, roleId string) (*model.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if role, ok := r.s.roles[roleId]; ok && role.OrgId == orgId {
		cp := *role
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r roleRepo) ListRoles(_ context.Context, orgId string) ([]*model.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*model.Role
	for _, role := range r.s.roles {
		if role.OrgId == orgId {
			out = append(out, role)
		}
	}
	return out, nil
}

func (r roleRepo) CheckRoleNameExists(_ context.Context, orgId, name string, excludeRoleId ...string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, role := range r.s.roles {
		if role.OrgId == orgId && role.Name == name && !slices.Contains(excludeRoleId, role.RoleId) {
			return true, nil
		}
	}
	return false, nil
}

func (r roleRepo) UpdateRole(_ context.Context, orgId, roleId string, updates map[string]any) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	role, ok := r.s.roles[roleId]
	if !ok || role.OrgId != orgId {
		return nil
	}
	apply(role, updates, func(role *model.Role, k string, v any) {
		switch k {
		case "name":
			role.Name = v.(string)
		case "description":
			role.Description = v.(string)
		case "permissions":
			role.Permissions = v.(datatypes.JSON)
		}
	})
	return nil
}

func (r roleRepo) DeleteRole(_ context.Context, _, roleId string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.roles, roleId)
	return nil
}

type teamRepo struct{ s *memStore }

func (r teamRepo) CreateTeam(_ context.Context, t *model.Team) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.teams[t.TeamId] = t
	return nil
}

func (r teamRepo) GetTeam(_ context.Context, orgId, teamId string) (*model.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if t, ok := r.s.teams[teamId]; ok && t.OrgId == orgId {
		cp := *t
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r teamRepo) ListTeams(_ context.Context, orgId string) ([]*model.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*model.Team
	for _, t := range r.s.teams {
		if t.OrgId == orgId {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b *model.Team) int {
		if a.TeamId < b.TeamId {
			return -1
		}
		return 1
	})
	return out, nil
}

func (r teamRepo) CountTeams(_ context.Context, orgId string, teamIds []string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, id := range teamIds {
		if t, ok := r.s.teams[id]; ok && t.OrgId == orgId {
			n++
		}
	}
	return n, nil
}

func (r teamRepo) CheckTeamNameExists(_ context.Context, orgId, name string, excludeTeamId ...string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.teams {
		if t.OrgId == orgId && t.Name == name && !slices.Contains(excludeTeamId, t.TeamId) {
			return true, nil
		}
	}
	return false, nil
}

func (r teamRepo) UpdateTeam(context.Context, string, string, map[string]any) error {
	return nil
}

func (r teamRepo) DeleteTeam(_ context.Context, _, teamId string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.teams, teamId)
	return nil
}

type projectRepo struct{ s *memStore }

func (r projectRepo) CreateProject(_ context.Context, p *model.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.projects[p.ProjectId] = p
	return nil
}

func (r projectRepo) GetProject(_ context.Context, orgId, projectId string) (*model.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.projects[projectId]; ok && p.OrgId == orgId {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r projectRepo) ListProjects(_ context.Context, orgId string) ([]*model.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*model.Project
	for _, p := range r.s.projects {
		if p.OrgId == orgId {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r projectRepo) UpdateProject(_ context.Context, orgId, projectId string, updates map[string]any) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.projects[projectId]
	if !ok || p.OrgId != orgId {
		return nil
	}
	apply(p, updates, func(p *model.Project, k string, v any) {
		switch k {
		case "name":
			p.Name = v.(string)
		case "status":
			p.Status = v.(string)
		case "team_ids":
			p.TeamIds = v.(datatypes.JSON)
		}
	})
	return nil
}

func (r projectRepo) DeleteProject(_ context.Context, _, projectId string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.projects, projectId)
	return nil
}

type phaseRepo struct{ s *memStore }

func (r phaseRepo) CreatePhase(_ context.Context, p *model.Phase) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.phases[p.PhaseId] = p
	return nil
}

func (r phaseRepo) GetPhase(_ context.Context, orgId, phaseId string) (*model.Phase, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.phases[phaseId]; ok && p.OrgId == orgId {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r phaseRepo) ListPhases(_ context.Context, orgId string) ([]*model.Phase, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*model.Phase
	for _, p := range r.s.phases {
		if p.OrgId == orgId {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b *model.Phase) int { return a.OrderIndex - b.OrderIndex })
	return out, nil
}

func (r phaseRepo) UpdatePhase(context.Context, string, string, map[string]any) error {
	return nil
}

func (r phaseRepo) DeletePhase(_ context.Context, orgId, phaseId string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.milestones {
		if m.OrgId == orgId && m.PhaseId == phaseId {
			m.PhaseId = ""
		}
	}
	delete(r.s.phases, phaseId)
	return nil
}

type milestoneRepo struct{ s *memStore }

func (r milestoneRepo) CreateMilestone(_ context.Context, m *model.Milestone) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.milestones[m.MilestoneId] = m
	return nil
}

func (r milestoneRepo) GetMilestone(_ context.Context, orgId, milestoneId string) (*model.Milestone, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if m, ok := r.s.milestones[milestoneId]; ok && m.OrgId == orgId {
		cp := *m
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r milestoneRepo) ListMilestones(_ context.Context, orgId, projectId string) ([]*model.Milestone, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*model.Milestone
	for _, m := range r.s.milestones {
		if m.OrgId == orgId && m.ProjectId == projectId {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r milestoneRepo) UpdateMilestone(context.Context, string, string, map[string]any) error {
	return nil
}

func (r milestoneRepo) DeleteMilestone(_ context.Context, _, milestoneId string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.milestones, milestoneId)
	return nil
}

type taskRepo struct{ s *memStore }

func (r taskRepo) CreateTask(_ context.Context, t *model.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.tasks[t.TaskId] = t
	return nil
}

func (r taskRepo) GetTask(_ context.Context, orgId, taskId string) (*model.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if t, ok := r.s.tasks[taskId]; ok && t.OrgId == orgId {
		cp := *t
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r taskRepo) ListTasks(_ context.Context, orgId, projectId string, _, _ int) ([]*model.Task, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*model.Task
	for _, t := range r.s.tasks {
		if t.OrgId == orgId && t.ProjectId == projectId {
			out = append(out, t)
		}
	}
	return out, int64(len(out)), nil
}

func (r taskRepo) UpdateTask(_ context.Context, orgId, taskId string, updates map[string]any) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tasks[taskId]
	if !ok || t.OrgId != orgId {
		return nil
	}
	apply(t, updates, func(t *model.Task, k string, v any) {
		switch k {
		case "title":
			t.Title = v.(string)
		case "status":
			t.Status = v.(string)
		case "assigned_to":
			t.AssignedTo = v.(string)
		}
	})
	return nil
}

func (r taskRepo) DeleteTask(_ context.Context, _, taskId string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.tasks, taskId)
	return nil
}

func (r taskRepo) CreateComment(_ context.Context, c *model.TaskComment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.comments = append(r.s.comments, c)
	return nil
}

func (r taskRepo) ListComments(_ context.Context, orgId, taskId string) ([]*model.TaskComment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*model.TaskComment
	for _, c := range r.s.comments {
		if c.OrgId == orgId && c.TaskId == taskId {
			out = append(out, c)
		}
	}
	return out, nil
}
