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

package rbac

import (
	"fmt"
	"slices"
)

// Resource identifies a protected entity kind.
type Resource string

const (
	ResourceOrganization Resource = "organization"
	ResourceProject      Resource = "project"
	ResourceTask         Resource = "task"
	ResourceMilestone    Resource = "milestone"
	ResourceTeam         Resource = "team"
	ResourceUser         Resource = "user"
	ResourceWorkflow     Resource = "workflow"
	ResourceStatus       Resource = "status"
	ResourcePriority     Resource = "priority"
	ResourceLabel        Resource = "label"
	ResourceComment      Resource = "comment"
	ResourceAttachment   Resource = "attachment"
	ResourceTimeEntry    Resource = "timeEntry"
)

var resources = []Resource{
	ResourceOrganization,
	ResourceProject,
	ResourceTask,
	ResourceMilestone,
	ResourceTeam,
	ResourceUser,
	ResourceWorkflow,
	ResourceStatus,
	ResourcePriority,
	ResourceLabel,
	ResourceComment,
	ResourceAttachment,
	ResourceTimeEntry,
}

// Resources returns every known resource in declaration order.
func Resources() []Resource {
	return slices.Clone(resources)
}

// Valid reports whether r belongs to the closed resource set.
func (r Resource) Valid() bool {
	return slices.Contains(resources, r)
}

// ParseResource 解析资源类型
func ParseResource(s string) (Resource, error) {
	r := Resource(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: unknown resource %q", ErrInvalidInput, s)
	}
	return r, nil
}

// Action identifies an operation kind. manage does not imply the others.
type Action string

const (
	ActionCreate  Action = "create"
	ActionRead    Action = "read"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionAssign  Action = "assign"
	ActionComment Action = "comment"
	ActionManage  Action = "manage"
)

var actions = []Action{
	ActionCreate,
	ActionRead,
	ActionUpdate,
	ActionDelete,
	ActionAssign,
	ActionComment,
	ActionManage,
}

// Actions returns every known action in declaration order.
func Actions() []Action {
	return slices.Clone(actions)
}

func (a Action) Valid() bool {
	return slices.Contains(actions, a)
}

// ParseAction 解析操作类型
func ParseAction(s string) (Action, error) {
	a := Action(s)
	if !a.Valid() {
		return "", fmt.Errorf("%w: unknown action %q", ErrInvalidInput, s)
	}
	return a, nil
}

// Scope limits which records a grant applies to. The zero value behaves as ScopeAll.
type Scope string

const (
	ScopeAll  Scope = "all"
	ScopeTeam Scope = "team"
	ScopeOwn  Scope = "own"
)

func (s Scope) Valid() bool {
	switch s {
	case "", ScopeAll, ScopeTeam, ScopeOwn:
		return true
	}
	return false
}

// ParseScope 解析作用域，空字符串表示不限范围
func ParseScope(s string) (Scope, error) {
	sc := Scope(s)
	if !sc.Valid() {
		return "", fmt.Errorf("%w: unknown scope %q", ErrInvalidInput, s)
	}
	return sc, nil
}

// Permission is a single grant of actions on a resource.
type Permission struct {
	Resource Resource `json:"resource"`
	Actions  []Action `json:"actions"`
	Scope    Scope    `json:"scope,omitempty"`
}

// Allows reports whether the grant lists the action.
func (p Permission) Allows(action Action) bool {
	return slices.Contains(p.Actions, action)
}

// Unscoped reports whether the grant applies organization-wide.
func (p Permission) Unscoped() bool {
	return p.Scope == "" || p.Scope == ScopeAll
}

// Validate checks that the grant only references known resources, actions and scopes.
func (p Permission) Validate() error {
	if !p.Resource.Valid() {
		return fmt.Errorf("%w: unknown resource %q", ErrInvalidInput, p.Resource)
	}
	if len(p.Actions) == 0 {
		return fmt.Errorf("%w: permission on %q lists no actions", ErrInvalidInput, p.Resource)
	}
	for _, a := range p.Actions {
		if !a.Valid() {
			return fmt.Errorf("%w: unknown action %q", ErrInvalidInput, a)
		}
	}
	if !p.Scope.Valid() {
		return fmt.Errorf("%w: unknown scope %q", ErrInvalidInput, p.Scope)
	}
	return nil
}

func (p Permission) clone() Permission {
	p.Actions = slices.Clone(p.Actions)
	return p
}

func clonePermissions(perms []Permission) []Permission {
	if perms == nil {
		return nil
	}
	out := make([]Permission, len(perms))
	for i, p := range perms {
		out[i] = p.clone()
	}
	return out
}

// ValidatePermissions validates each grant in order and returns the first failure.
func ValidatePermissions(perms []Permission) error {
	for i, p := range perms {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("permission %d: %w", i, err)
		}
	}
	return nil
}
