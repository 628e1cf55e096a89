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

import "fmt"

// Decision reasons.
const (
	ReasonGranted        = "granted"
	ReasonInactive       = "membership is not active"
	ReasonNoGrant        = "no grant for resource and action"
	ReasonScopeMismatch  = "grant scope does not cover the target record"
	ReasonMissingContext = "scoped grant requires context"
)

// Decision is the outcome of a single check.
type Decision struct {
	Allowed bool
	// Grant is the first candidate that allowed the action.
	Grant  *Permission
	Reason string
}

// Engine evaluates membership grants. It holds only the catalog it was built
// with and is safe for concurrent use.
type Engine struct {
	catalog *Catalog
}

// NewEngine returns an engine backed by catalog. A nil catalog grants nothing
// beyond the members' own permissions.
func NewEngine(catalog *Catalog) *Engine {
	return &Engine{catalog: catalog}
}

// Catalog returns the catalog the engine evaluates against.
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// Candidates returns the grants considered for member: catalog grants for the
// role, then custom role grants, then member grants. Order is preserved and
// duplicates are kept.
func (e *Engine) Candidates(member *Member) []Permission {
	if member == nil {
		return nil
	}
	role := e.catalog.grants(member.Role)
	out := make([]Permission, 0, len(role)+len(member.RolePermissions)+len(member.Permissions))
	out = append(out, role...)
	out = append(out, member.RolePermissions...)
	out = append(out, member.Permissions...)
	return out
}

// HasPermission reports whether member may perform action on resource.
func (e *Engine) HasPermission(member *Member, resource Resource, action Action, ac *AuthContext) (bool, error) {
	d, err := e.Evaluate(member, resource, action, ac)
	if err != nil {
		return false, err
	}
	return d.Allowed, nil
}

// Evaluate is HasPermission with the reason and matching grant attached.
func (e *Engine) Evaluate(member *Member, resource Resource, action Action, ac *AuthContext) (Decision, error) {
	if err := validateCall(member, resource); err != nil {
		return Decision{}, err
	}
	if !action.Valid() {
		return Decision{}, fmt.Errorf("%w: unknown action %q", ErrInvalidInput, action)
	}
	if !member.Active() {
		return Decision{Reason: ReasonInactive}, nil
	}

	reason := ReasonNoGrant
	for _, p := range e.Candidates(member) {
		if p.Resource != resource || !p.Allows(action) {
			continue
		}
		ok, why := scopeHolds(member, p, ac)
		if ok {
			grant := p.clone()
			return Decision{Allowed: true, Grant: &grant, Reason: ReasonGranted}, nil
		}
		reason = why
	}
	return Decision{Reason: reason}, nil
}

// GetAllowedActions returns the union of actions from every candidate on
// resource whose scope holds, in first-seen order without duplicates.
func (e *Engine) GetAllowedActions(member *Member, resource Resource, ac *AuthContext) ([]Action, error) {
	if err := validateCall(member, resource); err != nil {
		return nil, err
	}
	allowed := []Action{}
	if !member.Active() {
		return allowed, nil
	}

	seen := make(map[Action]struct{}, len(actions))
	for _, p := range e.Candidates(member) {
		if p.Resource != resource {
			continue
		}
		if ok, _ := scopeHolds(member, p, ac); !ok {
			continue
		}
		for _, a := range p.Actions {
			if !a.Valid() {
				continue
			}
			if _, dup := seen[a]; dup {
				continue
			}
			seen[a] = struct{}{}
			allowed = append(allowed, a)
		}
	}
	return allowed, nil
}

// CanManage checks the manage action without context, so only unscoped
// manage grants satisfy it.
func (e *Engine) CanManage(member *Member, resource Resource) (bool, error) {
	return e.HasPermission(member, resource, ActionManage, nil)
}

// HasAnyPermission reports whether at least one of actions is allowed.
func (e *Engine) HasAnyPermission(member *Member, resource Resource, actions []Action, ac *AuthContext) (bool, error) {
	if err := validateCall(member, resource); err != nil {
		return false, err
	}
	for _, a := range actions {
		if !a.Valid() {
			return false, fmt.Errorf("%w: unknown action %q", ErrInvalidInput, a)
		}
	}
	for _, a := range actions {
		ok, err := e.HasPermission(member, resource, a, ac)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// ResourcePermissions returns the candidate grants that mention resource,
// regardless of scope.
func (e *Engine) ResourcePermissions(member *Member, resource Resource) ([]Permission, error) {
	if err := validateCall(member, resource); err != nil {
		return nil, err
	}
	out := []Permission{}
	if !member.Active() {
		return out, nil
	}
	for _, p := range e.Candidates(member) {
		if p.Resource == resource {
			out = append(out, p.clone())
		}
	}
	return out, nil
}

func validateCall(member *Member, resource Resource) error {
	if member == nil {
		return fmt.Errorf("%w: member is nil", ErrInvalidInput)
	}
	if !resource.Valid() {
		return fmt.Errorf("%w: unknown resource %q", ErrInvalidInput, resource)
	}
	return nil
}

// scopeHolds evaluates a grant's scope against the target record.
// Unknown scopes never match.
func scopeHolds(member *Member, p Permission, ac *AuthContext) (bool, string) {
	switch p.Scope {
	case "", ScopeAll:
		return true, ReasonGranted
	case ScopeTeam:
		if ac == nil || ac.TeamIds == nil {
			return false, ReasonMissingContext
		}
		if member.InTeam(ac.TeamIds) {
			return true, ReasonGranted
		}
		return false, ReasonScopeMismatch
	case ScopeOwn:
		if ac == nil || ac.CreatorId == "" {
			return false, ReasonMissingContext
		}
		if ac.CreatorId == member.UserId {
			return true, ReasonGranted
		}
		return false, ReasonScopeMismatch
	default:
		return false, ReasonScopeMismatch
	}
}
