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

// MemberStatus is the lifecycle state of an organization membership.
type MemberStatus string

const (
	MemberStatusActive    MemberStatus = "active"
	MemberStatusInvited   MemberStatus = "invited"
	MemberStatusSuspended MemberStatus = "suspended"
)

func (s MemberStatus) Valid() bool {
	switch s {
	case MemberStatusActive, MemberStatusInvited, MemberStatusSuspended:
		return true
	}
	return false
}

// Member is a user's membership in one organization as seen by the engine.
//
// RolePermissions carries the grants of a custom role, resolved by the caller
// from role storage. Permissions holds grants attached directly to this member.
// System role grants come from the Catalog and are not stored here.
type Member struct {
	OrganizationId  string       `json:"organizationId"`
	UserId          string       `json:"userId"`
	Role            string       `json:"role"`
	Teams           []string     `json:"teams"`
	Status          MemberStatus `json:"status"`
	RolePermissions []Permission `json:"rolePermissions,omitempty"`
	Permissions     []Permission `json:"permissions,omitempty"`
}

// Active reports whether the membership may hold any permission.
func (m *Member) Active() bool {
	return m != nil && m.Status == MemberStatusActive
}

// InTeam reports whether any of teamIds is one of the member's teams.
func (m *Member) InTeam(teamIds []string) bool {
	for _, t := range teamIds {
		for _, mine := range m.Teams {
			if t == mine {
				return true
			}
		}
	}
	return false
}

// AuthContext describes the target record of a check. An empty CreatorId or
// nil TeamIds means the caller did not supply that field.
type AuthContext struct {
	CreatorId string   `json:"creatorId,omitempty"`
	TeamIds   []string `json:"teamIds,omitempty"`
}

// OwnedBy builds a context for a record created by userId.
func OwnedBy(userId string, teamIds ...string) *AuthContext {
	return &AuthContext{CreatorId: userId, TeamIds: teamIds}
}

// InTeams builds a context for a record attached to the given teams.
func InTeams(teamIds ...string) *AuthContext {
	return &AuthContext{TeamIds: teamIds}
}
