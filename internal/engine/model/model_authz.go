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

package model

import "github.com/go-arcade/epcentra/internal/pkg/rbac"

// CheckReq asks whether a member may perform an action.
type CheckReq struct {
	OrganizationId string            `json:"organizationId"`
	UserId         string            `json:"userId"` // defaults to the caller
	Resource       string            `json:"resource"`
	Action         string            `json:"action"`
	Context        *rbac.AuthContext `json:"context"`
}

type CheckResp struct {
	Allowed bool `json:"allowed"`
}

// ActionsReq asks for the allowed actions on a resource.
type ActionsReq struct {
	OrganizationId string            `json:"organizationId"`
	UserId         string            `json:"userId"`
	Resource       string            `json:"resource"`
	Context        *rbac.AuthContext `json:"context"`
}

type ActionsResp struct {
	Actions []rbac.Action `json:"actions"`
}
