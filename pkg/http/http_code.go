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

package http

var (
	Failed                        = failed(500, "Request failed")
	RequestParameterParsingFailed = failed(5001, "Request parameter parsing failed")
	TeamIdIsEmpty                 = failed(5002, "Team id is empty")
	OrgIdIsEmpty                  = failed(5003, "Org id is empty")
	ProjectIdIsEmpty              = failed(5004, "Project id is empty")
	TaskIdIsEmpty                 = failed(5005, "Task id is empty")
	MilestoneIdIsEmpty            = failed(5006, "Milestone id is empty")
	RoleIdIsEmpty                 = failed(5007, "Role id is empty")
	UserIdIsEmpty                 = failed(5008, "User id is empty")

	// Unauthorized 401
	Unauthorized         = failed(4401, "Unauthorized")
	AuthenticationFailed = failed(4402, "Authentication failed")
	InvalidToken         = failed(4405, "Invalid token")
	TokenBeEmpty         = failed(4406, "Token cannot be empty")
	TokenExpired         = failed(4407, "Token is expired")
	TokenFormatIncorrect = failed(4408, "Token format is incorrect")

	// BadRequest 400
	BadRequest   = failed(4000, "Bad request")
	InvalidInput = failed(4001, "Invalid input")
	NotFound     = failed(4004, "Not found")
	Conflict     = failed(4009, "Resource already exists")
	LastOwner    = failed(4010, "Organization must keep an active owner")

	// Forbidden 403
	Forbidden          = failed(4030, "Forbidden")
	PermissionDenied   = failed(4031, "Permission denied")
	SystemRoleReadOnly = failed(4032, "System roles cannot be modified")
	NotAMember         = failed(4033, "Not a member of the organization")

	InternalError = failed(5000, "Internal error, please contact the administrator")
)

var (
	Success = success(200, "Request Success")
)

// failed 构造函数
func failed(code int, msg string) *Response {
	return &Response{
		Code: code,
		Msg:  msg,
	}
}

// success 构造函数
func success(code int, msg string) *Response {
	return &Response{
		Code: code,
		Msg:  msg,
	}
}
