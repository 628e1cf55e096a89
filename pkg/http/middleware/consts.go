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

const (
	// DETAIL 处理器写入的响应数据
	DETAIL = "detail"
	// OPERATION 处理器写入的操作结果，无响应数据
	OPERATION = "operation"
	// CLAIMS 认证通过后的 JWT claims
	CLAIMS = "claims"
	// ORG_ID 通过权限校验的组织ID
	ORG_ID = "orgId"
	// REQUEST_ID 请求ID
	REQUEST_ID = "request_id"
)
