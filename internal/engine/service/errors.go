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

import "errors"

var (
	ErrForbidden  = errors.New("permission denied")
	ErrNotMember  = errors.New("not an active member of the organization")
	ErrNotFound   = errors.New("resource not found")
	ErrConflict   = errors.New("resource already exists")
	ErrSystemRole = errors.New("system roles are immutable")
	ErrBadRequest = errors.New("bad request")
	ErrLastOwner  = errors.New("organization must keep at least one active owner")
)
