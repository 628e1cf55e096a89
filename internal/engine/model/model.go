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

import (
	"time"

	"github.com/bytedance/sonic"
	"gorm.io/datatypes"
)

type BaseModel struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// ListReq is the common paging query.
type ListReq struct {
	Page     int `query:"page"`
	PageSize int `query:"pageSize"`
}

// Normalize clamps paging to sane bounds.
func (r *ListReq) Normalize() {
	if r.Page <= 0 {
		r.Page = 1
	}
	if r.PageSize <= 0 || r.PageSize > 200 {
		r.PageSize = 20
	}
}

func (r ListReq) Offset() int {
	return (r.Page - 1) * r.PageSize
}

// ListResp wraps a page of results.
type ListResp[T any] struct {
	List     []T   `json:"list"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
}

// ToJSON encodes v for a JSON column; nil becomes an empty JSON value of the given shape.
func ToJSON(v any, empty string) (datatypes.JSON, error) {
	if v == nil {
		return datatypes.JSON(empty), nil
	}
	data, err := sonic.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(data) == "null" {
		return datatypes.JSON(empty), nil
	}
	return datatypes.JSON(data), nil
}

// StringsFromJSON decodes a JSON string array column, tolerating empty values.
func StringsFromJSON(j datatypes.JSON) []string {
	out := []string{}
	if len(j) == 0 {
		return out
	}
	_ = sonic.Unmarshal(j, &out)
	return out
}

// MustStringsJSON encodes ids for a JSON column.
func MustStringsJSON(ids []string) datatypes.JSON {
	if ids == nil {
		ids = []string{}
	}
	j, _ := ToJSON(ids, "[]")
	return j
}

// Tables 返回需要自动迁移的所有表模型
func Tables() []any {
	return []any{
		&Organization{},
		&OrganizationMember{},
		&Role{},
		&Team{},
		&Project{},
		&Phase{},
		&Milestone{},
		&Task{},
		&TaskComment{},
	}
}
