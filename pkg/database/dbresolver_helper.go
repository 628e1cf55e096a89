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

package database

import (
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

// Primary pins the query to the write sources. Reads that decide access must
// not observe replica lag.
func Primary(db *gorm.DB) *gorm.DB {
	return db.Clauses(dbresolver.Write)
}

// Replica routes the query to read replicas when configured.
func Replica(db *gorm.DB) *gorm.DB {
	return db.Clauses(dbresolver.Read)
}
