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

package repo

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-arcade/epcentra/internal/engine/model"
	"github.com/go-arcade/epcentra/internal/pkg/rbac"
	"github.com/go-arcade/epcentra/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (database.IDatabase, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), database.GormConfig(false))
	require.NoError(t, err)
	return database.NewGormDB(db), mock
}

func q(s string) string {
	return regexp.QuoteMeta(s)
}

func TestOrganizationMemberRepo_GetMember(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewOrganizationMemberRepo(db)

	rows := sqlmock.NewRows([]string{"id", "org_id", "user_id", "role", "teams", "status", "permissions"}).
		AddRow(1, "o1", "u1", rbac.RoleManager, `["t1"]`, "active", `[]`)
	mock.ExpectQuery(q("SELECT * FROM `t_organization_member` WHERE org_id = ? AND user_id = ?")).
		WillReturnRows(rows)

	m, err := r.GetMember(context.Background(), "o1", "u1")
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleManager, m.Role)
	assert.Equal(t, []string{"t1"}, m.TeamIds())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrganizationMemberRepo_GetMemberNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewOrganizationMemberRepo(db)

	mock.ExpectQuery(q("SELECT * FROM `t_organization_member`")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := r.GetMember(context.Background(), "o1", "nobody")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOrganizationMemberRepo_ListUserIdsByRole(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewOrganizationMemberRepo(db)

	mock.ExpectQuery(q("SELECT `user_id` FROM `t_organization_member` WHERE org_id = ? AND role = ?")).
		WithArgs("o1", "r1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("u1").AddRow("u2"))

	ids, err := r.ListUserIdsByRole(context.Background(), "o1", "r1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrganizationRepo_CreateWithOwner(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewOrganizationRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(q("INSERT INTO `t_organization`")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(q("INSERT INTO `t_organization_member`")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	org := &model.Organization{OrgId: "o1", Name: "Acme", Slug: "acme", CreatedBy: "u1"}
	owner := &model.OrganizationMember{OrgId: "o1", UserId: "u1", Role: rbac.RoleOwner, Status: "active"}
	require.NoError(t, r.CreateWithOwner(context.Background(), org, owner))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrganizationRepo_CreateWithOwnerRollback(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewOrganizationRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(q("INSERT INTO `t_organization`")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(q("INSERT INTO `t_organization_member`")).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := r.CreateWithOwner(context.Background(), &model.Organization{OrgId: "o1"}, &model.OrganizationMember{OrgId: "o1"})
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrganizationRepo_DeleteOrganization(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewOrganizationRepo(db)

	mock.ExpectBegin()
	for _, table := range []string{
		"t_task_comment", "t_task", "t_milestone", "t_roadmap_phase", "t_project",
		"t_team", "t_role", "t_organization_member", "t_organization",
	} {
		mock.ExpectExec(q("DELETE FROM `" + table + "` WHERE org_id = ?")).
			WithArgs("o1").
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	require.NoError(t, r.DeleteOrganization(context.Background(), "o1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamRepo_CountTeams(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewTeamRepo(db)

	n, err := r.CountTeams(context.Background(), "o1", nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	mock.ExpectQuery(q("SELECT count(*) FROM `t_team` WHERE org_id = ? AND team_id IN (?,?)")).
		WithArgs("o1", "t1", "t2").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	n, err = r.CountTeams(context.Background(), "o1", []string{"t1", "t2"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleRepo_CheckRoleNameExists(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewRoleRepo(db)

	mock.ExpectQuery(q("SELECT count(*) FROM `t_role` WHERE (org_id = ? AND name = ?) AND role_id != ?")).
		WithArgs("o1", "reviewer", "r1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	exists, err := r.CheckRoleNameExists(context.Background(), "o1", "reviewer", "r1")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepo_UpdateTask(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewTaskRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(q("UPDATE `t_task` SET")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := r.UpdateTask(context.Background(), "o1", "task1", map[string]any{"assigned_to": "u2"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPhaseRepo_ListPhases(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewPhaseRepo(db)

	rows := sqlmock.NewRows([]string{"id", "phase_id", "org_id", "name", "start_week", "end_week", "order_index"}).
		AddRow(1, "ph1", "o1", "Discovery", 1, 4, 0).
		AddRow(2, "ph2", "o1", "Build", nil, nil, 1)
	mock.ExpectQuery(q("SELECT * FROM `t_roadmap_phase` WHERE org_id = ?")).
		WithArgs("o1").
		WillReturnRows(rows)

	phases, err := r.ListPhases(context.Background(), "o1")
	require.NoError(t, err)
	require.Len(t, phases, 2)
	require.NotNil(t, phases[0].EndWeek)
	assert.Equal(t, 4, *phases[0].EndWeek)
	assert.Nil(t, phases[1].StartWeek)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPhaseRepo_DeletePhaseDetachesMilestones(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewPhaseRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(q("UPDATE `t_milestone` SET `phase_id`=?")).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(q("DELETE FROM `t_roadmap_phase` WHERE org_id = ? AND phase_id = ?")).
		WithArgs("o1", "ph1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, r.DeletePhase(context.Background(), "o1", "ph1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
