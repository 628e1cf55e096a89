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

package main

import (
	"bytes"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/epcentra/internal/pkg/rbac"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCheck(t *testing.T) {
	engine := rbac.NewEngine(rbac.NewSystemCatalog())

	tests := []struct {
		name    string
		opts    checkOptions
		allowed bool
		reason  string
	}{
		{
			name:    "manager in team",
			opts:    checkOptions{role: "manager", status: "active", memberTeams: []string{"t1"}, resource: "project", action: "update", teamIds: []string{"t1"}, withTeams: true},
			allowed: true,
			reason:  rbac.ReasonGranted,
		},
		{
			name:   "manager without context",
			opts:   checkOptions{role: "manager", status: "active", memberTeams: []string{"t1"}, resource: "project", action: "update"},
			reason: rbac.ReasonMissingContext,
		},
		{
			name:   "suspended owner",
			opts:   checkOptions{role: "owner", status: "suspended", resource: "organization", action: "delete"},
			reason: rbac.ReasonInactive,
		},
		{
			name:    "member deletes own task",
			opts:    checkOptions{userId: "u1", role: "member", status: "active", resource: "task", action: "delete", creatorId: "u1"},
			allowed: true,
			reason:  rbac.ReasonGranted,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := runCheck(engine, &tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.allowed, d.Allowed)
			assert.Equal(t, tt.reason, d.Reason)
		})
	}
}

func TestRunCheck_InvalidInput(t *testing.T) {
	engine := rbac.NewEngine(rbac.NewSystemCatalog())

	_, err := runCheck(engine, &checkOptions{role: "owner", status: "active", resource: "invoice", action: "read"})
	assert.ErrorIs(t, err, rbac.ErrInvalidInput)

	_, err = runCheck(engine, &checkOptions{role: "owner", status: "gone", resource: "task", action: "read"})
	assert.ErrorIs(t, err, rbac.ErrInvalidInput)
}

func TestCatalogJSON(t *testing.T) {
	catalog := rbac.NewSystemCatalog()

	out, err := catalogJSON(catalog, nil)
	require.NoError(t, err)
	var entries []struct {
		Role string `json:"role"`
	}
	require.NoError(t, sonic.Unmarshal(out, &entries))
	require.Len(t, entries, 5)
	assert.Equal(t, "owner", entries[0].Role)
	assert.Equal(t, "guest", entries[4].Role)

	_, err = catalogJSON(catalog, []string{"superuser"})
	assert.Error(t, err)
}

func TestTokenCmd(t *testing.T) {
	cmd := TokenCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--user", "u1", "--secret", "k"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "accessToken: ")
}

func TestCommands_RequiredFlags(t *testing.T) {
	tests := []struct {
		name     string
		cmd      func() *cobra.Command
		required []string
	}{
		{"check", CheckCmd, []string{"role", "resource", "action"}},
		{"token", TokenCmd, []string{"user", "secret"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := tt.cmd()
			require.NotNil(t, cmd)
			for _, name := range tt.required {
				f := cmd.Flags().Lookup(name)
				require.NotNil(t, f, name)
				assert.Equal(t, []string{"true"}, f.Annotations[cobra.BashCompOneRequiredFlag], name)
			}

			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs([]string{})
			assert.ErrorContains(t, cmd.Execute(), "required flag")
		})
	}
}
