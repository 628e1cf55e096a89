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
	"fmt"

	"github.com/go-arcade/epcentra/internal/pkg/rbac"
	"github.com/spf13/cobra"
)

type checkOptions struct {
	userId      string
	role        string
	status      string
	memberTeams []string
	resource    string
	action      string
	creatorId   string
	teamIds     []string
	withTeams   bool
}

// CheckCmd 离线评估一次权限检查，不访问数据库
func CheckCmd() *cobra.Command {
	opts := &checkOptions{}
	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Evaluate a permission check against the system catalog",
		Long:  "Evaluate a permission check for a member with a system role, e.g. check --role manager --member-teams t1 --resource project --action update --teams t1",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.withTeams = cmd.Flags().Changed("teams")
			decision, err := runCheck(rbac.NewEngine(rbac.NewSystemCatalog()), opts)
			if err != nil {
				return err
			}
			result := "DENY"
			if decision.Allowed {
				result = "ALLOW"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", result, decision.Reason)
			if decision.Grant != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "grant: %s %v scope=%q\n", decision.Grant.Resource, decision.Grant.Actions, decision.Grant.Scope)
			}
			return nil
		},
	}

	flags := checkCmd.Flags()
	flags.StringVarP(&opts.userId, "user", "u", "cli-user", "member user id")
	flags.StringVarP(&opts.role, "role", "r", "", "member system role (required)")
	flags.StringVar(&opts.status, "status", string(rbac.MemberStatusActive), "member status: active, invited or suspended")
	flags.StringSliceVar(&opts.memberTeams, "member-teams", nil, "teams the member belongs to")
	flags.StringVar(&opts.resource, "resource", "", "resource to check (required)")
	flags.StringVar(&opts.action, "action", "", "action to check (required)")
	flags.StringVar(&opts.creatorId, "creator", "", "creator of the target record")
	flags.StringSliceVar(&opts.teamIds, "teams", nil, "teams of the target record")
	for _, name := range []string{"role", "resource", "action"} {
		cobra.CheckErr(checkCmd.MarkFlagRequired(name))
	}
	return checkCmd
}

func runCheck(engine *rbac.Engine, opts *checkOptions) (rbac.Decision, error) {
	resource, err := rbac.ParseResource(opts.resource)
	if err != nil {
		return rbac.Decision{}, err
	}
	action, err := rbac.ParseAction(opts.action)
	if err != nil {
		return rbac.Decision{}, err
	}
	status := rbac.MemberStatus(opts.status)
	if !status.Valid() {
		return rbac.Decision{}, fmt.Errorf("%w: unknown status %q", rbac.ErrInvalidInput, opts.status)
	}

	member := &rbac.Member{
		UserId: opts.userId,
		Role:   opts.role,
		Teams:  opts.memberTeams,
		Status: status,
	}

	var ac *rbac.AuthContext
	if opts.creatorId != "" || opts.withTeams {
		ac = &rbac.AuthContext{CreatorId: opts.creatorId}
		if opts.withTeams {
			ac.TeamIds = append([]string{}, opts.teamIds...)
		}
	}
	return engine.Evaluate(member, resource, action, ac)
}
