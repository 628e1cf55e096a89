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

	"github.com/bytedance/sonic"
	"github.com/go-arcade/epcentra/internal/pkg/rbac"
	"github.com/spf13/cobra"
)

// RolesCmd 打印系统角色目录
func RolesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roles [role]",
		Short: "Print the system role catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := rbac.NewSystemCatalog()
			out, err := catalogJSON(catalog, args)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}

func catalogJSON(catalog *rbac.Catalog, args []string) ([]byte, error) {
	if len(args) == 1 {
		if !catalog.Has(args[0]) {
			return nil, fmt.Errorf("unknown role %q", args[0])
		}
		return sonic.ConfigStd.MarshalIndent(catalog.PermissionsForRole(args[0]), "", "  ")
	}

	type roleEntry struct {
		Role        string            `json:"role"`
		Permissions []rbac.Permission `json:"permissions"`
	}
	entries := make([]roleEntry, 0, len(catalog.Roles()))
	for _, role := range catalog.Roles() {
		entries = append(entries, roleEntry{Role: role, Permissions: catalog.PermissionsForRole(role)})
	}
	return sonic.ConfigStd.MarshalIndent(entries, "", "  ")
}
