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
	"errors"
	"fmt"
	"time"

	"github.com/go-arcade/epcentra/pkg/http/jwt"
	"github.com/spf13/cobra"
)

// TokenCmd 为指定用户签发访问令牌，用于本地调试
func TokenCmd() *cobra.Command {
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			userId, _ := cmd.Flags().GetString("user")
			secret, _ := cmd.Flags().GetString("secret")
			expire, _ := cmd.Flags().GetDuration("expire")
			if secret == "" {
				return errors.New("secret is required")
			}

			aToken, rToken, err := jwt.GenToken(userId, []byte(secret), expire, 7*24*time.Hour)
			if err != nil {
				return fmt.Errorf("generate token failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "accessToken: %s\nrefreshToken: %s\n", aToken, rToken)
			return nil
		},
	}

	tokenCmd.Flags().StringP("user", "u", "", "user id (required)")
	tokenCmd.Flags().StringP("secret", "s", "", "signing secret, same as Http.Auth.SecretKey (required)")
	tokenCmd.Flags().Duration("expire", 24*time.Hour, "access token lifetime")
	cobra.CheckErr(tokenCmd.MarkFlagRequired("user"))
	cobra.CheckErr(tokenCmd.MarkFlagRequired("secret"))
	return tokenCmd
}
