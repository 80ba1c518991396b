package main

import (
	"fmt"

	"github.com/phrazzld/genflow/internal/service/auth"
	"github.com/spf13/cobra"
)

func newTokenCmd(c *cli) *cobra.Command {
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Manage execution context tokens",
	}

	issueCmd := &cobra.Command{
		Use:   "issue [context-id]",
		Short: "Issue a bearer token for an execution context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jwtService, err := auth.NewJWTService(c.cfg.Auth)
			if err != nil {
				return fmt.Errorf("failed to initialize JWT service: %w", err)
			}
			token, err := jwtService.GenerateToken(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to issue token: %w", err)
			}
			c.logger.Debug("issued context token", "context_id", args[0])
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	tokenCmd.AddCommand(issueCmd)
	return tokenCmd
}
