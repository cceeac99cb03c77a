package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/patientor/patientor/internal/platform/auth"
)

func tokenCmd() *cobra.Command {
	var (
		subject string
		roles   []string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an HS256 API token signed with AUTH_SIGNING_KEY",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.AuthSigningKey == "" {
				return fmt.Errorf("AUTH_SIGNING_KEY is not set")
			}
			tok, err := auth.SignToken([]byte(cfg.AuthSigningKey), auth.TokenRequest{
				Issuer:   cfg.AuthIssuer,
				Audience: cfg.AuthAudience,
				Subject:  subject,
				Roles:    roles,
				TTL:      ttl,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "cli", "Token subject (user id)")
	cmd.Flags().StringSliceVar(&roles, "role", []string{auth.RoleRegistrar}, "Role to grant (repeatable)")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	return cmd
}
