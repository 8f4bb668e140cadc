package cli

import (
	"fmt"
	"time"

	transport "ecolearn-challenge-service/internal/transport/http"
	"github.com/spf13/cobra"
)

// NewTokenCmd signs a bearer token for local testing.
func NewTokenCmd(configPath *string) *cobra.Command {
	var (
		userID string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a development bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return fmt.Errorf("auth.jwt_secret not configured")
			}
			token, err := transport.NewAuthenticator(cfg.Auth.JWTSecret).Issue(userID, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id to embed in the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
