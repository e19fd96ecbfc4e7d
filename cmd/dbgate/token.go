package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/israelbalog04/acer-music-sub000/config"
	"github.com/israelbalog04/acer-music-sub000/health"
)

var (
	tokenSubject string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for the /debug/pool endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.FromEnv(cmd.Context())
		if err != nil {
			return err
		}
		if cfg.DiagJWTSecret == "" {
			return fmt.Errorf("%w: %s", config.ErrMissingVariable, config.EnvDiagJWTSecret)
		}
		token, err := health.IssueToken([]byte(cfg.DiagJWTSecret), tokenSubject, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "operator", "token subject")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "token lifetime")
}
