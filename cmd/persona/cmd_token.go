package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"persona-llm/internal/config"
	"persona-llm/internal/service"
)

var tokenSubject string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API access token signed with JWT_SECRET",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Parse()
		if err != nil {
			return err
		}
		jwtSvc := service.NewJWTService(cfg.JWTSecret, time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute)
		if !jwtSvc.Enabled() {
			return errors.New("JWT_SECRET is not set")
		}
		token, err := jwtSvc.IssueAccessToken(tokenSubject)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token.Token)
		fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", token.ExpiresAt.Format(time.RFC3339))
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "", "Token subject, e.g. the client name (required)")
	tokenCmd.MarkFlagRequired("subject")
}
