package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/weiwangfds/pdftoolkit/internal/auth"
)

// newTokenCmd 签发开发用的访问令牌
func newTokenCmd(root *rootOptions) *cobra.Command {
	var (
		principal string
		ttl       time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "签发访问令牌",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("ttl") {
				ttl = cfg.Auth.TokenTTL
			}
			token, err := auth.GenerateToken(principal, []byte(cfg.Auth.JWTSecret), ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVarP(&principal, "principal", "p", "", "令牌所属身份")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "有效期，默认使用 auth.token_ttl")
	_ = cmd.MarkFlagRequired("principal")
	return cmd
}
