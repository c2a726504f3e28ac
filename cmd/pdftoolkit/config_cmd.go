package main

import (
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

const redacted = "******"

func newConfigCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "配置相关命令",
	}

	var showSecrets bool
	show := &cobra.Command{
		Use:   "show",
		Short: "以YAML格式输出生效的配置",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if !showSecrets {
				cfg.Auth.JWTSecret = redacted
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return err
			}
			return enc.Close()
		},
	}
	show.Flags().BoolVar(&showSecrets, "show-secrets", false, "输出密钥明文")

	cmd.AddCommand(show)
	return cmd
}
