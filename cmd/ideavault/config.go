package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"ideavault/internal/app"
	"ideavault/internal/config"
)

const redacted = "********"

func configCmd() *cobra.Command {
	cfg := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create ideavault.yml",
		Long:  "Config holds the API address, server settings, planner endpoint, assist defaults, sign-in credentials and logging. Missing keys keep their defaults.",
	}
	cfg.AddCommand(configShowCmd())
	cfg.AddCommand(configInitCmd())
	return cfg
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the resolved config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.ResolveConfig(workspaceOptions())
			if err != nil {
				return err
			}
			shown := *cfg
			if shown.Auth.Password != "" {
				shown.Auth.Password = redacted
			}
			if shown.Server.JWTSecret != "" {
				shown.Server.JWTSecret = redacted
			}
			if viper.GetBool("json") {
				return printJSON(shown)
			}
			enc := yaml.NewEncoder(os.Stdout)
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(shown)
		},
	}
}

func configInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default ideavault.yml into the workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path(viper.GetString("workspace"))
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault()), 0o600); err != nil {
				return err
			}
			fmt.Println("Wrote", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}
