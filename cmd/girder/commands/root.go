package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/girderweb/girder/config"
)

var rootCmd *cobra.Command

func Execute(version string) error {
	rootCmd = &cobra.Command{
		Use:   "girder",
		Short: "Girder - container-backed action dispatch for Go",
		Long: `Girder bridges a path-mapped action dispatch engine with an
application-wide component registry: actions are resolved out of the
registry by derived bean name, with the engine's classic instantiation
as fallback.

This CLI provides a development runner and configuration checks for
girder-based servers.`,
		Version: version,
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newDevCmd())
	rootCmd.AddCommand(newCheckCmd())

	return rootCmd.Execute()
}

func newCheckCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a girder configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := config.NewBofryLoader().WithYAMLFile(configPath)
			cfg := &config.Config{}
			if err := loader.Load(cfg); err != nil {
				return err
			}

			fmt.Printf("Configuration OK: %d module(s)\n", len(cfg.Modules))
			for _, mod := range cfg.Modules {
				prefix := mod.Prefix
				if prefix == "" {
					prefix = "(default)"
				}
				fmt.Printf("  %s: %d mapping(s)\n", prefix, len(mod.Mappings))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "configuration file")

	return cmd
}

func newDevCmd() *cobra.Command {
	var configPath string
	var port string
	var target string

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Run a girder server with automatic rebuild on change",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDevServer(configPath, port, target)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "configuration file passed to the server")
	cmd.Flags().StringVarP(&port, "port", "p", "8080", "port the server listens on")
	cmd.Flags().StringVarP(&target, "target", "t", "./cmd/server", "package to build and run")

	return cmd
}
