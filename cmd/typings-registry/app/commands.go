// Package app provides the command line interface of the typings registry indexer.
package app

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/typings-registry/internal/config"
	"github.com/stacklok/typings-registry/internal/versions"
)

// NewRootCmd creates a new root command for the indexer.
// Every call returns a fresh command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "typings-registry",
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		Short:             "Typings registry indexer",
		Long: `Typings registry indexer follows DefinitelyTyped and Typings registry repositories
and incrementally maintains a catalog of type definition packages in PostgreSQL.`,
		Run: func(cmd *cobra.Command, _ []string) {
			// If no subcommand is provided, print help
			if err := cmd.Help(); err != nil {
				slog.Error("Error displaying help", "error", err)
			}
		},
	}

	rootCmd.PersistentFlags().String("config", "",
		"Path to configuration file (YAML format), or "+config.EnvPrefix+"_CONFIG")

	rootCmd.AddCommand(newWorkerCmd())
	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newCursorCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// loadConfig reads the configuration named by the --config flag or the
// TYPINGS_REGISTRY_CONFIG environment variable
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v := viper.New()
	v.SetEnvPrefix(config.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlag("config", cmd.Flag("config")); err != nil {
		return nil, fmt.Errorf("failed to bind config flag: %w", err)
	}

	path := v.GetString("config")
	if path == "" {
		return nil, fmt.Errorf("a configuration file is required (--config or %s_CONFIG)", config.EnvPrefix)
	}

	cfg, err := config.LoadConfig(config.WithConfigPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	slog.Debug("Loaded configuration", "path", path, "repository_count", len(cfg.Repositories))
	return cfg, nil
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			for _, repo := range cfg.Repositories {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: %s from %s (pattern %s, start from %s)\n",
					repo.Name, repo.Format, repo.URL, repo.GetPattern(), repo.GetStartFrom())
				if err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := versions.GetBuildInfo()
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return fmt.Errorf("failed to get format flag: %w", err)
			}

			if format == "json" {
				output, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to format version info as JSON: %w", err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(output))
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "typings-registry %s (commit %s, built %s, %s, %s)\n",
				info.Version, info.Commit, info.BuildDate, info.GoVersion, info.Platform)
			return err
		},
	}
	cmd.Flags().String("format", "", "Output format (json)")
	return cmd
}
