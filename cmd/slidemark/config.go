package main

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/fredcamaral/slidemark/internal/adapters/secondary/config"
	"github.com/fredcamaral/slidemark/internal/domain/ports"
	"github.com/fredcamaral/slidemark/internal/domain/services"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage slidemark configuration",
	}

	cmd.AddCommand(newConfigInitCmd(), newConfigShowCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with the default settings",
		Long: `Write the default settings as TOML. Without --local the global file is
written; with --local a slidemark.toml is created in the current directory.

Example:
  slidemark config init
  slidemark config init --local --force`,
		Args: cobra.NoArgs,
		RunE: runConfigInit,
	}

	cmd.Flags().Bool("local", false, "Write ./"+config.LocalConfigName+" instead of the global file")
	cmd.Flags().Bool("force", false, "Overwrite an existing file")

	return cmd
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	scope := ports.GlobalScope
	if local, _ := cmd.Flags().GetBool("local"); local {
		scope = ports.LocalScope
	}
	force, _ := cmd.Flags().GetBool("force")

	configService := services.NewConfigService(newConfigLoader(cmd), config.NewConfigMerger())
	path, err := configService.InitConfig(cmd.Context(), scope, ".", force)
	if errors.Is(err, ports.ErrConfigExists) {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [dir]",
		Short: "Print the effective configuration for a directory",
		Long: `Print the configuration commands would use for decks in dir (default:
the current directory): defaults, then the global file, the local
slidemark.toml and SLIDEMARK_* environment variables.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runConfigShow,
	}
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	configService := services.NewConfigService(newConfigLoader(cmd), config.NewConfigMerger())
	cfg, err := configService.LoadConfig(cmd.Context(), dir, changedFlags(cmd))
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	encoder := toml.NewEncoder(cmd.OutOrStdout())
	encoder.Indent = "  "
	return encoder.Encode(cfg)
}
