package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/layerctl/internal/config"
	"github.com/danieljhkim/layerctl/internal/fsops"
)

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the layerctl config file",
		Long: `Show or create the layerctl config file.

Settings are read from $LAYERCTL_ROOT/config.toml (default ~/.layerctl) and
can be overridden with LAYERCTL_* environment variables, for example
LAYERCTL_HOST_BACKEND=file, and with the global flags.`,
	}
	configCmd.AddCommand(newConfigShowCmd(), newConfigInitCmd())
	return configCmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if jsonOutput {
				return outputJSON(out, struct {
					Source string         `json:"source"`
					Config *config.Config `json:"config"`
				}{path, cfg})
			}

			data, err := config.Encode(cfg)
			if err != nil {
				return err
			}
			if path == "" {
				path = "defaults"
			}
			_, _ = dimColor.Fprintf(out, "# source: %s\n", path)
			_, err = fmt.Fprint(out, string(data))
			return err
		},
	}
}

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configFlag
			if path == "" {
				paths, err := config.DefaultPaths()
				if err != nil {
					return fmt.Errorf("failed to get config paths: %w", err)
				}
				path = paths.Config
			}

			if err := config.WriteDefault(fsops.NewRealFS(), path); err != nil {
				return err
			}
			if jsonOutput {
				return outputJSON(cmd.OutOrStdout(), map[string]string{"config": path})
			}
			PrintSuccess(cmd.OutOrStdout(), "Wrote "+path)
			return nil
		},
	}
}
