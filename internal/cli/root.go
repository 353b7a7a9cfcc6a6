package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/danieljhkim/layerctl/internal/actions"
)

var (
	// Global flags
	jsonOutput   bool
	backendFlag  string
	documentFlag string
	logLevelFlag string
	configFlag   string

	version = "dev"

	// Colors for help output sections
	groupTitleColor   = color.New(color.FgCyan, color.Bold)
	sectionTitleColor = color.New(color.FgBlue, color.Bold)
)

const (
	groupInspect    = "inspect"
	groupNavigate   = "navigate"
	groupAutomation = "automation"
	groupTooling    = "cli-tooling"
)

// SetVersion sets the version reported by the CLI.
func SetVersion(v string) {
	if v == "" {
		return
	}
	version = v
}

// customHelpFunc returns a custom help function that colors group titles
func customHelpFunc(cmd *cobra.Command, args []string) {
	var help strings.Builder

	if cmd.Long != "" {
		help.WriteString(cmd.Long)
		help.WriteString("\n\n")
	} else if cmd.Short != "" {
		help.WriteString(cmd.Short)
		help.WriteString("\n\n")
	}

	help.WriteString(sectionTitleColor.Sprint("Usage:"))
	help.WriteString("\n")
	fmt.Fprintf(&help, "  %s\n\n", cmd.UseLine())

	for _, group := range cmd.Groups() {
		help.WriteString(groupTitleColor.Sprint(group.Title))
		help.WriteString("\n")

		for _, c := range cmd.Commands() {
			if c.GroupID == group.ID && !c.Hidden {
				fmt.Fprintf(&help, "  %-13s %s\n", c.Name(), c.Short)
			}
		}
		help.WriteString("\n")
	}

	// Ungrouped commands, which is every subcommand below the root
	hasUngrouped := false
	for _, c := range cmd.Commands() {
		if c.GroupID == "" && !c.Hidden {
			if !hasUngrouped {
				help.WriteString(sectionTitleColor.Sprint("Commands:"))
				help.WriteString("\n")
				hasUngrouped = true
			}
			fmt.Fprintf(&help, "  %-13s %s\n", c.Name(), c.Short)
		}
	}
	if hasUngrouped {
		help.WriteString("\n")
	}

	if cmd.HasAvailableLocalFlags() || cmd.HasAvailablePersistentFlags() {
		help.WriteString(sectionTitleColor.Sprint("Flags:"))
		help.WriteString("\n")
		help.WriteString(cmd.LocalFlags().FlagUsages())
		help.WriteString(cmd.InheritedFlags().FlagUsages())
		help.WriteString("\n")
	}

	fmt.Fprintf(&help, "Use \"%s [command] --help\" for more information about a command.\n", cmd.CommandPath())

	fmt.Fprint(cmd.OutOrStdout(), help.String())
}

// newRootCmd builds the layerctl command tree.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "layerctl",
		Version: version,
		Short:   "Layer navigation for Photoshop documents",
		Long: `layerctl lists, selects, reorders and duplicates the layers of the open
Photoshop document, or of a YAML document snapshot when Photoshop is not
available.

Layers are addressed in traversal order (top to bottom, groups before their
contents). Moves follow Photoshop's own stacking order.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.SetHelpFunc(customHelpFunc)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	flags.StringVar(&backendFlag, "backend", "", "Host backend: photoshop or file")
	flags.StringVarP(&documentFlag, "document", "d", "", "Document snapshot used by the file backend")
	flags.StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn or error")
	flags.StringVar(&configFlag, "config", "", "Config file (default $LAYERCTL_ROOT/config.toml)")

	rootCmd.AddGroup(
		&cobra.Group{ID: groupInspect, Title: "Inspection:"},
		&cobra.Group{ID: groupNavigate, Title: "Navigation:"},
		&cobra.Group{ID: groupAutomation, Title: "Automation:"},
		&cobra.Group{ID: groupTooling, Title: "CLI & Tooling:"},
	)

	add := func(group string, cmds ...*cobra.Command) {
		for _, c := range cmds {
			c.GroupID = group
			rootCmd.AddCommand(c)
		}
	}
	add(groupInspect, newLayersCmd())
	add(groupNavigate, newSelectCmd(), newSelectIndexCmd(), newMoveCmd(), newDuplicateCmd())
	add(groupAutomation, newRunCmd(), newActionsCmd())
	add(groupTooling, newNewCmd(), newConfigCmd(), newVersionCmd(), newCompletionCmd(rootCmd))

	helpCmd := &cobra.Command{
		Use:     "help [command]",
		Short:   "Help about any command",
		GroupID: groupTooling,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, _, err := cmd.Root().Find(args)
			if err != nil || target == nil {
				target = cmd.Root()
			}
			return target.Help()
		},
	}
	rootCmd.SetHelpCommand(helpCmd)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the layerctl version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

func newCompletionCmd(rootCmd *cobra.Command) *cobra.Command {
	completionCmd := &cobra.Command{
		Use:   "completion",
		Short: "Generate the autocompletion script for the specified shell",
		Long: `Generate the autocompletion script for layerctl for the specified shell.
See each sub-command's help for details on how to use the generated script.`,
	}
	completionCmd.AddCommand(&cobra.Command{
		Use:                   "bash",
		Short:                 "Generate the autocompletion script for bash",
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootCmd.GenBashCompletion(cmd.OutOrStdout())
		},
	})
	completionCmd.AddCommand(&cobra.Command{
		Use:                   "zsh",
		Short:                 "Generate the autocompletion script for zsh",
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootCmd.GenZshCompletion(cmd.OutOrStdout())
		},
	})
	completionCmd.AddCommand(&cobra.Command{
		Use:                   "fish",
		Short:                 "Generate the autocompletion script for fish",
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootCmd.GenFishCompletion(cmd.OutOrStdout(), true)
		},
	})
	completionCmd.AddCommand(&cobra.Command{
		Use:                   "powershell",
		Short:                 "Generate the autocompletion script for powershell",
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootCmd.GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
		},
	})
	return completionCmd
}

// execute runs root. With --json, failures are written to stdout as a
// failure object and reported.
func execute(root *cobra.Command) error {
	err := root.Execute()
	if err == nil || Reported(err) {
		return err
	}
	if jsonOutput {
		_ = outputJSON(root.OutOrStdout(), actions.NewFailure(err))
		return fmt.Errorf("%w: %w", errReported, err)
	}
	return err
}

// Execute executes the root command.
func Execute() error {
	return execute(newRootCmd())
}
