package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/layerctl/internal/engine"
)

func newSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select <name>",
		Short: "Activate a layer by name",
		Long: `Activate the first layer, in traversal order, whose name matches
<name> ignoring case. Names containing spaces must be quoted.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.Join(args, " ")
			result, err := execAction(cmd, "select_layer", params{"target": target})
			if err != nil {
				return err
			}
			return reportActivation(cmd, result.(*engine.ActivateResult))
		},
	}
}

func newSelectIndexCmd() *cobra.Command {
	var from string
	selectIndexCmd := &cobra.Command{
		Use:   "select-index <n>",
		Short: "Activate the nth layer in traversal order",
		Long: `Activate the nth layer in traversal order, counting from 0.

Groups count as layers. Negative values count back from the last layer
(put them after "--", as in 'select-index -- -1'), and --from bottom counts
from the last layer with 0 being the last one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("%w: index must be an integer, got %q", engine.ErrValidation, args[0])
			}
			result, err := execAction(cmd, "select_layer_by_index", params{"index": n, "position": from})
			if err != nil {
				return err
			}
			return reportActivation(cmd, result.(*engine.ActivateResult))
		},
	}
	selectIndexCmd.Flags().StringVar(&from, "from", "top", "Count from the top or bottom")
	return selectIndexCmd
}

func reportActivation(cmd *cobra.Command, result *engine.ActivateResult) error {
	if jsonOutput {
		return outputJSON(cmd.OutOrStdout(), result)
	}
	PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Activated %q (index %d)", result.Name, result.Index))
	return nil
}

func newMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "move <up|down>",
		Short:     "Move the active layer one step in stacking order",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := execAction(cmd, "move_layer", params{"direction": args[0]})
			if err != nil {
				return err
			}
			move := result.(*engine.MoveResult)
			if jsonOutput {
				return outputJSON(cmd.OutOrStdout(), move)
			}
			PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Moved %q %s (%s %q)", move.Name, args[0], move.Placement, move.Reference))
			return nil
		},
	}
}

func newDuplicateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "duplicate",
		Short: "Duplicate the active layer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := execAction(cmd, "duplicate_layer", nil)
			if err != nil {
				return err
			}
			dup := result.(*engine.DuplicateResult)
			if jsonOutput {
				return outputJSON(cmd.OutOrStdout(), dup)
			}
			out := cmd.OutOrStdout()
			PrintSuccess(out, fmt.Sprintf("Duplicated %q as %q", dup.Source, dup.Name))
			if !dup.Activated {
				PrintWarning(out, "The duplicate could not be made the active layer")
			}
			return nil
		},
	}
}
