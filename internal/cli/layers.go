package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/layerctl/internal/engine"
)

// activeMarker flags the active layer in listings.
const activeMarker = "*"

func newLayersCmd() *cobra.Command {
	layersCmd := &cobra.Command{
		Use:   "layers",
		Short: "Inspect the layers of the document",
		Long: `Inspect the layers of the document.

Index is the traversal index used by 'select-index'. Stack is the position
Photoshop reports for the layer, which moves follow.`,
	}
	layersCmd.AddCommand(newLayersLsCmd(), newLayersTreeCmd(), newLayersActiveCmd())
	return layersCmd
}

func newLayersLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List layers in traversal order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := listLayers(cmd)
			if err != nil {
				return err
			}
			if jsonOutput {
				return outputJSON(cmd.OutOrStdout(), list)
			}

			out := cmd.OutOrStdout()
			PrintSection(out, fmt.Sprintf("%s (%s)", list.Document, PrintCount(len(list.Layers), "layer", "layers")))
			if len(list.Layers) == 0 {
				PrintEmptyState(out, "No layers")
				return nil
			}

			rows := make([][]string, 0, len(list.Layers))
			for _, l := range list.Layers {
				marker := ""
				if l.Active {
					marker = activeMarker
				}
				name := strings.Repeat("  ", l.Depth) + l.Name
				if l.IsGroup {
					name += "/"
				}
				visible := "yes"
				if !l.Visible {
					visible = "no"
				}
				rows = append(rows, []string{marker, strconv.Itoa(int(l.Index)), stackLabel(l.Stack), name, l.Kind, visible})
			}
			PrintTable(out, []string{" ", "INDEX", "STACK", "NAME", "KIND", "VISIBLE"}, rows)
			return nil
		},
	}
}

func newLayersTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Show the layer tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := listLayers(cmd)
			if err != nil {
				return err
			}
			if jsonOutput {
				return outputJSON(cmd.OutOrStdout(), list)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), renderTree(list))
			return err
		},
	}
}

func newLayersActiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "active",
		Short: "Show the active layer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			active, err := sess.engine.ActiveLayer(context.Background())
			if err != nil {
				return err
			}
			if jsonOutput {
				return outputJSON(cmd.OutOrStdout(), active)
			}

			out := cmd.OutOrStdout()
			PrintLabelValue(out, "Active layer", active.Name)
			index := "not in layer tree"
			if active.Index >= 0 {
				index = strconv.Itoa(int(active.Index))
			}
			PrintLabelValue(out, "Index", index)
			PrintLabelValue(out, "Stack", stackLabel(active.Stack))
			return nil
		},
	}
}

func listLayers(cmd *cobra.Command) (*engine.ListLayersResult, error) {
	sess, err := openSession(cmd)
	if err != nil {
		return nil, err
	}
	defer sess.Close()
	return sess.engine.ListLayers(context.Background())
}
