package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/layerctl/internal/clock"
	"github.com/danieljhkim/layerctl/internal/docfile"
	"github.com/danieljhkim/layerctl/internal/fsops"
	"github.com/danieljhkim/layerctl/internal/hash"
)

func newNewCmd() *cobra.Command {
	var (
		name      string
		layerList []string
	)
	newCmd := &cobra.Command{
		Use:   "new <path>",
		Short: "Create a document snapshot for the file backend",
		Long: `Create a YAML document snapshot with flat layers, listed top to bottom.
The first layer becomes the active one. Existing files are never overwritten.

Example:
  layerctl new poster.yaml --layer Title --layer Background`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			}

			f := &docfile.File{Name: name}
			for _, l := range layerList {
				f.Layers = append(f.Layers, docfile.LayerSpec{Name: l})
			}
			if len(f.Layers) > 0 {
				f.Active = f.Layers[0].Name
			}

			store := docfile.NewStore(fsops.NewRealFS(), hash.NewSHA256Hasher(), &clock.RealClock{})
			if err := store.Create(path, f); err != nil {
				return err
			}

			if jsonOutput {
				return outputJSON(cmd.OutOrStdout(), map[string]any{"document": path, "layers": len(f.Layers)})
			}
			PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Created %s (%s)", path, PrintCount(len(f.Layers), "layer", "layers")))
			return nil
		},
	}
	newCmd.Flags().StringVar(&name, "name", "", "Document name (default: file name without extension)")
	newCmd.Flags().StringArrayVar(&layerList, "layer", []string{"Background"}, "Layer name, repeatable")
	return newCmd
}
