package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/layerctl/internal/actions"
)

// params is the parameter object of an action.
type params map[string]any

// execAction runs a registered action against the configured backend and
// saves the document afterwards when the action can change it.
func execAction(cmd *cobra.Command, name string, p params) (any, error) {
	var raw json.RawMessage
	if p != nil {
		data, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", actions.ErrInvalidParams, err)
		}
		raw = data
	}
	return execRaw(cmd, name, raw)
}

func execRaw(cmd *cobra.Command, name string, raw json.RawMessage) (any, error) {
	action, ok := actions.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q (see 'layerctl actions')", actions.ErrUnknownAction, name)
	}

	sess, err := openSession(cmd)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	result, err := action.Run(context.Background(), sess.engine, raw)
	if err != nil {
		return nil, err
	}
	if action.Mutates {
		if err := sess.commit(); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <action> [params-json|-]",
		Short: "Run a named action with JSON parameters",
		Long: `Run a named action with JSON parameters and print its JSON result.

Parameters are a JSON object given as the second argument, or read from
stdin when it is "-". Unknown fields are rejected. On failure a JSON object
{"ok": false, "error": ..., "code": ...} is printed and the exit status is 1.

Example:
  layerctl run select_layer_by_index '{"index": 0, "position": "bottom"}'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw json.RawMessage
			if len(args) == 2 {
				raw = json.RawMessage(args[1])
				if strings.TrimSpace(args[1]) == "-" {
					data, err := io.ReadAll(cmd.InOrStdin())
					if err != nil {
						return fmt.Errorf("failed to read parameters: %w", err)
					}
					raw = data
				}
			}

			out := cmd.OutOrStdout()
			result, err := execRaw(cmd, args[0], raw)
			if err != nil {
				_ = outputJSON(out, actions.NewFailure(err))
				return fmt.Errorf("%w: %w", errReported, err)
			}
			return outputJSON(out, result)
		},
	}
}

func newActionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "actions",
		Short: "List the actions available to 'run'",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all := actions.List()
			out := cmd.OutOrStdout()

			if jsonOutput {
				type entry struct {
					Name    string          `json:"name"`
					Summary string          `json:"summary"`
					Params  json.RawMessage `json:"params"`
					Mutates bool            `json:"mutates"`
				}
				entries := make([]entry, 0, len(all))
				for _, a := range all {
					entries = append(entries, entry{a.Name, a.Summary, json.RawMessage(a.Params), a.Mutates})
				}
				return outputJSON(out, entries)
			}

			rows := make([][]string, 0, len(all))
			for _, a := range all {
				rows = append(rows, []string{a.Name, a.Params, a.Summary})
			}
			PrintTable(out, []string{"ACTION", "PARAMS", "DESCRIPTION"}, rows)
			return nil
		},
	}
}
