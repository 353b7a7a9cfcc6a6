// Package actions exposes the engine as named actions that take JSON
// parameters and produce JSON-encodable results. It is the surface scripts
// and other tools drive layerctl through.
package actions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/danieljhkim/layerctl/internal/engine"
)

var (
	// ErrUnknownAction is returned for names not in the registry.
	ErrUnknownAction = errors.New("unknown action")

	// ErrInvalidParams is returned when parameters fail to decode or validate.
	ErrInvalidParams = errors.New("invalid parameters")
)

// Navigator is the set of engine operations actions dispatch to.
type Navigator interface {
	ListLayers(ctx context.Context) (*engine.ListLayersResult, error)
	ActiveLayer(ctx context.Context) (*engine.ActiveLayerResult, error)
	ActivateByName(ctx context.Context, req *engine.ActivateByNameRequest) (*engine.ActivateResult, error)
	ActivateByIndex(ctx context.Context, req *engine.ActivateByIndexRequest) (*engine.ActivateResult, error)
	MoveActiveLayer(ctx context.Context, req *engine.MoveRequest) (*engine.MoveResult, error)
	DuplicateActiveLayer(ctx context.Context) (*engine.DuplicateResult, error)
}

var _ Navigator = (*engine.Engine)(nil)

// Handler runs an action with its raw parameters.
type Handler func(ctx context.Context, nav Navigator, raw json.RawMessage) (any, error)

// Action is a registered action.
type Action struct {
	Name    string
	Summary string
	// Params is an example parameter object.
	Params string
	// Mutates reports whether the action can change the document.
	Mutates bool

	run Handler
}

// Run decodes raw and executes the action.
func (a Action) Run(ctx context.Context, nav Navigator, raw json.RawMessage) (any, error) {
	return a.run(ctx, nav, raw)
}

var registry = map[string]Action{
	"list_layers": {
		Summary: "List every layer and group in traversal order",
		Params:  `{}`,
		run: func(ctx context.Context, nav Navigator, raw json.RawMessage) (any, error) {
			if err := decodeParams(raw, &struct{}{}); err != nil {
				return nil, err
			}
			return nav.ListLayers(ctx)
		},
	},
	"active_layer": {
		Summary: "Show the active layer",
		Params:  `{}`,
		run: func(ctx context.Context, nav Navigator, raw json.RawMessage) (any, error) {
			if err := decodeParams(raw, &struct{}{}); err != nil {
				return nil, err
			}
			return nav.ActiveLayer(ctx)
		},
	},
	"select_layer": {
		Summary: "Activate the first layer whose name matches target, ignoring case",
		Params:  `{"target": "Title"}`,
		Mutates: true,
		run: func(ctx context.Context, nav Navigator, raw json.RawMessage) (any, error) {
			var p selectLayerParams
			if err := decodeParams(raw, &p); err != nil {
				return nil, err
			}
			if strings.TrimSpace(p.Target) == "" {
				return nil, fmt.Errorf("%w: target is required", ErrInvalidParams)
			}
			return nav.ActivateByName(ctx, &engine.ActivateByNameRequest{Target: p.Target})
		},
	},
	"select_layer_by_index": {
		Summary: "Activate the nth layer in traversal order, counted from the top or bottom",
		Params:  `{"index": 0, "position": "top"}`,
		Mutates: true,
		run: func(ctx context.Context, nav Navigator, raw json.RawMessage) (any, error) {
			var p selectIndexParams
			if err := decodeParams(raw, &p); err != nil {
				return nil, err
			}
			index, err := p.resolve()
			if err != nil {
				return nil, err
			}
			return nav.ActivateByIndex(ctx, &engine.ActivateByIndexRequest{Index: index})
		},
	},
	"move_layer": {
		Summary: "Move the active layer one step up or down in stacking order",
		Params:  `{"direction": "up"}`,
		Mutates: true,
		run: func(ctx context.Context, nav Navigator, raw json.RawMessage) (any, error) {
			var p moveParams
			if err := decodeParams(raw, &p); err != nil {
				return nil, err
			}
			dir, err := ParseDirection(p.Direction)
			if err != nil {
				return nil, err
			}
			return nav.MoveActiveLayer(ctx, &engine.MoveRequest{Delta: dir})
		},
	},
	"duplicate_layer": {
		Summary: "Duplicate the active layer and activate the copy",
		Params:  `{}`,
		Mutates: true,
		run: func(ctx context.Context, nav Navigator, raw json.RawMessage) (any, error) {
			if err := decodeParams(raw, &struct{}{}); err != nil {
				return nil, err
			}
			return nav.DuplicateActiveLayer(ctx)
		},
	},
}

type selectLayerParams struct {
	Target string `json:"target"`
}

type selectIndexParams struct {
	Index    *int   `json:"index"`
	Position string `json:"position"`
}

// resolve maps the request to a traversal index. Counting from the bottom
// turns index 0 into -1.
func (p selectIndexParams) resolve() (int, error) {
	if p.Index == nil {
		return 0, fmt.Errorf("%w: index is required", ErrInvalidParams)
	}
	switch strings.ToLower(p.Position) {
	case "", "top":
		return *p.Index, nil
	case "bottom":
		if *p.Index < 0 {
			return 0, fmt.Errorf("%w: index counted from the bottom must not be negative", ErrInvalidParams)
		}
		return -(*p.Index + 1), nil
	default:
		return 0, fmt.Errorf("%w: position %q (want top or bottom)", ErrInvalidParams, p.Position)
	}
}

type moveParams struct {
	Direction string `json:"direction"`
}

// ParseDirection maps "up" and "down" to a move direction.
func ParseDirection(s string) (engine.Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return engine.Up, nil
	case "down":
		return engine.Down, nil
	case "":
		return 0, fmt.Errorf("%w: direction is required", ErrInvalidParams)
	default:
		return 0, fmt.Errorf("%w: direction %q (want up or down)", ErrInvalidParams, s)
	}
}

// decodeParams decodes strictly, rejecting unknown fields. Empty input and
// null leave v at its zero value.
func decodeParams(raw json.RawMessage, v any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("%w: trailing data after parameters", ErrInvalidParams)
	}
	return nil
}

// Lookup returns the action registered under name.
func Lookup(name string) (Action, bool) {
	a, ok := registry[name]
	if !ok {
		return Action{}, false
	}
	a.Name = name
	return a, true
}

// List returns every registered action, sorted by name.
func List() []Action {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)

	out := make([]Action, 0, len(names))
	for _, name := range names {
		a, _ := Lookup(name)
		out = append(out, a)
	}
	return out
}

// Run executes the named action.
func Run(ctx context.Context, nav Navigator, name string, raw json.RawMessage) (any, error) {
	a, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
	return a.Run(ctx, nav, raw)
}
