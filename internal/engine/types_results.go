package engine

import "github.com/danieljhkim/layerctl/internal/layers"

// LayerInfo is a flattened record enriched for display.
type LayerInfo struct {
	layers.Record

	// Stack is the host stacking index, nil when unresolvable
	Stack *layers.StackIndex `json:"stack"`

	// Active marks the host's active layer
	Active bool `json:"active"`
}

// ListLayersResult represents the flattened layer list of the document.
type ListLayersResult struct {
	Document string      `json:"document"`
	Layers   []LayerInfo `json:"layers"`
}

// ActiveLayerResult describes the active layer.
type ActiveLayerResult struct {
	Name string `json:"active_layer"`

	// Index is the traversal index, -1 when the layer is not in the tree
	Index layers.TraversalIndex `json:"index"`

	Stack *layers.StackIndex `json:"stack"`
}

// ActivateResult represents the result of an activation.
type ActivateResult struct {
	Name  string                `json:"active_layer"`
	Index layers.TraversalIndex `json:"index"`
}

// MoveResult represents the result of moving the active layer.
type MoveResult struct {
	Name string `json:"active_layer"`

	// From and To are positions in stacking order, not traversal indices
	From int `json:"from"`
	To   int `json:"to"`

	// Reference is the layer the active layer was placed next to
	Reference string `json:"reference"`
	Placement string `json:"placement"`
}

// DuplicateResult represents the result of duplicating the active layer.
type DuplicateResult struct {
	Name   string `json:"active_layer"`
	Source string `json:"source"`

	// Activated is false when the duplicate exists but could not be made active
	Activated bool `json:"activated"`
}
