package engine

import (
	"context"

	"github.com/danieljhkim/layerctl/internal/host"
	"github.com/danieljhkim/layerctl/internal/layers"
)

// ListLayers returns the flattened layer tree of the active document.
func (e *Engine) ListLayers(ctx context.Context) (*ListLayersResult, error) {
	doc, err := e.document()
	if err != nil {
		return nil, err
	}

	records, err := e.flatten(doc)
	if err != nil {
		return nil, err
	}

	name, err := host.Get(doc.Name)
	if err != nil {
		name = ""
	}

	result := &ListLayersResult{
		Document: name,
		Layers:   make([]LayerInfo, 0, len(records)),
	}

	activeIndex := layers.NoParent
	if active, err := host.Get(doc.ActiveLayer); err == nil && active != nil {
		if rec, ok := findActive(records, active); ok {
			activeIndex = rec.Index
		}
	}

	for _, rec := range records {
		info := LayerInfo{Record: rec, Active: rec.Index == activeIndex}
		if stack, ok := layers.ResolveStackIndex(rec.Handle); ok {
			info.Stack = &stack
		}
		result.Layers = append(result.Layers, info)
	}

	return result, nil
}

// ActiveLayer describes the host's active layer.
func (e *Engine) ActiveLayer(ctx context.Context) (*ActiveLayerResult, error) {
	doc, err := e.document()
	if err != nil {
		return nil, err
	}

	active, err := e.activeLayer(doc)
	if err != nil {
		return nil, err
	}

	records, err := e.flatten(doc)
	if err != nil {
		return nil, err
	}

	result := &ActiveLayerResult{
		Name:  layerName(active, ""),
		Index: -1,
	}
	if stack, ok := layers.ResolveStackIndex(active); ok {
		result.Stack = &stack
	}
	if rec, ok := findActive(records, active); ok {
		result.Index = rec.Index
		result.Name = rec.Name
	}

	return result, nil
}
