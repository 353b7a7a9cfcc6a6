package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/danieljhkim/layerctl/internal/host"
	"github.com/danieljhkim/layerctl/internal/layers"
)

// ActivateByName makes the first layer, in traversal order, whose name
// matches req.Target case-insensitively the active layer.
func (e *Engine) ActivateByName(ctx context.Context, req *ActivateByNameRequest) (*ActivateResult, error) {
	if strings.TrimSpace(req.Target) == "" {
		return nil, fmt.Errorf("%w: layer name is required", ErrValidation)
	}

	doc, err := e.document()
	if err != nil {
		return nil, err
	}

	records, err := e.flatten(doc)
	if err != nil {
		return nil, err
	}

	for _, rec := range records {
		if strings.EqualFold(rec.Name, req.Target) {
			return e.activate(doc, rec)
		}
	}

	return nil, fmt.Errorf("%w: no layer named %q", ErrNotFound, req.Target)
}

// ActivateByIndex makes the layer at traversal index req.Index the active
// layer. Negative indices count from the end of the flattened list. The
// index is a traversal index, not a stacking position.
func (e *Engine) ActivateByIndex(ctx context.Context, req *ActivateByIndexRequest) (*ActivateResult, error) {
	doc, err := e.document()
	if err != nil {
		return nil, err
	}

	records, err := e.flatten(doc)
	if err != nil {
		return nil, err
	}

	n := len(records)
	idx := req.Index
	if idx < 0 {
		idx += n
	}
	if n == 0 {
		// Also reported as out of range: no index is valid in an empty document.
		return nil, fmt.Errorf("%w: %w: index %d", ErrNoLayers, ErrOutOfRange, req.Index)
	}
	if idx < 0 || idx >= n {
		return nil, fmt.Errorf("%w: index %d, document has %d layers", ErrOutOfRange, req.Index, n)
	}

	return e.activate(doc, records[idx])
}

// activate issues the single SetActiveLayer call for rec.
func (e *Engine) activate(doc host.Document, rec layers.Record) (*ActivateResult, error) {
	if err := host.Call(func() error { return doc.SetActiveLayer(rec.Handle) }); err != nil {
		return nil, fmt.Errorf("%w: activate %q: %v", ErrHostMutation, rec.Name, err)
	}
	e.logger.Info("activated layer", "name", rec.Name, "index", rec.Index)

	return &ActivateResult{Name: rec.Name, Index: rec.Index}, nil
}
