package engine

import (
	"context"
	"fmt"

	"github.com/danieljhkim/layerctl/internal/host"
)

// DuplicateActiveLayer duplicates the active layer and tries to make the
// copy the active layer.
//
// Duplication can change the active layer on its own, so the active layer is
// re-read afterwards, falling back to the original handle when that fails.
// Failing to activate the copy is not an error: the copy exists either way
// and the result reports Activated=false.
func (e *Engine) DuplicateActiveLayer(ctx context.Context) (*DuplicateResult, error) {
	doc, err := e.document()
	if err != nil {
		return nil, err
	}

	original, err := e.activeLayer(doc)
	if err != nil {
		return nil, err
	}
	source := layerName(original, "")

	dup, err := host.Get(func() (host.Layer, error) { return doc.DuplicateLayer(original) })
	if err != nil {
		return nil, fmt.Errorf("%w: duplicate %q: %v", ErrHostMutation, source, err)
	}

	current, err := host.Get(doc.ActiveLayer)
	if err != nil || current == nil {
		current = original
	}

	target := dup
	if target == nil {
		target = current
	}

	result := &DuplicateResult{
		Source:    source,
		Activated: true,
	}
	if err := host.Call(func() error { return doc.SetActiveLayer(target) }); err != nil {
		e.logger.Warn("duplicate created but could not be activated", "source", source, "err", err)
		result.Activated = false
		target = current
	}
	result.Name = layerName(target, source)

	e.logger.Info("duplicated layer", "source", source, "name", result.Name)
	return result, nil
}
