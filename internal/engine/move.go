package engine

import (
	"context"
	"fmt"

	"github.com/danieljhkim/layerctl/internal/host"
	"github.com/danieljhkim/layerctl/internal/layers"
)

// MoveActiveLayer moves the active layer one step up or down in the host
// stacking order.
//
// The position of the active layer is looked up in the ordered view built
// from host stacking indices, never from its traversal index: the two
// diverge once groups are nested or the host has reordered layers. The layer
// is placed before (up) or after (down) its neighbour in that view with a
// single host call. Nothing is mutated when the position cannot be
// determined or the move would pass either end of the stack.
func (e *Engine) MoveActiveLayer(ctx context.Context, req *MoveRequest) (*MoveResult, error) {
	if req.Delta != Up && req.Delta != Down {
		return nil, fmt.Errorf("%w: move delta must be -1 or +1, got %d", ErrValidation, int(req.Delta))
	}

	doc, err := e.document()
	if err != nil {
		return nil, err
	}

	active, err := e.activeLayer(doc)
	if err != nil {
		return nil, err
	}
	name := layerName(active, "active layer")

	stack, ok := layers.ResolveStackIndex(active)
	if !ok {
		return nil, fmt.Errorf("%w: cannot determine the position of %q in the stacking order", ErrStackIndexUnknown, name)
	}

	records, err := e.flatten(doc)
	if err != nil {
		return nil, err
	}
	view := layers.BuildOrderedView(records)

	current, ok := layers.Locate(view, stack)
	if !ok {
		return nil, fmt.Errorf("%w: %q (stacking index %d) is not in the document tree", ErrNotFound, name, stack)
	}

	target := current + int(req.Delta)
	if target < 0 {
		return nil, fmt.Errorf("%w: %q cannot move up", ErrTopmost, name)
	}
	if target >= len(view) {
		return nil, fmt.Errorf("%w: %q cannot move down", ErrBottommost, name)
	}

	reference := view[target]
	placement := host.PlaceAfter
	if req.Delta == Up {
		placement = host.PlaceBefore
	}

	e.logger.Debug("moving layer", "name", name, "from", current, "to", target, "reference", reference.Name, "placement", placement)
	if err := host.Call(func() error { return doc.MoveLayer(active, reference.Handle, placement) }); err != nil {
		return nil, fmt.Errorf("%w: move %q %s %q: %v", ErrHostMutation, name, placement, reference.Name, err)
	}
	e.logger.Info("moved layer", "name", name, "direction", req.Delta, "reference", reference.Name)

	return &MoveResult{
		Name:      name,
		From:      current,
		To:        target,
		Reference: reference.Name,
		Placement: placement.String(),
	}, nil
}
