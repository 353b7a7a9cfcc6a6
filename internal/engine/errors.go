package engine

import "errors"

var (
	// ErrNoDocument indicates the host has no active document.
	ErrNoDocument = errors.New("no active document")

	// ErrNoActiveLayer indicates the active layer could not be read.
	ErrNoActiveLayer = errors.New("no active layer")

	// ErrStackIndexUnknown indicates the active layer's stacking index could
	// not be resolved, so its position in stacking order is unknown.
	ErrStackIndexUnknown = errors.New("stacking index unavailable")

	// ErrTopmost indicates a move past the top of the stacking order.
	ErrTopmost = errors.New("layer is already topmost")

	// ErrBottommost indicates a move past the bottom of the stacking order.
	ErrBottommost = errors.New("layer is already bottommost")

	// ErrNotFound indicates a layer was not found.
	ErrNotFound = errors.New("layer not found")

	// ErrNoLayers indicates the document has no layers.
	ErrNoLayers = errors.New("document has no layers")

	// ErrOutOfRange indicates a traversal index outside the document.
	ErrOutOfRange = errors.New("layer index out of range")

	// ErrHostMutation indicates the host rejected a mutating call.
	ErrHostMutation = errors.New("host mutation failed")

	// ErrValidation indicates an invalid request.
	ErrValidation = errors.New("validation failed")
)
