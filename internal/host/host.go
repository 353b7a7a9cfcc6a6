// Package host defines the automation surface layerctl drives.
//
// The image editor is never reimplemented here. Backends adapt a concrete
// automation API (Photoshop over COM, or an in-memory document loaded from a
// snapshot file) to these interfaces, and the rest of layerctl only talks to
// the interfaces.
//
// Layer handles expose a small required surface. Children discovery and the
// stacking index are optional capabilities checked with type assertions,
// because different hosts (and host versions) expose them differently:
//   - ChildLister: a single unified children collection
//   - SplitChildLister: separate sub-group and leaf-layer collections
//   - StackIndexer: the host's own compositing position
package host

import "fmt"

// Application is the entry point of a host backend.
type Application interface {
	// ActiveDocument returns the document currently focused in the host.
	ActiveDocument() (Document, error)
}

// Document is an open document in the host.
type Document interface {
	// Name returns the document name.
	Name() (string, error)

	// Layers returns the root layer/group collection, top to bottom.
	Layers() ([]Layer, error)

	// ActiveLayer returns the layer currently targeted by the host.
	ActiveLayer() (Layer, error)

	// SetActiveLayer makes layer the active layer.
	SetActiveLayer(layer Layer) error

	// MoveLayer moves layer relative to reference.
	MoveLayer(layer, reference Layer, placement Placement) error

	// DuplicateLayer duplicates layer and returns the new layer.
	DuplicateLayer(layer Layer) (Layer, error)
}

// Layer is a borrowed handle to a live layer or group.
// Handles are only valid while the host document is unchanged.
type Layer interface {
	Name() (string, error)
	Visible() (bool, error)

	// Kind is informational only. Hosts do not report it consistently for
	// groups, so it must not be used to decide whether a layer is a group.
	Kind() (string, error)
}

// ChildLister is implemented by handles that expose one unified children
// collection.
type ChildLister interface {
	Children() ([]Layer, error)
}

// SplitChildLister is implemented by handles that expose sub-groups and leaf
// layers as two separate collections.
type SplitChildLister interface {
	SubGroups() ([]Layer, error)
	LeafLayers() ([]Layer, error)
}

// StackIndexer is implemented by handles that expose the host stacking index.
// The raw value is returned untouched; callers coerce it.
type StackIndexer interface {
	StackIndex() (any, error)
}

// Placement selects where a moved layer lands relative to its reference.
type Placement int

const (
	// PlaceBefore puts the layer directly above the reference.
	PlaceBefore Placement = iota + 1
	// PlaceAfter puts the layer directly below the reference.
	PlaceAfter
)

// String returns the placement name.
func (p Placement) String() string {
	switch p {
	case PlaceBefore:
		return "before"
	case PlaceAfter:
		return "after"
	default:
		return fmt.Sprintf("placement(%d)", int(p))
	}
}
