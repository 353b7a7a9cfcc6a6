// Package layers flattens a live layer tree and reconciles the two index
// spaces layerctl works with.
//
// Traversal order is the pre-order walk of the layer/group tree computed
// locally; it is what "the nth layer" means. Stacking order is the host's own
// top-to-bottom compositing position, read per layer and sometimes missing.
// The two orders agree for a flat document and diverge as soon as groups are
// nested or the host reorders layers, so they are kept as distinct types.
//
// Nothing here caches host state: every call re-reads the live document.
package layers

import "github.com/danieljhkim/layerctl/internal/host"

// TraversalIndex is a position in the flattened pre-order walk.
type TraversalIndex int

// NoParent marks records that sit at the document root.
const NoParent TraversalIndex = -1

// StackIndex is a host-assigned position in top-to-bottom compositing order.
type StackIndex int

// Record is one node of the flattened layer tree.
type Record struct {
	Index   TraversalIndex `json:"index"`
	Name    string         `json:"name"`
	Visible bool           `json:"visible"`
	Kind    string         `json:"kind"`
	Depth   int            `json:"depth"`
	IsGroup bool           `json:"is_group"`
	Parent  TraversalIndex `json:"parent"`

	// Handle is borrowed from the host and only valid until the document
	// changes.
	Handle host.Layer `json:"-"`
}

// OrderedRecord pairs a record with its resolved stacking index.
type OrderedRecord struct {
	Record
	Stack StackIndex
	Known bool
}
