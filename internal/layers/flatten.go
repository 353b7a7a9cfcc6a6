package layers

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/danieljhkim/layerctl/internal/host"
)

// DefaultKind is reported when the host does not expose a layer kind.
const DefaultKind = "unknown"

// Flattener walks a live layer tree in pre-order.
type Flattener struct {
	// Children discovers the children of each node.
	Children ChildrenSource

	// Logger receives debug output about subtrees that could not be read.
	// May be nil.
	Logger *log.Logger
}

// NewFlattener returns a Flattener using DefaultChildren.
func NewFlattener(logger *log.Logger) *Flattener {
	return &Flattener{
		Children: DefaultChildren(),
		Logger:   logger,
	}
}

// Flatten returns one record per node under roots, each node before its
// children and siblings in host order. A node whose children cannot be read
// is recorded as a leaf and the walk continues.
func (f *Flattener) Flatten(roots []host.Layer) []Record {
	children := f.Children
	if children == nil {
		children = DefaultChildren()
	}

	var records []Record
	var walk func(layers []host.Layer, depth int, parent TraversalIndex)
	walk = func(layers []host.Layer, depth int, parent TraversalIndex) {
		for _, layer := range layers {
			if layer == nil {
				continue
			}

			rec := Record{
				Index:   TraversalIndex(len(records)),
				Name:    fmt.Sprintf("Layer_%d", len(records)),
				Visible: true,
				Kind:    DefaultKind,
				Depth:   depth,
				Parent:  parent,
				Handle:  layer,
			}
			if name, err := host.Get(layer.Name); err == nil {
				rec.Name = name
			}
			if visible, err := host.Get(layer.Visible); err == nil {
				rec.Visible = visible
			}
			if kind, err := host.Get(layer.Kind); err == nil && kind != "" {
				rec.Kind = kind
			}

			kids, err := children.Children(layer)
			if err != nil {
				if f.Logger != nil {
					f.Logger.Debug("treating unreadable subtree as leaf", "layer", rec.Name, "err", err)
				}
				kids = nil
			}
			rec.IsGroup = len(kids) > 0

			records = append(records, rec)
			if rec.IsGroup {
				walk(kids, depth+1, rec.Index)
			}
		}
	}
	walk(roots, 0, NoParent)

	return records
}

// Flatten walks roots with the default children discovery and no logging.
func Flatten(roots []host.Layer) []Record {
	return NewFlattener(nil).Flatten(roots)
}
