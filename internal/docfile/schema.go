// Package docfile stores documents as YAML snapshots of a layer tree.
//
// A snapshot is loaded into an in-memory host document, mutated through the
// engine like a live document, and written back atomically. Saves refuse to
// overwrite a snapshot that changed on disk after it was loaded.
package docfile

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/danieljhkim/layerctl/internal/host/memhost"
)

// ErrInvalid is returned for snapshots that parse but do not describe a
// usable document.
var ErrInvalid = errors.New("invalid document")

const (
	shapeUnified = "unified"
	shapeSplit   = "split"
)

// File is the on-disk form of a document.
type File struct {
	Name   string `yaml:"name"`
	Active string `yaml:"active,omitempty"`
	// ActiveIndex locates the active layer by its position in a pre-order
	// walk of Layers, so layers sharing a name stay distinct. Active is
	// checked against it; on a mismatch the name wins.
	ActiveIndex *int        `yaml:"active_index,omitempty"`
	SavedAt     *time.Time  `yaml:"saved_at,omitempty"`
	Layers      []LayerSpec `yaml:"layers"`
}

// LayerSpec describes one layer or group. Layers are listed top to bottom.
type LayerSpec struct {
	Name    string `yaml:"name"`
	Visible *bool  `yaml:"visible,omitempty"`
	Kind    string `yaml:"kind,omitempty"`

	// Group marks an empty group. Specs with nested layers are groups anyway.
	Group bool   `yaml:"group,omitempty"`
	Shape string `yaml:"shape,omitempty"`

	// Stack overrides the stacking index the document reports for the layer.
	Stack any `yaml:"stack,omitempty"`

	Layers []LayerSpec `yaml:"layers,omitempty"`
}

// Validate checks the parts of a snapshot the YAML decoder cannot.
func (f *File) Validate() error {
	var check func(specs []LayerSpec, path string) error
	check = func(specs []LayerSpec, path string) error {
		for i, spec := range specs {
			at := fmt.Sprintf("%s[%d]", path, i)
			switch strings.ToLower(spec.Shape) {
			case "", shapeUnified, shapeSplit:
			default:
				return fmt.Errorf("%w: %s: unknown shape %q (want unified or split)", ErrInvalid, at, spec.Shape)
			}
			if spec.Shape != "" && !spec.Group && len(spec.Layers) == 0 {
				return fmt.Errorf("%w: %s: shape is only valid on groups", ErrInvalid, at)
			}
			if err := check(spec.Layers, at+".layers"); err != nil {
				return err
			}
		}
		return nil
	}
	return check(f.Layers, "layers")
}

// ToDocument builds an in-memory document from the snapshot. The layer at
// ActiveIndex or named by Active becomes active, else the topmost layer.
func (f *File) ToDocument(fallbackName string) (*memhost.Document, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	name := f.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(fallbackName), filepath.Ext(fallbackName))
	}

	doc := memhost.NewDocument(name, toNodes(f.Layers)...)
	active, err := f.activeNode(doc)
	if err != nil {
		return nil, err
	}
	if active != nil {
		doc.Select(active)
	}
	return doc, nil
}

func (f *File) activeNode(doc *memhost.Document) (*memhost.Node, error) {
	if f.ActiveIndex != nil {
		n := doc.At(*f.ActiveIndex)
		if n == nil && f.Active == "" {
			return nil, fmt.Errorf("%w: active_index %d is out of range", ErrInvalid, *f.ActiveIndex)
		}
		if n != nil && (f.Active == "" || n.Name == f.Active) {
			return n, nil
		}
	}
	if f.Active == "" {
		return nil, nil
	}
	n := doc.Find(f.Active)
	if n == nil {
		return nil, fmt.Errorf("%w: active layer %q does not exist", ErrInvalid, f.Active)
	}
	return n, nil
}

func toNodes(specs []LayerSpec) []*memhost.Node {
	nodes := make([]*memhost.Node, 0, len(specs))
	for _, spec := range specs {
		node := &memhost.Node{
			Name:     spec.Name,
			Kind:     spec.Kind,
			Group:    spec.Group || len(spec.Layers) > 0,
			Stack:    spec.Stack,
			Children: toNodes(spec.Layers),
		}
		if spec.Visible != nil {
			node.Hidden = !*spec.Visible
		}
		if strings.EqualFold(spec.Shape, shapeSplit) {
			node.Shape = memhost.ShapeSplit
		}
		if node.Kind == "" {
			node.Kind = "normal"
			if node.Group {
				node.Kind = "group"
			}
		}
		nodes = append(nodes, node)
	}
	return nodes
}

// FromDocument captures the current state of doc.
func FromDocument(doc *memhost.Document) *File {
	name, _ := doc.Name()
	f := &File{
		Name:   name,
		Layers: fromNodes(doc.Roots()),
	}
	if active := doc.Active(); active != nil {
		if i, ok := doc.IndexOf(active); ok {
			f.Active = active.Name
			f.ActiveIndex = &i
		}
	}
	return f
}

func fromNodes(nodes []*memhost.Node) []LayerSpec {
	specs := make([]LayerSpec, 0, len(nodes))
	for _, node := range nodes {
		spec := LayerSpec{
			Name:   node.Name,
			Kind:   node.Kind,
			Stack:  node.Stack,
			Layers: fromNodes(node.Children),
		}
		if len(spec.Layers) == 0 {
			spec.Layers = nil
			spec.Group = node.IsGroup()
		}
		if node.Hidden {
			hidden := false
			spec.Visible = &hidden
		}
		if node.IsGroup() && node.Shape == memhost.ShapeSplit {
			spec.Shape = shapeSplit
		}
		specs = append(specs, spec)
	}
	return specs
}
