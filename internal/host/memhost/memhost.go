// Package memhost is an in-memory implementation of the host automation
// surface. It backs the file document backend and the engine tests.
//
// A Document holds a mutable tree of Nodes. Group handles expose either the
// unified or the split children shape depending on Node.Shape, leaf handles
// expose neither, and every handle exposes a stacking index derived from the
// node's position in the tree (top to bottom) unless Node.Stack overrides it.
// Fault fields on Node and Document let tests make individual host calls fail.
package memhost

import (
	"errors"
	"fmt"

	"github.com/danieljhkim/layerctl/internal/host"
)

var (
	// ErrNoDocument is returned when the application has no open document.
	ErrNoDocument = errors.New("no open document")

	// ErrForeignHandle is returned for handles that do not belong to the document.
	ErrForeignHandle = errors.New("layer handle does not belong to this document")

	errMissing = errors.New("attribute not set")
)

// Shape selects which children collection a group handle exposes.
type Shape int

const (
	// ShapeUnified exposes host.ChildLister.
	ShapeUnified Shape = iota
	// ShapeSplit exposes host.SplitChildLister.
	ShapeSplit
)

// Node is one layer or group of an in-memory document.
type Node struct {
	Name   string
	Hidden bool
	Kind   string

	// Group marks a node as a group even when it has no children.
	Group bool
	Shape Shape

	// Stack overrides the derived stacking index when non-nil. Any value is
	// returned to callers as is.
	Stack any
	// StackErr makes reading the stacking index fail.
	StackErr error
	// ChildrenErr makes children discovery fail.
	ChildrenErr error

	Children []*Node

	parent *Node
	isRoot bool
}

// Leaf returns a leaf node.
func Leaf(name string) *Node {
	return &Node{Name: name, Kind: "normal"}
}

// Group returns a group node holding children.
func Group(name string, children ...*Node) *Node {
	return &Node{Name: name, Kind: "group", Group: true, Children: children}
}

// IsGroup reports whether the node is a group.
func (n *Node) IsGroup() bool {
	return n.Group || len(n.Children) > 0
}

// Parent returns the enclosing group, or nil at the document root.
func (n *Node) Parent() *Node {
	if n.parent == nil || n.parent.isRoot {
		return nil
	}
	return n.parent
}

// Document is an in-memory host document.
type Document struct {
	name   string
	root   *Node
	active *Node

	// Fault injection for document level calls.
	ActiveLayerErr error
	ActivateErr    error
	MoveErr        error
	DuplicateErr   error
	LayersErr      error

	// DuplicateActivates makes the duplicate the active layer, as desktop
	// editors usually do.
	DuplicateActivates bool

	mutations []string
}

// NewDocument creates a document whose root collection is layers.
// The first layer becomes active.
func NewDocument(name string, layers ...*Node) *Document {
	d := &Document{
		name:               name,
		root:               &Node{Group: true, Children: layers, isRoot: true},
		DuplicateActivates: true,
	}
	link(d.root)
	if len(layers) > 0 {
		d.active = layers[0]
	}
	return d
}

func link(n *Node) {
	for _, c := range n.Children {
		c.parent = n
		link(c)
	}
}

// Roots returns the root nodes, top to bottom.
func (d *Document) Roots() []*Node {
	return d.root.Children
}

// Active returns the active node, or nil.
func (d *Document) Active() *Node {
	return d.active
}

// Select makes n active without recording a mutation.
func (d *Document) Select(n *Node) {
	d.active = n
}

// Find returns the first node in pre-order named name, or nil.
func (d *Document) Find(name string) *Node {
	var found *Node
	d.walk(func(n *Node) bool {
		if n.Name == name {
			found = n
			return false
		}
		return true
	})
	return found
}

// At returns the node at pre-order position i of the layer list, or nil.
func (d *Document) At(i int) *Node {
	var found *Node
	pos := 0
	d.walk(func(n *Node) bool {
		if pos == i {
			found = n
			return false
		}
		pos++
		return true
	})
	return found
}

// IndexOf returns the pre-order position of n in the layer list.
func (d *Document) IndexOf(n *Node) (int, bool) {
	return d.position(n)
}

// Count returns the number of nodes in the document.
func (d *Document) Count() int {
	count := 0
	d.walk(func(*Node) bool {
		count++
		return true
	})
	return count
}

// Mutations returns a description of every mutating call, in order.
func (d *Document) Mutations() []string {
	return append([]string(nil), d.mutations...)
}

// walk visits nodes in pre-order until visit returns false.
func (d *Document) walk(visit func(*Node) bool) {
	var rec func(nodes []*Node) bool
	rec = func(nodes []*Node) bool {
		for _, n := range nodes {
			if !visit(n) {
				return false
			}
			if !rec(n.Children) {
				return false
			}
		}
		return true
	}
	rec(d.root.Children)
}

func (d *Document) contains(n *Node) bool {
	for p := n; p != nil; p = p.parent {
		if p == d.root {
			return true
		}
	}
	return false
}

// position is the derived stacking index of n.
func (d *Document) position(n *Node) (int, bool) {
	pos, i := -1, 0
	d.walk(func(c *Node) bool {
		if c == n {
			pos = i
			return false
		}
		i++
		return true
	})
	return pos, pos >= 0
}

// handle wraps n in the handle type matching its shape.
func (d *Document) handle(n *Node) host.Layer {
	base := &layer{doc: d, node: n}
	if !n.IsGroup() {
		return base
	}
	if n.Shape == ShapeSplit {
		return &splitGroup{layer: base}
	}
	return &unifiedGroup{layer: base}
}

func (d *Document) handles(nodes []*Node) []host.Layer {
	out := make([]host.Layer, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, d.handle(n))
	}
	return out
}

// node resolves a handle back to a node of this document.
func (d *Document) node(h host.Layer) (*Node, error) {
	n := NodeOf(h)
	if n == nil || !d.contains(n) {
		return nil, ErrForeignHandle
	}
	return n, nil
}

// NodeOf returns the node behind a memhost handle, or nil for other handles.
func NodeOf(h host.Layer) *Node {
	switch v := h.(type) {
	case *layer:
		return v.node
	case *unifiedGroup:
		return v.node
	case *splitGroup:
		return v.node
	default:
		return nil
	}
}

// Name returns the document name.
func (d *Document) Name() (string, error) {
	return d.name, nil
}

// Layers returns the root collection.
func (d *Document) Layers() ([]host.Layer, error) {
	if d.LayersErr != nil {
		return nil, d.LayersErr
	}
	return d.handles(d.root.Children), nil
}

// ActiveLayer returns the active layer handle.
func (d *Document) ActiveLayer() (host.Layer, error) {
	if d.ActiveLayerErr != nil {
		return nil, d.ActiveLayerErr
	}
	if d.active == nil || !d.contains(d.active) {
		return nil, errors.New("no active layer")
	}
	return d.handle(d.active), nil
}

// SetActiveLayer makes the layer behind h active.
func (d *Document) SetActiveLayer(h host.Layer) error {
	if d.ActivateErr != nil {
		return d.ActivateErr
	}
	n, err := d.node(h)
	if err != nil {
		return err
	}
	d.active = n
	d.mutations = append(d.mutations, "activate "+n.Name)
	return nil
}

// MoveLayer moves the layer behind h next to reference.
func (d *Document) MoveLayer(h, reference host.Layer, placement host.Placement) error {
	if d.MoveErr != nil {
		return d.MoveErr
	}
	n, err := d.node(h)
	if err != nil {
		return err
	}
	ref, err := d.node(reference)
	if err != nil {
		return err
	}
	if n == ref {
		return errors.New("cannot move a layer relative to itself")
	}
	for p := ref.parent; p != nil; p = p.parent {
		if p == n {
			return errors.New("cannot move a group into itself")
		}
	}
	if placement != host.PlaceBefore && placement != host.PlaceAfter {
		return fmt.Errorf("unsupported placement %s", placement)
	}

	detach(n)
	at := indexOf(ref.parent.Children, ref)
	if placement == host.PlaceAfter {
		at++
	}
	insert(ref.parent, at, n)

	d.mutations = append(d.mutations, fmt.Sprintf("move %s %s %s", n.Name, placement, ref.Name))
	return nil
}

// DuplicateLayer inserts a copy of the layer behind h directly above it.
func (d *Document) DuplicateLayer(h host.Layer) (host.Layer, error) {
	if d.DuplicateErr != nil {
		return nil, d.DuplicateErr
	}
	n, err := d.node(h)
	if err != nil {
		return nil, err
	}

	dup := clone(n)
	dup.Name = d.copyName(n.Name)
	insert(n.parent, indexOf(n.parent.Children, n), dup)
	if d.DuplicateActivates {
		d.active = dup
	}

	d.mutations = append(d.mutations, "duplicate "+n.Name)
	return d.handle(dup), nil
}

func (d *Document) copyName(name string) string {
	candidate := name + " copy"
	for i := 2; d.Find(candidate) != nil; i++ {
		candidate = fmt.Sprintf("%s copy %d", name, i)
	}
	return candidate
}

func clone(n *Node) *Node {
	c := *n
	c.Stack = nil
	c.parent = nil
	c.Children = make([]*Node, 0, len(n.Children))
	for _, child := range n.Children {
		cc := clone(child)
		cc.parent = &c
		c.Children = append(c.Children, cc)
	}
	return &c
}

func indexOf(nodes []*Node, n *Node) int {
	for i, c := range nodes {
		if c == n {
			return i
		}
	}
	return -1
}

func detach(n *Node) {
	p := n.parent
	i := indexOf(p.Children, n)
	p.Children = append(p.Children[:i:i], p.Children[i+1:]...)
	n.parent = nil
}

func insert(p *Node, at int, n *Node) {
	children := make([]*Node, 0, len(p.Children)+1)
	children = append(children, p.Children[:at]...)
	children = append(children, n)
	children = append(children, p.Children[at:]...)
	p.Children = children
	n.parent = p
}

// Application serves a single open document.
type Application struct {
	Doc *Document
}

// ActiveDocument returns the open document.
func (a *Application) ActiveDocument() (host.Document, error) {
	if a.Doc == nil {
		return nil, ErrNoDocument
	}
	return a.Doc, nil
}
