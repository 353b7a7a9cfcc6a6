package memhost

import "github.com/danieljhkim/layerctl/internal/host"

// layer is the handle of a leaf node. Group handles embed it.
type layer struct {
	doc  *Document
	node *Node
}

func (l *layer) Name() (string, error) {
	if l.node.Name == "" {
		return "", errMissing
	}
	return l.node.Name, nil
}

func (l *layer) Visible() (bool, error) {
	return !l.node.Hidden, nil
}

func (l *layer) Kind() (string, error) {
	if l.node.Kind == "" {
		return "", errMissing
	}
	return l.node.Kind, nil
}

// StackIndex returns the override when set, else the node's position in the
// top-to-bottom walk of the document.
func (l *layer) StackIndex() (any, error) {
	if l.node.StackErr != nil {
		return nil, l.node.StackErr
	}
	if l.node.Stack != nil {
		return l.node.Stack, nil
	}
	pos, ok := l.doc.position(l.node)
	if !ok {
		return nil, nil
	}
	return pos, nil
}

type unifiedGroup struct {
	*layer
}

func (g *unifiedGroup) Children() ([]host.Layer, error) {
	if g.node.ChildrenErr != nil {
		return nil, g.node.ChildrenErr
	}
	return g.doc.handles(g.node.Children), nil
}

type splitGroup struct {
	*layer
}

func (g *splitGroup) SubGroups() ([]host.Layer, error) {
	if g.node.ChildrenErr != nil {
		return nil, g.node.ChildrenErr
	}
	var groups []*Node
	for _, c := range g.node.Children {
		if c.IsGroup() {
			groups = append(groups, c)
		}
	}
	return g.doc.handles(groups), nil
}

func (g *splitGroup) LeafLayers() ([]host.Layer, error) {
	if g.node.ChildrenErr != nil {
		return nil, g.node.ChildrenErr
	}
	var leaves []*Node
	for _, c := range g.node.Children {
		if !c.IsGroup() {
			leaves = append(leaves, c)
		}
	}
	return g.doc.handles(leaves), nil
}

var (
	_ host.Layer            = (*layer)(nil)
	_ host.StackIndexer     = (*layer)(nil)
	_ host.ChildLister      = (*unifiedGroup)(nil)
	_ host.SplitChildLister = (*splitGroup)(nil)
	_ host.Document         = (*Document)(nil)
	_ host.Application      = (*Application)(nil)
)
