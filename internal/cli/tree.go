package cli

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/danieljhkim/layerctl/internal/engine"
	"github.com/danieljhkim/layerctl/internal/layers"
)

var (
	treeRootStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	treeEnumStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	treeActiveStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	treeHiddenStyle = lipgloss.NewStyle().Faint(true)
	treeKindStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// renderTree draws the flattened list as a tree. Records arrive in
// pre-order, so every parent is placed before its children.
func renderTree(list *engine.ListLayersResult) string {
	root := tree.Root(treeRootStyle.Render(list.Document)).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(treeEnumStyle)

	groups := make(map[layers.TraversalIndex]*tree.Tree)
	for _, l := range list.Layers {
		parent := root
		if g, ok := groups[l.Parent]; ok {
			parent = g
		}

		label := treeLabel(l)
		if l.IsGroup {
			node := tree.Root(label).
				Enumerator(tree.RoundedEnumerator).
				EnumeratorStyle(treeEnumStyle)
			groups[l.Index] = node
			parent.Child(node)
			continue
		}
		parent.Child(label)
	}
	return root.String()
}

func treeLabel(l engine.LayerInfo) string {
	label := l.Name
	switch {
	case l.Active:
		label = treeActiveStyle.Render(activeMarker + " " + l.Name)
	case !l.Visible:
		label = treeHiddenStyle.Render(l.Name)
	}
	label += " " + treeKindStyle.Render("["+l.Kind+"]")
	if !l.Visible {
		label += treeKindStyle.Render(" hidden")
	}
	return label
}

// stackLabel renders a stacking index, "?" when unknown.
func stackLabel(s *layers.StackIndex) string {
	if s == nil {
		return "?"
	}
	return strconv.Itoa(int(*s))
}
