package layers

import (
	"errors"

	"github.com/danieljhkim/layerctl/internal/host"
)

// ErrUnsupported is returned by a ChildrenSource when the handle does not
// expose the collection shape the source reads.
var ErrUnsupported = errors.New("children collection not exposed")

// ChildrenSource discovers the direct children of a layer handle.
type ChildrenSource interface {
	Children(layer host.Layer) ([]host.Layer, error)
}

// ChildrenFunc adapts a function to ChildrenSource.
type ChildrenFunc func(layer host.Layer) ([]host.Layer, error)

// Children calls f.
func (f ChildrenFunc) Children(layer host.Layer) ([]host.Layer, error) {
	return f(layer)
}

// Unified reads the single children collection of host.ChildLister handles.
func Unified() ChildrenSource {
	return ChildrenFunc(func(layer host.Layer) ([]host.Layer, error) {
		lister, ok := layer.(host.ChildLister)
		if !ok {
			return nil, ErrUnsupported
		}
		return host.Get(lister.Children)
	})
}

// Merged concatenates sub-groups and leaf layers of host.SplitChildLister
// handles, sub-groups first. One failing collection does not hide the other;
// the source only fails when both do.
func Merged() ChildrenSource {
	return ChildrenFunc(func(layer host.Layer) ([]host.Layer, error) {
		lister, ok := layer.(host.SplitChildLister)
		if !ok {
			return nil, ErrUnsupported
		}
		groups, groupsErr := host.Get(lister.SubGroups)
		leaves, leavesErr := host.Get(lister.LeafLayers)
		if groupsErr != nil && leavesErr != nil {
			return nil, errors.Join(groupsErr, leavesErr)
		}
		children := make([]host.Layer, 0, len(groups)+len(leaves))
		children = append(children, groups...)
		children = append(children, leaves...)
		return children, nil
	})
}

// FirstNonEmpty tries sources in order and returns the first non-empty
// result. Unsupported and failing sources are skipped. The error of the last
// failing source is returned only when no source succeeded at all; a handle
// no source supports has no children.
func FirstNonEmpty(sources ...ChildrenSource) ChildrenSource {
	return ChildrenFunc(func(layer host.Layer) ([]host.Layer, error) {
		var lastErr error
		succeeded := false
		for _, src := range sources {
			children, err := src.Children(layer)
			if errors.Is(err, ErrUnsupported) {
				continue
			}
			if err != nil {
				lastErr = err
				continue
			}
			succeeded = true
			if len(children) > 0 {
				return children, nil
			}
		}
		if succeeded {
			return nil, nil
		}
		return nil, lastErr
	})
}

// DefaultChildren prefers the unified collection and falls back to merging
// the split collections.
func DefaultChildren() ChildrenSource {
	return FirstNonEmpty(Unified(), Merged())
}
