package layers

import (
	"cmp"
	"slices"

	"github.com/spf13/cast"

	"github.com/danieljhkim/layerctl/internal/host"
)

// ResolveStackIndex reads the host stacking index of layer.
// It reports false when the handle does not expose an index, reading it fails
// or panics, the value is nil, or the value is not an integer. It never fails
// in any other way.
func ResolveStackIndex(layer host.Layer) (StackIndex, bool) {
	if layer == nil {
		return 0, false
	}
	indexer, ok := layer.(host.StackIndexer)
	if !ok {
		return 0, false
	}
	raw, err := host.Get(indexer.StackIndex)
	if err != nil || raw == nil {
		return 0, false
	}
	n, err := cast.ToIntE(raw)
	if err != nil {
		return 0, false
	}
	return StackIndex(n), true
}

// BuildOrderedView orders records by host stacking index. Records whose index
// cannot be resolved follow all resolved records in traversal order. Equal
// stacking indices keep traversal order. No record is dropped.
func BuildOrderedView(records []Record) []OrderedRecord {
	view := make([]OrderedRecord, 0, len(records))
	for _, rec := range records {
		stack, known := ResolveStackIndex(rec.Handle)
		view = append(view, OrderedRecord{Record: rec, Stack: stack, Known: known})
	}

	slices.SortStableFunc(view, func(a, b OrderedRecord) int {
		if a.Known != b.Known {
			if a.Known {
				return -1
			}
			return 1
		}
		if a.Known {
			return cmp.Compare(a.Stack, b.Stack)
		}
		return cmp.Compare(a.Index, b.Index)
	})

	return view
}

// Locate returns the offset in view of the first resolved record whose
// stacking index is target. The offset is a position in the ordered view and
// has no relation to the record's traversal index.
func Locate(view []OrderedRecord, target StackIndex) (int, bool) {
	for pos, rec := range view {
		if rec.Known && rec.Stack == target {
			return pos, true
		}
	}
	return -1, false
}
