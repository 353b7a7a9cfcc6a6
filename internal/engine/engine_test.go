package engine

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/danieljhkim/layerctl/internal/host"
	"github.com/danieljhkim/layerctl/internal/host/memhost"
)

// --- helpers ---

// scenarioDoc builds [A, Group1[B, C], D].
func scenarioDoc() *memhost.Document {
	return memhost.NewDocument("scenario",
		memhost.Leaf("A"),
		memhost.Group("Group1", memhost.Leaf("B"), memhost.Leaf("C")),
		memhost.Leaf("D"),
	)
}

func newTestEngine(doc *memhost.Document) *Engine {
	return New(&memhost.Application{Doc: doc}, nil)
}

func treeOrder(doc *memhost.Document) []string {
	var names []string
	var walk func(nodes []*memhost.Node)
	walk = func(nodes []*memhost.Node) {
		for _, n := range nodes {
			names = append(names, n.Name)
			walk(n.Children)
		}
	}
	walk(doc.Roots())
	return names
}

// activeOverride reports a fixed active layer instead of the document's.
type activeOverride struct {
	*memhost.Document
	active host.Layer
}

func (d *activeOverride) ActiveLayer() (host.Layer, error) { return d.active, nil }

type overrideApp struct {
	doc host.Document
}

func (a *overrideApp) ActiveDocument() (host.Document, error) { return a.doc, nil }

// panickyDoc panics inside every mutating call.
type panickyDoc struct {
	*memhost.Document
}

func (d *panickyDoc) MoveLayer(host.Layer, host.Layer, host.Placement) error {
	panic("automation bridge crashed")
}

func (d *panickyDoc) SetActiveLayer(host.Layer) error {
	panic("automation bridge crashed")
}

// --- ActivateByIndex ---

func TestActivateByIndex_Scenario(t *testing.T) {
	tests := []struct {
		index int
		want  string
	}{
		{index: 0, want: "A"},
		{index: 1, want: "Group1"},
		{index: 2, want: "B"},
		{index: 3, want: "C"},
		{index: 4, want: "D"},
		{index: -1, want: "D"},
		{index: -5, want: "A"},
	}

	for _, tt := range tests {
		doc := scenarioDoc()
		eng := newTestEngine(doc)

		result, err := eng.ActivateByIndex(context.Background(), &ActivateByIndexRequest{Index: tt.index})
		if err != nil {
			t.Fatalf("ActivateByIndex(%d) error = %v", tt.index, err)
		}
		if result.Name != tt.want {
			t.Errorf("ActivateByIndex(%d) = %q, want %q", tt.index, result.Name, tt.want)
		}
		if doc.Active().Name != tt.want {
			t.Errorf("ActivateByIndex(%d) active = %q, want %q", tt.index, doc.Active().Name, tt.want)
		}
		if len(doc.Mutations()) != 1 {
			t.Errorf("ActivateByIndex(%d) mutations = %v, want one", tt.index, doc.Mutations())
		}
	}
}

func TestActivateByIndex_NegativeOneEqualsLast(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(scenarioDoc())

	last, err := eng.ActivateByIndex(ctx, &ActivateByIndexRequest{Index: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	neg, err := eng.ActivateByIndex(ctx, &ActivateByIndexRequest{Index: -1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *last != *neg {
		t.Errorf("index -1 = %+v, index N-1 = %+v", neg, last)
	}
}

func TestActivateByIndex_OutOfRange(t *testing.T) {
	for _, idx := range []int{5, 6, -6, 100} {
		doc := scenarioDoc()
		eng := newTestEngine(doc)

		_, err := eng.ActivateByIndex(context.Background(), &ActivateByIndexRequest{Index: idx})
		if !errors.Is(err, ErrOutOfRange) {
			t.Errorf("ActivateByIndex(%d) error = %v, want ErrOutOfRange", idx, err)
		}
		if errors.Is(err, ErrNoLayers) {
			t.Errorf("ActivateByIndex(%d) reported an empty document", idx)
		}
		if len(doc.Mutations()) != 0 {
			t.Errorf("ActivateByIndex(%d) mutated: %v", idx, doc.Mutations())
		}
	}
}

func TestActivateByIndex_EmptyDocument(t *testing.T) {
	eng := newTestEngine(memhost.NewDocument("empty"))

	for _, idx := range []int{0, -1, 3} {
		_, err := eng.ActivateByIndex(context.Background(), &ActivateByIndexRequest{Index: idx})
		if !errors.Is(err, ErrNoLayers) {
			t.Errorf("ActivateByIndex(%d) error = %v, want ErrNoLayers", idx, err)
		}
		if !errors.Is(err, ErrOutOfRange) {
			t.Errorf("ActivateByIndex(%d) error = %v, should also be out of range", idx, err)
		}
	}
}

// --- ActivateByName ---

func TestActivateByName(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		wantName  string
		wantIndex int
		wantErr   error
	}{
		{name: "exact", target: "C", wantName: "C", wantIndex: 3},
		{name: "case insensitive", target: "group1", wantName: "Group1", wantIndex: 1},
		{name: "first in traversal order wins", target: "dup", wantName: "Dup", wantIndex: 2},
		{name: "no partial match", target: "Gro", wantErr: ErrNotFound},
		{name: "miss", target: "Z", wantErr: ErrNotFound},
		{name: "empty", target: "  ", wantErr: ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := memhost.NewDocument("doc",
				memhost.Leaf("A"),
				memhost.Group("Group1", memhost.Leaf("Dup"), memhost.Leaf("C")),
				memhost.Leaf("dup"),
			)
			eng := newTestEngine(doc)

			result, err := eng.ActivateByName(context.Background(), &ActivateByNameRequest{Target: tt.target})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				if len(doc.Mutations()) != 0 {
					t.Errorf("failed activation mutated: %v", doc.Mutations())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Name != tt.wantName || int(result.Index) != tt.wantIndex {
				t.Errorf("result = %+v, want %s@%d", result, tt.wantName, tt.wantIndex)
			}
			if doc.Active() != doc.Find(tt.wantName) {
				t.Errorf("active = %q", doc.Active().Name)
			}
		})
	}
}

func TestActivateByName_HostFailure(t *testing.T) {
	doc := scenarioDoc()
	doc.ActivateErr = errors.New("dialog open")
	eng := newTestEngine(doc)

	_, err := eng.ActivateByName(context.Background(), &ActivateByNameRequest{Target: "B"})
	if !errors.Is(err, ErrHostMutation) {
		t.Fatalf("error = %v, want ErrHostMutation", err)
	}
}

func TestActivateByName_HostPanicIsRecovered(t *testing.T) {
	doc := scenarioDoc()
	eng := New(&overrideApp{doc: &panickyDoc{Document: doc}}, nil)

	_, err := eng.ActivateByName(context.Background(), &ActivateByNameRequest{Target: "B"})
	if !errors.Is(err, ErrHostMutation) {
		t.Fatalf("error = %v, want ErrHostMutation", err)
	}
}

// --- MoveActiveLayer ---

func TestMoveActiveLayer_ScenarioTopmost(t *testing.T) {
	doc := scenarioDoc()
	// Host stacking order D, C, B, A; the group reports no index.
	doc.Find("D").Stack = 0
	doc.Find("C").Stack = 1
	doc.Find("B").Stack = 2
	doc.Find("A").Stack = 3
	doc.Find("Group1").Stack = "n/a"
	doc.Select(doc.Find("D"))
	eng := newTestEngine(doc)

	_, err := eng.MoveActiveLayer(context.Background(), &MoveRequest{Delta: Up})
	if !errors.Is(err, ErrTopmost) {
		t.Fatalf("error = %v, want ErrTopmost", err)
	}
	if len(doc.Mutations()) != 0 {
		t.Errorf("mutations = %v, want none", doc.Mutations())
	}
}

func TestMoveActiveLayer_UsesStackingOrderNeighbour(t *testing.T) {
	doc := scenarioDoc()
	doc.Find("D").Stack = 0
	doc.Find("C").Stack = 1
	doc.Find("B").Stack = 2
	doc.Find("A").Stack = 3
	doc.Find("Group1").Stack = nil
	doc.Find("Group1").StackErr = errors.New("unreadable")
	doc.Select(doc.Find("B"))
	eng := newTestEngine(doc)

	result, err := eng.MoveActiveLayer(context.Background(), &MoveRequest{Delta: Down})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// B is third in traversal order but sits above A in stacking order.
	if result.Reference != "A" || result.Placement != "after" {
		t.Errorf("result = %+v, want after A", result)
	}
	if result.From != 2 || result.To != 3 {
		t.Errorf("positions = %d->%d, want 2->3", result.From, result.To)
	}
	want := []string{"move B after A"}
	if got := doc.Mutations(); !reflect.DeepEqual(got, want) {
		t.Errorf("mutations = %v, want %v", got, want)
	}
}

func TestMoveActiveLayer_SplitShapeDivergence(t *testing.T) {
	set := memhost.Group("Set", memhost.Leaf("l1"), memhost.Group("inner", memhost.Leaf("x")), memhost.Leaf("l2"))
	set.Shape = memhost.ShapeSplit
	doc := memhost.NewDocument("doc", set, memhost.Leaf("top"))
	doc.Select(doc.Find("l1"))
	eng := newTestEngine(doc)

	// Traversal order lists sub-groups first (Set, inner, x, l1, l2, top);
	// stacking order follows the tree (Set, l1, inner, x, l2, top).
	list, err := eng.ListLayers(context.Background())
	if err != nil {
		t.Fatalf("ListLayers() error = %v", err)
	}
	if list.Layers[3].Name != "l1" {
		t.Fatalf("traversal index 3 = %q, want l1", list.Layers[3].Name)
	}

	result, err := eng.MoveActiveLayer(context.Background(), &MoveRequest{Delta: Up})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Reference != "Set" || result.Placement != "before" {
		t.Errorf("result = %+v, want before Set", result)
	}
	if result.From != 1 || result.To != 0 {
		t.Errorf("positions = %d->%d, want 1->0", result.From, result.To)
	}
	if got := treeOrder(doc); !reflect.DeepEqual(got, []string{"l1", "Set", "inner", "x", "l2", "top"}) {
		t.Errorf("tree = %v", got)
	}
}

func TestMoveActiveLayer_Bottommost(t *testing.T) {
	doc := scenarioDoc()
	doc.Select(doc.Find("D"))
	eng := newTestEngine(doc)

	_, err := eng.MoveActiveLayer(context.Background(), &MoveRequest{Delta: Down})
	if !errors.Is(err, ErrBottommost) {
		t.Fatalf("error = %v, want ErrBottommost", err)
	}
	if errors.Is(err, ErrTopmost) {
		t.Error("bottom boundary reported as top boundary")
	}
	if len(doc.Mutations()) != 0 {
		t.Errorf("mutations = %v, want none", doc.Mutations())
	}
}

func TestMoveActiveLayer_RoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		doc    func() *memhost.Document
		active string
	}{
		{
			name: "flat document",
			doc: func() *memhost.Document {
				return memhost.NewDocument("flat", memhost.Leaf("A"), memhost.Leaf("B"), memhost.Leaf("C"), memhost.Leaf("D"))
			},
			active: "B",
		},
		{
			name: "inside a group",
			doc: func() *memhost.Document {
				return memhost.NewDocument("nested",
					memhost.Leaf("A"),
					memhost.Group("G", memhost.Leaf("B"), memhost.Leaf("C"), memhost.Leaf("E")),
					memhost.Leaf("D"),
				)
			},
			active: "C",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			doc := tt.doc()
			doc.Select(doc.Find(tt.active))
			before := treeOrder(doc)
			eng := newTestEngine(doc)

			down, err := eng.MoveActiveLayer(ctx, &MoveRequest{Delta: Down})
			if err != nil {
				t.Fatalf("move down: %v", err)
			}
			up, err := eng.MoveActiveLayer(ctx, &MoveRequest{Delta: Up})
			if err != nil {
				t.Fatalf("move up: %v", err)
			}

			if up.To != down.From {
				t.Errorf("position after round trip = %d, want %d", up.To, down.From)
			}
			if got := treeOrder(doc); !reflect.DeepEqual(got, before) {
				t.Errorf("tree = %v, want %v", got, before)
			}
			if len(doc.Mutations()) != 2 {
				t.Errorf("mutations = %v, want two", doc.Mutations())
			}
		})
	}
}

// Crossing a group boundary is not reversible: moving down past a group
// places the layer after it, and moving back up lands before the group's last
// child, inside the group.
func TestMoveActiveLayer_AcrossGroupBoundary(t *testing.T) {
	ctx := context.Background()
	doc := scenarioDoc()
	doc.Select(doc.Find("A"))
	eng := newTestEngine(doc)

	down, err := eng.MoveActiveLayer(ctx, &MoveRequest{Delta: Down})
	if err != nil {
		t.Fatalf("move down: %v", err)
	}
	if down.Reference != "Group1" || down.Placement != host.PlaceAfter.String() {
		t.Errorf("move down placed %s %q, want after Group1", down.Placement, down.Reference)
	}
	if got := treeOrder(doc); !reflect.DeepEqual(got, []string{"Group1", "B", "C", "A", "D"}) {
		t.Errorf("tree after move down = %v", got)
	}
	if doc.Find("A").Parent() != nil {
		t.Error("A should stay at the document root after moving down")
	}

	up, err := eng.MoveActiveLayer(ctx, &MoveRequest{Delta: Up})
	if err != nil {
		t.Fatalf("move up: %v", err)
	}
	if up.Reference != "C" || up.Placement != host.PlaceBefore.String() {
		t.Errorf("move up placed %s %q, want before C", up.Placement, up.Reference)
	}
	if got := treeOrder(doc); !reflect.DeepEqual(got, []string{"Group1", "B", "A", "C", "D"}) {
		t.Errorf("tree after move up = %v", got)
	}
	if doc.Find("A").Parent() != doc.Find("Group1") {
		t.Error("A should end up inside Group1")
	}
}

func TestMoveActiveLayer_UnknownStackIndex(t *testing.T) {
	tests := []struct {
		name  string
		setup func(n *memhost.Node)
	}{
		{name: "read error", setup: func(n *memhost.Node) { n.StackErr = errors.New("denied") }},
		{name: "non-numeric", setup: func(n *memhost.Node) { n.Stack = "top" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := scenarioDoc()
			tt.setup(doc.Find("A"))
			eng := newTestEngine(doc)

			_, err := eng.MoveActiveLayer(context.Background(), &MoveRequest{Delta: Down})
			if !errors.Is(err, ErrStackIndexUnknown) {
				t.Fatalf("error = %v, want ErrStackIndexUnknown", err)
			}
			if len(doc.Mutations()) != 0 {
				t.Errorf("mutations = %v, want none", doc.Mutations())
			}
		})
	}
}

func TestMoveActiveLayer_ActiveNotInTree(t *testing.T) {
	doc := scenarioDoc()
	other := memhost.NewDocument("other", memhost.Leaf("stray"))
	other.Find("stray").Stack = 99
	stray, _ := other.ActiveLayer()
	eng := New(&overrideApp{doc: &activeOverride{Document: doc, active: stray}}, nil)

	_, err := eng.MoveActiveLayer(context.Background(), &MoveRequest{Delta: Up})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	if len(doc.Mutations()) != 0 {
		t.Errorf("mutations = %v, want none", doc.Mutations())
	}
}

func TestMoveActiveLayer_HostFailures(t *testing.T) {
	t.Run("error", func(t *testing.T) {
		doc := scenarioDoc()
		doc.MoveErr = errors.New("layer locked")
		eng := newTestEngine(doc)

		_, err := eng.MoveActiveLayer(context.Background(), &MoveRequest{Delta: Down})
		if !errors.Is(err, ErrHostMutation) {
			t.Fatalf("error = %v, want ErrHostMutation", err)
		}
	})

	t.Run("panic", func(t *testing.T) {
		eng := New(&overrideApp{doc: &panickyDoc{Document: scenarioDoc()}}, nil)

		_, err := eng.MoveActiveLayer(context.Background(), &MoveRequest{Delta: Down})
		if !errors.Is(err, ErrHostMutation) {
			t.Fatalf("error = %v, want ErrHostMutation", err)
		}
	})
}

func TestMoveActiveLayer_InvalidDelta(t *testing.T) {
	doc := scenarioDoc()
	eng := newTestEngine(doc)

	for _, delta := range []Direction{0, 2, -3} {
		_, err := eng.MoveActiveLayer(context.Background(), &MoveRequest{Delta: delta})
		if !errors.Is(err, ErrValidation) {
			t.Errorf("delta %d: error = %v, want ErrValidation", delta, err)
		}
	}
	if len(doc.Mutations()) != 0 {
		t.Errorf("mutations = %v, want none", doc.Mutations())
	}
}

// --- DuplicateActiveLayer ---

func TestDuplicateActiveLayer(t *testing.T) {
	doc := memhost.NewDocument("doc", memhost.Leaf("X"), memhost.Leaf("Y"))
	eng := newTestEngine(doc)
	before := doc.Count()

	result, err := eng.DuplicateActiveLayer(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Name == "" || !result.Activated {
		t.Errorf("result = %+v", result)
	}
	if doc.Count() != before+1 {
		t.Errorf("count = %d, want %d", doc.Count(), before+1)
	}
}

func TestDuplicateActiveLayer_HostKeepsOriginalActive(t *testing.T) {
	doc := memhost.NewDocument("doc", memhost.Leaf("X"))
	doc.DuplicateActivates = false
	eng := newTestEngine(doc)

	result, err := eng.DuplicateActiveLayer(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Active() == doc.Find("X") {
		t.Error("duplicate should have been activated")
	}
	if result.Source != "X" || result.Name == "X" {
		t.Errorf("result = %+v", result)
	}
}

func TestDuplicateActiveLayer_ActivationFailureIsNotFatal(t *testing.T) {
	doc := memhost.NewDocument("doc", memhost.Leaf("X"))
	doc.ActivateErr = errors.New("busy")
	eng := newTestEngine(doc)

	result, err := eng.DuplicateActiveLayer(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Activated {
		t.Error("Activated should be false")
	}
	if doc.Count() != 2 {
		t.Errorf("count = %d, want 2", doc.Count())
	}
}

func TestDuplicateActiveLayer_HostFailure(t *testing.T) {
	doc := memhost.NewDocument("doc", memhost.Leaf("X"))
	doc.DuplicateErr = errors.New("out of memory")
	eng := newTestEngine(doc)

	_, err := eng.DuplicateActiveLayer(context.Background())
	if !errors.Is(err, ErrHostMutation) {
		t.Fatalf("error = %v, want ErrHostMutation", err)
	}
	if doc.Count() != 1 {
		t.Errorf("count = %d, want 1", doc.Count())
	}
}

// --- read-only views ---

func TestListLayers(t *testing.T) {
	doc := scenarioDoc()
	doc.Select(doc.Find("C"))
	doc.Find("A").Stack = "n/a"
	eng := newTestEngine(doc)

	result, err := eng.ListLayers(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Document != "scenario" || len(result.Layers) != 5 {
		t.Fatalf("result = %+v", result)
	}
	for _, info := range result.Layers {
		if info.Active != (info.Name == "C") {
			t.Errorf("%s active = %v", info.Name, info.Active)
		}
	}
	if result.Layers[0].Stack != nil {
		t.Error("A should have no stack index")
	}
	if s := result.Layers[2].Stack; s == nil || *s != 2 {
		t.Errorf("B stack = %v, want 2", s)
	}
	if len(doc.Mutations()) != 0 {
		t.Errorf("listing mutated: %v", doc.Mutations())
	}
}

func TestActiveLayer(t *testing.T) {
	doc := scenarioDoc()
	doc.Select(doc.Find("B"))
	eng := newTestEngine(doc)

	result, err := eng.ActiveLayer(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Name != "B" || result.Index != 2 {
		t.Errorf("result = %+v", result)
	}
}

func TestNoDocument(t *testing.T) {
	eng := New(&memhost.Application{}, nil)
	ctx := context.Background()

	if _, err := eng.ListLayers(ctx); !errors.Is(err, ErrNoDocument) {
		t.Errorf("ListLayers error = %v", err)
	}
	if _, err := eng.MoveActiveLayer(ctx, &MoveRequest{Delta: Up}); !errors.Is(err, ErrNoDocument) {
		t.Errorf("MoveActiveLayer error = %v", err)
	}
	if _, err := eng.DuplicateActiveLayer(ctx); !errors.Is(err, ErrNoDocument) {
		t.Errorf("DuplicateActiveLayer error = %v", err)
	}
}

func TestNoActiveLayer(t *testing.T) {
	doc := scenarioDoc()
	doc.ActiveLayerErr = errors.New("nothing targeted")
	eng := newTestEngine(doc)

	if _, err := eng.MoveActiveLayer(context.Background(), &MoveRequest{Delta: Up}); !errors.Is(err, ErrNoActiveLayer) {
		t.Errorf("error = %v, want ErrNoActiveLayer", err)
	}
}
