// Package photoshop drives a running Photoshop instance through its COM
// automation interface.
//
// COM objects are apartment bound, so an Application locks the calling
// goroutine to its OS thread from Connect until Close, and every call must
// come from that goroutine. Handles handed out to callers stay valid until
// Close releases them.
package photoshop

import (
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
	"github.com/spf13/cast"

	"github.com/danieljhkim/layerctl/internal/host"
)

// ErrForeignHandle is returned for layer handles not created by this package.
var ErrForeignHandle = errors.New("layer handle does not belong to this Photoshop session")

// sFalse is returned by CoInitializeEx when the thread already joined an apartment.
const sFalse = 0x1

// Application is a connected Photoshop instance.
type Application struct {
	unknown *ole.IUnknown
	app     *ole.IDispatch
	logger  *log.Logger

	// owned holds every dispatch pointer handed out, released on Close.
	owned  []*ole.IDispatch
	closed bool
}

// Connect attaches to (or launches) the COM server registered as progID.
func Connect(progID string, logger *log.Logger) (a *Application, err error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	runtime.LockOSThread()
	defer func() {
		if err != nil {
			runtime.UnlockOSThread()
		}
	}()

	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil && !benignInitError(err) {
		return nil, fmt.Errorf("failed to initialize COM: %w", err)
	}
	defer func() {
		if err != nil {
			ole.CoUninitialize()
		}
	}()

	unknown, err := oleutil.CreateObject(progID)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", progID, err)
	}
	app, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		unknown.Release()
		return nil, fmt.Errorf("%s does not support automation: %w", progID, err)
	}

	logger.Debug("connected to host", "prog_id", progID)
	return &Application{unknown: unknown, app: app, logger: logger}, nil
}

func benignInitError(err error) bool {
	var oleErr *ole.OleError
	return errors.As(err, &oleErr) && oleErr.Code() == sFalse
}

// Close releases every COM object obtained through the session and leaves
// the apartment. It must run on the goroutine that called Connect.
func (a *Application) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true

	for i := len(a.owned) - 1; i >= 0; i-- {
		a.owned[i].Release()
	}
	a.owned = nil
	a.app.Release()
	a.unknown.Release()

	ole.CoUninitialize()
	runtime.UnlockOSThread()
	return nil
}

// ActiveDocument returns the frontmost document.
func (a *Application) ActiveDocument() (host.Document, error) {
	disp, err := a.dispatch(a.app, "ActiveDocument")
	if err != nil {
		return nil, fmt.Errorf("no active document: %w", err)
	}
	return &document{app: a, disp: disp}, nil
}

// dispatch reads an object-valued property and takes ownership of it.
func (a *Application) dispatch(obj *ole.IDispatch, name string, args ...any) (*ole.IDispatch, error) {
	if a.closed {
		return nil, errors.New("photoshop session is closed")
	}
	v, err := oleutil.GetProperty(obj, name, args...)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	disp := v.ToIDispatch()
	if disp == nil {
		_ = v.Clear()
		return nil, fmt.Errorf("read %s: not an object", name)
	}
	a.owned = append(a.owned, disp)
	return disp, nil
}

// value reads a scalar property.
func (a *Application) value(obj *ole.IDispatch, name string) (any, error) {
	if a.closed {
		return nil, errors.New("photoshop session is closed")
	}
	v, err := oleutil.GetProperty(obj, name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	defer func() {
		_ = v.Clear()
	}()
	return v.Value(), nil
}

// collection reads a COM collection property into layer handles. Items are
// addressed from 1.
func (a *Application) collection(obj *ole.IDispatch, name string) ([]host.Layer, error) {
	coll, err := a.dispatch(obj, name)
	if err != nil {
		return nil, err
	}
	rawCount, err := a.value(coll, "Count")
	if err != nil {
		return nil, err
	}
	count, err := cast.ToIntE(rawCount)
	if err != nil {
		return nil, fmt.Errorf("read %s.Count: %w", name, err)
	}

	out := make([]host.Layer, 0, count)
	for i := 1; i <= count; i++ {
		item, err := a.dispatch(coll, "Item", i)
		if err != nil {
			return nil, fmt.Errorf("read %s[%d]: %w", name, i, err)
		}
		out = append(out, a.wrap(item))
	}
	return out, nil
}

// wrap returns a handle for disp. Every object gets the same handle type;
// whether it is a group is left to children discovery.
func (a *Application) wrap(disp *ole.IDispatch) host.Layer {
	return &layer{app: a, disp: disp}
}

func (a *Application) unwrap(h host.Layer) (*ole.IDispatch, error) {
	if l, ok := h.(*layer); ok && l.app == a {
		return l.disp, nil
	}
	return nil, ErrForeignHandle
}

type document struct {
	app  *Application
	disp *ole.IDispatch
}

func (d *document) Name() (string, error) {
	v, err := d.app.value(d.disp, "Name")
	if err != nil {
		return "", err
	}
	return cast.ToStringE(v)
}

func (d *document) Layers() ([]host.Layer, error) {
	return d.app.collection(d.disp, "Layers")
}

func (d *document) ActiveLayer() (host.Layer, error) {
	disp, err := d.app.dispatch(d.disp, "ActiveLayer")
	if err != nil {
		return nil, err
	}
	return d.app.wrap(disp), nil
}

func (d *document) SetActiveLayer(h host.Layer) error {
	disp, err := d.app.unwrap(h)
	if err != nil {
		return err
	}
	v, err := oleutil.PutProperty(d.disp, "ActiveLayer", disp)
	if err != nil {
		return fmt.Errorf("set ActiveLayer: %w", err)
	}
	_ = v.Clear()
	return nil
}

func (d *document) MoveLayer(h, reference host.Layer, placement host.Placement) error {
	disp, err := d.app.unwrap(h)
	if err != nil {
		return err
	}
	ref, err := d.app.unwrap(reference)
	if err != nil {
		return err
	}
	code, err := placementCode(placement)
	if err != nil {
		return err
	}
	v, err := oleutil.CallMethod(disp, "Move", ref, code)
	if err != nil {
		return fmt.Errorf("move layer: %w", err)
	}
	_ = v.Clear()
	return nil
}

func (d *document) DuplicateLayer(h host.Layer) (host.Layer, error) {
	disp, err := d.app.unwrap(h)
	if err != nil {
		return nil, err
	}
	v, err := oleutil.CallMethod(disp, "Duplicate")
	if err != nil {
		return nil, fmt.Errorf("duplicate layer: %w", err)
	}
	dup := v.ToIDispatch()
	if dup == nil {
		_ = v.Clear()
		return nil, errors.New("duplicate layer: no layer returned")
	}
	d.app.owned = append(d.app.owned, dup)
	return d.app.wrap(dup), nil
}

// layer is an ArtLayer or a LayerSet. Children reads fail on art layers,
// which turns them into leaves.
type layer struct {
	app  *Application
	disp *ole.IDispatch
}

func (l *layer) Name() (string, error) {
	v, err := l.app.value(l.disp, "Name")
	if err != nil {
		return "", err
	}
	return cast.ToStringE(v)
}

func (l *layer) Visible() (bool, error) {
	v, err := l.app.value(l.disp, "Visible")
	if err != nil {
		return false, err
	}
	return cast.ToBoolE(v)
}

// Kind labels layer sets "group" since they have no Kind property. The
// label is informational only.
func (l *layer) Kind() (string, error) {
	if typename, err := l.app.value(l.disp, "typename"); err == nil && cast.ToString(typename) == typeLayerSet {
		return "group", nil
	}
	v, err := l.app.value(l.disp, "Kind")
	if err != nil {
		return "", err
	}
	return kindName(v)
}

// StackIndex returns ItemIndex unchanged.
func (l *layer) StackIndex() (any, error) {
	return l.app.value(l.disp, "ItemIndex")
}

func (l *layer) Children() ([]host.Layer, error) {
	return l.app.collection(l.disp, "Layers")
}

func (l *layer) SubGroups() ([]host.Layer, error) {
	return l.app.collection(l.disp, "LayerSets")
}

func (l *layer) LeafLayers() ([]host.Layer, error) {
	return l.app.collection(l.disp, "ArtLayers")
}

var (
	_ host.Application      = (*Application)(nil)
	_ host.Document         = (*document)(nil)
	_ host.StackIndexer     = (*layer)(nil)
	_ host.ChildLister      = (*layer)(nil)
	_ host.SplitChildLister = (*layer)(nil)
)
