// Package engine implements the layer navigation operations of layerctl.
//
// The engine sits between the CLI/action adapters and a host backend. Every
// operation re-reads the live document: it flattens the layer tree, and for
// moves reconciles traversal order with the host stacking order, then issues
// at most one mutating host call.
//
// Key operations:
//   - ListLayers / ActiveLayer: read-only views of the document
//   - ActivateByName / ActivateByIndex: change the active layer
//   - MoveActiveLayer: move the active layer one step in stacking order
//   - DuplicateActiveLayer: duplicate the active layer and target the copy
//
// Failures are returned as errors wrapping the sentinels in errors.go.
package engine

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/danieljhkim/layerctl/internal/host"
	"github.com/danieljhkim/layerctl/internal/layers"
)

// Engine orchestrates layer operations against a host application.
// It holds no document state between calls.
type Engine struct {
	app       host.Application
	flattener *layers.Flattener
	logger    *log.Logger
}

// New creates a new Engine for app. logger may be nil.
func New(app host.Application, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{
		app:       app,
		flattener: layers.NewFlattener(logger),
		logger:    logger,
	}
}

// document returns the active document of the host.
func (e *Engine) document() (host.Document, error) {
	doc, err := host.Get(e.app.ActiveDocument)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoDocument, err)
	}
	if doc == nil {
		return nil, ErrNoDocument
	}
	return doc, nil
}

// flatten reads the current layer tree of doc.
func (e *Engine) flatten(doc host.Document) ([]layers.Record, error) {
	roots, err := host.Get(doc.Layers)
	if err != nil {
		return nil, fmt.Errorf("failed to read document layers: %w", err)
	}
	records := e.flattener.Flatten(roots)
	e.logger.Debug("flattened document", "layers", len(records))
	return records, nil
}

// activeLayer returns the host's active layer handle.
func (e *Engine) activeLayer(doc host.Document) (host.Layer, error) {
	active, err := host.Get(doc.ActiveLayer)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoActiveLayer, err)
	}
	if active == nil {
		return nil, ErrNoActiveLayer
	}
	return active, nil
}

// findActive returns the record matching the active layer. Handles are not
// comparable across reads, so the match uses the stacking index when the host
// reports one and falls back to the first record with the same name.
func findActive(records []layers.Record, active host.Layer) (layers.Record, bool) {
	if stack, ok := layers.ResolveStackIndex(active); ok {
		for _, rec := range records {
			if s, known := layers.ResolveStackIndex(rec.Handle); known && s == stack {
				return rec, true
			}
		}
	}
	name, err := host.Get(active.Name)
	if err != nil {
		return layers.Record{}, false
	}
	for _, rec := range records {
		if strings.EqualFold(rec.Name, name) {
			return rec, true
		}
	}
	return layers.Record{}, false
}

// layerName reads the name of h, returning fallback when it is unreadable.
func layerName(h host.Layer, fallback string) string {
	if h == nil {
		return fallback
	}
	name, err := host.Get(h.Name)
	if err != nil {
		return fallback
	}
	return name
}
