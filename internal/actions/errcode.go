package actions

import (
	"errors"

	"github.com/danieljhkim/layerctl/internal/docfile"
	"github.com/danieljhkim/layerctl/internal/engine"
)

// Code is a stable error kind reported to action callers.
type Code string

const (
	CodeInternal          Code = "internal"
	CodeUnknownAction     Code = "unknown_action"
	CodeInvalidParams     Code = "invalid_params"
	CodeNoDocument        Code = "no_document"
	CodeNoActiveLayer     Code = "no_active_layer"
	CodeNoLayers          Code = "no_layers"
	CodeOutOfRange        Code = "out_of_range"
	CodeNotFound          Code = "not_found"
	CodeStackIndexUnknown Code = "stack_index_unknown"
	CodeTopmost           Code = "topmost"
	CodeBottommost        Code = "bottommost"
	CodeHostError         Code = "host_error"
	CodeConflict          Code = "conflict"
	CodeInvalidDocument   Code = "invalid_document"
)

// classes is checked in order; the first match wins. An empty document is
// reported as no_layers even though it is also out of range.
var classes = []struct {
	err  error
	code Code
}{
	{ErrUnknownAction, CodeUnknownAction},
	{ErrInvalidParams, CodeInvalidParams},
	{engine.ErrValidation, CodeInvalidParams},
	{engine.ErrNoDocument, CodeNoDocument},
	{engine.ErrNoActiveLayer, CodeNoActiveLayer},
	{engine.ErrNoLayers, CodeNoLayers},
	{engine.ErrOutOfRange, CodeOutOfRange},
	{engine.ErrNotFound, CodeNotFound},
	{engine.ErrStackIndexUnknown, CodeStackIndexUnknown},
	{engine.ErrTopmost, CodeTopmost},
	{engine.ErrBottommost, CodeBottommost},
	{engine.ErrHostMutation, CodeHostError},
	{docfile.ErrConflict, CodeConflict},
	{docfile.ErrInvalid, CodeInvalidDocument},
}

// Classify maps an error to its code.
func Classify(err error) Code {
	if err == nil {
		return ""
	}
	for _, c := range classes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeInternal
}

// Failure is the JSON body reported for a failed action.
type Failure struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	Code  Code   `json:"code"`
}

// NewFailure describes err.
func NewFailure(err error) Failure {
	return Failure{
		OK:    false,
		Error: err.Error(),
		Code:  Classify(err),
	}
}
