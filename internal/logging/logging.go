// Package logging builds the structured logger shared by the CLI and the engine.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = "warn"

// New returns a logger writing to w at the named level.
func New(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return log.NewWithOptions(w, log.Options{
		Prefix:          "layerctl",
		Level:           lvl,
		ReportTimestamp: lvl <= log.DebugLevel,
	}), nil
}

// ParseLevel maps a level name (debug, info, warn, error, fatal) to a log
// level. An empty name selects DefaultLevel.
func ParseLevel(name string) (log.Level, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		name = DefaultLevel
	}
	if name == "warning" {
		name = "warn"
	}
	lvl, err := log.ParseLevel(name)
	if err != nil {
		return 0, fmt.Errorf("invalid log level %q: want debug, info, warn or error", name)
	}
	return lvl, nil
}
