package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/danieljhkim/layerctl/internal/clock"
	"github.com/danieljhkim/layerctl/internal/config"
	"github.com/danieljhkim/layerctl/internal/docfile"
	"github.com/danieljhkim/layerctl/internal/engine"
	"github.com/danieljhkim/layerctl/internal/fsops"
	"github.com/danieljhkim/layerctl/internal/hash"
	"github.com/danieljhkim/layerctl/internal/host"
	"github.com/danieljhkim/layerctl/internal/host/memhost"
	"github.com/danieljhkim/layerctl/internal/host/photoshop"
	"github.com/danieljhkim/layerctl/internal/logging"
)

// errReported marks a failure that was already written to the output.
var errReported = errors.New("failure already reported")

// Reported reports whether err was already shown to the user.
func Reported(err error) bool {
	return errors.Is(err, errReported)
}

// connectPhotoshop is replaced in tests.
var connectPhotoshop = func(progID string, logger *log.Logger) (host.Application, io.Closer, error) {
	app, err := photoshop.Connect(progID, logger)
	if err != nil {
		return nil, nil, err
	}
	return app, app, nil
}

// loadConfig resolves configuration, letting explicitly set flags win.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	paths, err := config.DefaultPaths()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get config paths: %w", err)
	}

	overrides := map[string]any{}
	flags := cmd.Flags()
	if flags.Changed("backend") {
		overrides["host.backend"] = backendFlag
	}
	if flags.Changed("document") {
		overrides["host.document"] = documentFlag
	}
	if flags.Changed("log-level") {
		overrides["log.level"] = logLevelFlag
	}

	return config.Load(config.LoadOptions{
		ConfigFile: configFlag,
		Paths:      paths,
		Overrides:  overrides,
	})
}

// session is an engine bound to an open host document.
type session struct {
	engine *engine.Engine
	logger *log.Logger

	// file backend only
	store *docfile.Store
	doc   *docfile.Session

	closer io.Closer
}

// openSession connects to the configured backend.
func openSession(cmd *cobra.Command) (*session, error) {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	switch cfg.Host.Backend {
	case config.BackendPhotoshop:
		app, closer, err := connectPhotoshop(cfg.Host.ProgID, logger)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", engine.ErrNoDocument, err)
		}
		return &session{
			engine: engine.New(app, logger),
			logger: logger,
			closer: closer,
		}, nil

	default:
		if cfg.Host.Document == "" {
			return nil, fmt.Errorf("%w: the file backend needs a document (pass --document or set host.document)", engine.ErrNoDocument)
		}
		store := docfile.NewStore(fsops.NewRealFS(), hash.NewSHA256Hasher(), &clock.RealClock{})
		doc, err := store.Open(cfg.Host.Document)
		if err != nil {
			return nil, err
		}
		logger.Debug("opened document", "path", doc.Path, "saved_at", doc.SavedAt)
		return &session{
			engine: engine.New(&memhost.Application{Doc: doc.Doc}, logger),
			logger: logger,
			store:  store,
			doc:    doc,
		}, nil
	}
}

// commit persists the document of the file backend. The photoshop backend
// applies changes live.
func (s *session) commit() error {
	if s.doc == nil {
		return nil
	}
	if err := s.store.Save(s.doc); err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	s.logger.Debug("saved document", "path", s.doc.Path)
	return nil
}

// Close releases the backend.
func (s *session) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// formatJSON formats a value as JSON.
func formatJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FormatError formats an error for display.
func FormatError(err error) string {
	return errorColor.Sprintf("Error: %v", err)
}

// outputJSON writes a value as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
