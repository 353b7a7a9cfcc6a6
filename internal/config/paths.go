// Package config manages layerctl configuration and filesystem paths.
//
// Settings come from, in increasing priority: built-in defaults, the TOML
// config file ($LAYERCTL_ROOT/config.toml), LAYERCTL_* environment
// variables, and command-line overrides. The default root is ~/.layerctl/.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains all the filesystem paths used by layerctl.
type Paths struct {
	// Root is the base directory for all layerctl data (default: ~/.layerctl)
	Root string

	// Config is the path to the global config file
	Config string
}

// DefaultPaths returns the default paths for layerctl.
// Paths can be overridden with environment variables:
// - LAYERCTL_ROOT: Override the root directory
func DefaultPaths() (*Paths, error) {
	root := os.Getenv("LAYERCTL_ROOT")
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		root = filepath.Join(home, ".layerctl")
	}

	return &Paths{
		Root:   root,
		Config: filepath.Join(root, "config.toml"),
	}, nil
}
