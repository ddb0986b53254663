// Package project loads the optional per-repository build manifest.
//
// A repository may carry an fwbuild.jsonc file at its root describing
// how its firmware is built. The file is JSONC (JSON with comments), so
// teams can annotate toolchain quirks in place; comments are stripped
// with github.com/tidwall/jsonc before parsing with encoding/json.
//
// The manifest is entirely optional — every field has a CLI-level
// default, and a missing file is not an error.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"

	"github.com/embedk/fwbuild/internal/model"
)

// ManifestName is the file looked up at the repository root.
const ManifestName = "fwbuild.jsonc"

// Manifest is the parsed build manifest.
type Manifest struct {
	// BuildCommand overrides the external build tool invocation. The
	// serial port and mode selector are appended as arguments.
	BuildCommand []string `json:"buildCommand,omitempty"`

	// Port overrides the default serial device for this repository.
	Port string `json:"port,omitempty"`

	// Environments narrows the environment facet choices offered by
	// interactive prompts (e.g. a firmware-only repo lists just "F").
	Environments []string `json:"environments,omitempty"`
}

// Validate checks the manifest fields that have a grammar.
func (m *Manifest) Validate() error {
	for _, e := range m.Environments {
		if _, err := model.ParseEnvironment(e); err != nil {
			return fmt.Errorf("manifest environments: %w", err)
		}
	}
	if len(m.BuildCommand) == 1 && m.BuildCommand[0] == "" {
		return fmt.Errorf("manifest buildCommand must not be a single empty string")
	}
	return nil
}

// AllowsEnv reports whether the environment is permitted by the
// manifest. An empty Environments list permits everything.
func (m *Manifest) AllowsEnv(e model.Environment) bool {
	if m == nil || len(m.Environments) == 0 {
		return true
	}
	for _, allowed := range m.Environments {
		if allowed == string(e) {
			return true
		}
	}
	return false
}

// Load reads the manifest from dir. A missing file yields (nil, nil).
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestName)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var m Manifest
	// jsonc.ToJSON strips comments and trailing commas, producing
	// bytes the standard json package accepts.
	if err := json.Unmarshal(jsonc.ToJSON(data), &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &m, nil
}
