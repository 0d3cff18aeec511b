// SPDX-License-Identifier: MPL-2.0

// Package grouping associates skill results with enclosing plugin
// descriptors and folds them into release groups.
//
// A plugin descriptor is a plugin.json file (conventionally inside a
// .claude-plugin directory) somewhere above a skill's directory. The nearest
// descriptor wins; descriptors are read fresh each run since the repository
// state may have changed between runs.
package grouping

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"skillpack-cli/internal/manifest"
)

// DefaultMaxLevels is how many parent directories above a skill are searched
// for a plugin descriptor before giving up.
const DefaultMaxLevels = 5

// descriptorNames are the descriptor locations checked at each level, in
// precedence order.
var descriptorNames = []string{
	filepath.Join(".claude-plugin", "plugin.json"),
	"plugin.json",
}

//go:embed data/plugin.schema.json
var embeddedSchemaFS embed.FS

// ReadFileFunc is the filesystem-read capability injected into the Finder.
// Substituting a lookup table makes the upward search deterministic in tests
// without a real filesystem.
type ReadFileFunc func(path string) ([]byte, error)

// Finder locates the plugin descriptor governing a skill directory.
type Finder struct {
	// ReadFile reads descriptor candidates. Defaults to os.ReadFile.
	ReadFile ReadFileFunc
	// MaxLevels is the number of parent levels searched above the skill
	// directory itself.
	MaxLevels int
}

// NewFinder creates a Finder with the default filesystem read capability.
// A maxLevels < 0 falls back to DefaultMaxLevels.
func NewFinder(maxLevels int) *Finder {
	if maxLevels < 0 {
		maxLevels = DefaultMaxLevels
	}
	return &Finder{ReadFile: os.ReadFile, MaxLevels: maxLevels}
}

// Find walks upward from dir looking for a plugin descriptor. The first
// valid descriptor closest to the skill wins. An invalid descriptor
// (unparseable content, missing or empty name) is logged as a warning and
// the search continues upward past it. The search stops at the filesystem
// root or after MaxLevels parent levels, whichever comes first, yielding
// ok=false if nothing valid was found by then. Never returns an error: a
// skill with no resolvable descriptor is simply standalone.
func (f *Finder) Find(dir string) (*manifest.GroupInfo, bool) {
	dir = filepath.Clean(dir)
	for level := 0; ; level++ {
		for _, name := range descriptorNames {
			path := filepath.Join(dir, name)
			data, err := f.ReadFile(path)
			if err != nil {
				continue // no descriptor at this location
			}

			info, err := parseDescriptor(path, data)
			if err != nil {
				slog.Warn("ignoring invalid plugin descriptor", "path", path, "error", err)
				continue
			}
			return info, true
		}

		parent := filepath.Dir(dir)
		if parent == dir || level >= f.MaxLevels {
			return nil, false
		}
		dir = parent
	}
}

// parseDescriptor decodes and validates a descriptor file. The content must
// be a JSON object with a non-empty string name; a version field, if present
// and non-empty, is carried along. Unknown fields are ignored.
func parseDescriptor(path string, data []byte) (*manifest.GroupInfo, error) {
	if err := validateAgainstSchema(data); err != nil {
		return nil, err
	}

	var raw struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse descriptor: %w", err)
	}
	if raw.Name == "" {
		return nil, errors.New("descriptor is missing a non-empty 'name'")
	}

	return &manifest.GroupInfo{
		Name:    raw.Name,
		Version: raw.Version,
		Path:    filepath.ToSlash(path),
	}, nil
}

// validateAgainstSchema checks descriptor JSON against the embedded plugin
// descriptor schema.
func validateAgainstSchema(data []byte) error {
	schemaData, err := embeddedSchemaFS.ReadFile("data/plugin.schema.json")
	if err != nil {
		return fmt.Errorf("failed to load embedded descriptor schema: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaData),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("descriptor schema validation failed: %w", err)
	}
	if !result.Valid() {
		var msgs []string
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return fmt.Errorf("descriptor does not match schema: %s", strings.Join(msgs, "; "))
	}
	return nil
}
