// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"skillpack-cli/internal/manifest"
	"skillpack-cli/internal/release"
)

// WriteOutputs renders the pipeline outputs as name=value lines (the GitHub
// Actions $GITHUB_OUTPUT convention) and appends them to the file at path.
func (o *Outcome) WriteOutputs(path string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open outputs file: %w", err)
	}
	defer f.Close()

	if err := o.renderOutputs(f); err != nil {
		return fmt.Errorf("failed to write outputs: %w", err)
	}
	return nil
}

// renderOutputs emits the output lines: the packaged bundle list, the
// manifest path, the overall validity flag, the groups, and the created
// releases (only when publishing ran).
func (o *Outcome) renderOutputs(w io.Writer) error {
	results := o.Results
	if results == nil {
		results = []manifest.BundleResult{}
	}
	if err := writeJSONOutput(w, "skills", results); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "manifest=%s\n", o.ManifestPath); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "valid=%s\n", strconv.FormatBool(o.AllValid)); err != nil {
		return err
	}

	groups := o.Groups
	if groups == nil {
		groups = []manifest.Group{}
	}
	if err := writeJSONOutput(w, "groups", groups); err != nil {
		return err
	}

	if o.PublishRequested {
		published := o.Releases
		if published == nil {
			published = []release.Published{}
		}
		if err := writeJSONOutput(w, "releases", published); err != nil {
			return err
		}
	}

	return nil
}

// writeJSONOutput writes one output as compact single-line JSON.
func writeJSONOutput(w io.Writer, name string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to serialize output %q: %w", name, err)
	}
	_, err = fmt.Fprintf(w, "%s=%s\n", name, data)
	return err
}
