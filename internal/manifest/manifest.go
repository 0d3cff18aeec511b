// SPDX-License-Identifier: MPL-2.0

// Package manifest defines the per-run result records and assembles the
// terminal manifest artifact.
//
// The manifest keeps two views of the same results: a flat "bundles" list in
// processing order, which is the stable backward-compatible view consumed by
// simple callers, and an optional "groups" list carrying the structured
// plugin grouping. The groups key is omitted from serialized output when no
// group was computed.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// BundleResult is the outcome of successfully processing one skill: the
// skill was validated, archived, and hashed. Failed candidates leave no
// tombstone; they are simply absent.
type BundleResult struct {
	// Name is the skill's declared name (always present, validated).
	Name string `json:"name"`
	// Version is the skill's declared version, when any.
	Version string `json:"version,omitempty"`
	// SpecVersion is the metadata format version, when any.
	SpecVersion string `json:"specVersion,omitempty"`
	// Path is the archive artifact path (unique across a run).
	Path string `json:"path"`
	// SizeBytes is the archive size in bytes.
	SizeBytes int64 `json:"size"`
	// IntegrityToken is the archive content digest (e.g., "sha256:<hex>").
	IntegrityToken string `json:"integrityToken"`
}

// GroupInfo describes the plugin descriptor a group of bundles shares.
type GroupInfo struct {
	// Name is the plugin's declared name (non-empty).
	Name string `json:"name"`
	// Version is the plugin's declared version, when any.
	Version string `json:"version,omitempty"`
	// Path is the descriptor file path that keyed the group.
	Path string `json:"path"`
}

// Group is either a descriptor-bearing group with one or more members, or a
// standalone group with exactly one member and no descriptor.
type Group struct {
	// Plugin is nil for standalone groups.
	Plugin *GroupInfo `json:"group,omitempty"`
	// Bundles are the member results, in processing order.
	Bundles []BundleResult `json:"bundles"`
}

// Manifest is the terminal artifact of a packaging run.
type Manifest struct {
	// Generated is the assembly timestamp, captured once.
	Generated time.Time `json:"generated"`
	// Bundles is the flat list of all successful results in processing
	// order. Always present, even when empty.
	Bundles []BundleResult `json:"bundles"`
	// Groups is the structured view; omitted entirely when empty.
	Groups []Group `json:"groups,omitempty"`
}

// Assemble folds results and groups into a Manifest. No deduplication or
// reordering happens here; upstream owns both.
func Assemble(results []BundleResult, groups []Group) *Manifest {
	if results == nil {
		results = []BundleResult{}
	}
	return &Manifest{
		Generated: time.Now().UTC(),
		Bundles:   results,
		Groups:    groups,
	}
}

// Write serializes the manifest as indented UTF-8 JSON to the given path.
// It is written exactly once per run, after all processing completes.
func (m *Manifest) Write(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize manifest: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
