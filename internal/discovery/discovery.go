// SPDX-License-Identifier: MPL-2.0

// Package discovery handles finding candidate skill directories in a tree.
//
// A candidate is any directory containing a SKILL.md metadata file. Discovery
// scans up to a fixed depth below the root, deduplicates candidates that
// resolve to the same directory, and returns them in lexicographic order so
// that repeated runs over an unchanged tree produce identical output.
package discovery

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"skillpack-cli/pkg/skillmeta"
)

// DefaultMaxDepth is the deepest level (relative to the scan root) at which
// a SKILL.md is still discovered. Depth 0 is a SKILL.md directly inside the
// root; anything at depth DefaultMaxDepth+1 or below is silently excluded.
const DefaultMaxDepth = 3

// Discovery scans a root directory for skill candidates.
type Discovery struct {
	root     string
	maxDepth int
}

// New creates a Discovery for the given root. A maxDepth < 0 falls back to
// DefaultMaxDepth.
func New(root string, maxDepth int) *Discovery {
	if maxDepth < 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Discovery{root: root, maxDepth: maxDepth}
}

// Discover walks the root and returns the directories containing a SKILL.md,
// sorted lexicographically. Paths are returned relative to the scan root
// using forward slashes, except the root itself which is returned as ".".
// The walk is a pure filesystem read with no side effects.
func (d *Discovery) Discover() ([]string, error) {
	absRoot, err := filepath.Abs(d.root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve scan root: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to stat scan root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root is not a directory: %s", absRoot)
	}

	seen := make(map[string]struct{})
	var candidates []string

	err = filepath.WalkDir(absRoot, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			slog.Warn("skipping unreadable path during skill discovery", "path", path, "error", walkErr)
			return nil
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if entry.IsDir() {
			if rel == "." {
				return nil
			}
			// A directory at this depth would only yield metadata files
			// beyond the depth cap.
			if strings.Count(rel, "/") >= d.maxDepth {
				return fs.SkipDir
			}
			return nil
		}

		if !strings.EqualFold(entry.Name(), skillmeta.MetadataFileName) {
			return nil
		}

		dir := relDir(rel)
		if _, dup := seen[dir]; dup {
			return nil
		}
		seen[dir] = struct{}{}
		candidates = append(candidates, dir)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk scan root: %w", err)
	}

	sort.Strings(candidates)
	return candidates, nil
}

// NormalizeExplicit turns a newline- or comma-separated list of user-supplied paths
// into a clean candidate list: entries are trimmed, blank lines dropped, an
// entry pointing directly at a SKILL.md is rewritten to its containing
// directory, and duplicates (after rewriting) are removed while preserving
// first-seen order. When an explicit list is supplied it takes precedence
// over both change-detection and full discovery.
//
// Comma separation is a CLI convenience on top of the newline contract; a
// path containing a literal comma cannot be expressed and must be renamed.
func NormalizeExplicit(raw string) []string {
	seen := make(map[string]struct{})
	candidates := []string{}

	for _, line := range strings.FieldsFunc(raw, func(r rune) bool { return r == '\n' || r == ',' }) {
		entry := strings.TrimSpace(line)
		if entry == "" {
			continue
		}

		entry = filepath.ToSlash(filepath.Clean(entry))
		if strings.EqualFold(pathBase(entry), skillmeta.MetadataFileName) {
			entry = relDir(entry)
		}

		if _, dup := seen[entry]; dup {
			continue
		}
		seen[entry] = struct{}{}
		candidates = append(candidates, entry)
	}

	return candidates
}

// relDir returns the slash-form directory of a slash-form relative path,
// with "." denoting the root itself.
func relDir(rel string) string {
	idx := strings.LastIndex(rel, "/")
	if idx < 0 {
		return "."
	}
	return rel[:idx]
}

func pathBase(rel string) string {
	idx := strings.LastIndex(rel, "/")
	if idx < 0 {
		return rel
	}
	return rel[idx+1:]
}
