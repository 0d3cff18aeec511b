// SPDX-License-Identifier: MPL-2.0

// Package changes implements incremental selection: resolving a baseline
// revision, diffing the working revision against it, and filtering skill
// candidates down to those actually touched since the baseline.
package changes

import (
	"fmt"
	"log/slog"
	"strings"
)

// RevisionControl is the version-control capability the detector relies on.
// The production implementation shells out to git; tests substitute fakes.
type RevisionControl interface {
	// RevParse resolves a ref to a commit hash, failing when the ref is
	// unknown locally.
	RevParse(ref string) (string, error)
	// Fetch makes a remote ref available locally with the given depth.
	Fetch(remote, ref string, depth int) error
	// DiffNameOnly returns the paths that differ between the merge-base of
	// baseline and HEAD, and HEAD (three-dot diff).
	DiffNameOnly(baseline string) ([]string, error)
	// LatestTag returns the most recent tag reachable from HEAD, or an
	// error when no tag exists.
	LatestTag() (string, error)
}

// Detector resolves the diff baseline and computes the change set for a run.
type Detector struct {
	// RC is the version-control capability (required).
	RC RevisionControl
	// Remote is the remote to fetch missing baselines from (e.g., "origin").
	Remote string
	// BaseBranch is the pull-request base branch, when running in a PR
	// context. Empty outside PRs.
	BaseBranch string
	// Override, when non-empty, is used verbatim as the baseline.
	Override string
}

// ResolveBaseline determines the revision to diff against, in priority
// order: explicit override, the remote tracking ref of the PR base branch,
// the most recent reachable tag. Returns ok=false when no baseline exists,
// which callers must treat as "full build" (include every candidate), not
// as an empty change set.
func (d *Detector) ResolveBaseline() (ref string, ok bool) {
	if d.Override != "" {
		return d.Override, true
	}
	if d.BaseBranch != "" {
		return d.Remote + "/" + d.BaseBranch, true
	}
	tag, err := d.RC.LatestTag()
	if err != nil || tag == "" {
		slog.Debug("no baseline tag reachable from HEAD", "error", err)
		return "", false
	}
	return tag, true
}

// ChangedFiles diffs the baseline against HEAD and returns the paths of
// files that differ. The baseline is fetched (shallow) when it cannot be
// resolved locally; a fetch failure is fatal and must abort the run rather
// than silently degrading to a full build.
func (d *Detector) ChangedFiles(baseline string) ([]string, error) {
	if _, err := d.RC.RevParse(baseline); err != nil {
		slog.Info("baseline not available locally, fetching", "ref", baseline, "remote", d.Remote)
		if fetchErr := d.RC.Fetch(d.Remote, fetchRefspec(baseline, d.Remote), 1); fetchErr != nil {
			return nil, fmt.Errorf("failed to fetch baseline %q from %s: %w", baseline, d.Remote, fetchErr)
		}
	}

	files, err := d.RC.DiffNameOnly(baseline)
	if err != nil {
		return nil, fmt.Errorf("failed to diff against baseline %q: %w", baseline, err)
	}
	return files, nil
}

// FilterChanged returns the subset of candidates that contain at least one
// changed file. A candidate matches iff some changed path, after separator
// normalization, begins with "<candidate>/". A changed path literally
// equal to the candidate path does not count. Candidates equal to "." match
// any change. An empty change set retains nothing.
func FilterChanged(candidates, changed []string) []string {
	var kept []string
	for _, candidate := range candidates {
		prefix := strings.TrimSuffix(normalizeSlashes(candidate), "/") + "/"
		for _, file := range changed {
			file = normalizeSlashes(file)
			if candidate == "." || strings.HasPrefix(file, prefix) {
				kept = append(kept, candidate)
				break
			}
		}
	}
	return kept
}

// normalizeSlashes converts backslash separators to forward slashes
// regardless of platform; git always reports slash-separated paths while
// user-supplied candidate paths may not be.
func normalizeSlashes(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

// fetchRefspec strips the remote tracking prefix so "origin/main" fetches
// "main" from origin. Other refs (tags, hashes) are fetched as-is.
func fetchRefspec(ref, remote string) string {
	return strings.TrimPrefix(ref, remote+"/")
}
