// SPDX-License-Identifier: MPL-2.0

// Package release derives release tags from groups and publishes tagged
// releases with the archives and manifest attached as assets.
package release

import (
	"fmt"
	"log/slog"

	"skillpack-cli/internal/manifest"
)

// DefaultVersion substitutes for a missing group or skill version in tags.
const DefaultVersion = "0.0.0"

// Release is one planned tagged release with its attached assets.
type Release struct {
	// Tag is the derived release tag.
	Tag string
	// Assets are the file paths attached to the release.
	Assets []string
	// Draft marks the release as a draft.
	Draft bool
}

// Published records one successfully created release.
type Published struct {
	// Tag is the release tag.
	Tag string `json:"tag"`
	// URL is the public URL of the created release.
	URL string `json:"url"`
}

// Publisher is the release-creation capability. The production
// implementation shells out to the gh CLI; tests substitute fakes.
type Publisher interface {
	// Publish creates a tagged release with the given assets and returns
	// its public URL. May fail independently per release.
	Publish(r Release) (string, error)
}

// Tag derives the release tag for a name/version pair:
// "{prefix}{name}-v{version}", with the version defaulting to 0.0.0.
func Tag(prefix, name, version string) string {
	if version == "" {
		version = DefaultVersion
	}
	return fmt.Sprintf("%s%s-v%s", prefix, name, version)
}

// Plan turns groups into planned releases. A descriptor-bearing group yields
// one release covering the whole group, with every member archive plus the
// manifest attached. A standalone group yields one release per member with
// that single archive plus the manifest.
func Plan(groups []manifest.Group, prefix, manifestPath string, draft bool) []Release {
	var releases []Release
	for _, group := range groups {
		if group.Plugin != nil {
			r := Release{
				Tag:   Tag(prefix, group.Plugin.Name, group.Plugin.Version),
				Draft: draft,
			}
			for _, b := range group.Bundles {
				r.Assets = append(r.Assets, b.Path)
			}
			r.Assets = append(r.Assets, manifestPath)
			releases = append(releases, r)
			continue
		}

		for _, b := range group.Bundles {
			releases = append(releases, Release{
				Tag:    Tag(prefix, b.Name, b.Version),
				Assets: []string{b.Path, manifestPath},
				Draft:  draft,
			})
		}
	}
	return releases
}

// PublishAll creates the planned releases sequentially. One release failing
// must not prevent attempting the rest: failures are collected and the
// partial results returned alongside them.
func PublishAll(p Publisher, releases []Release) ([]Published, []error) {
	var published []Published
	var errs []error

	for _, r := range releases {
		url, err := p.Publish(r)
		if err != nil {
			slog.Warn("failed to create release, continuing with remaining groups", "tag", r.Tag, "error", err)
			errs = append(errs, fmt.Errorf("release %s: %w", r.Tag, err))
			continue
		}
		published = append(published, Published{Tag: r.Tag, URL: url})
	}
	return published, errs
}
