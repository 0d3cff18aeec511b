// SPDX-License-Identifier: MPL-2.0

// Package pipeline orchestrates one packaging run: candidate selection
// (explicit list, change-detection, or full discovery), sequential per-skill
// validation/archiving/hashing, descriptor grouping, manifest emission, and
// optional release publishing.
//
// Execution is single-threaded and sequential. A failure processing one
// skill is recorded and skipped, never aborting the remaining skills; only
// errors with no well-defined recovery unit (an expected baseline that
// cannot be fetched, an unwritable output directory) abort the run.
package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"skillpack-cli/internal/archive"
	"skillpack-cli/internal/changes"
	"skillpack-cli/internal/config"
	"skillpack-cli/internal/discovery"
	"skillpack-cli/internal/grouping"
	"skillpack-cli/internal/issue"
	"skillpack-cli/internal/manifest"
	"skillpack-cli/internal/release"
	"skillpack-cli/pkg/skillmeta"
)

// skillValidate is indirected for tests.
var skillValidate = skillmeta.Validate

// ManifestFileName is the manifest artifact written into the output directory.
const ManifestFileName = "manifest.json"

// Runner wires the capabilities one packaging run needs. Construct via New
// for production wiring; tests substitute fakes field by field.
type Runner struct {
	// Config is the explicit configuration record (required).
	Config *config.Config
	// Archiver packs skill directories into artifacts.
	Archiver archive.Archiver
	// Digest computes an artifact's integrity token.
	Digest func(path string) (string, error)
	// RC is the version-control capability for change-detection.
	RC changes.RevisionControl
	// Finder locates and reads plugin descriptors.
	Finder *grouping.Finder
	// Publisher creates releases; ignored unless Config.Publish is set.
	Publisher release.Publisher
}

// Outcome is the aggregate result of one run.
type Outcome struct {
	// Candidates is how many skill directories were selected for processing.
	Candidates int
	// Results are the successful bundle results in processing order.
	Results []manifest.BundleResult
	// Groups is the folded grouping of Results.
	Groups []manifest.Group
	// Manifest is the assembled manifest.
	Manifest *manifest.Manifest
	// ManifestPath is where the manifest was written.
	ManifestPath string
	// AllValid is true when every candidate produced a result. Release
	// outcomes do not affect it.
	AllValid bool
	// Report carries the per-resource diagnostics recorded along the way.
	Report *issue.Report
	// PublishRequested records whether release publishing ran.
	PublishRequested bool
	// Releases are the releases created, when publishing was requested.
	Releases []release.Published
	// ReleaseErrors are per-release failures, isolated from bundle validity.
	ReleaseErrors []error
}

// New creates a Runner with production capabilities: zip archiving, SHA-256
// digests, the git CLI, descriptor reads from the real filesystem, and the
// gh CLI for publishing.
func New(cfg *config.Config) *Runner {
	return &Runner{
		Config:    cfg,
		Archiver:  archive.ZipArchiver{},
		Digest:    archive.Digest,
		RC:        &changes.Git{Dir: cfg.SkillsDir},
		Finder:    grouping.NewFinder(cfg.MaxDescriptorLevels),
		Publisher: &release.GHPublisher{Dir: cfg.SkillsDir},
	}
}

// Run executes the full pipeline and returns the aggregate outcome. The
// returned error is non-nil only for run-level failures; per-skill and
// per-release failures are recorded in the Outcome instead.
func (r *Runner) Run() (*Outcome, error) {
	cfg := r.Config
	report := issue.NewReport()

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, issue.WrapWithContext(err, "create output directory", cfg.OutputDir)
	}

	candidates, err := r.selectCandidates()
	if err != nil {
		return nil, err
	}
	slog.Info("selected skill candidates", "count", len(candidates))

	var results []manifest.BundleResult
	var members []grouping.Member
	seenNames := make(map[string]string) // name -> first candidate dir

	for _, candidate := range candidates {
		dir := r.candidateDir(candidate)

		result, ok := r.processSkill(candidate, dir, seenNames, report)
		if !ok {
			continue
		}
		results = append(results, *result)

		member := grouping.Member{Result: *result}
		if info, found := r.Finder.Find(dir); found {
			member.DescriptorPath = info.Path
		}
		members = append(members, member)
	}

	groups := r.Finder.GroupResults(members)

	m := manifest.Assemble(results, groups)
	manifestPath := filepath.Join(cfg.OutputDir, ManifestFileName)
	if err := m.Write(manifestPath); err != nil {
		return nil, issue.WrapWithContext(err, "write manifest", manifestPath)
	}

	outcome := &Outcome{
		Candidates:   len(candidates),
		Results:      results,
		Groups:       groups,
		Manifest:     m,
		ManifestPath: manifestPath,
		AllValid:     len(results) == len(candidates),
		Report:       report,
	}

	if cfg.Publish && r.Publisher != nil {
		outcome.PublishRequested = true
		plan := release.Plan(groups, cfg.TagPrefix, manifestPath, cfg.Draft)
		outcome.Releases, outcome.ReleaseErrors = release.PublishAll(r.Publisher, plan)
		for _, relErr := range outcome.ReleaseErrors {
			report.AddError("release", relErr)
		}
	}

	return outcome, nil
}

// selectCandidates produces the ordered candidate set for this run. An
// explicit path list overrides everything; otherwise discovery runs, and
// unless a full build was forced the set is filtered down to candidates
// touched since the resolved baseline. No resolvable baseline means every
// discovered candidate is kept.
func (r *Runner) selectCandidates() ([]string, error) {
	cfg := r.Config

	if cfg.ExplicitPaths != "" {
		return discovery.NormalizeExplicit(cfg.ExplicitPaths), nil
	}

	candidates, err := discovery.New(cfg.SkillsDir, cfg.MaxDiscoveryDepth).Discover()
	if err != nil {
		return nil, issue.WrapWithContext(err, "discover skills", cfg.SkillsDir)
	}

	if cfg.ForceFull {
		return candidates, nil
	}

	detector := &changes.Detector{
		RC:         r.RC,
		Remote:     cfg.Remote,
		BaseBranch: cfg.BaseBranch,
		Override:   cfg.Baseline,
	}

	baseline, ok := detector.ResolveBaseline()
	if !ok {
		slog.Info("no baseline resolvable, running a full build")
		return candidates, nil
	}

	changed, err := detector.ChangedFiles(baseline)
	if err != nil {
		// Cannot safely proceed without the baseline we expected to have.
		return nil, issue.NewErrorContext().
			WithOperation("detect changed skills").
			WithResource(baseline).
			WithSuggestion("Pass --full to bypass change-detection").
			Wrap(err).
			BuildError()
	}

	slog.Info("filtering candidates against baseline", "baseline", baseline, "changed_files", len(changed))
	return changes.FilterChanged(candidates, changed), nil
}

// processSkill validates, archives, and hashes one candidate. Failures are
// recorded in the report and answered with ok=false; the caller skips the
// candidate and continues.
func (r *Runner) processSkill(candidate, dir string, seenNames map[string]string, report *issue.Report) (*manifest.BundleResult, bool) {
	vr, err := skillValidate(dir)
	if err != nil {
		report.AddError(candidate, err)
		return nil, false
	}
	if !vr.Valid {
		for _, i := range vr.Issues {
			report.Add(candidate, i.Error())
		}
		return nil, false
	}

	name := vr.Metadata.Name
	if first, dup := seenNames[name]; dup {
		report.Add(candidate, fmt.Sprintf("duplicate skill name %q (already declared by %s)", name, first))
		return nil, false
	}
	seenNames[name] = candidate

	archivePath := filepath.Join(r.Config.OutputDir, name+".zip")
	size, err := r.Archiver.Archive(dir, archivePath)
	if err != nil {
		report.AddError(candidate, issue.WrapWithContext(err, "archive skill", dir))
		return nil, false
	}

	token, err := r.Digest(archivePath)
	if err != nil {
		report.AddError(candidate, issue.WrapWithContext(err, "hash archive", archivePath))
		return nil, false
	}

	return &manifest.BundleResult{
		Name:           name,
		Version:        vr.Metadata.Version,
		SpecVersion:    vr.Metadata.SpecVersion,
		Path:           filepath.ToSlash(archivePath),
		SizeBytes:      size,
		IntegrityToken: token,
	}, true
}

// candidateDir resolves a (slash-form, root-relative) candidate to a real
// directory path under the skills root.
func (r *Runner) candidateDir(candidate string) string {
	if candidate == "." {
		return r.Config.SkillsDir
	}
	return filepath.Join(r.Config.SkillsDir, filepath.FromSlash(candidate))
}
