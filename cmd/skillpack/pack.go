// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"skillpack-cli/internal/config"
	"skillpack-cli/internal/pipeline"
)

// newPipeline is indirected for tests.
var newPipeline = pipeline.New

// packCmd runs the full packaging pipeline
var packCmd = &cobra.Command{
	Use:   "pack",
	Short: "Validate, archive, and publish skill bundles",
	Long: `Run the packaging pipeline: discover skills, detect changes, validate
metadata, build zip archives, and write a manifest.

Change detection compares against a baseline revision (explicit --baseline,
the pull request base branch, or the latest tag, in that order). When no
baseline can be resolved, every discovered skill is packaged. Use --full to
skip change detection entirely, or --paths to name the skill directories
to package explicitly.

With --publish, each bundle group becomes a release: one release per
plugin descriptor group (all member archives attached) and one per
standalone skill. Release tags follow {prefix}{name}-v{version}.

Examples:
  skillpack pack                          Package skills changed since the baseline
  skillpack pack --full                   Package every skill
  skillpack pack --paths "skills/a,skills/b"
  skillpack pack --publish --tag-prefix skill-`,
	RunE: runPack,
}

func init() {
	flags := packCmd.Flags()
	flags.String("skills-dir", ".", "root directory to scan for skills")
	flags.String("output", "dist", "directory for archives and the manifest")
	flags.String("paths", "", "newline- or comma-separated skill paths to package (skips discovery and change detection)")
	flags.Bool("full", false, "package all skills, skipping change detection")
	flags.String("baseline", "", "git revision to diff against for change detection")
	flags.String("base-branch", "", "pull request base branch (defaults to $GITHUB_BASE_REF)")
	flags.String("remote", "origin", "git remote used to fetch missing baselines")
	flags.String("tag-prefix", "", "prefix prepended to release tags")
	flags.Bool("publish", false, "publish one release per bundle group")
	flags.Bool("draft", false, "create releases as drafts")
	flags.String("outputs-file", "", "file to append machine-readable outputs to (defaults to $GITHUB_OUTPUT)")
	flags.Int("max-depth", 0, "directory depth limit for skill discovery")
}

// packConfig resolves the effective configuration from flags, environment,
// and the project file, in that precedence order.
func packConfig(cmd *cobra.Command) (*config.Config, error) {
	v := config.NewViper()

	bindings := map[string]string{
		"skills_dir":          "skills-dir",
		"output_dir":          "output",
		"paths":               "paths",
		"force_full":          "full",
		"baseline":            "baseline",
		"base_branch":         "base-branch",
		"remote":              "remote",
		"tag_prefix":          "tag-prefix",
		"publish":             "publish",
		"draft":               "draft",
		"outputs_file":        "outputs-file",
		"max_discovery_depth": "max-depth",
	}
	for key, flagName := range bindings {
		if flag := cmd.Flags().Lookup(flagName); flag != nil && flag.Changed {
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("failed to bind flag --%s: %w", flagName, err)
			}
		}
	}

	return config.Load(v)
}

func runPack(cmd *cobra.Command, args []string) error {
	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	cfg, err := packConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	outcome, err := newPipeline(cfg).Run()
	if err != nil {
		fmt.Fprintf(stderr, "%s %s\n", ErrorStyle.Render("✗"), formatErrorForDisplay(err, verbose))
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return &ExitError{Code: 1, Err: err}
	}

	fmt.Fprintln(stdout, TitleStyle.Render("Skill Packaging"))
	fmt.Fprintf(stdout, "  %d candidate(s), %d packaged\n", outcome.Candidates, len(outcome.Results))
	fmt.Fprintln(stdout)

	for _, result := range outcome.Results {
		fmt.Fprintf(stdout, "%s %s %s (%s)\n",
			SuccessStyle.Render("✓"),
			result.Name,
			PathStyle.Render(result.Path),
			formatSize(result.SizeBytes),
		)
	}
	if len(outcome.Results) > 0 {
		fmt.Fprintf(stdout, "%s manifest %s\n", SuccessStyle.Render("✓"), PathStyle.Render(outcome.ManifestPath))
	}

	for _, published := range outcome.Releases {
		fmt.Fprintf(stdout, "%s released %s %s\n", SuccessStyle.Render("✓"), published.Tag, PathStyle.Render(published.URL))
	}

	if !outcome.Report.Empty() {
		fmt.Fprintln(stderr)
		fmt.Fprintf(stderr, "%s %d issue(s) found:\n", WarningStyle.Render("!"), outcome.Report.Count())
		for _, line := range outcome.Report.Lines() {
			fmt.Fprintf(stderr, "  %s\n", line)
		}
	}

	if cfg.OutputsFile != "" {
		if err := outcome.WriteOutputs(cfg.OutputsFile); err != nil {
			fmt.Fprintf(stderr, "%s failed to write outputs: %v\n", WarningStyle.Render("!"), err)
		}
	}

	// Release failures are surfaced above but never affect the exit status;
	// the run's outcome reflects bundle validity alone.
	if !outcome.AllValid {
		fmt.Fprintln(stderr)
		fmt.Fprintf(stderr, "%s Packaging finished with failures\n", ErrorStyle.Render("✗"))
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return &ExitError{Code: 1}
	}

	if len(outcome.ReleaseErrors) > 0 {
		fmt.Fprintln(stderr)
		fmt.Fprintf(stderr, "%s %d release(s) failed; all bundles are valid\n", WarningStyle.Render("!"), len(outcome.ReleaseErrors))
	}

	return nil
}

// formatSize renders a byte count in a compact human-readable form.
func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
