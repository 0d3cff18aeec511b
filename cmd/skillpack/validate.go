// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"skillpack-cli/internal/discovery"
	"skillpack-cli/pkg/skillmeta"
)

var (
	validateDir string

	// validateCmd validates skill metadata without building archives
	validateCmd = &cobra.Command{
		Use:   "validate [path...]",
		Short: "Validate skill metadata",
		Long: `Validate the structure and metadata of skill directories.

Without arguments, discovers and validates every skill under --dir.
With path arguments, validates exactly those directories.

Checks performed:
  - Directory exists and contains a SKILL.md
  - Frontmatter parses and declares name and description
  - Name is lowercase alphanumeric with single hyphens, at most 64 chars

Examples:
  skillpack validate
  skillpack validate skills/pdf-tools skills/data2csv`,
		RunE: runValidate,
	}
)

func init() {
	validateCmd.Flags().StringVarP(&validateDir, "dir", "d", ".", "root directory to scan when no paths are given")
}

func runValidate(cmd *cobra.Command, args []string) error {
	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	targets := args
	if len(targets) == 0 {
		discovered, err := discovery.New(validateDir, discovery.DefaultMaxDepth).Discover()
		if err != nil {
			return fmt.Errorf("discovery failed: %w", err)
		}
		for _, dir := range discovered {
			targets = append(targets, filepath.Join(validateDir, filepath.FromSlash(dir)))
		}
	}

	if len(targets) == 0 {
		fmt.Fprintf(stdout, "%s no skill directories found under %s\n", WarningStyle.Render("!"), PathStyle.Render(validateDir))
		return nil
	}

	failures := 0
	for _, target := range targets {
		result, err := skillmeta.Validate(target)
		if err != nil {
			return fmt.Errorf("failed to validate %s: %w", target, err)
		}

		if result.Valid {
			fmt.Fprintf(stdout, "%s %s (%s)\n", SuccessStyle.Render("✓"), target, result.Metadata.Name)
			continue
		}

		failures++
		fmt.Fprintf(stderr, "%s %s\n", ErrorStyle.Render("✗"), target)
		for _, iss := range result.Issues {
			fmt.Fprintf(stderr, "    %s\n", iss.Error())
		}
	}

	if failures > 0 {
		fmt.Fprintln(stderr)
		fmt.Fprintf(stderr, "%s %d of %d skill(s) failed validation\n", ErrorStyle.Render("✗"), failures, len(targets))
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return &ExitError{Code: 1}
	}

	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "%s all %d skill(s) are valid\n", SuccessStyle.Render("✓"), len(targets))
	return nil
}
