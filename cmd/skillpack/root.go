// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"skillpack-cli/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "skillpack",
		Short: "Package skill bundles into distributable archives",
		Long: TitleStyle.Render("skillpack") + SubtitleStyle.Render(" - Package skill bundles into distributable archives") + `

skillpack discovers skill directories (folders carrying a SKILL.md with
YAML frontmatter), validates their metadata, and packs each one into a
zip archive together with a machine-readable manifest.

Skills that live beneath a plugin descriptor (plugin.json) are grouped
into a single logical unit; each unit can be published as a release with
its archives attached.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Put each skill into its own directory with a SKILL.md
  2. Run 'skillpack pack' to build archives and a manifest
  3. Add --publish to cut one release per bundle group

` + SubtitleStyle.Render("Examples:") + `
  skillpack discover            List candidate skill directories
  skillpack validate skills/pdf Validate a single skill
  skillpack pack --full         Package every skill, ignoring change detection
  skillpack pack --publish      Package changed skills and publish releases`,
	}
)

func init() {
	cobra.OnInitialize(initLogging)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	// Add subcommands
	rootCmd.AddCommand(packCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(initCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Use fang.Execute for enhanced Cobra styling
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// initLogging installs the styled slog handler used by all components.
func initLogging() {
	handler := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
	})
	if verbose {
		handler.SetLevel(log.DebugLevel)
	}
	slog.SetDefault(slog.New(handler))
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
