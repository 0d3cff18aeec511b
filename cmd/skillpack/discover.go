// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"skillpack-cli/internal/discovery"
)

var (
	discoverDir      string
	discoverMaxDepth int

	// discoverCmd lists candidate skill directories without packaging them
	discoverCmd = &cobra.Command{
		Use:   "discover",
		Short: "List candidate skill directories",
		Long: `Scan a directory tree for skill directories (folders containing a
SKILL.md file) and print them, one per line, in deterministic order.

The scan is depth-limited; directories nested deeper than the limit are
not considered.

Examples:
  skillpack discover
  skillpack discover --dir ./skills --max-depth 2`,
		RunE: runDiscover,
	}
)

func init() {
	discoverCmd.Flags().StringVarP(&discoverDir, "dir", "d", ".", "root directory to scan")
	discoverCmd.Flags().IntVar(&discoverMaxDepth, "max-depth", discovery.DefaultMaxDepth, "directory depth limit")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	candidates, err := discovery.New(discoverDir, discoverMaxDepth).Discover()
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	stdout := cmd.OutOrStdout()
	if len(candidates) == 0 {
		fmt.Fprintf(stdout, "%s no skill directories found under %s\n", WarningStyle.Render("!"), PathStyle.Render(discoverDir))
		return nil
	}

	for _, dir := range candidates {
		fmt.Fprintln(stdout, dir)
	}
	return nil
}
