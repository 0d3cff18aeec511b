// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"skillpack-cli/internal/config"
)

var (
	initForce bool

	// initCmd scaffolds a project configuration file
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Create a " + config.ProjectFileName + " in the current directory",
		Long: `Create a ` + config.ProjectFileName + ` in the current directory, pre-filled
with the default settings so they can be adjusted in place.`,
		RunE: runInit,
	}
)

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing "+config.ProjectFileName)
}

func runInit(cmd *cobra.Command, args []string) error {
	filename := config.ProjectFileName
	if len(args) > 0 {
		filename = args[0]
	}

	if initForce {
		if err := os.Remove(filename); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove existing file: %w", err)
		}
	}

	if err := config.WriteTemplate(filename); err != nil {
		return err
	}

	absPath, _ := filepath.Abs(filename)
	stdout := cmd.OutOrStdout()
	fmt.Fprintf(stdout, "%s Created %s\n", SuccessStyle.Render("✓"), absPath)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, SubtitleStyle.Render("Next steps:"))
	fmt.Fprintln(stdout, "  1. Adjust skills_dir and output_dir for your repository layout")
	fmt.Fprintln(stdout, "  2. Run 'skillpack discover' to see which skills will be picked up")
	fmt.Fprintln(stdout, "  3. Run 'skillpack pack' to build archives and a manifest")

	return nil
}
