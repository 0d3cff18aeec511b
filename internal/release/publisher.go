// SPDX-License-Identifier: MPL-2.0

package release

import (
	"fmt"
	"os/exec"
	"strings"
)

// GHPublisher implements Publisher by shelling out to the gh CLI, which
// carries authentication and repository context from the environment.
type GHPublisher struct {
	// Dir is the repository working directory. Empty means the process
	// working directory.
	Dir string
}

var _ Publisher = (*GHPublisher)(nil)

// Publish creates a tagged release via "gh release create" and returns the
// release URL that gh prints on success.
func (g *GHPublisher) Publish(r Release) (string, error) {
	args := []string{"release", "create", r.Tag, "--title", r.Tag, "--notes", "Automated skill release " + r.Tag}
	if r.Draft {
		args = append(args, "--draft")
	}
	args = append(args, r.Assets...)

	cmd := exec.Command("gh", args...)
	cmd.Dir = g.Dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("gh release create failed: %s: %w", strings.TrimSpace(string(output)), err)
	}
	return strings.TrimSpace(string(output)), nil
}
