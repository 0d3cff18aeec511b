// SPDX-License-Identifier: MPL-2.0

package changes

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// runGit is indirected for tests.
var runGit = func(dir string, args ...string) ([]byte, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// Git implements RevisionControl by shelling out to the git binary.
type Git struct {
	// Dir is the directory commands run in, typically the skills root.
	// Empty means the process working directory.
	Dir string
}

var _ RevisionControl = (*Git)(nil)

// RevParse resolves a ref to a commit hash.
func (g *Git) RevParse(ref string) (string, error) {
	out, err := g.run("rev-parse", "--verify", ref+"^{commit}")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Fetch makes a remote ref available locally with a shallow history.
func (g *Git) Fetch(remote, ref string, depth int) error {
	args := []string{"fetch"}
	if depth > 0 {
		args = append(args, "--depth="+strconv.Itoa(depth))
	}
	args = append(args, remote, ref)
	_, err := g.run(args...)
	return err
}

// DiffNameOnly lists the files that differ between the merge-base of the
// baseline and HEAD, and HEAD. The three-dot form keeps unrelated commits
// on the base branch since divergence from spuriously marking files changed.
// The --relative flag reports paths relative to Dir and restricts the diff
// to it, so results line up with candidate paths even when Dir is a
// subdirectory of the repository.
func (g *Git) DiffNameOnly(baseline string) ([]string, error) {
	out, err := g.run("diff", "--relative", "--name-only", baseline+"...HEAD")
	if err != nil {
		return nil, err
	}

	var files []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			files = append(files, line)
		}
	}
	return files, nil
}

// LatestTag returns the most recent tag reachable from HEAD.
func (g *Git) LatestTag() (string, error) {
	out, err := g.run("describe", "--tags", "--abbrev=0")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (g *Git) run(args ...string) (string, error) {
	output, err := runGit(g.Dir, args...)
	if err != nil {
		return "", fmt.Errorf("git %s failed: %s: %w", args[0], strings.TrimSpace(string(output)), err)
	}
	return string(output), nil
}
