// SPDX-License-Identifier: MPL-2.0

package changes

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

// stubGit replaces the runGit seam for one test, capturing invocations.
func stubGit(t *testing.T, output string, err error) *[][]string {
	t.Helper()
	var calls [][]string
	orig := runGit
	t.Cleanup(func() { runGit = orig })
	runGit = func(dir string, args ...string) ([]byte, error) {
		calls = append(calls, append([]string{dir}, args...))
		return []byte(output), err
	}
	return &calls
}

func TestGitDiffNameOnly(t *testing.T) {
	t.Run("diff is relative to the working directory", func(t *testing.T) {
		calls := stubGit(t, "skills/alpha/SKILL.md\nskills/beta/ref.md\n\n", nil)

		g := &Git{Dir: "sub/skills-root"}
		files, err := g.DiffNameOnly("v1.0.0")
		if err != nil {
			t.Fatalf("DiffNameOnly() error = %v", err)
		}

		want := [][]string{{"sub/skills-root", "diff", "--relative", "--name-only", "v1.0.0...HEAD"}}
		if !reflect.DeepEqual(*calls, want) {
			t.Errorf("git invocation = %v, want %v", *calls, want)
		}
		if !reflect.DeepEqual(files, []string{"skills/alpha/SKILL.md", "skills/beta/ref.md"}) {
			t.Errorf("files = %v", files)
		}
	})

	t.Run("failure carries the git output", func(t *testing.T) {
		stubGit(t, "fatal: bad revision", errors.New("exit status 128"))

		g := &Git{}
		if _, err := g.DiffNameOnly("nope"); err == nil || !strings.Contains(err.Error(), "bad revision") {
			t.Fatalf("DiffNameOnly() error = %v, want git output included", err)
		}
	})
}

func TestGitRevParse(t *testing.T) {
	calls := stubGit(t, "abc123\n", nil)

	g := &Git{Dir: "."}
	hash, err := g.RevParse("origin/main")
	if err != nil {
		t.Fatalf("RevParse() error = %v", err)
	}
	if hash != "abc123" {
		t.Errorf("RevParse() = %q", hash)
	}
	want := [][]string{{".", "rev-parse", "--verify", "origin/main^{commit}"}}
	if !reflect.DeepEqual(*calls, want) {
		t.Errorf("git invocation = %v, want %v", *calls, want)
	}
}

func TestGitFetch(t *testing.T) {
	calls := stubGit(t, "", nil)

	g := &Git{}
	if err := g.Fetch("origin", "main", 1); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	want := [][]string{{"", "fetch", "--depth=1", "origin", "main"}}
	if !reflect.DeepEqual(*calls, want) {
		t.Errorf("git invocation = %v, want %v", *calls, want)
	}
}
