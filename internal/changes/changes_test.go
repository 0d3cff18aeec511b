// SPDX-License-Identifier: MPL-2.0

package changes

import (
	"errors"
	"reflect"
	"testing"
)

// fakeRC is a scripted RevisionControl for exercising the detector without
// a real repository.
type fakeRC struct {
	known    map[string]string // ref -> hash for RevParse
	tag      string
	tagErr   error
	fetchErr error
	fetched  []string // "remote ref" pairs recorded per Fetch call
	diff     []string
	diffErr  error
}

func (f *fakeRC) RevParse(ref string) (string, error) {
	if hash, ok := f.known[ref]; ok {
		return hash, nil
	}
	return "", errors.New("unknown revision " + ref)
}

func (f *fakeRC) Fetch(remote, ref string, _ int) error {
	f.fetched = append(f.fetched, remote+" "+ref)
	if f.fetchErr != nil {
		return f.fetchErr
	}
	if f.known == nil {
		f.known = map[string]string{}
	}
	f.known[ref] = "fetched"
	return nil
}

func (f *fakeRC) DiffNameOnly(string) ([]string, error) { return f.diff, f.diffErr }

func (f *fakeRC) LatestTag() (string, error) { return f.tag, f.tagErr }

func TestResolveBaseline(t *testing.T) {
	tests := []struct {
		name      string
		detector  Detector
		expectRef string
		expectOK  bool
	}{
		{
			name: "explicit override wins over everything",
			detector: Detector{
				RC:         &fakeRC{tag: "v9.9.9"},
				Remote:     "origin",
				BaseBranch: "main",
				Override:   "deadbeef",
			},
			expectRef: "deadbeef",
			expectOK:  true,
		},
		{
			name: "pull request base branch becomes remote tracking ref",
			detector: Detector{
				RC:         &fakeRC{tag: "v1.0.0"},
				Remote:     "origin",
				BaseBranch: "main",
			},
			expectRef: "origin/main",
			expectOK:  true,
		},
		{
			name: "falls back to latest reachable tag",
			detector: Detector{
				RC:     &fakeRC{tag: "v1.2.3"},
				Remote: "origin",
			},
			expectRef: "v1.2.3",
			expectOK:  true,
		},
		{
			name: "no baseline at all signals full build",
			detector: Detector{
				RC:     &fakeRC{tagErr: errors.New("no tags")},
				Remote: "origin",
			},
			expectRef: "",
			expectOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, ok := tt.detector.ResolveBaseline()
			if ref != tt.expectRef || ok != tt.expectOK {
				t.Errorf("ResolveBaseline() = (%q, %v), want (%q, %v)", ref, ok, tt.expectRef, tt.expectOK)
			}
		})
	}
}

func TestChangedFilesFetchesMissingBaseline(t *testing.T) {
	rc := &fakeRC{diff: []string{"a/b/x.txt"}}
	d := &Detector{RC: rc, Remote: "origin"}

	files, err := d.ChangedFiles("origin/main")
	if err != nil {
		t.Fatalf("ChangedFiles() error = %v", err)
	}
	if !reflect.DeepEqual(files, []string{"a/b/x.txt"}) {
		t.Errorf("ChangedFiles() = %v", files)
	}
	// The tracking prefix is stripped for the refspec.
	if !reflect.DeepEqual(rc.fetched, []string{"origin main"}) {
		t.Errorf("fetched = %v, want [origin main]", rc.fetched)
	}
}

func TestChangedFilesSkipsFetchWhenLocal(t *testing.T) {
	rc := &fakeRC{known: map[string]string{"v1.0.0": "abc"}, diff: []string{"f"}}
	d := &Detector{RC: rc, Remote: "origin"}

	if _, err := d.ChangedFiles("v1.0.0"); err != nil {
		t.Fatalf("ChangedFiles() error = %v", err)
	}
	if len(rc.fetched) != 0 {
		t.Errorf("unexpected fetch: %v", rc.fetched)
	}
}

func TestChangedFilesFetchFailureIsFatal(t *testing.T) {
	rc := &fakeRC{fetchErr: errors.New("network down")}
	d := &Detector{RC: rc, Remote: "origin"}

	if _, err := d.ChangedFiles("origin/main"); err == nil {
		t.Fatal("ChangedFiles() expected error when fetch fails")
	}
}

func TestFilterChanged(t *testing.T) {
	tests := []struct {
		name       string
		candidates []string
		changed    []string
		expected   []string
	}{
		{
			name:       "keeps only candidates containing a changed file",
			candidates: []string{"a/b", "a/c"},
			changed:    []string{"a/b/x.txt"},
			expected:   []string{"a/b"},
		},
		{
			name:       "exact path equality does not count as inside",
			candidates: []string{"a/b"},
			changed:    []string{"a/b"},
			expected:   nil,
		},
		{
			name:       "empty change set retains nothing",
			candidates: []string{"a/b", "a/c"},
			changed:    nil,
			expected:   nil,
		},
		{
			name:       "prefix must be a directory boundary",
			candidates: []string{"a/b"},
			changed:    []string{"a/bc/file.txt"},
			expected:   nil,
		},
		{
			name:       "backslash separators normalize before matching",
			candidates: []string{"a/b"},
			changed:    []string{`a\b\x.txt`},
			expected:   []string{"a/b"},
		},
		{
			name:       "root candidate matches any change",
			candidates: []string{"."},
			changed:    []string{"whatever.txt"},
			expected:   []string{"."},
		},
		{
			name:       "preserves candidate order",
			candidates: []string{"z", "a"},
			changed:    []string{"z/f", "a/f"},
			expected:   []string{"z", "a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterChanged(tt.candidates, tt.changed)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("FilterChanged(%v, %v) = %v, want %v", tt.candidates, tt.changed, got, tt.expected)
			}
		})
	}
}
