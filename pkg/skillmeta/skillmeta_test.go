// SPDX-License-Identifier: MPL-2.0

package skillmeta

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name      string
		skillName string
		wantErr   bool
	}{
		{
			name:      "valid simple name",
			skillName: "pdf",
			wantErr:   false,
		},
		{
			name:      "valid hyphenated name",
			skillName: "pdf-tools",
			wantErr:   false,
		},
		{
			name:      "valid name with digits",
			skillName: "data2csv",
			wantErr:   false,
		},
		{
			name:      "empty name",
			skillName: "",
			wantErr:   true,
		},
		{
			name:      "uppercase letters",
			skillName: "PDF-Tools",
			wantErr:   true,
		},
		{
			name:      "underscores",
			skillName: "my_skill",
			wantErr:   true,
		},
		{
			name:      "leading hyphen",
			skillName: "-pdf",
			wantErr:   true,
		},
		{
			name:      "trailing hyphen",
			skillName: "pdf-",
			wantErr:   true,
		},
		{
			name:      "doubled hyphen",
			skillName: "pdf--tools",
			wantErr:   true,
		},
		{
			name:      "too long",
			skillName: strings.Repeat("a", MaxNameLength+1),
			wantErr:   true,
		},
		{
			name:      "exactly max length",
			skillName: strings.Repeat("a", MaxNameLength),
			wantErr:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.skillName)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.skillName, err, tt.wantErr)
			}
		})
	}
}

func TestParseFrontmatter(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Metadata
		wantErr string
	}{
		{
			name:    "complete frontmatter",
			content: "---\nname: pdf-tools\ndescription: Work with PDFs\nversion: 1.2.0\nspecVersion: \"1.0\"\n---\n\nBody text.\n",
			want:    Metadata{Name: "pdf-tools", Description: "Work with PDFs", Version: "1.2.0", SpecVersion: "1.0"},
		},
		{
			name:    "legacy spec_version key",
			content: "---\nname: pdf-tools\ndescription: Work with PDFs\nspec_version: \"1.0\"\n---\n",
			want:    Metadata{Name: "pdf-tools", Description: "Work with PDFs", SpecVersion: "1.0"},
		},
		{
			name:    "unknown keys ignored",
			content: "---\nname: pdf-tools\ndescription: d\nlicense: MIT\nallowed-tools: [bash]\n---\n",
			want:    Metadata{Name: "pdf-tools", Description: "d"},
		},
		{
			name:    "utf-8 BOM before fence",
			content: "\xef\xbb\xbf---\nname: pdf-tools\ndescription: d\n---\n",
			want:    Metadata{Name: "pdf-tools", Description: "d"},
		},
		{
			name:    "windows line endings",
			content: "---\r\nname: pdf-tools\r\ndescription: d\r\n---\r\n",
			want:    Metadata{Name: "pdf-tools", Description: "d"},
		},
		{
			name:    "missing opening fence",
			content: "name: pdf-tools\ndescription: d\n",
			wantErr: "missing frontmatter",
		},
		{
			name:    "fence not on its own line",
			content: "--- name: pdf\n---\n",
			wantErr: "missing frontmatter",
		},
		{
			name:    "unterminated block",
			content: "---\nname: pdf-tools\ndescription: d\n",
			wantErr: "unterminated frontmatter",
		},
		{
			name:    "invalid YAML",
			content: "---\nname: [unclosed\n---\n",
			wantErr: "invalid frontmatter YAML",
		},
		{
			name:    "empty file",
			content: "",
			wantErr: "missing frontmatter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFrontmatter([]byte(tt.content))
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("ParseFrontmatter() = %+v, want error containing %q", got, tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("ParseFrontmatter() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFrontmatter() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseFrontmatter() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(t *testing.T) string
		wantValid  bool
		wantIssues []string // issue types expected, in order
	}{
		{
			name: "valid skill",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeMetadata(t, dir, "---\nname: pdf-tools\ndescription: Work with PDFs\n---\n")
				return dir
			},
			wantValid: true,
		},
		{
			name: "nonexistent path",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing")
			},
			wantValid:  false,
			wantIssues: []string{"structure"},
		},
		{
			name: "path is a file",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				path := filepath.Join(dir, "file.txt")
				if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
					t.Fatal(err)
				}
				return path
			},
			wantValid:  false,
			wantIssues: []string{"structure"},
		},
		{
			name: "missing SKILL.md",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
			wantValid:  false,
			wantIssues: []string{"structure"},
		},
		{
			name: "broken frontmatter",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeMetadata(t, dir, "no frontmatter here\n")
				return dir
			},
			wantValid:  false,
			wantIssues: []string{"metadata"},
		},
		{
			name: "invalid name",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeMetadata(t, dir, "---\nname: My_Skill\ndescription: d\n---\n")
				return dir
			},
			wantValid:  false,
			wantIssues: []string{"naming"},
		},
		{
			name: "missing description",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeMetadata(t, dir, "---\nname: pdf-tools\n---\n")
				return dir
			},
			wantValid:  false,
			wantIssues: []string{"metadata"},
		},
		{
			name: "bad name and missing description accumulate",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeMetadata(t, dir, "---\nname: My_Skill\n---\n")
				return dir
			},
			wantValid:  false,
			wantIssues: []string{"naming", "metadata"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.setup(t)
			result, err := Validate(path)
			if err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			if result.Valid != tt.wantValid {
				t.Errorf("Valid = %v, want %v (issues: %v)", result.Valid, tt.wantValid, result.Issues)
			}
			if len(result.Issues) != len(tt.wantIssues) {
				t.Fatalf("Issues = %v, want types %v", result.Issues, tt.wantIssues)
			}
			for i, wantType := range tt.wantIssues {
				if result.Issues[i].Type != wantType {
					t.Errorf("Issues[%d].Type = %q, want %q", i, result.Issues[i].Type, wantType)
				}
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("valid skill", func(t *testing.T) {
		dir := t.TempDir()
		writeMetadata(t, dir, "---\nname: pdf-tools\ndescription: Work with PDFs\nversion: 2.0.0\n---\n")

		skill, err := Load(dir)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if skill.Metadata.Name != "pdf-tools" || skill.Metadata.Version != "2.0.0" {
			t.Errorf("Metadata = %+v", skill.Metadata)
		}
		if skill.MetadataPath != filepath.Join(skill.Path, MetadataFileName) {
			t.Errorf("MetadataPath = %q, Path = %q", skill.MetadataPath, skill.Path)
		}
	})

	t.Run("invalid skill surfaces issues", func(t *testing.T) {
		dir := t.TempDir()
		writeMetadata(t, dir, "---\nname: My_Skill\n---\n")

		_, err := Load(dir)
		if err == nil {
			t.Fatal("Load() must fail for an invalid skill")
		}
		if !strings.Contains(err.Error(), "[naming]") {
			t.Errorf("Load() error = %v, want naming issue included", err)
		}
	})
}

func writeMetadata(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, MetadataFileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}
