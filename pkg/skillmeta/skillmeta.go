// SPDX-License-Identifier: MPL-2.0

// Package skillmeta provides functionality for working with skill bundles.
//
// A skill is a self-contained directory that contains a SKILL.md file plus
// arbitrary supporting content (scripts, references, assets). The SKILL.md
// file opens with a YAML frontmatter block carrying the skill's metadata.
//
// Skill naming follows these rules:
//   - Name must be lowercase: ASCII letters, digits, and hyphens only
//   - Hyphens separate segments; no leading/trailing/doubled hyphens
//   - At most 64 characters
//
// Skill structure:
//   - Must contain exactly one SKILL.md at the directory root
//   - The frontmatter must declare at least "name" and "description"
//   - Unknown frontmatter keys are ignored for forward compatibility
package skillmeta

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// MetadataFileName is the required metadata file inside every skill directory.
const MetadataFileName = "SKILL.md"

// MaxNameLength is the maximum allowed length of a skill name.
const MaxNameLength = 64

// frontmatterFence delimits the YAML metadata block at the top of SKILL.md.
var frontmatterFence = []byte("---")

// skillNameRegex validates skill names: lowercase alphanumeric segments
// separated by single hyphens (e.g., "pdf-tools", "data2csv").
var skillNameRegex = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Metadata holds the structured fields extracted from a SKILL.md frontmatter.
type Metadata struct {
	// Name is the skill's unique identifier (required).
	Name string `yaml:"name"`
	// Description explains what the skill does (required).
	Description string `yaml:"description"`
	// Version is the skill's own version (optional).
	Version string `yaml:"version"`
	// SpecVersion is the metadata format version the skill targets (optional).
	SpecVersion string `yaml:"specVersion"`
}

// UnmarshalYAML accepts both "specVersion" and the legacy "spec_version" key.
func (m *Metadata) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Name          string `yaml:"name"`
		Description   string `yaml:"description"`
		Version       string `yaml:"version"`
		SpecVersion   string `yaml:"specVersion"`
		SpecVersionLC string `yaml:"spec_version"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	m.Name = raw.Name
	m.Description = raw.Description
	m.Version = raw.Version
	m.SpecVersion = raw.SpecVersion
	if m.SpecVersion == "" {
		m.SpecVersion = raw.SpecVersionLC
	}
	return nil
}

// ValidationIssue represents a single validation problem in a skill
type ValidationIssue struct {
	// Type categorizes the issue (e.g., "structure", "naming", "metadata")
	Type string
	// Message describes the specific problem
	Message string
	// Path is the path where the issue was found (optional)
	Path string
}

// Error implements the error interface for ValidationIssue
func (v ValidationIssue) Error() string {
	if v.Path != "" {
		return fmt.Sprintf("[%s] %s: %s", v.Type, v.Path, v.Message)
	}
	return fmt.Sprintf("[%s] %s", v.Type, v.Message)
}

// ValidationResult contains the result of skill validation
type ValidationResult struct {
	// Valid is true if the skill passed all validation checks
	Valid bool
	// SkillPath is the absolute path to the validated skill directory
	SkillPath string
	// MetadataPath is the path to the SKILL.md within the skill
	MetadataPath string
	// Metadata is the parsed frontmatter (zero value when parsing failed)
	Metadata Metadata
	// Issues contains all validation problems found
	Issues []ValidationIssue
}

// AddIssue adds a validation issue to the result
func (r *ValidationResult) AddIssue(issueType, message, path string) {
	r.Issues = append(r.Issues, ValidationIssue{
		Type:    issueType,
		Message: message,
		Path:    path,
	})
	r.Valid = false
}

// Skill represents a validated skill bundle
type Skill struct {
	// Path is the absolute path to the skill directory
	Path string
	// MetadataPath is the absolute path to the SKILL.md
	MetadataPath string
	// Metadata is the parsed frontmatter
	Metadata Metadata
}

// ValidateName checks if a skill name is valid.
// Returns nil if valid, or an error describing the problem.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("skill name cannot be empty")
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("skill name '%s' exceeds %d characters", name, MaxNameLength)
	}
	if !skillNameRegex.MatchString(name) {
		return fmt.Errorf("skill name '%s' is invalid: must use lowercase letters, digits, and hyphens (e.g., 'pdf-tools')", name)
	}
	return nil
}

// ParseFrontmatter extracts and parses the YAML frontmatter block from
// SKILL.md content. The block must start on the first line with "---" and
// be closed by a second "---" line. Unknown keys are ignored.
func ParseFrontmatter(content []byte) (Metadata, error) {
	var meta Metadata

	trimmed := bytes.TrimPrefix(content, []byte("\xef\xbb\xbf")) // tolerate a UTF-8 BOM
	if !bytes.HasPrefix(trimmed, frontmatterFence) {
		return meta, fmt.Errorf("missing frontmatter: file must start with '---'")
	}

	rest := trimmed[len(frontmatterFence):]
	rest = bytes.TrimPrefix(rest, []byte("\r"))
	if len(rest) == 0 || rest[0] != '\n' {
		return meta, fmt.Errorf("missing frontmatter: file must start with '---' on its own line")
	}
	rest = rest[1:]

	end := bytes.Index(rest, []byte("\n---"))
	if end < 0 {
		return meta, fmt.Errorf("unterminated frontmatter: no closing '---' found")
	}

	if err := yaml.Unmarshal(rest[:end], &meta); err != nil {
		return meta, fmt.Errorf("invalid frontmatter YAML: %w", err)
	}
	return meta, nil
}

// Validate performs comprehensive validation of a skill at the given path.
// Returns a ValidationResult with all issues found, or an error if the path
// cannot be accessed.
func Validate(skillPath string) (*ValidationResult, error) {
	absPath, err := filepath.Abs(skillPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	result := &ValidationResult{
		Valid:     true,
		SkillPath: absPath,
		Issues:    []ValidationIssue{},
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			result.AddIssue("structure", "path does not exist", "")
			return result, nil
		}
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}
	if !info.IsDir() {
		result.AddIssue("structure", "path is not a directory", "")
		return result, nil
	}

	metadataPath := filepath.Join(absPath, MetadataFileName)
	content, err := os.ReadFile(metadataPath)
	if err != nil {
		if os.IsNotExist(err) {
			result.AddIssue("structure", "missing required "+MetadataFileName, "")
		} else {
			result.AddIssue("structure", fmt.Sprintf("cannot read %s: %v", MetadataFileName, err), "")
		}
		return result, nil
	}
	result.MetadataPath = metadataPath

	meta, err := ParseFrontmatter(content)
	if err != nil {
		result.AddIssue("metadata", err.Error(), metadataPath)
		return result, nil
	}
	result.Metadata = meta

	if err := ValidateName(meta.Name); err != nil {
		result.AddIssue("naming", err.Error(), metadataPath)
	}
	if meta.Description == "" {
		result.AddIssue("metadata", "missing required field 'description'", metadataPath)
	}

	return result, nil
}

// Load loads and validates a skill at the given path.
// Returns a Skill struct if valid, or an error with validation details.
func Load(skillPath string) (*Skill, error) {
	result, err := Validate(skillPath)
	if err != nil {
		return nil, err
	}

	if !result.Valid {
		var msgs []string
		for _, issue := range result.Issues {
			msgs = append(msgs, issue.Error())
		}
		return nil, fmt.Errorf("invalid skill: %s", strings.Join(msgs, "; "))
	}

	return &Skill{
		Path:         result.SkillPath,
		MetadataPath: result.MetadataPath,
		Metadata:     result.Metadata,
	}, nil
}
