// SPDX-License-Identifier: MPL-2.0

// Package config builds the explicit configuration record for a packaging
// run. The record is constructed once at process start by the CLI layer and
// passed by reference into every component; no component reads ambient
// environment state directly.
//
// Precedence, highest first: command-line flags, SKILLPACK_* environment
// variables (plus the CI variables bound below), the optional skillpack.toml
// project file, built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"skillpack-cli/internal/discovery"
	"skillpack-cli/internal/grouping"
)

const (
	// AppName is the application name.
	AppName = "skillpack"
	// ProjectFileName is the optional per-repository config file.
	ProjectFileName = "skillpack.toml"
)

// Config is the explicit configuration record for one run.
type Config struct {
	// SkillsDir is the root directory scanned for skills.
	SkillsDir string `mapstructure:"skills_dir" toml:"skills_dir"`
	// OutputDir receives archives and the manifest.
	OutputDir string `mapstructure:"output_dir" toml:"output_dir"`
	// ExplicitPaths is a newline- or comma-separated list of skill paths. When
	// non-empty it overrides discovery and change-detection entirely.
	ExplicitPaths string `mapstructure:"paths" toml:"paths,omitempty"`
	// ForceFull bypasses change-detection and processes every discovered
	// candidate.
	ForceFull bool `mapstructure:"force_full" toml:"force_full"`
	// Baseline, when non-empty, is used verbatim as the change-detection
	// baseline instead of auto-detection.
	Baseline string `mapstructure:"baseline" toml:"baseline,omitempty"`
	// BaseBranch is the pull-request base branch in a PR context.
	BaseBranch string `mapstructure:"base_branch" toml:"-"`
	// Remote is the git remote missing baselines are fetched from.
	Remote string `mapstructure:"remote" toml:"remote"`
	// TagPrefix is prepended to derived release tags.
	TagPrefix string `mapstructure:"tag_prefix" toml:"tag_prefix"`
	// Publish enables release creation after packaging.
	Publish bool `mapstructure:"publish" toml:"publish"`
	// Draft marks created releases as drafts.
	Draft bool `mapstructure:"draft" toml:"draft"`
	// OutputsFile, when non-empty, receives name=value pipeline outputs
	// (the GitHub Actions $GITHUB_OUTPUT convention).
	OutputsFile string `mapstructure:"outputs_file" toml:"-"`
	// MaxDiscoveryDepth caps how deep below SkillsDir discovery looks for
	// metadata files.
	MaxDiscoveryDepth int `mapstructure:"max_discovery_depth" toml:"max_discovery_depth"`
	// MaxDescriptorLevels caps how many parent levels are searched for a
	// plugin descriptor.
	MaxDescriptorLevels int `mapstructure:"max_descriptor_levels" toml:"max_descriptor_levels"`
}

// Defaults returns the built-in configuration values.
func Defaults() Config {
	return Config{
		SkillsDir:           ".",
		OutputDir:           "dist",
		Remote:              "origin",
		MaxDiscoveryDepth:   discovery.DefaultMaxDepth,
		MaxDescriptorLevels: grouping.DefaultMaxLevels,
	}
}

// NewViper creates a viper instance with defaults and environment bindings
// installed. The CLI layer additionally binds its flags onto it.
func NewViper() *viper.Viper {
	v := viper.New()

	defaults := Defaults()
	v.SetDefault("skills_dir", defaults.SkillsDir)
	v.SetDefault("output_dir", defaults.OutputDir)
	v.SetDefault("paths", defaults.ExplicitPaths)
	v.SetDefault("force_full", defaults.ForceFull)
	v.SetDefault("baseline", defaults.Baseline)
	v.SetDefault("base_branch", defaults.BaseBranch)
	v.SetDefault("remote", defaults.Remote)
	v.SetDefault("tag_prefix", defaults.TagPrefix)
	v.SetDefault("publish", defaults.Publish)
	v.SetDefault("draft", defaults.Draft)
	v.SetDefault("outputs_file", defaults.OutputsFile)
	v.SetDefault("max_discovery_depth", defaults.MaxDiscoveryDepth)
	v.SetDefault("max_descriptor_levels", defaults.MaxDescriptorLevels)

	v.SetEnvPrefix("SKILLPACK")
	v.AutomaticEnv()

	// CI conventions: the PR base branch and the pipeline outputs file come
	// from the runner environment when not set explicitly.
	_ = v.BindEnv("base_branch", "SKILLPACK_BASE_BRANCH", "GITHUB_BASE_REF")
	_ = v.BindEnv("outputs_file", "SKILLPACK_OUTPUTS_FILE", "GITHUB_OUTPUT")

	return v
}

// Load materializes the Config from a prepared viper instance, merging in
// the project file (if any) beneath flag/env values.
func Load(v *viper.Viper) (*Config, error) {
	if path, ok := findProjectFile(v.GetString("skills_dir")); ok {
		if err := mergeProjectFile(v, path); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return &cfg, nil
}

// findProjectFile looks for skillpack.toml in the skills root, then in the
// user's config directory.
func findProjectFile(skillsDir string) (string, bool) {
	local := filepath.Join(skillsDir, ProjectFileName)
	if _, err := os.Stat(local); err == nil {
		return local, true
	}
	user := filepath.Join(xdg.ConfigHome, AppName, ProjectFileName)
	if _, err := os.Stat(user); err == nil {
		return user, true
	}
	return "", false
}

// mergeProjectFile parses a TOML project file and installs its values as
// defaults, keeping flag and environment precedence intact.
func mergeProjectFile(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var values map[string]any
	if err := toml.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	for key, value := range values {
		v.SetDefault(key, value)
	}
	return nil
}

// WriteTemplate writes a skillpack.toml seeded with the defaults, for
// "skillpack init". Fails when the file already exists.
func WriteTemplate(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	data, err := toml.Marshal(Defaults())
	if err != nil {
		return fmt.Errorf("failed to render config template: %w", err)
	}

	header := []byte("# skillpack project configuration.\n# Values here are defaults; flags and SKILLPACK_* env vars override them.\n\n")
	if err := os.WriteFile(path, append(header, data...), 0644); err != nil {
		return fmt.Errorf("failed to write config template: %w", err)
	}
	return nil
}
