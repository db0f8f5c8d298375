// ABOUTME: Settings loading with global + project config merge and environment overrides
// ABOUTME: YAML configuration via gopkg.in/yaml.v3; defaults fill whatever is left unset

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Chooser values.
const (
	ChooserAuto   = "auto"
	ChooserPrompt = "prompt"
	ChooserTUI    = "tui"
)

// Style values. "auto" lets glamour pick from the terminal background.
const (
	StyleAuto  = "auto"
	StyleDark  = "dark"
	StyleLight = "light"
	StyleNoTTY = "notty"
)

// Settings holds the merged configuration.
type Settings struct {
	SpecPaths []string `yaml:"spec_paths,omitempty"`
	GemHome   string   `yaml:"gem_home,omitempty"`
	Chooser   string   `yaml:"chooser,omitempty"`
	LogLevel  string   `yaml:"log_level,omitempty"`
	Style     string   `yaml:"style,omitempty"`
}

// Load reads and merges global and project-local settings, then applies
// environment overrides and defaults. Project settings override global ones.
func Load(projectRoot string) (*Settings, error) {
	return loadFrom(GlobalConfigFile(), ProjectConfigFile(projectRoot), os.Getenv)
}

func loadFrom(globalPath, projectPath string, getenv func(string) string) (*Settings, error) {
	global, err := loadFile(globalPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading global config: %w", err)
	}

	project, err := loadFile(projectPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	merged := merge(global, project)
	ApplyEnv(merged, getenv)
	ResolveEnvVars(merged)
	applyDefaults(merged)

	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}

// loadFile reads Settings from a YAML file. Returns zero Settings if the
// file does not exist.
func loadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Settings{}, err
	}
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &s, nil
}

// merge overlays project settings onto global settings.
// Non-zero project values override global values.
func merge(global, project *Settings) *Settings {
	if global == nil {
		global = &Settings{}
	}
	if project == nil {
		return global
	}

	result := *global
	result.SpecPaths = slices.Clone(global.SpecPaths)

	if len(project.SpecPaths) > 0 {
		result.SpecPaths = slices.Clone(project.SpecPaths)
	}
	if project.GemHome != "" {
		result.GemHome = project.GemHome
	}
	if project.Chooser != "" {
		result.Chooser = project.Chooser
	}
	if project.LogLevel != "" {
		result.LogLevel = project.LogLevel
	}
	if project.Style != "" {
		result.Style = project.Style
	}

	return &result
}

func applyDefaults(s *Settings) {
	if s.GemHome == "" {
		s.GemHome = DefaultGemHome()
	}
	s.GemHome = expandHome(s.GemHome)
	for i, p := range s.SpecPaths {
		s.SpecPaths[i] = expandHome(p)
	}
	if s.Chooser == "" {
		s.Chooser = ChooserAuto
	}
	if s.LogLevel == "" {
		s.LogLevel = "warn"
	}
	if s.Style == "" {
		s.Style = StyleAuto
	}
}

// Validate rejects enumerated fields with unknown values.
func (s *Settings) Validate() error {
	switch s.Chooser {
	case ChooserAuto, ChooserPrompt, ChooserTUI:
	default:
		return fmt.Errorf("invalid chooser %q: want %s, %s or %s", s.Chooser, ChooserAuto, ChooserPrompt, ChooserTUI)
	}
	switch s.Style {
	case StyleAuto, StyleDark, StyleLight, StyleNoTTY:
	default:
		return fmt.Errorf("invalid style %q", s.Style)
	}
	return nil
}

// GemDirs returns the gem directories to search, in priority order. Without
// explicit spec_paths only the gem home is searched.
func (s *Settings) GemDirs() []string {
	if len(s.SpecPaths) > 0 {
		return slices.Clone(s.SpecPaths)
	}
	if s.GemHome == "" {
		return nil
	}
	return []string{s.GemHome}
}
