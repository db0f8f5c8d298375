// ABOUTME: Environment handling for settings: ${VAR} expansion and RubyGems/spek overrides
// ABOUTME: GEM_HOME, GEM_PATH, SPEK_CHOOSER and SPEK_LOG_LEVEL win over config files

package config

import (
	"os"
	"path/filepath"
	"regexp"
)

var envVarPattern = regexp.MustCompile(`\$\{(\w+)\}`)

// Environment variables consulted by ApplyEnv.
const (
	EnvGemHome  = "GEM_HOME"
	EnvGemPath  = "GEM_PATH"
	EnvChooser  = "SPEK_CHOOSER"
	EnvLogLevel = "SPEK_LOG_LEVEL"
)

// ResolveEnvVars expands ${VAR} patterns in string fields of Settings.
func ResolveEnvVars(s *Settings) {
	s.GemHome = expandEnv(s.GemHome)
	s.Chooser = expandEnv(s.Chooser)
	s.LogLevel = expandEnv(s.LogLevel)
	s.Style = expandEnv(s.Style)

	for i, p := range s.SpecPaths {
		s.SpecPaths[i] = expandEnv(p)
	}
}

// ApplyEnv overrides settings from the environment. Unset or empty variables
// leave the settings alone. GEM_PATH is split on the OS list separator.
func ApplyEnv(s *Settings, getenv func(string) string) {
	if v := getenv(EnvGemHome); v != "" {
		s.GemHome = v
	}
	if v := getenv(EnvGemPath); v != "" {
		var paths []string
		for _, p := range filepath.SplitList(v) {
			if p != "" {
				paths = append(paths, p)
			}
		}
		s.SpecPaths = paths
	}
	if v := getenv(EnvChooser); v != "" {
		s.Chooser = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		s.LogLevel = v
	}
}

// expandEnv replaces ${VAR} with the value of the environment variable.
// Unset variables expand to empty string.
func expandEnv(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(name)
	})
}
