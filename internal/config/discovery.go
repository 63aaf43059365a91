package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mattjoyce/breakdown/internal/failure"
)

// EnvConfigDir overrides config discovery.
const EnvConfigDir = "BREAKDOWN_CONFIG_DIR"

// ProjectConfigDir is the per-project config location, relative to the
// working directory.
var ProjectConfigDir = filepath.Join(".agent", "breakdown", "config")

// DiscoverConfigDir finds the config directory by checking standard locations.
// Priority order: explicit (--config-dir), $BREAKDOWN_CONFIG_DIR,
// <workDir>/.agent/breakdown/config, ~/.config/breakdown.
// An empty result with a nil error means no configuration exists.
func DiscoverConfigDir(explicit, workDir string) (string, error) {
	// 1. Explicit flag: must exist
	if explicit != "" {
		if !fileExists(filepath.Join(explicit, "config.yaml")) {
			return "", &failure.ConfigurationNotFound{Path: explicit}
		}
		return explicit, nil
	}

	// 2. Environment variable: must exist when set
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		if !fileExists(filepath.Join(dir, "config.yaml")) {
			return "", &failure.ConfigurationNotFound{Path: dir}
		}
		return dir, nil
	}

	// 3. Project directory
	if dir := filepath.Join(workDir, ProjectConfigDir); fileExists(filepath.Join(dir, "config.yaml")) {
		return dir, nil
	}

	// 4. User config directory
	if homeDir, err := os.UserHomeDir(); err == nil {
		dir := filepath.Join(homeDir, ".config", "breakdown")
		if fileExists(filepath.Join(dir, "config.yaml")) {
			return dir, nil
		}
	}

	return "", nil
}

// DiscoverConfigFiles walks a config directory and returns the manifest of discovered files.
// Returns error if config.yaml is missing (hard requirement).
func DiscoverConfigFiles(configDir string) (*ConfigFiles, error) {
	absDir, err := filepath.Abs(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config dir %q: %w", configDir, err)
	}

	cf := &ConfigFiles{Root: absDir}

	// config.yaml is mandatory
	configPath := filepath.Join(absDir, "config.yaml")
	if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("config.yaml not found in %s: %w", absDir, err)
	}
	cf.Config = configPath

	// Walk profiles/*.yaml
	cf.Profiles, err = walkYAMLDir(filepath.Join(absDir, "profiles"))
	if err != nil {
		return nil, fmt.Errorf("failed to walk profiles/: %w", err)
	}

	return cf, nil
}

// walkYAMLDir returns sorted absolute paths of *.yaml and *.yml files in dir.
// Returns nil (not error) if the directory doesn't exist.
func walkYAMLDir(dir string) ([]string, error) {
	if !dirExists(dir) {
		return nil, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			files = append(files, filepath.Join(dir, name))
		}
	}
	sort.Strings(files)
	return files, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
