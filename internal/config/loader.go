package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mattjoyce/breakdown/internal/failure"
	"github.com/mattjoyce/breakdown/internal/log"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// profileFile is the shape of profiles/*.yaml.
type profileFile struct {
	Profiles map[string]ProfileConfig `yaml:"profiles"`
}

// Resolve discovers the config directory and loads it. When no
// configuration exists anywhere, Defaults() is returned with an empty
// SourcePath.
func Resolve(explicitDir, workDir string) (*Config, error) {
	dir, err := DiscoverConfigDir(explicitDir, workDir)
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return Defaults(), nil
	}
	return Load(dir)
}

// Load reads config.yaml and profiles/*.yaml from configDir, verifies them
// against .checksums when present, applies defaults and validates.
// Every failure is a *failure.ConfigurationValidationError.
func Load(configDir string) (*Config, error) {
	files, err := DiscoverConfigFiles(configDir)
	if err != nil {
		return nil, &failure.ConfigurationValidationError{Path: configDir, Reason: "cannot discover files", Cause: err}
	}

	// Hash-verify all configuration files when a manifest exists
	if fileExists(filepath.Join(files.Root, ".checksums")) {
		res, err := VerifyIntegrity(files.Root, files)
		if err != nil {
			return nil, &failure.ConfigurationValidationError{Path: files.Root, Field: ".checksums", Cause: err}
		}
		if !res.Passed {
			return nil, &failure.ConfigurationValidationError{
				Path:   files.Root,
				Field:  ".checksums",
				Reason: strings.Join(res.Errors, "; ") + " (if you edited these files intentionally, run: breakdown config lock)",
			}
		}
	}

	cfg := &Config{}
	if err := decodeFile(files.Config, cfg); err != nil {
		return nil, err
	}

	for _, path := range files.Profiles {
		var pf profileFile
		if err := decodeFile(path, &pf); err != nil {
			return nil, err
		}
		if err := graftProfiles(cfg, pf.Profiles, path); err != nil {
			return nil, err
		}
	}

	cfg.SourcePath = files.Config
	cfg.ConfigDir = files.Root

	// Apply config defaults before validation
	cfg = applyConfigDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	log.Debug("configuration loaded", "path", cfg.SourcePath, "profiles", len(cfg.Profiles))
	return cfg, nil
}

// decodeFile reads path, expands ${VAR} references and decodes strictly:
// unknown keys are errors.
func decodeFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &failure.ConfigurationValidationError{Path: path, Reason: "cannot read file", Cause: err}
	}

	dec := yaml.NewDecoder(bytes.NewReader([]byte(interpolateEnv(string(data)))))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return &failure.ConfigurationValidationError{Path: path, Reason: "cannot parse YAML", Cause: err}
	}
	return nil
}

func graftProfiles(cfg *Config, profiles map[string]ProfileConfig, path string) error {
	if cfg.Profiles == nil {
		cfg.Profiles = make(map[string]ProfileConfig)
	}
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, dup := cfg.Profiles[name]; dup {
			return &failure.ConfigurationValidationError{
				Path:   path,
				Field:  "profiles." + name,
				Reason: "profile is defined more than once",
			}
		}
		cfg.Profiles[name] = profiles[name]
	}
	return nil
}

// applyConfigDefaults merges default values into config where not explicitly set.
func applyConfigDefaults(cfg *Config) *Config {
	defaults := Defaults()

	if cfg.WorkingDir == "" {
		cfg.WorkingDir = defaults.WorkingDir
	}
	if cfg.AppPrompt.BaseDir == "" {
		cfg.AppPrompt.BaseDir = defaults.AppPrompt.BaseDir
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}
	if cfg.History.Path == "" && !cfg.History.Enabled {
		cfg.History.Path = defaults.History.Path
	}
	if cfg.Serve.Listen == "" {
		cfg.Serve.Listen = defaults.Serve.Listen
	}

	return cfg
}

// interpolateEnv replaces ${VAR} with environment variable values.
// Undefined variables are left as-is (not expanded).
func interpolateEnv(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		// If not found, leave the placeholder (will fail validation if required)
		return match
	})
}

// validate performs basic validation on the configuration.
func validate(cfg *Config) error {
	invalid := func(field, reason string) error {
		return &failure.ConfigurationValidationError{Path: cfg.SourcePath, Field: field, Reason: reason}
	}

	if !log.ValidLevel(cfg.LogLevel) {
		return invalid("log_level", fmt.Sprintf("must be one of: debug, info, warn, error (got %q)", cfg.LogLevel))
	}

	names := make([]string, 0, len(cfg.Profiles))
	for name := range cfg.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			return invalid("profiles", "profile names must be non-empty")
		}
		p := cfg.Profiles[name]
		for _, param := range []struct {
			name     string
			patterns []string
		}{
			{"directive", p.Two.Directive.Patterns},
			{"layer", p.Two.Layer.Patterns},
		} {
			for _, pat := range param.patterns {
				if _, err := regexp.Compile("^(?:" + pat + ")$"); err != nil {
					return invalid(
						fmt.Sprintf("profiles.%s.two.%s.patterns", name, param.name),
						fmt.Sprintf("pattern %q does not compile: %v", pat, err),
					)
				}
			}
		}
	}

	if cfg.History.Enabled && cfg.History.Path == "" {
		return invalid("history.path", "required when history.enabled is true")
	}

	if envVarPattern.MatchString(cfg.Serve.APIKey) {
		return invalid("serve.api_key", fmt.Sprintf("unresolved environment variable in %q", cfg.Serve.APIKey))
	}

	return nil
}
