package config

import "path/filepath"

// Config represents the complete breakdown configuration.
type Config struct {
	WorkingDir string                   `yaml:"working_dir"`
	AppPrompt  AppPromptConfig          `yaml:"app_prompt"`
	LogLevel   string                   `yaml:"log_level"`
	Profiles   map[string]ProfileConfig `yaml:"profiles,omitempty"`
	History    HistoryConfig            `yaml:"history"`
	Serve      ServeConfig              `yaml:"serve"`

	// SourcePath is the loaded config.yaml; empty when running on defaults.
	SourcePath string `yaml:"-"`
	// ConfigDir is the directory SourcePath lives in.
	ConfigDir string `yaml:"-"`
}

// AppPromptConfig locates the template tree.
type AppPromptConfig struct {
	// BaseDir is relative to WorkingDir unless absolute.
	BaseDir string `yaml:"base_dir"`
}

// ProfileConfig is one named set of accepted command words.
type ProfileConfig struct {
	Two           TwoParams `yaml:"two"`
	PromptBaseDir string    `yaml:"prompt_base_dir,omitempty"`
}

// TwoParams holds the patterns for the two positional words.
type TwoParams struct {
	Directive ParamPatterns `yaml:"directive"`
	Layer     ParamPatterns `yaml:"layer"`
}

// ParamPatterns lists the accepted patterns for one positional word.
type ParamPatterns struct {
	Patterns []string `yaml:"patterns"`
}

// HistoryConfig controls the run history database.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ServeConfig defines HTTP API server settings.
type ServeConfig struct {
	Listen string `yaml:"listen"`
	// APIKey enables bearer auth when set.
	APIKey string `yaml:"api_key,omitempty"`
}

// ChecksumManifest is the content of .checksums.
type ChecksumManifest struct {
	Version     int               `yaml:"version"`
	GeneratedAt string            `yaml:"generated_at"`
	Hashes      map[string]string `yaml:"hashes"`
}

// IntegrityResult collects the outcome of VerifyIntegrity.
type IntegrityResult struct {
	Passed   bool
	Warnings []string
	Errors   []string
}

// ConfigFiles is the manifest of files discovered in a config directory.
type ConfigFiles struct {
	Root     string
	Config   string
	Profiles []string
}

// AllFiles returns every discovered file, config.yaml first.
func (cf *ConfigFiles) AllFiles() []string {
	files := []string{cf.Config}
	return append(files, cf.Profiles...)
}

// RelFiles returns AllFiles relative to Root, slash separated.
func (cf *ConfigFiles) RelFiles() []string {
	all := cf.AllFiles()
	out := make([]string, 0, len(all))
	for _, p := range all {
		rel, err := filepath.Rel(cf.Root, p)
		if err != nil {
			rel = p
		}
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		WorkingDir: ".agent/breakdown",
		AppPrompt: AppPromptConfig{
			BaseDir: "prompts",
		},
		LogLevel: "warn",
		History: HistoryConfig{
			Enabled: false,
			Path:    "history.db",
		},
		Serve: ServeConfig{
			Listen: "127.0.0.1:8765",
		},
	}
}

// PromptRoot returns the template root, resolved against workDir.
func (c *Config) PromptRoot(workDir string) string {
	return resolveUnder(workDir, c.WorkingDir, c.AppPrompt.BaseDir)
}

// ProfileRoots returns per-profile template roots for profiles that
// override prompt_base_dir.
func (c *Config) ProfileRoots(workDir string) map[string]string {
	roots := make(map[string]string)
	for name, p := range c.Profiles {
		if p.PromptBaseDir != "" {
			roots[name] = resolveUnder(workDir, c.WorkingDir, p.PromptBaseDir)
		}
	}
	return roots
}

// HistoryPath returns the history database path, resolved against workDir.
func (c *Config) HistoryPath(workDir string) string {
	return resolveUnder(workDir, c.WorkingDir, c.History.Path)
}

// ServeLockPath returns the single-instance lock file for `breakdown serve`.
func (c *Config) ServeLockPath(workDir string) string {
	return resolveUnder(workDir, c.WorkingDir, "serve.lock")
}

func resolveUnder(workDir, base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	if !filepath.IsAbs(base) {
		base = filepath.Join(workDir, base)
	}
	return filepath.Join(base, p)
}
