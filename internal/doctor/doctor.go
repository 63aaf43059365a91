// Package doctor validates breakdown configuration against the prompt tree
// it points at.
package doctor

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	billy "github.com/go-git/go-billy/v5"

	"github.com/mattjoyce/breakdown/internal/config"
	"github.com/mattjoyce/breakdown/internal/params"
)

// plainWord matches patterns that name exactly one literal word. Only those
// can be mapped to a template directory.
var plainWord = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Result holds the outcome of a validation run.
type Result struct {
	Valid    bool    `json:"valid"`
	Errors   []Issue `json:"errors,omitempty"`
	Warnings []Issue `json:"warnings,omitempty"`
}

// Issue describes a single validation error or warning.
type Issue struct {
	Category string `json:"category"`
	Message  string `json:"message"`
	Field    string `json:"field,omitempty"`
}

// Doctor validates configuration against the template tree.
type Doctor struct {
	cfg     *config.Config
	fs      billy.Filesystem
	workDir string
}

// New creates a Doctor. fs is used read-only to inspect the prompt tree.
func New(cfg *config.Config, fs billy.Filesystem, workDir string) *Doctor {
	return &Doctor{cfg: cfg, fs: fs, workDir: workDir}
}

// Validate runs all checks and returns a result.
func (d *Doctor) Validate() *Result {
	r := &Result{Valid: true}

	d.validateProfiles(r)
	d.validateHistory(r)
	d.validateServe(r)
	d.checkIntegrity(r)
	d.warnBuiltinDefault(r)
	d.warnMissingTemplateDirs(r)

	r.Valid = len(r.Errors) == 0
	return r
}

func (d *Doctor) addError(r *Result, category, field, msg string) {
	r.Errors = append(r.Errors, Issue{Category: category, Field: field, Message: msg})
}

func (d *Doctor) addWarning(r *Result, category, field, msg string) {
	r.Warnings = append(r.Warnings, Issue{Category: category, Field: field, Message: msg})
}

func (d *Doctor) profileNames() []string {
	names := make([]string, 0, len(d.cfg.Profiles))
	for name := range d.cfg.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// validateProfiles checks every profile defines compilable patterns for both words.
func (d *Doctor) validateProfiles(r *Result) {
	for _, name := range d.profileNames() {
		p := d.cfg.Profiles[name]
		for _, param := range []struct {
			name     string
			patterns []string
		}{
			{"directive", p.Two.Directive.Patterns},
			{"layer", p.Two.Layer.Patterns},
		} {
			field := fmt.Sprintf("profiles.%s.two.%s.patterns", name, param.name)
			if len(param.patterns) == 0 {
				d.addError(r, "profiles", field, fmt.Sprintf("profile %q defines no %s patterns", name, param.name))
				continue
			}
			seen := make(map[string]bool)
			for _, pat := range param.patterns {
				if _, err := params.Compile(pat); err != nil {
					d.addError(r, "profiles", field, fmt.Sprintf("pattern %q does not compile: %v", pat, err))
				}
				if seen[pat] {
					d.addWarning(r, "profiles", field, fmt.Sprintf("pattern %q listed twice", pat))
				}
				seen[pat] = true
			}
		}
	}
}

// validateHistory checks the history database settings.
func (d *Doctor) validateHistory(r *Result) {
	if !d.cfg.History.Enabled {
		return
	}
	if d.cfg.History.Path == "" {
		d.addError(r, "history", "history.path", "history.path is required when history is enabled")
	}
}

// validateServe checks HTTP API server settings.
func (d *Doctor) validateServe(r *Result) {
	if d.cfg.Serve.Listen == "" {
		d.addError(r, "serve", "serve.listen", "serve.listen is required")
	}
	if strings.Contains(d.cfg.Serve.APIKey, "${") {
		d.addError(r, "env_vars", "serve.api_key", fmt.Sprintf("unresolved environment variable in %q", d.cfg.Serve.APIKey))
		return
	}
	if d.cfg.Serve.APIKey == "" {
		d.addWarning(r, "serve", "serve.api_key", "no api_key configured; breakdown serve accepts unauthenticated requests")
	}
}

// checkIntegrity reports .checksums findings for a loaded config directory.
func (d *Doctor) checkIntegrity(r *Result) {
	if d.cfg.ConfigDir == "" {
		return
	}
	files, err := config.DiscoverConfigFiles(d.cfg.ConfigDir)
	if err != nil {
		d.addError(r, "integrity", "", err.Error())
		return
	}
	res, err := config.VerifyIntegrity(d.cfg.ConfigDir, files)
	if err != nil {
		d.addError(r, "integrity", config.ChecksumFile, err.Error())
		return
	}
	for _, msg := range res.Errors {
		d.addError(r, "integrity", config.ChecksumFile, msg)
	}
	for _, msg := range res.Warnings {
		d.addWarning(r, "integrity", config.ChecksumFile, msg)
	}
}

// warnBuiltinDefault notes when the default profile comes from the built-in set.
func (d *Doctor) warnBuiltinDefault(r *Result) {
	if _, ok := d.cfg.Profiles[params.DefaultProfile]; ok {
		return
	}
	if d.cfg.SourcePath == "" {
		d.addWarning(r, "profiles", "", "no configuration found; using built-in default profile (run 'breakdown init')")
		return
	}
	d.addWarning(r, "profiles", "profiles.default", "no default profile configured; built-in patterns will be used")
}

// warnMissingTemplateDirs flags directive/layer pairs with no template directory.
func (d *Doctor) warnMissingTemplateDirs(r *Result) {
	store := params.NewConfigStore(d.cfg)
	roots := d.cfg.ProfileRoots(d.workDir)

	names := d.profileNames()
	if _, ok := d.cfg.Profiles[params.DefaultProfile]; !ok {
		names = append([]string{params.DefaultProfile}, names...)
	}

	for _, name := range names {
		set, err := store.Patterns(name)
		if err != nil {
			continue
		}
		root := d.cfg.PromptRoot(d.workDir)
		if rr, ok := roots[name]; ok {
			root = rr
		}
		if !d.isDir(root) {
			d.addWarning(r, "templates", fmt.Sprintf("profiles.%s", name),
				fmt.Sprintf("prompt directory %s does not exist", root))
			continue
		}
		for _, dir := range set.Directive {
			if !plainWord.MatchString(dir) {
				continue
			}
			for _, layer := range set.Layer {
				if !plainWord.MatchString(layer) {
					continue
				}
				p := filepath.Join(root, dir, layer)
				if !d.isDir(p) {
					d.addWarning(r, "templates", fmt.Sprintf("profiles.%s", name),
						fmt.Sprintf("no template directory for %s %s (%s)", dir, layer, p))
				}
			}
		}
	}
}

func (d *Doctor) isDir(path string) bool {
	fi, err := d.fs.Stat(path)
	if err != nil {
		return false
	}
	return fi.IsDir()
}

// FormatHuman returns a human-readable validation report.
func FormatHuman(r *Result) string {
	var b strings.Builder

	if r.Valid && len(r.Warnings) == 0 {
		b.WriteString("Configuration valid.\n")
		return b.String()
	}

	if r.Valid && len(r.Warnings) > 0 {
		b.WriteString("Configuration valid")
		fmt.Fprintf(&b, " (%d warning(s))\n", len(r.Warnings))
	}

	if !r.Valid {
		fmt.Fprintf(&b, "Configuration invalid (%d error(s), %d warning(s))\n", len(r.Errors), len(r.Warnings))
	}

	for _, e := range r.Errors {
		if e.Field != "" {
			fmt.Fprintf(&b, "  ERROR [%s] %s: %s\n", e.Category, e.Field, e.Message)
		} else {
			fmt.Fprintf(&b, "  ERROR [%s] %s\n", e.Category, e.Message)
		}
	}
	for _, w := range r.Warnings {
		if w.Field != "" {
			fmt.Fprintf(&b, "  WARN  [%s] %s: %s\n", w.Category, w.Field, w.Message)
		} else {
			fmt.Fprintf(&b, "  WARN  [%s] %s\n", w.Category, w.Message)
		}
	}

	return b.String()
}

// FormatJSON returns the result as indented JSON.
func FormatJSON(r *Result) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FromLoadError turns a configuration load failure into a report so
// 'config check' can print it the same way as other findings.
func FromLoadError(err error) *Result {
	r := &Result{Valid: false}
	r.Errors = append(r.Errors, Issue{Category: "load", Message: err.Error()})
	return r
}
