package workspace

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/mattjoyce/breakdown/internal/params"
)

// Layout paths, slash separated and relative to the work directory.
const (
	ConfigPath  = ".agent/breakdown/config/config.yaml"
	PromptsPath = ".agent/breakdown/prompts"
)

// fsInitializer writes the starter layout through a billy filesystem rooted
// at the work directory.
type fsInitializer struct {
	fs billy.Filesystem
}

var _ Initializer = (*fsInitializer)(nil)

type starterFile struct {
	path    string
	content string
}

// New returns an Initializer writing into fs. fs should be rooted at the
// work directory (osfs.New(workDir) or a chroot of it).
func New(fs billy.Filesystem) (*fsInitializer, error) {
	if fs == nil {
		return nil, fmt.Errorf("workspace filesystem is nil")
	}
	return &fsInitializer{fs: fs}, nil
}

// Init writes config.yaml and the starter templates. Existing files are
// skipped unless opts.Force is set.
func (w *fsInitializer) Init(ctx context.Context, opts Options) (Report, error) {
	directives, layers := opts.Directives, opts.Layers
	builtin := params.Builtin()
	if len(directives) == 0 {
		directives = builtin.Directive
	}
	if len(layers) == 0 {
		layers = builtin.Layer
	}
	for _, word := range append(append([]string(nil), directives...), layers...) {
		if !plainWord(word) {
			return Report{}, fmt.Errorf("invalid template segment %q", word)
		}
	}

	files := []starterFile{{ConfigPath, configTemplate(directives, layers)}}
	for _, d := range directives {
		for _, l := range layers {
			files = append(files, starterFile{path.Join(PromptsPath, d, l, "f_"+l+".md"), starterTemplate(d, l)})
		}
	}

	var report Report
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		existed, err := w.exists(f.path)
		if err != nil {
			return report, err
		}
		if existed && !opts.Force {
			report.Skipped = append(report.Skipped, f.path)
			continue
		}
		if err := w.fs.MkdirAll(path.Dir(f.path), 0o755); err != nil {
			return report, fmt.Errorf("create directory for %s: %w", f.path, err)
		}
		if err := util.WriteFile(w.fs, f.path, []byte(f.content), 0o644); err != nil {
			return report, fmt.Errorf("write %s: %w", f.path, err)
		}
		if existed {
			report.Overwritten = append(report.Overwritten, f.path)
		} else {
			report.Created = append(report.Created, f.path)
		}
	}
	return report, nil
}

func (w *fsInitializer) exists(p string) (bool, error) {
	info, err := w.fs.Stat(p)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", p, err)
	}
	if info.IsDir() {
		return false, fmt.Errorf("%s is a directory", p)
	}
	return true, nil
}

func plainWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		ok := r == '_' || r == '-' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !ok {
			return false
		}
	}
	return true
}

func configTemplate(directives, layers []string) string {
	return fmt.Sprintf(`# breakdown configuration
working_dir: .agent/breakdown
app_prompt:
  base_dir: prompts
log_level: warn

profiles:
  default:
    two:
      directive:
        patterns: [%s]
      layer:
        patterns: [%s]

history:
  enabled: false
  path: history.db

serve:
  listen: 127.0.0.1:8765
  # api_key: ${BREAKDOWN_API_KEY}
`, strings.Join(directives, ", "), strings.Join(layers, ", "))
}

func starterTemplate(directive, layer string) string {
	return fmt.Sprintf(`# %s %s

Break the input below down to the %s layer.

Source: {input_text_file}
Destination: {destination_path}

---

{input_text}
`, directive, layer, layer)
}
