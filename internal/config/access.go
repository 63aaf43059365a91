package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ohler55/ojg/jp"
	"gopkg.in/yaml.v3"
)

// GetPath retrieves a value from the configuration. path is either a
// JSONPath expression starting with '$' or a dot-notation path such as
// profiles.default.two.layer.patterns.0.
func (c *Config) GetPath(path string) (any, error) {
	expr := path
	if !strings.HasPrefix(path, "$") {
		expr = dotToJSONPath(path)
	}

	x, err := jp.ParseString(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid path %q: %w", path, err)
	}

	root, err := c.asMap()
	if err != nil {
		return nil, err
	}

	results := x.Get(root)
	switch len(results) {
	case 0:
		return nil, fmt.Errorf("path %q: not found", path)
	case 1:
		return results[0], nil
	default:
		return results, nil
	}
}

// asMap converts the config to generic maps for traversal.
func (c *Config) asMap() (map[string]any, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}

	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return m, nil
}

// dotToJSONPath turns a.b.0 into $['a']['b'][0]. Bracket notation keeps
// keys such as profile names containing '-' intact.
func dotToJSONPath(path string) string {
	var b strings.Builder
	b.WriteString("$")
	for _, part := range strings.Split(path, ".") {
		if part == "" {
			continue
		}
		if n, err := strconv.Atoi(part); err == nil && n >= 0 {
			fmt.Fprintf(&b, "[%d]", n)
			continue
		}
		fmt.Fprintf(&b, "['%s']", strings.ReplaceAll(part, "'", `\'`))
	}
	return b.String()
}
