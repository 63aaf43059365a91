package params

import (
	"slices"
	"sync"

	"github.com/mattjoyce/breakdown/internal/config"
	"github.com/mattjoyce/breakdown/internal/failure"
)

// PatternSet is the pattern list of one profile.
type PatternSet struct {
	Directive []string
	Layer     []string
}

// Clone returns a copy that shares no slices with ps.
func (ps PatternSet) Clone() PatternSet {
	return PatternSet{
		Directive: slices.Clone(ps.Directive),
		Layer:     slices.Clone(ps.Layer),
	}
}

// Builtin returns the patterns used when no configuration file exists.
func Builtin() PatternSet {
	return PatternSet{
		Directive: []string{"to", "summary", "defect"},
		Layer:     []string{"project", "issue", "task"},
	}
}

//go:generate mockgen -destination=mocks/mock_store.go -package=mocks github.com/mattjoyce/breakdown/internal/params PatternStore

// PatternStore resolves the pattern set of a profile.
type PatternStore interface {
	Patterns(profile string) (PatternSet, error)
}

// BuiltinStore knows only the default profile.
type BuiltinStore struct{}

// Patterns returns Builtin for the default profile.
func (BuiltinStore) Patterns(profile string) (PatternSet, error) {
	profile = NormalizeProfile(profile)
	if profile != DefaultProfile {
		return PatternSet{}, &failure.ConfigurationNotFound{Profile: profile}
	}
	return Builtin(), nil
}

// ConfigStore serves the profiles of a loaded configuration.
type ConfigStore struct {
	profiles map[string]PatternSet
	source   string
}

// NewConfigStore snapshots the profiles of cfg.
func NewConfigStore(cfg *config.Config) *ConfigStore {
	s := &ConfigStore{profiles: make(map[string]PatternSet)}
	if cfg == nil {
		return s
	}
	s.source = cfg.SourcePath
	for name, p := range cfg.Profiles {
		s.profiles[name] = PatternSet{
			Directive: slices.Clone(p.Two.Directive.Patterns),
			Layer:     slices.Clone(p.Two.Layer.Patterns),
		}
	}
	return s
}

// Patterns returns the profile's patterns. A configuration without a
// default profile falls back to Builtin for it.
func (s *ConfigStore) Patterns(profile string) (PatternSet, error) {
	profile = NormalizeProfile(profile)
	ps, ok := s.profiles[profile]
	if !ok {
		if profile == DefaultProfile {
			return Builtin(), nil
		}
		return PatternSet{}, &failure.ConfigurationNotFound{Profile: profile, Path: s.source}
	}
	if len(ps.Directive) == 0 {
		return PatternSet{}, &failure.PatternNotDefined{Profile: profile, Parameter: "directive"}
	}
	if len(ps.Layer) == 0 {
		return PatternSet{}, &failure.PatternNotDefined{Profile: profile, Parameter: "layer"}
	}
	return ps.Clone(), nil
}

// Profiles lists the configured profile names.
func (s *ConfigStore) Profiles() []string {
	names := make([]string, 0, len(s.profiles))
	for name := range s.profiles {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

type cachedEntry struct {
	set PatternSet
	err error
}

// CachedStore memoizes lookups of an underlying store. Entries are never
// invalidated; replace the store to pick up new configuration.
type CachedStore struct {
	next    PatternStore
	mu      sync.RWMutex
	entries map[string]cachedEntry
}

// NewCachedStore wraps next.
func NewCachedStore(next PatternStore) *CachedStore {
	return &CachedStore{next: next, entries: make(map[string]cachedEntry)}
}

// Patterns returns the cached result for profile, loading it on first use.
func (c *CachedStore) Patterns(profile string) (PatternSet, error) {
	profile = NormalizeProfile(profile)

	c.mu.RLock()
	e, ok := c.entries[profile]
	c.mu.RUnlock()
	if ok {
		return e.set.Clone(), e.err
	}

	set, err := c.next.Patterns(profile)

	c.mu.Lock()
	c.entries[profile] = cachedEntry{set: set.Clone(), err: err}
	c.mu.Unlock()

	return set, err
}
