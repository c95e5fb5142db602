package dispatch

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/girderweb/girder/config"
)

// Mapping is an immutable descriptor associating a module-relative
// request path with an action. Type names the registered action type
// used by the classic instantiation path; Parameter, when set, names
// the request parameter dispatch actions select their method by.
type Mapping struct {
	Path      string
	Type      string
	Parameter string

	module *ModuleConfig
}

// Module returns the module this mapping belongs to, or nil when the
// mapping has not been added to a module yet.
func (m *Mapping) Module() *ModuleConfig {
	return m.module
}

// ModulePrefix returns the owning module's path prefix, or "" for an
// unattached mapping or the default module.
func (m *Mapping) ModulePrefix() string {
	if m.module == nil {
		return ""
	}
	return m.module.Prefix()
}

// ModuleConfig groups the action mappings served under one path
// prefix. A module is mutable while the servlet is being assembled and
// frozen when it starts.
type ModuleConfig struct {
	mu       sync.RWMutex
	prefix   string
	locale   string
	messages []string
	mappings map[string]*Mapping
	frozen   bool
}

// NewModuleConfig creates a module for the given prefix. The prefix
// must be empty (the default module) or start with "/" and not end
// with one.
func NewModuleConfig(prefix string) (*ModuleConfig, error) {
	if prefix != "" {
		if !strings.HasPrefix(prefix, "/") {
			return nil, fmt.Errorf("module prefix %q must start with /", prefix)
		}
		if strings.HasSuffix(prefix, "/") {
			return nil, fmt.Errorf("module prefix %q must not end with /", prefix)
		}
	}
	return &ModuleConfig{
		prefix:   prefix,
		mappings: make(map[string]*Mapping),
	}, nil
}

// ModuleFromSpec builds a module from its declarative configuration.
func ModuleFromSpec(spec config.ModuleSpec) (*ModuleConfig, error) {
	mod, err := NewModuleConfig(spec.Prefix)
	if err != nil {
		return nil, err
	}
	mod.locale = spec.Locale
	mod.messages = append(mod.messages, spec.Messages...)
	for _, ms := range spec.Mappings {
		m := &Mapping{Path: ms.Path, Type: ms.Type, Parameter: ms.Parameter}
		if err := mod.AddMapping(m); err != nil {
			return nil, err
		}
	}
	return mod, nil
}

// Prefix returns the module's path prefix.
func (mc *ModuleConfig) Prefix() string {
	return mc.prefix
}

// Locale returns the module's configured locale, if any.
func (mc *ModuleConfig) Locale() string {
	return mc.locale
}

// MessageFiles returns the module's configured message resource files.
func (mc *ModuleConfig) MessageFiles() []string {
	return mc.messages
}

// AddMapping registers a mapping under its path. Paths must start with
// "/" and be unique within the module; adding to a frozen module is an
// error.
func (mc *ModuleConfig) AddMapping(m *Mapping) error {
	if m == nil {
		return fmt.Errorf("mapping cannot be nil")
	}
	if !strings.HasPrefix(m.Path, "/") {
		return fmt.Errorf("mapping path %q must start with /", m.Path)
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	if mc.frozen {
		return fmt.Errorf("module %q is frozen", mc.prefix)
	}
	if _, ok := mc.mappings[m.Path]; ok {
		return fmt.Errorf("duplicate mapping path %q in module %q", m.Path, mc.prefix)
	}
	m.module = mc
	mc.mappings[m.Path] = m
	return nil
}

// FindMapping returns the mapping for the given module-relative path,
// or nil when the path is not mapped.
func (mc *ModuleConfig) FindMapping(path string) *Mapping {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.mappings[path]
}

// Mappings returns all mappings sorted by path.
func (mc *ModuleConfig) Mappings() []*Mapping {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	out := make([]*Mapping, 0, len(mc.mappings))
	for _, m := range mc.mappings {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func (mc *ModuleConfig) freeze() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.frozen = true
}
