package bridge

import (
	"errors"
	"fmt"

	"github.com/girderweb/girder/container"
	"github.com/girderweb/girder/dispatch"
)

const (
	// RootRegistryAttribute is the servlet attribute the root registry
	// is published under.
	RootRegistryAttribute = "girder.bridge.registry"

	// registryAttributePrefix prefixes per-module registry attributes.
	registryAttributePrefix = RootRegistryAttribute + "."
)

// ErrNoRegistry is returned when neither a module-specific nor a root
// registry has been published on the servlet. This is a fatal
// configuration error: the servlet was assembled without a context
// loader.
var ErrNoRegistry = errors.New("no component registry published on servlet")

// RegistryAttribute returns the servlet attribute name for a module
// prefix. The empty prefix names the root registry attribute.
func RegistryAttribute(prefix string) string {
	if prefix == "" {
		return RootRegistryAttribute
	}
	return registryAttributePrefix + prefix
}

// FindRegistry looks up the registry for the given module, falling
// back to the root registry. Passing a nil module searches the root
// attribute only. Pure read of set-once attributes, so repeated calls
// return the same registry for the life of the servlet.
func FindRegistry(s *dispatch.Servlet, mod *dispatch.ModuleConfig) (*container.Registry, bool) {
	if mod != nil && mod.Prefix() != "" {
		if reg, ok := registryAttr(s, RegistryAttribute(mod.Prefix())); ok {
			return reg, true
		}
	}
	return registryAttr(s, RootRegistryAttribute)
}

// RequireRegistry is FindRegistry with find-or-fail semantics.
func RequireRegistry(s *dispatch.Servlet, mod *dispatch.ModuleConfig) (*container.Registry, error) {
	reg, ok := FindRegistry(s, mod)
	if !ok {
		prefix := ""
		if mod != nil {
			prefix = mod.Prefix()
		}
		return nil, fmt.Errorf("%w (module prefix %q)", ErrNoRegistry, prefix)
	}
	return reg, nil
}

func registryAttr(s *dispatch.Servlet, name string) (*container.Registry, bool) {
	v, ok := s.Attribute(name)
	if !ok {
		return nil, false
	}
	reg, ok := v.(*container.Registry)
	return reg, ok
}
