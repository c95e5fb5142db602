// Package bridge connects the dispatch engine to a container.Registry:
// actions are looked up in the registry under a name derived from
// their mapping instead of being instantiated by the engine's classic
// reflection path. It also provides servlet-aware base types that give
// actions convenient access to the shared registry, message resources
// and lifecycle callbacks.
package bridge

import "github.com/girderweb/girder/dispatch"

// BeanNamer derives the registry bean name for an action mapping.
type BeanNamer interface {
	ActionBeanName(m *dispatch.Mapping) string
}

// BeanNamerFunc adapts a function to the BeanNamer interface.
type BeanNamerFunc func(m *dispatch.Mapping) string

// ActionBeanName implements BeanNamer.
func (f BeanNamerFunc) ActionBeanName(m *dispatch.Mapping) string {
	return f(m)
}

// ActionBeanName is the default derivation: the mapping path prefixed
// with the owning module's prefix.
//
//	path "/login", no module prefix      -> "/login"
//	path "/login", module prefix "/mymodule" -> "/mymodule/login"
func ActionBeanName(m *dispatch.Mapping) string {
	return m.ModulePrefix() + m.Path
}

// DefaultBeanNamer is the package-default BeanNamer.
var DefaultBeanNamer BeanNamer = BeanNamerFunc(ActionBeanName)
