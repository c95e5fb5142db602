// Package container provides the application-wide component registry
// that dispatch actions are resolved from, along with localized message
// resources. The registry is populated at startup and treated as
// read-only afterwards.
package container

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// MessageSourceBean is the well-known bean name the message source is
// registered under when a registry is built by a context loader.
const MessageSourceBean = "messageSource"

// ErrBeanNotFound is returned when a bean name is not registered.
var ErrBeanNotFound = errors.New("bean not found")

// ErrFrozen is returned when registering into a frozen registry.
var ErrFrozen = errors.New("registry is frozen")

// BeanTypeError is returned when a bean exists under the requested name
// but does not have the requested type.
type BeanTypeError struct {
	Name string
	Want reflect.Type
	Got  reflect.Type
}

func (e *BeanTypeError) Error() string {
	return fmt.Sprintf("bean %q has type %s, not %s", e.Name, e.Got, e.Want)
}

// Registry is a name-keyed component container. Components are
// registered during startup; Freeze marks the registry read-only so
// concurrent request-time reads never race a registration.
type Registry struct {
	mu     sync.RWMutex
	beans  map[string]any
	frozen bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		beans: make(map[string]any),
	}
}

// Register adds a bean under the given name. Registering the same name
// twice replaces the previous bean, matching startup-time override
// semantics. Registration after Freeze is an error.
func (r *Registry) Register(name string, bean any) error {
	if name == "" {
		return fmt.Errorf("bean name cannot be empty")
	}
	if bean == nil {
		return fmt.Errorf("bean %q cannot be nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return fmt.Errorf("cannot register bean %q: %w", name, ErrFrozen)
	}
	r.beans[name] = bean
	return nil
}

// Contains reports whether a bean is registered under the given name.
func (r *Registry) Contains(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.beans[name]
	return ok
}

// Bean returns the bean registered under the given name.
func (r *Registry) Bean(name string) (any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bean, ok := r.beans[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBeanNotFound, name)
	}
	return bean, nil
}

// Names returns the registered bean names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.beans))
	for name := range r.beans {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered beans.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.beans)
}

// Freeze marks the registry read-only. Idempotent.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Frozen reports whether the registry has been frozen.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// BeanOf returns the bean registered under name, checked against the
// requested type. A present bean of the wrong type is a BeanTypeError,
// not a miss; callers that treat absence as normal fallthrough should
// check Contains first.
func BeanOf[T any](r *Registry, name string) (T, error) {
	var zero T

	bean, err := r.Bean(name)
	if err != nil {
		return zero, err
	}

	typed, ok := bean.(T)
	if !ok {
		return zero, &BeanTypeError{
			Name: name,
			Want: reflect.TypeOf((*T)(nil)).Elem(),
			Got:  reflect.TypeOf(bean),
		}
	}
	return typed, nil
}
