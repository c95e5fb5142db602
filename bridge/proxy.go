package bridge

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/girderweb/girder/container"
	"github.com/girderweb/girder/dispatch"
)

// DelegatingAction is a proxy action that resolves its delegate bean on
// every execution. Register it (or a type of it) as a mapping's action
// type when the processor's creator cannot be replaced wholesale; the
// per-request resolution also picks up request-scoped delegates a
// custom registry may serve.
//
// Unlike DelegatingCreator there is no fallback: the bean must exist.
type DelegatingAction struct {
	// Namer overrides the default bean-name derivation when set.
	Namer BeanNamer

	registry *container.Registry
}

// SetServlet resolves the registry once at action creation time.
func (a *DelegatingAction) SetServlet(s *dispatch.Servlet) error {
	if s == nil {
		a.registry = nil
		return nil
	}
	registry, err := RequireRegistry(s, nil)
	if err != nil {
		return err
	}
	a.registry = registry
	return nil
}

// Execute implements dispatch.Action by delegating to the bean named
// by the mapping.
func (a *DelegatingAction) Execute(c echo.Context, m *dispatch.Mapping) error {
	if a.registry == nil {
		return fmt.Errorf("delegating action for %q has no registry; was SetServlet called?", m.Path)
	}

	namer := a.Namer
	if namer == nil {
		namer = DefaultBeanNamer
	}
	name := namer.ActionBeanName(m)

	delegate, err := container.BeanOf[dispatch.Action](a.registry, name)
	if err != nil {
		return fmt.Errorf("failed to resolve delegate action: %w", err)
	}
	return delegate.Execute(c, m)
}
