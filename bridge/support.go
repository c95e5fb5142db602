package bridge

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/girderweb/girder/container"
	"github.com/girderweb/girder/dispatch"
)

// Support is an embeddable base for servlet-aware actions. When the
// processor creates the action, SetServlet resolves the shared
// registry, builds a message accessor if the registry carries a
// message source, and invokes the OnInit callback. On servlet
// shutdown, SetServlet(nil) invokes OnDestroy and clears the
// references.
//
// The accessors are valid between OnInit and OnDestroy; the resolved
// registry is the same for every call within one servlet lifecycle.
type Support struct {
	// OnInit, when set, runs after the registry has been resolved.
	OnInit func() error

	// OnDestroy, when set, runs when the servlet shuts down.
	OnDestroy func()

	servlet  *dispatch.Servlet
	registry *container.Registry
	messages *container.MessageAccessor
}

// SetServlet implements dispatch.ServletAware.
func (s *Support) SetServlet(sv *dispatch.Servlet) error {
	if sv == nil {
		if s.OnDestroy != nil {
			s.OnDestroy()
		}
		s.servlet = nil
		s.registry = nil
		s.messages = nil
		return nil
	}

	registry, err := RequireRegistry(sv, nil)
	if err != nil {
		return err
	}
	s.servlet = sv
	s.registry = registry

	if registry.Contains(container.MessageSourceBean) {
		source, err := container.BeanOf[*container.MessageSource](registry, container.MessageSourceBean)
		if err != nil {
			return fmt.Errorf("invalid message source bean: %w", err)
		}
		s.messages = container.NewMessageAccessor(source, "")
	}

	if s.OnInit != nil {
		return s.OnInit()
	}
	return nil
}

// Servlet returns the owning servlet, or nil outside the lifecycle.
func (s *Support) Servlet() *dispatch.Servlet {
	return s.servlet
}

// Registry returns the resolved component registry.
func (s *Support) Registry() *container.Registry {
	return s.registry
}

// Messages returns the message accessor, or nil when the registry has
// no message source bean.
func (s *Support) Messages() *container.MessageAccessor {
	return s.messages
}

// TempDir returns the servlet's temporary directory.
func (s *Support) TempDir() string {
	if s.servlet == nil {
		return ""
	}
	return s.servlet.TempDir()
}

// DispatchSupport combines Support with parameter-based method
// dispatch: embed it and give the outer type dispatch methods, then
// initialize with BindTarget.
type DispatchSupport struct {
	Support

	dispatcher *dispatch.DispatchAction
}

// BindTarget sets the struct whose methods requests dispatch to,
// normally the outer type embedding DispatchSupport.
func (d *DispatchSupport) BindTarget(target any) {
	d.dispatcher = dispatch.NewDispatchAction(target)
}

// Execute implements dispatch.Action.
func (d *DispatchSupport) Execute(c echo.Context, m *dispatch.Mapping) error {
	if d.dispatcher == nil {
		return fmt.Errorf("dispatch support for %q has no target; call BindTarget", m.Path)
	}
	return d.dispatcher.Execute(c, m)
}

// LookupDispatchSupport dispatches by reverse message lookup: the
// request parameter carries a localized label (typically a submit
// button's text), which is mapped back to its message key through the
// registry's message source, and the key is mapped to a method name
// through KeyMethods.
type LookupDispatchSupport struct {
	Support

	// KeyMethods maps message keys to exported method names on the
	// bound target.
	KeyMethods map[string]string

	target any
}

// BindTarget sets the struct whose methods requests dispatch to.
func (l *LookupDispatchSupport) BindTarget(target any) {
	l.target = target
}

// Execute implements dispatch.Action.
func (l *LookupDispatchSupport) Execute(c echo.Context, m *dispatch.Mapping) error {
	if l.target == nil {
		return fmt.Errorf("lookup dispatch for %q has no target; call BindTarget", m.Path)
	}
	if m.Parameter == "" {
		return fmt.Errorf("mapping %q declares no dispatch parameter", m.Path)
	}
	messages := l.Messages()
	if messages == nil {
		return fmt.Errorf("lookup dispatch for %q requires a message source bean", m.Path)
	}

	label := c.QueryParam(m.Parameter)
	if label == "" {
		label = c.FormValue(m.Parameter)
	}
	if label == "" {
		return fmt.Errorf("request has no %q parameter", m.Parameter)
	}

	key, ok := messages.Source().LookupKey(messages.Locale(), label)
	if !ok {
		return fmt.Errorf("no message key for label %q", label)
	}
	method, ok := l.KeyMethods[key]
	if !ok {
		return fmt.Errorf("no method mapped for message key %q", key)
	}
	return dispatch.CallActionMethod(l.target, method, c, m)
}
