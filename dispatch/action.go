// Package dispatch implements a path-mapped action dispatch engine on
// top of echo. Incoming requests are matched against per-module action
// mappings; the mapped action is obtained through a pluggable
// ActionCreator strategy and cached for the servlet's lifetime.
package dispatch

import "github.com/labstack/echo/v4"

// Action is a request handler selected by mapped path rather than by
// explicit routing code.
type Action interface {
	Execute(c echo.Context, m *Mapping) error
}

// ActionFunc adapts a plain function to the Action interface.
type ActionFunc func(c echo.Context, m *Mapping) error

// Execute implements Action.
func (f ActionFunc) Execute(c echo.Context, m *Mapping) error {
	return f(c, m)
}

// ServletAware is implemented by actions that want lifecycle
// notifications. SetServlet is called with the owning servlet when the
// action is first created for a mapping, and with nil when the servlet
// shuts down.
type ServletAware interface {
	SetServlet(s *Servlet) error
}
