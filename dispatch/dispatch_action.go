package dispatch

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/labstack/echo/v4"
)

// DispatchAction routes a request to one of the target's exported
// methods, selected by the value of the mapping's Parameter request
// parameter. Method values may be written in camelCase, kebab-case or
// snake_case; "saveOrder", "save-order" and "save_order" all select
// SaveOrder. When the parameter is absent, the target's Unspecified
// method is used if it has one.
//
// Dispatch methods have the same signature as Action.Execute:
//
//	func (a *OrderAction) SaveOrder(c echo.Context, m *dispatch.Mapping) error
type DispatchAction struct {
	target any
}

// NewDispatchAction wraps the target for method dispatch.
func NewDispatchAction(target any) *DispatchAction {
	return &DispatchAction{target: target}
}

// Target returns the wrapped dispatch target.
func (d *DispatchAction) Target() any {
	return d.target
}

// SetServlet forwards lifecycle notifications to the target.
func (d *DispatchAction) SetServlet(s *Servlet) error {
	if aware, ok := d.target.(ServletAware); ok {
		return aware.SetServlet(s)
	}
	return nil
}

// Execute implements Action.
func (d *DispatchAction) Execute(c echo.Context, m *Mapping) error {
	if m.Parameter == "" {
		return fmt.Errorf("mapping %q declares no dispatch parameter", m.Path)
	}

	value := c.QueryParam(m.Parameter)
	if value == "" {
		value, _ = formValue(c, m.Parameter)
	}
	name := "Unspecified"
	if value != "" {
		name = ExportedMethodName(value)
	}
	return CallActionMethod(d.target, name, c, m)
}

func formValue(c echo.Context, name string) (string, bool) {
	v := c.FormValue(name)
	return v, v != ""
}

// ExportedMethodName converts a dispatch parameter value to the
// exported method name it selects.
func ExportedMethodName(value string) string {
	var b strings.Builder
	upper := true
	for _, r := range value {
		if r == '-' || r == '_' {
			upper = true
			continue
		}
		if upper {
			b.WriteString(strings.ToUpper(string(r)))
			upper = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CallActionMethod invokes the named exported method on target. The
// method must have the Action.Execute signature.
func CallActionMethod(target any, name string, c echo.Context, m *Mapping) error {
	method := reflect.ValueOf(target).MethodByName(name)
	if !method.IsValid() {
		return fmt.Errorf("no dispatch method %q on %T", name, target)
	}

	fn, ok := method.Interface().(func(echo.Context, *Mapping) error)
	if !ok {
		return fmt.Errorf("dispatch method %q on %T has wrong signature", name, target)
	}
	return fn(c, m)
}
