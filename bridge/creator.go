package bridge

import (
	"fmt"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/girderweb/girder/container"
	"github.com/girderweb/girder/dispatch"
)

// DelegatingCreator is an ActionCreator that resolves actions out of a
// component registry by derived bean name. When no bean is registered
// under the name, creation falls through to the wrapped creator — the
// engine's classic instantiation path. A bean present under the name
// but of the wrong type is an error, not a fallthrough.
type DelegatingCreator struct {
	registry *container.Registry
	fallback dispatch.ActionCreator
	namer    BeanNamer
	logger   *zap.Logger
}

// CreatorOption configures a DelegatingCreator.
type CreatorOption func(*DelegatingCreator)

// WithBeanNamer overrides the default bean-name derivation.
func WithBeanNamer(namer BeanNamer) CreatorOption {
	return func(d *DelegatingCreator) {
		if namer != nil {
			d.namer = namer
		}
	}
}

// WithCreatorLogger sets the creator's logger.
func WithCreatorLogger(logger *zap.Logger) CreatorOption {
	return func(d *DelegatingCreator) {
		d.logger = logger
	}
}

// NewDelegatingCreator creates a delegating creator over the given
// registry. The fallback may be nil, in which case an unresolved
// mapping is an error.
func NewDelegatingCreator(registry *container.Registry, fallback dispatch.ActionCreator, opts ...CreatorOption) (*DelegatingCreator, error) {
	if registry == nil {
		return nil, fmt.Errorf("registry cannot be nil")
	}
	d := &DelegatingCreator{
		registry: registry,
		fallback: fallback,
		namer:    DefaultBeanNamer,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// CreateAction implements dispatch.ActionCreator.
func (d *DelegatingCreator) CreateAction(c echo.Context, m *dispatch.Mapping) (dispatch.Action, error) {
	name := d.namer.ActionBeanName(m)

	if !d.registry.Contains(name) {
		if d.fallback == nil {
			return nil, fmt.Errorf("no action bean %q and no fallback creator", name)
		}
		if d.logger != nil {
			d.logger.Debug("No action bean, using fallback",
				zap.String("bean", name),
				zap.String("path", m.Path))
		}
		return d.fallback.CreateAction(c, m)
	}

	action, err := container.BeanOf[dispatch.Action](d.registry, name)
	if err != nil {
		return nil, err
	}
	if d.logger != nil {
		d.logger.Debug("Resolved action bean", zap.String("bean", name))
	}
	return action, nil
}

// DelegatingCreatorFactory returns a CreatorFactory wiring every module
// to its published registry, with the classic creator as fallback.
// Servlet startup fails when a module has no registry to delegate to.
func DelegatingCreatorFactory(classic *dispatch.ClassicCreator, opts ...CreatorOption) dispatch.CreatorFactory {
	return func(s *dispatch.Servlet, mod *dispatch.ModuleConfig) (dispatch.ActionCreator, error) {
		registry, err := RequireRegistry(s, mod)
		if err != nil {
			return nil, err
		}
		fallback := dispatch.ActionCreator(classic)
		if classic == nil {
			fallback = dispatch.NewClassicCreator(s.Logger())
		}
		creatorOpts := append([]CreatorOption{WithCreatorLogger(s.Logger())}, opts...)
		return NewDelegatingCreator(registry, fallback, creatorOpts...)
	}
}
