package bridge

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/girderweb/girder/config"
	"github.com/girderweb/girder/container"
	"github.com/girderweb/girder/dispatch"
)

// BinderFunc registers beans into a registry while it is being built.
type BinderFunc func(reg *container.Registry) error

// ContextLoader is a servlet plugin that builds a component registry at
// startup and publishes it under the servlet attribute for its module
// prefix (the root attribute for an empty prefix). The registry is
// built exactly once, frozen before publication, and unpublished on
// Destroy.
type ContextLoader struct {
	prefix       string
	messageFiles []string
	binders      []BinderFunc
	logger       *zap.Logger

	mu       sync.Mutex
	registry *container.Registry
}

// LoaderOption configures a ContextLoader.
type LoaderOption func(*ContextLoader)

// ForModule publishes the registry under the given module prefix
// instead of the root attribute.
func ForModule(prefix string) LoaderOption {
	return func(l *ContextLoader) {
		l.prefix = prefix
	}
}

// WithMessages adds message resource files; the loaded source is
// registered under container.MessageSourceBean.
func WithMessages(paths ...string) LoaderOption {
	return func(l *ContextLoader) {
		l.messageFiles = append(l.messageFiles, paths...)
	}
}

// WithBinder adds a bean binder.
func WithBinder(binders ...BinderFunc) LoaderOption {
	return func(l *ContextLoader) {
		l.binders = append(l.binders, binders...)
	}
}

// WithLoaderLogger sets the loader's logger.
func WithLoaderLogger(logger *zap.Logger) LoaderOption {
	return func(l *ContextLoader) {
		l.logger = logger
	}
}

// NewContextLoader creates a context loader.
func NewContextLoader(opts ...LoaderOption) *ContextLoader {
	l := &ContextLoader{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoaderFromSpec creates a loader for a configured module: its prefix
// and message resource files come from the module configuration, beans
// from the binders.
func LoaderFromSpec(spec config.ModuleSpec, binders ...BinderFunc) *ContextLoader {
	return NewContextLoader(
		ForModule(spec.Prefix),
		WithMessages(spec.Messages...),
		WithBinder(binders...),
	)
}

// Registry returns the built registry, or nil before Init.
func (l *ContextLoader) Registry() *container.Registry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.registry
}

// Init implements dispatch.Plugin. Idempotent: a second Init within
// the same lifecycle keeps the first registry.
func (l *ContextLoader) Init(s *dispatch.Servlet) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.registry != nil {
		return nil
	}
	if l.logger == nil {
		l.logger = s.Logger()
	}

	reg := container.NewRegistry()
	for _, bind := range l.binders {
		if err := bind(reg); err != nil {
			return fmt.Errorf("bean binding failed for module %q: %w", l.prefix, err)
		}
	}

	if len(l.messageFiles) > 0 {
		source, err := container.LoadMessages(l.messageFiles...)
		if err != nil {
			return fmt.Errorf("failed to load message resources for module %q: %w", l.prefix, err)
		}
		if err := reg.Register(container.MessageSourceBean, source); err != nil {
			return err
		}
	}

	reg.Freeze()
	s.SetAttribute(RegistryAttribute(l.prefix), reg)
	l.registry = reg

	if l.logger != nil {
		l.logger.Info("Published component registry",
			zap.String("prefix", l.prefix),
			zap.Int("beans", reg.Len()))
	}
	return nil
}

// Destroy implements dispatch.Plugin by unpublishing the registry.
func (l *ContextLoader) Destroy(s *dispatch.Servlet) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.registry == nil {
		return nil
	}
	s.RemoveAttribute(RegistryAttribute(l.prefix))
	l.registry = nil
	return nil
}
