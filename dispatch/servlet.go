package dispatch

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/girderweb/girder/config"
)

// Plugin is a startup extension point. Plugins are initialized before
// the module processors, so a plugin can publish servlet attributes
// (such as a component registry) the processors depend on.
type Plugin interface {
	Init(s *Servlet) error
	Destroy(s *Servlet) error
}

// Servlet is the dispatch engine. It wraps an echo instance, owns one
// RequestProcessor per module, and carries a set of named attributes
// shared with plugins and actions for the lifetime of the server.
type Servlet struct {
	e              *echo.Echo
	cfg            *config.Config
	logger         *zap.Logger
	creatorFactory CreatorFactory
	plugins        []Plugin
	modules        []*ModuleConfig
	processors     map[string]*RequestProcessor
	tempDir        string

	attrsMu sync.RWMutex
	attrs   map[string]any

	initOnce sync.Once
	initErr  error

	mu sync.Mutex
}

// Option defines a functional option for Servlet
type Option func(*Servlet) error

// NewServlet creates a servlet with the given options. Modules and
// plugins can be added until Init runs.
func NewServlet(opts ...Option) (*Servlet, error) {
	s := &Servlet{
		e:          echo.New(),
		processors: make(map[string]*RequestProcessor),
		attrs:      make(map[string]any),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	s.setupEcho()
	return s, nil
}

// WithConfig sets the servlet configuration. Modules declared in the
// configuration are materialized during Init.
func WithConfig(cfg *config.Config) Option {
	return func(s *Servlet) error {
		if cfg == nil {
			return fmt.Errorf("config cannot be nil")
		}
		s.cfg = cfg
		return nil
	}
}

// WithLogger sets the servlet logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Servlet) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		s.logger = logger
		return nil
	}
}

// WithCreatorFactory sets the per-module ActionCreator factory.
func WithCreatorFactory(f CreatorFactory) Option {
	return func(s *Servlet) error {
		if f == nil {
			return fmt.Errorf("creator factory cannot be nil")
		}
		s.creatorFactory = f
		return nil
	}
}

// WithCreator applies a single ActionCreator to every module.
func WithCreator(creator ActionCreator) Option {
	return func(s *Servlet) error {
		if creator == nil {
			return fmt.Errorf("creator cannot be nil")
		}
		s.creatorFactory = func(*Servlet, *ModuleConfig) (ActionCreator, error) {
			return creator, nil
		}
		return nil
	}
}

// WithModule adds a module to the servlet.
func WithModule(mod *ModuleConfig) Option {
	return func(s *Servlet) error {
		return s.AddModule(mod)
	}
}

// WithPlugin registers a startup plugin.
func WithPlugin(p Plugin) Option {
	return func(s *Servlet) error {
		s.AddPlugin(p)
		return nil
	}
}

// setupEcho configures the echo instance with middleware and settings
func (s *Servlet) setupEcho() {
	s.e.HideBanner = true
	s.e.HidePort = true

	if s.cfg == nil || s.cfg.Server.Recovery {
		s.e.Use(middleware.Recover())
	}
	if s.cfg != nil && s.cfg.Server.GZip {
		s.e.Use(middleware.Gzip())
	}
	if s.cfg != nil && s.cfg.Server.CORS {
		s.e.Use(middleware.CORS())
	}
	s.e.Use(RequestID())
	if s.cfg != nil && s.cfg.Server.RateLimit.Rate > 0 {
		s.e.Use(RateLimit(s.cfg.Server.RateLimit.Rate, s.cfg.Server.RateLimit.Burst))
	}
}

// AddModule adds a module before initialization. Module prefixes must
// be unique.
func (s *Servlet) AddModule(mod *ModuleConfig) error {
	if mod == nil {
		return fmt.Errorf("module cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.modules {
		if existing.Prefix() == mod.Prefix() {
			return fmt.Errorf("duplicate module prefix %q", mod.Prefix())
		}
	}
	s.modules = append(s.modules, mod)
	return nil
}

// AddPlugin registers a startup plugin before initialization.
func (s *Servlet) AddPlugin(p Plugin) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plugins = append(s.plugins, p)
}

// SetAttribute stores a named attribute on the servlet.
func (s *Servlet) SetAttribute(name string, value any) {
	s.attrsMu.Lock()
	defer s.attrsMu.Unlock()
	s.attrs[name] = value
}

// Attribute returns the named attribute.
func (s *Servlet) Attribute(name string) (any, bool) {
	s.attrsMu.RLock()
	defer s.attrsMu.RUnlock()
	v, ok := s.attrs[name]
	return v, ok
}

// RemoveAttribute deletes the named attribute.
func (s *Servlet) RemoveAttribute(name string) {
	s.attrsMu.Lock()
	defer s.attrsMu.Unlock()
	delete(s.attrs, name)
}

// Echo returns the underlying echo instance.
func (s *Servlet) Echo() *echo.Echo {
	return s.e
}

// Logger returns the servlet logger, which may be nil.
func (s *Servlet) Logger() *zap.Logger {
	return s.logger
}

// Config returns the servlet configuration, which may be nil.
func (s *Servlet) Config() *config.Config {
	return s.cfg
}

// TempDir returns the servlet's temporary directory. Empty until Init
// has run; the directory is removed on Shutdown.
func (s *Servlet) TempDir() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tempDir
}

// Modules returns the servlet's modules.
func (s *Servlet) Modules() []*ModuleConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*ModuleConfig, len(s.modules))
	copy(out, s.modules)
	return out
}

// Processor returns the request processor for the given module prefix.
// Only valid after Init.
func (s *Servlet) Processor(prefix string) (*RequestProcessor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.processors[prefix]
	return p, ok
}

// Init performs the one-time servlet startup: configured modules are
// materialized, plugins run, and one processor per module is created
// and routed. Init is idempotent; repeated calls return the first
// result.
func (s *Servlet) Init() error {
	s.initOnce.Do(func() {
		s.initErr = s.init()
	})
	return s.initErr
}

func (s *Servlet) init() error {
	tempDir, err := os.MkdirTemp("", "girder-")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	s.mu.Lock()
	s.tempDir = tempDir
	s.mu.Unlock()

	if s.cfg != nil {
		for _, spec := range s.cfg.Modules {
			mod, err := ModuleFromSpec(spec)
			if err != nil {
				return fmt.Errorf("invalid module %q: %w", spec.Prefix, err)
			}
			if err := s.AddModule(mod); err != nil {
				return err
			}
		}
	}

	for _, p := range s.plugins {
		if err := p.Init(s); err != nil {
			return fmt.Errorf("plugin initialization failed: %w", err)
		}
	}

	factory := s.creatorFactory
	if factory == nil {
		factory = func(sv *Servlet, mod *ModuleConfig) (ActionCreator, error) {
			return NewClassicCreator(sv.logger), nil
		}
	}

	s.mu.Lock()
	modules := make([]*ModuleConfig, len(s.modules))
	copy(modules, s.modules)
	s.mu.Unlock()

	for _, mod := range modules {
		creator, err := factory(s, mod)
		if err != nil {
			return fmt.Errorf("failed to create action creator for module %q: %w", mod.Prefix(), err)
		}
		proc := newRequestProcessor(s, mod, creator)
		mod.freeze()

		s.mu.Lock()
		s.processors[mod.Prefix()] = proc
		s.mu.Unlock()

		s.route(mod, proc)

		if s.logger != nil {
			s.logger.Info("Initialized module",
				zap.String("prefix", mod.Prefix()),
				zap.Int("mappings", len(mod.Mappings())))
		}
	}
	return nil
}

func (s *Servlet) route(mod *ModuleConfig, proc *RequestProcessor) {
	prefix := mod.Prefix()
	if prefix == "" {
		s.e.Any("/", proc.Process)
		s.e.Any("/*", proc.Process)
		return
	}
	s.e.Any(prefix, proc.Process)
	s.e.Any(prefix+"/*", proc.Process)
}

// Run initializes the servlet and starts serving on the configured
// address. Blocks until the server stops.
func (s *Servlet) Run() error {
	if err := s.Init(); err != nil {
		return err
	}

	address := ":8080"
	if s.cfg != nil && s.cfg.Server.Address != "" {
		address = s.cfg.Server.Address
	}

	if s.logger != nil {
		s.logger.Info("Starting server", zap.String("address", address))
	}
	return s.e.Start(address)
}

// Shutdown gracefully stops the server: cached actions are released,
// plugins are destroyed in reverse order, and the temp directory is
// removed.
func (s *Servlet) Shutdown(ctx context.Context) error {
	if s.logger != nil {
		s.logger.Info("Starting graceful shutdown")
	}

	s.mu.Lock()
	processors := make([]*RequestProcessor, 0, len(s.processors))
	for _, p := range s.processors {
		processors = append(processors, p)
	}
	plugins := make([]Plugin, len(s.plugins))
	copy(plugins, s.plugins)
	tempDir := s.tempDir
	s.tempDir = ""
	s.mu.Unlock()

	for _, p := range processors {
		p.destroy()
	}

	var shutdownErr error
	for i := len(plugins) - 1; i >= 0; i-- {
		if err := plugins[i].Destroy(s); err != nil {
			if s.logger != nil {
				s.logger.Error("Plugin destroy failed", zap.Error(err))
			}
			if shutdownErr == nil {
				shutdownErr = err
			}
		}
	}

	if tempDir != "" {
		if err := os.RemoveAll(tempDir); err != nil && s.logger != nil {
			s.logger.Warn("Failed to remove temp directory",
				zap.String("dir", tempDir), zap.Error(err))
		}
	}

	if err := s.e.Shutdown(ctx); err != nil {
		if s.logger != nil {
			s.logger.Error("Error shutting down HTTP server", zap.Error(err))
		}
		return err
	}

	if s.logger != nil {
		s.logger.Info("Graceful shutdown completed")
	}
	return shutdownErr
}
