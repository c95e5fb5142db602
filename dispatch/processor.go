package dispatch

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ActionCreator obtains the action instance for a mapping. The default
// is the classic reflection-based ClassicCreator; integrations swap in
// their own strategy to source actions elsewhere.
type ActionCreator interface {
	CreateAction(c echo.Context, m *Mapping) (Action, error)
}

// CreatorFactory builds the ActionCreator for one module when the
// servlet initializes. Returning an error aborts servlet startup.
type CreatorFactory func(s *Servlet, mod *ModuleConfig) (ActionCreator, error)

// RequestProcessor serves all requests under one module prefix. It
// resolves the mapping for the request path, obtains the action through
// the module's ActionCreator, and caches one instance per mapping path
// so the creator runs at most once per mapping.
type RequestProcessor struct {
	servlet *Servlet
	module  *ModuleConfig
	creator ActionCreator
	logger  *zap.Logger

	mu      sync.Mutex
	actions map[string]Action
}

func newRequestProcessor(s *Servlet, mod *ModuleConfig, creator ActionCreator) *RequestProcessor {
	return &RequestProcessor{
		servlet: s,
		module:  mod,
		creator: creator,
		logger:  s.logger,
		actions: make(map[string]Action),
	}
}

// Module returns the module this processor serves.
func (p *RequestProcessor) Module() *ModuleConfig {
	return p.module
}

// Servlet returns the owning servlet.
func (p *RequestProcessor) Servlet() *Servlet {
	return p.servlet
}

// Process handles one request: mapping lookup, action resolution,
// execution.
func (p *RequestProcessor) Process(c echo.Context) error {
	path := p.relativePath(c.Request().URL.Path)
	mapping := p.module.FindMapping(path)
	if mapping == nil {
		return echo.NewHTTPError(http.StatusNotFound,
			fmt.Sprintf("no action mapping for path %q", path))
	}

	action, err := p.actionFor(c, mapping)
	if err != nil {
		if p.logger != nil {
			p.logger.Error("Failed to resolve action",
				zap.String("module", p.module.Prefix()),
				zap.String("path", mapping.Path),
				zap.Error(err))
		}
		return fmt.Errorf("failed to resolve action for %q: %w", mapping.Path, err)
	}
	return action.Execute(c, mapping)
}

// relativePath strips the module prefix from the request path.
func (p *RequestProcessor) relativePath(full string) string {
	prefix := p.module.Prefix()
	if prefix == "" {
		return full
	}
	rel := strings.TrimPrefix(full, prefix)
	if rel == "" {
		rel = "/"
	}
	return rel
}

func (p *RequestProcessor) actionFor(c echo.Context, m *Mapping) (Action, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if action, ok := p.actions[m.Path]; ok {
		return action, nil
	}

	action, err := p.creator.CreateAction(c, m)
	if err != nil {
		return nil, err
	}
	if aware, ok := action.(ServletAware); ok {
		if err := aware.SetServlet(p.servlet); err != nil {
			return nil, fmt.Errorf("action for %q failed to initialize: %w", m.Path, err)
		}
	}
	p.actions[m.Path] = action

	if p.logger != nil {
		p.logger.Debug("Created action",
			zap.String("module", p.module.Prefix()),
			zap.String("path", m.Path))
	}
	return action, nil
}

// destroy releases cached servlet-aware actions on shutdown.
func (p *RequestProcessor) destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for path, action := range p.actions {
		if aware, ok := action.(ServletAware); ok {
			if err := aware.SetServlet(nil); err != nil && p.logger != nil {
				p.logger.Warn("Action destroy callback failed",
					zap.String("path", path),
					zap.Error(err))
			}
		}
	}
	p.actions = make(map[string]Action)
}
