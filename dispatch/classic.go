package dispatch

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ClassicCreator is the legacy instantiation path: action types are
// registered by name, and each mapping that names one gets a fresh
// instance built through reflection.
type ClassicCreator struct {
	mu     sync.RWMutex
	types  map[string]reflect.Type
	logger *zap.Logger
}

// NewClassicCreator creates an empty type table. The logger may be nil.
func NewClassicCreator(logger *zap.Logger) *ClassicCreator {
	return &ClassicCreator{
		types:  make(map[string]reflect.Type),
		logger: logger,
	}
}

// RegisterType registers an action type under the given name. The
// prototype must be a pointer to a struct implementing Action; only its
// type is retained.
func (cc *ClassicCreator) RegisterType(name string, prototype Action) error {
	if name == "" {
		return fmt.Errorf("action type name cannot be empty")
	}
	t := reflect.TypeOf(prototype)
	if t == nil || t.Kind() != reflect.Ptr || t.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("action type %q must be a pointer to struct", name)
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()

	if _, ok := cc.types[name]; ok {
		return fmt.Errorf("action type %q already registered", name)
	}
	cc.types[name] = t.Elem()

	if cc.logger != nil {
		cc.logger.Debug("Registered action type",
			zap.String("name", name),
			zap.String("type", t.String()))
	}
	return nil
}

// CreateAction implements ActionCreator by instantiating the mapping's
// registered type.
func (cc *ClassicCreator) CreateAction(c echo.Context, m *Mapping) (Action, error) {
	if m.Type == "" {
		return nil, fmt.Errorf("mapping %q declares no action type", m.Path)
	}

	cc.mu.RLock()
	t, ok := cc.types[m.Type]
	cc.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown action type %q for mapping %q", m.Type, m.Path)
	}

	action, ok := reflect.New(t).Interface().(Action)
	if !ok {
		return nil, fmt.Errorf("action type %q does not implement Action", m.Type)
	}
	return action, nil
}
