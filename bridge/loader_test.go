package bridge

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/girderweb/girder/config"
	"github.com/girderweb/girder/container"
	"github.com/girderweb/girder/dispatch"
)

func TestContextLoaderPublishesRegistry(t *testing.T) {
	s, err := dispatch.NewServlet()
	require.NoError(t, err)

	bean := &stubAction{name: "login"}
	loader := NewContextLoader(
		WithBinder(func(reg *container.Registry) error {
			return reg.Register("/login", bean)
		}),
	)

	require.NoError(t, loader.Init(s))

	reg, err := RequireRegistry(s, nil)
	require.NoError(t, err)
	assert.True(t, reg.Frozen())
	assert.True(t, reg.Contains("/login"))
	assert.Same(t, reg, loader.Registry())
}

func TestContextLoaderInitOnce(t *testing.T) {
	s, err := dispatch.NewServlet()
	require.NoError(t, err)

	loader := NewContextLoader()
	require.NoError(t, loader.Init(s))
	first := loader.Registry()

	require.NoError(t, loader.Init(s))
	assert.Same(t, first, loader.Registry())
}

func TestContextLoaderModulePrefix(t *testing.T) {
	s, err := dispatch.NewServlet()
	require.NoError(t, err)

	loader := NewContextLoader(ForModule("/admin"))
	require.NoError(t, loader.Init(s))

	admin, err := dispatch.NewModuleConfig("/admin")
	require.NoError(t, err)
	reg, ok := FindRegistry(s, admin)
	require.True(t, ok)
	assert.Same(t, loader.Registry(), reg)

	// Not published as root
	_, ok = FindRegistry(s, nil)
	assert.False(t, ok)
}

func TestContextLoaderMessages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
default_locale: en
locales:
  en:
    login.welcome: Welcome
`), 0o644))

	s, err := dispatch.NewServlet()
	require.NoError(t, err)

	loader := NewContextLoader(WithMessages(path))
	require.NoError(t, loader.Init(s))

	source, err := container.BeanOf[*container.MessageSource](loader.Registry(), container.MessageSourceBean)
	require.NoError(t, err)
	msg, ok := source.Message("en", "login.welcome")
	require.True(t, ok)
	assert.Equal(t, "Welcome", msg)
}

func TestContextLoaderDestroyUnpublishes(t *testing.T) {
	s, err := dispatch.NewServlet()
	require.NoError(t, err)

	loader := NewContextLoader()
	require.NoError(t, loader.Init(s))
	require.NoError(t, loader.Destroy(s))

	_, ok := FindRegistry(s, nil)
	assert.False(t, ok)
	assert.Nil(t, loader.Registry())
}

func TestContextLoaderBinderFailureAbortsInit(t *testing.T) {
	s, err := dispatch.NewServlet()
	require.NoError(t, err)

	loader := NewContextLoader(WithBinder(func(*container.Registry) error {
		return assert.AnError
	}))
	assert.ErrorIs(t, loader.Init(s), assert.AnError)
}

func TestLoaderFromSpec(t *testing.T) {
	loader := LoaderFromSpec(config.ModuleSpec{Prefix: "/shop"})

	s, err := dispatch.NewServlet()
	require.NoError(t, err)
	require.NoError(t, loader.Init(s))

	_, ok := s.Attribute(RegistryAttribute("/shop"))
	assert.True(t, ok)
}

// End to end: a servlet whose actions come from the registry for
// mapped beans and from the classic path otherwise.
func TestDelegatingDispatchEndToEnd(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Modules = []config.ModuleSpec{
		{
			Mappings: []config.MappingSpec{
				{Path: "/login"},
				{Path: "/legacy", Type: "legacy"},
			},
		},
	}

	classic := dispatch.NewClassicCreator(nil)
	require.NoError(t, classic.RegisterType("legacy", &legacyAction{}))

	bean := &stubAction{name: "bean"}
	loader := NewContextLoader(
		WithBinder(func(reg *container.Registry) error {
			return reg.Register("/login", bean)
		}),
	)

	s, err := dispatch.NewServlet(
		dispatch.WithConfig(cfg),
		dispatch.WithPlugin(loader),
		dispatch.WithCreatorFactory(DelegatingCreatorFactory(classic)),
	)
	require.NoError(t, err)
	require.NoError(t, s.Init())

	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "bean", rec.Body.String())

	rec = httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/legacy", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "legacy", rec.Body.String())
}

type legacyAction struct{}

func (a *legacyAction) Execute(c echoContext, m *dispatch.Mapping) error {
	return c.String(http.StatusOK, "legacy")
}
