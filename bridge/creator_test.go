package bridge

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/girderweb/girder/container"
	"github.com/girderweb/girder/dispatch"
)

type stubAction struct {
	name  string
	calls int
}

func (a *stubAction) Execute(c echo.Context, m *dispatch.Mapping) error {
	a.calls++
	return c.String(http.StatusOK, a.name)
}

type countingFallback struct {
	calls  int
	action dispatch.Action
}

func (f *countingFallback) CreateAction(c echo.Context, m *dispatch.Mapping) (dispatch.Action, error) {
	f.calls++
	return f.action, nil
}

func loginMapping(t *testing.T, prefix string) *dispatch.Mapping {
	t.Helper()
	mod, err := dispatch.NewModuleConfig(prefix)
	require.NoError(t, err)
	m := &dispatch.Mapping{Path: "/login"}
	require.NoError(t, mod.AddMapping(m))
	return m
}

func TestDelegatingCreatorResolvesBean(t *testing.T) {
	reg := container.NewRegistry()
	bean := &stubAction{name: "bean"}
	require.NoError(t, reg.Register("/login", bean))

	fallback := &countingFallback{action: &stubAction{name: "fallback"}}
	creator, err := NewDelegatingCreator(reg, fallback)
	require.NoError(t, err)

	got, err := creator.CreateAction(nil, loginMapping(t, ""))
	require.NoError(t, err)
	assert.Same(t, bean, got)
	assert.Equal(t, 0, fallback.calls)
}

func TestDelegatingCreatorUsesModulePrefix(t *testing.T) {
	reg := container.NewRegistry()
	bean := &stubAction{name: "bean"}
	require.NoError(t, reg.Register("/mymodule/login", bean))

	creator, err := NewDelegatingCreator(reg, nil)
	require.NoError(t, err)

	got, err := creator.CreateAction(nil, loginMapping(t, "/mymodule"))
	require.NoError(t, err)
	assert.Same(t, bean, got)
}

func TestDelegatingCreatorFallsBackOnMiss(t *testing.T) {
	reg := container.NewRegistry()
	fallbackAction := &stubAction{name: "fallback"}
	fallback := &countingFallback{action: fallbackAction}

	creator, err := NewDelegatingCreator(reg, fallback)
	require.NoError(t, err)

	got, err := creator.CreateAction(nil, loginMapping(t, ""))
	require.NoError(t, err)
	assert.Same(t, fallbackAction, got)
	assert.Equal(t, 1, fallback.calls)
}

func TestDelegatingCreatorTypeMismatchIsError(t *testing.T) {
	reg := container.NewRegistry()
	require.NoError(t, reg.Register("/login", "not an action"))

	fallback := &countingFallback{action: &stubAction{}}
	creator, err := NewDelegatingCreator(reg, fallback)
	require.NoError(t, err)

	_, err = creator.CreateAction(nil, loginMapping(t, ""))
	require.Error(t, err)

	var typeErr *container.BeanTypeError
	assert.ErrorAs(t, err, &typeErr)
	// A mistyped bean must not fall through to the classic path
	assert.Equal(t, 0, fallback.calls)
}

func TestDelegatingCreatorNoFallback(t *testing.T) {
	creator, err := NewDelegatingCreator(container.NewRegistry(), nil)
	require.NoError(t, err)

	_, err = creator.CreateAction(nil, loginMapping(t, ""))
	assert.Error(t, err)
}

func TestDelegatingCreatorCustomNamer(t *testing.T) {
	reg := container.NewRegistry()
	bean := &stubAction{name: "bean"}
	require.NoError(t, reg.Register("custom:/login", bean))

	creator, err := NewDelegatingCreator(reg, nil, WithBeanNamer(BeanNamerFunc(func(m *dispatch.Mapping) string {
		return "custom:" + m.Path
	})))
	require.NoError(t, err)

	got, err := creator.CreateAction(nil, loginMapping(t, ""))
	require.NoError(t, err)
	assert.Same(t, bean, got)
}

func TestDelegatingCreatorFactoryRequiresRegistry(t *testing.T) {
	s, err := dispatch.NewServlet()
	require.NoError(t, err)
	mod, err := dispatch.NewModuleConfig("")
	require.NoError(t, err)

	factory := DelegatingCreatorFactory(nil)
	_, err = factory(s, mod)
	assert.ErrorIs(t, err, ErrNoRegistry)

	s.SetAttribute(RootRegistryAttribute, container.NewRegistry())
	creator, err := factory(s, mod)
	require.NoError(t, err)
	assert.NotNil(t, creator)
}
