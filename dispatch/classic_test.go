package dispatch

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingAction struct {
	calls int
}

func (a *pingAction) Execute(c echo.Context, m *Mapping) error {
	a.calls++
	return c.String(http.StatusOK, "pong")
}

func TestClassicCreatorRegisterAndCreate(t *testing.T) {
	cc := NewClassicCreator(nil)
	require.NoError(t, cc.RegisterType("ping", &pingAction{}))

	m := &Mapping{Path: "/ping", Type: "ping"}
	a, err := cc.CreateAction(nil, m)
	require.NoError(t, err)
	require.IsType(t, &pingAction{}, a)

	// Each creation yields a fresh instance
	b, err := cc.CreateAction(nil, m)
	require.NoError(t, err)
	assert.NotSame(t, a, b)
}

func TestClassicCreatorRejectsBadRegistrations(t *testing.T) {
	cc := NewClassicCreator(nil)

	assert.Error(t, cc.RegisterType("", &pingAction{}))
	assert.Error(t, cc.RegisterType("fn", ActionFunc(func(echo.Context, *Mapping) error { return nil })))

	require.NoError(t, cc.RegisterType("ping", &pingAction{}))
	assert.Error(t, cc.RegisterType("ping", &pingAction{}))
}

func TestClassicCreatorUnknownType(t *testing.T) {
	cc := NewClassicCreator(nil)

	_, err := cc.CreateAction(nil, &Mapping{Path: "/x", Type: "nope"})
	assert.Error(t, err)

	_, err = cc.CreateAction(nil, &Mapping{Path: "/x"})
	assert.Error(t, err)
}
