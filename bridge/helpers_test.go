package bridge

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/girderweb/girder/dispatch"
)

type echoContext = echo.Context

func queryContext(target string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func mappingWithParam(t *testing.T, path, param string) *dispatch.Mapping {
	t.Helper()
	mod, err := dispatch.NewModuleConfig("")
	require.NoError(t, err)
	m := &dispatch.Mapping{Path: path, Parameter: param}
	require.NoError(t, mod.AddMapping(m))
	return m
}
