package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kpisystems/credvault/internal/crypto"
	filevault "github.com/kpisystems/credvault/internal/keyvault/file"
	"github.com/kpisystems/credvault/internal/repository/csvfile"
	"github.com/kpisystems/credvault/internal/service"
	"github.com/kpisystems/credvault/internal/testutil"
)

func newTestRouter(t *testing.T) *echo.Echo {
	t.Helper()
	dir := t.TempDir()

	table := csvfile.New(filepath.Join(dir, "users.csv"))
	require.NoError(t, table.Init(context.Background()))
	vault := filevault.New(filepath.Join(dir, "%s.key"))

	credentials := service.NewCredentials(table, vault, crypto.NewECBCodec(), testutil.MakeNoopLogger())
	return New(credentials, testutil.MakeNoopLogger()).Register()
}

func TestRouter_UserFlow(t *testing.T) {
	e := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/user/create", strings.NewReader(`{"username":"alice","email":"a@x.com","password":"secret"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	req = httptest.NewRequest(http.MethodGet, "/user/retrieve?username=alice", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"password":"secret"`)

	req = httptest.NewRequest(http.MethodDelete, "/user/delete?username=alice", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/user/retrieve?username=alice", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_UnknownRoute(t *testing.T) {
	e := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/user/unknown", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
