package handler

import (
	"context"
	"encoding/json"
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
	"github.com/kpisystems/credvault/internal/model"
	"github.com/kpisystems/credvault/internal/repository/csvfile"
	"github.com/kpisystems/credvault/internal/service"
	"github.com/kpisystems/credvault/internal/testutil"
)

func newTestHandler(t *testing.T) *Users {
	t.Helper()
	dir := t.TempDir()

	table := csvfile.New(filepath.Join(dir, "users.csv"))
	require.NoError(t, table.Init(context.Background()))
	vault := filevault.New(filepath.Join(dir, "%s.key"))

	credentials := service.NewCredentials(table, vault, crypto.NewECBCodec(), testutil.MakeNoopLogger())
	return NewUsers(credentials, testutil.MakeNoopLogger())
}

func createRequest(t *testing.T, h *Users, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/user/create", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Create(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func queryRequest(t *testing.T, h *Users, method, target string, handler echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestUsers_Create(t *testing.T) {
	h := newTestHandler(t)

	t.Run("creates user", func(t *testing.T) {
		rec := createRequest(t, h, `{"username":"alice","email":"a@x.com","password":"secret"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("taken username answers 400", func(t *testing.T) {
		rec := createRequest(t, h, `{"username":"alice","email":"other@x.com","password":"different"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid payload answers 400", func(t *testing.T) {
		rec := createRequest(t, h, `{"username":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUsers_Retrieve(t *testing.T) {
	h := newTestHandler(t)
	rec := createRequest(t, h, `{"username":"alice","email":"a@x.com","password":"secret"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	t.Run("returns user with decrypted password", func(t *testing.T) {
		rec := queryRequest(t, h, http.MethodGet, "/user/retrieve?username=alice", h.Retrieve)
		require.Equal(t, http.StatusOK, rec.Code)

		var user model.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
		assert.Equal(t, model.User{Username: "alice", Email: "a@x.com", Password: "secret"}, user)
	})

	t.Run("unknown user answers 400", func(t *testing.T) {
		rec := queryRequest(t, h, http.MethodGet, "/user/retrieve?username=nobody", h.Retrieve)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "user doesn't exist")
	})
}

func TestUsers_Delete(t *testing.T) {
	h := newTestHandler(t)
	rec := createRequest(t, h, `{"username":"alice","email":"a@x.com","password":"secret"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	t.Run("deletes existing user", func(t *testing.T) {
		rec := queryRequest(t, h, http.MethodDelete, "/user/delete?username=alice", h.Delete)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("retrieve after delete answers 400", func(t *testing.T) {
		rec := queryRequest(t, h, http.MethodGet, "/user/retrieve?username=alice", h.Retrieve)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown user answers 400", func(t *testing.T) {
		rec := queryRequest(t, h, http.MethodDelete, "/user/delete?username=nobody", h.Delete)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
