package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/stockroom/internal/repository"
	"github.com/mamadbah2/stockroom/internal/repository/memory"
	"github.com/mamadbah2/stockroom/internal/server/handlers"
	"github.com/mamadbah2/stockroom/internal/server/router"
	"github.com/mamadbah2/stockroom/internal/service/inventory"
)

func newEngine(t *testing.T, store repository.Store) *gin.Engine {
	t.Helper()
	svc := inventory.NewService(store, nil)
	return router.New(handlers.NewInventoryHandler(svc, nil), nil)
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestAddStockEchoesAndSetsLocation(t *testing.T) {
	r := newEngine(t, memory.NewStore(nil))

	rr := do(r, http.MethodPost, "/v1/stocks", `{"name": "abc", "amount": 3}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"name":"abc","amount":3}`, rr.Body.String())
	assert.Equal(t, "http://example.com/v1/stocks/abc", rr.Header().Get("Location"))

	rr = do(r, http.MethodPost, "/v1/stocks", `{"name":"abc"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"name":"abc"}`, rr.Body.String())

	rr = do(r, http.MethodGet, "/v1/stocks/abc", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"abc":4}`, rr.Body.String())
}

func TestLocationHonoursForwardedProto(t *testing.T) {
	r := newEngine(t, memory.NewStore(nil))

	req := httptest.NewRequest(http.MethodPost, "/v1/stocks", strings.NewReader(`{"name":"abc"}`))
	req.Header.Set("X-Forwarded-Proto", "https")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "https://example.com/v1/stocks/abc", rr.Header().Get("Location"))
}

func TestListAndGetStocks(t *testing.T) {
	r := newEngine(t, memory.NewStore(nil))

	rr := do(r, http.MethodGet, "/v1/stocks", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{}`, rr.Body.String())

	do(r, http.MethodPost, "/v1/stocks", `{"name":"pear","amount":2}`)
	do(r, http.MethodPost, "/v1/stocks", `{"name":"apple"}`)

	rr = do(r, http.MethodGet, "/v1/stocks", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"apple":1,"pear":2}`, rr.Body.String())

	rr = do(r, http.MethodGet, "/v1/stocks/zzz", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"zzz":0}`, rr.Body.String())

	rr = do(r, http.MethodGet, "/v1/stocks/abc123", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"message":"ERROR"}`, rr.Body.String())
}

func TestAddStockRejectsInvalidInput(t *testing.T) {
	r := newEngine(t, memory.NewStore(nil))

	bodies := []string{
		`{"amount":3}`,
		`{"name":"toolongname"}`,
		`{"name":"abc","amount":0}`,
		`{"name":"abc","amount":1.5}`,
		`{"name":"abc","amount":"2"}`,
		`{"name":"abc","amount":true}`,
		`{"name":"abc"`,
		`["abc"]`,
		``,
	}
	for _, body := range bodies {
		rr := do(r, http.MethodPost, "/v1/stocks", body)
		assert.Equal(t, http.StatusBadRequest, rr.Code, "body %q", body)
		assert.JSONEq(t, `{"message":"ERROR"}`, rr.Body.String(), "body %q", body)
	}

	rr := do(r, http.MethodGet, "/v1/stocks", "")
	assert.JSONEq(t, `{}`, rr.Body.String())
}

func TestSellAndCheckSales(t *testing.T) {
	r := newEngine(t, memory.NewStore(nil))
	do(r, http.MethodPost, "/v1/stocks", `{"name":"abc","amount":5}`)

	rr := do(r, http.MethodPost, "/v1/sales", `{"name":"abc","amount":2,"price":10}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"name":"abc","amount":2,"price":10}`, rr.Body.String())
	assert.Equal(t, "http://example.com/v1/sales/abc", rr.Header().Get("Location"))

	rr = do(r, http.MethodPost, "/v1/sales", `{"name":"abc","price":1.234}`)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(r, http.MethodGet, "/v1/sales", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"sales":21.23}`, rr.Body.String())

	rr = do(r, http.MethodGet, "/v1/stocks/abc", "")
	assert.JSONEq(t, `{"abc":2}`, rr.Body.String())
}

func TestSellRejections(t *testing.T) {
	r := newEngine(t, memory.NewStore(nil))
	do(r, http.MethodPost, "/v1/stocks", `{"name":"abc","amount":3}`)

	bodies := []string{
		`{"name":"abc","amount":100,"price":1.5}`,
		`{"name":"nope"}`,
		`{"name":"abc","price":0}`,
		`{"name":"abc","price":-2}`,
		`{"name":"abc","price":"10"}`,
	}
	for _, body := range bodies {
		rr := do(r, http.MethodPost, "/v1/sales", body)
		assert.Equal(t, http.StatusBadRequest, rr.Code, "body %q", body)
	}

	rr := do(r, http.MethodGet, "/v1/stocks/abc", "")
	assert.JSONEq(t, `{"abc":3}`, rr.Body.String())
	rr = do(r, http.MethodGet, "/v1/sales", "")
	assert.JSONEq(t, `{"sales":0}`, rr.Body.String())
}

func TestClearAll(t *testing.T) {
	r := newEngine(t, memory.NewStore(nil))
	do(r, http.MethodPost, "/v1/stocks", `{"name":"abc","amount":5}`)
	do(r, http.MethodPost, "/v1/sales", `{"name":"abc","price":2.5}`)

	for i := 0; i < 2; i++ {
		rr := do(r, http.MethodDelete, "/v1/stocks", "")
		require.Equal(t, http.StatusNoContent, rr.Code)
		assert.Empty(t, rr.Body.String())
	}

	rr := do(r, http.MethodGet, "/v1/stocks", "")
	assert.JSONEq(t, `{}`, rr.Body.String())
	rr = do(r, http.MethodGet, "/v1/sales", "")
	assert.JSONEq(t, `{"sales":0}`, rr.Body.String())
}

func TestUnknownRouteAndMethod(t *testing.T) {
	r := newEngine(t, memory.NewStore(nil))

	rr := do(r, http.MethodGet, "/v2/stocks", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"message":"ERROR"}`, rr.Body.String())

	rr = do(r, http.MethodPut, "/v1/sales", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.JSONEq(t, `{"message":"ERROR"}`, rr.Body.String())
}

type brokenStore struct{}

func (brokenStore) WithinTx(context.Context, func(context.Context, repository.Tx) error) error {
	return errors.New("disk I/O error")
}

func (brokenStore) Close(context.Context) error { return nil }

func TestStorageFailureIsServerError(t *testing.T) {
	r := newEngine(t, brokenStore{})

	rr := do(r, http.MethodGet, "/v1/stocks", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"message":"ERROR"}`, rr.Body.String())

	rr = do(r, http.MethodPost, "/v1/stocks", `{"name":"abc"}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestRequestIDAndHealth(t *testing.T) {
	r := newEngine(t, memory.NewStore(nil))

	rr := do(r, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "fixed-id", rec.Header().Get("X-Request-ID"))
}
