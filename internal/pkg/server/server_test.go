package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anicoll/okte-integration/internal/pkg/model"
)

type mockCoordinator struct {
	data   *model.Snapshot
	status model.Status
}

func (m *mockCoordinator) Data() *model.Snapshot { return m.data }
func (m *mockCoordinator) Status() model.Status  { return m.status }

func serve(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestGetPrices_NoData(t *testing.T) {
	h := New(&mockCoordinator{}, nil).Handler()

	rec := serve(t, h, "/api/v1/prices")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetPrices(t *testing.T) {
	coord := &mockCoordinator{data: &model.Snapshot{
		CurrentPrice: decimal.NewNullDecimal(decimal.RequireFromString("101.5")),
		Today: model.Stats{
			Avg: decimal.NewNullDecimal(decimal.RequireFromString("20")),
		},
		EvaluatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}}
	h := New(coord, nil).Handler()

	rec := serve(t, h, "/api/v1/prices")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, 101.5, out["current_price"])
	assert.Equal(t, float64(20), out["today_avg"])
	assert.Nil(t, out["today_min"])
	assert.Equal(t, []any{}, out["prices"])
}

func TestGetStatus(t *testing.T) {
	coord := &mockCoordinator{status: model.Status{
		LastUpdateSuccess: false,
		Error:             "HTTP 500",
	}}
	h := New(coord, nil).Handler()

	rec := serve(t, h, "/api/v1/status")

	require.Equal(t, http.StatusOK, rec.Code)
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, false, out["last_update_success"])
	assert.Equal(t, "HTTP 500", out["error"])
}

func TestHealth(t *testing.T) {
	h := New(&mockCoordinator{}, nil).Handler()

	assert.Equal(t, http.StatusOK, serve(t, h, "/healthz").Code)
}

func TestStreamRoute(t *testing.T) {
	called := false
	stream := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	serve(t, New(&mockCoordinator{}, stream).Handler(), "/api/v1/ws")
	assert.True(t, called)

	rec := serve(t, New(&mockCoordinator{}, nil).Handler(), "/api/v1/ws")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	h := New(&mockCoordinator{}, nil).Handler()
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/prices", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestLoggingMiddleware_RecordsStatus(t *testing.T) {
	var seen int
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		seen = w.(*statusRecorder).status
	})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://homeassistant.local:8123")

	LoggingMiddleware(inner).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, http.StatusTeapot, seen)
	assert.Equal(t, "http://homeassistant.local:8123", rec.Header().Get("Access-Control-Allow-Origin"))
}
