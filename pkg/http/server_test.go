package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type routes struct{}

func (routes) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/ok", func(c echo.Context) error { return SuccessResponse(c, "fine") })
	e.GET("/api/missing", func(c echo.Context) error {
		return AppErrorResponse(c, NotFoundError("no such symbol"))
	})
	e.GET("/api/panic", func(c echo.Context) error { panic("boom") })
}

func newTestServer(t *testing.T, opts ...ServerOption) (*Server, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	opts = append([]ServerOption{WithRegistry(reg, reg)}, opts...)
	return NewServer(routes{}, opts...), reg
}

func get(s *Server, target string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func counted(t *testing.T, reg *prometheus.Registry, route, status string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != "tazeai_http_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["route"] == route && labels["status"] == status {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestServerRecordsEnvelopeStatus(t *testing.T) {
	s, reg := newTestServer(t)

	rec := get(s, "/api/missing", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var env APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, http.StatusNotFound, env.Status)

	get(s, "/api/ok", nil)
	assert.Equal(t, 1.0, counted(t, reg, "/api/missing", "404"))
	assert.Equal(t, 1.0, counted(t, reg, "/api/ok", "200"))
}

func TestServerRecoversPanics(t *testing.T) {
	s, reg := newTestServer(t)
	rec := get(s, "/api/panic", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":500`)
	assert.Equal(t, 1.0, counted(t, reg, "/api/panic", "500"))
}

func TestServerCORS(t *testing.T) {
	s, _ := newTestServer(t, WithCORS("http://localhost:3000"))

	rec := get(s, "/api/ok", map[string]string{echo.HeaderOrigin: "http://localhost:3000"})
	assert.Equal(t, "http://localhost:3000", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))

	rec = get(s, "/api/ok", map[string]string{echo.HeaderOrigin: "http://evil.example"})
	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))

	req := httptest.NewRequest(http.MethodOptions, "/api/ok", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:3000")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodGet)
	pre := httptest.NewRecorder()
	s.Echo().ServeHTTP(pre, req)
	assert.Equal(t, http.StatusNoContent, pre.Code)
	assert.True(t, strings.Contains(pre.Header().Get(echo.HeaderAccessControlAllowMethods), http.MethodGet))
}

func TestServerMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	get(s, "/api/ok", nil)
	rec := get(s, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tazeai_http_requests_total")
}
