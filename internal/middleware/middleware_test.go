package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T, reg *prometheus.Registry) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewRequestLogger().Handler())

	promMw, err := NewPrometheusMiddleware("test", reg)
	require.NoError(t, err)
	r.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(r, reg)

	r.GET("/ok", func(c *gin.Context) {
		_, exists := c.Get("trace_id")
		c.JSON(http.StatusOK, gin.H{"trace": exists})
	})
	r.GET("/error", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "test error"})
	})
	return r
}

func TestPrometheusMiddleware_BasicMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := newRouter(t, reg)

	for _, path := range []string{"/ok", "/error"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	families, err := reg.Gather()
	require.NoError(t, err)

	var durationFound, errorsFound bool
	for _, mf := range families {
		switch mf.GetName() {
		case "test_http_request_duration_seconds":
			durationFound = true
			assert.Len(t, mf.GetMetric(), 2, "два маршрута - две серии")
		case "test_http_request_errors_total":
			errorsFound = true
			require.Len(t, mf.GetMetric(), 1)
			assert.Equal(t, 1.0, mf.GetMetric()[0].GetCounter().GetValue())
		}
	}
	assert.True(t, durationFound, "Duration metric not found")
	assert.True(t, errorsFound, "Errors metric not found")
}

func TestRequestLogger_SetsTraceID(t *testing.T) {
	r := newRouter(t, prometheus.NewRegistry())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.JSONEq(t, `{"trace":true}`, w.Body.String())
}

func TestPrometheusMiddleware_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheusMiddleware("dup", reg)
	require.NoError(t, err)

	_, err = NewPrometheusMiddleware("dup", reg)
	assert.Error(t, err)
}
