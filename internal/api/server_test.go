package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/annel0/worldcore/internal/chunk"
	"github.com/annel0/worldcore/internal/world"
)

func newTestServer(t *testing.T) (*Server, *StatusBoard) {
	board := NewStatusBoard()
	reg := prometheus.NewRegistry()
	s, err := NewServer(":0", board, reg, reg)
	require.NoError(t, err)
	return s, board
}

func get(s *Server, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestServer_Health(t *testing.T) {
	s, _ := newTestServer(t)

	w := get(s, "/health")
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.NotContains(t, body, "setup")

	proc, ok := body["process"].(map[string]any)
	require.True(t, ok, "process stats missing")
	assert.Contains(t, proc, "goroutines")
	assert.Contains(t, proc, "heap_alloc_mb")
}

func TestProcessStats_Snapshot(t *testing.T) {
	ps := newProcessStats()
	require.NotNil(t, ps.proc)

	snap := ps.Snapshot()
	assert.Contains(t, snap, "cpu_percent")
	assert.Contains(t, snap, "rss_mb")
	assert.Greater(t, snap["goroutines"], 0)
}

func TestServer_World(t *testing.T) {
	s, board := newTestServer(t)

	w := get(s, "/world")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	board.Publish(Status{
		Frame:   7,
		World:   world.Snapshot{ID: "w1", Phase: "ready", Setup: true, Days: 2},
		Chunks:  chunk.Stats{Loaded: 9},
		Storage: "memory",
	})

	w = get(s, "/world")
	require.Equal(t, http.StatusOK, w.Code)

	var st Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.Equal(t, uint64(7), st.Frame)
	assert.Equal(t, "w1", st.World.ID)
	assert.Equal(t, 2, st.World.Days)
	assert.Equal(t, 9, st.Chunks.Loaded)

	w = get(s, "/health")
	assert.Contains(t, w.Body.String(), `"setup":true`)
}

func TestServer_TracesRequests(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	s, _ := newTestServer(t)
	get(s, "/health")

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Contains(t, spans[0].Name(), "/health")
}

func TestServer_Metrics(t *testing.T) {
	s, _ := newTestServer(t)
	get(s, "/health")

	w := get(s, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "debug_api_http_request_duration_seconds"))
}

func TestStatusBoard_Empty(t *testing.T) {
	_, ok := NewStatusBoard().Latest()
	assert.False(t, ok)
}
