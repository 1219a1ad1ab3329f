package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/annel0/worldcore/internal/logging"
	"github.com/annel0/worldcore/internal/middleware"
)

// Server - отладочный HTTP-сервер мира: /health, /world, /metrics
type Server struct {
	router *gin.Engine
	board  *StatusBoard
	proc   *processStats
	srv    *http.Server
}

// NewServer создаёт сервер. Метрики HTTP регистрируются в reg,
// /metrics отдаёт всё из gatherer.
func NewServer(addr string, board *StatusBoard, reg prometheus.Registerer, gatherer prometheus.Gatherer) (*Server, error) {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.NewRequestLogger().Handler())
	router.Use(otelgin.Middleware("debug_api"))

	promMw, err := middleware.NewPrometheusMiddleware("debug_api", reg)
	if err != nil {
		return nil, err
	}
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router, gatherer)

	s := &Server{
		router: router,
		board:  board,
		proc:   newProcessStats(),
		srv: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/world", s.handleWorld)
}

// Handler возвращает http.Handler (для тестов)
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start запускает сервер в отдельной горутине
func (s *Server) Start() {
	go func() {
		logging.Info("🩺 Debug API слушает %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Debug API остановлен с ошибкой: %v", err)
		}
	}()
}

// Shutdown корректно останавливает сервер
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// handleHealth проверка состояния сервера
func (s *Server) handleHealth(c *gin.Context) {
	resp := gin.H{
		"status":  "ok",
		"time":    time.Now().Unix(),
		"process": s.proc.Snapshot(),
	}
	if st, ok := s.board.Latest(); ok {
		resp["setup"] = st.World.Setup
		resp["chunks_ready"] = st.World.ChunksReady
		resp["frame"] = st.Frame
	}
	c.JSON(http.StatusOK, resp)
}

// handleWorld отдаёт последний снимок мира
func (s *Server) handleWorld(c *gin.Context) {
	st, ok := s.board.Latest()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "world not started"})
		return
	}
	c.JSON(http.StatusOK, st)
}
