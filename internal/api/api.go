// Package api exposes chart results and the instrument list over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"TigerChart/internal/model"
)

const (
	DefaultTimeout      = 30 * time.Second
	ServiceName         = "tiger-chart"
	ServiceVersion      = "1.0.0"
	RequestIDContextKey = "request_id"
	RequestIDHeaderKey  = "X-Request-ID"
)

// ChartService computes one chart.
type ChartService interface {
	Collect(ctx context.Context, req model.ChartRequest) (*model.ChartResult, error)
}

// InstrumentService returns the selectable instruments.
type InstrumentService interface {
	Instruments(ctx context.Context) ([]model.Instrument, error)
}

// APIHandler handles HTTP requests using Gin framework
type APIHandler struct {
	charts      ChartService
	instruments InstrumentService
	metrics     http.Handler
	logger      *zap.Logger
	now         func() time.Time
}

// NewAPIHandler creates a new API handler. metrics may be nil.
func NewAPIHandler(charts ChartService, instruments InstrumentService, metrics http.Handler, logger *zap.Logger) *APIHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIHandler{
		charts:      charts,
		instruments: instruments,
		metrics:     metrics,
		logger:      logger,
		now:         time.Now,
	}
}

// SetupRoutes configures all API routes
func (h *APIHandler) SetupRoutes() *gin.Engine {
	router := gin.New()

	router.Use(requestIDMiddleware())
	router.Use(zapLoggerMiddleware(h.logger))
	router.Use(gin.Recovery())

	v1 := router.Group("/api/v1")
	v1.GET("/chart", h.GetChart)
	v1.GET("/instruments", h.GetInstruments)

	router.GET("/health", h.HealthCheck)
	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics))
	}
	return router
}

// NewServer wraps the routes in an http.Server listening on addr.
func (h *APIHandler) NewServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
