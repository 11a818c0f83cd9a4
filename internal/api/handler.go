package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"TigerChart/internal/aligner"
	"TigerChart/internal/collector"
	"TigerChart/internal/model"
	"TigerChart/internal/summary"
)

// GetChart handles GET /api/v1/chart?symbol=&period= requests
func (h *APIHandler) GetChart(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	req, err := model.NewChartRequest(c.Query("symbol"), c.DefaultQuery("period", model.DefaultPeriod), h.now())
	if err != nil {
		h.handleError(c, err, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.charts.Collect(ctx, req)
	if err != nil {
		status := statusFor(err)
		msg := http.StatusText(status)
		if status != http.StatusInternalServerError {
			msg = err.Error()
		}
		h.handleError(c, err, status, msg)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetInstruments handles GET /api/v1/instruments?contains= requests
func (h *APIHandler) GetInstruments(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	list, err := h.instruments.Instruments(ctx)
	if err != nil {
		h.handleError(c, err, http.StatusInternalServerError, "instrument list unavailable")
		return
	}
	c.JSON(http.StatusOK, filterByName(list, c.Query("contains")))
}

// HealthCheck handles GET /health requests
func (h *APIHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"service":   ServiceName,
		"timestamp": h.now().UTC().Format(time.RFC3339),
		"version":   ServiceVersion,
	})
}

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, collector.ErrDataUnavailable), errors.Is(err, collector.ErrEmptyRange):
		return http.StatusNotFound
	case errors.Is(err, aligner.ErrInsufficientHistory),
		errors.Is(err, summary.ErrInsufficientData),
		errors.Is(err, summary.ErrDivisionByZero):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// filterByName keeps instruments whose name contains substr, ignoring case.
func filterByName(list []model.Instrument, substr string) []model.Instrument {
	out := make([]model.Instrument, 0, len(list))
	needle := strings.ToLower(strings.TrimSpace(substr))
	for _, inst := range list {
		if needle == "" || strings.Contains(strings.ToLower(inst.Name), needle) {
			out = append(out, inst)
		}
	}
	return out
}

// handleError logs the error and sends appropriate HTTP response
func (h *APIHandler) handleError(c *gin.Context, err error, statusCode int, userMessage string) {
	requestID := c.GetString(RequestIDContextKey)
	if requestID == "" {
		requestID = "unknown"
	}

	h.logger.Error("API error",
		zap.String("request_id", requestID),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
		zap.Int("status_code", statusCode),
	)

	c.JSON(statusCode, gin.H{
		"error":      userMessage,
		"request_id": requestID,
	})
}
