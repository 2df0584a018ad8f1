// internal/handler/health_handler.go
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"printer-service/internal/config"
	"printer-service/internal/service"
	"printer-service/internal/utils"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	printerService *service.PrinterService
	config         *config.Config
	logger         *utils.ServiceLogger
	startTime      time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(printerService *service.PrinterService, config *config.Config, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		printerService: printerService,
		config:         config,
		logger:         utils.NewServiceLogger(logger, "health-handler"),
		startTime:      time.Now(),
	}
}

// RegisterRoutes registers health check routes
func (h *HealthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/health", h.HealthCheck)
	router.GET("/ready", h.ReadinessCheck)
	router.GET("/live", h.LivenessCheck)
}

// HealthCheck performs general health check
// @Summary Health check
// @Description Get overall service health including the printer connection
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse "Service is healthy"
// @Failure 503 {object} HealthResponse "Printer is not connected"
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	health := &HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Service:   h.config.App.Name,
		Version:   h.config.App.Version,
		Uptime:    time.Since(h.startTime).String(),
		Checks:    make(map[string]CheckResult),
	}

	info := h.printerService.Info()
	printer := CheckResult{
		Status:  "healthy",
		Message: "Printer session open",
		Data: map[string]interface{}{
			"model":         info.Model,
			"dialect":       info.Dialect,
			"status":        info.Status,
			"state_unknown": info.StateUnknown,
		},
	}
	if !info.IsOnline() {
		health.Status = "unhealthy"
		printer.Status = "unhealthy"
		printer.Message = "Printer not connected"
		if info.LastError != nil {
			printer.Message = *info.LastError
		}
	}
	health.Checks["printer"] = printer

	if stats, ok := h.printerService.Stats(); ok {
		health.Checks["transport"] = CheckResult{
			Status: "healthy",
			Data: map[string]interface{}{
				"bytes_written":  stats.BytesWritten,
				"writes":         stats.OperationCount,
				"errors":         stats.ErrorCount,
				"connected":      stats.IsConnected,
				"last_activity":  stats.LastActivity,
				"avg_latency_ms": stats.AverageLatency.Milliseconds(),
			},
		}
	}

	statusCode := http.StatusOK
	if health.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, health)
}

// ReadinessCheck for Kubernetes readiness probe
// @Summary Readiness check
// @Description Check if the printer session is open
// @Tags Health
// @Produce json
// @Success 200 {object} object{status=string,timestamp=string} "Service is ready"
// @Failure 503 {object} object{status=string,reason=string} "Service is not ready"
// @Router /ready [get]
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	if !h.printerService.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "printer not connected",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now(),
	})
}

// LivenessCheck for Kubernetes liveness probe
// @Summary Liveness check
// @Description Check if service is alive
// @Tags Health
// @Produce json
// @Success 200 {object} object{status=string,timestamp=string} "Service is alive"
// @Router /live [get]
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"timestamp": time.Now(),
	})
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Service   string                 `json:"service"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Checks    map[string]CheckResult `json:"checks"`
}

// CheckResult represents individual check result
type CheckResult struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
}
