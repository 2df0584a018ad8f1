// internal/handler/discovery_handler.go
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"printer-service/internal/service"
	"printer-service/internal/utils"
)

// DiscoveryHandler handles port discovery requests
type DiscoveryHandler struct {
	discoveryService *service.DiscoveryService
	logger           *utils.ServiceLogger
}

// NewDiscoveryHandler creates a new discovery handler
func NewDiscoveryHandler(discoveryService *service.DiscoveryService, logger *zap.Logger) *DiscoveryHandler {
	return &DiscoveryHandler{
		discoveryService: discoveryService,
		logger:           utils.NewServiceLogger(logger, "discovery-handler"),
	}
}

// RegisterRoutes registers discovery routes
func (h *DiscoveryHandler) RegisterRoutes(router *gin.RouterGroup) {
	discovery := router.Group("/discovery")
	{
		discovery.GET("/ports", h.ScanPorts)
		discovery.GET("/scanners", h.GetScanners)
	}
}

// ScanPorts lists the ports a printer could be attached to
// @Summary Scan for printer ports
// @Description List serial ports and USB printer class devices on the host
// @Tags Discovery
// @Produce json
// @Param type query string false "Scanner type" Enums(all, serial, usb) default(all)
// @Param timeout query string false "Scan timeout" default(10s)
// @Success 200 {object} utils.APIResponse{data=object{ports_found=int,ports=[]discovery.DiscoveredPort}} "Port scan completed"
// @Failure 400 {object} utils.APIResponse "Invalid scan request"
// @Failure 500 {object} utils.APIResponse "Scan failed"
// @Router /discovery/ports [get]
func (h *DiscoveryHandler) ScanPorts(c *gin.Context) {
	req := &service.ScanRequest{
		ScanType: c.DefaultQuery("type", "all"),
		Timeout:  c.Query("timeout"),
	}

	ports, err := h.discoveryService.ScanPorts(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidScan) {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid scan request", err)
			return
		}
		h.logger.Error("Failed to scan ports", zap.Error(err))
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to scan ports", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Port scan completed", gin.H{
		"ports_found": len(ports),
		"ports":       ports,
	})
}

// GetScanners returns the available scanner types
// @Summary List scanners
// @Description List the scanner types usable on this host
// @Tags Discovery
// @Produce json
// @Success 200 {object} utils.APIResponse{data=[]string} "Scanners retrieved"
// @Router /discovery/scanners [get]
func (h *DiscoveryHandler) GetScanners(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Scanners retrieved", h.discoveryService.Scanners())
}
