// internal/service/discovery_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"printer-service/internal/discovery"
	"printer-service/internal/utils"
)

// ErrInvalidScan is returned for an unknown scan type or a bad timeout
var ErrInvalidScan = errors.New("invalid scan request")

const defaultScanTimeout = 10 * time.Second

// DiscoveryService finds serial ports and USB devices a printer could be
// attached to
type DiscoveryService struct {
	scannerManager *discovery.ScannerManager
	logger         *utils.ServiceLogger
}

// ScanRequest selects the scanners to run
type ScanRequest struct {
	// ScanType is "all" or a scanner type such as "serial" or "usb"
	ScanType string
	// Timeout is a duration string; empty uses the default
	Timeout string
}

// NewDiscoveryService creates a new discovery service
func NewDiscoveryService(logger *zap.Logger, scanners ...discovery.PortScanner) *DiscoveryService {
	serviceLogger := utils.NewServiceLogger(logger, "discovery-service")

	scannerManager := discovery.NewScannerManager(logger)
	for _, scanner := range scanners {
		scannerManager.RegisterScanner(scanner)
	}

	serviceLogger.Info("Discovery scanners initialized",
		zap.Strings("available_scanners", scannerManager.GetAvailableScanners()),
	)

	return &DiscoveryService{
		scannerManager: scannerManager,
		logger:         serviceLogger,
	}
}

// Scanners returns the available scanner types
func (ds *DiscoveryService) Scanners() []string {
	return ds.scannerManager.GetAvailableScanners()
}

// ScanPorts runs the requested scanners within the request timeout
func (ds *DiscoveryService) ScanPorts(ctx context.Context, req *ScanRequest) ([]*discovery.DiscoveredPort, error) {
	timeout := defaultScanTimeout
	if req.Timeout != "" {
		d, err := time.ParseDuration(req.Timeout)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("timeout %q: %w", req.Timeout, ErrInvalidScan)
		}
		timeout = d
	}

	scanType := req.ScanType
	if scanType == "" {
		scanType = "all"
	}

	ds.logger.Info("Starting port scan", zap.String("type", scanType), zap.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		ports []*discovery.DiscoveredPort
		err   error
	)
	if scanType == "all" {
		ports, err = ds.scannerManager.ScanAll(ctx)
	} else {
		if !ds.isScanner(scanType) {
			return nil, fmt.Errorf("scan type %q: %w", scanType, ErrInvalidScan)
		}
		ports, err = ds.scannerManager.ScanByType(ctx, scanType)
	}
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	if ports == nil {
		ports = []*discovery.DiscoveredPort{}
	}
	ds.logger.Info("Port scan completed",
		zap.Int("ports_found", len(ports)),
		zap.String("scan_type", scanType),
	)
	return ports, nil
}

func (ds *DiscoveryService) isScanner(scanType string) bool {
	for _, t := range ds.scannerManager.GetAvailableScanners() {
		if t == scanType {
			return true
		}
	}
	return false
}
