// internal/discovery/serial/scanner.go
package serial

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
	"go.uber.org/zap"

	"printer-service/internal/discovery"
	"printer-service/internal/model"
)

// Scanner lists the serial ports of the host
type Scanner struct {
	logger   *zap.Logger
	config   *Config
	detailed func() ([]*enumerator.PortDetails, error)
	basic    func() ([]string, error)
}

// Config for serial scanner
type Config struct {
	// PortPatterns are filepath.Match globs; empty keeps every port
	PortPatterns []string `json:"port_patterns"`
}

// NewScanner creates a new serial scanner
func NewScanner(logger *zap.Logger, config *Config) *Scanner {
	if config == nil {
		config = &Config{PortPatterns: defaultPortPatterns()}
	}

	return &Scanner{
		logger:   logger.With(zap.String("scanner", "serial")),
		config:   config,
		detailed: enumerator.GetDetailedPortsList,
		basic:    serial.GetPortsList,
	}
}

func defaultPortPatterns() []string {
	switch runtime.GOOS {
	case "linux":
		return []string{"/dev/ttyS*", "/dev/ttyUSB*", "/dev/ttyACM*", "/dev/ttyAMA*", "/dev/serial*"}
	case "darwin":
		return []string{"/dev/cu.*", "/dev/tty.usb*"}
	default:
		return nil
	}
}

// GetScannerType returns scanner type
func (s *Scanner) GetScannerType() string {
	return "serial"
}

// IsAvailable reports true; every platform the serial library builds on
// can enumerate ports
func (s *Scanner) IsAvailable() bool {
	return true
}

// Scan lists the serial ports matching the configured patterns. USB
// adapters carry their vendor and product IDs.
func (s *Scanner) Scan(ctx context.Context) ([]*discovery.DiscoveredPort, error) {
	s.logger.Info("Starting serial port scan")

	details, err := s.detailed()
	if err != nil {
		// Detailed enumeration is not implemented everywhere
		s.logger.Debug("Detailed port list unavailable", zap.Error(err))

		names, err := s.basic()
		if err != nil {
			return nil, fmt.Errorf("failed to get serial ports: %w", err)
		}
		details = make([]*enumerator.PortDetails, 0, len(names))
		for _, name := range names {
			details = append(details, &enumerator.PortDetails{Name: name})
		}
	}

	ports := make([]*discovery.DiscoveredPort, 0, len(details))
	for _, d := range details {
		if err := ctx.Err(); err != nil {
			return ports, err
		}
		if !s.matches(d.Name) {
			continue
		}

		port := &discovery.DiscoveredPort{
			ConnectionType: model.ConnectionTypeSerial,
			Address:        d.Name,
			Description:    d.Product,
			SerialNumber:   d.SerialNumber,
		}
		if d.IsUSB {
			port.VendorID = strings.ToLower(d.VID)
			port.ProductID = strings.ToLower(d.PID)
		}
		ports = append(ports, port)
	}

	s.logger.Info("Serial scan completed", zap.Int("ports_found", len(ports)))
	return ports, nil
}

func (s *Scanner) matches(name string) bool {
	if len(s.config.PortPatterns) == 0 {
		return true
	}
	for _, pattern := range s.config.PortPatterns {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}
