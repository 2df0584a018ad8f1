// internal/protocol/factory.go
package protocol

import (
	"fmt"

	"go.uber.org/zap"

	"printer-service/internal/model"
)

// CreateProtocol creates a protocol based on connection type and configuration.
// The returned connection is not open yet.
func CreateProtocol(connectionType model.ConnectionType, settings Settings, logger *zap.Logger) (PrinterProtocol, error) {
	if err := ValidateConfig(connectionType, settings); err != nil {
		return nil, err
	}

	switch connectionType {
	case model.ConnectionTypeSerial:
		cfg := settings.Serial
		logger.Info("Creating serial protocol",
			zap.String("port", cfg.Port),
			zap.Int("baud_rate", cfg.BaudRate),
		)
		return NewSerialConnection(&cfg, logger), nil

	case model.ConnectionTypeUSB:
		cfg := settings.USB
		logger.Info("Creating USB protocol",
			zap.String("vendor_id", cfg.VendorID),
			zap.String("product_id", cfg.ProductID),
			zap.Int("endpoint", cfg.Endpoint),
		)
		return NewUSBConnection(&cfg, logger), nil

	case model.ConnectionTypeTCP:
		cfg := settings.TCP
		if cfg.Port == 0 {
			cfg.Port = 9100
		}
		logger.Info("Creating TCP protocol",
			zap.String("host", cfg.Host),
			zap.Int("port", cfg.Port),
		)
		return NewTCPConnection(&cfg, logger), nil

	case model.ConnectionTypeMemory:
		logger.Info("Creating in-memory protocol")
		return NewMemoryConnection("simulated", logger), nil

	default:
		return nil, fmt.Errorf("unsupported protocol type: %s", connectionType)
	}
}

// ValidBaudRates are the rates the supported printers can be strapped to
var ValidBaudRates = []int{1200, 2400, 4800, 9600, 19200, 38400, 57600, 115200}

// ValidateConfig validates configuration for a specific protocol type
func ValidateConfig(connectionType model.ConnectionType, settings Settings) error {
	switch connectionType {
	case model.ConnectionTypeSerial:
		return validateSerialConfig(&settings.Serial)
	case model.ConnectionTypeUSB:
		return validateUSBConfig(&settings.USB)
	case model.ConnectionTypeTCP:
		return validateTCPConfig(&settings.TCP)
	case model.ConnectionTypeMemory:
		return nil
	default:
		return fmt.Errorf("unsupported connection type: %s", connectionType)
	}
}

func validateSerialConfig(config *SerialConfig) error {
	if config.Port == "" {
		return fmt.Errorf("serial port is required")
	}

	valid := false
	for _, rate := range ValidBaudRates {
		if config.BaudRate == rate {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid baud rate: %d", config.BaudRate)
	}

	if config.StopBits != 0 && config.StopBits != 1 && config.StopBits != 2 {
		return fmt.Errorf("invalid stop bits: %d", config.StopBits)
	}
	switch config.Parity {
	case "", "none", "odd", "even", "mark", "space":
	default:
		return fmt.Errorf("invalid parity: %q", config.Parity)
	}
	return nil
}

func validateUSBConfig(config *USBConfig) error {
	if config.VendorID == "" {
		return fmt.Errorf("USB vendor_id is required")
	}
	if config.ProductID == "" {
		return fmt.Errorf("USB product_id is required")
	}
	if _, err := ParseHexID(config.VendorID); err != nil {
		return fmt.Errorf("invalid USB vendor_id %q: %w", config.VendorID, err)
	}
	if _, err := ParseHexID(config.ProductID); err != nil {
		return fmt.Errorf("invalid USB product_id %q: %w", config.ProductID, err)
	}
	return nil
}

func validateTCPConfig(config *TCPConfig) error {
	if config.Host == "" {
		return fmt.Errorf("TCP host is required")
	}
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("invalid port number: %d", config.Port)
	}
	return nil
}
