// internal/discovery/usb/scanner.go
package usb

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/gousb"
	"go.uber.org/zap"

	"printer-service/internal/discovery"
	"printer-service/internal/model"
)

// Scanner lists USB devices that look like printers
type Scanner struct {
	logger  *zap.Logger
	vendors map[gousb.ID]Vendor
	// list returns the descriptors of the attached devices
	list func() ([]*gousb.DeviceDesc, error)
}

// NewScanner creates a new USB scanner
func NewScanner(logger *zap.Logger) *Scanner {
	s := &Scanner{
		logger:  logger.With(zap.String("scanner", "usb")),
		vendors: KnownVendors(),
	}
	s.list = s.listDescriptors
	return s
}

// GetScannerType returns scanner type identifier
func (s *Scanner) GetScannerType() string {
	return "usb"
}

// IsAvailable reports true; libusb failures surface from Scan
func (s *Scanner) IsAvailable() bool {
	return true
}

// Scan reports every device with a printer class interface or a known
// printer vendor ID. Devices are only enumerated, never opened, so no
// device permissions are needed.
func (s *Scanner) Scan(ctx context.Context) ([]*discovery.DiscoveredPort, error) {
	s.logger.Info("Starting USB scan")

	descs, err := s.list()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate USB devices: %w", err)
	}

	var ports []*discovery.DiscoveredPort
	for _, desc := range descs {
		if err := ctx.Err(); err != nil {
			return ports, err
		}

		vendor, known := s.vendors[desc.Vendor]
		if !known && !IsPrinterClass(desc) {
			continue
		}

		port := &discovery.DiscoveredPort{
			ConnectionType: model.ConnectionTypeUSB,
			Address:        fmt.Sprintf("bus %d device %d", desc.Bus, desc.Address),
			VendorID:       desc.Vendor.String(),
			ProductID:      desc.Product.String(),
			Description:    "USB printer",
		}
		if known {
			port.Description = vendor.Name
			port.Brand = vendor.Brand
		}
		ports = append(ports, port)

		s.logger.Debug("Found USB printer",
			zap.String("vendor_id", port.VendorID),
			zap.String("product_id", port.ProductID),
			zap.String("class", desc.Class.String()),
		)
	}

	sort.Slice(ports, func(i, j int) bool { return ports[i].Address < ports[j].Address })
	s.logger.Info("USB scan completed", zap.Int("ports_found", len(ports)))
	return ports, nil
}

func (s *Scanner) listDescriptors() ([]*gousb.DeviceDesc, error) {
	usbCtx := gousb.NewContext()
	defer func() {
		if err := usbCtx.Close(); err != nil {
			s.logger.Warn("Failed to close USB context", zap.Error(err))
		}
	}()

	var descs []*gousb.DeviceDesc
	_, err := usbCtx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		descs = append(descs, desc)
		return false
	})
	return descs, err
}

// IsPrinterClass reports whether the device or any of its interfaces
// declares the USB printer class
func IsPrinterClass(desc *gousb.DeviceDesc) bool {
	if desc.Class == gousb.ClassPrinter {
		return true
	}
	for _, cfg := range desc.Configs {
		for _, intf := range cfg.Interfaces {
			for _, alt := range intf.AltSettings {
				if alt.Class == gousb.ClassPrinter {
					return true
				}
			}
		}
	}
	return false
}
