// internal/protocol/usb_connection.go
package protocol

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/gousb"
	"go.uber.org/zap"

	"printer-service/internal/model"
)

// USBConnection implements PrinterProtocol over a USB bulk OUT endpoint
type USBConnection struct {
	config   *USBConfig
	ctx      *gousb.Context
	device   *gousb.Device
	intf     *gousb.Interface
	done     func()
	outEndpt *gousb.OutEndpoint
	logger   *zap.Logger
	mutex    sync.RWMutex
	isOpen   bool
	stats    statsTracker
}

// NewUSBConnection creates a new USB connection
func NewUSBConnection(config *USBConfig, logger *zap.Logger) *USBConnection {
	return &USBConnection{
		config: config,
		logger: logger.With(
			zap.String("protocol", "usb"),
			zap.String("vendor_id", config.VendorID),
			zap.String("product_id", config.ProductID),
		),
	}
}

// Open opens the USB connection
func (uc *USBConnection) Open(ctx context.Context) error {
	uc.mutex.Lock()
	defer uc.mutex.Unlock()

	if uc.isOpen {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	uc.logger.Info("Opening USB connection", zap.Int("endpoint", uc.config.Endpoint))

	vendorID, err := ParseHexID(uc.config.VendorID)
	if err != nil {
		return fmt.Errorf("invalid vendor ID: %w", err)
	}
	productID, err := ParseHexID(uc.config.ProductID)
	if err != nil {
		return fmt.Errorf("invalid product ID: %w", err)
	}

	usbCtx := gousb.NewContext()

	device, err := uc.findAndOpenDevice(usbCtx, vendorID, productID)
	if err != nil {
		usbCtx.Close()
		return fmt.Errorf("failed to find USB device: %w", err)
	}

	// Printers are usually claimed by the usblp kernel driver
	if err := device.SetAutoDetach(true); err != nil {
		uc.logger.Warn("Could not enable kernel driver auto-detach", zap.Error(err))
	}

	intf, done, err := device.DefaultInterface()
	if err != nil {
		device.Close()
		usbCtx.Close()
		return fmt.Errorf("failed to claim interface: %w", err)
	}

	outEndpt, err := intf.OutEndpoint(uc.config.Endpoint)
	if err != nil {
		done()
		device.Close()
		usbCtx.Close()
		return fmt.Errorf("failed to get out endpoint %d: %w", uc.config.Endpoint, err)
	}

	uc.ctx = usbCtx
	uc.device = device
	uc.intf = intf
	uc.done = done
	uc.outEndpt = outEndpt
	uc.isOpen = true
	uc.stats.connected(true)

	uc.logger.Info("USB connection opened successfully")
	return nil
}

// Close closes the USB connection
func (uc *USBConnection) Close() error {
	uc.mutex.Lock()
	defer uc.mutex.Unlock()

	if !uc.isOpen {
		return nil
	}

	if uc.done != nil {
		uc.done()
		uc.done = nil
	}
	uc.intf = nil

	var err error
	if uc.device != nil {
		err = uc.device.Close()
		uc.device = nil
	}
	if uc.ctx != nil {
		uc.ctx.Close()
		uc.ctx = nil
	}

	uc.outEndpt = nil
	uc.isOpen = false
	uc.stats.connected(false)

	if err != nil {
		return fmt.Errorf("failed to close USB device: %w", err)
	}
	uc.logger.Info("USB connection closed successfully")
	return nil
}

// IsOpen returns whether the connection is open
func (uc *USBConnection) IsOpen() bool {
	uc.mutex.RLock()
	defer uc.mutex.RUnlock()
	return uc.isOpen && uc.device != nil && uc.outEndpt != nil
}

// Write writes data to the bulk OUT endpoint
func (uc *USBConnection) Write(ctx context.Context, data []byte) error {
	uc.mutex.RLock()
	defer uc.mutex.RUnlock()

	if !uc.isOpen || uc.outEndpt == nil {
		return fmt.Errorf("usb %s: %w", uc.Address(), ErrNotOpen)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	startTime := time.Now()
	n, err := uc.outEndpt.Write(data)
	if err != nil {
		uc.stats.failed()
		uc.logger.Error("USB write failed", zap.Error(err))
		return fmt.Errorf("failed to write to USB device: %w", err)
	}
	if n != len(data) {
		uc.stats.failed()
		return fmt.Errorf("incomplete write: wrote %d of %d bytes", n, len(data))
	}

	uc.stats.written(len(data), time.Since(startTime))
	uc.logger.Debug("USB write completed", zap.Int("bytes", len(data)))
	return nil
}

// Flush is a no-op: bulk transfers complete before Write returns
func (uc *USBConnection) Flush(ctx context.Context) error {
	if !uc.IsOpen() {
		return fmt.Errorf("usb %s: %w", uc.Address(), ErrNotOpen)
	}
	return ctx.Err()
}

// GetProtocolType returns the protocol type
func (uc *USBConnection) GetProtocolType() model.ConnectionType {
	return model.ConnectionTypeUSB
}

// Address returns vendor:product
func (uc *USBConnection) Address() string {
	return uc.config.VendorID + ":" + uc.config.ProductID
}

// Stats returns a snapshot of the connection statistics
func (uc *USBConnection) Stats() ProtocolStats {
	return uc.stats.snapshot()
}

// ParseHexID parses hex ID string (0x1234 or 1234)
func ParseHexID(hexStr string) (gousb.ID, error) {
	hexStr = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(hexStr)), "0x")

	id, err := strconv.ParseUint(hexStr, 16, 16)
	if err != nil {
		return 0, err
	}
	return gousb.ID(id), nil
}

// findAndOpenDevice opens the first device matching the IDs
func (uc *USBConnection) findAndOpenDevice(usbCtx *gousb.Context, vendorID, productID gousb.ID) (*gousb.Device, error) {
	devices, err := usbCtx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Vendor == vendorID && desc.Product == productID
	})
	if err != nil && len(devices) == 0 {
		return nil, fmt.Errorf("failed to enumerate USB devices: %w", err)
	}

	if len(devices) == 0 {
		return nil, fmt.Errorf("USB device not found (VID: %s, PID: %s)", vendorID, productID)
	}

	if len(devices) > 1 {
		for _, d := range devices[1:] {
			d.Close()
		}
		uc.logger.Warn("Multiple matching USB devices found, using first one")
	}

	return devices[0], nil
}
