// internal/discovery/usb/vendors.go
package usb

import "github.com/google/gousb"

// Vendor is a USB vendor known to build panel printers
type Vendor struct {
	Name string
	// Brand is the registry brand its printers use
	Brand string
}

// KnownVendors returns the vendor IDs reported even when a device does not
// declare the printer class
func KnownVendors() map[gousb.ID]Vendor {
	return map[gousb.ID]Vendor{
		0x0DD4: {Name: "Custom Engineering", Brand: "CUSTOM"},
		0x04B8: {Name: "Seiko Epson", Brand: "GENERIC"},
	}
}
