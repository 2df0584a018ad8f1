// internal/model/printer.go
package model

import (
	"strings"
	"time"

	"printer-service/internal/escpos"
)

// ConnectionType represents how the printer is connected
type ConnectionType string

const (
	ConnectionTypeSerial ConnectionType = "SERIAL"
	ConnectionTypeUSB    ConnectionType = "USB"
	ConnectionTypeTCP    ConnectionType = "TCP"
	ConnectionTypeMemory ConnectionType = "MEMORY"
)

// ParseConnectionType accepts the config spelling (serial, tcp, ...) in any case
func ParseConnectionType(s string) (ConnectionType, bool) {
	switch ConnectionType(strings.ToUpper(strings.TrimSpace(s))) {
	case ConnectionTypeSerial:
		return ConnectionTypeSerial, true
	case ConnectionTypeUSB:
		return ConnectionTypeUSB, true
	case ConnectionTypeTCP:
		return ConnectionTypeTCP, true
	case ConnectionTypeMemory:
		return ConnectionTypeMemory, true
	}
	return "", false
}

// PrinterStatus represents the connection state of the printer
type PrinterStatus string

const (
	PrinterStatusOnline     PrinterStatus = "ONLINE"
	PrinterStatusOffline    PrinterStatus = "OFFLINE"
	PrinterStatusError      PrinterStatus = "ERROR"
	PrinterStatusConnecting PrinterStatus = "CONNECTING"
)

// PrinterInfo describes the configured printer and its session
type PrinterInfo struct {
	Model          string                 `json:"model"`
	Dialect        string                 `json:"dialect"`
	Description    string                 `json:"description"`
	ConnectionType ConnectionType         `json:"connection_type"`
	Address        string                 `json:"address"`
	Status         PrinterStatus          `json:"status"`
	StateUnknown   bool                   `json:"state_unknown"`
	State          escpos.FormattingState `json:"state"`
	Capabilities   []Capability           `json:"capabilities"`
	ColumnsPerLine int                    `json:"columns_per_line"`
	ConnectedAt    *time.Time             `json:"connected_at,omitempty"`
	LastError      *string                `json:"last_error,omitempty"`
}

// IsOnline checks if the printer session is usable
func (p *PrinterInfo) IsOnline() bool {
	return p.Status == PrinterStatusOnline
}

// Capability represents an optional command a dialect implements
type Capability string

const (
	CapabilityJustify      Capability = "JUSTIFY"
	CapabilityEmphasis     Capability = "EMPHASIS"
	CapabilityUnderline    Capability = "UNDERLINE"
	CapabilityReverse      Capability = "REVERSE"
	CapabilityUpsideDown   Capability = "UPSIDE_DOWN"
	CapabilityAltFont      Capability = "ALT_FONT"
	CapabilityScale        Capability = "SCALE"
	CapabilityRaster       Capability = "RASTER"
	CapabilityLogo         Capability = "LOGO"
	CapabilityFactoryReset Capability = "FACTORY_RESET"
)

// CapabilitiesOf lists the optional commands d supports
func CapabilitiesOf(d *escpos.Dialect) []Capability {
	caps := make([]Capability, 0, 10)
	if d.SupportsJustification() {
		caps = append(caps, CapabilityJustify)
	}
	toggles := []struct {
		t   escpos.Toggle
		cap Capability
	}{
		{d.Emphasis, CapabilityEmphasis},
		{d.Underline, CapabilityUnderline},
		{d.Reverse, CapabilityReverse},
		{d.UpsideDown, CapabilityUpsideDown},
		{d.AltFont, CapabilityAltFont},
	}
	for _, t := range toggles {
		if t.t.Supported() {
			caps = append(caps, t.cap)
		}
	}
	if d.Scale.Mode != escpos.ScaleUnsupported {
		caps = append(caps, CapabilityScale)
	}
	caps = append(caps, CapabilityRaster)
	if d.Logo != nil {
		caps = append(caps, CapabilityLogo)
	}
	if d.FactoryReset != nil {
		caps = append(caps, CapabilityFactoryReset)
	}
	return caps
}
