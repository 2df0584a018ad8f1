// internal/driver/registry_init.go
package driver

import (
	"go.uber.org/zap"

	"printer-service/internal/escpos"
)

// DefaultColumns is the line length of the 384 dot heads in the default font
const DefaultColumns = 32

// RegisterDefaultModels registers the printers the built-in dialects drive
func RegisterDefaultModels(registry *Registry, logger *zap.Logger) {
	models := []ModelInfo{
		{
			Brand:       "CUSTOM",
			Model:       "DPT100-S",
			Description: "Custom DPT100-S panel printer",
			Dialect:     escpos.DPT100S,
		},
		{
			Brand:       "PORTIPC",
			Model:       "PORTIPC-40",
			Description: "PortIPC-40 panel printer",
			Dialect:     escpos.PortIPC40,
		},
		{
			Brand:       "ADAFRUIT",
			Model:       "A2",
			Description: "A2 micro panel thermal printer",
			Dialect:     escpos.A2,
		},
		// Unknown panel printers usually speak the A2 subset
		{
			Brand:       "GENERIC",
			Model:       "*",
			Description: "Generic ESC/POS panel printer",
			Dialect:     escpos.A2,
		},
	}

	for _, m := range models {
		if m.ColumnsPerLine == 0 {
			m.ColumnsPerLine = DefaultColumns
		}
		if err := registry.Register(m); err != nil {
			logger.Error("Failed to register printer model", zap.Error(err))
		}
	}

	logger.Info("Printer models registered", zap.Int("models", len(models)))
}
