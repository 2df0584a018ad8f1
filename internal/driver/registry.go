// internal/driver/registry.go
package driver

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"printer-service/internal/escpos"
)

// ModelInfo describes a supported printer model
type ModelInfo struct {
	Brand          string          `json:"brand"`
	Model          string          `json:"model"`
	Description    string          `json:"description"`
	Dialect        *escpos.Dialect `json:"-"`
	DialectName    string          `json:"dialect"`
	BaudRate       int             `json:"baud_rate"`
	ColumnsPerLine int             `json:"columns_per_line"`
}

// ModelKey uniquely identifies a model
type ModelKey struct {
	Brand string
	Model string
}

func newModelKey(brand, model string) ModelKey {
	return ModelKey{
		Brand: strings.ToUpper(strings.TrimSpace(brand)),
		Model: strings.ToUpper(strings.TrimSpace(model)),
	}
}

// Registry maps printer models to the dialect and line settings they need
type Registry struct {
	models map[ModelKey]ModelInfo
	mu     sync.RWMutex
	logger *zap.Logger
}

// NewRegistry creates a new model registry
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		models: make(map[ModelKey]ModelInfo),
		logger: logger,
	}
}

// Register registers a model. Model "*" matches any model of the brand.
func (r *Registry) Register(info ModelInfo) error {
	if info.Dialect == nil {
		return fmt.Errorf("register %s %s: nil dialect: %w", info.Brand, info.Model, ErrConfiguration)
	}
	if info.BaudRate == 0 {
		info.BaudRate = info.Dialect.BaudRate
	}
	info.DialectName = info.Dialect.Name

	r.mu.Lock()
	defer r.mu.Unlock()

	r.models[newModelKey(info.Brand, info.Model)] = info
	r.logger.Debug("Printer model registered",
		zap.String("brand", info.Brand),
		zap.String("model", info.Model),
		zap.String("dialect", info.DialectName),
	)
	return nil
}

// Lookup finds a model: exact match first, then the brand wildcard
func (r *Registry) Lookup(brand, model string) (ModelInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := newModelKey(brand, model)
	if info, exists := r.models[key]; exists {
		return info, nil
	}

	key.Model = "*"
	if info, exists := r.models[key]; exists {
		info.Model = model
		return info, nil
	}

	return ModelInfo{}, fmt.Errorf("no printer model found for brand=%s, model=%s: %w",
		brand, model, ErrConfiguration)
}

// IsSupported checks if a model is known
func (r *Registry) IsSupported(brand, model string) bool {
	_, err := r.Lookup(brand, model)
	return err == nil
}

// List returns all registered models sorted by brand and model
func (r *Registry) List() []ModelInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	models := make([]ModelInfo, 0, len(r.models))
	for _, info := range r.models {
		models = append(models, info)
	}
	sort.Slice(models, func(i, j int) bool {
		if models[i].Brand != models[j].Brand {
			return models[i].Brand < models[j].Brand
		}
		return models[i].Model < models[j].Model
	})
	return models
}
