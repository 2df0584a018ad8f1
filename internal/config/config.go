// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"printer-service/internal/driver"
	"printer-service/internal/escpos"
	"printer-service/internal/model"
	"printer-service/internal/protocol"
)

// EnvPrefix prefixes every environment override, e.g.
// PRINTER_SERVICE_PRINTER_SERIAL_PORT=/dev/ttyS1
const EnvPrefix = "PRINTER_SERVICE"

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Security SecurityConfig `mapstructure:"security"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Printer  PrinterConfig  `mapstructure:"printer"`
	App      AppConfig      `mapstructure:"app"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host" validate:"required"`
	Port         string        `mapstructure:"port" validate:"required"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	TLS          TLSConfig     `mapstructure:"tls"`
}

// TLSConfig represents TLS configuration
type TLSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	CertFile string `mapstructure:"cert_file"`
	KeyFile  string `mapstructure:"key_file"`
}

// SecurityConfig represents security configuration
type SecurityConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level" validate:"required"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// PrinterConfig selects the printer model, its dialect and the transport
type PrinterConfig struct {
	Brand string `mapstructure:"brand"`
	Model string `mapstructure:"model"`
	// Dialect overrides the dialect of the model when set
	Dialect        string                `mapstructure:"dialect"`
	ConnectionType string                `mapstructure:"connection_type"`
	Serial         protocol.SerialConfig `mapstructure:"serial"`
	TCP            protocol.TCPConfig    `mapstructure:"tcp"`
	USB            protocol.USBConfig    `mapstructure:"usb"`

	Charset        string `mapstructure:"charset"`
	ColumnsPerLine int    `mapstructure:"columns_per_line"`
	BlackThreshold int    `mapstructure:"black_threshold"`
	AlphaThreshold int    `mapstructure:"alpha_threshold"`
	DisableDelays  bool   `mapstructure:"disable_delays"`

	OperationTimeout  time.Duration `mapstructure:"operation_timeout"`
	ReconnectAttempts int           `mapstructure:"reconnect_attempts"`
	ReconnectDelay    time.Duration `mapstructure:"reconnect_delay"`

	// HealthCheckInterval is how often an offline printer is reconnected;
	// zero disables the monitor
	HealthCheckInterval time.Duration `mapstructure:"health_check_interval"`
	// HistorySize is how many finished operations are kept for lookup
	HistorySize int `mapstructure:"history_size"`
}

// AppConfig represents application metadata
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Version     string `mapstructure:"version" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required"`
	Debug       bool   `mapstructure:"debug"`
}

// Load loads config.yaml from the usual locations plus environment
// variables. A missing file is not an error: defaults and environment
// are enough to run.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile loads configuration from path, or searches the default
// locations when path is empty
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/printer-service")
	}

	// Environment variable support
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8085")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.tls.enabled", false)

	// Security defaults
	v.SetDefault("security.allowed_origins", []string{"*"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 28)
	v.SetDefault("logging.compress", true)

	// Printer defaults
	v.SetDefault("printer.brand", "PORTIPC")
	v.SetDefault("printer.model", "PORTIPC-40")
	v.SetDefault("printer.dialect", "")
	v.SetDefault("printer.connection_type", "serial")
	v.SetDefault("printer.charset", "utf-8")
	v.SetDefault("printer.columns_per_line", 0)
	v.SetDefault("printer.black_threshold", escpos.DefaultBlackThreshold)
	v.SetDefault("printer.alpha_threshold", escpos.DefaultAlphaThreshold)
	v.SetDefault("printer.disable_delays", false)
	v.SetDefault("printer.operation_timeout", "60s")
	v.SetDefault("printer.reconnect_attempts", 3)
	v.SetDefault("printer.reconnect_delay", "2s")
	v.SetDefault("printer.health_check_interval", "30s")
	v.SetDefault("printer.history_size", 500)

	// Transport defaults; a zero baud rate means the model's rate
	v.SetDefault("printer.serial.port", "/dev/ttyUSB0")
	v.SetDefault("printer.serial.baud_rate", 0)
	v.SetDefault("printer.serial.data_bits", 8)
	v.SetDefault("printer.serial.stop_bits", 1)
	v.SetDefault("printer.serial.parity", "none")
	v.SetDefault("printer.serial.timeout", "3s")

	v.SetDefault("printer.tcp.host", "")
	v.SetDefault("printer.tcp.port", 9100)
	v.SetDefault("printer.tcp.keep_alive", true)
	v.SetDefault("printer.tcp.timeout", "10s")
	v.SetDefault("printer.tcp.write_timeout", "30s")

	v.SetDefault("printer.usb.vendor_id", "")
	v.SetDefault("printer.usb.product_id", "")
	v.SetDefault("printer.usb.endpoint", 1)
	v.SetDefault("printer.usb.timeout", "5s")

	// App defaults
	v.SetDefault("app.name", "printer-service")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", false)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Server.Host == "" {
		return fmt.Errorf("server.host is required")
	}
	if config.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	if config.Server.TLS.Enabled && (config.Server.TLS.CertFile == "" || config.Server.TLS.KeyFile == "") {
		return fmt.Errorf("server.tls requires cert_file and key_file")
	}

	// Validate environment
	validEnvs := []string{"development", "staging", "production", "test"}
	isValidEnv := false
	for _, env := range validEnvs {
		if config.App.Environment == env {
			isValidEnv = true
			break
		}
	}
	if !isValidEnv {
		return fmt.Errorf("app.environment must be one of: %v", validEnvs)
	}

	// Validate logging level
	validLevels := []string{"debug", "info", "warn", "error", "fatal"}
	isValidLevel := false
	for _, level := range validLevels {
		if config.Logging.Level == level {
			isValidLevel = true
			break
		}
	}
	if !isValidLevel {
		return fmt.Errorf("logging.level must be one of: %v", validLevels)
	}

	return validatePrinter(&config.Printer)
}

func validatePrinter(p *PrinterConfig) error {
	if p.Model == "" && p.Dialect == "" {
		return fmt.Errorf("printer.model or printer.dialect is required")
	}
	if p.Dialect != "" {
		if _, err := escpos.LookupDialect(p.Dialect); err != nil {
			return fmt.Errorf("printer.dialect: %w", err)
		}
	}
	if _, ok := model.ParseConnectionType(p.ConnectionType); !ok {
		return fmt.Errorf("printer.connection_type must be one of serial, tcp, usb, memory; got %q", p.ConnectionType)
	}
	if _, err := driver.LookupCharset(p.Charset); err != nil {
		return fmt.Errorf("printer.charset: %w", err)
	}
	if p.ColumnsPerLine < 0 {
		return fmt.Errorf("printer.columns_per_line must not be negative")
	}
	if p.BlackThreshold < 0 || p.BlackThreshold > 256 {
		return fmt.Errorf("printer.black_threshold must be in [0,256]")
	}
	if p.AlphaThreshold < 0 || p.AlphaThreshold > 255 {
		return fmt.Errorf("printer.alpha_threshold must be in [0,255]")
	}
	if p.HealthCheckInterval < 0 {
		return fmt.Errorf("printer.health_check_interval must not be negative")
	}
	if p.HistorySize < 1 {
		return fmt.Errorf("printer.history_size must be positive")
	}
	if p.ReconnectAttempts < 0 {
		return fmt.Errorf("printer.reconnect_attempts must not be negative")
	}
	return nil
}

// GetConnectionType returns the parsed printer connection type
func (p *PrinterConfig) GetConnectionType() model.ConnectionType {
	ct, _ := model.ParseConnectionType(p.ConnectionType)
	return ct
}

// ProtocolSettings converts the transport sections for protocol.CreateProtocol
func (p *PrinterConfig) ProtocolSettings() protocol.Settings {
	return protocol.Settings{
		Serial: p.Serial,
		TCP:    p.TCP,
		USB:    p.USB,
	}
}

// GetServerAddr returns the server address
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// IsProduction checks if the environment is production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment checks if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsDebugEnabled checks if debug mode is enabled
func (c *Config) IsDebugEnabled() bool {
	return c.App.Debug || c.IsDevelopment()
}
