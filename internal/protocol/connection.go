// internal/protocol/connection.go
package protocol

import "time"

// SerialConfig represents serial connection configuration
type SerialConfig struct {
	Port     string        `json:"port" mapstructure:"port"`
	BaudRate int           `json:"baud_rate" mapstructure:"baud_rate"`
	DataBits int           `json:"data_bits" mapstructure:"data_bits"`
	StopBits int           `json:"stop_bits" mapstructure:"stop_bits"`
	Parity   string        `json:"parity" mapstructure:"parity"`
	Timeout  time.Duration `json:"timeout" mapstructure:"timeout"`
}

// USBConfig represents USB connection configuration
type USBConfig struct {
	VendorID  string        `json:"vendor_id" mapstructure:"vendor_id"`
	ProductID string        `json:"product_id" mapstructure:"product_id"`
	Endpoint  int           `json:"endpoint" mapstructure:"endpoint"`
	Timeout   time.Duration `json:"timeout" mapstructure:"timeout"`
}

// TCPConfig represents a raw (port 9100 style) TCP connection
type TCPConfig struct {
	Host         string        `json:"host" mapstructure:"host"`
	Port         int           `json:"port" mapstructure:"port"`
	KeepAlive    bool          `json:"keep_alive" mapstructure:"keep_alive"`
	Timeout      time.Duration `json:"timeout" mapstructure:"timeout"`
	WriteTimeout time.Duration `json:"write_timeout" mapstructure:"write_timeout"`
}

// Settings carries the configuration of every transport; CreateProtocol
// reads the one matching the connection type.
type Settings struct {
	Serial SerialConfig
	TCP    TCPConfig
	USB    USBConfig
}
