package config

import "time"

// Config holds relay configuration values.
type Config struct {
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	AdminAddr       string        `mapstructure:"admin_addr" yaml:"admin_addr"`
	LogLevel        string        `mapstructure:"log_level" yaml:"log_level"`
	Redact          bool          `mapstructure:"redact" yaml:"redact"`
	ReadBufferSize  int           `mapstructure:"read_buffer_size" yaml:"read_buffer_size"`
	OutboundBuffer  int           `mapstructure:"outbound_buffer" yaml:"outbound_buffer"`
	EventBuffer     int           `mapstructure:"event_buffer" yaml:"event_buffer"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	AcceptRate      float64       `mapstructure:"accept_rate" yaml:"accept_rate"`
	AcceptBurst     int           `mapstructure:"accept_burst" yaml:"accept_burst"`
	PrefixSender    bool          `mapstructure:"prefix_sender" yaml:"prefix_sender"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:            "127.0.0.1:3000",
		AdminAddr:       "127.0.0.1:3001",
		LogLevel:        "info",
		Redact:          false,
		ReadBufferSize:  1024,
		OutboundBuffer:  64,
		EventBuffer:     256,
		WriteTimeout:    5 * time.Second,
		AcceptRate:      0,
		AcceptBurst:     16,
		PrefixSender:    true,
		ShutdownTimeout: 5 * time.Second,
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
// Booleans are left alone since their zero value is meaningful.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.AdminAddr != "" {
		c.AdminAddr = other.AdminAddr
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.ReadBufferSize != 0 {
		c.ReadBufferSize = other.ReadBufferSize
	}
	if other.OutboundBuffer != 0 {
		c.OutboundBuffer = other.OutboundBuffer
	}
	if other.EventBuffer != 0 {
		c.EventBuffer = other.EventBuffer
	}
	if other.WriteTimeout != 0 {
		c.WriteTimeout = other.WriteTimeout
	}
	if other.AcceptRate != 0 {
		c.AcceptRate = other.AcceptRate
	}
	if other.AcceptBurst != 0 {
		c.AcceptBurst = other.AcceptBurst
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
}

// Validate rejects values the relay can not run with.
func (c Config) Validate() error {
	switch {
	case c.Addr == "":
		return errInvalid("addr", "must not be empty")
	case c.ReadBufferSize <= 0:
		return errInvalid("read_buffer_size", "must be positive")
	case c.OutboundBuffer <= 0:
		return errInvalid("outbound_buffer", "must be positive")
	case c.EventBuffer <= 0:
		return errInvalid("event_buffer", "must be positive")
	case c.AcceptRate < 0:
		return errInvalid("accept_rate", "must not be negative")
	case c.AcceptRate > 0 && c.AcceptBurst <= 0:
		return errInvalid("accept_burst", "must be positive when accept_rate is set")
	}
	return nil
}
