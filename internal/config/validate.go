package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *BridgeConfig) Validate() error {
	if c.Listen.Port < 1 || c.Listen.Port > 65535 {
		return fmt.Errorf("listen.port must be between 1 and 65535, got %d", c.Listen.Port)
	}
	if c.Listen.MaxMessageSize < 1 {
		return errors.New("listen.max_message_size must be >= 1")
	}
	if c.Listen.WriteWait <= 0 {
		return errors.New("listen.write_wait must be positive")
	}
	if c.Listen.PongWait <= 0 {
		return errors.New("listen.pong_wait must be positive")
	}
	if (c.Listen.TLS.CertFile == "") != (c.Listen.TLS.KeyFile == "") {
		return errors.New("listen.tls requires both cert_file and key_file")
	}

	if c.Backend.Host == "" {
		return errors.New("backend.host is required")
	}
	if c.Backend.Port < 1 || c.Backend.Port > 65535 {
		return fmt.Errorf("backend.port must be between 1 and 65535, got %d", c.Backend.Port)
	}
	if c.Backend.DialTimeout <= 0 {
		return errors.New("backend.dial_timeout must be positive")
	}
	if c.Backend.ResponseTimeout <= 0 {
		return errors.New("backend.response_timeout must be positive")
	}
	if c.Backend.MaxLineSize < 1 {
		return errors.New("backend.max_line_size must be >= 1")
	}

	if c.Rooms.Capacity < 1 {
		return errors.New("rooms.capacity must be >= 1")
	}

	if c.Health.Port < 1 || c.Health.Port > 65535 {
		return fmt.Errorf("health.port must be between 1 and 65535, got %d", c.Health.Port)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}

	return nil
}
