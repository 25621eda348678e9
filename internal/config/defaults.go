package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultListenHost      = "0.0.0.0"
	DefaultListenPort      = 8765
	DefaultListenPath      = "/"
	DefaultWriteWait       = 10 * time.Second
	DefaultPongWait        = 60 * time.Second
	DefaultMaxMessageSize  = 4096
	DefaultBackendHost     = "127.0.0.1"
	DefaultBackendPort     = 6000
	DefaultDialTimeout     = 5 * time.Second
	DefaultResponseTimeout = 3 * time.Second
	DefaultMaxLineSize     = 64 * 1024
	DefaultRoomCapacity    = 2
	DefaultHealthPort      = 8080
	DefaultHealthPath      = "/healthz"
	DefaultLogLevel        = "info"
)

func (c *BridgeConfig) applyDefaults() {
	// Listener defaults
	if c.Listen.Host == "" {
		c.Listen.Host = DefaultListenHost
	}
	if c.Listen.Port == 0 {
		c.Listen.Port = DefaultListenPort
	}
	if c.Listen.Path == "" {
		c.Listen.Path = DefaultListenPath
	}
	if c.Listen.WriteWait == 0 {
		c.Listen.WriteWait = DefaultWriteWait
	}
	if c.Listen.PongWait == 0 {
		c.Listen.PongWait = DefaultPongWait
	}
	if c.Listen.MaxMessageSize == 0 {
		c.Listen.MaxMessageSize = DefaultMaxMessageSize
	}

	// Backend defaults
	if c.Backend.Host == "" {
		c.Backend.Host = DefaultBackendHost
	}
	if c.Backend.Port == 0 {
		c.Backend.Port = DefaultBackendPort
	}
	if c.Backend.DialTimeout == 0 {
		c.Backend.DialTimeout = DefaultDialTimeout
	}
	if c.Backend.ResponseTimeout == 0 {
		c.Backend.ResponseTimeout = DefaultResponseTimeout
	}
	if c.Backend.MaxLineSize == 0 {
		c.Backend.MaxLineSize = DefaultMaxLineSize
	}

	// Rooms defaults
	if c.Rooms.Capacity == 0 {
		c.Rooms.Capacity = DefaultRoomCapacity
	}

	// Health defaults
	if c.Health.Port == 0 {
		c.Health.Port = DefaultHealthPort
	}
	if c.Health.Path == "" {
		c.Health.Path = DefaultHealthPath
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}
