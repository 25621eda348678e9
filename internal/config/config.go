package config

import "time"

// BridgeConfig is the root configuration for a bridge instance.
type BridgeConfig struct {
	Listen  ListenConfig  `yaml:"listen"`
	Backend BackendConfig `yaml:"backend"`
	Rooms   RoomsConfig   `yaml:"rooms"`
	Health  HealthConfig  `yaml:"health"`
	Log     LogConfig     `yaml:"log"`
}

// ListenConfig holds the browser-facing WebSocket listener settings.
type ListenConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	Path           string        `yaml:"path"`
	WriteWait      time.Duration `yaml:"write_wait"`
	PongWait       time.Duration `yaml:"pong_wait"`
	MaxMessageSize int64         `yaml:"max_message_size"`
	TLS            TLSConfig     `yaml:"tls"`
}

// TLSConfig enables wss:// when both files are set.
type TLSConfig struct {
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// Enabled reports whether the listener should serve TLS.
func (t TLSConfig) Enabled() bool {
	return t.CertFile != "" && t.KeyFile != ""
}

// BackendConfig holds the game-server TCP connection settings.
type BackendConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	DialTimeout     time.Duration `yaml:"dial_timeout"`
	ResponseTimeout time.Duration `yaml:"response_timeout"` // ephemeral round-trip deadline
	MaxLineSize     int           `yaml:"max_line_size"`
}

// RoomsConfig holds room registry settings.
type RoomsConfig struct {
	Capacity int `yaml:"capacity"`
}

// HealthConfig holds the stats/health HTTP endpoint settings.
type HealthConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}
