package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Realtime RealtimeConfig `mapstructure:"realtime" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gte=1"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url" validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
}

// AuthConfig contains all authentication settings.
// The secret is shared with the identity service that issues the tokens.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gte=1"`
}

// RealtimeConfig tunes the websocket notification layer.
type RealtimeConfig struct {
	// SendQueueSize bounds each connection's outbound queue. Frames for a
	// connection whose queue is full are dropped.
	SendQueueSize    int      `mapstructure:"send_queue_size" validate:"gte=1"`
	WriteWaitSeconds int      `mapstructure:"write_wait_seconds" validate:"gte=1"`
	PongWaitSeconds  int      `mapstructure:"pong_wait_seconds" validate:"gte=2"`
	MaxMessageBytes  int64    `mapstructure:"max_message_bytes" validate:"gte=64"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	VerifyUserExists bool     `mapstructure:"verify_user_exists"`
}

// WriteWait is the time allowed to write one frame to a peer.
func (c RealtimeConfig) WriteWait() time.Duration {
	return time.Duration(c.WriteWaitSeconds) * time.Second
}

// PongWait is the time allowed to read the next pong from a peer.
func (c RealtimeConfig) PongWait() time.Duration {
	return time.Duration(c.PongWaitSeconds) * time.Second
}

// PingPeriod sends pings comfortably inside the pong window.
func (c RealtimeConfig) PingPeriod() time.Duration {
	return c.PongWait() * 9 / 10
}
