package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	WebSocket WebSocketConfig
	Log       LogConfig
}

type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	// Requests per minute per client IP on POST /add_room; 0 disables the limit.
	CreateRoomLimit int
}

type DatabaseConfig struct {
	Driver string
	DSN    string
}

type RedisConfig struct {
	URL          string
	RoomCacheTTL time.Duration
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type WebSocketConfig struct {
	SendBuffer     int
	MaxMessageSize int64
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

var supportedDrivers = map[string]bool{
	"sqlite":   true,
	"postgres": true,
	"mysql":    true,
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment variables")
	}

	v := viper.New()
	v.SetDefault("RELAY_HOST", "0.0.0.0")
	v.SetDefault("RELAY_PORT", "3030")
	v.SetDefault("RELAY_READ_TIMEOUT", 30*time.Second)
	v.SetDefault("RELAY_WRITE_TIMEOUT", 30*time.Second)
	v.SetDefault("RELAY_IDLE_TIMEOUT", 60*time.Second)
	v.SetDefault("RELAY_SHUTDOWN_TIMEOUT", 30*time.Second)
	v.SetDefault("RATE_LIMIT_CREATE_ROOM", 30)
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_DSN", "chat.db")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("ROOM_CACHE_TTL", 30*time.Second)
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_TOPIC", "relay.messages")
	v.SetDefault("WS_SEND_BUFFER", 256)
	v.SetDefault("WS_MAX_MESSAGE_SIZE", 64*1024)
	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host:            v.GetString("RELAY_HOST"),
			Port:            v.GetString("RELAY_PORT"),
			ReadTimeout:     v.GetDuration("RELAY_READ_TIMEOUT"),
			WriteTimeout:    v.GetDuration("RELAY_WRITE_TIMEOUT"),
			IdleTimeout:     v.GetDuration("RELAY_IDLE_TIMEOUT"),
			ShutdownTimeout: v.GetDuration("RELAY_SHUTDOWN_TIMEOUT"),
			CreateRoomLimit: v.GetInt("RATE_LIMIT_CREATE_ROOM"),
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(v.GetString("DB_DRIVER")),
			DSN:    v.GetString("DB_DSN"),
		},
		Redis: RedisConfig{
			URL:          v.GetString("REDIS_URL"),
			RoomCacheTTL: v.GetDuration("ROOM_CACHE_TTL"),
		},
		Kafka: KafkaConfig{
			Brokers: splitCSV(v.GetString("KAFKA_BROKERS")),
			Topic:   v.GetString("KAFKA_TOPIC"),
		},
		WebSocket: WebSocketConfig{
			SendBuffer:     v.GetInt("WS_SEND_BUFFER"),
			MaxMessageSize: v.GetInt64("WS_MAX_MESSAGE_SIZE"),
			AllowedOrigins: splitCSV(v.GetString("ALLOWED_ORIGINS")),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the values that would otherwise fail late at startup.
func (c *Config) Validate() error {
	if !supportedDrivers[c.Database.Driver] {
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("DB_DSN must be set")
	}
	if c.WebSocket.SendBuffer <= 0 {
		return fmt.Errorf("WS_SEND_BUFFER must be positive, got %d", c.WebSocket.SendBuffer)
	}
	if c.WebSocket.MaxMessageSize <= 0 {
		return fmt.Errorf("WS_MAX_MESSAGE_SIZE must be positive, got %d", c.WebSocket.MaxMessageSize)
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return fmt.Errorf("KAFKA_TOPIC must be set when KAFKA_BROKERS is")
	}
	return nil
}

// Address is the listen address for the HTTP server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

func splitCSV(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
