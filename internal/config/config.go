package config

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
)

// Поддерживаемые бэкенды хранилища
const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

var ErrUnknownBackend = errors.New("config: unknown storage backend")

// Config конфигурация сервиса: TOML файл + переопределение из окружения
type Config struct {
	Server    Server    `toml:"server"`
	Logs      Logs      `toml:"logs"`
	Storage   Storage   `toml:"storage"`
	Database  Database  `toml:"database"`
	Redis     Redis     `toml:"redis"`
	Events    Events    `toml:"events"`
	Metrics   Metrics   `toml:"metrics"`
	RateLimit RateLimit `toml:"rate_limit"`
}

type Server struct {
	HTTPPort        int `toml:"http_port" envconfig:"SERVER_PORT"`
	ReadTimeout     int `toml:"read_timeout" envconfig:"SERVER_READ_TIMEOUT"`
	WriteTimeout    int `toml:"write_timeout" envconfig:"SERVER_WRITE_TIMEOUT"`
	IdleTimeout     int `toml:"idle_timeout" envconfig:"SERVER_IDLE_TIMEOUT"`
	ShutdownTimeout int `toml:"shutdown_timeout" envconfig:"SERVER_SHUTDOWN_TIMEOUT"`
}

type Logs struct {
	File  string `toml:"file" envconfig:"LOGS_FILE"`
	Level string `toml:"level" envconfig:"LOGS_LEVEL"`
}

// Storage выбирает бэкенд storage adapter
type Storage struct {
	Backend string `toml:"backend" envconfig:"STORAGE_BACKEND"`
}

type Database struct {
	Host     string `toml:"host" envconfig:"DB_HOST"`
	Port     int    `toml:"port" envconfig:"DB_PORT"`
	User     string `toml:"user" envconfig:"DB_USER"`
	Password string `toml:"password" envconfig:"DB_PASSWORD"`
	Name     string `toml:"name" envconfig:"DB_NAME"`
	SSLMode  string `toml:"sslmode" envconfig:"DB_SSLMODE"`

	MaxOpenConns    int `toml:"max_open_conns" envconfig:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns    int `toml:"max_idle_conns" envconfig:"DB_MAX_IDLE_CONNS"`
	ConnMaxLifetime int `toml:"conn_max_lifetime_minutes" envconfig:"DB_CONN_MAX_LIFETIME_MINUTES"`
}

// DSN собирает строку подключения lib/pq
func (d Database) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

type Redis struct {
	Addr      string `toml:"addr" envconfig:"REDIS_ADDR"`
	Password  string `toml:"password" envconfig:"REDIS_PASSWORD"`
	DB        int    `toml:"db" envconfig:"REDIS_DB"`
	KeyPrefix string `toml:"key_prefix" envconfig:"REDIS_KEY_PREFIX"`
}

type Events struct {
	Enabled  bool   `toml:"enabled" envconfig:"EVENTS_ENABLED"`
	URL      string `toml:"url" envconfig:"EVENTS_URL"`
	Exchange string `toml:"exchange" envconfig:"EVENTS_EXCHANGE"`
}

type Metrics struct {
	Enabled     bool   `toml:"enabled" envconfig:"METRICS_ENABLED"`
	Path        string `toml:"path" envconfig:"METRICS_PATH"`
	ServiceName string `toml:"service_name" envconfig:"METRICS_SERVICE_NAME"`
}

// RateLimit настройки ограничения частоты запросов
type RateLimit struct {
	Enabled bool    `toml:"enabled" envconfig:"RATELIMIT_ENABLED"`
	RPS     float64 `toml:"rps" envconfig:"RATELIMIT_RPS"`
	Burst   int     `toml:"burst" envconfig:"RATELIMIT_BURST"`
}

// Load читает TOML конфиг и накатывает переменные окружения поверх
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: process env: %w", err)
	}

	switch cfg.Storage.Backend {
	case BackendPostgres, BackendRedis, BackendMemory:
	case "":
		cfg.Storage.Backend = BackendPostgres
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Storage.Backend)
	}

	return &cfg, nil
}
