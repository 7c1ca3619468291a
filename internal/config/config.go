package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// EnvConfigPath переменная окружения с путем к файлу конфигурации
const EnvConfigPath = "CONFIG_PATH"

// DefaultPath путь по умолчанию
const DefaultPath = "config.toml"

var (
	// ErrReadConfig файл не найден или не читается
	ErrReadConfig = errors.New("config: failed to read config file")

	// ErrInvalidConfig значения не проходят проверку
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// Config конфигурация сервиса
type Config struct {
	Server          ServerConfig      `toml:"server"`
	Database        DatabaseConfig    `toml:"database"`
	Logs            LogsConfig        `toml:"logs"`
	Metrics         MetricsConfig     `toml:"metrics"`
	Redis           RedisConfig       `toml:"redis"`
	Kafka           KafkaConfig       `toml:"kafka"`
	CatalogService  IntegrationConfig `toml:"catalog_service"`
	CustomerService IntegrationConfig `toml:"customer_service"`
	Booking         BookingConfig     `toml:"booking"`
}

// ServerConfig HTTP сервер, таймауты в секундах
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
	AutoMigrate     bool   `toml:"auto_migrate"`
}

// DSN строка подключения для lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// LogsConfig уровень и файл логов (пустой файл - только stdout)
type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// MetricsConfig Prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// RedisConfig кэш правил расписания; пустой addr отключает кэш
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// KafkaConfig события о записях; без брокеров события только логируются
type KafkaConfig struct {
	Brokers      []string `toml:"brokers"`
	Topic        string   `toml:"topic"`
	QueueSize    int      `toml:"queue_size"`
	WriteTimeout int      `toml:"write_timeout"` // секунды
}

// IntegrationConfig внешний HTTP сервис, таймаут в секундах
type IntegrationConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"`
}

// BookingConfig правила записи
type BookingConfig struct {
	PastGraceMinutes     int `toml:"past_grace_minutes"`
	MaxAdvanceDays       int `toml:"max_advance_days"`
	NextOpenScanDays     int `toml:"next_open_scan_days"`
	DefaultStepMinutes   int `toml:"default_step_minutes"` // 0 - шаг равен длительности услуги
	RulesCacheTTLSeconds int `toml:"rules_cache_ttl_seconds"`
	TxMaxRetries         int `toml:"tx_max_retries"`
}

func (b BookingConfig) PastGrace() time.Duration {
	return time.Duration(b.PastGraceMinutes) * time.Minute
}

func (b BookingConfig) Step() time.Duration {
	return time.Duration(b.DefaultStepMinutes) * time.Minute
}

func (b BookingConfig) RulesCacheTTL() time.Duration {
	return time.Duration(b.RulesCacheTTLSeconds) * time.Second
}

// Path путь к конфигурации: CONFIG_PATH или config.toml
func Path() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return DefaultPath
}

// Load читает TOML файл, заполняет значения по умолчанию и проверяет результат
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrReadConfig, path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	setDefault(&c.Server.HTTPPort, 8080)
	setDefault(&c.Server.ReadTimeout, 10)
	setDefault(&c.Server.WriteTimeout, 10)
	setDefault(&c.Server.IdleTimeout, 60)
	setDefault(&c.Server.ShutdownTimeout, 15)

	setDefault(&c.Database.Port, 5432)
	setDefault(&c.Database.MaxOpenConns, 25)
	setDefault(&c.Database.MaxIdleConns, 5)
	setDefault(&c.Database.ConnMaxLifetime, 300)
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "appointment_service"
	}

	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "appointments.events"
	}
	setDefault(&c.Kafka.QueueSize, 256)
	setDefault(&c.Kafka.WriteTimeout, 5)

	setDefault(&c.CatalogService.Timeout, 5)
	setDefault(&c.CustomerService.Timeout, 5)

	setDefault(&c.Booking.NextOpenScanDays, 14)
	setDefault(&c.Booking.RulesCacheTTLSeconds, 60)
	setDefault(&c.Booking.TxMaxRetries, 3)
}

// Validate отклоняет бессмысленные значения
func (c *Config) Validate() error {
	switch {
	case c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535:
		return fmt.Errorf("%w: server.http_port %d", ErrInvalidConfig, c.Server.HTTPPort)
	case c.Database.Host == "" || c.Database.DBName == "":
		return fmt.Errorf("%w: database.host and database.dbname are required", ErrInvalidConfig)
	case c.Database.MaxIdleConns > c.Database.MaxOpenConns:
		return fmt.Errorf("%w: database.max_idle_conns exceeds max_open_conns", ErrInvalidConfig)
	case c.CatalogService.URL == "":
		return fmt.Errorf("%w: catalog_service.url is required", ErrInvalidConfig)
	case c.CustomerService.URL == "":
		return fmt.Errorf("%w: customer_service.url is required", ErrInvalidConfig)
	case c.Booking.PastGraceMinutes < 0:
		return fmt.Errorf("%w: booking.past_grace_minutes must not be negative", ErrInvalidConfig)
	case c.Booking.MaxAdvanceDays < 0:
		return fmt.Errorf("%w: booking.max_advance_days must not be negative", ErrInvalidConfig)
	case c.Booking.NextOpenScanDays < 0:
		return fmt.Errorf("%w: booking.next_open_scan_days must not be negative", ErrInvalidConfig)
	case c.Booking.DefaultStepMinutes < 0:
		return fmt.Errorf("%w: booking.default_step_minutes must not be negative", ErrInvalidConfig)
	case c.Booking.TxMaxRetries < 0:
		return fmt.Errorf("%w: booking.tx_max_retries must not be negative", ErrInvalidConfig)
	}
	return nil
}

func setDefault(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}
