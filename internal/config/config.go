package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Database DatabaseConfig `yaml:"database" validate:"required"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Provider ProviderConfig `yaml:"provider"`
	Sync     SyncConfig     `yaml:"sync"`
	Server   ServerConfig   `yaml:"server"`
	LogLevel string         `yaml:"log_level" validate:"oneof=debug info warn error"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host" validate:"required"`
	Port     int    `yaml:"port" validate:"required,min=1,max=65535"`
	User     string `yaml:"user" validate:"required"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname" validate:"required"`
	SSLMode  string `yaml:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// RabbitMQConfig configures the forecast event publisher. An empty URL
// disables publishing entirely.
type RabbitMQConfig struct {
	URL        string `yaml:"url"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
	QueueName  string `yaml:"queue_name"`
}

func (r RabbitMQConfig) Enabled() bool {
	return r.URL != ""
}

type ProviderConfig struct {
	ForecastURL string        `yaml:"forecast_url" validate:"required,url"`
	CatalogURL  string        `yaml:"catalog_url" validate:"required,url"`
	Timeout     time.Duration `yaml:"timeout"`
}

type SyncConfig struct {
	CronSpec string        `yaml:"cron_spec"`
	Timeout  time.Duration `yaml:"timeout"`
}

type ServerConfig struct {
	Port      int     `yaml:"port" validate:"min=0,max=65535"`
	APIKey    string  `yaml:"api_key"`
	SyncRPS   float64 `yaml:"sync_rps"`
	SyncBurst int     `yaml:"sync_burst"`
}

func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.RabbitMQ.Enabled() {
		if c.RabbitMQ.Exchange == "" {
			c.RabbitMQ.Exchange = "weather_syncer"
		}
		if c.RabbitMQ.RoutingKey == "" {
			c.RabbitMQ.RoutingKey = "forecasts"
		}
		if c.RabbitMQ.QueueName == "" {
			c.RabbitMQ.QueueName = "forecast_events"
		}
	}
	if c.Provider.ForecastURL == "" {
		c.Provider.ForecastURL = "https://api.ipma.pt/open-data/forecast/meteorology/cities/daily/hp-daily-forecast-day0.json"
	}
	if c.Provider.CatalogURL == "" {
		c.Provider.CatalogURL = "https://api.ipma.pt/open-data/distrits-islands.json"
	}
	if c.Provider.Timeout == 0 {
		c.Provider.Timeout = 15 * time.Second
	}
	if c.Sync.CronSpec == "" {
		c.Sync.CronSpec = "5 * * * *"
	}
	if c.Sync.Timeout == 0 {
		c.Sync.Timeout = 2 * time.Minute
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.SyncRPS == 0 {
		c.Server.SyncRPS = 0.2
	}
	if c.Server.SyncBurst == 0 {
		c.Server.SyncBurst = 1
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}
