package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Notifier NotifierConfig `yaml:"notifier"`
	Search   SearchConfig   `yaml:"search"`
	Cache    CacheConfig    `yaml:"cache"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers      []string `yaml:"brokers"`
	BookingTopic string   `yaml:"booking_topic"`
	GroupID      string   `yaml:"group_id"`
}

type NotifierConfig struct {
	AlternativesURL string `yaml:"alternatives_url"`
	CancellationURL string `yaml:"cancellation_url"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
}

func (n NotifierConfig) Timeout() time.Duration {
	if n.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(n.TimeoutSeconds) * time.Second
}

type SearchConfig struct {
	DefaultLimit      int `yaml:"default_limit"`
	AlternativesLimit int `yaml:"alternatives_limit"`
}

type CacheConfig struct {
	SchedulesTTLSeconds int `yaml:"schedules_ttl_seconds"`
}

func (c CacheConfig) SchedulesTTL() time.Duration {
	return time.Duration(c.SchedulesTTLSeconds) * time.Second
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Search.DefaultLimit <= 0 {
		cfg.Search.DefaultLimit = 5
	}
	if cfg.Search.AlternativesLimit <= 0 {
		cfg.Search.AlternativesLimit = 2
	}

	return &cfg, nil
}
