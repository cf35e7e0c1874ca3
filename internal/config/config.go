package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Admin    AdminConfig    `yaml:"admin"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Address      string        `yaml:"address"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	IdleTimeout  time.Duration `yaml:"idleTimeout"`
}

// DatabaseConfig contains MySQL connection configuration.
type DatabaseConfig struct {
	User     string        `yaml:"user"`
	Password string        `yaml:"password"`
	Host     string        `yaml:"host"`
	Port     string        `yaml:"port"`
	Name     string        `yaml:"name"`
	MaxIdle  int           `yaml:"maxIdleConnections"`
	MaxOpen  int           `yaml:"maxOpenConnections"`
	MaxLife  time.Duration `yaml:"maxLifetime"`
}

// RedisConfig contains the Lock Service's backing Redis connection.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// KafkaConfig names the brokers and topics of spec.md §4.5/§4.6: the
// outbound inventory topic, the six inbound order-lifecycle topics sharing
// one consumer group, and the inbound product catalog topic.
type KafkaConfig struct {
	Brokers             []string `yaml:"brokers"`
	InventoryTopic      string   `yaml:"inventoryTopic"`
	OrderCreatedTopic   string   `yaml:"orderCreatedTopic"`
	OrderUpdatedTopic   string   `yaml:"orderUpdatedTopic"`
	OrderCancelledTopic string   `yaml:"orderCancelledTopic"`
	OrderDeliveredTopic string   `yaml:"orderDeliveredTopic"`
	OrderShippedTopic   string   `yaml:"orderShippedTopic"`
	OrderPaidTopic      string   `yaml:"orderPaidTopic"`
	CatalogTopic        string   `yaml:"catalogTopic"`
	ConsumerGroupID     string   `yaml:"consumerGroupId"`
}

// AdminConfig holds the bcrypt-hashed static API key gating the create
// endpoint on the administrative controller.
type AdminConfig struct {
	HashedAPIKey string `yaml:"hashedApiKey"`
}

// LoadConfig reads YAML configuration from configPath, applying defaults
// first and environment overrides last, following the teacher's
// config-layering convention.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Address:      "127.0.0.1:8083",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			User:    "root",
			Password: "pass",
			Host:    "localhost",
			Port:    "3306",
			Name:    "ecom_inventory_service",
			MaxIdle: 25,
			MaxOpen: 25,
			MaxLife: 5 * time.Minute,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
			DB:   0,
		},
		Kafka: KafkaConfig{
			Brokers:             []string{"localhost:9092"},
			InventoryTopic:      "inventory_events",
			OrderCreatedTopic:   "order.created",
			OrderUpdatedTopic:   "order.updated",
			OrderCancelledTopic: "order.cancelled",
			OrderDeliveredTopic: "order.delivered",
			OrderShippedTopic:   "order.shipped",
			OrderPaidTopic:      "order.paid",
			CatalogTopic:        "product_events",
			ConsumerGroupID:     "inventory_service",
		},
	}

	file, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	if err := yaml.Unmarshal(file, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	config = overrideWithEnv(config)

	return config, nil
}

// overrideWithEnv lets deployment-specific secrets (DB password, Redis
// address) be injected without living in a checked-in YAML file.
func overrideWithEnv(config *Config) *Config {
	if v := os.Getenv("INVENTORY_SERVER_ADDR"); v != "" {
		config.Server.Address = v
	}

	if v := os.Getenv("INVENTORY_DB_USER"); v != "" {
		config.Database.User = v
	}
	if v := os.Getenv("INVENTORY_DB_PASSWORD"); v != "" {
		config.Database.Password = v
	}
	if v := os.Getenv("INVENTORY_DB_HOST"); v != "" {
		config.Database.Host = v
	}
	if v := os.Getenv("INVENTORY_DB_PORT"); v != "" {
		config.Database.Port = v
	}
	if v := os.Getenv("INVENTORY_DB_NAME"); v != "" {
		config.Database.Name = v
	}

	if v := os.Getenv("INVENTORY_REDIS_ADDR"); v != "" {
		config.Redis.Addr = v
	}
	if v := os.Getenv("INVENTORY_REDIS_PASSWORD"); v != "" {
		config.Redis.Password = v
	}
	if v := os.Getenv("INVENTORY_REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Redis.DB = n
		}
	}

	if v := os.Getenv("INVENTORY_KAFKA_BROKERS"); v != "" {
		config.Kafka.Brokers = strings.Split(v, ",")
	}

	if v := os.Getenv("INVENTORY_ADMIN_HASHED_API_KEY"); v != "" {
		config.Admin.HashedAPIKey = v
	}

	return config
}
