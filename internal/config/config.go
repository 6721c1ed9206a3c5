package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Kafka    KafkaConfig
	Redis    RedisConfig
	Gemini   GeminiConfig
	Worker   WorkerConfig
}

type ServerConfig struct {
	Port string `envconfig:"SERVER_PORT" default:":8080"`
}

type PostgresConfig struct {
	URL string `envconfig:"POSTGRES_URL" required:"true"`
}

type KafkaConfig struct {
	BrokersRaw string   `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	Brokers    []string `ignored:"true"`
	Topic      string   `envconfig:"KAFKA_TOPIC" default:"usage-events"`
	Partitions int      `envconfig:"KAFKA_PARTITIONS" default:"3"`
	Version    string   `envconfig:"KAFKA_VERSION"`
}

type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
	PoolSize int    `envconfig:"REDIS_POOL_SIZE" default:"10"`
}

type GeminiConfig struct {
	APIKey string `envconfig:"GEMINI_API_KEY" required:"true"`
	Model  string `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`
}

type WorkerConfig struct {
	ProcessingInterval time.Duration `envconfig:"WORKER_PROCESSING_INTERVAL" default:"2s"`
}

func New() (*Config, error) {
	cfg := new(Config)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	cfg.Kafka.Brokers = strings.Split(cfg.Kafka.BrokersRaw, ",")

	return cfg, nil
}

func (k *KafkaConfig) GetSaramaConfig() *sarama.Config {
	config := sarama.NewConfig()

	if k.Version != "" {
		version, err := sarama.ParseKafkaVersion(k.Version)
		if err == nil {
			config.Version = version
		}
	}

	// Consumer settings
	config.Consumer.Return.Errors = true
	config.Consumer.Offsets.AutoCommit.Enable = true
	config.Consumer.Offsets.AutoCommit.Interval = 2 * time.Minute
	config.Consumer.Offsets.Initial = sarama.OffsetNewest

	// Settings for batch processing
	config.Consumer.Fetch.Min = 1
	config.Consumer.Fetch.Default = 1024 * 1024 // 1MB
	config.Consumer.MaxWaitTime = 100 * time.Millisecond

	// Network settings
	config.Net.MaxOpenRequests = 5
	config.Net.DialTimeout = 30 * time.Second
	config.Net.ReadTimeout = 30 * time.Second
	config.Net.WriteTimeout = 30 * time.Second

	return config
}
