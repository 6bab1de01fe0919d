package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config captures the full runtime configuration for the publisher service.
type Config struct {
	App      AppConfig
	HTTP     HTTPConfig
	Upload   UploadConfig
	Storage  StorageConfig
	Postiz   PostizConfig
	Blotato  BlotatoConfig
	Report   ReportConfig
	Kafka    KafkaConfig
	Dispatch DispatchConfig
	Tracing  TracingConfig
}

type AppConfig struct {
	Name        string `env:"APP_NAME" envDefault:"crosspost-publisher"`
	Environment string `env:"APP_ENV" envDefault:"development"`
	Version     string `env:"APP_VERSION" envDefault:"0.1.0"`
	LogLevel    string `env:"APP_LOG_LEVEL" envDefault:"info"`
}

type HTTPConfig struct {
	Addr         string        `env:"HTTP_ADDR" envDefault:":8080"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"5m"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"11m"`
	IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
}

type UploadConfig struct {
	MaxSizeBytes      int64 `env:"UPLOAD_MAX_SIZE_BYTES" envDefault:"524288000"`
	MultipartMemBytes int64 `env:"UPLOAD_MULTIPART_MEM_BYTES" envDefault:"52428800"`
}

// StorageConfig selects where media handed to URL-reference providers is kept.
// PublicBaseURL is the externally reachable prefix that object keys are appended to.
type StorageConfig struct {
	Provider      string `env:"STORAGE_PROVIDER" envDefault:"local"`
	LocalDir      string `env:"STORAGE_LOCAL_DIR" envDefault:"public/uploads"`
	Endpoint      string `env:"STORAGE_ENDPOINT" envDefault:"localhost:9000"`
	Region        string `env:"STORAGE_REGION" envDefault:"us-east-1"`
	Bucket        string `env:"STORAGE_BUCKET" envDefault:"crosspost-uploads"`
	AccessKey     string `env:"STORAGE_ACCESS_KEY" envDefault:"minioadmin"`
	SecretKey     string `env:"STORAGE_SECRET_KEY" envDefault:"minioadmin"`
	UseSSL        bool   `env:"STORAGE_USE_SSL" envDefault:"false"`
	PublicBaseURL string `env:"STORAGE_PUBLIC_BASE_URL" envDefault:"http://localhost:8080/uploads"`
}

// PostizConfig is intentionally default-free: missing values are reported per
// dispatch as configuration errors rather than failing startup.
type PostizConfig struct {
	BaseURL string `env:"POSTIZ_BASE_URL"`
	APIKey  string `env:"POSTIZ_API_KEY"`
}

type BlotatoConfig struct {
	APIKey      string `env:"BLOTATO_API_KEY"`
	MediaURL    string `env:"BLOTATO_MEDIA_URL" envDefault:"https://backend.blotato.com/v2/media"`
	ProfilesURL string `env:"BLOTATO_PROFILES_URL"`
}

type ReportConfig struct {
	WebhookURL   string        `env:"REPORT_WEBHOOK_URL"`
	APIKey       string        `env:"REPORT_API_KEY"`
	Timeout      time.Duration `env:"REPORT_TIMEOUT" envDefault:"30s"`
	KafkaEnabled bool          `env:"REPORT_KAFKA_ENABLED" envDefault:"false"`
}

type KafkaConfig struct {
	Brokers          []string      `env:"KAFKA_BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	ReportTopic      string        `env:"KAFKA_REPORT_TOPIC" envDefault:"crosspost.publish.results"`
	Retries          int           `env:"KAFKA_RETRIES" envDefault:"3"`
	CompressionCodec string        `env:"KAFKA_COMPRESSION_CODEC" envDefault:"snappy"`
	BatchSize        int           `env:"KAFKA_BATCH_SIZE" envDefault:"1"`
	BatchTimeout     time.Duration `env:"KAFKA_BATCH_TIMEOUT" envDefault:"50ms"`
}

type DispatchConfig struct {
	Timeout     time.Duration `env:"DISPATCH_TIMEOUT" envDefault:"10m"`
	Concurrency int           `env:"DISPATCH_CONCURRENCY" envDefault:"1"`
}

type TracingConfig struct {
	Endpoint     string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Insecure     bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"true"`
	SampleRatio  float64 `env:"OTEL_TRACES_SAMPLER_RATIO" envDefault:"1.0"`
	ResourceAttr string  `env:"OTEL_RESOURCE_ATTRIBUTES" envDefault:"service.namespace=crosspost"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
