// Package config loads the clinicrag engine's YAML configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerConfig controls the façade's HTTP listener.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig configures the record store backend (§4.2, C2).
type DatabaseConfig struct {
	Backend string `yaml:"backend"` // memory|postgres
	DSN     string `yaml:"dsn"`
}

// VectorConfig configures the vector index backend (§4.3, C3).
type VectorConfig struct {
	Backend    string `yaml:"backend"` // memory|qdrant|postgres
	DSN        string `yaml:"dsn"`
	Collection string `yaml:"collection"`
	Dimensions int    `yaml:"dimensions"`
	Metric     string `yaml:"metric"` // cosine|l2|ip
}

// S3SSEConfig configures server-side encryption for the S3 object store.
type S3SSEConfig struct {
	Mode     string `yaml:"mode"` // ""|sse-s3|sse-kms
	KMSKeyID string `yaml:"kms_key_id,omitempty"`
}

// S3Config configures the S3-compatible object store backend.
type S3Config struct {
	Bucket                string      `yaml:"bucket"`
	Region                string      `yaml:"region"`
	Endpoint              string      `yaml:"endpoint,omitempty"`
	AccessKey             string      `yaml:"access_key,omitempty"`
	SecretKey             string      `yaml:"secret_key,omitempty"`
	Prefix                string      `yaml:"prefix,omitempty"`
	UsePathStyle          bool        `yaml:"use_path_style,omitempty"`
	TLSInsecureSkipVerify bool        `yaml:"tls_insecure_skip_verify,omitempty"`
	SSE                   S3SSEConfig `yaml:"sse,omitempty"`
}

// ObjectStoreConfig selects and configures the raw-blob storage backend.
type ObjectStoreConfig struct {
	Backend string   `yaml:"backend"` // memory|s3
	S3      S3Config `yaml:"s3"`
}

// ProviderConfig is the common shape for every pluggable C1 adapter
// (ASR, LLM, Embedder, OCR). Not every field applies to every capability.
type ProviderConfig struct {
	Backend   string `yaml:"backend"`
	BaseURL   string `yaml:"base_url,omitempty"`
	Path      string `yaml:"path,omitempty"`
	APIKey    string `yaml:"api_key,omitempty"`
	APIHeader string `yaml:"api_header,omitempty"` // header name used to carry APIKey; "Authorization" means "Bearer <key>"
	Model     string `yaml:"model,omitempty"`
	Timeout   int    `yaml:"timeout_s,omitempty"`
}

// ProvidersConfig groups the four C1 capability configurations.
type ProvidersConfig struct {
	ASR      ProviderConfig `yaml:"asr"`
	LLM      ProviderConfig `yaml:"llm"`
	Embedder ProviderConfig `yaml:"embedder"`
	OCR      ProviderConfig `yaml:"ocr"`
}

// IngestionConfig controls the orchestrator's worker pool (§5, C6).
type IngestionConfig struct {
	MaxWorkers int `yaml:"max_workers"`
	QueueSize  int `yaml:"queue_size"`
}

// DiarizationConfig controls C5 thresholds.
type DiarizationConfig struct {
	MinSegmentSeconds float64 `yaml:"min_segment_s"`
	FuzzyThreshold    float64 `yaml:"fuzzy_threshold"`
}

// RetrievalConfig controls C8 defaults.
type RetrievalConfig struct {
	MaxResults int     `yaml:"max_results"`
	MinScore   float64 `yaml:"min_score"`
}

// OTelConfig controls tracing/metrics export.
type OTelConfig struct {
	Enabled     bool   `yaml:"enabled"`
	OTLP        string `yaml:"otlp_endpoint"`
	ServiceName string `yaml:"service_name"`
	Environment string `yaml:"environment"`
}

// LoggingConfig controls zerolog initialization.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogPath string `yaml:"log_path,omitempty"`
}

// Config is the root configuration document.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Vector      VectorConfig      `yaml:"vector"`
	ObjectStore ObjectStoreConfig `yaml:"objectstore"`
	Providers   ProvidersConfig   `yaml:"providers"`
	Ingestion   IngestionConfig   `yaml:"ingestion"`
	Diarization DiarizationConfig `yaml:"diarization"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	OTel        OTelConfig        `yaml:"otel"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// EmbeddingDimension is the fixed build-time constant D referenced throughout
// §3/§4.3 (reference value 384).
const EmbeddingDimension = 384

// Load reads the configuration from a YAML file and applies defaults.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Database.Backend == "" {
		cfg.Database.Backend = "memory"
	}
	if cfg.Vector.Backend == "" {
		cfg.Vector.Backend = "memory"
	}
	if cfg.Vector.Dimensions == 0 {
		cfg.Vector.Dimensions = EmbeddingDimension
	}
	if cfg.Vector.Metric == "" {
		cfg.Vector.Metric = "cosine"
	}
	if cfg.Vector.Collection == "" {
		cfg.Vector.Collection = "medical_conversations"
	}
	if cfg.ObjectStore.Backend == "" {
		cfg.ObjectStore.Backend = "memory"
	}
	if cfg.Ingestion.MaxWorkers <= 0 {
		cfg.Ingestion.MaxWorkers = 4
	}
	if cfg.Ingestion.QueueSize <= 0 {
		cfg.Ingestion.QueueSize = 64
	}
	if cfg.Diarization.MinSegmentSeconds <= 0 {
		cfg.Diarization.MinSegmentSeconds = 1.0
	}
	if cfg.Diarization.FuzzyThreshold <= 0 {
		cfg.Diarization.FuzzyThreshold = 0.55
	}
	if cfg.Retrieval.MaxResults <= 0 {
		cfg.Retrieval.MaxResults = 10
	}
	if cfg.Retrieval.MinScore <= 0 {
		cfg.Retrieval.MinScore = 0.6
	}
	if cfg.OTel.ServiceName == "" {
		cfg.OTel.ServiceName = "clinicrag"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}
