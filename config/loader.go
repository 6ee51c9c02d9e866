// Unified configuration loading for the advance-rag pipeline.
//
// Usage:
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("config.yaml").
//	    WithEnvPrefix("ADVANCERAG").
//	    Load()
//
// Precedence: defaults → YAML file → environment variables.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete configuration for the pipeline and its
// collaborator clients.
type Config struct {
	// App application metadata
	App AppConfig `yaml:"app" env:"APP"`

	// LLM chat provider defaults
	LLM LLMConfig `yaml:"llm" env:"LLM"`

	// Embedding embedder client
	Embedding EmbeddingConfig `yaml:"embedding" env:"EMBEDDING"`

	// VectorStore vector store selection
	VectorStore VectorStoreConfig `yaml:"vector_store" env:"VECTOR_STORE"`

	// Retrieval top-k and confidence gating
	Retrieval RetrievalConfig `yaml:"retrieval" env:"RETRIEVAL"`

	// Decompose query decomposition limits
	Decompose DecomposeConfig `yaml:"decompose" env:"DECOMPOSE"`

	// Rewrite query rewriting / hypothetical probe generation
	Rewrite RewriteConfig `yaml:"rewrite" env:"REWRITE"`

	// Ambiguity ambiguity classification
	Ambiguity AmbiguityConfig `yaml:"ambiguity" env:"AMBIGUITY"`

	// Compression context compression
	Compression CompressionConfig `yaml:"compression" env:"COMPRESSION"`

	// Generation answer generation
	Generation GenerationConfig `yaml:"generation" env:"GENERATION"`

	// Cache LLM response cache
	Cache CacheConfig `yaml:"cache" env:"CACHE"`

	// Telemetry OpenTelemetry export
	Telemetry TelemetryConfig `yaml:"telemetry" env:"TELEMETRY"`

	// Log logging configuration
	Log LogConfig `yaml:"log" env:"LOG"`
}

// AppConfig application metadata.
type AppConfig struct {
	// Application name, used as the metrics namespace
	Name string `yaml:"name" env:"NAME"`
	// Environment: development, staging, production
	Env string `yaml:"env" env:"ENV"`
}

// LLMConfig chat provider defaults.
type LLMConfig struct {
	// API key
	APIKey string `yaml:"api_key" env:"API_KEY"`
	// Base URL of the OpenAI-compatible endpoint
	BaseURL string `yaml:"base_url" env:"BASE_URL"`
	// Default model when a per-call model is not configured
	DefaultModel string `yaml:"default_model" env:"DEFAULT_MODEL"`
	// Default request timeout
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
	// Transport-level retries inside the provider client
	MaxRetries int `yaml:"max_retries" env:"MAX_RETRIES"`
}

// EmbeddingConfig embedder client.
type EmbeddingConfig struct {
	// API key (falls back to LLM.APIKey when empty)
	APIKey string `yaml:"api_key" env:"API_KEY"`
	// Base URL of the embeddings endpoint
	BaseURL string `yaml:"base_url" env:"BASE_URL"`
	// Embedding model
	Model string `yaml:"model" env:"MODEL"`
	// Output dimensions (0 = model default)
	Dimensions int `yaml:"dimensions" env:"DIMENSIONS"`
	// Request timeout
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// VectorStoreConfig vector store selection.
type VectorStoreConfig struct {
	// Backend: memory (built in); external backends are injected by the caller
	Backend string `yaml:"backend" env:"BACKEND"`
	// Logical collection for text chunks
	TextCollection string `yaml:"text_collection" env:"TEXT_COLLECTION"`
}

// RetrievalConfig top-k defaults and the confidence gate.
type RetrievalConfig struct {
	// Base top-k for text retrieval
	TopKText int `yaml:"top_k_text" env:"TOP_K_TEXT"`
	// Top-k for image retrieval (carried through state, text-only pipeline)
	TopKImage int `yaml:"top_k_image" env:"TOP_K_IMAGE"`
	// Top-k for audio retrieval (carried through state, text-only pipeline)
	TopKAudio int `yaml:"top_k_audio" env:"TOP_K_AUDIO"`
	// Minimum best confidence required after merging; 0 disables the gate
	ConfidenceThreshold float64 `yaml:"confidence_threshold" env:"CONFIDENCE_THRESHOLD"`
}

// DecomposeConfig query decomposition limits.
type DecomposeConfig struct {
	// Hard cap on sub-questions per prompt
	MaxSubQueries int `yaml:"max_sub_queries" env:"MAX_SUB_QUERIES"`
}

// RewriteConfig query rewriting and hypothetical probe generation.
type RewriteConfig struct {
	// Master toggle; when false the original query is the sole rewrite
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// Model for rewrites and probe documents
	Model string `yaml:"model" env:"MODEL"`
	// Cap on rewrites, original included
	MaxRewrites int `yaml:"max_rewrites" env:"MAX_REWRITES"`
	// Max tokens for a probe document
	MaxTokens int `yaml:"max_tokens" env:"MAX_TOKENS"`
	// Sampling temperature
	Temperature float64 `yaml:"temperature" env:"TEMPERATURE"`
	// Request timeout
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// AmbiguityConfig ambiguity classification.
type AmbiguityConfig struct {
	// Master toggle; when false every query is treated as unambiguous
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// Classification model
	Model string `yaml:"model" env:"MODEL"`
	// Request timeout
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// CompressionConfig context compression.
type CompressionConfig struct {
	// Compression model
	Model string `yaml:"model" env:"MODEL"`
	// Max tokens for the compressed output
	MaxTokens int `yaml:"max_tokens" env:"MAX_TOKENS"`
	// Token budget for the document snippets sent to the compressor
	MaxContextTokens int `yaml:"max_context_tokens" env:"MAX_CONTEXT_TOKENS"`
	// Tokenizer model used for token counting
	TokenizerModel string `yaml:"tokenizer_model" env:"TOKENIZER_MODEL"`
	// Request timeout
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// GenerationConfig answer generation.
type GenerationConfig struct {
	// Answer model
	Model string `yaml:"model" env:"MODEL"`
	// Sampling temperature
	Temperature float64 `yaml:"temperature" env:"TEMPERATURE"`
	// Max output tokens
	MaxOutputTokens int `yaml:"max_output_tokens" env:"MAX_OUTPUT_TOKENS"`
	// Request timeout
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
	// Retry ceiling before the run takes the timeout-failure path
	MaxRetries int `yaml:"max_retries" env:"MAX_RETRIES"`
}

// CacheConfig LLM response cache.
type CacheConfig struct {
	// Enable the local LRU tier
	EnableLocal bool `yaml:"enable_local" env:"ENABLE_LOCAL"`
	// Enable the Redis tier
	EnableRedis bool `yaml:"enable_redis" env:"ENABLE_REDIS"`
	// Redis address
	RedisAddr string `yaml:"redis_addr" env:"REDIS_ADDR"`
	// Redis password
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	// Redis database number
	RedisDB int `yaml:"redis_db" env:"REDIS_DB"`
	// Local tier capacity
	LocalMaxSize int `yaml:"local_max_size" env:"LOCAL_MAX_SIZE"`
	// Local tier TTL
	LocalTTL time.Duration `yaml:"local_ttl" env:"LOCAL_TTL"`
	// Redis tier TTL
	RedisTTL time.Duration `yaml:"redis_ttl" env:"REDIS_TTL"`
}

// TelemetryConfig OpenTelemetry trace and metric export.
type TelemetryConfig struct {
	// Enabled turns OTLP export on; when false the global providers stay noop
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// OTLPEndpoint gRPC endpoint of the collector
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	// SampleRate trace sampling ratio in [0,1]
	SampleRate float64 `yaml:"sample_rate" env:"SAMPLE_RATE"`
}

// LogConfig logging configuration.
type LogConfig struct {
	// Level: debug, info, warn, error
	Level string `yaml:"level" env:"LEVEL"`
	// Format: json, console
	Format string `yaml:"format" env:"FORMAT"`
	// Output paths
	OutputPaths []string `yaml:"output_paths" env:"OUTPUT_PATHS"`
}

// Loader loads configuration with builder-style options.
type Loader struct {
	configPath string
	envPrefix  string
	validators []func(*Config) error
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		envPrefix:  "ADVANCERAG",
		validators: make([]func(*Config) error, 0),
	}
}

// WithConfigPath sets the YAML config file path.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvPrefix sets the environment variable prefix.
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// WithValidator adds a configuration validator.
func (l *Loader) WithValidator(v func(*Config) error) *Loader {
	l.validators = append(l.validators, v)
	return l
}

// Load loads the configuration.
// Precedence: defaults → YAML file → environment variables.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if l.configPath != "" {
		if err := l.loadFromFile(cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := l.loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	for _, v := range l.validators {
		if err := v(cfg); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}

	return cfg, nil
}

func (l *Loader) loadFromFile(cfg *Config) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Missing file is not an error, defaults apply.
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

func (l *Loader) loadFromEnv(cfg *Config) error {
	return l.setFieldsFromEnv(reflect.ValueOf(cfg).Elem(), l.envPrefix)
}

func (l *Loader) setFieldsFromEnv(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		envTag := fieldType.Tag.Get("env")
		if envTag == "" || envTag == "-" {
			continue
		}

		envKey := prefix + "_" + envTag

		if field.Kind() == reflect.Struct && field.Type() != reflect.TypeOf(time.Duration(0)) {
			if err := l.setFieldsFromEnv(field, envKey); err != nil {
				return err
			}
			continue
		}

		envValue := os.Getenv(envKey)
		if envValue == "" {
			continue
		}

		if err := setFieldValue(field, envValue); err != nil {
			return fmt.Errorf("failed to set %s: %w", envKey, err)
		}
	}

	return nil
}

func setFieldValue(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return err
			}
			field.SetInt(i)
		}

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			field.Set(reflect.ValueOf(parts))
		}
	}

	return nil
}

// MustLoad loads configuration and panics on failure.
func MustLoad(path string) *Config {
	cfg, err := NewLoader().WithConfigPath(path).Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// LoadFromEnv loads configuration from environment variables only.
func LoadFromEnv() (*Config, error) {
	return NewLoader().Load()
}
