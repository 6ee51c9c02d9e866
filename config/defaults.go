// Default values for every configuration section: small top-k, three
// sub-questions per prompt, two generation retries, and a 0.2 retrieval
// confidence floor.
package config

import "time"

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		App:         DefaultAppConfig(),
		LLM:         DefaultLLMConfig(),
		Embedding:   DefaultEmbeddingConfig(),
		VectorStore: DefaultVectorStoreConfig(),
		Retrieval:   DefaultRetrievalConfig(),
		Decompose:   DefaultDecomposeConfig(),
		Rewrite:     DefaultRewriteConfig(),
		Ambiguity:   DefaultAmbiguityConfig(),
		Compression: DefaultCompressionConfig(),
		Generation:  DefaultGenerationConfig(),
		Cache:       DefaultCacheConfig(),
		Telemetry:   DefaultTelemetryConfig(),
		Log:         DefaultLogConfig(),
	}
}

// DefaultAppConfig returns default application metadata.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Name: "advance-rag",
		Env:  "development",
	}
}

// DefaultLLMConfig returns default chat provider settings.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		BaseURL:      "https://api.openai.com/v1",
		DefaultModel: "gpt-4.1-mini",
		Timeout:      30 * time.Second,
		MaxRetries:   3,
	}
}

// DefaultEmbeddingConfig returns default embedder settings.
func DefaultEmbeddingConfig() EmbeddingConfig {
	return EmbeddingConfig{
		BaseURL: "https://api.openai.com/v1",
		Model:   "text-embedding-3-small",
		Timeout: 30 * time.Second,
	}
}

// DefaultVectorStoreConfig returns default vector store settings.
func DefaultVectorStoreConfig() VectorStoreConfig {
	return VectorStoreConfig{
		Backend:        "memory",
		TextCollection: "text_index",
	}
}

// DefaultRetrievalConfig returns default retrieval settings.
func DefaultRetrievalConfig() RetrievalConfig {
	return RetrievalConfig{
		TopKText:            5,
		TopKImage:           3,
		TopKAudio:           3,
		ConfidenceThreshold: 0.2,
	}
}

// DefaultDecomposeConfig returns default decomposition settings.
func DefaultDecomposeConfig() DecomposeConfig {
	return DecomposeConfig{
		MaxSubQueries: 3,
	}
}

// DefaultRewriteConfig returns default rewriting settings.
func DefaultRewriteConfig() RewriteConfig {
	return RewriteConfig{
		Enabled:     true,
		Model:       "gpt-4.1-mini",
		MaxRewrites: 4,
		MaxTokens:   300,
		Temperature: 0.3,
		Timeout:     20 * time.Second,
	}
}

// DefaultAmbiguityConfig returns default ambiguity classification settings.
func DefaultAmbiguityConfig() AmbiguityConfig {
	return AmbiguityConfig{
		Enabled: true,
		Model:   "gpt-4.1-mini",
		Timeout: 15 * time.Second,
	}
}

// DefaultCompressionConfig returns default compression settings.
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		Model:            "gpt-4.1-mini",
		MaxTokens:        500,
		MaxContextTokens: 4000,
		TokenizerModel:   "gpt-4o",
		Timeout:          30 * time.Second,
	}
}

// DefaultGenerationConfig returns default generation settings.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Model:           "gpt-4.1-mini",
		Temperature:     0.2,
		MaxOutputTokens: 800,
		Timeout:         40 * time.Second,
		MaxRetries:      2,
	}
}

// DefaultCacheConfig returns default LLM cache settings.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		EnableLocal:  true,
		EnableRedis:  false,
		RedisAddr:    "localhost:6379",
		RedisDB:      0,
		LocalMaxSize: 1000,
		LocalTTL:     5 * time.Minute,
		RedisTTL:     time.Hour,
	}
}

// DefaultTelemetryConfig returns default telemetry settings. Export is off
// until an OTLP collector is actually available.
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		SampleRate:   1.0,
	}
}

// DefaultLogConfig returns default logging settings.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:       "info",
		Format:      "console",
		OutputPaths: []string{"stdout"},
	}
}
