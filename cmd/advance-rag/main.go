// Command advance-rag runs the query-answering pipeline from the terminal.
//
// Usage:
//
//	advance-rag ask --docs corpus.jsonl "What is a vector index?"
//	advance-rag ask --config config.yaml "1. What is A? 2. What is B?"
//	advance-rag version
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	advancerag "github.com/RaghavOG/advance-rag"
	"github.com/RaghavOG/advance-rag/config"
	"github.com/RaghavOG/advance-rag/graph"
	"github.com/RaghavOG/advance-rag/internal/metrics"
	"github.com/RaghavOG/advance-rag/internal/telemetry"
	"github.com/RaghavOG/advance-rag/llm"
	"github.com/RaghavOG/advance-rag/llm/embedding"
	"github.com/RaghavOG/advance-rag/providers"
	"github.com/RaghavOG/advance-rag/providers/openai"
	"github.com/RaghavOG/advance-rag/types"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "ask":
		runAsk(os.Args[2:])
	case "version":
		printVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runAsk(args []string) {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	docsPath := fs.String("docs", "", "Path to a JSONL document corpus to load")
	fs.Parse(args)

	prompt := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if prompt == "" {
		fmt.Fprintln(os.Stderr, "ask: a prompt is required")
		os.Exit(1)
	}

	loader := config.NewLoader()
	if *configPath != "" {
		loader = loader.WithConfigPath(*configPath)
	}
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Log)
	defer logger.Sync()

	logger.Info("starting advance-rag",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
	)

	tel, err := telemetry.Init(cfg.Telemetry, cfg.App.Name, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize telemetry: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}()

	collector := metrics.NewCollector(cfg.App.Name, logger)
	provider := buildProvider(cfg, collector, logger)
	embedder := buildEmbedder(cfg)

	eng, err := advancerag.New(
		advancerag.WithConfig(cfg),
		advancerag.WithProvider(provider),
		advancerag.WithEmbedder(embedder),
		advancerag.WithLogger(logger),
		advancerag.WithMetrics(collector),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build pipeline: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	if *docsPath != "" {
		n, err := loadCorpus(ctx, eng, *docsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load corpus: %v\n", err)
			os.Exit(1)
		}
		logger.Info("corpus loaded", zap.Int("documents", n), zap.String("path", *docsPath))
	}

	state, err := eng.Ask(ctx, prompt)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Run failed: %v\n", err)
		os.Exit(1)
	}

	// One clarification round-trip: print the question, read the answer,
	// resume with the combined query.
	if state.Status.Is(types.StatusClarificationNeeded) {
		state, err = resumeWithClarification(ctx, eng, state)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Run failed: %v\n", err)
			os.Exit(1)
		}
	}

	if !state.Status.OK() {
		fmt.Fprintf(os.Stderr, "[%s]\n", state.Status)
	}
	fmt.Println(state.FinalAnswer)
}

func resumeWithClarification(ctx context.Context, eng *advancerag.Engine, state *graph.State) (*graph.State, error) {
	fmt.Printf("%s\n> ", state.Status.Detail)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("reading clarification answer: %w", err)
	}
	clarified := state.CurrentQuery + " " + strings.TrimSpace(answer)
	return eng.Resume(ctx, state.RawPrompt, clarified)
}

// buildProvider creates the chat provider, wrapped with request metrics and
// with the response cache when a cache tier is enabled.
func buildProvider(cfg *config.Config, collector *metrics.Collector, logger *zap.Logger) llm.Provider {
	provider := openai.New(providers.OpenAIConfig{
		APIKey:     cfg.LLM.APIKey,
		BaseURL:    cfg.LLM.BaseURL,
		Model:      cfg.LLM.DefaultModel,
		Timeout:    cfg.LLM.Timeout,
		MaxRetries: cfg.LLM.MaxRetries,
	}, logger)

	var cache *llm.MultiLevelCache
	if cfg.Cache.EnableLocal || cfg.Cache.EnableRedis {
		var rdb *redis.Client
		if cfg.Cache.EnableRedis {
			rdb = redis.NewClient(&redis.Options{
				Addr:     cfg.Cache.RedisAddr,
				Password: cfg.Cache.RedisPassword,
				DB:       cfg.Cache.RedisDB,
			})
		}
		cache = llm.NewMultiLevelCache(rdb, &llm.CacheConfig{
			LocalMaxSize: cfg.Cache.LocalMaxSize,
			LocalTTL:     cfg.Cache.LocalTTL,
			RedisTTL:     cfg.Cache.RedisTTL,
			EnableLocal:  cfg.Cache.EnableLocal,
			EnableRedis:  cfg.Cache.EnableRedis,
		}, logger)
	}
	return llm.NewCachedProvider(provider, cache, collector, logger)
}

func buildEmbedder(cfg *config.Config) embedding.Provider {
	apiKey := cfg.Embedding.APIKey
	if apiKey == "" {
		apiKey = cfg.LLM.APIKey
	}
	return embedding.NewOpenAIProvider(embedding.OpenAIConfig{
		APIKey:     apiKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Timeout:    cfg.Embedding.Timeout,
	})
}

func initLogger(cfg config.LogConfig) *zap.Logger {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var encoderConfig zapcore.EncoderConfig
	encoding := "json"
	if cfg.Format == "console" {
		encoding = "console"
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	outputPaths := cfg.OutputPaths
	if len(outputPaths) == 0 {
		outputPaths = []string{"stderr"}
	}

	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      cfg.Format == "console",
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      outputPaths,
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := zapConfig.Build(
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}

func printVersion() {
	fmt.Printf("advance-rag %s\n", Version)
	fmt.Printf("  Build Time: %s\n", BuildTime)
	fmt.Printf("  Git Commit: %s\n", GitCommit)
}

func printUsage() {
	fmt.Println(`advance-rag - retrieval-augmented query answering

Usage:
  advance-rag <command> [options]

Commands:
  ask       Answer a prompt against a document corpus
  version   Show version information
  help      Show this help message

Options for 'ask':
  --config <path>   Path to configuration file (YAML)
  --docs <path>     Path to a JSONL document corpus to load`)
}
