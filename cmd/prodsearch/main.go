package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/prodsearch/internal/cache"
	"github.com/kailas-cloud/prodsearch/internal/catalog"
	"github.com/kailas-cloud/prodsearch/internal/config"
	dbRedis "github.com/kailas-cloud/prodsearch/internal/db/redis"
	"github.com/kailas-cloud/prodsearch/internal/domain"
	"github.com/kailas-cloud/prodsearch/internal/intent"
	"github.com/kailas-cloud/prodsearch/internal/knowledge"
	logpkg "github.com/kailas-cloud/prodsearch/internal/logger"
	"github.com/kailas-cloud/prodsearch/internal/metrics"
	"github.com/kailas-cloud/prodsearch/internal/query"
	"github.com/kailas-cloud/prodsearch/internal/ranking"
	"github.com/kailas-cloud/prodsearch/internal/repository/embcache"
	"github.com/kailas-cloud/prodsearch/internal/retrieval"
	searchuc "github.com/kailas-cloud/prodsearch/internal/search"
	chiTransport "github.com/kailas-cloud/prodsearch/internal/transport/chi"
	openaiProv "github.com/kailas-cloud/prodsearch/internal/transport/openai"
	"github.com/kailas-cloud/prodsearch/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting prodsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
	)

	// Register pipeline metrics explicitly (no init())
	metrics.RegisterProviderMetrics()
	metrics.RegisterSearchMetrics()

	ctx := context.Background()

	// Product catalog: configured file or the embedded demo set
	var snap *catalog.Snapshot
	if cfg.Catalog.Path != "" {
		snap, err = catalog.LoadFile(cfg.Catalog.Path, logger)
	} else {
		snap, err = catalog.Demo(logger)
	}
	if err != nil {
		logger.Fatal("Failed to load catalog", zap.Error(err))
	}
	logger.Info("Catalog loaded", zap.Int("products", snap.Len()), zap.Int("max_id", snap.MaxID()))

	// Shared embedding cache: Redis when configured, in-process otherwise
	var redisStore *dbRedis.Store
	if len(cfg.Redis.Addrs) > 0 {
		redisStore, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Redis.Addrs,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			logger.Fatal("Failed to create redis store", zap.Error(err))
		}
		defer redisStore.Close()

		readiness := time.Duration(cfg.Redis.ReadinessTimeout) * time.Second
		if err := redisStore.WaitForReady(ctx, readiness); err != nil {
			logger.Fatal("Redis not ready", zap.Error(err))
		}
		logger.Info("Connected to redis", zap.Strings("addrs", cfg.Redis.Addrs))
	}

	embedder := buildEmbedder(cfg, redisStore, logger)

	// LLM provider for spell correction and low-confidence intent refinement.
	// Pass nil interface (not typed nil pointer!) when unconfigured.
	var speller domain.SpellCorrector
	var intentLLM domain.IntentProvider
	if cfg.LLM.APIKey != "" {
		chat := openaiProv.NewChat(&openaiProv.ChatConfig{
			APIKey:   cfg.LLM.APIKey,
			BaseURL:  cfg.LLM.BaseURL,
			Model:    cfg.LLM.Model,
			Provider: cfg.LLM.Provider,
			Logger:   logger,
		})
		speller = chat
		intentLLM = chat
		logger.Info("LLM provider configured",
			zap.String("provider", cfg.LLM.Provider),
			zap.String("model", cfg.LLM.Model),
		)
	}

	// Result cache with a background sweeper for entries never read again
	resultCache := cache.New[domain.SearchResult](
		cfg.Cache.MaxSize,
		time.Duration(cfg.Cache.DefaultTTLSec)*time.Second,
	)
	sweepCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	resultCache.StartSweeper(sweepCtx, time.Duration(cfg.Cache.SweepIntervalSec)*time.Second)

	// Pipeline stages
	kb := knowledge.Default()
	normalizer := query.NewNormalizer(kb, speller, logger)
	expander := query.NewExpander(kb)
	classifier := intent.NewClassifier(kb, intentLLM, cfg.Search.LLMConfidenceThreshold, logger)
	retriever := retrieval.New(snap, embedder, cfg.Search.SimilarityThreshold, logger)
	ranker := ranking.New(kb, snap.MaxID(), cfg.Search.ExactMatchCap)

	searchSvc := searchuc.New(
		normalizer, expander, classifier, retriever, ranker, resultCache, logger,
		searchuc.Options{
			MaxResults:      cfg.Search.MaxResults,
			ExternalTimeout: time.Duration(cfg.Search.ExternalTimeoutSec) * time.Second,
			ResultTTL:       time.Duration(cfg.Search.ResultTTLSec) * time.Second,
		},
	)

	var checks []chiTransport.HealthCheck
	if redisStore != nil {
		checks = append(checks, chiTransport.HealthCheck{Name: "redis", Check: redisStore.Ping})
	}

	server := chiTransport.NewServer(searchSvc, checks, logger)
	router := chiTransport.NewRouter(server, cfg.Auth.APIKeys, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached.
// Returns a nil interface when no provider is configured; retrieval then
// runs on its token-overlap path.
func buildEmbedder(cfg config.Config, redisStore *dbRedis.Store, logger *zap.Logger) domain.Embedder {
	if cfg.Embedding.APIKey == "" {
		logger.Info("No embedding provider configured, semantic retrieval disabled")
		return nil
	}

	base := openaiProv.NewEmbedder(&openaiProv.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})
	logger.Info("Embedding provider configured",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	if redisStore != nil {
		return embcache.New(base, redisStore, metrics.EmbeddingCacheTotal, logger)
	}
	mem := embcache.NewMemoryStore(
		cfg.Cache.MaxSize,
		time.Duration(cfg.Cache.DefaultTTLSec)*time.Second,
	)
	return embcache.New(base, mem, metrics.EmbeddingCacheTotal, logger)
}
