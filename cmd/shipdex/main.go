package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/fleetscope/shipdex/internal/config"
	"github.com/fleetscope/shipdex/internal/corpus"
	dbRedis "github.com/fleetscope/shipdex/internal/db/redis"
	"github.com/fleetscope/shipdex/internal/index"
	logpkg "github.com/fleetscope/shipdex/internal/logger"
	"github.com/fleetscope/shipdex/internal/metrics"
	classrepo "github.com/fleetscope/shipdex/internal/repository/classification"
	chiTransport "github.com/fleetscope/shipdex/internal/transport/chi"
	cataloguc "github.com/fleetscope/shipdex/internal/usecase/catalog"
	classifyuc "github.com/fleetscope/shipdex/internal/usecase/classify"
	healthuc "github.com/fleetscope/shipdex/internal/usecase/health"
	searchuc "github.com/fleetscope/shipdex/internal/usecase/search"
	"github.com/fleetscope/shipdex/internal/version"
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

	logger.Info("Starting shipdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("corpus_path", cfg.Corpus.Path),
	)

	// Load the corpus and fit the feature index once, at startup.
	crp, err := corpus.Load(cfg.Corpus.Path, corpus.Options{GroupColumn: cfg.Corpus.GroupColumn})
	if err != nil {
		logger.Fatal("Failed to load corpus", zap.Error(err))
	}
	idx, err := index.Build(crp)
	if err != nil {
		logger.Fatal("Failed to build feature index", zap.Error(err))
	}
	logger.Info("Feature index built", zap.Int("records", idx.Len()))

	// Register Prometheus metrics explicitly (no init())
	metrics.RegisterSearchMetrics()
	metrics.CorpusRecords.Set(float64(idx.Len()))

	ctx := context.Background()

	// The classification cache is optional: without it, classify still
	// works but stored classifications cannot be retrieved.
	var (
		classStore classifyuc.Store
		cachePing  healthuc.CachePinger
	)
	if len(cfg.Cache.Addrs) > 0 {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Username: cfg.Cache.Username,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer store.Close()

		if err := store.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Cache not ready", zap.Error(err))
		}
		logger.Info("Connected to classification cache", zap.Strings("addrs", cfg.Cache.Addrs))

		classStore = classrepo.New(store, time.Duration(cfg.Cache.TTLHours)*time.Hour)
		cachePing = store
	} else {
		logger.Warn("No cache configured; classifications will not be retrievable")
	}

	// Create use case services
	searchSvc := searchuc.New(idx, searchuc.Config{
		Threshold:   cfg.Search.SimilarityThreshold,
		MaxTopK:     cfg.Search.MaxTopK,
		DisableFill: cfg.Search.DisableFill,
	})
	classifySvc := classifyuc.New(searchSvc, classStore, cfg.Search.DefaultTopK, cfg.Search.SimilarityThreshold)
	catalogSvc := cataloguc.New(idx)
	healthSvc := healthuc.New(idx, cachePing)

	// Create chi server
	server := chiTransport.NewServer(searchSvc, classifySvc, catalogSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
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

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
