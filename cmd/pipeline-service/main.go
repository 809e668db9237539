// cmd/pipeline-service/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"recruiting-pipeline/internal/activitylog"
	"recruiting-pipeline/internal/api"
	"recruiting-pipeline/internal/common/config"
	"recruiting-pipeline/internal/common/database"
	"recruiting-pipeline/internal/common/logger"
	"recruiting-pipeline/internal/common/observability"
	"recruiting-pipeline/internal/notify"
	"recruiting-pipeline/internal/pipeline"
	"recruiting-pipeline/internal/search"
	"recruiting-pipeline/internal/stores/postgres"
	"recruiting-pipeline/internal/timeline"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting pipeline service...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("pipeline-service")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Elasticsearch with retry (optional) ---
	var esClient *database.ElasticsearchClient
	if cfg.Search.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(ctx, cfg.Database.Elasticsearch)
			return err
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- Stores ---
	applicationStore := postgres.NewApplicationStore(pg.DB)
	activityStore := postgres.NewActivityStore(pg.DB)
	commentStore := postgres.NewCommentStore(pg.DB)
	compensationStore := postgres.NewCompensationStore(pg.DB)
	offerStore := postgres.NewOfferStore(pg.DB)
	interviewStore := postgres.NewInterviewStore(pg.DB)
	taskStore := postgres.NewTaskStore(pg.DB)
	contactStore := postgres.NewContactStore(pg.DB)

	// --- Timeline read side ---
	timelineService := timeline.NewService(activityStore, cfg.Timeline.PageSize, log).
		WithCache(redis.Client, time.Duration(cfg.Timeline.CacheTTLSeconds)*time.Second).
		WithObservability(obs)

	// --- Activity log with search mirror and cache invalidation ---
	activityLogger := activitylog.New(activityStore, log).
		WithInvalidator(timelineService)

	var searchService *search.Service
	if cfg.Search.Enabled && esClient != nil {
		activityLogger = activityLogger.WithIndexer(
			search.NewIndexer(esClient.Client, cfg.Search.ActivityIndex, log))
		searchService = search.NewService(esClient.Client, cfg.Search.ActivityIndex, log)
		zapLog.Info("Activity search enabled", zap.String("index", cfg.Search.ActivityIndex))
	}

	// --- Notifications ---
	var notifier pipeline.Notifier
	if cfg.Notifications.Email.Enabled || cfg.Notifications.SMS.Enabled {
		sesClient, err := notify.NewSESClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("ses client failed", zap.Error(err))
		}
		snsClient, err := notify.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("sns client failed", zap.Error(err))
		}
		notifier = notify.New(sesClient, snsClient, contactStore, cfg.Notifications, log)
		zapLog.Info("Candidate notifications enabled", zap.String("region", cfg.Notifications.AWS.Region))
	}

	// --- Pipeline write side ---
	engine := pipeline.NewEngine(applicationStore, activityLogger, log)
	if notifier != nil {
		engine = engine.WithNotifier(notifier)
	}
	commentService := pipeline.NewCommentService(applicationStore, commentStore, activityLogger, log)
	compensationService := pipeline.NewCompensationService(applicationStore, compensationStore, commentService, activityLogger, log)
	offerService := pipeline.NewOfferService(applicationStore, offerStore, activityLogger, log)
	interviewService := pipeline.NewInterviewService(applicationStore, interviewStore, activityLogger, log)
	taskService := pipeline.NewTaskService(applicationStore, taskStore, activityLogger, log)

	zapLog.Info("All pipeline services initialized")

	// --- API Server ---
	apiServer := api.NewServer(engine, commentService, compensationService,
		offerService, interviewService, taskService, timelineService, log)
	if searchService != nil {
		apiServer = apiServer.WithSearch(searchService)
	}

	mux := http.NewServeMux()
	apiServer.Routes(mux)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: mux,
	}
	go func() {
		zapLog.Info("API server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("API server failed", zap.Error(err))
		}
	}()

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := pg.Ping(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "not ready",
					"error":  err.Error(),
				})
				return
			}
			if esClient != nil {
				if err := esClient.Ping(r.Context()); err != nil {
					w.WriteHeader(http.StatusServiceUnavailable)
					json.NewEncoder(w).Encode(map[string]string{
						"status": "not ready",
						"error":  err.Error(),
					})
					return
				}
			}
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
		zapLog.Info("Health/Metrics server listening", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping pipeline service...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down API server", zap.Error(err))
	}

	zapLog.Info("Pipeline service stopped gracefully")
}
