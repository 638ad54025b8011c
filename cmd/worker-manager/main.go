// cmd/worker-manager/main.go
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

	"agroscore/internal/collect"
	"agroscore/internal/common/camunda"
	"agroscore/internal/common/config"
	"agroscore/internal/common/database"
	"agroscore/internal/common/logger"
	"agroscore/internal/common/observability"
	"agroscore/internal/pipeline"
	"agroscore/internal/store"

	al "agroscore/internal/workers/scoring/assess-loan"
	rd "agroscore/internal/workers/scoring/record-decision"
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
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	tracer := observability.NewTracer(cfg.App.Name, os.Getenv("JAEGER_ENDPOINT"))
	defer tracer.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

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

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redisClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redisClient.Close()
	zapLog.Info("Redis connected successfully")

	// --- Build collectors ---
	var imagery collect.ImagerySource
	if cfg.Imagery.Synthetic {
		imagery = collect.NewSyntheticImagery(cfg.Imagery.SyntheticSeed)
		zapLog.Info("using synthetic imagery source", zap.Int64("seed", cfg.Imagery.SyntheticSeed))
	} else {
		imagery = collect.NewCatalogImagery(
			cfg.Imagery.CatalogURL,
			cfg.Imagery.MaxCloudCover,
			config.GetDuration(cfg.Imagery.Timeout),
		)
	}
	imagery = collect.NewCachedImagery(
		imagery,
		redisClient.Client,
		time.Duration(cfg.Imagery.CacheTTL)*time.Second,
		log,
	)

	var weather collect.WeatherSource
	if cfg.Weather.Synthetic {
		weather = collect.NewSyntheticWeather(cfg.Weather.SyntheticSeed)
		zapLog.Info("using synthetic weather source", zap.Int64("seed", cfg.Weather.SyntheticSeed))
	} else {
		weather = collect.NewProviderWeather(
			cfg.Weather.ProviderURL,
			cfg.Weather.HistoryDays,
			config.GetDuration(cfg.Weather.Timeout),
		)
	}

	orchestrator := pipeline.NewOrchestrator(imagery, weather, log,
		pipeline.WithTracer(tracer),
		pipeline.WithHistoryWindow(cfg.Imagery.LookbackMonths, cfg.Imagery.BaselineYears),
	)

	ledger := store.NewLedger(pg.DB, log)
	indexer := store.NewIndexer(esClient.Client, cfg.Database.Elasticsearch.Index, log)

	// --- Register Workers ---
	var workers []*camunda.Worker
	if cfg.Workers[al.TaskType].Enabled {
		handler := al.NewHandler(
			&al.Config{
				Timeout: config.GetDuration(cfg.Workers[al.TaskType].Timeout),
			},
			orchestrator, log, obs,
		)
		workers = append(workers, startWorker(zeebe, al.TaskType, cfg.Workers[al.TaskType], handler, zapLog))
	}

	if cfg.Workers[rd.TaskType].Enabled {
		handler, err := rd.NewHandler(
			&rd.Config{
				Timeout:      config.GetDuration(cfg.Workers[rd.TaskType].Timeout),
				AWSRegion:    cfg.Notifications.AWS.Region,
				SenderEmail:  cfg.Notifications.Email.FromEmail,
				EmailEnabled: cfg.Notifications.Email.Enabled,
				SMSEnabled:   cfg.Notifications.SMS.Enabled,
			},
			ledger, indexer, log,
		)
		if err != nil {
			zapLog.Fatal("failed to create record-decision handler", zap.Error(err))
		}
		workers = append(workers, startWorker(zeebe, rd.TaskType, cfg.Workers[rd.TaskType], handler, zapLog))
	}

	zapLog.Info("All workers registered successfully")

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := zeebe.HealthCheck(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{"status": "not ready", "reason": err.Error()})
				return
			}
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, w := range workers {
		w.Stop(shutdownCtx)
	}

	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped")
}

func startWorker(client *camunda.Client, taskType string, wcfg config.WorkerConfig, handler camunda.JobHandler, log *zap.Logger) *camunda.Worker {
	w := camunda.NewWorker(
		client.GetClient(),
		taskType,
		wcfg.MaxJobsActive,
		config.GetDuration(wcfg.Timeout),
		handler,
		log,
	)
	w.Start()

	log.Info("worker registered",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
	return w
}
