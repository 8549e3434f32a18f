// cmd/risk-engine/main.go
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

	"edurisk-engine/internal/common/config"
	"edurisk-engine/internal/common/database"
	"edurisk-engine/internal/common/logger"
	"edurisk-engine/internal/common/observability"
	"edurisk-engine/internal/engine"
	"edurisk-engine/internal/store"
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
	defer func() { _ = zapLog.Sync() }()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting risk engine...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	// Rebuild the logger with the configured level and format.
	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log = logger.NewZapAdapter(zapLog)

	obs := observability.New("risk-engine")
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
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Storage collaborators ---
	assessmentStore := store.NewAssessmentStore(pg, log)
	paramStore := store.NewModelParamStore(pg)
	studentStore := store.NewStudentStore(pg)
	cache := store.NewAssessmentCache(rdb, time.Duration(cfg.Database.Redis.TTL)*time.Second, log)
	history := store.NewCachedHistory(cache, assessmentStore)

	if err := assessmentStore.EnsureSchema(ctx); err != nil {
		zapLog.Fatal("assessments schema failed", zap.Error(err))
	}
	if err := paramStore.EnsureSchema(ctx); err != nil {
		zapLog.Fatal("model parameters schema failed", zap.Error(err))
	}

	// --- Engine ---
	riskEngine := engine.New(cfg, engine.Deps{
		Profiles:      studentStore,
		Interventions: studentStore,
		Outcomes:      studentStore,
		Assessments:   history,
		ParamStore:    paramStore,
	}, log)

	riskEngine.Init(ctx)
	zapLog.Info("risk engine ready", zap.String("modelState", riskEngine.ModelState().String()))

	// --- Metrics, health and pprof endpoint ---
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status":     "ok",
			"modelState": riskEngine.ModelState().String(),
		})
	})

	srv := &http.Server{Addr: cfg.Server.MetricsAddr, Handler: mux}
	go func() {
		zapLog.Info("metrics endpoint listening", zap.String("addr", cfg.Server.MetricsAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("metrics server failed", zap.Error(err))
		}
	}()

	// --- Scheduled reassessment sweep ---
	sweepCtx, cancelSweep := context.WithCancel(ctx)
	if cfg.Server.SweepIntervalMin > 0 {
		interval := time.Duration(cfg.Server.SweepIntervalMin) * time.Minute
		go runSweep(sweepCtx, riskEngine, studentStore, history, obs, interval, log)
		zapLog.Info("reassessment sweep scheduled", zap.Duration("interval", interval))
	}

	// --- Wait for shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLog.Info("shutting down...")
	cancelSweep()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("metrics server shutdown failed", zap.Error(err))
	}
}

// runSweep periodically reassesses the whole student population and persists
// the results through the cached history.
func runSweep(
	ctx context.Context,
	riskEngine *engine.Engine,
	students *store.StudentStore,
	history *store.CachedHistory,
	obs *observability.Observability,
	interval time.Duration,
	log logger.Logger,
) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		start := time.Now()
		ids, err := students.StudentIDs(ctx)
		if err != nil {
			log.WithError(err).Error("sweep: student listing failed", nil)
			continue
		}

		assessments := riskEngine.AssessBatch(ctx, ids)
		persisted := 0
		for _, a := range assessments {
			if err := history.Record(ctx, a); err != nil {
				log.WithError(err).Error("sweep: persist failed", map[string]interface{}{
					"studentId": a.StudentID,
				})
				obs.RecordAssessment(ctx, "persist_failed")
				continue
			}
			obs.RecordAssessment(ctx, "persisted")
			persisted++
		}
		obs.RecordAssessmentDuration(ctx, time.Since(start), "sweep")

		log.Info("sweep completed", map[string]interface{}{
			"students":  len(ids),
			"assessed":  len(assessments),
			"persisted": persisted,
		})
	}
}
