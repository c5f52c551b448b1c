package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/lab-grader/internal/bootstrap"
	"github.com/kirillkom/lab-grader/internal/config"
	"github.com/kirillkom/lab-grader/internal/observability/logging"
	"github.com/kirillkom/lab-grader/internal/observability/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := logging.NewJSONLogger("worker", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics_server_error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeBatchQueued(ctx, func(handlerCtx context.Context, batchID string) error {
		if batch, err := app.Repo.GetBatch(handlerCtx, batchID); err == nil {
			workerMetrics.ObserveQueueLag("worker", time.Since(batch.CreatedAt))
		}

		workerMetrics.StartBatch()
		start := time.Now()
		gradeErr := app.GradeUC.GradeByID(handlerCtx, batchID)
		workerMetrics.FinishBatch("worker", time.Since(start), gradeErr)
		return gradeErr
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
