package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/invoice-analyzer/internal/bootstrap"
	"github.com/kirillkom/invoice-analyzer/internal/config"
	"github.com/kirillkom/invoice-analyzer/internal/observability/logging"
	"github.com/kirillkom/invoice-analyzer/internal/observability/metrics"
)

const serviceName = "invoice-analyzer-worker"

func main() {
	cfg := config.Load()
	logging.Setup(serviceName, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, serviceName, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		log.Printf("worker metrics listening on :%s", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("worker metrics server error: %v", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	log.Printf("worker subscribed to %s", cfg.NATSSubject)
	err = app.Queue.SubscribeDatasetReceived(ctx, func(handlerCtx context.Context, storageKey string) error {
		importCtx, cancel := context.WithTimeout(handlerCtx, 2*time.Minute)
		defer cancel()

		done := workerMetrics.ImportStarted()
		defer done()

		start := time.Now()
		importErr := app.Importer.ImportByKey(importCtx, storageKey)
		workerMetrics.ObserveImport(serviceName, start, importErr)
		return importErr
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
