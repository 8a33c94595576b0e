package main

import (
	"context"
	"os"
	"time"

	"financas/internal/amqp"
	"financas/internal/cache"
	"financas/internal/cli"
	"financas/internal/log"
	"financas/internal/services"
	"financas/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	logger.Info("Starting export-worker", log.FieldOperation, log.OpStartup)

	cfg := cli.LoadAndValidateConfig(logger)
	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required for the export worker")
		os.Exit(1)
	}
	if err := os.MkdirAll(cfg.ExportDir, 0o755); err != nil {
		logger.Error("Cannot create export directory", "dir", cfg.ExportDir, log.FieldError, err)
		os.Exit(1)
	}

	be, err := cli.OpenBackend(context.Background(), logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize data backend",
			log.FieldBackend, cfg.DataBackend,
			log.FieldError, err)
		os.Exit(1)
	}
	defer be.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	reader := cache.WithCategoryCache(be.Reader, cfg.CategoryCacheSize, cfg.CategoryCacheTTL)
	svc := services.NewReportService(reader, nil, logger)
	exportWorker := worker.NewExportWorker(svc, cfg.ExportDir, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	consumeErr := make(chan error, 1)
	go func() {
		consumeErr <- amqpClient.ConsumeExportRequests(ctx, exportWorker.HandleExportRequested)
	}()
	logger.Info("Consuming export requests", "queue", cfg.AMQPQueue, "export_dir", cfg.ExportDir)

	select {
	case err := <-consumeErr:
		if ctx.Err() == nil {
			logger.Error("Message consumption stopped", log.FieldError, err)
			os.Exit(1)
		}
	case <-ctx.Done():
		<-consumeErr
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
