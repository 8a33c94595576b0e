package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"financas/internal/amqp"
	"financas/internal/cache"
	"financas/internal/cli"
	apphttp "financas/internal/http"
	"financas/internal/log"
	"financas/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	be, err := cli.OpenBackend(context.Background(), logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize data backend",
			log.FieldBackend, cfg.DataBackend,
			log.FieldError, err)
		os.Exit(1)
	}
	defer be.Close()

	reader := cache.WithCategoryCache(be.Reader, cfg.CategoryCacheSize, cfg.CategoryCacheTTL)
	caches := cache.NewManager(logger)
	caches.Register(reader.Categories)
	caches.StartCleanup(time.Minute)

	var (
		publisher  services.ExportPublisher
		amqpClient *amqp.Client
	)
	if cfg.AMQPEnabled() {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		publisher = amqpClient
		logger.Info("Asynchronous exports enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("Asynchronous exports disabled - no AMQP_URL provided")
	}

	svc := services.NewReportService(reader, publisher, logger)
	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		RequestTimeout:   cfg.RequestTimeout,
		ExportsPerMinute: cfg.RateLimit,
		Logger:           logger,
		Ready: map[string]apphttp.ReadinessCheck{
			cfg.DataBackend: func(ctx context.Context) error {
				_, err := be.Reader.ListCategories(ctx, "readyz")
				return err
			},
		},
	})
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		caches.Stop()
		if amqpClient != nil {
			amqpClient.Close()
		}
	})

	logger.Info("Starting financas server",
		log.FieldOperation, log.OpStartup,
		"port", cfg.Port,
		log.FieldBackend, cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
