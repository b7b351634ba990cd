package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/stagewave/catalog-sync/internal/audit"
	catalogbiz "github.com/stagewave/catalog-sync/internal/catalog/biz"
	catalogdata "github.com/stagewave/catalog-sync/internal/catalog/data"
	catalogservice "github.com/stagewave/catalog-sync/internal/catalog/service"
	"github.com/stagewave/catalog-sync/internal/conf"
	"github.com/stagewave/catalog-sync/internal/data"
	"github.com/stagewave/catalog-sync/internal/pkg/logger"
	"github.com/stagewave/catalog-sync/internal/server"
)

var (
	configFile = flag.String("config", "config.yaml", "config file path")
)

func main() {
	flag.Parse()

	config, err := conf.LoadConfig(*configFile)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logConfig := &logger.Config{
		Level:            config.Log.Level,
		Format:           config.Log.Format,
		Output:           config.Log.Output,
		EnableCaller:     config.Log.EnableCaller,
		EnableStacktrace: config.Log.EnableStacktrace,
		File: logger.FileConfig{
			Filename:   config.Log.File.Filename,
			MaxSize:    config.Log.File.MaxSize,
			MaxAge:     config.Log.File.MaxAge,
			MaxBackups: config.Log.File.MaxBackups,
			Compress:   config.Log.File.Compress,
		},
	}

	log, err := logger.New(logConfig)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	if err := logger.InitGlobal(logConfig); err != nil {
		log.Fatal("failed to initialize global logger", zap.Error(err))
	}

	log.Info("config loaded successfully")

	d, cleanup, err := data.NewData(config, log.Logger)
	if err != nil {
		log.Fatal("failed to initialize data layer", zap.Error(err))
	}
	defer cleanup()

	// Repositories and use cases
	eventRepo := catalogdata.NewEventRepo(d.DB)
	musicRepo := catalogdata.NewMusicRepo(d.DB)
	reconcileUseCase := catalogbiz.NewReconcileUseCase(eventRepo, musicRepo, log.Logger)
	trail := audit.NewTrail(d.RedisClient, log.Logger)

	// Services
	webhookService := catalogservice.NewWebhookService(
		reconcileUseCase,
		trail,
		d,
		config.Webhook.Secret,
		log.Logger,
	)

	httpServer := server.NewHTTPServer(config, log, webhookService)

	go func() {
		if err := httpServer.Start(); err != nil {
			log.Fatal("failed to start HTTP server", zap.Error(err))
		}
	}()

	log.Info("server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Stop(ctx); err != nil {
		log.Error("HTTP server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}
