// cmd/prediction-server/main.go
package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	appaws "vehicle-insurance-pipeline/internal/common/aws"
	"vehicle-insurance-pipeline/internal/common/config"
	"vehicle-insurance-pipeline/internal/common/database"
	"vehicle-insurance-pipeline/internal/common/logger"
	"vehicle-insurance-pipeline/internal/registry"
	"vehicle-insurance-pipeline/internal/server"
)

func main() {
	zapLog := logger.New("info", "json")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting prediction server...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Model registry ---
	var store registry.ModelStore
	if cfg.Pipeline.Model.Bucket != "" {
		s3Client, err := appaws.NewS3Client(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			zapLog.Fatal("S3 init failed", zap.Error(err))
		}
		store = registry.NewS3Store(s3Client, cfg.Pipeline.Model.Bucket)
	} else {
		store = registry.NewFSStore(cfg.Pipeline.ArtifactsDir)
	}

	model := registry.NewCloudModel(store, cfg.Pipeline.Model.Key)
	if _, err := model.Reload(ctx); err != nil {
		zapLog.Warn("no production model at startup, serving degraded", zap.Error(err))
	}

	// --- Prediction cache (optional) ---
	var cache server.Cache
	if cfg.Database.Redis.Address != "" {
		redisClient, err := database.NewRedis(cfg.Database.Redis)
		if err != nil {
			zapLog.Warn("Redis unavailable, prediction cache disabled", zap.Error(err))
		} else {
			cache = redisClient
			defer redisClient.Close()
		}
	}

	// --- Prediction audit trail (optional) ---
	var audit *database.AuditStore
	if cfg.Database.Postgres.Host != "" {
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			zapLog.Warn("Postgres unavailable, prediction audit disabled", zap.Error(err))
		} else {
			defer pg.Close()
			audit = database.NewAuditStore(pg.DB)
			if err := audit.EnsureSchema(ctx); err != nil {
				zapLog.Warn("audit schema init failed, prediction audit disabled", zap.Error(err))
				audit = nil
			}
		}
	}

	app, err := server.NewApplication(cfg, log, model, cache, audit)
	if err != nil {
		zapLog.Fatal("application init failed", zap.Error(err))
	}

	if err := app.Serve(ctx); err != nil && err != http.ErrServerClosed {
		zapLog.Fatal("server stopped", zap.Error(err))
	}

	zapLog.Info("prediction server shut down")
}
