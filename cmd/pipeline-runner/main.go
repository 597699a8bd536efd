// cmd/pipeline-runner/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	appaws "vehicle-insurance-pipeline/internal/common/aws"
	"vehicle-insurance-pipeline/internal/common/config"
	"vehicle-insurance-pipeline/internal/common/database"
	"vehicle-insurance-pipeline/internal/common/logger"
	"vehicle-insurance-pipeline/internal/common/observability"
	"vehicle-insurance-pipeline/internal/pipeline"
	"vehicle-insurance-pipeline/internal/registry"
	"vehicle-insurance-pipeline/internal/stages/evaluation"
	"vehicle-insurance-pipeline/internal/stages/ingestion"
	"vehicle-insurance-pipeline/internal/stages/notify"
	"vehicle-insurance-pipeline/internal/stages/pusher"
	"vehicle-insurance-pipeline/internal/stages/training"
	"vehicle-insurance-pipeline/internal/stages/transformation"
	"vehicle-insurance-pipeline/internal/stages/validation"
	stageregistry "vehicle-insurance-pipeline/pkg/registry"
)

// pipelineStages lists the stage IDs this runner executes, in order.
var pipelineStages = []string{
	ingestion.StageName,
	validation.StageName,
	transformation.StageName,
	training.StageName,
	evaluation.StageName,
	pusher.StageName,
	notify.StageName,
}

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

	zapLog.Info("Starting pipeline runner...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	if err := config.ValidatePipeline(cfg); err != nil {
		zapLog.Fatal("invalid pipeline configuration", zap.Error(err))
	}

	checkStageRegistry(cfg, zapLog)

	obs := observability.New("pipeline-runner")
	defer obs.Shutdown()

	tracing, err := observability.NewTracing("pipeline-runner", tracingEndpoint(cfg))
	if err != nil {
		zapLog.Fatal("tracing init failed", zap.Error(err))
	}
	defer tracing.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Init MongoDB feature store with retry ---
	var mongoClient *database.MongoClient
	err = retryWithBackoff(func() error {
		var err error
		mongoClient, err = database.NewMongo(ctx, cfg.Database.MongoDB)
		return err
	}, 5, 2*time.Second, zapLog, "MongoDB initialization")
	if err != nil {
		zapLog.Fatal("MongoDB unavailable", zap.Error(err))
	}
	defer mongoClient.Close(context.Background())

	// --- Init Elasticsearch run-report index (optional) ---
	var reporter pipeline.Reporter
	if cfg.Database.Elasticsearch.GetURL() != "" {
		esClient, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			zapLog.Warn("Elasticsearch unavailable, run reports disabled", zap.Error(err))
		} else {
			reporter = esClient
		}
	}

	// --- Init model registry store ---
	store := modelStore(ctx, cfg, zapLog)

	// --- Init notification channels (optional) ---
	var sesService notify.SESService
	var snsService notify.SNSService
	if cfg.Integrations.AWS.SES.Enabled {
		sesClient, err := appaws.NewSESClient(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			zapLog.Warn("SES unavailable, email notifications disabled", zap.Error(err))
		} else {
			sesService = sesClient
		}
	}
	if cfg.Integrations.AWS.SNS.Enabled {
		snsClient, err := appaws.NewSNSClient(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			zapLog.Warn("SNS unavailable, alerts disabled", zap.Error(err))
		} else {
			snsService = snsClient
		}
	}

	// Expose /metrics and pprof while the run is in flight.
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(":2112", nil); err != nil && err != http.ErrServerClosed {
			zapLog.Warn("metrics listener stopped", zap.Error(err))
		}
	}()

	runner := pipeline.NewRunner(pipeline.Deps{
		Config:         cfg,
		Logger:         log,
		Ingestion:      ingestion.NewHandler(ingestion.LoadConfig(cfg), mongoClient, log),
		Validation:     validation.NewHandler(validation.LoadConfig(cfg), log),
		Transformation: transformation.NewHandler(transformation.LoadConfig(cfg), log),
		Training:       training.NewHandler(training.LoadConfig(cfg), log),
		Evaluation:     evaluation.NewHandler(evaluation.LoadConfig(cfg), store, log),
		Pusher:         pusher.NewHandler(pusher.LoadConfig(cfg), store, log),
		Notify:         notify.NewHandler(notify.LoadConfig(cfg), sesService, snsService, log),
		Reporter:       reporter,
		Observability:  obs,
		Tracing:        tracing,
	})

	report, err := runner.Run(ctx)
	if err != nil {
		zapLog.Error("pipeline run failed",
			zap.String("runId", report.RunID),
			zap.Error(err),
		)
		os.Exit(1)
	}

	zapLog.Info("pipeline run succeeded",
		zap.String("runId", report.RunID),
		zap.Bool("modelAccepted", report.ModelAccepted),
		zap.Bool("modelPushed", report.ModelPushed),
	)
}

// checkStageRegistry cross-checks the runner's stages against the stage
// catalog so a renamed or undocumented stage is caught at startup.
func checkStageRegistry(cfg *config.Config, zapLog *zap.Logger) {
	reg, err := stageregistry.LoadRegistry(cfg.Pipeline.RegistryFile)
	if err != nil {
		zapLog.Warn("stage registry unavailable, skipping catalog check",
			zap.String("path", cfg.Pipeline.RegistryFile),
			zap.Error(err),
		)
		return
	}

	if missing := reg.MissingStages(pipelineStages); len(missing) > 0 {
		zapLog.Fatal("stages missing from the stage registry",
			zap.Strings("stages", missing),
			zap.String("path", cfg.Pipeline.RegistryFile),
		)
	}
}

func tracingEndpoint(cfg *config.Config) string {
	if !cfg.Observability.TracingEnabled {
		return ""
	}
	return cfg.Observability.JaegerEndpoint
}

// modelStore prefers S3 and falls back to the local filesystem so the
// pipeline stays runnable without cloud credentials.
func modelStore(ctx context.Context, cfg *config.Config, zapLog *zap.Logger) registry.ModelStore {
	if cfg.Pipeline.Model.Bucket != "" {
		s3Client, err := appaws.NewS3Client(ctx, cfg.Integrations.AWS.Region)
		if err == nil {
			return registry.NewS3Store(s3Client, cfg.Pipeline.Model.Bucket)
		}
		zapLog.Warn("S3 unavailable, using filesystem model store", zap.Error(err))
	}
	return registry.NewFSStore(cfg.Pipeline.ArtifactsDir)
}
