// Package pipeline orchestrates the training stages end to end.
package pipeline

import (
	"context"
	"time"

	appconfig "vehicle-insurance-pipeline/internal/common/config"
	stderrors "vehicle-insurance-pipeline/internal/common/errors"
	"vehicle-insurance-pipeline/internal/common/logger"
	"vehicle-insurance-pipeline/internal/common/metrics"
	"vehicle-insurance-pipeline/internal/common/observability"
	"vehicle-insurance-pipeline/internal/models"
	"vehicle-insurance-pipeline/internal/stages/evaluation"
	"vehicle-insurance-pipeline/internal/stages/ingestion"
	"vehicle-insurance-pipeline/internal/stages/notify"
	"vehicle-insurance-pipeline/internal/stages/pusher"
	"vehicle-insurance-pipeline/internal/stages/training"
	"vehicle-insurance-pipeline/internal/stages/transformation"
	"vehicle-insurance-pipeline/internal/stages/validation"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// Reporter indexes the final run report for dashboarding.
type Reporter interface {
	IndexDocument(ctx context.Context, index, docID string, doc interface{}) error
}

// Deps wires the stage handlers and optional infrastructure into a Runner.
type Deps struct {
	Config         *appconfig.Config
	Logger         logger.Logger
	Ingestion      *ingestion.Handler
	Validation     *validation.Handler
	Transformation *transformation.Handler
	Training       *training.Handler
	Evaluation     *evaluation.Handler
	Pusher         *pusher.Handler
	Notify         *notify.Handler              // optional
	Reporter       Reporter                     // optional
	Observability  *observability.Observability // optional
	Tracing        *observability.Tracing       // optional
}

type Runner struct {
	deps         Deps
	logger       logger.Logger
	errorHandler *stderrors.ErrorHandler
}

func NewRunner(deps Deps) *Runner {
	log := deps.Logger.WithFields(map[string]interface{}{"component": "pipeline"})
	return &Runner{
		deps:         deps,
		logger:       log,
		errorHandler: stderrors.NewErrorHandler(log),
	}
}

// Run executes ingestion through pusher sequentially, then reports and
// notifies. The returned report is always populated; the error is the first
// non-retryable stage failure.
func (r *Runner) Run(ctx context.Context) (*models.RunReport, error) {
	runID := uuid.New().String()
	report := &models.RunReport{
		RunID:     runID,
		StartedAt: time.Now().UTC(),
		Outcome:   "success",
	}
	log := r.logger.WithFields(map[string]interface{}{"runId": runID})
	log.Info("pipeline run started", nil)

	var (
		ingestionArt      *models.IngestionArtifact
		validationArt     *models.ValidationArtifact
		transformationArt *models.TransformationArtifact
		trainerArt        *models.TrainerArtifact
		evaluationArt     *models.EvaluationArtifact
		pusherArt         *models.PusherArtifact
	)

	runErr := r.runStage(ctx, ingestion.StageName, report, func(ctx context.Context) error {
		var err error
		ingestionArt, err = r.deps.Ingestion.Execute(ctx)
		return err
	})

	if runErr == nil && ingestionArt != nil {
		report.IngestedCount = ingestionArt.TotalRecords
	}

	if runErr == nil && ingestionArt != nil {
		runErr = r.runStage(ctx, validation.StageName, report, func(ctx context.Context) error {
			var err error
			validationArt, err = r.deps.Validation.Execute(ctx, ingestionArt)
			return err
		})
	}

	if runErr == nil && validationArt != nil {
		runErr = r.runStage(ctx, transformation.StageName, report, func(ctx context.Context) error {
			var err error
			transformationArt, err = r.deps.Transformation.Execute(ctx, validationArt, ingestionArt)
			return err
		})
	}

	if runErr == nil && transformationArt != nil {
		runErr = r.runStage(ctx, training.StageName, report, func(ctx context.Context) error {
			var err error
			trainerArt, err = r.deps.Training.Execute(ctx, transformationArt)
			return err
		})
	}

	if runErr == nil && trainerArt != nil {
		report.Metrics = &trainerArt.Metrics
	}

	if runErr == nil && trainerArt != nil {
		runErr = r.runStage(ctx, evaluation.StageName, report, func(ctx context.Context) error {
			var err error
			evaluationArt, err = r.deps.Evaluation.Execute(ctx, ingestionArt, trainerArt)
			return err
		})
	}

	if runErr == nil && evaluationArt != nil {
		report.ModelAccepted = evaluationArt.IsAccepted
	}

	if runErr == nil && evaluationArt != nil {
		runErr = r.runStage(ctx, pusher.StageName, report, func(ctx context.Context) error {
			var err error
			pusherArt, err = r.deps.Pusher.Execute(ctx, evaluationArt)
			return err
		})
	}

	if runErr == nil && pusherArt != nil {
		report.ModelPushed = pusherArt.Pushed
		report.ModelBucket = pusherArt.Bucket
		report.ModelKey = pusherArt.Key
	} else if runErr != nil {
		report.Outcome = "failed"
		report.FailureMessage = runErr.Error()
	}

	report.FinishedAt = time.Now().UTC()
	metrics.RunsCompleted.WithLabelValues(report.Outcome).Inc()

	r.indexReport(ctx, report, log)

	if r.deps.Notify != nil {
		r.deps.Notify.Execute(ctx, report)
	}

	log.Info("pipeline run finished", map[string]interface{}{
		"outcome":  report.Outcome,
		"accepted": report.ModelAccepted,
		"pushed":   report.ModelPushed,
	})

	return report, runErr
}

// runStage applies the per-stage enable flag, timeout, retry policy, metrics
// and tracing around one stage execution.
func (r *Runner) runStage(ctx context.Context, name string, report *models.RunReport, fn func(ctx context.Context) error) error {
	if !appconfig.IsStageEnabled(r.deps.Config, name) {
		r.logger.Warn("stage disabled, skipping", map[string]interface{}{"stage": name})
		report.Stages = append(report.Stages, models.StageResult{
			Stage:  name,
			Status: "skipped",
		})
		return nil
	}

	stageCfg := appconfig.GetStageConfig(r.deps.Config, name)
	started := time.Now().UTC()

	spanCtx := ctx
	if r.deps.Tracing != nil {
		newCtx, span := r.deps.Tracing.StartSpan(ctx, "stage."+name, attribute.String("stage", name))
		spanCtx = newCtx
		defer span.End()
	}

	var err error
	for attempt := 0; ; attempt++ {
		stageCtx, cancel := context.WithTimeout(spanCtx, appconfig.GetDuration(stageCfg.Timeout))
		err = fn(stageCtx)
		cancel()
		if err == nil {
			break
		}

		stdErr, retry := r.errorHandler.HandleStageError(spanCtx, name, attempt, err)
		if !retry || attempt+1 >= stageCfg.MaxRetries {
			err = stdErr
			break
		}
	}

	finished := time.Now().UTC()
	duration := finished.Sub(started)

	status := "completed"
	result := models.StageResult{
		Stage:      name,
		StartedAt:  started,
		FinishedAt: finished,
		DurationMS: duration.Milliseconds(),
	}

	if err != nil {
		status = "failed"
		result.Error = err.Error()
		code := "INTERNAL_ERROR"
		if stdErr, ok := err.(*stderrors.StandardError); ok {
			code = string(stdErr.Code)
		}
		metrics.StagesFailed.WithLabelValues(name, code).Inc()
	} else {
		metrics.StagesCompleted.WithLabelValues(name).Inc()
	}
	metrics.StageDuration.WithLabelValues(name).Observe(duration.Seconds())

	if r.deps.Observability != nil {
		r.deps.Observability.RecordStageExecuted(ctx, name, status)
		r.deps.Observability.RecordStageDuration(ctx, name, duration, status)
	}

	result.Status = status
	report.Stages = append(report.Stages, result)
	return err
}

func (r *Runner) indexReport(ctx context.Context, report *models.RunReport, log logger.Logger) {
	if r.deps.Reporter == nil {
		return
	}

	index := r.deps.Config.Database.Elasticsearch.RunIndex
	if err := r.deps.Reporter.IndexDocument(ctx, index, report.RunID, report); err != nil {
		log.Error("failed to index run report", map[string]interface{}{
			"index": index,
			"error": err.Error(),
		})
	}
}
