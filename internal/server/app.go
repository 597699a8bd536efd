// Package server implements the prediction HTTP API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	appconfig "vehicle-insurance-pipeline/internal/common/config"
	"vehicle-insurance-pipeline/internal/common/database"
	"vehicle-insurance-pipeline/internal/common/logger"
	"vehicle-insurance-pipeline/internal/ml"

	"github.com/xeipuuv/gojsonschema"
)

// ModelProvider hands out the production model. *registry.CloudModel is the
// production implementation.
type ModelProvider interface {
	Get(ctx context.Context) (*ml.Model, error)
	Reload(ctx context.Context) (*ml.Model, error)
	IsLoaded() bool
}

// Cache is the prediction cache. *database.RedisClient satisfies it; a miss
// is any error from Get.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// Application holds the dependencies for the HTTP handlers.
type Application struct {
	Config *appconfig.Config
	Logger logger.Logger
	Model  ModelProvider
	Cache  Cache                // optional
	Audit  *database.AuditStore // optional

	recordSchema *gojsonschema.Schema
}

// NewApplication wires the handler dependencies and compiles the request
// schema.
func NewApplication(cfg *appconfig.Config, log logger.Logger, model ModelProvider, cache Cache, audit *database.AuditStore) (*Application, error) {
	app := &Application{
		Config: cfg,
		Logger: log.WithFields(map[string]interface{}{"component": "prediction-server"}),
		Model:  model,
		Cache:  cache,
		Audit:  audit,
	}

	data, err := os.ReadFile(cfg.Pipeline.RecordSchemaFile)
	if err != nil {
		return nil, fmt.Errorf("read record schema %s: %w", cfg.Pipeline.RecordSchemaFile, err)
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(string(data)))
	if err != nil {
		return nil, fmt.Errorf("compile record schema: %w", err)
	}
	app.recordSchema = schema

	return app, nil
}

// Serve runs the HTTP server until the context is cancelled, reloading the
// model in the background on the configured interval.
func (app *Application) Serve(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", app.Config.Server.Host, app.Config.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      app.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  time.Minute,
	}

	go app.reloadLoop(ctx)

	errCh := make(chan error, 1)
	go func() {
		app.Logger.Info("prediction server listening", map[string]interface{}{"addr": addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (app *Application) reloadLoop(ctx context.Context) {
	interval := time.Duration(app.Config.Server.ModelReloadInterval) * time.Second
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := app.Model.Reload(ctx); err != nil {
				app.Logger.Warn("model reload failed", map[string]interface{}{
					"error": err.Error(),
				})
			} else {
				app.Logger.Info("model reloaded", nil)
			}
		}
	}
}
