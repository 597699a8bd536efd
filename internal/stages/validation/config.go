// internal/stages/validation/config.go
package validation

import (
	appconfig "vehicle-insurance-pipeline/internal/common/config"
)

type Config struct {
	SchemaFile       string
	RecordSchemaFile string
	ArtifactsDir     string
}

func LoadConfig(cfg *appconfig.Config) *Config {
	return &Config{
		SchemaFile:       cfg.Pipeline.SchemaFile,
		RecordSchemaFile: cfg.Pipeline.RecordSchemaFile,
		ArtifactsDir:     cfg.Pipeline.ArtifactsDir,
	}
}
