// internal/stages/training/config.go
package training

import (
	appconfig "vehicle-insurance-pipeline/internal/common/config"
	"vehicle-insurance-pipeline/internal/ml"
)

type Config struct {
	ArtifactsDir     string
	ExpectedAccuracy float64
	Forest           ml.ForestParams
}

func LoadConfig(cfg *appconfig.Config) *Config {
	return &Config{
		ArtifactsDir:     cfg.Pipeline.ArtifactsDir,
		ExpectedAccuracy: cfg.Pipeline.ExpectedAccuracy,
		Forest: ml.ForestParams{
			Estimators:      cfg.Pipeline.Forest.Estimators,
			MaxDepth:        cfg.Pipeline.Forest.MaxDepth,
			MinSamplesSplit: cfg.Pipeline.Forest.MinSamplesSplit,
			MinSamplesLeaf:  cfg.Pipeline.Forest.MinSamplesLeaf,
			Seed:            cfg.Pipeline.Seed,
		},
	}
}
