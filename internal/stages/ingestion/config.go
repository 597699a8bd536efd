// internal/stages/ingestion/config.go
package ingestion

import (
	appconfig "vehicle-insurance-pipeline/internal/common/config"
)

type Config struct {
	Collection   string
	ArtifactsDir string
	TestRatio    float64
	Seed         int64
}

func LoadConfig(cfg *appconfig.Config) *Config {
	return &Config{
		Collection:   cfg.Database.MongoDB.Collection,
		ArtifactsDir: cfg.Pipeline.ArtifactsDir,
		TestRatio:    cfg.Pipeline.TrainTestSplitRatio,
		Seed:         cfg.Pipeline.Seed,
	}
}
