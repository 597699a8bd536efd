// internal/stages/transformation/config.go
package transformation

import (
	appconfig "vehicle-insurance-pipeline/internal/common/config"
)

type Config struct {
	ArtifactsDir string
	Seed         int64
}

func LoadConfig(cfg *appconfig.Config) *Config {
	return &Config{
		ArtifactsDir: cfg.Pipeline.ArtifactsDir,
		Seed:         cfg.Pipeline.Seed,
	}
}
