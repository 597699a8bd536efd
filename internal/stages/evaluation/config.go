// internal/stages/evaluation/config.go
package evaluation

import (
	appconfig "vehicle-insurance-pipeline/internal/common/config"
)

type Config struct {
	ModelKey string
}

func LoadConfig(cfg *appconfig.Config) *Config {
	return &Config{
		ModelKey: cfg.Pipeline.Model.Key,
	}
}
