// internal/stages/pusher/config.go
package pusher

import (
	appconfig "vehicle-insurance-pipeline/internal/common/config"
)

type Config struct {
	Bucket string
}

func LoadConfig(cfg *appconfig.Config) *Config {
	return &Config{
		Bucket: cfg.Pipeline.Model.Bucket,
	}
}
