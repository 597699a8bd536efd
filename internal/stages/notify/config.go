// internal/stages/notify/config.go
package notify

import (
	appconfig "vehicle-insurance-pipeline/internal/common/config"
)

type Config struct {
	EmailEnabled bool
	AlertEnabled bool
	OnlyOnError  bool
	FromEmail    string
	To           []string
	TopicARN     string
}

func LoadConfig(cfg *appconfig.Config) *Config {
	return &Config{
		EmailEnabled: cfg.Notifications.Email.Enabled && cfg.Integrations.AWS.SES.Enabled,
		AlertEnabled: cfg.Notifications.Alert.Enabled && cfg.Integrations.AWS.SNS.Enabled,
		OnlyOnError:  cfg.Notifications.Alert.OnlyOnError,
		FromEmail:    cfg.Integrations.AWS.SES.FromEmail,
		To:           cfg.Notifications.Email.To,
		TopicARN:     cfg.Integrations.AWS.SNS.TopicARN,
	}
}
