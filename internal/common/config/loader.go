// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like MONGODB_URI
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment overlay, ignored if not found
	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig()

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Load .env from multiple possible locations so binaries and tests can run
// from any directory inside the repo.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// Expand ${VAR} placeholders in string config values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// Direct override if config values are still empty after expansion
func overrideEmptyConfig(cfg *Config) {
	if cfg.Database.MongoDB.URI == "" {
		if val := os.Getenv("MONGODB_URI"); val != "" {
			cfg.Database.MongoDB.URI = val
		}
	}

	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}

	if cfg.Pipeline.Model.Bucket == "" {
		if val := os.Getenv("MODEL_BUCKET_NAME"); val != "" {
			cfg.Pipeline.Model.Bucket = val
		}
	}
	if cfg.Integrations.AWS.Region == "" {
		if val := os.Getenv("AWS_DEFAULT_REGION"); val != "" {
			cfg.Integrations.AWS.Region = val
		}
	}
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	// Pipeline defaults mirror the original training setup
	if cfg.Pipeline.ArtifactsDir == "" {
		cfg.Pipeline.ArtifactsDir = "artifacts"
	}
	if cfg.Pipeline.TrainTestSplitRatio == 0 {
		cfg.Pipeline.TrainTestSplitRatio = 0.25
	}
	if cfg.Pipeline.Seed == 0 {
		cfg.Pipeline.Seed = 42
	}
	if cfg.Pipeline.ExpectedAccuracy == 0 {
		cfg.Pipeline.ExpectedAccuracy = 0.7
	}
	if cfg.Pipeline.SchemaFile == "" {
		cfg.Pipeline.SchemaFile = "configs/schema.yaml"
	}
	if cfg.Pipeline.RecordSchemaFile == "" {
		cfg.Pipeline.RecordSchemaFile = "configs/record-schema.json"
	}
	if cfg.Pipeline.RegistryFile == "" {
		cfg.Pipeline.RegistryFile = "configs/stage-registry.json"
	}
	if cfg.Pipeline.Forest.Estimators == 0 {
		cfg.Pipeline.Forest.Estimators = 100
	}
	if cfg.Pipeline.Forest.MaxDepth == 0 {
		cfg.Pipeline.Forest.MaxDepth = 10
	}
	if cfg.Pipeline.Forest.MinSamplesSplit == 0 {
		cfg.Pipeline.Forest.MinSamplesSplit = 7
	}
	if cfg.Pipeline.Forest.MinSamplesLeaf == 0 {
		cfg.Pipeline.Forest.MinSamplesLeaf = 6
	}
	if cfg.Pipeline.Model.Key == "" {
		cfg.Pipeline.Model.Key = "model-registry/model.json"
	}

	// Server defaults keep the original container contract: 0.0.0.0:5000
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5000
	}
	if cfg.Server.CacheTTL == 0 {
		cfg.Server.CacheTTL = 300
	}
	if cfg.Server.ModelReloadInterval == 0 {
		cfg.Server.ModelReloadInterval = 600
	}

	// Database defaults
	if cfg.Database.MongoDB.Database == "" {
		cfg.Database.MongoDB.Database = "vehicle_insurance"
	}
	if cfg.Database.MongoDB.Collection == "" {
		cfg.Database.MongoDB.Collection = "customers"
	}
	if cfg.Database.MongoDB.Timeout == 0 {
		cfg.Database.MongoDB.Timeout = 10000
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Elasticsearch.RunIndex == "" {
		cfg.Database.Elasticsearch.RunIndex = "pipeline-runs"
	}

	// Elasticsearch URL fallback
	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	// Stage defaults
	for key, stage := range cfg.Stages {
		if stage.Timeout == 0 {
			stage.Timeout = 60000
		}
		if stage.MaxRetries == 0 {
			stage.MaxRetries = 3
		}
		cfg.Stages[key] = stage
	}
}

// validateConfig checks the fields every consumer depends on. Binary-specific
// requirements live in ValidatePipeline.
func validateConfig(cfg *Config) error {
	if cfg.Pipeline.TrainTestSplitRatio <= 0 || cfg.Pipeline.TrainTestSplitRatio >= 1 {
		return fmt.Errorf("pipeline.train_test_split_ratio must be in (0, 1)")
	}

	return nil
}

// ValidatePipeline checks the fields the training pipeline cannot run
// without. The prediction server never touches the feature store, so it
// skips this check and only goes through validateConfig.
func ValidatePipeline(cfg *Config) error {
	if cfg.Database.MongoDB.URI == "" {
		return fmt.Errorf("database.mongodb.uri is required")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetStageConfig retrieves stage-specific configuration with fallback to defaults
func GetStageConfig(cfg *Config, stageName string) StageConfig {
	if stage, exists := cfg.Stages[stageName]; exists {
		return stage
	}

	return StageConfig{
		Enabled:    true,
		Timeout:    60000,
		MaxRetries: 3,
	}
}

// IsStageEnabled checks if a specific stage is enabled
func IsStageEnabled(cfg *Config, stageName string) bool {
	if stage, exists := cfg.Stages[stageName]; exists {
		return stage.Enabled
	}
	return true
}
