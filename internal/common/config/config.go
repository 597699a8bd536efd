// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig              `mapstructure:"app"`
	Database      DatabaseConfig         `mapstructure:"database"`
	Pipeline      PipelineConfig         `mapstructure:"pipeline"`
	Server        ServerConfig           `mapstructure:"server"`
	Stages        map[string]StageConfig `mapstructure:"stages"`
	Integrations  IntegrationConfig      `mapstructure:"integrations"`
	Logging       LoggingConfig          `mapstructure:"logging"`
	Notifications NotificationConfig     `mapstructure:"notifications"`
	Observability ObservabilityConfig    `mapstructure:"observability"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type DatabaseConfig struct {
	MongoDB       MongoDBConfig       `mapstructure:"mongodb"`
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

// MongoDBConfig holds the feature-store connection settings.
type MongoDBConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
	Timeout    int    `mapstructure:"timeout"` // milliseconds
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	SSLEnabled bool     `mapstructure:"ssl_enabled"`
	RunIndex   string   `mapstructure:"run_index"`
	URL        string   `mapstructure:"url"` // Single URL for backwards compatibility
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// StageConfig holds the core settings applicable to every pipeline stage.
type StageConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	Timeout    int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries int  `mapstructure:"max_retries"` // For error handling
}

// --- Pipeline Configuration ---

// PipelineConfig holds settings shared by the training pipeline stages.
type PipelineConfig struct {
	ArtifactsDir        string       `mapstructure:"artifacts_dir"`
	TrainTestSplitRatio float64      `mapstructure:"train_test_split_ratio"`
	Seed                int64        `mapstructure:"seed"`
	ExpectedAccuracy    float64      `mapstructure:"expected_accuracy"`
	SchemaFile          string       `mapstructure:"schema_file"`
	RecordSchemaFile    string       `mapstructure:"record_schema_file"`
	RegistryFile        string       `mapstructure:"registry_file"`
	Forest              ForestConfig `mapstructure:"forest"`
	Model               ModelConfig  `mapstructure:"model"`
}

// ForestConfig holds random-forest hyperparameters.
type ForestConfig struct {
	Estimators      int `mapstructure:"estimators"`
	MaxDepth        int `mapstructure:"max_depth"`
	MinSamplesSplit int `mapstructure:"min_samples_split"`
	MinSamplesLeaf  int `mapstructure:"min_samples_leaf"`
}

// ModelConfig identifies the production model in the registry.
type ModelConfig struct {
	Bucket string `mapstructure:"bucket"`
	Key    string `mapstructure:"key"`
}

// ServerConfig holds the prediction server settings.
type ServerConfig struct {
	Host                string `mapstructure:"host"`
	Port                int    `mapstructure:"port"`
	CacheTTL            int    `mapstructure:"cache_ttl"`             // seconds
	ModelReloadInterval int    `mapstructure:"model_reload_interval"` // seconds
}

// IntegrationConfig holds settings for AWS and other external services.
type IntegrationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
		SES    struct {
			Enabled   bool   `mapstructure:"enabled"`
			FromEmail string `mapstructure:"from_email"`
		} `mapstructure:"ses"`
		SNS struct {
			Enabled  bool   `mapstructure:"enabled"`
			TopicARN string `mapstructure:"topic_arn"`
		} `mapstructure:"sns"`
	} `mapstructure:"aws"`
}

// NotificationConfig holds settings for the notify stage.
type NotificationConfig struct {
	Email struct {
		Enabled bool     `mapstructure:"enabled"`
		To      []string `mapstructure:"to"`
	} `mapstructure:"email"`
	Alert struct {
		Enabled     bool `mapstructure:"enabled"`
		OnlyOnError bool `mapstructure:"only_on_error"`
	} `mapstructure:"alert"`
}

// ObservabilityConfig holds tracing settings.
type ObservabilityConfig struct {
	TracingEnabled bool   `mapstructure:"tracing_enabled"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
