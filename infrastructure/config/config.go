package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	pkgerrors "itemname-api/pkg/errors"

	"gopkg.in/yaml.v3"
)

// Catalog sources
const (
	SourceDynamoDB = "dynamodb"
	SourceSnapshot = "snapshot"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress  string        `yaml:"server_address"`
	Environment    string        `yaml:"environment"`
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// Catalog source
	CatalogSource string `yaml:"catalog_source"`
	SnapshotPath  string `yaml:"snapshot_path"`

	// AWS configuration
	AWSRegion     string `yaml:"aws_region"`
	DynamoDBTable string `yaml:"table_name"`

	// Unprocessed batch-get key retries
	MaxRetries     int           `yaml:"dynamodb_max_retries"`
	RetryBaseDelay time.Duration `yaml:"dynamodb_retry_base_delay"`
	RetryMaxDelay  time.Duration `yaml:"dynamodb_retry_max_delay"`

	// Lambda configuration
	IsLambda           bool   `yaml:"-"`
	LambdaFunctionName string `yaml:"-"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Feature flags
	EnableMetrics        bool          `yaml:"enable_metrics"`
	EnableTracing        bool          `yaml:"enable_tracing"`
	EnableCircuitBreaker bool          `yaml:"enable_circuit_breaker"`
	ExposeErrorDetails   bool          `yaml:"expose_error_details"`
	MetricsNamespace     string        `yaml:"metrics_namespace"`
	MetricsFlushInterval time.Duration `yaml:"metrics_flush_interval"`
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	return &Config{
		ServerAddress:        ":8080",
		Environment:          "development",
		RequestTimeout:       30 * time.Second,
		CatalogSource:        SourceDynamoDB,
		SnapshotPath:         "/opt/database.json",
		AWSRegion:            "us-west-2",
		MaxRetries:           8,
		RetryBaseDelay:       50 * time.Millisecond,
		RetryMaxDelay:        5 * time.Second,
		LogLevel:             "info",
		EnableCircuitBreaker: true,
		MetricsNamespace:     "ItemNameAPI",
		MetricsFlushInterval: time.Minute,
	}
}

// LoadConfig loads configuration from defaults, then the YAML file named by
// CONFIG_FILE if any, then environment variables.
func LoadConfig() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load is an alias for LoadConfig
func Load() (*Config, error) {
	return LoadConfig()
}

// loadFile overlays the YAML file at path. Keys missing from the file keep
// their current values.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.ServerAddress = getEnv("SERVER_ADDRESS", c.ServerAddress)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.RequestTimeout = getEnvDuration("REQUEST_TIMEOUT", c.RequestTimeout)

	c.CatalogSource = getEnv("CATALOG_SOURCE", c.CatalogSource)
	c.SnapshotPath = getEnv("SNAPSHOT_PATH", c.SnapshotPath)

	c.AWSRegion = getEnv("AWS_REGION", c.AWSRegion)
	c.DynamoDBTable = getEnv("TABLE_NAME", c.DynamoDBTable)

	c.MaxRetries = getEnvInt("DYNAMODB_MAX_RETRIES", c.MaxRetries)
	c.RetryBaseDelay = getEnvDuration("DYNAMODB_RETRY_BASE_DELAY", c.RetryBaseDelay)
	c.RetryMaxDelay = getEnvDuration("DYNAMODB_RETRY_MAX_DELAY", c.RetryMaxDelay)

	c.LambdaFunctionName = getEnv("AWS_LAMBDA_FUNCTION_NAME", "")
	c.IsLambda = c.LambdaFunctionName != ""

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.EnableMetrics = getEnvBool("ENABLE_METRICS", c.EnableMetrics)
	c.EnableTracing = getEnvBool("ENABLE_TRACING", c.EnableTracing)
	c.EnableCircuitBreaker = getEnvBool("ENABLE_CIRCUIT_BREAKER", c.EnableCircuitBreaker)
	c.ExposeErrorDetails = getEnvBool("EXPOSE_ERROR_DETAILS", c.ExposeErrorDetails)
	c.MetricsNamespace = getEnv("METRICS_NAMESPACE", c.MetricsNamespace)
	c.MetricsFlushInterval = getEnvDuration("METRICS_FLUSH_INTERVAL", c.MetricsFlushInterval)
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.CatalogSource {
	case SourceDynamoDB:
		if c.DynamoDBTable == "" {
			return pkgerrors.NewInternalError("missing required runtime configuration").
				WithDetails(map[string]interface{}{"variable": "TABLE_NAME"})
		}
	case SourceSnapshot:
		if c.SnapshotPath == "" {
			return pkgerrors.NewInternalError("missing required runtime configuration").
				WithDetails(map[string]interface{}{"variable": "SNAPSHOT_PATH"})
		}
	default:
		return pkgerrors.NewInternalError(fmt.Sprintf("unknown catalog source %q", c.CatalogSource))
	}

	if c.MaxRetries < 0 {
		return pkgerrors.NewInternalError("DYNAMODB_MAX_RETRIES must not be negative")
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration environment variable ("250ms", "5s") with a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
