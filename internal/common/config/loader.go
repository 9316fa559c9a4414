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

// writeTimeoutMargin covers request parsing and response encoding, in milliseconds.
const writeTimeoutMargin = 5000

const (
	ProviderSendGrid = "sendgrid"
	ProviderSES      = "ses"
)

func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// environment overlay is optional
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig()

	return build(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return build(v)
}

func build(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
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

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig falls back to the variable names used by the hosted email functions.
func overrideEmptyConfig(cfg *Config) {
	envFallback(&cfg.Email.APIKey, "SENDGRID_API_KEY")
	envFallback(&cfg.Email.FromEmail, "FROM_EMAIL")
	envFallback(&cfg.Email.ToEmail, "TO_EMAIL")

	envFallback(&cfg.Database.Postgres.User, "DB_USER")
	envFallback(&cfg.Database.Postgres.Password, "DB_PASSWORD")

	envFallback(&cfg.Storage.S3.Endpoint, "AWS_ENDPOINT_URL")
}

func envFallback(target *string, name string) {
	if *target != "" {
		return
	}
	if val := os.Getenv(name); val != "" {
		*target = val
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "application-intake"
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.MaxUploadBytes == 0 {
		cfg.Server.MaxUploadBytes = 10 << 20
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60000
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"*"}
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
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

	if cfg.Database.Redis.GuardTTL == 0 {
		cfg.Database.Redis.GuardTTL = 120000
	}
	if cfg.Database.Elasticsearch.Index == "" {
		cfg.Database.Elasticsearch.Index = "job-applications"
	}
	if cfg.Database.Elasticsearch.Timeout == 0 {
		cfg.Database.Elasticsearch.Timeout = 5000
	}

	if cfg.Storage.S3.Region == "" {
		cfg.Storage.S3.Region = "us-east-1"
	}
	if cfg.Storage.S3.Bucket == "" {
		cfg.Storage.S3.Bucket = "applications"
	}

	if cfg.Email.Provider == "" {
		cfg.Email.Provider = ProviderSendGrid
	}
	if cfg.Email.APIURL == "" {
		cfg.Email.APIURL = "https://api.sendgrid.com"
	}
	if cfg.Email.Region == "" {
		cfg.Email.Region = cfg.Storage.S3.Region
	}
	if cfg.Email.Timeout == 0 {
		cfg.Email.Timeout = 15000
	}

	if cfg.Company.NameEN == "" {
		cfg.Company.NameEN = "Racine Investment Company"
	}
	if cfg.Company.NameAR == "" {
		cfg.Company.NameAR = "شركة راسين للاستثمار"
	}
	if cfg.Email.FromName == "" {
		cfg.Email.FromName = cfg.Company.NameAR
	}

	if cfg.Submission.LookupTimeout == 0 {
		cfg.Submission.LookupTimeout = 5000
	}
	if cfg.Submission.UploadTimeout == 0 {
		cfg.Submission.UploadTimeout = 30000
	}
	if cfg.Submission.InsertTimeout == 0 {
		cfg.Submission.InsertTimeout = 5000
	}
	if cfg.Submission.NotifyTimeout == 0 {
		cfg.Submission.NotifyTimeout = 20000
	}
	if cfg.Submission.CleanupTimeout == 0 {
		cfg.Submission.CleanupTimeout = 10000
	}

	// the response must outlive the submission it reports
	if minWrite := cfg.Submission.ResponseBudget() + writeTimeoutMargin; cfg.Server.WriteTimeout < minWrite {
		cfg.Server.WriteTimeout = minWrite
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Database.Postgres.Host == "" {
		return fmt.Errorf("database.postgres.host is required")
	}
	if cfg.Database.Postgres.Database == "" {
		return fmt.Errorf("database.postgres.database is required")
	}
	if cfg.Database.Postgres.User == "" {
		return fmt.Errorf("database.postgres.user is required")
	}

	if cfg.Storage.S3.Bucket == "" {
		return fmt.Errorf("storage.s3.bucket is required")
	}

	switch cfg.Email.Provider {
	case ProviderSendGrid:
		if cfg.Email.APIKey == "" {
			return fmt.Errorf("email.api_key is required for provider %q", ProviderSendGrid)
		}
	case ProviderSES:
	default:
		return fmt.Errorf("email.provider %q is not supported", cfg.Email.Provider)
	}
	if cfg.Email.FromEmail == "" {
		return fmt.Errorf("email.from_email is required")
	}
	if cfg.Email.ToEmail == "" {
		return fmt.Errorf("email.to_email is required")
	}

	if cfg.Database.Redis.Enabled && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when redis is enabled")
	}
	if cfg.Database.Elasticsearch.Enabled && len(cfg.Database.Elasticsearch.Addresses) == 0 {
		return fmt.Errorf("database.elasticsearch.addresses is required when elasticsearch is enabled")
	}
	if cfg.Camunda.Enabled && cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required when camunda is enabled")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}

	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
