// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig               `mapstructure:"app"`
	Server     ServerConfig            `mapstructure:"server"`
	Camunda    CamundaConfig           `mapstructure:"camunda"`
	Database   DatabaseConfig          `mapstructure:"database"`
	Storage    StorageConfig           `mapstructure:"storage"`
	Email      EmailConfig             `mapstructure:"email"`
	Company    CompanyConfig           `mapstructure:"company"`
	Submission SubmissionConfig        `mapstructure:"submission"`
	Workers    map[string]WorkerConfig `mapstructure:"workers"`
	Logging    LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	MaxUploadBytes int64    `mapstructure:"max_upload_bytes"`
	ReadTimeout    int      `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout   int      `mapstructure:"write_timeout"` // milliseconds
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
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
	Enabled   bool     `mapstructure:"enabled"`
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
	Timeout   int      `mapstructure:"timeout"` // milliseconds
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	GuardTTL int    `mapstructure:"guard_ttl"` // milliseconds
}

// StorageConfig holds the object storage used for resumes and cover letters.
type StorageConfig struct {
	S3 struct {
		Region       string `mapstructure:"region"`
		Bucket       string `mapstructure:"bucket"`
		Endpoint     string `mapstructure:"endpoint"`
		UsePathStyle bool   `mapstructure:"use_path_style"`
	} `mapstructure:"s3"`
}

// EmailConfig holds the transactional email transport settings.
type EmailConfig struct {
	Provider  string `mapstructure:"provider"` // "sendgrid" or "ses"
	APIURL    string `mapstructure:"api_url"`
	APIKey    string `mapstructure:"api_key"`
	FromEmail string `mapstructure:"from_email"`
	FromName  string `mapstructure:"from_name"`
	ToEmail   string `mapstructure:"to_email"`
	Region    string `mapstructure:"region"`
	Timeout   int    `mapstructure:"timeout"` // milliseconds
}

// CompanyConfig is rendered into the candidate confirmation.
type CompanyConfig struct {
	NameEN  string `mapstructure:"name_en"`
	NameAR  string `mapstructure:"name_ar"`
	LogoURL string `mapstructure:"logo_url"`
}

// SubmissionConfig bounds every external call made while processing a submission.
type SubmissionConfig struct {
	LookupTimeout  int `mapstructure:"lookup_timeout"`  // milliseconds
	UploadTimeout  int `mapstructure:"upload_timeout"`  // milliseconds
	InsertTimeout  int `mapstructure:"insert_timeout"`  // milliseconds
	NotifyTimeout  int `mapstructure:"notify_timeout"`  // milliseconds
	CleanupTimeout int `mapstructure:"cleanup_timeout"` // milliseconds
}

// ResponseBudget is the longest a submission can hold its HTTP response, in
// milliseconds: the success path sends both emails after the insert, the
// failure path runs cleanup instead.
func (s SubmissionConfig) ResponseBudget() int {
	base := s.LookupTimeout + s.UploadTimeout + s.InsertTimeout
	return base + max(2*s.NotifyTimeout, s.CleanupTimeout)
}

// WorkerConfig holds the core settings applicable to every Zeebe worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
