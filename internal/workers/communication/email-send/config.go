package emailsend

import (
	"fmt"
	"time"

	"application-intake/internal/common/config"
)

const (
	ProviderSendGrid = config.ProviderSendGrid
	ProviderSES      = config.ProviderSES
)

type Config struct {
	Provider  string
	APIURL    string
	APIKey    string
	FromEmail string
	FromName  string
	Region    string
	Timeout   time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderSendGrid,
		APIURL:   "https://api.sendgrid.com",
		Timeout:  15 * time.Second,
	}
}

// FromEmailConfig maps the application email section onto the transport config.
func FromEmailConfig(c config.EmailConfig) *Config {
	cfg := DefaultConfig()
	if c.Provider != "" {
		cfg.Provider = c.Provider
	}
	if c.APIURL != "" {
		cfg.APIURL = c.APIURL
	}
	if c.Timeout > 0 {
		cfg.Timeout = config.GetDuration(c.Timeout)
	}
	cfg.APIKey = c.APIKey
	cfg.FromEmail = c.FromEmail
	cfg.FromName = c.FromName
	cfg.Region = c.Region
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	return cfg
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.FromEmail == "" {
		return fmt.Errorf("from_email is required")
	}
	switch c.Provider {
	case ProviderSendGrid:
		if c.APIKey == "" {
			return fmt.Errorf("api_key is required for provider %s", c.Provider)
		}
		if c.APIURL == "" {
			return fmt.Errorf("api_url is required for provider %s", c.Provider)
		}
	case ProviderSES:
		if c.Region == "" {
			return fmt.Errorf("region is required for provider %s", c.Provider)
		}
	default:
		return fmt.Errorf("unsupported email provider %q", c.Provider)
	}
	return nil
}
