// internal/workers/application/send-notification/config.go
package sendnotification

import (
	"time"

	"application-intake/internal/common/config"
)

type Config struct {
	// HRRecipient receives the application email with attachments.
	HRRecipient   string
	CompanyNameEN string
	CompanyNameAR string
	LogoURL       string
	Timeout       time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	timeout := config.GetDuration(cfg.Submission.NotifyTimeout)
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Config{
		HRRecipient:   cfg.Email.ToEmail,
		CompanyNameEN: cfg.Company.NameEN,
		CompanyNameAR: cfg.Company.NameAR,
		LogoURL:       cfg.Company.LogoURL,
		Timeout:       timeout,
	}
}
