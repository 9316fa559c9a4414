// internal/workers/application/submit-application/config.go
package submitapplication

import (
	"time"

	"application-intake/internal/common/config"
)

type Config struct {
	LookupTimeout  time.Duration
	UploadTimeout  time.Duration
	InsertTimeout  time.Duration
	CleanupTimeout time.Duration

	MinMotivationLength int
	// MaxDocumentBytes limits each uploaded file; zero disables the check.
	MaxDocumentBytes int64
	GuardTTL         time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		LookupTimeout:       5 * time.Second,
		UploadTimeout:       30 * time.Second,
		InsertTimeout:       5 * time.Second,
		CleanupTimeout:      10 * time.Second,
		MinMotivationLength: 20,
		MaxDocumentBytes:    5 << 20,
		GuardTTL:            2 * time.Minute,
	}
}

// LoadConfig reads the submission timeouts, keeping defaults for unset values.
func LoadConfig(cfg *config.Config) *Config {
	c := DefaultConfig()
	setDuration(&c.LookupTimeout, cfg.Submission.LookupTimeout)
	setDuration(&c.UploadTimeout, cfg.Submission.UploadTimeout)
	setDuration(&c.InsertTimeout, cfg.Submission.InsertTimeout)
	setDuration(&c.CleanupTimeout, cfg.Submission.CleanupTimeout)
	setDuration(&c.GuardTTL, cfg.Database.Redis.GuardTTL)
	if cfg.Server.MaxUploadBytes > 0 {
		c.MaxDocumentBytes = cfg.Server.MaxUploadBytes
	}
	return c
}

func setDuration(dst *time.Duration, ms int) {
	if ms > 0 {
		*dst = config.GetDuration(ms)
	}
}
