// internal/workers/application/index-application/config.go
package indexapplication

import (
	"time"

	"application-intake/internal/common/config"
)

type Config struct {
	Index   string
	Timeout time.Duration
}

func LoadConfig(cfg config.ElasticsearchConfig) *Config {
	timeout := config.GetDuration(cfg.Timeout)
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	index := cfg.Index
	if index == "" {
		index = "job-applications"
	}
	return &Config{Index: index, Timeout: timeout}
}
