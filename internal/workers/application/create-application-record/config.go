// internal/workers/application/create-application-record/config.go
package createapplicationrecord

import "time"

type Config struct {
	// Timeout bounds a single insert or lookup.
	Timeout time.Duration
	Table   string
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
		Table:   "job_applications",
	}
}
