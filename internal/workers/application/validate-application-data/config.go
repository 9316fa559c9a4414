// internal/workers/application/validate-application-data/config.go
package validateapplicationdata

import "time"

type Config struct {
	Timeout time.Duration
	// MinMotivationLength is the minimum rune count of specialMotivation.
	MinMotivationLength int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:             10 * time.Second,
		MinMotivationLength: 20,
	}
}
