// internal/workers/application/store-application-documents/config.go
package storeapplicationdocuments

import "time"

type Config struct {
	Bucket  string
	Timeout time.Duration
}

func LoadConfig(bucket string) *Config {
	return &Config{
		Bucket:  bucket,
		Timeout: 30 * time.Second,
	}
}
