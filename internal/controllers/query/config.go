// internal/controllers/query/config.go
package query

import (
	"time"

	"human1-sdk/internal/common/config"
	"human1-sdk/internal/models"
)

type Config struct {
	Timeout       time.Duration // 0 disables the per-query deadline
	DefaultFormat models.ResponseFormat
}

func LoadConfig(cfg *config.Config) *Config {
	format, ok := models.ParseResponseFormat(cfg.Query.DefaultFormat)
	if !ok {
		format = models.DefaultFormat
	}
	return &Config{
		Timeout:       config.GetDuration(cfg.Query.Timeout),
		DefaultFormat: format,
	}
}
