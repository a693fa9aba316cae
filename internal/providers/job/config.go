package job

import (
	"time"

	"surprise-service/internal/common/config"
)

type Config struct {
	Index   string
	Timeout time.Duration
}

func NewConfig(cfg config.JobConfig) *Config {
	c := &Config{
		Index:   cfg.Index,
		Timeout: config.GetDuration(cfg.Timeout),
	}
	if c.Index == "" {
		c.Index = "jobs"
	}
	if c.Timeout <= 0 {
		c.Timeout = 2 * time.Second
	}
	return c
}
