package dog

import (
	"time"

	"surprise-service/internal/common/config"
)

type Config struct {
	BaseURL string
	Timeout time.Duration
}

func NewConfig(cfg config.DogConfig) *Config {
	c := &Config{
		BaseURL: cfg.BaseURL,
		Timeout: config.GetDuration(cfg.Timeout),
	}
	if c.BaseURL == "" {
		c.BaseURL = "https://dog.ceo/api/breeds/image/random"
	}
	if c.Timeout <= 0 {
		c.Timeout = 3 * time.Second
	}
	return c
}
