package weather

import (
	"time"

	"surprise-service/internal/common/config"
)

type Config struct {
	BaseURL  string
	APIKey   string
	City     string
	Units    string
	Timeout  time.Duration
	CacheTTL time.Duration

	CacheTimeout time.Duration
}

func NewConfig(cfg config.WeatherConfig) *Config {
	c := &Config{
		BaseURL:  cfg.BaseURL,
		APIKey:   cfg.APIKey,
		City:     cfg.City,
		Units:    cfg.Units,
		Timeout:  config.GetDuration(cfg.Timeout),
		CacheTTL: config.GetDuration(cfg.CacheTTL),

		CacheTimeout: config.GetDuration(cfg.CacheTimeout),
	}
	if c.BaseURL == "" {
		c.BaseURL = "https://api.openweathermap.org/data/2.5/weather"
	}
	if c.City == "" {
		c.City = "London"
	}
	if c.Units == "" {
		c.Units = "metric"
	}
	if c.Timeout <= 0 {
		c.Timeout = 3 * time.Second
	}
	if c.CacheTimeout <= 0 {
		c.CacheTimeout = 250 * time.Millisecond
	}
	return c
}
