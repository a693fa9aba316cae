// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// defaults are registered with viper so AutomaticEnv can resolve every key
// (slack.token <- SLACK_TOKEN, providers.weather.api_key <- PROVIDERS_WEATHER_API_KEY).
var defaults = map[string]interface{}{
	"app.name":                        "surprise-service",
	"app.version":                     "dev",
	"app.environment":                 "development",
	"server.port":                     "8080",
	"server.read_timeout":             10000,
	"server.write_timeout":            15000,
	"server.shutdown_timeout":         30000,
	"slack.token":                     "",
	"slack.command":                   "/surprise",
	"providers.dog.base_url":          "https://dog.ceo/api/breeds/image/random",
	"providers.dog.timeout":           5000,
	"providers.weather.base_url":      "https://api.openweathermap.org/data/2.5/weather",
	"providers.weather.api_key":       "",
	"providers.weather.city":          "London",
	"providers.weather.units":         "metric",
	"providers.weather.timeout":       5000,
	"providers.weather.cache_ttl":     600000,
	"providers.weather.cache_timeout": 250,
	"providers.job.index":             "jobs",
	"providers.job.timeout":           5000,
	"database.elasticsearch.url":      "",
	"database.elasticsearch.username": "",
	"database.elasticsearch.password": "",
	"database.redis.address":          "",
	"database.redis.password":         "",
	"database.redis.db":               0,
	"observability.service_name":      "surprise-service",
	"observability.jaeger_endpoint":   "",
	"observability.sample_ratio":      1.0,
	"logging.level":                   "info",
	"logging.format":                  "json",
	"logging.output":                  "stdout",
}

// Load reads configs/config.yaml (optional), merges config.<env>.yaml when
// present and applies environment overrides.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // ignore error if not found

	return finalize(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finalize(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func finalize(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads .env from the working directory or one of its parents.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env", // tests in test/e2e/
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			// unset variables expand to "" so placeholders never leak into values
			v.Set(key, os.ExpandEnv(strVal))
		}
	}
}

// overrideEmptyConfig honours the conventional variable names used by the
// slash command deployment when the namespaced ones are not set.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Slack.Token == "" {
		if val := os.Getenv("SLACK_TOKEN"); val != "" {
			cfg.Slack.Token = val
		}
	}
	if cfg.Providers.Weather.APIKey == "" {
		if val := os.Getenv("OPENWEATHER_API_KEY"); val != "" {
			cfg.Providers.Weather.APIKey = val
		}
	}
	if len(cfg.Database.Elasticsearch.GetAddresses()) == 0 {
		if val := os.Getenv("ELASTICSEARCH_URL"); val != "" {
			cfg.Database.Elasticsearch.URL = val
		}
	}
	if cfg.Database.Redis.Address == "" {
		if val := os.Getenv("REDIS_ADDRESS"); val != "" {
			cfg.Database.Redis.Address = val
		}
	}
	if val := os.Getenv("PORT"); val != "" {
		cfg.Server.Port = val
	}
}

// applyDefaults sets default values for fields a config file may have zeroed
func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30000
	}
	if cfg.Slack.Command == "" {
		cfg.Slack.Command = "/surprise"
	}

	if cfg.Providers.Dog.Timeout == 0 {
		cfg.Providers.Dog.Timeout = 5000
	}
	if cfg.Providers.Weather.Timeout == 0 {
		cfg.Providers.Weather.Timeout = 5000
	}
	if cfg.Providers.Weather.City == "" {
		cfg.Providers.Weather.City = "London"
	}
	if cfg.Providers.Weather.Units == "" {
		cfg.Providers.Weather.Units = "metric"
	}
	if cfg.Providers.Job.Timeout == 0 {
		cfg.Providers.Job.Timeout = 5000
	}
	if cfg.Providers.Job.Index == "" {
		cfg.Providers.Job.Index = "jobs"
	}

	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = cfg.App.Name
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Slack.Token == "" {
		return fmt.Errorf("slack.token is required")
	}
	if cfg.Providers.Dog.BaseURL == "" {
		return fmt.Errorf("providers.dog.base_url is required")
	}
	if cfg.Providers.Weather.BaseURL == "" {
		return fmt.Errorf("providers.weather.base_url is required")
	}
	if cfg.Observability.SampleRatio < 0 || cfg.Observability.SampleRatio > 1 {
		return fmt.Errorf("observability.sample_ratio must be between 0 and 1")
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
