// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Server        ServerConfig        `mapstructure:"server"`
	Slack         SlackConfig         `mapstructure:"slack"`
	Providers     ProvidersConfig     `mapstructure:"providers"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Logging       LoggingConfig       `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port            string `mapstructure:"port"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

// SlackConfig holds the slash command settings. Token is the shared secret
// every inbound invocation must present.
type SlackConfig struct {
	Token   string `mapstructure:"token"`
	Command string `mapstructure:"command"`
}

type DatabaseConfig struct {
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	URL       string   `mapstructure:"url"` // Single URL for backwards compatibility
}

// GetAddresses returns the configured addresses, falling back to URL.
func (e ElasticsearchConfig) GetAddresses() []string {
	if len(e.Addresses) > 0 {
		return e.Addresses
	}
	if e.URL != "" {
		return []string{e.URL}
	}
	return nil
}

// RedisConfig is optional; an empty Address disables the result cache.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// --- Provider Configuration ---

type ProvidersConfig struct {
	Dog     DogConfig     `mapstructure:"dog"`
	Weather WeatherConfig `mapstructure:"weather"`
	Job     JobConfig     `mapstructure:"job"`
}

type DogConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

type WeatherConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	APIKey   string `mapstructure:"api_key"`
	City     string `mapstructure:"city"`
	Units    string `mapstructure:"units"`
	Timeout  int    `mapstructure:"timeout"`   // milliseconds
	CacheTTL int    `mapstructure:"cache_ttl"` // milliseconds

	// CacheTimeout bounds each cache read or write, outside the upstream Timeout.
	CacheTimeout int `mapstructure:"cache_timeout"` // milliseconds
}

type JobConfig struct {
	Index   string `mapstructure:"index"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

// ObservabilityConfig holds metrics and tracing settings. Tracing is enabled
// only when JaegerEndpoint is set.
type ObservabilityConfig struct {
	ServiceName    string  `mapstructure:"service_name"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	SampleRatio    float64 `mapstructure:"sample_ratio"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
