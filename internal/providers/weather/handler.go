// internal/providers/weather/handler.go
package weather

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	apperrors "surprise-service/internal/common/errors"
	httpclient "surprise-service/internal/common/http"
	"surprise-service/internal/common/logger"
	"surprise-service/internal/common/metrics"
	"surprise-service/internal/providers"
	"surprise-service/internal/slack"
)

const (
	ProviderName = "weather"
	iconURL      = "https://openweathermap.org/img/wn/%s@2x.png"
)

type Provider struct {
	config *Config
	client *httpclient.Client
	cache  Cache
	logger logger.Logger
}

// NewProvider builds the weather provider. cache may be nil.
func NewProvider(cfg *Config, client *httpclient.Client, cache Cache, log logger.Logger) *Provider {
	if client == nil {
		client = httpclient.NewClient(cfg.Timeout)
	}
	return &Provider{
		config: cfg,
		client: client,
		cache:  cache,
		logger: log.WithFields(map[string]interface{}{"provider": ProviderName}),
	}
}

func (p *Provider) Name() string { return ProviderName }

// Provide reports the current conditions for the configured city.
func (p *Provider) Provide(ctx context.Context) (*providers.Result, error) {
	body, err := p.currentWeather(ctx)
	if err != nil {
		return nil, err
	}

	cond := parseConditions(body, p.config.City)
	return &providers.Result{
		Summary:    fmt.Sprintf("Current weather in %s: %s", cond.City, cond.Description),
		Attachment: p.buildAttachment(cond),
	}, nil
}

func (p *Provider) currentWeather(ctx context.Context) ([]byte, error) {
	key := p.cacheKey()

	if cached, ok := p.cacheGet(ctx, key); ok {
		return cached, nil
	}

	body, err := p.fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch weather for %s: %w", p.config.City, err)
	}

	if result := currentWeatherSchema.Validate(body); !result.Valid {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidPayload, result.Err())
	}

	p.cacheSet(ctx, key, body)
	return body, nil
}

// fetch calls the upstream API. Only this call runs under the provider timeout.
func (p *Provider) fetch(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	query := url.Values{
		"q":     {p.config.City},
		"appid": {p.config.APIKey},
		"units": {p.config.Units},
	}
	return p.client.GetJSON(ctx, p.config.BaseURL, query)
}

func (p *Provider) cacheKey() string {
	return fmt.Sprintf("weather:%s:%s", strings.ToLower(p.config.City), p.config.Units)
}

// cacheGet never fails the request; errors and corrupt entries count as misses.
func (p *Provider) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	if p.cache == nil {
		return nil, false
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.CacheTimeout)
	defer cancel()

	val, found, err := p.cache.Get(ctx, key)
	switch {
	case err != nil:
		metrics.CacheLookups.WithLabelValues(ProviderName, "error").Inc()
		p.logger.Warn("weather cache read failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return nil, false
	case !found:
		metrics.CacheLookups.WithLabelValues(ProviderName, "miss").Inc()
		return nil, false
	}

	if !currentWeatherSchema.Validate([]byte(val)).Valid {
		metrics.CacheLookups.WithLabelValues(ProviderName, "error").Inc()
		p.logger.Warn("discarding invalid cached weather", map[string]interface{}{"key": key})
		return nil, false
	}

	metrics.CacheLookups.WithLabelValues(ProviderName, "hit").Inc()
	return []byte(val), true
}

func (p *Provider) cacheSet(ctx context.Context, key string, body []byte) {
	if p.cache == nil || p.config.CacheTTL <= 0 {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.CacheTimeout)
	defer cancel()

	if err := p.cache.Set(ctx, key, string(body), p.config.CacheTTL); err != nil {
		p.logger.Warn("weather cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

func parseConditions(body []byte, fallbackCity string) Conditions {
	doc := gjson.ParseBytes(body)
	cond := Conditions{
		City:        doc.Get("name").String(),
		Description: doc.Get("weather.0.description").String(),
		Icon:        doc.Get("weather.0.icon").String(),
		Temperature: doc.Get("main.temp").Float(),
		Humidity:    doc.Get("main.humidity").Int(),
		WindSpeed:   doc.Get("wind.speed").Float(),
	}
	if cond.City == "" {
		cond.City = fallbackCity
	}
	return cond
}

func (p *Provider) buildAttachment(cond Conditions) slack.Attachment {
	temp := fmt.Sprintf("%.1f%s", cond.Temperature, temperatureUnit(p.config.Units))
	text := fmt.Sprintf("%s, %s", cond.Description, temp)

	attachment := slack.Attachment{
		Fallback: slack.String(fmt.Sprintf("Weather in %s: %s", cond.City, text)),
		Title:    slack.String("Weather in " + cond.City),
		Text:     slack.String(text),
		Fields: []slack.Field{
			slack.NewField("Temperature", temp, true),
			slack.NewField("Humidity", fmt.Sprintf("%d%%", cond.Humidity), true),
			slack.NewField("Wind", fmt.Sprintf("%.1f %s", cond.WindSpeed, speedUnit(p.config.Units)), true),
		},
	}
	if cond.Icon != "" {
		attachment.ThumbURL = slack.String(fmt.Sprintf(iconURL, cond.Icon))
	}
	return attachment
}

func temperatureUnit(units string) string {
	switch units {
	case "imperial":
		return "°F"
	case "standard":
		return "K"
	}
	return "°C"
}

func speedUnit(units string) string {
	if units == "imperial" {
		return "mph"
	}
	return "m/s"
}
