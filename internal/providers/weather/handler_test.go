package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surprise-service/internal/common/config"
	"surprise-service/internal/common/database"
	apperrors "surprise-service/internal/common/errors"
	httpclient "surprise-service/internal/common/http"
	"surprise-service/internal/common/logger"
	"surprise-service/internal/slack"
)

const londonPayload = `{"weather":[{"id":500,"main":"Rain","description":"light rain","icon":"10d"}],"main":{"temp":12.34,"humidity":81},"wind":{"speed":4.1},"name":"London"}`

type upstream struct {
	calls int32
	body  string
	query func(r *http.Request)
}

func (u *upstream) start(t *testing.T) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&u.calls, 1)
		if u.query != nil {
			u.query(r)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(u.body))
	}))
	t.Cleanup(server.Close)
	return server.URL
}

func createTestConfig(baseURL string) *Config {
	return &Config{
		BaseURL:  baseURL,
		APIKey:   "test-key",
		City:     "London",
		Units:    "metric",
		Timeout:  time.Second,
		CacheTTL: 10 * time.Minute,

		CacheTimeout: 250 * time.Millisecond,
	}
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *database.RedisClient) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := database.NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestProvide_Success(t *testing.T) {
	up := &upstream{body: londonPayload, query: func(r *http.Request) {
		assert.Equal(t, "London", r.URL.Query().Get("q"))
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
	}}
	p := NewProvider(createTestConfig(up.start(t)), nil, nil, logger.NewTestLogger(t))

	result, err := p.Provide(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Current weather in London: light rain", result.Summary)
	a := result.Attachment
	assert.Equal(t, "Weather in London", slack.StringValue(a.Title))
	assert.Equal(t, "light rain, 12.3°C", slack.StringValue(a.Text))
	assert.Equal(t, "https://openweathermap.org/img/wn/10d@2x.png", slack.StringValue(a.ThumbURL))

	require.Len(t, a.Fields, 3)
	assert.Equal(t, "Temperature", slack.StringValue(a.Fields[0].Title))
	assert.Equal(t, "12.3°C", slack.StringValue(a.Fields[0].Value))
	assert.Equal(t, "81%", slack.StringValue(a.Fields[1].Value))
	assert.Equal(t, "4.1 m/s", slack.StringValue(a.Fields[2].Value))
	assert.True(t, *a.Fields[0].Short)
}

func TestProvide_ImperialUnits(t *testing.T) {
	up := &upstream{body: `{"weather":[{"description":"clear sky"}],"main":{"temp":70,"humidity":40},"wind":{"speed":3},"name":"Austin"}`}
	cfg := createTestConfig(up.start(t))
	cfg.Units = "imperial"
	p := NewProvider(cfg, nil, nil, logger.NewTestLogger(t))

	result, err := p.Provide(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "clear sky, 70.0°F", slack.StringValue(result.Attachment.Text))
	assert.Equal(t, "3.0 mph", slack.StringValue(result.Attachment.Fields[2].Value))
	assert.Nil(t, result.Attachment.ThumbURL)
}

func TestProvide_UsesCache(t *testing.T) {
	mr, cache := setupRedis(t)
	up := &upstream{body: londonPayload}
	p := NewProvider(createTestConfig(up.start(t)), nil, cache, logger.NewTestLogger(t))

	first, err := p.Provide(context.Background())
	require.NoError(t, err)
	second, err := p.Provide(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&up.calls))
	assert.Equal(t, first.Summary, second.Summary)

	cached, err := mr.Get("weather:london:metric")
	require.NoError(t, err)
	assert.JSONEq(t, londonPayload, cached)
	assert.Equal(t, 10*time.Minute, mr.TTL("weather:london:metric"))
}

func TestProvide_CacheExpiry(t *testing.T) {
	mr, cache := setupRedis(t)
	up := &upstream{body: londonPayload}
	p := NewProvider(createTestConfig(up.start(t)), nil, cache, logger.NewTestLogger(t))

	_, err := p.Provide(context.Background())
	require.NoError(t, err)
	mr.FastForward(11 * time.Minute)
	_, err = p.Provide(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&up.calls))
}

func TestProvide_CorruptCacheEntryIsIgnored(t *testing.T) {
	mr, cache := setupRedis(t)
	require.NoError(t, mr.Set("weather:london:metric", "not-json"))
	up := &upstream{body: londonPayload}
	p := NewProvider(createTestConfig(up.start(t)), nil, cache, logger.NewTestLogger(t))

	result, err := p.Provide(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Weather in London", slack.StringValue(result.Attachment.Title))
	assert.Equal(t, int32(1), atomic.LoadInt32(&up.calls))
}

func TestProvide_CacheFailuresDoNotFailRequest(t *testing.T) {
	redisClient, redisMock := redismock.NewClientMock()
	cache := database.NewRedisFromClient(redisClient)

	redisMock.ExpectGet("weather:london:metric").SetErr(errors.New("connection reset"))
	redisMock.ExpectSet("weather:london:metric", londonPayload, 10*time.Minute).SetErr(errors.New("connection reset"))

	up := &upstream{body: londonPayload}
	p := NewProvider(createTestConfig(up.start(t)), nil, cache, logger.NewTestLogger(t))

	result, err := p.Provide(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Weather in London", slack.StringValue(result.Attachment.Title))
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestProvide_CacheMissWithRedisNil(t *testing.T) {
	redisClient, redisMock := redismock.NewClientMock()
	cache := database.NewRedisFromClient(redisClient)

	redisMock.ExpectGet("weather:london:metric").RedisNil()
	redisMock.ExpectSet("weather:london:metric", londonPayload, 10*time.Minute).SetVal("OK")

	up := &upstream{body: londonPayload}
	p := NewProvider(createTestConfig(up.start(t)), nil, cache, logger.NewTestLogger(t))

	_, err := p.Provide(context.Background())
	require.NoError(t, err)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

// stallingCache never answers, like a Redis host whose packets are dropped.
type stallingCache struct {
	gets int32
	sets int32
}

func (c *stallingCache) Get(ctx context.Context, key string) (string, bool, error) {
	atomic.AddInt32(&c.gets, 1)
	<-ctx.Done()
	return "", false, ctx.Err()
}

func (c *stallingCache) Set(ctx context.Context, key, value string, exp time.Duration) error {
	atomic.AddInt32(&c.sets, 1)
	<-ctx.Done()
	return ctx.Err()
}

func TestProvide_StalledCacheDoesNotSpendUpstreamTimeout(t *testing.T) {
	up := &upstream{body: londonPayload}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&up.calls, 1)
		time.Sleep(150 * time.Millisecond)
		_, _ = w.Write([]byte(up.body))
	}))
	t.Cleanup(server.Close)

	cfg := createTestConfig(server.URL)
	cfg.Timeout = 200 * time.Millisecond
	cfg.CacheTimeout = 100 * time.Millisecond
	cache := &stallingCache{}
	p := NewProvider(cfg, httpclient.NewClientWith(server.Client()), cache, logger.NewTestLogger(t))

	result, err := p.Provide(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Weather in London", slack.StringValue(result.Attachment.Title))
	assert.Equal(t, int32(1), atomic.LoadInt32(&up.calls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&cache.gets))
	assert.Equal(t, int32(1), atomic.LoadInt32(&cache.sets))
}

func TestProvide_UpstreamStillBoundByTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(londonPayload))
	}))
	t.Cleanup(server.Close)

	cfg := createTestConfig(server.URL)
	cfg.Timeout = 50 * time.Millisecond
	p := NewProvider(cfg, httpclient.NewClientWith(server.Client()), nil, logger.NewTestLogger(t))

	_, err := p.Provide(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrProviderTimeout))
}

func TestProvide_InvalidPayload(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no weather entries", `{"weather":[],"main":{"temp":1}}`},
		{"temp not a number", `{"weather":[{"description":"x"}],"main":{"temp":"warm"}}`},
		{"missing main", `{"weather":[{"description":"x"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := &upstream{body: tt.body}
			p := NewProvider(createTestConfig(up.start(t)), nil, nil, logger.NewTestLogger(t))

			_, err := p.Provide(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidPayload))
		})
	}
}

func TestProvide_UpstreamUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"cod":401,"message":"Invalid API key"}`))
	}))
	t.Cleanup(server.Close)

	p := NewProvider(createTestConfig(server.URL), nil, nil, logger.NewTestLogger(t))
	_, err := p.Provide(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, apperrors.ErrInvalidPayload))
}

func TestParseConditions_FallbackCity(t *testing.T) {
	cond := parseConditions([]byte(`{"weather":[{"description":"fog"}],"main":{"temp":2}}`), "Oslo")
	assert.Equal(t, "Oslo", cond.City)
	assert.Equal(t, "fog", cond.Description)
	assert.Equal(t, 2.0, cond.Temperature)
}

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig(config.WeatherConfig{CacheTTL: 60000})
	assert.Equal(t, "London", cfg.City)
	assert.Equal(t, "metric", cfg.Units)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, 250*time.Millisecond, cfg.CacheTimeout)
}
