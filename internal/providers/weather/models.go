package weather

import (
	"context"
	"time"

	"surprise-service/internal/common/validation"
)

// Cache stores raw upstream payloads. *database.RedisClient satisfies it.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
}

// Conditions is the subset of the current weather payload the attachment uses.
type Conditions struct {
	City        string
	Description string
	Icon        string
	Temperature float64
	Humidity    int64
	WindSpeed   float64
}

var currentWeatherSchema = validation.MustCompile(`{
	"type": "object",
	"required": ["weather", "main"],
	"properties": {
		"name": {"type": "string"},
		"weather": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["description"],
				"properties": {
					"description": {"type": "string"},
					"icon": {"type": "string"}
				}
			}
		},
		"main": {
			"type": "object",
			"required": ["temp"],
			"properties": {
				"temp": {"type": "number"},
				"humidity": {"type": "number"}
			}
		},
		"wind": {
			"type": "object",
			"properties": {
				"speed": {"type": "number"}
			}
		}
	}
}`)
