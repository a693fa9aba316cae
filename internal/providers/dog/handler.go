// internal/providers/dog/handler.go
package dog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	apperrors "surprise-service/internal/common/errors"
	httpclient "surprise-service/internal/common/http"
	"surprise-service/internal/common/logger"
	"surprise-service/internal/providers"
	"surprise-service/internal/slack"
)

const ProviderName = "dog"

type Provider struct {
	config *Config
	client *httpclient.Client
	logger logger.Logger
}

func NewProvider(cfg *Config, client *httpclient.Client, log logger.Logger) *Provider {
	if client == nil {
		client = httpclient.NewClient(cfg.Timeout)
	}
	return &Provider{
		config: cfg,
		client: client,
		logger: log.WithFields(map[string]interface{}{"provider": ProviderName}),
	}
}

func (p *Provider) Name() string { return ProviderName }

// Provide fetches one random dog picture.
func (p *Provider) Provide(ctx context.Context) (*providers.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	body, err := p.client.GetJSON(ctx, p.config.BaseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch random dog: %w", err)
	}

	if result := imageSchema.Validate(body); !result.Valid {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidPayload, result.Err())
	}

	var image ImageResponse
	if err := json.Unmarshal(body, &image); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidPayload, err)
	}

	attachment := slack.Attachment{
		Fallback: slack.String("Random dog: " + image.Message),
		Title:    slack.String("Random dog"),
		ImageURL: slack.String(image.Message),
	}

	breed := breedFromURL(image.Message)
	if breed != "" {
		attachment.Fields = []slack.Field{slack.NewField("Breed", breed, true)}
	}

	p.logger.Debug("dog image fetched", map[string]interface{}{
		"breed": breed,
	})

	summary := "Here is a random dog for you"
	if breed != "" {
		summary = fmt.Sprintf("Here is a random dog for you: %s", breed)
	}

	return &providers.Result{
		Summary:    summary,
		Attachment: attachment,
	}, nil
}

// breedFromURL turns ".../breeds/hound-afghan/x.jpg" into "Hound Afghan".
func breedFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i < len(segments)-1; i++ {
		if segments[i] != "breeds" {
			continue
		}
		words := strings.FieldsFunc(segments[i+1], func(r rune) bool {
			return r == '-' || r == '_'
		})
		for j, w := range words {
			words[j] = strings.ToUpper(w[:1]) + w[1:]
		}
		return strings.Join(words, " ")
	}
	return ""
}
