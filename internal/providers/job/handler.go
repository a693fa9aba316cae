// internal/providers/job/handler.go
package job

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	apperrors "surprise-service/internal/common/errors"
	"surprise-service/internal/common/logger"
	"surprise-service/internal/providers"
	"surprise-service/internal/slack"
)

const ProviderName = "job"

type Provider struct {
	config   *Config
	searcher Searcher
	logger   logger.Logger
}

func NewProvider(cfg *Config, searcher Searcher, log logger.Logger) *Provider {
	return &Provider{
		config:   cfg,
		searcher: searcher,
		logger:   log.WithFields(map[string]interface{}{"provider": ProviderName, "index": cfg.Index}),
	}
}

func (p *Provider) Name() string { return ProviderName }

// Provide picks one random job listing from the index.
func (p *Provider) Provide(ctx context.Context) (*providers.Result, error) {
	if p.searcher == nil {
		return nil, errors.New("job listing store is not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	body, err := p.searcher.Search(ctx, p.config.Index, strings.NewReader(randomListingQuery))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("search %s: %w", p.config.Index, apperrors.ErrProviderTimeout)
		}
		return nil, fmt.Errorf("search %s: %w", p.config.Index, err)
	}

	listing, err := parseListing(body)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("job listing selected", map[string]interface{}{"jobId": listing.ID})

	return &providers.Result{
		Summary:    fmt.Sprintf("How about this job: %s", listing.Title),
		Attachment: buildAttachment(listing),
	}, nil
}

func parseListing(body []byte) (*Listing, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: search response is not JSON", apperrors.ErrInvalidPayload)
	}

	hit := gjson.GetBytes(body, "hits.hits.0")
	if !hit.Exists() {
		return nil, fmt.Errorf("%w: no job listings indexed", apperrors.ErrNoContent)
	}

	src := hit.Get("_source")
	listing := &Listing{
		ID:       hit.Get("_id").String(),
		Title:    src.Get("title").String(),
		URL:      src.Get("url").String(),
		Company:  src.Get("company").String(),
		Location: src.Get("location").String(),
		Category: src.Get("category").String(),
	}
	if listing.Title == "" {
		return nil, fmt.Errorf("%w: job listing %q has no title", apperrors.ErrInvalidPayload, listing.ID)
	}
	return listing, nil
}

func buildAttachment(l *Listing) slack.Attachment {
	attachment := slack.Attachment{
		Fallback: slack.String("Job: " + l.Title),
		Title:    slack.String(l.Title),
	}
	if l.URL != "" {
		attachment.TitleLink = slack.String(l.URL)
	}

	for _, f := range []struct{ title, value string }{
		{"Company", l.Company},
		{"Location", l.Location},
		{"Category", l.Category},
	} {
		if f.value != "" {
			attachment.Fields = append(attachment.Fields, slack.NewField(f.title, f.value, true))
		}
	}
	return attachment
}
