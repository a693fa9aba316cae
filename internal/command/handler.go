// internal/command/handler.go
package command

import (
	"context"
	"crypto/subtle"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	apperrors "surprise-service/internal/common/errors"
	"surprise-service/internal/common/logger"
	"surprise-service/internal/common/metrics"
	"surprise-service/internal/common/observability"
	"surprise-service/internal/providers"
	"surprise-service/internal/slack"
)

// Handler validates slash command invocations and dispatches them to providers.
type Handler struct {
	config   *Config
	registry *providers.Registry
	obs      *observability.Observability
	logger   logger.Logger

	pick func(n int) int
	now  func() time.Time
}

type Option func(*Handler)

// WithPicker replaces the uniform random draw used for a blank argument.
func WithPicker(pick func(n int) int) Option {
	return func(h *Handler) { h.pick = pick }
}

// WithClock replaces the clock used to stamp attachment timestamps.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

func NewHandler(cfg *Config, registry *providers.Registry, obs *observability.Observability, log logger.Logger, opts ...Option) *Handler {
	h := &Handler{
		config:   cfg,
		registry: registry,
		obs:      obs,
		logger:   log,
		pick:     rand.IntN,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Execute runs one invocation. Rejections and provider failures are returned
// as *apperrors.StandardError; everything else is a 200 Output.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	log := logger.FromContext(ctx, h.logger)

	if !input.HasToken || !input.HasCommand {
		missing := "token"
		if input.HasToken {
			missing = "command"
		}
		metrics.CommandsRejected.WithLabelValues("malformed").Inc()
		return nil, apperrors.NewMalformedRequestError("missing field: " + missing)
	}

	if !h.tokenMatches(input.Token) {
		metrics.CommandsRejected.WithLabelValues("unauthorized").Inc()
		return nil, apperrors.NewUnauthorizedError()
	}

	if h.config.Command != "" && input.Command != h.config.Command {
		log.Debug("invoked under unexpected command name", map[string]interface{}{
			"command":  input.Command,
			"expected": h.config.Command,
		})
	}

	name, ok := h.selectProvider(strings.TrimSpace(input.Text))
	if !ok {
		metrics.CommandsTotal.WithLabelValues("none", metrics.StatusUnknown).Inc()
		log.Info("unknown argument", map[string]interface{}{
			"command": input.Command,
		})
		return &Output{
			Status:      http.StatusOK,
			ContentType: ContentTypeText,
			Body:        []byte(UnknownArgumentReply),
		}, nil
	}

	provider, ok := h.registry.Get(name)
	if !ok {
		return nil, apperrors.NewProviderNotFoundError(name)
	}

	ctx, span := h.obs.StartSpan(ctx, "command.dispatch",
		attribute.String("command", input.Command),
		attribute.String("provider", name),
	)
	defer span.End()

	start := time.Now()
	result, err := provider.Provide(ctx)
	elapsed := time.Since(start)
	metrics.ProviderDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	h.obs.RecordProviderDuration(ctx, name, elapsed)

	if err != nil {
		stdErr := apperrors.NewProviderError(name, err)
		metrics.CommandsTotal.WithLabelValues(name, metrics.StatusFailed).Inc()
		metrics.ProviderErrors.WithLabelValues(name, string(stdErr.Code)).Inc()
		h.obs.RecordCommand(ctx, name, metrics.StatusFailed)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(stdErr.Code))
		return nil, stdErr
	}

	body, err := h.buildReply(result).MarshalJSON()
	if err != nil {
		return nil, apperrors.NewEncodingError(err)
	}

	metrics.CommandsTotal.WithLabelValues(name, metrics.StatusSuccess).Inc()
	h.obs.RecordCommand(ctx, name, metrics.StatusSuccess)
	log.Info("command answered", map[string]interface{}{
		"command":    input.Command,
		"provider":   name,
		"durationMs": elapsed.Milliseconds(),
	})

	return &Output{
		Status:      http.StatusOK,
		ContentType: ContentTypeJSON,
		Body:        body,
		Provider:    name,
	}, nil
}

func (h *Handler) tokenMatches(token string) bool {
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.config.Token)) == 1
}

// selectProvider maps the trimmed argument to a provider name. A blank
// argument draws uniformly from KnownProviders.
func (h *Handler) selectProvider(arg string) (string, bool) {
	if arg == "" {
		return KnownProviders[h.pick(len(KnownProviders))], true
	}
	for _, name := range KnownProviders {
		if arg == name {
			return name, true
		}
	}
	return "", false
}

func (h *Handler) buildReply(result *providers.Result) *slack.Response {
	attachment := result.Attachment.Clone()
	attachment.Footer = slack.String(h.config.Footer)
	attachment.Color = slack.String(h.config.Color)
	if attachment.Ts == nil {
		attachment.Ts = slack.Int64(h.now().Unix())
	}

	summary := result.Summary
	if summary == "" {
		summary = slack.StringValue(attachment.Fallback)
	}
	if summary == "" {
		summary = slack.StringValue(attachment.Title)
	}
	if summary == "" {
		summary = "Here is your surprise"
	}

	return slack.NewResponse(slack.ResponseTypeInChannel, summary, *attachment)
}
