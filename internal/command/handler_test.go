package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surprise-service/internal/common/config"
	apperrors "surprise-service/internal/common/errors"
	"surprise-service/internal/common/logger"
	"surprise-service/internal/providers"
	"surprise-service/internal/slack"
)

const testToken = "s3cr3t"

type stubProvider struct {
	name string
	err  error
	ts   *int64

	mu    sync.Mutex
	calls int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Provide(ctx context.Context) (*providers.Result, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return &providers.Result{
		Summary: "summary from " + s.name,
		Attachment: slack.Attachment{
			Title:  slack.String(s.name + " title"),
			Footer: slack.String("provider footer"),
			Color:  slack.String("#000000"),
			Ts:     s.ts,
		},
	}, nil
}

func (s *stubProvider) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type fixture struct {
	handler *Handler
	dog     *stubProvider
	weather *stubProvider
	job     *stubProvider
}

func createTestHandler(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		dog:     &stubProvider{name: "dog"},
		weather: &stubProvider{name: "weather"},
		job:     &stubProvider{name: "job"},
	}
	registry := providers.NewRegistry(f.dog, f.weather, f.job)
	cfg := &Config{Token: testToken, Command: "/surprise", Footer: DefaultFooter, Color: DefaultColor}
	f.handler = NewHandler(cfg, registry, nil, logger.NewTestLogger(t), opts...)
	return f
}

func validInput(text string) *Input {
	return &Input{
		Token:      testToken,
		Command:    "/surprise",
		Text:       text,
		HasToken:   true,
		HasCommand: true,
	}
}

func decodeResponse(t *testing.T, out *Output) *slack.Response {
	t.Helper()
	require.Equal(t, ContentTypeJSON, out.ContentType)
	var resp slack.Response
	require.NoError(t, json.Unmarshal(out.Body, &resp))
	return &resp
}

func requireCode(t *testing.T, err error, code apperrors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	var stdErr *apperrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, code, stdErr.Code)
}

func TestExecute_MissingFields(t *testing.T) {
	f := createTestHandler(t)

	tests := []struct {
		name  string
		input *Input
	}{
		{"token missing", &Input{Command: "/surprise", HasCommand: true}},
		{"command missing", &Input{Token: testToken, HasToken: true}},
		{"both missing", &Input{Text: "dog"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := f.handler.Execute(context.Background(), tt.input)
			assert.Nil(t, out)
			requireCode(t, err, apperrors.ErrCodeMalformedRequest)
			assert.Equal(t, http.StatusBadRequest, apperrors.HTTPStatus(apperrors.ErrCodeMalformedRequest))
		})
	}
	assert.Zero(t, f.dog.callCount()+f.weather.callCount()+f.job.callCount())
}

func TestExecute_EmptyCommandIsPresent(t *testing.T) {
	f := createTestHandler(t)
	input := validInput("dog")
	input.Command = ""

	out, err := f.handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, out.Status)
}

func TestExecute_OtherCommandNameIsServed(t *testing.T) {
	f := createTestHandler(t)
	input := validInput("dog")
	input.Command = "/party"

	out, err := f.handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, ContentTypeJSON, out.ContentType)
	assert.Equal(t, 1, f.dog.callCount())
}

func TestNewConfig_CarriesCommandName(t *testing.T) {
	cfg := NewConfig(config.SlackConfig{Token: "tok", Command: "/surprise"})
	assert.Equal(t, "tok", cfg.Token)
	assert.Equal(t, "/surprise", cfg.Command)
	assert.Equal(t, DefaultFooter, cfg.Footer)
	assert.Equal(t, DefaultColor, cfg.Color)
}

func TestExecute_TokenMismatch(t *testing.T) {
	f := createTestHandler(t)

	for _, token := range []string{"wrong", "", testToken + " ", strings.ToUpper(testToken)} {
		t.Run(fmt.Sprintf("token=%q", token), func(t *testing.T) {
			input := validInput("dog")
			input.Token = token

			out, err := f.handler.Execute(context.Background(), input)
			assert.Nil(t, out)
			requireCode(t, err, apperrors.ErrCodeUnauthorized)
			assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
		})
	}
	assert.Zero(t, f.dog.callCount())
}

func TestExecute_UnknownArgument(t *testing.T) {
	f := createTestHandler(t)

	for _, text := range []string{"bla-bla-bla", "Dog", "dogs", "weather now"} {
		t.Run(text, func(t *testing.T) {
			out, err := f.handler.Execute(context.Background(), validInput(text))
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, out.Status)
			assert.Equal(t, ContentTypeText, out.ContentType)
			assert.Equal(t, UnknownArgumentReply, string(out.Body))
		})
	}
	assert.Zero(t, f.dog.callCount()+f.weather.callCount()+f.job.callCount())
}

// Surrounding whitespace is dropped before matching; inner characters are not.
func TestExecute_ArgumentIsTrimmedBeforeMatching(t *testing.T) {
	tests := []struct {
		text     string
		provider string
	}{
		{" dog ", "dog"},
		{"\tweather\r\n", "weather"},
		{"job  ", "job"},
		{"d og", ""},
		{"dog!", ""},
		{" do g ", ""},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.text), func(t *testing.T) {
			f := createTestHandler(t)
			out, err := f.handler.Execute(context.Background(), validInput(tt.text))
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, out.Status)
			if tt.provider == "" {
				assert.Equal(t, ContentTypeText, out.ContentType)
				assert.Equal(t, UnknownArgumentReply, string(out.Body))
				assert.Zero(t, f.dog.callCount()+f.weather.callCount()+f.job.callCount())
				return
			}
			assert.Equal(t, tt.provider, out.Provider)
			assert.Equal(t, ContentTypeJSON, out.ContentType)
		})
	}
}

func TestExecute_NamedProvider(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	f := createTestHandler(t, WithClock(func() time.Time { return now }))

	for _, name := range KnownProviders {
		t.Run(name, func(t *testing.T) {
			out, err := f.handler.Execute(context.Background(), validInput("  "+name+"\n"))
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, out.Status)
			assert.Equal(t, name, out.Provider)

			resp := decodeResponse(t, out)
			assert.Equal(t, slack.ResponseTypeInChannel, slack.StringValue(resp.ResponseType))
			assert.Equal(t, "summary from "+name, slack.StringValue(resp.Text))
			require.Len(t, resp.Attachments, 1)

			a := resp.Attachments[0]
			assert.Equal(t, name+" title", slack.StringValue(a.Title))
			assert.Equal(t, "Generated by Surprise service", slack.StringValue(a.Footer))
			assert.Equal(t, "#36a64f", slack.StringValue(a.Color))
			require.NotNil(t, a.Ts)
			assert.Equal(t, now.Unix(), *a.Ts)
		})
	}
}

func TestExecute_KeepsProviderTimestamp(t *testing.T) {
	f := createTestHandler(t)
	f.weather.ts = slack.Int64(1700000000)

	out, err := f.handler.Execute(context.Background(), validInput("weather"))
	require.NoError(t, err)

	resp := decodeResponse(t, out)
	assert.Equal(t, int64(1700000000), *resp.Attachments[0].Ts)
}

func TestExecute_BodyKeyOrder(t *testing.T) {
	f := createTestHandler(t, WithClock(func() time.Time { return time.Unix(1, 0) }))

	out, err := f.handler.Execute(context.Background(), validInput("dog"))
	require.NoError(t, err)

	assert.Equal(t,
		`{"response_type":"in_channel","text":"summary from dog","attachments":[{"color":"#36a64f","title":"dog title","footer":"Generated by Surprise service","ts":1}]}`,
		string(out.Body))
}

func TestExecute_BlankArgumentUsesPicker(t *testing.T) {
	var seen []int
	f := createTestHandler(t, WithPicker(func(n int) int {
		seen = append(seen, n)
		return 2
	}))

	out, err := f.handler.Execute(context.Background(), validInput(""))
	require.NoError(t, err)
	assert.Equal(t, "job", out.Provider)
	assert.Equal(t, []int{3}, seen)
	assert.Equal(t, 1, f.job.callCount())
}

func TestExecute_BlankArgumentIsRoughlyUniform(t *testing.T) {
	f := createTestHandler(t)
	const trials = 3000

	counts := map[string]int{}
	for i := 0; i < trials; i++ {
		text := ""
		if i%2 == 1 {
			text = "   "
		}
		out, err := f.handler.Execute(context.Background(), validInput(text))
		require.NoError(t, err)
		counts[out.Provider]++
	}

	assert.Len(t, counts, 3)
	for _, name := range KnownProviders {
		share := float64(counts[name]) / trials
		assert.InDelta(t, 1.0/3.0, share, 0.06, "provider %s drawn %d times", name, counts[name])
	}
}

func TestExecute_ProviderFailurePropagates(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code apperrors.ErrorCode
	}{
		{"generic", errors.New("connection refused"), apperrors.ErrCodeProviderFailed},
		{"timeout", fmt.Errorf("slow: %w", apperrors.ErrProviderTimeout), apperrors.ErrCodeProviderTimeout},
		{"invalid payload", fmt.Errorf("bad: %w", apperrors.ErrInvalidPayload), apperrors.ErrCodeInvalidPayload},
		{"no content", fmt.Errorf("empty: %w", apperrors.ErrNoContent), apperrors.ErrCodeNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := createTestHandler(t)
			f.weather.err = tt.err

			out, err := f.handler.Execute(context.Background(), validInput("weather"))
			assert.Nil(t, out)
			requireCode(t, err, tt.code)
			assert.True(t, errors.Is(err, tt.err))
		})
	}
}

func TestExecute_UnregisteredKnownProvider(t *testing.T) {
	registry := providers.NewRegistry(&stubProvider{name: "dog"})
	h := NewHandler(&Config{Token: testToken}, registry, nil, logger.NewTestLogger(t))

	_, err := h.Execute(context.Background(), validInput("job"))
	requireCode(t, err, apperrors.ErrCodeProviderNotFound)
}

func TestExecute_ConcurrentInvocations(t *testing.T) {
	f := createTestHandler(t)

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.handler.Execute(context.Background(), validInput(KnownProviders[i%3]))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 50, f.dog.callCount()+f.weather.callCount()+f.job.callCount())
}

func TestBuildReply_SummaryFallback(t *testing.T) {
	f := createTestHandler(t)

	resp := f.handler.buildReply(&providers.Result{
		Attachment: slack.Attachment{Fallback: slack.String("fallback text")},
	})
	assert.Equal(t, "fallback text", slack.StringValue(resp.Text))

	resp = f.handler.buildReply(&providers.Result{})
	assert.NotEmpty(t, slack.StringValue(resp.Text))
}

func TestBuildReply_DoesNotMutateProviderResult(t *testing.T) {
	f := createTestHandler(t)
	result := &providers.Result{Summary: "s", Attachment: slack.Attachment{Title: slack.String("t")}}

	f.handler.buildReply(result)

	assert.Nil(t, result.Attachment.Footer)
	assert.Nil(t, result.Attachment.Ts)
}
