// internal/common/http/client.go
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	apperrors "surprise-service/internal/common/errors"
)

const maxBodySize = 1 << 20

var (
	// ErrTimeout matches apperrors.ErrProviderTimeout through errors.Is.
	ErrTimeout          = fmt.Errorf("http request timed out: %w", apperrors.ErrProviderTimeout)
	ErrUnexpectedStatus = errors.New("unexpected upstream status")
)

type Client struct {
	httpClient *http.Client
	userAgent  string
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: "surprise-service/1.0",
	}
}

// NewClientWith wraps an existing *http.Client, e.g. one from httptest.
func NewClientWith(hc *http.Client) *Client {
	return &Client{httpClient: hc, userAgent: "surprise-service/1.0"}
}

// GetJSON performs a GET against rawURL with query appended and returns the
// body of a 2xx response. Deadline and network timeouts wrap ErrTimeout.
func (c *Client) GetJSON(ctx context.Context, rawURL string, query url.Values) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, fmt.Errorf("GET %s: %w", u.Host, ErrTimeout)
		}
		return nil, fmt.Errorf("GET %s: %w", u.Host, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, fmt.Errorf("GET %s: %w", u.Host, ErrTimeout)
		}
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("GET %s: %w: %d", u.Host, ErrUnexpectedStatus, resp.StatusCode)
	}

	return body, nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
