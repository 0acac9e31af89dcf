package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/learnquest/questsync/internal/core/domain"
	"github.com/learnquest/questsync/internal/core/ports/driven"
	"github.com/learnquest/questsync/internal/logger"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 4096

// Client talks to the LearnQuest backend.
type Client struct {
	baseURL string
	hc      *http.Client
	limiter *RateLimiter
}

var _ driven.BackendAPI = (*Client)(nil)

// NewClient creates a client from API settings. Zero values take the
// package defaults.
func NewClient(cfg domain.APISettings) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = domain.DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = domain.DefaultAPITimeout
	}

	hc := &http.Client{}
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token, TokenType: "Bearer"})
		hc = oauth2.NewClient(context.Background(), ts)
	}
	hc.Timeout = cfg.Timeout

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		hc:      hc,
		limiter: NewRateLimiter(cfg.RequestsPerSecond),
	}
}

// BaseURL returns the API root the client sends requests to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// errorBody is the backend's error payload.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// do sends one request and returns the response body of a 2xx answer.
func (c *Client) do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	endpoint := c.baseURL + path

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("building %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", domain.ErrOffline, method, path, err)
	}
	defer resp.Body.Close()
	logger.Debug("%s %s -> %d (%s)", method, path, resp.StatusCode, time.Since(start).Round(time.Millisecond))

	c.limiter.Observe(resp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, remoteError(resp, endpoint)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s %s: %w", domain.ErrOffline, method, path, err)
	}
	return data, nil
}

func remoteError(resp *http.Response, endpoint string) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	msg := strings.TrimSpace(string(data))
	var payload errorBody
	if json.Unmarshal(data, &payload) == nil {
		switch {
		case payload.Error != "":
			msg = payload.Error
		case payload.Message != "":
			msg = payload.Message
		}
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	return &domain.RemoteError{
		StatusCode: resp.StatusCode,
		Message:    msg,
		URL:        endpoint,
	}
}

func escape(id string) string {
	return url.PathEscape(id)
}
