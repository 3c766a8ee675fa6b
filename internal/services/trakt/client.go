package trakt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"starrlist/internal/services"
)

// TokenProvider supplies authenticated headers and lets the client force a
// renewal after a proven-dead token.
type TokenProvider interface {
	Headers(ctx context.Context) (map[string]string, error)
	ForceRefresh(ctx context.Context) (TokenRecord, error)
}

// ClientOption customises Client construction.
type ClientOption func(*Client)

// WithClientDoer overrides the HTTP client used for watchlist calls.
func WithClientDoer(doer HTTPDoer) ClientOption {
	return func(c *Client) {
		c.http = doer
	}
}

// WithClientBaseURL overrides the API base URL (used in tests).
func WithClientBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithClientLogger attaches a logger.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClientOutput redirects user-facing diagnostics (the test probe).
func WithClientOutput(out io.Writer) ClientOption {
	return func(c *Client) {
		if out != nil {
			c.out = out
		}
	}
}

// WithClientTimeout overrides the per-request timeout.
func WithClientTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// Client issues watchlist mutations against the Trakt sync API, applying the
// bounded retry-on-401 protocol.
type Client struct {
	baseURL string
	http    HTTPDoer
	tokens  TokenProvider
	logger  *slog.Logger
	out     io.Writer
	timeout time.Duration
}

// NewClient builds a watchlist client on top of the given token provider.
func NewClient(tokens TokenProvider, opts ...ClientOption) (*Client, error) {
	if tokens == nil {
		return nil, errors.New("token provider is required")
	}
	client := &Client{
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: defaultRequestTimeout},
		tokens:  tokens,
		logger:  slog.Default(),
		out:     os.Stdout,
		timeout: defaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.http == nil {
		client.http = &http.Client{Timeout: defaultRequestTimeout}
	}
	return client, nil
}

// AddToWatchlist puts a single item on the remote watchlist. The call is
// idempotent on the Trakt side, so a retried request cannot double-add.
func (c *Client) AddToWatchlist(ctx context.Context, mediaType string, item Item) (map[string]any, error) {
	return c.mutate(ctx, actionAdd, mediaType, item)
}

// RemoveFromWatchlist takes a single item off the remote watchlist.
func (c *Client) RemoveFromWatchlist(ctx context.Context, mediaType string, item Item) (map[string]any, error) {
	return c.mutate(ctx, actionRemove, mediaType, item)
}

const (
	actionAdd    = "add"
	actionRemove = "remove"

	// One renewal, one retry. A second 401 is final.
	maxMutateAttempts = 2
)

// unauthorizedError marks the one retryable condition: the remote rejected
// the bearer token and a renewed one is ready for the retry.
type unauthorizedError struct{}

func (e *unauthorizedError) Error() string {
	return "trakt rejected the access token"
}

// mutate runs one watchlist operation with at most two attempts. A 401 on
// the first attempt forces a token renewal and a single retry; a 401 on the
// last attempt surfaces as a RequestError without another renewal, and every
// other failure is final.
func (c *Client) mutate(ctx context.Context, action, mediaType string, item Item) (map[string]any, error) {
	endpoint := "/sync/watchlist"
	operation := "add to watchlist"
	if action == actionRemove {
		endpoint += "/remove"
		operation = "remove from watchlist"
	}
	payload := map[string][]Item{collectionKey(mediaType): {item}}

	c.logger.Info("sending watchlist mutation",
		"action", action,
		"collection", collectionKey(mediaType),
		"title", item.Title,
		"year", item.Year,
	)

	attempts := 0
	var result map[string]any
	attempt := func() error {
		attempts++
		headers, err := c.tokens.Headers(ctx)
		if err != nil {
			return retry.Unrecoverable(err)
		}

		body, status, err := postJSON(ctx, c.http, c.baseURL+endpoint, payload, headers, c.timeout)
		if err != nil {
			return retry.Unrecoverable(err)
		}
		if status == http.StatusUnauthorized {
			if attempts >= maxMutateAttempts {
				return retry.Unrecoverable(&services.RequestError{Status: status, Body: body})
			}
			c.logger.Info("trakt token expired or unauthorized, refreshing and retrying")
			if _, err := c.tokens.ForceRefresh(ctx); err != nil {
				return retry.Unrecoverable(err)
			}
			return &unauthorizedError{}
		}
		if status >= http.StatusBadRequest {
			return retry.Unrecoverable(&services.RequestError{Status: status, Body: body})
		}

		if strings.TrimSpace(body) == "" {
			result = map[string]any{}
			return nil
		}
		if err := json.Unmarshal([]byte(body), &result); err != nil {
			return retry.Unrecoverable(services.Wrap(services.ErrParse, "decode sync response", err))
		}
		return nil
	}

	err := retry.Do(attempt,
		retry.Context(ctx),
		retry.Attempts(maxMutateAttempts),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var unauthorized *unauthorizedError
			return errors.As(err, &unauthorized)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	return result, nil
}

// TestConnection probes the account identity endpoint. It is a diagnostic:
// every failure is logged and converted to false, never raised.
func (c *Client) TestConnection(ctx context.Context) bool {
	c.logger.Info("testing trakt authentication", "endpoint", "/users/me")

	headers, err := c.tokens.Headers(ctx)
	if err != nil {
		return c.testFailed(err)
	}

	body, status, err := getJSON(ctx, c.http, c.baseURL+"/users/me", headers, c.timeout)
	if err != nil {
		return c.testFailed(err)
	}
	if status >= http.StatusBadRequest {
		return c.testFailed(&services.RequestError{Status: status, Body: body})
	}

	var account struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal([]byte(body), &account); err != nil {
		return c.testFailed(services.Wrap(services.ErrParse, "decode account response", err))
	}

	username := account.Username
	if username == "" {
		username = "<unknown>"
	}
	fmt.Fprintf(c.out, "Trakt authentication successful. User: %s\n", username)
	c.logger.Info("trakt authentication test passed", "username", username)
	return true
}

func (c *Client) testFailed(err error) bool {
	c.logger.Error("trakt authentication test failed", "error", err)
	fmt.Fprintf(c.out, "Trakt authentication test failed: %v\n", err)
	return false
}
