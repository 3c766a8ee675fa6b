package trakt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"starrlist/internal/services"
)

// HTTPDoer abstracts http.Client.Do for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// postJSON issues a JSON POST and returns the response body and status
// uniformly for success and error responses, so callers can inspect the
// status themselves. It only fails on transport-level errors; those are not
// retried here.
func postJSON(ctx context.Context, doer HTTPDoer, url string, payload any, headers map[string]string, timeout time.Duration) (string, int, error) {
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return "", 0, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	return doRequest(ctx, doer, http.MethodPost, url, reader, headers, timeout)
}

// getJSON issues a GET with the same uniform (body, status) contract.
func getJSON(ctx context.Context, doer HTTPDoer, url string, headers map[string]string, timeout time.Duration) (string, int, error) {
	return doRequest(ctx, doer, http.MethodGet, url, nil, headers, timeout)
}

func doRequest(ctx context.Context, doer HTTPDoer, method, url string, body io.Reader, headers map[string]string, timeout time.Duration) (string, int, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return "", 0, fmt.Errorf("build request: %w", err)
	}
	for key, value := range headers {
		if value == "" {
			continue
		}
		req.Header.Set(key, value)
	}

	resp, err := doer.Do(req)
	if err != nil {
		return "", 0, services.Wrap(services.ErrTransport, method+" "+url, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, services.Wrap(services.ErrTransport, "read response from "+url, err)
	}
	return string(respBody), resp.StatusCode, nil
}
