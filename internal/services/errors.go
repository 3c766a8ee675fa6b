package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors classify service failures for the top-level handler.
// Transport failures are never retried, request failures carry the remote
// status after the single 401 retry is exhausted, and authentication
// failures terminate the run.
var (
	ErrTransport              = errors.New("transport error")
	ErrRequest                = errors.New("request error")
	ErrAuthentication         = errors.New("authentication error")
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrParse                  = errors.New("parse error")
)

// RequestError reports a remote response with status >= 400 so callers can
// inspect both the code and the body the service returned.
type RequestError struct {
	Status int
	Body   string
}

func (e *RequestError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("trakt request failed: HTTP %d", e.Status)
	}
	return fmt.Sprintf("trakt request failed: HTTP %d %s", e.Status, body)
}

func (e *RequestError) Unwrap() error {
	return ErrRequest
}

// Wrap tags err with the provided sentinel while keeping the original error
// inspectable through errors.Is/As.
func Wrap(marker error, operation string, err error) error {
	if marker == nil {
		marker = ErrRequest
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, operation, err)
	}
	return fmt.Errorf("%w: %s", marker, operation)
}
