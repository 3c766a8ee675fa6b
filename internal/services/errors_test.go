package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestRequestErrorUnwrapsToErrRequest(t *testing.T) {
	err := fmt.Errorf("add to watchlist: %w", &RequestError{Status: 404, Body: "not found"})

	if !errors.Is(err, ErrRequest) {
		t.Fatal("expected ErrRequest in chain")
	}

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatal("expected RequestError in chain")
	}
	if reqErr.Status != 404 {
		t.Fatalf("status = %d, want 404", reqErr.Status)
	}
}

func TestRequestErrorMessage(t *testing.T) {
	err := &RequestError{Status: 500, Body: " oops \n"}
	if got := err.Error(); got != "trakt request failed: HTTP 500 oops" {
		t.Fatalf("unexpected message: %q", got)
	}

	empty := &RequestError{Status: 502}
	if got := empty.Error(); got != "trakt request failed: HTTP 502" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestWrapKeepsBothMarkers(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrTransport, "post /sync/watchlist", cause)

	if !errors.Is(err, ErrTransport) {
		t.Fatal("expected ErrTransport in chain")
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected cause in chain")
	}
	if !strings.Contains(err.Error(), "post /sync/watchlist") {
		t.Fatalf("operation missing from %q", err.Error())
	}
}
