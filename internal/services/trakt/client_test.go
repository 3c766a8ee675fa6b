package trakt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"starrlist/internal/services"
)

// scriptedTokens hands out tokens and records ForceRefresh calls.
// refreshErrs, when set, supplies the outcome of each successive
// ForceRefresh call; a nil entry succeeds.
type scriptedTokens struct {
	token       string
	refreshes   int
	headerErr   error
	refreshErrs []error
}

func (s *scriptedTokens) Headers(context.Context) (map[string]string, error) {
	if s.headerErr != nil {
		return nil, s.headerErr
	}
	return map[string]string{
		"Authorization":     "Bearer " + s.token,
		"Content-Type":      "application/json",
		"trakt-api-version": "2",
		"trakt-api-key":     "client-id",
	}, nil
}

func (s *scriptedTokens) ForceRefresh(context.Context) (TokenRecord, error) {
	s.refreshes++
	if len(s.refreshErrs) >= s.refreshes {
		if err := s.refreshErrs[s.refreshes-1]; err != nil {
			return TokenRecord{}, err
		}
	}
	s.token = "renewed"
	return TokenRecord{AccessToken: s.token, RefreshToken: "r", CreatedAt: 1, ExpiresIn: 7200}, nil
}

func newTestClient(t *testing.T, tokens TokenProvider, baseURL string) (*Client, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	client, err := NewClient(tokens,
		WithClientBaseURL(baseURL),
		WithClientOutput(out),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client, out
}

func TestAddToWatchlistSuccess(t *testing.T) {
	var gotPath string
	var gotBody map[string][]Item
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if got := r.Header.Get("trakt-api-version"); got != "2" {
			t.Fatalf("missing api version header, got %q", got)
		}
		data, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(data, &gotBody); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"added":{"shows":1}}`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, &scriptedTokens{token: "good"}, server.URL)

	item := Item{IDs: IDs{TVDB: 12345}, Title: "Foo", Year: 2020}
	result, err := client.AddToWatchlist(context.Background(), "series", item)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if gotPath != "/sync/watchlist" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if len(gotBody["shows"]) != 1 || gotBody["shows"][0].Title != "Foo" {
		t.Fatalf("unexpected payload: %#v", gotBody)
	}
	if _, ok := result["added"]; !ok {
		t.Fatalf("result not parsed: %#v", result)
	}
}

func TestRemoveFromWatchlistUsesRemoveEndpointAndMoviesKey(t *testing.T) {
	var gotPath string
	var gotBody map[string][]Item
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		_, _ = w.Write([]byte(`{"deleted":{"movies":1}}`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, &scriptedTokens{token: "good"}, server.URL)

	_, err := client.RemoveFromWatchlist(context.Background(), "movie", Item{IDs: IDs{IMDB: "tt1"}})
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if gotPath != "/sync/watchlist/remove" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if _, ok := gotBody["movies"]; !ok {
		t.Fatalf("expected movies collection, got %#v", gotBody)
	}
}

func TestMutate401ForcesRefreshAndRetriesOnce(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if r.Header.Get("Authorization") == "Bearer stale" {
			http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"added":{"movies":1}}`))
	}))
	defer server.Close()

	tokens := &scriptedTokens{token: "stale"}
	client, _ := newTestClient(t, tokens, server.URL)

	result, err := client.AddToWatchlist(context.Background(), "movie", Item{IDs: IDs{IMDB: "tt1"}})
	if err != nil {
		t.Fatalf("add after retry: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
	if tokens.refreshes != 1 {
		t.Fatalf("expected exactly one forced refresh, got %d", tokens.refreshes)
	}
	if _, ok := result["added"]; !ok {
		t.Fatalf("result not parsed: %#v", result)
	}
}

func TestMutateSecond401IsFatalWithoutThirdAttempt(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	tokens := &scriptedTokens{token: "stale"}
	client, _ := newTestClient(t, tokens, server.URL)

	_, err := client.AddToWatchlist(context.Background(), "movie", Item{IDs: IDs{IMDB: "tt1"}})
	if err == nil {
		t.Fatal("expected error after second 401")
	}
	var reqErr *services.RequestError
	if !errors.As(err, &reqErr) || reqErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected RequestError 401, got %v", err)
	}
	if !strings.Contains(reqErr.Body, "invalid token") {
		t.Fatalf("response body not carried: %q", reqErr.Body)
	}
	if !strings.HasPrefix(err.Error(), "add to watchlist:") {
		t.Fatalf("unexpected error phrasing: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected exactly 2 attempts, got %d", attempts)
	}
	if tokens.refreshes != 1 {
		t.Fatalf("only the first 401 may force a refresh, got %d", tokens.refreshes)
	}
}

func TestMutateFinal401NeverRenewsAgain(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	// A second renewal would fail loudly; the final 401 must not reach it.
	tokens := &scriptedTokens{
		token:       "stale",
		refreshErrs: []error{nil, errors.New("renewal must not run on the last attempt")},
	}
	client, _ := newTestClient(t, tokens, server.URL)

	_, err := client.AddToWatchlist(context.Background(), "movie", Item{IDs: IDs{IMDB: "tt1"}})
	var reqErr *services.RequestError
	if !errors.As(err, &reqErr) || reqErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected RequestError 401, got %v", err)
	}
	if tokens.refreshes != 1 {
		t.Fatalf("expected a single forced refresh, got %d", tokens.refreshes)
	}
}

func TestMutateNon401ErrorDoesNotRetry(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, `{"error":"unprocessable"}`, http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	tokens := &scriptedTokens{token: "good"}
	client, _ := newTestClient(t, tokens, server.URL)

	_, err := client.RemoveFromWatchlist(context.Background(), "series", Item{})
	var reqErr *services.RequestError
	if !errors.As(err, &reqErr) || reqErr.Status != http.StatusUnprocessableEntity {
		t.Fatalf("expected RequestError 422, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "remove from watchlist:") {
		t.Fatalf("unexpected error phrasing: %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected a single attempt, got %d", attempts)
	}
	if tokens.refreshes != 0 {
		t.Fatalf("non-401 must not force a refresh, got %d", tokens.refreshes)
	}
}

func TestMutateEmptyBodyYieldsEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client, _ := newTestClient(t, &scriptedTokens{token: "good"}, server.URL)

	result, err := client.RemoveFromWatchlist(context.Background(), "movie", Item{IDs: IDs{TMDB: 7}})
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(result) != 0 {
		t.Fatalf("expected empty result, got %#v", result)
	}
}

func TestTestConnectionPrintsUsername(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/me" || r.Method != http.MethodGet {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"username":"couchpotato"}`))
	}))
	defer server.Close()

	client, out := newTestClient(t, &scriptedTokens{token: "good"}, server.URL)

	if !client.TestConnection(context.Background()) {
		t.Fatal("expected test connection to succeed")
	}
	if !strings.Contains(out.String(), "couchpotato") {
		t.Fatalf("username not printed: %q", out.String())
	}
}

func TestTestConnectionSwallowsFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	client, out := newTestClient(t, &scriptedTokens{token: "good"}, server.URL)
	if client.TestConnection(context.Background()) {
		t.Fatal("expected failure on 500")
	}
	if !strings.Contains(out.String(), "failed") {
		t.Fatalf("failure not reported: %q", out.String())
	}

	// Transport-level failure: point at a closed server.
	closed := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	closed.Close()
	client, _ = newTestClient(t, &scriptedTokens{token: "good"}, closed.URL)
	if client.TestConnection(context.Background()) {
		t.Fatal("expected failure on transport error")
	}

	// Token acquisition failure.
	client, _ = newTestClient(t, &scriptedTokens{headerErr: errors.New("no token")}, server.URL)
	if client.TestConnection(context.Background()) {
		t.Fatal("expected failure when headers cannot be built")
	}
}
