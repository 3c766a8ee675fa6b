package trakt

import (
	"bufio"
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

	"github.com/mattn/go-isatty"

	"starrlist/internal/services"
)

const (
	defaultBaseURL      = "https://api.trakt.tv"
	defaultAuthorizeURL = "https://trakt.tv/oauth/authorize"
	redirectURI         = "urn:ietf:wg:oauth:2.0:oob"
	apiVersion          = "2"

	// expiryLeeway guards against clock skew and request latency: a token
	// this close to expiry is treated as already expired.
	expiryLeeway = 60

	defaultRequestTimeout  = 10 * time.Second
	defaultExchangeTimeout = 15 * time.Second
)

// Expired reports whether the record is unusable at the given instant. An
// absent or incomplete record always counts as expired.
func Expired(record TokenRecord, now time.Time) bool {
	if !record.Complete() {
		return true
	}
	return now.Unix() > record.ExpiresAtUnix()-expiryLeeway
}

// Prompter obtains a one-time authorization PIN from the user.
type Prompter interface {
	Prompt(authorizeURL string) (string, error)
}

type stdinPrompter struct {
	in  io.Reader
	out io.Writer
}

// NewStdinPrompter builds a Prompter that prints the authorization URL and
// reads the PIN from the given reader.
func NewStdinPrompter(in io.Reader, out io.Writer) Prompter {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &stdinPrompter{in: in, out: out}
}

func (p *stdinPrompter) Prompt(authorizeURL string) (string, error) {
	fmt.Fprintln(p.out, "To authorize starrlist with Trakt, visit:")
	fmt.Fprintf(p.out, "\n    %s\n\n", authorizeURL)
	fmt.Fprint(p.out, "Enter the PIN provided by Trakt: ")

	scanner := bufio.NewScanner(p.in)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", nil
	}
	return strings.TrimSpace(scanner.Text()), nil
}

// TerminalPrompter returns a stdin Prompter when the process is attached to
// a terminal, and nil otherwise. Hook invocations run without a terminal and
// must fail fast instead of blocking on input nobody will provide.
func TerminalPrompter() Prompter {
	if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return NewStdinPrompter(os.Stdin, os.Stdout)
	}
	return nil
}

// AuthorityOption customises Authority construction.
type AuthorityOption func(*Authority)

// WithHTTPDoer overrides the HTTP client used for token exchanges.
func WithHTTPDoer(doer HTTPDoer) AuthorityOption {
	return func(a *Authority) {
		a.http = doer
	}
}

// WithBaseURL overrides the API base URL (used in tests).
func WithBaseURL(baseURL string) AuthorityOption {
	return func(a *Authority) {
		a.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithAuthorizeURL overrides the interactive authorization page URL.
func WithAuthorizeURL(authorizeURL string) AuthorityOption {
	return func(a *Authority) {
		a.authorizeURL = strings.TrimRight(authorizeURL, "/")
	}
}

// WithTokenStore injects a custom persistence layer.
func WithTokenStore(store TokenStore) AuthorityOption {
	return func(a *Authority) {
		a.store = store
	}
}

// WithPrompter wires the interactive PIN fallback. A nil prompter keeps the
// authority non-interactive.
func WithPrompter(prompter Prompter) AuthorityOption {
	return func(a *Authority) {
		a.prompter = prompter
	}
}

// WithClock overrides the time source (used in tests).
func WithClock(now func() time.Time) AuthorityOption {
	return func(a *Authority) {
		a.now = now
	}
}

// WithLogger attaches a logger for refresh and authorization events.
func WithLogger(logger *slog.Logger) AuthorityOption {
	return func(a *Authority) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithExchangeTimeout overrides the token exchange timeout.
func WithExchangeTimeout(timeout time.Duration) AuthorityOption {
	return func(a *Authority) {
		if timeout > 0 {
			a.exchangeTimeout = timeout
		}
	}
}

// Authority owns the token lifecycle: fast-path reuse of a persisted record,
// opportunistic refresh-token grants, and the interactive PIN fallback for
// first-time setup.
type Authority struct {
	clientID     string
	clientSecret string
	baseURL      string
	authorizeURL string

	http            HTTPDoer
	store           TokenStore
	prompter        Prompter
	logger          *slog.Logger
	now             func() time.Time
	exchangeTimeout time.Duration
}

// NewAuthority builds an Authority for the given OAuth2 client credentials.
func NewAuthority(clientID, clientSecret string, opts ...AuthorityOption) (*Authority, error) {
	if clientID == "" || clientSecret == "" {
		return nil, errors.New("trakt client credentials are required")
	}

	authority := &Authority{
		clientID:        clientID,
		clientSecret:    clientSecret,
		baseURL:         defaultBaseURL,
		authorizeURL:    defaultAuthorizeURL,
		http:            &http.Client{Timeout: defaultExchangeTimeout},
		logger:          slog.Default(),
		now:             time.Now,
		exchangeTimeout: defaultExchangeTimeout,
	}
	for _, opt := range opts {
		opt(authority)
	}
	if authority.store == nil {
		return nil, errors.New("token store is required")
	}
	if authority.http == nil {
		authority.http = &http.Client{Timeout: defaultExchangeTimeout}
	}
	return authority, nil
}

// AuthorizeURL returns the page the user must visit to obtain a PIN.
func (a *Authority) AuthorizeURL() string {
	return fmt.Sprintf("%s?response_type=code&client_id=%s&redirect_uri=%s", a.authorizeURL, a.clientID, redirectURI)
}

// Token returns a valid token record, refreshing or re-authorizing as
// needed. A persisted non-expired record is returned without any network
// call.
func (a *Authority) Token(ctx context.Context) (TokenRecord, error) {
	record, found, err := a.store.Load()
	if err != nil {
		return TokenRecord{}, err
	}
	if found && !Expired(record, a.now()) {
		return record, nil
	}
	return a.renew(ctx, record)
}

// ForceRefresh renews the token even when the persisted record still looks
// valid. The watchlist client calls this after a 401 proved the current
// token dead.
func (a *Authority) ForceRefresh(ctx context.Context) (TokenRecord, error) {
	record, _, err := a.store.Load()
	if err != nil {
		return TokenRecord{}, err
	}
	return a.renew(ctx, record)
}

// Headers builds the authenticated header set for Trakt API calls. This may
// trigger the full refresh or interactive chain, so callers must tolerate it
// blocking.
func (a *Authority) Headers(ctx context.Context) (map[string]string, error) {
	record, err := a.Token(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"Authorization":     "Bearer " + record.AccessToken,
		"Content-Type":      "application/json",
		"trakt-api-version": apiVersion,
		"trakt-api-key":     a.clientID,
	}, nil
}

func (a *Authority) renew(ctx context.Context, record TokenRecord) (TokenRecord, error) {
	if record.RefreshToken != "" {
		if refreshed, outcome := a.tryRefresh(ctx, record); outcome == refreshOK {
			return refreshed, nil
		}
	}
	return a.authorizeInteractive(ctx)
}

type refreshOutcome int

const (
	refreshOK refreshOutcome = iota
	refreshFailed
)

// tryRefresh attempts a refresh-token grant. Failures are reported as an
// outcome value rather than an error: the caller falls through to the
// interactive path regardless of why the refresh failed.
func (a *Authority) tryRefresh(ctx context.Context, record TokenRecord) (TokenRecord, refreshOutcome) {
	payload := map[string]string{
		"refresh_token": record.RefreshToken,
		"client_id":     a.clientID,
		"client_secret": a.clientSecret,
		"redirect_uri":  redirectURI,
		"grant_type":    "refresh_token",
	}
	refreshed, err := a.exchange(ctx, payload)
	if err != nil {
		a.logger.Warn("trakt token refresh failed, falling back to PIN", "error", err)
		return TokenRecord{}, refreshFailed
	}
	if err := a.store.Save(refreshed); err != nil {
		a.logger.Warn("persisting refreshed trakt token failed", "error", err)
		return TokenRecord{}, refreshFailed
	}
	a.logger.Info("refreshed trakt access token")
	return refreshed, refreshOK
}

func (a *Authority) authorizeInteractive(ctx context.Context) (TokenRecord, error) {
	if a.prompter == nil {
		return TokenRecord{}, fmt.Errorf("%w: no usable trakt token and no terminal to prompt on; run 'starrlist auth'", services.ErrAuthenticationRequired)
	}

	pin, err := a.prompter.Prompt(a.AuthorizeURL())
	if err != nil {
		return TokenRecord{}, services.Wrap(services.ErrAuthentication, "read PIN", err)
	}
	pin = strings.TrimSpace(pin)
	if pin == "" {
		return TokenRecord{}, fmt.Errorf("%w: no PIN entered", services.ErrAuthentication)
	}

	payload := map[string]string{
		"code":          pin,
		"client_id":     a.clientID,
		"client_secret": a.clientSecret,
		"redirect_uri":  redirectURI,
		"grant_type":    "authorization_code",
	}
	record, err := a.exchange(ctx, payload)
	if err != nil {
		return TokenRecord{}, services.Wrap(services.ErrAuthentication, "exchange PIN", err)
	}
	if err := a.store.Save(record); err != nil {
		return TokenRecord{}, err
	}
	a.logger.Info("authorized trakt with new PIN")
	return record, nil
}

// exchange posts a grant payload to the token endpoint and validates the
// returned record.
func (a *Authority) exchange(ctx context.Context, payload map[string]string) (TokenRecord, error) {
	headers := map[string]string{"Content-Type": "application/json"}
	body, status, err := postJSON(ctx, a.http, a.baseURL+"/oauth/token", payload, headers, a.exchangeTimeout)
	if err != nil {
		return TokenRecord{}, err
	}
	if status >= http.StatusBadRequest {
		return TokenRecord{}, &services.RequestError{Status: status, Body: body}
	}

	var record TokenRecord
	if err := json.Unmarshal([]byte(body), &record); err != nil {
		return TokenRecord{}, services.Wrap(services.ErrParse, "decode token response", err)
	}
	if !record.Complete() {
		return TokenRecord{}, fmt.Errorf("%w: token response missing fields", services.ErrParse)
	}
	return record, nil
}
