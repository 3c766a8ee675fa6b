// Package trakt talks to the Trakt API on behalf of hook invocations.
//
// The Authority owns the token lifecycle: it reuses a persisted record while
// it is still valid, attempts a refresh-token grant when it is not, and only
// then falls back to the interactive PIN flow. The Client layers the
// watchlist operations on top, retrying exactly once after a 401 forces a
// renewal. Both collaborate through small interfaces (TokenStore, HTTPDoer,
// Prompter, TokenProvider) so tests can swap persistence, transport, and
// user interaction independently.
package trakt
