// Package journal keeps a local record of watchlist actions so that
// hook runs can be inspected after the fact.
package journal
