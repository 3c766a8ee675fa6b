// Package dispatch maps Sonarr and Radarr hook events onto Trakt
// watchlist actions. Each media manager is a Variant that names its
// environment prefix and the event types that add or remove items.
package dispatch
