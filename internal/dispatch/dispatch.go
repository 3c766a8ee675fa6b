package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"starrlist/internal/journal"
	"starrlist/internal/services"
	"starrlist/internal/services/trakt"
)

// Variant describes one media manager and the hook events it emits.
type Variant struct {
	App          string
	MediaType    string
	EnvPrefix    string
	AddEvents    map[string]struct{}
	RemoveEvents map[string]struct{}
}

// SonarrVariant returns the Sonarr hook mapping.
func SonarrVariant() Variant {
	return Variant{
		App:          "sonarr",
		MediaType:    "series",
		EnvPrefix:    "sonarr_series",
		AddEvents:    eventSet("seriesadd"),
		RemoveEvents: eventSet("download", "seriesdelete"),
	}
}

// RadarrVariant returns the Radarr hook mapping.
func RadarrVariant() Variant {
	return Variant{
		App:          "radarr",
		MediaType:    "movie",
		EnvPrefix:    "radarr_movie",
		AddEvents:    eventSet("movieadded"),
		RemoveEvents: eventSet("download", "moviedelete"),
	}
}

func eventSet(names ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

// Event carries the media item a hook invocation refers to.
type Event struct {
	Title  string `json:"title"`
	Year   int    `json:"year,omitempty"`
	IMDBID string `json:"imdbId,omitempty"`
	TMDBID int64  `json:"tmdbId,omitempty"`
	TVDBID int64  `json:"tvdbId,omitempty"`
}

// hasData reports whether the event names an item at all. A payload with
// neither a title nor any identifier cannot be acted on.
func (e *Event) hasData() bool {
	return e != nil && (e.Title != "" || e.IMDBID != "" || e.TMDBID != 0 || e.TVDBID != 0)
}

// Item converts the event into a Trakt sync item.
func (e *Event) Item() trakt.Item {
	return trakt.Item{
		IDs: trakt.IDs{
			IMDB: e.IMDBID,
			TMDB: e.TMDBID,
			TVDB: e.TVDBID,
		},
		Title: e.Title,
		Year:  e.Year,
	}
}

// ParseEvent decodes an event from a JSON command-line argument.
func ParseEvent(raw string) (*Event, error) {
	var event Event
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		return nil, services.Wrap(services.ErrParse, "decode event data", err)
	}
	return &event, nil
}

// EventFromEnv builds an event from the variant's hook environment
// variables. It returns nil when no item is present, which is how the
// media managers signal events without a payload.
func (v Variant) EventFromEnv(lookup func(string) (string, bool)) *Event {
	title, ok := lookup(v.EnvPrefix + "_title")
	if !ok || title == "" {
		return nil
	}

	event := &Event{Title: title}
	if raw, ok := lookup(v.EnvPrefix + "_year"); ok {
		if year, err := strconv.Atoi(raw); err == nil {
			event.Year = year
		}
	}
	if raw, ok := lookup(v.EnvPrefix + "_imdbid"); ok {
		event.IMDBID = raw
	}
	if raw, ok := lookup(v.EnvPrefix + "_tmdbid"); ok {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			event.TMDBID = id
		}
	}
	if raw, ok := lookup(v.EnvPrefix + "_tvdbid"); ok {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			event.TVDBID = id
		}
	}
	return event
}

// ResolveEventType picks the event type: the hook environment variable
// wins, then the first command-line argument, then "test".
func ResolveEventType(v Variant, args []string, lookup func(string) (string, bool)) string {
	if value, ok := lookup(v.App + "_eventtype"); ok && value != "" {
		return value
	}
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return "test"
}

// WatchlistService is the slice of the Trakt client the dispatcher uses.
type WatchlistService interface {
	AddToWatchlist(ctx context.Context, mediaType string, item trakt.Item) (map[string]any, error)
	RemoveFromWatchlist(ctx context.Context, mediaType string, item trakt.Item) (map[string]any, error)
	TestConnection(ctx context.Context) bool
}

// Recorder persists the outcome of a handled event.
type Recorder interface {
	Record(ctx context.Context, entry journal.Entry) error
}

// DispatcherOption configures optional dispatcher collaborators.
type DispatcherOption func(*Dispatcher)

// WithJournal attaches an outcome recorder.
func WithJournal(recorder Recorder) DispatcherOption {
	return func(d *Dispatcher) {
		d.recorder = recorder
	}
}

// WithDispatchLogger overrides the default logger.
func WithDispatchLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// Dispatcher routes one hook event to the watchlist service.
type Dispatcher struct {
	variant  Variant
	service  WatchlistService
	recorder Recorder
	logger   *slog.Logger
}

// NewDispatcher builds a dispatcher for the given variant.
func NewDispatcher(variant Variant, service WatchlistService, opts ...DispatcherOption) (*Dispatcher, error) {
	if service == nil {
		return nil, fmt.Errorf("watchlist service is required")
	}
	d := &Dispatcher{
		variant: variant,
		service: service,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Handle processes one event. The boolean reports whether the event
// resulted in a successful watchlist action; unrecognized events and
// missing payloads are not errors.
func (d *Dispatcher) Handle(ctx context.Context, eventType string, event *Event) (bool, error) {
	normalized := strings.ToLower(strings.TrimSpace(eventType))

	if normalized == "test" {
		return d.service.TestConnection(ctx), nil
	}

	if !event.hasData() {
		d.logger.Warn("no event data found, skipping", slog.String("event_type", eventType))
		return false, nil
	}

	switch {
	case d.containsEvent(d.variant.AddEvents, normalized):
		result, err := d.service.AddToWatchlist(ctx, d.variant.MediaType, event.Item())
		if err != nil {
			d.record(ctx, normalized, "add", event, "error", err.Error())
			return false, fmt.Errorf("add %s to watchlist: %w", d.variant.MediaType, err)
		}
		d.logger.Info("added to watchlist",
			slog.String("media_type", d.variant.MediaType),
			slog.String("title", event.Title),
			slog.Any("result", result))
		d.record(ctx, normalized, "add", event, "added", "")
		return true, nil

	case d.containsEvent(d.variant.RemoveEvents, normalized):
		result, err := d.service.RemoveFromWatchlist(ctx, d.variant.MediaType, event.Item())
		if err != nil {
			d.record(ctx, normalized, "remove", event, "error", err.Error())
			return false, fmt.Errorf("remove %s from watchlist: %w", d.variant.MediaType, err)
		}
		d.logger.Info("removed from watchlist",
			slog.String("media_type", d.variant.MediaType),
			slog.String("title", event.Title),
			slog.Any("result", result))
		d.record(ctx, normalized, "remove", event, "removed", "")
		return true, nil

	default:
		d.logger.Info("no action for event type", slog.String("event_type", eventType))
		d.record(ctx, normalized, "none", event, "skipped", "")
		return false, nil
	}
}

func (d *Dispatcher) containsEvent(set map[string]struct{}, name string) bool {
	_, ok := set[name]
	return ok
}

func (d *Dispatcher) record(ctx context.Context, eventType, action string, event *Event, outcome, detail string) {
	if d.recorder == nil {
		return
	}
	entry := journal.Entry{
		App:       d.variant.App,
		EventType: eventType,
		Action:    action,
		MediaType: d.variant.MediaType,
		Title:     event.Title,
		Year:      event.Year,
		IMDBID:    event.IMDBID,
		TMDBID:    event.TMDBID,
		TVDBID:    event.TVDBID,
		Outcome:   outcome,
		Detail:    detail,
	}
	if err := d.recorder.Record(ctx, entry); err != nil {
		d.logger.Warn("journal write failed", "error", err)
	}
}
