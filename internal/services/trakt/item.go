package trakt

// IDs holds the external identifiers for a media item. Zero values are
// omitted from the wire format.
type IDs struct {
	IMDB string `json:"imdb,omitempty"`
	TMDB int64  `json:"tmdb,omitempty"`
	TVDB int64  `json:"tvdb,omitempty"`
}

// Item is a single watchlist entry in the Trakt wire format. The ids object
// is always emitted, even when every identifier is absent; title and year
// appear only when known.
type Item struct {
	IDs   IDs    `json:"ids"`
	Title string `json:"title,omitempty"`
	Year  int    `json:"year,omitempty"`
}

// collectionKey maps a media type to the Trakt sync collection.
func collectionKey(mediaType string) string {
	if mediaType == "series" {
		return "shows"
	}
	return "movies"
}
