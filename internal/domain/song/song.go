// Package song provides track metadata and stream entities.
package song

import "strings"

// Thumbnail represents track artwork.
type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Metadata represents one playable track as reported by the resolver.
// Immutable once fetched; ID is unique within a queue but not globally.
type Metadata struct {
	Title     string     `json:"title"`
	Artist    string     `json:"artist"`
	ID        string     `json:"video_id"` // catalog track identifier
	Thumbnail *Thumbnail `json:"thumbnail,omitempty"`
}

// Stream holds a playable audio URL. Stream URLs expire, so a fresh one
// must be re-resolved per playback attempt.
type Stream struct {
	AudioURL string `json:"audio_url"`
}

// Info pairs a track's metadata with a freshly resolved stream.
// This is the unit handed to the playback surface.
type Info struct {
	Metadata Metadata `json:"metadata"`
	Stream   Stream   `json:"stream"`
}

// SearchFilter selects the catalog search mode used by the resolver.
type SearchFilter string

const (
	FilterSongs   SearchFilter = "songs"
	FilterArtists SearchFilter = "artists"
	FilterAlbums  SearchFilter = "albums"
)

// ParseSearchFilter parses a filter string. Unknown values fall back to songs.
func ParseSearchFilter(s string) SearchFilter {
	switch SearchFilter(strings.ToLower(s)) {
	case FilterArtists:
		return FilterArtists
	case FilterAlbums:
		return FilterAlbums
	default:
		return FilterSongs
	}
}
