// Package session provides the durable per-user playback session record.
package session

import (
	"github.com/voxdj/voxdj/internal/domain/playlist"
	"github.com/voxdj/voxdj/internal/domain/song"
)

// PlaybackInfo is the runtime queue state. Index points into PlayOrder, not
// into the playlist directly; the currently playing track is
// Playlist[PlayOrder[Index]]. This indirection keeps shuffle a pure
// permutation of playback order without mutating the stored track sequence.
type PlaybackInfo struct {
	PlayOrder          []int  `json:"play_order" mapstructure:"play_order"`
	Index              int    `json:"index" mapstructure:"index"`
	OffsetMS           int64  `json:"offset_in_ms" mapstructure:"offset_in_ms"`
	NextStreamEnqueued bool   `json:"next_stream_enqueued" mapstructure:"next_stream_enqueued"`
	InPlaybackSession  bool   `json:"in_playback_session" mapstructure:"in_playback_session"`
	HasPreviousSession bool   `json:"has_previous_playback_session" mapstructure:"has_previous_playback_session"`
	StreamURL          string `json:"stream_url" mapstructure:"stream_url"`
}

// Settings holds the user's playback settings.
type Settings struct {
	Loop    bool `json:"loop" mapstructure:"loop"`
	Shuffle bool `json:"shuffle" mapstructure:"shuffle"`
}

// Record is the complete durable state for one user. Created on the user's
// first command, mutated in place per command, never explicitly destroyed.
type Record struct {
	ResolverURL    string                       `json:"api_url" mapstructure:"api_url"`
	Playlist       []song.Metadata              `json:"playlist" mapstructure:"playlist"`
	Playback       PlaybackInfo                 `json:"playback_info" mapstructure:"playback_info"`
	Settings       Settings                     `json:"playback_setting" mapstructure:"playback_setting"`
	SavedPlaylists map[string]playlist.Playlist `json:"saved_playlists" mapstructure:"saved_playlists"`
}

// NewRecord returns the default record for a first-time user: empty queue,
// loop and shuffle off, no saved playlists.
func NewRecord() *Record {
	return &Record{
		Playlist:       []song.Metadata{},
		Playback:       PlaybackInfo{PlayOrder: []int{}},
		SavedPlaylists: map[string]playlist.Playlist{},
	}
}

// QueueLen returns the number of queued tracks.
func (r *Record) QueueLen() int {
	return len(r.Playback.PlayOrder)
}

// TrackAt returns the track at the given play-order slot.
func (r *Record) TrackAt(slot int) (song.Metadata, bool) {
	if slot < 0 || slot >= len(r.Playback.PlayOrder) {
		return song.Metadata{}, false
	}
	i := r.Playback.PlayOrder[slot]
	if i < 0 || i >= len(r.Playlist) {
		return song.Metadata{}, false
	}
	return r.Playlist[i], true
}

// CurrentTrack returns the track at the current position.
func (r *Record) CurrentTrack() (song.Metadata, bool) {
	return r.TrackAt(r.Playback.Index)
}
