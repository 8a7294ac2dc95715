package player

import (
	"sort"

	"github.com/voxdj/voxdj/internal/domain/playlist"
	"github.com/voxdj/voxdj/internal/domain/session"
	"github.com/voxdj/voxdj/internal/domain/similarity"
)

// DefaultMatchThreshold is the similarity a spoken name must strictly exceed
// to match a saved playlist.
const DefaultMatchThreshold = 0.7

// Registry manages the user's saved playlists with fuzzy name resolution.
// Matching is first-above-threshold, not best-match: a linear scan that stops
// at the first name scoring strictly above the threshold. Names are scanned
// in sorted order to keep the scan deterministic.
type Registry struct {
	threshold float64
}

// NewRegistry creates a registry with the given match threshold.
func NewRegistry(threshold float64) *Registry {
	if threshold <= 0 {
		threshold = DefaultMatchThreshold
	}
	return &Registry{threshold: threshold}
}

// Save inserts or overwrites the playlist under the display name.
// Last write wins on identical names.
func (g *Registry) Save(rec *session.Record, pl playlist.Playlist, displayName string) {
	if rec.SavedPlaylists == nil {
		rec.SavedPlaylists = map[string]playlist.Playlist{}
	}
	rec.SavedPlaylists[displayName] = pl
}

// Find resolves a spoken name to a stored display name.
func (g *Registry) Find(rec *session.Record, spokenName string) (string, bool) {
	for _, name := range g.Names(rec) {
		if similarity.Score(name, spokenName) > g.threshold {
			return name, true
		}
	}
	return "", false
}

// Get returns the saved playlist matching the spoken name.
func (g *Registry) Get(rec *session.Record, spokenName string) (playlist.Playlist, string, bool) {
	name, ok := g.Find(rec, spokenName)
	if !ok {
		return playlist.Playlist{}, "", false
	}
	pl, ok := rec.SavedPlaylists[name]
	return pl, name, ok
}

// Delete removes the playlist matching the spoken name. No-op without a
// match; returns the deleted display name.
func (g *Registry) Delete(rec *session.Record, spokenName string) (string, bool) {
	name, ok := g.Find(rec, spokenName)
	if !ok {
		return "", false
	}
	delete(rec.SavedPlaylists, name)
	return name, true
}

// Names returns the saved playlist names in sorted order.
func (g *Registry) Names(rec *session.Record) []string {
	names := make([]string, 0, len(rec.SavedPlaylists))
	for name := range rec.SavedPlaylists {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
