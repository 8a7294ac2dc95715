// Package resolverapi provides the HTTP handlers implementing the resolver
// contract consumed by the playback core.
package resolverapi

import (
	"context"
	"encoding/json"
	"net/http"

	zlog "github.com/rs/zerolog/log"

	"github.com/voxdj/voxdj/internal/domain/playlist"
	"github.com/voxdj/voxdj/internal/domain/song"
)

// Catalog is the upstream track catalog the resolver fronts.
type Catalog interface {
	Search(ctx context.Context, query string, filter song.SearchFilter) ([]song.Metadata, error)
	PlaylistTracks(ctx context.Context, playlistID string) ([]song.Metadata, error)
	PlaylistInfo(ctx context.Context, playlistID string) (playlist.Playlist, error)
	Stream(ctx context.Context, trackID string) (song.Stream, error)
}

// Handler serves the resolver endpoints.
type Handler struct {
	catalog Catalog
}

// NewHandler creates a resolver API handler.
func NewHandler(catalog Catalog) *Handler {
	return &Handler{catalog: catalog}
}

// Register registers the resolver routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/search", h.handleSearch)
	mux.HandleFunc("/playlist/stream", h.handlePlaylistStream)
	mux.HandleFunc("/stream", h.handleStream)
	mux.HandleFunc("/playlist/info", h.handlePlaylistInfo)
}

type songListResponse struct {
	SongInfo song.Info       `json:"song_info"`
	Playlist []song.Metadata `json:"playlist"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	filter := song.ParseSearchFilter(r.URL.Query().Get("filter"))

	queue, err := h.catalog.Search(r.Context(), query, filter)
	if err != nil {
		zlog.Error().Str("query", query).Err(err).Msg("catalog search failed")
		writeError(w, http.StatusBadGateway, "catalog search failed")
		return
	}

	h.respondWithQueue(w, r, queue)
}

func (h *Handler) handlePlaylistStream(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	queue, err := h.catalog.PlaylistTracks(r.Context(), id)
	if err != nil {
		zlog.Error().Str("playlist_id", id).Err(err).Msg("playlist fetch failed")
		writeError(w, http.StatusBadGateway, "playlist fetch failed")
		return
	}

	h.respondWithQueue(w, r, queue)
}

// respondWithQueue resolves the stream for the first track and answers with
// the shared song-list shape. Tracks without a playable stream are skipped
// until one resolves.
func (h *Handler) respondWithQueue(w http.ResponseWriter, r *http.Request, queue []song.Metadata) {
	if len(queue) == 0 {
		writeError(w, http.StatusNotFound, "no tracks found")
		return
	}

	for i, md := range queue {
		stream, err := h.catalog.Stream(r.Context(), md.ID)
		if err != nil {
			zlog.Debug().Str("track_id", md.ID).Err(err).Msg("skipping unstreamable track")
			continue
		}
		writeJSON(w, http.StatusOK, songListResponse{
			SongInfo: song.Info{Metadata: md, Stream: stream},
			Playlist: queue[i:],
		})
		return
	}

	writeError(w, http.StatusNotFound, "no streamable tracks found")
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	trackID := r.URL.Query().Get("trackId")
	if trackID == "" {
		writeError(w, http.StatusBadRequest, "trackId is required")
		return
	}

	stream, err := h.catalog.Stream(r.Context(), trackID)
	if err != nil {
		zlog.Error().Str("track_id", trackID).Err(err).Msg("stream resolution failed")
		writeError(w, http.StatusNotFound, "no stream for track")
		return
	}

	writeJSON(w, http.StatusOK, stream)
}

func (h *Handler) handlePlaylistInfo(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	pl, err := h.catalog.PlaylistInfo(r.Context(), id)
	if err != nil {
		zlog.Error().Str("playlist_id", id).Err(err).Msg("playlist info failed")
		writeError(w, http.StatusNotFound, "playlist not found")
		return
	}

	writeJSON(w, http.StatusOK, pl)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
