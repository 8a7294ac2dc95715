// Package voice provides the inbound HTTP surface for dispatched voice
// commands and playback surface events.
package voice

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/voxdj/voxdj/internal/app/player"
	"github.com/voxdj/voxdj/internal/domain/song"
)

// CommandHandler handles one dispatched command for one user.
type CommandHandler interface {
	Handle(ctx context.Context, userID string, cmd player.Command) (player.Outcome, error)
}

// Handler is the JSON transport in front of the session controller. The
// intent-recognition layer lives on the voice platform; what arrives here is
// the already-dispatched command envelope.
type Handler struct {
	player CommandHandler
}

// NewHandler creates a voice API handler.
func NewHandler(p CommandHandler) *Handler {
	return &Handler{player: p}
}

// Register registers the API routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/v1/commands", h.handleCommand)
}

type commandRequest struct {
	UserID    string `json:"user_id"`
	Command   string `json:"command"`
	Query     string `json:"query,omitempty"`
	Filter    string `json:"filter,omitempty"`
	EncodedID string `json:"encoded_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Enabled   bool   `json:"enabled,omitempty"`
	TrackID   string `json:"track_id,omitempty"`
	OffsetMS  int64  `json:"offset_in_ms,omitempty"`
}

type directivePayload struct {
	Kind                    string `json:"kind"`
	TrackID                 string `json:"track_id,omitempty"`
	URL                     string `json:"url,omitempty"`
	OffsetMS                int64  `json:"offset_in_ms"`
	ExpectedPreviousTrackID string `json:"expected_previous_track_id,omitempty"`
}

type commandResponse struct {
	Directive directivePayload `json:"directive"`
	Speech    string           `json:"speech,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) handleCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" || req.Command == "" {
		writeError(w, http.StatusBadRequest, "user_id and command are required")
		return
	}

	cmd := player.Command{
		Type:      player.CommandType(req.Command),
		Query:     req.Query,
		Filter:    song.ParseSearchFilter(req.Filter),
		EncodedID: req.EncodedID,
		Name:      req.Name,
		Enabled:   req.Enabled,
		TrackID:   req.TrackID,
		OffsetMS:  req.OffsetMS,
	}

	outcome, err := h.player.Handle(r.Context(), req.UserID, cmd)
	if err != nil {
		zlog.Error().Str("user_id", req.UserID).Str("command", req.Command).Err(err).
			Msg("command handling failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, commandResponse{
		Directive: directivePayload{
			Kind:                    outcome.Directive.Kind.String(),
			TrackID:                 outcome.Directive.TrackID,
			URL:                     outcome.Directive.URL,
			OffsetMS:                outcome.Directive.OffsetMS,
			ExpectedPreviousTrackID: outcome.Directive.ExpectedPreviousTrackID,
		},
		Speech: outcome.Speech,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// WithRequestLogging tags each request with a correlation id and logs it.
func WithRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		w.Header().Set("X-Request-Id", requestID)

		start := time.Now()
		next.ServeHTTP(w, r)

		zlog.Debug().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request handled")
	})
}
