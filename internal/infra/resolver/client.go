// Package resolver provides the HTTP client for the metadata/stream
// resolution service.
package resolver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/voxdj/voxdj/internal/domain/playlist"
	"github.com/voxdj/voxdj/internal/domain/song"
)

// Client calls the resolver service. The base address is per user and passed
// on every call. The client never retries; any non-success status or
// malformed body is an error for the caller to classify.
type Client struct {
	httpClient *http.Client
}

// New creates a resolver client.
func New() *Client {
	return &Client{httpClient: &http.Client{Timeout: 10 * time.Second}}
}

// NewWithHTTPClient creates a resolver client with a custom HTTP client.
func NewWithHTTPClient(httpClient *http.Client) *Client {
	return &Client{httpClient: httpClient}
}

// songListResponse is the wire shape shared by search and playlist streaming.
type songListResponse struct {
	SongInfo song.Info       `json:"song_info"`
	Playlist []song.Metadata `json:"playlist"`
}

// SearchAndStream searches the catalog and returns the first match with a
// fresh stream plus the continuation queue: a radio-style list for a songs
// search, the catalog's track listing for artists and albums.
func (c *Client) SearchAndStream(ctx context.Context, base, query string, filter song.SearchFilter) (song.Info, []song.Metadata, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("filter", string(filter))

	var resp songListResponse
	if err := c.get(ctx, base, "/search", params, &resp); err != nil {
		return song.Info{}, nil, err
	}
	return resp.SongInfo, resp.Playlist, nil
}

// StreamPlaylist resolves a playlist into its track listing with a fresh
// stream for the first track.
func (c *Client) StreamPlaylist(ctx context.Context, base, playlistID string) (song.Info, []song.Metadata, error) {
	params := url.Values{}
	params.Set("id", playlistID)

	var resp songListResponse
	if err := c.get(ctx, base, "/playlist/stream", params, &resp); err != nil {
		return song.Info{}, nil, err
	}
	return resp.SongInfo, resp.Playlist, nil
}

// GetStream resolves a fresh, short-lived stream for one track.
func (c *Client) GetStream(ctx context.Context, base, trackID string) (song.Stream, error) {
	params := url.Values{}
	params.Set("trackId", trackID)

	var stream song.Stream
	if err := c.get(ctx, base, "/stream", params, &stream); err != nil {
		return song.Stream{}, err
	}
	if stream.AudioURL == "" {
		return song.Stream{}, errors.Newf("no stream for track %q", trackID)
	}
	return stream, nil
}

// GetPlaylistInfo fetches a playlist's id and title.
func (c *Client) GetPlaylistInfo(ctx context.Context, base, playlistID string) (playlist.Playlist, error) {
	params := url.Values{}
	params.Set("id", playlistID)

	var pl playlist.Playlist
	if err := c.get(ctx, base, "/playlist/info", params, &pl); err != nil {
		return playlist.Playlist{}, err
	}
	return pl, nil
}

func (c *Client) get(ctx context.Context, base, path string, params url.Values, dest any) error {
	reqURL := strings.TrimRight(base, "/") + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Newf("resolver returned status %d for %s", resp.StatusCode, path)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response body")
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return errors.Wrap(err, "failed to parse response")
	}
	return nil
}
