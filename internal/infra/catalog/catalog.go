// Package catalog provides the Spotify-backed track catalog behind resolverd.
package catalog

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/voxdj/voxdj/internal/domain/playlist"
	"github.com/voxdj/voxdj/internal/domain/song"
	"github.com/voxdj/voxdj/internal/infra/config"
)

// Client is a rate-limited Spotify catalog client. Stream URLs are the
// catalog's preview URLs; like any resolved stream they are short-lived and
// re-resolved per playback attempt.
type Client struct {
	client    *spotify.Client
	market    string
	queueSize int
	limiter   *rate.Limiter
}

// New creates a catalog client using the client-credentials flow.
func New(ctx context.Context, cfg config.CatalogConfig) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("catalog credentials are required")
	}

	creds := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	token, err := creds.Token(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get catalog token")
	}

	httpClient := spotifyauth.New().Client(ctx, token)

	return &Client{
		client:    spotify.New(httpClient),
		market:    cfg.Market,
		queueSize: cfg.QueueSize,
		limiter:   rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
	}, nil
}

// Search returns the track listing for a query. A songs search yields the
// best match followed by a radio-style continuation; artist and album
// searches yield the catalog's own listing.
func (c *Client) Search(ctx context.Context, query string, filter song.SearchFilter) ([]song.Metadata, error) {
	if query == "" {
		return nil, errors.New("search query is required")
	}

	switch filter {
	case song.FilterAlbums:
		return c.searchAlbum(ctx, query)
	case song.FilterArtists:
		return c.searchTracks(ctx, query, c.queueSize)
	default:
		return c.searchRadio(ctx, query)
	}
}

// searchRadio finds the best track match and extends it with recommended
// tracks seeded by it.
func (c *Client) searchRadio(ctx context.Context, query string) ([]song.Metadata, error) {
	tracks, err := c.searchTracks(ctx, query, 1)
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, nil
	}
	seed := tracks[0]

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	recs, err := c.client.GetRecommendations(ctx,
		spotify.Seeds{Tracks: []spotify.ID{spotify.ID(seed.ID)}},
		nil,
		spotify.Limit(c.queueSize),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get recommendations")
	}

	queue := []song.Metadata{seed}
	for _, t := range recs.Tracks {
		if t.ID.String() == seed.ID {
			continue
		}
		queue = append(queue, convertSimpleTrack(t))
	}
	return queue, nil
}

func (c *Client) searchTracks(ctx context.Context, query string, limit int) ([]song.Metadata, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	result, err := c.client.Search(ctx, query, spotify.SearchTypeTrack,
		spotify.Limit(limit), spotify.Market(c.market))
	if err != nil {
		return nil, errors.Wrap(err, "failed to search tracks")
	}

	if result.Tracks == nil {
		return nil, nil
	}
	tracks := make([]song.Metadata, 0, len(result.Tracks.Tracks))
	for _, t := range result.Tracks.Tracks {
		tracks = append(tracks, convertFullTrack(t))
	}
	return tracks, nil
}

func (c *Client) searchAlbum(ctx context.Context, query string) ([]song.Metadata, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	result, err := c.client.Search(ctx, query, spotify.SearchTypeAlbum,
		spotify.Limit(1), spotify.Market(c.market))
	if err != nil {
		return nil, errors.Wrap(err, "failed to search albums")
	}
	if result.Albums == nil || len(result.Albums.Albums) == 0 {
		return nil, nil
	}
	album := result.Albums.Albums[0]

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	page, err := c.client.GetAlbumTracks(ctx, album.ID, spotify.Market(c.market))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get album tracks")
	}

	thumb := imageToThumbnail(album.Images)
	tracks := make([]song.Metadata, 0, len(page.Tracks))
	for _, t := range page.Tracks {
		md := convertSimpleTrack(t)
		md.Thumbnail = thumb
		tracks = append(tracks, md)
	}
	return tracks, nil
}

// PlaylistTracks returns the full track listing of a playlist.
func (c *Client) PlaylistTracks(ctx context.Context, playlistID string) ([]song.Metadata, error) {
	var tracks []song.Metadata
	offset := 0
	limit := 100

	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		page, err := c.client.GetPlaylistItems(ctx, spotify.ID(playlistID),
			spotify.Limit(limit),
			spotify.Offset(offset),
			spotify.Market(c.market),
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to get playlist items")
		}

		for _, item := range page.Items {
			if item.Track.Track != nil && item.Track.Track.ID != "" {
				tracks = append(tracks, convertFullTrack(*item.Track.Track))
			}
		}

		if len(page.Items) < limit {
			break
		}
		offset += limit
	}

	return tracks, nil
}

// PlaylistInfo returns a playlist's id and title.
func (c *Client) PlaylistInfo(ctx context.Context, playlistID string) (playlist.Playlist, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return playlist.Playlist{}, err
	}
	pl, err := c.client.GetPlaylist(ctx, spotify.ID(playlistID))
	if err != nil {
		return playlist.Playlist{}, errors.Wrap(err, "failed to get playlist")
	}
	return playlist.Playlist{ID: pl.ID.String(), Title: pl.Name}, nil
}

// Stream resolves a playable audio URL for one track.
func (c *Client) Stream(ctx context.Context, trackID string) (song.Stream, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return song.Stream{}, err
	}
	t, err := c.client.GetTrack(ctx, spotify.ID(trackID))
	if err != nil {
		return song.Stream{}, errors.Wrap(err, "failed to get track")
	}
	if t.PreviewURL == "" {
		return song.Stream{}, errors.Newf("track %s has no playable stream", trackID)
	}
	return song.Stream{AudioURL: t.PreviewURL}, nil
}

func convertFullTrack(t spotify.FullTrack) song.Metadata {
	md := convertSimpleTrack(t.SimpleTrack)
	if md.Thumbnail == nil {
		md.Thumbnail = imageToThumbnail(t.Album.Images)
	}
	return md
}

func convertSimpleTrack(t spotify.SimpleTrack) song.Metadata {
	return song.Metadata{
		Title:     t.Name,
		Artist:    joinArtists(t.Artists),
		ID:        t.ID.String(),
		Thumbnail: imageToThumbnail(t.Album.Images),
	}
}

func joinArtists(artists []spotify.SimpleArtist) string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, " and ")
}

func imageToThumbnail(images []spotify.Image) *song.Thumbnail {
	if len(images) == 0 {
		return nil
	}
	// Smallest image last, per the catalog's ordering
	img := images[len(images)-1]
	return &song.Thumbnail{URL: img.URL, Width: int(img.Width), Height: int(img.Height)}
}
