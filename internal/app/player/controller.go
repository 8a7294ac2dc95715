package player

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/voxdj/voxdj/internal/domain/hexid"
	"github.com/voxdj/voxdj/internal/domain/session"
	"github.com/voxdj/voxdj/internal/domain/song"
	"github.com/voxdj/voxdj/internal/infra/config"
)

// Store provides load/save of the opaque per-user session record.
// Load creates a default record when none exists.
type Store interface {
	Load(ctx context.Context, userID string) (*session.Record, error)
	Save(ctx context.Context, userID string, rec *session.Record) error
}

// Outcome is the result of one handled command: a playback directive for the
// host surface plus optional spoken confirmation text.
type Outcome struct {
	Directive Directive
	Speech    string
}

// Controller is the public entry point invoked once per inbound command.
// It loads the user's session, dispatches to the queue engine or the playlist
// registry, persists the updated session, and renders any error as spoken
// text. No operation is retried.
type Controller struct {
	engine   *Engine
	registry *Registry
	resolver Resolver
	store    Store
	messages config.MessagesConfig
}

// NewController creates a controller.
func NewController(engine *Engine, registry *Registry, resolver Resolver, store Store, messages config.MessagesConfig) *Controller {
	return &Controller{
		engine:   engine,
		registry: registry,
		resolver: resolver,
		store:    store,
		messages: messages,
	}
}

// Handle processes one command for one user. Core errors (resolver failures,
// bad identifiers, empty queues) are rendered as speech and consumed here;
// only store failures surface as errors.
func (c *Controller) Handle(ctx context.Context, userID string, cmd Command) (Outcome, error) {
	rec, err := c.store.Load(ctx, userID)
	if err != nil {
		return Outcome{}, errors.Wrap(err, "load session")
	}

	outcome, err := c.dispatch(ctx, rec, cmd)
	if err != nil {
		zlog.Warn().Str("user_id", userID).Str("command", string(cmd.Type)).Err(err).
			Msg("command failed")
		outcome = Outcome{Directive: none(), Speech: c.speakError(err)}
	}

	// Failed operations never partially mutate the record, so saving after an
	// error is safe and matches the one-command one-save lifecycle.
	if err := c.store.Save(ctx, userID, rec); err != nil {
		return Outcome{}, errors.Wrap(err, "save session")
	}
	return outcome, nil
}

func (c *Controller) dispatch(ctx context.Context, rec *session.Record, cmd Command) (Outcome, error) {
	switch cmd.Type {
	case CmdPlay:
		return c.play(ctx, rec, cmd.Query, cmd.Filter)
	case CmdPlayPlaylist:
		id, err := hexid.Decode(cmd.EncodedID)
		if err != nil {
			return Outcome{}, errors.Mark(err, ErrBadIdentifier)
		}
		return c.fetchPlaylist(ctx, rec, id, "")
	case CmdResume:
		d, err := c.engine.Resume(ctx, rec)
		return Outcome{Directive: d}, err
	case CmdPause:
		rec.Playback.InPlaybackSession = false
		return Outcome{Directive: stop()}, nil
	case CmdNext:
		return c.step(ctx, rec, c.engine.Advance, c.messages.EndOfQueue)
	case CmdPrevious:
		return c.step(ctx, rec, c.engine.Retreat, c.messages.StartOfQueue)
	case CmdSetLoop:
		c.engine.SetLoop(rec, cmd.Enabled)
		return Outcome{Directive: none(), Speech: onOff(cmd.Enabled, c.messages.LoopOn, c.messages.LoopOff)}, nil
	case CmdSetShuffle:
		c.engine.SetShuffle(rec, cmd.Enabled)
		return Outcome{Directive: none(), Speech: onOff(cmd.Enabled, c.messages.ShuffleOn, c.messages.ShuffleOff)}, nil
	case CmdStartOver:
		d, err := c.engine.StartOver(ctx, rec)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Directive: d, Speech: c.messages.StartingOver}, nil
	case CmdSavePlaylist:
		return c.savePlaylist(ctx, rec, cmd.EncodedID)
	case CmdDeletePlaylist:
		if name, ok := c.registry.Delete(rec, cmd.Name); ok {
			return Outcome{Directive: none(), Speech: fmt.Sprintf(c.messages.PlaylistDeleted, name)}, nil
		}
		return Outcome{Directive: none(), Speech: fmt.Sprintf(c.messages.PlaylistNotFound, cmd.Name)}, nil
	case CmdStartSavedPlaylist:
		pl, name, ok := c.registry.Get(rec, cmd.Name)
		if !ok {
			return Outcome{Directive: none(), Speech: fmt.Sprintf(c.messages.PlaylistNotFound, cmd.Name)}, nil
		}
		return c.fetchPlaylist(ctx, rec, pl.ID, name)
	case CmdListSavedPlaylists:
		names := c.registry.Names(rec)
		if len(names) == 0 {
			return Outcome{Directive: none(), Speech: c.messages.NoSavedPlaylists}, nil
		}
		return Outcome{Directive: none(), Speech: fmt.Sprintf(c.messages.SavedPlaylists, strings.Join(names, ", "))}, nil
	case CmdNowPlaying:
		md, ok := rec.CurrentTrack()
		if !ok {
			return Outcome{}, ErrQueueEmpty
		}
		return Outcome{Directive: none(), Speech: fmt.Sprintf(c.messages.NowPlaying, md.Title, md.Artist)}, nil
	case CmdSetResolver:
		url, err := hexid.Decode(cmd.EncodedID)
		if err != nil {
			return Outcome{}, errors.Mark(err, ErrBadIdentifier)
		}
		rec.ResolverURL = url
		return Outcome{Directive: none(), Speech: c.messages.ResolverSet}, nil

	case EvtPlaybackStarted:
		if err := c.engine.OnPlaybackStarted(rec, cmd.TrackID); err != nil {
			return Outcome{}, err
		}
		return Outcome{Directive: none()}, nil
	case EvtPlaybackStopped:
		c.engine.OnPlaybackStopped(rec, cmd.OffsetMS)
		return Outcome{Directive: none()}, nil
	case EvtPlaybackFinished:
		c.engine.OnPlaybackFinished(rec)
		return Outcome{Directive: none()}, nil
	case EvtPlaybackFailed:
		c.engine.OnPlaybackFailed(rec)
		return Outcome{Directive: none()}, nil
	case EvtPlaybackNearlyFinished:
		d, err := c.engine.MaybePrefetch(ctx, rec)
		return Outcome{Directive: d}, err

	default:
		return Outcome{}, errors.Newf("unknown command type %q", cmd.Type)
	}
}

// play is the shared voice entry point for searches and saved playlists:
// a spoken "play X" cannot distinguish a search from a remembered playlist,
// so a songs-filtered query that fuzzy-matches a saved playlist name plays
// that playlist instead of searching.
func (c *Controller) play(ctx context.Context, rec *session.Record, query string, filter song.SearchFilter) (Outcome, error) {
	if filter == song.FilterSongs {
		if pl, name, ok := c.registry.Get(rec, query); ok {
			return c.fetchPlaylist(ctx, rec, pl.ID, name)
		}
	}
	if rec.ResolverURL == "" {
		return Outcome{}, ErrNotConfigured
	}

	info, queue, err := c.resolver.SearchAndStream(ctx, rec.ResolverURL, query, filter)
	if err != nil {
		return Outcome{}, errors.Mark(errors.Wrap(err, "search"), ErrResolverUnavailable)
	}
	if len(queue) == 0 {
		return Outcome{}, errors.Mark(errors.Newf("no tracks for query %q", query), ErrNotFound)
	}

	c.engine.LoadQueue(rec, queue, info)
	return Outcome{
		Directive: replaceAll(info.Metadata.ID, info.Stream.AudioURL, 0),
		Speech:    fmt.Sprintf(c.messages.Playing, info.Metadata.Title, info.Metadata.Artist),
	}, nil
}

func (c *Controller) fetchPlaylist(ctx context.Context, rec *session.Record, playlistID, displayName string) (Outcome, error) {
	if rec.ResolverURL == "" {
		return Outcome{}, ErrNotConfigured
	}

	info, queue, err := c.resolver.StreamPlaylist(ctx, rec.ResolverURL, playlistID)
	if err != nil {
		return Outcome{}, errors.Mark(errors.Wrap(err, "stream playlist"), ErrResolverUnavailable)
	}
	if len(queue) == 0 {
		return Outcome{}, errors.Mark(errors.Newf("playlist %q has no tracks", playlistID), ErrNotFound)
	}

	c.engine.LoadQueue(rec, queue, info)

	speech := fmt.Sprintf(c.messages.Playing, info.Metadata.Title, info.Metadata.Artist)
	if displayName != "" {
		speech = fmt.Sprintf(c.messages.StartingPlaylist, displayName)
	}
	return Outcome{
		Directive: replaceAll(info.Metadata.ID, info.Stream.AudioURL, 0),
		Speech:    speech,
	}, nil
}

func (c *Controller) savePlaylist(ctx context.Context, rec *session.Record, encodedID string) (Outcome, error) {
	id, err := hexid.Decode(encodedID)
	if err != nil {
		return Outcome{}, errors.Mark(err, ErrBadIdentifier)
	}
	if rec.ResolverURL == "" {
		return Outcome{}, ErrNotConfigured
	}

	pl, err := c.resolver.GetPlaylistInfo(ctx, rec.ResolverURL, id)
	if err != nil {
		return Outcome{}, errors.Mark(errors.Wrap(err, "get playlist info"), ErrResolverUnavailable)
	}

	c.registry.Save(rec, pl, pl.Title)
	return Outcome{Directive: none(), Speech: fmt.Sprintf(c.messages.PlaylistSaved, pl.Title)}, nil
}

type stepFunc func(context.Context, *session.Record) (Directive, error)

// step runs advance or retreat and voices the boundary message when the move
// was terminal and the user asked for it directly (the playback surface gets
// no speech for moves it triggered itself).
func (c *Controller) step(ctx context.Context, rec *session.Record, move stepFunc, boundaryMsg string) (Outcome, error) {
	d, err := move(ctx, rec)
	if err != nil {
		return Outcome{}, err
	}
	if d.Kind == DirectiveStop && !rec.Playback.InPlaybackSession {
		return Outcome{Directive: d, Speech: boundaryMsg}, nil
	}
	return Outcome{Directive: d}, nil
}

func (c *Controller) speakError(err error) string {
	switch {
	case errors.Is(err, ErrNotConfigured):
		return c.messages.NotConfigured
	case errors.Is(err, ErrResolverUnavailable):
		return c.messages.ResolverUnavailable
	case errors.Is(err, ErrBadIdentifier):
		return c.messages.BadIdentifier
	case errors.Is(err, ErrQueueEmpty):
		return c.messages.QueueEmpty
	case errors.Is(err, ErrNotFound):
		return c.messages.NothingFound
	default:
		return c.messages.DefaultError
	}
}

func onOff(enabled bool, on, off string) string {
	if enabled {
		return on
	}
	return off
}
