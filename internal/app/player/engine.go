package player

import (
	"context"
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/voxdj/voxdj/internal/domain/playlist"
	"github.com/voxdj/voxdj/internal/domain/session"
	"github.com/voxdj/voxdj/internal/domain/song"
)

// Resolver is the metadata/stream resolution service consumed by the engine.
// The base address is per user, so it is passed on every call. Callers decide
// about retries; implementations must not retry on their own.
type Resolver interface {
	SearchAndStream(ctx context.Context, base, query string, filter song.SearchFilter) (song.Info, []song.Metadata, error)
	StreamPlaylist(ctx context.Context, base, playlistID string) (song.Info, []song.Metadata, error)
	GetStream(ctx context.Context, base, trackID string) (song.Stream, error)
	GetPlaylistInfo(ctx context.Context, base, playlistID string) (playlist.Playlist, error)
}

// Engine owns the queue state machine: play order, shuffle and loop
// semantics, index advance/retreat, prefetch. It mutates the session record
// in place and never partially mutates on failure.
type Engine struct {
	resolver Resolver
	rng      *rand.Rand
}

// NewEngine creates an engine backed by the given resolver.
func NewEngine(resolver Resolver) *Engine {
	var seed int64
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err == nil {
		seed = int64(binary.LittleEndian.Uint64(buf[:]))
	} else {
		seed = time.Now().UnixNano()
	}
	return &Engine{
		resolver: resolver,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// LoadQueue replaces the queue wholesale: identity play order, position 0,
// offset 0, the start track's stream cached, prefetch flag cleared. The
// current shuffle setting is then applied.
func (e *Engine) LoadQueue(rec *session.Record, tracks []song.Metadata, start song.Info) {
	rec.Playlist = tracks
	rec.Playback.PlayOrder = identityOrder(len(tracks))
	rec.Playback.Index = 0
	rec.Playback.OffsetMS = 0
	rec.Playback.StreamURL = start.Stream.AudioURL
	rec.Playback.NextStreamEnqueued = false
	e.applyPlayOrder(rec)
}

// SetLoop sets the loop flag.
func (e *Engine) SetLoop(rec *session.Record, on bool) {
	rec.Settings.Loop = on
}

// SetShuffle sets the shuffle flag and regenerates the play order. Turning
// shuffle on randomizes the permutation and rotates it so the track at the
// current position stays the one already playing; turning it off restores
// the identity order.
func (e *Engine) SetShuffle(rec *session.Record, on bool) {
	rec.Settings.Shuffle = on
	e.applyPlayOrder(rec)
}

// applyPlayOrder regenerates the play order from the shuffle setting.
func (e *Engine) applyPlayOrder(rec *session.Record) {
	n := len(rec.Playlist)
	if !rec.Settings.Shuffle {
		rec.Playback.PlayOrder = identityOrder(n)
		return
	}
	order := e.rng.Perm(n)
	rec.Playback.PlayOrder = rotateToMatchIndex(order, rec.Playback.Index)
}

// rotateToMatchIndex rotates the permutation left so that the slot at the
// current position holds the value it pointed at before shuffling, keeping
// the audible track unchanged across the toggle.
func rotateToMatchIndex(order []int, index int) []int {
	n := len(order)
	if n == 0 {
		return order
	}
	d := indexOf(order, index) - index
	d = ((d % n) + n) % n
	rotated := make([]int, 0, n)
	rotated = append(rotated, order[d:]...)
	rotated = append(rotated, order[:d]...)
	return rotated
}

// Advance moves to the next track. At the end of a non-looping queue it
// emits a stop directive and leaves the position untouched. The successor's
// stream is resolved before any state is mutated, so a resolver failure
// leaves the record exactly as it was.
func (e *Engine) Advance(ctx context.Context, rec *session.Record) (Directive, error) {
	n := rec.QueueLen()
	if n == 0 {
		return none(), ErrQueueEmpty
	}

	next := (rec.Playback.Index + 1) % n
	if next == 0 && !rec.Settings.Loop {
		return stop(), nil
	}
	return e.moveTo(ctx, rec, next)
}

// Retreat moves to the previous track. Retreating past the start of a
// non-looping queue emits a stop directive and leaves the position untouched.
func (e *Engine) Retreat(ctx context.Context, rec *session.Record) (Directive, error) {
	n := rec.QueueLen()
	if n == 0 {
		return none(), ErrQueueEmpty
	}

	prev := rec.Playback.Index - 1
	if prev < 0 {
		if !rec.Settings.Loop {
			return stop(), nil
		}
		prev = n - 1
	}
	return e.moveTo(ctx, rec, prev)
}

func (e *Engine) moveTo(ctx context.Context, rec *session.Record, slot int) (Directive, error) {
	md, ok := rec.TrackAt(slot)
	if !ok {
		return none(), errors.Mark(errors.Newf("play order slot %d out of range", slot), ErrNotFound)
	}

	stream, err := e.getStream(ctx, rec, md.ID)
	if err != nil {
		return none(), err
	}

	rec.Playback.Index = slot
	rec.Playback.OffsetMS = 0
	rec.Playback.NextStreamEnqueued = false
	rec.Playback.StreamURL = stream.AudioURL
	return replaceAll(md.ID, stream.AudioURL, 0), nil
}

// MaybePrefetch handles the playback surface's nearly-finished signal. It is
// idempotent while a prefetch is outstanding, a no-op at the end of a
// non-looping queue, and otherwise resolves the successor's stream and emits
// an enqueue directive tagged with the current track as expected predecessor.
// A resolver failure is reported without touching position or session flags.
func (e *Engine) MaybePrefetch(ctx context.Context, rec *session.Record) (Directive, error) {
	n := rec.QueueLen()
	if n == 0 {
		return none(), ErrQueueEmpty
	}
	if rec.Playback.NextStreamEnqueued {
		return none(), nil
	}

	succ := (rec.Playback.Index + 1) % n
	if succ == 0 && !rec.Settings.Loop {
		return none(), nil
	}

	current, ok := rec.CurrentTrack()
	if !ok {
		return none(), errors.Mark(errors.New("current track out of range"), ErrNotFound)
	}
	successor, ok := rec.TrackAt(succ)
	if !ok {
		return none(), errors.Mark(errors.Newf("play order slot %d out of range", succ), ErrNotFound)
	}

	stream, err := e.getStream(ctx, rec, successor.ID)
	if err != nil {
		return none(), err
	}

	rec.Playback.NextStreamEnqueued = true
	rec.Playback.StreamURL = stream.AudioURL
	return enqueue(successor.ID, stream.AudioURL, current.ID), nil
}

// Resume replays the current track from the saved offset, reusing the cached
// stream URL when one is present and re-resolving otherwise.
func (e *Engine) Resume(ctx context.Context, rec *session.Record) (Directive, error) {
	md, ok := rec.CurrentTrack()
	if !ok {
		return none(), ErrQueueEmpty
	}

	rec.Playback.NextStreamEnqueued = false

	url := rec.Playback.StreamURL
	if url == "" {
		stream, err := e.getStream(ctx, rec, md.ID)
		if err != nil {
			return none(), err
		}
		url = stream.AudioURL
	}
	return replaceAll(md.ID, url, rec.Playback.OffsetMS), nil
}

// StartOver restarts the current track from the beginning.
func (e *Engine) StartOver(ctx context.Context, rec *session.Record) (Directive, error) {
	if rec.QueueLen() == 0 {
		return none(), ErrQueueEmpty
	}
	rec.Playback.OffsetMS = 0
	return e.Resume(ctx, rec)
}

// OnPlaybackStarted realigns the local position with the track the surface
// actually started. Prefetch means the surface, not the engine, decides which
// track plays next, so the reported id is ground truth.
func (e *Engine) OnPlaybackStarted(rec *session.Record, trackID string) error {
	playlistIndex := -1
	for i, md := range rec.Playlist {
		if md.ID == trackID {
			playlistIndex = i
			break
		}
	}
	if playlistIndex < 0 {
		return errors.Mark(errors.Newf("track %q not in queue", trackID), ErrNotFound)
	}

	slot := indexOf(rec.Playback.PlayOrder, playlistIndex)
	if slot < 0 {
		return errors.Mark(errors.Newf("playlist index %d not in play order", playlistIndex), ErrNotFound)
	}

	rec.Playback.Index = slot
	rec.Playback.InPlaybackSession = true
	rec.Playback.HasPreviousSession = true
	return nil
}

// OnPlaybackStopped persists the reported offset for a later resume.
func (e *Engine) OnPlaybackStopped(rec *session.Record, offsetMS int64) {
	rec.Playback.OffsetMS = offsetMS
}

// OnPlaybackFinished clears the playback session flags at the natural end of
// a track.
func (e *Engine) OnPlaybackFinished(rec *session.Record) {
	rec.Playback.InPlaybackSession = false
	rec.Playback.HasPreviousSession = false
	rec.Playback.NextStreamEnqueued = false
}

// OnPlaybackFailed clears the in-playback flag. No retry is attempted here.
func (e *Engine) OnPlaybackFailed(rec *session.Record) {
	rec.Playback.InPlaybackSession = false
}

// getStream resolves a fresh stream for the track and caches its URL on the
// record. Any resolver failure is classified as ErrResolverUnavailable.
func (e *Engine) getStream(ctx context.Context, rec *session.Record, trackID string) (song.Stream, error) {
	if rec.ResolverURL == "" {
		return song.Stream{}, ErrNotConfigured
	}
	stream, err := e.resolver.GetStream(ctx, rec.ResolverURL, trackID)
	if err != nil {
		return song.Stream{}, errors.Mark(errors.Wrap(err, "get stream"), ErrResolverUnavailable)
	}
	return stream, nil
}

func identityOrder(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}

func indexOf(order []int, value int) int {
	for i, v := range order {
		if v == value {
			return i
		}
	}
	return -1
}
