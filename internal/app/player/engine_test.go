package player

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxdj/voxdj/internal/domain/playlist"
	"github.com/voxdj/voxdj/internal/domain/session"
	"github.com/voxdj/voxdj/internal/domain/song"
)

// fakeResolver is a Resolver with overridable behavior per method. The
// default GetStream derives the URL from the track ID so tests can assert
// exact directives without fixture maps.
type fakeResolver struct {
	searchAndStreamFn func(ctx context.Context, base, query string, filter song.SearchFilter) (song.Info, []song.Metadata, error)
	streamPlaylistFn  func(ctx context.Context, base, playlistID string) (song.Info, []song.Metadata, error)
	getStreamFn       func(ctx context.Context, base, trackID string) (song.Stream, error)
	playlistInfoFn    func(ctx context.Context, base, playlistID string) (playlist.Playlist, error)

	getStreamCalls int
}

func (f *fakeResolver) SearchAndStream(ctx context.Context, base, query string, filter song.SearchFilter) (song.Info, []song.Metadata, error) {
	if f.searchAndStreamFn == nil {
		return song.Info{}, nil, errors.New("search not stubbed")
	}
	return f.searchAndStreamFn(ctx, base, query, filter)
}

func (f *fakeResolver) StreamPlaylist(ctx context.Context, base, playlistID string) (song.Info, []song.Metadata, error) {
	if f.streamPlaylistFn == nil {
		return song.Info{}, nil, errors.New("stream playlist not stubbed")
	}
	return f.streamPlaylistFn(ctx, base, playlistID)
}

func (f *fakeResolver) GetStream(ctx context.Context, base, trackID string) (song.Stream, error) {
	f.getStreamCalls++
	if f.getStreamFn != nil {
		return f.getStreamFn(ctx, base, trackID)
	}
	return song.Stream{AudioURL: streamURL(trackID)}, nil
}

func (f *fakeResolver) GetPlaylistInfo(ctx context.Context, base, playlistID string) (playlist.Playlist, error) {
	if f.playlistInfoFn == nil {
		return playlist.Playlist{}, errors.New("playlist info not stubbed")
	}
	return f.playlistInfoFn(ctx, base, playlistID)
}

func streamURL(trackID string) string {
	return "https://cdn.test/" + trackID
}

func testTracks(n int) []song.Metadata {
	tracks := make([]song.Metadata, n)
	for i := range tracks {
		tracks[i] = song.Metadata{
			ID:     fmt.Sprintf("t%d", i),
			Title:  fmt.Sprintf("Track %d", i),
			Artist: "Test Artist",
		}
	}
	return tracks
}

// testRecord builds a record with n tracks loaded in identity order.
func testRecord(n int) *session.Record {
	rec := session.NewRecord()
	rec.ResolverURL = "http://resolver.test"
	rec.Playlist = testTracks(n)
	rec.Playback.PlayOrder = identityOrder(n)
	return rec
}

func TestEngine_LoadQueue(t *testing.T) {
	resolver := &fakeResolver{}
	engine := NewEngine(resolver)

	rec := session.NewRecord()
	rec.ResolverURL = "http://resolver.test"
	rec.Playback.NextStreamEnqueued = true
	rec.Playback.OffsetMS = 42000

	tracks := testTracks(3)
	start := song.Info{
		Metadata: tracks[0],
		Stream:   song.Stream{AudioURL: streamURL(tracks[0].ID)},
	}
	engine.LoadQueue(rec, tracks, start)

	assert.Equal(t, tracks, rec.Playlist)
	assert.Equal(t, []int{0, 1, 2}, rec.Playback.PlayOrder)
	assert.Equal(t, 0, rec.Playback.Index)
	assert.Equal(t, int64(0), rec.Playback.OffsetMS)
	assert.Equal(t, streamURL("t0"), rec.Playback.StreamURL)
	assert.False(t, rec.Playback.NextStreamEnqueued)
}

func TestEngine_SetShuffle(t *testing.T) {
	engine := NewEngine(&fakeResolver{})
	rec := testRecord(10)
	rec.Playback.Index = 3

	engine.SetShuffle(rec, true)
	assert.True(t, rec.Settings.Shuffle)

	// Still a permutation of 0..9
	sorted := append([]int(nil), rec.Playback.PlayOrder...)
	sort.Ints(sorted)
	assert.Equal(t, identityOrder(10), sorted)

	// The audible track must not change across the toggle.
	assert.Equal(t, 3, rec.Playback.PlayOrder[3])

	engine.SetShuffle(rec, false)
	assert.False(t, rec.Settings.Shuffle)
	assert.Equal(t, identityOrder(10), rec.Playback.PlayOrder)
}

func TestEngine_SetShuffle_Reshuffles(t *testing.T) {
	engine := NewEngine(&fakeResolver{})
	rec := testRecord(30)
	rec.Playback.Index = 5

	engine.SetShuffle(rec, true)
	first := append([]int(nil), rec.Playback.PlayOrder...)
	engine.SetShuffle(rec, true)

	assert.NotEqual(t, first, rec.Playback.PlayOrder)
	assert.Equal(t, 5, rec.Playback.PlayOrder[5])
}

func TestEngine_SetShuffle_SingleTrack(t *testing.T) {
	engine := NewEngine(&fakeResolver{})
	rec := testRecord(1)

	engine.SetShuffle(rec, true)
	assert.Equal(t, []int{0}, rec.Playback.PlayOrder)
}

func TestRotateToMatchIndex(t *testing.T) {
	tests := []struct {
		name     string
		order    []int
		index    int
		expected []int
	}{
		{
			name:     "rotate left by one",
			order:    []int{3, 1, 0, 2},
			index:    2,
			expected: []int{1, 0, 2, 3},
		},
		{
			name:     "rotate to front",
			order:    []int{1, 2, 0},
			index:    0,
			expected: []int{0, 1, 2},
		},
		{
			name:     "already aligned",
			order:    []int{0, 2, 1},
			index:    0,
			expected: []int{0, 2, 1},
		},
		{
			name:     "empty",
			order:    []int{},
			index:    0,
			expected: []int{},
		},
		{
			name:     "single",
			order:    []int{0},
			index:    0,
			expected: []int{0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rotateToMatchIndex(tt.order, tt.index)
			assert.Equal(t, tt.expected, got)
			if len(got) > 0 {
				assert.Equal(t, tt.index, got[tt.index])
			}
		})
	}
}

func TestEngine_Advance(t *testing.T) {
	resolver := &fakeResolver{}
	engine := NewEngine(resolver)
	rec := testRecord(3)

	d, err := engine.Advance(context.Background(), rec)
	require.NoError(t, err)

	assert.Equal(t, DirectiveReplaceAll, d.Kind)
	assert.Equal(t, "t1", d.TrackID)
	assert.Equal(t, streamURL("t1"), d.URL)
	assert.Equal(t, int64(0), d.OffsetMS)
	assert.Equal(t, 1, rec.Playback.Index)
	assert.Equal(t, streamURL("t1"), rec.Playback.StreamURL)
}

func TestEngine_Advance_LoopWrapsAround(t *testing.T) {
	resolver := &fakeResolver{}
	engine := NewEngine(resolver)
	rec := testRecord(3)
	rec.Settings.Loop = true

	var ids []string
	for i := 0; i < 3; i++ {
		d, err := engine.Advance(context.Background(), rec)
		require.NoError(t, err)
		ids = append(ids, d.TrackID)
	}

	assert.Equal(t, []string{"t1", "t2", "t0"}, ids)
	assert.Equal(t, 0, rec.Playback.Index)
}

func TestEngine_Advance_EndOfQueueStops(t *testing.T) {
	resolver := &fakeResolver{}
	engine := NewEngine(resolver)
	rec := testRecord(3)
	rec.Playback.Index = 2

	d, err := engine.Advance(context.Background(), rec)
	require.NoError(t, err)

	assert.Equal(t, DirectiveStop, d.Kind)
	assert.Equal(t, 2, rec.Playback.Index)
	assert.Zero(t, resolver.getStreamCalls)
}

func TestEngine_Advance_ResolverFailureLeavesRecordIntact(t *testing.T) {
	resolver := &fakeResolver{
		getStreamFn: func(ctx context.Context, base, trackID string) (song.Stream, error) {
			return song.Stream{}, errors.New("connection refused")
		},
	}
	engine := NewEngine(resolver)
	rec := testRecord(3)
	rec.Playback.Index = 1
	rec.Playback.OffsetMS = 9000
	rec.Playback.StreamURL = streamURL("t1")
	rec.Playback.NextStreamEnqueued = true

	_, err := engine.Advance(context.Background(), rec)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrResolverUnavailable))

	assert.Equal(t, 1, rec.Playback.Index)
	assert.Equal(t, int64(9000), rec.Playback.OffsetMS)
	assert.Equal(t, streamURL("t1"), rec.Playback.StreamURL)
	assert.True(t, rec.Playback.NextStreamEnqueued)
}

func TestEngine_Advance_EmptyQueue(t *testing.T) {
	engine := NewEngine(&fakeResolver{})
	rec := session.NewRecord()

	_, err := engine.Advance(context.Background(), rec)
	assert.True(t, errors.Is(err, ErrQueueEmpty))
}

func TestEngine_Advance_NoResolverConfigured(t *testing.T) {
	engine := NewEngine(&fakeResolver{})
	rec := testRecord(3)
	rec.ResolverURL = ""

	_, err := engine.Advance(context.Background(), rec)
	assert.True(t, errors.Is(err, ErrNotConfigured))
}

func TestEngine_Retreat(t *testing.T) {
	resolver := &fakeResolver{}
	engine := NewEngine(resolver)

	t.Run("moves back one", func(t *testing.T) {
		rec := testRecord(3)
		rec.Playback.Index = 2

		d, err := engine.Retreat(context.Background(), rec)
		require.NoError(t, err)
		assert.Equal(t, DirectiveReplaceAll, d.Kind)
		assert.Equal(t, "t1", d.TrackID)
		assert.Equal(t, 1, rec.Playback.Index)
	})

	t.Run("stops at start without loop", func(t *testing.T) {
		rec := testRecord(3)

		d, err := engine.Retreat(context.Background(), rec)
		require.NoError(t, err)
		assert.Equal(t, DirectiveStop, d.Kind)
		assert.Equal(t, 0, rec.Playback.Index)
	})

	t.Run("wraps to end with loop", func(t *testing.T) {
		rec := testRecord(3)
		rec.Settings.Loop = true

		d, err := engine.Retreat(context.Background(), rec)
		require.NoError(t, err)
		assert.Equal(t, "t2", d.TrackID)
		assert.Equal(t, 2, rec.Playback.Index)
	})
}

func TestEngine_ShuffledAdvanceRetreatRoundTrip(t *testing.T) {
	resolver := &fakeResolver{}
	engine := NewEngine(resolver)
	rec := testRecord(8)
	rec.Settings.Loop = true

	engine.SetShuffle(rec, true)
	before, ok := rec.CurrentTrack()
	require.True(t, ok)

	_, err := engine.Advance(context.Background(), rec)
	require.NoError(t, err)
	_, err = engine.Retreat(context.Background(), rec)
	require.NoError(t, err)

	after, ok := rec.CurrentTrack()
	require.True(t, ok)
	assert.Equal(t, before.ID, after.ID)
}

func TestEngine_MaybePrefetch(t *testing.T) {
	resolver := &fakeResolver{}
	engine := NewEngine(resolver)
	rec := testRecord(3)

	d, err := engine.MaybePrefetch(context.Background(), rec)
	require.NoError(t, err)

	assert.Equal(t, DirectiveEnqueue, d.Kind)
	assert.Equal(t, "t1", d.TrackID)
	assert.Equal(t, streamURL("t1"), d.URL)
	assert.Equal(t, "t0", d.ExpectedPreviousTrackID)
	assert.True(t, rec.Playback.NextStreamEnqueued)

	// The position only moves once the surface reports the started track.
	assert.Equal(t, 0, rec.Playback.Index)
}

func TestEngine_MaybePrefetch_Idempotent(t *testing.T) {
	resolver := &fakeResolver{}
	engine := NewEngine(resolver)
	rec := testRecord(3)

	_, err := engine.MaybePrefetch(context.Background(), rec)
	require.NoError(t, err)
	calls := resolver.getStreamCalls

	d, err := engine.MaybePrefetch(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, DirectiveNone, d.Kind)
	assert.Equal(t, calls, resolver.getStreamCalls)
}

func TestEngine_MaybePrefetch_EndOfQueueNoLoop(t *testing.T) {
	resolver := &fakeResolver{}
	engine := NewEngine(resolver)
	rec := testRecord(3)
	rec.Playback.Index = 2

	d, err := engine.MaybePrefetch(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, DirectiveNone, d.Kind)
	assert.False(t, rec.Playback.NextStreamEnqueued)
	assert.Zero(t, resolver.getStreamCalls)
}

func TestEngine_MaybePrefetch_EndOfQueueWithLoop(t *testing.T) {
	resolver := &fakeResolver{}
	engine := NewEngine(resolver)
	rec := testRecord(3)
	rec.Playback.Index = 2
	rec.Settings.Loop = true

	d, err := engine.MaybePrefetch(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, DirectiveEnqueue, d.Kind)
	assert.Equal(t, "t0", d.TrackID)
	assert.Equal(t, "t2", d.ExpectedPreviousTrackID)
}

func TestEngine_MaybePrefetch_EmptyQueue(t *testing.T) {
	engine := NewEngine(&fakeResolver{})
	rec := session.NewRecord()

	_, err := engine.MaybePrefetch(context.Background(), rec)
	assert.True(t, errors.Is(err, ErrQueueEmpty))
}

func TestEngine_Resume(t *testing.T) {
	t.Run("reuses cached stream URL", func(t *testing.T) {
		resolver := &fakeResolver{}
		engine := NewEngine(resolver)
		rec := testRecord(3)
		rec.Playback.Index = 1
		rec.Playback.OffsetMS = 30500
		rec.Playback.StreamURL = "https://cdn.test/cached"
		rec.Playback.NextStreamEnqueued = true

		d, err := engine.Resume(context.Background(), rec)
		require.NoError(t, err)

		assert.Equal(t, DirectiveReplaceAll, d.Kind)
		assert.Equal(t, "t1", d.TrackID)
		assert.Equal(t, "https://cdn.test/cached", d.URL)
		assert.Equal(t, int64(30500), d.OffsetMS)
		assert.False(t, rec.Playback.NextStreamEnqueued)
		assert.Zero(t, resolver.getStreamCalls)
	})

	t.Run("re-resolves when no URL is cached", func(t *testing.T) {
		resolver := &fakeResolver{}
		engine := NewEngine(resolver)
		rec := testRecord(3)
		rec.Playback.Index = 2
		rec.Playback.OffsetMS = 1000

		d, err := engine.Resume(context.Background(), rec)
		require.NoError(t, err)
		assert.Equal(t, streamURL("t2"), d.URL)
		assert.Equal(t, int64(1000), d.OffsetMS)
		assert.Equal(t, 1, resolver.getStreamCalls)
	})

	t.Run("empty queue", func(t *testing.T) {
		engine := NewEngine(&fakeResolver{})
		rec := session.NewRecord()

		_, err := engine.Resume(context.Background(), rec)
		assert.True(t, errors.Is(err, ErrQueueEmpty))
	})
}

func TestEngine_StartOver(t *testing.T) {
	engine := NewEngine(&fakeResolver{})
	rec := testRecord(3)
	rec.Playback.Index = 1
	rec.Playback.OffsetMS = 95000
	rec.Playback.StreamURL = streamURL("t1")

	d, err := engine.StartOver(context.Background(), rec)
	require.NoError(t, err)

	assert.Equal(t, DirectiveReplaceAll, d.Kind)
	assert.Equal(t, "t1", d.TrackID)
	assert.Equal(t, int64(0), d.OffsetMS)
	assert.Equal(t, int64(0), rec.Playback.OffsetMS)
}

func TestEngine_OnPlaybackStarted(t *testing.T) {
	engine := NewEngine(&fakeResolver{})
	rec := testRecord(3)
	rec.Playback.PlayOrder = []int{2, 0, 1}
	rec.Playback.Index = 0

	// The surface reports t1, which is playlist index 1, held by slot 2.
	err := engine.OnPlaybackStarted(rec, "t1")
	require.NoError(t, err)

	assert.Equal(t, 2, rec.Playback.Index)
	assert.True(t, rec.Playback.InPlaybackSession)
	assert.True(t, rec.Playback.HasPreviousSession)

	md, ok := rec.CurrentTrack()
	require.True(t, ok)
	assert.Equal(t, "t1", md.ID)
}

func TestEngine_OnPlaybackStarted_UnknownTrack(t *testing.T) {
	engine := NewEngine(&fakeResolver{})
	rec := testRecord(3)

	err := engine.OnPlaybackStarted(rec, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, rec.Playback.InPlaybackSession)
}

func TestEngine_PlaybackLifecycleEvents(t *testing.T) {
	engine := NewEngine(&fakeResolver{})
	rec := testRecord(3)
	rec.Playback.InPlaybackSession = true
	rec.Playback.HasPreviousSession = true
	rec.Playback.NextStreamEnqueued = true

	engine.OnPlaybackStopped(rec, 61000)
	assert.Equal(t, int64(61000), rec.Playback.OffsetMS)
	assert.True(t, rec.Playback.InPlaybackSession)

	engine.OnPlaybackFailed(rec)
	assert.False(t, rec.Playback.InPlaybackSession)
	assert.True(t, rec.Playback.HasPreviousSession)

	engine.OnPlaybackFinished(rec)
	assert.False(t, rec.Playback.InPlaybackSession)
	assert.False(t, rec.Playback.HasPreviousSession)
	assert.False(t, rec.Playback.NextStreamEnqueued)
}
