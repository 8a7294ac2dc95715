package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxdj/voxdj/internal/domain/playlist"
	"github.com/voxdj/voxdj/internal/domain/session"
)

func TestNewRegistry_ThresholdFallback(t *testing.T) {
	assert.Equal(t, 0.5, NewRegistry(0.5).threshold)
	assert.Equal(t, DefaultMatchThreshold, NewRegistry(0).threshold)
	assert.Equal(t, DefaultMatchThreshold, NewRegistry(-1).threshold)
}

func TestRegistry_SaveAndGet(t *testing.T) {
	registry := NewRegistry(0)
	rec := session.NewRecord()

	registry.Save(rec, playlist.Playlist{ID: "PL1", Title: "Favourites"}, "Favourites")

	t.Run("exact name", func(t *testing.T) {
		pl, name, ok := registry.Get(rec, "Favourites")
		require.True(t, ok)
		assert.Equal(t, "PL1", pl.ID)
		assert.Equal(t, "Favourites", name)
	})

	t.Run("spoken variant", func(t *testing.T) {
		// "favorite" shares 8 of 10 distinct characters with "Favourites".
		pl, name, ok := registry.Get(rec, "favorite")
		require.True(t, ok)
		assert.Equal(t, "PL1", pl.ID)
		assert.Equal(t, "Favourites", name)
	})

	t.Run("unrelated name", func(t *testing.T) {
		_, _, ok := registry.Get(rec, "workout jams")
		assert.False(t, ok)
	})
}

func TestRegistry_Save_LastWriteWins(t *testing.T) {
	registry := NewRegistry(0)
	rec := session.NewRecord()

	registry.Save(rec, playlist.Playlist{ID: "PL1", Title: "Road Trip"}, "Road Trip")
	registry.Save(rec, playlist.Playlist{ID: "PL2", Title: "Road Trip"}, "Road Trip")

	pl, _, ok := registry.Get(rec, "Road Trip")
	require.True(t, ok)
	assert.Equal(t, "PL2", pl.ID)
	assert.Len(t, rec.SavedPlaylists, 1)
}

func TestRegistry_Delete(t *testing.T) {
	registry := NewRegistry(0)
	rec := session.NewRecord()
	registry.Save(rec, playlist.Playlist{ID: "PL1", Title: "Favourites"}, "Favourites")

	name, ok := registry.Delete(rec, "favorite")
	require.True(t, ok)
	assert.Equal(t, "Favourites", name)
	assert.Empty(t, rec.SavedPlaylists)

	_, ok = registry.Delete(rec, "favorite")
	assert.False(t, ok)
}

func TestRegistry_Names_Sorted(t *testing.T) {
	registry := NewRegistry(0)
	rec := session.NewRecord()
	registry.Save(rec, playlist.Playlist{ID: "PL1"}, "zebra mix")
	registry.Save(rec, playlist.Playlist{ID: "PL2"}, "acoustic")
	registry.Save(rec, playlist.Playlist{ID: "PL3"}, "morning")

	assert.Equal(t, []string{"acoustic", "morning", "zebra mix"}, registry.Names(rec))
}

func TestRegistry_Find_RequiresStrictlyAbove(t *testing.T) {
	// "abcdefghij" vs "abcdefgh": intersection 8, union 10, score exactly 0.8.
	registry := NewRegistry(0.8)
	rec := session.NewRecord()
	registry.Save(rec, playlist.Playlist{ID: "PL1"}, "abcdefghij")

	_, ok := registry.Find(rec, "abcdefgh")
	assert.False(t, ok)

	_, ok = registry.Find(rec, "abcdefghij")
	assert.True(t, ok)
}
