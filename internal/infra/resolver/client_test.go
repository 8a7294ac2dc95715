package resolver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxdj/voxdj/internal/domain/song"
)

func TestClient_SearchAndStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "morning jazz", r.URL.Query().Get("query"))
		assert.Equal(t, "songs", r.URL.Query().Get("filter"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"song_info": {
				"video_id": "t0",
				"title": "Track 0",
				"artist": "Artist",
				"audio_url": "https://cdn.test/t0"
			},
			"playlist": [
				{"video_id": "t0", "title": "Track 0", "artist": "Artist"},
				{"video_id": "t1", "title": "Track 1", "artist": "Artist"}
			]
		}`))
	}))
	defer server.Close()

	client := New()
	info, queue, err := client.SearchAndStream(context.Background(), server.URL, "morning jazz", song.FilterSongs)
	require.NoError(t, err)

	assert.Equal(t, "t0", info.Metadata.ID)
	assert.Equal(t, "Track 0", info.Metadata.Title)
	assert.Equal(t, "https://cdn.test/t0", info.Stream.AudioURL)
	require.Len(t, queue, 2)
	assert.Equal(t, "t1", queue[1].ID)
}

func TestClient_StreamPlaylist(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/playlist/stream", r.URL.Path)
		assert.Equal(t, "PL1", r.URL.Query().Get("id"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"song_info": {"video_id": "t5", "audio_url": "https://cdn.test/t5"},
			"playlist": [{"video_id": "t5"}]
		}`))
	}))
	defer server.Close()

	client := New()
	info, queue, err := client.StreamPlaylist(context.Background(), server.URL, "PL1")
	require.NoError(t, err)
	assert.Equal(t, "t5", info.Metadata.ID)
	require.Len(t, queue, 1)
}

func TestClient_GetStream(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/stream", r.URL.Path)
			assert.Equal(t, "t3", r.URL.Query().Get("trackId"))
			w.Write([]byte(`{"audio_url": "https://cdn.test/t3"}`))
		}))
		defer server.Close()

		stream, err := New().GetStream(context.Background(), server.URL, "t3")
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.test/t3", stream.AudioURL)
	})

	t.Run("empty stream URL is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"audio_url": ""}`))
		}))
		defer server.Close()

		_, err := New().GetStream(context.Background(), server.URL, "t3")
		assert.Error(t, err)
	})
}

func TestClient_GetPlaylistInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/playlist/info", r.URL.Path)
		w.Write([]byte(`{"id": "PL1", "title": "Favourites"}`))
	}))
	defer server.Close()

	pl, err := New().GetPlaylistInfo(context.Background(), server.URL, "PL1")
	require.NoError(t, err)
	assert.Equal(t, "PL1", pl.ID)
	assert.Equal(t, "Favourites", pl.Title)
}

func TestClient_ErrorHandling(t *testing.T) {
	t.Run("non-200 status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		}))
		defer server.Close()

		_, err := New().GetStream(context.Background(), server.URL, "t0")
		assert.ErrorContains(t, err, "502")
	})

	t.Run("malformed body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{truncated`))
		}))
		defer server.Close()

		_, _, err := New().SearchAndStream(context.Background(), server.URL, "q", song.FilterSongs)
		assert.Error(t, err)
	})

	t.Run("unreachable host", func(t *testing.T) {
		_, err := New().GetStream(context.Background(), "http://127.0.0.1:1", "t0")
		assert.Error(t, err)
	})

	t.Run("trailing slash on base is tolerated", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/stream", r.URL.Path)
			w.Write([]byte(`{"audio_url": "https://cdn.test/t0"}`))
		}))
		defer server.Close()

		_, err := New().GetStream(context.Background(), server.URL+"/", "t0")
		require.NoError(t, err)
	})
}
