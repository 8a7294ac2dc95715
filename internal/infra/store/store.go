// Package store provides durable per-user session record storage.
package store

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/mitchellh/mapstructure"

	"github.com/voxdj/voxdj/internal/domain/playlist"
	"github.com/voxdj/voxdj/internal/domain/session"
)

// Store is the session store contract: load and save of one opaque record
// per user. Load returns a fresh default record when the user has none.
type Store interface {
	Load(ctx context.Context, userID string) (*session.Record, error)
	Save(ctx context.Context, userID string, rec *session.Record) error
	Close() error
}

// encodeRecord serializes a record for storage.
func encodeRecord(rec *session.Record) ([]byte, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode session record")
	}
	return data, nil
}

// decodeRecord deserializes a stored record. Decoding goes through an
// untyped map and a weakly-typed mapstructure pass so numeric fields read
// back as decimals (JSON numbers, decimal-typed backends) are normalized to
// the record's integer fields.
func decodeRecord(data []byte) (*session.Record, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "failed to parse session record")
	}

	rec := session.NewRecord()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           rec,
		WeaklyTypedInput: true,
		ZeroFields:       true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to build record decoder")
	}
	if err := dec.Decode(raw); err != nil {
		return nil, errors.Wrap(err, "failed to decode session record")
	}

	if rec.Playback.PlayOrder == nil {
		rec.Playback.PlayOrder = []int{}
	}
	if rec.SavedPlaylists == nil {
		rec.SavedPlaylists = map[string]playlist.Playlist{}
	}
	return rec, nil
}
