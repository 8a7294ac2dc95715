package store

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/voxdj/voxdj/internal/domain/session"
)

var bucketSessions = []byte("sessions")

// BoltStore persists session records in a bbolt database, one value per
// user under a single bucket.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (or creates) the database at path.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open session db")
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSessions)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to create sessions bucket")
	}

	return &BoltStore{db: db}, nil
}

// Load returns the user's record, or a fresh default one.
func (s *BoltStore) Load(_ context.Context, userID string) (*session.Record, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketSessions).Get([]byte(userID)); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to read session record")
	}

	if data == nil {
		return session.NewRecord(), nil
	}
	return decodeRecord(data)
}

// Save stores the user's record.
func (s *BoltStore) Save(_ context.Context, userID string, rec *session.Record) error {
	data, err := encodeRecord(rec)
	if err != nil {
		return err
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSessions).Put([]byte(userID), data)
	})
	return errors.Wrap(err, "failed to write session record")
}

// UserIDs returns every user with a stored record.
func (s *BoltStore) UserIDs() ([]string, error) {
	var ids []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSessions).ForEach(func(k, _ []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list session records")
	}
	return ids, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
