package boltstore

import (
	"context"
	"encoding/binary"

	bolt "github.com/boltdb/bolt"

	"telegram-vpn-shop/internal/domain/ports/repository"
)

const markerBucket = "announce_markers"

var _ repository.MarkerRepository = (*MarkerRepo)(nil)

// MarkerRepo keeps, per chat, the count of changelog entries already
// shown.
type MarkerRepo struct {
	db *bolt.DB
}

// NewMarkerRepo ensures the marker bucket exists on the shared handle.
func NewMarkerRepo(db *bolt.DB) (*MarkerRepo, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(markerBucket))
		return err
	})
	if err != nil {
		return nil, err
	}
	return &MarkerRepo{db: db}, nil
}

func (r *MarkerRepo) Seen(ctx context.Context, chatID int64) (int, error) {
	var seen int
	err := r.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(markerBucket)).Get(markerKey(chatID))
		if len(v) == 8 {
			seen = int(binary.BigEndian.Uint64(v))
		}
		return nil
	})
	return seen, err
}

func (r *MarkerRepo) MarkSeen(ctx context.Context, chatID int64, count int) error {
	val := make([]byte, 8)
	binary.BigEndian.PutUint64(val, uint64(count))
	return r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(markerBucket)).Put(markerKey(chatID), val)
	})
}

func markerKey(chatID int64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, uint64(chatID))
	return k
}
