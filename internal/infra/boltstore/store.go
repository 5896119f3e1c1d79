// Package boltstore persists payment intents and announcement markers
// in an embedded BoltDB file, so the exactly-once fulfillment guarantee
// and per-chat changelog positions survive a process restart.
package boltstore

import (
	"time"

	bolt "github.com/boltdb/bolt"
)

// Open opens (or creates) the database at path. The handle is shared by
// every repository built on it; the caller owns its lifetime.
func Open(path string) (*bolt.DB, error) {
	return bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
}
